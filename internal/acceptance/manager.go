// Package acceptance は回答の採用を扱う。
//
// 1つの質問につき採用済みの回答は高々1件であり、採用の切り替えは
// 質問行をロックしたトランザクション内で「他の採用を解除してから対象を採用」の順に行う。
package acceptance

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/qanda/internal/metrics"
	"github.com/hitoshi/qanda/internal/model"
	"github.com/hitoshi/qanda/internal/repository"
)

// Manager は回答の採用を行う。
type Manager struct {
	txm       repository.TxManager
	questions repository.QuestionRepository
	answers   repository.AnswerRepository
	policy    Policy
	metrics   metrics.MetricsCollector
}

// NewManager はManagerを生成する。policyがnilの場合は OpenPolicy を使用する。
func NewManager(
	txm repository.TxManager,
	questions repository.QuestionRepository,
	answers repository.AnswerRepository,
	policy Policy,
	m metrics.MetricsCollector,
) *Manager {
	if policy == nil {
		policy = OpenPolicy{}
	}
	if m == nil {
		m = metrics.Nop{}
	}
	return &Manager{txm: txm, questions: questions, answers: answers, policy: policy, metrics: m}
}

// AcceptAnswer は回答を採用し、同じ質問の他の回答の採用を解除する。
// 既に採用済みの回答に対する呼び出しは何も変更せず成功する。
func (m *Manager) AcceptAnswer(ctx context.Context, answerID int64, actorID string) (*model.Answer, error) {
	answer, err := m.answers.FindByID(ctx, answerID)
	if err != nil {
		return nil, fmt.Errorf("failed to find answer: %w", err)
	}
	if answer == nil {
		return nil, model.NewAnswerNotFoundError(answerID)
	}

	question, err := m.questions.FindByID(ctx, answer.QuestionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find question: %w", err)
	}
	if question == nil {
		return nil, model.NewQuestionNotFoundError(answer.QuestionID)
	}

	if !m.policy.CanAccept(question, answer, actorID) {
		slog.Warn("回答の採用が拒否されました",
			slog.Int64("answer_id", answerID),
			slog.Int64("question_id", question.ID),
			slog.String("actor_id", actorID),
		)
		return nil, model.NewAcceptForbiddenError()
	}

	var changed bool
	err = m.txm.WithinTx(ctx, func(ctx context.Context) error {
		// 同じ質問に対する採用操作を直列化する
		locked, err := m.questions.LockByID(ctx, question.ID)
		if err != nil {
			return err
		}
		if locked == nil {
			return model.NewQuestionNotFoundError(question.ID)
		}
		if err := m.answers.UnacceptOthers(ctx, question.ID, answerID); err != nil {
			return err
		}
		changed, err = m.answers.MarkAccepted(ctx, answerID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to accept answer: %w", err)
	}

	if changed {
		m.metrics.RecordAnswerAccepted()
		slog.Info("回答を採用しました",
			slog.Int64("answer_id", answerID),
			slog.Int64("question_id", question.ID),
			slog.String("actor_id", actorID),
		)
	}

	answer.IsAccepted = true
	return answer, nil
}
