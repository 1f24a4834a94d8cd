// Package question は質問・回答の作成と、集計値付きの読み取りモデルを提供する。
package question

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/hitoshi/qanda/internal/metrics"
	"github.com/hitoshi/qanda/internal/model"
	"github.com/hitoshi/qanda/internal/repository"
	"github.com/hitoshi/qanda/internal/richtext"
	"github.com/hitoshi/qanda/internal/tag"
)

const (
	// MinTitleLength は前後の空白を除いたタイトルの最小文字数。
	MinTitleLength = 10
	// MaxTitleLength はタイトルの最大文字数。
	MaxTitleLength = 200

	defaultMaxPageSize      = 100
	defaultSearchMaxResults = 200
)

// TagResolver はタグ名をタグ行に解決する。
type TagResolver interface {
	Resolve(ctx context.Context, names []string) ([]*model.Tag, error)
}

// ContentRenderer は本文を保存用HTMLに変換する。
type ContentRenderer interface {
	Render(format richtext.Format, raw string) (string, error)
	IsBlank(renderedHTML string) bool
}

// Options はServiceの動作設定。0以下の値はデフォルト値になる。
type Options struct {
	MaxPageSize      int
	SearchMaxResults int
}

// CreateQuestionInput は質問作成の入力。
type CreateQuestionInput struct {
	Title         string
	Content       string
	ContentFormat richtext.Format
	AuthorID      string
	Tags          []string
}

// CreateAnswerInput は回答作成の入力。
type CreateAnswerInput struct {
	Content       string
	ContentFormat richtext.Format
	AuthorID      string
}

// Service は質問・回答のユースケースを提供する。
type Service struct {
	txm       repository.TxManager
	users     repository.UserRepository
	questions repository.QuestionRepository
	answers   repository.AnswerRepository
	tags      TagResolver
	renderer  ContentRenderer
	metrics   metrics.MetricsCollector
	opts      Options
}

// NewService はServiceを生成する。
func NewService(
	txm repository.TxManager,
	users repository.UserRepository,
	questions repository.QuestionRepository,
	answers repository.AnswerRepository,
	tags TagResolver,
	renderer ContentRenderer,
	m metrics.MetricsCollector,
	opts Options,
) *Service {
	if m == nil {
		m = metrics.Nop{}
	}
	if opts.MaxPageSize <= 0 {
		opts.MaxPageSize = defaultMaxPageSize
	}
	if opts.SearchMaxResults <= 0 {
		opts.SearchMaxResults = defaultSearchMaxResults
	}
	return &Service{
		txm:       txm,
		users:     users,
		questions: questions,
		answers:   answers,
		tags:      tags,
		renderer:  renderer,
		metrics:   m,
		opts:      opts,
	}
}

func validateAuthor(authorID string) (string, error) {
	authorID = strings.TrimSpace(authorID)
	if authorID == "" {
		return "", model.NewValidationError("authorId", "必須です")
	}
	return authorID, nil
}

func (s *Service) renderContent(format richtext.Format, raw string) (string, error) {
	content, err := s.renderer.Render(format, raw)
	if err != nil {
		return "", err
	}
	if s.renderer.IsBlank(content) {
		return "", model.NewValidationError("content", "本文を入力してください")
	}
	return content, nil
}

// CreateQuestion は質問を作成し、集計値付きの質問を返す。
// 入力の検証はストレージに触れる前に行い、投稿者の作成・質問の保存・タグの解決と紐付けは
// 1つのトランザクションで行う。
func (s *Service) CreateQuestion(ctx context.Context, in CreateQuestionInput) (*model.QuestionAggregate, error) {
	title := strings.TrimSpace(in.Title)
	if n := utf8.RuneCountInString(title); n < MinTitleLength || n > MaxTitleLength {
		return nil, model.NewValidationError("title", fmt.Sprintf("%d文字以上%d文字以内で入力してください", MinTitleLength, MaxTitleLength))
	}
	authorID, err := validateAuthor(in.AuthorID)
	if err != nil {
		return nil, err
	}
	content, err := s.renderContent(in.ContentFormat, in.Content)
	if err != nil {
		return nil, err
	}
	tagNames := tag.Normalize(in.Tags)
	if err := tag.Validate(tagNames); err != nil {
		return nil, err
	}

	q := &model.Question{Title: title, Content: content, AuthorID: authorID}
	err = s.txm.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.users.EnsureExists(ctx, authorID); err != nil {
			return err
		}
		if err := s.questions.Create(ctx, q); err != nil {
			return err
		}
		tags, err := s.tags.Resolve(ctx, tagNames)
		if err != nil {
			return err
		}
		tagIDs := make([]int64, 0, len(tags))
		for _, t := range tags {
			tagIDs = append(tagIDs, t.ID)
		}
		return s.questions.LinkTags(ctx, q.ID, tagIDs)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	s.metrics.RecordQuestionCreated()
	slog.Info("質問を作成しました",
		slog.Int64("question_id", q.ID),
		slog.String("user_id", authorID),
		slog.Int("tag_count", len(tagNames)),
	)

	return s.GetQuestion(ctx, q.ID)
}

// CreateAnswer は質問に未採用の回答を作成する。
func (s *Service) CreateAnswer(ctx context.Context, questionID int64, in CreateAnswerInput) (*model.AnswerAggregate, error) {
	authorID, err := validateAuthor(in.AuthorID)
	if err != nil {
		return nil, err
	}
	content, err := s.renderContent(in.ContentFormat, in.Content)
	if err != nil {
		return nil, err
	}

	q, err := s.questions.FindByID(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find question: %w", err)
	}
	if q == nil {
		return nil, model.NewQuestionNotFoundError(questionID)
	}

	a := &model.Answer{QuestionID: questionID, Content: content, AuthorID: authorID}
	err = s.txm.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.users.EnsureExists(ctx, authorID); err != nil {
			return err
		}
		return s.answers.Create(ctx, a)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create answer: %w", err)
	}

	s.metrics.RecordAnswerCreated()
	slog.Info("回答を作成しました",
		slog.Int64("question_id", questionID),
		slog.Int64("answer_id", a.ID),
		slog.String("user_id", authorID),
	)

	author, err := s.users.FindByID(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answer author: %w", err)
	}
	agg := &model.AnswerAggregate{Answer: *a, Author: model.User{ID: authorID}}
	if author != nil {
		agg.Author = *author
	}
	return agg, nil
}

// ListQuestions はフィルタに従って集計値付きの質問一覧を返す。
// filterが空の場合は newest として扱う。
func (s *Service) ListQuestions(ctx context.Context, offset, limit int, filter model.QuestionFilter) ([]*model.QuestionAggregate, error) {
	if filter == "" {
		filter = model.QuestionFilterNewest
	}
	if !filter.Valid() {
		return nil, model.NewInvalidFilterError(string(filter))
	}
	if offset < 0 {
		return nil, model.NewInvalidPaginationError("offset は0以上である必要があります")
	}
	if limit < 1 || limit > s.opts.MaxPageSize {
		return nil, model.NewInvalidPaginationError(fmt.Sprintf("limit は1以上%d以下である必要があります", s.opts.MaxPageSize))
	}

	result, err := s.questions.ListAggregates(ctx, filter, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return result, nil
}

// GetQuestion は集計値付きの質問を返す。
func (s *Service) GetQuestion(ctx context.Context, id int64) (*model.QuestionAggregate, error) {
	agg, err := s.questions.FindAggregateByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	if agg == nil {
		return nil, model.NewQuestionNotFoundError(id)
	}
	return agg, nil
}

// ListAnswers は質問の回答を採用済み優先、新しい順に返す。
func (s *Service) ListAnswers(ctx context.Context, questionID int64) ([]*model.AnswerAggregate, error) {
	q, err := s.questions.FindByID(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find question: %w", err)
	}
	if q == nil {
		return nil, model.NewQuestionNotFoundError(questionID)
	}

	result, err := s.answers.ListAggregatesByQuestion(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}
	return result, nil
}

// Search はタイトルまたは本文に部分一致する質問を新しい順に返す。
// 件数は SearchMaxResults で打ち切る。
func (s *Service) Search(ctx context.Context, text string) ([]*model.QuestionAggregate, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, model.NewSearchQueryRequiredError()
	}

	result, err := s.questions.SearchAggregates(ctx, text, s.opts.SearchMaxResults)
	if err != nil {
		return nil, fmt.Errorf("failed to search questions: %w", err)
	}
	return result, nil
}

// ListQuestionsByAuthor はユーザーが投稿した質問を新しい順に返す。
func (s *Service) ListQuestionsByAuthor(ctx context.Context, userID string) ([]*model.QuestionAggregate, error) {
	result, err := s.questions.ListAggregatesByAuthor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions by author: %w", err)
	}
	return result, nil
}

// ListAnswersByAuthor はユーザーが投稿した回答を新しい順に返す。
func (s *Service) ListAnswersByAuthor(ctx context.Context, userID string) ([]*model.AnswerAggregate, error) {
	result, err := s.answers.ListAggregatesByAuthor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers by author: %w", err)
	}
	return result, nil
}
