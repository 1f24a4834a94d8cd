package vote

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hitoshi/qanda/internal/metrics"
	"github.com/hitoshi/qanda/internal/model"
	"github.com/hitoshi/qanda/internal/repository"
)

// Service はHTTP層から呼ばれる投票のユースケース。
// 投票者のシャドウレコードの作成と投票の記録は1トランザクションで行う。
type Service struct {
	txm     repository.TxManager
	ledger  *Ledger
	users   repository.UserRepository
	metrics metrics.MetricsCollector
}

// NewService はServiceを生成する。
func NewService(txm repository.TxManager, ledger *Ledger, users repository.UserRepository, m metrics.MetricsCollector) *Service {
	if m == nil {
		m = metrics.Nop{}
	}
	return &Service{txm: txm, ledger: ledger, users: users, metrics: m}
}

// Cast は投票を記録し、対象の投票合計を返す。
// 対象が存在しない場合は投票者のシャドウレコードも作成されない。
// 合計はコミット後に読み直した値のため、同時に行われた他の投票を含む場合も含まない場合もある。
func (s *Service) Cast(ctx context.Context, target model.VoteTarget, itemID int64, userID string, voteType model.VoteType) (int, error) {
	if !voteType.Valid() {
		return 0, model.NewInvalidVoteTypeError(int(voteType))
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, model.NewValidationError("userId", "必須です")
	}

	err := s.txm.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.users.EnsureExists(ctx, userID); err != nil {
			return fmt.Errorf("failed to ensure voter: %w", err)
		}
		return s.ledger.CastVote(ctx, target, itemID, userID, voteType)
	})
	if err != nil {
		return 0, err
	}
	s.metrics.RecordVoteCast(string(target), int(voteType))

	sum, err := s.ledger.VoteSum(ctx, target, itemID)
	if err != nil {
		return 0, err
	}

	slog.Info("投票を記録しました",
		slog.String("target", string(target)),
		slog.Int64("item_id", itemID),
		slog.String("user_id", userID),
		slog.Int("vote_type", int(voteType)),
		slog.Int("vote_count", sum),
	)
	return sum, nil
}
