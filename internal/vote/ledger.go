// Package vote は質問・回答への投票の記録と集計を提供する。
//
// 投票は(対象, ユーザー)ごとに1行だけ保持され、再投票は値を上書きする。
// 同じ投票を何度繰り返しても合計は変わらない。
package vote

import (
	"context"
	"fmt"

	"github.com/hitoshi/qanda/internal/model"
	"github.com/hitoshi/qanda/internal/repository"
)

// Ledger は投票の書き込みと合計の読み取りを行う。
type Ledger struct {
	repo repository.VoteRepository
}

// NewLedger はLedgerを生成する。
func NewLedger(repo repository.VoteRepository) *Ledger {
	return &Ledger{repo: repo}
}

func validTarget(target model.VoteTarget) bool {
	return target == model.VoteTargetQuestion || target == model.VoteTargetAnswer
}

// CastVote は投票を記録する。既存の投票があれば値を上書きする。
// voteTypeが+1/-1以外の場合はストレージに触れずに INVALID_VOTE_TYPE を返す。
// 対象またはユーザーが存在しない場合は *_NOT_FOUND を返す。
func (l *Ledger) CastVote(ctx context.Context, target model.VoteTarget, itemID int64, userID string, voteType model.VoteType) error {
	if !voteType.Valid() {
		return model.NewInvalidVoteTypeError(int(voteType))
	}
	if !validTarget(target) {
		return fmt.Errorf("unknown vote target: %q", target)
	}

	vote := &model.Vote{
		Target:   target,
		ItemID:   itemID,
		UserID:   userID,
		VoteType: voteType,
	}
	if err := l.repo.Upsert(ctx, vote); err != nil {
		return fmt.Errorf("failed to cast vote: %w", err)
	}
	return nil
}

// VoteSum は対象への投票値の合計を返す。投票がない場合は0。
func (l *Ledger) VoteSum(ctx context.Context, target model.VoteTarget, itemID int64) (int, error) {
	if !validTarget(target) {
		return 0, fmt.Errorf("unknown vote target: %q", target)
	}
	sum, err := l.repo.Sum(ctx, target, itemID)
	if err != nil {
		return 0, fmt.Errorf("failed to sum votes: %w", err)
	}
	return sum, nil
}
