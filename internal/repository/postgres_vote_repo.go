package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/qanda/internal/database"
	"github.com/hitoshi/qanda/internal/model"
)

// voteTable は投票対象ごとのテーブル定義。
type voteTable struct {
	table          string
	itemColumn     string
	itemConstraint string
	userConstraint string
	itemNotFound   func(id int64) *model.APIError
}

var voteTables = map[model.VoteTarget]voteTable{
	model.VoteTargetQuestion: {
		table:          "question_votes",
		itemColumn:     "question_id",
		itemConstraint: "question_votes_question_id_fkey",
		userConstraint: "question_votes_user_id_fkey",
		itemNotFound:   model.NewQuestionNotFoundError,
	},
	model.VoteTargetAnswer: {
		table:          "answer_votes",
		itemColumn:     "answer_id",
		itemConstraint: "answer_votes_answer_id_fkey",
		userConstraint: "answer_votes_user_id_fkey",
		itemNotFound:   model.NewAnswerNotFoundError,
	},
}

func lookupVoteTable(target model.VoteTarget) (voteTable, error) {
	vt, ok := voteTables[target]
	if !ok {
		return voteTable{}, fmt.Errorf("unknown vote target: %q", target)
	}
	return vt, nil
}

// PostgresVoteRepo はPostgreSQLを使用した投票リポジトリ。
type PostgresVoteRepo struct {
	db *sql.DB
}

// NewPostgresVoteRepo はPostgresVoteRepoを生成する。
func NewPostgresVoteRepo(db *sql.DB) *PostgresVoteRepo {
	return &PostgresVoteRepo{db: db}
}

func (r *PostgresVoteRepo) conn(ctx context.Context) database.Querier {
	return database.ConnFromContext(ctx, r.db)
}

// Upsert は(対象, ユーザー)の投票を単一のSQL文で作成または上書きする。
// 対象が存在しない場合は QUESTION_NOT_FOUND / ANSWER_NOT_FOUND、
// ユーザーが存在しない場合は USER_NOT_FOUND を返す。
func (r *PostgresVoteRepo) Upsert(ctx context.Context, vote *model.Vote) error {
	vt, err := lookupVoteTable(vote.Target)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(
		`INSERT INTO %[1]s (%[2]s, user_id, vote_type)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (%[2]s, user_id) DO UPDATE SET
		     vote_type = EXCLUDED.vote_type,
		     updated_at = NOW()
		 RETURNING created_at, updated_at`,
		vt.table, vt.itemColumn,
	)
	err = r.conn(ctx).QueryRowContext(ctx, query, vote.ItemID, vote.UserID, int(vote.VoteType)).
		Scan(&vote.CreatedAt, &vote.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert vote: %w", translatePQError(err, map[string]error{
			vt.itemConstraint: vt.itemNotFound(vote.ItemID),
			vt.userConstraint: model.NewUserNotFoundError(vote.UserID),
		}))
	}
	return nil
}

// Sum は対象への投票値の合計を返す。投票がない場合は0を返す。
func (r *PostgresVoteRepo) Sum(ctx context.Context, target model.VoteTarget, itemID int64) (int, error) {
	vt, err := lookupVoteTable(target)
	if err != nil {
		return 0, err
	}

	var sum int
	query := fmt.Sprintf(`SELECT COALESCE(SUM(vote_type), 0) FROM %s WHERE %s = $1`, vt.table, vt.itemColumn)
	if err := r.conn(ctx).QueryRowContext(ctx, query, itemID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("failed to sum votes: %w", err)
	}
	return sum, nil
}

// compile-time interface check
var _ VoteRepository = (*PostgresVoteRepo)(nil)
