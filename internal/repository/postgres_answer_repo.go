package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/qanda/internal/database"
	"github.com/hitoshi/qanda/internal/model"
)

const answerAggregateSelect = `
	SELECT a.id, a.question_id, a.content, a.author_id, a.is_accepted, a.created_at, a.updated_at,
	       u.email, u.first_name, u.last_name, u.profile_image_url,
	       COALESCE((SELECT SUM(v.vote_type) FROM answer_votes v WHERE v.answer_id = a.id), 0) AS vote_count
	FROM answers a
	LEFT JOIN users u ON u.id = a.author_id`

// PostgresAnswerRepo はPostgreSQLを使用した回答リポジトリ。
type PostgresAnswerRepo struct {
	db *sql.DB
}

// NewPostgresAnswerRepo はPostgresAnswerRepoを生成する。
func NewPostgresAnswerRepo(db *sql.DB) *PostgresAnswerRepo {
	return &PostgresAnswerRepo{db: db}
}

func (r *PostgresAnswerRepo) conn(ctx context.Context) database.Querier {
	return database.ConnFromContext(ctx, r.db)
}

// FindByID は指定IDの回答を取得する。見つからない場合はnilを返す。
func (r *PostgresAnswerRepo) FindByID(ctx context.Context, id int64) (*model.Answer, error) {
	a := &model.Answer{}
	err := r.conn(ctx).QueryRowContext(ctx,
		`SELECT id, question_id, content, author_id, is_accepted, created_at, updated_at
		 FROM answers WHERE id = $1`,
		id,
	).Scan(&a.ID, &a.QuestionID, &a.Content, &a.AuthorID, &a.IsAccepted, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find answer by ID: %w", err)
	}
	return a, nil
}

// Create は未採用の回答を作成し、採番されたIDとタイムスタンプを設定する。
func (r *PostgresAnswerRepo) Create(ctx context.Context, answer *model.Answer) error {
	answer.IsAccepted = false
	err := r.conn(ctx).QueryRowContext(ctx,
		`INSERT INTO answers (question_id, content, author_id)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		answer.QuestionID, answer.Content, answer.AuthorID,
	).Scan(&answer.ID, &answer.CreatedAt, &answer.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert answer: %w", translatePQError(err, map[string]error{
			"answers_question_id_fkey": model.NewQuestionNotFoundError(answer.QuestionID),
			"answers_author_id_fkey":   model.NewUserNotFoundError(answer.AuthorID),
		}))
	}
	return nil
}

func scanAnswerAggregate(row rowScanner) (*model.AnswerAggregate, error) {
	agg := &model.AnswerAggregate{}
	var email, firstName, lastName, profileImageURL sql.NullString
	err := row.Scan(
		&agg.ID, &agg.QuestionID, &agg.Content, &agg.AuthorID, &agg.IsAccepted, &agg.CreatedAt, &agg.UpdatedAt,
		&email, &firstName, &lastName, &profileImageURL,
		&agg.VoteCount,
	)
	if err != nil {
		return nil, err
	}
	agg.Author = model.User{
		ID:              agg.AuthorID,
		Email:           nullStringValue(email),
		FirstName:       nullStringValue(firstName),
		LastName:        nullStringValue(lastName),
		ProfileImageURL: nullStringValue(profileImageURL),
	}
	return agg, nil
}

func (r *PostgresAnswerRepo) listAggregates(ctx context.Context, query string, args ...any) ([]*model.AnswerAggregate, error) {
	rows, err := r.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []*model.AnswerAggregate{}
	for rows.Next() {
		agg, err := scanAnswerAggregate(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListAggregatesByQuestion は質問の回答を採用済み優先、新しい順に取得する。
func (r *PostgresAnswerRepo) ListAggregatesByQuestion(ctx context.Context, questionID int64) ([]*model.AnswerAggregate, error) {
	result, err := r.listAggregates(ctx,
		answerAggregateSelect+` WHERE a.question_id = $1 ORDER BY a.is_accepted DESC, a.created_at DESC, a.id DESC`,
		questionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}
	return result, nil
}

// ListAggregatesByAuthor は指定ユーザーが投稿した回答を新しい順に取得する。
func (r *PostgresAnswerRepo) ListAggregatesByAuthor(ctx context.Context, authorID string) ([]*model.AnswerAggregate, error) {
	result, err := r.listAggregates(ctx,
		answerAggregateSelect+` WHERE a.author_id = $1 ORDER BY a.created_at DESC, a.id DESC`,
		authorID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers by author: %w", err)
	}
	return result, nil
}

// UnacceptOthers は質問の回答のうちkeepAnswerID以外の採用を解除する。
func (r *PostgresAnswerRepo) UnacceptOthers(ctx context.Context, questionID, keepAnswerID int64) error {
	_, err := r.conn(ctx).ExecContext(ctx,
		`UPDATE answers SET is_accepted = FALSE, updated_at = NOW()
		 WHERE question_id = $1 AND id <> $2 AND is_accepted`,
		questionID, keepAnswerID,
	)
	if err != nil {
		return fmt.Errorf("failed to unaccept answers: %w", err)
	}
	return nil
}

// MarkAccepted は回答を採用済みにする。すでに採用済みの場合はfalseを返す。
func (r *PostgresAnswerRepo) MarkAccepted(ctx context.Context, answerID int64) (bool, error) {
	result, err := r.conn(ctx).ExecContext(ctx,
		`UPDATE answers SET is_accepted = TRUE, updated_at = NOW()
		 WHERE id = $1 AND NOT is_accepted`,
		answerID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark answer accepted: %w", translatePQError(err, nil))
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// compile-time interface check
var _ AnswerRepository = (*PostgresAnswerRepo)(nil)
