package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/qanda/internal/database"
	"github.com/hitoshi/qanda/internal/model"
)

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

func (r *PostgresUserRepo) conn(ctx context.Context) database.Querier {
	return database.ConnFromContext(ctx, r.db)
}

func scanUser(row rowScanner) (*model.User, error) {
	user := &model.User{}
	var email, firstName, lastName, profileImageURL sql.NullString
	err := row.Scan(
		&user.ID, &email, &firstName, &lastName, &profileImageURL,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Email = nullStringValue(email)
	user.FirstName = nullStringValue(firstName)
	user.LastName = nullStringValue(lastName)
	user.ProfileImageURL = nullStringValue(profileImageURL)
	return user, nil
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	user, err := scanUser(r.conn(ctx).QueryRowContext(ctx,
		`SELECT id, email, first_name, last_name, profile_image_url, created_at, updated_at
		 FROM users WHERE id = $1`,
		id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return user, nil
}

// Upsert はユーザーを作成し、既存の場合はプロフィール項目を上書きする。
// 別ユーザーが同じメールアドレスを使用している場合は EMAIL_ALREADY_IN_USE を返す。
func (r *PostgresUserRepo) Upsert(ctx context.Context, user *model.User) (*model.User, error) {
	saved, err := scanUser(r.conn(ctx).QueryRowContext(ctx,
		`INSERT INTO users (id, email, first_name, last_name, profile_image_url)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET
		     email = EXCLUDED.email,
		     first_name = EXCLUDED.first_name,
		     last_name = EXCLUDED.last_name,
		     profile_image_url = EXCLUDED.profile_image_url,
		     updated_at = NOW()
		 RETURNING id, email, first_name, last_name, profile_image_url, created_at, updated_at`,
		user.ID, nullString(user.Email), nullString(user.FirstName),
		nullString(user.LastName), nullString(user.ProfileImageURL),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", translatePQError(err, map[string]error{
			"users_email_key": model.NewEmailAlreadyInUseError(),
		}))
	}
	return saved, nil
}

// EnsureExists はプロフィールが空のスタブユーザーを作成する。既存の場合は何もしない。
func (r *PostgresUserRepo) EnsureExists(ctx context.Context, id string) error {
	_, err := r.conn(ctx).ExecContext(ctx,
		`INSERT INTO users (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to ensure user exists: %w", err)
	}
	return nil
}

// Statistics はユーザーの投稿数・採用数・獲得投票数を集計する。
// ユーザーの存在確認は行わない。
func (r *PostgresUserRepo) Statistics(ctx context.Context, id string) (*model.UserStatistics, error) {
	stats := &model.UserStatistics{UserID: id}
	err := r.conn(ctx).QueryRowContext(ctx,
		`SELECT
		     (SELECT COUNT(*) FROM questions WHERE author_id = $1),
		     (SELECT COUNT(*) FROM answers WHERE author_id = $1),
		     (SELECT COUNT(*) FROM answers WHERE author_id = $1 AND is_accepted),
		     COALESCE((SELECT SUM(v.vote_type) FROM question_votes v
		               JOIN questions q ON q.id = v.question_id
		               WHERE q.author_id = $1), 0),
		     COALESCE((SELECT SUM(v.vote_type) FROM answer_votes v
		               JOIN answers a ON a.id = v.answer_id
		               WHERE a.author_id = $1), 0)`,
		id,
	).Scan(
		&stats.QuestionCount, &stats.AnswerCount, &stats.AcceptedAnswerCount,
		&stats.QuestionVotesReceived, &stats.AnswerVotesReceived,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate user statistics: %w", err)
	}
	return stats, nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
