package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/hitoshi/qanda/internal/database"
	"github.com/hitoshi/qanda/internal/model"
)

// questionAggregateSelect は質問の集計読み取りの共通SELECT句。
// 投票合計・回答数・タグ名はすべて読み取り時に計算する。
const questionAggregateSelect = `
	SELECT q.id, q.title, q.content, q.author_id, q.created_at, q.updated_at,
	       u.email, u.first_name, u.last_name, u.profile_image_url,
	       COALESCE((SELECT SUM(v.vote_type) FROM question_votes v WHERE v.question_id = q.id), 0) AS vote_count,
	       (SELECT COUNT(*) FROM answers a WHERE a.question_id = q.id) AS answer_count,
	       COALESCE((SELECT array_agg(DISTINCT t.name ORDER BY t.name)
	                 FROM question_tags qt JOIN tags t ON t.id = qt.tag_id
	                 WHERE qt.question_id = q.id), '{}') AS tag_names
	FROM questions q
	LEFT JOIN users u ON u.id = q.author_id`

// PostgresQuestionRepo はPostgreSQLを使用した質問リポジトリ。
type PostgresQuestionRepo struct {
	db *sql.DB
}

// NewPostgresQuestionRepo はPostgresQuestionRepoを生成する。
func NewPostgresQuestionRepo(db *sql.DB) *PostgresQuestionRepo {
	return &PostgresQuestionRepo{db: db}
}

func (r *PostgresQuestionRepo) conn(ctx context.Context) database.Querier {
	return database.ConnFromContext(ctx, r.db)
}

func (r *PostgresQuestionRepo) findOne(ctx context.Context, query string, id int64) (*model.Question, error) {
	q := &model.Question{}
	err := r.conn(ctx).QueryRowContext(ctx, query, id).Scan(
		&q.ID, &q.Title, &q.Content, &q.AuthorID, &q.CreatedAt, &q.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return q, nil
}

// FindByID は指定IDの質問を取得する。見つからない場合はnilを返す。
func (r *PostgresQuestionRepo) FindByID(ctx context.Context, id int64) (*model.Question, error) {
	q, err := r.findOne(ctx,
		`SELECT id, title, content, author_id, created_at, updated_at FROM questions WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find question by ID: %w", err)
	}
	return q, nil
}

// LockByID は指定IDの質問行をロックして取得する。見つからない場合はnilを返す。
func (r *PostgresQuestionRepo) LockByID(ctx context.Context, id int64) (*model.Question, error) {
	q, err := r.findOne(ctx,
		`SELECT id, title, content, author_id, created_at, updated_at FROM questions WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to lock question: %w", err)
	}
	return q, nil
}

// Create は質問を作成し、採番されたIDとタイムスタンプを設定する。
func (r *PostgresQuestionRepo) Create(ctx context.Context, question *model.Question) error {
	err := r.conn(ctx).QueryRowContext(ctx,
		`INSERT INTO questions (title, content, author_id)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		question.Title, question.Content, question.AuthorID,
	).Scan(&question.ID, &question.CreatedAt, &question.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert question: %w", translatePQError(err, map[string]error{
			"questions_author_id_fkey": model.NewUserNotFoundError(question.AuthorID),
		}))
	}
	return nil
}

// LinkTags は質問にタグを紐付ける。既存の紐付けは無視される。
func (r *PostgresQuestionRepo) LinkTags(ctx context.Context, questionID int64, tagIDs []int64) error {
	if len(tagIDs) == 0 {
		return nil
	}
	_, err := r.conn(ctx).ExecContext(ctx,
		`INSERT INTO question_tags (question_id, tag_id)
		 SELECT $1, unnest($2::bigint[])
		 ON CONFLICT DO NOTHING`,
		questionID, pq.Array(tagIDs),
	)
	if err != nil {
		return fmt.Errorf("failed to link tags: %w", translatePQError(err, map[string]error{
			"question_tags_question_id_fkey": model.NewQuestionNotFoundError(questionID),
		}))
	}
	return nil
}

func scanQuestionAggregate(row rowScanner) (*model.QuestionAggregate, error) {
	agg := &model.QuestionAggregate{}
	var email, firstName, lastName, profileImageURL sql.NullString
	var tags []string
	err := row.Scan(
		&agg.ID, &agg.Title, &agg.Content, &agg.AuthorID, &agg.CreatedAt, &agg.UpdatedAt,
		&email, &firstName, &lastName, &profileImageURL,
		&agg.VoteCount, &agg.AnswerCount, pq.Array(&tags),
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
	if tags == nil {
		tags = []string{}
	}
	agg.Tags = tags
	return agg, nil
}

func (r *PostgresQuestionRepo) listAggregates(ctx context.Context, query string, args ...any) ([]*model.QuestionAggregate, error) {
	rows, err := r.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []*model.QuestionAggregate{}
	for rows.Next() {
		agg, err := scanQuestionAggregate(rows)
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

// FindAggregateByID は集計値付きの質問を取得する。見つからない場合はnilを返す。
func (r *PostgresQuestionRepo) FindAggregateByID(ctx context.Context, id int64) (*model.QuestionAggregate, error) {
	agg, err := scanQuestionAggregate(r.conn(ctx).QueryRowContext(ctx,
		questionAggregateSelect+` WHERE q.id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find question aggregate: %w", err)
	}
	return agg, nil
}

// ListAggregates はフィルタに従って集計値付きの質問一覧を取得する。
//   - newest: 作成日時の降順
//   - unanswered: 回答0件の質問のみ、作成日時の降順
//   - most-voted: 投票合計の降順、同点は作成日時の降順
func (r *PostgresQuestionRepo) ListAggregates(ctx context.Context, filter model.QuestionFilter, offset, limit int) ([]*model.QuestionAggregate, error) {
	var where, orderBy string
	switch filter {
	case model.QuestionFilterNewest, "":
		orderBy = `q.created_at DESC, q.id DESC`
	case model.QuestionFilterUnanswered:
		where = ` WHERE NOT EXISTS (SELECT 1 FROM answers a WHERE a.question_id = q.id)`
		orderBy = `q.created_at DESC, q.id DESC`
	case model.QuestionFilterMostVoted:
		orderBy = `vote_count DESC, q.created_at DESC, q.id DESC`
	default:
		return nil, model.NewInvalidFilterError(string(filter))
	}

	result, err := r.listAggregates(ctx,
		questionAggregateSelect+where+` ORDER BY `+orderBy+` OFFSET $1 LIMIT $2`,
		offset, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return result, nil
}

// SearchAggregates はタイトルまたは本文に大文字小文字を区別せず部分一致する質問を
// 新しい順に最大limit件取得する。textに含まれる % _ \ は文字どおりに扱う。
func (r *PostgresQuestionRepo) SearchAggregates(ctx context.Context, text string, limit int) ([]*model.QuestionAggregate, error) {
	pattern := "%" + escapeLike(text) + "%"
	result, err := r.listAggregates(ctx,
		questionAggregateSelect+
			` WHERE q.title ILIKE $1 ESCAPE '\' OR q.content ILIKE $1 ESCAPE '\'`+
			` ORDER BY q.created_at DESC, q.id DESC LIMIT $2`,
		pattern, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search questions: %w", err)
	}
	return result, nil
}

// ListAggregatesByAuthor は指定ユーザーが投稿した質問を新しい順に取得する。
func (r *PostgresQuestionRepo) ListAggregatesByAuthor(ctx context.Context, authorID string) ([]*model.QuestionAggregate, error) {
	result, err := r.listAggregates(ctx,
		questionAggregateSelect+` WHERE q.author_id = $1 ORDER BY q.created_at DESC, q.id DESC`,
		authorID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions by author: %w", err)
	}
	return result, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike はLIKEパターンのメタ文字をエスケープする。
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// compile-time interface check
var _ QuestionRepository = (*PostgresQuestionRepo)(nil)
