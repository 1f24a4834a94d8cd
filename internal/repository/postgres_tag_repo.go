package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/qanda/internal/database"
	"github.com/hitoshi/qanda/internal/model"
)

// PostgresTagRepo はPostgreSQLを使用したタグリポジトリ。
type PostgresTagRepo struct {
	db *sql.DB
}

// NewPostgresTagRepo はPostgresTagRepoを生成する。
func NewPostgresTagRepo(db *sql.DB) *PostgresTagRepo {
	return &PostgresTagRepo{db: db}
}

func (r *PostgresTagRepo) conn(ctx context.Context) database.Querier {
	return database.ConnFromContext(ctx, r.db)
}

func (r *PostgresTagRepo) query(ctx context.Context, query string, args ...any) ([]*model.Tag, error) {
	rows, err := r.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []*model.Tag{}
	for rows.Next() {
		tag := &model.Tag{}
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.CreatedAt); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tags, nil
}

// FindByNames は名前が一致するタグを一括取得する。
func (r *PostgresTagRepo) FindByNames(ctx context.Context, names []string) ([]*model.Tag, error) {
	if len(names) == 0 {
		return []*model.Tag{}, nil
	}
	tags, err := r.query(ctx,
		`SELECT id, name, created_at FROM tags WHERE name = ANY($1)`,
		pq.Array(names),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find tags by names: %w", err)
	}
	return tags, nil
}

// CreateMany はタグを一括作成する。
// 競合した名前は ON CONFLICT DO NOTHING で読み飛ばされ、結果に含まれない。
func (r *PostgresTagRepo) CreateMany(ctx context.Context, names []string) ([]*model.Tag, error) {
	if len(names) == 0 {
		return []*model.Tag{}, nil
	}
	tags, err := r.query(ctx,
		`INSERT INTO tags (name)
		 SELECT unnest($1::varchar[])
		 ON CONFLICT (name) DO NOTHING
		 RETURNING id, name, created_at`,
		pq.Array(names),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tags: %w", translatePQError(err, nil))
	}
	return tags, nil
}

// List は全タグを名前順に取得する。
func (r *PostgresTagRepo) List(ctx context.Context) ([]*model.Tag, error) {
	tags, err := r.query(ctx, `SELECT id, name, created_at FROM tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

// compile-time interface check
var _ TagRepository = (*PostgresTagRepo)(nil)
