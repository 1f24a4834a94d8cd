// Package tag はタグ名の正規化とタグ行の解決（検索・作成）を提供する。
package tag

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hitoshi/qanda/internal/model"
	"github.com/hitoshi/qanda/internal/repository"
)

const (
	// MaxTagsPerQuestion は1つの質問に付与できるタグ数の上限。
	MaxTagsPerQuestion = 5
	// MaxNameLength はタグ名の最大文字数。
	MaxNameLength = 50
)

// Normalize はタグ名の前後の空白を除去して小文字化し、空の名前と重複を取り除く。
// 最初に出現した順序を保持する。Normalize(Normalize(x)) == Normalize(x)。
func Normalize(names []string) []string {
	result := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		n := strings.ToLower(strings.TrimSpace(name))
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		result = append(result, n)
	}
	return result
}

// Validate は正規化済みのタグ名が質問に付与できるかを検証する。
func Validate(normalized []string) error {
	if len(normalized) > MaxTagsPerQuestion {
		return model.NewTooManyTagsError(MaxTagsPerQuestion)
	}
	for _, name := range normalized {
		if utf8.RuneCountInString(name) > MaxNameLength {
			return model.NewValidationError("tags", fmt.Sprintf("タグ名は%d文字以内で指定してください: %s", MaxNameLength, name))
		}
	}
	return nil
}

// Resolver はタグ名から既存のタグ行を引き当て、存在しないものを作成する。
type Resolver struct {
	repo repository.TagRepository
}

// NewResolver はResolverを生成する。
func NewResolver(repo repository.TagRepository) *Resolver {
	return &Resolver{repo: repo}
}

// Resolve は正規化した各名前に対応するタグを1件ずつ返す（順序は保証しない）。
// 既存タグは一括検索し、不足分のみ一括作成する。作成時に他のトランザクションと
// 競合した名前は再検索して補う。件数の上限は呼び出し側で検証すること。
func (r *Resolver) Resolve(ctx context.Context, names []string) ([]*model.Tag, error) {
	normalized := Normalize(names)
	if len(normalized) == 0 {
		return []*model.Tag{}, nil
	}

	existing, err := r.repo.FindByNames(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to look up tags: %w", err)
	}

	byName := make(map[string]*model.Tag, len(normalized))
	for _, t := range existing {
		byName[t.Name] = t
	}

	missing := missingNames(normalized, byName)
	if len(missing) == 0 {
		return collect(normalized, byName), nil
	}

	created, err := r.repo.CreateMany(ctx, missing)
	if err != nil {
		return nil, fmt.Errorf("failed to create tags: %w", err)
	}
	for _, t := range created {
		byName[t.Name] = t
	}

	// 他のトランザクションが先に作成した名前
	if raced := missingNames(normalized, byName); len(raced) > 0 {
		found, err := r.repo.FindByNames(ctx, raced)
		if err != nil {
			return nil, fmt.Errorf("failed to look up concurrently created tags: %w", err)
		}
		for _, t := range found {
			byName[t.Name] = t
		}
		if still := missingNames(normalized, byName); len(still) > 0 {
			return nil, fmt.Errorf("tags could not be resolved: %v", still)
		}
	}

	return collect(normalized, byName), nil
}

// List は全タグを名前順に返す。
func (r *Resolver) List(ctx context.Context) ([]*model.Tag, error) {
	tags, err := r.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

func missingNames(names []string, byName map[string]*model.Tag) []string {
	var missing []string
	for _, n := range names {
		if _, ok := byName[n]; !ok {
			missing = append(missing, n)
		}
	}
	return missing
}

func collect(names []string, byName map[string]*model.Tag) []*model.Tag {
	result := make([]*model.Tag, 0, len(names))
	for _, n := range names {
		result = append(result, byName[n])
	}
	return result
}
