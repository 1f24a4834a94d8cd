// Package repository はデータ永続化のインターフェースとPostgreSQL実装を定義する。
package repository

import (
	"context"

	"github.com/hitoshi/qanda/internal/model"
)

// TxManager は複数のリポジトリ呼び出しを1つのトランザクションにまとめる。
// fn に渡されたコンテキストを使った呼び出しは同じトランザクションに参加する。
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository はユーザーのシャドウレコードの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// Upsert はユーザーを作成し、既存の場合はプロフィール項目を上書きする。
	// 空文字列の項目はNULLとして保存される。
	Upsert(ctx context.Context, user *model.User) (*model.User, error)

	// EnsureExists はプロフィールが空のスタブユーザーを作成する。既存の場合は何もしない。
	EnsureExists(ctx context.Context, id string) error

	// Statistics はユーザーの投稿数・採用数・獲得投票数を集計する。
	Statistics(ctx context.Context, id string) (*model.UserStatistics, error)
}

// QuestionRepository は質問の永続化と集計読み取りのインターフェース。
type QuestionRepository interface {
	// FindByID は指定IDの質問を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Question, error)

	// LockByID は指定IDの質問行を FOR UPDATE でロックして取得する。
	// トランザクション内で呼び出すこと。見つからない場合はnilを返す。
	LockByID(ctx context.Context, id int64) (*model.Question, error)

	// Create は質問を作成し、採番されたIDとタイムスタンプを設定する。
	Create(ctx context.Context, question *model.Question) error

	// LinkTags は質問にタグを紐付ける。既存の紐付けは無視される。
	LinkTags(ctx context.Context, questionID int64, tagIDs []int64) error

	// FindAggregateByID は集計値付きの質問を取得する。見つからない場合はnilを返す。
	FindAggregateByID(ctx context.Context, id int64) (*model.QuestionAggregate, error)

	// ListAggregates はフィルタに従って集計値付きの質問一覧を取得する。
	ListAggregates(ctx context.Context, filter model.QuestionFilter, offset, limit int) ([]*model.QuestionAggregate, error)

	// SearchAggregates はタイトルまたは本文に部分一致する質問を新しい順に最大limit件取得する。
	SearchAggregates(ctx context.Context, text string, limit int) ([]*model.QuestionAggregate, error)

	// ListAggregatesByAuthor は指定ユーザーが投稿した質問を新しい順に取得する。
	ListAggregatesByAuthor(ctx context.Context, authorID string) ([]*model.QuestionAggregate, error)
}

// AnswerRepository は回答の永続化と集計読み取りのインターフェース。
type AnswerRepository interface {
	// FindByID は指定IDの回答を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Answer, error)

	// Create は未採用の回答を作成し、採番されたIDとタイムスタンプを設定する。
	Create(ctx context.Context, answer *model.Answer) error

	// ListAggregatesByQuestion は質問の回答を採用済み優先、新しい順に取得する。
	ListAggregatesByQuestion(ctx context.Context, questionID int64) ([]*model.AnswerAggregate, error)

	// ListAggregatesByAuthor は指定ユーザーが投稿した回答を新しい順に取得する。
	ListAggregatesByAuthor(ctx context.Context, authorID string) ([]*model.AnswerAggregate, error)

	// UnacceptOthers は質問の回答のうちkeepAnswerID以外の採用を解除する。
	UnacceptOthers(ctx context.Context, questionID, keepAnswerID int64) error

	// MarkAccepted は回答を採用済みにする。状態が変化した場合にtrueを返す。
	MarkAccepted(ctx context.Context, answerID int64) (bool, error)
}

// TagRepository はタグの永続化インターフェース。
type TagRepository interface {
	// FindByNames は名前が一致するタグを一括取得する。存在しない名前は結果に含まれない。
	FindByNames(ctx context.Context, names []string) ([]*model.Tag, error)

	// CreateMany はタグを一括作成する。
	// 既存（他トランザクションが先に作成したものを含む）の名前は作成されず結果にも含まれない。
	CreateMany(ctx context.Context, names []string) ([]*model.Tag, error)

	// List は全タグを名前順に取得する。
	List(ctx context.Context) ([]*model.Tag, error)
}

// VoteRepository は投票の永続化インターフェース。
type VoteRepository interface {
	// Upsert は(対象, ユーザー)の投票を作成し、既存の場合は投票値を上書きする。
	Upsert(ctx context.Context, vote *model.Vote) error

	// Sum は対象への投票値の合計を返す。投票がない場合は0を返す。
	Sum(ctx context.Context, target model.VoteTarget, itemID int64) (int, error)
}
