package database

import (
	"context"
	"database/sql"
	"fmt"
)

type contextKey string

const txKey contextKey = "tx"

// Querier は *sql.DB と *sql.Tx の共通操作。
// リポジトリはこのインターフェース越しにSQLを実行する。
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxBeginner はトランザクション開始用のインターフェース。
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// TxFromContext はコンテキストに格納されたトランザクションを取り出す。
func TxFromContext(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey).(*sql.Tx)
	return tx, ok
}

// ConnFromContext はコンテキストにトランザクションがあればそれを、なければdbを返す。
func ConnFromContext(ctx context.Context, db Querier) Querier {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}
	return db
}

// TxManager はコンテキスト経由でトランザクションを伝播させる。
type TxManager struct {
	db TxBeginner
}

// NewTxManager はTxManagerを生成する。
func NewTxManager(db TxBeginner) *TxManager {
	return &TxManager{db: db}
}

// WithinTx はfnを1つのトランザクション内で実行する。
// fnがエラーを返した場合はロールバックし、そのエラーをそのまま返す。
// すでにトランザクション内であれば新たに開始せず、外側のトランザクションに参加する。
func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := TxFromContext(ctx); ok {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(context.WithValue(ctx, txKey, tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
