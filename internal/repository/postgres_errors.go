package repository

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/hitoshi/qanda/internal/model"
)

// PostgreSQLのSQLSTATE
const (
	pgForeignKeyViolation pq.ErrorCode = "23503"
	pgUniqueViolation     pq.ErrorCode = "23505"
)

// translatePQError は制約違反をドメインエラーに変換する。
// byConstraint に登録された制約名の違反は対応するエラーに、
// 登録のない一意制約違反は INTEGRITY_CONFLICT に変換する。
// それ以外のエラーはそのまま返す。
func translatePQError(err error, byConstraint map[string]error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code {
	case pgForeignKeyViolation:
		if mapped, ok := byConstraint[pqErr.Constraint]; ok {
			return mapped
		}
	case pgUniqueViolation:
		if mapped, ok := byConstraint[pqErr.Constraint]; ok {
			return mapped
		}
		return model.NewIntegrityConflictError(pqErr.Constraint)
	}
	return err
}

// nullString は空文字列をNULLとして扱うsql.NullStringを返す。
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullStringValue はsql.NullStringから文字列を取得する。
func nullStringValue(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// rowScanner は *sql.Row と *sql.Rows の共通インターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}
