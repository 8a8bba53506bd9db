package store

import (
	"errors"
	"fmt"
	"strings"

	"foodmap/internal/apperr"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	// class 22 data exception: numeric overflow, invalid text representation...
	pgDataExceptionClass = "22"
)

// classify 將 driver 錯誤轉為 apperr 分類，並保留 "Op: cause" 的包裝
func classify(op, entity string, err error) error {
	wrapped := fmt.Errorf("%s: %w", op, err)

	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return apperr.Wrap(apperr.KindNotFound, entity+" not found", wrapped)
	case errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation:
		return apperr.Wrap(apperr.KindConflict, entity+" already exists", wrapped)
	case errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation:
		return apperr.Wrap(apperr.KindNotFound, "referenced record not found", wrapped)
	case errors.As(err, &pgErr) && (pgErr.Code == pgCheckViolation || strings.HasPrefix(pgErr.Code, pgDataExceptionClass)):
		return apperr.Wrap(apperr.KindValidation, "invalid "+entity+" data", wrapped)
	default:
		return apperr.Dependency("database error", wrapped)
	}
}

func notFound(op, entity string) error {
	return apperr.Wrap(apperr.KindNotFound, entity+" not found", fmt.Errorf("%s: %w", op, pgx.ErrNoRows))
}
