package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a unique constraint failure from
// Postgres or SQLite. When constraint is non-empty only violations of that
// named index match.
func IsUniqueViolation(err error, constraint string) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return constraint == "" || pgErr.ConstraintName == constraint
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
		return constraint == "" || pqErr.Constraint == constraint
	}

	msg := err.Error()
	matched := errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
	if !matched {
		return false
	}
	return constraint == "" || strings.Contains(msg, constraint)
}
