package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNoRows aliases pgx.ErrNoRows so callers can check absence without
// importing pgx directly.
var ErrNoRows = pgx.ErrNoRows

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// IsUniqueViolation is the exported form for services that need to map
// conflicts (duplicate email, duplicate enrollment) to domain errors.
func IsUniqueViolation(err error) bool {
	return isUniqueViolation(err)
}
