package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const (
	pgCodeUniqueViolation = "23505"
	pgCodeUndefinedTable  = "42P01"
)

// IsUniqueViolation reports whether the provided error references a Postgres
// unique violation. When constraintName is provided, the match is restricted
// to that constraint.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}

	if code, constraint, ok := pgErrorParts(err); ok {
		if code != pgCodeUniqueViolation {
			return false
		}
		if constraintName == "" {
			return true
		}
		return constraint == constraintName
	}

	// Drivers without structured errors (sqlite in tests) only give us
	// the message, which may not carry the constraint name.
	msg := err.Error()
	if constraintName != "" && strings.Contains(msg, constraintName) {
		return true
	}
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// IsUndefinedTable reports whether the error means the backing table does
// not exist. The cart store surfaces this as a deployment-configuration
// failure rather than a generic dependency error.
func IsUndefinedTable(err error) bool {
	if err == nil {
		return false
	}
	if code, _, ok := pgErrorParts(err); ok {
		return code == pgCodeUndefinedTable
	}
	msg := err.Error()
	return strings.Contains(msg, "does not exist") && strings.Contains(msg, "relation") ||
		strings.Contains(msg, "no such table")
}

func pgErrorParts(err error) (code, constraint string, ok bool) {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code, pgxErr.ConstraintName, true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Constraint, true
	}
	return "", "", false
}
