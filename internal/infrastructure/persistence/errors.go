package persistence

import (
	"errors"
	"strings"

	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// translateError maps driver errors onto domain errors. Unknown errors are
// returned unchanged so the caller can wrap them.
func translateError(err error, resource string) error {
	if err == nil {
		return nil
	}
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.NotFound(resource)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.AlreadyExists("%s already exists", resource)
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return shared.InvalidState("%s violates a stock or quantity constraint", resource)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return shared.InvalidInput("%s references a missing record", resource)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if mapped := fromSQLState(pgErr.Code, pgErr.ConstraintName, resource); mapped != nil {
			return mapped
		}
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if mapped := fromSQLState(string(pqErr.Code), pqErr.Constraint, resource); mapped != nil {
			return mapped
		}
	}

	// sqlite reports check and unique failures only in the message
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return shared.AlreadyExists("%s already exists", resource)
	case strings.Contains(msg, "CHECK constraint failed"):
		return shared.InvalidState("%s violates a stock or quantity constraint", resource)
	}
	return err
}

func fromSQLState(code, constraint, resource string) error {
	switch code {
	case "23505":
		return shared.AlreadyExists("%s already exists", resource)
	case "23514":
		return shared.InvalidState("%s violates constraint %s", resource, constraint)
	case "23503":
		return shared.InvalidInput("%s references a missing record", resource)
	case "40001", "40P01":
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// isForeignKeyViolation reports whether a delete failed because other rows
// still reference the target
func isForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23503"
	}
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
