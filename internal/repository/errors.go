package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"parcel-service/internal/apperr"
)

// IsDuplicate - signals that the error is a duplicate key violation.
func IsDuplicate(err error) bool {
	var pgerr *pgconn.PgError
	return errors.As(err, &pgerr) && pgerr.Code == "23505"
}

// IsNotFound - signals that the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// casResult turns the outcome of a version-guarded UPDATE into an error.
func casResult(tag pgconn.CommandTag, err error, what string, id int64) error {
	if err != nil {
		return fmt.Errorf("update %s %d: %w", what, id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s %d", apperr.ErrConcurrencyConflict, what, id)
	}
	return nil
}
