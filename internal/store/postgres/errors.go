package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// mapError maps PostgreSQL-specific errors onto readable failures. Returns
// the original error when it is not a PostgreSQL error or doesn't match a
// known class.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch {
	case pgErr.Code == pgerrcode.UniqueViolation:
		return fmt.Errorf("duplicate snapshot row (%s): %w", pgErr.ConstraintName, err)
	case pgerrcode.IsInsufficientResources(pgErr.Code):
		return fmt.Errorf("database out of resources: %w", err)
	case pgerrcode.IsConnectionException(pgErr.Code):
		return fmt.Errorf("database connection failed: %w", err)
	default:
		return err
	}
}
