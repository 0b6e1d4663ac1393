package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/rate-calendar-api/internal/domain"
)

const (
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeSerializationFail   = "40001"
	codeDeadlockDetected    = "40P01"
)

// pgCode devuelve el SQLSTATE del error o "" si no viene de PostgreSQL.
func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// readErr clasifica un error de lectura: todo fallo de la base es Unavailable.
func readErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrUnavailable, op, err)
}

// writeErr clasifica un error de escritura de políticas.
func writeErr(op string, err error) error {
	switch pgCode(err) {
	case codeForeignKeyViolation:
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	case codeCheckViolation:
		return fmt.Errorf("%s: %w", op, domain.Invalid("blocked_stock", "viola una restricción de la tabla daily_policies"))
	case codeSerializationFail, codeDeadlockDetected:
		return fmt.Errorf("%w: %s: conflicto de concurrencia, reintente: %w", domain.ErrPersistence, op, err)
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrPersistence, op, err)
}
