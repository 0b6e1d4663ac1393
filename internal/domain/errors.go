package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrForbidden          = errors.New("acceso denegado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrUnavailable        = errors.New("servicio de persistencia no disponible")
	ErrStockConflict      = errors.New("el bloqueo supera el stock disponible")
	ErrEmptyRange         = errors.New("el rango no contiene fechas")
	ErrPersistence        = errors.New("fallo al guardar la política")
	ErrPartialBatch       = errors.New("lote aplicado parcialmente")
	ErrSubmissionInFlight = errors.New("ya hay un envío en curso para la habitación")
	ErrReloadRequired     = errors.New("la ventana debe recargarse antes de editar")
)

// ValidationError describe una entrada rechazada antes de cualquier llamada de red.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is permite errors.Is(err, ErrInvalidInput).
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// Invalid construye un *ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// StockConflictError reporta el límite vinculante para que el partner corrija el bloqueo.
// En un rango, Date es la fecha con más reservas del conjunto.
type StockConflictError struct {
	RoomID         string
	Date           time.Time
	TotalStock     int
	MaxBooked      int
	SafeBlockLimit int
	Proposed       int
}

func (e *StockConflictError) Error() string {
	limit := e.SafeBlockLimit
	if limit < 0 {
		limit = 0
	}
	return fmt.Sprintf("habitación %s: %d unidades ya reservadas, el bloqueo máximo permitido es %d (propuesto %d)",
		e.RoomID, e.MaxBooked, limit, e.Proposed)
}

func (e *StockConflictError) Is(target error) bool { return target == ErrStockConflict }

// PartialBatchError indica que parte de un lote se guardó y parte no.
// La ventana queda en un estado mixto y debe recargarse.
type PartialBatchError struct {
	RoomID    string
	BatchID   string
	Succeeded []time.Time
	Failed    []time.Time
	Cause     error
}

func (e *PartialBatchError) Error() string {
	failed := make([]string, 0, len(e.Failed))
	for _, d := range e.Failed {
		failed = append(failed, d.Format("2006-01-02"))
	}
	return fmt.Sprintf("habitación %s: %d fechas guardadas, %d fallidas (%s): %v",
		e.RoomID, len(e.Succeeded), len(e.Failed), strings.Join(failed, ", "), e.Cause)
}

func (e *PartialBatchError) Is(target error) bool { return target == ErrPartialBatch }

func (e *PartialBatchError) Unwrap() error { return e.Cause }
