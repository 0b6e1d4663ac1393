package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/rate-calendar-api/internal/application/dto"
	"github.com/jhoicas/rate-calendar-api/internal/domain"
	rc "github.com/jhoicas/rate-calendar-api/internal/domain/ratecalendar"
)

// writeError traduce errores de dominio a status HTTP y cuerpo JSON.
func writeError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	// Antes que el conflicto: la causa de un lote parcial puede ser un conflicto de stock.
	var partial *domain.PartialBatchError
	if errors.As(err, &partial) {
		return c.Status(fiber.StatusMultiStatus).JSON(dto.PartialBatchResponse{
			Code:           "PARTIAL_BATCH",
			BatchID:        partial.BatchID,
			Message:        "el lote se aplicó parcialmente; recargue la ventana antes de volver a editar",
			Succeeded:      dateKeys(partial.Succeeded),
			Failed:         dateKeys(partial.Failed),
			ReloadRequired: true,
		})
	}

	var conflict *domain.StockConflictError
	if errors.As(err, &conflict) {
		resp := dto.StockConflictResponse{
			Code:           "STOCK_CONFLICT",
			Message:        conflict.Error(),
			RoomID:         conflict.RoomID,
			MaxBooked:      conflict.MaxBooked,
			SafeBlockLimit: max(conflict.SafeBlockLimit, 0),
			Proposed:       conflict.Proposed,
		}
		if !conflict.Date.IsZero() {
			resp.Date = rc.DateKey(conflict.Date)
		}
		return c.Status(fiber.StatusConflict).JSON(resp)
	}

	var invalid *domain.ValidationError
	if errors.As(err, &invalid) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code:    "VALIDATION",
			Message: invalid.Error(),
			Fields:  []dto.FieldError{{Field: invalid.Field, Rule: invalid.Reason}},
		})
	}

	switch {
	case errors.Is(err, domain.ErrStockConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "STOCK_CONFLICT", Message: "el backend rechazó el bloqueo por falta de stock; recargue la ventana"})
	case errors.Is(err, domain.ErrEmptyRange):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "EMPTY_RANGE", Message: "el rango y el filtro de días no contienen fechas"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "alojamiento o habitación no encontrado"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	case errors.Is(err, domain.ErrSubmissionInFlight):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "SUBMISSION_IN_FLIGHT", Message: err.Error()})
	case errors.Is(err, domain.ErrReloadRequired):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "RELOAD_REQUIRED", Message: err.Error()})
	case errors.Is(err, domain.ErrPersistence):
		log.Error().Err(err).Str("path", c.Path()).Msg("fallo de persistencia")
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "PERSISTENCE", Message: "no se pudo guardar la política, intente de nuevo"})
	case errors.Is(err, domain.ErrUnavailable):
		log.Error().Err(err).Str("path", c.Path()).Msg("backend de políticas no disponible")
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "UNAVAILABLE", Message: "no se pudo cargar el inventario, intente más tarde"})
	}
	log.Error().Err(err).Str("path", c.Path()).Msg("error no clasificado")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

func dateKeys(dates []time.Time) []string {
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, rc.DateKey(d))
	}
	return out
}
