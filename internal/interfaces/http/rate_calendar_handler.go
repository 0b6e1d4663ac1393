package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/rate-calendar-api/internal/application/dto"
	"github.com/jhoicas/rate-calendar-api/internal/application/ratecalendar"
)

// RateCalendarHandler maneja las peticiones HTTP del calendario de tarifas e inventario (protegido).
type RateCalendarHandler struct {
	calendar  *ratecalendar.CalendarUseCase
	rateSheet *ratecalendar.RateSheetUseCase
	validator *requestValidator
	log       zerolog.Logger
}

// NewRateCalendarHandler construye el handler.
func NewRateCalendarHandler(calendar *ratecalendar.CalendarUseCase, rateSheet *ratecalendar.RateSheetUseCase, log zerolog.Logger) *RateCalendarHandler {
	return &RateCalendarHandler{
		calendar:  calendar,
		rateSheet: rateSheet,
		validator: newRequestValidator(),
		log:       log.With().Str("component", "http").Logger(),
	}
}

func (h *RateCalendarHandler) invalid(c *fiber.Ctx, fields []dto.FieldError) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos", Fields: fields})
}

// bind parsea el body y aplica las etiquetas `validate`. Devuelve false si ya respondió 400.
func (h *RateCalendarHandler) bind(c *fiber.Ctx, in any) (bool, error) {
	if err := c.BodyParser(in); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if fields := h.validator.Validate(in); len(fields) > 0 {
		return false, h.invalid(c, fields)
	}
	return true, nil
}

func (h *RateCalendarHandler) windowQuery(c *fiber.Ctx) (dto.WindowQuery, bool, error) {
	var q dto.WindowQuery
	if err := c.QueryParser(&q); err != nil {
		return q, false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	if fields := h.validator.Validate(q); len(fields) > 0 {
		return q, false, h.invalid(c, fields)
	}
	return q, true, nil
}

// GetWindow godoc
// @Summary      Ventana de inventario de un alojamiento
// @Description  Una celda por habitación y fecha de [start, end] (máx. 62 días). Las fechas sin
//
//	registrar se devuelven con price nulo, bloqueo 0 y activas.
//
// @Tags         rate-calendar
// @Security     Bearer
// @Produce      json
// @Param        id     path   string  true  "ID del alojamiento"
// @Param        start  query  string  true  "Fecha inicial YYYY-MM-DD"
// @Param        end    query  string  true  "Fecha final YYYY-MM-DD"
// @Success      200  {object}  dto.WindowResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/rate-calendar/accommodations/{id}/window [get]
func (h *RateCalendarHandler) GetWindow(c *fiber.Ctx) error {
	q, ok, err := h.windowQuery(c)
	if !ok {
		return err
	}
	out, err := h.calendar.LoadWindow(c.Context(), actor(c), c.Params("id"), q.StartDate, q.EndDate)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// ComputeAvailability godoc
// @Summary      Calculadora de disponibilidad
// @Description  remaining = total - booked - blocked; safe_block_limit = total - booked.
// @Tags         rate-calendar
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AvailabilityRequest  true  "total_stock, booked_stock, proposed_blocked_stock"
// @Success      200   {object}  dto.AvailabilityResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/rate-calendar/availability [post]
func (h *RateCalendarHandler) ComputeAvailability(c *fiber.Ctx) error {
	var in dto.AvailabilityRequest
	if ok, err := h.bind(c, &in); !ok {
		return err
	}
	return c.JSON(h.calendar.ComputeAvailability(in))
}

// PreviewSingle godoc
// @Summary      Vista previa del editor de una fecha
// @Tags         rate-calendar
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        roomId  path   string                   true  "ID de la habitación"
// @Param        date    query  string                   true  "Fecha YYYY-MM-DD"
// @Param        body    body   dto.SinglePolicyRequest  true  "price, blocked_stock, is_active"
// @Success      200  {object}  dto.SinglePreviewResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/rate-calendar/rooms/{roomId}/policies/preview [post]
func (h *RateCalendarHandler) PreviewSingle(c *fiber.Ctx) error {
	var in dto.SinglePolicyRequest
	if ok, err := h.bind(c, &in); !ok {
		return err
	}
	out, err := h.calendar.PreviewSingle(c.Context(), actor(c), c.Params("roomId"), c.Query("date"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// SubmitSingle godoc
// @Summary      Guardar la política de una fecha
// @Description  Valida bloqueo + reservas <= stock total y guarda valores absolutos (idempotente).
// @Tags         rate-calendar
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        roomId  path  string                   true  "ID de la habitación"
// @Param        date    path  string                   true  "Fecha YYYY-MM-DD"
// @Param        body    body  dto.SinglePolicyRequest  true  "price (obligatorio), blocked_stock, is_active"
// @Success      200  {object}  dto.SubmitResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.StockConflictResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/rate-calendar/rooms/{roomId}/policies/{date} [put]
func (h *RateCalendarHandler) SubmitSingle(c *fiber.Ctx) error {
	var in dto.SinglePolicyRequest
	if ok, err := h.bind(c, &in); !ok {
		return err
	}
	out, err := h.calendar.SubmitSingle(c.Context(), actor(c), c.Params("roomId"), c.Params("date"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// PreviewBulk godoc
// @Summary      Vista previa del editor por rango
// @Description  Devuelve las fechas del rango filtrado, el máximo de reservas y el bloqueo máximo permitido.
// @Tags         rate-calendar
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        roomId  path  string                 true  "ID de la habitación"
// @Param        body    body  dto.BulkPolicyRequest  true  "start_date, end_date, weekdays, price, blocked_stock, is_active"
// @Success      200  {object}  dto.BulkPreviewResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/rate-calendar/rooms/{roomId}/policies/bulk/preview [post]
func (h *RateCalendarHandler) PreviewBulk(c *fiber.Ctx) error {
	var in dto.BulkPolicyRequest
	if ok, err := h.bind(c, &in); !ok {
		return err
	}
	out, err := h.calendar.PreviewBulk(c.Context(), actor(c), c.Params("roomId"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// SubmitBulk godoc
// @Summary      Guardar la misma política en un rango de fechas
// @Description  Si alguna fecha viola el stock no se guarda ninguna. Un resultado mixto responde 207
//
//	con las fechas fallidas y exige recargar la ventana.
//
// @Tags         rate-calendar
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        roomId  path  string                 true  "ID de la habitación"
// @Param        body    body  dto.BulkPolicyRequest  true  "start_date, end_date, weekdays, price, blocked_stock, is_active"
// @Success      200  {object}  dto.SubmitResponse
// @Success      207  {object}  dto.PartialBatchResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.StockConflictResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/rate-calendar/rooms/{roomId}/policies/bulk [post]
func (h *RateCalendarHandler) SubmitBulk(c *fiber.Ctx) error {
	var in dto.BulkPolicyRequest
	if ok, err := h.bind(c, &in); !ok {
		return err
	}
	out, err := h.calendar.SubmitBulk(c.Context(), actor(c), c.Params("roomId"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// ExportRateSheet godoc
// @Summary      Hoja de tarifas en PDF
// @Tags         rate-calendar
// @Security     Bearer
// @Produce      application/pdf
// @Param        id     path   string  true  "ID del alojamiento"
// @Param        start  query  string  true  "Fecha inicial YYYY-MM-DD"
// @Param        end    query  string  true  "Fecha final YYYY-MM-DD"
// @Success      200  {file}    binary
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/rate-calendar/accommodations/{id}/rate-sheet.pdf [get]
func (h *RateCalendarHandler) ExportRateSheet(c *fiber.Ctx) error {
	q, ok, err := h.windowQuery(c)
	if !ok {
		return err
	}
	accommodationID := c.Params("id")
	doc, err := h.rateSheet.Export(c.Context(), actor(c), accommodationID, q.StartDate, q.EndDate)
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="tarifas-%s-%s.pdf"`, accommodationID, q.StartDate))
	return c.Send(doc)
}
