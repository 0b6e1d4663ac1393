package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/rate-calendar-api/internal/application/ratecalendar"
	"github.com/jhoicas/rate-calendar-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CalendarUC  *ratecalendar.CalendarUseCase
	RateSheetUC *ratecalendar.RateSheetUseCase
	JWTSecret   string
	Logger      zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Rutas protegidas (Bearer Token + rol partner o admin)
	protected := api.Group("/rate-calendar", AuthMiddleware(deps.JWTSecret), RequireRole(jwt.RolePartner, jwt.RoleAdmin))
	h := NewRateCalendarHandler(deps.CalendarUC, deps.RateSheetUC, deps.Logger)

	protected.Post("/availability", h.ComputeAvailability)

	accommodations := protected.Group("/accommodations")
	accommodations.Get("/:id/window", h.GetWindow)
	accommodations.Get("/:id/rate-sheet.pdf", h.ExportRateSheet)

	rooms := protected.Group("/rooms/:roomId/policies")
	rooms.Post("/preview", h.PreviewSingle)
	rooms.Post("/bulk/preview", h.PreviewBulk)
	rooms.Post("/bulk", h.SubmitBulk)
	rooms.Put("/:date", h.SubmitSingle)
}
