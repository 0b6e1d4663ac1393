package ratecalendar

import (
	"context"
	"time"

	"github.com/jhoicas/rate-calendar-api/internal/application/dto"
	"github.com/jhoicas/rate-calendar-api/internal/domain/entity"
)

// Actor es la identidad extraída del token (la autenticación es externa).
type Actor struct {
	UserID    string
	PartnerID string
	Role      string
}

// IsAdmin indica si el actor puede operar sobre cualquier alojamiento.
func (a Actor) IsAdmin() bool { return a.Role == "admin" }

// RateSheet datos de la hoja de tarifas exportable.
type RateSheet struct {
	Accommodation entity.Accommodation
	Start         time.Time
	End           time.Time
	GeneratedAt   time.Time
	Rooms         []dto.RoomWindowResponse
}

// RateSheetGenerator genera la representación PDF de una ventana.
type RateSheetGenerator interface {
	GenerateRateSheet(ctx context.Context, sheet RateSheet) ([]byte, error)
}
