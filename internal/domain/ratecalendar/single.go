package ratecalendar

import (
	"time"

	"github.com/jhoicas/rate-calendar-api/internal/domain"
	"github.com/jhoicas/rate-calendar-api/internal/domain/entity"
)

// SingleEdit es la entrada del editor de una fecha.
// Existing nil equivale a la plantilla vacía (fecha no registrada).
type SingleEdit struct {
	Room       entity.RoomInventory
	TargetDate time.Time
	Existing   *entity.DailyPolicy
	Proposal   Proposal
	Horizon    Horizon
}

// PreviewSingle valida las precondiciones y calcula la disponibilidad con las reservas de la fecha.
// No rechaza por conflicto de stock: la UI muestra el total en vivo.
func PreviewSingle(in SingleEdit) (Availability, error) {
	if err := in.Proposal.Validate(); err != nil {
		return Availability{}, err
	}
	if in.TargetDate.IsZero() {
		return Availability{}, domain.Invalid("target_date", "la fecha es obligatoria")
	}
	if err := in.Horizon.Check("target_date", in.TargetDate); err != nil {
		return Availability{}, err
	}
	booked := 0
	if in.Existing != nil {
		booked = in.Existing.BookedStock
	}
	return ComputeAvailability(in.Room.TotalStock, booked, in.Proposal.BlockedStock), nil
}

// ValidateAndBuildSingleUpdate valida una fecha y arma exactamente un update.
// Si remaining < 0 devuelve *domain.StockConflictError con las reservas y el límite seguro.
func ValidateAndBuildSingleUpdate(in SingleEdit) (entity.PolicyUpdate, error) {
	av, err := PreviewSingle(in)
	if err != nil {
		return entity.PolicyUpdate{}, err
	}
	date := DateOf(in.TargetDate)
	if !av.Safe {
		return entity.PolicyUpdate{}, &domain.StockConflictError{
			RoomID:         in.Room.RoomID,
			Date:           date,
			TotalStock:     in.Room.TotalStock,
			MaxBooked:      in.Room.TotalStock - av.SafeBlockLimit,
			SafeBlockLimit: av.SafeBlockLimit,
			Proposed:       in.Proposal.BlockedStock,
		}
	}
	return entity.PolicyUpdate{
		RoomID:       in.Room.RoomID,
		TargetDate:   date,
		Price:        *in.Proposal.Price,
		BlockedStock: in.Proposal.BlockedStock,
		IsActive:     in.Proposal.IsActive,
	}, nil
}
