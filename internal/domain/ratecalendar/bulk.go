package ratecalendar

import (
	"time"

	"github.com/jhoicas/rate-calendar-api/internal/domain"
	"github.com/jhoicas/rate-calendar-api/internal/domain/entity"
)

// BulkEdit es la entrada del editor por rango.
// Policies son las políticas cargadas para el rango; las fechas ausentes cuentan con 0 reservas.
type BulkEdit struct {
	Room     entity.RoomInventory
	Start    time.Time
	End      time.Time
	Weekdays WeekdaySet
	Policies []entity.DailyPolicy
	Proposal Proposal
	Horizon  Horizon
}

// BulkPreview resume el conjunto de fechas y la restricción vinculante.
type BulkPreview struct {
	Dates        []time.Time
	MaxBooked    int
	MaxBookedOn  time.Time
	Availability Availability
}

// ExpandRange recorre cada día de [start, end] y conserva los que pasan el filtro.
// Un rango invertido o fuera del horizonte es error de validación; un conjunto vacío es ErrEmptyRange.
func ExpandRange(start, end time.Time, weekdays WeekdaySet, horizon Horizon) ([]time.Time, error) {
	if start.IsZero() || end.IsZero() {
		return nil, domain.Invalid("range", "start_date y end_date son obligatorios")
	}
	start, end = DateOf(start), DateOf(end)
	if start.After(end) {
		return nil, domain.Invalid("range", "start_date es posterior a end_date")
	}
	if err := horizon.Check("start_date", start); err != nil {
		return nil, err
	}
	if err := horizon.Check("end_date", end); err != nil {
		return nil, err
	}
	dates := make([]time.Time, 0, DaysInclusive(start, end))
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if weekdays.Allows(d.Weekday()) {
			dates = append(dates, d)
		}
	}
	if len(dates) == 0 {
		return nil, domain.ErrEmptyRange
	}
	return dates, nil
}

// PreviewBulk expande el rango y calcula la disponibilidad con el máximo de reservas del conjunto.
// Cualquier fecha con menos reservas queda satisfecha si la de más reservas lo está.
func PreviewBulk(in BulkEdit) (*BulkPreview, error) {
	if err := in.Proposal.Validate(); err != nil {
		return nil, err
	}
	dates, err := ExpandRange(in.Start, in.End, in.Weekdays, in.Horizon)
	if err != nil {
		return nil, err
	}
	booked := make(map[string]int, len(in.Policies))
	for _, p := range in.Policies {
		if p.RoomID != "" && p.RoomID != in.Room.RoomID {
			continue
		}
		booked[DateKey(DateOf(p.TargetDate))] = p.BookedStock
	}
	out := &BulkPreview{Dates: dates}
	for i, d := range dates {
		if b := booked[DateKey(d)]; i == 0 || b > out.MaxBooked {
			out.MaxBooked = b
			out.MaxBookedOn = d
		}
	}
	out.Availability = ComputeAvailability(in.Room.TotalStock, out.MaxBooked, in.Proposal.BlockedStock)
	return out, nil
}

// ExpandAndValidateBulkUpdate devuelve un update por fecha del conjunto, todos con los mismos valores.
// Si el bloqueo supera el límite seguro se rechaza el lote completo: cero updates.
func ExpandAndValidateBulkUpdate(in BulkEdit) ([]entity.PolicyUpdate, error) {
	preview, err := PreviewBulk(in)
	if err != nil {
		return nil, err
	}
	if in.Proposal.BlockedStock > preview.Availability.SafeBlockLimit {
		return nil, &domain.StockConflictError{
			RoomID:         in.Room.RoomID,
			Date:           preview.MaxBookedOn,
			TotalStock:     in.Room.TotalStock,
			MaxBooked:      preview.MaxBooked,
			SafeBlockLimit: preview.Availability.SafeBlockLimit,
			Proposed:       in.Proposal.BlockedStock,
		}
	}
	updates := make([]entity.PolicyUpdate, 0, len(preview.Dates))
	for _, d := range preview.Dates {
		updates = append(updates, entity.PolicyUpdate{
			RoomID:       in.Room.RoomID,
			TargetDate:   d,
			Price:        *in.Proposal.Price,
			BlockedStock: in.Proposal.BlockedStock,
			IsActive:     in.Proposal.IsActive,
		})
	}
	return updates, nil
}
