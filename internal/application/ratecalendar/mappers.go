package ratecalendar

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/rate-calendar-api/internal/application/dto"
	"github.com/jhoicas/rate-calendar-api/internal/domain/entity"
	rc "github.com/jhoicas/rate-calendar-api/internal/domain/ratecalendar"
)

// toProposal: IsActive omitido equivale a abierto a la venta.
func toProposal(price *decimal.Decimal, blocked int, active *bool) rc.Proposal {
	isActive := true
	if active != nil {
		isActive = *active
	}
	return rc.Proposal{Price: price, BlockedStock: blocked, IsActive: isActive}
}

func toAvailabilityResponse(av rc.Availability) dto.AvailabilityResponse {
	return dto.AvailabilityResponse{
		Remaining:      av.Remaining,
		Safe:           av.Safe,
		SafeBlockLimit: av.SafeBlockLimit,
	}
}

// policyOn devuelve la política registrada de la fecha o nil.
func policyOn(w *entity.RoomWindow, date time.Time) *entity.DailyPolicy {
	key := rc.DateKey(rc.DateOf(date))
	for i := range w.Policies {
		if rc.DateKey(rc.DateOf(w.Policies[i].TargetDate)) == key {
			return &w.Policies[i]
		}
	}
	return nil
}

// toRoomWindowResponse produce una celda por fecha de [start, end]; las no registradas usan la plantilla vacía.
func toRoomWindowResponse(w *entity.RoomWindow, start, end time.Time) dto.RoomWindowResponse {
	byDate := make(map[string]entity.DailyPolicy, len(w.Policies))
	for _, p := range w.Policies {
		byDate[rc.DateKey(rc.DateOf(p.TargetDate))] = p
	}
	out := dto.RoomWindowResponse{
		RoomID:     w.Room.RoomID,
		Name:       w.Room.Name,
		TotalStock: w.Room.TotalStock,
		Days:       make([]dto.DayPolicyResponse, 0, rc.DaysInclusive(start, end)),
	}
	for d := rc.DateOf(start); !d.After(rc.DateOf(end)); d = d.AddDate(0, 0, 1) {
		p, ok := byDate[rc.DateKey(d)]
		if !ok {
			p = entity.EmptyPolicy(w.Room.RoomID, d)
		}
		out.Days = append(out.Days, dto.DayPolicyResponse{
			Date:         rc.DateKey(d),
			Weekday:      d.Weekday().String(),
			Price:        p.Price,
			Registered:   p.Registered(),
			BlockedStock: p.BlockedStock,
			BookedStock:  p.BookedStock,
			Remaining:    rc.Remaining(w.Room, p),
			IsActive:     p.IsActive,
			Sellable:     rc.Sellable(w.Room, p),
		})
	}
	return out
}

func dateKeys(dates []time.Time) []string {
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, rc.DateKey(d))
	}
	return out
}

// weekdayKeys devuelve el filtro normalizado ("sun".."sat"); vacío = todos los días.
func weekdayKeys(s rc.WeekdaySet) []string {
	out := make([]string, 0, 7)
	for _, d := range s.Days() {
		out = append(out, strings.ToLower(d.String()[:3]))
	}
	return out
}
