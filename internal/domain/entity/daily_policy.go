package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyPolicy es la política de precio/stock de una habitación para una noche.
// Price nil significa "no registrado", distinto de precio 0.
// BookedStock lo reporta el sistema de reservas externo y nunca se edita aquí.
type DailyPolicy struct {
	RoomID       string
	TargetDate   time.Time
	Price        *decimal.Decimal
	BlockedStock int
	BookedStock  int
	IsActive     bool
	UpdatedAt    time.Time
}

// Registered indica si el partner ya fijó un precio para la fecha.
func (p DailyPolicy) Registered() bool { return p.Price != nil }

// EmptyPolicy es la plantilla para una fecha sin registrar.
func EmptyPolicy(roomID string, date time.Time) DailyPolicy {
	return DailyPolicy{RoomID: roomID, TargetDate: date, IsActive: true}
}

// PolicyUpdate es la solicitud de escritura que se envía al colaborador de persistencia.
// Los valores son absolutos: guardar dos veces el mismo update deja el mismo resultado.
type PolicyUpdate struct {
	RoomID       string
	TargetDate   time.Time
	Price        decimal.Decimal
	BlockedStock int
	IsActive     bool
}
