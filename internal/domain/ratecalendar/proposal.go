package ratecalendar

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/rate-calendar-api/internal/domain"
	"github.com/jhoicas/rate-calendar-api/internal/domain/entity"
)

// Proposal son los valores que el partner quiere aplicar a una o varias fechas.
type Proposal struct {
	Price        *decimal.Decimal
	BlockedStock int
	IsActive     bool
}

// Validate revisa las precondiciones que no dependen de las reservas:
// precio presente, entero y no negativo; bloqueo no negativo.
func (p Proposal) Validate() error {
	if p.Price == nil {
		return domain.Invalid("price", "el precio es obligatorio")
	}
	if p.Price.IsNegative() {
		return domain.Invalid("price", "el precio no puede ser negativo")
	}
	if !p.Price.IsInteger() {
		return domain.Invalid("price", "el precio debe ser un entero")
	}
	if p.BlockedStock < 0 {
		return domain.Invalid("blocked_stock", "el bloqueo no puede ser negativo")
	}
	return nil
}

// Remaining devuelve total - bloqueadas - reservadas para una política existente.
func Remaining(room entity.RoomInventory, p entity.DailyPolicy) int {
	return room.TotalStock - p.BlockedStock - p.BookedStock
}

// Sellable: activa, con unidades restantes y precio registrado.
func Sellable(room entity.RoomInventory, p entity.DailyPolicy) bool {
	return p.IsActive && p.Registered() && Remaining(room, p) > 0
}
