// Package ratecalendar contiene las reglas puras del calendario de tarifas e inventario:
// disponibilidad derivada, editor de una fecha y editor por rango.
// No tiene estado ni efectos secundarios; la persistencia y las sesiones viven en la capa de aplicación.
package ratecalendar

import (
	"time"

	"github.com/jhoicas/rate-calendar-api/internal/domain"
)

// DateLayout es el formato de fecha (sin hora) usado en la API y como clave de mapas.
const DateLayout = "2006-01-02"

// DateOf devuelve la fecha calendario de t como medianoche UTC.
// Se conserva el año/mes/día de la zona de t.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate interpreta "YYYY-MM-DD".
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, domain.Invalid("date", "formato esperado YYYY-MM-DD")
	}
	return t, nil
}

// DateKey es la representación canónica de una fecha para indexar políticas.
func DateKey(t time.Time) string { return t.Format(DateLayout) }

// DaysInclusive cuenta los días de [start, end]; 0 si el rango está invertido.
func DaysInclusive(start, end time.Time) int {
	start, end = DateOf(start), DateOf(end)
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours()/24) + 1
}

// Horizon limita las fechas editables a [Today, Limit].
// El valor cero no impone límites.
type Horizon struct {
	Today time.Time
	Limit time.Time
}

// NewHorizon construye el horizonte a partir de "hoy" y un máximo de meses.
func NewHorizon(today time.Time, maxMonths int) Horizon {
	today = DateOf(today)
	return Horizon{Today: today, Limit: today.AddDate(0, maxMonths, 0)}
}

// IsZero indica que no hay horizonte configurado.
func (h Horizon) IsZero() bool { return h.Today.IsZero() && h.Limit.IsZero() }

// Check valida que la fecha esté dentro del horizonte.
func (h Horizon) Check(field string, t time.Time) error {
	if h.IsZero() {
		return nil
	}
	t = DateOf(t)
	if !h.Today.IsZero() && t.Before(h.Today) {
		return domain.Invalid(field, "la fecha ya pasó")
	}
	if !h.Limit.IsZero() && t.After(h.Limit) {
		return domain.Invalid(field, "la fecha supera el horizonte máximo ("+DateKey(h.Limit)+")")
	}
	return nil
}

// ClampRange replica los selectores de fecha de la consola: start no anterior a hoy,
// end no posterior al límite y nunca anterior a start. El motor no la invoca; es para el llamador.
func (h Horizon) ClampRange(start, end time.Time) (time.Time, time.Time) {
	start, end = DateOf(start), DateOf(end)
	if !h.Today.IsZero() && start.Before(h.Today) {
		start = h.Today
	}
	if !h.Limit.IsZero() && end.After(h.Limit) {
		end = h.Limit
	}
	if end.Before(start) {
		end = start
	}
	return start, end
}
