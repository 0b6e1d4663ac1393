package ratecalendar

import (
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/rate-calendar-api/internal/domain"
)

// WeekdaySet es un conjunto de días de la semana. Vacío = todos.
type WeekdaySet uint8

// NewWeekdaySet construye el conjunto; los duplicados se colapsan.
func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s |= 1 << uint(d)
	}
	return s
}

// IsEmpty indica que no hay filtro.
func (s WeekdaySet) IsEmpty() bool { return s == 0 }

// Contains indica si d pertenece al conjunto.
func (s WeekdaySet) Contains(d time.Weekday) bool { return s&(1<<uint(d)) != 0 }

// Allows aplica la regla del filtro: vacío acepta cualquier día.
func (s WeekdaySet) Allows(d time.Weekday) bool { return s.IsEmpty() || s.Contains(d) }

// Days devuelve los días del conjunto en orden domingo..sábado.
func (s WeekdaySet) Days() []time.Weekday {
	var out []time.Weekday
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s.Contains(d) {
			out = append(out, d)
		}
	}
	return out
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// ParseWeekdays acepta nombres en inglés (cortos o largos) o enteros 0..6 (0 = domingo).
func ParseWeekdays(values []string) (WeekdaySet, error) {
	var s WeekdaySet
	for _, v := range values {
		key := strings.ToLower(strings.TrimSpace(v))
		if d, ok := weekdayNames[key]; ok {
			s |= NewWeekdaySet(d)
			continue
		}
		n, err := strconv.Atoi(key)
		if err != nil || n < 0 || n > 6 {
			return 0, domain.Invalid("weekdays", "día de la semana desconocido: "+v)
		}
		s |= NewWeekdaySet(time.Weekday(n))
	}
	return s, nil
}
