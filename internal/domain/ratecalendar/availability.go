package ratecalendar

// Availability es el resultado de la calculadora de disponibilidad derivada.
type Availability struct {
	Remaining      int
	Safe           bool
	SafeBlockLimit int
}

// ComputeAvailability calcula remaining = total - reservadas - bloqueo propuesto.
// En modo rango, bookedStock debe ser el máximo de reservas del conjunto de fechas.
// Función pura: se invoca en cada cambio del valor propuesto.
func ComputeAvailability(totalStock, bookedStock, proposedBlocked int) Availability {
	limit := totalStock - bookedStock
	remaining := limit - proposedBlocked
	return Availability{
		Remaining:      remaining,
		Safe:           remaining >= 0,
		SafeBlockLimit: limit,
	}
}
