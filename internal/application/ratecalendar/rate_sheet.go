package ratecalendar

import (
	"context"
	"fmt"
)

// RateSheetUseCase exporta la ventana de un alojamiento como hoja de tarifas.
type RateSheetUseCase struct {
	calendar  *CalendarUseCase
	generator RateSheetGenerator
}

// NewRateSheetUseCase construye el caso de uso.
func NewRateSheetUseCase(calendar *CalendarUseCase, generator RateSheetGenerator) *RateSheetUseCase {
	return &RateSheetUseCase{calendar: calendar, generator: generator}
}

// Export carga la ventana (misma autorización que LoadWindow) y genera el PDF.
func (uc *RateSheetUseCase) Export(ctx context.Context, actor Actor, accommodationID, startDate, endDate string) ([]byte, error) {
	lw, err := uc.calendar.window(ctx, actor, accommodationID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	doc, err := uc.generator.GenerateRateSheet(ctx, RateSheet{
		Accommodation: *lw.acc,
		Start:         lw.start,
		End:           lw.end,
		GeneratedAt:   uc.calendar.clock.Now().In(uc.calendar.settings.Location),
		Rooms:         lw.out.Rooms,
	})
	if err != nil {
		return nil, fmt.Errorf("generar hoja de tarifas: %w", err)
	}
	return doc, nil
}
