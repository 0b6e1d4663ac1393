// Package ratecalendar orquesta el calendario de tarifas: carga de ventanas, sesiones de edición
// (una fecha y rango) y exportación. Las reglas viven en internal/domain/ratecalendar.
package ratecalendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/rate-calendar-api/internal/application/dto"
	"github.com/jhoicas/rate-calendar-api/internal/domain"
	"github.com/jhoicas/rate-calendar-api/internal/domain/entity"
	rc "github.com/jhoicas/rate-calendar-api/internal/domain/ratecalendar"
	"github.com/jhoicas/rate-calendar-api/internal/domain/repository"
	"github.com/jhoicas/rate-calendar-api/pkg/clock"
)

// Settings reglas configurables del calendario.
type Settings struct {
	MaxHorizonMonths int
	MaxWindowDays    int
	Location         *time.Location
}

// CalendarUseCase casos de uso del calendario de tarifas e inventario.
type CalendarUseCase struct {
	repo     repository.PolicyRepository
	guard    *SubmissionGuard
	clock    clock.Clock
	settings Settings
	log      zerolog.Logger
}

// NewCalendarUseCase construye el caso de uso.
func NewCalendarUseCase(
	repo repository.PolicyRepository,
	guard *SubmissionGuard,
	clk clock.Clock,
	settings Settings,
	log zerolog.Logger,
) *CalendarUseCase {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	if settings.MaxWindowDays <= 0 {
		settings.MaxWindowDays = 62
	}
	if settings.MaxHorizonMonths <= 0 {
		settings.MaxHorizonMonths = 6
	}
	if guard == nil {
		guard = NewSubmissionGuard()
	}
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &CalendarUseCase{
		repo:     repo,
		guard:    guard,
		clock:    clk,
		settings: settings,
		log:      log.With().Str("component", "rate_calendar").Logger(),
	}
}

// Horizon devuelve el horizonte editable a partir de "hoy" en la zona configurada.
func (uc *CalendarUseCase) Horizon() rc.Horizon {
	return rc.NewHorizon(uc.clock.Now().In(uc.settings.Location), uc.settings.MaxHorizonMonths)
}

// ComputeAvailability expone la calculadora pura para el total en vivo de la UI.
func (uc *CalendarUseCase) ComputeAvailability(in dto.AvailabilityRequest) dto.AvailabilityResponse {
	return toAvailabilityResponse(rc.ComputeAvailability(in.TotalStock, in.BookedStock, in.ProposedBlocked))
}

// LoadWindow carga las políticas de todas las habitaciones de un alojamiento para [start, end].
// Una carga exitosa libera la marca de recarga pendiente de esas habitaciones.
func (uc *CalendarUseCase) LoadWindow(ctx context.Context, actor Actor, accommodationID, startDate, endDate string) (*dto.WindowResponse, error) {
	lw, err := uc.window(ctx, actor, accommodationID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	return lw.out, nil
}

// loadedWindow ventana cargada junto con el alojamiento y el rango ya parseado.
type loadedWindow struct {
	acc        *entity.Accommodation
	start, end time.Time
	out        *dto.WindowResponse
}

func (uc *CalendarUseCase) window(ctx context.Context, actor Actor, accommodationID, startDate, endDate string) (*loadedWindow, error) {
	start, end, err := uc.parseWindow(startDate, endDate)
	if err != nil {
		return nil, err
	}
	acc, err := uc.accommodation(ctx, actor, accommodationID)
	if err != nil {
		return nil, err
	}
	windows, err := uc.repo.LoadWindow(ctx, acc.ID, start, end)
	if err != nil {
		return nil, loadErr(err)
	}

	out := &dto.WindowResponse{
		AccommodationID: acc.ID,
		StartDate:       rc.DateKey(start),
		EndDate:         rc.DateKey(end),
		Rooms:           make([]dto.RoomWindowResponse, 0, len(windows)),
	}
	ids := make([]string, 0, len(windows))
	for _, w := range windows {
		out.Rooms = append(out.Rooms, toRoomWindowResponse(w, start, end))
		ids = append(ids, w.Room.RoomID)
	}
	uc.guard.Clear(ids...)
	return &loadedWindow{acc: acc, start: start, end: end, out: out}, nil
}

func (uc *CalendarUseCase) parseWindow(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := rc.ParseDate(startDate)
	if err != nil {
		return time.Time{}, time.Time{}, domain.Invalid("start", "formato esperado YYYY-MM-DD")
	}
	end, err := rc.ParseDate(endDate)
	if err != nil {
		return time.Time{}, time.Time{}, domain.Invalid("end", "formato esperado YYYY-MM-DD")
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, domain.Invalid("range", "start es posterior a end")
	}
	if rc.DaysInclusive(start, end) > uc.settings.MaxWindowDays {
		return time.Time{}, time.Time{}, domain.Invalid("range", fmt.Sprintf("la ventana no puede superar %d días", uc.settings.MaxWindowDays))
	}
	return start, end, nil
}

// accommodation obtiene el alojamiento y verifica que el actor sea su dueño (o admin).
func (uc *CalendarUseCase) accommodation(ctx context.Context, actor Actor, accommodationID string) (*entity.Accommodation, error) {
	if accommodationID == "" {
		return nil, domain.Invalid("accommodation_id", "es obligatorio")
	}
	acc, err := uc.repo.GetAccommodation(ctx, accommodationID)
	if err != nil {
		return nil, loadErr(err)
	}
	if acc == nil {
		return nil, domain.ErrNotFound
	}
	if !actor.IsAdmin() && acc.PartnerID != actor.PartnerID {
		return nil, domain.ErrForbidden
	}
	return acc, nil
}

// room obtiene la habitación y autoriza al actor sobre su alojamiento.
func (uc *CalendarUseCase) room(ctx context.Context, actor Actor, roomID string) (*entity.RoomInventory, error) {
	if roomID == "" {
		return nil, domain.Invalid("room_id", "es obligatorio")
	}
	room, err := uc.repo.GetRoom(ctx, roomID)
	if err != nil {
		return nil, loadErr(err)
	}
	if room == nil {
		return nil, domain.ErrNotFound
	}
	if _, err := uc.accommodation(ctx, actor, room.AccommodationID); err != nil {
		return nil, err
	}
	return room, nil
}

// roomWindow carga la ventana del alojamiento y devuelve la de la habitación pedida.
func (uc *CalendarUseCase) roomWindow(ctx context.Context, room *entity.RoomInventory, start, end time.Time) (*entity.RoomWindow, error) {
	windows, err := uc.repo.LoadWindow(ctx, room.AccommodationID, start, end)
	if err != nil {
		return nil, loadErr(err)
	}
	for _, w := range windows {
		if w.Room.RoomID == room.RoomID {
			return w, nil
		}
	}
	return nil, domain.ErrNotFound
}

// reload recarga la ventana editada para devolver el estado real tras un envío.
// Si falla, la habitación queda marcada para recargar: nunca se asume el resultado.
func (uc *CalendarUseCase) reload(ctx context.Context, room *entity.RoomInventory, start, end time.Time) *dto.RoomWindowResponse {
	w, err := uc.roomWindow(ctx, room, start, end)
	if err != nil {
		uc.log.Warn().Err(err).Str("room_id", room.RoomID).Msg("no se pudo recargar la ventana tras el envío")
		uc.guard.MarkStale(room.RoomID)
		return nil
	}
	uc.guard.Clear(room.RoomID)
	resp := toRoomWindowResponse(w, start, end)
	return &resp
}

// loadErr normaliza errores de carga a NotFound / Unavailable.
func loadErr(err error) error {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrUnavailable, err)
}

// saveErr conserva conflictos de stock detectados por el backend; lo demás es PersistenceFailure.
func saveErr(err error) error {
	if errors.Is(err, domain.ErrStockConflict) || errors.Is(err, domain.ErrPersistence) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
}
