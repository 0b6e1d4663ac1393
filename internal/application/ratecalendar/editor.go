package ratecalendar

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/rate-calendar-api/internal/application/dto"
	"github.com/jhoicas/rate-calendar-api/internal/domain"
	"github.com/jhoicas/rate-calendar-api/internal/domain/entity"
	rc "github.com/jhoicas/rate-calendar-api/internal/domain/ratecalendar"
	"github.com/jhoicas/rate-calendar-api/internal/domain/repository"
)

// singleInput es la entrada ya validada localmente del editor de una fecha.
type singleInput struct {
	date     time.Time
	proposal rc.Proposal
}

func (uc *CalendarUseCase) parseSingle(targetDate string, in dto.SinglePolicyRequest) (singleInput, error) {
	date, err := rc.ParseDate(targetDate)
	if err != nil {
		return singleInput{}, domain.Invalid("target_date", "formato esperado YYYY-MM-DD")
	}
	p := toProposal(in.Price, in.BlockedStock, in.IsActive)
	if err := p.Validate(); err != nil {
		return singleInput{}, err
	}
	if err := uc.Horizon().Check("target_date", date); err != nil {
		return singleInput{}, err
	}
	return singleInput{date: date, proposal: p}, nil
}

// PreviewSingle calcula el total en vivo del editor de una fecha sin guardar nada.
func (uc *CalendarUseCase) PreviewSingle(ctx context.Context, actor Actor, roomID, targetDate string, in dto.SinglePolicyRequest) (*dto.SinglePreviewResponse, error) {
	input, err := uc.parseSingle(targetDate, in)
	if err != nil {
		return nil, err
	}
	room, err := uc.room(ctx, actor, roomID)
	if err != nil {
		return nil, err
	}
	w, err := uc.roomWindow(ctx, room, input.date, input.date)
	if err != nil {
		return nil, err
	}
	existing := policyOn(w, input.date)
	av, err := rc.PreviewSingle(rc.SingleEdit{
		Room:       *room,
		TargetDate: input.date,
		Existing:   existing,
		Proposal:   input.proposal,
		Horizon:    uc.Horizon(),
	})
	if err != nil {
		return nil, err
	}
	booked := 0
	if existing != nil {
		booked = existing.BookedStock
	}
	return &dto.SinglePreviewResponse{
		RoomID:       room.RoomID,
		Date:         rc.DateKey(input.date),
		TotalStock:   room.TotalStock,
		BookedStock:  booked,
		Availability: toAvailabilityResponse(av),
	}, nil
}

// SubmitSingle valida una fecha contra sus reservas actuales y emite exactamente un guardado.
// Toda validación ocurre antes de cualquier llamada al backend.
func (uc *CalendarUseCase) SubmitSingle(ctx context.Context, actor Actor, roomID, targetDate string, in dto.SinglePolicyRequest) (*dto.SubmitResponse, error) {
	input, err := uc.parseSingle(targetDate, in)
	if err != nil {
		uc.log.Debug().Err(err).Str("room_id", roomID).Msg("edición rechazada por validación")
		return nil, err
	}
	room, err := uc.room(ctx, actor, roomID)
	if err != nil {
		return nil, err
	}
	release, err := uc.guard.Acquire(room.RoomID)
	if err != nil {
		return nil, err
	}
	defer release()

	w, err := uc.roomWindow(ctx, room, input.date, input.date)
	if err != nil {
		return nil, err
	}
	update, err := rc.ValidateAndBuildSingleUpdate(rc.SingleEdit{
		Room:       *room,
		TargetDate: input.date,
		Existing:   policyOn(w, input.date),
		Proposal:   input.proposal,
		Horizon:    uc.Horizon(),
	})
	if err != nil {
		uc.log.Debug().Err(err).Str("room_id", room.RoomID).Msg("edición rechazada")
		return nil, err
	}

	batchID := uuid.New().String()
	if err := uc.repo.SaveDailyPolicy(ctx, update); err != nil {
		uc.log.Error().Err(err).Str("room_id", room.RoomID).Str("batch_id", batchID).
			Str("date", rc.DateKey(update.TargetDate)).Msg("guardado de política fallido")
		return nil, saveErr(err)
	}
	uc.log.Info().Str("room_id", room.RoomID).Str("batch_id", batchID).Str("user_id", actor.UserID).
		Str("date", rc.DateKey(update.TargetDate)).Int("blocked_stock", update.BlockedStock).
		Msg("política guardada")

	return &dto.SubmitResponse{
		BatchID: batchID,
		RoomID:  room.RoomID,
		Dates:   []string{rc.DateKey(update.TargetDate)},
		Updated: 1,
		Window:  uc.reload(ctx, room, input.date, input.date),
	}, nil
}

// bulkInput es la entrada ya validada localmente del editor por rango.
type bulkInput struct {
	start, end time.Time
	weekdays   rc.WeekdaySet
	dates      []time.Time
	proposal   rc.Proposal
}

func (uc *CalendarUseCase) parseBulk(in dto.BulkPolicyRequest) (bulkInput, error) {
	start, err := rc.ParseDate(in.StartDate)
	if err != nil {
		return bulkInput{}, domain.Invalid("start_date", "formato esperado YYYY-MM-DD")
	}
	end, err := rc.ParseDate(in.EndDate)
	if err != nil {
		return bulkInput{}, domain.Invalid("end_date", "formato esperado YYYY-MM-DD")
	}
	weekdays, err := rc.ParseWeekdays(in.Weekdays)
	if err != nil {
		return bulkInput{}, err
	}
	p := toProposal(in.Price, in.BlockedStock, in.IsActive)
	if err := p.Validate(); err != nil {
		return bulkInput{}, err
	}
	dates, err := rc.ExpandRange(start, end, weekdays, uc.Horizon())
	if err != nil {
		return bulkInput{}, err
	}
	return bulkInput{start: start, end: end, weekdays: weekdays, dates: dates, proposal: p}, nil
}

func (uc *CalendarUseCase) bulkEdit(room *entity.RoomInventory, w *entity.RoomWindow, input bulkInput) rc.BulkEdit {
	return rc.BulkEdit{
		Room:     *room,
		Start:    input.start,
		End:      input.end,
		Weekdays: input.weekdays,
		Policies: w.Policies,
		Proposal: input.proposal,
		Horizon:  uc.Horizon(),
	}
}

// PreviewBulk devuelve el conjunto de fechas, el máximo de reservas y el límite seguro del rango.
func (uc *CalendarUseCase) PreviewBulk(ctx context.Context, actor Actor, roomID string, in dto.BulkPolicyRequest) (*dto.BulkPreviewResponse, error) {
	input, err := uc.parseBulk(in)
	if err != nil {
		return nil, err
	}
	room, err := uc.room(ctx, actor, roomID)
	if err != nil {
		return nil, err
	}
	w, err := uc.roomWindow(ctx, room, input.dates[0], input.dates[len(input.dates)-1])
	if err != nil {
		return nil, err
	}
	preview, err := rc.PreviewBulk(uc.bulkEdit(room, w, input))
	if err != nil {
		return nil, err
	}
	return &dto.BulkPreviewResponse{
		RoomID:       room.RoomID,
		Weekdays:     weekdayKeys(input.weekdays),
		Dates:        dateKeys(preview.Dates),
		DateCount:    len(preview.Dates),
		TotalStock:   room.TotalStock,
		MaxBooked:    preview.MaxBooked,
		MaxBookedOn:  rc.DateKey(preview.MaxBookedOn),
		Availability: toAvailabilityResponse(preview.Availability),
	}, nil
}

// SubmitBulk aplica la misma política a todas las fechas del rango filtrado como una sola acción.
// Si la validación falla no se emite ningún guardado. Con un backend sin lotes atómicos,
// un resultado mixto se reporta como *domain.PartialBatchError y exige recargar la ventana.
func (uc *CalendarUseCase) SubmitBulk(ctx context.Context, actor Actor, roomID string, in dto.BulkPolicyRequest) (*dto.SubmitResponse, error) {
	input, err := uc.parseBulk(in)
	if err != nil {
		uc.log.Debug().Err(err).Str("room_id", roomID).Msg("lote rechazado por validación")
		return nil, err
	}
	room, err := uc.room(ctx, actor, roomID)
	if err != nil {
		return nil, err
	}
	release, err := uc.guard.Acquire(room.RoomID)
	if err != nil {
		return nil, err
	}
	defer release()

	first, last := input.dates[0], input.dates[len(input.dates)-1]
	w, err := uc.roomWindow(ctx, room, first, last)
	if err != nil {
		return nil, err
	}
	updates, err := rc.ExpandAndValidateBulkUpdate(uc.bulkEdit(room, w, input))
	if err != nil {
		uc.log.Debug().Err(err).Str("room_id", room.RoomID).Msg("lote rechazado")
		return nil, err
	}

	batchID := uuid.New().String()
	log := uc.log.With().Str("room_id", room.RoomID).Str("batch_id", batchID).Int("dates", len(updates)).Logger()
	if err := uc.persistBatch(ctx, updates); err != nil {
		var perr *domain.PartialBatchError
		if errors.As(err, &perr) {
			perr.RoomID = room.RoomID
			perr.BatchID = batchID
			uc.guard.MarkStale(room.RoomID)
			log.Warn().Err(perr.Cause).Int("succeeded", len(perr.Succeeded)).Int("failed", len(perr.Failed)).
				Msg("lote aplicado parcialmente, se exige recargar la ventana")
			return nil, perr
		}
		log.Error().Err(err).Msg("guardado del lote fallido")
		return nil, err
	}
	log.Info().Str("user_id", actor.UserID).Int("blocked_stock", input.proposal.BlockedStock).Msg("lote guardado")

	return &dto.SubmitResponse{
		BatchID: batchID,
		RoomID:  room.RoomID,
		Dates:   dateKeys(input.dates),
		Updated: len(updates),
		Window:  uc.reload(ctx, room, first, last),
	}, nil
}

// persistBatch usa el guardado atómico si el backend lo soporta; si no, un guardado por fecha en orden.
func (uc *CalendarUseCase) persistBatch(ctx context.Context, updates []entity.PolicyUpdate) error {
	if saver, ok := uc.repo.(repository.BatchSaver); ok {
		if err := saver.SaveBatch(ctx, updates); err != nil {
			return saveErr(err)
		}
		return nil
	}

	var succeeded, failed []time.Time
	var cause error
	for _, u := range updates {
		err := ctx.Err()
		if err == nil {
			err = uc.repo.SaveDailyPolicy(ctx, u)
		}
		if err != nil {
			failed = append(failed, u.TargetDate)
			if cause == nil {
				cause = err
			}
			continue
		}
		succeeded = append(succeeded, u.TargetDate)
	}
	switch {
	case len(failed) == 0:
		return nil
	case len(succeeded) == 0:
		return saveErr(cause)
	default:
		return &domain.PartialBatchError{Succeeded: succeeded, Failed: failed, Cause: cause}
	}
}
