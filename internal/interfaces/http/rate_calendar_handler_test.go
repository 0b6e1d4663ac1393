package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/rate-calendar-api/internal/application/dto"
	"github.com/jhoicas/rate-calendar-api/internal/application/ratecalendar"
	"github.com/jhoicas/rate-calendar-api/internal/domain"
	"github.com/jhoicas/rate-calendar-api/internal/domain/entity"
	"github.com/jhoicas/rate-calendar-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/rate-calendar-api/internal/interfaces/http"
	"github.com/jhoicas/rate-calendar-api/pkg/clock"
	pkgjwt "github.com/jhoicas/rate-calendar-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Repositorio en memoria
// ──────────────────────────────────────────────────────────────────────────────

type fakeRepo struct {
	mu       sync.Mutex
	room     entity.RoomInventory
	acc      entity.Accommodation
	policies map[string]entity.DailyPolicy
	failSave map[string]error
	loadErr  error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		acc:      entity.Accommodation{ID: "acc-1", PartnerID: testPartnerID, Name: "Hotel Centro"},
		room:     entity.RoomInventory{RoomID: "room-1", AccommodationID: "acc-1", Name: "Deluxe", TotalStock: 5},
		policies: map[string]entity.DailyPolicy{},
		failSave: map[string]error{},
	}
}

func (r *fakeRepo) setBooked(date string, booked int) {
	d, _ := time.Parse("2006-01-02", date)
	p := entity.EmptyPolicy(r.room.RoomID, d)
	p.BookedStock = booked
	r.policies[date] = p
}

func (r *fakeRepo) GetAccommodation(_ context.Context, id string) (*entity.Accommodation, error) {
	if id != r.acc.ID {
		return nil, nil
	}
	acc := r.acc
	return &acc, nil
}

func (r *fakeRepo) GetRoom(_ context.Context, id string) (*entity.RoomInventory, error) {
	if id != r.room.RoomID {
		return nil, nil
	}
	room := r.room
	return &room, nil
}

func (r *fakeRepo) LoadWindow(_ context.Context, id string, start, end time.Time) ([]*entity.RoomWindow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	if id != r.acc.ID {
		return nil, domain.ErrNotFound
	}
	w := &entity.RoomWindow{Room: r.room}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if p, ok := r.policies[d.Format("2006-01-02")]; ok {
			w.Policies = append(w.Policies, p)
		}
	}
	return []*entity.RoomWindow{w}, nil
}

func (r *fakeRepo) SaveDailyPolicy(_ context.Context, u entity.PolicyUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := u.TargetDate.Format("2006-01-02")
	if err, ok := r.failSave[key]; ok {
		return err
	}
	p, ok := r.policies[key]
	if !ok {
		p = entity.EmptyPolicy(u.RoomID, u.TargetDate)
	}
	price := u.Price
	p.Price, p.BlockedStock, p.IsActive = &price, u.BlockedStock, u.IsActive
	r.policies[key] = p
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func newCalendarApp(repo *fakeRepo) *fiber.App {
	clk := clock.NewMockClock(time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC))
	calendar := ratecalendar.NewCalendarUseCase(repo, ratecalendar.NewSubmissionGuard(), clk,
		ratecalendar.Settings{MaxHorizonMonths: 6, MaxWindowDays: 62, Location: time.UTC}, zerolog.Nop())
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		CalendarUC:  calendar,
		RateSheetUC: ratecalendar.NewRateSheetUseCase(calendar, pdf.NewMarotoRateSheetGenerator()),
		JWTSecret:   testJWTSecret,
		Logger:      zerolog.Nop(),
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, auth string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(data, &out), string(data))
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Ventana y calculadora
// ──────────────────────────────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	resp, _ := call(t, newCalendarApp(newFakeRepo()), http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGetWindow_DevuelveUnaCeldaPorFecha(t *testing.T) {
	repo := newFakeRepo()
	repo.setBooked("2026-10-20", 2)
	app := newCalendarApp(repo)

	resp, data := call(t, app, http.MethodGet, "/api/rate-calendar/accommodations/acc-1/window?start=2026-10-19&end=2026-10-25",
		tokenForRole(t, pkgjwt.RolePartner), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

	out := decode[dto.WindowResponse](t, data)
	require.Len(t, out.Rooms, 1)
	assert.Len(t, out.Rooms[0].Days, 7)
	assert.Equal(t, 3, out.Rooms[0].Days[1].Remaining)
	assert.Nil(t, out.Rooms[0].Days[0].Price)
}

func TestGetWindow_SinAuth401(t *testing.T) {
	resp, _ := call(t, newCalendarApp(newFakeRepo()), http.MethodGet,
		"/api/rate-calendar/accommodations/acc-1/window?start=2026-10-19&end=2026-10-25", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGetWindow_OtroPartner403(t *testing.T) {
	resp, data := call(t, newCalendarApp(newFakeRepo()), http.MethodGet,
		"/api/rate-calendar/accommodations/acc-1/window?start=2026-10-19&end=2026-10-25",
		tokenFor(t, "otro-partner", pkgjwt.RolePartner), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, string(data), "FORBIDDEN")
}

func TestGetWindow_AdminVeCualquierAlojamiento(t *testing.T) {
	resp, _ := call(t, newCalendarApp(newFakeRepo()), http.MethodGet,
		"/api/rate-calendar/accommodations/acc-1/window?start=2026-10-19&end=2026-10-25",
		tokenFor(t, "", pkgjwt.RoleAdmin), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGetWindow_QueryFaltante400(t *testing.T) {
	resp, data := call(t, newCalendarApp(newFakeRepo()), http.MethodGet,
		"/api/rate-calendar/accommodations/acc-1/window?start=2026-10-19",
		tokenForRole(t, pkgjwt.RolePartner), nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, data)
	assert.Equal(t, "VALIDATION", body.Code)
	require.NotEmpty(t, body.Fields)
	assert.Equal(t, "end", body.Fields[0].Field)
}

func TestGetWindow_BackendCaido503(t *testing.T) {
	repo := newFakeRepo()
	repo.loadErr = errors.New("dial tcp: connection refused")
	resp, data := call(t, newCalendarApp(repo), http.MethodGet,
		"/api/rate-calendar/accommodations/acc-1/window?start=2026-10-19&end=2026-10-25",
		tokenForRole(t, pkgjwt.RolePartner), nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, string(data), "UNAVAILABLE")
}

func TestComputeAvailability(t *testing.T) {
	resp, data := call(t, newCalendarApp(newFakeRepo()), http.MethodPost, "/api/rate-calendar/availability",
		tokenForRole(t, pkgjwt.RolePartner), dto.AvailabilityRequest{TotalStock: 10, BookedStock: 3, ProposedBlocked: 5})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[dto.AvailabilityResponse](t, data)
	assert.Equal(t, dto.AvailabilityResponse{Remaining: 2, Safe: true, SafeBlockLimit: 7}, out)
}

func TestComputeAvailability_NegativoEs400(t *testing.T) {
	resp, _ := call(t, newCalendarApp(newFakeRepo()), http.MethodPost, "/api/rate-calendar/availability",
		tokenForRole(t, pkgjwt.RolePartner), map[string]int{"total_stock": 5, "booked_stock": -1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Editor de una fecha
// ──────────────────────────────────────────────────────────────────────────────

func TestSubmitSingle_Guarda(t *testing.T) {
	repo := newFakeRepo()
	app := newCalendarApp(repo)

	resp, data := call(t, app, http.MethodPut, "/api/rate-calendar/rooms/room-1/policies/2026-10-21",
		tokenForRole(t, pkgjwt.RolePartner), map[string]any{"price": "100000", "blocked_stock": 2})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

	out := decode[dto.SubmitResponse](t, data)
	assert.Equal(t, 1, out.Updated)
	require.NotNil(t, out.Window)
	assert.Equal(t, 2, out.Window.Days[0].BlockedStock)
	assert.True(t, out.Window.Days[0].IsActive)
	assert.NotEmpty(t, out.BatchID)
}

func TestSubmitSingle_SinPrecio400(t *testing.T) {
	resp, data := call(t, newCalendarApp(newFakeRepo()), http.MethodPut, "/api/rate-calendar/rooms/room-1/policies/2026-10-21",
		tokenForRole(t, pkgjwt.RolePartner), map[string]any{"blocked_stock": 1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, data)
	assert.Equal(t, "VALIDATION", body.Code)
	require.Len(t, body.Fields, 1)
	assert.Equal(t, "price", body.Fields[0].Field)
}

func TestSubmitSingle_Conflicto409(t *testing.T) {
	repo := newFakeRepo()
	repo.setBooked("2026-10-21", 4)
	resp, data := call(t, newCalendarApp(repo), http.MethodPut, "/api/rate-calendar/rooms/room-1/policies/2026-10-21",
		tokenForRole(t, pkgjwt.RolePartner), map[string]any{"price": "100000", "blocked_stock": 2})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	body := decode[dto.StockConflictResponse](t, data)
	assert.Equal(t, "STOCK_CONFLICT", body.Code)
	assert.Equal(t, 4, body.MaxBooked)
	assert.Equal(t, 1, body.SafeBlockLimit)
	assert.Equal(t, "2026-10-21", body.Date)
}

func TestSubmitSingle_HabitacionInexistente404(t *testing.T) {
	resp, _ := call(t, newCalendarApp(newFakeRepo()), http.MethodPut, "/api/rate-calendar/rooms/room-x/policies/2026-10-21",
		tokenForRole(t, pkgjwt.RolePartner), map[string]any{"price": "100000"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSubmitSingle_FalloDelBackend502(t *testing.T) {
	repo := newFakeRepo()
	repo.failSave["2026-10-21"] = errors.New("timeout")
	resp, data := call(t, newCalendarApp(repo), http.MethodPut, "/api/rate-calendar/rooms/room-1/policies/2026-10-21",
		tokenForRole(t, pkgjwt.RolePartner), map[string]any{"price": "100000"})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, string(data), "PERSISTENCE")
}

func TestPreviewSingle(t *testing.T) {
	repo := newFakeRepo()
	repo.setBooked("2026-10-21", 3)
	resp, data := call(t, newCalendarApp(repo), http.MethodPost, "/api/rate-calendar/rooms/room-1/policies/preview?date=2026-10-21",
		tokenForRole(t, pkgjwt.RolePartner), map[string]any{"price": "100000", "blocked_stock": 3})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	out := decode[dto.SinglePreviewResponse](t, data)
	assert.False(t, out.Availability.Safe)
	assert.Equal(t, -1, out.Availability.Remaining)
}

// ──────────────────────────────────────────────────────────────────────────────
// Editor por rango
// ──────────────────────────────────────────────────────────────────────────────

func TestSubmitBulk_RangoInvertido400(t *testing.T) {
	resp, data := call(t, newCalendarApp(newFakeRepo()), http.MethodPost, "/api/rate-calendar/rooms/room-1/policies/bulk",
		tokenForRole(t, pkgjwt.RolePartner), map[string]any{"start_date": "2026-10-26", "end_date": "2026-10-25", "price": "1000"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(data), "VALIDATION")
}

func TestSubmitBulk_RangoVacio400(t *testing.T) {
	resp, data := call(t, newCalendarApp(newFakeRepo()), http.MethodPost, "/api/rate-calendar/rooms/room-1/policies/bulk",
		tokenForRole(t, pkgjwt.RolePartner), map[string]any{
			"start_date": "2026-10-19", "end_date": "2026-10-21", "weekdays": []string{"sat"}, "price": "1000",
		})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(data), "EMPTY_RANGE")
}

func TestSubmitBulk_FinDeSemanaConflicto409(t *testing.T) {
	repo := newFakeRepo()
	repo.setBooked("2026-10-24", 5)
	resp, data := call(t, newCalendarApp(repo), http.MethodPost, "/api/rate-calendar/rooms/room-1/policies/bulk",
		tokenForRole(t, pkgjwt.RolePartner), map[string]any{
			"start_date": "2026-10-19", "end_date": "2026-10-25", "weekdays": []string{"sat", "sun"},
			"price": "150000", "blocked_stock": 1,
		})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decode[dto.StockConflictResponse](t, data)
	assert.Equal(t, 5, body.MaxBooked)
	assert.Equal(t, 0, body.SafeBlockLimit)
	assert.Equal(t, "2026-10-24", body.Date, "fecha con más reservas del conjunto")
}

func TestSubmitBulk_ParcialExigeRecarga(t *testing.T) {
	repo := newFakeRepo()
	repo.failSave["2026-11-02"] = errors.New("502")
	app := newCalendarApp(repo)
	auth := tokenForRole(t, pkgjwt.RolePartner)

	resp, data := call(t, app, http.MethodPost, "/api/rate-calendar/rooms/room-1/policies/bulk", auth,
		map[string]any{"start_date": "2026-11-01", "end_date": "2026-11-03", "price": "99000"})
	require.Equal(t, http.StatusMultiStatus, resp.StatusCode, string(data))
	body := decode[dto.PartialBatchResponse](t, data)
	assert.Equal(t, []string{"2026-11-02"}, body.Failed)
	assert.Equal(t, []string{"2026-11-01", "2026-11-03"}, body.Succeeded)
	assert.True(t, body.ReloadRequired)
	assert.NotEmpty(t, body.BatchID)

	resp, data = call(t, app, http.MethodPut, "/api/rate-calendar/rooms/room-1/policies/2026-11-05", auth,
		map[string]any{"price": "99000"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, string(data), "RELOAD_REQUIRED")

	resp, _ = call(t, app, http.MethodGet, "/api/rate-calendar/accommodations/acc-1/window?start=2026-11-01&end=2026-11-30", auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = call(t, app, http.MethodPut, "/api/rate-calendar/rooms/room-1/policies/2026-11-05", auth,
		map[string]any{"price": "99000"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSubmitBulk_ConflictoParcialEs207(t *testing.T) {
	repo := newFakeRepo()
	repo.failSave["2026-11-02"] = &domain.StockConflictError{
		RoomID: "room-1", Date: time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC), TotalStock: 5, MaxBooked: 5, Proposed: 1,
	}
	app := newCalendarApp(repo)

	resp, data := call(t, app, http.MethodPost, "/api/rate-calendar/rooms/room-1/policies/bulk", tokenForRole(t, pkgjwt.RolePartner),
		map[string]any{"start_date": "2026-11-01", "end_date": "2026-11-03", "price": "99000", "blocked_stock": 1})
	require.Equal(t, http.StatusMultiStatus, resp.StatusCode, string(data))
	body := decode[dto.PartialBatchResponse](t, data)
	assert.Equal(t, "PARTIAL_BATCH", body.Code)
	assert.Equal(t, []string{"2026-11-02"}, body.Failed)
	assert.Equal(t, []string{"2026-11-01", "2026-11-03"}, body.Succeeded)
	assert.NotEmpty(t, body.BatchID)
}

func TestSubmitSingle_ConflictoSinDetalleDelBackend409(t *testing.T) {
	repo := newFakeRepo()
	repo.failSave["2026-10-21"] = fmt.Errorf("%w: save policy 2026-10-21: HTTP 409", domain.ErrStockConflict)
	resp, data := call(t, newCalendarApp(repo), http.MethodPut, "/api/rate-calendar/rooms/room-1/policies/2026-10-21",
		tokenForRole(t, pkgjwt.RolePartner), map[string]any{"price": "99000"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "STOCK_CONFLICT", decode[dto.ErrorResponse](t, data).Code)
}

func TestPreviewBulk(t *testing.T) {
	repo := newFakeRepo()
	repo.setBooked("2026-11-07", 3)
	resp, data := call(t, newCalendarApp(repo), http.MethodPost, "/api/rate-calendar/rooms/room-1/policies/bulk/preview",
		tokenForRole(t, pkgjwt.RolePartner), map[string]any{
			"start_date": "2026-11-01", "end_date": "2026-11-30", "weekdays": []string{"fri", "sat"}, "price": "1000",
		})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	out := decode[dto.BulkPreviewResponse](t, data)
	assert.Equal(t, 8, out.DateCount)
	assert.Equal(t, 3, out.MaxBooked)
	assert.Equal(t, "2026-11-07", out.MaxBookedOn)
	assert.Equal(t, 2, out.Availability.SafeBlockLimit)
}

// ──────────────────────────────────────────────────────────────────────────────
// Hoja de tarifas
// ──────────────────────────────────────────────────────────────────────────────

func TestExportRateSheet_PDF(t *testing.T) {
	resp, data := call(t, newCalendarApp(newFakeRepo()), http.MethodGet,
		"/api/rate-calendar/accommodations/acc-1/rate-sheet.pdf?start=2026-10-19&end=2026-10-25",
		tokenForRole(t, pkgjwt.RolePartner), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}
