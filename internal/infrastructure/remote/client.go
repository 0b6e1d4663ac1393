// Package remote implementa el repositorio de políticas sobre la API REST del sistema de inventario externo.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/jhoicas/rate-calendar-api/internal/domain"
	"github.com/jhoicas/rate-calendar-api/internal/domain/entity"
	rc "github.com/jhoicas/rate-calendar-api/internal/domain/ratecalendar"
	"github.com/jhoicas/rate-calendar-api/internal/domain/repository"
	"github.com/jhoicas/rate-calendar-api/pkg/config"
)

const maxErrorBody = 4 << 10

var _ repository.PolicyRepository = (*Client)(nil)

// Client cliente REST del backend de políticas. Sin reintentos: un fallo se reporta tal cual.
// No implementa repository.BatchSaver, por lo que un lote se envía fecha por fecha.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	baseURL     string
	apiKey      string
	log         zerolog.Logger
}

// NewClient construye el cliente con la configuración REMOTE_*.
func NewClient(cfg config.RemoteConfig, log zerolog.Logger) *Client {
	return NewClientWithHTTP(cfg, &http.Client{Timeout: cfg.Timeout()}, log)
}

// NewClientWithHTTP permite inyectar el *http.Client (tests).
func NewClientWithHTTP(cfg config.RemoteConfig, httpClient *http.Client, log zerolog.Logger) *Client {
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	return &Client{
		httpClient:  httpClient,
		rateLimiter: rate.NewLimiter(limit, burst),
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		log:         log.With().Str("component", "remote_policies").Logger(),
	}
}

type accommodationPayload struct {
	ID        string `json:"id"`
	PartnerID string `json:"partner_id"`
	Name      string `json:"name"`
}

type roomPayload struct {
	ID              string          `json:"id"`
	AccommodationID string          `json:"accommodation_id"`
	Name            string          `json:"name"`
	TotalStock      int             `json:"total_stock"`
	Policies        []policyPayload `json:"policies,omitempty"`
}

type policyPayload struct {
	TargetDate   string           `json:"target_date"`
	Price        *decimal.Decimal `json:"price"`
	BlockedStock int              `json:"blocked_stock"`
	BookedStock  int              `json:"booked_stock"`
	IsActive     bool             `json:"is_active"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

type windowPayload struct {
	Rooms []roomPayload `json:"rooms"`
}

type savePayload struct {
	Price        decimal.Decimal `json:"price"`
	BlockedStock int             `json:"blocked_stock"`
	IsActive     bool            `json:"is_active"`
}

// conflictPayload cuerpo de un 409: el backend revalidó contra sus reservas.
// Sin total_stock no hay límite vinculante que informar.
type conflictPayload struct {
	TotalStock  *int `json:"total_stock"`
	BookedStock int  `json:"booked_stock"`
}

func (p roomPayload) toEntity() entity.RoomInventory {
	return entity.RoomInventory{RoomID: p.ID, AccommodationID: p.AccommodationID, Name: p.Name, TotalStock: p.TotalStock}
}

// GetAccommodation GET /accommodations/{id}. 404 -> nil, nil.
func (c *Client) GetAccommodation(ctx context.Context, id string) (*entity.Accommodation, error) {
	var out accommodationPayload
	status, err := c.request(ctx, http.MethodGet, "/accommodations/"+url.PathEscape(id), nil, &out)
	if err != nil {
		if status == http.StatusNotFound {
			return nil, nil
		}
		return nil, loadErr("get accommodation", status, err)
	}
	return &entity.Accommodation{ID: out.ID, PartnerID: out.PartnerID, Name: out.Name}, nil
}

// GetRoom GET /rooms/{id}. 404 -> nil, nil.
func (c *Client) GetRoom(ctx context.Context, id string) (*entity.RoomInventory, error) {
	var out roomPayload
	status, err := c.request(ctx, http.MethodGet, "/rooms/"+url.PathEscape(id), nil, &out)
	if err != nil {
		if status == http.StatusNotFound {
			return nil, nil
		}
		return nil, loadErr("get room", status, err)
	}
	room := out.toEntity()
	return &room, nil
}

// LoadWindow GET /accommodations/{id}/policies?start=&end=.
func (c *Client) LoadWindow(ctx context.Context, accommodationID string, start, end time.Time) ([]*entity.RoomWindow, error) {
	q := url.Values{}
	q.Set("start", rc.DateKey(start))
	q.Set("end", rc.DateKey(end))
	path := "/accommodations/" + url.PathEscape(accommodationID) + "/policies?" + q.Encode()

	var out windowPayload
	status, err := c.request(ctx, http.MethodGet, path, nil, &out)
	if err != nil {
		return nil, loadErr("load window", status, err)
	}

	windows := make([]*entity.RoomWindow, 0, len(out.Rooms))
	for _, r := range out.Rooms {
		w := &entity.RoomWindow{Room: r.toEntity()}
		for _, p := range r.Policies {
			date, err := rc.ParseDate(p.TargetDate)
			if err != nil {
				return nil, fmt.Errorf("%w: load window: fecha inválida %q", domain.ErrUnavailable, p.TargetDate)
			}
			w.Policies = append(w.Policies, entity.DailyPolicy{
				RoomID:       r.ID,
				TargetDate:   date,
				Price:        p.Price,
				BlockedStock: p.BlockedStock,
				BookedStock:  p.BookedStock,
				IsActive:     p.IsActive,
				UpdatedAt:    p.UpdatedAt,
			})
		}
		windows = append(windows, w)
	}
	return windows, nil
}

// SaveDailyPolicy PUT /rooms/{roomId}/policies/{date} con valores absolutos.
func (c *Client) SaveDailyPolicy(ctx context.Context, u entity.PolicyUpdate) error {
	path := "/rooms/" + url.PathEscape(u.RoomID) + "/policies/" + rc.DateKey(u.TargetDate)
	body := savePayload{Price: u.Price, BlockedStock: u.BlockedStock, IsActive: u.IsActive}

	status, err := c.request(ctx, http.MethodPut, path, body, nil)
	if err == nil {
		return nil
	}
	var herr *httpError
	switch {
	case status == http.StatusNotFound:
		return fmt.Errorf("save policy: %w", domain.ErrNotFound)
	case status == http.StatusConflict && errors.As(err, &herr):
		var cp conflictPayload
		if err := json.Unmarshal(herr.body, &cp); err != nil || cp.TotalStock == nil {
			return fmt.Errorf("%w: save policy %s: %w", domain.ErrStockConflict, rc.DateKey(u.TargetDate), herr)
		}
		av := rc.ComputeAvailability(*cp.TotalStock, cp.BookedStock, u.BlockedStock)
		return &domain.StockConflictError{
			RoomID:         u.RoomID,
			Date:           u.TargetDate,
			TotalStock:     *cp.TotalStock,
			MaxBooked:      cp.BookedStock,
			SafeBlockLimit: av.SafeBlockLimit,
			Proposed:       u.BlockedStock,
		}
	}
	return fmt.Errorf("%w: save policy %s: %w", domain.ErrPersistence, rc.DateKey(u.TargetDate), err)
}

// httpError respuesta no 2xx del backend.
type httpError struct {
	status int
	body   []byte
}

func (e *httpError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.status, strings.TrimSpace(string(e.body)))
}

// loadErr: 404 es NotFound; el resto (transporte, 5xx, respuestas inesperadas) es Unavailable.
func loadErr(op string, status int, err error) error {
	if status == http.StatusNotFound {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrUnavailable, op, err)
}

// request ejecuta una llamada respetando el rate limiter. Devuelve el status HTTP (0 si no hubo respuesta).
func (c *Client) request(ctx context.Context, method, path string, body, result any) (int, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("rate limiter: %w", err)
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, fmt.Errorf("crear request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("method", method).Str("path", path).Msg("backend de políticas inalcanzable")
		return 0, fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	c.log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).Msg("backend de políticas")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return resp.StatusCode, &httpError{status: resp.StatusCode, body: data}
	}
	if result == nil {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return resp.StatusCode, fmt.Errorf("decodificar respuesta: %w", err)
	}
	return resp.StatusCode, nil
}
