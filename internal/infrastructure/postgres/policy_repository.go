package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/rate-calendar-api/internal/domain"
	"github.com/jhoicas/rate-calendar-api/internal/domain/entity"
	rc "github.com/jhoicas/rate-calendar-api/internal/domain/ratecalendar"
	"github.com/jhoicas/rate-calendar-api/internal/domain/repository"
)

// PolicyRepo acceso SQL a alojamientos, habitaciones y políticas diarias (usable con pool o tx).
type PolicyRepo struct {
	q Querier
}

// NewPolicyRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPolicyRepository(q Querier) *PolicyRepo {
	return &PolicyRepo{q: q}
}

// GetAccommodation obtiene un alojamiento por ID. Devuelve nil, nil si no existe.
func (r *PolicyRepo) GetAccommodation(ctx context.Context, id string) (*entity.Accommodation, error) {
	query := `SELECT id, partner_id, name FROM accommodations WHERE id = $1`
	var a entity.Accommodation
	err := r.q.QueryRow(ctx, query, id).Scan(&a.ID, &a.PartnerID, &a.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, readErr("get accommodation", err)
	}
	return &a, nil
}

// GetRoom obtiene una habitación por ID. Devuelve nil, nil si no existe.
func (r *PolicyRepo) GetRoom(ctx context.Context, id string) (*entity.RoomInventory, error) {
	query := `SELECT id, accommodation_id, name, total_stock FROM rooms WHERE id = $1`
	var room entity.RoomInventory
	err := r.q.QueryRow(ctx, query, id).Scan(&room.RoomID, &room.AccommodationID, &room.Name, &room.TotalStock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, readErr("get room", err)
	}
	return &room, nil
}

// LoadWindow devuelve las habitaciones del alojamiento con sus políticas registradas en [start, end].
func (r *PolicyRepo) LoadWindow(ctx context.Context, accommodationID string, start, end time.Time) ([]*entity.RoomWindow, error) {
	acc, err := r.GetAccommodation(ctx, accommodationID)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, domain.ErrNotFound
	}

	rows, err := r.q.Query(ctx, `
		SELECT id, accommodation_id, name, total_stock
		FROM rooms WHERE accommodation_id = $1
		ORDER BY name, id`, accommodationID)
	if err != nil {
		return nil, readErr("list rooms", err)
	}
	var windows []*entity.RoomWindow
	byRoom := make(map[string]*entity.RoomWindow)
	for rows.Next() {
		w := &entity.RoomWindow{}
		if err := rows.Scan(&w.Room.RoomID, &w.Room.AccommodationID, &w.Room.Name, &w.Room.TotalStock); err != nil {
			rows.Close()
			return nil, readErr("scan room", err)
		}
		windows = append(windows, w)
		byRoom[w.Room.RoomID] = w
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, readErr("list rooms", err)
	}
	if len(windows) == 0 {
		return windows, nil
	}

	rows, err = r.q.Query(ctx, `
		SELECT p.room_id, p.target_date, p.price, p.blocked_stock, p.booked_stock, p.is_active, p.updated_at
		FROM daily_policies p
		JOIN rooms r ON r.id = p.room_id
		WHERE r.accommodation_id = $1 AND p.target_date BETWEEN $2 AND $3
		ORDER BY p.room_id, p.target_date`, accommodationID, start, end)
	if err != nil {
		return nil, readErr("list policies", err)
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, readErr("scan policy", err)
		}
		if w, ok := byRoom[p.RoomID]; ok {
			w.Policies = append(w.Policies, p)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, readErr("list policies", err)
	}
	return windows, nil
}

func scanPolicy(row pgx.Row) (entity.DailyPolicy, error) {
	var (
		p     entity.DailyPolicy
		price decimal.NullDecimal
	)
	if err := row.Scan(&p.RoomID, &p.TargetDate, &price, &p.BlockedStock, &p.BookedStock, &p.IsActive, &p.UpdatedAt); err != nil {
		return entity.DailyPolicy{}, err
	}
	if price.Valid {
		p.Price = &price.Decimal
	}
	p.TargetDate = rc.DateOf(p.TargetDate)
	return p, nil
}

// lockRoomStock bloquea la fila de la habitación (SELECT FOR UPDATE) y devuelve su stock total.
// Serializa los guardados concurrentes de una misma habitación.
func (r *PolicyRepo) lockRoomStock(ctx context.Context, roomID string) (int, error) {
	var total int
	err := r.q.QueryRow(ctx, `SELECT total_stock FROM rooms WHERE id = $1 FOR UPDATE`, roomID).Scan(&total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, writeErr("lock room", err)
	}
	return total, nil
}

// bookedForUpdate lee las reservas vigentes de la fecha bloqueando la fila. Sin fila: 0.
func (r *PolicyRepo) bookedForUpdate(ctx context.Context, roomID string, date time.Time) (int, error) {
	var booked int
	err := r.q.QueryRow(ctx, `
		SELECT booked_stock FROM daily_policies
		WHERE room_id = $1 AND target_date = $2
		FOR UPDATE`, roomID, date).Scan(&booked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, writeErr("lock policy", err)
	}
	return booked, nil
}

// upsertPolicy escribe valores absolutos de precio, bloqueo y estado. Nunca toca booked_stock.
func (r *PolicyRepo) upsertPolicy(ctx context.Context, u entity.PolicyUpdate) error {
	query := `
		INSERT INTO daily_policies (room_id, target_date, price, blocked_stock, booked_stock, is_active, updated_at)
		VALUES ($1, $2, $3, $4, 0, $5, now())
		ON CONFLICT (room_id, target_date)
		DO UPDATE SET price = EXCLUDED.price, blocked_stock = EXCLUDED.blocked_stock,
			is_active = EXCLUDED.is_active, updated_at = now()`
	if _, err := r.q.Exec(ctx, query, u.RoomID, rc.DateOf(u.TargetDate), u.Price, u.BlockedStock, u.IsActive); err != nil {
		return writeErr("upsert policy", err)
	}
	return nil
}

// saveChecked revalida el invariante contra las reservas bloqueadas y guarda. Debe correr en una tx.
func (r *PolicyRepo) saveChecked(ctx context.Context, total int, u entity.PolicyUpdate) error {
	booked, err := r.bookedForUpdate(ctx, u.RoomID, u.TargetDate)
	if err != nil {
		return err
	}
	if av := rc.ComputeAvailability(total, booked, u.BlockedStock); !av.Safe {
		return &domain.StockConflictError{
			RoomID:         u.RoomID,
			Date:           rc.DateOf(u.TargetDate),
			TotalStock:     total,
			MaxBooked:      booked,
			SafeBlockLimit: av.SafeBlockLimit,
			Proposed:       u.BlockedStock,
		}
	}
	return r.upsertPolicy(ctx, u)
}

var (
	_ repository.PolicyRepository = (*PolicyStore)(nil)
	_ repository.BatchSaver       = (*PolicyStore)(nil)
)

// PolicyStore implementa PolicyRepository y BatchSaver sobre PostgreSQL.
// Las lecturas usan el pool; cada guardado corre en su propia transacción.
type PolicyStore struct {
	*PolicyRepo
	tx txRunner
}

// txRunner lo cumple *TxRunner.
type txRunner interface {
	Run(ctx context.Context, fn func(policies *PolicyRepo) error) error
}

// NewPolicyStore construye el store con el pool.
func NewPolicyStore(pool *pgxpool.Pool) *PolicyStore {
	return &PolicyStore{PolicyRepo: NewPolicyRepository(pool), tx: NewTxRunner(pool)}
}

// SaveDailyPolicy guarda una fecha revalidando bloqueo + reservas <= stock total bajo FOR UPDATE.
func (s *PolicyStore) SaveDailyPolicy(ctx context.Context, u entity.PolicyUpdate) error {
	return s.SaveBatch(ctx, []entity.PolicyUpdate{u})
}

// SaveBatch guarda todas las fechas en una sola transacción: o se aplican todas o ninguna.
func (s *PolicyStore) SaveBatch(ctx context.Context, updates []entity.PolicyUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	roomID := updates[0].RoomID
	for _, u := range updates[1:] {
		if u.RoomID != roomID {
			return fmt.Errorf("save batch: %w", domain.Invalid("room_id", "un lote solo admite una habitación"))
		}
	}
	err := s.tx.Run(ctx, func(policies *PolicyRepo) error {
		total, err := policies.lockRoomStock(ctx, roomID)
		if err != nil {
			return err
		}
		for _, u := range updates {
			if err := policies.saveChecked(ctx, total, u); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil && !isDomainErr(err) {
		return writeErr("save batch", err)
	}
	return err
}

// isDomainErr indica si el error ya está clasificado con un sentinel de dominio.
func isDomainErr(err error) bool {
	for _, target := range []error{
		domain.ErrNotFound, domain.ErrInvalidInput, domain.ErrStockConflict,
		domain.ErrPersistence, domain.ErrUnavailable,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
