package postgres

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/rate-calendar-api/internal/domain"
	"github.com/jhoicas/rate-calendar-api/internal/domain/entity"
)

// fakeRow implementa pgx.Row con enteros o un error.
type fakeRow struct {
	val int
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*int)) = r.val
	return nil
}

// fakeQuerier simula la tx: stock total de la habitación, reservas por fecha y upserts registrados.
type fakeQuerier struct {
	total     int
	roomErr   error
	booked    map[string]int
	execErr   error
	upserts   []time.Time
	forUpdate int
}

func (q *fakeQuerier) Exec(_ context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
	if q.execErr != nil {
		return pgconn.CommandTag{}, q.execErr
	}
	q.upserts = append(q.upserts, args[1].(time.Time))
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (q *fakeQuerier) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("no usado")
}

func (q *fakeQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	if strings.Contains(sql, "FOR UPDATE") {
		q.forUpdate++
	}
	if strings.Contains(sql, "FROM rooms") {
		if q.roomErr != nil {
			return fakeRow{err: q.roomErr}
		}
		return fakeRow{val: q.total}
	}
	booked, ok := q.booked[args[1].(time.Time).Format("2006-01-02")]
	if !ok {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return fakeRow{val: booked}
}

// fakeTx ejecuta fn sobre una copia; solo "confirma" los upserts si fn no falla.
type fakeTx struct {
	q         *fakeQuerier
	committed []time.Time
	runs      int
}

func (t *fakeTx) Run(_ context.Context, fn func(policies *PolicyRepo) error) error {
	t.runs++
	t.q.upserts = nil
	if err := fn(NewPolicyRepository(t.q)); err != nil {
		return err
	}
	t.committed = append(t.committed, t.q.upserts...)
	return nil
}

func newStore(q *fakeQuerier) (*PolicyStore, *fakeTx) {
	tx := &fakeTx{q: q}
	return &PolicyStore{PolicyRepo: NewPolicyRepository(q), tx: tx}, tx
}

func upd(date string, blocked int) entity.PolicyUpdate {
	d, _ := time.Parse("2006-01-02", date)
	return entity.PolicyUpdate{RoomID: "room-1", TargetDate: d, Price: decimal.NewFromInt(90000), BlockedStock: blocked, IsActive: true}
}

// ──────────────────────────────────────────────────────────────────────────────
// Revalidación bajo FOR UPDATE
// ──────────────────────────────────────────────────────────────────────────────

func TestSaveDailyPolicy_RevalidaContraReservasBloqueadas(t *testing.T) {
	q := &fakeQuerier{total: 5, booked: map[string]int{"2026-11-01": 4}}
	store, tx := newStore(q)

	err := store.SaveDailyPolicy(context.Background(), upd("2026-11-01", 2))
	var sc *domain.StockConflictError
	require.ErrorAs(t, err, &sc)
	assert.Equal(t, 4, sc.MaxBooked)
	assert.Equal(t, 1, sc.SafeBlockLimit)
	assert.Empty(t, tx.committed)
	assert.Equal(t, 2, q.forUpdate, "habitación y fecha se leen con FOR UPDATE")
}

func TestSaveDailyPolicy_SinFilaPreviaGuarda(t *testing.T) {
	q := &fakeQuerier{total: 5, booked: map[string]int{}}
	store, tx := newStore(q)

	require.NoError(t, store.SaveDailyPolicy(context.Background(), upd("2026-11-01", 5)))
	assert.Len(t, tx.committed, 1)
}

// ──────────────────────────────────────────────────────────────────────────────
// Lote atómico
// ──────────────────────────────────────────────────────────────────────────────

func TestSaveBatch_ConflictoEnUnaFechaNoConfirmaNinguna(t *testing.T) {
	q := &fakeQuerier{total: 5, booked: map[string]int{"2026-11-02": 5}}
	store, tx := newStore(q)

	err := store.SaveBatch(context.Background(), []entity.PolicyUpdate{
		upd("2026-11-01", 1), upd("2026-11-02", 1), upd("2026-11-03", 1),
	})
	require.ErrorIs(t, err, domain.ErrStockConflict)
	assert.False(t, errors.Is(err, domain.ErrPersistence), "el conflicto no se reclasifica")
	assert.Empty(t, tx.committed)
}

func TestSaveBatch_TodoOK(t *testing.T) {
	q := &fakeQuerier{total: 5, booked: map[string]int{"2026-11-02": 3}}
	store, tx := newStore(q)

	require.NoError(t, store.SaveBatch(context.Background(), []entity.PolicyUpdate{
		upd("2026-11-01", 2), upd("2026-11-02", 2),
	}))
	assert.Len(t, tx.committed, 2)
	assert.Equal(t, 1, tx.runs)
}

func TestSaveBatch_ErroresDeEscrituraSeClasifican(t *testing.T) {
	tests := []struct {
		name    string
		execErr error
		want    error
	}{
		{"serialización", &pgconn.PgError{Code: codeSerializationFail}, domain.ErrPersistence},
		{"check de la tabla", &pgconn.PgError{Code: codeCheckViolation}, domain.ErrInvalidInput},
		{"conexión", errors.New("broken pipe"), domain.ErrPersistence},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &fakeQuerier{total: 5, booked: map[string]int{}, execErr: tt.execErr}
			store, tx := newStore(q)

			err := store.SaveBatch(context.Background(), []entity.PolicyUpdate{upd("2026-11-01", 1)})
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, tx.committed)
		})
	}
}

func TestSaveBatch_HabitacionInexistenteEsNotFound(t *testing.T) {
	store, _ := newStore(&fakeQuerier{roomErr: pgx.ErrNoRows})
	err := store.SaveBatch(context.Background(), []entity.PolicyUpdate{upd("2026-11-01", 1)})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSaveBatch_VariasHabitacionesSeRechaza(t *testing.T) {
	store, tx := newStore(&fakeQuerier{total: 5})
	other := upd("2026-11-02", 1)
	other.RoomID = "room-2"

	err := store.SaveBatch(context.Background(), []entity.PolicyUpdate{upd("2026-11-01", 1), other})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, tx.runs)
}
