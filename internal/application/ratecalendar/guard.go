package ratecalendar

import (
	"sync"

	"github.com/jhoicas/rate-calendar-api/internal/domain"
)

// SubmissionGuard evita envíos superpuestos por habitación y bloquea nuevas ediciones
// después de un lote parcial hasta que la ventana se recargue.
type SubmissionGuard struct {
	mu    sync.Mutex
	rooms map[string]*roomState
}

type roomState struct {
	inFlight bool
	stale    bool
}

// NewSubmissionGuard construye el guard vacío.
func NewSubmissionGuard() *SubmissionGuard {
	return &SubmissionGuard{rooms: make(map[string]*roomState)}
}

// Acquire marca la habitación como "en curso". La función devuelta libera la marca y es idempotente.
func (g *SubmissionGuard) Acquire(roomID string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	st := g.state(roomID)
	if st.inFlight {
		return nil, domain.ErrSubmissionInFlight
	}
	if st.stale {
		return nil, domain.ErrReloadRequired
	}
	st.inFlight = true

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			defer g.mu.Unlock()
			if st, ok := g.rooms[roomID]; ok {
				st.inFlight = false
				g.gc(roomID, st)
			}
		})
	}, nil
}

// MarkStale exige recargar la ventana antes de volver a editar la habitación.
func (g *SubmissionGuard) MarkStale(roomID string) {
	g.mu.Lock()
	g.state(roomID).stale = true
	g.mu.Unlock()
}

// Clear quita la marca de recarga pendiente (tras una carga exitosa de la ventana).
func (g *SubmissionGuard) Clear(roomIDs ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, id := range roomIDs {
		if st, ok := g.rooms[id]; ok {
			st.stale = false
			g.gc(id, st)
		}
	}
}

// IsStale indica si la habitación requiere recarga.
func (g *SubmissionGuard) IsStale(roomID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	st, ok := g.rooms[roomID]
	return ok && st.stale
}

func (g *SubmissionGuard) state(roomID string) *roomState {
	st, ok := g.rooms[roomID]
	if !ok {
		st = &roomState{}
		g.rooms[roomID] = st
	}
	return st
}

func (g *SubmissionGuard) gc(roomID string, st *roomState) {
	if !st.inFlight && !st.stale {
		delete(g.rooms, roomID)
	}
}
