package ratecalendar_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/rate-calendar-api/internal/domain"
	"github.com/jhoicas/rate-calendar-api/internal/domain/entity"
	rc "github.com/jhoicas/rate-calendar-api/internal/domain/ratecalendar"
)

// memRepo implementa repository.PolicyRepository en memoria y cuenta las llamadas.
type memRepo struct {
	mu       sync.Mutex
	accs     map[string]entity.Accommodation
	rooms    map[string]entity.RoomInventory
	policies map[string]entity.DailyPolicy

	loads int
	saves []entity.PolicyUpdate

	failSave map[string]error // fecha -> error al guardar
	loadErr  error

	// saveEntered/saveRelease permiten pausar un guardado en curso.
	saveEntered chan struct{}
	saveRelease chan struct{}
}

func newMemRepo() *memRepo {
	return &memRepo{
		accs:     map[string]entity.Accommodation{},
		rooms:    map[string]entity.RoomInventory{},
		policies: map[string]entity.DailyPolicy{},
		failSave: map[string]error{},
	}
}

func policyKey(roomID string, d time.Time) string { return roomID + "|" + rc.DateKey(d) }

func (m *memRepo) addAccommodation(id, partnerID string) {
	m.accs[id] = entity.Accommodation{ID: id, PartnerID: partnerID, Name: "Hotel " + id}
}

func (m *memRepo) addRoom(id, accID string, total int) {
	m.rooms[id] = entity.RoomInventory{RoomID: id, AccommodationID: accID, Name: "Room " + id, TotalStock: total}
}

func (m *memRepo) setBooked(roomID string, d time.Time, booked int) {
	p, ok := m.policies[policyKey(roomID, d)]
	if !ok {
		p = entity.EmptyPolicy(roomID, d)
	}
	p.BookedStock = booked
	m.policies[policyKey(roomID, d)] = p
}

func (m *memRepo) policy(roomID string, d time.Time) (entity.DailyPolicy, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.policies[policyKey(roomID, d)]
	return p, ok
}

func (m *memRepo) counts() (loads, saves int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loads, len(m.saves)
}

func (m *memRepo) GetAccommodation(_ context.Context, id string) (*entity.Accommodation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	acc, ok := m.accs[id]
	if !ok {
		return nil, nil
	}
	return &acc, nil
}

func (m *memRepo) GetRoom(_ context.Context, id string) (*entity.RoomInventory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	r, ok := m.rooms[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *memRepo) LoadWindow(_ context.Context, accID string, start, end time.Time) ([]*entity.RoomWindow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if _, ok := m.accs[accID]; !ok {
		return nil, domain.ErrNotFound
	}
	var out []*entity.RoomWindow
	for _, r := range m.rooms {
		if r.AccommodationID != accID {
			continue
		}
		w := &entity.RoomWindow{Room: r}
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			if p, ok := m.policies[policyKey(r.RoomID, d)]; ok {
				w.Policies = append(w.Policies, p)
			}
		}
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Room.Name < out[j].Room.Name })
	return out, nil
}

func (m *memRepo) SaveDailyPolicy(_ context.Context, u entity.PolicyUpdate) error {
	if m.saveEntered != nil {
		m.saveEntered <- struct{}{}
		<-m.saveRelease
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failSave[rc.DateKey(u.TargetDate)]; ok {
		return err
	}
	m.saves = append(m.saves, u)
	m.apply(u)
	return nil
}

// apply escribe valores absolutos y conserva las reservas externas.
func (m *memRepo) apply(u entity.PolicyUpdate) {
	key := policyKey(u.RoomID, u.TargetDate)
	p, ok := m.policies[key]
	if !ok {
		p = entity.EmptyPolicy(u.RoomID, u.TargetDate)
	}
	price := u.Price
	p.Price = &price
	p.BlockedStock = u.BlockedStock
	p.IsActive = u.IsActive
	m.policies[key] = p
}

// batchRepo agrega guardado atómico sobre memRepo.
type batchRepo struct {
	*memRepo
	batches  int
	batchErr error
}

func (b *batchRepo) SaveBatch(_ context.Context, updates []entity.PolicyUpdate) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.batches++
	if b.batchErr != nil {
		return b.batchErr
	}
	for _, u := range updates {
		b.apply(u)
	}
	return nil
}
