// Package clock abstrae la hora actual para poder fijarla en tests.
package clock

import (
	"sync"
	"time"
)

// Clock devuelve la hora actual.
type Clock interface {
	Now() time.Time
}

// RealClock usa la hora del sistema.
type RealClock struct{}

// Now devuelve time.Now().
func (RealClock) Now() time.Time { return time.Now() }

// NewRealClock construye el reloj del sistema.
func NewRealClock() Clock { return RealClock{} }

// MockClock devuelve una hora controlable.
type MockClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewMockClock crea un MockClock fijo en t.
func NewMockClock(t time.Time) *MockClock { return &MockClock{now: t} }

// Now devuelve la hora fijada.
func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance mueve el reloj hacia adelante.
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}
