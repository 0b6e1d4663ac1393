package repository

import (
	"context"
	"time"

	"github.com/jhoicas/rate-calendar-api/internal/domain/entity"
)

// PolicyRepository es el colaborador externo de persistencia del calendario (DIP).
// LoadWindow falla con domain.ErrNotFound si el alojamiento no existe y con
// domain.ErrUnavailable ante fallos de transporte. No reintenta.
type PolicyRepository interface {
	GetAccommodation(ctx context.Context, accommodationID string) (*entity.Accommodation, error)
	GetRoom(ctx context.Context, roomID string) (*entity.RoomInventory, error)
	LoadWindow(ctx context.Context, accommodationID string, start, end time.Time) ([]*entity.RoomWindow, error)
	SaveDailyPolicy(ctx context.Context, update entity.PolicyUpdate) error
}

// BatchSaver lo implementan los adaptadores capaces de guardar un lote de forma atómica.
// Si falla, no se aplicó ninguna fecha.
type BatchSaver interface {
	SaveBatch(ctx context.Context, updates []entity.PolicyUpdate) error
}
