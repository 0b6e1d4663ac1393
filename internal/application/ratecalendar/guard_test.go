package ratecalendar_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "github.com/jhoicas/rate-calendar-api/internal/application/ratecalendar"
	"github.com/jhoicas/rate-calendar-api/internal/domain"
)

func TestSubmissionGuard_UnEnvioPorHabitacion(t *testing.T) {
	g := app.NewSubmissionGuard()

	release, err := g.Acquire("room-1")
	require.NoError(t, err)

	_, err = g.Acquire("room-1")
	assert.ErrorIs(t, err, domain.ErrSubmissionInFlight)

	other, err := g.Acquire("room-2")
	require.NoError(t, err)
	other()

	release()
	release() // idempotente

	again, err := g.Acquire("room-1")
	require.NoError(t, err)
	again()
}

func TestSubmissionGuard_StaleHastaRecargar(t *testing.T) {
	g := app.NewSubmissionGuard()
	g.MarkStale("room-1")
	assert.True(t, g.IsStale("room-1"))

	_, err := g.Acquire("room-1")
	assert.ErrorIs(t, err, domain.ErrReloadRequired)

	g.Clear("room-1", "room-9")
	assert.False(t, g.IsStale("room-1"))

	release, err := g.Acquire("room-1")
	require.NoError(t, err)
	release()
}

func TestSubmissionGuard_StaleDuranteEnvio(t *testing.T) {
	g := app.NewSubmissionGuard()
	release, err := g.Acquire("room-1")
	require.NoError(t, err)

	g.MarkStale("room-1")
	release()

	assert.True(t, g.IsStale("room-1"), "liberar no borra la marca de recarga")
	_, err = g.Acquire("room-1")
	assert.ErrorIs(t, err, domain.ErrReloadRequired)
}

func TestSubmissionGuard_Concurrente(t *testing.T) {
	g := app.NewSubmissionGuard()
	const n = 32

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		acquired []func()
		rejected int
	)
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			release, err := g.Acquire("room-1")
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				rejected++
				return
			}
			acquired = append(acquired, release)
		}()
	}
	close(start)
	wg.Wait()

	assert.Len(t, acquired, 1)
	assert.Equal(t, n-1, rejected)
	for _, r := range acquired {
		r()
	}
}
