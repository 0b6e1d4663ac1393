package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/rate-calendar-api/internal/domain"
)

func TestWriteErr_ClasificaSQLState(t *testing.T) {
	tests := []struct {
		name string
		code string
		want error
	}{
		{"habitación borrada", codeForeignKeyViolation, domain.ErrNotFound},
		{"check de la tabla", codeCheckViolation, domain.ErrInvalidInput},
		{"serialización", codeSerializationFail, domain.ErrPersistence},
		{"deadlock", codeDeadlockDetected, domain.ErrPersistence},
		{"otro", "XX000", domain.ErrPersistence},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := writeErr("upsert policy", &pgconn.PgError{Code: tt.code})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestReadErr_EsUnavailable(t *testing.T) {
	err := readErr("list rooms", errors.New("connection refused"))
	assert.ErrorIs(t, err, domain.ErrUnavailable)
	assert.Contains(t, err.Error(), "list rooms")
}

func TestIsDomainErr(t *testing.T) {
	assert.True(t, isDomainErr(&domain.StockConflictError{RoomID: "r"}))
	assert.True(t, isDomainErr(domain.ErrNotFound))
	assert.False(t, isDomainErr(errors.New("commit transaction: broken pipe")))
}
