package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/rate-calendar-api/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	t.Setenv("JWT_SECRET", "secreto")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, 6, cfg.Calendar.MaxHorizonMonths)
	assert.Equal(t, 62, cfg.Calendar.MaxWindowDays)
	assert.Equal(t, config.BackendPostgres, cfg.Calendar.Backend)
	assert.False(t, cfg.Remote.Enabled)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestLoad_VariablesDeEntorno(t *testing.T) {
	t.Setenv("JWT_SECRET", "secreto")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("CALENDAR_MAX_HORIZON_MONTHS", "3")
	t.Setenv("CALENDAR_TIMEZONE", "UTC")
	t.Setenv("POLICY_BACKEND", "remote")
	t.Setenv("REMOTE_BASE_URL", "http://policies.internal:8081")
	t.Setenv("REMOTE_RATE_PER_SECOND", "2.5")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 3, cfg.Calendar.MaxHorizonMonths)
	assert.True(t, cfg.Remote.Enabled)
	assert.Equal(t, 2.5, cfg.Remote.RatePerSecond)

	loc, err := cfg.Calendar.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func TestLoad_SinSecretoJWTFalla(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_RemotoSinURLFalla(t *testing.T) {
	t.Setenv("JWT_SECRET", "secreto")
	t.Setenv("POLICY_BACKEND", "remote")
	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REMOTE_BASE_URL")
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:word", DBName: "rates", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aword@db:5432/rates?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x@y/z"
	assert.Equal(t, "postgres://x@y/z", c.ConnectionString())
}
