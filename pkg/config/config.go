package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // zonas horarias embebidas para contenedores sin tzdata

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Backends de persistencia de políticas.
const (
	BackendPostgres = "postgres"
	BackendRemote   = "remote"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App      AppConfig
	DB       DBConfig
	JWT      JWTConfig
	HTTP     HTTPConfig
	Calendar CalendarConfig
	Remote   RemoteConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string `validate:"required,oneof=development staging production test"`
	Name     string `validate:"required"`
	LogLevel string `validate:"omitempty,oneof=trace debug info warn error"`
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int `validate:"min=1,max=65535"`
	User        string
	Password    string
	DBName      string
	SSLMode     string
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig configuración de JWT. Los tokens los emite el servicio de autenticación externo.
type JWTConfig struct {
	Secret string `validate:"required"`
	Issuer string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int `validate:"min=1,max=65535"`
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// CalendarConfig reglas del calendario de tarifas.
type CalendarConfig struct {
	MaxHorizonMonths int    `validate:"min=1,max=24"`
	MaxWindowDays    int    `validate:"min=1,max=400"`
	Timezone         string `validate:"required"`
	Backend          string `validate:"oneof=postgres remote"`
}

// Location resuelve la zona horaria que define "hoy".
func (c CalendarConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// RemoteConfig backend REST externo de políticas (POLICY_BACKEND=remote).
type RemoteConfig struct {
	BaseURL        string `validate:"omitempty,url"`
	APIKey         string
	TimeoutSeconds int     `validate:"min=1"`
	RatePerSecond  float64 `validate:"gt=0"`
	Burst          int     `validate:"min=1"`
	Enabled        bool
}

// Timeout devuelve el timeout HTTP como duración.
func (c RemoteConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, JWT_SECRET, CALENDAR_*, REMOTE_*, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	backend := strings.ToLower(getString(v, "POLICY_BACKEND", BackendPostgres))

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "rate-calendar-api"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "rate_calendar"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret: getString(v, "JWT_SECRET", ""),
			Issuer: getString(v, "JWT_ISSUER", "rate-calendar"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Calendar: CalendarConfig{
			MaxHorizonMonths: getInt(v, "CALENDAR_MAX_HORIZON_MONTHS", 6),
			MaxWindowDays:    getInt(v, "CALENDAR_MAX_WINDOW_DAYS", 62),
			Timezone:         getString(v, "CALENDAR_TIMEZONE", "Asia/Seoul"),
			Backend:          backend,
		},
		Remote: RemoteConfig{
			BaseURL:        getString(v, "REMOTE_BASE_URL", ""),
			APIKey:         getString(v, "REMOTE_API_KEY", ""),
			TimeoutSeconds: getInt(v, "REMOTE_TIMEOUT_SECONDS", 10),
			RatePerSecond:  getFloat(v, "REMOTE_RATE_PER_SECOND", 10),
			Burst:          getInt(v, "REMOTE_BURST", 5),
			Enabled:        backend == BackendRemote,
		},
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate revisa las etiquetas `validate` de la configuración.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		var fields []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, e := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", e.Namespace(), e.Tag()))
			}
			return fmt.Errorf("configuración inválida: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("configuración inválida: %w", err)
	}
	if cfg.Remote.Enabled && cfg.Remote.BaseURL == "" {
		return fmt.Errorf("configuración inválida: REMOTE_BASE_URL es obligatorio con POLICY_BACKEND=remote")
	}
	if _, err := cfg.Calendar.Location(); err != nil {
		return fmt.Errorf("configuración inválida: CALENDAR_TIMEZONE: %w", err)
	}
	return nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getFloat(v *viper.Viper, key string, def float64) float64 {
	if v.IsSet(key) {
		f, err := strconv.ParseFloat(strings.TrimSpace(v.GetString(key)), 64)
		if err != nil {
			return def
		}
		return f
	}
	return def
}
