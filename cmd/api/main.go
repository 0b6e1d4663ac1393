package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/rate-calendar-api/internal/application/ratecalendar"
	"github.com/jhoicas/rate-calendar-api/internal/domain/repository"
	infrapdf "github.com/jhoicas/rate-calendar-api/internal/infrastructure/pdf"
	"github.com/jhoicas/rate-calendar-api/internal/infrastructure/postgres"
	"github.com/jhoicas/rate-calendar-api/internal/infrastructure/remote"
	httpRouter "github.com/jhoicas/rate-calendar-api/internal/interfaces/http"
	"github.com/jhoicas/rate-calendar-api/pkg/clock"
	"github.com/jhoicas/rate-calendar-api/pkg/config"
	"github.com/jhoicas/rate-calendar-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("backend", cfg.Calendar.Backend).
		Msg("iniciando aplicación")

	location, err := cfg.Calendar.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("zona horaria del calendario")
	}

	ctx := context.Background()

	// Backend de políticas: PostgreSQL propio (lotes atómicos) o API REST externa (fecha por fecha).
	var policies repository.PolicyRepository
	switch cfg.Calendar.Backend {
	case config.BackendRemote:
		policies = remote.NewClient(cfg.Remote, log.Zerolog())
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		policies = postgres.NewPolicyStore(pool)
	}

	calendarUC := ratecalendar.NewCalendarUseCase(
		policies,
		ratecalendar.NewSubmissionGuard(),
		clock.NewRealClock(),
		ratecalendar.Settings{
			MaxHorizonMonths: cfg.Calendar.MaxHorizonMonths,
			MaxWindowDays:    cfg.Calendar.MaxWindowDays,
			Location:         location,
		},
		log.Zerolog(),
	)
	rateSheetUC := ratecalendar.NewRateSheetUseCase(calendarUC, infrapdf.NewMarotoRateSheetGenerator())

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Rate Calendar API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		CalendarUC:  calendarUC,
		RateSheetUC: rateSheetUC,
		JWTSecret:   cfg.JWT.Secret,
		Logger:      log.Zerolog(),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
