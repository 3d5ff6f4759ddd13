package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/lmittmann/tint"

	httpapi "weatherstation/internal/api/http"
	"weatherstation/internal/cache"
	"weatherstation/internal/clock"
	"weatherstation/internal/config"
	"weatherstation/internal/render"
	"weatherstation/internal/scheduler"
	"weatherstation/internal/sensor"
	"weatherstation/internal/station"
	"weatherstation/internal/store"
	"weatherstation/internal/weather/providers"
)

func main() {
	once := flag.Bool("once", false, "run a single wake cycle, report the next wake time and exit")
	flag.Parse()

	log := newLogger()
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	st, err := store.Open(cfg.StoreBackend, cfg.StorePath)
	if err != nil {
		log.Error("failed to open store", "backend", cfg.StoreBackend, "path", cfg.StorePath, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}
	source := providers.NewGoogleWeather(httpClient, cfg.GoogleAPIKey, cfg.Location(), cfg.TZ())

	var indoor sensor.Reader = sensor.Disabled{}
	if cfg.SensorPath != "" {
		indoor = sensor.NewFileReader(cfg.SensorPath, cfg.SensorMaxAge)
	}

	mgr := cache.NewManager(st, cfg.TZ(), log.With("component", "cache"))

	stn := station.New(
		clock.NewSystem(cfg.TZ()),
		mgr,
		source,
		indoor,
		render.NewText(cfg.DashboardPath),
		station.Config{
			ForecastDays: cfg.ForecastDays,
			FetchTimeout: cfg.FetchTimeout,
		},
		log.With("component", "station"),
	)

	if *once {
		runOnce(stn, log)
		return
	}

	sched := scheduler.New(stn, log.With("component", "scheduler"))
	if err := sched.Start(); err != nil {
		log.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weatherstation",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weatherstation",
		})
	})

	httpapi.RegisterRoutes(app, stn)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("fiber server stopped", "error", err)
		}
	}()
	log.Info("station up", "port", cfg.Port, "timezone", cfg.Timezone,
		"nextWakeIn", clock.UntilNextWake(time.Now()).String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("error during shutdown", "error", err)
	}
}

// runOnce mimics a single battery wake: one cycle, then print how long a
// deep-sleeping host should wait before the next one.
func runOnce(stn *station.Station, log *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := stn.RunCycle(ctx); err != nil {
		log.Warn("cycle skipped", "error", err)
	}
	fmt.Printf("next wake in %s\n", clock.UntilNextWake(time.Now()))
}

func newLogger() *slog.Logger {
	if os.Getenv("LOG_FORMAT") == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		TimeFormat: time.Kitchen,
	}))
}
