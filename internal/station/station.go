// Package station orchestrates one wake cycle: establish the clock, classify
// the cache, fetch only what went stale, merge, read the indoor sensor, and
// render. Rendering happens strictly after the last merge.
package station

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"weatherstation/internal/cache"
	"weatherstation/internal/clock"
	"weatherstation/internal/render"
	"weatherstation/internal/sensor"
	"weatherstation/internal/weather"
)

// Station wires the wake-cycle collaborators together.
type Station struct {
	clock    clock.Source
	cache    *cache.Manager
	source   weather.Source
	sensor   sensor.Reader
	renderer render.Renderer
	log      *slog.Logger

	forecastDays int
	fetchTimeout time.Duration
}

// Config holds the per-deployment knobs of a cycle.
type Config struct {
	ForecastDays int           // 3 or 5 depending on the panel layout
	FetchTimeout time.Duration // per-category fetch budget
}

// New creates a station.
func New(clk clock.Source, mgr *cache.Manager, src weather.Source, sen sensor.Reader, r render.Renderer, cfg Config, logger *slog.Logger) *Station {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 15 * time.Second
	}
	if cfg.ForecastDays <= 0 {
		cfg.ForecastDays = 3
	}
	return &Station{
		clock:        clk,
		cache:        mgr,
		source:       src,
		sensor:       sen,
		renderer:     r,
		log:          logger,
		forecastDays: cfg.ForecastDays,
		fetchTimeout: cfg.FetchTimeout,
	}
}

// RunCycle executes one wake cycle. It returns an error only when local time
// could not be established; every per-category failure degrades to "keep what
// we have, category stays stale for the next wake".
func (s *Station) RunCycle(ctx context.Context) error {
	clk, err := s.clock.Now()
	if err != nil {
		// No clock means no freshness decisions: leave persisted state alone
		// and let the scheduler try again next hour.
		s.log.Error("cannot establish local time, skipping cycle", "error", err)
		return err
	}

	log := s.log.With("cycle", uuid.NewString(), "clock", clk.String())

	stale := s.cache.LoadAndClassify(clk)
	log.Info("wake", "stale", stale.String())

	if stale.Has(weather.CategoryCurrent) {
		s.fetch(ctx, log, weather.CategoryCurrent, func(fctx context.Context) error {
			cur, err := s.source.FetchCurrent(fctx)
			if err != nil {
				return err
			}
			return s.cache.MergeCurrent(clk, cur)
		})
	}

	if stale.Has(weather.CategoryDaily) {
		s.fetch(ctx, log, weather.CategoryDaily, func(fctx context.Context) error {
			daily, err := s.source.FetchDaily(fctx, s.forecastDays)
			if err != nil {
				return err
			}
			return s.cache.MergeDaily(clk, daily)
		})
	}

	if stale.Has(weather.CategoryHourlyForecast) {
		// Enough hours to cover the rest of the local day.
		hoursAhead := weather.SlotsPerDay - clk.Hour
		s.fetch(ctx, log, weather.CategoryHourlyForecast, func(fctx context.Context) error {
			points, err := s.source.FetchHourlyForecast(fctx, hoursAhead)
			if err != nil {
				return err
			}
			return s.cache.MergeHourlyForecast(clk, points)
		})
	}

	if stale.Has(weather.CategoryHistory) {
		// The local day so far, midnight through the current hour.
		hoursBack := clk.Hour + 1
		s.fetch(ctx, log, weather.CategoryHistory, func(fctx context.Context) error {
			points, err := s.source.FetchHistory(fctx, hoursBack)
			if err != nil {
				return err
			}
			return s.cache.MergeHistory(clk, points)
		})
	}

	// The sensor is sampled every wake regardless of what was fetched.
	if reading, err := s.sensor.Read(ctx); err != nil {
		log.Warn("indoor sensor read failed", "error", err)
	} else if err := s.cache.MergeSensor(clk, reading); err != nil {
		log.Warn("indoor sensor merge not persisted", "error", err)
	}

	if err := s.renderer.Render(s.cache.View()); err != nil {
		log.Error("render failed", "error", err)
	}

	log.Info("cycle complete", "nextWakeIn", clock.UntilNextWake(time.Now()).String())
	return nil
}

// View exposes the merged state for the status API.
func (s *Station) View() cache.View { return s.cache.View() }

// fetch runs one category's fetch-and-merge under the per-category timeout.
// Any failure is logged and swallowed; the category simply stays stale.
func (s *Station) fetch(ctx context.Context, log *slog.Logger, cat weather.Category, f func(context.Context) error) {
	fctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	if err := f(fctx); err != nil {
		log.Warn("category left stale", "category", cat.String(), "error", err)
		return
	}
	log.Debug("category refreshed", "category", cat.String())
}
