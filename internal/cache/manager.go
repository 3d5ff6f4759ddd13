// Package cache implements the staleness-gated weather cache. The manager
// owns the in-memory current/daily/hourly state and the persisted cache
// record; fetch collaborators hand it transient decoded payloads and never
// touch the store themselves.
package cache

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"weatherstation/internal/clock"
	"weatherstation/internal/store"
	"weatherstation/internal/weather"
)

// hourlyGroup covers the categories whose payload lives in the shared
// 24-slot timeline blob.
var hourlyGroup = weather.CategorySet(weather.CategoryHourlyForecast | weather.CategoryHistory)

// Manager decides on every wake which categories are still usable and merges
// fetched payloads into the day timeline. It is not safe for concurrent use;
// the station runs exactly one cycle at a time.
type Manager struct {
	store store.Store
	loc   *time.Location
	log   *slog.Logger

	// meta mirrors the durably persisted record. Its status only ever gains a
	// bit after the matching blob write has been confirmed.
	meta store.Meta

	current  weather.Current
	daily    []weather.DailyForecast
	timeline weather.Timeline
}

// NewManager creates a manager over the given store. loc is the station's
// display timezone, used to bucket UTC points into local hours.
func NewManager(st store.Store, loc *time.Location, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:    st,
		loc:      loc,
		log:      logger,
		timeline: weather.NewTimeline(),
	}
}

// LoadAndClassify reads the persisted record, decides which categories are
// still fresh relative to clk, loads their payloads into memory, and returns
// the set the caller must still fetch.
//
// Rules, in order:
//   - persisted day != today: everything is stale and the timeline is reset
//     to empty so a previous day's readings cannot leak into today's chart;
//   - same day, different hour: Daily keeps its persisted freshness, Current
//     is forced stale, and the hourly blob is re-read (it accumulates
//     observations all day) but its freshness flags are not honored;
//   - same day and hour: persisted flags are honored as-is.
//
// A payload that fails to decode downgrades its category to stale regardless
// of the persisted flag.
func (m *Manager) LoadAndClassify(clk clock.Logical) weather.CategorySet {
	m.current = weather.Current{}
	m.daily = nil
	m.timeline.Reset()

	snap, err := m.store.Load()
	if err != nil {
		if !errors.Is(err, store.ErrNoData) {
			m.log.Warn("cache load failed, refetching everything", "error", err)
		}
		m.meta = store.Meta{Day: clk.DayOfYear, Hour: clk.Hour}
		return staleFrom(0)
	}

	if snap.Meta.Day != clk.DayOfYear {
		m.log.Info("day rollover, cache invalidated",
			"savedDay", snap.Meta.Day, "day", clk.DayOfYear)
		m.meta = store.Meta{Day: clk.DayOfYear, Hour: clk.Hour}
		return staleFrom(0)
	}

	status := snap.Meta.Status
	hourMatches := snap.Meta.Hour == clk.Hour
	var fresh weather.CategorySet

	// Daily forecasts do not change hour to hour; day match is enough.
	if status.Has(weather.CategoryDaily) {
		daily, err := decodeDaily(snap.Blobs[store.BlobDaily])
		if err != nil {
			m.log.Warn("daily payload unreadable, forcing refetch", "error", err)
		} else {
			m.daily = daily
			fresh.Add(weather.CategoryDaily)
		}
	}

	// Current conditions are point-in-time; only the saved hour counts.
	if hourMatches && status.Has(weather.CategoryCurrent) {
		cur, err := decodeCurrent(snap.Blobs[store.BlobCurrent])
		if err != nil {
			m.log.Warn("current payload unreadable, forcing refetch", "error", err)
		} else {
			m.current = cur
			fresh.Add(weather.CategoryCurrent)
		}
	}

	// The hourly blob is re-read whenever it exists, even on an hour
	// rollover: indoor and history readings accumulated through the day must
	// survive. Freshness of forecast/history is honored only on an hour
	// match, and only if the payload actually decoded.
	if !status.Intersect(hourlyGroup).Empty() {
		tl, err := decodeTimeline(snap.Blobs[store.BlobHourly])
		if err != nil {
			m.log.Warn("hourly payload unreadable, forcing refetch", "error", err)
		} else {
			m.timeline = tl
			if hourMatches {
				fresh |= status.Intersect(hourlyGroup)
			}
		}
	}

	// Self-check: the flags may claim a fresh forecast while the slot for
	// "now" was never populated (sensor-only save after a day rollover with a
	// narrow fetch window). Distrust the whole hour-scoped group then.
	if fresh.Has(weather.CategoryHourlyForecast) {
		slot := m.timeline[clk.Hour]
		if !slot.ForecastTemp.Valid() && !slot.ActualTemp.Valid() {
			m.log.Warn("fresh flags but empty slot for current hour, invalidating",
				"hour", clk.Hour)
			fresh.Remove(weather.CategoryHourlyForecast, weather.CategoryHistory, weather.CategoryCurrent)
		}
	}

	m.meta = store.Meta{Day: clk.DayOfYear, Hour: clk.Hour, Status: fresh}
	return staleFrom(fresh)
}

// MergeCurrent replaces the current-conditions snapshot wholesale and
// persists it.
func (m *Manager) MergeCurrent(clk clock.Logical, cur weather.Current) error {
	indoor := m.current.Indoor // sensor-owned, survives the replace
	m.current = cur
	m.current.Indoor = indoor
	m.current.Valid = true
	return m.persist(clk, weather.CategoryCurrent)
}

// MergeDaily replaces the multi-day forecast wholesale and persists it.
func (m *Manager) MergeDaily(clk clock.Logical, daily []weather.DailyForecast) error {
	m.daily = daily
	return m.persist(clk, weather.CategoryDaily)
}

// MergeHourlyForecast clears the forecast-owned fields of every slot, then
// buckets each point into its local hour and writes forecast fields only.
// Points outside the local today are dropped silently. Clearing first means
// hours beyond the fetched window lose any previously-fetched forecast, which
// keeps the chart honest about what the API actually returned this cycle.
func (m *Manager) MergeHourlyForecast(clk clock.Logical, points []weather.ForecastPoint) error {
	m.timeline.ClearForecast()

	dropped := 0
	for _, p := range points {
		hour, ok := clock.LocalSlot(p.Time, m.loc, clk.DayOfYear)
		if !ok {
			dropped++
			continue
		}
		m.timeline.SetForecast(hour,
			weather.MetricOf(p.Temp),
			weather.MetricOf(float64(p.RainProbability)),
			p.Pressure)
	}
	if dropped > 0 {
		m.log.Debug("forecast points outside local today dropped", "count", dropped)
	}
	return m.persist(clk, weather.CategoryHourlyForecast)
}

// MergeHistory buckets observed hours into the timeline, writing the
// actual-owned fields only. Nothing is cleared first: observations accumulate.
func (m *Manager) MergeHistory(clk clock.Logical, points []weather.HistoryPoint) error {
	dropped := 0
	for _, p := range points {
		hour, ok := clock.LocalSlot(p.Time, m.loc, clk.DayOfYear)
		if !ok {
			dropped++
			continue
		}
		m.timeline.SetObserved(hour,
			weather.MetricOf(p.Temp),
			weather.MetricOf(p.Rainfall),
			p.Pressure)
	}
	if dropped > 0 {
		m.log.Debug("history points outside local today dropped", "count", dropped)
	}
	return m.persist(clk, weather.CategoryHistory)
}

// MergeSensor writes the indoor reading into the current hour's slot and the
// current-conditions snapshot. The sensor shares the hourly persistence
// group, so this is a write-through of the hourly blob even when no remote
// category was fetched this cycle.
func (m *Manager) MergeSensor(clk clock.Logical, r weather.IndoorReading) error {
	m.timeline.SetIndoor(clk.Hour, r.Temp, r.Pressure)
	m.current.Indoor = r
	return m.persist(clk, weather.CategoryHourlyForecast)
}

// persist writes the blob for cat's group and then the meta record with the
// category's freshness bit set. The in-memory meta is only advanced after the
// store confirms the write, so a failed save leaves the flag unset.
func (m *Manager) persist(clk clock.Logical, cat weather.Category) error {
	meta := m.meta
	if meta.Day != clk.DayOfYear {
		meta.Status = 0
		meta.Day = clk.DayOfYear
		meta.Hour = clk.Hour
	} else if meta.Hour != clk.Hour {
		meta.Status = meta.Status.Intersect(weather.CategorySet(weather.CategoryDaily))
		meta.Hour = clk.Hour
	}
	meta.Status.Add(cat)

	key, data, err := m.encodeGroup(cat)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", cat, err)
	}

	if err := m.store.Save(meta, map[string][]byte{key: data}); err != nil {
		return fmt.Errorf("persist %s: %w", cat, err)
	}
	m.meta = meta
	return nil
}

// View is the read-only snapshot the renderer and the status API consume.
type View struct {
	Clock    clock.Logical           `json:"clock"`
	Current  weather.Current         `json:"current"`
	Daily    []weather.DailyForecast `json:"daily"`
	Timeline weather.Timeline        `json:"timeline"`
	Fresh    weather.CategorySet     `json:"fresh"`
}

// View returns the merged in-memory state. Callers must take it only after
// all merges for the cycle have completed.
func (m *Manager) View() View {
	daily := make([]weather.DailyForecast, len(m.daily))
	copy(daily, m.daily)
	return View{
		Clock:    clock.Logical{DayOfYear: m.meta.Day, Hour: m.meta.Hour},
		Current:  m.current,
		Daily:    daily,
		Timeline: m.timeline,
		Fresh:    m.meta.Status,
	}
}

// staleFrom returns the complement of the fresh set.
func staleFrom(fresh weather.CategorySet) weather.CategorySet {
	stale := weather.AllCategories()
	stale.Remove(fresh.Slice()...)
	return stale
}
