package station

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weatherstation/internal/cache"
	"weatherstation/internal/clock"
	"weatherstation/internal/store"
	"weatherstation/internal/weather"
)

type fixedClock struct {
	clk clock.Logical
	err error
}

func (f fixedClock) Now() (clock.Logical, error) { return f.clk, f.err }

// stubSource records which categories were fetched and can fail per category.
type stubSource struct {
	at      time.Time
	fetched []string
	fail    map[string]bool
}

func (s *stubSource) note(name string) error {
	s.fetched = append(s.fetched, name)
	if s.fail[name] {
		return weather.ErrFetchFailed
	}
	return nil
}

func (s *stubSource) FetchCurrent(context.Context) (weather.Current, error) {
	if err := s.note("current"); err != nil {
		return weather.Current{}, err
	}
	return weather.Current{Temp: 21.0}, nil
}

func (s *stubSource) FetchDaily(_ context.Context, days int) ([]weather.DailyForecast, error) {
	if err := s.note("daily"); err != nil {
		return nil, err
	}
	out := make([]weather.DailyForecast, days)
	for i := range out {
		out[i].DayName = "Thursday"
	}
	return out, nil
}

func (s *stubSource) FetchHourlyForecast(_ context.Context, hoursAhead int) ([]weather.ForecastPoint, error) {
	if err := s.note("hourly-forecast"); err != nil {
		return nil, err
	}
	var out []weather.ForecastPoint
	for i := 0; i < hoursAhead; i++ {
		out = append(out, weather.ForecastPoint{Time: s.at.Add(time.Duration(i) * time.Hour), Temp: 20})
	}
	return out, nil
}

func (s *stubSource) FetchHistory(_ context.Context, hoursBack int) ([]weather.HistoryPoint, error) {
	if err := s.note("history"); err != nil {
		return nil, err
	}
	var out []weather.HistoryPoint
	for i := 0; i < hoursBack; i++ {
		out = append(out, weather.HistoryPoint{Time: s.at.Add(-time.Duration(i) * time.Hour), Temp: 15})
	}
	return out, nil
}

type stubSensor struct {
	reading weather.IndoorReading
	err     error
	reads   int
}

func (s *stubSensor) Read(context.Context) (weather.IndoorReading, error) {
	s.reads++
	return s.reading, s.err
}

type recordingRenderer struct {
	views []cache.View
}

func (r *recordingRenderer) Render(v cache.View) error {
	r.views = append(r.views, v)
	return nil
}

// testRig wires a station over a file store in a temp dir.
type testRig struct {
	station  *Station
	store    store.Store
	source   *stubSource
	sensor   *stubSensor
	renderer *recordingRenderer
	clk      clock.Logical
}

func newRig(t *testing.T, hour int) *testRig {
	t.Helper()

	at := time.Date(2025, time.July, 10, hour, 0, 0, 0, time.UTC)
	clk := clock.Logical{DayOfYear: at.YearDay(), Hour: hour}

	st, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	src := &stubSource{at: at, fail: map[string]bool{}}
	sen := &stubSensor{reading: weather.IndoorReading{Temp: weather.MetricOf(22.5)}}
	ren := &recordingRenderer{}

	mgr := cache.NewManager(st, time.UTC, nil)
	stn := New(fixedClock{clk: clk}, mgr, src, sen, ren, Config{ForecastDays: 3}, nil)

	return &testRig{station: stn, store: st, source: src, sensor: sen, renderer: ren, clk: clk}
}

func TestRunCycleFetchesEverythingOnFirstWake(t *testing.T) {
	rig := newRig(t, 9)

	require.NoError(t, rig.station.RunCycle(context.Background()))

	assert.ElementsMatch(t, []string{"current", "daily", "hourly-forecast", "history"}, rig.source.fetched)
	assert.Equal(t, 1, rig.sensor.reads)
	require.Len(t, rig.renderer.views, 1)

	v := rig.renderer.views[0]
	assert.Equal(t, weather.AllCategories(), v.Fresh)
	assert.Equal(t, 21.0, v.Current.Temp)
	assert.Equal(t, 22.5, v.Current.Indoor.Temp.Or(0))
	assert.Len(t, v.Daily, 3)
	assert.Equal(t, 20.0, v.Timeline[9].ForecastTemp.Or(0))
	assert.Equal(t, 15.0, v.Timeline[8].ActualTemp.Or(0))
	assert.Equal(t, 22.5, v.Timeline[9].IndoorTemp.Or(0))
}

func TestRunCycleSkipsFreshCategories(t *testing.T) {
	rig := newRig(t, 9)
	require.NoError(t, rig.station.RunCycle(context.Background()))

	// Same hour, fresh process over the same store: nothing is refetched.
	src := &stubSource{fail: map[string]bool{}}
	sen := &stubSensor{reading: weather.IndoorReading{Temp: weather.MetricOf(23)}}
	ren := &recordingRenderer{}
	mgr := cache.NewManager(rig.store, time.UTC, nil)
	stn := New(fixedClock{clk: rig.clk}, mgr, src, sen, ren, Config{ForecastDays: 3}, nil)

	require.NoError(t, stn.RunCycle(context.Background()))
	assert.Empty(t, src.fetched)
	assert.Equal(t, 1, sen.reads, "the sensor is sampled every wake")
	assert.Len(t, ren.views, 1)
}

func TestRunCycleFailedFetchLeavesCategoryStale(t *testing.T) {
	rig := newRig(t, 9)
	rig.source.fail["current"] = true

	require.NoError(t, rig.station.RunCycle(context.Background()))

	v := rig.renderer.views[0]
	assert.False(t, v.Fresh.Has(weather.CategoryCurrent))
	assert.True(t, v.Fresh.Has(weather.CategoryDaily))
	assert.True(t, v.Fresh.Has(weather.CategoryHistory))
	assert.False(t, v.Current.Valid)
}

func TestRunCycleWithoutClockTouchesNothing(t *testing.T) {
	rig := newRig(t, 9)
	stn := New(fixedClock{err: weather.ErrTimeUnavailable}, cache.NewManager(rig.store, time.UTC, nil),
		rig.source, rig.sensor, rig.renderer, Config{}, nil)

	err := stn.RunCycle(context.Background())
	assert.ErrorIs(t, err, weather.ErrTimeUnavailable)
	assert.Empty(t, rig.source.fetched)
	assert.Zero(t, rig.sensor.reads)
	assert.Empty(t, rig.renderer.views)
}

func TestRunCycleFetchWindows(t *testing.T) {
	rig := newRig(t, 14)

	require.NoError(t, rig.station.RunCycle(context.Background()))

	v := rig.renderer.views[0]
	// 14:00 wake: forecast covers 14..23, history covers 0..14.
	assert.True(t, v.Timeline[14].ForecastTemp.Valid())
	assert.True(t, v.Timeline[23].ForecastTemp.Valid())
	assert.False(t, v.Timeline[13].ForecastTemp.Valid())
	assert.True(t, v.Timeline[0].ActualTemp.Valid())
	assert.True(t, v.Timeline[14].ActualTemp.Valid())
}

func TestRunCycleSensorFailureIsNotFatal(t *testing.T) {
	rig := newRig(t, 9)
	rig.sensor.err = errors.New("sensor gone")

	require.NoError(t, rig.station.RunCycle(context.Background()))
	require.Len(t, rig.renderer.views, 1)
	assert.False(t, rig.renderer.views[0].Current.Indoor.Temp.Valid())
}
