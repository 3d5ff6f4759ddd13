package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weatherstation/internal/cache"
	"weatherstation/internal/clock"
	"weatherstation/internal/weather"
)

func sampleView() cache.View {
	var fresh weather.CategorySet
	fresh.Add(weather.CategoryCurrent, weather.CategoryDaily)

	tl := weather.NewTimeline()
	tl.SetForecast(14, weather.MetricOf(23.4), weather.MetricOf(40), weather.MetricOf(1012))
	tl.SetObserved(8, weather.MetricOf(17.9), weather.MetricOf(0.6), weather.MetricOf(1013))
	tl.SetIndoor(14, weather.MetricOf(22.0), weather.MetricOf(1008))

	return cache.View{
		Clock: clock.Logical{DayOfYear: 196, Hour: 14},
		Current: weather.Current{
			ConditionText: "Partly sunny",
			Temp:          23.4,
			FeelsLike:     22.8,
			Humidity:      55,
			Indoor: weather.IndoorReading{
				Temp:     weather.MetricOf(22.0),
				Humidity: weather.MetricOf(45),
			},
			Valid: true,
		},
		Daily: []weather.DailyForecast{
			{DayName: "Tuesday", ConditionText: "Sunny", TempHigh: 28, TempLow: 17, Sunrise: "06:21", Sunset: "20:45"},
		},
		Timeline: tl,
		Fresh:    fresh,
	}
}

func TestFormat(t *testing.T) {
	out := Format(sampleView())

	assert.Contains(t, out, "day 196, 14:00")
	assert.Contains(t, out, "Partly sunny")
	assert.Contains(t, out, "23.4°C")
	assert.Contains(t, out, "indoor 22.0°C")
	assert.Contains(t, out, "Tuesday")
	assert.Contains(t, out, "06:21")

	// One line per hour slot plus the header rows.
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	var slotLines int
	for _, l := range lines {
		if len(l) >= 2 && l[0] >= '0' && l[0] <= '2' && l[1] >= '0' && l[1] <= '9' {
			slotLines++
		}
	}
	assert.Equal(t, weather.SlotsPerDay, slotLines)
}

func TestFormatUnsetMetricsRenderAsBlanks(t *testing.T) {
	out := Format(sampleView())

	// Hour 3 has no data at all; every cell is a dash.
	assert.Contains(t, out, "03    -     -      -      -     -")
}

func TestFormatInvalidCurrent(t *testing.T) {
	v := sampleView()
	v.Current = weather.Current{}

	out := Format(v)
	assert.Contains(t, out, "current conditions unavailable")
}

func TestTextRendererWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboard.txt")
	r := NewText(path)

	require.NoError(t, r.Render(sampleView()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Format(sampleView()), string(data))

	// No temp file left behind.
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
