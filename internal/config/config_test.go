package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GOOGLE_WEATHER_API_KEY", "test-key")
	t.Setenv("STATION_LATITUDE", "-37.81")
	t.Setenv("STATION_LONGITUDE", "144.96")
	t.Setenv("STATION_TIMEZONE", "Australia/Melbourne")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test-key", cfg.GoogleAPIKey)
	assert.Equal(t, -37.81, cfg.Latitude)
	assert.Equal(t, 144.96, cfg.Longitude)
	assert.Equal(t, 3, cfg.ForecastDays)
	assert.Equal(t, "file", cfg.StoreBackend)
	assert.Equal(t, "dashboard.txt", cfg.DashboardPath)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 15*time.Minute, cfg.SensorMaxAge)
	assert.Equal(t, 20*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "Australia/Melbourne", cfg.TZ().String())

	loc := cfg.Location()
	assert.Equal(t, -37.81, loc.Latitude)
}

func TestLoadOverrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("FORECAST_DAYS", "5")
	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("STORE_PATH", "/var/lib/ws/state.db")
	t.Setenv("SENSOR_SAMPLE_PATH", "/run/sensor.json")
	t.Setenv("SENSOR_MAX_AGE", "5m")
	t.Setenv("FETCH_TIMEOUT", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.ForecastDays)
	assert.Equal(t, "sqlite", cfg.StoreBackend)
	assert.Equal(t, "/var/lib/ws/state.db", cfg.StorePath)
	assert.Equal(t, "/run/sensor.json", cfg.SensorPath)
	assert.Equal(t, 5*time.Minute, cfg.SensorMaxAge)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
}

func TestLoadRequiresAPIKey(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("GOOGLE_WEATHER_API_KEY", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRequiresCoordinatesOrCity(t *testing.T) {
	t.Setenv("GOOGLE_WEATHER_API_KEY", "test-key")
	t.Setenv("STATION_LATITUDE", "")
	t.Setenv("STATION_LONGITUDE", "")
	t.Setenv("STATION_CITY", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"STATION_LATITUDE": "91",
		"STATION_TIMEZONE": "Mars/Olympus",
		"FORECAST_DAYS":    "4",
		"STORE_BACKEND":    "redis",
		"SENSOR_MAX_AGE":   "soon",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv(key, val)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
