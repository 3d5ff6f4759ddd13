// Package config loads station configuration from the environment.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelvins/geocoder"

	"weatherstation/internal/store"
	"weatherstation/internal/weather"
)

var validate = validator.New()

// AppConfig is the full station configuration.
type AppConfig struct {
	// Google Weather API key. The same key is reused for geocoding when only
	// a city is configured.
	GoogleAPIKey string `validate:"required"`

	Latitude  float64 `validate:"gte=-90,lte=90"`
	Longitude float64 `validate:"gte=-180,lte=180"`

	// Timezone is the IANA zone the display reports in; all hour bucketing
	// happens here, not in UTC.
	Timezone string `validate:"required"`

	ForecastDays int `validate:"oneof=3 5"`

	StoreBackend string `validate:"oneof=file sqlite"`
	StorePath    string

	SensorPath   string // empty disables the indoor sensor
	SensorMaxAge time.Duration

	DashboardPath string `validate:"required"`

	Port         string `validate:"required"`
	HTTPTimeout  time.Duration
	FetchTimeout time.Duration

	loc *time.Location
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{
		GoogleAPIKey:  os.Getenv("GOOGLE_WEATHER_API_KEY"),
		Timezone:      getenvDefault("STATION_TIMEZONE", "UTC"),
		ForecastDays:  getenvInt("FORECAST_DAYS", 3),
		StoreBackend:  getenvDefault("STORE_BACKEND", store.BackendFile),
		StorePath:     os.Getenv("STORE_PATH"),
		SensorPath:    os.Getenv("SENSOR_SAMPLE_PATH"),
		DashboardPath: getenvDefault("DASHBOARD_PATH", "dashboard.txt"),
		Port:          getenvDefault("PORT", "8080"),
	}

	var err error
	if cfg.SensorMaxAge, err = getenvDuration("SENSOR_MAX_AGE", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 20*time.Second); err != nil {
		return nil, err
	}
	if cfg.FetchTimeout, err = getenvDuration("FETCH_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}

	if err := cfg.resolveCoordinates(); err != nil {
		return nil, err
	}

	if cfg.loc, err = time.LoadLocation(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("invalid STATION_TIMEZONE %q: %w", cfg.Timezone, err)
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Location returns the station coordinates.
func (c *AppConfig) Location() weather.Location {
	return weather.Location{Latitude: c.Latitude, Longitude: c.Longitude}
}

// TZ returns the loaded display timezone.
func (c *AppConfig) TZ() *time.Location { return c.loc }

// resolveCoordinates takes explicit STATION_LATITUDE/STATION_LONGITUDE when
// set, otherwise geocodes STATION_CITY/STATION_COUNTRY.
func (c *AppConfig) resolveCoordinates() error {
	latStr, lonStr := os.Getenv("STATION_LATITUDE"), os.Getenv("STATION_LONGITUDE")
	if latStr != "" || lonStr != "" {
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return fmt.Errorf("invalid STATION_LATITUDE: %w", err)
		}
		lon, err := strconv.ParseFloat(lonStr, 64)
		if err != nil {
			return fmt.Errorf("invalid STATION_LONGITUDE: %w", err)
		}
		c.Latitude, c.Longitude = lat, lon
		return nil
	}

	city := os.Getenv("STATION_CITY")
	if city == "" {
		return fmt.Errorf("either STATION_LATITUDE/STATION_LONGITUDE or STATION_CITY must be set")
	}

	geocoder.ApiKey = c.GoogleAPIKey
	location, err := geocoder.Geocoding(geocoder.Address{
		City:    city,
		Country: os.Getenv("STATION_COUNTRY"),
	})
	if err != nil {
		return fmt.Errorf("geocoding %q failed: %w", city, err)
	}
	c.Latitude, c.Longitude = location.Latitude, location.Longitude
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
