// Package sensor exposes the indoor temperature/humidity/pressure sensor.
// The physical driver (I2C, onewire, whatever the deployment uses) is outside
// this process; it publishes samples as a small JSON file this package reads.
package sensor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"weatherstation/internal/weather"
)

// ErrUnavailable means no usable sample could be read this cycle. The cycle
// continues without an indoor reading.
var ErrUnavailable = errors.New("indoor sensor unavailable")

// Reader yields one indoor sample per call.
type Reader interface {
	Read(ctx context.Context) (weather.IndoorReading, error)
}

// sample is the driver's publication format.
type sample struct {
	TemperatureC float64 `json:"temperatureC"`
	HumidityPct  float64 `json:"humidityPct"`
	PressureHpa  float64 `json:"pressureHpa"`
}

// FileReader reads the latest driver-published sample from a file, rejecting
// samples older than maxAge (a dead driver must not keep feeding the chart
// the same reading all day).
type FileReader struct {
	path   string
	maxAge time.Duration
}

// NewFileReader creates a reader for the given sample file. maxAge <= 0
// disables the age check.
func NewFileReader(path string, maxAge time.Duration) *FileReader {
	return &FileReader{path: path, maxAge: maxAge}
}

func (r *FileReader) Read(_ context.Context) (weather.IndoorReading, error) {
	info, err := os.Stat(r.path)
	if err != nil {
		return weather.IndoorReading{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if r.maxAge > 0 && time.Since(info.ModTime()) > r.maxAge {
		return weather.IndoorReading{}, fmt.Errorf("%w: sample is %s old", ErrUnavailable, time.Since(info.ModTime()).Round(time.Second))
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		return weather.IndoorReading{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	var s sample
	if err := json.Unmarshal(data, &s); err != nil {
		return weather.IndoorReading{}, fmt.Errorf("%w: malformed sample: %v", ErrUnavailable, err)
	}

	return weather.IndoorReading{
		Temp:     weather.MetricOf(s.TemperatureC),
		Humidity: weather.MetricOf(s.HumidityPct),
		Pressure: weather.MetricOf(s.PressureHpa),
	}, nil
}

// Disabled is the reader used when no sensor is configured.
type Disabled struct{}

func (Disabled) Read(context.Context) (weather.IndoorReading, error) {
	return weather.IndoorReading{}, ErrUnavailable
}
