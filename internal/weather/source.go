package weather

import (
	"context"
	"time"
)

// ForecastPoint is one hour of forecast as returned by the remote API.
// Time is the UTC start of the hour interval.
type ForecastPoint struct {
	Time            time.Time
	Temp            float64
	RainProbability int
	Pressure        Metric // not every API response carries pressure
}

// HistoryPoint is one observed hour as returned by the remote API.
type HistoryPoint struct {
	Time     time.Time
	Temp     float64
	Rainfall float64
	Pressure Metric
}

// Source abstracts the remote weather API. Implementations own transport,
// decoding and resilience; callers only see structured values or an error.
// A failed fetch must leave no partial result behind.
type Source interface {
	FetchCurrent(ctx context.Context) (Current, error)
	FetchDaily(ctx context.Context, days int) ([]DailyForecast, error)
	FetchHourlyForecast(ctx context.Context, hoursAhead int) ([]ForecastPoint, error)
	FetchHistory(ctx context.Context, hoursBack int) ([]HistoryPoint, error)
}
