package providers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"weatherstation/internal/weather"
)

// GoogleWeather implements weather.Source against the Google Weather API.
// Responses are plucked field-by-field with gjson; everything the station
// does not chart is ignored at the decode boundary.
type GoogleWeather struct {
	name    string
	apiKey  string
	baseURL string
	loc     weather.Location
	tz      *time.Location
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewGoogleWeather creates the source for one location. tz is the station's
// display timezone, used only to localize sunrise/sunset clock times.
func NewGoogleWeather(client *http.Client, apiKey string, loc weather.Location, tz *time.Location) *GoogleWeather {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "googleweather",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &GoogleWeather{
		name:    "googleweather",
		apiKey:  apiKey,
		baseURL: "https://weather.googleapis.com/v1",
		loc:     loc,
		tz:      tz,
		httpCfg: HTTPClientConfig{
			Client: client,
			// Well under the API's per-minute quota; a station only makes a
			// few calls per hour.
			Limiter: rate.NewLimiter(rate.Limit(1), 5),
			Backoff: BackoffConfig{
				MaxRetries:      3,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: cb,
	}
}

func (g *GoogleWeather) Name() string { return g.name }

// get performs one API call and returns the response body.
func (g *GoogleWeather) get(ctx context.Context, endpoint string, extra url.Values) ([]byte, error) {
	if g.apiKey == "" {
		return nil, fmt.Errorf("%w: google weather api key is not configured", weather.ErrFetchFailed)
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("key", g.apiKey)
		values.Set("location.latitude", fmt.Sprintf("%f", g.loc.Latitude))
		values.Set("location.longitude", fmt.Sprintf("%f", g.loc.Longitude))
		values.Set("unitsSystem", "METRIC")
		for k, vs := range extra {
			for _, v := range vs {
				values.Set(k, v)
			}
		}
		u := fmt.Sprintf("%s/%s?%s", g.baseURL, endpoint, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, g.httpCfg, g.circuit, buildRequest)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", weather.ErrFetchFailed, endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", weather.ErrFetchFailed, endpoint, err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: %s: response is not valid JSON", weather.ErrDecodeFailed, endpoint)
	}
	return body, nil
}

// FetchCurrent returns the current outdoor conditions.
func (g *GoogleWeather) FetchCurrent(ctx context.Context) (weather.Current, error) {
	body, err := g.get(ctx, "currentConditions:lookup", nil)
	if err != nil {
		return weather.Current{}, err
	}

	doc := gjson.ParseBytes(body)
	if !doc.Get("temperature.degrees").Exists() {
		return weather.Current{}, fmt.Errorf("%w: current conditions missing temperature", weather.ErrDecodeFailed)
	}

	return weather.Current{
		ConditionText:     doc.Get("weatherCondition.description.text").String(),
		IconName:          iconNameFromURI(doc.Get("weatherCondition.iconBaseUri").String()),
		Temp:              doc.Get("temperature.degrees").Float(),
		FeelsLike:         doc.Get("feelsLikeTemperature.degrees").Float(),
		WindSpeed:         doc.Get("wind.speed.value").Float(),
		WindGust:          doc.Get("wind.gust.value").Float(),
		WindDirection:     int(doc.Get("wind.direction.degrees").Int()),
		Humidity:          int(doc.Get("relativeHumidity").Int()),
		PrecipProbability: int(doc.Get("precipitation.probability.percent").Int()),
		UVIndex:           int(doc.Get("uvIndex").Int()),
		Pressure:          doc.Get("airPressure.meanSeaLevelMillibars").Float(),
		Valid:             true,
	}, nil
}

// FetchDaily returns per-day summaries for the next days days.
func (g *GoogleWeather) FetchDaily(ctx context.Context, days int) ([]weather.DailyForecast, error) {
	body, err := g.get(ctx, "forecast/days:lookup", url.Values{"days": {fmt.Sprint(days)}})
	if err != nil {
		return nil, err
	}

	forecasts := gjson.GetBytes(body, "forecastDays")
	if !forecasts.IsArray() {
		return nil, fmt.Errorf("%w: daily response has no forecastDays", weather.ErrDecodeFailed)
	}

	var out []weather.DailyForecast
	for _, f := range forecasts.Array() {
		if len(out) >= days {
			break
		}
		d := weather.DailyForecast{
			DayName: dayName(
				int(f.Get("displayDate.year").Int()),
				int(f.Get("displayDate.month").Int()),
				int(f.Get("displayDate.day").Int())),
			IconName:      iconNameFromURI(f.Get("daytimeForecast.weatherCondition.iconBaseUri").String()),
			ConditionText: f.Get("daytimeForecast.weatherCondition.description.text").String(),
			TempHigh:      f.Get("maxTemperature.degrees").Float(),
			TempLow:       f.Get("minTemperature.degrees").Float(),
		}
		d.Sunrise, d.SunriseHour = g.localClockTime(f.Get("sunEvents.sunriseTime").String())
		d.Sunset, d.SunsetHour = g.localClockTime(f.Get("sunEvents.sunsetTime").String())
		out = append(out, d)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: daily response had no usable days", weather.ErrDecodeFailed)
	}
	return out, nil
}

// FetchHourlyForecast returns hourly forecast points starting from now.
func (g *GoogleWeather) FetchHourlyForecast(ctx context.Context, hoursAhead int) ([]weather.ForecastPoint, error) {
	body, err := g.get(ctx, "forecast/hours:lookup", url.Values{"hours": {fmt.Sprint(hoursAhead)}})
	if err != nil {
		return nil, err
	}

	hours := gjson.GetBytes(body, "forecastHours")
	if !hours.IsArray() {
		return nil, fmt.Errorf("%w: hourly response has no forecastHours", weather.ErrDecodeFailed)
	}

	var out []weather.ForecastPoint
	for _, h := range hours.Array() {
		ts, err := time.Parse(time.RFC3339, h.Get("interval.startTime").String())
		if err != nil {
			continue // unparseable interval; skip the point, keep the rest
		}
		out = append(out, weather.ForecastPoint{
			Time:            ts.UTC(),
			Temp:            h.Get("temperature.degrees").Float(),
			RainProbability: int(h.Get("precipitation.probability.percent").Int()),
			Pressure:        pressureOf(h),
		})
	}
	return out, nil
}

// FetchHistory returns observed hours going back from now.
func (g *GoogleWeather) FetchHistory(ctx context.Context, hoursBack int) ([]weather.HistoryPoint, error) {
	body, err := g.get(ctx, "history/hours:lookup", url.Values{"hours": {fmt.Sprint(hoursBack)}})
	if err != nil {
		return nil, err
	}

	hours := gjson.GetBytes(body, "historyHours")
	if !hours.IsArray() {
		return nil, fmt.Errorf("%w: history response has no historyHours", weather.ErrDecodeFailed)
	}

	var out []weather.HistoryPoint
	for _, h := range hours.Array() {
		ts, err := time.Parse(time.RFC3339, h.Get("interval.startTime").String())
		if err != nil {
			continue
		}
		p := weather.HistoryPoint{
			Time:     ts.UTC(),
			Temp:     h.Get("temperature.degrees").Float(),
			Pressure: pressureOf(h),
		}
		// Rainfall is omitted for dry hours; an observed hour with no
		// rainfall field means zero rain, not missing data.
		p.Rainfall = h.Get("precipitation.rainfallMM").Float()
		out = append(out, p)
	}
	return out, nil
}

// pressureOf reads mean-sea-level pressure from whichever key the API used.
func pressureOf(h gjson.Result) weather.Metric {
	if v := h.Get("pressure.meanSeaLevelMillibars"); v.Exists() {
		return weather.MetricOf(v.Float())
	}
	if v := h.Get("airPressure.meanSeaLevelMillibars"); v.Exists() {
		return weather.MetricOf(v.Float())
	}
	return weather.Metric{}
}

// iconNameFromURI extracts the bare icon name from an icon URI,
// e.g. "https://maps.gstatic.com/weather/v1/partly_clear.png" -> "partly_clear".
func iconNameFromURI(uri string) string {
	lastSlash := strings.LastIndexByte(uri, '/')
	dot := strings.LastIndexByte(uri, '.')
	if lastSlash != -1 && dot > lastSlash {
		return uri[lastSlash+1 : dot]
	}
	if lastSlash != -1 {
		return uri[lastSlash+1:]
	}
	return uri
}

// dayName returns the weekday name for a calendar date.
func dayName(year, month, day int) string {
	if year == 0 {
		return ""
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC).Weekday().String()
}

// localClockTime converts an ISO-8601 UTC instant to the station-local
// "HH:MM" display string and fractional hour. Returns zero values when the
// field is absent or unparseable.
func (g *GoogleWeather) localClockTime(iso string) (string, float64) {
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return "", 0
	}
	local := t.In(g.tz)
	return fmt.Sprintf("%02d:%02d", local.Hour(), local.Minute()),
		float64(local.Hour()) + float64(local.Minute())/60.0
}

var _ weather.Source = (*GoogleWeather)(nil)
