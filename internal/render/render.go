// Package render turns the merged cache view into the dashboard. The e-paper
// pixel pipeline lives in the device firmware; this package owns the layout
// decisions that do not depend on a panel, and the text renderer used for
// headless deployments and debugging.
package render

import (
	"fmt"
	"os"
	"strings"

	"weatherstation/internal/cache"
	"weatherstation/internal/weather"
)

// Renderer consumes a read-only view after all merges of a cycle completed.
type Renderer interface {
	Render(v cache.View) error
}

// Text writes a fixed-width dashboard to a file, replacing it atomically so
// a watcher never sees a half-written frame.
type Text struct {
	path string
}

// NewText creates a text renderer targeting path.
func NewText(path string) *Text {
	return &Text{path: path}
}

func (r *Text) Render(v cache.View) error {
	out := Format(v)
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(out), 0o644); err != nil {
		return fmt.Errorf("render dashboard: %w", err)
	}
	return os.Rename(tmp, r.path)
}

// Format lays out the dashboard as text. Unset metrics render as blanks; the
// chart never plots "no data".
func Format(v cache.View) string {
	var b strings.Builder

	fmt.Fprintf(&b, "=== Weather (day %d, %02d:00) fresh: %s ===\n",
		v.Clock.DayOfYear, v.Clock.Hour, v.Fresh)

	if v.Current.Valid {
		c := v.Current
		fmt.Fprintf(&b, "%s  %.1f°C (feels %.1f°C)\n", c.ConditionText, c.Temp, c.FeelsLike)
		fmt.Fprintf(&b, "wind %.0f km/h gust %.0f dir %d°  humidity %d%%  rain %d%%  UV %d  %.0f hPa\n",
			c.WindSpeed, c.WindGust, c.WindDirection, c.Humidity, c.PrecipProbability, c.UVIndex, c.Pressure)
		if t, ok := c.Indoor.Temp.Value(); ok {
			fmt.Fprintf(&b, "indoor %.1f°C", t)
			if h, ok := c.Indoor.Humidity.Value(); ok {
				fmt.Fprintf(&b, "  %.0f%%", h)
			}
			if p, ok := c.Indoor.Pressure.Value(); ok {
				fmt.Fprintf(&b, "  %.0f hPa", p)
			}
			b.WriteByte('\n')
		}
	} else {
		b.WriteString("current conditions unavailable\n")
	}

	if len(v.Daily) > 0 {
		b.WriteString("\n")
		for _, d := range v.Daily {
			fmt.Fprintf(&b, "%-9s %-16s %5.1f / %-5.1f  ↑%s ↓%s\n",
				d.DayName, d.ConditionText, d.TempHigh, d.TempLow, d.Sunrise, d.Sunset)
		}
	}

	b.WriteString("\nhour  fc°C  rain%  act°C  mm    indoor°C\n")
	for _, s := range v.Timeline {
		fmt.Fprintf(&b, "%02d    %-5s %-6s %-6s %-5s %s\n",
			s.Hour,
			cell(s.ForecastTemp, "%.1f"),
			cell(s.RainProbability, "%.0f"),
			cell(s.ActualTemp, "%.1f"),
			cell(s.Rainfall, "%.1f"),
			cell(s.IndoorTemp, "%.1f"))
	}

	return b.String()
}

func cell(m weather.Metric, format string) string {
	v, ok := m.Value()
	if !ok {
		return "-"
	}
	return fmt.Sprintf(format, v)
}
