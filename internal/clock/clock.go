// Package clock provides the station's logical clock and the UTC-to-local
// hour bucketing used to place API data points on the 24-slot day timeline.
package clock

import (
	"fmt"
	"time"

	"weatherstation/internal/weather"
)

// Logical is the (day, hour) pair every freshness decision is judged against.
// It is read once at the start of a wake cycle and never mutated afterwards.
type Logical struct {
	DayOfYear int // 1-366, in the station's local zone
	Hour      int // 0-23
}

func (l Logical) String() string {
	return fmt.Sprintf("day %d hour %d", l.DayOfYear, l.Hour)
}

// At builds the logical clock for an instant in the given zone.
func At(t time.Time, loc *time.Location) Logical {
	local := t.In(loc)
	return Logical{DayOfYear: local.YearDay(), Hour: local.Hour()}
}

// LocalSlot maps an absolute UTC instant to a slot of the reference local
// day. Points whose local calendar day is not refDay are rejected, not
// clamped: an hour that is "today" in UTC can be yesterday or tomorrow
// locally, and those must never land on today's chart.
//
// During a DST fall-back the repeated local hour yields the same slot for two
// distinct UTC hours; the merge layer resolves that as last write wins.
func LocalSlot(utc time.Time, loc *time.Location, refDay int) (int, bool) {
	local := utc.In(loc)
	if local.YearDay() != refDay {
		return 0, false
	}
	return local.Hour(), true
}

// UntilNextWake returns how long to sleep so the next wake lands on the next
// hour boundary, never less than one second.
func UntilNextWake(now time.Time) time.Duration {
	secs := 3600 - (now.Minute()*60 + now.Second())
	if secs < 1 {
		secs = 1
	}
	return time.Duration(secs) * time.Second
}

// Source yields the logical clock, failing when time cannot be established.
type Source interface {
	Now() (Logical, error)
}

// System reads the operating system clock in a fixed zone. If the wall clock
// has clearly never been synced (the epoch-ish default an RTC boots with) it
// reports weather.ErrTimeUnavailable instead of producing a bogus clock.
type System struct {
	loc *time.Location
}

// NewSystem returns a system clock source for the given zone.
func NewSystem(loc *time.Location) *System {
	return &System{loc: loc}
}

// minSaneYear guards against an unsynced clock: anything earlier than this
// cannot be a real wake time for this device.
const minSaneYear = 2020

func (s *System) Now() (Logical, error) {
	now := time.Now()
	if now.Year() < minSaneYear {
		return Logical{}, fmt.Errorf("%w: system clock reports %s", weather.ErrTimeUnavailable, now.Format(time.RFC3339))
	}
	return At(now, s.loc), nil
}
