package weather

import (
	"encoding/json"
	"strconv"
)

// Metric is an optional numeric reading. The zero value means "no data yet",
// which the renderer treats as "do not plot". Using an explicit valid flag
// instead of an out-of-range sentinel keeps merge code from ever confusing a
// real value with an empty slot.
type Metric struct {
	value float64
	valid bool
}

// MetricOf returns a Metric holding v.
func MetricOf(v float64) Metric {
	return Metric{value: v, valid: true}
}

func (m Metric) Valid() bool { return m.valid }

// Value returns the reading and whether it is set.
func (m Metric) Value() (float64, bool) { return m.value, m.valid }

// Or returns the reading, or def when unset.
func (m Metric) Or(def float64) float64 {
	if !m.valid {
		return def
	}
	return m.value
}

// MarshalJSON encodes an unset Metric as null so persisted blobs and API
// responses round-trip without a sentinel.
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(m.value, 'g', -1, 64)), nil
}

func (m *Metric) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = Metric{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = MetricOf(v)
	return nil
}
