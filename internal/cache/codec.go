package cache

import (
	"encoding/json"
	"errors"
	"fmt"

	"weatherstation/internal/store"
	"weatherstation/internal/weather"
)

// Payload blobs are JSON. A missing blob, malformed JSON, or a timeline of
// the wrong length all read as corrupt: the category is downgraded to stale
// and refetched, never trusted partially.

var errMissingBlob = errors.New("payload blob missing")

func decodeCurrent(data []byte) (weather.Current, error) {
	if len(data) == 0 {
		return weather.Current{}, errMissingBlob
	}
	var cur weather.Current
	if err := json.Unmarshal(data, &cur); err != nil {
		return weather.Current{}, err
	}
	return cur, nil
}

func decodeDaily(data []byte) ([]weather.DailyForecast, error) {
	if len(data) == 0 {
		return nil, errMissingBlob
	}
	var daily []weather.DailyForecast
	if err := json.Unmarshal(data, &daily); err != nil {
		return nil, err
	}
	return daily, nil
}

func decodeTimeline(data []byte) (weather.Timeline, error) {
	if len(data) == 0 {
		return weather.Timeline{}, errMissingBlob
	}
	// Decode into a slice first: unmarshalling a short array into
	// [24]HourlySlot would silently zero-fill the tail, and a size mismatch
	// must read as corruption instead.
	var slots []weather.HourlySlot
	if err := json.Unmarshal(data, &slots); err != nil {
		return weather.Timeline{}, err
	}
	if len(slots) != weather.SlotsPerDay {
		return weather.Timeline{}, fmt.Errorf("timeline has %d slots, want %d", len(slots), weather.SlotsPerDay)
	}
	var t weather.Timeline
	copy(t[:], slots)
	return t, nil
}

// encodeGroup serializes the in-memory payload for the blob group cat
// belongs to.
func (m *Manager) encodeGroup(cat weather.Category) (key string, data []byte, err error) {
	switch cat {
	case weather.CategoryCurrent:
		data, err = json.Marshal(m.current)
		return store.BlobCurrent, data, err
	case weather.CategoryDaily:
		data, err = json.Marshal(m.daily)
		return store.BlobDaily, data, err
	case weather.CategoryHourlyForecast, weather.CategoryHistory:
		data, err = json.Marshal(m.timeline[:])
		return store.BlobHourly, data, err
	}
	return "", nil, fmt.Errorf("no blob group for category %s", cat)
}
