package weather

// SlotsPerDay is the number of hour buckets in the local-day timeline.
const SlotsPerDay = 24

// HourlySlot is one local-hour bucket of the day's timeline. Three groups of
// fields share a slot but have distinct owners: forecast fields are written
// only by hourly-forecast merges, actual fields only by history merges, and
// indoor fields only by local sensor merges. Merges are field-scoped; one
// owner's write never touches another owner's fields.
type HourlySlot struct {
	Hour int `json:"hour"`

	ForecastTemp     Metric `json:"forecastTemp"`
	RainProbability  Metric `json:"rainProbability"`
	ForecastPressure Metric `json:"forecastPressure"`

	ActualTemp     Metric `json:"actualTemp"`
	Rainfall       Metric `json:"rainfall"`
	ActualPressure Metric `json:"actualPressure"`

	IndoorTemp     Metric `json:"indoorTemp"`
	IndoorPressure Metric `json:"indoorPressure"`
}

// Timeline is the fixed 24-slot local-day timeline, indexed by hour of day.
type Timeline [SlotsPerDay]HourlySlot

// NewTimeline returns an empty timeline with slot hours filled in.
func NewTimeline() Timeline {
	var t Timeline
	t.Reset()
	return t
}

// Reset empties every field of every slot, including accumulated indoor
// readings. Called only on a day rollover.
func (t *Timeline) Reset() {
	for i := range t {
		t[i] = HourlySlot{Hour: i}
	}
}

// ClearForecast empties the forecast-owned fields of all slots, leaving
// actual and indoor fields alone. An hourly-forecast merge clears first, so
// hours outside the fetched window never keep a forecast from an earlier,
// now-superseded fetch.
func (t *Timeline) ClearForecast() {
	for i := range t {
		t[i].ForecastTemp = Metric{}
		t[i].RainProbability = Metric{}
		t[i].ForecastPressure = Metric{}
	}
}

// SetForecast writes the forecast-owned fields of one slot.
func (t *Timeline) SetForecast(hour int, temp, rainProb, pressure Metric) {
	if hour < 0 || hour >= SlotsPerDay {
		return
	}
	t[hour].ForecastTemp = temp
	t[hour].RainProbability = rainProb
	t[hour].ForecastPressure = pressure
}

// SetObserved writes the actual-owned fields of one slot.
func (t *Timeline) SetObserved(hour int, temp, rainfall, pressure Metric) {
	if hour < 0 || hour >= SlotsPerDay {
		return
	}
	t[hour].ActualTemp = temp
	t[hour].Rainfall = rainfall
	t[hour].ActualPressure = pressure
}

// SetIndoor writes the indoor-owned fields of one slot.
func (t *Timeline) SetIndoor(hour int, temp, pressure Metric) {
	if hour < 0 || hour >= SlotsPerDay {
		return
	}
	t[hour].IndoorTemp = temp
	t[hour].IndoorPressure = pressure
}
