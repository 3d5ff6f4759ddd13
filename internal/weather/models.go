package weather

// Location is the point the station reports weather for.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// IndoorReading is one sample from the indoor environment sensor.
type IndoorReading struct {
	Temp     Metric `json:"temp"`
	Humidity Metric `json:"humidity"`
	Pressure Metric `json:"pressure"`
}

// Current holds the latest observed outdoor conditions plus the most recent
// indoor reading. It is replaced wholesale on every successful current fetch
// and is only considered fresh within the hour it was saved.
type Current struct {
	ConditionText     string        `json:"conditionText"`
	IconName          string        `json:"iconName"`
	Temp              float64       `json:"temp"`
	FeelsLike         float64       `json:"feelsLike"`
	WindSpeed         float64       `json:"windSpeed"`
	WindGust          float64       `json:"windGust"`
	WindDirection     int           `json:"windDirection"`
	Humidity          int           `json:"humidity"`
	PrecipProbability int           `json:"precipProbability"`
	UVIndex           int           `json:"uvIndex"`
	Pressure          float64       `json:"pressure"`
	Indoor            IndoorReading `json:"indoor"`
	Valid             bool          `json:"valid"`
}

// DailyForecast is a one-day summary. Daily forecasts survive hour rollovers
// and are invalidated only when the local day changes.
type DailyForecast struct {
	DayName       string  `json:"dayName"`
	IconName      string  `json:"iconName"`
	ConditionText string  `json:"conditionText"`
	TempHigh      float64 `json:"tempHigh"`
	TempLow       float64 `json:"tempLow"`
	Sunrise       string  `json:"sunrise"` // local "HH:MM"
	Sunset        string  `json:"sunset"`
	SunriseHour   float64 `json:"sunriseHour"` // local fractional hour, e.g. 6.5
	SunsetHour    float64 `json:"sunsetHour"`
}
