package models

// Header is the fixed column header of both the raw and the cleaned CSV files.
var Header = []string{"Timestamp", "Temperature", "Humidity", "Wind Speed"}

// HourlySeries holds the time-aligned parallel arrays returned by Open-Meteo.
// Index i across all four slices refers to the same hour. A null reading
// decodes to a nil pointer.
type HourlySeries struct {
	Time        []string   `json:"time"`
	Temperature []*float64 `json:"temperature_2m"`
	Humidity    []*float64 `json:"relative_humidity_2m"`
	WindSpeed   []*float64 `json:"wind_speed_10m"`
}

// Len returns the number of hourly timesteps.
func (s HourlySeries) Len() int {
	return len(s.Time)
}

type ForecastResponse struct {
	Latitude  float64       `json:"latitude"`
	Longitude float64       `json:"longitude"`
	Timezone  string        `json:"timezone"`
	Hourly    *HourlySeries `json:"hourly"`
}

// Observation is one parsed data row of a weather CSV file.
type Observation struct {
	Timestamp   string
	Temperature float64 // °C
	Humidity    float64 // percent
	WindSpeed   float64 // m/s
}

// Summary aggregates a cleaned table. Never persisted.
type Summary struct {
	Count          int     `json:"count"`
	AvgTemperature float64 `json:"avgTemperature"`
	MaxTemperature float64 `json:"maxTemperature"`
	MinTemperature float64 `json:"minTemperature"`
	AvgHumidity    float64 `json:"avgHumidity"`
	AvgWindSpeed   float64 `json:"avgWindSpeed"`
}
