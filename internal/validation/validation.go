package validation

import (
	"errors"
	"fmt"

	"github.com/kjstillabower/weather-pipeline/internal/models"
)

// ErrMissingField is returned when the forecast response lacks the hourly block or one of its arrays.
var ErrMissingField = errors.New("missing field")

// ErrLengthMismatch is returned when the hourly arrays do not all have the same length.
var ErrLengthMismatch = errors.New("hourly array length mismatch")

// ErrInvalidCoordinate is returned for a latitude or longitude outside the WGS84 range.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// ValidateResponse checks that resp carries an hourly block and returns it after
// ValidateSeries accepts it.
func ValidateResponse(resp models.ForecastResponse) (models.HourlySeries, error) {
	if resp.Hourly == nil {
		return models.HourlySeries{}, fmt.Errorf("%w: hourly", ErrMissingField)
	}
	if err := ValidateSeries(*resp.Hourly); err != nil {
		return models.HourlySeries{}, err
	}
	return *resp.Hourly, nil
}

// ValidateSeries requires all four arrays to be present and of equal length.
// A present but empty array is valid; a nil slice means the key was absent.
func ValidateSeries(s models.HourlySeries) error {
	if s.Time == nil {
		return fmt.Errorf("%w: hourly.time", ErrMissingField)
	}
	n := len(s.Time)
	arrays := []struct {
		name string
		vals []*float64
	}{
		{"hourly.temperature_2m", s.Temperature},
		{"hourly.relative_humidity_2m", s.Humidity},
		{"hourly.wind_speed_10m", s.WindSpeed},
	}
	for _, a := range arrays {
		if a.vals == nil {
			return fmt.Errorf("%w: %s", ErrMissingField, a.name)
		}
		if len(a.vals) != n {
			return fmt.Errorf("%w: %s has %d entries, hourly.time has %d", ErrLengthMismatch, a.name, len(a.vals), n)
		}
	}
	return nil
}

// ValidateCoordinates enforces latitude in [-90, 90] and longitude in [-180, 180].
func ValidateCoordinates(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude %v", ErrInvalidCoordinate, lat)
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("%w: longitude %v", ErrInvalidCoordinate, lon)
	}
	return nil
}
