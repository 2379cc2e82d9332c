package cleaning

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kjstillabower/weather-pipeline/internal/models"
	"github.com/kjstillabower/weather-pipeline/internal/storage"
)

// ErrInvalidRow is returned for a data row that is too short or has a non-numeric reading.
var ErrInvalidRow = errors.New("invalid row")

// ErrInvalidBounds is returned when a range has Min > Max.
var ErrInvalidBounds = errors.New("invalid bounds")

// Bounds is an inclusive range.
type Bounds struct {
	Min float64
	Max float64
}

func (b Bounds) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// Rules is the validity predicate applied to every observation.
type Rules struct {
	Temperature Bounds
	Humidity    Bounds
	WindSpeed   Bounds
}

// DefaultRules keeps 0-60 °C, 0-80 % humidity and 3-150 m/s wind.
func DefaultRules() Rules {
	return Rules{
		Temperature: Bounds{Min: 0, Max: 60},
		Humidity:    Bounds{Min: 0, Max: 80},
		WindSpeed:   Bounds{Min: 3, Max: 150},
	}
}

// Validate rejects ranges whose minimum exceeds their maximum.
func (r Rules) Validate() error {
	ranges := []struct {
		name string
		b    Bounds
	}{
		{"temperature", r.Temperature},
		{"humidity", r.Humidity},
		{"wind_speed", r.WindSpeed},
	}
	for _, rg := range ranges {
		if rg.b.Min > rg.b.Max {
			return fmt.Errorf("%w: %s min %v > max %v", ErrInvalidBounds, rg.name, rg.b.Min, rg.b.Max)
		}
	}
	return nil
}

// Valid reports whether all three readings fall inside their bounds. NaN never does.
func (r Rules) Valid(o models.Observation) bool {
	return r.Temperature.Contains(o.Temperature) &&
		r.Humidity.Contains(o.Humidity) &&
		r.WindSpeed.Contains(o.WindSpeed)
}

// ParseObservation parses columns 1-3 of row. Empty or non-numeric fields are errors.
func ParseObservation(row []string) (models.Observation, error) {
	if len(row) < len(models.Header) {
		return models.Observation{}, fmt.Errorf("%w: %d columns, want %d", ErrInvalidRow, len(row), len(models.Header))
	}
	var vals [3]float64
	for i := range vals {
		col := i + 1
		v, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
		if err != nil {
			return models.Observation{}, fmt.Errorf("%w: column %s: %v", ErrInvalidRow, models.Header[col], err)
		}
		vals[i] = v
	}
	return models.Observation{
		Timestamp:   row[0],
		Temperature: vals[0],
		Humidity:    vals[1],
		WindSpeed:   vals[2],
	}, nil
}

// Result counts the rows seen by Clean.
type Result struct {
	Read    int
	Kept    int
	Dropped int
}

// Clean copies the header line of inPath to outPath byte for byte, followed by
// the original lines of the data rows that satisfy rules, in their original
// order. outPath is overwritten. The first unparsable row aborts the run and
// outPath is left untouched.
func Clean(inPath, outPath string, rules Rules) (Result, error) {
	if err := rules.Validate(); err != nil {
		return Result{}, err
	}

	header, rows, err := storage.ReadLines(inPath)
	if err != nil {
		return Result{}, fmt.Errorf("clean: %w", err)
	}

	kept := make([][]byte, 0, len(rows)+1)
	kept = append(kept, header.Raw)
	for _, row := range rows {
		obs, err := ParseObservation(row.Fields)
		if err != nil {
			return Result{}, fmt.Errorf("clean: %s line %d: %w", inPath, row.Number, err)
		}
		if rules.Valid(obs) {
			kept = append(kept, row.Raw)
		}
	}

	if err := storage.WriteLines(outPath, kept...); err != nil {
		return Result{}, fmt.Errorf("clean: %w", err)
	}
	n := len(kept) - 1
	return Result{Read: len(rows), Kept: n, Dropped: len(rows) - n}, nil
}
