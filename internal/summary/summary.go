package summary

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kjstillabower/weather-pipeline/internal/models"
	"github.com/kjstillabower/weather-pipeline/internal/storage"
)

// ErrEmptyDataset is returned when no temperature readings are available.
var ErrEmptyDataset = errors.New("no data available to summarize")

// NoDataMessage is reported in place of a summary for an empty dataset.
const NoDataMessage = "No data available to summarize."

// Summarize reads the cleaned file at path and aggregates its readings.
// Empty fields are skipped; any other non-numeric field is an error.
func Summarize(path string) (models.Summary, error) {
	_, rows, err := storage.ReadTable(path)
	if err != nil {
		return models.Summary{}, fmt.Errorf("summarize: %w", err)
	}

	var temps, hums, winds []float64
	for i, row := range rows {
		cols := []struct {
			idx int
			dst *[]float64
		}{
			{1, &temps},
			{2, &hums},
			{3, &winds},
		}
		for _, c := range cols {
			if c.idx >= len(row) || row[c.idx] == "" {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(row[c.idx]), 64)
			if err != nil {
				return models.Summary{}, fmt.Errorf("summarize: %s line %d column %s: %w", path, i+2, models.Header[c.idx], err)
			}
			*c.dst = append(*c.dst, v)
		}
	}

	return Compute(temps, hums, winds)
}

// Compute aggregates the three sequences. Count, min and max come from temps.
// Humidity and wind speed are averaged over their own readings; an empty
// sequence averages to zero.
func Compute(temps, hums, winds []float64) (models.Summary, error) {
	if len(temps) == 0 {
		return models.Summary{}, ErrEmptyDataset
	}

	s := models.Summary{
		Count:          len(temps),
		MaxTemperature: temps[0],
		MinTemperature: temps[0],
	}
	var sum float64
	for _, t := range temps {
		sum += t
		if t > s.MaxTemperature {
			s.MaxTemperature = t
		}
		if t < s.MinTemperature {
			s.MinTemperature = t
		}
	}
	s.AvgTemperature = sum / float64(len(temps))
	s.AvgHumidity = mean(hums)
	s.AvgWindSpeed = mean(winds)
	return s, nil
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// Report writes s in human-readable form.
func Report(w io.Writer, s models.Summary) error {
	_, err := fmt.Fprintf(w, "\n📊 Weather Data Summary 📊\n"+
		"Total Records: %d\n"+
		"🌡️ Average Temperature: %.2f°C\n"+
		"🔥 Max Temperature: %.2f°C\n"+
		"❄️ Min Temperature: %.2f°C\n"+
		"💧 Average Humidity: %.1f%%\n"+
		"💨 Average Wind Speed: %.2f m/s\n",
		s.Count, s.AvgTemperature, s.MaxTemperature, s.MinTemperature, s.AvgHumidity, s.AvgWindSpeed)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
