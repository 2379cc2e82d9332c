package storage

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/kjstillabower/weather-pipeline/internal/models"
	"github.com/kjstillabower/weather-pipeline/internal/validation"
)

// ErrNoHeader is returned when a table file is empty.
var ErrNoHeader = errors.New("missing header row")

// WriteSeries re-aligns the hourly arrays into rows and writes them to path
// after models.Header, truncating any existing file. It returns the number of
// data rows written. Nil readings become empty fields.
func WriteSeries(path string, series models.HourlySeries) (int, error) {
	if err := validation.ValidateSeries(series); err != nil {
		return 0, fmt.Errorf("write series: %w", err)
	}

	rows := make([][]string, 0, series.Len())
	for i := range series.Time {
		rows = append(rows, []string{
			series.Time[i],
			formatReading(series.Temperature[i]),
			formatReading(series.Humidity[i]),
			formatReading(series.WindSpeed[i]),
		})
	}

	if err := WriteTable(path, models.Header, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// WriteTable writes header and rows to path as comma-separated values,
// truncating any existing file.
func WriteTable(path string, header []string, rows [][]string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close table: %w", cerr)
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write rows to %s: %w", path, err)
	}
	return nil
}

// ReadTable reads path and splits it into its header and data rows. Rows may
// have differing field counts; callers check the columns they need.
func ReadTable(path string) (header []string, rows [][]string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err = r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("%s: %w", path, ErrNoHeader)
		}
		return nil, nil, fmt.Errorf("read header of %s: %w", path, err)
	}

	rows, err = r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read rows of %s: %w", path, err)
	}
	return header, rows, nil
}

// Line is one record of a table file together with its original bytes,
// line terminator included.
type Line struct {
	Number int
	Raw    []byte
	Fields []string
}

// ReadLines reads path one physical line at a time, keeping each record's
// bytes as found and splitting its fields with CSV rules. Blank lines are
// skipped. Quoted fields may not span lines.
func ReadLines(path string) (header Line, rows []Line, err error) {
	f, err := os.Open(path)
	if err != nil {
		return Line{}, nil, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	seenHeader := false
	for n := 1; ; n++ {
		raw, rerr := br.ReadBytes('\n')
		if rerr != nil && !errors.Is(rerr, io.EOF) {
			return Line{}, nil, fmt.Errorf("read %s line %d: %w", path, n, rerr)
		}
		if len(bytes.TrimSpace(raw)) > 0 {
			fields, perr := splitFields(raw)
			if perr != nil {
				return Line{}, nil, fmt.Errorf("read %s line %d: %w", path, n, perr)
			}
			line := Line{Number: n, Raw: raw, Fields: fields}
			if !seenHeader {
				header, seenHeader = line, true
			} else {
				rows = append(rows, line)
			}
		}
		if rerr != nil {
			break
		}
	}
	if !seenHeader {
		return Line{}, nil, fmt.Errorf("%s: %w", path, ErrNoHeader)
	}
	return header, rows, nil
}

func splitFields(raw []byte) ([]string, error) {
	r := csv.NewReader(bytes.NewReader(raw))
	r.FieldsPerRecord = -1
	return r.Read()
}

// WriteLines writes the given lines to path unchanged, truncating any existing file.
func WriteLines(path string, lines ...[]byte) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close table: %w", cerr)
		}
	}()

	w := bufio.NewWriter(f)
	for _, l := range lines {
		if _, err := w.Write(l); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func formatReading(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
