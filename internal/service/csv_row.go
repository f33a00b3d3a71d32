package service

import (
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"failureguard/internal/models"
)

// CSVHeader is the column order of the sensor readings file.
var CSVHeader = []string{"machine_id", "timestamp", "temperature", "vibration", "pressure"}

var (
	ErrMalformedRow = errors.New("malformed sensor row")
	ErrNonFinite    = errors.New("non-finite sensor value")
)

// isHeader reports whether line is the CSV header row.
func isHeader(line string) bool {
	return strings.HasPrefix(line, CSVHeader[0]+",")
}

// parseRow decodes one CSV line into a RawReading.
func parseRow(line string) (models.RawReading, error) {
	fields, err := csv.NewReader(strings.NewReader(line)).Read()
	if err != nil {
		return models.RawReading{}, fmt.Errorf("%w: %v", ErrMalformedRow, err)
	}
	if len(fields) != len(CSVHeader) {
		return models.RawReading{}, fmt.Errorf("%w: want %d fields, got %d", ErrMalformedRow, len(CSVHeader), len(fields))
	}

	r := models.RawReading{
		MachineID: strings.TrimSpace(fields[0]),
		Timestamp: strings.TrimSpace(fields[1]),
	}
	if r.MachineID == "" {
		return models.RawReading{}, fmt.Errorf("%w: empty machine_id", ErrMalformedRow)
	}

	targets := []*float64{&r.Temperature, &r.Vibration, &r.Pressure}
	for i, dst := range targets {
		col := CSVHeader[i+2]
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[i+2]), 64)
		if err != nil {
			return models.RawReading{}, fmt.Errorf("%w: %s: %v", ErrMalformedRow, col, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return models.RawReading{}, fmt.Errorf("%w: %s=%v", ErrNonFinite, col, v)
		}
		*dst = v
	}
	return r, nil
}

// formatRow is the inverse of parseRow.
func formatRow(r models.RawReading) []string {
	return []string{
		r.MachineID,
		r.Timestamp,
		strconv.FormatFloat(r.Temperature, 'f', -1, 64),
		strconv.FormatFloat(r.Vibration, 'f', -1, 64),
		strconv.FormatFloat(r.Pressure, 'f', -1, 64),
	}
}
