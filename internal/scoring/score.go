// Package scoring holds the health-score and anomaly rules applied to every
// sensor reading. All functions are pure and safe for concurrent use.
package scoring

import (
	"math"
	"strconv"
	"strings"

	"failureguard/internal/models"
)

// Sensor thresholds.
const (
	MaxTemperatureC = 80.0
	MaxVibrationMMs = 3.0
	MinPressureBar  = 3.0
)

// Penalty per unit beyond a threshold.
const (
	tempPenalty      = 2.5
	vibrationPenalty = 15.0
	pressurePenalty  = 8.0

	baselineScore = 100.0
)

// alertSeparator sits between the machine id and the violated clauses.
const alertSeparator = " — "

// Score computes the health score in [0, 100], rounded to one decimal.
//
//	score = 100
//	    - (t - 80)  * 2.5   if t > 80
//	    - (v - 3.0) * 15    if v > 3.0
//	    - (3.0 - p) * 8     if p < 3.0
func Score(temperature, vibration, pressure float64) float64 {
	// The float64 conversions round each product on its own so the compiler
	// cannot fuse it into the subtraction.
	score := baselineScore
	if temperature > MaxTemperatureC {
		score -= float64((temperature - MaxTemperatureC) * tempPenalty)
	}
	if vibration > MaxVibrationMMs {
		score -= float64((vibration - MaxVibrationMMs) * vibrationPenalty)
	}
	if pressure < MinPressureBar {
		score -= float64((MinPressureBar - pressure) * pressurePenalty)
	}
	return clamp(round1(score), 0, baselineScore)
}

// IsAnomaly reports whether any raw threshold is violated.
// It does not look at the score, so a clamped score of 0 and a score of 97.5
// are both anomalies when a threshold is crossed.
func IsAnomaly(temperature, vibration, pressure float64) bool {
	return temperature > MaxTemperatureC ||
		vibration > MaxVibrationMMs ||
		pressure < MinPressureBar
}

// Classify returns the anomaly flag and the alert message for a machine.
// The message is empty when nothing is violated.
func Classify(machineID string, temperature, vibration, pressure float64) (bool, string) {
	var issues []string
	if temperature > MaxTemperatureC {
		issues = append(issues, "High temp ("+formatFloat(temperature)+"°C)")
	}
	if vibration > MaxVibrationMMs {
		issues = append(issues, "High vibration ("+formatFloat(vibration)+" mm/s)")
	}
	if pressure < MinPressureBar {
		issues = append(issues, "Low pressure ("+formatFloat(pressure)+" bar)")
	}
	if len(issues) == 0 {
		return false, ""
	}
	return true, "ALERT: " + machineID + alertSeparator + strings.Join(issues, ", ")
}

// Derive enriches a raw reading with score, anomaly flag and alert text.
func Derive(r models.RawReading) models.DerivedReading {
	anomaly, alert := Classify(r.MachineID, r.Temperature, r.Vibration, r.Pressure)
	return models.DerivedReading{
		MachineID:    r.MachineID,
		Timestamp:    r.Timestamp,
		Temperature:  r.Temperature,
		Vibration:    r.Vibration,
		Pressure:     r.Pressure,
		HealthScore:  Score(r.Temperature, r.Vibration, r.Pressure),
		IsAnomaly:    anomaly,
		AlertMessage: alert,
	}
}

// round1 rounds the exact binary value of v to one decimal, ties to even.
// Scaling by 10 first would add a rounding step of its own and move
// near-tie scores such as 79.85 up to the next tenth.
func round1(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	if err != nil {
		return v
	}
	return r
}

// clamp restricts v to [lo, hi]. A rounded -0 becomes lo. NaN inputs never
// reach the arithmetic because every comparison against NaN is false.
func clamp(v, lo, hi float64) float64 {
	switch {
	case v <= lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}

// formatFloat prints the shortest representation that round-trips, always
// with a fractional part ("90.0", "3.5"). Magnitudes below 1e-4 or from
// 1e16 up use exponent form.
func formatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	if abs := math.Abs(v); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
