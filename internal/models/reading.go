package models

// TimestampLayout is the local-time format stamped on every reading.
const TimestampLayout = "2006-01-02 15:04:05"

// RawReading is one sensor row as emitted by the generator.
type RawReading struct {
	MachineID   string  `json:"machine_id"`
	Timestamp   string  `json:"timestamp"`
	Temperature float64 `json:"temperature"` // °C
	Vibration   float64 `json:"vibration"`   // mm/s
	Pressure    float64 `json:"pressure"`    // bar
}

// DerivedReading is a RawReading enriched by the scoring rules.
// This is also the wire format of the processed readings log.
type DerivedReading struct {
	MachineID    string  `json:"machine_id"`
	Timestamp    string  `json:"timestamp"`
	Temperature  float64 `json:"temperature"`
	Vibration    float64 `json:"vibration"`
	Pressure     float64 `json:"pressure"`
	HealthScore  float64 `json:"health_score"` // 0..100, one decimal
	IsAnomaly    bool    `json:"is_anomaly"`
	AlertMessage string  `json:"alert_message"` // empty when healthy
}

// Raw returns the sensor part of the reading.
func (d DerivedReading) Raw() RawReading {
	return RawReading{
		MachineID:   d.MachineID,
		Timestamp:   d.Timestamp,
		Temperature: d.Temperature,
		Vibration:   d.Vibration,
		Pressure:    d.Pressure,
	}
}

// MachineHealthView maps machine_id to its latest derived reading.
type MachineHealthView map[string]DerivedReading
