package models

import "time"

// MachineHealth is the per-machine entry of the /health endpoint.
type MachineHealth struct {
	HealthScore   float64        `json:"health_score"`
	Status        string         `json:"status"` // healthy | warning | critical | danger
	Color         string         `json:"color"`
	IsAnomaly     bool           `json:"is_anomaly"`
	LatestReading DerivedReading `json:"latest_reading"`
}

// Summary aggregates the current view across all machines.
type Summary struct {
	TotalMachines      int     `json:"total_machines"`
	HealthyMachines    int     `json:"healthy_machines"`
	AnomalyMachines    int     `json:"anomaly_machines"`
	AverageHealthScore float64 `json:"average_health_score"`
}

// MachineSnapshot is the row kept by the SQLite health mirror.
type MachineSnapshot struct {
	MachineID string         `json:"machine_id"`
	Reading   DerivedReading `json:"reading"`
	Status    string         `json:"status"`
	UpdatedAt time.Time      `json:"updated_at"`
}
