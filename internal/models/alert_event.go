package models

import "time"

// AlertEvent is a single anomaly occurrence kept in the alert history.
type AlertEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	MachineID   string    `json:"machine_id"`
	HealthScore float64   `json:"health_score"`
	Status      string    `json:"status"`
	Message     string    `json:"message"`
}
