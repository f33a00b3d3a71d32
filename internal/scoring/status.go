package scoring

// Health status bands.
const (
	StatusHealthy  = "healthy"
	StatusWarning  = "warning"
	StatusCritical = "critical"
	StatusDanger   = "danger"
)

// Score thresholds for each band (inclusive lower bounds).
const (
	ThresholdHealthy  = 80.0
	ThresholdWarning  = 60.0
	ThresholdCritical = 40.0
)

// Status maps a score to its health band.
func Status(score float64) string {
	switch {
	case score >= ThresholdHealthy:
		return StatusHealthy
	case score >= ThresholdWarning:
		return StatusWarning
	case score >= ThresholdCritical:
		return StatusCritical
	default:
		return StatusDanger
	}
}

// Color is the dashboard color for a status band.
func Color(status string) string {
	switch status {
	case StatusHealthy:
		return "green"
	case StatusWarning:
		return "yellow"
	case StatusCritical:
		return "red"
	default:
		return "darkred"
	}
}
