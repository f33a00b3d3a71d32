package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"failureguard/internal/models"
	"failureguard/internal/repository"
)

type EventLogService struct {
	alerts repository.AlertRepo
}

func NewEventLogService(alerts repository.AlertRepo) *EventLogService {
	return &EventLogService{alerts: alerts}
}

var errInvalidTimeRange = errors.New("invalid time range: From must be <= To")

func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// List returns the anomaly history matching f.
func (s *EventLogService) List(ctx context.Context, f AlertFilter) ([]models.AlertEvent, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return nil, errInvalidTimeRange
	}
	return s.alerts.List(ctx, from, to, strings.TrimSpace(f.MachineID))
}
