package service

import (
	"context"
	"math"
	"sort"

	"failureguard/internal/models"
	"failureguard/internal/repository"
	"failureguard/internal/scoring"
)

// MonitoringService answers read-only questions about the current machine view.
type MonitoringService struct {
	readings repository.ReadingStore
	health   repository.HealthRepo
}

func NewMonitoringService(readings repository.ReadingStore, health repository.HealthRepo) *MonitoringService {
	return &MonitoringService{readings: readings, health: health}
}

// Latest returns the latest reading per machine.
func (s *MonitoringService) Latest(ctx context.Context) (models.MachineHealthView, error) {
	return s.readings.Latest(ctx)
}

// Alerts returns the latest readings that are anomalous, ordered by machine id.
func (s *MonitoringService) Alerts(ctx context.Context) ([]models.DerivedReading, error) {
	view, err := s.readings.Latest(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.DerivedReading, 0, len(view))
	for _, id := range sortedIDs(view) {
		if r := view[id]; r.IsAnomaly {
			out = append(out, r)
		}
	}
	return out, nil
}

// Health returns the status band of every machine.
func (s *MonitoringService) Health(ctx context.Context) (map[string]models.MachineHealth, error) {
	view, err := s.readings.Latest(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]models.MachineHealth, len(view))
	for id, r := range view {
		status := scoring.Status(r.HealthScore)
		out[id] = models.MachineHealth{
			HealthScore:   r.HealthScore,
			Status:        status,
			Color:         scoring.Color(status),
			IsAnomaly:     r.IsAnomaly,
			LatestReading: r,
		}
	}
	return out, nil
}

// Summary aggregates the view. Machines without an anomaly count as healthy.
func (s *MonitoringService) Summary(ctx context.Context) (models.Summary, error) {
	view, err := s.readings.Latest(ctx)
	if err != nil {
		return models.Summary{}, err
	}
	return summarize(view), nil
}

// Machines returns the SQLite mirror rows, including when each was last updated.
func (s *MonitoringService) Machines(ctx context.Context) ([]models.MachineSnapshot, error) {
	if s.health == nil {
		return []models.MachineSnapshot{}, nil
	}
	return s.health.List(ctx)
}

func summarize(view models.MachineHealthView) models.Summary {
	sum := models.Summary{TotalMachines: len(view)}
	if len(view) == 0 {
		return sum
	}
	var total float64
	for _, r := range view {
		if r.IsAnomaly {
			sum.AnomalyMachines++
		}
		total += r.HealthScore
	}
	sum.HealthyMachines = sum.TotalMachines - sum.AnomalyMachines
	sum.AverageHealthScore = math.Round(total/float64(len(view))*10) / 10
	return sum
}

func sortedIDs(view models.MachineHealthView) []string {
	ids := make([]string, 0, len(view))
	for id := range view {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
