package service

import (
	"context"

	"failureguard/internal/logger"
	"failureguard/internal/models"
	"failureguard/internal/repository"
)

// Monitoring exposes the read-only machine view.
type Monitoring interface {
	Latest(ctx context.Context) (models.MachineHealthView, error)
	Alerts(ctx context.Context) ([]models.DerivedReading, error)
	Health(ctx context.Context) (map[string]models.MachineHealth, error)
	Summary(ctx context.Context) (models.Summary, error)
	Machines(ctx context.Context) ([]models.MachineSnapshot, error)
}

// EventLog exposes the anomaly history.
type EventLog interface {
	List(ctx context.Context, f AlertFilter) ([]models.AlertEvent, error)
}

// Assistant answers free-text maintenance questions.
type Assistant interface {
	Ask(ctx context.Context, question string) (QueryResult, error)
}

// Service aggregates the request-facing services and the background workers.
type Service struct {
	Monitoring
	EventLog
	Assistant

	Simulator *SimulatorService
	Pipeline  *PipelineService
	Indexer   *DocumentIndexService
}

// Deps carries the collaborators that do not come from the repository layer.
type Deps struct {
	LLM       Completer // nil: demo answers
	Notifier  Notifier  // nil: no alert fan-out
	Simulator SimulatorConfig
	Pipeline  PipelineConfig
	Log       *logger.Logger
}

func NewService(repos *repository.Repository, deps Deps) *Service {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		Monitoring: NewMonitoringService(repos.Readings, repos.Health),
		EventLog:   NewEventLogService(repos.Alerts),
		Assistant:  NewAssistantService(repos.Readings, repos.Documents, deps.LLM, log.Named("assistant")),
		Simulator:  NewSimulatorService(deps.Simulator, log.Named("simulator")),
		Pipeline: NewPipelineService(deps.Pipeline, repos.Readings, repos.Health, repos.Alerts,
			deps.Notifier, log.Named("pipeline")),
		Indexer: NewDocumentIndexService(repos.Documents, log.Named("indexer")),
	}
}
