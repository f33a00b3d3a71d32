package repository

import (
	"context"
	"database/sql"
	"time"

	"failureguard/internal/models"
)

// ReadingStore is the processed readings log.
type ReadingStore interface {
	Append(r models.DerivedReading) error
	Latest(ctx context.Context) (models.MachineHealthView, error)
}

// HealthRepo keeps one current row per machine.
type HealthRepo interface {
	Upsert(ctx context.Context, snap models.MachineSnapshot) error
	List(ctx context.Context) ([]models.MachineSnapshot, error)
}

// AlertRepo is the anomaly history.
type AlertRepo interface {
	Append(ctx context.Context, e models.AlertEvent) error
	List(ctx context.Context, from, to time.Time, machineID string) ([]models.AlertEvent, error)
}

// DocumentRepo serves the maintenance document corpus.
type DocumentRepo interface {
	Load(ctx context.Context) (map[string]string, error)
	Scan() ([]models.Document, error)
	WriteIndex(docs []models.Document) error
	Dir() string
}

// Paths locates the file-backed stores.
type Paths struct {
	ProcessedLog   string
	DocumentsIndex string
	DocumentsDir   string
	StrictLog      bool
}

type Repository struct {
	Readings  ReadingStore
	Health    HealthRepo
	Alerts    AlertRepo
	Documents DocumentRepo
}

func NewRepository(db *sql.DB, p Paths) *Repository {
	return &Repository{
		Readings:  NewReadingLog(p.ProcessedLog, WithStrict(p.StrictLog)),
		Health:    NewHealthSQLite(db),
		Alerts:    NewAlertSQLite(db),
		Documents: NewDocumentFS(p.DocumentsIndex, p.DocumentsDir),
	}
}
