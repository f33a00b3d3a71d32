package repository

import (
	"context"
	"database/sql"
	"time"

	"failureguard/internal/models"
)

// HealthSQLite mirrors the latest reading per machine into SQLite so the
// history endpoints can join against it without rescanning the log.
type HealthSQLite struct {
	db *sql.DB
}

func NewHealthSQLite(db *sql.DB) *HealthSQLite {
	return &HealthSQLite{db: db}
}

const (
	upsertMachineHealthSQL = `
		INSERT INTO machine_health (machine_id, reading_ts, temperature, vibration, pressure,
			health_score, is_anomaly, alert_message, status, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(machine_id) DO UPDATE SET
			reading_ts=excluded.reading_ts,
			temperature=excluded.temperature,
			vibration=excluded.vibration,
			pressure=excluded.pressure,
			health_score=excluded.health_score,
			is_anomaly=excluded.is_anomaly,
			alert_message=excluded.alert_message,
			status=excluded.status,
			updated_at=excluded.updated_at
	`

	selectMachineHealthSQL = `
		SELECT machine_id, reading_ts, temperature, vibration, pressure,
			health_score, is_anomaly, alert_message, status, updated_at
		FROM machine_health ORDER BY machine_id ASC
	`
)

// Upsert stores snap as the current row for its machine.
func (r *HealthSQLite) Upsert(ctx context.Context, snap models.MachineSnapshot) error {
	ts := snap.UpdatedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	} else {
		ts = ts.UTC()
	}

	rd := snap.Reading
	_, err := r.db.ExecContext(ctx, upsertMachineHealthSQL,
		snap.MachineID,
		rd.Timestamp,
		rd.Temperature,
		rd.Vibration,
		rd.Pressure,
		rd.HealthScore,
		rd.IsAnomaly,
		rd.AlertMessage,
		snap.Status,
		ts,
	)
	return err
}

// List returns all mirrored machines ordered by id.
func (r *HealthSQLite) List(ctx context.Context) ([]models.MachineSnapshot, error) {
	rows, err := r.db.QueryContext(ctx, selectMachineHealthSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.MachineSnapshot, 0, 8)
	for rows.Next() {
		var s models.MachineSnapshot
		if err := rows.Scan(
			&s.MachineID,
			&s.Reading.Timestamp,
			&s.Reading.Temperature,
			&s.Reading.Vibration,
			&s.Reading.Pressure,
			&s.Reading.HealthScore,
			&s.Reading.IsAnomaly,
			&s.Reading.AlertMessage,
			&s.Status,
			&s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		s.Reading.MachineID = s.MachineID
		s.UpdatedAt = s.UpdatedAt.UTC()
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
