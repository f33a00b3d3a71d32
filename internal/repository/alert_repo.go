package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"failureguard/internal/models"

	"github.com/google/uuid"
)

type AlertSQLite struct {
	db *sql.DB
}

func NewAlertSQLite(db *sql.DB) *AlertSQLite { return &AlertSQLite{db: db} }

// Append inserts an alert event. EventID and OccurredAt are filled in when empty.
func (r *AlertSQLite) Append(ctx context.Context, e models.AlertEvent) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	} else {
		e.OccurredAt = e.OccurredAt.UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO alert_events (id, occurred_at, machine_id, health_score, status, message)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		e.EventID,
		e.OccurredAt,
		strings.TrimSpace(e.MachineID),
		e.HealthScore,
		e.Status,
		e.Message,
	)
	return err
}

// List returns alert events within [from, to] (zero bounds are open),
// optionally restricted to one machine, oldest first.
func (r *AlertSQLite) List(ctx context.Context, from, to time.Time, machineID string) ([]models.AlertEvent, error) {
	var (
		conds []string
		args  []any
	)

	if !from.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, from.UTC())
	}
	if !to.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, to.UTC())
	}
	if machineID = strings.TrimSpace(machineID); machineID != "" {
		conds = append(conds, "machine_id = ?")
		args = append(args, machineID)
	}

	q := `SELECT id, occurred_at, machine_id, health_score, status, message FROM alert_events`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY occurred_at ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.AlertEvent, 0, 64)
	for rows.Next() {
		var ev models.AlertEvent
		if err := rows.Scan(&ev.EventID, &ev.OccurredAt, &ev.MachineID, &ev.HealthScore, &ev.Status, &ev.Message); err != nil {
			return nil, err
		}
		ev.OccurredAt = ev.OccurredAt.UTC()
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
