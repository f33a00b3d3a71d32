package repository

import (
	"errors"
	"testing"
	"time"

	"failureguard/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestHealthUpsert_PassesReadingFields(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewHealthSQLite(db)
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO machine_health").
		WithArgs("PUMP_A", "2025-03-01 10:00:00", 95.0, 4.0, 2.5, 43.5, true, "ALERT", "critical", at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Upsert(ctx(t), models.MachineSnapshot{
		MachineID: "PUMP_A",
		Status:    "critical",
		UpdatedAt: at,
		Reading: models.DerivedReading{
			MachineID:    "PUMP_A",
			Timestamp:    "2025-03-01 10:00:00",
			Temperature:  95,
			Vibration:    4,
			Pressure:     2.5,
			HealthScore:  43.5,
			IsAnomaly:    true,
			AlertMessage: "ALERT",
		},
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestHealthUpsert_DBError(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewHealthSQLite(db)
	mock.ExpectExec("INSERT INTO machine_health").WillReturnError(errors.New("locked"))

	if err := repo.Upsert(ctx(t), models.MachineSnapshot{MachineID: "PUMP_B"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestHealthList_ScansRows(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewHealthSQLite(db)
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{
		"machine_id", "reading_ts", "temperature", "vibration", "pressure",
		"health_score", "is_anomaly", "alert_message", "status", "updated_at",
	}).
		AddRow("MOTOR_C", "2025-03-01 10:00:00", 66.1, 1.5, 4.1, 100.0, false, "", "healthy", at).
		AddRow("PUMP_A", "2025-03-01 10:00:00", 91.0, 4.2, 2.4, 49.3, true, "ALERT", "critical", at)

	mock.ExpectQuery("SELECT machine_id, reading_ts").WillReturnRows(rows)

	got, err := repo.List(ctx(t))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 rows, got %d", len(got))
	}
	if got[1].Reading.MachineID != "PUMP_A" || !got[1].Reading.IsAnomaly || got[1].Status != "critical" {
		t.Fatalf("unexpected snapshot: %+v", got[1])
	}
	if !got[0].UpdatedAt.Equal(at) {
		t.Fatalf("updated_at: got %v", got[0].UpdatedAt)
	}
}
