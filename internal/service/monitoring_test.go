package service

import (
	"context"
	"errors"
	"testing"

	"failureguard/internal/models"
)

func sampleView() models.MachineHealthView {
	return models.MachineHealthView{
		"PUMP_B":       {MachineID: "PUMP_B", HealthScore: 100},
		"PUMP_A":       {MachineID: "PUMP_A", HealthScore: 43.5, IsAnomaly: true, AlertMessage: "ALERT: PUMP_A — High temp (95.0°C)"},
		"MOTOR_C":      {MachineID: "MOTOR_C", HealthScore: 100},
		"COMPRESSOR_D": {MachineID: "COMPRESSOR_D", HealthScore: 97.5, IsAnomaly: true},
	}
}

func TestMonitoringService_Alerts_OnlyAnomaliesSorted(t *testing.T) {
	t.Parallel()
	svc := NewMonitoringService(&readingStoreStub{view: sampleView()}, nil)

	got, err := svc.Alerts(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].MachineID != "COMPRESSOR_D" || got[1].MachineID != "PUMP_A" {
		t.Fatalf("unexpected alerts: %+v", got)
	}
}

func TestMonitoringService_Health_Bands(t *testing.T) {
	t.Parallel()
	svc := NewMonitoringService(&readingStoreStub{view: sampleView()}, nil)

	got, err := svc.Health(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("want 4 machines, got %d", len(got))
	}
	a := got["PUMP_A"]
	if a.Status != "critical" || a.Color != "red" || !a.IsAnomaly || a.LatestReading.HealthScore != 43.5 {
		t.Errorf("PUMP_A: %+v", a)
	}
	if b := got["PUMP_B"]; b.Status != "healthy" || b.Color != "green" {
		t.Errorf("PUMP_B: %+v", b)
	}
}

func TestMonitoringService_Summary(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		view models.MachineHealthView
		want models.Summary
	}{
		{
			name: "empty view",
			view: models.MachineHealthView{},
			want: models.Summary{},
		},
		{
			name: "mixed fleet",
			view: sampleView(),
			// (100 + 43.5 + 100 + 97.5) / 4 = 85.25
			want: models.Summary{TotalMachines: 4, HealthyMachines: 2, AnomalyMachines: 2, AverageHealthScore: 85.3},
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			svc := NewMonitoringService(&readingStoreStub{view: tc.view}, nil)
			got, err := svc.Summary(context.Background())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestMonitoringService_PropagatesStoreError(t *testing.T) {
	t.Parallel()
	svc := NewMonitoringService(&readingStoreStub{latestErr: errors.New("line 3: bad json")}, nil)

	if _, err := svc.Latest(context.Background()); err == nil {
		t.Errorf("Latest: expected error")
	}
	if _, err := svc.Alerts(context.Background()); err == nil {
		t.Errorf("Alerts: expected error")
	}
	if _, err := svc.Health(context.Background()); err == nil {
		t.Errorf("Health: expected error")
	}
	if _, err := svc.Summary(context.Background()); err == nil {
		t.Errorf("Summary: expected error")
	}
}

func TestMonitoringService_Machines(t *testing.T) {
	t.Parallel()

	got, err := NewMonitoringService(&readingStoreStub{}, nil).Machines(context.Background())
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("without mirror: got %v, %v", got, err)
	}

	repo := &healthRepoStub{listed: []models.MachineSnapshot{{MachineID: "PUMP_A", Status: "danger"}}}
	got, err = NewMonitoringService(&readingStoreStub{}, repo).Machines(context.Background())
	if err != nil || len(got) != 1 || got[0].Status != "danger" {
		t.Fatalf("with mirror: got %v, %v", got, err)
	}
}
