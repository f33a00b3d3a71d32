package service

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestEventLogService_List(t *testing.T) {
	t.Parallel()

	repo := &alertRepoStub{}
	svc := NewEventLogService(repo)

	loc := time.FixedZone("UTC+3", 3*3600)
	from := time.Date(2025, 3, 1, 12, 0, 0, 0, loc)
	to := from.Add(time.Hour)

	if _, err := svc.List(context.Background(), AlertFilter{From: from, To: to, MachineID: "  PUMP_A "}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastFrom.Location() != time.UTC || !repo.lastFrom.Equal(from) {
		t.Errorf("from not normalized to UTC: %v", repo.lastFrom)
	}
	if repo.lastMachine != "PUMP_A" {
		t.Errorf("machine id not trimmed: %q", repo.lastMachine)
	}
}

func TestEventLogService_List_InvalidRange(t *testing.T) {
	t.Parallel()

	svc := NewEventLogService(&alertRepoStub{})
	now := time.Now()
	_, err := svc.List(context.Background(), AlertFilter{From: now, To: now.Add(-time.Minute)})
	if !errors.Is(err, errInvalidTimeRange) {
		t.Fatalf("expected errInvalidTimeRange, got %v", err)
	}
}
