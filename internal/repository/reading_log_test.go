package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"failureguard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reading(id, ts string, score float64, anomaly bool) models.DerivedReading {
	r := models.DerivedReading{
		MachineID:   id,
		Timestamp:   ts,
		Temperature: 70.12,
		Vibration:   1.234,
		Pressure:    4.05,
		HealthScore: score,
		IsAnomaly:   anomaly,
	}
	if anomaly {
		r.AlertMessage = "ALERT: " + id + " — High temp (91.5°C)"
	}
	return r
}

func newTempLog(t *testing.T, opts ...ReadingLogOption) *ReadingLog {
	t.Helper()
	return NewReadingLog(filepath.Join(t.TempDir(), "data", "processed_readings.jsonl"), opts...)
}

func TestReadingLog_MissingFile_EmptyView(t *testing.T) {
	l := newTempLog(t)

	view := l.ReadLatest(context.Background())
	assert.Empty(t, view)

	strict, err := l.ReadLatestStrict(context.Background())
	require.NoError(t, err)
	assert.Empty(t, strict)
}

func TestReadingLog_AppendThenReadLatest_RoundTrip(t *testing.T) {
	l := newTempLog(t)
	want := reading("PUMP_A", "2025-03-01 10:00:00", 43.5, true)

	require.NoError(t, l.Append(want))

	view := l.ReadLatest(context.Background())
	require.Len(t, view, 1)
	assert.Equal(t, want, view["PUMP_A"])
}

func TestReadingLog_NewestWins_WithInterleaving(t *testing.T) {
	l := newTempLog(t)

	first := reading("PUMP_A", "2025-03-01 10:00:00", 100, false)
	other := reading("PUMP_B", "2025-03-01 10:00:01", 99.5, false)
	last := reading("PUMP_A", "2025-03-01 10:00:02", 61.2, true)

	for _, r := range []models.DerivedReading{first, other, last} {
		require.NoError(t, l.Append(r))
	}

	view := l.ReadLatest(context.Background())
	require.Len(t, view, 2)
	assert.Equal(t, last, view["PUMP_A"])
	assert.Equal(t, other, view["PUMP_B"])
}

func TestReadingLog_SkipsCorruptedLine(t *testing.T) {
	l := newTempLog(t)
	a := reading("PUMP_A", "2025-03-01 10:00:00", 100, false)
	b := reading("MOTOR_C", "2025-03-01 10:00:00", 100, false)

	require.NoError(t, l.Append(a))
	f, err := os.OpenFile(l.Path(), os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("{\"machine_id\": \"PUMP_B\", \"health_sc\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	require.NoError(t, l.Append(b))

	view := l.ReadLatest(context.Background())
	require.Len(t, view, 2)
	assert.Equal(t, a, view["PUMP_A"])
	assert.Equal(t, b, view["MOTOR_C"])
}

func TestReadingLog_TruncatedTrailingWrite(t *testing.T) {
	l := newTempLog(t)
	a := reading("PUMP_A", "2025-03-01 10:00:00", 100, false)
	require.NoError(t, l.Append(a))

	f, err := os.OpenFile(l.Path(), os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(`{"machine_id":"PUMP_A","timestamp":"2025-03-01 10:00:02","temper`)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	view := l.ReadLatest(context.Background())
	assert.Equal(t, a, view["PUMP_A"])
}

func TestReadingLog_SkipsRecordsWithoutMachineID(t *testing.T) {
	l := newTempLog(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(l.Path()), 0o755))
	require.NoError(t, os.WriteFile(l.Path(), []byte("{}\n\n   \n{\"machine_id\":\"\"}\n"), 0o644))

	assert.Empty(t, l.ReadLatest(context.Background()))
}

func TestReadingLog_Strict_ReportsLineNumber(t *testing.T) {
	l := newTempLog(t, WithStrict(true))
	require.NoError(t, l.Append(reading("PUMP_A", "2025-03-01 10:00:00", 100, false)))

	f, err := os.OpenFile(l.Path(), os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("not json\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	require.NoError(t, l.Append(reading("PUMP_B", "2025-03-01 10:00:00", 100, false)))

	_, err = l.Latest(context.Background())
	require.Error(t, err)
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 2, perr.Line)

	// lenient path is unaffected by the strict option
	assert.Len(t, l.ReadLatest(context.Background()), 2)
}

func TestParseLine(t *testing.T) {
	res := ParseLine(3, []byte(`{"machine_id":"PUMP_A","health_score":88.1,"is_anomaly":false}`))
	require.Nil(t, res.Err)
	assert.Equal(t, "PUMP_A", res.Reading.MachineID)
	assert.Equal(t, 88.1, res.Reading.HealthScore)

	res = ParseLine(4, []byte(`{"health_score":1}`))
	require.NotNil(t, res.Err)
	assert.Equal(t, 4, res.Err.Line)
	assert.ErrorIs(t, res.Err, ErrMissingMachineID)
}

func TestReadingLog_ConcurrentAppendAndRead(t *testing.T) {
	l := newTempLog(t)
	const n = 200

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			id := fmt.Sprintf("M%d", i%4)
			_ = l.Append(reading(id, fmt.Sprintf("2025-03-01 10:%02d:%02d", i/60, i%60), float64(i%100), false))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			view := l.ReadLatest(context.Background())
			assert.LessOrEqual(t, len(view), 4)
		}
	}()
	wg.Wait()

	view := l.ReadLatest(context.Background())
	require.Len(t, view, 4)
	assert.Equal(t, float64((n-1)%100), view["M3"].HealthScore)
}
