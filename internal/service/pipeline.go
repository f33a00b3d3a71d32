package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"failureguard/internal/logger"
	"failureguard/internal/models"
	"failureguard/internal/repository"
	"failureguard/internal/scoring"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
)

const (
	defaultPollInterval = time.Second

	// headSize bytes of already consumed input are remembered to notice a
	// file rewritten in place past the old offset.
	headSize = 512
)

// Notifier receives every anomaly the pipeline records.
type Notifier interface {
	Notify(e models.AlertEvent) error
}

// PipelineConfig locates the input and tunes the tail loop.
type PipelineConfig struct {
	CSVPath      string
	PollInterval time.Duration // fallback when file events are missed
}

// PipelineService tails the sensor CSV and turns every new row into a
// derived reading. It is the only writer of the readings log.
type PipelineService struct {
	cfg      PipelineConfig
	readings repository.ReadingStore
	health   repository.HealthRepo
	alerts   repository.AlertRepo
	notifier Notifier
	log      *logger.Logger

	// tail state, owned by the Run goroutine
	offset  int64
	partial []byte
	last    os.FileInfo
	head    []byte
}

// NewPipelineService wires the pipeline. health, alerts and notifier may be nil.
func NewPipelineService(cfg PipelineConfig, readings repository.ReadingStore, health repository.HealthRepo,
	alerts repository.AlertRepo, notifier Notifier, log *logger.Logger) *PipelineService {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if log == nil {
		log = logger.Nop()
	}
	return &PipelineService{
		cfg:      cfg,
		readings: readings,
		health:   health,
		alerts:   alerts,
		notifier: notifier,
		log:      log,
	}
}

// Run processes whatever is already in the CSV, then follows it until ctx
// is canceled.
func (p *PipelineService) Run(ctx context.Context) error {
	dir := filepath.Dir(p.cfg.CSVPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create input dir %q: %w", dir, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// watch the directory so a recreated file is still seen
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %q: %w", dir, err)
	}

	p.log.Infow("pipeline_started", "csv", p.cfg.CSVPath)
	p.drainAndLog(ctx)

	poll := time.NewTicker(p.cfg.PollInterval)
	defer poll.Stop()

	target := filepath.Clean(p.cfg.CSVPath)
	for {
		select {
		case <-ctx.Done():
			p.log.Infow("pipeline_stopped")
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			p.drainAndLog(ctx)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			p.log.Warnw("pipeline_watcher_error", "err", err)
		case <-poll.C:
			p.drainAndLog(ctx)
		}
	}
}

func (p *PipelineService) drainAndLog(ctx context.Context) {
	n, err := p.Drain(ctx)
	if err != nil {
		p.log.Warnw("pipeline_drain_failed", "err", err)
		return
	}
	if n > 0 {
		p.log.Debugw("pipeline_rows_processed", "count", n)
	}
}

// Drain reads every complete line appended since the previous call and
// processes it. It returns the number of rows stored. A missing input file
// is not an error.
func (p *PipelineService) Drain(ctx context.Context) (int, error) {
	f, err := os.Open(p.cfg.CSVPath)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("open sensor csv: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat sensor csv: %w", err)
	}
	if p.rewritten(f, info) {
		p.log.Infow("pipeline_input_reset", "csv", p.cfg.CSVPath, "old_offset", p.offset, "size", info.Size())
		p.offset = 0
		p.partial = nil
		p.head = nil
	}
	p.last = info

	if _, err := f.Seek(p.offset, io.SeekStart); err != nil {
		return 0, fmt.Errorf("seek sensor csv: %w", err)
	}
	chunk, err := io.ReadAll(f)
	if err != nil {
		return 0, fmt.Errorf("read sensor csv: %w", err)
	}
	p.offset += int64(len(chunk))
	if missing := headSize - len(p.head); missing > 0 {
		p.head = append(p.head, chunk[:min(missing, len(chunk))]...)
	}

	buf := append(p.partial, chunk...)
	cut := bytes.LastIndexByte(buf, '\n')
	if cut < 0 {
		p.partial = buf
		return 0, nil
	}
	complete := buf[:cut]
	p.partial = append([]byte(nil), buf[cut+1:]...)

	stored := 0
	for _, raw := range bytes.Split(complete, []byte{'\n'}) {
		if err := ctx.Err(); err != nil {
			return stored, err
		}
		line := string(bytes.TrimSpace(raw))
		if line == "" || isHeader(line) {
			continue
		}
		reading, err := parseRow(line)
		if err != nil {
			p.log.Warnw("pipeline_row_skipped", "err", err, "line", line)
			continue
		}
		if err := p.Process(ctx, reading); err != nil {
			p.log.Errorw("pipeline_store_failed", "err", err, "machine_id", reading.MachineID)
			continue
		}
		stored++
	}
	return stored, nil
}

// rewritten reports whether the input no longer continues what was already
// consumed: it shrank, was replaced by another file, or was truncated and
// regrown so that its first bytes differ.
func (p *PipelineService) rewritten(f *os.File, info os.FileInfo) bool {
	if p.offset == 0 {
		return false
	}
	if info.Size() < p.offset || (p.last != nil && !os.SameFile(p.last, info)) {
		return true
	}
	cur := make([]byte, len(p.head))
	if _, err := f.ReadAt(cur, 0); err != nil {
		return true
	}
	return !bytes.Equal(cur, p.head)
}

// Process scores one reading and persists it. Only the readings log append
// is fatal for the row; mirror, history and notification are best-effort.
func (p *PipelineService) Process(ctx context.Context, raw models.RawReading) error {
	derived := scoring.Derive(raw)
	if err := p.readings.Append(derived); err != nil {
		return err
	}

	status := scoring.Status(derived.HealthScore)
	if p.health != nil {
		err := p.health.Upsert(ctx, models.MachineSnapshot{
			MachineID: derived.MachineID,
			Reading:   derived,
			Status:    status,
			UpdatedAt: time.Now().UTC(),
		})
		if err != nil {
			p.log.Warnw("pipeline_mirror_failed", "err", err, "machine_id", derived.MachineID)
		}
	}

	if !derived.IsAnomaly {
		return nil
	}
	event := models.AlertEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  readingTime(derived.Timestamp),
		MachineID:   derived.MachineID,
		HealthScore: derived.HealthScore,
		Status:      status,
		Message:     derived.AlertMessage,
	}
	if p.alerts != nil {
		if err := p.alerts.Append(ctx, event); err != nil {
			p.log.Warnw("pipeline_alert_history_failed", "err", err, "machine_id", derived.MachineID)
		}
	}
	if p.notifier != nil {
		if err := p.notifier.Notify(event); err != nil {
			p.log.Warnw("pipeline_notify_failed", "err", err, "machine_id", derived.MachineID)
		}
	}
	return nil
}

// readingTime parses a reading timestamp as local time, falling back to now.
func readingTime(ts string) time.Time {
	t, err := time.ParseInLocation(models.TimestampLayout, ts, time.Local)
	if err != nil {
		return time.Now().UTC()
	}
	return t.UTC()
}
