package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"failureguard/internal/models"
)

// ErrMissingMachineID marks a log line that decodes but carries no machine id.
var ErrMissingMachineID = errors.New("record has no machine_id")

// ParseError describes a log line that could not be turned into a reading.
type ParseError struct {
	Line int // 1-based line number in the log
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseResult is the outcome of decoding one log line: either a reading or
// a parse error, never both.
type ParseResult struct {
	Reading models.DerivedReading
	Err     *ParseError
}

// ParseLine decodes one newline-delimited JSON record.
func ParseLine(lineNo int, line []byte) ParseResult {
	var r models.DerivedReading
	if err := json.Unmarshal(line, &r); err != nil {
		return ParseResult{Err: &ParseError{Line: lineNo, Err: err}}
	}
	if r.MachineID == "" {
		return ParseResult{Err: &ParseError{Line: lineNo, Err: ErrMissingMachineID}}
	}
	return ParseResult{Reading: r}
}

// ReadingLog is the append-only processed readings log. The latest reading
// per machine is rebuilt by scanning it from the end.
type ReadingLog struct {
	path   string
	strict bool

	// mu serialises writers; each record is a single write on an O_APPEND
	// descriptor so a concurrent reader sees whole lines only.
	mu sync.Mutex
}

// ReadingLogOption configures a ReadingLog.
type ReadingLogOption func(*ReadingLog)

// WithStrict makes Latest fail on the first malformed line instead of
// skipping it.
func WithStrict(strict bool) ReadingLogOption {
	return func(l *ReadingLog) { l.strict = strict }
}

// NewReadingLog returns a log stored at path. The file is created on first append.
func NewReadingLog(path string, opts ...ReadingLogOption) *ReadingLog {
	l := &ReadingLog{path: path}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Path returns the log file location.
func (l *ReadingLog) Path() string { return l.path }

// Append writes one serialized reading followed by a newline.
func (l *ReadingLog) Append(r models.DerivedReading) error {
	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode reading for %s: %w", r.MachineID, err)
	}
	b = append(b, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	if dir := filepath.Dir(l.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create log dir %q: %w", dir, err)
		}
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open readings log %q: %w", l.path, err)
	}
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return fmt.Errorf("append reading for %s: %w", r.MachineID, err)
	}
	return f.Close()
}

// Latest returns the current view honouring the strict option.
func (l *ReadingLog) Latest(ctx context.Context) (models.MachineHealthView, error) {
	if l.strict {
		return l.ReadLatestStrict(ctx)
	}
	return l.ReadLatest(ctx), nil
}

// ReadLatest scans the log newest-first and keeps the first reading seen per
// machine. Malformed lines are skipped. A missing or unreadable log yields
// an empty view.
func (l *ReadingLog) ReadLatest(ctx context.Context) models.MachineHealthView {
	view := models.MachineHealthView{}
	_ = l.scanNewestFirst(ctx, func(res ParseResult) error {
		if res.Err != nil {
			// skip corrupted record, keep everything before it
			return nil
		}
		keepFirst(view, res.Reading)
		return nil
	})
	return view
}

// ReadLatestStrict is ReadLatest that stops at the first malformed line and
// returns its *ParseError. A missing log is still an empty view.
func (l *ReadingLog) ReadLatestStrict(ctx context.Context) (models.MachineHealthView, error) {
	view := models.MachineHealthView{}
	err := l.scanNewestFirst(ctx, func(res ParseResult) error {
		if res.Err != nil {
			return res.Err
		}
		keepFirst(view, res.Reading)
		return nil
	})
	if err != nil {
		return models.MachineHealthView{}, err
	}
	return view, nil
}

func keepFirst(view models.MachineHealthView, r models.DerivedReading) {
	if _, seen := view[r.MachineID]; !seen {
		view[r.MachineID] = r
	}
}

// scanNewestFirst feeds every non-blank line to fn, last line first.
// Unopenable files are treated as empty.
func (l *ReadingLog) scanNewestFirst(ctx context.Context, fn func(ParseResult) error) error {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil
	}

	end := len(data)
	if end > 0 && data[end-1] == '\n' {
		end--
	}
	lineNo := bytes.Count(data[:end], []byte{'\n'}) + 1

	for end > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := bytes.LastIndexByte(data[:end], '\n')
		line := bytes.TrimSpace(data[start+1 : end])
		if len(line) > 0 {
			if err := fn(ParseLine(lineNo, line)); err != nil {
				return err
			}
		}
		lineNo--
		if start < 0 {
			break
		}
		end = start
	}
	return nil
}
