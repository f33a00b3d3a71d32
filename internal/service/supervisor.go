package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"failureguard/internal/logger"

	"golang.org/x/sync/errgroup"
)

// ErrAlreadyStarted is returned by Supervisor.Start after the first call.
var ErrAlreadyStarted = errors.New("background workers already started")

// Worker is a long-running background loop stopped via ctx.
type Worker interface {
	Run(ctx context.Context) error
}

type namedWorker struct {
	name string
	w    Worker
}

// Supervisor owns the background workers and the token guaranteeing they
// are started once per process.
type Supervisor struct {
	workers []namedWorker
	stagger time.Duration
	started atomic.Bool
	log     *logger.Logger
}

// NewSupervisor returns an empty supervisor. Workers are started in the
// order they were added, stagger apart.
func NewSupervisor(stagger time.Duration, log *logger.Logger) *Supervisor {
	if log == nil {
		log = logger.Nop()
	}
	return &Supervisor{stagger: stagger, log: log}
}

// Add registers a worker. Calls after Start have no effect on the running set.
func (s *Supervisor) Add(name string, w Worker) {
	if w == nil {
		return
	}
	s.workers = append(s.workers, namedWorker{name: name, w: w})
}

// Start launches every worker and returns a wait function reporting the
// first worker failure. A second call returns ErrAlreadyStarted.
func (s *Supervisor) Start(ctx context.Context) (func() error, error) {
	if !s.started.CompareAndSwap(false, true) {
		return nil, ErrAlreadyStarted
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, nw := range s.workers {
		if i > 0 && s.stagger > 0 {
			select {
			case <-gctx.Done():
				return g.Wait, nil
			case <-time.After(s.stagger):
			}
		}
		nw := nw
		s.log.Infow("worker_starting", "worker", nw.name)
		g.Go(func() error {
			err := nw.w.Run(gctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				s.log.Errorw("worker_failed", "worker", nw.name, "err", err)
				return fmt.Errorf("%s: %w", nw.name, err)
			}
			s.log.Infow("worker_stopped", "worker", nw.name)
			return nil
		})
	}
	return g.Wait, nil
}
