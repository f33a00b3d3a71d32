package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"failureguard/internal/llm"
	"failureguard/internal/models"
)

// readingStoreStub keeps appended readings in memory, newest wins.
type readingStoreStub struct {
	mu        sync.Mutex
	appended  []models.DerivedReading
	appendErr error
	latestErr error
	view      models.MachineHealthView
}

func (s *readingStoreStub) Append(r models.DerivedReading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appendErr != nil {
		return s.appendErr
	}
	s.appended = append(s.appended, r)
	return nil
}

func (s *readingStoreStub) Latest(ctx context.Context) (models.MachineHealthView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latestErr != nil {
		return nil, s.latestErr
	}
	if s.view != nil {
		return s.view, nil
	}
	view := models.MachineHealthView{}
	for _, r := range s.appended {
		view[r.MachineID] = r
	}
	return view, nil
}

func (s *readingStoreStub) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.appended)
}

type healthRepoStub struct {
	upserts []models.MachineSnapshot
	listed  []models.MachineSnapshot
	err     error
}

func (h *healthRepoStub) Upsert(ctx context.Context, snap models.MachineSnapshot) error {
	h.upserts = append(h.upserts, snap)
	return h.err
}

func (h *healthRepoStub) List(ctx context.Context) ([]models.MachineSnapshot, error) {
	return h.listed, h.err
}

type alertRepoStub struct {
	appends   []models.AlertEvent
	appendErr error
	resp      []models.AlertEvent

	lastFrom, lastTo time.Time
	lastMachine      string
}

func (a *alertRepoStub) Append(ctx context.Context, e models.AlertEvent) error {
	a.appends = append(a.appends, e)
	return a.appendErr
}

func (a *alertRepoStub) List(ctx context.Context, from, to time.Time, machineID string) ([]models.AlertEvent, error) {
	a.lastFrom, a.lastTo, a.lastMachine = from, to, machineID
	return a.resp, nil
}

type notifierStub struct {
	events []models.AlertEvent
	err    error
}

func (n *notifierStub) Notify(e models.AlertEvent) error {
	n.events = append(n.events, e)
	return n.err
}

type documentRepoStub struct {
	docs    map[string]string
	loadErr error
	scanned []models.Document
	written [][]models.Document
	dir     string
}

func (d *documentRepoStub) Load(ctx context.Context) (map[string]string, error) {
	return d.docs, d.loadErr
}

func (d *documentRepoStub) Scan() ([]models.Document, error) {
	if d.scanned == nil {
		return nil, errors.New("no folder")
	}
	return d.scanned, nil
}

func (d *documentRepoStub) WriteIndex(docs []models.Document) error {
	d.written = append(d.written, docs)
	return nil
}

func (d *documentRepoStub) Dir() string { return d.dir }

// completerStub returns replies in order and records every request.
type completerStub struct {
	replies []string
	errAt   int // 1-based call that fails; 0 never
	calls   [][]llm.Message
	tokens  []int
}

func (c *completerStub) Complete(ctx context.Context, messages []llm.Message, maxTokens int) (string, error) {
	c.calls = append(c.calls, messages)
	c.tokens = append(c.tokens, maxTokens)
	n := len(c.calls)
	if c.errAt == n {
		return "", errors.New("rate limited")
	}
	if n <= len(c.replies) {
		return c.replies[n-1], nil
	}
	return "", nil
}
