package handlers

import (
	"context"
	"sync"

	"failureguard/internal/models"
	"failureguard/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockMonitoring struct {
	mu       sync.Mutex
	view     models.MachineHealthView
	alerts   []models.DerivedReading
	health   map[string]models.MachineHealth
	summary  models.Summary
	machines []models.MachineSnapshot
	err      error
}

func (m *mockMonitoring) Latest(ctx context.Context) (models.MachineHealthView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view, m.err
}
func (m *mockMonitoring) Alerts(ctx context.Context) ([]models.DerivedReading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.alerts, m.err
}
func (m *mockMonitoring) Health(ctx context.Context) (map[string]models.MachineHealth, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.health, m.err
}
func (m *mockMonitoring) Summary(ctx context.Context) (models.Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.summary, m.err
}
func (m *mockMonitoring) Machines(ctx context.Context) ([]models.MachineSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.machines, m.err
}

func (m *mockMonitoring) setHealth(health map[string]models.MachineHealth, summary models.Summary) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.health = health
	m.summary = summary
}

type mockEventLog struct {
	resp       []models.AlertEvent
	err        error
	calls      int
	lastFilter service.AlertFilter
}

func (m *mockEventLog) List(ctx context.Context, f service.AlertFilter) ([]models.AlertEvent, error) {
	m.calls++
	m.lastFilter = f
	return m.resp, m.err
}

type mockAssistant struct {
	resp         service.QueryResult
	err          error
	calls        int
	lastQuestion string
}

func (m *mockAssistant) Ask(ctx context.Context, question string) (service.QueryResult, error) {
	m.calls++
	m.lastQuestion = question
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, nil)
	return h.InitRoutes()
}
