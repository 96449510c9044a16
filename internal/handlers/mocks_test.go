package handlers

import (
	"context"
	"fmt"
	"time"

	"ac_watchdog/internal/ir"
	"ac_watchdog/internal/models"
	"ac_watchdog/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockCommands struct {
	triggered []string
	sent      []models.CommandName
	errFor    map[string]error
}

func (m *mockCommands) Send(ctx context.Context, name models.CommandName) error {
	m.sent = append(m.sent, name)
	return nil
}

func (m *mockCommands) Autostart(ctx context.Context) error {
	m.sent = append(m.sent, models.Autostart)
	return nil
}

func (m *mockCommands) Trigger(ctx context.Context, param string) error {
	m.triggered = append(m.triggered, param)
	if err, ok := m.errFor[param]; ok {
		return err
	}
	if _, ok := service.AuxCommand(param); !ok {
		return fmt.Errorf("aux %q: %w", param, ir.ErrUnknownCommand)
	}
	return nil
}

type mockMonitoring struct {
	temps []float64
	snap  models.StatusSnapshot
	err   error
}

func (m *mockMonitoring) Compact(ctx context.Context) ([]float64, error) {
	return m.temps, m.err
}

func (m *mockMonitoring) Detailed(ctx context.Context) (models.StatusSnapshot, error) {
	return m.snap, m.err
}

type mockWatchdog struct {
	startErr    error
	stopErr     error
	snap        models.WatchdogSnapshot
	startCalled int
	stopCalled  int
}

func (m *mockWatchdog) Start(ctx context.Context) error {
	m.startCalled++
	if m.startErr == nil {
		m.snap.State = models.Running
	}
	return m.startErr
}

func (m *mockWatchdog) Stop(ctx context.Context) error {
	m.stopCalled++
	if m.stopErr == nil {
		m.snap.State = models.Stopped
	}
	return m.stopErr
}

func (m *mockWatchdog) Snapshot(ctx context.Context) (models.WatchdogSnapshot, error) {
	return m.snap, nil
}

type mockEventLog struct {
	resp     []models.Event
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.Event, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, nil, nil)
	return h.InitRoutes()
}
