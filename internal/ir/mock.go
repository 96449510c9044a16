package ir

import (
	"context"
	"sync"

	"ac_watchdog/internal/logger"
	"ac_watchdog/internal/models"
)

// MockTransmitter logs frames instead of sending them and keeps a record.
type MockTransmitter struct {
	mu   sync.Mutex
	sent []models.CommandName
	err  error
	log  *logger.Logger
}

func NewMockTransmitter(log *logger.Logger) *MockTransmitter {
	return &MockTransmitter{log: log}
}

func (m *MockTransmitter) Transmit(ctx context.Context, frame models.CommandFrame) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.log != nil {
		m.log.Infow("ir_mock_transmit", "command", frame.Name, "pulses", len(frame.Pulses), "carrier_hz", frame.CarrierHz)
	}
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, frame.Name)
	return nil
}

// Sent returns the names transmitted so far, in order.
func (m *MockTransmitter) Sent() []models.CommandName {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.CommandName(nil), m.sent...)
}

// FailWith makes later transmits return err (nil restores).
func (m *MockTransmitter) FailWith(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}
