package ir

import (
	"context"
	"fmt"

	"ac_watchdog/internal/config"
	"ac_watchdog/internal/logger"
	"ac_watchdog/internal/models"
)

// Transmitter sends one frame. It does not wait for, or expect, any acknowledgement.
type Transmitter interface {
	Transmit(ctx context.Context, frame models.CommandFrame) error
}

// NewTransmitter selects the transport configured under ir.*.
func NewTransmitter(cfg config.IRConfig, log *logger.Logger) (Transmitter, error) {
	switch cfg.Driver {
	case config.DriverLIRC:
		return NewLIRCTransmitter(cfg.Device), nil
	case config.DriverGPIO:
		return NewGPIOTransmitter(cfg.Pin), nil
	case config.DriverMock:
		return NewMockTransmitter(log), nil
	default:
		return nil, fmt.Errorf("unknown ir driver %q", cfg.Driver)
	}
}
