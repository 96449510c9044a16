//go:build !linux

package ir

import (
	"context"
	"errors"

	"ac_watchdog/internal/models"
)

var errLIRCUnsupported = errors.New("lirc transmit requires linux")

func (t *LIRCTransmitter) Transmit(ctx context.Context, frame models.CommandFrame) error {
	return errLIRCUnsupported
}
