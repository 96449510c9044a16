package ir

import (
	"context"
	"fmt"

	"ac_watchdog/internal/models"

	"golang.org/x/sys/unix"
)

func (t *LIRCTransmitter) Transmit(ctx context.Context, frame models.CommandFrame) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fd, err := unix.Open(t.device, unix.O_WRONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return fmt.Errorf("open %s: %w", t.device, err)
	}
	defer unix.Close(fd)

	if err := unix.IoctlSetPointerInt(fd, lircSetSendMode, lircModePulse); err != nil {
		return fmt.Errorf("set pulse mode on %s: %w", t.device, err)
	}
	if frame.CarrierHz > 0 {
		// Not every receiver-transmitter supports it; the default carrier still works.
		_ = unix.IoctlSetPointerInt(fd, lircSetSendCarrier, frame.CarrierHz)
	}

	buf := encodePulses(frame.Pulses)
	n, err := unix.Write(fd, buf)
	if err != nil {
		return fmt.Errorf("write %s after %d bytes: %w", frame.Name, n, err)
	}
	if n != len(buf) {
		return fmt.Errorf("short write for %s: %d of %d bytes", frame.Name, n, len(buf))
	}
	return nil
}
