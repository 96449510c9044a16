package service

import (
	"context"
	"time"
)

type StartupOptions struct {
	// StartleDelay is the pause between the network coming up and autostart.
	StartleDelay time.Duration
	Autostart    bool
	// Sleep defaults to a context-aware time.Sleep.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Startup restores the persisted counters, waits out the startle delay, runs
// autostart once and then arms the watchdog. Autostart failures are logged;
// the watchdog is armed regardless.
func (s *Service) Startup(ctx context.Context, opts StartupOptions) error {
	sleep := opts.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	if s.state != nil {
		err := s.Loop.Do(ctx, func(ctx context.Context) error {
			rec, err := s.state.Load(ctx)
			if err != nil {
				return err
			}
			s.watchdog.Restore(rec)
			return nil
		})
		if err != nil {
			s.log.Errorw("watchdog_state_restore_failed", "err", err)
		} else {
			s.log.Infow("watchdog_state_restored")
		}
	}

	if err := sleep(ctx, opts.StartleDelay); err != nil {
		return err
	}

	if opts.Autostart {
		if err := s.Commands.Autostart(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.log.Errorw("startup_autostart_failed", "err", err)
		}
	}

	return s.WatchdogControl.Start(ctx)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
