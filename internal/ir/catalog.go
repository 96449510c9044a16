package ir

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ac_watchdog/internal/logger"
	"ac_watchdog/internal/models"
)

// ErrUnknownCommand is returned for names that have no frame.
var ErrUnknownCommand = errors.New("unknown command")

// DefaultInterCommandDelay separates frames sent back to back.
const DefaultInterCommandDelay = 500 * time.Millisecond

// Observer is told about every transmit attempt.
type Observer func(ctx context.Context, name models.CommandName, err error)

// Catalog maps command names to frames and sends them through a Transmitter.
// Frames never change after construction.
type Catalog struct {
	frames   map[models.CommandName]models.CommandFrame
	tx       Transmitter
	delay    time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
	observer Observer
	log      *logger.Logger
}

type Option func(*Catalog)

func WithInterCommandDelay(d time.Duration) Option {
	return func(c *Catalog) { c.delay = d }
}

// WithSleep replaces the wait between autostart frames.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Catalog) { c.sleep = sleep }
}

func WithObserver(o Observer) Option {
	return func(c *Catalog) { c.observer = o }
}

func WithLogger(log *logger.Logger) Option {
	return func(c *Catalog) { c.log = log }
}

func NewCatalog(frames map[models.CommandName]models.CommandFrame, tx Transmitter, opts ...Option) *Catalog {
	c := &Catalog{
		frames: frames,
		tx:     tx,
		delay:  DefaultInterCommandDelay,
		sleep:  sleepCtx,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetObserver attaches an observer after construction.
func (c *Catalog) SetObserver(o Observer) {
	c.observer = o
}

func (c *Catalog) Lookup(name models.CommandName) (models.CommandFrame, error) {
	f, ok := c.frames[name]
	if !ok {
		return models.CommandFrame{}, fmt.Errorf("%q: %w", name, ErrUnknownCommand)
	}
	return f, nil
}

// Send transmits one frame. The result is informational; nothing is retried.
func (c *Catalog) Send(ctx context.Context, name models.CommandName) error {
	frame, err := c.Lookup(name)
	if err != nil {
		return err
	}

	err = c.tx.Transmit(ctx, frame)
	if err != nil && c.log != nil {
		c.log.Errorw("ir_transmit_failed", "command", name, "err", err)
	} else if c.log != nil {
		c.log.Debugw("ir_transmit", "command", name)
	}
	if c.observer != nil {
		c.observer(ctx, name, err)
	}
	return err
}

// Autostart sends PowerOn, ModeCool, FanMax, Temp16 with the inter-command
// delay between frames. A failed frame does not stop the sequence.
func (c *Catalog) Autostart(ctx context.Context) error {
	var errs []error
	for i, name := range models.AutostartSequence {
		if i > 0 {
			if err := c.sleep(ctx, c.delay); err != nil {
				return errors.Join(append(errs, err)...)
			}
		}
		if err := c.Send(ctx, name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
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
