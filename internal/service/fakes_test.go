package service

import (
	"context"
	"sync"
	"time"

	"ac_watchdog/internal/ir"
	"ac_watchdog/internal/models"
	"ac_watchdog/internal/notify"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, time.July, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// recordingSender captures corrective commands sent by the watchdog.
type recordingSender struct {
	names []models.CommandName
	err   error
}

func (s *recordingSender) Send(ctx context.Context, name models.CommandName) error {
	s.names = append(s.names, name)
	return s.err
}

// memEventRepo keeps audit events in memory.
type memEventRepo struct {
	mu     sync.Mutex
	events []models.Event
}

func (r *memEventRepo) Append(ctx context.Context, e models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *memEventRepo) List(ctx context.Context, from, to time.Time, typ string) ([]models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Event
	for _, e := range r.events {
		if typ != "" && e.Type != typ {
			continue
		}
		if !from.IsZero() && e.OccurredAt.Before(from) {
			continue
		}
		if !to.IsZero() && e.OccurredAt.After(to) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *memEventRepo) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

// memStateRepo records saved watchdog counters.
type memStateRepo struct {
	saved   []models.WatchdogRecord
	load    models.WatchdogRecord
	loadErr error
}

func (r *memStateRepo) Save(ctx context.Context, rec models.WatchdogRecord) error {
	r.saved = append(r.saved, rec)
	return nil
}

func (r *memStateRepo) Load(ctx context.Context) (models.WatchdogRecord, error) {
	return r.load, r.loadErr
}

// recordingNotifier captures alarm notifications.
type recordingNotifier struct {
	alarms []notify.Alarm
}

func (n *recordingNotifier) Notify(ctx context.Context, a notify.Alarm) error {
	n.alarms = append(n.alarms, a)
	return nil
}

// testFrames returns a frame for every catalog name.
func testFrames() map[models.CommandName]models.CommandFrame {
	frames := make(map[models.CommandName]models.CommandFrame, len(models.FrameNames))
	for _, name := range models.FrameNames {
		frames[name] = models.CommandFrame{Name: name, CarrierHz: 38000, Pulses: []uint32{9000, 4500, 560}}
	}
	return frames
}

func noSleep(ctx context.Context, d time.Duration) error { return ctx.Err() }

func newTestCatalog(tx ir.Transmitter, opts ...ir.Option) *ir.Catalog {
	return ir.NewCatalog(testFrames(), tx, append([]ir.Option{ir.WithSleep(noSleep)}, opts...)...)
}

func equalNames(a, b []models.CommandName) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
