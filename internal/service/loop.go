package service

import (
	"context"
	"errors"
	"time"

	"ac_watchdog/internal/logger"
)

var errLoopStopped = errors.New("control loop stopped")

// scheduled is the periodic work the loop runs between requests.
type scheduled interface {
	Until() (time.Duration, bool)
	Tick(ctx context.Context)
}

type job struct {
	fn   func(ctx context.Context) error
	done chan error
}

// Loop is the single goroutine that owns the sensors, the IR transport and the
// watchdog state. Requests and watchdog ticks run one at a time, in arrival
// order; a slow bus read or transmit delays everything queued behind it.
type Loop struct {
	jobs    chan job
	stopped chan struct{}
	sched   scheduled
	log     *logger.Logger

	beatEvery time.Duration
	beat      func()
}

func NewLoop(sched scheduled, log *logger.Logger) *Loop {
	if log == nil {
		log = logger.Nop()
	}
	return &Loop{
		jobs:    make(chan job),
		stopped: make(chan struct{}),
		sched:   sched,
		log:     log,
	}
}

// SetHeartbeat makes Run call fn every interval between jobs, whatever the
// watchdog state. It must be called before Run.
func (l *Loop) SetHeartbeat(every time.Duration, fn func()) {
	if every <= 0 || fn == nil {
		return
	}
	l.beatEvery = every
	l.beat = fn
}

// Do runs fn on the loop and waits for it. ctx only bounds the wait for a
// slot; once started, fn runs to completion with the loop's context.
// fn must not call Do.
func (l *Loop) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	j := job{fn: fn, done: make(chan error, 1)}
	select {
	case l.jobs <- j:
	case <-ctx.Done():
		return ctx.Err()
	case <-l.stopped:
		return errLoopStopped
	}
	return <-j.done
}

// Run serves requests and watchdog ticks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.stopped)
	l.log.Infow("control_loop_started")

	var beat <-chan time.Time
	if l.beat != nil {
		ticker := time.NewTicker(l.beatEvery)
		defer ticker.Stop()
		beat = ticker.C
	}

	for {
		var (
			timer *time.Timer
			tick  <-chan time.Time
		)
		if d, armed := l.sched.Until(); armed {
			timer = time.NewTimer(d)
			tick = timer.C
		}

		select {
		case <-ctx.Done():
			stopTimer(timer)
			l.log.Infow("control_loop_stopped")
			return
		case j := <-l.jobs:
			stopTimer(timer)
			j.done <- l.run(ctx, j.fn)
		case <-tick:
			l.sched.Tick(ctx)
		case <-beat:
			stopTimer(timer)
			l.beat()
		}
	}
}

// run executes one job, turning a panic into an error so the loop survives.
func (l *Loop) run(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Errorw("control_loop_job_panic", "panic", r)
			err = errors.New("control loop job panicked")
		}
	}()
	return fn(ctx)
}

func stopTimer(t *time.Timer) {
	if t != nil {
		t.Stop()
	}
}
