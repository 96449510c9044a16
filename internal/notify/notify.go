package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ac_watchdog/internal/logger"
	"ac_watchdog/internal/models"
)

const (
	defaultQueueSize = 16
	sendTimeout      = 15 * time.Second
)

var errQueueFull = errors.New("notification queue full")

// Alarm describes one alarm edge.
type Alarm struct {
	Class        models.AlarmClass    `json:"class"`
	Raised       bool                 `json:"raised"`
	Sensor       models.SensorAddress `json:"sensor"`
	TemperatureC float64              `json:"temperature_c"`
	RaiseCount   uint64               `json:"raise_count"`
	At           time.Time            `json:"at"`
}

// Message is the human-readable text used for SMS.
func (a Alarm) Message() string {
	if !a.Raised {
		return fmt.Sprintf("AC watchdog: %s alarm cleared at %s", a.Class, a.At.Format(time.RFC3339))
	}
	return fmt.Sprintf("AC watchdog: %s alarm, sensor %s reads %.2f°C (raise #%d) at %s",
		a.Class, a.Sensor, a.TemperatureC, a.RaiseCount, a.At.Format(time.RFC3339))
}

// Notifier delivers alarms to one channel.
type Notifier interface {
	Notify(ctx context.Context, a Alarm) error
}

// Dispatcher queues alarms and delivers them from its own goroutine so a slow
// SMS gateway or broker never holds up the control loop.
type Dispatcher struct {
	ch      chan Alarm
	targets []Notifier
	log     *logger.Logger
}

func NewDispatcher(log *logger.Logger, targets ...Notifier) *Dispatcher {
	return &Dispatcher{
		ch:      make(chan Alarm, defaultQueueSize),
		targets: targets,
		log:     log,
	}
}

// Enabled reports whether any target is configured.
func (d *Dispatcher) Enabled() bool {
	return len(d.targets) > 0
}

// Notify enqueues without blocking.
func (d *Dispatcher) Notify(ctx context.Context, a Alarm) error {
	if !d.Enabled() {
		return nil
	}
	select {
	case d.ch <- a:
		return nil
	default:
		return errQueueFull
	}
}

// Run delivers queued alarms until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case a := <-d.ch:
			d.deliver(ctx, a)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, a Alarm) {
	for _, t := range d.targets {
		sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
		err := t.Notify(sendCtx, a)
		cancel()
		if err != nil && d.log != nil {
			d.log.Errorw("notify_failed", "target", fmt.Sprintf("%T", t), "class", a.Class, "raised", a.Raised, "err", err)
		}
	}
}
