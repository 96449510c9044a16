package service

import (
	"context"
	"errors"
	"time"

	"ac_watchdog/internal/logger"
	"ac_watchdog/internal/metrics"
	"ac_watchdog/internal/models"
	"ac_watchdog/internal/notify"
	"ac_watchdog/internal/repository"
	"ac_watchdog/internal/sensor"
)

// Sender transmits one named IR command.
type Sender interface {
	Send(ctx context.Context, name models.CommandName) error
}

// WatchdogContext is all mutable watchdog state. Only the control loop touches it.
type WatchdogContext struct {
	cfg       models.WatchdogConfig
	state     models.RunState
	nextDue   time.Time
	startedAt time.Time
	lastSweep time.Time
	low       models.AlarmState
	high      models.AlarmState
}

// WatchdogDeps are the watchdog's collaborators. Only Inventory and Commands are required.
type WatchdogDeps struct {
	Inventory sensor.Inventory
	Commands  Sender
	Recorder  *Recorder
	State     repository.StateRepo
	Notifier  notify.Notifier
	Metrics   *metrics.Metrics
	Now       func() time.Time
	Log       *logger.Logger
}

// Watchdog samples every sensor each Period and drives the LOW/HIGH alarms.
// Corrective commands are sent only on an inactive to active edge.
type Watchdog struct {
	wc   WatchdogContext
	deps WatchdogDeps
}

func NewWatchdog(cfg models.WatchdogConfig, deps WatchdogDeps) *Watchdog {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	return &Watchdog{wc: WatchdogContext{cfg: cfg}, deps: deps}
}

// Start arms the first tick one Period from now. Starting a running watchdog is a no-op.
func (w *Watchdog) Start(ctx context.Context) error {
	if w.wc.state == models.Running {
		return nil
	}
	now := w.deps.Now()
	w.wc.state = models.Running
	w.wc.startedAt = now
	w.wc.nextDue = now.Add(w.wc.cfg.Period)

	w.deps.Log.Infow("watchdog_started", "period", w.wc.cfg.Period,
		"low_threshold_c", w.wc.cfg.LowThresholdC, "high_threshold_c", w.wc.cfg.HighThresholdC)
	w.deps.Recorder.Record(ctx, models.EventWatchdogStarted, "Watchdog started", map[string]any{
		"period_ms":        w.wc.cfg.Period.Milliseconds(),
		"low_threshold_c":  w.wc.cfg.LowThresholdC,
		"high_threshold_c": w.wc.cfg.HighThresholdC,
	})
	return nil
}

// Stop disarms the watchdog. Alarm state and counters are kept.
func (w *Watchdog) Stop(ctx context.Context) error {
	if w.wc.state == models.Stopped {
		return nil
	}
	w.wc.state = models.Stopped
	w.wc.nextDue = time.Time{}

	w.deps.Log.Infow("watchdog_stopped")
	w.deps.Recorder.Record(ctx, models.EventWatchdogStopped, "Watchdog stopped", nil)
	return nil
}

// Until returns the time left to the next tick, or false when stopped.
func (w *Watchdog) Until() (time.Duration, bool) {
	if w.wc.state != models.Running {
		return 0, false
	}
	d := w.wc.nextDue.Sub(w.deps.Now())
	if d < 0 {
		d = 0
	}
	return d, true
}

// Tick sweeps if a tick is due and schedules the next one. A late tick is not
// made up for: the next one is armed a full Period after now.
func (w *Watchdog) Tick(ctx context.Context) {
	if w.wc.state != models.Running || w.deps.Now().Before(w.wc.nextDue) {
		return
	}
	w.Sweep(ctx)

	next := w.wc.nextDue.Add(w.wc.cfg.Period)
	if now := w.deps.Now(); !next.After(now) {
		next = now.Add(w.wc.cfg.Period)
	}
	w.wc.nextDue = next
}

// Sweep refreshes the bus once, evaluates every valid reading and applies the
// alarm edges, HIGH before LOW.
func (w *Watchdog) Sweep(ctx context.Context) {
	start := w.deps.Now()
	inv := w.deps.Inventory

	if err := inv.Refresh(ctx); err != nil {
		w.deps.Log.Errorw("sensor_refresh_failed", "err", err)
	}

	var lowHit, highHit *models.SensorReading
	n := inv.Count()
	valid := make(map[models.SensorAddress]float64, n)
	for i := 0; i < n; i++ {
		addr, err := inv.AddressOf(i)
		if err != nil {
			w.logUnavailable(i, err)
			continue
		}
		t, err := inv.TemperatureOf(i)
		if err != nil {
			w.logUnavailable(i, err)
			continue
		}
		if !sensor.IsValid(t) {
			w.deps.Log.Debugw("sensor_reading_invalid", "index", i, "address", addr, "temperature_c", t)
			continue
		}
		valid[addr] = t

		r := models.SensorReading{Index: i, Address: addr, TemperatureC: t}
		switch Evaluate(r, w.wc.cfg) {
		case models.AlarmHigh:
			if highHit == nil {
				highHit = &r
			}
		case models.AlarmLow:
			if lowHit == nil {
				lowHit = &r
			}
		}
	}

	changed := w.apply(ctx, models.AlarmHigh, &w.wc.high, highHit, models.ModeCool)
	if w.apply(ctx, models.AlarmLow, &w.wc.low, lowHit, models.ModeVent) {
		changed = true
	}
	w.wc.lastSweep = start
	w.deps.Metrics.SetTemperatures(valid)

	if changed {
		w.persist(ctx)
	}
	w.deps.Metrics.ObserveSweep(w.deps.Now().Sub(start), n)
	w.deps.Log.Debugw("watchdog_sweep", "sensors", n,
		"low_active", w.wc.low.Active, "high_active", w.wc.high.Active)
}

// apply moves one class to its new state and reports whether an edge occurred.
func (w *Watchdog) apply(ctx context.Context, class models.AlarmClass, st *models.AlarmState, hit *models.SensorReading, corrective models.CommandName) bool {
	if hit == nil {
		if !st.Active {
			return false
		}
		st.Active = false
		st.OffendingSensor = models.SensorAddress{}

		w.deps.Metrics.SetAlarm(class, false)
		w.deps.Log.Infow("alarm_cleared", "class", class, "raise_count", st.RaiseCount)
		w.deps.Recorder.Record(ctx, models.EventAlarmCleared, class.String()+" alarm cleared", map[string]any{
			"class":       class.String(),
			"raise_count": st.RaiseCount,
		})
		w.notify(ctx, notify.Alarm{Class: class, RaiseCount: st.RaiseCount, At: w.deps.Now()})
		return true
	}

	if st.Active {
		st.OffendingSensor = hit.Address
		return false
	}

	st.Active = true
	st.OffendingSensor = hit.Address
	st.RaiseCount++

	w.deps.Metrics.SetAlarm(class, true)
	w.deps.Metrics.IncRaise(class)
	w.deps.Log.Infow("alarm_raised", "class", class, "sensor", hit.Address,
		"temperature_c", hit.TemperatureC, "raise_count", st.RaiseCount, "command", corrective)
	w.deps.Recorder.Record(ctx, models.EventAlarmRaised, class.String()+" alarm raised", map[string]any{
		"class":         class.String(),
		"sensor":        hit.Address.String(),
		"index":         hit.Index,
		"temperature_c": hit.TemperatureC,
		"raise_count":   st.RaiseCount,
		"command":       string(corrective),
	})

	if err := w.deps.Commands.Send(ctx, corrective); err != nil {
		w.deps.Log.Errorw("corrective_command_failed", "class", class, "command", corrective, "err", err)
	}

	w.notify(ctx, notify.Alarm{
		Class:        class,
		Raised:       true,
		Sensor:       hit.Address,
		TemperatureC: hit.TemperatureC,
		RaiseCount:   st.RaiseCount,
		At:           w.deps.Now(),
	})
	return true
}

func (w *Watchdog) notify(ctx context.Context, a notify.Alarm) {
	if w.deps.Notifier == nil {
		return
	}
	if err := w.deps.Notifier.Notify(ctx, a); err != nil {
		w.deps.Log.Errorw("alarm_notify_failed", "class", a.Class, "err", err)
	}
}

func (w *Watchdog) persist(ctx context.Context) {
	if w.deps.State == nil {
		return
	}
	err := w.deps.State.Save(ctx, models.WatchdogRecord{
		LowRaiseCount:  w.wc.low.RaiseCount,
		HighRaiseCount: w.wc.high.RaiseCount,
		LastSweepAt:    w.wc.lastSweep,
	})
	if err != nil {
		w.deps.Log.Errorw("watchdog_state_save_failed", "err", err)
	}
}

func (w *Watchdog) logUnavailable(i int, err error) {
	if errors.Is(err, sensor.ErrSensorUnavailable) {
		w.deps.Log.Debugw("sensor_unavailable", "index", i)
		return
	}
	w.deps.Log.Errorw("sensor_read_failed", "index", i, "err", err)
}

// Restore carries persisted lifetime counters over. Counters never go down and
// the active flags are left alone, so a live alarm is not raised twice.
func (w *Watchdog) Restore(rec models.WatchdogRecord) {
	w.wc.low.RaiseCount = max(w.wc.low.RaiseCount, rec.LowRaiseCount)
	w.wc.high.RaiseCount = max(w.wc.high.RaiseCount, rec.HighRaiseCount)
	if rec.LastSweepAt.After(w.wc.lastSweep) {
		w.wc.lastSweep = rec.LastSweepAt
	}
}

// Snapshot returns a copy of the watchdog state.
func (w *Watchdog) Snapshot() models.WatchdogSnapshot {
	remaining, _ := w.Until()
	return models.WatchdogSnapshot{
		State:     w.wc.state,
		Remaining: remaining,
		StartedAt: w.wc.startedAt,
		LastSweep: w.wc.lastSweep,
		Config:    w.wc.cfg,
		Low:       w.wc.low,
		High:      w.wc.high,
	}
}
