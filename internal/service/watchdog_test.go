package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"ac_watchdog/internal/metrics"
	"ac_watchdog/internal/models"
	"ac_watchdog/internal/sensor"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type watchdogFixture struct {
	wd       *Watchdog
	inv      *sensor.SimulatedInventory
	sender   *recordingSender
	events   *memEventRepo
	state    *memStateRepo
	notifier *recordingNotifier
	clock    *fakeClock
	reg      *prometheus.Registry
}

func newWatchdogFixture(t *testing.T, temps ...float64) *watchdogFixture {
	t.Helper()
	f := &watchdogFixture{
		inv:      sensor.NewSimulatedInventory(),
		sender:   &recordingSender{},
		events:   &memEventRepo{},
		state:    &memStateRepo{},
		notifier: &recordingNotifier{},
		clock:    newFakeClock(),
		reg:      prometheus.NewRegistry(),
	}
	f.inv.Set(temps...)
	cfg := models.WatchdogConfig{Period: 15 * time.Second, LowThresholdC: 0, HighThresholdC: 30}
	f.wd = NewWatchdog(cfg, WatchdogDeps{
		Inventory: f.inv,
		Commands:  f.sender,
		Recorder:  NewRecorder(f.events, nil),
		State:     f.state,
		Notifier:  f.notifier,
		Metrics:   metrics.New(f.reg),
		Now:       f.clock.Now,
	})
	return f
}

func TestWatchdog_EdgeTriggeredHighThenRecovery(t *testing.T) {
	f := newWatchdogFixture(t, 31, 15)
	ctx := context.Background()

	f.wd.Sweep(ctx)
	f.wd.Sweep(ctx)

	snap := f.wd.Snapshot()
	if !snap.High.Active || snap.High.RaiseCount != 1 {
		t.Fatalf("after two hot sweeps: high=%+v; want active with one raise", snap.High)
	}
	if snap.High.OffendingSensor != sensor.SimulatedAddress(0) {
		t.Fatalf("offending sensor = %v; want %v", snap.High.OffendingSensor, sensor.SimulatedAddress(0))
	}
	if !equalNames(f.sender.names, []models.CommandName{models.ModeCool}) {
		t.Fatalf("sent %v; want exactly one ModeCool", f.sender.names)
	}
	if snap.Low.Active {
		t.Fatalf("low alarm should be inactive: %+v", snap.Low)
	}

	f.inv.Set(10, 15)
	f.wd.Sweep(ctx)

	snap = f.wd.Snapshot()
	if snap.High.Active || !snap.High.OffendingSensor.IsZero() {
		t.Fatalf("after recovery high=%+v; want cleared", snap.High)
	}
	if snap.High.RaiseCount != 1 {
		t.Fatalf("raise count = %d; want 1 kept after clear", snap.High.RaiseCount)
	}
	if len(f.sender.names) != 1 {
		t.Fatalf("recovery must not transmit, sent %v", f.sender.names)
	}

	want := []string{models.EventAlarmRaised, models.EventAlarmCleared}
	if got := f.events.Types(); !equalStrings(got, want) {
		t.Fatalf("events = %v; want %v", got, want)
	}
}

func TestWatchdog_FirstMatchAndTracking(t *testing.T) {
	f := newWatchdogFixture(t, 15, 35, 40)
	ctx := context.Background()

	f.wd.Sweep(ctx)
	if got := f.wd.Snapshot().High.OffendingSensor; got != sensor.SimulatedAddress(1) {
		t.Fatalf("offending = %v; want lowest matching index 1", got)
	}

	f.inv.Set(15, 20, 40)
	f.wd.Sweep(ctx)

	snap := f.wd.Snapshot()
	if snap.High.OffendingSensor != sensor.SimulatedAddress(2) {
		t.Fatalf("offending = %v; want index 2 while still active", snap.High.OffendingSensor)
	}
	if snap.High.RaiseCount != 1 || len(f.sender.names) != 1 {
		t.Fatalf("staying active must not re-raise: count=%d sent=%v", snap.High.RaiseCount, f.sender.names)
	}
}

func TestWatchdog_LowAndHighAreIndependent(t *testing.T) {
	f := newWatchdogFixture(t, -5, 35)
	ctx := context.Background()

	f.wd.Sweep(ctx)
	want := []models.CommandName{models.ModeCool, models.ModeVent}
	if !equalNames(f.sender.names, want) {
		t.Fatalf("sent %v; want %v", f.sender.names, want)
	}

	f.inv.Set(-5, 20)
	f.wd.Sweep(ctx)

	snap := f.wd.Snapshot()
	if snap.High.Active {
		t.Fatalf("high should have cleared: %+v", snap.High)
	}
	if !snap.Low.Active || snap.Low.OffendingSensor != sensor.SimulatedAddress(0) {
		t.Fatalf("clearing high must keep the low sensor: %+v", snap.Low)
	}
	if !snap.IsOffending(sensor.SimulatedAddress(0)) || snap.IsOffending(sensor.SimulatedAddress(1)) {
		t.Fatalf("unexpected offending set in %+v", snap)
	}
}

func TestWatchdog_SkipsInvalidReadings(t *testing.T) {
	f := newWatchdogFixture(t, sensor.DisconnectedC, math.NaN(), 15)

	f.wd.Sweep(context.Background())

	snap := f.wd.Snapshot()
	if snap.Low.Active || snap.High.Active {
		t.Fatalf("invalid readings must not raise: %+v", snap)
	}
	if len(f.sender.names) != 0 {
		t.Fatalf("nothing should be sent, got %v", f.sender.names)
	}
}

func TestWatchdog_ZeroSensors(t *testing.T) {
	f := newWatchdogFixture(t)

	f.wd.Sweep(context.Background())

	snap := f.wd.Snapshot()
	if snap.Low.Active || snap.High.Active || len(f.sender.names) != 0 {
		t.Fatalf("empty bus must be quiet: %+v sent=%v", snap, f.sender.names)
	}
	if snap.LastSweep.IsZero() {
		t.Fatalf("sweep over an empty bus should still be recorded")
	}
}

func TestWatchdog_RefreshErrorStillEvaluates(t *testing.T) {
	f := newWatchdogFixture(t, 31)
	f.inv.FailRefresh(errors.New("bus stuck"))

	f.wd.Sweep(context.Background())

	if !f.wd.Snapshot().High.Active {
		t.Fatalf("cached readings should still be evaluated")
	}
}

func TestWatchdog_SendFailureStillRaises(t *testing.T) {
	f := newWatchdogFixture(t, 31)
	f.sender.err = errors.New("lirc: device busy")

	f.wd.Sweep(context.Background())
	f.wd.Sweep(context.Background())

	snap := f.wd.Snapshot()
	if !snap.High.Active || snap.High.RaiseCount != 1 {
		t.Fatalf("high=%+v; want active with one raise", snap.High)
	}
	if len(f.sender.names) != 1 {
		t.Fatalf("failed transmit must not be retried, sent %v", f.sender.names)
	}
}

func TestWatchdog_PersistsAndNotifiesOnEdges(t *testing.T) {
	f := newWatchdogFixture(t, 31)
	ctx := context.Background()

	f.wd.Sweep(ctx)
	f.wd.Sweep(ctx)
	f.inv.Set(20)
	f.wd.Sweep(ctx)

	if len(f.state.saved) != 2 {
		t.Fatalf("saves = %d; want one per edge", len(f.state.saved))
	}
	last := f.state.saved[1]
	if last.HighRaiseCount != 1 || last.LowRaiseCount != 0 {
		t.Fatalf("saved record = %+v", last)
	}

	if len(f.notifier.alarms) != 2 {
		t.Fatalf("notifications = %d; want 2", len(f.notifier.alarms))
	}
	raised, cleared := f.notifier.alarms[0], f.notifier.alarms[1]
	if !raised.Raised || raised.Class != models.AlarmHigh || raised.Sensor != sensor.SimulatedAddress(0) || raised.TemperatureC != 31 {
		t.Fatalf("raise notification = %+v", raised)
	}
	if cleared.Raised || cleared.Class != models.AlarmHigh {
		t.Fatalf("clear notification = %+v", cleared)
	}
}

func TestWatchdog_Restore(t *testing.T) {
	f := newWatchdogFixture(t, -3)
	f.wd.Restore(models.WatchdogRecord{LowRaiseCount: 3, HighRaiseCount: 5})

	snap := f.wd.Snapshot()
	if snap.Low.Active || snap.High.Active {
		t.Fatalf("restored alarms must start cleared: %+v", snap)
	}
	if snap.Low.RaiseCount != 3 || snap.High.RaiseCount != 5 {
		t.Fatalf("restored counts = %d/%d; want 3/5", snap.Low.RaiseCount, snap.High.RaiseCount)
	}

	f.wd.Sweep(context.Background())
	if got := f.wd.Snapshot().Low.RaiseCount; got != 4 {
		t.Fatalf("low raise count = %d; want 4", got)
	}
}

func TestWatchdog_RestoreAfterLiveRaiseKeepsAlarm(t *testing.T) {
	f := newWatchdogFixture(t, 31)
	ctx := context.Background()

	f.wd.Sweep(ctx)
	f.wd.Restore(models.WatchdogRecord{HighRaiseCount: 0, LowRaiseCount: 2})

	snap := f.wd.Snapshot()
	if !snap.High.Active || snap.High.OffendingSensor != sensor.SimulatedAddress(0) {
		t.Fatalf("restore must not clear a live alarm: %+v", snap.High)
	}
	if snap.High.RaiseCount != 1 || snap.Low.RaiseCount != 2 {
		t.Fatalf("counts = low %d high %d; want 2/1", snap.Low.RaiseCount, snap.High.RaiseCount)
	}

	f.wd.Sweep(ctx)
	if !equalNames(f.sender.names, []models.CommandName{models.ModeCool}) {
		t.Fatalf("ModeCool should be sent once, sent %v", f.sender.names)
	}
}

func TestWatchdog_InvalidReadingDropsTemperatureGauge(t *testing.T) {
	f := newWatchdogFixture(t, 20, 21)
	ctx := context.Background()

	f.wd.Sweep(ctx)
	if n, err := testutil.GatherAndCount(f.reg, "ac_watchdog_temperature_celsius"); err != nil || n != 2 {
		t.Fatalf("temperature series = %d, %v; want 2", n, err)
	}

	f.inv.Set(20, sensor.DisconnectedC)
	f.wd.Sweep(ctx)
	if n, err := testutil.GatherAndCount(f.reg, "ac_watchdog_temperature_celsius"); err != nil || n != 1 {
		t.Fatalf("temperature series = %d, %v; want 1 once a sensor reads the sentinel", n, err)
	}

	f.inv.Set()
	f.wd.Sweep(ctx)
	if n, err := testutil.GatherAndCount(f.reg, "ac_watchdog_temperature_celsius"); err != nil || n != 0 {
		t.Fatalf("temperature series = %d, %v; want 0 with no sensors", n, err)
	}
}

func TestWatchdog_StartAndTickSchedule(t *testing.T) {
	f := newWatchdogFixture(t, 20)
	ctx := context.Background()
	start := f.clock.Now()

	if _, armed := f.wd.Until(); armed {
		t.Fatalf("stopped watchdog must not be armed")
	}
	f.wd.Tick(ctx)
	if f.inv.Refreshes() != 0 {
		t.Fatalf("stopped watchdog must not sweep")
	}

	if err := f.wd.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	f.clock.Advance(time.Second)
	if err := f.wd.Start(ctx); err != nil {
		t.Fatalf("second Start: %v", err)
	}
	snap := f.wd.Snapshot()
	if snap.State != models.Running || !snap.StartedAt.Equal(start) {
		t.Fatalf("second Start must be a no-op: %+v", snap)
	}
	if d, _ := f.wd.Until(); d != 14*time.Second {
		t.Fatalf("until = %v; want 14s", d)
	}

	f.clock.Advance(9 * time.Second)
	f.wd.Tick(ctx)
	if f.inv.Refreshes() != 0 {
		t.Fatalf("early tick must not sweep")
	}

	f.clock.Advance(5 * time.Second)
	f.wd.Tick(ctx)
	if f.inv.Refreshes() != 1 {
		t.Fatalf("due tick must sweep once, refreshes=%d", f.inv.Refreshes())
	}
	if d, _ := f.wd.Until(); d != 15*time.Second {
		t.Fatalf("until after tick = %v; want 15s", d)
	}

	// Late by more than a period: the next tick is a full period from now.
	f.clock.Advance(40 * time.Second)
	f.wd.Tick(ctx)
	if d, _ := f.wd.Until(); d != 15*time.Second {
		t.Fatalf("until after late tick = %v; want 15s", d)
	}

	if err := f.wd.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	f.clock.Advance(time.Minute)
	f.wd.Tick(ctx)
	if f.inv.Refreshes() != 2 {
		t.Fatalf("stopped watchdog swept, refreshes=%d", f.inv.Refreshes())
	}

	want := []string{models.EventWatchdogStarted, models.EventWatchdogStopped}
	if got := f.events.Types(); !equalStrings(got, want) {
		t.Fatalf("events = %v; want %v", got, want)
	}
}
