package service

import (
	"context"
	"time"

	"ac_watchdog/internal/ir"
	"ac_watchdog/internal/logger"
	"ac_watchdog/internal/metrics"
	"ac_watchdog/internal/models"
	"ac_watchdog/internal/notify"
	"ac_watchdog/internal/repository"
	"ac_watchdog/internal/sensor"
)

// Commands runs catalog actions: single frames, the autostart sequence and /aux names.
type Commands interface {
	Send(ctx context.Context, name models.CommandName) error
	Autostart(ctx context.Context) error
	Trigger(ctx context.Context, auxParam string) error
}

// Monitoring exposes read-only sensor and watchdog state.
type Monitoring interface {
	Compact(ctx context.Context) ([]float64, error)
	Detailed(ctx context.Context) (models.StatusSnapshot, error)
}

// WatchdogControl starts and stops the periodic sweep.
type WatchdogControl interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Snapshot(ctx context.Context) (models.WatchdogSnapshot, error)
}

// EventLog exposes append-only logs with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.Event, error)
}

// Service aggregates all sub-services. Loop must be running before any of them is used.
type Service struct {
	Commands
	Monitoring
	WatchdogControl
	EventLog

	Loop     *Loop
	watchdog *Watchdog
	state    repository.StateRepo
	log      *logger.Logger
}

type Deps struct {
	Watchdog  models.WatchdogConfig
	Inventory sensor.Inventory
	Catalog   *ir.Catalog
	Repos     *repository.Repository
	Notifier  notify.Notifier
	Metrics   *metrics.Metrics
	Now       func() time.Time
	Log       *logger.Logger

	// Heartbeat is called from the control loop every HeartbeatEvery (systemd WATCHDOG=1).
	Heartbeat      func()
	HeartbeatEvery time.Duration
}

// NewService wires the repository layer, sensors and IR catalog into concrete services.
func NewService(d Deps) *Service {
	log := d.Log
	if log == nil {
		log = logger.Nop()
	}

	var (
		events repository.EventRepo
		state  repository.StateRepo
	)
	if d.Repos != nil {
		events = d.Repos.EventRepo
		state = d.Repos.StateRepo
	}

	rec := NewRecorder(events, log.Named("audit"))
	d.Catalog.SetObserver(rec.CommandObserver(d.Metrics))

	wd := NewWatchdog(d.Watchdog, WatchdogDeps{
		Inventory: d.Inventory,
		Commands:  d.Catalog,
		Recorder:  rec,
		State:     state,
		Notifier:  d.Notifier,
		Metrics:   d.Metrics,
		Now:       d.Now,
		Log:       log.Named("watchdog"),
	})
	loop := NewLoop(wd, log.Named("loop"))
	loop.SetHeartbeat(d.HeartbeatEvery, d.Heartbeat)

	return &Service{
		Commands:        NewCommandService(loop, d.Catalog, rec, log.Named("commands")),
		Monitoring:      NewMonitoringService(loop, NewStatusReporter(d.Inventory, wd, log.Named("status"))),
		WatchdogControl: NewWatchdogService(loop, wd),
		EventLog:        NewEventLogService(events),
		Loop:            loop,
		watchdog:        wd,
		state:           state,
		log:             log,
	}
}
