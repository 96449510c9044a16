package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ac_watchdog/internal/config"
	"ac_watchdog/internal/handlers"
	"ac_watchdog/internal/ir"
	"ac_watchdog/internal/logger"
	"ac_watchdog/internal/metrics"
	"ac_watchdog/internal/models"
	"ac_watchdog/internal/notify"
	"ac_watchdog/internal/repository"
	"ac_watchdog/internal/repository/db"
	"ac_watchdog/internal/sensor"
	"ac_watchdog/internal/server"
	"ac_watchdog/internal/service"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "path to config.yml (default configs/config.yml)")
	mockSensors := flag.Bool("mock_sensors", false, "serve the simulated sensors from config instead of the w1 bus")
	logLevel := flag.String("log_level", "", "debug|info|warn|error, overrides log.level")
	flag.Parse()

	// .env holds secrets; a missing file is fine
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Get(logger.InfoLevel, logger.ConsoleFormat).Fatalw("error reading .env", "err", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Get(logger.InfoLevel, logger.ConsoleFormat).Fatalw("error reading config", "err", err)
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *mockSensors {
		cfg.Sensors.Mock = true
	}

	// init logger
	log := logger.Get(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = log.Sync() }()

	// open DB
	sqlDB, err := openDB(cfg.DB.Path, log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// sensors ready
	inv, err := newInventory(cfg.Sensors, log.Named("sensor"))
	if err != nil {
		log.Fatalw("failed to init sensors", "err", err)
	}
	if err := inv.Refresh(context.Background()); err != nil {
		log.Errorw("initial sensor scan failed", "err", err)
	}
	log.Infow("sensors ready", "count", inv.Count(), "mock", cfg.Sensors.Mock)

	// IR transport and catalog
	catalog, err := newCatalog(cfg.IR, log.Named("ir"))
	if err != nil {
		log.Fatalw("failed to init IR", "err", err)
	}

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dispatcher, closeNotifiers := newNotifier(cfg, log.Named("notify"))
	defer closeNotifiers()
	go dispatcher.Run(ctx)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// wire dependencies
	deps := service.Deps{
		Watchdog: models.WatchdogConfig{
			Period:         cfg.Watchdog.Period,
			LowThresholdC:  cfg.Watchdog.LowThresholdC,
			HighThresholdC: cfg.Watchdog.HighThresholdC,
		},
		Inventory: inv,
		Catalog:   catalog,
		Repos:     repository.NewRepository(sqlDB),
		Notifier:  dispatcher,
		Metrics:   metrics.New(reg),
		Log:       log,
	}
	deps.HeartbeatEvery, deps.Heartbeat = heartbeat(log)
	services := service.NewService(deps)
	apiHandler := handlers.NewHandler(services, reg, log.Named("http"))

	loopDone := make(chan struct{})
	go func() {
		services.Loop.Run(ctx)
		close(loopDone)
	}()

	// network ready
	srv := &server.Server{}
	if err := srv.Listen(cfg.Port, apiHandler.InitRoutes()); err != nil {
		log.Fatalw("error starting server", "err", err)
	}
	go func() {
		if err := srv.Serve(); err != nil {
			log.Fatalw("error serving http", "err", err)
		}
	}()
	log.Infow("network ready", "addr", srv.Addr())

	// startle delay, autostart, then the watchdog
	go func() {
		err := services.Startup(ctx, service.StartupOptions{
			StartleDelay: cfg.Startup.StartleDelay,
			Autostart:    cfg.Startup.Autostart,
		})
		if err != nil {
			if ctx.Err() == nil {
				log.Errorw("startup failed", "err", err)
			}
			return
		}
		log.Infow("watchdog armed", "period", cfg.Watchdog.Period)
		if _, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
			log.Errorw("sd_notify ready failed", "err", err)
		}
	}()

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
	<-loopDone
}

// openDB initializes the SQLite database using configuration.
func openDB(path string, log *logger.Logger) (*sql.DB, error) {
	if path == "" {
		log.Infow("db.path not set in config; using default file", "default", "ac_watchdog.db")
		path = "ac_watchdog.db"
	}
	return db.InitDB(path)
}

func newInventory(cfg config.SensorsConfig, log *logger.Logger) (sensor.Inventory, error) {
	if !cfg.Mock {
		return sensor.NewW1Inventory(cfg.Calibration, log), nil
	}
	sims := make([]sensor.SimulatedSensor, 0, len(cfg.Simulated))
	for i, s := range cfg.Simulated {
		addr := sensor.SimulatedAddress(i)
		if s.Address != "" {
			parsed, err := models.ParseAddress(s.Address)
			if err != nil {
				return nil, err
			}
			addr = parsed
		}
		sims = append(sims, sensor.SimulatedSensor{Address: addr, TemperatureC: s.TemperatureC})
	}
	return sensor.NewSimulatedInventory(sims...), nil
}

func newCatalog(cfg config.IRConfig, log *logger.Logger) (*ir.Catalog, error) {
	frames, err := ir.LoadFrames(cfg.FramesFile)
	if err != nil {
		return nil, err
	}
	tx, err := ir.NewTransmitter(cfg, log)
	if err != nil {
		return nil, err
	}
	log.Infow("ir ready", "driver", cfg.Driver, "frames", len(frames))
	return ir.NewCatalog(frames, tx,
		ir.WithInterCommandDelay(cfg.InterCommandDelay),
		ir.WithLogger(log),
	), nil
}

// newNotifier builds the alarm fan-out. Targets without credentials are skipped.
func newNotifier(cfg *config.Config, log *logger.Logger) (*notify.Dispatcher, func()) {
	var (
		targets []notify.Notifier
		closers []func()
	)
	if cfg.MQTT.Broker != "" {
		m, err := notify.NewMQTT(cfg.MQTT, log)
		if err != nil {
			log.Errorw("mqtt disabled", "err", err)
		} else {
			targets = append(targets, m)
			closers = append(closers, m.Close)
		}
	}
	if cfg.Twilio.AccountSID != "" {
		s, err := notify.NewSMS(cfg.Twilio)
		if err != nil {
			log.Errorw("sms disabled", "err", err)
		} else {
			targets = append(targets, s)
		}
	}
	log.Infow("alarm notifiers", "targets", len(targets))

	return notify.NewDispatcher(log, targets...), func() {
		for _, c := range closers {
			c()
		}
	}
}

// heartbeat pings the systemd watchdog from the control loop at half of
// WatchdogSec, so a stopped watchdog still counts as alive but a wedged loop does not.
func heartbeat(log *logger.Logger) (time.Duration, func()) {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		log.Errorw("sd_watchdog check failed", "err", err)
		return 0, nil
	}
	if interval == 0 {
		return 0, nil
	}
	log.Infow("systemd watchdog enabled", "watchdog_sec", interval)
	return interval / 2, func() {
		_, _ = daemon.SdNotify(false, daemon.SdNotifyWatchdog)
	}
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
