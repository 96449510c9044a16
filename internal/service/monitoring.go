package service

import (
	"context"

	"ac_watchdog/internal/models"
)

// MonitoringService runs status reads on the control loop.
type MonitoringService struct {
	loop   *Loop
	status *StatusReporter
}

func NewMonitoringService(loop *Loop, status *StatusReporter) *MonitoringService {
	return &MonitoringService{loop: loop, status: status}
}

func (s *MonitoringService) Compact(ctx context.Context) ([]float64, error) {
	var out []float64
	err := s.loop.Do(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.status.Compact(ctx)
		return err
	})
	return out, err
}

func (s *MonitoringService) Detailed(ctx context.Context) (models.StatusSnapshot, error) {
	var snap models.StatusSnapshot
	err := s.loop.Do(ctx, func(ctx context.Context) error {
		var err error
		snap, err = s.status.Detailed(ctx)
		return err
	})
	return snap, err
}

// WatchdogService exposes the watchdog lifecycle through the control loop.
type WatchdogService struct {
	loop *Loop
	wd   *Watchdog
}

func NewWatchdogService(loop *Loop, wd *Watchdog) *WatchdogService {
	return &WatchdogService{loop: loop, wd: wd}
}

func (s *WatchdogService) Start(ctx context.Context) error {
	return s.loop.Do(ctx, s.wd.Start)
}

func (s *WatchdogService) Stop(ctx context.Context) error {
	return s.loop.Do(ctx, s.wd.Stop)
}

func (s *WatchdogService) Snapshot(ctx context.Context) (models.WatchdogSnapshot, error) {
	var snap models.WatchdogSnapshot
	err := s.loop.Do(ctx, func(context.Context) error {
		snap = s.wd.Snapshot()
		return nil
	})
	return snap, err
}
