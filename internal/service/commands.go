package service

import (
	"context"
	"fmt"
	"strings"

	"ac_watchdog/internal/ir"
	"ac_watchdog/internal/logger"
	"ac_watchdog/internal/models"
)

// auxParams maps /aux argument names to catalog commands.
var auxParams = map[string]models.CommandName{
	"autostart":   models.Autostart,
	"poweron":     models.PowerOn,
	"poweroff":    models.PowerOff,
	"temp16":      models.Temp16,
	"temp18":      models.Temp18,
	"temp20":      models.Temp20,
	"temp24":      models.Temp24,
	"temp28":      models.Temp28,
	"temp30":      models.Temp30,
	"fanauto":     models.FanAuto,
	"fanmin":      models.FanMin,
	"fanmid":      models.FanMid,
	"fanmax":      models.FanMax,
	"modecooling": models.ModeCool,
	"modevent":    models.ModeVent,
	"display":     models.Display,
}

// AuxCommand resolves an /aux argument name. Matching is exact, as on the device.
func AuxCommand(param string) (models.CommandName, bool) {
	name, ok := auxParams[param]
	return name, ok
}

// catalog is the part of *ir.Catalog the command service needs.
type catalog interface {
	Send(ctx context.Context, name models.CommandName) error
	Autostart(ctx context.Context) error
}

type CommandService struct {
	loop    *Loop
	catalog catalog
	rec     *Recorder
	log     *logger.Logger
}

func NewCommandService(loop *Loop, c catalog, rec *Recorder, log *logger.Logger) *CommandService {
	if log == nil {
		log = logger.Nop()
	}
	return &CommandService{loop: loop, catalog: c, rec: rec, log: log}
}

// Send transmits one frame on the control loop.
func (s *CommandService) Send(ctx context.Context, name models.CommandName) error {
	if name == models.Autostart {
		return s.Autostart(ctx)
	}
	return s.loop.Do(ctx, func(ctx context.Context) error {
		return s.catalog.Send(ctx, name)
	})
}

// Autostart runs the whole sequence as one loop job so no sweep lands between frames.
func (s *CommandService) Autostart(ctx context.Context) error {
	return s.loop.Do(ctx, func(ctx context.Context) error {
		err := s.catalog.Autostart(ctx)

		meta := map[string]any{"sequence": models.AutostartSequence}
		if err != nil {
			meta["error"] = err.Error()
			s.log.Errorw("autostart_failed", "err", err)
		} else {
			s.log.Infow("autostart_done")
		}
		s.rec.Record(ctx, models.EventAutostart, "Autostart sequence sent", meta)
		return err
	})
}

// Trigger runs the action for an /aux argument name.
// Unknown names return ir.ErrUnknownCommand without touching the transport.
func (s *CommandService) Trigger(ctx context.Context, param string) error {
	name, ok := AuxCommand(strings.TrimSpace(param))
	if !ok {
		return fmt.Errorf("aux %q: %w", param, ir.ErrUnknownCommand)
	}
	return s.Send(ctx, name)
}
