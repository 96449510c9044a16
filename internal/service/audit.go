package service

import (
	"context"
	"time"

	"ac_watchdog/internal/ir"
	"ac_watchdog/internal/logger"
	"ac_watchdog/internal/metrics"
	"ac_watchdog/internal/models"
	"ac_watchdog/internal/repository"
)

// Recorder appends audit events. Failures are logged and otherwise ignored:
// the audit trail must never stop the watchdog.
type Recorder struct {
	events repository.EventRepo
	log    *logger.Logger
	now    func() time.Time
}

func NewRecorder(events repository.EventRepo, log *logger.Logger) *Recorder {
	return &Recorder{events: events, log: log, now: time.Now}
}

func (r *Recorder) Record(ctx context.Context, typ, description string, meta map[string]any) {
	if r == nil || r.events == nil {
		return
	}
	err := r.events.Append(ctx, models.Event{
		OccurredAt:  r.now().UTC(),
		Type:        typ,
		Description: description,
		Metadata:    meta,
	})
	if err != nil && r.log != nil {
		r.log.Errorw("audit_append_failed", "type", typ, "err", err)
	}
}

// CommandObserver records every transmit attempt as COMMAND_SENT or COMMAND_FAILED.
func (r *Recorder) CommandObserver(m *metrics.Metrics) ir.Observer {
	return func(ctx context.Context, name models.CommandName, err error) {
		m.ObserveCommand(name, err)
		if err != nil {
			r.Record(ctx, models.EventCommandFailed, "IR command "+string(name)+" failed",
				map[string]any{"command": name, "error": err.Error()})
			return
		}
		r.Record(ctx, models.EventCommandSent, "IR command "+string(name)+" sent",
			map[string]any{"command": name})
	}
}
