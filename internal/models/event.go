package models

import "time"

// Audit event types.
const (
	EventWatchdogStarted = "WATCHDOG_STARTED"
	EventWatchdogStopped = "WATCHDOG_STOPPED"
	EventAlarmRaised     = "ALARM_RAISED"
	EventAlarmCleared    = "ALARM_CLEARED"
	EventCommandSent     = "COMMAND_SENT"
	EventCommandFailed   = "COMMAND_FAILED"
	EventAutostart       = "AUTOSTART"
)

// Event is a single audit log entry.
type Event struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Metadata    any       `json:"metadata,omitempty"`
}
