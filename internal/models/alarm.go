package models

import (
	"fmt"
	"time"
)

// AlarmClass is the outcome of evaluating one reading against the thresholds.
type AlarmClass uint8

const (
	AlarmNone AlarmClass = iota
	AlarmLow
	AlarmHigh
)

func (c AlarmClass) String() string {
	switch c {
	case AlarmLow:
		return "LOW"
	case AlarmHigh:
		return "HIGH"
	default:
		return "NONE"
	}
}

func (c AlarmClass) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *AlarmClass) UnmarshalText(text []byte) error {
	switch string(text) {
	case "NONE":
		*c = AlarmNone
	case "LOW":
		*c = AlarmLow
	case "HIGH":
		*c = AlarmHigh
	default:
		return fmt.Errorf("unknown alarm class %q", text)
	}
	return nil
}

// SensorReading is produced fresh on every sweep.
type SensorReading struct {
	Index        int           `json:"index"`
	Address      SensorAddress `json:"address"`
	TemperatureC float64       `json:"temperature_c"`
}

// AlarmState tracks one alarm class.
// OffendingSensor is zero iff Active is false. RaiseCount never decreases.
type AlarmState struct {
	Active          bool          `json:"active"`
	OffendingSensor SensorAddress `json:"offending_sensor"`
	RaiseCount      uint64        `json:"raise_count"`
}

// WatchdogConfig is fixed once the watchdog is constructed.
type WatchdogConfig struct {
	Period         time.Duration `json:"period"`
	LowThresholdC  float64       `json:"low_threshold_c"`
	HighThresholdC float64       `json:"high_threshold_c"`
}

// RunState is the watchdog lifecycle.
type RunState uint8

const (
	Stopped RunState = iota
	Running
)

func (s RunState) String() string {
	if s == Running {
		return "RUNNING"
	}
	return "STOPPED"
}

func (s RunState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *RunState) UnmarshalText(text []byte) error {
	switch string(text) {
	case "STOPPED":
		*s = Stopped
	case "RUNNING":
		*s = Running
	default:
		return fmt.Errorf("unknown run state %q", text)
	}
	return nil
}

// WatchdogSnapshot is a read-only copy of the watchdog's state.
type WatchdogSnapshot struct {
	State     RunState       `json:"state"`
	Remaining time.Duration  `json:"remaining_ns"`
	StartedAt time.Time      `json:"started_at,omitempty"`
	LastSweep time.Time      `json:"last_sweep,omitempty"`
	Config    WatchdogConfig `json:"config"`
	Low       AlarmState     `json:"low"`
	High      AlarmState     `json:"high"`
}

// IsOffending reports whether addr is the recorded sensor of any active alarm.
func (s WatchdogSnapshot) IsOffending(addr SensorAddress) bool {
	if addr.IsZero() {
		return false
	}
	return (s.Low.Active && s.Low.OffendingSensor == addr) ||
		(s.High.Active && s.High.OffendingSensor == addr)
}

// WatchdogRecord is the persisted part of the watchdog: lifetime counters.
type WatchdogRecord struct {
	ID             int       `json:"id"`
	LowRaiseCount  uint64    `json:"low_raise_count"`
	HighRaiseCount uint64    `json:"high_raise_count"`
	LastSweepAt    time.Time `json:"last_sweep_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
