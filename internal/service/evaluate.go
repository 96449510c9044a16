package service

import "ac_watchdog/internal/models"

// Evaluate classifies one valid reading. HIGH wins when the thresholds overlap.
func Evaluate(r models.SensorReading, cfg models.WatchdogConfig) models.AlarmClass {
	switch {
	case r.TemperatureC > cfg.HighThresholdC:
		return models.AlarmHigh
	case r.TemperatureC < cfg.LowThresholdC:
		return models.AlarmLow
	default:
		return models.AlarmNone
	}
}
