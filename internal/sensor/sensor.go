package sensor

import (
	"context"
	"errors"
	"math"

	"ac_watchdog/internal/models"
)

// DisconnectedC is the DS18B20 "device disconnected" reading.
// It is returned instead of an error when a present sensor cannot be read.
const DisconnectedC = -127.0

// ErrSensorUnavailable is returned when an index is not present on the bus.
var ErrSensorUnavailable = errors.New("sensor unavailable")

// Inventory is the one-wire bus as seen by the watchdog and the status reporter.
// Count may change between calls; callers re-query it instead of caching.
type Inventory interface {
	Count() int
	Refresh(ctx context.Context) error
	AddressOf(i int) (models.SensorAddress, error)
	TemperatureOf(i int) (float64, error)
}

// IsValid reports whether t is a usable reading.
func IsValid(t float64) bool {
	return !math.IsNaN(t) && t != DisconnectedC
}
