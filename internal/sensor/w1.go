package sensor

import (
	"context"
	"fmt"
	"sync"

	"ac_watchdog/internal/logger"
	"ac_watchdog/internal/models"

	"github.com/yryz/ds18b20"
)

type w1Reading struct {
	name    string
	address models.SensorAddress
	tempC   float64
}

// W1Inventory reads DS18B20 sensors through the Linux w1 sysfs bus.
// Refresh enumerates the bus and samples every sensor once; the getters
// serve the cached results until the next Refresh.
type W1Inventory struct {
	mu          sync.RWMutex
	readings    []w1Reading
	calibration map[string]float64
	log         *logger.Logger

	listSlaves  func() ([]string, error)
	temperature func(name string) (float64, error)
}

// NewW1Inventory builds an inventory. calibration maps w1 slave names
// ("28-0316a2794fff") to an offset in °C added to every reading.
func NewW1Inventory(calibration map[string]float64, log *logger.Logger) *W1Inventory {
	return &W1Inventory{
		calibration: calibration,
		log:         log,
		listSlaves:  ds18b20.Sensors,
		temperature: ds18b20.Temperature,
	}
}

func (w *W1Inventory) Count() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.readings)
}

func (w *W1Inventory) Refresh(ctx context.Context) error {
	names, err := w.listSlaves()
	if err != nil {
		// Keep the previous snapshot; the bus may come back on the next sweep.
		return fmt.Errorf("list w1 slaves: %w", err)
	}

	next := make([]w1Reading, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}
		addr, err := models.ParseW1Name(name)
		if err != nil {
			if w.log != nil {
				w.log.Debugw("w1_slave_skipped", "name", name, "err", err)
			}
			continue
		}

		t, err := w.temperature(name)
		if err != nil {
			if w.log != nil {
				w.log.Infow("w1_read_failed", "name", name, "err", err)
			}
			t = DisconnectedC
		} else {
			t += w.calibration[name]
		}
		next = append(next, w1Reading{name: name, address: addr, tempC: t})
	}

	w.mu.Lock()
	w.readings = next
	w.mu.Unlock()
	return nil
}

func (w *W1Inventory) AddressOf(i int) (models.SensorAddress, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if i < 0 || i >= len(w.readings) {
		return models.SensorAddress{}, fmt.Errorf("index %d: %w", i, ErrSensorUnavailable)
	}
	return w.readings[i].address, nil
}

func (w *W1Inventory) TemperatureOf(i int) (float64, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if i < 0 || i >= len(w.readings) {
		return DisconnectedC, fmt.Errorf("index %d: %w", i, ErrSensorUnavailable)
	}
	return w.readings[i].tempC, nil
}
