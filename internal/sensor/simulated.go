package sensor

import (
	"context"
	"fmt"
	"sync"

	"ac_watchdog/internal/models"
)

// SimulatedSensor is one entry of a SimulatedInventory.
type SimulatedSensor struct {
	Address      models.SensorAddress
	TemperatureC float64
}

// SimulatedInventory serves fixed readings. It backs --mock_sensors and tests.
type SimulatedInventory struct {
	mu         sync.Mutex
	sensors    []SimulatedSensor
	refreshErr error
	refreshes  int
}

func NewSimulatedInventory(sensors ...SimulatedSensor) *SimulatedInventory {
	return &SimulatedInventory{sensors: append([]SimulatedSensor(nil), sensors...)}
}

// Set replaces every reading in order; extra sensors are removed.
func (s *SimulatedInventory) Set(temps ...float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(temps) < len(s.sensors) {
		s.sensors = s.sensors[:len(temps)]
	}
	for i, t := range temps {
		if i < len(s.sensors) {
			s.sensors[i].TemperatureC = t
			continue
		}
		s.sensors = append(s.sensors, SimulatedSensor{Address: SimulatedAddress(i), TemperatureC: t})
	}
}

// SetTemperature changes the reading of one sensor.
func (s *SimulatedInventory) SetTemperature(i int, t float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.sensors) {
		return fmt.Errorf("index %d: %w", i, ErrSensorUnavailable)
	}
	s.sensors[i].TemperatureC = t
	return nil
}

// FailRefresh makes subsequent Refresh calls return err (nil restores).
func (s *SimulatedInventory) FailRefresh(err error) {
	s.mu.Lock()
	s.refreshErr = err
	s.mu.Unlock()
}

// Refreshes returns how many times Refresh was called.
func (s *SimulatedInventory) Refreshes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshes
}

func (s *SimulatedInventory) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sensors)
}

func (s *SimulatedInventory) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshes++
	return s.refreshErr
}

func (s *SimulatedInventory) AddressOf(i int) (models.SensorAddress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.sensors) {
		return models.SensorAddress{}, fmt.Errorf("index %d: %w", i, ErrSensorUnavailable)
	}
	return s.sensors[i].Address, nil
}

func (s *SimulatedInventory) TemperatureOf(i int) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.sensors) {
		return DisconnectedC, fmt.Errorf("index %d: %w", i, ErrSensorUnavailable)
	}
	return s.sensors[i].TemperatureC, nil
}

// SimulatedAddress returns a stable DS18B20-style address for index i.
func SimulatedAddress(i int) models.SensorAddress {
	a, _ := models.ParseW1Name(fmt.Sprintf("28-%012x", 0xa00000+i))
	return a
}
