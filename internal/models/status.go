package models

// SensorStatus is one row of the detailed status view.
type SensorStatus struct {
	Index        int           `json:"index"`
	Address      SensorAddress `json:"address"`
	TemperatureC float64       `json:"temperature_c"`
	Valid        bool          `json:"valid"`
	Offending    bool          `json:"offending"`
}

// StatusSnapshot is everything the status page and API report.
type StatusSnapshot struct {
	SensorCount int              `json:"sensor_count"`
	Sensors     []SensorStatus   `json:"sensors"`
	Watchdog    WatchdogSnapshot `json:"watchdog"`
}
