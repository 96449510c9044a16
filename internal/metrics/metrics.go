package metrics

import (
	"time"

	"ac_watchdog/internal/models"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ac_watchdog"

// Metrics holds the controller's collectors. A nil *Metrics is a no-op.
type Metrics struct {
	sweeps        prometheus.Counter
	sweepDuration prometheus.Histogram
	sensors       prometheus.Gauge
	temperature   *prometheus.GaugeVec
	alarmActive   *prometheus.GaugeVec
	alarmRaises   *prometheus.CounterVec
	commands      *prometheus.CounterVec

	// addresses currently exported by temperature
	exported map[models.SensorAddress]struct{}
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		exported: make(map[models.SensorAddress]struct{}),
		sweeps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweeps_total",
			Help:      "Watchdog sweeps performed.",
		}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Time spent in one watchdog sweep, including the bus conversion.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2, 5, 10},
		}),
		sensors: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sensors",
			Help:      "Sensors seen on the one-wire bus in the last sweep.",
		}),
		temperature: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "temperature_celsius",
			Help:      "Last valid reading per sensor.",
		}, []string{"address"}),
		alarmActive: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "alarm_active",
			Help:      "1 while the alarm class is active.",
		}, []string{"class"}),
		alarmRaises: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alarm_raises_total",
			Help:      "Inactive to active transitions per alarm class since process start.",
		}, []string{"class"}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ir_commands_total",
			Help:      "IR frames transmitted, by command and result.",
		}, []string{"command", "result"}),
	}

	reg.MustRegister(m.sweeps, m.sweepDuration, m.sensors, m.temperature, m.alarmActive, m.alarmRaises, m.commands)
	return m
}

func (m *Metrics) ObserveSweep(d time.Duration, sensors int) {
	if m == nil {
		return
	}
	m.sweeps.Inc()
	m.sweepDuration.Observe(d.Seconds())
	m.sensors.Set(float64(sensors))
}

// SetTemperatures exports one sweep's valid readings. Sensors missing from
// readings, because they failed or left the bus, are dropped from the gauge.
func (m *Metrics) SetTemperatures(readings map[models.SensorAddress]float64) {
	if m == nil {
		return
	}
	for addr := range m.exported {
		if _, ok := readings[addr]; !ok {
			m.temperature.DeleteLabelValues(addr.String())
			delete(m.exported, addr)
		}
	}
	for addr, c := range readings {
		m.temperature.WithLabelValues(addr.String()).Set(c)
		m.exported[addr] = struct{}{}
	}
}

func (m *Metrics) SetAlarm(class models.AlarmClass, active bool) {
	if m == nil {
		return
	}
	v := 0.0
	if active {
		v = 1
	}
	m.alarmActive.WithLabelValues(class.String()).Set(v)
}

func (m *Metrics) IncRaise(class models.AlarmClass) {
	if m == nil {
		return
	}
	m.alarmRaises.WithLabelValues(class.String()).Inc()
}

func (m *Metrics) ObserveCommand(name models.CommandName, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.commands.WithLabelValues(string(name), result).Inc()
}
