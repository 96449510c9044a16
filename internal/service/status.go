package service

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"strconv"
	"strings"
	"time"

	"ac_watchdog/internal/logger"
	"ac_watchdog/internal/models"
	"ac_watchdog/internal/sensor"

	"github.com/dustin/go-humanize"
)

// StatusReporter builds read-only views of the sensors and the watchdog.
type StatusReporter struct {
	inv sensor.Inventory
	wd  *Watchdog
	log *logger.Logger
}

func NewStatusReporter(inv sensor.Inventory, wd *Watchdog, log *logger.Logger) *StatusReporter {
	if log == nil {
		log = logger.Nop()
	}
	return &StatusReporter{inv: inv, wd: wd, log: log}
}

func (s *StatusReporter) refresh(ctx context.Context) error {
	if err := s.inv.Refresh(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		s.log.Errorw("status_refresh_failed", "err", err)
	}
	return nil
}

// Compact samples the bus and returns one reading per sensor in inventory
// order. Disconnected sensors report sensor.DisconnectedC.
func (s *StatusReporter) Compact(ctx context.Context) ([]float64, error) {
	if err := s.refresh(ctx); err != nil {
		return nil, err
	}
	n := s.inv.Count()
	out := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		t, err := s.inv.TemperatureOf(i)
		if errors.Is(err, sensor.ErrSensorUnavailable) {
			continue
		}
		if err != nil {
			t = sensor.DisconnectedC
		}
		out = append(out, t)
	}
	return out, nil
}

// FormatCompact renders readings as ["21.50","22.00"].
func FormatCompact(temps []float64) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, t := range temps {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strconv.FormatFloat(t, 'f', 2, 64))
		b.WriteByte('"')
	}
	b.WriteByte(']')
	return b.String()
}

// Detailed samples the bus and reports every sensor plus the watchdog state.
func (s *StatusReporter) Detailed(ctx context.Context) (models.StatusSnapshot, error) {
	if err := s.refresh(ctx); err != nil {
		return models.StatusSnapshot{}, err
	}
	wd := s.wd.Snapshot()

	n := s.inv.Count()
	snap := models.StatusSnapshot{
		Sensors:  make([]models.SensorStatus, 0, n),
		Watchdog: wd,
	}
	for i := 0; i < n; i++ {
		addr, err := s.inv.AddressOf(i)
		if err != nil {
			continue
		}
		t, err := s.inv.TemperatureOf(i)
		if err != nil {
			t = sensor.DisconnectedC
		}
		snap.Sensors = append(snap.Sensors, models.SensorStatus{
			Index:        i,
			Address:      addr,
			TemperatureC: t,
			Valid:        sensor.IsValid(t),
			Offending:    wd.IsOffending(addr),
		})
	}
	snap.SensorCount = len(snap.Sensors)
	return snap, nil
}

type auxLink struct {
	Param string
	Label string
}

// auxLinkGroups is the command panel of the status page.
var auxLinkGroups = [][]auxLink{
	{{"autostart", "Aux AUTOSTART"}, {"poweron", "Aux ON"}, {"poweroff", "Aux OFF"}},
	{{"temp16", "Aux set Temp 16"}, {"temp18", "Aux set Temp 18"}, {"temp20", "Aux set Temp 20"},
		{"temp24", "Aux set Temp 24"}, {"temp28", "Aux set Temp 28"}, {"temp30", "Aux set Temp 30"}},
	{{"fanauto", "Aux set fan to AUTO"}, {"fanmin", "Aux set fan to MIN"}, {"fanmid", "Aux set fan to MID"},
		{"fanmax", "Aux set fan to MAX"}},
	{{"modecooling", "Aux set COOLING mode"}, {"modevent", "Aux set VENT mode"}},
	{{"display", "Aux set Display On/Off"}},
}

var statusPage = template.Must(template.New("status").Funcs(template.FuncMap{
	"temp": func(t float64) string { return strconv.FormatFloat(t, 'f', 2, 64) },
}).Parse(`<!DOCTYPE html><html>
<head><title>AC watchdog</title></head>
<body>
<script type="text/javascript">
var updateTimeMs = 3000;
function J(url, cb) {
	var a = new XMLHttpRequest();
	a.open("GET", url, true);
	a.responseType = "json";
	a.onload = function() { if (cb) { a.status === 200 ? cb(null, a.response) : cb(a.status, null); } };
	try { a.send(); } catch (e) { if (cb) { cb(e, null); } }
}
function sensUpdate(err, data) {
	if (err === null && data) {
		data.forEach(function(v, i) {
			var el = document.getElementById("tmp" + i);
			if (el) { el.textContent = v; }
		});
	}
	setTimeout(function() { J("/sensData", sensUpdate); }, updateTimeMs);
}
setTimeout(function() { J("/sensData", sensUpdate); }, updateTimeMs);
</script>
<h2>Found [{{.SensorCount}}] temperature sensors</h2>
{{range .Sensors}}{{if .Offending}}<h3 style="color: red; font-weight: bold;">{{else}}<h3>{{end}}Temperature ({{.Index}}) [{{.Address}}] <span id="tmp{{.Index}}">{{temp .TemperatureC}}</span>{{if not .Valid}} (disconnected){{end}}</h3>
{{end}}<h4>Thresholds: low {{temp .Watchdog.Config.LowThresholdC}} °C, high {{temp .Watchdog.Config.HighThresholdC}} °C</h4>
{{if .Watchdog.Low.Active}}<h4>Low temperature sensor: {{.Watchdog.Low.OffendingSensor}}</h4>
{{end}}{{if .Watchdog.High.Active}}<h4>High temperature sensor: {{.Watchdog.High.OffendingSensor}}</h4>
{{end}}<h5>watchDog: [{{.Watchdog.State}}] remaining: {{.Remaining}}{{if .Started}} started {{.Started}}{{end}}{{if .LastSweep}} last sweep {{.LastSweep}}{{end}}</h5>
<h5>watchDogRaises: Lo:[{{temp .Watchdog.Config.LowThresholdC}}]={{.Watchdog.Low.RaiseCount}} Hi:[{{temp .Watchdog.Config.HighThresholdC}}]={{.Watchdog.High.RaiseCount}}</h5>
{{range .Links}}{{range .}}<p><a href="#" onclick="J('aux?{{.Param}}=')">{{.Label}}</a></p>
{{end}}<br/>
{{end}}</body>
</html>
`))

type statusPageData struct {
	models.StatusSnapshot
	Remaining string
	Started   string
	LastSweep string
	Links     [][]auxLink
}

// RenderHTML is the human-readable status page with the command panel.
func RenderHTML(snap models.StatusSnapshot, now time.Time) (string, error) {
	data := statusPageData{
		StatusSnapshot: snap,
		Remaining:      "-",
		Links:          auxLinkGroups,
	}
	if snap.Watchdog.State == models.Running {
		data.Remaining = snap.Watchdog.Remaining.Round(time.Second).String()
	}
	if !snap.Watchdog.StartedAt.IsZero() {
		data.Started = humanize.RelTime(snap.Watchdog.StartedAt, now, "ago", "from now")
	}
	if !snap.Watchdog.LastSweep.IsZero() {
		data.LastSweep = humanize.RelTime(snap.Watchdog.LastSweep, now, "ago", "from now")
	}

	var buf bytes.Buffer
	if err := statusPage.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
