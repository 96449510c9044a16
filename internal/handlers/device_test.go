package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ac_watchdog/internal/models"
	"ac_watchdog/internal/service"
)

func TestOrderedArgs(t *testing.T) {
	got := orderedArgs("poweron=&temp16=1&&bad=%zz&fan%6Dax=x")
	want := []queryArg{{"poweron", ""}, {"temp16", "1"}, {"fanmax", "x"}}
	if len(got) != len(want) {
		t.Fatalf("orderedArgs = %+v; want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("arg %d = %+v; want %+v", i, got[i], want[i])
		}
	}
}

func TestSensData(t *testing.T) {
	mon := &mockMonitoring{temps: []float64{21.5, 22}}
	r := newTestRouter(&service.Service{Monitoring: mon})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sensData", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if got := w.Body.String(); got != `["21.50","22.00"]` {
		t.Fatalf("body = %s", got)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content type = %q; want text/html", ct)
	}

	mon.temps = nil
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sensData", nil))
	if w.Body.String() != "[]" {
		t.Fatalf("empty body = %s; want []", w.Body.String())
	}
}

func TestSensData_Error(t *testing.T) {
	mon := &mockMonitoring{err: errors.New("loop stopped")}
	r := newTestRouter(&service.Service{Monitoring: mon})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sensData", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d; want 500", w.Code)
	}
}

func TestIndexRendersStatusPage(t *testing.T) {
	mon := &mockMonitoring{snap: models.StatusSnapshot{
		SensorCount: 1,
		Sensors:     []models.SensorStatus{{Index: 0, TemperatureC: 23.5, Valid: true}},
		Watchdog:    models.WatchdogSnapshot{State: models.Running, Remaining: 7 * time.Second},
	}}
	r := newTestRouter(&service.Service{Monitoring: mon})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	for _, want := range []string{"Found [1] temperature sensors", `<span id="tmp0">23.50</span>`, "watchDog: [RUNNING] remaining: 7s"} {
		if !strings.Contains(body, want) {
			t.Fatalf("page missing %q:\n%s", want, body)
		}
	}
}

func TestAux_RunsArgsInOrder(t *testing.T) {
	cmds := &mockCommands{}
	r := newTestRouter(&service.Service{Commands: cmds})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/aux?poweron=&temp16=&fanmax=1", nil))

	if w.Code != http.StatusOK || w.Body.Len() != 0 {
		t.Fatalf("status=%d body=%q; want empty 200", w.Code, w.Body.String())
	}
	want := []string{"poweron", "temp16", "fanmax"}
	if strings.Join(cmds.triggered, ",") != strings.Join(want, ",") {
		t.Fatalf("triggered %v; want %v", cmds.triggered, want)
	}
}

func TestAux_UnknownAndFailingArgsStill200(t *testing.T) {
	cmds := &mockCommands{errFor: map[string]error{"display": errors.New("lirc: write failed")}}
	r := newTestRouter(&service.Service{Commands: cmds})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/aux?bogus=&display=&modevent=", nil))

	if w.Code != http.StatusOK || w.Body.Len() != 0 {
		t.Fatalf("status=%d body=%q; want empty 200", w.Code, w.Body.String())
	}
	if len(cmds.triggered) != 3 {
		t.Fatalf("every arg should be tried, got %v", cmds.triggered)
	}
}

func TestAux_PostForm(t *testing.T) {
	cmds := &mockCommands{}
	r := newTestRouter(&service.Service{Commands: cmds})

	req := httptest.NewRequest(http.MethodPost, "/aux?poweron=", strings.NewReader("modecooling=&temp18="))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	want := "poweron,modecooling,temp18"
	if got := strings.Join(cmds.triggered, ","); got != want {
		t.Fatalf("triggered %s; want %s", got, want)
	}
}

func TestJScriptStub(t *testing.T) {
	r := newTestRouter(&service.Service{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/jscript.js", nil))
	if w.Code != http.StatusOK || w.Body.Len() != 0 {
		t.Fatalf("status=%d body=%q; want empty 200", w.Code, w.Body.String())
	}
}

func TestNotFoundDiagnostic(t *testing.T) {
	r := newTestRouter(&service.Service{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ir?code=20DF10EF&x=1", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d; want 404", w.Code)
	}
	want := "File Not Found\n\nURI: /ir\nMethod: GET\nArguments: 2\n code: 20DF10EF\n x: 1\n"
	if got := w.Body.String(); got != want {
		t.Fatalf("body = %q; want %q", got, want)
	}
}
