package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"weather-server/confs"
	"weather-server/db"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database, err := db.Connect(confs.DBConfig{
		Driver:   db.DriverSQLite,
		Path:     filepath.Join(t.TempDir(), "weather.db"),
		LogLevel: "silent",
	})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	s, err := NewServer(database, &confs.Config{HTTPAddr: "127.0.0.1:0", SensorRateLimit: 100, SensorRateBurst: 100})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s
}

func do(t *testing.T, s *Server, method, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("%s %s: decoding body %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec.Code, out
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	if code, body := do(t, s, http.MethodGet, "/health", ""); code != http.StatusOK || body["status"] != "OK" {
		t.Errorf("health: %d %v", code, body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "weather_connected_sensors") {
		t.Error("metrics output is missing weather gauges")
	}
}

func TestDeviceRoutes(t *testing.T) {
	s := newTestServer(t)

	device := `{"device_id":"DT001","description":"Temperature Sensor","device_type":"Temperature","manufacturer":"Acme"}`
	if code, body := do(t, s, http.MethodPost, "/api/v1/devices", device); code != http.StatusCreated {
		t.Fatalf("create: %d %v", code, body)
	}
	if code, body := do(t, s, http.MethodPost, "/api/v1/devices", device); code != http.StatusConflict {
		t.Errorf("duplicate: want 409, got %d %v", code, body)
	}
	if code, _ := do(t, s, http.MethodPost, "/api/v1/devices", `{"device_type":"Temperature"}`); code != http.StatusBadRequest {
		t.Errorf("missing id: want 400, got %d", code)
	}
	if code, _ := do(t, s, http.MethodPost, "/api/v1/devices", `{`); code != http.StatusBadRequest {
		t.Errorf("bad json: want 400, got %d", code)
	}

	code, body := do(t, s, http.MethodGet, "/api/v1/devices/DT001", "")
	if code != http.StatusOK {
		t.Fatalf("get: %d %v", code, body)
	}
	data := body["data"].(map[string]any)
	if data["device_type"] != "Temperature" || data["manufacturer"] != "Acme" {
		t.Errorf("unexpected device: %v", data)
	}
	if _, ok := data["id"]; ok {
		t.Error("surrogate id leaked into response")
	}

	if code, _ := do(t, s, http.MethodGet, "/api/v1/devices/DT404", ""); code != http.StatusNotFound {
		t.Errorf("unknown device: want 404, got %d", code)
	}

	code, body = do(t, s, http.MethodGet, "/api/v1/devices", "")
	if code != http.StatusOK || body["count"] != float64(1) {
		t.Errorf("list: %d %v", code, body)
	}
}

func TestReadingAndReportRoutes(t *testing.T) {
	s := newTestServer(t)

	if code, body := do(t, s, http.MethodPost, "/api/v1/devices", `{"device_id":"D1","device_type":"Temperature"}`); code != http.StatusCreated {
		t.Fatalf("create device: %d %v", code, body)
	}

	for _, r := range []string{
		`{"device_id":"D1","value":20,"timestamp":"2021-12-02 00:30:00"}`,
		`{"device_id":"D1","value":"24.0","timestamp":"2021-12-02 12:30:00"}`,
		`{"device_id":"D1","value":30,"timestamp":"2021-12-03 00:30:00"}`,
	} {
		if code, body := do(t, s, http.MethodPost, "/api/v1/readings", r); code != http.StatusCreated {
			t.Fatalf("create reading %s: %d %v", r, code, body)
		}
	}

	dup := `{"device_id":"D1","value":1,"timestamp":"2021-12-02 00:30:00"}`
	if code, _ := do(t, s, http.MethodPost, "/api/v1/readings", dup); code != http.StatusConflict {
		t.Errorf("duplicate reading: want 409, got %d", code)
	}
	if code, _ := do(t, s, http.MethodPost, "/api/v1/readings", `{"device_id":"D1"}`); code != http.StatusBadRequest {
		t.Errorf("missing value: want 400, got %d", code)
	}
	if code, _ := do(t, s, http.MethodPost, "/api/v1/readings", `{"device_id":"NOPE","value":1}`); code != http.StatusNotFound {
		t.Errorf("unknown device: want 404, got %d", code)
	}

	code, body := do(t, s, http.MethodGet, "/api/v1/devices/D1/readings", "")
	if code != http.StatusOK || body["count"] != float64(3) {
		t.Errorf("device readings: %d %v", code, body)
	}
	code, body = do(t, s, http.MethodGet, "/api/v1/devices/D1/readings?low=22&high=26", "")
	if code != http.StatusOK || body["data"].(map[string]any)["value"] != "24" {
		t.Errorf("range: %d %v", code, body)
	}
	if code, _ := do(t, s, http.MethodGet, "/api/v1/devices/D1/readings?at=2021-12-02%2012:30:00", ""); code != http.StatusOK {
		t.Errorf("at: want 200, got %d", code)
	}
	if code, _ := do(t, s, http.MethodGet, "/api/v1/devices/D1/readings?low=abc&high=3", ""); code != http.StatusBadRequest {
		t.Errorf("bad range: want 400, got %d", code)
	}

	if code, body := do(t, s, http.MethodGet, "/api/v1/reports/status", ""); code != http.StatusOK || body["status"] != "idle" {
		t.Errorf("status before run: %d %v", code, body)
	}

	code, body = do(t, s, http.MethodPost, "/api/v1/reports/generate", "")
	if code != http.StatusCreated {
		t.Fatalf("generate: %d %v", code, body)
	}
	if run := body["run"].(map[string]any); run["inserted"] != float64(2) {
		t.Errorf("first run: %v", run)
	}

	code, body = do(t, s, http.MethodPost, "/api/v1/reports/generate", "")
	if code != http.StatusOK || body["run"].(map[string]any)["skipped"] != true {
		t.Errorf("second run should be skipped: %d %v", code, body)
	}

	code, body = do(t, s, http.MethodGet, "/api/v1/devices/D1/reports?date=2021-12-02", "")
	if code != http.StatusOK {
		t.Fatalf("report by date: %d %v", code, body)
	}
	if avg := body["data"].(map[string]any)["avg_value"]; avg != "22" {
		t.Errorf("avg: got %v, want 22", avg)
	}

	code, body = do(t, s, http.MethodGet, "/api/v1/devices/D1/reports?from=2021-12-01&to=2021-12-03", "")
	if code != http.StatusOK || body["count"] != float64(2) {
		t.Errorf("report range: %d %v", code, body)
	}
	if code, _ := do(t, s, http.MethodGet, "/api/v1/devices/D1/reports", ""); code != http.StatusBadRequest {
		t.Errorf("no report query: want 400, got %d", code)
	}

	code, body = do(t, s, http.MethodGet, "/api/v1/reports", "")
	if code != http.StatusOK || body["count"] != float64(2) {
		t.Errorf("all reports: %d %v", code, body)
	}
}

func TestNewServer_InvalidSchedule(t *testing.T) {
	database, err := db.Connect(confs.DBConfig{
		Driver:   db.DriverSQLite,
		Path:     filepath.Join(t.TempDir(), "weather.db"),
		LogLevel: "silent",
	})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer database.Close()

	if _, err := NewServer(database, &confs.Config{AggregationSchedule: "whenever"}); err == nil {
		t.Fatal("expected error for invalid schedule")
	}
}
