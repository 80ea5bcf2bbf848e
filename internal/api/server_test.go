package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/glowbridge/glowbridge-core/internal/accessory"
	"github.com/glowbridge/glowbridge-core/internal/history"
	"github.com/glowbridge/glowbridge-core/internal/infrastructure/config"
	"github.com/glowbridge/glowbridge-core/internal/infrastructure/logging"
)

// memoryRepository is an in-memory accessory.Repository for API tests.
type memoryRepository struct {
	records map[string]accessory.Record
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{records: make(map[string]accessory.Record)}
}

func (m *memoryRepository) GetByUUID(_ context.Context, uuid string) (*accessory.Record, error) {
	record, ok := m.records[uuid]
	if !ok {
		return nil, accessory.ErrNotFound
	}
	return record.DeepCopy(), nil
}

func (m *memoryRepository) List(_ context.Context) ([]accessory.Record, error) {
	records := make([]accessory.Record, 0, len(m.records))
	for _, record := range m.records {
		records = append(records, record)
	}
	return records, nil
}

func (m *memoryRepository) Upsert(_ context.Context, record *accessory.Record) error {
	m.records[record.UUID] = *record.DeepCopy()
	return nil
}

func (m *memoryRepository) Delete(_ context.Context, uuid string) error {
	if _, ok := m.records[uuid]; !ok {
		return accessory.ErrNotFound
	}
	delete(m.records, uuid)
	return nil
}

// fakeController serves fixed values and echoes writes back.
type fakeController struct {
	on         bool
	brightness int
}

func (c *fakeController) ReadOn(context.Context) bool        { return c.on }
func (c *fakeController) WriteOn(_ context.Context, on bool) { c.on = on }
func (c *fakeController) ReadBrightness(context.Context) int { return c.brightness }

func (c *fakeController) WriteBrightness(_ context.Context, level int) int {
	if level < 0 {
		level = 0
	}
	if level > 100 {
		level = 100
	}
	c.brightness = level
	return level
}

// fakeHistory returns canned entries.
type fakeHistory struct {
	entries []history.Entry
}

func (f *fakeHistory) RecordStateChange(context.Context, string, bool, int, string) error {
	return nil
}

func (f *fakeHistory) GetHistory(_ context.Context, _ string, _ int) ([]history.Entry, error) {
	return f.entries, nil
}

func (f *fakeHistory) PruneHistory(context.Context, time.Duration) (int64, error) {
	return 0, nil
}

func testDevices() []config.Device {
	return []config.Device{
		{Name: "Desk Lamp", OnURL: "http://lamp/on", OffURL: "http://lamp/off"},
		{Name: "Ceiling Light", OnURL: "http://ceiling/on", OffURL: "http://ceiling/off"},
	}
}

// testServer builds a Server whose registry is reconciled from testDevices.
func testServer(t *testing.T) (*Server, *accessory.Registry) {
	t.Helper()

	registry := accessory.NewRegistry(newMemoryRepository(), func(string, config.Device) accessory.Controller {
		return &fakeController{on: true, brightness: 50}
	})
	registry.Reconcile(context.Background(), testDevices())

	log := logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stdout"}, "test")

	srv, err := New(Deps{
		Config:   config.ServerConfig{Host: "127.0.0.1", Port: 0},
		Logger:   log,
		Registry: registry,
		History:  &fakeHistory{entries: []history.Entry{{AccessoryUUID: "x", On: true, Brightness: 50}}},
		Devices:  testDevices,
		Version:  "test",
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return srv, registry
}

// doRequest runs a request through the full middleware and routing stack.
func doRequest(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.buildRouter().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid JSON response %q: %v", rec.Body.String(), err)
	}
	return payload
}

func deskLampUUID() string {
	return accessory.UUIDFor("Desk Lamp")
}

func TestHealth(t *testing.T) {
	srv, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	payload := decodeBody(t, rec)
	if payload["status"] != "ok" {
		t.Errorf("status field = %v, want ok", payload["status"])
	}
	if payload["accessories"] != float64(2) {
		t.Errorf("accessories = %v, want 2", payload["accessories"])
	}
}

func TestListAccessories_SortedByName(t *testing.T) {
	srv, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/accessories/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	payload := decodeBody(t, rec)
	items, ok := payload["accessories"].([]any)
	if !ok || len(items) != 2 {
		t.Fatalf("accessories = %v, want 2 items", payload["accessories"])
	}
	first := items[0].(map[string]any)
	if first["name"] != "Ceiling Light" {
		t.Errorf("first accessory = %v, want Ceiling Light", first["name"])
	}
}

func TestGetAccessory(t *testing.T) {
	srv, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/accessories/"+deskLampUUID()+"/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	payload := decodeBody(t, rec)
	if payload["name"] != "Desk Lamp" {
		t.Errorf("name = %v, want Desk Lamp", payload["name"])
	}
}

func TestGetAccessory_NotFound(t *testing.T) {
	srv, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/accessories/unknown-uuid/", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	payload := decodeBody(t, rec)
	if payload["code"] != ErrCodeNotFound {
		t.Errorf("code = %v, want %s", payload["code"], ErrCodeNotFound)
	}
}

func TestReadOn(t *testing.T) {
	srv, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/accessories/"+deskLampUUID()+"/on", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if payload := decodeBody(t, rec); payload["on"] != true {
		t.Errorf("on = %v, want true", payload["on"])
	}
}

func TestWriteOn(t *testing.T) {
	srv, registry := testServer(t)

	rec := doRequest(t, srv, http.MethodPut, "/api/v1/accessories/"+deskLampUUID()+"/on", `{"on": false}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if payload := decodeBody(t, rec); payload["on"] != false {
		t.Errorf("on = %v, want false", payload["on"])
	}

	ctrl, err := registry.Controller(deskLampUUID())
	if err != nil {
		t.Fatalf("Controller() error: %v", err)
	}
	if ctrl.ReadOn(context.Background()) {
		t.Error("controller still reports on after write")
	}
}

func TestWriteOn_MissingField(t *testing.T) {
	srv, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodPut, "/api/v1/accessories/"+deskLampUUID()+"/on", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestWriteOn_InvalidJSON(t *testing.T) {
	srv, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodPut, "/api/v1/accessories/"+deskLampUUID()+"/on", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestReadBrightness(t *testing.T) {
	srv, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/accessories/"+deskLampUUID()+"/brightness", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if payload := decodeBody(t, rec); payload["brightness"] != float64(50) {
		t.Errorf("brightness = %v, want 50", payload["brightness"])
	}
}

func TestWriteBrightness_ReturnsAppliedValue(t *testing.T) {
	srv, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodPut, "/api/v1/accessories/"+deskLampUUID()+"/brightness", `{"brightness": 300}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if payload := decodeBody(t, rec); payload["brightness"] != float64(100) {
		t.Errorf("brightness = %v, want clamped 100", payload["brightness"])
	}
}

func TestWriteBrightness_MissingField(t *testing.T) {
	srv, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodPut, "/api/v1/accessories/"+deskLampUUID()+"/brightness", `{"level": 50}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGetHistory(t *testing.T) {
	srv, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/accessories/"+deskLampUUID()+"/history", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	payload := decodeBody(t, rec)
	if payload["count"] != float64(1) {
		t.Errorf("count = %v, want 1", payload["count"])
	}
}

func TestGetHistory_InvalidLimit(t *testing.T) {
	srv, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/accessories/"+deskLampUUID()+"/history?limit=abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestReconcile(t *testing.T) {
	srv, registry := testServer(t)

	// Registry already matches the configured devices, so a reconcile
	// applies no deltas.
	rec := doRequest(t, srv, http.MethodPost, "/api/v1/reconcile", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	payload := decodeBody(t, rec)
	if payload["added"] != float64(0) || payload["removed"] != float64(0) {
		t.Errorf("result = %v, want zero deltas", payload)
	}
	if registry.Count() != 2 {
		t.Errorf("Count() = %d, want 2", registry.Count())
	}
}

func TestNew_RequiresLogger(t *testing.T) {
	_, err := New(Deps{Registry: accessory.NewRegistry(newMemoryRepository(), nil)})
	if err == nil {
		t.Error("New() without logger should fail")
	}
}

func TestNew_RequiresRegistry(t *testing.T) {
	log := logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stdout"}, "test")
	_, err := New(Deps{Logger: log})
	if err == nil {
		t.Error("New() without registry should fail")
	}
}

func TestRequestIDHeader(t *testing.T) {
	srv, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/health", "")
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("response missing X-Request-ID header")
	}
}
