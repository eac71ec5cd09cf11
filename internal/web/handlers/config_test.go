package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kozaktomas/photo-sheet/internal/config"
	"github.com/kozaktomas/photo-sheet/internal/layout"
)

func TestNewConfigHandler(t *testing.T) {
	cfg := &config.Config{}

	handler := NewConfigHandler(cfg)

	if handler == nil {
		t.Fatal("expected non-nil handler")
		return
	}

	if handler.config != cfg {
		t.Error("expected handler to hold reference to config")
	}
}

func TestConfigHandler_Get(t *testing.T) {
	setupStore(t)
	cfg := testConfig()
	cfg.Google = config.GoogleConfig{ClientID: "id", ClientSecret: "secret"}
	handler := NewConfigHandler(cfg)

	recorder := httptest.NewRecorder()
	handler.Get(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/config", nil))

	assertStatusCode(t, recorder, http.StatusOK)
	assertContentType(t, recorder, "application/json")

	var response ConfigResponse
	parseJSONResponse(t, recorder, &response)

	if !response.GoogleEnabled {
		t.Error("expected google_enabled to be true")
	}
	if response.RemoveBackgroundEnabled {
		t.Error("expected remove_background_enabled to be false without API keys")
	}
	if response.PrintDPI != 100 || response.PreviewDPI != 50 {
		t.Errorf("unexpected DPI values %g/%g", response.PrintDPI, response.PreviewDPI)
	}
	if response.StorageBackend != "memory" {
		t.Errorf("expected memory storage, got '%s'", response.StorageBackend)
	}
	if len(response.Formats) != 3 {
		t.Errorf("expected 3 formats, got %v", response.Formats)
	}
	if len(response.Layouts) != len(layout.Anchors()) {
		t.Errorf("expected %d layouts, got %d", len(layout.Anchors()), len(response.Layouts))
	}
	if response.Defaults != layout.DefaultSettings() {
		t.Errorf("unexpected defaults %+v", response.Defaults)
	}
	if response.Limits.MaxQuantity != layout.MaxQuantity {
		t.Errorf("expected max quantity %d, got %d", layout.MaxQuantity, response.Limits.MaxQuantity)
	}
}

func TestConfigHandler_Get_RemoveBackgroundEnabled(t *testing.T) {
	cfg := testConfig()
	cfg.RemoveBG.APIKeys = []string{"key"}
	handler := NewConfigHandler(cfg)

	recorder := httptest.NewRecorder()
	handler.Get(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/config", nil))

	var response ConfigResponse
	parseJSONResponse(t, recorder, &response)
	if !response.RemoveBackgroundEnabled {
		t.Error("expected remove_background_enabled to be true")
	}
}

func TestConfigHandler_Sizes(t *testing.T) {
	handler := NewConfigHandler(testConfig())

	recorder := httptest.NewRecorder()
	handler.Sizes(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/sizes", nil))

	assertStatusCode(t, recorder, http.StatusOK)

	var sizes []config.PhotoSize
	parseJSONResponse(t, recorder, &sizes)
	if len(sizes) != 2 || sizes[0].ID != "passport" || sizes[1].Width != 51 {
		t.Errorf("unexpected sizes %+v", sizes)
	}
}

func TestConfigHandler_Sizes_Empty(t *testing.T) {
	handler := NewConfigHandler(&config.Config{})

	recorder := httptest.NewRecorder()
	handler.Sizes(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/sizes", nil))

	if recorder.Body.String() != "[]\n" {
		t.Errorf("expected empty array, got '%s'", recorder.Body.String())
	}
}
