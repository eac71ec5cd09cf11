package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kozaktomas/photo-sheet/internal/constants"
	"github.com/kozaktomas/photo-sheet/internal/database"
	"github.com/kozaktomas/photo-sheet/internal/database/memory"
	"github.com/kozaktomas/photo-sheet/internal/layout"
)

const validSettingsJSON = `{"width": 35, "height": 45, "quantity": 6, "spacing": 5, "top_margin": 10, "layout": "auto"}`

func setupPresetUser(t *testing.T) (*memory.Store, *database.User) {
	t.Helper()
	store := setupStore(t)
	user := createUser(t, store, &database.User{Email: "jana@example.com", Verified: true})
	return store, user
}

func createPresetViaHandler(t *testing.T, userID, name string) PresetResponse {
	t.Helper()
	req := withSession(jsonRequest(http.MethodPost, "/api/v1/presets",
		`{"name": "`+name+`", "settings": `+validSettingsJSON+`}`), userID, false)
	recorder := httptest.NewRecorder()
	NewPresetHandler().Create(recorder, req)
	assertStatusCode(t, recorder, http.StatusCreated)

	var preset PresetResponse
	parseJSONResponse(t, recorder, &preset)
	return preset
}

func TestPresetHandler_CreateAndList(t *testing.T) {
	_, user := setupPresetUser(t)

	created := createPresetViaHandler(t, user.ID, "  Visa  ")
	if created.ID == "" || created.Name != "Visa" {
		t.Errorf("unexpected preset %+v", created)
	}
	if created.Settings != layout.DefaultSettings() {
		t.Errorf("unexpected settings %+v", created.Settings)
	}
	createPresetViaHandler(t, user.ID, "alpha")

	recorder := httptest.NewRecorder()
	NewPresetHandler().List(recorder, withSession(httptest.NewRequest(http.MethodGet, "/api/v1/presets", nil), user.ID, false))

	assertStatusCode(t, recorder, http.StatusOK)
	var presets []PresetResponse
	parseJSONResponse(t, recorder, &presets)
	if len(presets) != 2 || presets[0].Name != "alpha" || presets[1].Name != "Visa" {
		t.Errorf("expected presets ordered by name, got %+v", presets)
	}
}

func TestPresetHandler_List_Empty(t *testing.T) {
	_, user := setupPresetUser(t)

	recorder := httptest.NewRecorder()
	NewPresetHandler().List(recorder, withSession(httptest.NewRequest(http.MethodGet, "/api/v1/presets", nil), user.ID, false))

	assertStatusCode(t, recorder, http.StatusOK)
	if recorder.Body.String() != "[]\n" {
		t.Errorf("expected empty array, got '%s'", recorder.Body.String())
	}
}

func TestPresetHandler_Create_Errors(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expectedError  string
	}{
		{"missing settings", `{"name": "x"}`, http.StatusBadRequest, "name and settings are required"},
		{"missing name", `{"settings": ` + validSettingsJSON + `}`, http.StatusBadRequest, "name and settings are required"},
		{"blank name", `{"name": "   ", "settings": ` + validSettingsJSON + `}`, http.StatusBadRequest, "invalid preset name"},
		{"invalid settings", `{"name": "x", "settings": {"width": 1, "height": 45, "quantity": 1, "top_margin": 10}}`, http.StatusBadRequest, "width: must be between 10 and 100, got 1"},
		{"invalid json", `[`, http.StatusBadRequest, errInvalidRequestBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, user := setupPresetUser(t)
			recorder := httptest.NewRecorder()
			NewPresetHandler().Create(recorder, withSession(jsonRequest(http.MethodPost, "/api/v1/presets", tt.body), user.ID, false))

			assertStatusCode(t, recorder, tt.expectedStatus)
			assertJSONError(t, recorder, tt.expectedError)
		})
	}
}

func TestPresetHandler_StoresCanonicalAnchor(t *testing.T) {
	store, user := setupPresetUser(t)

	recorder := httptest.NewRecorder()
	NewPresetHandler().Create(recorder, withSession(jsonRequest(http.MethodPost, "/api/v1/presets",
		`{"name": "corner", "settings": {"width": 35, "height": 45, "quantity": 4, "spacing": 5, "top_margin": 10, "layout": "TOP-Right "}}`), user.ID, false))
	assertStatusCode(t, recorder, http.StatusCreated)

	var created PresetResponse
	parseJSONResponse(t, recorder, &created)
	if created.Settings.Layout != "top-right" {
		t.Errorf("expected response anchor 'top-right', got '%s'", created.Settings.Layout)
	}

	stored, err := store.GetPreset(context.Background(), user.ID, created.ID)
	if err != nil {
		t.Fatalf("failed to load preset: %v", err)
	}
	if stored.Settings.Layout != "top-right" {
		t.Errorf("expected stored anchor 'top-right', got '%s'", stored.Settings.Layout)
	}
}

func TestPresetHandler_Create_DuplicateName(t *testing.T) {
	_, user := setupPresetUser(t)
	createPresetViaHandler(t, user.ID, "Čína")

	recorder := httptest.NewRecorder()
	NewPresetHandler().Create(recorder, withSession(jsonRequest(http.MethodPost, "/api/v1/presets",
		`{"name": "cina", "settings": `+validSettingsJSON+`}`), user.ID, false))

	assertStatusCode(t, recorder, http.StatusConflict)
}

func TestPresetHandler_Create_LimitReached(t *testing.T) {
	store, user := setupPresetUser(t)
	for i := range constants.MaxPresetsPerUser {
		preset := &database.Preset{UserID: user.ID, Name: fmt.Sprintf("preset %d", i), Settings: layout.DefaultSettings()}
		if err := store.CreatePreset(context.Background(), preset); err != nil {
			t.Fatalf("failed to create preset %d: %v", i, err)
		}
	}

	recorder := httptest.NewRecorder()
	NewPresetHandler().Create(recorder, withSession(jsonRequest(http.MethodPost, "/api/v1/presets",
		`{"name": "one too many", "settings": `+validSettingsJSON+`}`), user.ID, false))

	assertStatusCode(t, recorder, http.StatusUnprocessableEntity)
}

func TestPresetHandler_Forbidden(t *testing.T) {
	store := setupStore(t)
	guest := createUser(t, store, &database.User{Guest: true})
	unverified := createUser(t, store, &database.User{Email: "pending@example.com"})

	tests := []struct {
		name           string
		userID         string
		expectedStatus int
	}{
		{"guest", guest.ID, http.StatusForbidden},
		{"unverified", unverified.ID, http.StatusForbidden},
		{"deleted user", "missing", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			NewPresetHandler().List(recorder, withSession(httptest.NewRequest(http.MethodGet, "/api/v1/presets", nil), tt.userID, false))
			assertStatusCode(t, recorder, tt.expectedStatus)
		})
	}
}

func TestPresetHandler_GetUpdateDelete(t *testing.T) {
	store, user := setupPresetUser(t)
	other := createUser(t, store, &database.User{Email: "petr@example.com", Verified: true})
	created := createPresetViaHandler(t, user.ID, "Visa")
	handler := NewPresetHandler()
	params := map[string]string{"id": created.ID}

	// Another user cannot see it.
	recorder := httptest.NewRecorder()
	handler.Get(recorder, requestWithChiParams(withSession(httptest.NewRequest(http.MethodGet, "/", nil), other.ID, false), params))
	assertStatusCode(t, recorder, http.StatusNotFound)

	recorder = httptest.NewRecorder()
	handler.Get(recorder, requestWithChiParams(withSession(httptest.NewRequest(http.MethodGet, "/", nil), user.ID, false), params))
	assertStatusCode(t, recorder, http.StatusOK)

	recorder = httptest.NewRecorder()
	handler.Update(recorder, requestWithChiParams(withSession(jsonRequest(http.MethodPut, "/",
		`{"settings": {"width": 50, "height": 50, "quantity": 4, "spacing": 2, "top_margin": 15, "layout": "top-left"}}`), user.ID, false), params))
	assertStatusCode(t, recorder, http.StatusOK)

	var updated PresetResponse
	parseJSONResponse(t, recorder, &updated)
	if updated.Name != "Visa" {
		t.Errorf("name must be kept when only settings change, got '%s'", updated.Name)
	}
	if updated.Settings.WidthMM != 50 || updated.Settings.Layout != "top-left" {
		t.Errorf("settings were not replaced: %+v", updated.Settings)
	}

	recorder = httptest.NewRecorder()
	handler.Update(recorder, requestWithChiParams(withSession(jsonRequest(http.MethodPut, "/", `{}`), user.ID, false), params))
	assertStatusCode(t, recorder, http.StatusBadRequest)

	recorder = httptest.NewRecorder()
	handler.Delete(recorder, requestWithChiParams(withSession(httptest.NewRequest(http.MethodDelete, "/", nil), user.ID, false), params))
	assertStatusCode(t, recorder, http.StatusNoContent)

	recorder = httptest.NewRecorder()
	handler.Delete(recorder, requestWithChiParams(withSession(httptest.NewRequest(http.MethodDelete, "/", nil), user.ID, false), params))
	assertStatusCode(t, recorder, http.StatusNotFound)
}

func TestPresetHandler_Update_RenameConflict(t *testing.T) {
	_, user := setupPresetUser(t)
	createPresetViaHandler(t, user.ID, "Visa")
	second := createPresetViaHandler(t, user.ID, "Passport")

	recorder := httptest.NewRecorder()
	NewPresetHandler().Update(recorder, requestWithChiParams(withSession(jsonRequest(http.MethodPut, "/",
		`{"name": "VISA"}`), user.ID, false), map[string]string{"id": second.ID}))

	assertStatusCode(t, recorder, http.StatusConflict)
}

func TestPresetHandler_StorageError(t *testing.T) {
	store, user := setupPresetUser(t)
	store.ListPresetsError = errors.New("connection refused")

	recorder := httptest.NewRecorder()
	NewPresetHandler().List(recorder, withSession(httptest.NewRequest(http.MethodGet, "/api/v1/presets", nil), user.ID, false))

	assertStatusCode(t, recorder, http.StatusInternalServerError)
	assertJSONError(t, recorder, "failed to list presets")
}
