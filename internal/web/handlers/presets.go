package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/photo-sheet/internal/database"
	"github.com/kozaktomas/photo-sheet/internal/layout"
)

// PresetHandler handles saved layout presets
type PresetHandler struct{}

// NewPresetHandler creates a new preset handler
func NewPresetHandler() *PresetHandler {
	return &PresetHandler{}
}

type presetRequest struct {
	Name     *string          `json:"name"`
	Settings *layout.Settings `json:"settings"`
}

// PresetResponse is the JSON form of a preset
type PresetResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Settings  layout.Settings `json:"settings"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
}

func presetToResponse(p *database.Preset) PresetResponse {
	return PresetResponse{
		ID:        p.ID,
		Name:      p.Name,
		Settings:  p.Settings,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
		UpdatedAt: p.UpdatedAt.Format(time.RFC3339),
	}
}

// presetOwner returns the ID of the account allowed to manage presets,
// writing an error response when there is none.
func presetOwner(w http.ResponseWriter, r *http.Request) (string, bool) {
	user, err := currentUser(r)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return "", false
		}
		respondInternalError(w, r, "failed to load account", err)
		return "", false
	}
	if !user.CanStorePresets() {
		respondError(w, http.StatusForbidden, "sign in with a verified account to save presets")
		return "", false
	}
	return user.ID, true
}

func respondPresetError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		respondError(w, http.StatusNotFound, "preset not found")
	case errors.Is(err, database.ErrConflict):
		respondError(w, http.StatusConflict, "a preset with this name already exists")
	case errors.Is(err, database.ErrLimitReached):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, database.ErrInvalidName):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondInternalError(w, r, "failed to save preset", err)
	}
}

// List returns the user's presets ordered by name
func (h *PresetHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := presetOwner(w, r)
	if !ok {
		return
	}

	repo, err := database.GetPresetWriter(r.Context())
	if err != nil {
		respondInternalError(w, r, "storage unavailable", err)
		return
	}
	presets, err := repo.ListPresets(r.Context(), userID)
	if err != nil {
		respondInternalError(w, r, "failed to list presets", err)
		return
	}

	result := make([]PresetResponse, len(presets))
	for i := range presets {
		result[i] = presetToResponse(&presets[i])
	}
	respondJSON(w, http.StatusOK, result)
}

// Create saves a new preset
func (h *PresetHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := presetOwner(w, r)
	if !ok {
		return
	}

	var req presetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == nil || req.Settings == nil {
		respondError(w, http.StatusBadRequest, "name and settings are required")
		return
	}
	settings := req.Settings.Normalize()
	if err := settings.Validate(); err != nil {
		respondValidationError(w, err)
		return
	}

	repo, err := database.GetPresetWriter(r.Context())
	if err != nil {
		respondInternalError(w, r, "storage unavailable", err)
		return
	}

	preset := &database.Preset{UserID: userID, Name: *req.Name, Settings: settings}
	if err := repo.CreatePreset(r.Context(), preset); err != nil {
		respondPresetError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, presetToResponse(preset))
}

// Get returns a single preset
func (h *PresetHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := presetOwner(w, r)
	if !ok {
		return
	}

	repo, err := database.GetPresetWriter(r.Context())
	if err != nil {
		respondInternalError(w, r, "storage unavailable", err)
		return
	}
	preset, err := repo.GetPreset(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		respondPresetError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, presetToResponse(preset))
}

// Update renames a preset and/or replaces its settings
func (h *PresetHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := presetOwner(w, r)
	if !ok {
		return
	}

	var req presetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == nil && req.Settings == nil {
		respondError(w, http.StatusBadRequest, "nothing to update")
		return
	}
	if req.Settings != nil {
		*req.Settings = req.Settings.Normalize()
		if err := req.Settings.Validate(); err != nil {
			respondValidationError(w, err)
			return
		}
	}

	repo, err := database.GetPresetWriter(r.Context())
	if err != nil {
		respondInternalError(w, r, "storage unavailable", err)
		return
	}
	preset, err := repo.GetPreset(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		respondPresetError(w, r, err)
		return
	}

	if req.Name != nil {
		preset.Name = *req.Name
	}
	if req.Settings != nil {
		preset.Settings = *req.Settings
	}
	if err := repo.UpdatePreset(r.Context(), preset); err != nil {
		respondPresetError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, presetToResponse(preset))
}

// Delete removes a preset
func (h *PresetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := presetOwner(w, r)
	if !ok {
		return
	}

	repo, err := database.GetPresetWriter(r.Context())
	if err != nil {
		respondInternalError(w, r, "storage unavailable", err)
		return
	}
	if err := repo.DeletePreset(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		respondPresetError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
