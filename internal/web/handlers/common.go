package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/kozaktomas/photo-sheet/internal/constants"
	"github.com/kozaktomas/photo-sheet/internal/database"
	"github.com/kozaktomas/photo-sheet/internal/layout"
	"github.com/kozaktomas/photo-sheet/internal/logging"
	"github.com/kozaktomas/photo-sheet/internal/web/middleware"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondValidationError reports rejected layout settings with the field name.
func respondValidationError(w http.ResponseWriter, err error) {
	respondJSON(w, http.StatusBadRequest, map[string]string{
		"error": err.Error(),
		"field": layout.FieldOf(err),
	})
}

// respondInternalError logs err and sends a generic 500.
func respondInternalError(w http.ResponseWriter, r *http.Request, message string, err error) {
	logging.FromContext(r.Context()).Error(message, "err", err)
	respondError(w, http.StatusInternalServerError, message)
}

// decodeJSON decodes a size-limited JSON body into v, responding with 400 on
// failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxJSONBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return false
	}
	return true
}

// readUpload returns the contents and name of a multipart file field.
func readUpload(r *http.Request, field string) ([]byte, string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", fmt.Errorf("%s is required", field)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, constants.MaxUploadSize+1))
	if err != nil {
		return nil, "", errors.New("failed to read upload")
	}
	if len(data) > constants.MaxUploadSize {
		return nil, "", errors.New("file too large")
	}
	return data, header.Filename, nil
}

// parseMultipart parses a size-limited multipart form.
func parseMultipart(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxUploadSize+1<<20)
	if err := r.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return false
	}
	return true
}

// settingsFromForm reads layout settings from form values, keeping defaults
// for fields that are absent.
func settingsFromForm(form *multipart.Form) (layout.Settings, error) {
	s := layout.DefaultSettings()
	value := func(key string) string {
		if form == nil || len(form.Value[key]) == 0 {
			return ""
		}
		return strings.TrimSpace(form.Value[key][0])
	}

	floats := []struct {
		key string
		dst *float64
	}{
		{"width", &s.WidthMM},
		{"height", &s.HeightMM},
		{"spacing", &s.SpacingMM},
		{"top_margin", &s.TopMarginMM},
	}
	for _, f := range floats {
		v := value(f.key)
		if v == "" {
			continue
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return s, &layout.ValidationError{Field: f.key, Reason: "must be a number", Err: layout.ErrOutOfRange}
		}
		*f.dst = n
	}

	if v := value("quantity"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return s, &layout.ValidationError{Field: "quantity", Reason: "must be a whole number", Err: layout.ErrOutOfRange}
		}
		s.Quantity = n
	}
	if v := value("layout"); v != "" {
		s.Layout = layout.Anchor(v)
	}
	return s.Normalize(), nil
}

// formBool reads a checkbox-style boolean form value.
func formBool(r *http.Request, key string) bool {
	b, _ := strconv.ParseBool(r.FormValue(key))
	return b
}

// currentUser loads the account behind the request's session.
func currentUser(r *http.Request) (*database.User, error) {
	session := middleware.GetSessionFromContext(r.Context())
	if session == nil {
		return nil, database.ErrNotFound
	}
	users, err := database.GetUserWriter(r.Context())
	if err != nil {
		return nil, err
	}
	return users.GetUser(r.Context(), session.UserID)
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"storage": database.BackendName(),
	})
}
