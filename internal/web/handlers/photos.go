package handlers

import (
	"bytes"
	"image"
	"net/http"
	"strconv"

	"github.com/kozaktomas/photo-sheet/internal/config"
	"github.com/kozaktomas/photo-sheet/internal/constants"
)

// PhotoHandler handles single-photo operations
type PhotoHandler struct {
	config  *config.Config
	remover BackgroundRemover
}

// NewPhotoHandler creates a new photo handler. remover may be nil.
func NewPhotoHandler(cfg *config.Config, remover BackgroundRemover) *PhotoHandler {
	return &PhotoHandler{config: cfg, remover: remover}
}

// RemoveBackground sends the uploaded photo to the background removal
// service and returns the cut-out PNG
func (h *PhotoHandler) RemoveBackground(w http.ResponseWriter, r *http.Request) {
	if h.remover == nil || !h.remover.Enabled() {
		respondError(w, http.StatusServiceUnavailable, "background removal is not configured")
		return
	}

	if !parseMultipart(w, r) {
		return
	}

	data, filename, err := readUpload(r, "file")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Reject non-images before spending an API call on them.
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		respondError(w, http.StatusBadRequest, "unsupported image type")
		return
	}
	if int64(cfg.Width)*int64(cfg.Height) > constants.MaxImagePixels {
		respondError(w, http.StatusRequestEntityTooLarge, "image too large")
		return
	}

	result, err := h.remover.Remove(r.Context(), data, filename)
	if err != nil {
		respondRemoveError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(result)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result)
}
