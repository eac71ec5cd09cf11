package handlers

import (
	"net/http"

	"github.com/kozaktomas/photo-sheet/internal/config"
	"github.com/kozaktomas/photo-sheet/internal/constants"
	"github.com/kozaktomas/photo-sheet/internal/database"
	"github.com/kozaktomas/photo-sheet/internal/layout"
	"github.com/kozaktomas/photo-sheet/internal/render"
)

// ConfigHandler serves client configuration and the size catalogue
type ConfigHandler struct {
	config *config.Config
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(cfg *config.Config) *ConfigHandler {
	return &ConfigHandler{config: cfg}
}

type limitsResponse struct {
	MinWidth     float64 `json:"min_width"`
	MaxWidth     float64 `json:"max_width"`
	MinHeight    float64 `json:"min_height"`
	MaxHeight    float64 `json:"max_height"`
	MinQuantity  int     `json:"min_quantity"`
	MaxQuantity  int     `json:"max_quantity"`
	MinSpacing   float64 `json:"min_spacing"`
	MaxSpacing   float64 `json:"max_spacing"`
	MinTopMargin float64 `json:"min_top_margin"`
	MaxTopMargin float64 `json:"max_top_margin"`
	MaxUpload    int64   `json:"max_upload_bytes"`
	MaxPresets   int     `json:"max_presets"`
}

// ConfigResponse represents the client configuration
type ConfigResponse struct {
	GoogleEnabled           bool            `json:"google_enabled"`
	RemoveBackgroundEnabled bool            `json:"remove_background_enabled"`
	PrintDPI                float64         `json:"print_dpi"`
	PreviewDPI              float64         `json:"preview_dpi"`
	StorageBackend          string          `json:"storage_backend"`
	Formats                 []render.Format `json:"formats"`
	Layouts                 []layout.Anchor `json:"layouts"`
	Defaults                layout.Settings `json:"defaults"`
	Limits                  limitsResponse  `json:"limits"`
}

// Get returns the client configuration
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, ConfigResponse{
		GoogleEnabled:           h.config.Google.Enabled(),
		RemoveBackgroundEnabled: len(h.config.RemoveBG.APIKeys) > 0,
		PrintDPI:                h.config.Render.PrintDPI,
		PreviewDPI:              h.config.Render.PreviewDPI,
		StorageBackend:          database.BackendName(),
		Formats:                 []render.Format{render.FormatPDF, render.FormatPNG, render.FormatJPEG},
		Layouts:                 layout.Anchors(),
		Defaults:                layout.DefaultSettings(),
		Limits: limitsResponse{
			MinWidth:     layout.MinWidthMM,
			MaxWidth:     layout.MaxWidthMM,
			MinHeight:    layout.MinHeightMM,
			MaxHeight:    layout.MaxHeightMM,
			MinQuantity:  layout.MinQuantity,
			MaxQuantity:  layout.MaxQuantity,
			MinSpacing:   layout.MinSpacingMM,
			MaxSpacing:   layout.MaxSpacingMM,
			MinTopMargin: layout.MinTopMarginMM,
			MaxTopMargin: layout.MaxTopMarginMM,
			MaxUpload:    constants.MaxUploadSize,
			MaxPresets:   constants.MaxPresetsPerUser,
		},
	})
}

// Sizes returns the standard photo size catalogue
func (h *ConfigHandler) Sizes(w http.ResponseWriter, r *http.Request) {
	sizes := h.config.Sizes.Sizes
	if sizes == nil {
		sizes = []config.PhotoSize{}
	}
	respondJSON(w, http.StatusOK, sizes)
}
