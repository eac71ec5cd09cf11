package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/kozaktomas/photo-sheet/internal/bgremove"
	"github.com/kozaktomas/photo-sheet/internal/config"
	"github.com/kozaktomas/photo-sheet/internal/layout"
	"github.com/kozaktomas/photo-sheet/internal/logging"
	"github.com/kozaktomas/photo-sheet/internal/render"
)

// BackgroundRemover is the part of bgremove.Client the handlers need.
type BackgroundRemover interface {
	Enabled() bool
	Remove(ctx context.Context, image []byte, filename string) ([]byte, error)
}

// LayoutHandler plans and renders photo sheets
type LayoutHandler struct {
	config  *config.Config
	remover BackgroundRemover
}

// NewLayoutHandler creates a new layout handler. remover may be nil.
func NewLayoutHandler(cfg *config.Config, remover BackgroundRemover) *LayoutHandler {
	return &LayoutHandler{config: cfg, remover: remover}
}

func (h *LayoutHandler) printDPI() float64 {
	if h.config.Render.PrintDPI > 0 {
		return h.config.Render.PrintDPI
	}
	return layout.PrintDPI
}

func (h *LayoutHandler) previewDPI() float64 {
	if h.config.Render.PreviewDPI > 0 {
		return h.config.Render.PreviewDPI
	}
	return layout.PreviewDPI
}

// planRequest is a settings object with an optional DPI. Missing settings
// fields keep their defaults.
type planRequest struct {
	layout.Settings
	DPI float64 `json:"dpi"`
}

// PlanResponse describes a planned sheet in pixels and millimetres
type PlanResponse struct {
	Settings      layout.Settings    `json:"settings"`
	Plan          layout.LayoutPlan  `json:"plan"`
	PhotoWidthMM  float64            `json:"photo_width_mm"`
	PhotoHeightMM float64            `json:"photo_height_mm"`
	SpacingMM     float64            `json:"spacing_mm"`
	Scaled        bool               `json:"scaled"`
	PageWidthPx   float64            `json:"page_width_px"`
	PageHeightPx  float64            `json:"page_height_px"`
	Grid          layout.Grid        `json:"grid"`
	Placements    []layout.Placement `json:"placements"`
}

// Plan computes the layout for a settings object without rendering
func (h *LayoutHandler) Plan(w http.ResponseWriter, r *http.Request) {
	req := planRequest{Settings: layout.DefaultSettings()}
	if !decodeJSON(w, r, &req) {
		return
	}

	req.Settings = req.Settings.Normalize()

	dpi := req.DPI
	if dpi == 0 {
		dpi = h.printDPI()
	}

	plan, err := layout.PlanChecked(req.Settings, dpi)
	if err != nil {
		respondValidationError(w, err)
		return
	}

	photo := req.PhotoSpec()
	page := req.PageSpec()
	respondJSON(w, http.StatusOK, PlanResponse{
		Settings:      req.Settings,
		Plan:          plan,
		PhotoWidthMM:  plan.PhotoWidthMM(),
		PhotoHeightMM: plan.PhotoHeightMM(),
		SpacingMM:     plan.SpacingMM(),
		Scaled:        plan.Scaled(photo),
		PageWidthPx:   layout.MMToPx(page.WidthMM, dpi),
		PageHeightPx:  layout.MMToPx(page.HeightMM, dpi),
		Grid:          layout.GridFor(plan, photo.Anchor, page),
		Placements:    layout.Placements(plan, photo, page),
	})
}

// Preview renders a low-resolution PNG of the sheet
func (h *LayoutHandler) Preview(w http.ResponseWriter, r *http.Request) {
	opts := render.PreviewOptions(h.previewDPI())
	h.renderSheet(w, r, render.FormatPNG, opts, false)
}

// Export renders the print-resolution sheet as a file download
func (h *LayoutHandler) Export(w http.ResponseWriter, r *http.Request) {
	if !parseMultipart(w, r) {
		return
	}

	format := render.FormatPDF
	if v := r.FormValue("format"); v != "" {
		f, err := render.ParseFormat(v)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, map[string]string{
				"error": err.Error(),
				"field": "format",
			})
			return
		}
		format = f
	}

	opts := render.PrintOptions(h.printDPI())
	h.renderSheet(w, r, format, opts, true)
}

func (h *LayoutHandler) renderSheet(w http.ResponseWriter, r *http.Request, format render.Format, opts render.Options, download bool) {
	if r.MultipartForm == nil && !parseMultipart(w, r) {
		return
	}

	settings, err := settingsFromForm(r.MultipartForm)
	if err != nil {
		respondValidationError(w, err)
		return
	}
	if _, err := layout.PlanChecked(settings, opts.DPI); err != nil {
		respondValidationError(w, err)
		return
	}

	data, filename, err := readUpload(r, "file")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if formBool(r, "remove_background") {
		if h.remover == nil || !h.remover.Enabled() {
			respondError(w, http.StatusServiceUnavailable, "background removal is not configured")
			return
		}
		data, err = h.remover.Remove(r.Context(), data, filename)
		if err != nil {
			respondRemoveError(w, r, err)
			return
		}
	}

	img, _, err := render.Decode(bytes.NewReader(data))
	if err != nil {
		respondDecodeError(w, r, err)
		return
	}

	opts.CutGuides = h.config.Render.CutGuides || formBool(r, "cut_guides")

	var buf bytes.Buffer
	plan, err := render.Sheet(r.Context(), &buf, img, settings, format, opts, render.EncodeOptions{
		JPEGQuality: h.config.Render.JPEGQuality,
		Title:       "Photo sheet",
	})
	if err != nil {
		if errors.Is(err, layout.ErrInconsistentSettings) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if r.Context().Err() != nil {
			return
		}
		respondInternalError(w, r, "failed to render sheet", err)
		return
	}

	logging.FromContext(r.Context()).Debug("rendered sheet",
		"format", format,
		"dpi", opts.DPI,
		"per_row", plan.PhotosPerRow,
		"rows", plan.TotalRows,
		"bytes", buf.Len(),
	)

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if download {
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exportFilename(settings, format)))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// exportFilename names a download after its photo size and quantity, e.g.
// photo-sheet-35x45-6.pdf.
func exportFilename(s layout.Settings, format render.Format) string {
	return fmt.Sprintf("photo-sheet-%gx%g-%d%s", s.WidthMM, s.HeightMM, s.Quantity, format.Extension())
}

func respondDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, render.ErrImageTooLarge):
		respondError(w, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, render.ErrUnknownImage):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		logging.FromContext(r.Context()).Warn("failed to decode upload", "err", err)
		respondError(w, http.StatusBadRequest, "failed to decode image")
	}
}

func respondRemoveError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, bgremove.ErrNoKeys), errors.Is(err, bgremove.ErrKeysExhausted):
		respondError(w, http.StatusServiceUnavailable, "background removal is currently unavailable")
	case r.Context().Err() != nil:
		// client went away
	default:
		logging.FromContext(r.Context()).Warn("background removal failed", "err", err)
		respondError(w, http.StatusBadGateway, "background removal failed")
	}
}
