// Package render draws a laid-out photo sheet and encodes it for download.
package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"

	"github.com/kozaktomas/photo-sheet/internal/constants"
	"github.com/kozaktomas/photo-sheet/internal/layout"
)

var guideColor = color.RGBA{R: 0xB0, G: 0xB0, B: 0xB0, A: 0xFF}

// Options controls how a sheet is composed.
type Options struct {
	DPI       float64
	Scaler    draw.Interpolator
	CutGuides bool
}

// PrintOptions returns options for final output at dpi.
func PrintOptions(dpi float64) Options {
	if dpi <= 0 {
		dpi = layout.PrintDPI
	}
	return Options{DPI: dpi, Scaler: draw.CatmullRom}
}

// PreviewOptions returns cheaper options for on-screen previews at dpi.
func PreviewOptions(dpi float64) Options {
	if dpi <= 0 {
		dpi = layout.PreviewDPI
	}
	return Options{DPI: dpi, Scaler: draw.ApproxBiLinear}
}

// Compose plans the sheet and draws src into every placement on a white page.
func Compose(ctx context.Context, src image.Image, photo layout.PhotoSpec, page layout.PageSpec, opts Options) (*image.RGBA, layout.LayoutPlan, error) {
	if opts.DPI <= 0 {
		opts.DPI = layout.PrintDPI
	}
	if opts.Scaler == nil {
		opts.Scaler = draw.CatmullRom
	}

	plan := layout.Plan(photo, page, opts.DPI)
	if plan.PhotoWidthPx < 1 || plan.PhotoHeightPx < 1 {
		return nil, plan, fmt.Errorf("photo is %.2fx%.2f px at %g dpi: %w",
			plan.PhotoWidthPx, plan.PhotoHeightPx, opts.DPI, layout.ErrInconsistentSettings)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, pxRound(page.WidthMM, opts.DPI), pxRound(page.HeightMM, opts.DPI)))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	srcRect := src.Bounds()
	for _, p := range layout.Placements(plan, photo, page) {
		if err := ctx.Err(); err != nil {
			return nil, plan, err
		}

		cell := image.Rect(
			int(math.Round(p.X)),
			int(math.Round(p.Y)),
			int(math.Round(p.X+plan.PhotoWidthPx)),
			int(math.Round(p.Y+plan.PhotoHeightPx)),
		)
		opts.Scaler.Scale(canvas, cell, src, CoverCrop(srcRect, cell.Dx(), cell.Dy()), draw.Over, nil)

		if opts.CutGuides {
			strokeRect(canvas, cell, constants.CutGuideWidthPx)
		}
	}

	return canvas, plan, nil
}

// CoverCrop returns the centred part of src that has the aspect ratio of a
// w x h cell, so scaling it fills the cell without distortion.
func CoverCrop(src image.Rectangle, w, h int) image.Rectangle {
	sw, sh := src.Dx(), src.Dy()
	if w <= 0 || h <= 0 || sw <= 0 || sh <= 0 {
		return src
	}

	// Compare sw/sh with w/h without dividing.
	if sw*h > sh*w {
		cropW := int(math.Round(float64(sh) * float64(w) / float64(h)))
		x0 := src.Min.X + (sw-cropW)/2
		return image.Rect(x0, src.Min.Y, x0+cropW, src.Max.Y)
	}
	cropH := int(math.Round(float64(sw) * float64(h) / float64(w)))
	y0 := src.Min.Y + (sh-cropH)/2
	return image.Rect(src.Min.X, y0, src.Max.X, y0+cropH)
}

func strokeRect(dst *image.RGBA, r image.Rectangle, width int) {
	c := image.NewUniform(guideColor)
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+width),
		image.Rect(r.Min.X, r.Max.Y-width, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+width, r.Max.Y),
		image.Rect(r.Max.X-width, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(dst, e.Intersect(dst.Bounds()), c, image.Point{}, draw.Src)
	}
}

func pxRound(mm, dpi float64) int {
	return int(math.Round(layout.MMToPx(mm, dpi)))
}
