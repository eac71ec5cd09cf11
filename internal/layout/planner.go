package layout

import "math"

// safetyScale shrinks multi-row grids slightly below the exact fit so rounding
// at the page edge cannot push the last row or column over the margin.
const safetyScale = 0.98

// Quantity buckets.
const (
	maxFitOnlyQuantity   = 3 // single row, scaled only when it does not fit
	maxSingleRowQuantity = 8 // single row, always scaled to span the width
)

// LayoutPlan is the arrangement chosen for one sheet.
type LayoutPlan struct {
	PhotosPerRow    int     `json:"photos_per_row"`
	TotalRows       int     `json:"total_rows"`
	PhotoWidthPx    float64 `json:"photo_width_px"`
	PhotoHeightPx   float64 `json:"photo_height_px"`
	SpacingPx       float64 `json:"spacing_px"`
	PageUtilization float64 `json:"page_utilization"`
	DPI             float64 `json:"dpi"`
}

// PhotoWidthMM is the effective photo width in millimetres.
func (p LayoutPlan) PhotoWidthMM() float64 {
	return PxToMM(p.PhotoWidthPx, p.DPI)
}

// PhotoHeightMM is the effective photo height in millimetres.
func (p LayoutPlan) PhotoHeightMM() float64 {
	return PxToMM(p.PhotoHeightPx, p.DPI)
}

// SpacingMM is the effective gap between photos in millimetres.
func (p LayoutPlan) SpacingMM() float64 {
	return PxToMM(p.SpacingPx, p.DPI)
}

// GridWidthPx is the width of one full row.
func (p LayoutPlan) GridWidthPx() float64 {
	return span(p.PhotosPerRow, p.PhotoWidthPx, p.SpacingPx)
}

// GridHeightPx is the height of all rows.
func (p LayoutPlan) GridHeightPx() float64 {
	return span(p.TotalRows, p.PhotoHeightPx, p.SpacingPx)
}

// Scaled reports whether the plan changed the requested photo size.
func (p LayoutPlan) Scaled(photo PhotoSpec) bool {
	return p.PhotoWidthPx != MMToPx(photo.WidthMM, p.DPI) || p.PhotoHeightPx != MMToPx(photo.HeightMM, p.DPI)
}

// Plan decides rows, columns and the effective photo size for photo on page
// at dpi. Inputs are assumed to be within the documented ranges; use
// PlanChecked when they come from users.
//
// Up to three photos go in one row at their requested size and shrink only if
// the row would not fit. Four to eight photos always go in one row scaled so
// the row spans the available width. Larger quantities fill as many columns as
// fit at full size and wrap into rows; a grid that still overflows is scaled
// down by the tighter axis with a 2% safety margin.
//
// Every scaling step applies to the gaps as well as the photos, so a scaled
// row or grid keeps its proportions and lands inside the available area.
func Plan(photo PhotoSpec, page PageSpec, dpi float64) LayoutPlan {
	availW := MMToPx(page.AvailableWidthMM(), dpi)
	availH := MMToPx(page.AvailableHeightMM(), dpi)

	w := MMToPx(photo.WidthMM, dpi)
	h := MMToPx(photo.HeightMM, dpi)
	s := MMToPx(photo.SpacingMM, dpi)
	q := photo.Quantity

	var perRow, rows int
	switch {
	case q <= maxFitOnlyQuantity:
		perRow, rows = q, 1
		if rowW := span(q, w, s); rowW > availW {
			f := availW / rowW
			w, h, s = w*f, h*f, s*f
		}
	case q <= maxSingleRowQuantity:
		perRow, rows = q, 1
		f := availW / span(q, w, s)
		// Narrow photos can be stretched past the bottom margin; cap at the
		// available height.
		if h*f > availH {
			f = availH / h
		}
		w, h, s = w*f, h*f, s*f
	default:
		perRow = int(math.Floor((availW + s) / (w + s)))
		perRow = max(1, min(perRow, q))
		rows = (q + perRow - 1) / perRow
	}

	if rows > 1 {
		gridW := span(perRow, w, s)
		gridH := span(rows, h, s)
		if gridW > availW || gridH > availH {
			f := math.Min(availW/gridW, availH/gridH) * safetyScale
			w, h, s = w*f, h*f, s*f
		}
	}

	return LayoutPlan{
		PhotosPerRow:    perRow,
		TotalRows:       rows,
		PhotoWidthPx:    w,
		PhotoHeightPx:   h,
		SpacingPx:       s,
		PageUtilization: float64(q) * w * h / (availW * availH),
		DPI:             dpi,
	}
}

// span is the length of n items of size each separated by gap.
func span(n int, size, gap float64) float64 {
	return float64(n)*size + float64(n-1)*gap
}
