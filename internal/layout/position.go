package layout

// Placement is the top-left corner of one photo copy in pixels, measured from
// the top-left corner of the page.
type Placement struct {
	Index  int     `json:"index"`
	Row    int     `json:"row"`
	Column int     `json:"column"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// Grid is the bounding box of all placed photos in pixels.
type Grid struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// GridFor returns the grid box for plan, positioned on page according to
// anchor.
func GridFor(plan LayoutPlan, anchor Anchor, page PageSpec) Grid {
	dpi := plan.DPI
	gridW := plan.GridWidthPx()
	gridH := plan.GridHeightPx()

	pageW := MMToPx(page.WidthMM, dpi)
	pageH := MMToPx(page.HeightMM, dpi)
	side := MMToPx(page.SideMarginMM, dpi)
	top := MMToPx(page.TopMarginMM, dpi)
	bottom := MMToPx(page.BottomMarginMM, dpi)
	availW := MMToPx(page.AvailableWidthMM(), dpi)
	availH := MMToPx(page.AvailableHeightMM(), dpi)

	vertical, horizontal := anchor.aligns()

	var x float64
	switch horizontal {
	case alignStart:
		x = side
	case alignEnd:
		x = pageW - side - gridW
	default:
		x = side + (availW-gridW)/2
	}

	var y float64
	switch vertical {
	case alignStart:
		y = top
	case alignEnd:
		y = pageH - bottom - gridH
	default:
		y = top + (availH-gridH)/2
	}

	return Grid{X: x, Y: y, Width: gridW, Height: gridH}
}

// Placements lists where each of the photo.Quantity copies goes, row by row
// from left to right. The last row may be partially filled.
func Placements(plan LayoutPlan, photo PhotoSpec, page PageSpec) []Placement {
	grid := GridFor(plan, photo.Anchor, page)
	stepX := plan.PhotoWidthPx + plan.SpacingPx
	stepY := plan.PhotoHeightPx + plan.SpacingPx

	out := make([]Placement, 0, photo.Quantity)
	for row := 0; row < plan.TotalRows; row++ {
		for col := 0; col < plan.PhotosPerRow; col++ {
			if len(out) == photo.Quantity {
				return out
			}
			out = append(out, Placement{
				Index:  len(out),
				Row:    row,
				Column: col,
				X:      grid.X + float64(col)*stepX,
				Y:      grid.Y + float64(row)*stepY,
			})
		}
	}
	return out
}
