package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlacements_RowMajorWithPartialLastRow(t *testing.T) {
	photo := PhotoSpec{WidthMM: 25, HeightMM: 35, Quantity: 20, SpacingMM: 5, Anchor: AnchorAuto}
	page := A4(10)
	plan := Plan(photo, page, PrintDPI)

	got := Placements(plan, photo, page)
	require.Len(t, got, 20)

	for i, p := range got {
		assert.Equal(t, i, p.Index)
		assert.Equal(t, i/6, p.Row)
		assert.Equal(t, i%6, p.Column)
	}

	last := got[len(got)-1]
	assert.Equal(t, 3, last.Row)
	assert.Equal(t, 1, last.Column)

	// Same row shares Y; next column steps by width + spacing.
	assert.Equal(t, got[0].Y, got[5].Y)
	assert.InDelta(t, px(30), got[1].X-got[0].X, pxEps)
	assert.InDelta(t, px(40), got[6].Y-got[0].Y, pxEps)
}

func TestGridFor_AutoCentresInAvailableArea(t *testing.T) {
	photo := PhotoSpec{WidthMM: 25, HeightMM: 35, Quantity: 20, SpacingMM: 5, Anchor: AnchorAuto}
	page := A4(30)
	plan := Plan(photo, page, PrintDPI)

	grid := GridFor(plan, photo.Anchor, page)

	// 175x155mm grid inside 190x257mm starting at (10, 30).
	assert.InDelta(t, px(10+7.5), grid.X, pxEps)
	assert.InDelta(t, px(30+51), grid.Y, pxEps)
	assert.InDelta(t, px(175), grid.Width, pxEps)
	assert.InDelta(t, px(155), grid.Height, pxEps)
}

func TestGridFor_Anchors(t *testing.T) {
	page := A4(20)
	photo := PhotoSpec{WidthMM: 30, HeightMM: 40, Quantity: 9, SpacingMM: 4}
	plan := Plan(photo, page, PrintDPI)
	gridW := plan.GridWidthPx()
	gridH := plan.GridHeightPx()

	tests := []struct {
		anchor Anchor
		wantX  float64
		wantY  float64
	}{
		{"top-left", px(10), px(20)},
		{"top-right", px(200) - gridW, px(20)},
		{"top-middle", px(10) + (px(190)-gridW)/2, px(20)},
		{"middle-left", px(10), px(20) + (px(267)-gridH)/2},
		{"middle-middle", px(10) + (px(190)-gridW)/2, px(20) + (px(267)-gridH)/2},
		{"down-left", px(10), px(287) - gridH},
		{"down-right", px(200) - gridW, px(287) - gridH},
		{AnchorAuto, px(10) + (px(190)-gridW)/2, px(20) + (px(267)-gridH)/2},
	}

	for _, tt := range tests {
		t.Run(string(tt.anchor), func(t *testing.T) {
			grid := GridFor(plan, tt.anchor, page)
			assert.InDelta(t, tt.wantX, grid.X, pxEps)
			assert.InDelta(t, tt.wantY, grid.Y, pxEps)
		})
	}
}

func TestPlacements_StayInsideMargins(t *testing.T) {
	page := A4(10)
	for _, anchor := range Anchors() {
		photo := PhotoSpec{WidthMM: 35, HeightMM: 45, Quantity: 14, SpacingMM: 3, Anchor: anchor}
		plan := Plan(photo, page, PrintDPI)

		for _, p := range Placements(plan, photo, page) {
			assert.GreaterOrEqual(t, p.X, px(10)-pxEps, anchor)
			assert.GreaterOrEqual(t, p.Y, px(10)-pxEps, anchor)
			assert.LessOrEqual(t, p.X+plan.PhotoWidthPx, px(200)+pxEps, anchor)
			assert.LessOrEqual(t, p.Y+plan.PhotoHeightPx, px(287)+pxEps, anchor)
		}
	}
}

func TestParseAnchor(t *testing.T) {
	tests := []struct {
		in      string
		want    Anchor
		wantErr bool
	}{
		{"", AnchorAuto, false},
		{"auto", AnchorAuto, false},
		{" AUTO ", AnchorAuto, false},
		{"top-left", "top-left", false},
		{"Down-Right", "down-right", false},
		{"middle-middle", "middle-middle", false},
		{"bottom-left", "", true},
		{"top", "", true},
		{"left-top", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAnchor(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAnchors_AllParse(t *testing.T) {
	anchors := Anchors()
	assert.Len(t, anchors, 10)
	for _, a := range anchors {
		got, err := ParseAnchor(string(a))
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}
}

func TestSettings_AnchorCaseAndSpacesDoNotMoveTheGrid(t *testing.T) {
	base := DefaultSettings()
	base.Quantity = 9

	canonical := base
	canonical.Layout = "down-right"
	want := GridFor(Plan(canonical.PhotoSpec(), canonical.PageSpec(), PrintDPI), canonical.PhotoSpec().Anchor, canonical.PageSpec())

	for _, raw := range []Anchor{"Down-Right", " DOWN-RIGHT ", "down-Right"} {
		t.Run(string(raw), func(t *testing.T) {
			s := base
			s.Layout = raw
			require.NoError(t, s.Validate())

			photo := s.PhotoSpec()
			assert.Equal(t, Anchor("down-right"), photo.Anchor)

			got := GridFor(Plan(photo, s.PageSpec(), PrintDPI), raw, s.PageSpec())
			assert.InDelta(t, want.X, got.X, pxEps)
			assert.InDelta(t, want.Y, got.Y, pxEps)
		})
	}
}

func TestSettings_Normalize(t *testing.T) {
	tests := []struct {
		in   Anchor
		want Anchor
	}{
		{"", AnchorAuto},
		{" Auto", AnchorAuto},
		{"TOP-LEFT", "top-left"},
		{"sideways", "sideways"},
	}

	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			s := DefaultSettings()
			s.Layout = tt.in
			assert.Equal(t, tt.want, s.Normalize().Layout)
		})
	}
}
