// Package layout computes how many copies of a photo fit on a printed page and
// where each copy goes.
//
// All inputs are millimetres. Plans are expressed in pixels at a caller-chosen
// DPI so the renderer can draw them directly: 300 DPI for print output, 150 DPI
// for on-screen previews.
package layout

import (
	"fmt"
	"strings"
)

// Page geometry in mm (A4 portrait).
const (
	A4WidthMM  = 210.0
	A4HeightMM = 297.0

	SideMarginMM       = 10.0
	BottomMarginMM     = 10.0
	DefaultTopMarginMM = 10.0
)

// Input bounds in mm unless noted.
const (
	MinWidthMM     = 10.0
	MaxWidthMM     = 100.0
	MinHeightMM    = 10.0
	MaxHeightMM    = 150.0
	MinQuantity    = 1
	MaxQuantity    = 20
	MinSpacingMM   = 0.0
	MaxSpacingMM   = 20.0
	MinTopMarginMM = 5.0
	MaxTopMarginMM = 50.0
)

// Output resolutions.
const (
	PrintDPI   = 300.0
	PreviewDPI = 150.0
	MaxDPI     = 1200.0
)

const mmPerInch = 25.4

// PageSpec describes the sheet the photos are printed on.
type PageSpec struct {
	WidthMM        float64
	HeightMM       float64
	SideMarginMM   float64
	TopMarginMM    float64
	BottomMarginMM float64
}

// A4 returns an A4 page with the fixed side and bottom margins and the given
// top margin.
func A4(topMarginMM float64) PageSpec {
	return PageSpec{
		WidthMM:        A4WidthMM,
		HeightMM:       A4HeightMM,
		SideMarginMM:   SideMarginMM,
		TopMarginMM:    topMarginMM,
		BottomMarginMM: BottomMarginMM,
	}
}

// AvailableWidthMM is the page width inside both side margins.
func (p PageSpec) AvailableWidthMM() float64 {
	return p.WidthMM - 2*p.SideMarginMM
}

// AvailableHeightMM is the page height between the top and bottom margins.
func (p PageSpec) AvailableHeightMM() float64 {
	return p.HeightMM - p.TopMarginMM - p.BottomMarginMM
}

// PhotoSpec is the requested photo size, count, spacing and placement.
type PhotoSpec struct {
	WidthMM   float64
	HeightMM  float64
	Quantity  int
	SpacingMM float64
	Anchor    Anchor
}

// Anchor names where the photo grid sits inside the available area.
// It is either "auto" or "<vertical>-<horizontal>" with vertical one of
// top, middle, down and horizontal one of left, middle, right.
type Anchor string

// AnchorAuto centres the grid in the available area.
const AnchorAuto Anchor = "auto"

const (
	alignStart  = "start"
	alignMiddle = "middle"
	alignEnd    = "end"
)

var verticalAligns = map[string]string{
	"top":    alignStart,
	"middle": alignMiddle,
	"down":   alignEnd,
}

var horizontalAligns = map[string]string{
	"left":   alignStart,
	"middle": alignMiddle,
	"right":  alignEnd,
}

// Anchors lists every accepted anchor value.
func Anchors() []Anchor {
	out := []Anchor{AnchorAuto}
	for _, v := range []string{"top", "middle", "down"} {
		for _, h := range []string{"left", "middle", "right"} {
			out = append(out, Anchor(v+"-"+h))
		}
	}
	return out
}

// ParseAnchor normalises s into an Anchor. An empty string means auto.
func ParseAnchor(s string) (Anchor, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == string(AnchorAuto) {
		return AnchorAuto, nil
	}
	if _, _, ok := splitAnchor(s); !ok {
		return "", fmt.Errorf("unknown layout anchor %q", s)
	}
	return Anchor(s), nil
}

// aligns returns the vertical and horizontal alignment. Auto and unknown
// anchors centre on both axes.
func (a Anchor) aligns() (vertical, horizontal string) {
	v, h, ok := splitAnchor(string(a))
	if !ok {
		return alignMiddle, alignMiddle
	}
	return v, h
}

func splitAnchor(s string) (vertical, horizontal string, ok bool) {
	vs, hs, found := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "-")
	if !found {
		return "", "", false
	}
	v, vok := verticalAligns[vs]
	h, hok := horizontalAligns[hs]
	return v, h, vok && hok
}

// Settings is the flat, user-facing form of a layout request. It is what the
// API accepts and what presets store.
type Settings struct {
	WidthMM     float64 `json:"width"`
	HeightMM    float64 `json:"height"`
	Quantity    int     `json:"quantity"`
	SpacingMM   float64 `json:"spacing"`
	TopMarginMM float64 `json:"top_margin"`
	Layout      Anchor  `json:"layout"`
}

// DefaultSettings returns a standard 35x45mm passport sheet.
func DefaultSettings() Settings {
	return Settings{
		WidthMM:     35,
		HeightMM:    45,
		Quantity:    6,
		SpacingMM:   5,
		TopMarginMM: DefaultTopMarginMM,
		Layout:      AnchorAuto,
	}
}

// Normalize returns s with its anchor in canonical form ("TOP-Left " becomes
// "top-left", empty becomes auto). Unknown anchors are left for Validate to
// report.
func (s Settings) Normalize() Settings {
	if a, err := ParseAnchor(string(s.Layout)); err == nil {
		s.Layout = a
	}
	return s
}

// PhotoSpec extracts the photo part of the settings.
func (s Settings) PhotoSpec() PhotoSpec {
	anchor := s.Normalize().Layout
	return PhotoSpec{
		WidthMM:   s.WidthMM,
		HeightMM:  s.HeightMM,
		Quantity:  s.Quantity,
		SpacingMM: s.SpacingMM,
		Anchor:    anchor,
	}
}

// PageSpec returns the A4 page for the settings' top margin.
func (s Settings) PageSpec() PageSpec {
	return A4(s.TopMarginMM)
}

// MMToPx converts millimetres to pixels at dpi.
func MMToPx(mm, dpi float64) float64 {
	return mm * PxPerMM(dpi)
}

// PxPerMM is the pixel density for dpi.
func PxPerMM(dpi float64) float64 {
	return dpi / mmPerInch
}

// PxToMM converts pixels at dpi back to millimetres.
func PxToMM(px, dpi float64) float64 {
	return px / PxPerMM(dpi)
}
