package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/photo-sheet/internal/config"
	"github.com/kozaktomas/photo-sheet/internal/layout"
)

// addSettingsFlags registers the layout settings flags shared by plan and
// render.
func addSettingsFlags(cmd *cobra.Command) {
	d := layout.DefaultSettings()
	cmd.Flags().String("size", "", "Standard size id from the catalogue (see 'sizes'); overrides --width/--height")
	cmd.Flags().Float64("width", d.WidthMM, "Photo width in mm")
	cmd.Flags().Float64("height", d.HeightMM, "Photo height in mm")
	cmd.Flags().IntP("quantity", "n", d.Quantity, "Number of copies")
	cmd.Flags().Float64("spacing", d.SpacingMM, "Gap between photos in mm")
	cmd.Flags().Float64("top-margin", d.TopMarginMM, "Top margin in mm")
	cmd.Flags().String("layout", string(d.Layout), "Grid anchor: auto or <top|middle|down>-<left|middle|right>")
}

// settingsFromFlags builds validated layout settings from the flags.
func settingsFromFlags(cmd *cobra.Command, cfg *config.Config) (layout.Settings, error) {
	anchor, err := layout.ParseAnchor(mustGetString(cmd, "layout"))
	if err != nil {
		return layout.Settings{}, err
	}

	s := layout.Settings{
		WidthMM:     mustGetFloat64(cmd, "width"),
		HeightMM:    mustGetFloat64(cmd, "height"),
		Quantity:    mustGetInt(cmd, "quantity"),
		SpacingMM:   mustGetFloat64(cmd, "spacing"),
		TopMarginMM: mustGetFloat64(cmd, "top-margin"),
		Layout:      anchor,
	}

	if id := mustGetString(cmd, "size"); id != "" {
		size, ok := cfg.FindSize(id)
		if !ok {
			return s, fmt.Errorf("unknown size %q, run 'photo-sheet sizes' for the list", id)
		}
		s.WidthMM = size.Width
		s.HeightMM = size.Height
	}

	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}
