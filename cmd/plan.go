package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/photo-sheet/internal/layout"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show how photos would be arranged on the sheet",
	Long: `Compute the sheet layout without rendering anything.

Example:
  photo-sheet plan --size passport-eu -n 8
  photo-sheet plan --width 50 --height 50 -n 4 --layout top-left --json`,
	Args: cobra.NoArgs,
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
	addPlanFlags(planCmd)
}

func addPlanFlags(cmd *cobra.Command) {
	addSettingsFlags(cmd)
	cmd.Flags().Float64("dpi", layout.PrintDPI, "Resolution to plan at")
	cmd.Flags().Bool("json", false, "Print the plan and placements as JSON")
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := settingsFromFlags(cmd, cfg)
	if err != nil {
		return err
	}
	dpi := mustGetFloat64(cmd, "dpi")

	plan, err := layout.PlanChecked(s, dpi)
	if err != nil {
		return err
	}
	photo := s.PhotoSpec()
	page := s.PageSpec()
	placements := layout.Placements(plan, photo, page)

	out := cmd.OutOrStdout()
	if mustGetBool(cmd, "json") {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"settings":   s,
			"plan":       plan,
			"grid":       layout.GridFor(plan, photo.Anchor, page),
			"placements": placements,
		})
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Grid:\t%d per row x %d rows\n", plan.PhotosPerRow, plan.TotalRows)
	fmt.Fprintf(w, "Photo:\t%.2f x %.2f mm (%.0f x %.0f px)\n",
		plan.PhotoWidthMM(), plan.PhotoHeightMM(), plan.PhotoWidthPx, plan.PhotoHeightPx)
	fmt.Fprintf(w, "Spacing:\t%.2f mm\n", plan.SpacingMM())
	fmt.Fprintf(w, "Scaled:\t%t\n", plan.Scaled(photo))
	fmt.Fprintf(w, "Page use:\t%.1f%%\n", plan.PageUtilization*100)
	fmt.Fprintf(w, "DPI:\t%g\n", plan.DPI)
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "#\trow\tcol\tx (mm)\ty (mm)\t")
	for _, p := range placements {
		fmt.Fprintf(w, "%d\t%d\t%d\t%.2f\t%.2f\t\n",
			p.Index+1, p.Row+1, p.Column+1, layout.PxToMM(p.X, dpi), layout.PxToMM(p.Y, dpi))
	}
	return w.Flush()
}
