package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var sizesCmd = &cobra.Command{
	Use:   "sizes",
	Short: "List the standard photo sizes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSIZE (mm)")
		for _, s := range cfg.Sizes.Sizes {
			fmt.Fprintf(w, "%s\t%s\t%gx%g\n", s.ID, s.Name, s.Width, s.Height)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(sizesCmd)
}
