package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kozaktomas/photo-sheet/internal/bgremove"
	"github.com/kozaktomas/photo-sheet/internal/config"
	"github.com/kozaktomas/photo-sheet/internal/constants"
	"github.com/kozaktomas/photo-sheet/internal/layout"
	"github.com/kozaktomas/photo-sheet/internal/render"
)

var renderCmd = &cobra.Command{
	Use:   "render <photo> [photo...]",
	Short: "Render print-ready sheets for one or more photos",
	Long: `Render one A4 sheet per input photo and write it to the output
directory as <name>-sheet.<format>.

Example:
  photo-sheet render --size passport-eu -n 6 me.jpg
  photo-sheet render -f png --out-dir sheets --remove-background *.jpg`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)
	addRenderFlags(renderCmd)
}

func addRenderFlags(cmd *cobra.Command) {
	addSettingsFlags(cmd)
	cmd.Flags().StringP("format", "f", string(render.FormatPDF), "Output format: pdf, png or jpg")
	cmd.Flags().StringP("out-dir", "o", ".", "Directory for the rendered sheets")
	cmd.Flags().Float64("dpi", 0, "Print resolution (overrides RENDER_PRINT_DPI)")
	cmd.Flags().Bool("cut-guides", false, "Draw thin grey outlines around each photo")
	cmd.Flags().Bool("remove-background", false, "Remove the photo background first (needs REMOVE_BG_API_KEYS)")
	cmd.Flags().IntP("concurrency", "j", constants.DefaultConcurrency, "Number of photos rendered in parallel")
}

// renderJob carries everything needed to turn one input into one sheet.
type renderJob struct {
	settings layout.Settings
	format   render.Format
	opts     render.Options
	enc      render.EncodeOptions
	outDir   string
	remover  *bgremove.Client
}

// outputPath returns the sheet path for input, e.g. photos/me.jpg becomes
// <outDir>/me-sheet.pdf.
func (j *renderJob) outputPath(input string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return filepath.Join(j.outDir, base+"-sheet"+j.format.Extension())
}

func (j *renderJob) run(ctx context.Context, input string) (string, error) {
	data, err := os.ReadFile(input)
	if err != nil {
		return "", err
	}
	if j.remover != nil {
		data, err = j.remover.Remove(ctx, data, filepath.Base(input))
		if err != nil {
			return "", fmt.Errorf("removing background: %w", err)
		}
	}

	img, _, err := render.Decode(bytes.NewReader(data))
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := render.Sheet(ctx, &buf, img, j.settings, j.format, j.opts, j.enc); err != nil {
		return "", err
	}

	out := j.outputPath(input)
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return "", err
	}
	return out, nil
}

func newRenderJob(cmd *cobra.Command, cfg *config.Config, logger *log.Logger) (*renderJob, error) {
	settings, err := settingsFromFlags(cmd, cfg)
	if err != nil {
		return nil, err
	}
	format, err := render.ParseFormat(mustGetString(cmd, "format"))
	if err != nil {
		return nil, err
	}

	dpi := mustGetFloat64(cmd, "dpi")
	if dpi <= 0 {
		dpi = cfg.Render.PrintDPI
	}
	if _, err := layout.PlanChecked(settings, dpi); err != nil {
		return nil, err
	}

	opts := render.PrintOptions(dpi)
	opts.CutGuides = cfg.Render.CutGuides || mustGetBool(cmd, "cut-guides")

	job := &renderJob{
		settings: settings,
		format:   format,
		opts:     opts,
		enc: render.EncodeOptions{
			JPEGQuality: cfg.Render.JPEGQuality,
			Title:       "Photo sheet",
		},
		outDir: mustGetString(cmd, "out-dir"),
	}

	if mustGetBool(cmd, "remove-background") {
		if len(cfg.RemoveBG.APIKeys) == 0 {
			return nil, errors.New("--remove-background needs REMOVE_BG_API_KEYS")
		}
		timeout := time.Duration(cfg.RemoveBG.TimeoutSeconds) * time.Second
		job.remover = bgremove.New(cfg.RemoveBG.URL, cfg.RemoveBG.APIKeys, timeout, logger.WithPrefix("remove-bg"))
	}
	return job, nil
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	job, err := newRenderJob(cmd, cfg, logger)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(job.outDir, 0o755); err != nil {
		return fmt.Errorf("cannot create output directory: %w", err)
	}

	bar := progressbar.NewOptions(len(args),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetDescription("Rendering"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("sheets"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)

	var (
		failures []string
		mu       sync.Mutex
	)
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(max(1, mustGetInt(cmd, "concurrency")))
	for _, input := range args {
		g.Go(func() error {
			out, err := job.run(ctx, input)
			_ = bar.Add(1)
			if err != nil {
				if errors.Is(err, bgremove.ErrKeysExhausted) {
					// Every later photo would fail the same way.
					return err
				}
				mu.Lock()
				failures = append(failures, fmt.Sprintf("%s: %v", input, err))
				mu.Unlock()
				return nil
			}
			logger.Debug("rendered sheet", "input", input, "output", out)
			return nil
		})
	}
	err = g.Wait()
	fmt.Fprintln(cmd.ErrOrStderr())

	for _, f := range failures {
		logger.Error("failed", "photo", f)
	}
	if err != nil {
		return err
	}
	if len(failures) > 0 {
		return fmt.Errorf("%d of %d photos failed", len(failures), len(args))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Rendered %d sheet(s) to %s\n", len(args), job.outDir)
	return nil
}
