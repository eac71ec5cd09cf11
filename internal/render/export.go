package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/kozaktomas/photo-sheet/internal/constants"
	"github.com/kozaktomas/photo-sheet/internal/layout"
)

// Format is an export file format.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpg"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

// ParseFormat parses a user supplied format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pdf":
		return FormatPDF, nil
	case "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnsupportedFormat)
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatJPEG:
		return "image/jpeg"
	default:
		return "image/png"
	}
}

// Extension returns the file extension of f including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// EncodeOptions controls encoding. Page is only used for PDF output.
type EncodeOptions struct {
	JPEGQuality int
	Page        layout.PageSpec
	Title       string
}

// Encode writes img to w in format.
func Encode(w io.Writer, img image.Image, format Format, opts EncodeOptions) error {
	if opts.JPEGQuality <= 0 || opts.JPEGQuality > 100 {
		opts.JPEGQuality = constants.DefaultJPEGQuality
	}

	switch format {
	case FormatPNG:
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("failed to encode png: %w", err)
		}
		return nil
	case FormatJPEG:
		if err := jpeg.Encode(w, img, &jpeg.Options{Quality: opts.JPEGQuality}); err != nil {
			return fmt.Errorf("failed to encode jpeg: %w", err)
		}
		return nil
	case FormatPDF:
		return encodePDF(w, img, opts)
	}
	return fmt.Errorf("%q: %w", format, ErrUnsupportedFormat)
}

// encodePDF places the rendered page full-bleed on a single PDF page of the
// same physical size.
func encodePDF(w io.Writer, img image.Image, opts EncodeOptions) error {
	page := opts.Page
	if page.WidthMM <= 0 || page.HeightMM <= 0 {
		page = layout.A4(layout.DefaultTopMarginMM)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: opts.JPEGQuality}); err != nil {
		return fmt.Errorf("failed to encode page image: %w", err)
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: page.WidthMM, Ht: page.HeightMM},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("photo-sheet", true)
	if opts.Title != "" {
		pdf.SetTitle(opts.Title, true)
	}
	pdf.AddPage()

	imgOpts := gofpdf.ImageOptions{ImageType: "JPG"}
	pdf.RegisterImageOptionsReader("sheet", imgOpts, &buf)
	pdf.ImageOptions("sheet", 0, 0, page.WidthMM, page.HeightMM, false, imgOpts, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}
