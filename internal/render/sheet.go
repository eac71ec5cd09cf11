package render

import (
	"context"
	"image"
	"io"

	"github.com/kozaktomas/photo-sheet/internal/layout"
)

// Sheet composes src according to s and encodes the page to w.
func Sheet(ctx context.Context, w io.Writer, src image.Image, s layout.Settings, format Format, opts Options, enc EncodeOptions) (layout.LayoutPlan, error) {
	page := s.PageSpec()
	canvas, plan, err := Compose(ctx, src, s.PhotoSpec(), page, opts)
	if err != nil {
		return plan, err
	}
	enc.Page = page
	return plan, Encode(w, canvas, format, enc)
}
