package layout

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Settings)
		wantField string
	}{
		{"defaults", func(s *Settings) {}, ""},
		{"width too small", func(s *Settings) { s.WidthMM = 9.9 }, "width"},
		{"width too large", func(s *Settings) { s.WidthMM = 101 }, "width"},
		{"height NaN", func(s *Settings) { s.HeightMM = math.NaN() }, "height"},
		{"height too large", func(s *Settings) { s.HeightMM = 151 }, "height"},
		{"quantity zero", func(s *Settings) { s.Quantity = 0 }, "quantity"},
		{"quantity too large", func(s *Settings) { s.Quantity = 21 }, "quantity"},
		{"negative spacing", func(s *Settings) { s.SpacingMM = -1 }, "spacing"},
		{"top margin too small", func(s *Settings) { s.TopMarginMM = 4 }, "top_margin"},
		{"top margin too large", func(s *Settings) { s.TopMarginMM = 51 }, "top_margin"},
		{"unknown anchor", func(s *Settings) { s.Layout = "centre" }, "layout"},
		{"empty anchor", func(s *Settings) { s.Layout = "" }, ""},
		{"bounds inclusive", func(s *Settings) {
			s.WidthMM, s.HeightMM, s.Quantity, s.SpacingMM, s.TopMarginMM = 100, 150, 20, 20, 50
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)

			err := s.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrOutOfRange))
			assert.Equal(t, tt.wantField, FieldOf(err))
		})
	}
}

func TestPlanChecked(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		plan, err := PlanChecked(DefaultSettings(), PreviewDPI)
		require.NoError(t, err)
		assert.Equal(t, PreviewDPI, plan.DPI)
		assert.Equal(t, Plan(DefaultSettings().PhotoSpec(), DefaultSettings().PageSpec(), PreviewDPI), plan)
	})

	t.Run("invalid settings", func(t *testing.T) {
		s := DefaultSettings()
		s.Quantity = 99
		_, err := PlanChecked(s, PrintDPI)
		assert.Equal(t, "quantity", FieldOf(err))
	})

	t.Run("invalid dpi", func(t *testing.T) {
		for _, dpi := range []float64{0, -1, MaxDPI + 1, math.Inf(1)} {
			_, err := PlanChecked(DefaultSettings(), dpi)
			assert.Equal(t, "dpi", FieldOf(err))
			assert.ErrorIs(t, err, ErrOutOfRange)
		}
	})

	t.Run("sub-pixel photos", func(t *testing.T) {
		_, err := PlanChecked(DefaultSettings(), 0.01)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInconsistentSettings)
	})
}

func TestFieldOf_NonValidationError(t *testing.T) {
	assert.Equal(t, "", FieldOf(errors.New("boom")))
	assert.Equal(t, "", FieldOf(nil))
}

func TestSettings_PhotoSpecDefaultsAnchor(t *testing.T) {
	s := DefaultSettings()
	s.Layout = ""
	assert.Equal(t, AnchorAuto, s.PhotoSpec().Anchor)
	assert.Equal(t, s.TopMarginMM, s.PageSpec().TopMarginMM)
}
