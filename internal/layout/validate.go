package layout

import (
	"errors"
	"fmt"
	"math"
)

// Validation error classes.
var (
	ErrOutOfRange           = errors.New("value out of range")
	ErrInconsistentSettings = errors.New("inconsistent settings")
)

// ValidationError names the settings field that was rejected. Err is
// ErrOutOfRange or ErrInconsistentSettings.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func outOfRange(field string, v, lo, hi float64) *ValidationError {
	return &ValidationError{
		Field:  field,
		Reason: fmt.Sprintf("must be between %g and %g, got %g", lo, hi, v),
		Err:    ErrOutOfRange,
	}
}

func checkRange(field string, v, lo, hi float64) error {
	// Written so NaN fails.
	if !(v >= lo && v <= hi) {
		return outOfRange(field, v, lo, hi)
	}
	return nil
}

// Validate checks every field against its documented bounds and returns the
// first violation.
func (s Settings) Validate() error {
	checks := []error{
		checkRange("width", s.WidthMM, MinWidthMM, MaxWidthMM),
		checkRange("height", s.HeightMM, MinHeightMM, MaxHeightMM),
		checkRange("quantity", float64(s.Quantity), MinQuantity, MaxQuantity),
		checkRange("spacing", s.SpacingMM, MinSpacingMM, MaxSpacingMM),
		checkRange("top_margin", s.TopMarginMM, MinTopMarginMM, MaxTopMarginMM),
	}
	for _, err := range checks {
		if err != nil {
			return err
		}
	}
	if s.Layout != "" {
		if _, err := ParseAnchor(string(s.Layout)); err != nil {
			return &ValidationError{Field: "layout", Reason: err.Error(), Err: ErrOutOfRange}
		}
	}
	return nil
}

// PlanChecked validates s and dpi, plans the sheet, and rejects plans that
// would draw photos with no visible size.
func PlanChecked(s Settings, dpi float64) (LayoutPlan, error) {
	if err := s.Validate(); err != nil {
		return LayoutPlan{}, err
	}
	if !(dpi > 0 && dpi <= MaxDPI) {
		return LayoutPlan{}, outOfRange("dpi", dpi, 0, MaxDPI)
	}

	plan := Plan(s.PhotoSpec(), s.PageSpec(), dpi)
	if plan.PhotoWidthPx < 1 || plan.PhotoHeightPx < 1 ||
		math.IsInf(plan.PhotoWidthPx, 0) || math.IsInf(plan.PhotoHeightPx, 0) {
		return LayoutPlan{}, &ValidationError{
			Field:  "quantity",
			Reason: fmt.Sprintf("photos would be %.2fx%.2f px after scaling", plan.PhotoWidthPx, plan.PhotoHeightPx),
			Err:    ErrInconsistentSettings,
		}
	}
	return plan, nil
}

// FieldOf returns the field named by a validation error, or "" when err is
// not one.
func FieldOf(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Field
	}
	return ""
}
