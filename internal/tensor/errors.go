package tensor

import (
	"fmt"

	"github.com/pkg/errors"
)

// Common errors.
var (
	ErrInvalidShape  = errors.New("invalid shape")
	ErrShapeMismatch = errors.New("shape mismatch")
	ErrSizeMismatch  = errors.New("size mismatch")
)

// Sized is anything with a shape, typically a *View.
type Sized interface {
	Shape() Shape
	NumElements() int
}

// SizeMismatchError reports two views used together whose element counts differ.
// It matches both ErrSizeMismatch and ErrShapeMismatch with errors.Is.
type SizeMismatchError struct {
	Index    int   // Position of the offending view in the checked list
	Want     int   // Element count of the first view
	Got      int   // Element count of the offending view
	WantDims Shape // Shape of the first view
	GotDims  Shape // Shape of the offending view
}

// Error implements the error interface.
func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("size mismatch: view %d has %d elements %v, want %d %v",
		e.Index, e.Got, e.GotDims, e.Want, e.WantDims)
}

// Is reports whether target is one of the size/shape sentinels.
func (e *SizeMismatchError) Is(target error) bool {
	return target == ErrSizeMismatch || target == ErrShapeMismatch
}

// CheckSameSize returns a *SizeMismatchError if any view has a different
// element count than the first one. Shapes may differ.
func CheckSameSize(views ...Sized) error {
	if len(views) < 2 {
		return nil
	}
	want := views[0].NumElements()
	for i := 1; i < len(views); i++ {
		if got := views[i].NumElements(); got != want {
			return errors.WithStack(&SizeMismatchError{
				Index:    i,
				Want:     want,
				Got:      got,
				WantDims: views[0].Shape().Clone(),
				GotDims:  views[i].Shape().Clone(),
			})
		}
	}
	return nil
}
