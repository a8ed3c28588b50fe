package window

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownType is returned by ParseType for names it does not know.
	ErrUnknownType = errors.New("window: unknown type")

	errMismatchedLength = errors.New("samples and coefficients must have same length")
)

func unknownType(name string) error {
	return fmt.Errorf("%w: %q", ErrUnknownType, name)
}
