package conv

import (
	"fmt"

	"github.com/cwbudde/algo-vecmath"
)

// Correlator computes the one-sided autocorrelation of signal into dst.
// len(dst) must equal len(signal).
type Correlator interface {
	ProcessTo(dst, signal []float64) error
}

// Direct is the time-domain Correlator. The zero value is ready to use.
type Direct struct{}

// ProcessTo implements Correlator.
func (Direct) ProcessTo(dst, signal []float64) error {
	return AutoCorrelateTo(dst, signal)
}

// AutoCorrelate returns the one-sided autocorrelation of signal.
// The result has len(signal) entries; index k holds lag k.
func AutoCorrelate(signal []float64) ([]float64, error) {
	if len(signal) == 0 {
		return nil, ErrEmptyInput
	}

	out := make([]float64, len(signal))
	if err := AutoCorrelateTo(out, signal); err != nil {
		return nil, err
	}

	return out, nil
}

// AutoCorrelateTo writes the one-sided autocorrelation of signal into dst
// without allocating.
func AutoCorrelateTo(dst, signal []float64) error {
	n := len(signal)
	if n == 0 {
		return ErrEmptyInput
	}
	if len(dst) != n {
		return fmt.Errorf("conv: autocorrelation dst has %d entries, want %d: %w", len(dst), n, ErrLengthMismatch)
	}

	for k := range n {
		dst[k] = vecmath.DotProduct(signal[:n-k], signal[k:])
	}

	return nil
}
