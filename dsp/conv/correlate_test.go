package conv

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-tuner/internal/testutil"
)

func naiveAutoCorrelate(x []float64) []float64 {
	out := make([]float64, len(x))
	for k := range x {
		for i := 0; i+k < len(x); i++ {
			out[k] += x[i] * x[i+k]
		}
	}
	return out
}

func TestAutoCorrelateKnownValues(t *testing.T) {
	got, err := AutoCorrelate([]float64{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireSliceNearlyEqual(t, got, []float64{14, 8, 3}, 1e-12)
}

func TestAutoCorrelateConstantFrame(t *testing.T) {
	const (
		n = 64
		s = 0.5
	)
	x := make([]float64, n)
	for i := range x {
		x[i] = s
	}

	got, err := AutoCorrelate(x)
	if err != nil {
		t.Fatal(err)
	}

	if math.Abs(got[0]-n*s*s) > 1e-12 {
		t.Fatalf("lag 0 = %g, want %g", got[0], n*s*s)
	}
	for k := 1; k < n; k++ {
		if got[k] >= got[k-1] {
			t.Fatalf("acf not strictly decreasing at lag %d: %g >= %g", k, got[k], got[k-1])
		}
		if got[k] <= 0 {
			t.Fatalf("acf[%d] = %g, want > 0", k, got[k])
		}
	}
}

func TestAutoCorrelateMatchesNaive(t *testing.T) {
	x := testutil.DeterministicSine(220, 48000, 0.8, 256)
	got, err := AutoCorrelate(x)
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireSliceNearlyEqual(t, got, naiveAutoCorrelate(x), 1e-9)
}

func TestAutoCorrelateErrors(t *testing.T) {
	if _, err := AutoCorrelate(nil); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("AutoCorrelate(nil) err = %v", err)
	}
	if err := AutoCorrelateTo(make([]float64, 3), make([]float64, 4)); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("AutoCorrelateTo mismatch err = %v", err)
	}
}

func TestDirectImplementsCorrelator(t *testing.T) {
	var c Correlator = Direct{}
	dst := make([]float64, 3)
	if err := c.ProcessTo(dst, []float64{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	testutil.RequireSliceNearlyEqual(t, dst, []float64{14, 8, 3}, 1e-12)
}
