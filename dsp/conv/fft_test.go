package conv

import (
	"errors"
	"testing"

	"github.com/cwbudde/algo-tuner/internal/testutil"
)

func TestFFTAutoCorrelatorMatchesDirect(t *testing.T) {
	for _, n := range []int{1, 7, 64, 256, 300} {
		x := testutil.DeterministicNoise(int64(n), 0.5, n)

		want, err := AutoCorrelate(x)
		if err != nil {
			t.Fatal(err)
		}

		c, err := NewFFTAutoCorrelator(n)
		if err != nil {
			t.Fatalf("NewFFTAutoCorrelator(%d): %v", n, err)
		}
		if c.FFTSize() < 2*n {
			t.Fatalf("FFTSize() = %d, want >= %d", c.FFTSize(), 2*n)
		}

		got, err := c.Process(x)
		if err != nil {
			t.Fatalf("Process: %v", err)
		}

		testutil.RequireFinite(t, got)
		testutil.RequireSliceNearlyEqual(t, got, want, 1e-9*(1+want[0]))
	}
}

func TestFFTAutoCorrelatorReuse(t *testing.T) {
	c, err := NewFFTAutoCorrelator(32)
	if err != nil {
		t.Fatal(err)
	}

	dst := make([]float64, 32)
	a := testutil.DeterministicSine(1000, 8000, 1, 32)
	b := testutil.DeterministicNoise(3, 1, 32)

	if err := c.ProcessTo(dst, a); err != nil {
		t.Fatal(err)
	}
	if err := c.ProcessTo(dst, b); err != nil {
		t.Fatal(err)
	}

	want, _ := AutoCorrelate(b)
	testutil.RequireSliceNearlyEqual(t, dst, want, 1e-9*(1+want[0]))
}

func TestFFTAutoCorrelatorErrors(t *testing.T) {
	if _, err := NewFFTAutoCorrelator(0); !errors.Is(err, ErrInvalidSize) {
		t.Fatalf("NewFFTAutoCorrelator(0) err = %v", err)
	}

	c, err := NewFFTAutoCorrelator(8)
	if err != nil {
		t.Fatal(err)
	}
	if c.Size() != 8 {
		t.Fatalf("Size() = %d", c.Size())
	}
	if err := c.ProcessTo(make([]float64, 8), make([]float64, 4)); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("ProcessTo mismatch err = %v", err)
	}
	if err := c.ProcessTo(nil, nil); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("ProcessTo empty err = %v", err)
	}
}
