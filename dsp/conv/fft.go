package conv

import (
	"fmt"

	algofft "github.com/cwbudde/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

// FFTAutoCorrelator computes one-sided autocorrelations of fixed-length
// signals through the frequency domain. It holds scratch buffers and is not
// safe for concurrent use.
type FFTAutoCorrelator struct {
	size    int
	fftSize int

	plan *algofft.Plan[complex128]

	buf   []complex128
	spec  []complex128
	re    []float64
	im    []float64
	power []float64
}

// NewFFTAutoCorrelator returns a correlator for signals of length size.
func NewFFTAutoCorrelator(size int) (*FFTAutoCorrelator, error) {
	if size < 1 {
		return nil, fmt.Errorf("conv: size %d: %w", size, ErrInvalidSize)
	}

	// Padding to 2N keeps the circular correlation free of wrap-around.
	fftSize := nextPowerOf2(2 * size)

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("conv: failed to create FFT plan: %w", err)
	}

	return &FFTAutoCorrelator{
		size:    size,
		fftSize: fftSize,
		plan:    plan,
		buf:     make([]complex128, fftSize),
		spec:    make([]complex128, fftSize),
		re:      make([]float64, fftSize),
		im:      make([]float64, fftSize),
		power:   make([]float64, fftSize),
	}, nil
}

// Size returns the signal length the correlator was built for.
func (c *FFTAutoCorrelator) Size() int {
	return c.size
}

// FFTSize returns the transform length used internally.
func (c *FFTAutoCorrelator) FFTSize() int {
	return c.fftSize
}

// Process returns the autocorrelation of signal in a new slice.
func (c *FFTAutoCorrelator) Process(signal []float64) ([]float64, error) {
	out := make([]float64, c.size)
	if err := c.ProcessTo(out, signal); err != nil {
		return nil, err
	}
	return out, nil
}

// ProcessTo implements Correlator.
func (c *FFTAutoCorrelator) ProcessTo(dst, signal []float64) error {
	if len(signal) == 0 {
		return ErrEmptyInput
	}
	if len(signal) != c.size || len(dst) != c.size {
		return fmt.Errorf("conv: correlator size %d, got signal %d dst %d: %w",
			c.size, len(signal), len(dst), ErrLengthMismatch)
	}

	for i, v := range signal {
		c.buf[i] = complex(v, 0)
	}
	for i := c.size; i < c.fftSize; i++ {
		c.buf[i] = 0
	}

	if err := c.plan.Forward(c.spec, c.buf); err != nil {
		return fmt.Errorf("conv: forward FFT failed: %w", err)
	}

	for i, v := range c.spec {
		c.re[i] = real(v)
		c.im[i] = imag(v)
	}
	vecmath.Power(c.power, c.re, c.im)
	for i, p := range c.power {
		c.spec[i] = complex(p, 0)
	}

	if err := c.plan.Inverse(c.buf, c.spec); err != nil {
		return fmt.Errorf("conv: inverse FFT failed: %w", err)
	}

	for i := range dst {
		dst[i] = real(c.buf[i])
	}

	return nil
}

// nextPowerOf2 returns the next power of 2 >= n.
func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p *= 2
	}
	return p
}
