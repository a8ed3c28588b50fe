package pitch

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-tuner/dsp/conv"
	"github.com/cwbudde/algo-tuner/dsp/core"
	"github.com/cwbudde/algo-tuner/dsp/window"
	"github.com/cwbudde/algo-tuner/stats/level"
)

// Method selects the autocorrelation strategy.
type Method int

const (
	// MethodDirect computes one dot product per lag.
	MethodDirect Method = iota
	// MethodFFT goes through the frequency domain.
	MethodFFT
)

func (m Method) String() string {
	switch m {
	case MethodDirect:
		return "direct"
	case MethodFFT:
		return "fft"
	default:
		return "unknown"
	}
}

// ParseMethod resolves "direct" or "fft". The empty string maps to
// MethodDirect.
func ParseMethod(name string) (Method, error) {
	switch name {
	case "", "direct":
		return MethodDirect, nil
	case "fft":
		return MethodFFT, nil
	default:
		return MethodDirect, fmt.Errorf("pitch: unknown method %q", name)
	}
}

// Option configures a Detector.
type Option func(*config)

type config struct {
	method      Method
	window      window.Type
	interpolate bool
	minFreq     float64
	maxFreq     float64
	silenceDB   float64
	removeDC    bool
}

func defaultConfig() config {
	return config{
		method:    MethodDirect,
		window:    window.TypeRectangular,
		silenceDB: math.Inf(-1),
	}
}

// WithMethod selects the autocorrelation strategy.
func WithMethod(m Method) Option {
	return func(c *config) {
		c.method = m
	}
}

// WithWindow tapers each frame before correlation.
func WithWindow(t window.Type) Option {
	return func(c *config) {
		c.window = t
	}
}

// WithInterpolation refines the peak lag with parabolic interpolation.
func WithInterpolation() Option {
	return func(c *config) {
		c.interpolate = true
	}
}

// WithFrequencyRange rejects estimates outside [minHz, maxHz]. A zero bound
// disables that side.
func WithFrequencyRange(minHz, maxHz float64) Option {
	return func(c *config) {
		c.minFreq = minHz
		c.maxFreq = maxHz
	}
}

// WithSilenceThreshold reports frames whose RMS level is below dbfs as
// silent without correlating them.
func WithSilenceThreshold(dbfs float64) Option {
	return func(c *config) {
		c.silenceDB = dbfs
	}
}

// WithDCRemoval subtracts the frame mean before correlating. An offset
// large enough to keep the frame on one side of zero otherwise leaves no
// zero crossing in the autocorrelation.
func WithDCRemoval() Option {
	return func(c *config) {
		c.removeDC = true
	}
}

// Detector estimates the pitch of fixed-size frames. It owns scratch
// buffers and must be used from a single goroutine.
type Detector struct {
	sampleRate float64
	frameSize  int
	cfg        config

	correlator conv.Correlator
	coeffs     []float64
	silence    float64 // linear RMS gate
	work       []float64
	acf        []float64
}

// NewDetector returns a Detector for frames of frameSize samples at
// sampleRate Hz.
func NewDetector(sampleRate float64, frameSize int, opts ...Option) (*Detector, error) {
	if !isFinitePositive(sampleRate) {
		return nil, fmt.Errorf("%w: %f", ErrInvalidSampleRate, sampleRate)
	}
	if frameSize < 2 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFrameSize, frameSize)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if err := validateRange(cfg.minFreq, cfg.maxFreq); err != nil {
		return nil, err
	}

	d := &Detector{
		sampleRate: sampleRate,
		frameSize:  frameSize,
		cfg:        cfg,
		silence:    core.DBToLinear(cfg.silenceDB),
		acf:        make([]float64, frameSize),
	}

	switch cfg.method {
	case MethodDirect:
		d.correlator = conv.Direct{}
	case MethodFFT:
		c, err := conv.NewFFTAutoCorrelator(frameSize)
		if err != nil {
			return nil, fmt.Errorf("pitch: %w", err)
		}
		d.correlator = c
	default:
		return nil, fmt.Errorf("pitch: unknown method %d", int(cfg.method))
	}

	if _, err := window.ParseType(cfg.window.String()); err != nil {
		return nil, fmt.Errorf("pitch: %w", err)
	}
	if cfg.window != window.TypeRectangular {
		d.coeffs = window.Generate(cfg.window, frameSize)
	}
	if d.coeffs != nil || cfg.removeDC {
		d.work = make([]float64, frameSize)
	}

	return d, nil
}

func validateRange(minHz, maxHz float64) error {
	if math.IsNaN(minHz) || math.IsNaN(maxHz) || math.IsInf(minHz, 0) || math.IsInf(maxHz, 0) {
		return ErrInvalidRange
	}
	if minHz < 0 || maxHz < 0 {
		return ErrInvalidRange
	}
	if maxHz > 0 && minHz > maxHz {
		return fmt.Errorf("%w: min %g > max %g", ErrInvalidRange, minHz, maxHz)
	}
	return nil
}

// SampleRate returns the configured sample rate in Hz.
func (d *Detector) SampleRate() float64 { return d.sampleRate }

// FrameSize returns the expected frame length.
func (d *Detector) FrameSize() int { return d.frameSize }

// Method returns the autocorrelation strategy in use.
func (d *Detector) Method() Method { return d.cfg.method }

// Resolution returns the frequency step between the two lags around f, the
// best precision an integer-lag estimate can reach at that frequency.
func (d *Detector) Resolution(f float64) float64 {
	if f <= 0 {
		return 0
	}
	lag := d.sampleRate / f
	if lag <= 1 {
		return d.sampleRate / 2
	}
	return d.sampleRate/(lag-1) - d.sampleRate/lag
}

// Detect estimates the pitch of samples. Only a wrong frame length is an
// error; every analysis outcome, including no pitch, is an Estimate.
func (d *Detector) Detect(samples []float64) (Estimate, error) {
	if len(samples) != d.frameSize {
		return Estimate{}, fmt.Errorf("%w: got %d, want %d", ErrFrameLength, len(samples), d.frameSize)
	}

	if d.cfg.silenceDB > math.Inf(-1) {
		rms := level.RMS(samples)
		if math.IsNaN(rms) || math.IsInf(rms, 0) {
			return undetected(ReasonInvalid, -1), nil
		}
		if rms < d.silence {
			return undetected(ReasonSilent, -1), nil
		}
	}

	input := samples
	if d.work != nil {
		copy(d.work, samples)
		if d.cfg.removeDC {
			level.RemoveDC(d.work)
		}
		if d.coeffs != nil {
			if err := window.ApplyCoefficientsTo(d.work, d.work, d.coeffs); err != nil {
				return Estimate{}, fmt.Errorf("pitch: %w", err)
			}
		}
		input = d.work
	}

	if err := d.correlator.ProcessTo(d.acf, input); err != nil {
		return Estimate{}, fmt.Errorf("pitch: %w", err)
	}
	if math.IsNaN(d.acf[0]) || math.IsInf(d.acf[0], 0) {
		return undetected(ReasonInvalid, -1), nil
	}

	est := SelectPeak(d.acf, d.sampleRate)
	if !est.Detected() {
		return est, nil
	}

	if d.cfg.interpolate {
		est.Period = Refine(d.acf, est.Lag)
		est.Frequency = d.sampleRate / est.Period
	}

	if (d.cfg.minFreq > 0 && est.Frequency < d.cfg.minFreq) ||
		(d.cfg.maxFreq > 0 && est.Frequency > d.cfg.maxFreq) {
		return undetected(ReasonOutOfRange, est.Lag), nil
	}

	return est, nil
}

// Autocorrelation returns the sequence computed by the last Detect call.
// The slice is reused by the next call.
func (d *Detector) Autocorrelation() []float64 {
	return d.acf
}
