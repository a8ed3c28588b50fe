// Package synth is a capture source that plays a synthetic tone, for testing
// the pipeline without an audio device.
package synth

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/cwbudde/algo-tuner/capture"
	"github.com/cwbudde/algo-tuner/dsp/signal"
)

const defaultAmplitude = 0.5

// Option configures the tone.
type Option func(*settings)

type settings struct {
	amplitude float64
	duration  time.Duration
	realtime  bool
	osc       []signal.Option
}

// WithAmplitude sets the peak amplitude (default 0.5).
func WithAmplitude(a float64) Option {
	return func(s *settings) {
		s.amplitude = a
	}
}

// WithDuration ends the tone after d. Zero plays until stopped.
func WithDuration(d time.Duration) Option {
	return func(s *settings) {
		s.duration = d
	}
}

// WithHarmonics adds overtones with amplitudes relative to the fundamental,
// starting at the second harmonic.
func WithHarmonics(amps ...float64) Option {
	return func(s *settings) {
		s.osc = append(s.osc, signal.WithHarmonics(amps...))
	}
}

// WithNoise mixes in seeded white noise of the given peak amplitude.
func WithNoise(amplitude float64, seed int64) Option {
	return func(s *settings) {
		s.osc = append(s.osc, signal.WithNoise(amplitude, seed))
	}
}

// WithRealtime paces chunks at the rate a sound card would deliver them.
func WithRealtime(realtime bool) Option {
	return func(s *settings) {
		s.realtime = realtime
	}
}

// Tone is a ChunkReader producing a phase-continuous tone.
type Tone struct {
	osc       *signal.Oscillator
	remaining int64 // samples left, -1 for endless
}

// NewTone returns a tone reader at freqHz.
func NewTone(freqHz, sampleRate float64, opts ...Option) (*Tone, error) {
	s := settings{amplitude: defaultAmplitude}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}

	osc, err := signal.NewOscillator(freqHz, s.amplitude, sampleRate, s.osc...)
	if err != nil {
		return nil, fmt.Errorf("synth: %w", err)
	}

	remaining := int64(-1)
	if s.duration > 0 {
		remaining = int64(math.Ceil(s.duration.Seconds() * sampleRate))
	}

	return &Tone{osc: osc, remaining: remaining}, nil
}

// ReadChunk implements capture.ChunkReader.
func (t *Tone) ReadChunk(dst []float32) (int, error) {
	if t.remaining == 0 {
		return 0, io.EOF
	}

	n := len(dst)
	if t.remaining > 0 && int64(n) > t.remaining {
		n = int(t.remaining)
	}
	t.osc.Fill32(dst[:n])

	if t.remaining > 0 {
		t.remaining -= int64(n)
	}

	return n, nil
}

// New returns a source playing a tone at freqHz in chunks of frameSize.
func New(freqHz, sampleRate float64, frameSize int, opts ...Option) (*capture.Pump, error) {
	tone, err := NewTone(freqHz, sampleRate, opts...)
	if err != nil {
		return nil, err
	}

	var s settings
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}

	return capture.NewPump(tone, sampleRate, frameSize, capture.WithRealtime(s.realtime))
}
