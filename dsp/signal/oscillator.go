// Package signal generates streaming test signals.
package signal

import (
	"fmt"
	"math"
	"math/rand"
)

// Option configures an Oscillator.
type Option func(*Oscillator)

// WithHarmonics adds overtones. amps[k] is the amplitude of partial k+2
// relative to the fundamental. Partials at or above Nyquist are dropped.
func WithHarmonics(amps ...float64) Option {
	return func(o *Oscillator) {
		o.overtones = append(o.overtones[:0], amps...)
	}
}

// WithNoise mixes in uniform white noise in [-amplitude, amplitude] drawn
// from a generator seeded with seed.
func WithNoise(amplitude float64, seed int64) Option {
	return func(o *Oscillator) {
		if amplitude <= 0 {
			o.rng = nil
			return
		}
		o.noise = amplitude
		o.rng = rand.New(rand.NewSource(seed))
	}
}

// Oscillator is a phase-continuous tone source for block-wise streaming.
// Consecutive Fill calls continue where the previous one stopped.
type Oscillator struct {
	partials  []float64 // absolute amplitude of harmonic k+1
	overtones []float64
	step      float64
	phase     float64

	noise float64
	rng   *rand.Rand
}

// NewOscillator returns an oscillator at freqHz for the given sample rate.
func NewOscillator(freqHz, amplitude, sampleRate float64, opts ...Option) (*Oscillator, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("oscillator sample rate must be > 0: %v", sampleRate)
	}
	if freqHz < 0 || freqHz > sampleRate/2 || math.IsNaN(freqHz) {
		return nil, fmt.Errorf("oscillator frequency must be between 0 and sampleRate/2: %v", freqHz)
	}

	o := &Oscillator{step: 2 * math.Pi * freqHz / sampleRate}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	o.partials = append(o.partials, amplitude)
	for k, rel := range o.overtones {
		if math.IsNaN(rel) || math.IsInf(rel, 0) {
			return nil, fmt.Errorf("oscillator harmonic %d amplitude must be finite: %v", k+2, rel)
		}
		if float64(k+2)*freqHz >= sampleRate/2 {
			break
		}
		o.partials = append(o.partials, amplitude*rel)
	}

	return o, nil
}

// Partials returns the number of sounding partials including the
// fundamental.
func (o *Oscillator) Partials() int {
	return len(o.partials)
}

func (o *Oscillator) next() float64 {
	v := 0.0
	for k, a := range o.partials {
		if a != 0 {
			v += a * math.Sin(float64(k+1)*o.phase)
		}
	}
	if o.rng != nil {
		v += o.noise * (o.rng.Float64()*2 - 1)
	}

	o.phase += o.step
	if o.phase >= 2*math.Pi {
		o.phase -= 2 * math.Pi
	}

	return v
}

// Fill writes the next len(dst) samples.
func (o *Oscillator) Fill(dst []float64) {
	for i := range dst {
		dst[i] = o.next()
	}
}

// Fill32 is Fill for float32 capture buffers.
func (o *Oscillator) Fill32(dst []float32) {
	for i := range dst {
		dst[i] = float32(o.next())
	}
}

// Reset rewinds the phase to 0. The noise sequence is not rewound.
func (o *Oscillator) Reset() {
	o.phase = 0
}
