// Package level computes per-frame signal level statistics used to gate
// silent or clipped input before pitch analysis.
package level

import (
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-tuner/dsp/core"
)

// Level holds time-domain statistics of one frame.
//
//nolint:revive
type Level struct {
	Length        int
	DC            float64 // mean
	RMS           float64
	RMS_dB        float64
	Peak          float64 // max(|x|)
	Peak_dB       float64
	Energy        float64 // sum of squares, equals autocorrelation lag 0
	ZeroCrossings int
}

// Measure computes the level of signal. An empty signal reports -Inf dB.
func Measure(signal []float64) Level {
	n := len(signal)
	if n == 0 {
		return Level{RMS_dB: math.Inf(-1), Peak_dB: math.Inf(-1)}
	}

	energy := vecmath.DotProduct(signal, signal)
	peak := vecmath.MaxAbs(signal)
	rms := math.Sqrt(energy / float64(n))

	return Level{
		Length:        n,
		DC:            vecmath.Sum(signal) / float64(n),
		RMS:           rms,
		RMS_dB:        core.LinearToDB(rms),
		Peak:          peak,
		Peak_dB:       core.LinearToDB(peak),
		Energy:        energy,
		ZeroCrossings: ZeroCrossings(signal),
	}
}

// RMS returns the root-mean-square of the signal.
func RMS(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	return math.Sqrt(vecmath.DotProduct(signal, signal) / float64(len(signal)))
}

// DC returns the mean (DC offset) of the signal.
func DC(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}
	// Use Kahan summation for numerical stability.
	var sum, c float64
	for _, x := range signal {
		y := x - c
		t := sum + y
		c = (t - sum) - y
		sum = t
	}

	return sum / float64(len(signal))
}

// ZeroCrossings counts sign changes between consecutive samples. Samples that
// are exactly zero do not start or end a crossing.
func ZeroCrossings(signal []float64) int {
	count := 0
	for i := 1; i < len(signal); i++ {
		if signal[i-1]*signal[i] < 0 {
			count++
		}
	}

	return count
}

// RemoveDC subtracts the mean from signal in place and returns the removed offset.
func RemoveDC(signal []float64) float64 {
	dc := DC(signal)
	if dc == 0 {
		return 0
	}
	for i := range signal {
		signal[i] -= dc
	}

	return dc
}
