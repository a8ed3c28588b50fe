package pitch

import "math"

// SelectPeak picks the period lag from a one-sided autocorrelation sequence
// and converts it to a frequency.
//
// The scan starts at the first index whose value is below zero, seeded with
// that index and a value of 0, and keeps the earliest strict maximum from
// there on. A tail that never rises above zero therefore reports the crossing
// lag itself. A sequence that never goes negative yields ReasonNoZeroCrossing
// and a winning lag of 0 yields ReasonZeroLag.
func SelectPeak(acf []float64, sampleRate float64) Estimate {
	if len(acf) == 0 || !isFinitePositive(sampleRate) {
		return undetected(ReasonInvalid, -1)
	}

	crossing := FirstNegative(acf)
	if crossing < 0 {
		return undetected(ReasonNoZeroCrossing, -1)
	}

	lag, value := crossing, 0.0
	for i := crossing; i < len(acf); i++ {
		if acf[i] > value {
			lag, value = i, acf[i]
		}
	}

	if lag == 0 {
		return undetected(ReasonZeroLag, 0)
	}

	return Estimate{
		Frequency: sampleRate / float64(lag),
		Lag:       lag,
		Period:    float64(lag),
		Strength:  strength(acf, lag),
		Reason:    ReasonNone,
	}
}

// FirstNegative returns the first index holding a value below zero, or -1.
func FirstNegative(acf []float64) int {
	for i, v := range acf {
		if v < 0 {
			return i
		}
	}
	return -1
}

// Refine returns the fractional peak position around lag by fitting a
// parabola through its neighbours. Lags at either end, or a flat
// neighbourhood, are returned unchanged.
func Refine(acf []float64, lag int) float64 {
	if lag <= 0 || lag >= len(acf)-1 {
		return float64(lag)
	}

	a, b, c := acf[lag-1], acf[lag], acf[lag+1]
	den := a - 2*b + c
	if den >= 0 {
		return float64(lag)
	}

	delta := 0.5 * (a - c) / den
	if delta < -0.5 || delta > 0.5 || math.IsNaN(delta) {
		return float64(lag)
	}

	return float64(lag) + delta
}

func strength(acf []float64, lag int) float64 {
	if acf[0] <= 0 {
		return 0
	}
	return acf[lag] / acf[0]
}

func isFinitePositive(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
