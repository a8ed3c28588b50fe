package pitch

import "fmt"

// Reason explains why an Estimate carries no frequency.
type Reason int

const (
	// ReasonNone marks a detected pitch.
	ReasonNone Reason = iota

	// ReasonNoZeroCrossing: the autocorrelation never goes negative.
	ReasonNoZeroCrossing

	// ReasonZeroLag: the selected peak sits at lag 0.
	ReasonZeroLag

	// ReasonSilent: the frame level is below the silence threshold.
	ReasonSilent

	// ReasonOutOfRange: the estimate lies outside the configured range.
	ReasonOutOfRange

	// ReasonInvalid: empty input, non-finite samples or a bad sample rate.
	ReasonInvalid
)

var reasonNames = [...]string{
	ReasonNone:           "none",
	ReasonNoZeroCrossing: "no-zero-crossing",
	ReasonZeroLag:        "zero-lag",
	ReasonSilent:         "silent",
	ReasonOutOfRange:     "out-of-range",
	ReasonInvalid:        "invalid",
}

func (r Reason) String() string {
	if r >= 0 && int(r) < len(reasonNames) {
		return reasonNames[r]
	}
	return fmt.Sprintf("reason(%d)", int(r))
}

// Estimate is the outcome of analysing one frame.
type Estimate struct {
	// Frequency in Hz; 0 unless Detected.
	Frequency float64

	// Lag is the integer lag of the selected peak, or -1 when no
	// candidate was scanned.
	Lag int

	// Period is the period in samples. It equals Lag unless refined.
	Period float64

	// Strength is acf[Lag] / acf[0], 0 when undefined.
	Strength float64

	Reason Reason
}

// Detected reports whether e carries a usable frequency.
func (e Estimate) Detected() bool {
	return e.Reason == ReasonNone && e.Frequency > 0
}

func (e Estimate) String() string {
	if !e.Detected() {
		return "no pitch (" + e.Reason.String() + ")"
	}
	return fmt.Sprintf("%.2f Hz (lag %d, strength %.2f)", e.Frequency, e.Lag, e.Strength)
}

func undetected(r Reason, lag int) Estimate {
	return Estimate{Lag: lag, Reason: r}
}
