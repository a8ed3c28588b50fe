package tuner

import (
	"time"

	"github.com/cwbudde/algo-tuner/dsp/pitch"
	"github.com/cwbudde/algo-tuner/music/note"
)

// NoPitch is the text form of a frame without a detectable pitch.
const NoPitch = "-"

// Result is the analysis outcome of one frame.
type Result struct {
	Seq      uint64
	Captured time.Time
	Estimate pitch.Estimate

	// Label is only meaningful when Detected is true.
	Label note.Label
}

// Detected reports whether the frame carried a pitch.
func (r Result) Detected() bool {
	return r.Estimate.Detected()
}

// String returns the padded note label, or NoPitch.
func (r Result) String() string {
	if !r.Detected() {
		return NoPitch
	}
	return r.Label.String()
}

// Sink receives results in frame order.
type Sink interface {
	Emit(Result) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Result) error

// Emit calls f(r).
func (f SinkFunc) Emit(r Result) error {
	return f(r)
}

// Observer is told about every analysed frame, including the time the
// analysis took and the real-time budget of the frame.
type Observer interface {
	FrameAnalyzed(r Result, elapsed, budget time.Duration)
}

// Activity reports whether the capture source still delivers frames.
type Activity interface {
	Active() bool
}

// ActivityFunc adapts a function to Activity.
type ActivityFunc func() bool

// Active calls f().
func (f ActivityFunc) Active() bool {
	return f()
}
