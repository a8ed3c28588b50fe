package sink

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/fatih/color"

	"github.com/cwbudde/algo-tuner/tuner"
)

// InTuneCents is the deviation Console still shows as in tune.
const InTuneCents = 5.0

// Writer prints one label per line, "-" for frames without pitch.
type Writer struct {
	w *bufio.Writer
}

// NewWriter returns a Writer on w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Emit implements tuner.Sink.
func (s *Writer) Emit(r tuner.Result) error {
	if _, err := s.w.WriteString(r.String()); err != nil {
		return err
	}
	if err := s.w.WriteByte('\n'); err != nil {
		return err
	}
	return s.w.Flush()
}

// ConsoleOption configures a Console.
type ConsoleOption func(*Console)

// WithColor forces colour output on or off. By default fatih/color decides
// from the terminal.
func WithColor(enabled bool) ConsoleOption {
	return func(c *Console) {
		for _, col := range []*color.Color{c.inTune, c.offTune, c.none} {
			if enabled {
				col.EnableColor()
			} else {
				col.DisableColor()
			}
		}
	}
}

// Console prints label, frequency and cents, coloured by how close the
// pitch is to the note.
type Console struct {
	w       io.Writer
	inTune  *color.Color
	offTune *color.Color
	none    *color.Color
}

// NewConsole returns a Console on w.
func NewConsole(w io.Writer, opts ...ConsoleOption) *Console {
	c := &Console{
		w:       w,
		inTune:  color.New(color.FgGreen, color.Bold),
		offTune: color.New(color.FgYellow),
		none:    color.New(color.FgHiBlack),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Emit implements tuner.Sink.
func (c *Console) Emit(r tuner.Result) error {
	if !r.Detected() {
		_, err := c.none.Fprintln(c.w, tuner.NoPitch)
		return err
	}

	col := c.offTune
	if math.Abs(r.Label.Cents) <= InTuneCents {
		col = c.inTune
	}

	_, err := col.Fprintf(c.w, "%s %8.2f Hz %+4.0f cents\n", r.Label, r.Estimate.Frequency, r.Label.Cents)
	if err != nil {
		return fmt.Errorf("sink: console: %w", err)
	}
	return nil
}

// Multi forwards every result to all sinks and reports the first error.
type Multi []tuner.Sink

// Emit implements tuner.Sink.
func (m Multi) Emit(r tuner.Result) error {
	var first error
	for _, s := range m {
		if err := s.Emit(r); err != nil && first == nil {
			first = err
		}
	}
	return first
}
