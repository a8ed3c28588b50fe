package note

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"unicode/utf8"
)

// ErrInvalidFrequency is returned for frequencies that are not positive and
// finite.
var ErrInvalidFrequency = errors.New("note: frequency must be positive and finite")

const (
	// DefaultReference is the A4 tuning reference in Hz.
	DefaultReference = 440.0

	referenceMIDI = 69
	labelWidth    = 2
)

// PitchClass is a note name without octave, 0 = C through 11 = B.
type PitchClass int

const (
	C PitchClass = iota
	CSharp
	D
	EFlat
	E
	F
	FSharp
	G
	GSharp
	A
	BFlat
	B
)

var classNames = [12]string{"C", "C♯", "D", "E♭", "E", "F", "F♯", "G", "G♯", "A", "B♭", "B"}

func (p PitchClass) String() string {
	if p < 0 || p > B {
		return "PitchClass(" + strconv.Itoa(int(p)) + ")"
	}
	return classNames[p]
}

// Label is the pitch name of one frequency.
type Label struct {
	Class  PitchClass
	Octave int
	MIDI   int

	// Cents is the deviation of Frequency from the labelled note,
	// within [-50, 50].
	Cents float64

	// Frequency is the input frequency in Hz, 0 for labels built from a
	// MIDI number.
	Frequency float64
}

// String pads the class name to two characters before the octave, so that
// "A 4" and "C♯4" line up in a column.
func (l Label) String() string {
	name := l.Class.String()
	for n := utf8.RuneCountInString(name); n < labelWidth; n++ {
		name += " "
	}
	return name + strconv.Itoa(l.Octave)
}

// Compact returns the label without padding, e.g. "A4".
func (l Label) Compact() string {
	return l.Class.String() + strconv.Itoa(l.Octave)
}

// Mapper converts between frequencies and labels for one tuning reference.
type Mapper struct {
	reference float64
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithReference sets the A4 frequency. Non-positive or non-finite values are
// ignored.
func WithReference(hz float64) Option {
	return func(m *Mapper) {
		if isFinitePositive(hz) {
			m.reference = hz
		}
	}
}

// NewMapper returns a Mapper tuned to A4 = 440 Hz unless overridden.
func NewMapper(opts ...Option) *Mapper {
	m := &Mapper{reference: DefaultReference}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Reference returns the A4 frequency in Hz.
func (m *Mapper) Reference() float64 {
	return m.reference
}

// MIDINumber returns the fractional MIDI number of hz. The result is NaN
// or -Inf for invalid input.
func (m *Mapper) MIDINumber(hz float64) float64 {
	return referenceMIDI + 12*math.Log2(hz/m.reference)
}

// Frequency returns the frequency of MIDI note n.
func (m *Mapper) Frequency(n int) float64 {
	return m.reference * math.Exp2(float64(n-referenceMIDI)/12)
}

// FromFrequency labels hz with its nearest note.
func (m *Mapper) FromFrequency(hz float64) (Label, error) {
	if !isFinitePositive(hz) {
		return Label{}, fmt.Errorf("%w: %g", ErrInvalidFrequency, hz)
	}

	midi := nearestMIDI(m.MIDINumber(hz))
	l := FromMIDI(midi)
	l.Frequency = hz
	l.Cents = 1200 * math.Log2(hz/m.Frequency(midi))

	return l, nil
}

// FromMIDI labels MIDI note n. Negative numbers are valid and map below C-1.
func FromMIDI(n int) Label {
	class := n % 12
	if class < 0 {
		class += 12
	}

	return Label{
		Class:  PitchClass(class),
		Octave: floorDiv(n, 12) - 1,
		MIDI:   n,
	}
}

var defaultMapper = NewMapper()

// FromFrequency labels hz against A4 = 440 Hz.
func FromFrequency(hz float64) (Label, error) {
	return defaultMapper.FromFrequency(hz)
}

// nearestMIDI rounds half away from zero.
func nearestMIDI(m float64) int {
	return int(math.Round(m))
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func isFinitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
