// Package note maps frequencies to 12-tone equal-temperament pitch labels.
//
// A frequency f maps to the fractional MIDI number
//
//	m = 69 + 12*log2(f / ref)
//
// with ref the A4 reference (440 Hz by default). m is rounded with
// math.Round, so exact half-semitones round away from zero. The pitch class
// is the non-negative remainder of the rounded number modulo 12 and the
// octave is floor(rounded/12) - 1, which puts MIDI 60 at C4.
package note
