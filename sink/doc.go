// Package sink provides tuner.Sink implementations for text and MIDI
// output.
package sink
