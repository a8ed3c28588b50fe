package sink

import (
	"errors"
	"fmt"
	"io"

	"gitlab.com/gomidi/midi/v2"

	"github.com/cwbudde/algo-tuner/tuner"
)

const defaultVelocity = 100

// MIDI turns the pitch stream into note on/off messages written to an
// io.Writer as a raw MIDI byte stream. A note is held while consecutive
// frames map to it.
type MIDI struct {
	w        io.Writer
	channel  uint8
	velocity uint8
	held     int // -1 when no note sounds
}

// NewMIDI returns a MIDI sink on channel 0-15.
func NewMIDI(w io.Writer, channel uint8) (*MIDI, error) {
	if w == nil {
		return nil, errors.New("sink: nil MIDI writer")
	}
	if channel > 15 {
		return nil, fmt.Errorf("sink: MIDI channel %d out of range 0-15", channel)
	}
	return &MIDI{w: w, channel: channel, velocity: defaultVelocity, held: -1}, nil
}

// Held returns the sounding note number, or -1.
func (m *MIDI) Held() int {
	return m.held
}

// Emit implements tuner.Sink.
func (m *MIDI) Emit(r tuner.Result) error {
	if !r.Detected() || r.Label.MIDI < 0 || r.Label.MIDI > 127 {
		return m.release()
	}

	key := r.Label.MIDI
	if key == m.held {
		return nil
	}
	if err := m.release(); err != nil {
		return err
	}
	if err := m.write(midi.NoteOn(m.channel, uint8(key), m.velocity)); err != nil {
		return err
	}
	m.held = key

	return nil
}

// Close releases a held note. It does not close the writer.
func (m *MIDI) Close() error {
	return m.release()
}

func (m *MIDI) release() error {
	if m.held < 0 {
		return nil
	}
	key := uint8(m.held)
	m.held = -1
	return m.write(midi.NoteOff(m.channel, key))
}

func (m *MIDI) write(msg midi.Message) error {
	if _, err := m.w.Write(msg.Bytes()); err != nil {
		return fmt.Errorf("sink: midi: %w", err)
	}
	return nil
}
