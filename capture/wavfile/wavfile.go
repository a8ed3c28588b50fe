// Package wavfile is a capture source reading PCM or IEEE float WAV files.
//
// Multi-channel audio is averaged to mono. The last chunk is zero padded to
// the frame size by the pump. With real-time pacing the file plays at the
// speed a live device would deliver it.
package wavfile

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/mjibson/go-dsp/wav"

	"github.com/cwbudde/algo-tuner/capture"
)

// ErrUnsupportedFormat is returned for WAV encodings the reader cannot decode.
var ErrUnsupportedFormat = errors.New("wavfile: unsupported sample format")

// Reader decodes a WAV stream into mono float32 chunks.
type Reader struct {
	w         *wav.Wav
	channels  int
	remaining int // interleaved samples left in the data chunk
	closer    io.Closer
}

// NewReader parses the WAV header from r.
func NewReader(r io.Reader) (*Reader, error) {
	w, err := wav.New(r)
	if err != nil {
		return nil, fmt.Errorf("wavfile: %w", err)
	}

	if w.NumChannels == 0 || w.SampleRate == 0 {
		return nil, fmt.Errorf("wavfile: invalid header (%d channels, %d Hz)", w.NumChannels, w.SampleRate)
	}
	switch {
	case w.AudioFormat == 1 && (w.BitsPerSample == 8 || w.BitsPerSample == 16):
	case w.AudioFormat == 3 && w.BitsPerSample == 32:
	default:
		return nil, fmt.Errorf("%w: format %d, %d bits", ErrUnsupportedFormat, w.AudioFormat, w.BitsPerSample)
	}

	channels := int(w.NumChannels)
	return &Reader{
		w:         w,
		channels:  channels,
		remaining: w.Samples - w.Samples%channels,
	}, nil
}

// SampleRate returns the file's sample rate in Hz.
func (r *Reader) SampleRate() float64 {
	return float64(r.w.SampleRate)
}

// Channels returns the number of interleaved channels in the file.
func (r *Reader) Channels() int {
	return r.channels
}

// Frames returns the number of mono samples left to read.
func (r *Reader) Frames() int {
	return r.remaining / r.channels
}

// ReadChunk implements capture.ChunkReader.
func (r *Reader) ReadChunk(dst []float32) (int, error) {
	if r.remaining == 0 {
		return 0, io.EOF
	}

	frames := min(len(dst), r.remaining/r.channels)
	if frames == 0 {
		return 0, io.EOF
	}

	data, err := r.w.ReadSamples(frames * r.channels)
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			err = io.EOF
		}
		r.remaining = 0
		return 0, err
	}
	r.remaining -= frames * r.channels

	switch d := data.(type) {
	case []uint8:
		mixdown(dst[:frames], d, r.channels, func(v uint8) float32 { return (float32(v) - 128) / 128 })
	case []int16:
		mixdown(dst[:frames], d, r.channels, func(v int16) float32 { return float32(v) / -math.MinInt16 })
	case []float32:
		mixdown(dst[:frames], d, r.channels, func(v float32) float32 { return v })
	default:
		return 0, fmt.Errorf("%w: %T", ErrUnsupportedFormat, d)
	}

	return frames, nil
}

// Close closes the underlying file when the reader was opened by Open.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}

func mixdown[T uint8 | int16 | float32](dst []float32, src []T, channels int, conv func(T) float32) {
	if channels == 1 {
		for i, v := range src {
			dst[i] = conv(v)
		}
		return
	}

	scale := 1 / float32(channels)
	for i := range dst {
		var sum float32
		for _, v := range src[i*channels : (i+1)*channels] {
			sum += conv(v)
		}
		dst[i] = sum * scale
	}
}

// Open opens the WAV file at path.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("wavfile: %w", err)
	}

	r, err := NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	r.closer = f

	return r, nil
}

// New returns a source playing the WAV file at path in chunks of frameSize.
func New(path string, frameSize int, opts ...capture.PumpOption) (*capture.Pump, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}

	p, err := capture.NewPump(r, r.SampleRate(), frameSize, opts...)
	if err != nil {
		_ = r.Close()
		return nil, err
	}

	return p, nil
}
