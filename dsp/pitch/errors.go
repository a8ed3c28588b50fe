package pitch

import "errors"

var (
	// ErrInvalidSampleRate is returned for a non-positive or non-finite rate.
	ErrInvalidSampleRate = errors.New("pitch: sample rate must be positive and finite")

	// ErrInvalidFrameSize is returned for a frame size below 2.
	ErrInvalidFrameSize = errors.New("pitch: frame size must be >= 2")

	// ErrInvalidRange is returned for an empty or non-finite frequency range.
	ErrInvalidRange = errors.New("pitch: invalid frequency range")

	// ErrFrameLength is returned by Detect for a frame of the wrong length.
	ErrFrameLength = errors.New("pitch: frame length mismatch")
)
