package frame

import "errors"

var (
	// ErrFull is returned by Send when the ring has no free slot.
	ErrFull = errors.New("frame: queue full")

	// ErrClosed is returned by Send and Wait after Close.
	ErrClosed = errors.New("frame: queue closed")

	// ErrInvalidCapacity is returned by NewQueue for capacity < 1.
	ErrInvalidCapacity = errors.New("frame: capacity must be > 0")
)
