package tuner

import "errors"

var (
	// ErrNilFrame is returned by Analyze for a nil frame.
	ErrNilFrame = errors.New("tuner: nil frame")

	// ErrSampleRateMismatch is returned by Analyze when a frame was captured
	// at a rate the detector was not built for.
	ErrSampleRateMismatch = errors.New("tuner: frame sample rate does not match detector")

	// ErrAlreadyRunning is returned when Run is called twice.
	ErrAlreadyRunning = errors.New("tuner: loop already running")
)
