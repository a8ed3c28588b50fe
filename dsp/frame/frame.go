package frame

import (
	"sync"
	"time"
)

// Frame is one capture period worth of mono samples.
//
// A Frame must not be modified after it has been sent.
type Frame struct {
	// Samples holds the audio, nominally in [-1, 1].
	Samples []float64

	// SampleRate is the capture rate in Hz.
	SampleRate float64

	// Seq numbers frames in capture order, starting at 1.
	Seq uint64

	// Captured is the wall-clock time the callback delivered the frame.
	Captured time.Time
}

// Duration returns the real-time length of the frame.
func (f *Frame) Duration() time.Duration {
	if f == nil || f.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(f.Samples)) / f.SampleRate * float64(time.Second))
}

// Pool recycles frames of one fixed length so that the capture callback does
// not allocate in steady state.
type Pool struct {
	size int
	pool sync.Pool
}

// NewPool returns a Pool handing out frames with size samples.
func NewPool(size int) *Pool {
	if size < 0 {
		size = 0
	}
	p := &Pool{size: size}
	p.pool.New = func() any {
		return &Frame{Samples: make([]float64, p.size)}
	}
	return p
}

// Size returns the frame length handed out by the pool.
func (p *Pool) Size() int {
	return p.size
}

// Get returns a frame with len(Samples) == Size(). Sample contents are
// unspecified; metadata is cleared.
func (p *Pool) Get() *Frame {
	f := p.pool.Get().(*Frame)
	f.SampleRate = 0
	f.Seq = 0
	f.Captured = time.Time{}
	return f
}

// Put returns f to the pool. Frames of a different length are discarded.
// The caller must not use f after calling Put.
func (p *Pool) Put(f *Frame) {
	if f == nil || len(f.Samples) != p.size {
		return
	}
	p.pool.Put(f)
}
