// Package capture defines the contract between audio sources and the frame
// queue.
//
// A [Source] calls a [Callback] once per captured chunk from its own
// goroutine. The callback must return quickly; it never blocks and never
// analyses. [Bridge] is the standard callback: it copies the chunk into a
// pooled [frame.Frame] and hands it to the queue.
package capture

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/cwbudde/algo-tuner/dsp/core"
	"github.com/cwbudde/algo-tuner/dsp/frame"
)

// Action tells a source what to do after a callback.
type Action int

const (
	// Continue keeps capturing.
	Continue Action = iota
	// Stop asks the source to stop delivering chunks.
	Stop
)

func (a Action) String() string {
	if a == Stop {
		return "stop"
	}
	return "continue"
}

// Callback receives one chunk of mono samples. The slice is only valid for
// the duration of the call.
type Callback func(samples []float32) Action

// Source produces fixed-size chunks of mono audio.
type Source interface {
	// Start begins delivery. Start returns once delivery is running;
	// chunks arrive on a goroutine owned by the source.
	Start(cb Callback) error

	// Active reports whether the source may still deliver chunks. It turns
	// false after Stop, a Stop action, end of input or a stream failure.
	Active() bool

	// Stop ends delivery. It is safe to call more than once.
	Stop() error

	// Close releases the source. It implies Stop.
	Close() error

	SampleRate() float64
	FrameSize() int
}

// Bridge converts chunks into frames and sends them to a queue.
type Bridge struct {
	queue      *frame.Queue
	pool       *frame.Pool
	sampleRate float64
	now        func() time.Time

	// seq is touched by the producer goroutine only.
	seq     uint64
	dropped atomic.Uint64
}

// NewBridge returns a bridge feeding queue with frames from pool.
func NewBridge(queue *frame.Queue, pool *frame.Pool, sampleRate float64) (*Bridge, error) {
	switch {
	case queue == nil:
		return nil, errors.New("capture: nil queue")
	case pool == nil || pool.Size() == 0:
		return nil, errors.New("capture: frame pool must hand out non-empty frames")
	case sampleRate <= 0:
		return nil, errors.New("capture: sample rate must be > 0")
	}

	return &Bridge{
		queue:      queue,
		pool:       pool,
		sampleRate: sampleRate,
		now:        time.Now,
	}, nil
}

// Callback returns the bridge as a source callback.
func (b *Bridge) Callback() Callback {
	return b.Deliver
}

// Deliver sends one chunk. Chunks shorter than the frame size are zero
// padded, longer ones truncated.
//
// A closed queue always yields Stop. A full queue drops the chunk and yields
// Stop or Continue depending on the queue's overflow policy.
func (b *Bridge) Deliver(samples []float32) Action {
	f := b.pool.Get()
	n := core.Widen(f.Samples, samples)
	core.Zero(f.Samples[n:])

	b.seq++
	f.Seq = b.seq
	f.SampleRate = b.sampleRate
	f.Captured = b.now()

	err := b.queue.Send(f)
	if err == nil {
		return Continue
	}

	b.pool.Put(f)

	if errors.Is(err, frame.ErrFull) {
		b.dropped.Add(1)
		if b.queue.Policy() == frame.OverflowDropNewest {
			return Continue
		}
	}

	return Stop
}

// Dropped returns the number of chunks rejected because the queue was full.
func (b *Bridge) Dropped() uint64 {
	return b.dropped.Load()
}

// Delivered returns the number of chunks seen so far. Only the producer
// goroutine may call it while capture is running.
func (b *Bridge) Delivered() uint64 {
	return b.seq
}
