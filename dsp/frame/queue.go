package frame

import (
	"context"
	"fmt"
	"math/bits"
	"sync/atomic"
)

// OverflowPolicy selects what the producer does after a frame was rejected
// because the ring is full. The rejected frame itself is always dropped.
type OverflowPolicy int

const (
	// OverflowStop asks the capture source to stop.
	OverflowStop OverflowPolicy = iota

	// OverflowDropNewest discards the frame and keeps capturing.
	OverflowDropNewest
)

// String returns the configuration name of the policy.
func (p OverflowPolicy) String() string {
	switch p {
	case OverflowStop:
		return "stop"
	case OverflowDropNewest:
		return "drop-newest"
	default:
		return "unknown"
	}
}

// ParseOverflowPolicy resolves "stop" or "drop-newest". The empty string
// maps to OverflowStop.
func ParseOverflowPolicy(name string) (OverflowPolicy, error) {
	switch name {
	case "", "stop":
		return OverflowStop, nil
	case "drop-newest":
		return OverflowDropNewest, nil
	default:
		return OverflowStop, fmt.Errorf("frame: unknown overflow policy %q", name)
	}
}

// QueueOption configures a Queue.
type QueueOption func(*Queue)

// WithOverflowPolicy sets the overflow policy. The default is OverflowStop.
func WithOverflowPolicy(p OverflowPolicy) QueueOption {
	return func(q *Queue) {
		q.policy = p
	}
}

// Stats holds queue counters.
type Stats struct {
	Sent     uint64
	Received uint64
	Dropped  uint64
}

// Queue is a bounded lock-free ring for exactly one producer goroutine and
// one consumer goroutine.
type Queue struct {
	slots  []*Frame
	mask   uint64
	policy OverflowPolicy

	head atomic.Uint64 // next slot to read, owned by the consumer
	tail atomic.Uint64 // next slot to write, owned by the producer

	closed atomic.Bool
	wake   chan struct{}

	sent     atomic.Uint64
	received atomic.Uint64
	dropped  atomic.Uint64
}

// NewQueue returns a queue holding at least capacity frames. The capacity is
// rounded up to the next power of two.
func NewQueue(capacity int, opts ...QueueOption) (*Queue, error) {
	if capacity < 1 {
		return nil, ErrInvalidCapacity
	}

	size := nextPowerOf2(capacity)
	q := &Queue{
		slots: make([]*Frame, size),
		mask:  uint64(size - 1),
		wake:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(q)
		}
	}

	return q, nil
}

// Send enqueues f without blocking. It returns ErrClosed after Close and
// ErrFull when no slot is free; in both cases ownership of f stays with the
// caller.
func (q *Queue) Send(f *Frame) error {
	if q.closed.Load() {
		return ErrClosed
	}

	tail := q.tail.Load()
	if tail-q.head.Load() == uint64(len(q.slots)) {
		q.dropped.Add(1)
		return ErrFull
	}

	q.slots[tail&q.mask] = f
	q.tail.Store(tail + 1)
	q.sent.Add(1)
	q.notify()

	return nil
}

// TryReceive dequeues the oldest frame. It never blocks; ok is false when the
// queue is empty.
func (q *Queue) TryReceive() (f *Frame, ok bool) {
	head := q.head.Load()
	if head == q.tail.Load() {
		return nil, false
	}

	idx := head & q.mask
	f = q.slots[idx]
	q.slots[idx] = nil
	q.head.Store(head + 1)
	q.received.Add(1)

	return f, true
}

// Wait blocks until a frame is queued, the queue is closed and drained, or ctx
// is done. It returns nil when a frame is available, ErrClosed when the queue
// is closed and empty, and ctx.Err() on cancellation.
func (q *Queue) Wait(ctx context.Context) error {
	for {
		if q.Len() > 0 {
			return nil
		}
		if q.closed.Load() {
			return ErrClosed
		}

		select {
		case <-q.wake:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close marks the consumer side as gone. Later Sends fail with ErrClosed;
// frames already queued can still be received.
func (q *Queue) Close() {
	if q.closed.CompareAndSwap(false, true) {
		q.notify()
	}
}

// Closed reports whether Close has been called.
func (q *Queue) Closed() bool {
	return q.closed.Load()
}

// Len returns the number of queued frames.
func (q *Queue) Len() int {
	return int(q.tail.Load() - q.head.Load())
}

// Cap returns the ring size.
func (q *Queue) Cap() int {
	return len(q.slots)
}

// Policy returns the configured overflow policy.
func (q *Queue) Policy() OverflowPolicy {
	return q.policy
}

// Stats returns a snapshot of the queue counters.
func (q *Queue) Stats() Stats {
	return Stats{
		Sent:     q.sent.Load(),
		Received: q.received.Load(),
		Dropped:  q.dropped.Load(),
	}
}

func (q *Queue) notify() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}
