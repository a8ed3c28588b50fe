package capture

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// ErrStarted is returned by Start on a source that was already started.
var ErrStarted = errors.New("capture: source already started")

// ChunkReader fills dst with the next mono samples and returns how many were
// written. It returns io.EOF once the input is exhausted.
type ChunkReader interface {
	ReadChunk(dst []float32) (int, error)
}

// PumpOption configures a Pump.
type PumpOption func(*Pump)

// WithRealtime paces delivery at one chunk per chunk duration instead of as
// fast as the callback returns.
func WithRealtime(realtime bool) PumpOption {
	return func(p *Pump) {
		p.realtime = realtime
	}
}

// Pump drives a ChunkReader from its own goroutine and implements Source.
type Pump struct {
	reader     ChunkReader
	sampleRate float64
	frameSize  int
	realtime   bool

	active   atomic.Bool
	started  atomic.Bool
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	mu  sync.Mutex
	err error
}

var _ Source = (*Pump)(nil)

// NewPump returns a source delivering frameSize samples per callback.
func NewPump(reader ChunkReader, sampleRate float64, frameSize int, opts ...PumpOption) (*Pump, error) {
	switch {
	case reader == nil:
		return nil, errors.New("capture: nil reader")
	case sampleRate <= 0:
		return nil, fmt.Errorf("capture: sample rate must be > 0: %g", sampleRate)
	case frameSize < 1:
		return nil, fmt.Errorf("capture: frame size must be > 0: %d", frameSize)
	}

	p := &Pump{
		reader:     reader,
		sampleRate: sampleRate,
		frameSize:  frameSize,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}

	return p, nil
}

// Start implements Source.
func (p *Pump) Start(cb Callback) error {
	if cb == nil {
		return errors.New("capture: nil callback")
	}
	if !p.started.CompareAndSwap(false, true) {
		return ErrStarted
	}

	p.active.Store(true)
	go p.run(cb)

	return nil
}

func (p *Pump) run(cb Callback) {
	defer close(p.done)
	defer p.active.Store(false)

	buf := make([]float32, p.frameSize)

	var tick <-chan time.Time
	if p.realtime {
		period := time.Duration(float64(p.frameSize) / p.sampleRate * float64(time.Second))
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		n, err := p.reader.ReadChunk(buf)
		if n > 0 {
			clear(buf[n:])

			if tick != nil {
				select {
				case <-tick:
				case <-p.stop:
					return
				}
			} else {
				select {
				case <-p.stop:
					return
				default:
				}
			}

			if cb(buf) == Stop {
				return
			}
		}

		switch {
		case errors.Is(err, io.EOF):
			return
		case err != nil:
			p.setErr(err)
			return
		case n == 0:
			p.setErr(io.ErrNoProgress)
			return
		}
	}
}

func (p *Pump) setErr(err error) {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
}

// Err returns the read error that ended delivery, if any. End of input is
// not an error.
func (p *Pump) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Active implements Source.
func (p *Pump) Active() bool {
	return p.active.Load()
}

// Done is closed once the delivery goroutine has exited.
func (p *Pump) Done() <-chan struct{} {
	return p.done
}

// Stop implements Source. It waits for the delivery goroutine and must not
// be called from inside the callback.
func (p *Pump) Stop() error {
	p.stopOnce.Do(func() { close(p.stop) })
	if p.started.Load() {
		<-p.done
	}
	p.active.Store(false)
	return nil
}

// Close implements Source and closes the reader if it is an io.Closer.
func (p *Pump) Close() error {
	if err := p.Stop(); err != nil {
		return err
	}
	if c, ok := p.reader.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// SampleRate implements Source.
func (p *Pump) SampleRate() float64 { return p.sampleRate }

// FrameSize implements Source.
func (p *Pump) FrameSize() int { return p.frameSize }
