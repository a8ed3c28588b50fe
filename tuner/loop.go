package tuner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/cwbudde/algo-tuner/dsp/frame"
	"github.com/cwbudde/algo-tuner/dsp/pitch"
	"github.com/cwbudde/algo-tuner/music/note"
)

const minWaitInterval = 5 * time.Millisecond

// Option configures a Loop.
type Option func(*Loop)

// WithMapper sets the note mapper. The default uses A4 = 440 Hz.
func WithMapper(m *note.Mapper) Option {
	return func(l *Loop) {
		if m != nil {
			l.mapper = m
		}
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithObserver registers an observer for per-frame timings.
func WithObserver(o Observer) Option {
	return func(l *Loop) {
		l.observer = o
	}
}

// WithBlockingWait parks the loop on the queue's wake signal while idle
// instead of polling. The source's activity is still checked at least once
// per frame duration.
func WithBlockingWait() Option {
	return func(l *Loop) {
		l.blocking = true
	}
}

// WithFramePool returns analysed frames to pool.
func WithFramePool(pool *frame.Pool) Option {
	return func(l *Loop) {
		l.pool = pool
	}
}

// WithReportNoPitch controls whether frames without a pitch reach the sink.
// They are not reported by default.
func WithReportNoPitch(report bool) Option {
	return func(l *Loop) {
		l.reportNoPitch = report
	}
}

// Loop is the consumer side of the frame queue.
type Loop struct {
	queue    *frame.Queue
	detector *pitch.Detector
	sink     Sink

	mapper        *note.Mapper
	logger        *slog.Logger
	observer      Observer
	pool          *frame.Pool
	blocking      bool
	reportNoPitch bool

	state   atomic.Int32
	running atomic.Bool
}

// NewLoop returns a loop reading from queue. detector and sink are required.
func NewLoop(queue *frame.Queue, detector *pitch.Detector, sink Sink, opts ...Option) (*Loop, error) {
	switch {
	case queue == nil:
		return nil, errors.New("tuner: nil queue")
	case detector == nil:
		return nil, errors.New("tuner: nil detector")
	case sink == nil:
		return nil, errors.New("tuner: nil sink")
	}

	l := &Loop{
		queue:    queue,
		detector: detector,
		sink:     sink,
		mapper:   note.NewMapper(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}

	return l, nil
}

// State returns the current state. It is safe to call from any goroutine.
func (l *Loop) State() State {
	return State(l.state.Load())
}

func (l *Loop) setState(s State) {
	l.state.Store(int32(s))
}

// Analyze runs one frame through the detector and the note mapper. It does
// not touch the queue or the sink.
func (l *Loop) Analyze(f *frame.Frame) (Result, error) {
	if f == nil {
		return Result{}, ErrNilFrame
	}
	if f.SampleRate != 0 && f.SampleRate != l.detector.SampleRate() {
		return Result{}, fmt.Errorf("%w: frame %g Hz, detector %g Hz",
			ErrSampleRateMismatch, f.SampleRate, l.detector.SampleRate())
	}

	est, err := l.detector.Detect(f.Samples)
	if err != nil {
		return Result{}, fmt.Errorf("tuner: frame %d: %w", f.Seq, err)
	}

	res := Result{Seq: f.Seq, Captured: f.Captured, Estimate: est}
	if est.Detected() {
		label, err := l.mapper.FromFrequency(est.Frequency)
		if err != nil {
			return Result{}, fmt.Errorf("tuner: frame %d: %w", f.Seq, err)
		}
		res.Label = label
	}

	return res, nil
}

// Run consumes frames until the source turns inactive, the queue is closed,
// a sink fails or ctx ends. The queue is then closed so that the producer
// stops, and the frames already queued are analysed before Run returns.
//
// Run returns ctx.Err() after cancellation, the sink error if emitting
// failed, and nil otherwise.
func (l *Loop) Run(ctx context.Context, activity Activity) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer l.running.Store(false)
	defer l.queue.Close()
	defer l.setState(StateStopped)

	if activity == nil {
		activity = ActivityFunc(func() bool { return true })
	}

	l.setState(StateIdle)
	l.logger.Debug("analysis loop started",
		"sample_rate", l.detector.SampleRate(),
		"frame_size", l.detector.FrameSize(),
		"blocking_wait", l.blocking,
	)

	for {
		// Closing before the drain bounds it by the queue capacity.
		if err := ctx.Err(); err != nil {
			l.queue.Close()
			if derr := l.drain(); derr != nil {
				return derr
			}
			l.logger.Debug("analysis loop cancelled", "err", err)
			return err
		}

		if f, ok := l.queue.TryReceive(); ok {
			if err := l.process(f); err != nil {
				return err
			}
			continue
		}

		if !activity.Active() || l.queue.Closed() {
			l.queue.Close()
			if err := l.drain(); err != nil {
				return err
			}
			l.logger.Debug("analysis loop stopped", "stats", l.queue.Stats())
			return nil
		}

		l.idle(ctx)
	}
}

func (l *Loop) idle(ctx context.Context) {
	if !l.blocking {
		runtime.Gosched()
		return
	}

	interval := time.Duration(float64(l.detector.FrameSize()) / l.detector.SampleRate() * float64(time.Second))
	interval = max(interval, minWaitInterval)

	waitCtx, cancel := context.WithTimeout(ctx, interval)
	defer cancel()

	// Timeouts and closure are re-checked by Run.
	_ = l.queue.Wait(waitCtx)
}

func (l *Loop) drain() error {
	for {
		f, ok := l.queue.TryReceive()
		if !ok {
			return nil
		}
		if err := l.process(f); err != nil {
			return err
		}
	}
}

func (l *Loop) process(f *frame.Frame) error {
	l.setState(StateProcessing)
	defer l.setState(StateIdle)

	start := time.Now()
	res, err := l.Analyze(f)
	elapsed := time.Since(start)
	budget := f.Duration()
	seq := f.Seq

	if l.pool != nil {
		l.pool.Put(f)
	}

	if err != nil {
		l.logger.Warn("frame skipped", "seq", seq, "err", err)
		return nil
	}

	if l.observer != nil {
		l.observer.FrameAnalyzed(res, elapsed, budget)
	}
	if budget > 0 && elapsed > budget {
		l.logger.Debug("frame analysis exceeded real-time budget",
			"seq", seq, "elapsed", elapsed, "budget", budget)
	}

	if !res.Detected() && !l.reportNoPitch {
		return nil
	}
	if err := l.sink.Emit(res); err != nil {
		return fmt.Errorf("tuner: sink: %w", err)
	}

	return nil
}
