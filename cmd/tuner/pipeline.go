package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-tuner/capture"
	"github.com/cwbudde/algo-tuner/capture/portaudio"
	"github.com/cwbudde/algo-tuner/capture/synth"
	"github.com/cwbudde/algo-tuner/capture/wavfile"
	"github.com/cwbudde/algo-tuner/dsp/frame"
	"github.com/cwbudde/algo-tuner/dsp/pitch"
	"github.com/cwbudde/algo-tuner/dsp/window"
	"github.com/cwbudde/algo-tuner/internal/config"
	"github.com/cwbudde/algo-tuner/internal/observe"
	"github.com/cwbudde/algo-tuner/music/note"
	"github.com/cwbudde/algo-tuner/sink"
	"github.com/cwbudde/algo-tuner/tuner"
)

const (
	defaultSynthRate = 48000
	shutdownTimeout  = 5 * time.Second
)

// pipeline owns every stage between the capture source and the sinks.
type pipeline struct {
	logger *slog.Logger

	source capture.Source
	queue  *frame.Queue
	bridge *capture.Bridge
	loop   *tuner.Loop

	metricsAddr     string
	metricsShutdown func(context.Context) error

	// closers run in reverse order on Close.
	closers []func() error
}

func newPipeline(cfg *config.Config, out io.Writer, logger *slog.Logger) (_ *pipeline, err error) {
	p := &pipeline{logger: logger, metricsAddr: cfg.Metrics.Listen}
	defer func() {
		if err != nil {
			_ = p.Close()
		}
	}()

	p.source, err = openSource(cfg, logger)
	if err != nil {
		return nil, err
	}
	p.closers = append(p.closers, p.source.Close)

	detector, err := newDetector(cfg.Detector, p.source.SampleRate(), p.source.FrameSize())
	if err != nil {
		return nil, err
	}

	policy, err := frame.ParseOverflowPolicy(cfg.Queue.Overflow)
	if err != nil {
		return nil, err
	}
	p.queue, err = frame.NewQueue(cfg.Queue.Capacity, frame.WithOverflowPolicy(policy))
	if err != nil {
		return nil, err
	}

	pool := frame.NewPool(p.source.FrameSize())
	p.bridge, err = capture.NewBridge(p.queue, pool, p.source.SampleRate())
	if err != nil {
		return nil, err
	}

	results, err := p.buildSinks(cfg.Output, out)
	if err != nil {
		return nil, err
	}

	opts := []tuner.Option{
		tuner.WithMapper(note.NewMapper(note.WithReference(cfg.Detector.ReferencePitch))),
		tuner.WithLogger(logger),
		tuner.WithFramePool(pool),
		tuner.WithReportNoPitch(true),
	}
	if cfg.Queue.Wait == config.WaitBlock {
		opts = append(opts, tuner.WithBlockingWait())
	}

	if p.metricsAddr != "" {
		p.metricsShutdown, err = observe.InitProvider(context.Background(), observe.ProviderConfig{})
		if err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}
		metrics, err := observe.NewMetrics(otel.GetMeterProvider())
		if err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}
		if err := metrics.WatchQueue(p.queue); err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}
		opts = append(opts, tuner.WithObserver(metrics))
	}

	p.loop, err = tuner.NewLoop(p.queue, detector, results, opts...)
	if err != nil {
		return nil, err
	}

	return p, nil
}

func openSource(cfg *config.Config, logger *slog.Logger) (capture.Source, error) {
	src := cfg.Source
	switch src.Kind {
	case config.SourcePortAudio:
		return portaudio.Open(cfg.FrameSize,
			portaudio.WithDevice(src.Device),
			portaudio.WithSampleRate(cfg.SampleRate),
			portaudio.WithLogger(logger),
		)
	case config.SourceWAV:
		return wavfile.New(src.Path, cfg.FrameSize, capture.WithRealtime(src.Realtime))
	case config.SourceSine:
		rate := cfg.SampleRate
		if rate == 0 {
			rate = defaultSynthRate
		}
		return synth.New(src.Frequency, rate, cfg.FrameSize,
			synth.WithAmplitude(src.Amplitude),
			synth.WithDuration(src.Duration),
			synth.WithRealtime(src.Realtime),
			synth.WithHarmonics(src.Harmonics...),
			synth.WithNoise(src.Noise, 1),
		)
	default:
		return nil, fmt.Errorf("unknown source kind %q", src.Kind)
	}
}

func newDetector(cfg config.DetectorConfig, sampleRate float64, frameSize int) (*pitch.Detector, error) {
	method, err := pitch.ParseMethod(cfg.Method)
	if err != nil {
		return nil, err
	}
	win, err := window.ParseType(cfg.Window)
	if err != nil {
		return nil, err
	}

	opts := []pitch.Option{
		pitch.WithMethod(method),
		pitch.WithWindow(win),
		pitch.WithFrequencyRange(cfg.MinFrequency, cfg.MaxFrequency),
	}
	if cfg.Interpolate {
		opts = append(opts, pitch.WithInterpolation())
	}
	if cfg.RemoveDC {
		opts = append(opts, pitch.WithDCRemoval())
	}
	if cfg.SilenceThresholdDB < 0 {
		opts = append(opts, pitch.WithSilenceThreshold(cfg.SilenceThresholdDB))
	}

	return pitch.NewDetector(sampleRate, frameSize, opts...)
}

// buildSinks assembles the text and MIDI outputs. The loop always reports
// frames without pitch so that a held MIDI note is released; text sinks drop
// them unless show_no_pitch is set.
func (p *pipeline) buildSinks(cfg config.OutputConfig, out io.Writer) (tuner.Sink, error) {
	var sinks sink.Multi

	var text tuner.Sink
	switch cfg.Format {
	case config.OutputPlain:
		text = sink.NewWriter(out)
	case config.OutputColor:
		text = sink.NewConsole(out)
	}
	if text != nil {
		if !cfg.ShowNoPitch {
			text = detectedOnly(text)
		}
		sinks = append(sinks, text)
	}

	if cfg.MIDIPath != "" {
		f, err := os.Create(cfg.MIDIPath)
		if err != nil {
			return nil, fmt.Errorf("midi output: %w", err)
		}
		p.closers = append(p.closers, f.Close)

		m, err := sink.NewMIDI(f, uint8(cfg.MIDIChannel))
		if err != nil {
			return nil, err
		}
		p.closers = append(p.closers, m.Close)
		sinks = append(sinks, m)
	}

	switch len(sinks) {
	case 0:
		return tuner.SinkFunc(func(tuner.Result) error { return nil }), nil
	case 1:
		return sinks[0], nil
	default:
		return sinks, nil
	}
}

func detectedOnly(s tuner.Sink) tuner.Sink {
	return tuner.SinkFunc(func(r tuner.Result) error {
		if !r.Detected() {
			return nil
		}
		return s.Emit(r)
	})
}

// Run starts capture and supervises the analysis loop and the metrics
// endpoint. It returns when the source is exhausted, ctx ends or a stage
// fails.
func (p *pipeline) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := p.source.Start(p.bridge.Callback()); err != nil {
		return fmt.Errorf("start capture: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		err := p.loop.Run(gctx, p.source)
		if serr := p.source.Stop(); serr != nil {
			p.logger.Warn("stopping capture failed", "err", serr)
		}
		if err != nil {
			return err
		}
		if e, ok := p.source.(interface{ Err() error }); ok {
			return e.Err()
		}
		return nil
	})

	if p.metricsAddr != "" {
		srv := &http.Server{
			Addr:              p.metricsAddr,
			Handler:           metricsMux(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			p.logger.Info("serving metrics", "addr", p.metricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer scancel()
			return srv.Shutdown(sctx)
		})
	}

	return g.Wait()
}

func metricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// Close releases the source, flushes the outputs and shuts the meter
// provider down.
func (p *pipeline) Close() error {
	var errs []error
	for i := len(p.closers) - 1; i >= 0; i-- {
		if err := p.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	p.closers = nil

	if p.metricsShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := p.metricsShutdown(ctx); err != nil {
			errs = append(errs, err)
		}
		p.metricsShutdown = nil
	}

	return errors.Join(errs...)
}
