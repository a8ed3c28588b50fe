// Package observe provides the tuner's OpenTelemetry metrics and the
// Prometheus exporter bridge.
//
// Tests should use [NewMetrics] with a ManualReader-backed provider to avoid
// cross-test pollution; the command wires [InitProvider] and serves the
// default Prometheus registry.
package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/cwbudde/algo-tuner/dsp/frame"
	"github.com/cwbudde/algo-tuner/tuner"
)

// meterName is the instrumentation scope name used for all tuner metrics.
const meterName = "github.com/cwbudde/algo-tuner"

// Metrics holds the metric instruments of the analysis pipeline. It
// implements [tuner.Observer].
type Metrics struct {
	meter metric.Meter

	// FramesAnalyzed counts frames taken off the queue and analysed.
	FramesAnalyzed metric.Int64Counter

	// PitchResults counts analysis outcomes. Attributes:
	//   attribute.Bool("detected", ...), attribute.String("reason", ...)
	PitchResults metric.Int64Counter

	// FramesOverBudget counts frames whose analysis took longer than the
	// frame's own duration.
	FramesOverBudget metric.Int64Counter

	// AnalysisDuration tracks per-frame analysis time.
	AnalysisDuration metric.Float64Histogram
}

var _ tuner.Observer = (*Metrics)(nil)

// durationBuckets are histogram boundaries in seconds around the 5 ms budget
// of a 256-sample frame at 48 kHz.
var durationBuckets = []float64{
	0.00001, 0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025,
}

// NewMetrics creates a fully initialised [Metrics] using mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{meter: m}

	if met.FramesAnalyzed, err = m.Int64Counter("tuner.frames.analyzed",
		metric.WithDescription("Frames analysed by the tuner loop."),
	); err != nil {
		return nil, err
	}
	if met.PitchResults, err = m.Int64Counter("tuner.pitch.detected",
		metric.WithDescription("Analysis outcomes by detection state and reason."),
	); err != nil {
		return nil, err
	}
	if met.FramesOverBudget, err = m.Int64Counter("tuner.frames.over_budget",
		metric.WithDescription("Frames analysed slower than real time."),
	); err != nil {
		return nil, err
	}
	if met.AnalysisDuration, err = m.Float64Histogram("tuner.analysis.duration",
		metric.WithDescription("Time spent analysing one frame."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// FrameAnalyzed records one analysed frame.
func (m *Metrics) FrameAnalyzed(r tuner.Result, elapsed, budget time.Duration) {
	ctx := context.Background()

	m.FramesAnalyzed.Add(ctx, 1)
	m.PitchResults.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("detected", r.Detected()),
		attribute.String("reason", r.Estimate.Reason.String()),
	))
	m.AnalysisDuration.Record(ctx, elapsed.Seconds())
	if budget > 0 && elapsed > budget {
		m.FramesOverBudget.Add(ctx, 1)
	}
}

// QueueStats is the view of a frame queue the metrics need.
type QueueStats interface {
	Len() int
	Stats() frame.Stats
}

// WatchQueue registers observable instruments reading q at collection time:
// the drop counter tuner.frames.dropped and the depth gauge
// tuner.queue.depth.
func (m *Metrics) WatchQueue(q QueueStats) error {
	dropped, err := m.meter.Int64ObservableCounter("tuner.frames.dropped",
		metric.WithDescription("Frames rejected because the queue was full."),
	)
	if err != nil {
		return err
	}
	depth, err := m.meter.Int64ObservableGauge("tuner.queue.depth",
		metric.WithDescription("Frames waiting for analysis."),
	)
	if err != nil {
		return err
	}

	_, err = m.meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		o.ObserveInt64(dropped, int64(q.Stats().Dropped))
		o.ObserveInt64(depth, int64(q.Len()))
		return nil
	}, dropped, depth)
	return err
}
