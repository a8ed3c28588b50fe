// Command tuner prints the musical note of a live or recorded audio signal,
// one line per analysed frame.
//
// Usage:
//
//	tuner [flags]
//
// Examples:
//
//	tuner                          # default input device
//	tuner -device "USB Audio"
//	tuner -file guitar.wav
//	tuner -freq 196 -config tuner.yaml
//	tuner -list-devices
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cwbudde/algo-tuner/internal/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to a YAML configuration file (built-in defaults when empty)")
	source := flag.String("source", "", "capture source: portaudio, wav or sine")
	device := flag.String("device", "", "input device name or unique prefix")
	file := flag.String("file", "", "WAV file to analyse (implies -source wav)")
	freq := flag.Float64("freq", 0, "test tone frequency in Hz (implies -source sine)")
	listDevices := flag.Bool("list-devices", false, "list input devices and exit")
	logLevel := flag.String("log-level", "", "debug, info, warn or error")
	metricsAddr := flag.String("metrics", "", "serve Prometheus metrics on this address, e.g. :9464")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tuner: %v\n", err)
		return 2
	}

	applyFlags(cfg, flagOverrides{
		source:   *source,
		device:   *device,
		file:     *file,
		freq:     *freq,
		logLevel: *logLevel,
		metrics:  *metricsAddr,
	})
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "tuner: %v\n", err)
		return 2
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel.Level()}))
	slog.SetDefault(logger)

	if *listDevices {
		if err := printDevices(os.Stdout); err != nil {
			slog.Error("failed to list input devices", "err", err)
			return 1
		}
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, err := newPipeline(cfg, os.Stdout, logger)
	if err != nil {
		slog.Error("failed to initialise capture", "err", err)
		return 1
	}
	defer func() {
		if err := p.Close(); err != nil {
			slog.Warn("shutdown error", "err", err)
		}
	}()

	slog.Info("tuner started",
		"source", cfg.Source.Kind,
		"sample_rate", p.source.SampleRate(),
		"frame_size", p.source.FrameSize(),
		"method", cfg.Detector.Method,
	)

	if err := p.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}

	slog.Info("tuner stopped", "dropped_frames", p.queue.Stats().Dropped)
	return 0
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

type flagOverrides struct {
	source   string
	device   string
	file     string
	freq     float64
	logLevel string
	metrics  string
}

// applyFlags lets command-line flags win over the configuration file.
func applyFlags(cfg *config.Config, f flagOverrides) {
	if f.source != "" {
		cfg.Source.Kind = config.SourceKind(f.source)
	}
	if f.device != "" {
		cfg.Source.Device = f.device
	}
	if f.file != "" {
		cfg.Source.Path = f.file
		if f.source == "" {
			cfg.Source.Kind = config.SourceWAV
		}
	}
	if f.freq > 0 {
		cfg.Source.Frequency = f.freq
		if f.source == "" && f.file == "" {
			cfg.Source.Kind = config.SourceSine
		}
	}
	if f.logLevel != "" {
		cfg.LogLevel = config.LogLevel(f.logLevel)
	}
	if f.metrics != "" {
		cfg.Metrics.Listen = f.metrics
	}
}
