package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/cwbudde/algo-tuner/internal/config"
)

func TestLoadFromReader_EmptyYieldsDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := config.LoadFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	def := config.Default()
	if !reflect.DeepEqual(cfg, def) {
		t.Errorf("got %+v, want defaults %+v", cfg, def)
	}
}

func TestLoadFromReader_OverridesKeepDefaults(t *testing.T) {
	t.Parallel()
	yaml := `
frame_size: 1024
source:
  kind: sine
  frequency: 196
  duration: 1500ms
  harmonics: [0.5, 0.25]
  noise: 0.05
detector:
  method: fft
  window: hann
  interpolate: true
metrics:
  listen: ":9464"
`
	cfg, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.FrameSize != 1024 {
		t.Errorf("frame_size = %d, want 1024", cfg.FrameSize)
	}
	if cfg.Source.Kind != config.SourceSine || cfg.Source.Frequency != 196 {
		t.Errorf("source = %+v", cfg.Source)
	}
	if cfg.Source.Duration != 1500*time.Millisecond {
		t.Errorf("duration = %s, want 1.5s", cfg.Source.Duration)
	}
	if len(cfg.Source.Harmonics) != 2 || cfg.Source.Harmonics[1] != 0.25 || cfg.Source.Noise != 0.05 {
		t.Errorf("tone shape = %v noise %g", cfg.Source.Harmonics, cfg.Source.Noise)
	}
	if cfg.Source.Amplitude != 0.8 || !cfg.Source.Realtime {
		t.Errorf("defaults lost: %+v", cfg.Source)
	}
	if cfg.Detector.Method != "fft" || cfg.Detector.Window != "hann" || !cfg.Detector.Interpolate {
		t.Errorf("detector = %+v", cfg.Detector)
	}
	if cfg.Detector.ReferencePitch != 440 {
		t.Errorf("reference_pitch = %g, want default 440", cfg.Detector.ReferencePitch)
	}
	if cfg.SampleRate != 48000 || cfg.Queue.Capacity != 64 {
		t.Errorf("defaults lost: rate %g capacity %d", cfg.SampleRate, cfg.Queue.Capacity)
	}
	if cfg.Metrics.Listen != ":9464" {
		t.Errorf("metrics.listen = %q", cfg.Metrics.Listen)
	}
}

func TestLoadFromReader_UnknownField(t *testing.T) {
	t.Parallel()
	_, err := config.LoadFromReader(strings.NewReader("detector:\n  algorithm: yin\n"))
	if err == nil {
		t.Fatal("expected error for unknown field, got nil")
	}
	if !strings.Contains(err.Error(), "algorithm") {
		t.Errorf("error should name the field, got: %v", err)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		yaml   string
		substr string
	}{
		{"log level", "log_level: trace", "log_level"},
		{"frame size", "frame_size: 1", "frame_size"},
		{"negative rate", "sample_rate: -1", "sample_rate"},
		{"source kind", "source:\n  kind: jack", "source.kind"},
		{"wav without path", "source:\n  kind: wav", "source.path"},
		{"sine frequency", "source:\n  kind: sine\n  frequency: 0", "source.frequency"},
		{"sine amplitude", "source:\n  kind: sine\n  amplitude: 1.5", "source.amplitude"},
		{"noise", "source:\n  kind: sine\n  noise: 2", "source.noise"},
		{"capacity", "queue:\n  capacity: 0", "queue.capacity"},
		{"overflow", "queue:\n  overflow: drop-oldest", "queue.overflow"},
		{"wait", "queue:\n  wait: spin", "queue.wait"},
		{"method", "detector:\n  method: yin", "detector.method"},
		{"window", "detector:\n  window: kaiser", "detector.window"},
		{"range", "detector:\n  min_frequency: 500\n  max_frequency: 100", "detector.max_frequency"},
		{"silence", "detector:\n  silence_threshold_db: 3", "silence_threshold_db"},
		{"reference", "detector:\n  reference_pitch: 0", "reference_pitch"},
		{"format", "output:\n  format: json", "output.format"},
		{"midi channel", "output:\n  midi_channel: 16", "midi_channel"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := config.LoadFromReader(strings.NewReader(tc.yaml))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tc.substr) {
				t.Errorf("error should mention %q, got: %v", tc.substr, err)
			}
		})
	}
}

func TestLoadFromReader_AcceptsEveryWindow(t *testing.T) {
	t.Parallel()
	for _, name := range []string{"rectangular", "hann", "hamming", "blackman", "welch"} {
		cfg, err := config.LoadFromReader(strings.NewReader("detector:\n  window: " + name))
		if err != nil {
			t.Fatalf("window %q: %v", name, err)
		}
		if cfg.Detector.Window != name {
			t.Errorf("Window = %q, want %q", cfg.Detector.Window, name)
		}
	}
}

func TestValidate_JoinsErrors(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.FrameSize = 0
	cfg.Output.Format = "xml"
	err := config.Validate(cfg)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	for _, want := range []string{"frame_size", "output.format"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %q, got: %v", want, err)
		}
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "tuner.yaml")
	if err := os.WriteFile(path, []byte("log_level: debug\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LogLevel.Level() != slog.LevelDebug {
		t.Errorf("level = %v, want debug", cfg.LogLevel.Level())
	}

	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLogLevel(t *testing.T) {
	t.Parallel()
	tests := map[config.LogLevel]slog.Level{
		config.LogDebug: slog.LevelDebug,
		config.LogInfo:  slog.LevelInfo,
		config.LogWarn:  slog.LevelWarn,
		config.LogError: slog.LevelError,
		"":              slog.LevelInfo,
	}
	for l, want := range tests {
		if got := l.Level(); got != want {
			t.Errorf("%q.Level() = %v, want %v", l, got, want)
		}
	}
}
