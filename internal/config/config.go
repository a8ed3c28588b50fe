// Package config defines the tuner's YAML configuration and its loader.
package config

import (
	"log/slog"
	"time"
)

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Level converts l to a slog level. Unknown values map to info.
func (l LogLevel) Level() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SourceKind selects the capture source.
type SourceKind string

const (
	SourcePortAudio SourceKind = "portaudio"
	SourceWAV       SourceKind = "wav"
	SourceSine      SourceKind = "sine"
)

// IsValid reports whether k is a known source kind.
func (k SourceKind) IsValid() bool {
	switch k {
	case SourcePortAudio, SourceWAV, SourceSine:
		return true
	}
	return false
}

// WaitMode selects how the analysis loop idles on an empty queue.
type WaitMode string

const (
	WaitPoll  WaitMode = "poll"
	WaitBlock WaitMode = "block"
)

// IsValid reports whether m is a known wait mode.
func (m WaitMode) IsValid() bool {
	return m == WaitPoll || m == WaitBlock
}

// OutputFormat selects the console sink.
type OutputFormat string

const (
	OutputPlain OutputFormat = "plain"
	OutputColor OutputFormat = "color"
	OutputNone  OutputFormat = "none"
)

// IsValid reports whether f is a known output format.
func (f OutputFormat) IsValid() bool {
	switch f {
	case OutputPlain, OutputColor, OutputNone:
		return true
	}
	return false
}

// Config is the top-level configuration.
type Config struct {
	LogLevel LogLevel `yaml:"log_level"`

	// SampleRate is the capture rate in Hz. Zero leaves it to the source.
	SampleRate float64 `yaml:"sample_rate"`

	// FrameSize is the number of samples per analysis frame.
	FrameSize int `yaml:"frame_size"`

	Source   SourceConfig   `yaml:"source"`
	Queue    QueueConfig    `yaml:"queue"`
	Detector DetectorConfig `yaml:"detector"`
	Output   OutputConfig   `yaml:"output"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// SourceConfig describes where samples come from.
type SourceConfig struct {
	Kind SourceKind `yaml:"kind"`

	// Device is matched against input device names. Empty selects the
	// default input.
	Device string `yaml:"device"`

	// Path is the WAV file for kind wav.
	Path string `yaml:"path"`

	Frequency float64       `yaml:"frequency"`
	Amplitude float64       `yaml:"amplitude"`
	Duration  time.Duration `yaml:"duration"`

	// Harmonics are overtone amplitudes relative to the fundamental,
	// starting at the second harmonic.
	Harmonics []float64 `yaml:"harmonics"`

	// Noise is the peak amplitude of white noise mixed into the tone.
	Noise float64 `yaml:"noise"`

	// Realtime paces file and synthetic sources at wall-clock rate.
	Realtime bool `yaml:"realtime"`
}

// QueueConfig sizes the frame channel.
type QueueConfig struct {
	Capacity int      `yaml:"capacity"`
	Overflow string   `yaml:"overflow"`
	Wait     WaitMode `yaml:"wait"`
}

// DetectorConfig tunes pitch estimation.
type DetectorConfig struct {
	Method       string  `yaml:"method"`
	Window       string  `yaml:"window"`
	Interpolate  bool    `yaml:"interpolate"`
	RemoveDC     bool    `yaml:"remove_dc"`
	MinFrequency float64 `yaml:"min_frequency"`
	MaxFrequency float64 `yaml:"max_frequency"`

	// SilenceThresholdDB gates quiet frames. Zero disables the gate.
	SilenceThresholdDB float64 `yaml:"silence_threshold_db"`

	ReferencePitch float64 `yaml:"reference_pitch"`
}

// OutputConfig selects the result sinks.
type OutputConfig struct {
	Format      OutputFormat `yaml:"format"`
	ShowNoPitch bool         `yaml:"show_no_pitch"`
	MIDIPath    string       `yaml:"midi_path"`
	MIDIChannel int          `yaml:"midi_channel"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	// Listen is the HTTP address for /metrics. Empty disables it.
	Listen string `yaml:"listen"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		LogLevel:   LogInfo,
		SampleRate: 48000,
		FrameSize:  256,
		Source: SourceConfig{
			Kind:      SourcePortAudio,
			Frequency: 440,
			Amplitude: 0.8,
			Realtime:  true,
		},
		Queue: QueueConfig{
			Capacity: 64,
			Overflow: "stop",
			Wait:     WaitPoll,
		},
		Detector: DetectorConfig{
			Method:         "direct",
			Window:         "rectangular",
			ReferencePitch: 440,
		},
		Output: OutputConfig{
			Format: OutputPlain,
		},
	}
}
