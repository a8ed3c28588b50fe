package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-tuner/dsp/frame"
	"github.com/cwbudde/algo-tuner/dsp/pitch"
	"github.com/cwbudde/algo-tuner/dsp/window"
)

// Load reads the YAML configuration file at path and returns a validated
// [Config]. Keys missing from the file keep their [Default] values.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r on top of [Default] and
// validates the result. An empty document yields the defaults.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.LogLevel != "" && !cfg.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}
	if cfg.SampleRate < 0 || math.IsNaN(cfg.SampleRate) || math.IsInf(cfg.SampleRate, 0) {
		errs = append(errs, fmt.Errorf("sample_rate %g must be a finite value >= 0", cfg.SampleRate))
	}
	if cfg.FrameSize < 2 {
		errs = append(errs, fmt.Errorf("frame_size %d must be >= 2", cfg.FrameSize))
	}

	// Source
	src := cfg.Source
	if !src.Kind.IsValid() {
		errs = append(errs, fmt.Errorf("source.kind %q is invalid; valid values: portaudio, wav, sine", src.Kind))
	}
	if src.Kind == SourceWAV && src.Path == "" {
		errs = append(errs, errors.New("source.path is required when source.kind is wav"))
	}
	if src.Kind == SourceSine {
		if !(src.Frequency > 0) {
			errs = append(errs, fmt.Errorf("source.frequency %g must be > 0", src.Frequency))
		}
		if !(src.Amplitude > 0 && src.Amplitude <= 1) {
			errs = append(errs, fmt.Errorf("source.amplitude %g is out of range (0, 1]", src.Amplitude))
		}
		for i, h := range src.Harmonics {
			if math.IsNaN(h) || math.IsInf(h, 0) {
				errs = append(errs, fmt.Errorf("source.harmonics[%d] must be finite", i))
			}
		}
		if src.Noise < 0 || src.Noise > 1 {
			errs = append(errs, fmt.Errorf("source.noise %g is out of range [0, 1]", src.Noise))
		}
	}
	if src.Duration < 0 {
		errs = append(errs, fmt.Errorf("source.duration %s must not be negative", src.Duration))
	}

	// Queue
	if cfg.Queue.Capacity <= 0 {
		errs = append(errs, fmt.Errorf("queue.capacity %d must be > 0", cfg.Queue.Capacity))
	}
	if _, err := frame.ParseOverflowPolicy(cfg.Queue.Overflow); err != nil {
		errs = append(errs, fmt.Errorf("queue.overflow %q is invalid; valid values: stop, drop-newest", cfg.Queue.Overflow))
	}
	if cfg.Queue.Wait != "" && !cfg.Queue.Wait.IsValid() {
		errs = append(errs, fmt.Errorf("queue.wait %q is invalid; valid values: poll, block", cfg.Queue.Wait))
	}

	// Detector
	det := cfg.Detector
	if _, err := pitch.ParseMethod(det.Method); err != nil {
		errs = append(errs, fmt.Errorf("detector.method %q is invalid; valid values: direct, fft", det.Method))
	}
	if _, err := window.ParseType(det.Window); err != nil {
		errs = append(errs, fmt.Errorf("detector.window: %w", err))
	}
	if det.MinFrequency < 0 || det.MaxFrequency < 0 {
		errs = append(errs, errors.New("detector.min_frequency and detector.max_frequency must not be negative"))
	}
	if det.MaxFrequency > 0 && det.MaxFrequency <= det.MinFrequency {
		errs = append(errs, fmt.Errorf("detector.max_frequency %g must exceed detector.min_frequency %g", det.MaxFrequency, det.MinFrequency))
	}
	if det.SilenceThresholdDB > 0 {
		errs = append(errs, fmt.Errorf("detector.silence_threshold_db %g must be <= 0", det.SilenceThresholdDB))
	}
	if !(det.ReferencePitch > 0) || math.IsInf(det.ReferencePitch, 0) {
		errs = append(errs, fmt.Errorf("detector.reference_pitch %g must be > 0", det.ReferencePitch))
	}

	// Output
	if !cfg.Output.Format.IsValid() {
		errs = append(errs, fmt.Errorf("output.format %q is invalid; valid values: plain, color, none", cfg.Output.Format))
	}
	if cfg.Output.MIDIChannel < 0 || cfg.Output.MIDIChannel > 15 {
		errs = append(errs, fmt.Errorf("output.midi_channel %d is out of range [0, 15]", cfg.Output.MIDIChannel))
	}

	return errors.Join(errs...)
}
