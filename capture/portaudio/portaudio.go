// Package portaudio captures mono float32 audio from a PortAudio input
// device.
//
// PortAudio calls the stream callback on its own thread with exactly
// FrameSize samples. A Stop action from the capture callback stops the
// stream asynchronously, because a stream cannot be stopped from inside its
// own callback. A device that stops delivering for longer than the stall
// timeout is reported as inactive.
package portaudio

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	pa "github.com/gordonklaus/portaudio"

	"github.com/cwbudde/algo-tuner/capture"
)

// ErrNoDevice is returned when no usable input device exists.
var ErrNoDevice = errors.New("portaudio: no input device")

const defaultStallTimeout = time.Second

// Device describes an input device.
type Device struct {
	Name              string
	HostAPI           string
	Channels          int
	DefaultSampleRate float64
	Default           bool
}

// Option configures a Source.
type Option func(*Source)

// WithDevice selects an input device by name, case-insensitively. A name
// that matches a prefix of exactly one device is accepted.
func WithDevice(name string) Option {
	return func(s *Source) {
		s.deviceName = name
	}
}

// WithSampleRate overrides the device's default sample rate.
func WithSampleRate(rate float64) Option {
	return func(s *Source) {
		s.sampleRate = rate
	}
}

// WithStallTimeout sets how long the callback may stay silent before the
// source reports itself inactive.
func WithStallTimeout(d time.Duration) Option {
	return func(s *Source) {
		s.stallTimeout = d
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Source) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Source is a live capture source.
type Source struct {
	deviceName   string
	sampleRate   float64
	frameSize    int
	stallTimeout time.Duration
	logger       *slog.Logger

	device *pa.DeviceInfo
	stream *pa.Stream
	cb     capture.Callback

	active    atomic.Bool
	lastChunk atomic.Int64 // unix nanoseconds
	overflows atomic.Uint64
	stopOnce  sync.Once
	closeOnce sync.Once
	stopErr   error
}

var _ capture.Source = (*Source)(nil)

// Open initializes PortAudio and opens a mono input stream delivering
// frameSize samples per callback. A missing input device yields
// ErrNoDevice.
func Open(frameSize int, opts ...Option) (*Source, error) {
	if frameSize < 1 {
		return nil, fmt.Errorf("portaudio: frame size must be > 0: %d", frameSize)
	}

	s := &Source{
		frameSize:    frameSize,
		stallTimeout: defaultStallTimeout,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	if err := pa.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio: initialize: %w", err)
	}

	if err := s.open(); err != nil {
		_ = pa.Terminate()
		return nil, err
	}

	return s, nil
}

func (s *Source) open() error {
	devices, err := pa.Devices()
	if err != nil {
		return fmt.Errorf("portaudio: list devices: %w", err)
	}
	def, _ := pa.DefaultInputDevice()

	dev, err := selectDevice(devices, def, s.deviceName)
	if err != nil {
		return err
	}
	s.device = dev

	params := pa.LowLatencyParameters(dev, nil)
	params.Input.Channels = 1
	params.FramesPerBuffer = s.frameSize
	if s.sampleRate > 0 {
		params.SampleRate = s.sampleRate
	}
	s.sampleRate = params.SampleRate

	stream, err := pa.OpenStream(params, s.process)
	if err != nil {
		return fmt.Errorf("portaudio: open stream on %q: %w", dev.Name, err)
	}
	s.stream = stream

	return nil
}

// selectDevice picks the named input device, or def when name is empty.
func selectDevice(devices []*pa.DeviceInfo, def *pa.DeviceInfo, name string) (*pa.DeviceInfo, error) {
	if name == "" {
		if def == nil || def.MaxInputChannels < 1 {
			return nil, ErrNoDevice
		}
		return def, nil
	}

	want := strings.ToLower(name)
	var prefix []*pa.DeviceInfo
	for _, d := range devices {
		if d.MaxInputChannels < 1 {
			continue
		}
		lower := strings.ToLower(d.Name)
		if lower == want {
			return d, nil
		}
		if strings.HasPrefix(lower, want) {
			prefix = append(prefix, d)
		}
	}

	switch len(prefix) {
	case 0:
		return nil, fmt.Errorf("%w: %q", ErrNoDevice, name)
	case 1:
		return prefix[0], nil
	default:
		return nil, fmt.Errorf("portaudio: device name %q is ambiguous (%d matches)", name, len(prefix))
	}
}

// Devices lists the input devices PortAudio can see.
func Devices() ([]Device, error) {
	if err := pa.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio: initialize: %w", err)
	}
	defer func() { _ = pa.Terminate() }()

	devices, err := pa.Devices()
	if err != nil {
		return nil, fmt.Errorf("portaudio: list devices: %w", err)
	}
	def, _ := pa.DefaultInputDevice()

	return inputDevices(devices, def), nil
}

func inputDevices(devices []*pa.DeviceInfo, def *pa.DeviceInfo) []Device {
	out := make([]Device, 0, len(devices))
	for _, d := range devices {
		if d.MaxInputChannels < 1 {
			continue
		}
		host := ""
		if d.HostApi != nil {
			host = d.HostApi.Name
		}
		out = append(out, Device{
			Name:              d.Name,
			HostAPI:           host,
			Channels:          d.MaxInputChannels,
			DefaultSampleRate: d.DefaultSampleRate,
			Default:           d == def,
		})
	}
	return out
}

func (s *Source) process(in []float32, _ pa.StreamCallbackTimeInfo, flags pa.StreamCallbackFlags) {
	if !s.active.Load() {
		return
	}
	s.lastChunk.Store(time.Now().UnixNano())

	if flags&pa.InputOverflow != 0 {
		s.overflows.Add(1)
	}

	if s.cb(in) == capture.Stop {
		s.active.Store(false)
		go func() { _ = s.Stop() }()
	}
}

// Start implements capture.Source.
func (s *Source) Start(cb capture.Callback) error {
	if cb == nil {
		return errors.New("portaudio: nil callback")
	}
	if s.cb != nil {
		return capture.ErrStarted
	}

	s.cb = cb
	s.lastChunk.Store(time.Now().UnixNano())
	s.active.Store(true)

	if err := s.stream.Start(); err != nil {
		s.active.Store(false)
		return fmt.Errorf("portaudio: start stream: %w", err)
	}

	s.logger.Info("capture started",
		"device", s.device.Name,
		"sample_rate", s.sampleRate,
		"frame_size", s.frameSize,
	)
	return nil
}

// Active implements capture.Source.
func (s *Source) Active() bool {
	if !s.active.Load() {
		return false
	}
	if s.stallTimeout > 0 {
		last := time.Unix(0, s.lastChunk.Load())
		if time.Since(last) > s.stallTimeout {
			s.logger.Warn("capture stalled", "device", s.device.Name, "silence", time.Since(last))
			s.active.Store(false)
			return false
		}
	}
	return true
}

// Stop implements capture.Source.
func (s *Source) Stop() error {
	s.stopOnce.Do(func() {
		s.active.Store(false)
		if s.cb == nil {
			return
		}
		if err := s.stream.Stop(); err != nil {
			s.stopErr = fmt.Errorf("portaudio: stop stream: %w", err)
		}
		s.logger.Info("capture stopped", "device", s.device.Name, "input_overflows", s.overflows.Load())
	})
	return s.stopErr
}

// Close implements capture.Source. It stops the stream and terminates
// PortAudio.
func (s *Source) Close() error {
	var errs []error
	s.closeOnce.Do(func() {
		if err := s.Stop(); err != nil {
			errs = append(errs, err)
		}
		if err := s.stream.Close(); err != nil {
			errs = append(errs, fmt.Errorf("portaudio: close stream: %w", err))
		}
		if err := pa.Terminate(); err != nil {
			errs = append(errs, fmt.Errorf("portaudio: terminate: %w", err))
		}
	})
	return errors.Join(errs...)
}

// SampleRate implements capture.Source.
func (s *Source) SampleRate() float64 { return s.sampleRate }

// FrameSize implements capture.Source.
func (s *Source) FrameSize() int { return s.frameSize }

// DeviceName returns the name of the opened device.
func (s *Source) DeviceName() string { return s.device.Name }

// InputOverflows returns how many callbacks reported lost input.
func (s *Source) InputOverflows() uint64 { return s.overflows.Load() }
