// Package session implements the Session lifecycle and public operation
// table: component F of the engine, the library's public surface.
package session

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/doismellburning/syntacts/backend"
	"github.com/doismellburning/syntacts/channel"
	"github.com/doismellburning/syntacts/command"
	"github.com/doismellburning/syntacts/cue"
	"github.com/doismellburning/syntacts/device"
	"github.com/doismellburning/syntacts/internal/logging"
	"github.com/doismellburning/syntacts/queue"
)

// backendFactory constructs the process-wide Backend. Tests override it
// with SetBackendFactory to install a fresh backend.Mock per test; the
// production default wraps github.com/gordonklaus/portaudio.
var backendFactory = func() backend.Backend { return backend.NewPortAudio() }

// SetBackendFactory installs f as the backend constructor used the next
// time the live-session count transitions from 0 to 1. It does not affect
// a Backend already acquired by existing Sessions.
func SetBackendFactory(f func() backend.Backend) {
	backendFactory = f
}

// liveSessions reference-counts the process-wide backend lifecycle: the
// Session whose construction takes the count from 0 to 1 calls Init, and
// the Session whose Shutdown takes it back to 0 calls Terminate. Two
// Sessions in one process are permitted but share this lifecycle, per the
// spec's Session component.
var (
	backendMu     sync.Mutex
	sharedBackend backend.Backend
	liveSessions  atomic.Int64
)

func acquireBackend() (backend.Backend, error) {
	backendMu.Lock()
	defer backendMu.Unlock()

	if liveSessions.Load() == 0 {
		var be = backendFactory()
		if err := be.Init(); err != nil {
			return nil, err
		}
		sharedBackend = be
	}
	liveSessions.Add(1)
	return sharedBackend, nil
}

func releaseBackend() error {
	backendMu.Lock()
	defer backendMu.Unlock()

	if liveSessions.Add(-1) == 0 {
		var be = sharedBackend
		sharedBackend = nil
		return be.Terminate()
	}
	return nil
}

// Session owns one audio output stream and its bank of channels. The zero
// value is not usable; construct with New.
//
// Session is not safe for concurrent control-thread access from more than
// one goroutine: the command queue assumes a single producer. Callers
// sharing a Session across threads must serialize externally.
type Session struct {
	mu sync.Mutex

	be backend.Backend

	registry *device.Registry

	open       bool
	current    device.Device
	sampleRate float64
	channels   []*channel.Channel
	queues     []*queue.SPSC[command.Command]
	stream     backend.Stream

	log *logging.Logger
}

// New acquires the process-wide backend (initializing it if this is the
// first live Session) and enumerates and normalizes the device registry
// once. Call Shutdown when done with the Session to release the backend
// reference.
func New() (*Session, error) {
	var be, err = acquireBackend()
	if err != nil {
		return nil, wrapBackendError(err)
	}

	var raw, enumErr = be.EnumerateOutputDevices()
	if enumErr != nil {
		_ = releaseBackend()
		return nil, wrapBackendError(enumErr)
	}

	var deviceRaw = make([]device.RawDevice, len(raw))
	for i, r := range raw {
		deviceRaw[i] = device.RawDevice{
			Index:              r.Index,
			Name:               r.Name,
			IsDefaultDevice:    r.IsDefaultDevice,
			APIIndex:           r.APIIndex,
			APIName:            r.APIName,
			IsAPIDefaultDevice: r.IsAPIDefaultDevice,
			MaxOutputChannels:  r.MaxOutputChannels,
			DefaultSampleRate:  r.DefaultSampleRate,
		}
	}

	var probe = func(deviceIndex, channels int, rate float64) bool {
		return be.IsFormatSupported(deviceIndex, channels, backend.F32NonInterleaved, rate)
	}

	var devices = device.BuildRegistry(deviceRaw, probe)

	var s = &Session{
		be:       be,
		registry: device.NewRegistry(devices),
		current:  device.None,
		log:      logging.New("session"),
	}
	s.log.Info("session constructed", "devices", len(devices))
	return s, nil
}

// Open opens an output stream on the given device at the requested channel
// count and sample rate. channels is clamped to the device's maximum
// (requesting 0 opens 0 channels, not the device max; callers that want
// "device max" as their own default resolve it before calling Open). rate
// of 0 resolves to the device's reported default sample rate.
func (s *Session) Open(dev device.Device, channels int, rate float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.open {
		return ErrAlreadyOpen
	}

	var actualChannels = channels
	if actualChannels > dev.MaxChannels {
		actualChannels = dev.MaxChannels
	}

	var actualRate = rate
	if actualRate == 0 {
		actualRate = dev.DefaultSampleRate
	}
	// The rate is checked with the backend at the device's full channel
	// count, the same probe the registry uses, so rates outside the standard
	// probe list are accepted when the device reports them supported.
	if !s.be.IsFormatSupported(dev.Index, dev.MaxChannels, backend.F32NonInterleaved, actualRate) {
		return ErrInvalidSampleRate
	}

	var chans = make([]*channel.Channel, actualChannels)
	var queues = make([]*queue.SPSC[command.Command], actualChannels)
	for i := range chans {
		chans[i] = channel.New(1.0 / actualRate)
		queues[i] = queue.New[command.Command]()
	}

	var cb = func(out [][]float32, frames int) {
		for i, q := range queues {
			for {
				var c, ok = q.Front()
				if !ok {
					break
				}
				chans[i].Apply(c)
				q.Pop()
			}
		}
		for i, ch := range chans {
			if i < len(out) {
				ch.FillBuffer(out[i])
			}
		}
	}

	var stream, err = s.be.OpenStream(dev.Index, actualChannels, actualRate, cb)
	if err != nil {
		return wrapBackendError(err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		return wrapBackendError(err)
	}

	s.current = dev
	s.sampleRate = actualRate
	s.channels = chans
	s.queues = queues
	s.stream = stream
	s.open = true

	s.log.Info("session opened", "device", dev.Name, "channels", actualChannels, "rate", actualRate)
	return nil
}

// Close stops and closes the stream, clears channel state, and resets the
// current device to the sentinel.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return ErrNotOpen
	}

	if err := s.stream.Stop(); err != nil {
		s.log.Warn("stream stop failed", "err", err)
	}
	if err := s.stream.Close(); err != nil {
		s.log.Warn("stream close failed", "err", err)
	}

	s.stream = nil
	s.channels = nil
	s.queues = nil
	s.current = device.None
	s.sampleRate = 0
	s.open = false

	s.log.Info("session closed")
	return nil
}

// Shutdown closes the session if open and releases its reference on the
// process-wide backend lifecycle. Callers that are done with a Session
// for good should call Shutdown instead of relying on garbage collection,
// since backend Terminate is a real OS-level teardown.
func (s *Session) Shutdown() error {
	s.mu.Lock()
	var wasOpen = s.open
	s.mu.Unlock()

	if wasOpen {
		if err := s.Close(); err != nil {
			return err
		}
	}

	if err := releaseBackend(); err != nil {
		return wrapBackendError(err)
	}
	return nil
}

func contains(rates []int, rate float64) bool {
	for _, r := range rates {
		if float64(r) == rate {
			return true
		}
	}
	return false
}

func (s *Session) validateChannel(ch int) error {
	if !s.open {
		return ErrNotOpen
	}
	if ch < 0 || ch >= len(s.queues) {
		return ErrInvalidChannel
	}
	return nil
}

func (s *Session) enqueue(cmd command.Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validateChannel(cmd.Channel); err != nil {
		return err
	}

	if !s.queues[cmd.Channel].TryPush(cmd) {
		// Queue overflow indicates control-thread abuse beyond the sizing
		// contract (see spec §7); we surface it as an error rather than
		// drop the command silently.
		s.log.Error("command queue overflow", "channel", cmd.Channel, "kind", cmd.Kind)
		return fmt.Errorf("%w: channel %d command queue is full", ErrQueueFull, cmd.Channel)
	}
	return nil
}

// Play enqueues a Play command: bind cue to channel ch, optionally
// scheduled to start inSeconds in the future.
func (s *Session) Play(ch int, c cue.Sampler, inSeconds float64) error {
	return s.enqueue(command.Command{Kind: command.Play, Channel: ch, Cue: c, InSeconds: inSeconds})
}

// Stop enqueues a Stop command for channel ch.
func (s *Session) Stop(ch int) error {
	return s.enqueue(command.Command{Kind: command.Stop, Channel: ch})
}

// Pause enqueues a Pause(true) command for channel ch.
func (s *Session) Pause(ch int) error {
	return s.enqueue(command.Command{Kind: command.Pause, Channel: ch, Paused: true})
}

// Resume enqueues a Pause(false) command for channel ch.
func (s *Session) Resume(ch int) error {
	return s.enqueue(command.Command{Kind: command.Pause, Channel: ch, Paused: false})
}

// SetVolume clamps v to [0,1] and enqueues a Volume command for channel
// ch.
func (s *Session) SetVolume(ch int, v float64) error {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return s.enqueue(command.Command{Kind: command.Volume, Channel: ch, Volume: v})
}

// PlayAll plays c on every channel, short-circuiting on the first error.
func (s *Session) PlayAll(c cue.Sampler, inSeconds float64) error {
	for ch := range s.channelIndices() {
		if err := s.Play(ch, c, inSeconds); err != nil {
			return err
		}
	}
	return nil
}

// StopAll stops every channel, short-circuiting on the first error.
func (s *Session) StopAll() error {
	for ch := range s.channelIndices() {
		if err := s.Stop(ch); err != nil {
			return err
		}
	}
	return nil
}

// PauseAll pauses every channel, short-circuiting on the first error.
func (s *Session) PauseAll() error {
	for ch := range s.channelIndices() {
		if err := s.Pause(ch); err != nil {
			return err
		}
	}
	return nil
}

// ResumeAll resumes every channel, short-circuiting on the first error.
func (s *Session) ResumeAll() error {
	for ch := range s.channelIndices() {
		if err := s.Resume(ch); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) channelIndices() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out = make([]int, len(s.channels))
	for i := range out {
		out[i] = i
	}
	return out
}

// GetChannelCount returns the number of channels opened, or 0 if not open.
func (s *Session) GetChannelCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.channels)
}

// GetSampleRate returns the sample rate opened, or 0 if not open.
func (s *Session) GetSampleRate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sampleRate
}

// GetCPULoad returns the backend's reported stream CPU load in [0,1], or 0
// if not open.
func (s *Session) GetCPULoad() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stream == nil {
		return 0
	}
	return s.stream.CPULoad()
}

// GetCurrentDevice returns the currently open device, or the sentinel
// device.None if the session is not open.
func (s *Session) GetCurrentDevice() device.Device {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// GetDefaultDevice returns the host's default output device, if any was
// found during enumeration.
func (s *Session) GetDefaultDevice() (device.Device, bool) {
	return s.registry.Default()
}

// GetAvailableDevices returns the normalized, de-duplicated device list
// snapshotted at construction.
func (s *Session) GetAvailableDevices() []device.Device {
	return s.registry.Devices()
}

// IsOpen reports whether the session currently owns an open stream.
func (s *Session) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}
