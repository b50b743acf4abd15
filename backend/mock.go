package backend

import (
	"fmt"
	"sync/atomic"
)

// Mock is an in-memory Backend used by tests and the property suite. It
// never touches real hardware: callbacks are invoked synchronously by
// calling PumpCallback, which stands in for the realtime thread the
// production backend would otherwise own.
type Mock struct {
	initialized bool
	devices     []RawDevice
	defaultIdx  int
	rates       map[int][]float64 // deviceIndex -> rates reported supported

	streams []*mockStream
}

// NewMock returns a Mock with no devices configured; use AddDevice to
// populate it before opening a stream.
func NewMock() *Mock {
	return &Mock{defaultIdx: -1, rates: make(map[int][]float64)}
}

// AddDevice registers a device and the sample rates it reports as
// supported. The returned index is stable for the life of the Mock.
func (m *Mock) AddDevice(d RawDevice, supportedRates []float64) int {
	var idx = len(m.devices)
	d.Index = idx
	m.devices = append(m.devices, d)
	m.rates[idx] = supportedRates
	if d.IsDefaultDevice {
		m.defaultIdx = idx
	}
	return idx
}

// Init implements Backend.
func (m *Mock) Init() error {
	m.initialized = true
	return nil
}

// Terminate implements Backend.
func (m *Mock) Terminate() error {
	m.initialized = false
	return nil
}

// EnumerateOutputDevices implements Backend.
func (m *Mock) EnumerateOutputDevices() ([]RawDevice, error) {
	var out = make([]RawDevice, len(m.devices))
	copy(out, m.devices)
	return out, nil
}

// DefaultOutputDeviceIndex implements Backend.
func (m *Mock) DefaultOutputDeviceIndex() (int, error) {
	if m.defaultIdx < 0 {
		return -1, fmt.Errorf("mock: no default device configured")
	}
	return m.defaultIdx, nil
}

// IsFormatSupported implements Backend.
func (m *Mock) IsFormatSupported(deviceIndex, channels int, _ SampleFormat, rate float64) bool {
	if deviceIndex < 0 || deviceIndex >= len(m.devices) {
		return false
	}
	if channels <= 0 || channels > m.devices[deviceIndex].MaxOutputChannels {
		return false
	}
	for _, r := range m.rates[deviceIndex] {
		if r == rate {
			return true
		}
	}
	return false
}

// mockStream is a Stream whose "realtime thread" is driven explicitly by
// the test via PumpCallback, never by a real background goroutine.
type mockStream struct {
	deviceIndex int
	channels    int
	frames      int
	cb          Callback
	active      atomic.Bool
	closed      bool
	cpuLoad     atomic.Uint64
}

// OpenStream implements Backend. framesPerBuffer defaults to 10 when the
// mock has not been told otherwise, matching the spec's seed-scenario
// buffer size.
func (m *Mock) OpenStream(deviceIndex, channels int, rate float64, cb Callback) (Stream, error) {
	if deviceIndex < 0 || deviceIndex >= len(m.devices) {
		return nil, fmt.Errorf("mock: invalid device index %d", deviceIndex)
	}
	var s = &mockStream{deviceIndex: deviceIndex, channels: channels, frames: 10, cb: cb}
	m.streams = append(m.streams, s)
	return s, nil
}

// ShowNativeControlPanel implements Backend.
func (m *Mock) ShowNativeControlPanel(int) error { return nil }

func (s *mockStream) Start() error {
	if s.closed {
		return fmt.Errorf("mock: stream closed")
	}
	s.active.Store(true)
	return nil
}

func (s *mockStream) Stop() error {
	s.active.Store(false)
	return nil
}

func (s *mockStream) Close() error {
	s.active.Store(false)
	s.closed = true
	return nil
}

func (s *mockStream) IsActive() bool { return s.active.Load() }

func (s *mockStream) CPULoad() float64 {
	return float64(s.cpuLoad.Load()) / 1e6
}

// PumpCallback drives exactly one audio block through the callback, as
// the production backend's realtime thread would. Tests call this
// directly instead of waiting on real hardware timing.
func (s *mockStream) PumpCallback() [][]float32 {
	var out = make([][]float32, s.channels)
	for c := range out {
		out[c] = make([]float32, s.frames)
	}
	s.cb(out, s.frames)
	return out
}

// SetFramesPerBuffer overrides the block size used by PumpCallback; call
// before the first PumpCallback.
func (s *mockStream) SetFramesPerBuffer(frames int) {
	s.frames = frames
}
