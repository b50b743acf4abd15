// Package backend defines the narrow capability a Session requires of an
// audio host (component G), plus a PortAudio-backed implementation and an
// in-memory mock used by tests and the property suite.
package backend

import "time"

// SampleFormat enumerates the wire format negotiated with the host. The
// engine only ever uses F32 non-interleaved.
type SampleFormat int

// F32NonInterleaved is the only format this engine opens streams with: one
// contiguous float32 buffer per channel per callback invocation.
const F32NonInterleaved SampleFormat = 0

// RawDevice is the host's unprocessed view of one device, before the
// device registry's name correction and digital-endpoint filtering.
type RawDevice struct {
	Index              int
	Name               string
	IsDefaultDevice    bool
	APIIndex           int
	APIName            string
	IsAPIDefaultDevice bool
	MaxOutputChannels  int
	DefaultSampleRate  float64
}

// Callback is invoked once per audio block on the backend's realtime
// thread. out holds one contiguous buffer per channel (planar / non
// interleaved); each buffer has exactly frames samples. The callback must
// never block, allocate, or call into anything that can.
type Callback func(out [][]float32, frames int)

// Stream is an opened, backend-owned audio output stream.
type Stream interface {
	Start() error
	Stop() error
	Close() error
	IsActive() bool
	CPULoad() float64
}

// Backend is the capability set the Session requires of any audio host.
// A Backend instance is process-wide: Init/Terminate are reference
// counted by the Session package, not by the Backend implementation
// itself.
type Backend interface {
	Init() error
	Terminate() error

	EnumerateOutputDevices() ([]RawDevice, error)
	DefaultOutputDeviceIndex() (int, error)

	IsFormatSupported(deviceIndex, channels int, format SampleFormat, rate float64) bool

	OpenStream(deviceIndex, channels int, rate float64, cb Callback) (Stream, error)

	// ShowNativeControlPanel is optional; backends that can't support it
	// return nil without side effects.
	ShowNativeControlPanel(deviceIndex int) error
}

// defaultCPULoadWindow is the width of the EWMA used to approximate CPU
// load when the backend doesn't surface a native reading.
const defaultCPULoadWindow = 32

// cpuLoadTracker estimates fraction-of-buffer-period spent in the
// callback, updated from the audio thread and read from the control
// thread via an atomic-friendly float64 bit pattern (see paStream.load, an
// atomic.Uint64 holding math.Float64bits, in portaudio.go). It is not itself safe for concurrent use; callers must
// route updates and reads through the atomic wrapper.
type cpuLoadTracker struct {
	alpha      float64
	bufferTime time.Duration
}

func newCPULoadTracker(bufferFrames int, sampleRate float64) *cpuLoadTracker {
	var bufferTime time.Duration
	if sampleRate > 0 {
		bufferTime = time.Duration(float64(bufferFrames) / sampleRate * float64(time.Second))
	}
	return &cpuLoadTracker{alpha: 2.0 / float64(defaultCPULoadWindow+1), bufferTime: bufferTime}
}

func (c *cpuLoadTracker) sample(elapsed time.Duration, prev float64) float64 {
	if c.bufferTime <= 0 {
		return 0
	}
	var instant = float64(elapsed) / float64(c.bufferTime)
	return prev + c.alpha*(instant-prev)
}
