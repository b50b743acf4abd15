package backend

import (
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/gordonklaus/portaudio"
)

// PortAudio is the production Backend, wired directly onto
// github.com/gordonklaus/portaudio (itself a cgo binding over the
// PortAudio C library).
type PortAudio struct{}

// NewPortAudio returns the production backend. Init/Terminate are still
// reference counted by the session package, not here.
func NewPortAudio() *PortAudio {
	return &PortAudio{}
}

// Init implements Backend.
func (PortAudio) Init() error {
	return portaudio.Initialize()
}

// Terminate implements Backend.
func (PortAudio) Terminate() error {
	return portaudio.Terminate()
}

// EnumerateOutputDevices implements Backend.
func (PortAudio) EnumerateOutputDevices() ([]RawDevice, error) {
	var infos, err = portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("portaudio: enumerate devices: %w", err)
	}

	var defaultOut *portaudio.DeviceInfo
	if d, derr := portaudio.DefaultOutputDevice(); derr == nil {
		defaultOut = d
	}

	var out []RawDevice
	for i, info := range infos {
		if info.MaxOutputChannels <= 0 {
			continue
		}

		var apiIndex int
		var apiName string
		var isAPIDefault bool
		if info.HostApi != nil {
			apiName = info.HostApi.Name
			isAPIDefault = info.HostApi.DefaultOutputDevice == info
			apiIndex = hostAPITypeIndex(info.HostApi.Type)
		}

		out = append(out, RawDevice{
			Index:              i,
			Name:               info.Name,
			IsDefaultDevice:    defaultOut != nil && defaultOut == info,
			APIIndex:           apiIndex,
			APIName:            apiName,
			IsAPIDefaultDevice: isAPIDefault,
			MaxOutputChannels:  info.MaxOutputChannels,
			DefaultSampleRate:  info.DefaultSampleRate,
		})
	}
	return out, nil
}

func hostAPITypeIndex(t portaudio.HostApiType) int {
	return int(t)
}

// DefaultOutputDeviceIndex implements Backend.
func (PortAudio) DefaultOutputDeviceIndex() (int, error) {
	var infos, err = portaudio.Devices()
	if err != nil {
		return -1, err
	}
	var d, derr = portaudio.DefaultOutputDevice()
	if derr != nil {
		return -1, derr
	}
	for i, info := range infos {
		if info == d {
			return i, nil
		}
	}
	return -1, fmt.Errorf("portaudio: default output device not found in device list")
}

// IsFormatSupported implements Backend.
func (PortAudio) IsFormatSupported(deviceIndex, channels int, _ SampleFormat, rate float64) bool {
	var infos, err = portaudio.Devices()
	if err != nil || deviceIndex < 0 || deviceIndex >= len(infos) {
		return false
	}
	var params = portaudio.StreamParameters{
		Output: portaudio.StreamDeviceParameters{
			Device:   infos[deviceIndex],
			Channels: channels,
			Latency:  infos[deviceIndex].DefaultLowOutputLatency,
		},
		SampleRate: rate,
	}
	return portaudio.IsFormatSupported(params) == nil
}

// paStream adapts *portaudio.Stream to the Stream interface, tracking an
// approximate CPU load since the Go binding does not surface
// Pa_GetStreamCpuLoad.
type paStream struct {
	stream  *portaudio.Stream
	load    atomic.Uint64 // bits of a float64, updated from the callback
	tracker *cpuLoadTracker
	active  atomic.Bool
}

// OpenStream implements Backend.
func (PortAudio) OpenStream(deviceIndex, channels int, rate float64, cb Callback) (Stream, error) {
	var infos, err = portaudio.Devices()
	if err != nil {
		return nil, err
	}
	if deviceIndex < 0 || deviceIndex >= len(infos) {
		return nil, fmt.Errorf("portaudio: invalid device index %d", deviceIndex)
	}
	var info = infos[deviceIndex]

	var params = portaudio.StreamParameters{
		Output: portaudio.StreamDeviceParameters{
			Device:   info,
			Channels: channels,
			Latency:  info.DefaultLowOutputLatency,
		},
		SampleRate:      rate,
		FramesPerBuffer: portaudio.FramesPerBufferDefault,
	}

	var ps = &paStream{}

	var planar = make([][]float32, channels)

	var paCallback = func(out [][]float32) {
		var frames = 0
		if channels > 0 {
			frames = len(out[0])
		}
		for c := range planar {
			planar[c] = out[c]
		}

		var start = time.Now()
		cb(planar, frames)
		var elapsed = time.Since(start)

		if ps.tracker != nil {
			var prev = math.Float64frombits(ps.load.Load())
			var next = ps.tracker.sample(elapsed, prev)
			ps.load.Store(math.Float64bits(next))
		}
	}

	var stream, openErr = portaudio.OpenStream(params, paCallback)
	if openErr != nil {
		return nil, fmt.Errorf("portaudio: open stream: %w", openErr)
	}

	ps.stream = stream
	ps.tracker = newCPULoadTracker(params.FramesPerBuffer, rate)
	return ps, nil
}

func (s *paStream) Start() error {
	var err = s.stream.Start()
	if err == nil {
		s.active.Store(true)
	}
	return err
}

func (s *paStream) Stop() error {
	var err = s.stream.Stop()
	s.active.Store(false)
	return err
}

func (s *paStream) Close() error {
	s.active.Store(false)
	return s.stream.Close()
}

func (s *paStream) IsActive() bool {
	return s.active.Load()
}

func (s *paStream) CPULoad() float64 {
	return math.Float64frombits(s.load.Load())
}

// ShowNativeControlPanel implements Backend. PortAudio has no portable
// native-control-panel call; this is a documented no-op.
func (PortAudio) ShowNativeControlPanel(int) error {
	return nil
}
