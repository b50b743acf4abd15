// Package device implements the Device descriptor and the registry that
// enumerates, probes, and normalizes the host's output-capable audio
// devices: component E of the engine.
package device

// Device is an immutable descriptor produced by enumeration.
type Device struct {
	Index              int
	Name               string
	IsDefaultDevice    bool
	APIIndex           int
	APIName            string
	IsAPIDefaultDevice bool
	MaxChannels        int
	SampleRates        []int
	DefaultSampleRate  float64
}

// None is the sentinel "no device" descriptor returned by a Session that
// is not open.
var None = Device{
	Index:    -1,
	Name:     "N/A",
	APIIndex: -1,
}

// StandardProbeRates is the fixed vocabulary of sample rates probed for
// every device's supported-rate discovery, so callers can compare against
// a known set.
var StandardProbeRates = []int{
	8000, 9600, 11025, 12000, 16000, 22050, 24000,
	32000, 44100, 48000, 88200, 96000, 192000,
}

// digitalMarkers are substrings that mark a device as a digital/optical
// pass-through endpoint, unsuitable for haptic output.
var digitalMarkers = []string{"SPDIF", "S/PDIF", "Optic", "optic"}
