package device

import "strings"

// RawDevice mirrors backend.RawDevice without importing the backend
// package directly, so device stays a leaf package that both backend and
// session can depend on without a cycle; the session package is
// responsible for translating backend.RawDevice into this shape.
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

// FormatProbe checks whether a device supports a given channel count and
// sample rate. The session package supplies this backed by its Backend.
type FormatProbe func(deviceIndex, channels int, rate float64) bool

// BuildRegistry enumerates devices, probes the standard rate list, and
// applies the MME name-correction, digital-endpoint suppression, and
// API-name-tidying passes described in the spec's Device Registry
// component.
func BuildRegistry(raw []RawDevice, probe FormatProbe) []Device {
	var devices = make([]Device, 0, len(raw))
	for _, r := range raw {
		var rates []int
		for _, rate := range StandardProbeRates {
			if probe(r.Index, r.MaxOutputChannels, float64(rate)) {
				rates = append(rates, rate)
			}
		}
		devices = append(devices, Device{
			Index:              r.Index,
			Name:               r.Name,
			IsDefaultDevice:    r.IsDefaultDevice,
			APIIndex:           r.APIIndex,
			APIName:            stripWindowsPrefix(r.APIName),
			IsAPIDefaultDevice: r.IsAPIDefaultDevice,
			MaxChannels:        r.MaxOutputChannels,
			SampleRates:        rates,
			DefaultSampleRate:  r.DefaultSampleRate,
		})
	}

	devices = correctMMENames(devices, raw)
	devices = removeDigitalEndpoints(devices)
	return devices
}

// isMME reports whether the raw device's host API is MME, matched by name
// since BuildRegistry only has the normalized APIName by this point but
// correctMMENames runs against the pre-normalization raw slice.
func isMME(apiName string) bool {
	return apiName == "MME"
}

// correctMMENames implements the spec's MME truncated-name correction:
// for each MME device name cur, if any non-MME device name alt starts
// with cur, replace cur with alt. This is O(n^2) over the device list,
// which is enumerated once per Session construction and is never on the
// realtime path.
func correctMMENames(devices []Device, raw []RawDevice) []Device {
	var byIndex = make(map[int]string, len(raw))
	for _, r := range raw {
		byIndex[r.Index] = r.APIName
	}

	for i := range devices {
		if !isMME(byIndex[devices[i].Index]) {
			continue
		}
		var cur = devices[i].Name
		for j := range devices {
			if i == j || isMME(byIndex[devices[j].Index]) {
				continue
			}
			if strings.HasPrefix(devices[j].Name, cur) {
				devices[i].Name = devices[j].Name
				break
			}
		}
	}
	return devices
}

func removeDigitalEndpoints(devices []Device) []Device {
	var out = devices[:0]
	for _, d := range devices {
		if isDigitalEndpoint(d.Name) {
			continue
		}
		out = append(out, d)
	}
	return out
}

func isDigitalEndpoint(name string) bool {
	for _, marker := range digitalMarkers {
		if strings.Contains(name, marker) {
			return true
		}
	}
	return false
}

func stripWindowsPrefix(apiName string) string {
	return strings.TrimPrefix(apiName, "Windows ")
}

// Registry is an enumerated, normalized, de-duplicated-by-index snapshot
// of output-capable devices, built once at Session construction.
type Registry struct {
	devices []Device
	byIndex map[int]Device
}

// NewRegistry wraps an already-built device slice (see BuildRegistry) into
// a Registry offering lookup helpers. When several devices share a host
// index, only the first is kept.
func NewRegistry(devices []Device) *Registry {
	var byIndex = make(map[int]Device, len(devices))
	var unique = make([]Device, 0, len(devices))
	for _, d := range devices {
		if _, dup := byIndex[d.Index]; dup {
			continue
		}
		byIndex[d.Index] = d
		unique = append(unique, d)
	}
	return &Registry{devices: unique, byIndex: byIndex}
}

// Devices returns the ordered, de-duplicated device list.
func (r *Registry) Devices() []Device {
	var out = make([]Device, len(r.devices))
	copy(out, r.devices)
	return out
}

// ByIndex looks up a device by its host index.
func (r *Registry) ByIndex(index int) (Device, bool) {
	d, ok := r.byIndex[index]
	return d, ok
}

// Default returns the device marked IsDefaultDevice, if any.
func (r *Registry) Default() (Device, bool) {
	for _, d := range r.devices {
		if d.IsDefaultDevice {
			return d, true
		}
	}
	return Device{}, false
}
