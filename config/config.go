// Package config loads the CLI's YAML cue-bank files: named, ready-to-play
// cues plus session defaults (device, sample rate, channel count).
package config

import (
	"fmt"
	"os"

	"github.com/doismellburning/syntacts/cue"
	"gopkg.in/yaml.v3"
)

// CueSpec is the YAML-level description of one named cue.
type CueSpec struct {
	Name      string  `yaml:"name"`
	Kind      string  `yaml:"kind"`
	Frequency float64 `yaml:"frequency"`
	Attack    float64 `yaml:"attack"`
	Sustain   float64 `yaml:"sustain"`
	Release   float64 `yaml:"release"`
	Amplitude float64 `yaml:"amplitude"`
}

// rawBank is the YAML document shape.
type rawBank struct {
	Device     string    `yaml:"device"`
	SampleRate float64   `yaml:"sampleRate"`
	Channels   int       `yaml:"channels"`
	Cues       []CueSpec `yaml:"cues"`
}

// CueBank is a validated, resolved cue-bank configuration: session
// defaults plus a name -> Sampler map ready to hand to Session.Play.
type CueBank struct {
	Device     string
	SampleRate float64
	Channels   int
	Cues       map[string]cue.Sampler
	// Order preserves the YAML declaration order, for a stable CLI menu.
	Order []string
}

// Load reads and validates a cue-bank YAML file at path.
func Load(path string) (*CueBank, error) {
	var data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var raw rawBank
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return validate(raw)
}

func validate(raw rawBank) (*CueBank, error) {
	var bank = &CueBank{
		Device:     raw.Device,
		SampleRate: raw.SampleRate,
		Channels:   raw.Channels,
		Cues:       make(map[string]cue.Sampler, len(raw.Cues)),
	}

	if raw.SampleRate < 0 {
		return nil, fmt.Errorf("config: sampleRate must not be negative, got %v", raw.SampleRate)
	}
	if raw.Channels < 0 {
		return nil, fmt.Errorf("config: channels must not be negative, got %d", raw.Channels)
	}

	for _, spec := range raw.Cues {
		if spec.Name == "" {
			return nil, fmt.Errorf("config: cue entry missing name")
		}
		if _, exists := bank.Cues[spec.Name]; exists {
			return nil, fmt.Errorf("config: duplicate cue name %q", spec.Name)
		}
		if spec.Amplitude < 0 || spec.Amplitude > 1 {
			return nil, fmt.Errorf("config: cue %q amplitude must be in [0,1], got %v", spec.Name, spec.Amplitude)
		}
		if spec.Attack < 0 || spec.Sustain < 0 || spec.Release < 0 {
			return nil, fmt.Errorf("config: cue %q has a negative attack/sustain/release", spec.Name)
		}

		var sampler cue.Sampler
		switch spec.Kind {
		case "silence":
			sampler = cue.Silence
		case "tone":
			if spec.Frequency <= 0 {
				return nil, fmt.Errorf("config: cue %q (tone) needs a positive frequency", spec.Name)
			}
			sampler = cue.NewTone(spec.Frequency, spec.Attack, spec.Sustain, spec.Release, spec.Amplitude)
		default:
			return nil, fmt.Errorf("config: cue %q has unknown kind %q", spec.Name, spec.Kind)
		}

		bank.Cues[spec.Name] = sampler
		bank.Order = append(bank.Order, spec.Name)
	}

	return bank, nil
}
