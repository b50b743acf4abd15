package cue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestASR_Shape(t *testing.T) {
	var e = NewASR(0.1, 0.2, 0.1, 0.8)

	assert.InDelta(t, 0.0, e.Amplitude(0), 1e-9, "attack starts at 0")
	assert.InDelta(t, 0.4, e.Amplitude(0.05), 1e-9, "midway through attack")
	assert.InDelta(t, 0.8, e.Amplitude(0.1), 1e-9, "sustain plateau begins at attack")
	assert.InDelta(t, 0.8, e.Amplitude(0.25), 1e-9, "sustain plateau")
	assert.InDelta(t, 0.4, e.Amplitude(0.35), 1e-9, "midway through release")
	assert.InDelta(t, 0.0, e.Amplitude(0.4), 1e-9, "duration boundary is 0 (half-open)")
	assert.Equal(t, 0.0, e.Amplitude(-0.001), "before onset is silent")
	assert.Equal(t, 0.0, e.Amplitude(1000), "long after duration is silent")
}

func TestASR_AmplitudeClampedAtConstruction(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var amp = rapid.Float64Range(-100, 100).Draw(t, "amplitude")
		var e = NewASR(0.01, 0.01, 0.01, amp)
		assert.GreaterOrEqual(t, e.amplitude, 0.0)
		assert.LessOrEqual(t, e.amplitude, 1.0)
	})
}

func TestASR_AlwaysZeroOutsideDuration(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var attack = rapid.Float64Range(0, 1).Draw(t, "attack")
		var sustain = rapid.Float64Range(0, 1).Draw(t, "sustain")
		var release = rapid.Float64Range(0, 1).Draw(t, "release")
		var amp = rapid.Float64Range(0, 1).Draw(t, "amplitude")
		var e = NewASR(attack, sustain, release, amp)
		var t0 = rapid.Float64Range(-10, -0.001).Draw(t, "beforeOnset")
		var tAfter = e.Duration() + rapid.Float64Range(0, 10).Draw(t, "afterDuration")

		assert.Equal(t, 0.0, e.Amplitude(t0))
		assert.Equal(t, 0.0, e.Amplitude(tAfter))
	})
}
