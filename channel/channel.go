// Package channel implements the per-channel playback state and sample
// generator: component B of the engine. Every Channel method in this file
// runs on the audio thread; the control thread only ever reaches a Channel
// through a drained command.Command.
package channel

import (
	"github.com/doismellburning/syntacts/command"
	"github.com/doismellburning/syntacts/cue"
)

// Channel is one playback slot. It is constructed by the Session at open()
// and is thereafter owned exclusively by the audio thread: nothing outside
// Apply/NextSample/FillBuffer may touch its fields.
type Channel struct {
	cue  cue.Sampler
	time float64 // seconds since logical start; negative = scheduled delay

	sampleLength float64 // 1 / sampleRate, fixed for the session's lifetime

	volume     float64
	lastVolume float64

	paused bool

	// Pitch is reserved for future time-stretch/pitch-shift support and is
	// never read by this engine.
	Pitch float64
}

// New constructs a Channel bound to the silent cue, with the given
// per-sample time advance (1/sampleRate).
func New(sampleLength float64) *Channel {
	return &Channel{
		cue:          cue.Silence,
		sampleLength: sampleLength,
		volume:       1,
		lastVolume:   1,
	}
}

// Apply mutates the channel according to cmd. Apply itself must only ever
// be called with the channel index already having been validated by the
// caller (the audio thread's drain loop matches Command.Channel to this
// Channel before calling).
func (c *Channel) Apply(cmd command.Command) {
	switch cmd.Kind {
	case command.Play:
		c.paused = false
		c.time = -cmd.InSeconds
		c.cue = cmd.Cue
	case command.Stop:
		c.paused = true
		c.time = 0
		c.cue = cue.Silence
	case command.Pause:
		c.paused = cmd.Paused
	case command.Volume:
		c.volume = cmd.Volume
	}
}

// NextSample advances the channel by one frame and returns the sample that
// frame produced, already scaled by the channel's current volume. If the
// channel is paused, time does not advance and the sample is 0.
func (c *Channel) NextSample() float64 {
	if c.paused {
		return 0
	}

	var dur = c.cue.Envelope().Duration()
	var s float64
	if c.time >= 0 && c.time < dur {
		s = c.volume * c.cue.Sample(c.time)
	}

	c.time += c.sampleLength
	return s
}

// FillBuffer renders frames samples into out, ramping volume linearly from
// the channel's last committed volume to its currently requested volume
// over the block. This bounds any volume-change discontinuity to one
// buffer period instead of applying it as a single-sample step (which
// would produce audible zipper noise).
func (c *Channel) FillBuffer(out []float32) {
	var frames = len(out)
	if frames == 0 {
		return
	}

	var target = c.volume
	var step = (target - c.lastVolume) / float64(frames)

	c.volume = c.lastVolume
	for f := 0; f < frames; f++ {
		c.volume += step
		out[f] = float32(c.NextSample())
	}

	c.volume = target
	c.lastVolume = target
}

// Paused reports the channel's current paused flag. Audio-thread only.
func (c *Channel) Paused() bool { return c.paused }

// Time reports the channel's current time cursor. Audio-thread only.
func (c *Channel) Time() float64 { return c.time }
