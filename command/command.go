// Package command defines the tagged command variants a control thread
// enqueues to mutate Channel state from the audio thread, per the
// command-queue protocol.
package command

import "github.com/doismellburning/syntacts/cue"

// Kind tags which variant a Command carries.
type Kind int

const (
	// Play binds a cue to a channel, optionally scheduled to start
	// inSeconds in the future.
	Play Kind = iota
	// Stop rebinds the channel onto the silent cue and resets its cursor.
	Stop
	// Pause sets or clears the channel's paused flag (used for both pause
	// and resume).
	Pause
	// Volume sets the channel's committed volume.
	Volume
)

// Command is a single mutation request targeting one channel. Exactly the
// fields relevant to Kind are meaningful; the others are zero value.
type Command struct {
	Kind      Kind
	Channel   int
	Cue       cue.Sampler // Play
	InSeconds float64     // Play: scheduled-start delay
	Paused    bool        // Pause
	Volume    float64     // Volume: already clamped to [0,1] at ingress
}
