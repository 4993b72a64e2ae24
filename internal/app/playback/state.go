// Package playback provides playback control with integrated queue management.
package playback

import (
	"time"

	"github.com/osa030/surabhi/internal/domain/track"
)

// State represents the playback state.
type State int

const (
	StateIdle    State = iota // No track loaded
	StatePaused               // Track loaded, not playing
	StatePlaying              // Track loaded and playing
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// RepeatMode controls what happens at the end of a track or queue.
type RepeatMode int

const (
	RepeatOff RepeatMode = iota // Stop at queue end
	RepeatAll                   // Wrap to queue start
	RepeatOne                   // Loop current track
)

// String returns the string representation of the repeat mode.
func (r RepeatMode) String() string {
	switch r {
	case RepeatOff:
		return "off"
	case RepeatAll:
		return "all"
	case RepeatOne:
		return "one"
	default:
		return "unknown"
	}
}

// Next returns the following mode in the off -> all -> one -> off cycle.
func (r RepeatMode) Next() RepeatMode {
	switch r {
	case RepeatOff:
		return RepeatAll
	case RepeatAll:
		return RepeatOne
	default:
		return RepeatOff
	}
}

// ParseRepeatMode parses "off", "all" or "one". Anything else is RepeatOff.
func ParseRepeatMode(s string) RepeatMode {
	switch s {
	case "all":
		return RepeatAll
	case "one":
		return RepeatOne
	default:
		return RepeatOff
	}
}

// Snapshot is a consistent copy of the playback session.
type Snapshot struct {
	Current       *track.Track  // Loaded track (nil when idle)
	Queue         []track.Track // Active queue
	Index         int           // Offset of Current in Queue, -1 when none
	Playing       bool          // Playing or paused
	Elapsed       time.Duration // Position within Current
	Duration      time.Duration // Length of Current, valid when DurationKnown
	DurationKnown bool          // Whether the sink has reported the length yet
	Volume        float64       // Output level in [0, 1]
	Shuffle       bool          // Shuffle flag
	Repeat        RepeatMode    // Repeat mode
}

// State derives the coarse playback state from the snapshot.
func (s Snapshot) State() State {
	switch {
	case s.Current == nil:
		return StateIdle
	case s.Playing:
		return StatePlaying
	default:
		return StatePaused
	}
}
