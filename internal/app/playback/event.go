package playback

import "github.com/osa030/surabhi/internal/domain/track"

// EventType represents a playback event type.
type EventType int

const (
	EventTrackStarted   EventType = iota // A track was loaded and playback attempted
	EventStateChanged                    // Playing/paused flag changed
	EventTimeUpdated                     // Elapsed time moved (sink progress or seek)
	EventDurationKnown                   // Sink reported the media length
	EventQueueEnded                      // Last track finished with repeat off
	EventPlaybackFailed                  // Sink rejected load or play
	EventModeChanged                     // Shuffle or repeat mode changed
	EventVolumeChanged                   // Output volume changed
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventTrackStarted:
		return "track_started"
	case EventStateChanged:
		return "state_changed"
	case EventTimeUpdated:
		return "time_updated"
	case EventDurationKnown:
		return "duration_known"
	case EventQueueEnded:
		return "queue_ended"
	case EventPlaybackFailed:
		return "playback_failed"
	case EventModeChanged:
		return "mode_changed"
	case EventVolumeChanged:
		return "volume_changed"
	default:
		return "unknown"
	}
}

// Event represents a playback event.
type Event struct {
	Type  EventType
	Track *track.Track // Current track (nil when idle)
	State State        // Playback state after the event
	Err   error        // Set for EventPlaybackFailed
}
