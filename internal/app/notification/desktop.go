package notification

import (
	"github.com/gen2brain/beeep"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/surabhi/internal/domain/track"
)

// Desktop shows a system notification when a new track starts.
type Desktop struct {
	appName string
	enabled bool
	notify  func(title, message string) error
}

// NewDesktop creates a desktop notifier. A disabled notifier does nothing.
func NewDesktop(appName string, enabled bool) *Desktop {
	return &Desktop{
		appName: appName,
		enabled: enabled,
		notify: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
	}
}

// NowPlaying announces t. Failures are logged; a missing notification
// daemon must not affect playback.
func (d *Desktop) NowPlaying(t track.Track) {
	if d == nil || !d.enabled {
		return
	}

	title := t.Title
	if d.appName != "" {
		title = d.appName + ": " + t.Title
	}
	message := t.Artist
	if t.Album != "" {
		message += " - " + t.Album
	}

	if err := d.notify(title, message); err != nil {
		zlog.Warn().Msgf("notification: desktop notify failed: track_id=%s error=%v", t.ID, err)
	}
}
