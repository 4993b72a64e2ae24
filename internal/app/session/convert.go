package session

import (
	"github.com/osa030/surabhi/internal/api/playerv1"
	"github.com/osa030/surabhi/internal/app/playback"
	"github.com/osa030/surabhi/internal/domain/listing"
	"github.com/osa030/surabhi/internal/domain/track"
)

// State returns the player state as sent to clients.
func (m *Manager) State() *playerv1.PlayerState {
	snap := m.playback.Snapshot()

	st := &playerv1.PlayerState{
		SessionID:     m.stateMgr.GetSessionID(),
		Phase:         m.stateMgr.GetPhase().String(),
		State:         snap.State().String(),
		Queue:         m.trackMessages(snap.Queue),
		Index:         int32(snap.Index),
		ElapsedMs:     snap.Elapsed.Milliseconds(),
		DurationMs:    snap.Duration.Milliseconds(),
		DurationKnown: snap.DurationKnown,
		Volume:        snap.Volume,
		Shuffle:       snap.Shuffle,
		Repeat:        snap.Repeat.String(),
		SearchQuery:   m.stateMgr.GetSearchQuery(),
	}
	if startedAt := m.stateMgr.GetStartedAt(); !startedAt.IsZero() {
		st.StartedAtMs = startedAt.UnixMilli()
	}
	if snap.Current != nil {
		cur := m.trackMessage(*snap.Current)
		st.Current = &cur
	}
	return st
}

// ListingMessage converts a listing for clients.
func (m *Manager) ListingMessage(l listing.Listing) *playerv1.Listing {
	return &playerv1.Listing{
		Kind:   string(l.Kind),
		Title:  l.Title,
		Tracks: m.trackMessages(l.Tracks),
	}
}

// TrackMessages converts tracks for clients.
func (m *Manager) TrackMessages(tracks []track.Track) []playerv1.Track {
	return m.trackMessages(tracks)
}

func (m *Manager) trackMessages(tracks []track.Track) []playerv1.Track {
	out := make([]playerv1.Track, 0, len(tracks))
	for _, t := range tracks {
		out = append(out, m.trackMessage(t))
	}
	return out
}

func (m *Manager) trackMessage(t track.Track) playerv1.Track {
	return playerv1.Track{
		ID:         t.ID,
		Title:      t.Title,
		Artist:     t.Artist,
		Album:      t.Album,
		ArtworkURL: t.HighResArtwork(),
		Origin:     string(t.Origin),
		IsFavorite: m.favorites.Contains(t.ID),
	}
}

func notificationType(e playback.EventType) playerv1.NotificationType {
	switch e {
	case playback.EventTrackStarted:
		return playerv1.NotificationTypeTrackStarted
	case playback.EventTimeUpdated:
		return playerv1.NotificationTypeTimeUpdated
	case playback.EventDurationKnown:
		return playerv1.NotificationTypeDurationKnown
	case playback.EventQueueEnded:
		return playerv1.NotificationTypeQueueEnded
	case playback.EventPlaybackFailed:
		return playerv1.NotificationTypePlaybackFailed
	case playback.EventModeChanged:
		return playerv1.NotificationTypeModeChanged
	case playback.EventVolumeChanged:
		return playerv1.NotificationTypeVolumeChanged
	default:
		return playerv1.NotificationTypeStateChanged
	}
}
