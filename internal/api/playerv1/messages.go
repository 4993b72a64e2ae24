// Package playerv1 holds the messages of the surabhi.player.v1 RPC API.
package playerv1

// Track is a playable track as seen by clients.
type Track struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Album      string `json:"album,omitempty"`
	ArtworkURL string `json:"artwork_url,omitempty"`
	Origin     string `json:"origin"`
	IsFavorite bool   `json:"is_favorite,omitempty"`
}

// PlayerState is a snapshot of the player.
type PlayerState struct {
	SessionID     string  `json:"session_id"`
	StartedAtMs   int64   `json:"started_at_ms,omitempty"` // Unix millis when the session became ready
	Phase         string  `json:"phase"`                   // starting, ready or terminated
	State         string  `json:"state"`                   // idle, playing or paused
	Current       *Track  `json:"current,omitempty"`
	Queue         []Track `json:"queue"`
	Index         int32   `json:"index"`
	ElapsedMs     int64   `json:"elapsed_ms"`
	DurationMs    int64   `json:"duration_ms"`
	DurationKnown bool    `json:"duration_known"`
	Volume        float64 `json:"volume"`
	Shuffle       bool    `json:"shuffle"`
	Repeat        string  `json:"repeat"` // off, all or one
	SearchQuery   string  `json:"search_query,omitempty"`
}

// Listing is a named track list playback can start from.
type Listing struct {
	Kind   string  `json:"kind"`
	Title  string  `json:"title"`
	Tracks []Track `json:"tracks"`
}

// NotificationType tells subscribers why a notification was sent.
type NotificationType string

const (
	NotificationTypeInitialState   NotificationType = "initial_state"
	NotificationTypeTrackStarted   NotificationType = "track_started"
	NotificationTypeStateChanged   NotificationType = "state_changed"
	NotificationTypeTimeUpdated    NotificationType = "time_updated"
	NotificationTypeDurationKnown  NotificationType = "duration_known"
	NotificationTypeQueueEnded     NotificationType = "queue_ended"
	NotificationTypePlaybackFailed NotificationType = "playback_failed"
	NotificationTypeModeChanged    NotificationType = "mode_changed"
	NotificationTypeVolumeChanged  NotificationType = "volume_changed"
	NotificationTypeListingChanged NotificationType = "listing_changed"
	NotificationTypeSessionEnded   NotificationType = "session_ended"
)

// Notification is one message of the Subscribe stream.
type Notification struct {
	Type       NotificationType `json:"type"`
	SequenceNo uint64           `json:"sequence_no"`
	State      *PlayerState     `json:"state,omitempty"`
	Listing    string           `json:"listing,omitempty"` // Set for listing_changed
	Error      string           `json:"error,omitempty"`   // Set for playback_failed
}

// Empty is the request of methods without parameters.
type Empty struct{}

// StatusResponse carries the player state after an operation.
type StatusResponse struct {
	State *PlayerState `json:"state"`
}

type PlayRequest struct {
	Listing string `json:"listing"`
	TrackID string `json:"track_id"`
}

type PlayTrackRequest struct {
	TrackID string `json:"track_id"`
}

type SeekRequest struct {
	PositionMs int64 `json:"position_ms"`
}

type SetVolumeRequest struct {
	Volume float64 `json:"volume"`
}

type ToggleShuffleResponse struct {
	Shuffle bool         `json:"shuffle"`
	State   *PlayerState `json:"state"`
}

type ToggleRepeatResponse struct {
	Repeat string       `json:"repeat"`
	State  *PlayerState `json:"state"`
}

type ToggleFavoriteRequest struct {
	TrackID string `json:"track_id"`
}

type ToggleFavoriteResponse struct {
	Favorite bool `json:"favorite"`
}

type GetListingRequest struct {
	Listing string `json:"listing"`
}

type GetListingResponse struct {
	Listing *Listing `json:"listing"`
}

type ListListingsResponse struct {
	Listings []Listing `json:"listings"`
}

type SearchRequest struct {
	Query string `json:"query"`
	Limit int32  `json:"limit,omitempty"`
}

type SearchResponse struct {
	// Sent is false when the query was too short to reach the catalog
	Sent   bool    `json:"sent"`
	Tracks []Track `json:"tracks"`
}

// UploadFile is one file of an ImportFiles request.
type UploadFile struct {
	Name    string `json:"name"`
	Content []byte `json:"content"`
}

type ImportFilesRequest struct {
	Files []UploadFile `json:"files"`
}

type ImportFilesResponse struct {
	Tracks []Track `json:"tracks"`
}

type RemoveLocalTrackRequest struct {
	TrackID string `json:"track_id"`
}
