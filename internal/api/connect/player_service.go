package connect

import (
	"context"
	"sync"
	"time"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/surabhi/internal/api/playerv1"
	"github.com/osa030/surabhi/internal/api/playerv1/playerv1connect"
	"github.com/osa030/surabhi/internal/app/session"
	"github.com/osa030/surabhi/internal/domain/listing"
)

// PlayerService implements the PlayerService RPC.
type PlayerService struct {
	session *session.Manager
}

// NewPlayerService creates a new PlayerService.
func NewPlayerService(session *session.Manager) *PlayerService {
	return &PlayerService{
		session: session,
	}
}

// Ensure PlayerService implements the interface.
var _ playerv1connect.PlayerServiceHandler = (*PlayerService)(nil)

// status wraps the current player state after a successful operation.
func (s *PlayerService) status(err error) (*connect.Response[playerv1.StatusResponse], error) {
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&playerv1.StatusResponse{State: s.session.State()}), nil
}

// Play starts a track from a listing.
func (s *PlayerService) Play(
	ctx context.Context,
	req *connect.Request[playerv1.PlayRequest],
) (*connect.Response[playerv1.StatusResponse], error) {
	kind, err := listing.ParseKind(req.Msg.Listing)
	if err != nil {
		return nil, toConnectError(err)
	}
	return s.status(s.session.PlayFromListing(kind, req.Msg.TrackID))
}

// PlayTrack plays a known track without replacing the queue.
func (s *PlayerService) PlayTrack(
	ctx context.Context,
	req *connect.Request[playerv1.PlayTrackRequest],
) (*connect.Response[playerv1.StatusResponse], error) {
	return s.status(s.session.PlayTrack(req.Msg.TrackID))
}

// TogglePlay pauses or resumes.
func (s *PlayerService) TogglePlay(
	ctx context.Context,
	req *connect.Request[playerv1.Empty],
) (*connect.Response[playerv1.StatusResponse], error) {
	return s.status(s.session.TogglePlay())
}

// Next skips forward.
func (s *PlayerService) Next(
	ctx context.Context,
	req *connect.Request[playerv1.Empty],
) (*connect.Response[playerv1.StatusResponse], error) {
	return s.status(s.session.Next())
}

// Previous rewinds or skips back.
func (s *PlayerService) Previous(
	ctx context.Context,
	req *connect.Request[playerv1.Empty],
) (*connect.Response[playerv1.StatusResponse], error) {
	return s.status(s.session.Previous())
}

// Seek moves within the current track.
func (s *PlayerService) Seek(
	ctx context.Context,
	req *connect.Request[playerv1.SeekRequest],
) (*connect.Response[playerv1.StatusResponse], error) {
	pos := time.Duration(req.Msg.PositionMs) * time.Millisecond
	return s.status(s.session.Seek(pos))
}

// SetVolume sets the output level.
func (s *PlayerService) SetVolume(
	ctx context.Context,
	req *connect.Request[playerv1.SetVolumeRequest],
) (*connect.Response[playerv1.StatusResponse], error) {
	return s.status(s.session.SetVolume(req.Msg.Volume))
}

// ToggleShuffle flips shuffle.
func (s *PlayerService) ToggleShuffle(
	ctx context.Context,
	req *connect.Request[playerv1.Empty],
) (*connect.Response[playerv1.ToggleShuffleResponse], error) {
	shuffle, err := s.session.ToggleShuffle()
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&playerv1.ToggleShuffleResponse{
		Shuffle: shuffle,
		State:   s.session.State(),
	}), nil
}

// ToggleRepeat cycles the repeat mode.
func (s *PlayerService) ToggleRepeat(
	ctx context.Context,
	req *connect.Request[playerv1.Empty],
) (*connect.Response[playerv1.ToggleRepeatResponse], error) {
	repeat, err := s.session.ToggleRepeat()
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&playerv1.ToggleRepeatResponse{
		Repeat: repeat.String(),
		State:  s.session.State(),
	}), nil
}

// ToggleFavorite adds or removes a track from the favorites.
func (s *PlayerService) ToggleFavorite(
	ctx context.Context,
	req *connect.Request[playerv1.ToggleFavoriteRequest],
) (*connect.Response[playerv1.ToggleFavoriteResponse], error) {
	favorite, err := s.session.ToggleFavorite(req.Msg.TrackID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&playerv1.ToggleFavoriteResponse{Favorite: favorite}), nil
}

// GetStatus returns the current player state.
func (s *PlayerService) GetStatus(
	ctx context.Context,
	req *connect.Request[playerv1.Empty],
) (*connect.Response[playerv1.StatusResponse], error) {
	return s.status(nil)
}

// GetListing returns one listing.
func (s *PlayerService) GetListing(
	ctx context.Context,
	req *connect.Request[playerv1.GetListingRequest],
) (*connect.Response[playerv1.GetListingResponse], error) {
	kind, err := listing.ParseKind(req.Msg.Listing)
	if err != nil {
		return nil, toConnectError(err)
	}
	l := s.session.Listing(kind)
	return connect.NewResponse(&playerv1.GetListingResponse{
		Listing: s.session.ListingMessage(l),
	}), nil
}

// ListListings returns every listing.
func (s *PlayerService) ListListings(
	ctx context.Context,
	req *connect.Request[playerv1.Empty],
) (*connect.Response[playerv1.ListListingsResponse], error) {
	all := s.session.Listings()
	out := make([]playerv1.Listing, 0, len(all))
	for _, l := range all {
		out = append(out, *s.session.ListingMessage(l))
	}
	return connect.NewResponse(&playerv1.ListListingsResponse{Listings: out}), nil
}

// Search queries the catalog.
func (s *PlayerService) Search(
	ctx context.Context,
	req *connect.Request[playerv1.SearchRequest],
) (*connect.Response[playerv1.SearchResponse], error) {
	sent, results, err := s.session.Search(ctx, req.Msg.Query, int(req.Msg.Limit))
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&playerv1.SearchResponse{
		Sent:   sent,
		Tracks: s.session.TrackMessages(results),
	}), nil
}

// Subscribe streams the initial state followed by player notifications
// until the client goes away or the session ends.
func (s *PlayerService) Subscribe(
	ctx context.Context,
	req *connect.Request[playerv1.Empty],
	stream *connect.ServerStream[playerv1.Notification],
) error {
	notifManager := s.session.Notifications()

	select {
	case <-s.session.Done():
		return connect.NewError(connect.CodeUnavailable, errors.New("session has ended"))
	default:
	}

	adapter := &notificationStreamAdapter{stream: stream}

	// Hold the adapter so no broadcast overtakes the initial state
	adapter.mu.Lock()
	subscriptionID := notifManager.Subscribe(adapter)
	initial := &playerv1.Notification{
		Type:       playerv1.NotificationTypeInitialState,
		SequenceNo: notifManager.NextSequenceNo(),
		State:      s.session.State(),
	}
	err := stream.Send(initial)
	adapter.mu.Unlock()
	defer notifManager.Unsubscribe(subscriptionID)
	if err != nil {
		return err
	}
	zlog.Info().Msgf("api: subscriber joined: subscription_id=%s subscribers=%d", subscriptionID, notifManager.SubscriberCount())

	// Wait for context cancellation or session end
	select {
	case <-ctx.Done():
	case <-s.session.Done():
	}
	return nil
}

// notificationStreamAdapter adapts connect.ServerStream to notification.Stream.
// Broadcasts may arrive from several goroutines; sends are serialised.
type notificationStreamAdapter struct {
	mu     sync.Mutex
	stream *connect.ServerStream[playerv1.Notification]
}

func (a *notificationStreamAdapter) Send(notification *playerv1.Notification) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stream.Send(notification)
}
