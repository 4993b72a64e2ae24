// Package session provides the session manager.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/surabhi/internal/api/playerv1"
	"github.com/osa030/surabhi/internal/app/favorites"
	"github.com/osa030/surabhi/internal/app/library"
	"github.com/osa030/surabhi/internal/app/notification"
	"github.com/osa030/surabhi/internal/app/playback"
	"github.com/osa030/surabhi/internal/app/session/state"
	"github.com/osa030/surabhi/internal/domain/listing"
	"github.com/osa030/surabhi/internal/domain/track"
	"github.com/osa030/surabhi/internal/infra/config"
)

var (
	ErrSessionNotReady = errors.New("session is not ready")
	ErrTrackNotFound   = errors.New("track not found")
)

// Listing titles for listings the catalog does not build.
const (
	LocalLibraryTitle = "Local Library"
	FavoritesTitle    = "Favorites"
	SearchTitle       = "Search Results"
)

// Catalog searches the remote catalog and builds the home listings.
type Catalog interface {
	AcceptsQuery(query string) bool
	Search(ctx context.Context, query string, limit int) []track.Track
	Listings(ctx context.Context) []listing.Listing
}

// Deps are the external resources a session runs on.
type Deps struct {
	Sink      playback.Sink
	Catalog   Catalog
	Store     library.Store
	Favorites favorites.Persister
	Desktop   *notification.Desktop // Optional
}

// Manager owns the player: the playback controller, favorites, the local
// library, the catalog listings and the notification fan-out.
type Manager struct {
	// Configuration
	config *config.Config

	// Components
	stateMgr     *state.Manager
	playback     *playback.Controller
	favorites    *favorites.Set
	saver        *favorites.Saver
	library      *library.Library
	catalog      Catalog
	notification *notification.Manager
	desktop      *notification.Desktop

	// Background workers
	wg        sync.WaitGroup
	closeOnce sync.Once

	// Channels
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewManager creates a new session manager. Favorites are loaded here so
// the controller sees them from the first operation.
func NewManager(cfg *config.Config, deps Deps) (*Manager, error) {
	if deps.Sink == nil {
		return nil, errors.New("sink is required")
	}
	if deps.Catalog == nil {
		return nil, errors.New("catalog is required")
	}
	if deps.Store == nil {
		return nil, errors.New("track store is required")
	}
	if deps.Favorites == nil {
		return nil, errors.New("favorites persister is required")
	}

	ctx, cancel := context.WithCancel(context.Background())

	favs := favorites.LoadFrom(deps.Favorites)
	m := &Manager{
		config:    cfg,
		stateMgr:  state.New(uuid.New().String()),
		favorites: favs,
		saver:     favorites.NewSaver(favs, deps.Favorites),
		playback: playback.NewController(deps.Sink, playback.Config{
			InitialVolume:    cfg.Player.InitialVolume,
			RestartThreshold: cfg.RestartThreshold(),
			EventBuffer:      cfg.Player.EventBuffer,
			Favorites:        favs,
		}),
		library:      library.New(deps.Store),
		catalog:      deps.Catalog,
		notification: notification.NewManager(),
		desktop:      deps.Desktop,

		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	m.library.OnChange = func() {
		m.broadcastListingChanged(listing.KindLocalLibrary)
	}

	return m, nil
}

// Start loads the library and the home listings, starts the background
// workers and moves the session to ready.
func (m *Manager) Start(ctx context.Context) error {
	if m.stateMgr.GetPhase() != state.PhaseStarting {
		return errors.Newf("session cannot start from phase %s", m.stateMgr.GetPhase())
	}
	sessionID := m.stateMgr.GetSessionID()

	if err := m.library.Load(ctx); err != nil {
		zlog.Error().Msgf("session: library unavailable, starting empty: %v", err)
	}

	for _, l := range m.catalog.Listings(ctx) {
		m.stateMgr.SetListing(l)
		zlog.Info().Msgf("session: listing loaded: listing=%s tracks=%d", l.Kind, l.Len())
	}
	m.stateMgr.SetSearch("", listing.Listing{Kind: listing.KindSearchResults, Title: SearchTitle, Tracks: []track.Track{}})

	if err := ctx.Err(); err != nil {
		return err
	}

	m.wg.Add(2)
	go func() {
		defer m.wg.Done()
		m.saver.Run(m.ctx)
	}()
	go func() {
		defer m.wg.Done()
		m.playbackLoop()
	}()

	if dir := m.config.Library.WatchDir; dir != "" {
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			if err := m.library.Watch(m.ctx, dir); err != nil {
				zlog.Error().Msgf("session: folder watch stopped: dir=%s error=%v", dir, err)
			}
		}()
	}

	m.stateMgr.SetPhase(state.PhaseReady)
	zlog.Info().Msgf("session: phase changed: phase=%s session_id=%s", state.PhaseReady, sessionID)

	m.notification.Broadcast(&playerv1.Notification{
		Type:  playerv1.NotificationTypeStateChanged,
		State: m.State(),
	})
	return nil
}

// Done returns a channel closed once the session has terminated.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// Phase returns the lifecycle phase.
func (m *Manager) Phase() state.Phase {
	return m.stateMgr.GetPhase()
}

// Notifications returns the notification manager.
func (m *Manager) Notifications() *notification.Manager {
	return m.notification
}

func (m *Manager) checkReady() error {
	if !m.stateMgr.IsReady() {
		return ErrSessionNotReady
	}
	return nil
}

// PlayFromListing replaces the queue with the listing's tracks and plays
// the track with the given ID.
func (m *Manager) PlayFromListing(kind listing.Kind, trackID string) error {
	if err := m.checkReady(); err != nil {
		return err
	}

	l := m.Listing(kind)
	t, ok := l.Find(trackID)
	if !ok {
		return errors.Wrapf(ErrTrackNotFound, "%s in %s", trackID, kind)
	}

	zlog.Info().Msgf("session: play from listing: listing=%s track_id=%s queue=%d", kind, trackID, l.Len())
	return m.playback.Play(t, l.Tracks)
}

// PlayTrack plays a known track without supplying a queue.
func (m *Manager) PlayTrack(trackID string) error {
	if err := m.checkReady(); err != nil {
		return err
	}

	t, ok := m.findTrack(trackID)
	if !ok {
		return errors.Wrapf(ErrTrackNotFound, "%s", trackID)
	}
	return m.playback.Play(t, nil)
}

// TogglePlay flips between playing and paused.
func (m *Manager) TogglePlay() error {
	if err := m.checkReady(); err != nil {
		return err
	}
	m.playback.TogglePlay()
	return nil
}

// Next advances the queue.
func (m *Manager) Next() error {
	if err := m.checkReady(); err != nil {
		return err
	}
	m.playback.Next()
	return nil
}

// Previous rewinds or steps back in the queue.
func (m *Manager) Previous() error {
	if err := m.checkReady(); err != nil {
		return err
	}
	m.playback.Previous()
	return nil
}

// Seek moves within the current track.
func (m *Manager) Seek(pos time.Duration) error {
	if err := m.checkReady(); err != nil {
		return err
	}
	m.playback.Seek(pos)
	return nil
}

// SetVolume sets the output level.
func (m *Manager) SetVolume(v float64) error {
	if err := m.checkReady(); err != nil {
		return err
	}
	m.playback.SetVolume(v)
	return nil
}

// ToggleShuffle flips shuffle and returns the new flag.
func (m *Manager) ToggleShuffle() (bool, error) {
	if err := m.checkReady(); err != nil {
		return false, err
	}
	return m.playback.ToggleShuffle(), nil
}

// ToggleRepeat cycles the repeat mode and returns the new mode.
func (m *Manager) ToggleRepeat() (playback.RepeatMode, error) {
	if err := m.checkReady(); err != nil {
		return playback.RepeatOff, err
	}
	return m.playback.ToggleRepeat(), nil
}

// ToggleFavorite toggles the favorite flag of a known track and returns the
// new membership.
func (m *Manager) ToggleFavorite(trackID string) (bool, error) {
	if err := m.checkReady(); err != nil {
		return false, err
	}

	t, ok := m.findTrack(trackID)
	if !ok {
		return false, errors.Wrapf(ErrTrackNotFound, "%s", trackID)
	}

	favorite := m.playback.ToggleFavorite(t)
	zlog.Info().Msgf("session: favorite toggled: track_id=%s favorite=%t", trackID, favorite)
	m.broadcastListingChanged(listing.KindFavorites)
	return favorite, nil
}

// Search queries the catalog and stores the results as the search-results
// listing. An empty query clears the listing; a query too short to send
// leaves it untouched. sent reports whether the catalog was queried.
func (m *Manager) Search(ctx context.Context, query string, limit int) (sent bool, results []track.Track, err error) {
	if err := m.checkReady(); err != nil {
		return false, nil, err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		m.stateMgr.SetSearch("", listing.Listing{Kind: listing.KindSearchResults, Title: SearchTitle, Tracks: []track.Track{}})
		m.broadcastListingChanged(listing.KindSearchResults)
		return false, []track.Track{}, nil
	}
	if !m.catalog.AcceptsQuery(query) {
		return false, []track.Track{}, nil
	}

	results = m.catalog.Search(ctx, query, limit)
	m.stateMgr.SetSearch(query, listing.Listing{Kind: listing.KindSearchResults, Title: SearchTitle, Tracks: results})
	m.broadcastListingChanged(listing.KindSearchResults)
	return true, results, nil
}

// Listing returns the current contents of a listing. Unknown or unloaded
// catalog listings are empty.
func (m *Manager) Listing(kind listing.Kind) listing.Listing {
	switch kind {
	case listing.KindLocalLibrary:
		return listing.Listing{Kind: kind, Title: LocalLibraryTitle, Tracks: m.library.Tracks()}
	case listing.KindFavorites:
		return listing.Listing{Kind: kind, Title: FavoritesTitle, Tracks: m.favorites.List()}
	}

	if l, ok := m.stateMgr.GetListing(kind); ok {
		return l
	}
	return listing.Listing{Kind: kind, Tracks: []track.Track{}}
}

// Listings returns every listing in display order.
func (m *Manager) Listings() []listing.Listing {
	out := make([]listing.Listing, 0, len(listing.Kinds))
	for _, kind := range listing.Kinds {
		out = append(out, m.Listing(kind))
	}
	return out
}

// ImportUploads adds client-supplied audio files to the local library.
func (m *Manager) ImportUploads(ctx context.Context, uploads []library.Upload) ([]track.Track, error) {
	if err := m.checkReady(); err != nil {
		return nil, err
	}
	return m.library.ImportUploads(ctx, uploads)
}

// ImportPaths adds audio files readable by the server to the local library.
func (m *Manager) ImportPaths(ctx context.Context, paths []string) ([]track.Track, error) {
	if err := m.checkReady(); err != nil {
		return nil, err
	}
	return m.library.Import(ctx, paths)
}

// RemoveLocalTrack deletes a track from the local library. A queue that
// already holds it keeps playing its copy.
func (m *Manager) RemoveLocalTrack(ctx context.Context, trackID string) error {
	if err := m.checkReady(); err != nil {
		return err
	}
	return m.library.Remove(ctx, trackID)
}

// findTrack resolves a track ID against the queue, the listings, the local
// library and the favorites.
func (m *Manager) findTrack(id string) (track.Track, bool) {
	snap := m.playback.Snapshot()
	if snap.Current != nil && snap.Current.ID == id {
		return *snap.Current, true
	}
	if i := track.IndexOf(snap.Queue, id); i >= 0 {
		return snap.Queue[i], true
	}
	if t, ok := m.stateMgr.FindTrack(id); ok {
		return t, true
	}
	for _, kind := range []listing.Kind{listing.KindLocalLibrary, listing.KindFavorites} {
		l := m.Listing(kind)
		if t, ok := l.Find(id); ok {
			return t, true
		}
	}
	return track.Track{}, false
}

// playbackLoop handles playback events.
func (m *Manager) playbackLoop() {
	defer func() {
		if r := recover(); r != nil {
			zlog.Error().Msgf("session: playback loop panicked: %v", r)
			// Restart loop to keep notifications flowing
			zlog.Info().Msg("session: restarting playback loop")
			m.wg.Add(1)
			go func() {
				defer m.wg.Done()
				m.playbackLoop()
			}()
		}
	}()

	events := m.playback.Events()
	for {
		select {
		case <-m.ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			m.handlePlaybackEvent(event)
		}
	}
}

// handlePlaybackEvent forwards a controller event to subscribers.
func (m *Manager) handlePlaybackEvent(event playback.Event) {
	if event.Type != playback.EventTimeUpdated {
		zlog.Debug().Msgf("session: playback event: type=%s state=%s", event.Type, event.State)
	}

	n := &playerv1.Notification{
		Type:  notificationType(event.Type),
		State: m.State(),
	}

	switch event.Type {
	case playback.EventTrackStarted:
		if event.Track != nil {
			zlog.Info().Msgf("session: now playing: track_id=%s title=%q artist=%q", event.Track.ID, event.Track.Title, event.Track.Artist)
			m.desktop.NowPlaying(*event.Track)
		}
	case playback.EventPlaybackFailed:
		if event.Err != nil {
			n.Error = event.Err.Error()
		}
	}

	m.notification.Broadcast(n)
}

func (m *Manager) broadcastListingChanged(kind listing.Kind) {
	if !m.stateMgr.IsReady() {
		return
	}
	m.notification.Broadcast(&playerv1.Notification{
		Type:    playerv1.NotificationTypeListingChanged,
		Listing: string(kind),
	})
}

// Close terminates the session: playback stops, favorites are flushed and
// subscribers receive a final session_ended notification.
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		sessionID := m.stateMgr.GetSessionID()
		m.stateMgr.SetPhase(state.PhaseTerminated)
		zlog.Info().Msgf("session: phase changed: phase=%s session_id=%s", state.PhaseTerminated, sessionID)

		m.cancel()
		m.playback.Close()
		m.wg.Wait()

		m.notification.Broadcast(&playerv1.Notification{
			Type:  playerv1.NotificationTypeSessionEnded,
			State: m.State(),
		})
		m.notification.Close()
		close(m.done)
	})
}
