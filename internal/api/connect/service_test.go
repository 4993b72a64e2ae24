package connect

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/surabhi/internal/api/playerv1"
	"github.com/osa030/surabhi/internal/api/playerv1/playerv1connect"
	"github.com/osa030/surabhi/internal/app/favorites"
	"github.com/osa030/surabhi/internal/app/playback"
	"github.com/osa030/surabhi/internal/app/session"
	"github.com/osa030/surabhi/internal/domain/listing"
	"github.com/osa030/surabhi/internal/domain/track"
	"github.com/osa030/surabhi/internal/infra/config"
	"github.com/osa030/surabhi/internal/infra/kvstore"
	"github.com/osa030/surabhi/internal/infra/store"
)

type silentSink struct{}

func (silentSink) Load(context.Context, string, playback.SinkObserver) error { return nil }
func (silentSink) Play() error                                              { return nil }
func (silentSink) Pause()                                                   {}
func (silentSink) Position() time.Duration                                  { return 0 }
func (silentSink) SetPosition(time.Duration) error                          { return nil }
func (silentSink) SetVolume(float64)                                        {}
func (silentSink) Close() error                                             { return nil }

type stubCatalog struct{}

var stubTracks = []track.Track{
	{ID: "itunes:1", Title: "Kesariya", Artist: "Arijit Singh", ArtworkURL: "https://img/100x100bb.jpg", SourceURL: "https://a/1.m4a", Origin: track.OriginRemote},
	{ID: "itunes:2", Title: "Tum Hi Ho", Artist: "Arijit Singh", SourceURL: "https://a/2.m4a", Origin: track.OriginRemote},
}

func (stubCatalog) AcceptsQuery(q string) bool { return len(q) >= 3 }

func (stubCatalog) Search(context.Context, string, int) []track.Track {
	return stubTracks
}

func (stubCatalog) Listings(context.Context) []listing.Listing {
	return []listing.Listing{{Kind: listing.KindTrending, Title: "Trending Now", Tracks: stubTracks}}
}

type testServer struct {
	player playerv1connect.PlayerServiceClient
	admin  playerv1connect.AdminServiceClient
	sess   *session.Manager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dir := t.TempDir()

	cfg, err := config.Parse([]byte("admin:\n  token: secret\nstorage:\n  data_dir: " + dir + "\n"))
	require.NoError(t, err)
	trackStore, err := store.New(cfg.TracksDir())
	require.NoError(t, err)
	kv, err := kvstore.Open(cfg.KVPath())
	require.NoError(t, err)

	sess, err := session.NewManager(cfg, session.Deps{
		Sink:      silentSink{},
		Catalog:   stubCatalog{},
		Store:     trackStore,
		Favorites: favorites.NewKVPersister(kv),
	})
	require.NoError(t, err)
	require.NoError(t, sess.Start(context.Background()))

	mux := http.NewServeMux()
	mux.Handle(playerv1connect.NewPlayerServiceHandler(NewPlayerService(sess)))
	mux.Handle(playerv1connect.NewAdminServiceHandler(
		NewAdminService(sess),
		connect.WithInterceptors(NewAdminAuthInterceptor(cfg)),
	))
	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		sess.Close()
		server.Close()
	})

	return &testServer{
		player: playerv1connect.NewPlayerServiceClient(server.Client(), server.URL),
		admin:  playerv1connect.NewAdminServiceClient(server.Client(), server.URL),
		sess:   sess,
	}
}

func TestPlayerService_PlayAndStatus(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	resp, err := ts.player.Play(ctx, connect.NewRequest(&playerv1.PlayRequest{Listing: "trending", TrackID: "itunes:2"}))
	require.NoError(t, err)
	st := resp.Msg.State
	assert.Equal(t, "playing", st.State)
	assert.Equal(t, int32(1), st.Index)
	require.NotNil(t, st.Current)
	assert.Equal(t, "itunes:2", st.Current.ID)

	resp, err = ts.player.TogglePlay(ctx, connect.NewRequest(&playerv1.Empty{}))
	require.NoError(t, err)
	assert.Equal(t, "paused", resp.Msg.State.State)

	resp, err = ts.player.SetVolume(ctx, connect.NewRequest(&playerv1.SetVolumeRequest{Volume: 1.7}))
	require.NoError(t, err)
	assert.Equal(t, 1.0, resp.Msg.State.Volume)

	repeat, err := ts.player.ToggleRepeat(ctx, connect.NewRequest(&playerv1.Empty{}))
	require.NoError(t, err)
	assert.Equal(t, "all", repeat.Msg.Repeat)

	shuffle, err := ts.player.ToggleShuffle(ctx, connect.NewRequest(&playerv1.Empty{}))
	require.NoError(t, err)
	assert.True(t, shuffle.Msg.Shuffle)

	status, err := ts.player.GetStatus(ctx, connect.NewRequest(&playerv1.Empty{}))
	require.NoError(t, err)
	assert.Equal(t, "ready", status.Msg.State.Phase)
	assert.True(t, status.Msg.State.Shuffle)
}

func TestPlayerService_Errors(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	_, err := ts.player.Play(ctx, connect.NewRequest(&playerv1.PlayRequest{Listing: "charts", TrackID: "itunes:1"}))
	require.Error(t, err)
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	_, err = ts.player.Play(ctx, connect.NewRequest(&playerv1.PlayRequest{Listing: "trending", TrackID: "missing"}))
	require.Error(t, err)
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	_, err = ts.player.ToggleFavorite(ctx, connect.NewRequest(&playerv1.ToggleFavoriteRequest{TrackID: "missing"}))
	require.Error(t, err)
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))
}

func TestPlayerService_ListingsAndSearch(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	listings, err := ts.player.ListListings(ctx, connect.NewRequest(&playerv1.Empty{}))
	require.NoError(t, err)
	require.Len(t, listings.Msg.Listings, len(listing.Kinds))

	got, err := ts.player.GetListing(ctx, connect.NewRequest(&playerv1.GetListingRequest{Listing: "trending"}))
	require.NoError(t, err)
	require.Len(t, got.Msg.Listing.Tracks, 2)
	assert.Equal(t, "https://img/600x600bb.jpg", got.Msg.Listing.Tracks[0].ArtworkURL)

	search, err := ts.player.Search(ctx, connect.NewRequest(&playerv1.SearchRequest{Query: "ke"}))
	require.NoError(t, err)
	assert.False(t, search.Msg.Sent)

	search, err = ts.player.Search(ctx, connect.NewRequest(&playerv1.SearchRequest{Query: "kesariya"}))
	require.NoError(t, err)
	assert.True(t, search.Msg.Sent)
	assert.Len(t, search.Msg.Tracks, 2)

	fav, err := ts.player.ToggleFavorite(ctx, connect.NewRequest(&playerv1.ToggleFavoriteRequest{TrackID: "itunes:1"}))
	require.NoError(t, err)
	assert.True(t, fav.Msg.Favorite)

	got, err = ts.player.GetListing(ctx, connect.NewRequest(&playerv1.GetListingRequest{Listing: "favorites"}))
	require.NoError(t, err)
	require.Len(t, got.Msg.Listing.Tracks, 1)
	assert.True(t, got.Msg.Listing.Tracks[0].IsFavorite)
}

func TestPlayerService_Subscribe(t *testing.T) {
	ts := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := ts.player.Subscribe(ctx, connect.NewRequest(&playerv1.Empty{}))
	require.NoError(t, err)
	defer stream.Close()

	require.True(t, stream.Receive())
	assert.Equal(t, playerv1.NotificationTypeInitialState, stream.Msg().Type)
	assert.Equal(t, "ready", stream.Msg().State.Phase)

	_, err = ts.player.Play(ctx, connect.NewRequest(&playerv1.PlayRequest{Listing: "trending", TrackID: "itunes:1"}))
	require.NoError(t, err)

	for stream.Receive() {
		if stream.Msg().Type == playerv1.NotificationTypeTrackStarted {
			require.NotNil(t, stream.Msg().State.Current)
			assert.Equal(t, "itunes:1", stream.Msg().State.Current.ID)
			return
		}
	}
	t.Fatalf("stream ended without track_started: %v", stream.Err())
}

func TestAdminService_RequiresToken(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	_, err := ts.admin.ImportFiles(ctx, connect.NewRequest(&playerv1.ImportFilesRequest{}))
	require.Error(t, err)
	assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))

	req := connect.NewRequest(&playerv1.ImportFilesRequest{})
	req.Header().Set(AdminTokenHeader, "wrong")
	_, err = ts.admin.ImportFiles(ctx, req)
	require.Error(t, err)
	assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
}

func TestAdminService_ImportAndRemove(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	req := connect.NewRequest(&playerv1.ImportFilesRequest{Files: []playerv1.UploadFile{
		{Name: "song one.mp3", Content: []byte("ID3data")},
		{Name: "notes.txt", Content: []byte("text")},
	}})
	req.Header().Set(AdminTokenHeader, "secret")
	resp, err := ts.admin.ImportFiles(ctx, req)
	require.NoError(t, err)
	require.Len(t, resp.Msg.Tracks, 1)
	imported := resp.Msg.Tracks[0]
	assert.Equal(t, "song one", imported.Title)
	assert.Equal(t, "local", imported.Origin)

	local, err := ts.player.GetListing(ctx, connect.NewRequest(&playerv1.GetListingRequest{Listing: "local-library"}))
	require.NoError(t, err)
	require.Len(t, local.Msg.Listing.Tracks, 1)

	remove := connect.NewRequest(&playerv1.RemoveLocalTrackRequest{TrackID: imported.ID})
	remove.Header().Set(AdminTokenHeader, "secret")
	_, err = ts.admin.RemoveLocalTrack(ctx, remove)
	require.NoError(t, err)

	_, err = ts.admin.RemoveLocalTrack(ctx, remove)
	require.Error(t, err)
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))
}
