package lastfm

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const topTracksResponse = `{
	"tracks": {
		"track": [
			{
				"name": "Track 1",
				"mbid": "mbid1",
				"artist": {"name": "Artist 1", "mbid": "ambid1"},
				"listeners": "1000"
			},
			{
				"name": "Track 2",
				"mbid": "mbid2",
				"artist": {"name": "Artist 2", "mbid": "ambid2"},
				"listeners": "500"
			}
		]
	}
}`

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestGetTopTracks(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "tag.getTopTracks", r.URL.Query().Get("method"))
		assert.Equal(t, "bollywood", r.URL.Query().Get("tag"))
		assert.Equal(t, "test_key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, topTracksResponse)
	}))
	defer server.Close()

	client, err := New(Config{APIKey: "test_key"})
	require.NoError(t, err)
	client.baseURL = server.URL + "/"

	ctx := context.Background()
	tracks, err := client.GetTopTracks(ctx, "bollywood", 5)
	require.NoError(t, err)
	assert.Len(t, tracks, 2)
	assert.Equal(t, "Track 1", tracks[0].Name)
	assert.Equal(t, "Artist 1", tracks[0].Artist)

	// Second call is served from cache
	tracksCached, err := client.GetTopTracks(ctx, "bollywood", 5)
	require.NoError(t, err)
	assert.Equal(t, tracks, tracksCached)
	assert.Equal(t, int32(1), calls.Load())

	_, err = client.GetTopTracks(ctx, "", 5)
	assert.Error(t, err)
}

func TestGetChartTopTracks_CacheExpires(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "chart.getTopTracks", r.URL.Query().Get("method"))
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		fmt.Fprint(w, topTracksResponse)
	}))
	defer server.Close()

	client, err := New(Config{APIKey: "test_key", CacheTTL: time.Millisecond})
	require.NoError(t, err)
	client.baseURL = server.URL + "/"

	ctx := context.Background()
	_, err = client.GetChartTopTracks(ctx, 500)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	tracks, err := client.GetChartTopTracks(ctx, 500)
	require.NoError(t, err)
	assert.Len(t, tracks, 2)
	assert.Equal(t, int32(2), calls.Load())
}

func TestAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error": 10, "message": "Invalid API key"}`)
	}))
	defer server.Close()

	client, err := New(Config{APIKey: "bad"})
	require.NoError(t, err)
	client.baseURL = server.URL + "/"

	_, err = client.GetChartTopTracks(context.Background(), 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid API key")
}
