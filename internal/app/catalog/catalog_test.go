package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/surabhi/internal/app/filter"
	"github.com/osa030/surabhi/internal/domain/listing"
	"github.com/osa030/surabhi/internal/domain/track"
	"github.com/osa030/surabhi/internal/infra/config"
	"github.com/osa030/surabhi/internal/infra/lastfm"
)

type fakeProvider struct {
	name    string
	results []track.Track
	err     error
	calls   atomic.Int32
}

func (p *fakeProvider) Search(ctx context.Context, query string, limit int) ([]track.Track, error) {
	p.calls.Add(1)
	if p.err != nil {
		return nil, p.err
	}
	return p.results, nil
}

func (p *fakeProvider) Name() string { return p.name }

type fakeSearcher struct {
	mu      sync.Mutex
	results map[string][]track.Track
	err     error
	queries []string
}

func (s *fakeSearcher) Search(ctx context.Context, kind listing.Kind, query string, limit int) ([]track.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, query)
	if s.err != nil {
		return nil, s.err
	}
	return s.results[query], nil
}

func (s *fakeSearcher) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queries)
}

type fakeSource struct {
	tracks []track.Track
	err    error
}

func (s *fakeSource) Tracks(ctx context.Context, kind listing.Kind, limit int) ([]track.Track, error) {
	return s.tracks, s.err
}

func (s *fakeSource) Name() string { return "fake" }

type fakeLastFm struct {
	tag    []lastfm.TopTrack
	chart  []lastfm.TopTrack
	err    error
	gotTag string
}

func (f *fakeLastFm) GetTopTracks(ctx context.Context, tagName string, limit int) ([]lastfm.TopTrack, error) {
	f.gotTag = tagName
	return f.tag, f.err
}

func (f *fakeLastFm) GetChartTopTracks(ctx context.Context, limit int) ([]lastfm.TopTrack, error) {
	return f.chart, f.err
}

func playable(id, title, artist string) track.Track {
	return track.Track{ID: id, Title: title, Artist: artist, SourceURL: "https://example.com/" + id + ".mp3"}
}

func newFilters(t *testing.T) *filter.Chain {
	t.Helper()
	chain, err := filter.Build(nil)
	require.NoError(t, err)
	return chain
}

func TestProviderChain_FallsThrough(t *testing.T) {
	failing := &fakeProvider{name: "failing", err: errors.New("boom")}
	empty := &fakeProvider{name: "empty"}
	noPreview := &fakeProvider{name: "no_preview", results: []track.Track{{ID: "x:1", Title: "Silent"}}}
	good := &fakeProvider{name: "good", results: []track.Track{playable("g:1", "Kesariya", "Arijit Singh")}}
	never := &fakeProvider{name: "never", results: []track.Track{playable("n:1", "Other", "Other")}}

	chain := NewProviderChain([]ProviderWithMetadata{
		{Provider: failing, DisplayName: "Failing"},
		{Provider: empty, DisplayName: "Empty"},
		{Provider: noPreview, DisplayName: "NoPreview"},
		{Provider: good, DisplayName: "Good"},
		{Provider: never, DisplayName: "Never"},
	}, newFilters(t))

	results, err := chain.Search(context.Background(), listing.KindSearchResults, "kesariya", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"g:1"}, track.IDs(results))
	assert.Equal(t, int32(0), never.calls.Load())
}

func TestProviderChain_AllFail(t *testing.T) {
	chain := NewProviderChain([]ProviderWithMetadata{
		{Provider: &fakeProvider{name: "a", err: errors.New("a down")}, DisplayName: "A"},
		{Provider: &fakeProvider{name: "b"}, DisplayName: "B"},
	}, nil)

	_, err := chain.Search(context.Background(), listing.KindSearchResults, "query", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all providers failed")
}

func TestProviderChain_AllEmpty(t *testing.T) {
	chain := NewProviderChain([]ProviderWithMetadata{
		{Provider: &fakeProvider{name: "a"}, DisplayName: "A"},
	}, nil)

	results, err := chain.Search(context.Background(), listing.KindSearchResults, "query", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestProviderChain_CancelledContext(t *testing.T) {
	p := &fakeProvider{name: "a", results: []track.Track{playable("a:1", "A", "A")}}
	chain := NewProviderChain([]ProviderWithMetadata{{Provider: p, DisplayName: "A"}}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := chain.Search(ctx, listing.KindSearchResults, "query", 10)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), p.calls.Load())
}

func TestService_Search(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]track.Track{
		"tum hi ho": {playable("a:1", "Tum Hi Ho", "Arijit Singh")},
	}}
	svc := NewService(searcher, nil, Options{})

	assert.Len(t, svc.Search(context.Background(), "  tum hi ho  ", 0), 1)
	assert.Empty(t, svc.Search(context.Background(), "tu", 0))
	assert.Empty(t, svc.Search(context.Background(), "   ", 0))
	assert.Equal(t, 1, searcher.count(), "short queries must not reach the providers")

	assert.True(t, svc.AcceptsQuery("abc"))
	assert.False(t, svc.AcceptsQuery(" ab "))
	assert.True(t, svc.AcceptsQuery("गीत"))
}

func TestService_SearchNeverFails(t *testing.T) {
	svc := NewService(&fakeSearcher{err: errors.New("network down")}, nil, Options{})

	results := svc.Search(context.Background(), "kesariya", 10)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestService_Listings(t *testing.T) {
	svc := NewService(&fakeSearcher{}, newFilters(t), Options{
		Listings: []HomeListing{
			{
				Kind:  listing.KindTrending,
				Title: "Trending Now",
				Limit: 2,
				Source: &fakeSource{tracks: []track.Track{
					playable("a:1", "One", "A"),
					{ID: "a:2", Title: "No Preview", Artist: "A"},
					playable("a:3", "Three", "A"),
					playable("a:4", "Four", "A"),
				}},
			},
			{
				Kind:   listing.KindNewReleases,
				Title:  "New Releases",
				Limit:  20,
				Source: &fakeSource{err: errors.New("unavailable")},
			},
		},
	})

	listings := svc.Listings(context.Background())
	require.Len(t, listings, 2)

	assert.Equal(t, listing.KindTrending, listings[0].Kind)
	assert.Equal(t, "Trending Now", listings[0].Title)
	assert.Equal(t, []string{"a:1", "a:3"}, listings[0].TrackIDs())

	assert.Equal(t, listing.KindNewReleases, listings[1].Kind)
	assert.NotNil(t, listings[1].Tracks)
	assert.Empty(t, listings[1].Tracks)
}

func TestLastFmSource_Tracks(t *testing.T) {
	lfm := &fakeLastFm{tag: []lastfm.TopTrack{
		{Name: "Kesariya", Artist: "Arijit Singh"},
		{Name: "Unknown Song", Artist: "Nobody"},
		{Name: "Tum Hi Ho", Artist: "Arijit Singh"},
		{Name: "Kesariya", Artist: "Arijit Singh"},
	}}
	searcher := &fakeSearcher{results: map[string][]track.Track{
		"Kesariya Arijit Singh": {
			playable("i:9", "Kesariya (Karaoke)", "Sing King"),
			playable("i:1", "Kesariya (From \"Brahmastra\")", "Pritam, Arijit Singh"),
		},
		"Unknown Song Nobody": {playable("i:5", "Completely Different", "Someone")},
		"Tum Hi Ho Arijit Singh": {
			playable("i:2", "Tum Hi Ho", "Mithoon & Arijit Singh"),
		},
	}}

	src := newLastFmSource(lfm, searcher, &LastFmSourceConfig{Tag: "bollywood", Overfetch: 2, Concurrency: 2})

	tracks, err := src.Tracks(context.Background(), listing.KindTrending, 8)
	require.NoError(t, err)
	assert.Equal(t, "bollywood", lfm.gotTag)
	assert.Equal(t, []string{"i:1", "i:2"}, track.IDs(tracks))

	// Second refresh reuses resolved entries
	before := searcher.count()
	_, err = src.Tracks(context.Background(), listing.KindTrending, 8)
	require.NoError(t, err)
	assert.Equal(t, before, searcher.count())
}

func TestLastFmSource_ChartAndLimit(t *testing.T) {
	var charts []lastfm.TopTrack
	results := make(map[string][]track.Track)
	for i := range 5 {
		name := fmt.Sprintf("Song %c", 'A'+i)
		charts = append(charts, lastfm.TopTrack{Name: name, Artist: "Band"})
		results[name+" Band"] = []track.Track{playable(fmt.Sprintf("i:%d", i), name, "Band")}
	}

	src := newLastFmSource(&fakeLastFm{chart: charts}, &fakeSearcher{results: results},
		&LastFmSourceConfig{Overfetch: 2, Concurrency: 3})

	tracks, err := src.Tracks(context.Background(), listing.KindTrending, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"i:0", "i:1", "i:2"}, track.IDs(tracks))
}

func TestLastFmSource_Error(t *testing.T) {
	src := newLastFmSource(&fakeLastFm{err: errors.New("rate limited")}, &fakeSearcher{},
		&LastFmSourceConfig{Overfetch: 2, Concurrency: 1})

	_, err := src.Tracks(context.Background(), listing.KindTrending, 5)
	assert.Error(t, err)
}

func TestNewLastFmSource_RequiresAPIKey(t *testing.T) {
	_, err := NewLastFmSource(&fakeSearcher{}, map[string]any{"tag": "pop"})
	assert.Error(t, err)

	src, err := NewLastFmSource(&fakeSearcher{}, map[string]any{"api_key": "key"})
	require.NoError(t, err)
	assert.Equal(t, 2, src.config.Overfetch)
	assert.Equal(t, 4, src.config.Concurrency)
}

func TestNewServiceFromConfig(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"resultCount":2,"results":[
			{"kind":"song","trackId":1,"trackName":"%s","artistName":"Artist","previewUrl":"https://example.com/1.m4a"},
			{"kind":"song","trackId":2,"trackName":"Other","artistName":"Artist","previewUrl":"https://example.com/2.m4a"}
		]}`, r.URL.Query().Get("term"))
	}))
	defer server.Close()

	cfg := config.CatalogConfig{
		Providers: []config.ProviderConfig{
			{Type: "itunes", DisplayName: "iTunes", Settings: map[string]any{"base_url": server.URL, "retry_max": 1}},
		},
		Search: config.SearchConfig{MinQueryLength: 3, Limit: 10},
		Listings: []config.ListingConfig{
			{Kind: "trending", Title: "Trending Now", Type: "search", Limit: 1, Settings: map[string]any{"term": "bollywood hits 2024"}},
		},
	}

	svc, err := NewServiceFromConfig(context.Background(), cfg, newFilters(t))
	require.NoError(t, err)

	results := svc.Search(context.Background(), "kesariya", 0)
	require.Len(t, results, 2)
	assert.Equal(t, "itunes:1", results[0].ID)
	assert.Equal(t, "kesariya", results[0].Title)

	listings := svc.Listings(context.Background())
	require.Len(t, listings, 1)
	assert.Equal(t, listing.KindTrending, listings[0].Kind)
	require.Len(t, listings[0].Tracks, 1)
	assert.Equal(t, "bollywood hits 2024", listings[0].Tracks[0].Title)
}

func TestNewServiceFromConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.CatalogConfig
	}{
		{
			name: "no providers",
			cfg:  config.CatalogConfig{},
		},
		{
			name: "unknown provider",
			cfg:  config.CatalogConfig{Providers: []config.ProviderConfig{{Type: "deezer"}}},
		},
		{
			name: "spotify without credentials",
			cfg:  config.CatalogConfig{Providers: []config.ProviderConfig{{Type: "spotify", Settings: map[string]any{"market": "IN"}}}},
		},
		{
			name: "search listing without term",
			cfg: config.CatalogConfig{
				Providers: []config.ProviderConfig{{Type: "itunes"}},
				Listings:  []config.ListingConfig{{Kind: "trending", Type: "search"}},
			},
		},
		{
			name: "unknown listing kind",
			cfg: config.CatalogConfig{
				Providers: []config.ProviderConfig{{Type: "itunes"}},
				Listings:  []config.ListingConfig{{Kind: "charts", Type: "search", Settings: map[string]any{"term": "x"}}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewServiceFromConfig(context.Background(), tt.cfg, nil)
			assert.Error(t, err)
		})
	}
}
