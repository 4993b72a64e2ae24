package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/osa030/surabhi/internal/domain/listing"
	"github.com/osa030/surabhi/internal/domain/track"
	"github.com/osa030/surabhi/internal/infra/lastfm"
)

// LastFmClient defines the interface for Last.fm operations.
type LastFmClient interface {
	GetTopTracks(ctx context.Context, tagName string, limit int) ([]lastfm.TopTrack, error)
	GetChartTopTracks(ctx context.Context, limit int) ([]lastfm.TopTrack, error)
}

type LastFmSourceConfig struct {
	APIKey string `yaml:"api_key" mapstructure:"api_key" validate:"required"`
	// Tag selects tag.getTopTracks; empty uses the global chart
	Tag string `yaml:"tag" mapstructure:"tag"`
	// Resolve this many chart entries per listed track, since some have no catalog match
	Overfetch   int `yaml:"overfetch" mapstructure:"overfetch" default:"2" validate:"gte=1,lte=5"`
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency" default:"4" validate:"gte=1,lte=16"`
}

// LastFmSource fills a listing from Last.fm top tracks, resolving each
// chart entry to a playable catalog track.
type LastFmSource struct {
	lastfm   LastFmClient
	searcher Searcher

	// Resolved tracks by "title:artist"; nil records a miss
	resolved   map[string]*track.Track
	resolvedMu sync.RWMutex

	config *LastFmSourceConfig
}

// NewLastFmSource creates a new LastFmSource.
func NewLastFmSource(searcher Searcher, settings map[string]any) (*LastFmSource, error) {
	if searcher == nil {
		return nil, errors.New("searcher is required")
	}
	if len(settings) == 0 {
		return nil, errors.New("settings are required")
	}

	var config LastFmSourceConfig
	if err := decodeSettings(settings, &config); err != nil {
		return nil, err
	}

	client, err := lastfm.New(lastfm.Config{APIKey: config.APIKey})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create last.fm client")
	}

	return newLastFmSource(client, searcher, &config), nil
}

func newLastFmSource(client LastFmClient, searcher Searcher, config *LastFmSourceConfig) *LastFmSource {
	return &LastFmSource{
		lastfm:   client,
		searcher: searcher,
		resolved: make(map[string]*track.Track),
		config:   config,
	}
}

// Tracks returns up to limit resolved tracks in chart order.
func (s *LastFmSource) Tracks(ctx context.Context, kind listing.Kind, limit int) ([]track.Track, error) {
	if limit <= 0 {
		return []track.Track{}, nil
	}

	fetch := limit * s.config.Overfetch
	var (
		charts []lastfm.TopTrack
		err    error
	)
	if s.config.Tag != "" {
		charts, err = s.lastfm.GetTopTracks(ctx, s.config.Tag, fetch)
	} else {
		charts, err = s.lastfm.GetChartTopTracks(ctx, fetch)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get top tracks")
	}

	results := make([]*track.Track, len(charts))
	sem := make(chan struct{}, s.config.Concurrency)
	var wg sync.WaitGroup

	for i, ct := range charts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sem }()
			results[i] = s.resolve(ctx, kind, ct.Name, ct.Artist)
		}()
	}
	wg.Wait()

	tracks := lo.FilterMap(results, func(t *track.Track, _ int) (track.Track, bool) {
		if t == nil {
			return track.Track{}, false
		}
		return *t, true
	})
	tracks = lo.UniqBy(tracks, func(t track.Track) string { return t.ID })

	zlog.Debug().Msgf("catalog: resolved chart tracks: listing=%s tag=%q charted=%d resolved=%d",
		kind, s.config.Tag, len(charts), len(tracks))

	if len(tracks) > limit {
		tracks = tracks[:limit]
	}
	return tracks, nil
}

// resolve searches the catalog for a chart entry with caching.
func (s *LastFmSource) resolve(ctx context.Context, kind listing.Kind, title, artist string) *track.Track {
	key := fmt.Sprintf("%s:%s", title, artist)

	s.resolvedMu.RLock()
	if cached, ok := s.resolved[key]; ok {
		s.resolvedMu.RUnlock()
		return cached
	}
	s.resolvedMu.RUnlock()

	candidates, err := s.searcher.Search(ctx, kind, title+" "+artist, 5)
	if err != nil {
		// Transient; try again on the next refresh
		zlog.Debug().Msgf("catalog: chart entry lookup failed: title=%q artist=%q error=%v", title, artist, err)
		return nil
	}

	var found *track.Track
	if best, ok := bestMatch(candidates, title, artist); ok {
		found = &best
	}

	s.resolvedMu.Lock()
	s.resolved[key] = found
	s.resolvedMu.Unlock()

	return found
}

// Name returns the source name.
func (s *LastFmSource) Name() string {
	return "lastfm"
}
