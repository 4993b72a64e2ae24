package catalog

import (
	"context"
	"strings"
	"unicode/utf8"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/surabhi/internal/app/filter"
	"github.com/osa030/surabhi/internal/domain/listing"
	"github.com/osa030/surabhi/internal/domain/track"
)

const (
	DefaultMinQueryLength = 3
	DefaultSearchLimit    = 25
)

// HomeListing is a listing shown before the user searches.
type HomeListing struct {
	Kind   listing.Kind
	Title  string
	Limit  int
	Source ListingSource
}

// Options configures a Service.
type Options struct {
	MinQueryLength int
	SearchLimit    int
	Listings       []HomeListing
}

// Service answers searches and builds the home listings.
// Its methods never fail: provider errors are logged and yield no tracks.
type Service struct {
	chain   Searcher
	filters *filter.Chain
	options Options
}

// NewService creates a new catalog service.
func NewService(chain Searcher, filters *filter.Chain, options Options) *Service {
	if options.MinQueryLength <= 0 {
		options.MinQueryLength = DefaultMinQueryLength
	}
	if options.SearchLimit <= 0 {
		options.SearchLimit = DefaultSearchLimit
	}
	return &Service{
		chain:   chain,
		filters: filters,
		options: options,
	}
}

// AcceptsQuery reports whether query is long enough to be sent.
func (s *Service) AcceptsQuery(query string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(query)) >= s.options.MinQueryLength
}

// Search returns catalog tracks matching query. limit <= 0 uses the
// configured search limit.
func (s *Service) Search(ctx context.Context, query string, limit int) []track.Track {
	query = strings.TrimSpace(query)
	if !s.AcceptsQuery(query) {
		return []track.Track{}
	}
	if limit <= 0 {
		limit = s.options.SearchLimit
	}

	results, err := s.chain.Search(ctx, listing.KindSearchResults, query, limit)
	if err != nil {
		zlog.Warn().Msgf("catalog: search failed: query=%q error=%v", query, err)
		return []track.Track{}
	}

	zlog.Info().Msgf("catalog: search: query=%q results=%d", query, len(results))
	return results
}

// Listings builds every configured home listing in configured order.
// A listing whose source fails is returned empty.
func (s *Service) Listings(ctx context.Context) []listing.Listing {
	out := make([]listing.Listing, 0, len(s.options.Listings))
	for _, hl := range s.options.Listings {
		out = append(out, s.build(ctx, hl))
	}
	return out
}

func (s *Service) build(ctx context.Context, hl HomeListing) listing.Listing {
	l := listing.Listing{Kind: hl.Kind, Title: hl.Title, Tracks: []track.Track{}}

	tracks, err := hl.Source.Tracks(ctx, hl.Kind, hl.Limit)
	if err != nil {
		zlog.Warn().Msgf("catalog: listing failed: listing=%s source=%s error=%v", hl.Kind, hl.Source.Name(), err)
		return l
	}

	if s.filters != nil {
		tracks = s.filters.Apply(ctx, hl.Kind, tracks)
	}
	if hl.Limit > 0 && len(tracks) > hl.Limit {
		tracks = tracks[:hl.Limit]
	}

	l.Tracks = tracks
	zlog.Info().Msgf("catalog: listing loaded: listing=%s source=%s tracks=%d", hl.Kind, hl.Source.Name(), len(tracks))
	zlog.Debug().Msgf("catalog: listing tracks: listing=%s ids=%v", hl.Kind, l.TrackIDs())
	return l
}
