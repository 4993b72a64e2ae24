package catalog

import (
	"context"

	"github.com/osa030/surabhi/internal/domain/listing"
	"github.com/osa030/surabhi/internal/domain/track"
)

type SearchSourceConfig struct {
	Term string `yaml:"term" mapstructure:"term" validate:"required"`
}

// SearchSource fills a listing with the results of a fixed search term.
type SearchSource struct {
	searcher Searcher
	config   *SearchSourceConfig
}

// NewSearchSource creates a new SearchSource.
func NewSearchSource(searcher Searcher, settings map[string]any) (*SearchSource, error) {
	var config SearchSourceConfig
	if err := decodeSettings(settings, &config); err != nil {
		return nil, err
	}
	return &SearchSource{searcher: searcher, config: &config}, nil
}

// Tracks runs the configured search.
func (s *SearchSource) Tracks(ctx context.Context, kind listing.Kind, limit int) ([]track.Track, error) {
	return s.searcher.Search(ctx, kind, s.config.Term, limit)
}

// Name returns the source name.
func (s *SearchSource) Name() string {
	return "search"
}
