package filter

import (
	"context"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/surabhi/internal/domain/listing"
	"github.com/osa030/surabhi/internal/domain/track"
)

// Chain executes filters in sequence.
type Chain struct {
	filters []Filter
}

// NewChain creates a new filter chain.
func NewChain(filters ...Filter) *Chain {
	c := &Chain{
		filters: make([]Filter, 0, len(filters)),
	}
	for _, f := range filters {
		c.Add(f)
	}
	return c
}

// Add adds a filter to the chain.
func (c *Chain) Add(f Filter) {
	c.filters = append(c.filters, f)
}

// Check runs the filters that apply to kind against t.
// Returns the first rejection, or Accept.
func (c *Chain) Check(ctx context.Context, kind listing.Kind, t track.Track, accepted []track.Track) Result {
	for _, f := range c.filters {
		// Skip filters that don't apply to this listing
		if !f.AppliesTo(kind) {
			continue
		}

		result := f.Check(ctx, t, accepted)
		if !result.Accepted {
			return result
		}
	}
	return Accept()
}

// Apply returns the tracks every applicable filter accepts, in input order.
func (c *Chain) Apply(ctx context.Context, kind listing.Kind, tracks []track.Track) []track.Track {
	accepted := make([]track.Track, 0, len(tracks))
	rejected := make(map[string]int)

	for _, t := range tracks {
		result := c.Check(ctx, kind, t, accepted)
		if !result.Accepted {
			rejected[result.Code]++
			continue
		}
		accepted = append(accepted, t)
	}

	if len(rejected) > 0 {
		zlog.Debug().Msgf("filter: rejected tracks: listing=%s kept=%d rejected=%v", kind, len(accepted), rejected)
	}
	return accepted
}

// Filters returns all filters in the chain.
func (c *Chain) Filters() []Filter {
	return c.filters
}

// Build creates a chain with the playable preview and duplicate filters
// followed by the registered filters named in enabled, in name order.
// enabled maps a filter name to its settings.
func Build(enabled map[string]map[string]any) (*Chain, error) {
	c := NewChain(NewPlayablePreviewFilter(), NewDuplicateTrackFilter())

	for _, name := range RegisteredNames() {
		settings, ok := enabled[name]
		if !ok {
			continue
		}
		f := registry[name]()
		if err := f.ValidateConfig(settings); err != nil {
			return nil, errors.Wrapf(err, "invalid settings for %s", name)
		}
		c.Add(f)
		zlog.Info().Msgf("filter: enabled: name=%s", name)
	}

	for name := range enabled {
		if _, ok := registry[name]; !ok {
			return nil, errors.Newf("unknown filter: %s", name)
		}
	}
	return c, nil
}
