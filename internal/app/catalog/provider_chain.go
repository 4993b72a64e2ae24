package catalog

import (
	"context"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/surabhi/internal/app/filter"
	"github.com/osa030/surabhi/internal/domain/listing"
	"github.com/osa030/surabhi/internal/domain/track"
)

// ProviderWithMetadata wraps a provider with its metadata.
type ProviderWithMetadata struct {
	Provider    Provider
	DisplayName string
}

// ProviderChain tries providers in order until one returns results.
type ProviderChain struct {
	providers []ProviderWithMetadata
	filters   *filter.Chain
}

// NewProviderChain creates a new provider chain. filters is applied to the
// output of every provider and may be nil.
func NewProviderChain(providers []ProviderWithMetadata, filters *filter.Chain) *ProviderChain {
	return &ProviderChain{
		providers: providers,
		filters:   filters,
	}
}

// Search returns the first non-empty filtered result. An error is returned
// only when every provider failed; providers that merely found nothing
// yield an empty result.
func (c *ProviderChain) Search(ctx context.Context, kind listing.Kind, query string, limit int) ([]track.Track, error) {
	var lastErr error

	for i, pm := range c.providers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		zlog.Debug().Msgf("catalog: trying provider: index=%d total=%d name=%s provider_type=%s",
			i+1, len(c.providers), pm.DisplayName, pm.Provider.Name())

		results, err := pm.Provider.Search(ctx, query, limit)
		if err != nil {
			zlog.Warn().Msgf("catalog: provider failed, trying next: provider=%s error=%v", pm.DisplayName, err)
			lastErr = err
			continue
		}

		if c.filters != nil {
			results = c.filters.Apply(ctx, kind, results)
		}

		if len(results) == 0 {
			zlog.Debug().Msgf("catalog: provider returned no results: provider=%s query=%q", pm.DisplayName, query)
			continue
		}

		zlog.Debug().Msgf("catalog: provider returned results: provider=%s query=%q count=%d",
			pm.DisplayName, query, len(results))
		return results, nil
	}

	if lastErr != nil {
		return nil, errors.Wrap(lastErr, "all providers failed")
	}
	return []track.Track{}, nil
}
