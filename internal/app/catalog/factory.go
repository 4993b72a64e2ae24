package catalog

import (
	"context"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/surabhi/internal/app/filter"
	"github.com/osa030/surabhi/internal/domain/listing"
	"github.com/osa030/surabhi/internal/infra/config"
)

// NewProviderChainFromConfig creates a provider chain from configuration.
func NewProviderChainFromConfig(ctx context.Context, cfg config.CatalogConfig, filters *filter.Chain) (*ProviderChain, error) {
	if len(cfg.Providers) == 0 {
		return nil, errors.New("no catalog providers configured")
	}

	var providers []ProviderWithMetadata

	for i, pcfg := range cfg.Providers {
		var provider Provider
		var err error
		zlog.Debug().Msgf("catalog: creating provider: index=%d type=%s", i+1, pcfg.Type)
		switch pcfg.Type {
		case "itunes":
			provider, err = NewITunesProvider(pcfg.Settings)

		case "spotify":
			provider, err = NewSpotifyProvider(ctx, pcfg.Settings)

		default:
			return nil, errors.Newf("unsupported provider type: %s (provider index %d)", pcfg.Type, i)
		}

		if err != nil {
			return nil, errors.Wrapf(err, "failed to create provider (index %d, type %s)", i, pcfg.Type)
		}

		providers = append(providers, ProviderWithMetadata{
			Provider:    provider,
			DisplayName: pcfg.DisplayName,
		})

		zlog.Info().Msgf("catalog: registered provider: index=%d type=%s display_name=%s", i+1, pcfg.Type, pcfg.DisplayName)
	}

	return NewProviderChain(providers, filters), nil
}

// NewListingSource creates the source of one home listing.
func NewListingSource(searcher Searcher, lcfg config.ListingConfig) (ListingSource, error) {
	switch lcfg.Type {
	case "", "search":
		return NewSearchSource(searcher, lcfg.Settings)
	case "lastfm":
		return NewLastFmSource(searcher, lcfg.Settings)
	default:
		return nil, errors.Newf("unsupported listing source type: %s", lcfg.Type)
	}
}

// NewServiceFromConfig creates the provider chain, the home listing sources
// and the service that ties them together.
func NewServiceFromConfig(ctx context.Context, cfg config.CatalogConfig, filters *filter.Chain) (*Service, error) {
	chain, err := NewProviderChainFromConfig(ctx, cfg, filters)
	if err != nil {
		return nil, err
	}

	listings := make([]HomeListing, 0, len(cfg.Listings))
	for i, lcfg := range cfg.Listings {
		kind, err := listing.ParseKind(lcfg.Kind)
		if err != nil {
			return nil, errors.Wrapf(err, "listing index %d", i)
		}
		source, err := NewListingSource(chain, lcfg)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create listing source (index %d, kind %s)", i, lcfg.Kind)
		}
		listings = append(listings, HomeListing{
			Kind:   kind,
			Title:  lcfg.Title,
			Limit:  lcfg.Limit,
			Source: source,
		})
		zlog.Info().Msgf("catalog: registered listing: kind=%s type=%s limit=%d", kind, source.Name(), lcfg.Limit)
	}

	return NewService(chain, filters, Options{
		MinQueryLength: cfg.Search.MinQueryLength,
		SearchLimit:    cfg.Search.Limit,
		Listings:       listings,
	}), nil
}
