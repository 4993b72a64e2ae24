// Package catalog searches remote song catalogs and builds the home listings.
package catalog

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"github.com/osa030/surabhi/internal/domain/listing"
	"github.com/osa030/surabhi/internal/domain/track"
)

// Provider is the interface for catalog search providers.
type Provider interface {
	// Search returns tracks matching query, at most limit of them.
	Search(ctx context.Context, query string, limit int) ([]track.Track, error)

	// Name returns the provider name (used in config).
	Name() string
}

// Searcher resolves free-text queries for a listing.
type Searcher interface {
	Search(ctx context.Context, kind listing.Kind, query string, limit int) ([]track.Track, error)
}

// ListingSource produces the tracks of a home listing.
type ListingSource interface {
	Tracks(ctx context.Context, kind listing.Kind, limit int) ([]track.Track, error)
	Name() string
}

// decodeSettings fills out from a provider settings map, then applies
// defaults and validation tags.
func decodeSettings(settings map[string]any, out any) error {
	if err := mapstructure.Decode(settings, out); err != nil {
		return errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(out); err != nil {
		return errors.Wrap(err, "failed to set defaults")
	}
	if err := validator.New().Struct(out); err != nil {
		return errors.Wrap(err, "validation failed")
	}
	return nil
}
