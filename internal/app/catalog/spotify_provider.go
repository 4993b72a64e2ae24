package catalog

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/osa030/surabhi/internal/domain/track"
	"github.com/osa030/surabhi/internal/infra/spotify"
)

// SpotifyClient defines the Spotify operations needed by SpotifyProvider.
type SpotifyClient interface {
	Search(ctx context.Context, query string, limit int) ([]track.Track, error)
}

type SpotifyProviderConfig struct {
	ClientID     string `yaml:"client_id" mapstructure:"client_id" validate:"required"`
	ClientSecret string `yaml:"client_secret" mapstructure:"client_secret" validate:"required"`
	Market       string `yaml:"market" mapstructure:"market" validate:"omitempty,len=2"`
}

// SpotifyProvider searches the Spotify Web API with app-only credentials.
type SpotifyProvider struct {
	client SpotifyClient
	config *SpotifyProviderConfig
}

// NewSpotifyProvider creates a new SpotifyProvider. ctx bounds the token
// source of the underlying client.
func NewSpotifyProvider(ctx context.Context, settings map[string]any) (*SpotifyProvider, error) {
	if len(settings) == 0 {
		return nil, errors.New("settings are required")
	}

	var config SpotifyProviderConfig
	if err := decodeSettings(settings, &config); err != nil {
		return nil, err
	}

	client, err := spotify.New(ctx, spotify.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		Market:       config.Market,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create spotify client")
	}

	return &SpotifyProvider{client: client, config: &config}, nil
}

// Search searches Spotify for tracks. Tracks without a preview are dropped
// later by the playable preview filter.
func (p *SpotifyProvider) Search(ctx context.Context, query string, limit int) ([]track.Track, error) {
	return p.client.Search(ctx, query, limit)
}

// Name returns the provider name.
func (p *SpotifyProvider) Name() string {
	return "spotify"
}
