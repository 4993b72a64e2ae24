package catalog

import (
	"context"
	"time"

	"github.com/osa030/surabhi/internal/domain/track"
	"github.com/osa030/surabhi/internal/infra/itunes"
)

// ITunesClient defines the iTunes operations needed by ITunesProvider.
type ITunesClient interface {
	Search(ctx context.Context, term string, limit int) ([]track.Track, error)
}

type ITunesProviderConfig struct {
	BaseURL   string `yaml:"base_url" mapstructure:"base_url" validate:"omitempty,url"`
	Country   string `yaml:"country" mapstructure:"country" validate:"omitempty,len=2"`
	TimeoutMs int    `yaml:"timeout_ms" mapstructure:"timeout_ms" default:"10000" validate:"gte=100"`
	RetryMax  int    `yaml:"retry_max" mapstructure:"retry_max" default:"2" validate:"gte=0,lte=10"`
}

// ITunesProvider searches the public iTunes Search API.
type ITunesProvider struct {
	client ITunesClient
	config *ITunesProviderConfig
}

// NewITunesProvider creates a new ITunesProvider. The API needs no
// credentials, so settings may be empty.
func NewITunesProvider(settings map[string]any) (*ITunesProvider, error) {
	var config ITunesProviderConfig
	if err := decodeSettings(settings, &config); err != nil {
		return nil, err
	}

	client := itunes.New(itunes.Config{
		BaseURL:  config.BaseURL,
		Country:  config.Country,
		Timeout:  time.Duration(config.TimeoutMs) * time.Millisecond,
		RetryMax: config.RetryMax,
	})

	return &ITunesProvider{client: client, config: &config}, nil
}

// Search searches iTunes for songs with a preview.
func (p *ITunesProvider) Search(ctx context.Context, query string, limit int) ([]track.Track, error) {
	return p.client.Search(ctx, query, limit)
}

// Name returns the provider name.
func (p *ITunesProvider) Name() string {
	return "itunes"
}
