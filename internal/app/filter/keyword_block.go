package filter

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/surabhi/internal/domain/listing"
	"github.com/osa030/surabhi/internal/domain/track"
)

// KeywordBlockConfig represents the configuration for KeywordBlockFilter.
type KeywordBlockConfig struct {
	Keywords []string `yaml:"keywords" mapstructure:"keywords" default:"[\"karaoke\"]" validate:"min=1,dive,required"`
	Field    string   `yaml:"field" mapstructure:"field" default:"title" validate:"oneof=title artist any"`
}

// KeywordBlockFilter drops catalog results whose title or artist contains a
// blocked keyword, such as karaoke or instrumental versions.
type KeywordBlockFilter struct {
	config *KeywordBlockConfig
}

// NewKeywordBlockFilter creates a new keyword block filter.
func NewKeywordBlockFilter() *KeywordBlockFilter {
	return &KeywordBlockFilter{}
}

func (f *KeywordBlockFilter) Name() string {
	return "keyword_block_filter"
}

func (f *KeywordBlockFilter) Description() string {
	return "Drops results whose title or artist contains a blocked keyword"
}

func (f *KeywordBlockFilter) ReturnCodes() []string {
	return []string{"blocked_keyword"}
}

func (f *KeywordBlockFilter) ValidateConfig(settings map[string]any) error {
	var config KeywordBlockConfig

	// Decode map[string]any to struct using mapstructure
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &config,
		TagName: "mapstructure",
	})
	if err != nil {
		return errors.Wrap(err, "failed to create decoder")
	}

	if err := decoder.Decode(settings); err != nil {
		return errors.Wrap(err, "failed to decode settings")
	}

	// Set defaults
	if err := defaults.Set(&config); err != nil {
		return errors.Wrap(err, "failed to set defaults")
	}

	// Validate using validator
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return errors.Wrap(err, "validation failed")
	}

	for i, k := range config.Keywords {
		config.Keywords[i] = strings.ToLower(strings.TrimSpace(k))
	}

	f.config = &config
	zlog.Info().Msgf("keyword block filter config: %+v", config)
	return nil
}

func (f *KeywordBlockFilter) AppliesTo(kind listing.Kind) bool {
	// Home listings only; search results and the user's own lists pass through
	return kind == listing.KindTrending || kind == listing.KindNewReleases
}

func (f *KeywordBlockFilter) Check(ctx context.Context, t track.Track, accepted []track.Track) Result {
	// If config is not set, accept all tracks
	if f.config == nil {
		return Accept()
	}

	var fields []string
	switch f.config.Field {
	case "title":
		fields = []string{t.Title}
	case "artist":
		fields = []string{t.Artist}
	default:
		fields = []string{t.Title, t.Artist}
	}

	for _, field := range fields {
		lower := strings.ToLower(field)
		for _, k := range f.config.Keywords {
			if strings.Contains(lower, k) {
				return Reject("blocked_keyword")
			}
		}
	}

	return Accept()
}

func init() {
	Register("keyword_block_filter", func() Filter {
		return NewKeywordBlockFilter()
	})
}
