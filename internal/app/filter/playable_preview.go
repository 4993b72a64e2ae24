package filter

import (
	"context"

	"github.com/osa030/surabhi/internal/domain/listing"
	"github.com/osa030/surabhi/internal/domain/track"
)

// PlayablePreviewFilter drops catalog entries that have no audio to load.
type PlayablePreviewFilter struct{}

// NewPlayablePreviewFilter creates a new playable preview filter.
func NewPlayablePreviewFilter() *PlayablePreviewFilter {
	return &PlayablePreviewFilter{}
}

func (f *PlayablePreviewFilter) Name() string {
	return "playable_preview_filter"
}

func (f *PlayablePreviewFilter) Description() string {
	return "Drops results without an ID or a preview URL"
}

func (f *PlayablePreviewFilter) ReturnCodes() []string {
	return []string{"no_preview"}
}

func (f *PlayablePreviewFilter) ValidateConfig(settings map[string]any) error {
	// No configuration needed
	return nil
}

func (f *PlayablePreviewFilter) AppliesTo(kind listing.Kind) bool {
	// Every listing needs loadable tracks
	return true
}

func (f *PlayablePreviewFilter) Check(ctx context.Context, t track.Track, accepted []track.Track) Result {
	if !t.IsPlayable() {
		return Reject("no_preview")
	}
	return Accept()
}
