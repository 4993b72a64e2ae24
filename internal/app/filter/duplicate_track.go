package filter

import (
	"context"
	"regexp"
	"strings"

	"github.com/osa030/surabhi/internal/domain/listing"
	"github.com/osa030/surabhi/internal/domain/track"
)

// DuplicateTrackFilter drops repeats within one result list.
// Detects:
// - Exact track ID matches
// - Remasters and alternate versions (normalized title + same main artist)
// Excludes:
// - Cover songs (same title but different artist)
type DuplicateTrackFilter struct{}

// NewDuplicateTrackFilter creates a new duplicate track filter.
func NewDuplicateTrackFilter() *DuplicateTrackFilter {
	return &DuplicateTrackFilter{}
}

// Name returns the filter name.
func (f *DuplicateTrackFilter) Name() string {
	return "duplicate_track_filter"
}

// Description returns the filter description.
func (f *DuplicateTrackFilter) Description() string {
	return "Drops repeated tracks and remastered versions of a track already listed. Covers by other artists are kept"
}

// ReturnCodes returns possible return codes.
func (f *DuplicateTrackFilter) ReturnCodes() []string {
	return []string{"duplicate_track"}
}

// AppliesTo returns which listings this filter applies to.
// Only the curated home listings are de-duplicated; search results and the
// user's own lists are shown as they are.
func (f *DuplicateTrackFilter) AppliesTo(kind listing.Kind) bool {
	return kind == listing.KindTrending || kind == listing.KindNewReleases
}

// ValidateConfig validates the filter configuration.
func (f *DuplicateTrackFilter) ValidateConfig(config map[string]any) error {
	// No configuration needed
	return nil
}

// Check checks if the track duplicates one already accepted.
func (f *DuplicateTrackFilter) Check(ctx context.Context, requested track.Track, accepted []track.Track) Result {
	for _, t := range accepted {
		// 1. Exact track ID match
		if t.ID == requested.ID {
			return Reject("duplicate_track")
		}

		// 2. Remaster detection: normalized title + same artist
		if isRemaster(t, requested) {
			return Reject("duplicate_track")
		}
	}

	return Accept()
}

// isRemaster checks if two tracks are the same song (remaster/different version).
func isRemaster(track1, track2 track.Track) bool {
	if normalizeTrackName(track1.Title) != normalizeTrackName(track2.Title) {
		return false
	}

	// Same normalized title by a different artist is a cover
	return isSameArtist(track1, track2)
}

var (
	// Version markers are only stripped as a trailing " - ..." suffix or a
	// bracketed part, so words like "Alive" or "Live Your Life" survive.
	remasterPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\s+-\s+(\d{4}\s+)?remaster(ed)?(\s+\d{4})?(\s+version)?$`), // "- 2011 Remaster"
		regexp.MustCompile(`\s*\(remaster(ed)?\s*\d{0,4}\)`),                           // "(Remastered 2023)"
		regexp.MustCompile(`\s*\[remaster(ed)?\s*\d{0,4}\]`),                           // "[Remastered]"
		regexp.MustCompile(`\s*\([^)]*\bremaster[^)]*\)`),                              // "(Any Remaster text)"
		regexp.MustCompile(`\s*\[[^\]]*\bremaster[^\]]*\]`),                            // "[Any Remaster text]"
	}

	versionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\s*\([^)]*\bversion\)`),                   // "(Single Version)"
		regexp.MustCompile(`\s*\([^)]*\bedit\)`),                      // "(Radio Edit)"
		regexp.MustCompile(`\s*\(from\s+[^)]*\)`),                     // "(From \"Film\")"
		regexp.MustCompile(`\s*\(live\b[^)]*\)`),                      // "(Live at Wembley)"
		regexp.MustCompile(`\s+-\s+live\b.*$`),                        // "- Live"
		regexp.MustCompile(`\s+-\s+(radio\s+edit|single\s+version)$`), // "- Radio Edit"
	}

	whitespace = regexp.MustCompile(`\s+`)

	artistSeparators = regexp.MustCompile(`(?i)\s*(,|&|\bfeat\.?|\bft\.?)\s*`)
)

// normalizeTrackName removes remaster information and version details.
func normalizeTrackName(name string) string {
	normalized := strings.ToLower(name)

	for _, pattern := range remasterPatterns {
		normalized = pattern.ReplaceAllString(normalized, "")
	}
	for _, pattern := range versionPatterns {
		normalized = pattern.ReplaceAllString(normalized, "")
	}

	normalized = strings.TrimSpace(normalized)
	normalized = whitespace.ReplaceAllString(normalized, " ")

	// Remove trailing dashes
	return strings.TrimRight(normalized, " -")
}

// mainArtist returns the first credited artist.
func mainArtist(artist string) string {
	parts := artistSeparators.Split(strings.TrimSpace(artist), 2)
	return strings.TrimSpace(parts[0])
}

// isSameArtist checks if two tracks have the same main artist.
func isSameArtist(track1, track2 track.Track) bool {
	a1, a2 := mainArtist(track1.Artist), mainArtist(track2.Artist)
	if a1 == "" || a2 == "" {
		return false
	}

	// Compare main artist, case-insensitive
	return strings.EqualFold(a1, a2)
}
