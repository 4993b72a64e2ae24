// Package track provides the Track domain entity.
package track

import (
	"strings"

	"github.com/samber/lo"
)

// Origin tells where a track's audio comes from.
type Origin string

const (
	OriginRemote Origin = "remote" // Catalog preview streamed over HTTP
	OriginLocal  Origin = "local"  // File imported into the local library
)

// DefaultArtwork is the artwork reference used for tracks without cover art.
const DefaultArtwork = "default"

// DefaultArtworkURI is the inline image served for DefaultArtwork.
const DefaultArtworkURI = "data:image/svg+xml,%3Csvg xmlns='http://www.w3.org/2000/svg' width='600' height='600' viewBox='0 0 600 600'%3E%3Cdefs%3E%3ClinearGradient id='grad' x1='0%25' y1='0%25' x2='100%25' y2='100%25'%3E%3Cstop offset='0%25' style='stop-color:%238b5cf6;stop-opacity:1' /%3E%3Cstop offset='100%25' style='stop-color:%23ec4899;stop-opacity:1' /%3E%3C/linearGradient%3E%3C/defs%3E%3Crect width='600' height='600' fill='url(%23grad)' /%3E%3Ccircle cx='300' cy='300' r='120' fill='none' stroke='white' stroke-width='20' opacity='0.5' /%3E%3Ccircle cx='300' cy='300' r='60' fill='white' opacity='0.5' /%3E%3C/svg%3E"

// Track represents a playable unit of audio.
// Tracks are values: copy them freely, never mutate a shared one.
type Track struct {
	ID         string `json:"id"`          // Provider-prefixed ID or UUID for local tracks
	Title      string `json:"title"`       // Display title
	Artist     string `json:"artist"`      // Display artist
	Album      string `json:"album"`       // Collection name
	ArtworkURL string `json:"artwork_url"` // Artwork reference (URL or DefaultArtwork)
	SourceURL  string `json:"source_url"`  // http(s):// or file:// audio locator
	Origin     Origin `json:"origin"`      // remote or local
}

// IsPlayable reports whether the track has an audio source to load.
func (t Track) IsPlayable() bool {
	return t.ID != "" && t.SourceURL != ""
}

// HighResArtwork returns a 600x600 variant of the artwork reference.
// Catalog thumbnails embed their size in the URL, so the upgrade is a rewrite.
func (t Track) HighResArtwork() string {
	if t.ArtworkURL == "" || t.ArtworkURL == DefaultArtwork {
		return DefaultArtworkURI
	}
	return strings.Replace(t.ArtworkURL, "100x100", "600x600", 1)
}

// IndexOf returns the offset of the track with the given ID, or -1.
func IndexOf(tracks []Track, id string) int {
	for i, t := range tracks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// IDs returns the IDs of the given tracks in order.
func IDs(tracks []Track) []string {
	return lo.Map(tracks, func(t Track, _ int) string {
		return t.ID
	})
}
