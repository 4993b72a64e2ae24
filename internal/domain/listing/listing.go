// Package listing provides the Listing domain entity.
package listing

import (
	"github.com/cockroachdb/errors"

	"github.com/osa030/surabhi/internal/domain/track"
)

// Kind identifies a listing the user can start playback from.
type Kind string

const (
	KindTrending      Kind = "trending"
	KindNewReleases   Kind = "new-releases"
	KindSearchResults Kind = "search-results"
	KindFavorites     Kind = "favorites"
	KindLocalLibrary  Kind = "local-library"
)

// Kinds lists every listing kind in display order.
var Kinds = []Kind{KindLocalLibrary, KindTrending, KindNewReleases, KindSearchResults, KindFavorites}

// ErrUnknownKind is returned by ParseKind for unrecognised names.
var ErrUnknownKind = errors.New("unknown listing kind")

// ParseKind parses a listing kind name.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", errors.Wrapf(ErrUnknownKind, "%q", s)
}

// Listing is a named, ordered list of tracks.
type Listing struct {
	Kind   Kind          // Which listing this is
	Title  string        // Display title
	Tracks []track.Track // Tracks in display order
}

// TrackIDs returns all track IDs in the listing.
func (l *Listing) TrackIDs() []string {
	return track.IDs(l.Tracks)
}

// Find returns the track with the given ID.
func (l *Listing) Find(id string) (track.Track, bool) {
	i := track.IndexOf(l.Tracks, id)
	if i < 0 {
		return track.Track{}, false
	}
	return l.Tracks[i], true
}

// Len returns the number of tracks.
func (l *Listing) Len() int {
	return len(l.Tracks)
}
