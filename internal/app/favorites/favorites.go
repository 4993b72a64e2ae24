// Package favorites provides the persisted set of favorite tracks.
package favorites

import (
	"slices"
	"sync"

	"github.com/samber/lo"

	"github.com/osa030/surabhi/internal/domain/track"
)

// Set is a set of tracks keyed by ID, in insertion order.
type Set struct {
	mu      sync.RWMutex
	tracks  []track.Track
	changed chan struct{}
}

// NewSet creates an empty set.
func NewSet() *Set {
	return &Set{
		tracks:  make([]track.Track, 0),
		changed: make(chan struct{}, 1),
	}
}

// Toggle adds t when no track with its ID is present and removes it
// otherwise. Returns whether t is a favorite afterwards.
func (s *Set) Toggle(t track.Track) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := track.IndexOf(s.tracks, t.ID); i >= 0 {
		s.tracks = slices.Delete(s.tracks, i, i+1)
		s.notifyLocked()
		return false
	}

	s.tracks = append(s.tracks, t)
	s.notifyLocked()
	return true
}

// Contains reports whether a track with the given ID is a favorite.
func (s *Set) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return track.IndexOf(s.tracks, id) >= 0
}

// List returns the favorites in insertion order.
func (s *Set) List() []track.Track {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.tracks)
}

// Len returns the number of favorites.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.tracks)
}

// Load replaces the contents with tracks, dropping entries without an ID
// and repeated IDs. It does not signal a change.
func (s *Set) Load(tracks []track.Track) {
	valid := lo.Filter(tracks, func(t track.Track, _ int) bool {
		return t.ID != ""
	})
	unique := lo.UniqBy(valid, func(t track.Track) string {
		return t.ID
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracks = unique
}

// Changed returns a channel that receives after mutations.
// Bursts of mutations coalesce into one receive.
func (s *Set) Changed() <-chan struct{} {
	return s.changed
}

func (s *Set) notifyLocked() {
	select {
	case s.changed <- struct{}{}:
	default:
		// A change is already pending
	}
}
