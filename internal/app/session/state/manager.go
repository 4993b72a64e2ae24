package state

import (
	"slices"
	"sync"
	"time"

	"github.com/osa030/surabhi/internal/domain/listing"
	"github.com/osa030/surabhi/internal/domain/track"
)

// Manager manages session state with thread-safe access.
type Manager struct {
	mu sync.RWMutex

	// Session identity
	sessionID string

	// Session lifecycle
	phase     Phase
	startedAt time.Time

	// Catalog listings by kind, plus the query behind search-results
	listings    map[listing.Kind]listing.Listing
	searchQuery string
}

// New creates a new state manager.
func New(sessionID string) *Manager {
	return &Manager{
		sessionID: sessionID,
		phase:     PhaseStarting,
		listings:  make(map[listing.Kind]listing.Listing),
	}
}

// GetPhase returns the current session phase.
func (m *Manager) GetPhase() Phase {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.phase
}

// SetPhase sets the session phase. Entering PhaseReady records the start time.
func (m *Manager) SetPhase(p Phase) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.phase = p
	if p == PhaseReady && m.startedAt.IsZero() {
		m.startedAt = time.Now()
	}
}

// IsReady returns true if the session accepts player operations.
func (m *Manager) IsReady() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.phase == PhaseReady
}

// GetSessionID returns the session ID.
func (m *Manager) GetSessionID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessionID
}

// GetStartedAt returns when the session became ready, or zero.
func (m *Manager) GetStartedAt() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.startedAt
}

// SetListing stores a catalog listing, replacing any previous one of its kind.
func (m *Manager) SetListing(l listing.Listing) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l.Tracks = slices.Clone(l.Tracks)
	m.listings[l.Kind] = l
}

// GetListing returns a copy of the stored listing of kind.
func (m *Manager) GetListing(kind listing.Kind) (listing.Listing, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.listings[kind]
	if !ok {
		return listing.Listing{}, false
	}
	l.Tracks = slices.Clone(l.Tracks)
	return l, true
}

// SetSearch stores the search-results listing together with its query.
func (m *Manager) SetSearch(query string, l listing.Listing) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l.Tracks = slices.Clone(l.Tracks)
	m.listings[listing.KindSearchResults] = l
	m.searchQuery = query
}

// GetSearchQuery returns the query behind the search-results listing.
func (m *Manager) GetSearchQuery() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.searchQuery
}

// FindTrack looks up a track by ID across the stored listings.
func (m *Manager) FindTrack(id string) (track.Track, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, kind := range listing.Kinds {
		l, ok := m.listings[kind]
		if !ok {
			continue
		}
		if t, ok := l.Find(id); ok {
			return t, true
		}
	}
	return track.Track{}, false
}
