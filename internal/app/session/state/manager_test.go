package state

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/osa030/surabhi/internal/domain/listing"
	"github.com/osa030/surabhi/internal/domain/track"
)

func TestManager_Phase(t *testing.T) {
	m := New("session-1")

	assert.Equal(t, PhaseStarting, m.GetPhase())
	assert.False(t, m.IsReady())
	assert.True(t, m.GetStartedAt().IsZero())

	m.SetPhase(PhaseReady)
	assert.True(t, m.IsReady())
	started := m.GetStartedAt()
	assert.False(t, started.IsZero())

	m.SetPhase(PhaseTerminated)
	assert.False(t, m.IsReady())
	assert.Equal(t, started, m.GetStartedAt())
	assert.Equal(t, "session-1", m.GetSessionID())
}

func TestManager_Listings(t *testing.T) {
	m := New("s")

	_, ok := m.GetListing(listing.KindTrending)
	assert.False(t, ok)

	tracks := []track.Track{{ID: "itunes:1"}, {ID: "itunes:2"}}
	m.SetListing(listing.Listing{Kind: listing.KindTrending, Title: "Trending Now", Tracks: tracks})

	// The stored listing does not alias the caller's slice
	tracks[0].ID = "changed"
	l, ok := m.GetListing(listing.KindTrending)
	assert.True(t, ok)
	assert.Equal(t, []string{"itunes:1", "itunes:2"}, l.TrackIDs())

	m.SetSearch("kesariya", listing.Listing{Kind: listing.KindSearchResults, Tracks: []track.Track{{ID: "itunes:9"}}})
	assert.Equal(t, "kesariya", m.GetSearchQuery())

	found, ok := m.FindTrack("itunes:9")
	assert.True(t, ok)
	assert.Equal(t, "itunes:9", found.ID)

	_, ok = m.FindTrack("missing")
	assert.False(t, ok)
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "starting", PhaseStarting.String())
	assert.Equal(t, "ready", PhaseReady.String())
	assert.Equal(t, "terminated", PhaseTerminated.String())
	assert.Equal(t, "unknown", Phase(42).String())
}
