package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/osa030/surabhi/internal/domain/track"
)

func TestNormalizeForMatching(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Kesariya", "kesariya"},
		{"Kesariya (From \"Brahmastra\")", "kesariya"},
		{"Tum Hi Ho - Live", "tum hi ho"},
		{"Señorita", "senorita"},
		{"Café del Mar [Remastered]", "cafe del mar"},
		{"Lean On feat. MØ", "lean on"},
		{"The Weeknd", "weeknd"},
		{"Don't Stop Me Now!", "don t stop me now"},
		{"  Extra   Spaces  ", "extra spaces"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizeForMatching(tt.input))
		})
	}
}

func TestBestMatch(t *testing.T) {
	tests := []struct {
		name       string
		candidates []track.Track
		title      string
		artist     string
		wantID     string
	}{
		{
			name: "exact match wins over cover",
			candidates: []track.Track{
				{ID: "cover", Title: "Kesariya", Artist: "Sing King"},
				{ID: "orig", Title: "Kesariya", Artist: "Arijit Singh"},
			},
			title:  "Kesariya",
			artist: "Arijit Singh",
			wantID: "orig",
		},
		{
			name: "accents and credits are folded",
			candidates: []track.Track{
				{ID: "a", Title: "Despacito (feat. Daddy Yankee)", Artist: "Luis Fonsi & Daddy Yankee"},
			},
			title:  "Despacito",
			artist: "Luis Fonsi",
			wantID: "a",
		},
		{
			name: "closer title preferred",
			candidates: []track.Track{
				{ID: "far", Title: "Tum Hi Ho Bandhu", Artist: "Arijit Singh"},
				{ID: "near", Title: "Tum Hi Ho", Artist: "Arijit Singh"},
			},
			title:  "Tum Hi Ho",
			artist: "Arijit Singh",
			wantID: "near",
		},
		{
			name: "typo tolerated",
			candidates: []track.Track{
				{ID: "a", Title: "Channa Mereya", Artist: "Arijit Singh"},
			},
			title:  "Chana Mereya",
			artist: "Arijit Singh",
			wantID: "a",
		},
		{
			name: "wrong artist rejected",
			candidates: []track.Track{
				{ID: "a", Title: "Hello", Artist: "Lionel Richie"},
			},
			title:  "Hello",
			artist: "Adele",
			wantID: "",
		},
		{
			name: "different song rejected",
			candidates: []track.Track{
				{ID: "a", Title: "Something Else Entirely", Artist: "Adele"},
			},
			title:  "Hello",
			artist: "Adele",
			wantID: "",
		},
		{
			name:       "no candidates",
			candidates: nil,
			title:      "Hello",
			artist:     "Adele",
			wantID:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := bestMatch(tt.candidates, tt.title, tt.artist)
			if tt.wantID == "" {
				assert.False(t, ok)
				return
			}
			assert.True(t, ok)
			assert.Equal(t, tt.wantID, got.ID)
		})
	}
}
