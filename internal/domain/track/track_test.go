package track

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrack_HighResArtwork(t *testing.T) {
	tests := []struct {
		name     string
		artwork  string
		expected string
	}{
		{
			name:     "catalog thumbnail is upgraded",
			artwork:  "https://is1-ssl.mzstatic.com/image/thumb/Music/v4/aa/100x100bb.jpg",
			expected: "https://is1-ssl.mzstatic.com/image/thumb/Music/v4/aa/600x600bb.jpg",
		},
		{
			name:     "default artwork",
			artwork:  DefaultArtwork,
			expected: DefaultArtworkURI,
		},
		{
			name:     "empty artwork",
			artwork:  "",
			expected: DefaultArtworkURI,
		},
		{
			name:     "url without size is unchanged",
			artwork:  "https://example.com/cover.jpg",
			expected: "https://example.com/cover.jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := Track{ArtworkURL: tt.artwork}
			assert.Equal(t, tt.expected, tr.HighResArtwork())
		})
	}
}

func TestTrack_IsPlayable(t *testing.T) {
	assert.True(t, Track{ID: "itunes:1", SourceURL: "https://example.com/a.mp3"}.IsPlayable())
	assert.False(t, Track{ID: "itunes:1"}.IsPlayable())
	assert.False(t, Track{SourceURL: "https://example.com/a.mp3"}.IsPlayable())
}

func TestIndexOf(t *testing.T) {
	tracks := []Track{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	assert.Equal(t, 0, IndexOf(tracks, "a"))
	assert.Equal(t, 2, IndexOf(tracks, "c"))
	assert.Equal(t, -1, IndexOf(tracks, "x"))
	assert.Equal(t, -1, IndexOf(nil, "a"))
	assert.Equal(t, []string{"a", "b", "c"}, IDs(tracks))
}
