package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/surabhi/internal/domain/track"
)

func newRecord(title string, at time.Time, idx int) Record {
	return Record{
		Track: track.Track{
			ID:         uuid.NewString(),
			Title:      title,
			Artist:     "Offline Music",
			Album:      "Local Library",
			ArtworkURL: track.DefaultArtwork,
			SourceURL:  "file:///music/" + title + ".mp3",
			Origin:     track.OriginLocal,
		},
		Format:     ".MP3",
		ImportedAt: at,
		BatchIndex: idx,
	}
}

func TestStore_SaveAndLoadAll(t *testing.T) {
	ctx := context.Background()
	s, err := New(filepath.Join(t.TempDir(), "library"))
	require.NoError(t, err)

	rec := newRecord("song", time.Now(), 0)
	saved, err := s.Save(ctx, rec, strings.NewReader("ID3 payload"))
	require.NoError(t, err)

	assert.Equal(t, rec.Track.ID, saved.ID)
	assert.Equal(t, FileURL(s.audioPath(rec.Track.ID)), saved.SourceURL)
	assert.True(t, strings.HasPrefix(saved.SourceURL, "file://"))

	payload, err := os.ReadFile(s.audioPath(rec.Track.ID))
	require.NoError(t, err)
	assert.Equal(t, "ID3 payload", string(payload))

	tracks, err := s.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, saved, tracks[0])
	assert.Equal(t, "song", tracks[0].Title)
	assert.Equal(t, "Offline Music", tracks[0].Artist)
	assert.Equal(t, track.DefaultArtwork, tracks[0].ArtworkURL)
	assert.Equal(t, track.OriginLocal, tracks[0].Origin)
}

func TestStore_LoadAllOrder(t *testing.T) {
	ctx := context.Background()
	s, err := New(t.TempDir())
	require.NoError(t, err)

	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)

	for _, rec := range []Record{
		newRecord("old-1", older, 0),
		newRecord("old-2", older, 1),
		newRecord("new-1", newer, 0),
		newRecord("new-2", newer, 1),
	} {
		_, err := s.Save(ctx, rec, strings.NewReader("x"))
		require.NoError(t, err)
	}

	tracks, err := s.LoadAll(ctx)
	require.NoError(t, err)

	titles := make([]string, len(tracks))
	for i, tr := range tracks {
		titles[i] = tr.Title
	}
	assert.Equal(t, []string{"new-1", "new-2", "old-1", "old-2"}, titles)
}

func TestStore_LoadAllSkipsCorrupt(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)

	_, err = s.Save(ctx, newRecord("good", time.Now(), 0), strings.NewReader("x"))
	require.NoError(t, err)

	// Unparseable metadata
	badID := uuid.NewString()
	require.NoError(t, os.WriteFile(filepath.Join(dir, badID+".json"), []byte("{"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, badID+".audio"), []byte("x"), 0o644))

	// Metadata without payload
	orphanID := uuid.NewString()
	require.NoError(t, os.WriteFile(filepath.Join(dir, orphanID+".json"),
		[]byte(`{"id":"`+orphanID+`","title":"orphan"}`), 0o644))

	// Payload without metadata (uncommitted)
	require.NoError(t, os.WriteFile(filepath.Join(dir, uuid.NewString()+".audio"), []byte("x"), 0o644))

	// Not a track id
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.json"), []byte(`{}`), 0o644))

	tracks, err := s.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, "good", tracks[0].Title)
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	s, err := New(t.TempDir())
	require.NoError(t, err)

	rec := newRecord("gone", time.Now(), 0)
	_, err = s.Save(ctx, rec, strings.NewReader("x"))
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, rec.Track.ID))
	_, statErr := os.Stat(s.audioPath(rec.Track.ID))
	assert.True(t, os.IsNotExist(statErr))

	err = s.Delete(ctx, rec.Track.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	tracks, err := s.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, tracks)
}

func TestStore_RejectsInvalidID(t *testing.T) {
	ctx := context.Background()
	s, err := New(t.TempDir())
	require.NoError(t, err)

	rec := newRecord("x", time.Now(), 0)
	rec.Track.ID = "../escape"
	_, err = s.Save(ctx, rec, strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidID)

	assert.ErrorIs(t, s.Delete(ctx, "../escape"), ErrInvalidID)
}
