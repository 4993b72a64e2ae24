// Package library manages tracks imported from local audio files.
package library

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/surabhi/internal/domain/track"
	"github.com/osa030/surabhi/internal/infra/store"
)

// Defaults for imported tracks.
const (
	DefaultArtist = "Offline Music"
	DefaultAlbum  = "Local Library"
)

// Errors
var (
	ErrNotFound        = errors.New("track not in library")
	ErrUnsupportedFile = errors.New("unsupported audio file")
	ErrNothingImported = errors.New("no files could be imported")
)

// supportedExts are the file extensions accepted for import.
var supportedExts = []string{".mp3", ".wav", ".flac", ".ogg", ".m4a", ".aac"}

// Store persists imported audio.
type Store interface {
	Save(ctx context.Context, rec store.Record, audio io.Reader) (track.Track, error)
	LoadAll(ctx context.Context) ([]track.Track, error)
	Delete(ctx context.Context, id string) error
}

// Library is the ordered list of local tracks, newest imports first.
type Library struct {
	mu     sync.RWMutex
	store  Store
	tracks []track.Track

	// OnChange is called after the listing changes. Optional.
	OnChange func()

	now   func() time.Time
	newID func() string
}

// New creates an empty library backed by s.
func New(s Store) *Library {
	return &Library{
		store:  s,
		tracks: make([]track.Track, 0),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// IsSupported reports whether path has an importable audio extension.
func IsSupported(path string) bool {
	return slices.Contains(supportedExts, strings.ToLower(filepath.Ext(path)))
}

// Load replaces the listing with the tracks in the store.
func (l *Library) Load(ctx context.Context) error {
	tracks, err := l.store.LoadAll(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to load library")
	}

	l.mu.Lock()
	l.tracks = tracks
	l.mu.Unlock()

	zlog.Info().Msgf("library: loaded: count=%d", len(tracks))
	l.changed()
	return nil
}

// Tracks returns the listing.
func (l *Library) Tracks() []track.Track {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return slices.Clone(l.tracks)
}

// Upload is audio content supplied by a client rather than a local path.
type Upload struct {
	Name    string    // Original file name, including extension
	Content io.Reader // Audio payload
}

// Import creates one track per supported file and prepends the batch to the
// listing in the given order. Files that cannot be read are skipped. A track
// whose save fails stays listed for this run, sourced from its original path.
func (l *Library) Import(ctx context.Context, paths []string) ([]track.Track, error) {
	return l.importBatch(ctx, len(paths), func(i int, batchTime time.Time, index int) (track.Track, error) {
		return l.importPath(ctx, paths[i], batchTime, index)
	})
}

// ImportUploads is Import for client-supplied content. Uploads have no
// fallback location, so one whose save fails is skipped.
func (l *Library) ImportUploads(ctx context.Context, uploads []Upload) ([]track.Track, error) {
	return l.importBatch(ctx, len(uploads), func(i int, batchTime time.Time, index int) (track.Track, error) {
		u := uploads[i]
		if !IsSupported(u.Name) {
			return track.Track{}, errors.Wrapf(ErrUnsupportedFile, "%s", u.Name)
		}
		return l.save(ctx, l.newTrack(u.Name, ""), filepath.Ext(u.Name), u.Content, batchTime, index, false)
	})
}

func (l *Library) importBatch(ctx context.Context, n int, importOne func(i int, batchTime time.Time, index int) (track.Track, error)) ([]track.Track, error) {
	batchTime := l.now()
	imported := make([]track.Track, 0, n)

	for i := range n {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		t, err := importOne(i, batchTime, len(imported))
		if err != nil {
			zlog.Warn().Msgf("library: skipping file: index=%d error=%v", i, err)
			continue
		}
		imported = append(imported, t)
	}

	if len(imported) == 0 {
		if n == 0 {
			return imported, nil
		}
		return nil, ErrNothingImported
	}

	l.mu.Lock()
	l.tracks = append(slices.Clone(imported), l.tracks...)
	l.mu.Unlock()

	zlog.Info().Msgf("library: imported: count=%d", len(imported))
	l.changed()
	return imported, nil
}

func (l *Library) importPath(ctx context.Context, path string, batchTime time.Time, index int) (track.Track, error) {
	if !IsSupported(path) {
		return track.Track{}, errors.Wrapf(ErrUnsupportedFile, "%s", filepath.Base(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return track.Track{}, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return track.Track{}, errors.Wrapf(err, "failed to stat %s", path)
	}
	if info.IsDir() {
		return track.Track{}, errors.Wrapf(ErrUnsupportedFile, "%s is a directory", path)
	}

	return l.save(ctx, l.newTrack(filepath.Base(path), store.FileURL(path)), filepath.Ext(path), f, batchTime, index, true)
}

func (l *Library) newTrack(name, source string) track.Track {
	name = filepath.Base(name)
	return track.Track{
		ID:         l.newID(),
		Title:      strings.TrimSuffix(name, filepath.Ext(name)),
		Artist:     DefaultArtist,
		Album:      DefaultAlbum,
		ArtworkURL: track.DefaultArtwork,
		SourceURL:  source,
		Origin:     track.OriginLocal,
	}
}

func (l *Library) save(ctx context.Context, t track.Track, format string, r io.Reader, batchTime time.Time, index int, keepOnFailure bool) (track.Track, error) {
	saved, err := l.store.Save(ctx, store.Record{
		Track:      t,
		Format:     format,
		ImportedAt: batchTime,
		BatchIndex: index,
	}, r)
	if err != nil {
		if !keepOnFailure {
			return track.Track{}, err
		}
		zlog.Error().Msgf("library: save failed, track kept for this session: id=%s source=%s error=%v", t.ID, t.SourceURL, err)
		return t, nil
	}
	return saved, nil
}

// Remove deletes the track from the store and the listing.
func (l *Library) Remove(ctx context.Context, id string) error {
	l.mu.RLock()
	i := track.IndexOf(l.tracks, id)
	l.mu.RUnlock()
	if i < 0 {
		return errors.Wrapf(ErrNotFound, "id %s", id)
	}

	if err := l.store.Delete(ctx, id); err != nil && !errors.Is(err, store.ErrNotFound) {
		return errors.Wrapf(err, "failed to remove %s", id)
	}

	l.mu.Lock()
	if i := track.IndexOf(l.tracks, id); i >= 0 {
		l.tracks = slices.Delete(l.tracks, i, i+1)
	}
	l.mu.Unlock()

	zlog.Info().Msgf("library: removed: id=%s", id)
	l.changed()
	return nil
}

func (l *Library) changed() {
	if l.OnChange != nil {
		l.OnChange()
	}
}
