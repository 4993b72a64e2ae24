// Package store persists imported audio files and their metadata on disk.
package store

import (
	"context"
	"encoding/json"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/20after4/configdir"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/surabhi/internal/domain/track"
)

// Errors
var (
	ErrNotFound  = errors.New("track not found in store")
	ErrInvalidID = errors.New("invalid track id")
)

const (
	audioExt = ".audio"
	metaExt  = ".json"
)

// Record is a track to persist together with its library position.
type Record struct {
	Track      track.Track
	Format     string    // Original file extension, e.g. ".mp3"
	ImportedAt time.Time // Import batch time; newer batches list first
	BatchIndex int       // Position within the import batch
}

// metadata is the on-disk form of a Record. Artwork and source are not
// stored; they are rebuilt on load.
type metadata struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Artist     string    `json:"artist"`
	Album      string    `json:"album"`
	Format     string    `json:"format"`
	ImportedAt time.Time `json:"imported_at"`
	BatchIndex int       `json:"batch_index"`
}

// Store keeps one audio payload and one metadata file per track in dir.
type Store struct {
	dir string
}

// New creates a store rooted at dir, creating it if needed.
func New(dir string) (*Store, error) {
	if err := configdir.MakePath(dir); err != nil {
		return nil, errors.Wrapf(err, "failed to create store dir %s", dir)
	}
	return &Store{dir: dir}, nil
}

// Save writes the audio payload and then the metadata for rec. The metadata
// file is the commit marker: a record without one is never loaded.
// Returns the track with its source pointing at the stored payload.
func (s *Store) Save(ctx context.Context, rec Record, audio io.Reader) (track.Track, error) {
	id := rec.Track.ID
	if err := validateID(id); err != nil {
		return track.Track{}, err
	}
	if err := ctx.Err(); err != nil {
		return track.Track{}, err
	}

	if err := writeFile(s.audioPath(id), audio); err != nil {
		return track.Track{}, errors.Wrapf(err, "failed to store audio for %s", id)
	}

	meta := metadata{
		ID:         id,
		Title:      rec.Track.Title,
		Artist:     rec.Track.Artist,
		Album:      rec.Track.Album,
		Format:     strings.ToLower(rec.Format),
		ImportedAt: rec.ImportedAt,
		BatchIndex: rec.BatchIndex,
	}
	data, err := json.Marshal(meta)
	if err != nil {
		_ = os.Remove(s.audioPath(id))
		return track.Track{}, errors.Wrapf(err, "failed to encode metadata for %s", id)
	}
	if err := writeFile(s.metaPath(id), strings.NewReader(string(data))); err != nil {
		_ = os.Remove(s.audioPath(id))
		return track.Track{}, errors.Wrapf(err, "failed to store metadata for %s", id)
	}

	return s.trackFor(meta), nil
}

// LoadAll returns every committed track, newest batch first and in import
// order within a batch. Corrupt or incomplete records are skipped.
func (s *Store) LoadAll(ctx context.Context) ([]track.Track, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read store dir %s", s.dir)
	}

	metas := make([]metadata, 0, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() || filepath.Ext(e.Name()) != metaExt {
			continue
		}

		meta, err := s.readMeta(strings.TrimSuffix(e.Name(), metaExt))
		if err != nil {
			zlog.Warn().Msgf("store: skipping record: file=%s error=%v", e.Name(), err)
			continue
		}
		metas = append(metas, meta)
	}

	sort.SliceStable(metas, func(i, j int) bool {
		if !metas[i].ImportedAt.Equal(metas[j].ImportedAt) {
			return metas[i].ImportedAt.After(metas[j].ImportedAt)
		}
		return metas[i].BatchIndex < metas[j].BatchIndex
	})

	tracks := make([]track.Track, 0, len(metas))
	for _, m := range metas {
		tracks = append(tracks, s.trackFor(m))
	}
	return tracks, nil
}

// Delete removes the record for id.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// Metadata first so a partial delete never leaves a loadable record.
	if err := os.Remove(s.metaPath(id)); err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(ErrNotFound, "id %s", id)
		}
		return errors.Wrapf(err, "failed to delete metadata for %s", id)
	}
	if err := os.Remove(s.audioPath(id)); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to delete audio for %s", id)
	}
	return nil
}

func (s *Store) readMeta(id string) (metadata, error) {
	if err := validateID(id); err != nil {
		return metadata{}, err
	}

	data, err := os.ReadFile(s.metaPath(id))
	if err != nil {
		return metadata{}, err
	}

	var meta metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return metadata{}, errors.Wrap(err, "corrupt metadata")
	}
	if meta.ID != id {
		return metadata{}, errors.Newf("metadata id %q does not match file", meta.ID)
	}
	if _, err := os.Stat(s.audioPath(id)); err != nil {
		return metadata{}, errors.Wrap(err, "missing audio payload")
	}
	return meta, nil
}

func (s *Store) trackFor(m metadata) track.Track {
	return track.Track{
		ID:         m.ID,
		Title:      m.Title,
		Artist:     m.Artist,
		Album:      m.Album,
		ArtworkURL: track.DefaultArtwork,
		SourceURL:  FileURL(s.audioPath(m.ID)),
		Origin:     track.OriginLocal,
	}
}

func (s *Store) audioPath(id string) string {
	return filepath.Join(s.dir, id+audioExt)
}

func (s *Store) metaPath(id string) string {
	return filepath.Join(s.dir, id+metaExt)
}

// FileURL returns the file:// locator for an absolute or relative path.
func FileURL(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.Wrapf(ErrInvalidID, "%q", id)
	}
	return nil
}

// writeFile writes r to a temp file next to path and renames it into place.
func writeFile(path string, r io.Reader) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
