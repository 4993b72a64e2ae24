package favorites

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/surabhi/internal/domain/track"
)

// StorageKey is the key the favorites are stored under.
const StorageKey = "surabhi_favorites"

// Persister reads and writes the whole favorites set.
type Persister interface {
	Load() ([]track.Track, error)
	Save(tracks []track.Track) error
}

// KV is the key-value store KVPersister writes to.
type KV interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

// KVPersister stores the favorites as one JSON array under StorageKey.
type KVPersister struct {
	kv KV
}

// NewKVPersister creates a persister backed by kv.
func NewKVPersister(kv KV) *KVPersister {
	return &KVPersister{kv: kv}
}

// Load decodes the stored array. A missing key is an empty set.
func (p *KVPersister) Load() ([]track.Track, error) {
	raw, ok := p.kv.Get(StorageKey)
	if !ok || raw == "" {
		return nil, nil
	}

	var tracks []track.Track
	if err := json.Unmarshal([]byte(raw), &tracks); err != nil {
		return nil, errors.Wrap(err, "failed to decode favorites")
	}
	return tracks, nil
}

// Save encodes tracks and replaces the stored array.
func (p *KVPersister) Save(tracks []track.Track) error {
	if tracks == nil {
		tracks = []track.Track{}
	}
	data, err := json.Marshal(tracks)
	if err != nil {
		return errors.Wrap(err, "failed to encode favorites")
	}
	if err := p.kv.Set(StorageKey, string(data)); err != nil {
		return errors.Wrap(err, "failed to store favorites")
	}
	return nil
}

// LoadFrom creates a set from persisted data. Unreadable data yields an
// empty set and a warning.
func LoadFrom(p Persister) *Set {
	s := NewSet()

	tracks, err := p.Load()
	if err != nil {
		zlog.Warn().Msgf("favorites: starting empty: %v", err)
		return s
	}

	s.Load(tracks)
	zlog.Debug().Msgf("favorites: loaded: count=%d", s.Len())
	return s
}

// Saver writes the set through a Persister whenever it changes.
type Saver struct {
	set       *Set
	persister Persister
}

// NewSaver creates a saver for set.
func NewSaver(set *Set, persister Persister) *Saver {
	return &Saver{set: set, persister: persister}
}

// Run saves on every change notification until ctx is cancelled, then
// flushes any pending change.
func (s *Saver) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			select {
			case <-s.set.Changed():
				s.save()
			default:
			}
			return
		case <-s.set.Changed():
			s.save()
		}
	}
}

func (s *Saver) save() {
	tracks := s.set.List()
	if err := s.persister.Save(tracks); err != nil {
		zlog.Error().Msgf("favorites: save failed: count=%d error=%v", len(tracks), err)
		return
	}
	zlog.Debug().Msgf("favorites: saved: count=%d", len(tracks))
}
