// Package kvstore provides a small file-backed string key-value store.
package kvstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/20after4/configdir"
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
)

// Store keeps string values by key in a single JSON file.
// Every Set rewrites the file.
type Store struct {
	mu     sync.Mutex
	path   string
	values map[string]string
}

// Open opens the store at path, creating its directory if needed.
// A missing file is an empty store. A file that cannot be parsed is logged
// and treated as empty; it is replaced on the next write.
func Open(path string) (*Store, error) {
	if err := configdir.MakePath(filepath.Dir(path)); err != nil {
		return nil, errors.Wrapf(err, "failed to create store directory for %s", path)
	}

	s := &Store{
		path:   path,
		values: make(map[string]string),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, errors.Wrapf(err, "failed to read store %s", path)
	}

	if err := json.Unmarshal(data, &s.values); err != nil {
		zlog.Warn().Msgf("kvstore: ignoring unreadable store: path=%s error=%v", path, err)
		s.values = make(map[string]string)
	}
	return s, nil
}

// Get returns the value stored under key.
func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.values[key]
	return v, ok
}

// Set stores value under key and writes the store to disk.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.values[key]
	s.values[key] = value
	if err := s.flushLocked(); err != nil {
		if had {
			s.values[key] = prev
		} else {
			delete(s.values, key)
		}
		return err
	}
	return nil
}

// Delete removes key and writes the store to disk.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.values[key]; !ok {
		return nil
	}
	delete(s.values, key)
	return s.flushLocked()
}

// flushLocked writes to a temp file and renames it over the store.
func (s *Store) flushLocked() error {
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode store")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write store %s", s.path)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrapf(err, "failed to replace store %s", s.path)
	}
	return nil
}
