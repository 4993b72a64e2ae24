package favorites

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/surabhi/internal/domain/track"
	"github.com/osa030/surabhi/internal/infra/kvstore"
)

func TestSet_Toggle(t *testing.T) {
	s := NewSet()
	a := track.Track{ID: "itunes:1", Title: "A"}
	b := track.Track{ID: "itunes:2", Title: "B"}

	assert.True(t, s.Toggle(a))
	assert.True(t, s.Toggle(b))
	assert.True(t, s.Contains("itunes:1"))
	assert.Equal(t, []string{"itunes:1", "itunes:2"}, track.IDs(s.List()))

	// Toggling again removes by ID, even with different metadata
	assert.False(t, s.Toggle(track.Track{ID: "itunes:1", Title: "renamed"}))
	assert.False(t, s.Contains("itunes:1"))
	assert.Equal(t, 1, s.Len())
}

func TestSet_ToggleTwiceRestores(t *testing.T) {
	s := NewSet()
	s.Load([]track.Track{{ID: "x"}})
	before := s.List()

	s.Toggle(track.Track{ID: "y"})
	s.Toggle(track.Track{ID: "y"})

	assert.Equal(t, before, s.List())
}

func TestSet_LoadDropsInvalid(t *testing.T) {
	s := NewSet()
	s.Load([]track.Track{{ID: "a"}, {ID: ""}, {ID: "b"}, {ID: "a", Title: "dup"}})

	assert.Equal(t, []string{"a", "b"}, track.IDs(s.List()))
	select {
	case <-s.Changed():
		t.Fatal("Load must not signal a change")
	default:
	}
}

func TestSet_ChangedCoalesces(t *testing.T) {
	s := NewSet()
	s.Toggle(track.Track{ID: "a"})
	s.Toggle(track.Track{ID: "b"})
	s.Toggle(track.Track{ID: "c"})

	<-s.Changed()
	select {
	case <-s.Changed():
		t.Fatal("expected a single pending notification")
	default:
	}
}

func TestKVPersister_RoundTrip(t *testing.T) {
	kv, err := kvstore.Open(filepath.Join(t.TempDir(), "kv.json"))
	require.NoError(t, err)
	p := NewKVPersister(kv)

	tracks, err := p.Load()
	require.NoError(t, err)
	assert.Empty(t, tracks)

	want := []track.Track{
		{ID: "itunes:1", Title: "A", Artist: "X", SourceURL: "https://example.com/a.m4a", Origin: track.OriginRemote},
	}
	require.NoError(t, p.Save(want))

	raw, ok := kv.Get(StorageKey)
	require.True(t, ok)
	assert.Contains(t, raw, `"id":"itunes:1"`)

	got, err := p.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadFrom_CorruptDataIsEmpty(t *testing.T) {
	kv, err := kvstore.Open(filepath.Join(t.TempDir(), "kv.json"))
	require.NoError(t, err)
	require.NoError(t, kv.Set(StorageKey, "not json"))

	s := LoadFrom(NewKVPersister(kv))
	assert.Equal(t, 0, s.Len())
}

type memPersister struct {
	mu    sync.Mutex
	saves [][]track.Track
	err   error
}

func (m *memPersister) Load() ([]track.Track, error) { return nil, nil }

func (m *memPersister) Save(tracks []track.Track) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.saves = append(m.saves, tracks)
	return nil
}

func (m *memPersister) last() ([]track.Track, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.saves) == 0 {
		return nil, 0
	}
	return m.saves[len(m.saves)-1], len(m.saves)
}

func TestSaver_WritesFullSetOnChange(t *testing.T) {
	s := NewSet()
	p := &memPersister{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewSaver(s, p).Run(ctx)
		close(done)
	}()

	s.Toggle(track.Track{ID: "a"})
	s.Toggle(track.Track{ID: "b"})

	assert.Eventually(t, func() bool {
		last, _ := p.last()
		return len(last) == 2
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestSaver_FlushesOnCancel(t *testing.T) {
	s := NewSet()
	p := &memPersister{}
	s.Toggle(track.Track{ID: "a"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	NewSaver(s, p).Run(ctx)

	last, n := p.last()
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"a"}, track.IDs(last))
}

func TestSaver_SaveErrorKeepsRunning(t *testing.T) {
	s := NewSet()
	p := &memPersister{err: errors.New("disk full")}
	s.Toggle(track.Track{ID: "a"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	NewSaver(s, p).Run(ctx)

	_, n := p.last()
	assert.Equal(t, 0, n)
	assert.True(t, s.Contains("a"))
}
