package playback

import (
	"context"
	"math"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/surabhi/internal/domain/track"
)

// Errors
var (
	ErrInvalidTrack    = errors.New("track has no id")
	ErrTrackNotInQueue = errors.New("track is not in the supplied queue")
)

// DefaultRestartThreshold is how far into a track Previous rewinds instead of
// moving to the previous track.
const DefaultRestartThreshold = 3 * time.Second

// Favorites is the favorites set the controller toggles and queries.
type Favorites interface {
	Toggle(t track.Track) bool
	Contains(id string) bool
}

// Config holds controller configuration.
type Config struct {
	InitialVolume    float64         // Starting output level in [0, 1]
	RestartThreshold time.Duration   // Previous rewinds when elapsed exceeds this
	EventBuffer      int             // Size of the event channel buffer
	Favorites        Favorites       // Favorites set (optional)
	Rand             func(n int) int // Shuffle index source, uniform in [0, n)
}

// Controller owns the playback session: the current track, the queue,
// transport state and the single audio sink.
type Controller struct {
	mu sync.Mutex

	sink Sink

	// Queue management
	queue []track.Track
	index int

	// Current track state
	current       *track.Track
	playing       bool
	elapsed       time.Duration
	duration      time.Duration
	durationKnown bool

	// Modes
	volume  float64
	shuffle bool
	repeat  RepeatMode

	// gen is bumped on every Load; sink callbacks from older loads are dropped.
	gen uint64

	config  Config
	eventCh chan Event

	ctx    context.Context
	cancel context.CancelFunc
	closed bool
}

// NewController creates a new playback controller driving the given sink.
func NewController(sink Sink, config Config) *Controller {
	if config.RestartThreshold <= 0 {
		config.RestartThreshold = DefaultRestartThreshold
	}
	if config.EventBuffer <= 0 {
		config.EventBuffer = 64
	}
	if config.Rand == nil {
		config.Rand = rand.IntN
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		sink:    sink,
		queue:   make([]track.Track, 0),
		index:   -1,
		volume:  clampVolume(config.InitialVolume),
		repeat:  RepeatOff,
		config:  config,
		eventCh: make(chan Event, config.EventBuffer),
		ctx:     ctx,
		cancel:  cancel,
	}
	sink.SetVolume(c.volume)
	return c
}

// Events returns the event channel. It is closed by Close.
func (c *Controller) Events() <-chan Event {
	return c.eventCh
}

// Play loads t and starts playback.
//
// A non-nil queue replaces the current queue and must contain t. With a nil
// queue the current queue is kept when it already contains t; otherwise it is
// replaced by a queue holding only t.
func (c *Controller) Play(t track.Track, queue []track.Track) error {
	if t.ID == "" {
		return ErrInvalidTrack
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if queue != nil {
		i := track.IndexOf(queue, t.ID)
		if i < 0 {
			return errors.Wrapf(ErrTrackNotInQueue, "track %s", t.ID)
		}
		c.queue = slices.Clone(queue)
		c.index = i
	} else if i := track.IndexOf(c.queue, t.ID); i >= 0 {
		c.index = i
	} else {
		c.queue = []track.Track{t}
		c.index = 0
	}

	c.loadAndPlayLocked(c.queue[c.index])
	return nil
}

// TogglePlay flips between playing and paused. No-op without a current track.
func (c *Controller) TogglePlay() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return
	}

	if c.playing {
		c.sink.Pause()
		c.playing = false
	} else {
		if err := c.sink.Play(); err != nil {
			c.failLocked(err)
			return
		}
		c.playing = true
	}

	c.sendEventLocked(Event{Type: EventStateChanged})
}

// Next advances according to the repeat and shuffle modes.
func (c *Controller) Next() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextLocked()
}

// Previous rewinds the current track when it has played past the restart
// threshold, and otherwise plays the previous track in the queue (wrapping).
func (c *Controller) Previous() {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.queue)
	if n == 0 {
		return
	}

	if c.current != nil && c.sink.Position() > c.config.RestartThreshold {
		if err := c.sink.SetPosition(0); err != nil {
			zlog.Warn().Msgf("playback: rewind failed: %v", err)
			return
		}
		c.elapsed = 0
		c.sendEventLocked(Event{Type: EventTimeUpdated})
		return
	}

	c.index = (c.index - 1 + n) % n
	c.loadAndPlayLocked(c.queue[c.index])
}

// Seek moves the playback position, clamped to [0, duration].
// No-op without a current track.
func (c *Controller) Seek(pos time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return
	}

	if pos < 0 {
		pos = 0
	}
	if c.durationKnown && pos > c.duration {
		pos = c.duration
	}

	if err := c.sink.SetPosition(pos); err != nil {
		zlog.Warn().Msgf("playback: seek failed: track=%s pos=%v error=%v", c.current.ID, pos, err)
		return
	}
	c.elapsed = pos
	c.sendEventLocked(Event{Type: EventTimeUpdated})
}

// SetVolume sets the output level, clamped to [0, 1].
func (c *Controller) SetVolume(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v = clampVolume(v)
	c.sink.SetVolume(v)
	c.volume = v
	c.sendEventLocked(Event{Type: EventVolumeChanged})
}

// ToggleShuffle flips shuffle mode and returns the new value.
func (c *Controller) ToggleShuffle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.shuffle = !c.shuffle
	c.sendEventLocked(Event{Type: EventModeChanged})
	return c.shuffle
}

// ToggleRepeat cycles the repeat mode off -> all -> one -> off and returns
// the new mode.
func (c *Controller) ToggleRepeat() RepeatMode {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.repeat = c.repeat.Next()
	c.sendEventLocked(Event{Type: EventModeChanged})
	return c.repeat
}

// ToggleFavorite adds t to the favorites when absent and removes it when
// present. Returns the new membership.
func (c *Controller) ToggleFavorite(t track.Track) bool {
	if c.config.Favorites == nil {
		return false
	}
	return c.config.Favorites.Toggle(t)
}

// IsFavorite reports whether the track ID is in the favorites.
func (c *Controller) IsFavorite(id string) bool {
	if c.config.Favorites == nil {
		return false
	}
	return c.config.Favorites.Contains(id)
}

// Snapshot returns a copy of the playback session.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Close stops playback, releases the sink and closes the event channel.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.cancel()
	c.gen++
	if err := c.sink.Close(); err != nil {
		zlog.Warn().Msgf("playback: closing sink: %v", err)
	}
	close(c.eventCh)
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{
		Queue:         slices.Clone(c.queue),
		Index:         c.index,
		Playing:       c.playing,
		Elapsed:       c.elapsed,
		Duration:      c.duration,
		DurationKnown: c.durationKnown,
		Volume:        c.volume,
		Shuffle:       c.shuffle,
		Repeat:        c.repeat,
	}
	if c.current != nil {
		cur := *c.current
		s.Current = &cur
	}
	return s
}

// nextLocked must be called with lock held.
func (c *Controller) nextLocked() {
	n := len(c.queue)
	if n == 0 {
		return
	}

	if c.repeat == RepeatOne {
		c.restartLocked()
		return
	}

	var next int
	if c.shuffle {
		next = c.config.Rand(n)
	} else {
		if c.index == n-1 && c.repeat == RepeatOff {
			c.stopAtEndLocked()
			return
		}
		next = (c.index + 1) % n
	}

	c.index = next
	c.loadAndPlayLocked(c.queue[next])
}

// loadAndPlayLocked points the sink at t and starts it.
// Must be called with lock held.
func (c *Controller) loadAndPlayLocked(t track.Track) {
	c.gen++
	gen := c.gen

	c.current = &t
	c.elapsed = 0
	c.duration = 0
	c.durationKnown = false

	zlog.Debug().Msgf("playback: loading track: id=%s title=%s index=%d queue=%d", t.ID, t.Title, c.index, len(c.queue))

	if err := c.sink.Load(c.ctx, t.SourceURL, sourceObserver{c: c, gen: gen}); err != nil {
		c.failLocked(err)
		return
	}
	if err := c.sink.Play(); err != nil {
		c.failLocked(err)
		return
	}

	c.playing = true
	c.sendEventLocked(Event{Type: EventTrackStarted})
}

// restartLocked rewinds the current track and plays it again.
// Must be called with lock held.
func (c *Controller) restartLocked() {
	if c.current == nil {
		return
	}

	if err := c.sink.SetPosition(0); err != nil {
		zlog.Warn().Msgf("playback: rewind failed: track=%s error=%v", c.current.ID, err)
	}
	c.elapsed = 0

	if err := c.sink.Play(); err != nil {
		c.failLocked(err)
		return
	}
	c.playing = true
	c.sendEventLocked(Event{Type: EventTrackStarted})
}

// stopAtEndLocked leaves the last track loaded and paused at its position.
// Must be called with lock held.
func (c *Controller) stopAtEndLocked() {
	c.sink.Pause()
	c.playing = false
	zlog.Debug().Msgf("playback: reached end of queue: index=%d", c.index)
	c.sendEventLocked(Event{Type: EventQueueEnded})
}

// failLocked records a sink rejection. Playing is cleared so state reflects
// what the sink is actually doing.
// Must be called with lock held.
func (c *Controller) failLocked(err error) {
	id := ""
	if c.current != nil {
		id = c.current.ID
	}
	zlog.Warn().Msgf("playback: play failed: track=%s error=%v", id, err)
	c.playing = false
	c.sendEventLocked(Event{Type: EventPlaybackFailed, Err: err})
}

func (c *Controller) onTimeUpdate(gen uint64, pos time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen || c.current == nil {
		return
	}
	c.elapsed = pos
	c.sendEventLocked(Event{Type: EventTimeUpdated})
}

func (c *Controller) onDurationKnown(gen uint64, d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen || c.current == nil {
		return
	}
	c.duration = d
	c.durationKnown = true
	c.sendEventLocked(Event{Type: EventDurationKnown})
}

func (c *Controller) onEnded(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen || c.current == nil {
		return
	}
	zlog.Debug().Msgf("playback: track ended: id=%s elapsed=%v", c.current.ID, c.elapsed)
	c.nextLocked()
}

func (c *Controller) onError(gen uint64, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen || c.current == nil {
		return
	}
	c.failLocked(err)
}

// sendEventLocked sends an event without blocking.
// Must be called with lock held.
func (c *Controller) sendEventLocked(e Event) {
	if c.closed {
		return
	}
	if e.Track == nil && c.current != nil {
		cur := *c.current
		e.Track = &cur
	}
	switch {
	case c.current == nil:
		e.State = StateIdle
	case c.playing:
		e.State = StatePlaying
	default:
		e.State = StatePaused
	}

	select {
	case c.eventCh <- e:
	default:
		// Channel full, drop event; subscribers resync from Snapshot.
	}
}

func clampVolume(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
