//go:build (linux && cgo) || windows || darwin

package sink

import (
	"bytes"
	"context"
	"math"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/surabhi/internal/app/playback"
)

// AudioAvailable indicates whether audio playback is supported in this build.
const AudioAvailable = true

// Sink plays sources through the system speaker using beep.
type Sink struct {
	mu sync.Mutex

	config      Config
	fetcher     *fetcher
	sampleRate  beep.SampleRate
	initialized bool
	volume      float64
	cur         *source
}

// source is one loaded track. Fields are guarded by Sink.mu; streamer
// state is additionally guarded by the speaker lock once playing.
type source struct {
	observer playback.SinkObserver
	cancel   context.CancelFunc
	done     chan struct{}

	ready    bool
	wantPlay bool
	ended    bool
	seekTo   time.Duration
	err      error

	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	vol      *effects.Volume
}

// New creates a new sink. The speaker is opened on the first decoded source.
func New(cfg Config) *Sink {
	cfg = cfg.withDefaults()
	return &Sink{
		config:     cfg,
		fetcher:    newFetcher(cfg.FetchTimeout, cfg.RetryMax),
		sampleRate: beep.SampleRate(44100),
		volume:     1,
	}
}

var _ playback.Sink = (*Sink)(nil)

// Load abandons the current source and starts fetching and decoding the new
// one in the background. Failures after Load returns go to observer.OnError.
func (s *Sink) Load(ctx context.Context, src string, observer playback.SinkObserver) error {
	if observer == nil {
		return errors.New("observer is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.closeSourceLocked()

	loadCtx, cancel := context.WithCancel(ctx)
	cur := &source{
		observer: observer,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	s.cur = cur

	go s.prepare(loadCtx, cur, src)
	return nil
}

// prepare fetches and decodes src, then hands it to the speaker.
func (s *Sink) prepare(ctx context.Context, cur *source, src string) {
	data, err := s.fetcher.fetch(ctx, src)
	if err == nil {
		err = s.decode(cur, data)
	}
	if err != nil {
		if ctx.Err() != nil {
			return // abandoned
		}
		zlog.Warn().Msgf("sink: load failed: source=%s error=%v", src, err)
		s.fail(cur, err)
		return
	}

	s.mu.Lock()
	if s.cur != cur {
		s.mu.Unlock()
		cur.streamer.Close()
		return
	}
	if err := s.initSpeakerLocked(); err != nil {
		err = errors.Wrap(err, "failed to open audio output")
		cur.err = err
		s.mu.Unlock()
		cur.streamer.Close()
		cur.observer.OnError(err)
		return
	}

	cur.ready = true
	if cur.seekTo > 0 {
		s.seekLocked(cur, cur.seekTo)
	}
	s.startLocked(cur)
	length := cur.format.SampleRate.D(cur.streamer.Len())
	s.mu.Unlock()

	zlog.Debug().Msgf("sink: source ready: source=%s duration=%v", src, length)
	cur.observer.OnDurationKnown(length)
	go s.reportTime(cur)
}

// fail records err on cur so later Play calls report it, then notifies
// the observer.
func (s *Sink) fail(cur *source, err error) {
	s.mu.Lock()
	if s.cur != cur {
		s.mu.Unlock()
		return
	}
	cur.err = err
	s.mu.Unlock()

	cur.observer.OnError(err)
}

func (s *Sink) decode(cur *source, data []byte) error {
	format := DetectFormat(data)
	if !format.Decodable() {
		return errors.Wrapf(ErrUnsupportedFormat, "%s", format)
	}

	var (
		streamer beep.StreamSeekCloser
		f        beep.Format
		err      error
	)
	r := bytes.NewReader(data)
	switch format {
	case FormatMP3:
		streamer, f, err = mp3.Decode(nopCloser{r})
	case FormatWAV:
		streamer, f, err = wav.Decode(r)
	case FormatFLAC:
		streamer, f, err = flac.Decode(r)
	case FormatOgg:
		streamer, f, err = vorbis.Decode(nopCloser{r})
	}
	if err != nil {
		return errors.Wrapf(ErrUnsupportedFormat, "%s: %v", format, err)
	}

	cur.streamer = streamer
	cur.format = f
	return nil
}

// initSpeakerLocked opens the output device once.
func (s *Sink) initSpeakerLocked() error {
	if s.initialized {
		return nil
	}
	if err := speaker.Init(s.sampleRate, s.sampleRate.N(time.Second/10)); err != nil {
		return err
	}
	s.initialized = true
	return nil
}

// startLocked queues the source on the speaker, paused unless Play was called.
func (s *Sink) startLocked(cur *source) {
	resampled := beep.Resample(4, cur.format.SampleRate, s.sampleRate, cur.streamer)
	cur.ctrl = &beep.Ctrl{Streamer: resampled, Paused: !cur.wantPlay}
	cur.vol = &effects.Volume{Streamer: cur.ctrl, Base: 2}
	applyVolume(cur.vol, s.volume)
	cur.ended = false

	speaker.Play(beep.Seq(cur.vol, beep.Callback(func() {
		// Runs on the speaker goroutine with the speaker locked
		go s.onEnded(cur)
	})))
}

func (s *Sink) onEnded(cur *source) {
	s.mu.Lock()
	if s.cur != cur || cur.ctrl == nil || cur.ctrl.Streamer == nil {
		s.mu.Unlock()
		return
	}
	cur.ended = true
	cur.wantPlay = false
	s.mu.Unlock()

	cur.observer.OnEnded()
}

// reportTime publishes the position while cur is the loaded source.
func (s *Sink) reportTime(cur *source) {
	ticker := time.NewTicker(s.config.TimeUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-cur.done:
			return
		case <-ticker.C:
		}

		s.mu.Lock()
		if s.cur != cur {
			s.mu.Unlock()
			return
		}
		if !cur.wantPlay || cur.ended {
			s.mu.Unlock()
			continue
		}
		pos := s.positionLocked(cur)
		s.mu.Unlock()

		cur.observer.OnTimeUpdate(pos)
	}
}

// Play starts or resumes the loaded source. A source that failed to load
// keeps returning its load error.
func (s *Sink) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.cur
	if cur == nil {
		return ErrNoSource
	}
	if cur.err != nil {
		return cur.err
	}
	cur.wantPlay = true
	if !cur.ready {
		return nil
	}

	if cur.ended {
		s.seekLocked(cur, 0)
		s.startLocked(cur)
		return nil
	}

	speaker.Lock()
	cur.ctrl.Paused = false
	speaker.Unlock()
	return nil
}

// Pause pauses the loaded source.
func (s *Sink) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.cur
	if cur == nil {
		return
	}
	cur.wantPlay = false
	if !cur.ready || cur.ended {
		return
	}

	speaker.Lock()
	cur.ctrl.Paused = true
	speaker.Unlock()
}

// Position returns the current position within the loaded source.
func (s *Sink) Position() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cur == nil {
		return 0
	}
	return s.positionLocked(s.cur)
}

func (s *Sink) positionLocked(cur *source) time.Duration {
	if !cur.ready {
		return cur.seekTo
	}
	speaker.Lock()
	pos := cur.streamer.Position()
	speaker.Unlock()
	return cur.format.SampleRate.D(pos)
}

// SetPosition moves the playback position. Before the source is decoded
// the position is remembered and applied once it is.
func (s *Sink) SetPosition(d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.cur
	if cur == nil {
		return ErrNoSource
	}
	if !cur.ready {
		cur.seekTo = d
		return nil
	}

	if err := s.seekLocked(cur, d); err != nil {
		return err
	}
	if cur.ended && cur.streamer.Position() < cur.streamer.Len() {
		// The finished sequence left the speaker; queue it again
		s.startLocked(cur)
	}
	return nil
}

func (s *Sink) seekLocked(cur *source, d time.Duration) error {
	n := cur.format.SampleRate.N(d)
	if n < 0 {
		n = 0
	}
	if max := cur.streamer.Len(); n > max {
		n = max
	}

	speaker.Lock()
	defer speaker.Unlock()
	if err := cur.streamer.Seek(n); err != nil {
		return errors.Wrap(err, "failed to seek")
	}
	return nil
}

// SetVolume sets the linear output level in [0, 1].
func (s *Sink) SetVolume(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.volume = math.Max(0, math.Min(1, v))
	if s.cur == nil || s.cur.vol == nil {
		return
	}
	speaker.Lock()
	applyVolume(s.cur.vol, s.volume)
	speaker.Unlock()
}

// applyVolume maps a linear level onto beep's base-2 exponent.
func applyVolume(vol *effects.Volume, level float64) {
	if level <= 0 {
		vol.Silent = true
		return
	}
	vol.Silent = false
	vol.Volume = math.Log2(level)
}

// Close stops playback and releases the output device.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closeSourceLocked()
	if s.initialized {
		speaker.Close()
		s.initialized = false
	}
	return nil
}

// closeSourceLocked detaches the current source from the speaker and frees it.
func (s *Sink) closeSourceLocked() {
	cur := s.cur
	if cur == nil {
		return
	}
	s.cur = nil
	cur.cancel()
	close(cur.done)

	if !cur.ready {
		return
	}
	speaker.Lock()
	// A nil streamer makes the sequence finish without touching the decoder
	cur.ctrl.Streamer = nil
	speaker.Unlock()
	cur.streamer.Close()
}

// nopCloser wraps a bytes.Reader to implement io.ReadCloser.
type nopCloser struct {
	*bytes.Reader
}

func (nopCloser) Close() error { return nil }
