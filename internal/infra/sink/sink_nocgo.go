//go:build !((linux && cgo) || windows || darwin)

package sink

import (
	"context"
	"time"

	"github.com/osa030/surabhi/internal/app/playback"
)

// AudioAvailable indicates whether audio playback is supported in this build.
// Audio requires CGO for native sound libraries.
const AudioAvailable = false

// Sink rejects every load in builds without an audio backend.
// The rest of the player keeps working without sound.
type Sink struct{}

// New creates a new no-op sink.
func New(cfg Config) *Sink {
	return &Sink{}
}

var _ playback.Sink = (*Sink)(nil)

// Load always fails with ErrAudioUnavailable.
func (s *Sink) Load(ctx context.Context, src string, observer playback.SinkObserver) error {
	return ErrAudioUnavailable
}

// Play always fails with ErrAudioUnavailable.
func (s *Sink) Play() error {
	return ErrAudioUnavailable
}

func (s *Sink) Pause() {}

func (s *Sink) Position() time.Duration {
	return 0
}

func (s *Sink) SetPosition(d time.Duration) error {
	return nil
}

func (s *Sink) SetVolume(v float64) {}

func (s *Sink) Close() error {
	return nil
}
