// Package sink plays track sources on the local audio output.
package sink

import (
	"time"

	"github.com/cockroachdb/errors"
)

var (
	// ErrAudioUnavailable is returned by every load in builds without an
	// audio backend.
	ErrAudioUnavailable = errors.New("audio output is not available in this build")
	// ErrUnsupportedFormat is reported for media no decoder accepts.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	// ErrNoSource is returned by Play when nothing is loaded.
	ErrNoSource = errors.New("no source loaded")
)

// DefaultTimeUpdateInterval is how often the position is reported while playing.
const DefaultTimeUpdateInterval = 250 * time.Millisecond

// Config represents sink configuration.
type Config struct {
	TimeUpdateInterval time.Duration // Position report period
	FetchTimeout       time.Duration // Per-request timeout for remote sources
	RetryMax           int           // Retries for transient fetch failures
}

func (c Config) withDefaults() Config {
	if c.TimeUpdateInterval <= 0 {
		c.TimeUpdateInterval = DefaultTimeUpdateInterval
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 30 * time.Second
	}
	if c.RetryMax < 0 {
		c.RetryMax = 0
	}
	return c
}
