package playback

import (
	"context"
	"time"
)

// Sink is the audio output the controller drives. The controller is its only
// user.
//
// Implementations must deliver SinkObserver callbacks from their own
// goroutines and never synchronously from inside a Sink method, because the
// controller holds its lock while calling into the sink.
type Sink interface {
	// Load points the sink at a new source and registers the observer for it.
	// Any previously loaded source is abandoned along with its observer.
	// Load may return before the media is ready; Play issued before then
	// takes effect once it is.
	Load(ctx context.Context, source string, observer SinkObserver) error
	// Play starts or resumes the loaded source. Playing an ended source
	// starts it over. Once the source has failed to load, Play returns that
	// error.
	Play() error
	// Pause pauses the loaded source.
	Pause()
	// Position returns the current position within the loaded source.
	Position() time.Duration
	// SetPosition moves the playback position.
	SetPosition(d time.Duration) error
	// SetVolume sets the linear output level in [0, 1].
	SetVolume(v float64)
	// Close releases the output device.
	Close() error
}

// SinkObserver receives signals for one loaded source.
type SinkObserver interface {
	OnTimeUpdate(pos time.Duration)
	OnDurationKnown(d time.Duration)
	OnEnded()
	// OnError reports a failure after Load returned, such as an unreachable
	// source or undecodable media.
	OnError(err error)
}

// sourceObserver binds sink signals to the load generation they belong to.
type sourceObserver struct {
	c   *Controller
	gen uint64
}

func (o sourceObserver) OnTimeUpdate(pos time.Duration) {
	o.c.onTimeUpdate(o.gen, pos)
}

func (o sourceObserver) OnDurationKnown(d time.Duration) {
	o.c.onDurationKnown(o.gen, d)
}

func (o sourceObserver) OnEnded() {
	o.c.onEnded(o.gen)
}

func (o sourceObserver) OnError(err error) {
	o.c.onError(o.gen, err)
}
