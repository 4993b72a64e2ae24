package library

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	zlog "github.com/rs/zerolog/log"
)

// settleDelay is how long a file must stay unchanged before it is imported.
const settleDelay = 500 * time.Millisecond

// Watch imports supported audio files created in dir until ctx is done.
// Files already present when Watch starts are not imported.
func (l *Library) Watch(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create watcher")
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(dir); err != nil {
		return errors.Wrapf(err, "failed to watch %s", dir)
	}
	zlog.Info().Msgf("library: watching folder: dir=%s", dir)

	var (
		mu      sync.Mutex
		pending = make(map[string]*time.Timer)
		ready   = make(chan string, 16)
		seen    = make(map[string]bool)
	)

	// Writers may still be copying when Create fires; wait for quiet.
	schedule := func(path string) {
		mu.Lock()
		defer mu.Unlock()

		if t, ok := pending[path]; ok {
			t.Reset(settleDelay)
			return
		}
		pending[path] = time.AfterFunc(settleDelay, func() {
			mu.Lock()
			delete(pending, path)
			mu.Unlock()

			select {
			case ready <- path:
			case <-ctx.Done():
			}
		})
	}

	defer func() {
		mu.Lock()
		defer mu.Unlock()
		for _, t := range pending {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !IsSupported(event.Name) {
				continue
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
				schedule(event.Name)
			}

		case path := <-ready:
			if seen[path] {
				continue
			}
			seen[path] = true
			if _, err := l.Import(ctx, []string{path}); err != nil {
				zlog.Warn().Msgf("library: watch import failed: path=%s error=%v", path, err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			zlog.Warn().Msgf("library: watcher error: %v", err)
		}
	}
}
