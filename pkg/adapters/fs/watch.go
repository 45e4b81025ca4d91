package fs

import (
	"context"
	"fmt"
	iofs "io/fs"
	"path/filepath"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// ChangeEvent reports a stored file that changed on disk.
type ChangeEvent struct {
	Op  string // "write" or "remove"
	Key string
}

func (e ChangeEvent) String() string {
	return e.Op + " " + e.Key
}

type watchSource struct {
	adapter *Adapter
	pattern string
	out     chan lifecycle.Event
}

// Watch returns a lifecycle.Source emitting a ChangeEvent whenever a stored
// file under Path is written or removed, including by the adapter itself. A
// non-empty pattern filters keys with doublestar syntax.
//
// Collections cache what they read, so a consumer typically reacts by
// rolling back the session that holds the stale keys.
func (a *Adapter) Watch(pattern string) lifecycle.Source {
	return &watchSource{
		adapter: a,
		pattern: pattern,
		out:     make(chan lifecycle.Event, 16),
	}
}

func (s *watchSource) Events() <-chan lifecycle.Event {
	return s.out
}

// Start registers the watcher on every directory under Path and runs the
// event loop until ctx is done. Events is closed when the loop exits.
func (s *watchSource) Start(ctx context.Context) error {
	if s.pattern != "" && !doublestar.ValidatePattern(s.pattern) {
		return fmt.Errorf("invalid pattern %q", s.pattern)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := addRecursive(watcher, s.adapter.Path); err != nil {
		_ = watcher.Close()
		return err
	}

	logger := s.adapter.logger
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		defer watcher.Close()
		return s.run(ctx, watcher)
	}, lifecycle.WithErrorHandler(func(err error) {
		logger.Error("watcher stopped", "error", err)
	}))
	return nil
}

func (s *watchSource) run(ctx context.Context, watcher *fsnotify.Watcher) error {
	logger := s.adapter.logger
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				// New subdirectories need their own watch.
				_ = addRecursive(watcher, event.Name)
			}

			ev, ok := s.translate(event)
			if !ok {
				continue
			}
			logger.Debug("change detected", "key", ev.Key, "op", ev.Op)
			select {
			case s.out <- ev:
			case <-ctx.Done():
				return nil
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("fsnotify error", "error", err)
		}
	}
}

func (s *watchSource) translate(event fsnotify.Event) (ChangeEvent, bool) {
	var op string
	switch {
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		op = "write"
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		op = "remove"
	default:
		return ChangeEvent{}, false
	}

	key, ok := s.adapter.keyOf(event.Name)
	if !ok {
		return ChangeEvent{}, false
	}
	if s.pattern != "" {
		if match, _ := doublestar.Match(s.pattern, key); !match {
			return ChangeEvent{}, false
		}
	}
	return ChangeEvent{Op: op, Key: key}, true
}

func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := watcher.Add(path); err != nil {
				return fmt.Errorf("failed to watch %s: %w", path, err)
			}
		}
		return nil
	})
}
