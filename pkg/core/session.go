package core

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Session groups named collections so their staged changes are committed or
// rolled back together.
type Session struct {
	mu           sync.RWMutex
	collections  map[string]*Collection
	logger       *slog.Logger
	beforeCommit []CommitHook
	afterCommit  []AfterCommitHook

	commits   int
	rollbacks int
	lastErr   error
}

// NewSession creates an empty Session.
func NewSession(opts ...SessionOption) *Session {
	o := defaultSessionOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Session{
		collections:  make(map[string]*Collection),
		logger:       o.logger,
		beforeCommit: o.beforeCommit,
		afterCommit:  o.afterCommit,
	}
}

// Register adds c to the session under name. Names can only be registered
// once, and a collection can only be registered under one name.
func (s *Session) Register(name string, c *Collection) error {
	if c == nil {
		return fmt.Errorf("register %q: collection is nil", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[name]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, name)
	}
	for other, registered := range s.collections {
		if registered == c {
			return fmt.Errorf("%w: collection %q is already registered as %s", ErrAlreadyRegistered, name, other)
		}
	}
	s.collections[name] = c
	return nil
}

// Repository returns the collection registered under name.
func (s *Session) Repository(name string) (*Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, name)
	}
	return c, nil
}

// Names returns the registered collection names, sorted.
func (s *Session) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Commit flushes every registered collection.
//
// Workflow:
//  1. Run the before-commit hooks; an error aborts and is returned untouched.
//  2. Flush all collections concurrently, waiting for every one to finish.
//  3. Hand the aggregate (first error, per-collection results) to the
//     after-commit hooks, whose output is returned.
func (s *Session) Commit(ctx context.Context) ([]CollectionResult, error) {
	return s.commit(ctx, nil)
}

// CommitMatching is Commit restricted to the staged keys accepted by match,
// called with the registry name and the key. Other keys stay staged. The
// commit hooks run as for Commit.
func (s *Session) CommitMatching(ctx context.Context, match func(collection, key string) bool) ([]CollectionResult, error) {
	if match == nil {
		return nil, fmt.Errorf("commit: match is nil")
	}
	return s.commit(ctx, match)
}

func (s *Session) commit(ctx context.Context, match func(collection, key string) bool) ([]CollectionResult, error) {
	for _, h := range s.beforeCommit {
		if err := h(ctx); err != nil {
			return nil, err
		}
	}

	results, err := s.each(ctx, "commit", func(ctx context.Context, name string, c *Collection) ([]FlushResult, error) {
		if match == nil {
			return c.Flush(ctx)
		}
		var keys []string
		for _, p := range c.Pending() {
			if match(name, p.Key) {
				keys = append(keys, p.Key)
			}
		}
		if len(keys) == 0 {
			return nil, nil
		}
		return c.Flush(ctx, keys...)
	})

	for _, h := range s.afterCommit {
		results, err = h(ctx, err, results)
	}

	s.record(&s.commits, err)
	if err != nil {
		s.logger.Warn("commit failed", "collections", len(results), "error", err)
	} else {
		s.logger.Info("commit complete", "collections", len(results))
	}
	return results, err
}

// Rollback clears every registered collection, discarding staged changes
// and cached reads alike.
func (s *Session) Rollback(ctx context.Context) ([]CollectionResult, error) {
	results, err := s.each(ctx, "rollback", func(ctx context.Context, _ string, c *Collection) ([]FlushResult, error) {
		return nil, c.Clear(ctx)
	})

	s.record(&s.rollbacks, err)
	s.logger.Info("rollback complete", "collections", len(results), "error", err)
	return results, err
}

// Do runs fn and commits the session if it succeeds. If fn or the commit
// fails the session is rolled back and that error is returned.
func (s *Session) Do(ctx context.Context, fn func(ctx context.Context, s *Session) error) error {
	err := fn(ctx, s)
	if err == nil {
		if _, err = s.Commit(ctx); err == nil {
			return nil
		}
	}
	if _, rbErr := s.Rollback(ctx); rbErr != nil {
		s.logger.Error("rollback failed", "error", rbErr)
	}
	return err
}

// each runs fn on every collection concurrently and waits for all of them.
// Errors are tagged with the collection name; the first one is returned.
func (s *Session) each(ctx context.Context, op string, fn func(context.Context, string, *Collection) ([]FlushResult, error)) ([]CollectionResult, error) {
	names := s.Names()

	s.mu.RLock()
	cols := make([]*Collection, len(names))
	for i, name := range names {
		cols[i] = s.collections[name]
	}
	s.mu.RUnlock()

	results := make([]CollectionResult, len(names))
	var g errgroup.Group
	for i, name := range names {
		g.Go(func() error {
			res, err := fn(ctx, name, cols[i])
			err = withCollection(op, name, err)
			results[i] = CollectionResult{Collection: name, Results: res, Err: err}
			return err
		})
	}
	return results, g.Wait()
}

func (s *Session) record(counter *int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	*counter++
	s.lastErr = err
}
