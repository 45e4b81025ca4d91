// Package lifecycle publishes session commits as lifecycle events.
package lifecycle

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/stage/pkg/core"
)

// CommitEvent reports one finished commit.
type CommitEvent struct {
	Results []core.CollectionResult
	Err     error
}

func (e CommitEvent) String() string {
	parts := make([]string, 0, len(e.Results))
	for _, r := range e.Results {
		parts = append(parts, fmt.Sprintf("%s=%d", r.Collection, len(r.Results)))
	}
	status := "ok"
	if e.Err != nil {
		status = "failed"
	}
	return fmt.Sprintf("commit %s [%s]", status, strings.Join(parts, " "))
}

type commitSource struct {
	in  chan CommitEvent
	out chan lifecycle.Event
}

// NewCommitSource returns a lifecycle.Source together with the after-commit
// hook that feeds it:
//
//	src, hook := lifecycle.NewCommitSource(64)
//	s := core.NewSession(core.WithAfterCommit(hook))
//
// The hook never blocks a commit: events are dropped while buffer is full.
func NewCommitSource(buffer int) (lifecycle.Source, core.AfterCommitHook) {
	s := &commitSource{
		in:  make(chan CommitEvent, buffer),
		out: make(chan lifecycle.Event),
	}
	hook := func(ctx context.Context, err error, results []core.CollectionResult) ([]core.CollectionResult, error) {
		select {
		case s.in <- CommitEvent{Results: results, Err: err}:
		default:
		}
		return results, err
	}
	return s, hook
}

func (s *commitSource) Events() <-chan lifecycle.Event {
	return s.out
}

func (s *commitSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e := <-s.in:
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}
