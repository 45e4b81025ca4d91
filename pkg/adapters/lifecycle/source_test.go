package lifecycle_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stagelifecycle "github.com/aretw0/stage/pkg/adapters/lifecycle"
	"github.com/aretw0/stage/pkg/adapters/memory"
	"github.com/aretw0/stage/pkg/core"
)

func TestCommitSource(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src, hook := stagelifecycle.NewCommitSource(4)
	require.NoError(t, src.Start(ctx))

	s := core.NewSession(core.WithAfterCommit(hook))
	users := core.NewCollection("users", memory.New(nil))
	require.NoError(t, s.Register("users", users))

	_, err := users.Add(ctx, "u1", core.Data{"name": "Ann"})
	require.NoError(t, err)
	_, err = s.Commit(ctx)
	require.NoError(t, err)

	select {
	case ev := <-src.Events():
		ce, ok := ev.(stagelifecycle.CommitEvent)
		require.True(t, ok)
		assert.NoError(t, ce.Err)
		require.Len(t, ce.Results, 1)
		assert.Equal(t, "commit ok [users=1]", ce.String())
	case <-time.After(3 * time.Second):
		t.Fatal("no commit event")
	}

	cancel()
	select {
	case _, ok := <-src.Events():
		assert.False(t, ok)
	case <-time.After(3 * time.Second):
		t.Fatal("events not closed after cancel")
	}
}

func TestCommitSource_HookPassesThrough(t *testing.T) {
	_, hook := stagelifecycle.NewCommitSource(0)
	boom := errors.New("boom")
	results := []core.CollectionResult{{Collection: "users"}}

	got, err := hook(context.Background(), boom, results)
	assert.Equal(t, results, got)
	assert.ErrorIs(t, err, boom)
}
