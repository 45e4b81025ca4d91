package platform

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stage/pkg/core"
)

// TestConcurrency_SessionsVsExternalWrites commits from several sessions
// sharing one directory while another writer keeps touching unrelated files.
// Every committed key must end up on disk and parse back.
func TestConcurrency_SessionsVsExternalWrites(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping stress test in short mode")
	}

	root := t.TempDir()
	cfg := &Config{Root: root, Format: "json", Collections: []CollectionConfig{{Name: "items"}}}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			default:
				name := filepath.Join(root, "items", fmt.Sprintf("noise-%d.txt", rand.Intn(10)))
				_ = os.WriteFile(name, []byte(time.Now().String()), 0644)
				time.Sleep(time.Duration(rand.Intn(5)) * time.Millisecond)
			}
		}
	}()

	const sessions, perSession = 4, 25
	errs := make(chan error, sessions)
	for w := 0; w < sessions; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := Open(WithConfig(cfg))
			if err != nil {
				errs <- err
				return
			}
			items, _ := s.Repository("items")
			for i := 0; i < perSession; i++ {
				if _, err := items.Add(ctx, fmt.Sprintf("w%d/k%02d", w, i), core.Data{"worker": w, "i": i}); err != nil {
					errs <- err
					return
				}
			}
			_, err = s.Commit(ctx)
			errs <- err
		}()
	}

	for w := 0; w < sessions; w++ {
		require.NoError(t, <-errs)
	}
	cancel()
	wg.Wait()

	check, err := Open(WithConfig(cfg))
	require.NoError(t, err)
	items, _ := check.Repository("items")
	for w := 0; w < sessions; w++ {
		for i := 0; i < perSession; i++ {
			got, err := items.Find(context.Background(), fmt.Sprintf("w%d/k%02d", w, i))
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.EqualValues(t, i, got["i"])
		}
	}
}
