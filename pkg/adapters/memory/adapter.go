// Package memory provides an in-process core.Adapter backed by a map.
package memory

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/aretw0/stage/pkg/core"
)

// Adapter implements core.Adapter in memory. It is safe for concurrent use.
type Adapter struct {
	mu    sync.RWMutex
	items map[string]core.Data
}

// New creates an Adapter seeded with a copy of items.
func New(items map[string]core.Data) *Adapter {
	a := &Adapter{items: make(map[string]core.Data, len(items))}
	for k, v := range items {
		a.items[k] = v.Clone()
	}
	return a
}

// Find returns a copy of the stored data, or nil if key is absent.
func (a *Adapter) Find(ctx context.Context, key string) (core.Data, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.items[key].Clone(), nil
}

// Create stores data under key. It fails if key already exists.
func (a *Adapter) Create(ctx context.Context, key string, data core.Data) (core.Data, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.items[key]; ok {
		return nil, fmt.Errorf("create %s: %w", key, os.ErrExist)
	}
	a.items[key] = data.Clone()
	return data.Clone(), nil
}

// Update replaces the data stored under key. It fails if key is absent.
func (a *Adapter) Update(ctx context.Context, key string, data, original core.Data) (core.Data, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.items[key]; !ok {
		return nil, fmt.Errorf("update %s: %w", key, os.ErrNotExist)
	}
	a.items[key] = data.Clone()
	return data.Clone(), nil
}

// Remove deletes key. It fails if key is absent.
func (a *Adapter) Remove(ctx context.Context, key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.items[key]; !ok {
		return fmt.Errorf("remove %s: %w", key, os.ErrNotExist)
	}
	delete(a.items, key)
	return nil
}

// Keys returns the stored keys, sorted.
func (a *Adapter) Keys() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	keys := make([]string, 0, len(a.items))
	for k := range a.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var _ core.Adapter = (*Adapter)(nil)
