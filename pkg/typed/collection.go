// Package typed wraps core.Collection with a type-safe API. Values are
// converted to and from core.Data through their JSON representation, so T
// must marshal to a JSON object.
package typed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/stage/pkg/core"
)

// Collection stages values of type T in an underlying core.Collection.
type Collection[T any] struct {
	c *core.Collection
}

// New creates a type-safe wrapper around c.
func New[T any](c *core.Collection) *Collection[T] {
	return &Collection[T]{c: c}
}

// Core returns the wrapped collection.
func (r *Collection[T]) Core() *core.Collection {
	return r.c
}

// Find returns the value stored under key. ok is false when the key holds
// no data.
func (r *Collection[T]) Find(ctx context.Context, key string) (value T, ok bool, err error) {
	data, err := r.c.Find(ctx, key)
	if err != nil || data == nil {
		return value, false, err
	}
	value, err = fromData[T](data)
	if err != nil {
		return value, false, err
	}
	return value, true, nil
}

// Add stages v under key. An empty key is generated by the collection.
func (r *Collection[T]) Add(ctx context.Context, key string, v T) (T, error) {
	data, err := toData(v)
	if err != nil {
		var zero T
		return zero, err
	}
	out, err := r.c.Add(ctx, key, data)
	if err != nil {
		var zero T
		return zero, err
	}
	return fromData[T](out)
}

// AddNew stages v under a generated key and returns the key.
func (r *Collection[T]) AddNew(ctx context.Context, v T) (string, T, error) {
	var zero T
	data, err := toData(v)
	if err != nil {
		return "", zero, err
	}
	key, out, err := r.c.AddNew(ctx, data)
	if err != nil {
		return "", zero, err
	}
	got, err := fromData[T](out)
	return key, got, err
}

// Update stages v as the new value of key.
func (r *Collection[T]) Update(ctx context.Context, key string, v T) (T, error) {
	data, err := toData(v)
	if err != nil {
		var zero T
		return zero, err
	}
	out, err := r.c.Update(ctx, key, data)
	if err != nil {
		var zero T
		return zero, err
	}
	return fromData[T](out)
}

// Remove stages key for deletion.
func (r *Collection[T]) Remove(ctx context.Context, key string) error {
	return r.c.Remove(ctx, key)
}

// Flush persists the staged changes of keys, or of every key when none are given.
func (r *Collection[T]) Flush(ctx context.Context, keys ...string) ([]core.FlushResult, error) {
	return r.c.Flush(ctx, keys...)
}

func toData[T any](v T) (core.Data, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal typed data: %w", err)
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to convert typed data to map: %w", err)
	}
	return core.Data(data), nil
}

func fromData[T any](data core.Data) (T, error) {
	var v T
	raw, err := json.Marshal(map[string]any(data))
	if err != nil {
		return v, fmt.Errorf("data marshal failed: %w", err)
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("unmarshal to target type failed: %w", err)
	}
	return v, nil
}
