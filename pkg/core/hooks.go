package core

import "context"

// DataHook runs around add and update. It may return transformed data.
type DataHook func(ctx context.Context, key string, data Data) (Data, error)

// KeyHook runs around remove.
type KeyHook func(ctx context.Context, key string) error

// ValidateHook is one stage of the validation pipeline.
type ValidateHook func(ctx context.Context, data Data) (Data, error)

// CommitHook runs before a Session flushes its collections.
type CommitHook func(ctx context.Context) error

// AfterCommitHook receives the aggregate commit outcome and decides what the
// caller sees.
type AfterCommitHook func(ctx context.Context, err error, results []CollectionResult) ([]CollectionResult, error)

// Hooks is the per-collection extension pipeline. Each stage is an ordered
// list; an empty stage passes its input through unchanged.
type Hooks struct {
	BeforeAdd      []DataHook
	AfterAdd       []DataHook
	BeforeUpdate   []DataHook
	AfterUpdate    []DataHook
	BeforeRemove   []KeyHook
	AfterRemove    []KeyHook
	BeforeValidate []ValidateHook
	Validate       []ValidateHook
	AfterValidate  []ValidateHook
}

// runData threads data through hooks in order, stopping at the first error.
func runData(ctx context.Context, hooks []DataHook, key string, data Data) (Data, error) {
	var err error
	for _, h := range hooks {
		if data, err = h(ctx, key, data); err != nil {
			return nil, err
		}
	}
	return data, nil
}

func runKey(ctx context.Context, hooks []KeyHook, key string) error {
	for _, h := range hooks {
		if err := h(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

func runValidate(ctx context.Context, hooks []ValidateHook, data Data) (Data, error) {
	var err error
	for _, h := range hooks {
		if data, err = h(ctx, data); err != nil {
			return nil, err
		}
	}
	return data, nil
}

// validate runs beforeValidate, validate and afterValidate in sequence.
// It returns the name of the failing stage alongside the error.
func (h *Hooks) validate(ctx context.Context, data Data) (Data, string, error) {
	stages := []struct {
		name  string
		hooks []ValidateHook
	}{
		{"beforeValidate", h.BeforeValidate},
		{"validate", h.Validate},
		{"afterValidate", h.AfterValidate},
	}
	var err error
	for _, s := range stages {
		if data, err = runValidate(ctx, s.hooks, data); err != nil {
			return nil, s.name, err
		}
	}
	return data, "", nil
}
