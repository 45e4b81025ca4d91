package core_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stage/pkg/core"
)

func TestHooks_PipelineOrder(t *testing.T) {
	ctx := context.Background()
	var trace []string
	step := func(name string) core.ValidateHook {
		return func(ctx context.Context, data core.Data) (core.Data, error) {
			trace = append(trace, name)
			out := data.Clone()
			out["trail"] = strings.TrimPrefix(out["trail"].(string)+","+name, ",")
			return out, nil
		}
	}

	users := core.NewCollection("users", newSpyAdapter(nil),
		core.WithBeforeAdd(func(ctx context.Context, key string, data core.Data) (core.Data, error) {
			trace = append(trace, "beforeAdd:"+key)
			out := data.Clone()
			out["trail"] = ""
			return out, nil
		}),
		core.WithAfterValidate(step("afterValidate")),
		core.WithValidator(step("validate")),
		core.WithBeforeValidate(step("beforeValidate")),
		core.WithAfterAdd(func(ctx context.Context, key string, data core.Data) (core.Data, error) {
			trace = append(trace, "afterAdd:"+key)
			data["seen"] = true
			return data, nil
		}),
	)

	got, err := users.Add(ctx, "u1", core.Data{"name": "a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"beforeAdd:u1", "beforeValidate", "validate", "afterValidate", "afterAdd:u1"}, trace)
	assert.Equal(t, "beforeValidate,validate,afterValidate", got["trail"])
	assert.Equal(t, true, got["seen"])

	// The after hook saw a copy; the staged value is the validated one.
	staged, err := users.Find(ctx, "u1")
	require.NoError(t, err)
	assert.NotContains(t, staged, "seen")
	assert.Equal(t, "beforeValidate,validate,afterValidate", staged["trail"])
}

func TestHooks_Failures(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	failData := func(ctx context.Context, key string, data core.Data) (core.Data, error) { return nil, boom }
	failKey := func(ctx context.Context, key string) error { return boom }
	failValidate := func(ctx context.Context, data core.Data) (core.Data, error) { return nil, boom }
	seed := map[string]core.Data{"u1": {"name": "a"}}

	addU2 := func(c *core.Collection) error {
		_, err := c.Add(ctx, "u2", core.Data{})
		return err
	}
	updateU1 := func(c *core.Collection) error {
		_, err := c.Update(ctx, "u1", core.Data{})
		return err
	}
	removeU1 := func(c *core.Collection) error {
		return c.Remove(ctx, "u1")
	}

	tests := []struct {
		name string
		opt  core.CollectionOption
		run  func(c *core.Collection) error
		kind error
		step string
	}{
		{"beforeAdd", core.WithBeforeAdd(failData), addU2, core.ErrExtension, "beforeAdd"},
		{"afterAdd", core.WithAfterAdd(failData), addU2, core.ErrExtension, "afterAdd"},
		{"beforeUpdate", core.WithBeforeUpdate(failData), updateU1, core.ErrExtension, "beforeUpdate"},
		{"afterUpdate", core.WithAfterUpdate(failData), updateU1, core.ErrExtension, "afterUpdate"},
		{"beforeRemove", core.WithBeforeRemove(failKey), removeU1, core.ErrExtension, "beforeRemove"},
		{"afterRemove", core.WithAfterRemove(failKey), removeU1, core.ErrExtension, "afterRemove"},
		{"beforeValidate", core.WithBeforeValidate(failValidate), addU2, core.ErrValidation, "beforeValidate"},
		{"validate", core.WithValidator(failValidate), updateU1, core.ErrValidation, "validate"},
		{"afterValidate", core.WithAfterValidate(failValidate), addU2, core.ErrValidation, "afterValidate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := core.NewCollection("users", newSpyAdapter(seed), tt.opt)
			err := tt.run(c)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
			assert.ErrorIs(t, err, boom)

			var e *core.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tt.step, e.Step)
		})
	}
}

func TestHooks_ValidationBlocksStaging(t *testing.T) {
	ctx := context.Background()
	spy := newSpyAdapter(nil)
	users := core.NewCollection("users", spy, core.WithValidator(func(ctx context.Context, data core.Data) (core.Data, error) {
		if _, ok := data["name"]; !ok {
			return nil, errors.New("name is required")
		}
		return data, nil
	}))

	_, err := users.Add(ctx, "u1", core.Data{"age": 3})
	assert.ErrorIs(t, err, core.ErrValidation)
	assert.Empty(t, users.Pending())
	assert.Zero(t, spy.count("find", ""), "validation runs before the adapter lookup")

	_, err = users.Add(ctx, "u1", nil)
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestHooks_PerCollection(t *testing.T) {
	ctx := context.Background()
	shared := core.Hooks{
		Validate: []core.ValidateHook{func(ctx context.Context, data core.Data) (core.Data, error) {
			return data, nil
		}},
	}
	strict := core.NewCollection("strict", newSpyAdapter(nil), core.WithHooks(shared),
		core.WithValidator(func(ctx context.Context, data core.Data) (core.Data, error) {
			return nil, errors.New("rejected")
		}))
	lax := core.NewCollection("lax", newSpyAdapter(nil), core.WithHooks(shared))

	_, err := strict.Add(ctx, "k", core.Data{"v": 1})
	assert.ErrorIs(t, err, core.ErrValidation)

	_, err = lax.Add(ctx, "k", core.Data{"v": 1})
	assert.NoError(t, err)
}
