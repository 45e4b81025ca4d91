package core

import (
	"context"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Collection stages changes for one kind of entity and applies them to its
// Adapter on Flush. It doubles as a read-through cache of the keys it has
// loaded.
//
// A Collection is meant to be driven by a single goroutine; it performs no
// locking of its own.
type Collection struct {
	name    string
	adapter Adapter
	keys    KeyGenerator
	hooks   Hooks
	logger  *slog.Logger
	items   map[string]*stagedItem
}

// NewCollection creates a Collection named name backed by adapter.
func NewCollection(name string, adapter Adapter, opts ...CollectionOption) *Collection {
	o := defaultCollectionOptions()
	for _, opt := range opts {
		opt(o)
	}

	keys := o.keys
	if keys == nil {
		if g, ok := adapter.(KeyGenerator); ok {
			keys = g
		} else {
			keys = UUIDKeys
		}
	}

	return &Collection{
		name:    name,
		adapter: adapter,
		keys:    keys,
		hooks:   o.hooks,
		logger:  o.logger.With("collection", name),
		items:   make(map[string]*stagedItem),
	}
}

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.name
}

func (c *Collection) fail(kind Kind, op, step, key, msg string, err error) *Error {
	return &Error{
		Kind:       kind,
		Op:         op,
		Step:       step,
		Collection: c.name,
		Key:        key,
		Msg:        msg,
		Err:        err,
	}
}

// item returns the staged entry for key, loading it from the adapter on
// first access.
func (c *Collection) item(ctx context.Context, op, key string) (*stagedItem, error) {
	if it, ok := c.items[key]; ok {
		return it, nil
	}

	data, err := c.adapter.Find(ctx, key)
	if err != nil {
		return nil, c.fail(KindInternal, op, "adapter.find", key, "failed to find item in the data store", err)
	}

	it := &stagedItem{data: data.Clone()}
	c.items[key] = it
	return it, nil
}

// Find returns a copy of the current data for key, loading it through the
// adapter if the key has not been seen yet. A key with no data yields nil.
func (c *Collection) Find(ctx context.Context, key string) (Data, error) {
	it, err := c.item(ctx, "find", key)
	if err != nil {
		return nil, err
	}
	return it.data.Clone(), nil
}

// prepare runs the before hook and the validation pipeline for add/update.
func (c *Collection) prepare(ctx context.Context, op, step, key string, before []DataHook, data Data) (Data, error) {
	data, err := runData(ctx, before, key, data)
	if err != nil {
		return nil, c.fail(KindExtension, op, step, key, "", err)
	}

	data, step, err = c.hooks.validate(ctx, data)
	if err != nil {
		return nil, c.fail(KindValidation, op, step, key, "", err)
	}
	if data == nil {
		return nil, c.fail(KindValidation, op, "validate", key, "no data to stage", nil)
	}
	return data, nil
}

// Add stages data under key as a new item. An empty key is assigned by the
// collection's key generator; use AddNew to learn it. It fails with
// KindConflict if key already holds data. Adding over a pending remove
// stages an update instead.
func (c *Collection) Add(ctx context.Context, key string, data Data) (Data, error) {
	_, out, err := c.add(ctx, key, data)
	return out, err
}

// AddNew stages data under a key from the collection's key generator and
// returns that key along with the afterAdd output.
func (c *Collection) AddNew(ctx context.Context, data Data) (string, Data, error) {
	return c.add(ctx, "", data)
}

func (c *Collection) add(ctx context.Context, key string, data Data) (string, Data, error) {
	if key == "" {
		generated, err := c.keys.GenerateKey(ctx, data)
		if err != nil {
			return "", nil, c.fail(KindExtension, "add", "generateKey", "", "failed to generate a key", err)
		}
		key = generated
	}

	data, err := c.prepare(ctx, "add", "beforeAdd", key, c.hooks.BeforeAdd, data)
	if err != nil {
		return "", nil, err
	}

	it, err := c.item(ctx, "add", key)
	if err != nil {
		return "", nil, err
	}
	if it.live() {
		return "", nil, c.fail(KindConflict, "add", "", key, key+" already exists", nil)
	}

	switch it.action {
	case ActionRemove:
		it.action = ActionUpdate
	case ActionNone, ActionAdd, ActionUpdate:
		it.action = ActionAdd
	}
	it.data = data.Clone()
	c.logger.Debug("staged", "key", key, "action", it.action)

	out, err := runData(ctx, c.hooks.AfterAdd, key, it.data.Clone())
	if err != nil {
		return "", nil, c.fail(KindExtension, "add", "afterAdd", key, "", err)
	}
	return key, out, nil
}

// Update stages data as the new value of key. The key must hold data and
// must not be pending removal.
func (c *Collection) Update(ctx context.Context, key string, data Data) (Data, error) {
	data, err := c.prepare(ctx, "update", "beforeUpdate", key, c.hooks.BeforeUpdate, data)
	if err != nil {
		return nil, err
	}

	it, err := c.item(ctx, "update", key)
	if err != nil {
		return nil, err
	}

	switch it.action {
	case ActionNone:
		if !it.live() {
			return nil, c.fail(KindNotFound, "update", "", key, "data was not found", nil)
		}
		it.action = ActionUpdate
		it.original = it.data
	case ActionRemove:
		return nil, c.fail(KindNotFound, "update", "", key, "item was removed", nil)
	case ActionAdd, ActionUpdate:
		// An unflushed add absorbs the update; a pending update keeps its original.
	}
	it.data = data.Clone()
	c.logger.Debug("staged", "key", key, "action", it.action)

	out, err := runData(ctx, c.hooks.AfterUpdate, key, it.data.Clone())
	if err != nil {
		return nil, c.fail(KindExtension, "update", "afterUpdate", key, "", err)
	}
	return out, nil
}

// Remove stages key for deletion. Removing an unflushed add cancels it.
func (c *Collection) Remove(ctx context.Context, key string) error {
	if err := runKey(ctx, c.hooks.BeforeRemove, key); err != nil {
		return c.fail(KindExtension, "remove", "beforeRemove", key, "", err)
	}

	it, err := c.item(ctx, "remove", key)
	if err != nil {
		return err
	}
	if !it.live() {
		return c.fail(KindNotFound, "remove", "", key, "data was not found", nil)
	}

	switch it.action {
	case ActionNone, ActionUpdate:
		it.action = ActionRemove
	case ActionAdd:
		it.action = ActionNone
	case ActionRemove:
		// unreachable: a pending remove holds no data
	}
	it.data = nil
	it.original = nil
	c.logger.Debug("staged", "key", key, "action", it.action)

	if err := runKey(ctx, c.hooks.AfterRemove, key); err != nil {
		return c.fail(KindExtension, "remove", "afterRemove", key, "", err)
	}
	return nil
}

// Pending returns the staged keys that have an action, sorted by key.
func (c *Collection) Pending() []Pending {
	var out []Pending
	for key, it := range c.items {
		if it.action != ActionNone {
			out = append(out, Pending{Key: key, Action: it.action})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

type flushJob struct {
	key      string
	action   Action
	data     Data
	original Data
}

// Flush applies the staged actions of keys (all staged keys when none are
// given) to the adapter. Keys are persisted concurrently; a failing key does
// not stop the others. Flush returns one result per key that had an action,
// sorted by key, along with the first error encountered.
//
// On success an added or updated key becomes a plain cached item and a
// removed key is forgotten. Failed keys keep their staged state.
func (c *Collection) Flush(ctx context.Context, keys ...string) ([]FlushResult, error) {
	if len(keys) == 0 {
		keys = make([]string, 0, len(c.items))
		for key := range c.items {
			keys = append(keys, key)
		}
	} else {
		keys = append([]string(nil), keys...)
	}
	sort.Strings(keys)

	var jobs []flushJob
	seen := make(map[string]bool, len(keys))
	for _, key := range keys {
		it, ok := c.items[key]
		if !ok || seen[key] || it.action == ActionNone {
			continue
		}
		seen[key] = true
		jobs = append(jobs, flushJob{key: key, action: it.action, data: it.data, original: it.original})
	}

	results := make([]FlushResult, len(jobs))
	var g errgroup.Group
	for i, job := range jobs {
		g.Go(func() error {
			results[i] = c.persist(ctx, job)
			return results[i].Err
		})
	}
	err := g.Wait()

	for _, r := range results {
		if r.Err != nil {
			c.logger.Warn("flush failed", "key", r.Key, "action", r.Action, "error", r.Err)
			continue
		}
		switch r.Action {
		case ActionRemove:
			delete(c.items, r.Key)
		case ActionAdd, ActionUpdate:
			it := c.items[r.Key]
			it.action = ActionNone
			it.original = nil
		case ActionNone:
		}
	}

	c.logger.Debug("flushed", "keys", len(jobs), "failed", err != nil)
	return results, err
}

func (c *Collection) persist(ctx context.Context, job flushJob) FlushResult {
	res := FlushResult{Key: job.key, Action: job.action}

	var step string
	switch job.action {
	case ActionAdd:
		step = "adapter.create"
		res.Value, res.Err = c.adapter.Create(ctx, job.key, job.data.Clone())
	case ActionUpdate:
		step = "adapter.update"
		res.Value, res.Err = c.adapter.Update(ctx, job.key, job.data.Clone(), job.original.Clone())
	case ActionRemove:
		step = "adapter.remove"
		res.Err = c.adapter.Remove(ctx, job.key)
	case ActionNone:
	}

	if res.Err != nil {
		e := c.fail(KindInternal, "flush", step, job.key, "failed to "+job.action.String()+" item while flushing", res.Err)
		e.Action = job.action
		res.Err = e
	}
	return res
}

// Clear discards every cached and staged item. The next access to any key
// goes back to the adapter.
func (c *Collection) Clear(ctx context.Context) error {
	n := len(c.items)
	c.items = make(map[string]*stagedItem)
	c.logger.Debug("cleared", "items", n)
	return nil
}
