package core

import "log/slog"

// collectionOptions holds the configuration of a single Collection.
type collectionOptions struct {
	logger *slog.Logger
	keys   KeyGenerator
	hooks  Hooks
}

// CollectionOption defines a functional option for configuring a Collection.
type CollectionOption func(*collectionOptions)

func defaultCollectionOptions() *collectionOptions {
	return &collectionOptions{
		logger: slog.New(slog.DiscardHandler),
		keys:   nil, // adapter KeyGenerator, then UUIDKeys
	}
}

// WithLogger sets the logger for the collection.
func WithLogger(logger *slog.Logger) CollectionOption {
	return func(o *collectionOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithKeyGenerator overrides how keys are assigned when Add receives an
// empty key. It takes precedence over an adapter implementing KeyGenerator.
func WithKeyGenerator(g KeyGenerator) CollectionOption {
	return func(o *collectionOptions) {
		o.keys = g
	}
}

// WithHooks appends every non-empty stage of h to the collection pipeline.
func WithHooks(h Hooks) CollectionOption {
	return func(o *collectionOptions) {
		o.hooks.BeforeAdd = append(o.hooks.BeforeAdd, h.BeforeAdd...)
		o.hooks.AfterAdd = append(o.hooks.AfterAdd, h.AfterAdd...)
		o.hooks.BeforeUpdate = append(o.hooks.BeforeUpdate, h.BeforeUpdate...)
		o.hooks.AfterUpdate = append(o.hooks.AfterUpdate, h.AfterUpdate...)
		o.hooks.BeforeRemove = append(o.hooks.BeforeRemove, h.BeforeRemove...)
		o.hooks.AfterRemove = append(o.hooks.AfterRemove, h.AfterRemove...)
		o.hooks.BeforeValidate = append(o.hooks.BeforeValidate, h.BeforeValidate...)
		o.hooks.Validate = append(o.hooks.Validate, h.Validate...)
		o.hooks.AfterValidate = append(o.hooks.AfterValidate, h.AfterValidate...)
	}
}

// WithBeforeAdd appends a hook run before data is staged by Add.
func WithBeforeAdd(h DataHook) CollectionOption {
	return WithHooks(Hooks{BeforeAdd: []DataHook{h}})
}

// WithAfterAdd appends a hook run on the staged data returned by Add.
func WithAfterAdd(h DataHook) CollectionOption {
	return WithHooks(Hooks{AfterAdd: []DataHook{h}})
}

// WithBeforeUpdate appends a hook run before data is staged by Update.
func WithBeforeUpdate(h DataHook) CollectionOption {
	return WithHooks(Hooks{BeforeUpdate: []DataHook{h}})
}

// WithAfterUpdate appends a hook run on the staged data returned by Update.
func WithAfterUpdate(h DataHook) CollectionOption {
	return WithHooks(Hooks{AfterUpdate: []DataHook{h}})
}

// WithBeforeRemove appends a hook run before a key is staged for removal.
func WithBeforeRemove(h KeyHook) CollectionOption {
	return WithHooks(Hooks{BeforeRemove: []KeyHook{h}})
}

// WithAfterRemove appends a hook run after a key is staged for removal.
func WithAfterRemove(h KeyHook) CollectionOption {
	return WithHooks(Hooks{AfterRemove: []KeyHook{h}})
}

// WithValidator appends a validation stage.
func WithValidator(h ValidateHook) CollectionOption {
	return WithHooks(Hooks{Validate: []ValidateHook{h}})
}

// WithBeforeValidate appends a hook run ahead of the validators.
func WithBeforeValidate(h ValidateHook) CollectionOption {
	return WithHooks(Hooks{BeforeValidate: []ValidateHook{h}})
}

// WithAfterValidate appends a hook run on validated data.
func WithAfterValidate(h ValidateHook) CollectionOption {
	return WithHooks(Hooks{AfterValidate: []ValidateHook{h}})
}

// sessionOptions holds the configuration of a Session.
type sessionOptions struct {
	logger       *slog.Logger
	beforeCommit []CommitHook
	afterCommit  []AfterCommitHook
}

// SessionOption defines a functional option for configuring a Session.
type SessionOption func(*sessionOptions)

func defaultSessionOptions() *sessionOptions {
	return &sessionOptions{
		logger: slog.New(slog.DiscardHandler),
	}
}

// WithSessionLogger sets the logger for the session.
func WithSessionLogger(logger *slog.Logger) SessionOption {
	return func(o *sessionOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithBeforeCommit appends a hook run before any collection is flushed.
// An error aborts the commit and is returned as is.
func WithBeforeCommit(h CommitHook) SessionOption {
	return func(o *sessionOptions) {
		o.beforeCommit = append(o.beforeCommit, h)
	}
}

// WithAfterCommit appends a hook that receives the aggregate commit outcome.
// Hooks run in order, each seeing the previous one's error and results.
func WithAfterCommit(h AfterCommitHook) SessionOption {
	return func(o *sessionOptions) {
		o.afterCommit = append(o.afterCommit, h)
	}
}
