package platform

import (
	"log/slog"

	"github.com/aretw0/stage/pkg/adapters/fs"
	"github.com/aretw0/stage/pkg/core"
)

// options holds the configuration used to assemble a Session.
type options struct {
	config         *Config
	configPath     string
	logger         *slog.Logger
	adapters       map[string]core.Adapter
	collectionOpts map[string][]core.CollectionOption
	sessionOpts    []core.SessionOption
	serializers    map[string]fs.Serializer
}

// Option defines a functional option for Open.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		adapters:       make(map[string]core.Adapter),
		collectionOpts: make(map[string][]core.CollectionOption),
		serializers:    make(map[string]fs.Serializer),
	}
}

// WithConfig uses cfg instead of reading a configuration file.
func WithConfig(cfg *Config) Option {
	return func(o *options) {
		o.config = cfg
	}
}

// WithConfigFile reads the configuration from path.
func WithConfigFile(path string) Option {
	return func(o *options) {
		o.configPath = path
	}
}

// WithLogger sets the logger shared by the session, its collections and
// their adapters.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithAdapter injects a storage adapter for the named collection (e.g. mock,
// s3). If provided, the default filesystem adapter is skipped for it.
func WithAdapter(collection string, a core.Adapter) Option {
	return func(o *options) {
		o.adapters[collection] = a
	}
}

// WithCollectionOptions appends options (hooks, validators, key generator)
// for the named collection.
func WithCollectionOptions(collection string, opts ...core.CollectionOption) Option {
	return func(o *options) {
		o.collectionOpts[collection] = append(o.collectionOpts[collection], opts...)
	}
}

// WithSessionOptions appends options (commit hooks) for the session.
func WithSessionOptions(opts ...core.SessionOption) Option {
	return func(o *options) {
		o.sessionOpts = append(o.sessionOpts, opts...)
	}
}

// WithSerializer registers a custom serializer for a file extension (".toml").
func WithSerializer(ext string, s fs.Serializer) Option {
	return func(o *options) {
		o.serializers[ext] = s
	}
}
