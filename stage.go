package stage

import (
	"context"
	"io"
	"log/slog"

	"github.com/aretw0/stage/internal/platform"
	"github.com/aretw0/stage/pkg/adapters/fs"
	"github.com/aretw0/stage/pkg/core"
	"github.com/aretw0/stage/pkg/typed"
)

// --- Types ---

type (
	Session          = core.Session
	Collection       = core.Collection
	Data             = core.Data
	Adapter          = core.Adapter
	Pending          = core.Pending
	FlushResult      = core.FlushResult
	CollectionResult = core.CollectionResult
)

// TypedCollection is a public alias for the generic collection wrapper.
type TypedCollection[T any] = typed.Collection[T]

// --- Configuration ---

// ConfigFile is the workspace configuration file name.
const ConfigFile = platform.ConfigFile

type (
	Config           = platform.Config
	CollectionConfig = platform.CollectionConfig
	Plan             = platform.Plan
	PlanOp           = platform.PlanOp
)

// Option defines a functional option for Open.
type Option = platform.Option

// WithConfig uses cfg instead of reading stage.yaml.
func WithConfig(cfg *Config) Option {
	return platform.WithConfig(cfg)
}

// WithConfigFile reads the configuration from path.
func WithConfigFile(path string) Option {
	return platform.WithConfigFile(path)
}

// WithLogger sets the logger for the session and its collections.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithAdapter allows injecting a custom storage adapter for a collection.
func WithAdapter(collection string, a Adapter) Option {
	return platform.WithAdapter(collection, a)
}

// WithCollectionOptions adds hooks or other options to a collection.
func WithCollectionOptions(collection string, opts ...core.CollectionOption) Option {
	return platform.WithCollectionOptions(collection, opts...)
}

// WithSessionOptions adds commit hooks or other options to the session.
func WithSessionOptions(opts ...core.SessionOption) Option {
	return platform.WithSessionOptions(opts...)
}

// WithSerializer registers a serializer for a file extension.
func WithSerializer(ext string, s fs.Serializer) Option {
	return platform.WithSerializer(ext, s)
}

// LoadConfig reads a stage.yaml file.
func LoadConfig(path string) (*Config, error) {
	return platform.LoadConfig(path)
}

// WriteConfig writes cfg as YAML to path.
func WriteConfig(path string, cfg *Config) error {
	return platform.WriteConfig(path, cfg)
}

// FindRoot looks upwards from startDir for a directory holding stage.yaml.
func FindRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}

// --- Factories ---

// Open creates a Session with one collection per configured entry.
func Open(opts ...Option) (*Session, error) {
	return platform.Open(opts...)
}

// NewSession creates an empty Session.
func NewSession(opts ...core.SessionOption) *Session {
	return core.NewSession(opts...)
}

// NewCollection creates a Collection backed by adapter.
func NewCollection(name string, adapter Adapter, opts ...core.CollectionOption) *Collection {
	return core.NewCollection(name, adapter, opts...)
}

// NewTyped wraps a Collection with typed access.
func NewTyped[T any](c *Collection) *TypedCollection[T] {
	return typed.New[T](c)
}

// OpenTyped returns the typed view of a registered collection.
func OpenTyped[T any](s *Session, name string) (*TypedCollection[T], error) {
	c, err := s.Repository(name)
	if err != nil {
		return nil, err
	}
	return typed.New[T](c), nil
}

// --- Operations ---

// FlushMatching flushes the staged keys whose "<collection>/<key>" matches pattern.
func FlushMatching(ctx context.Context, s *Session, pattern string) ([]CollectionResult, error) {
	return platform.FlushMatching(ctx, s, pattern)
}

// ReadPlan decodes a YAML plan.
func ReadPlan(r io.Reader) (*Plan, error) {
	return platform.ReadPlan(r)
}

// Apply stages every operation of p against s.
func Apply(ctx context.Context, s *Session, p *Plan) error {
	return platform.Apply(ctx, s, p)
}
