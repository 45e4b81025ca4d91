// Package fs implements core.Adapter on the local filesystem, storing each
// key as one file under a root directory.
package fs

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/stage/pkg/core"
)

// ErrReadOnly is returned by write operations on a read-only adapter.
var ErrReadOnly = errors.New("adapter is in read-only mode")

// Config holds the configuration for the filesystem adapter.
type Config struct {
	Path      string
	Format    string // file extension without the dot: yaml (default), json, md
	Strict    bool   // parse numbers as json.Number
	MustExist bool
	ReadOnly  bool
	Logger    *slog.Logger
	// Serializers overrides or extends DefaultSerializers, keyed by extension (".toml").
	Serializers map[string]Serializer
}

// Adapter stores data as files: key "users/u1" with format yaml lives at
// <Path>/users/u1.yaml.
type Adapter struct {
	Path       string
	config     Config
	ext        string
	serializer Serializer
	logger     *slog.Logger
}

// NewAdapter creates a filesystem adapter. It fails if the configured
// format has no serializer.
func NewAdapter(config Config) (*Adapter, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("adapter path is empty")
	}
	format := strings.TrimPrefix(config.Format, ".")
	if format == "" {
		format = "yaml"
	}
	ext := "." + format

	serializers := DefaultSerializers(config.Strict)
	for k, s := range config.Serializers {
		serializers[k] = s
	}
	serializer, ok := serializers[ext]
	if !ok {
		return nil, fmt.Errorf("no serializer for format %q", format)
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Adapter{
		Path:       config.Path,
		config:     config,
		ext:        ext,
		serializer: serializer,
		logger:     logger,
	}, nil
}

// Initialize ensures the root directory exists.
func (a *Adapter) Initialize(ctx context.Context) error {
	if a.config.MustExist || a.config.ReadOnly {
		info, err := os.Stat(a.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("adapter path does not exist: %s", a.Path)
		}
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("adapter path is not a directory: %s", a.Path)
		}
		return nil
	}
	if err := os.MkdirAll(a.Path, 0755); err != nil {
		return fmt.Errorf("failed to create adapter directory: %w", err)
	}
	return nil
}

// filename maps a key to its file, rejecting keys that would escape Path.
func (a *Adapter) filename(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("key is empty")
	}
	clean := filepath.Clean(filepath.FromSlash(key))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(a.Path, clean+a.ext), nil
}

// Find reads the file for key. A missing file yields (nil, nil).
func (a *Adapter) Find(ctx context.Context, key string) (core.Data, error) {
	name, err := a.filename(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(name)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	data, err := a.serializer.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return data, nil
}

func (a *Adapter) encode(key string, data core.Data) (string, []byte, error) {
	if a.config.ReadOnly {
		return "", nil, ErrReadOnly
	}
	name, err := a.filename(key)
	if err != nil {
		return "", nil, err
	}
	if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return "", nil, fmt.Errorf("failed to create directories: %w", err)
	}
	raw, err := a.serializer.Serialize(data)
	if err != nil {
		return "", nil, fmt.Errorf("failed to serialize %s: %w", key, err)
	}
	return name, raw, nil
}

// Create writes a new file for key. It fails with os.ErrExist if the file
// is already present.
func (a *Adapter) Create(ctx context.Context, key string, data core.Data) (core.Data, error) {
	name, raw, err := a.encode(key, data)
	if err != nil {
		return nil, err
	}
	if err := createFileExclusive(name, raw, 0644); err != nil {
		return nil, err
	}
	a.logger.Debug("created", "key", key, "path", name)
	return data, nil
}

// Update overwrites the file for key.
func (a *Adapter) Update(ctx context.Context, key string, data, original core.Data) (core.Data, error) {
	name, raw, err := a.encode(key, data)
	if err != nil {
		return nil, err
	}
	if err := writeFileAtomic(name, raw, 0644); err != nil {
		return nil, err
	}
	a.logger.Debug("updated", "key", key, "path", name)
	return data, nil
}

// Remove deletes the file for key. A missing file is reported as
// os.ErrNotExist.
func (a *Adapter) Remove(ctx context.Context, key string) error {
	if a.config.ReadOnly {
		return ErrReadOnly
	}
	name, err := a.filename(key)
	if err != nil {
		return err
	}
	if err := os.Remove(name); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	a.logger.Debug("removed", "key", key, "path", name)
	return nil
}

// keyOf maps a file under Path back to its key. Temporary files and files
// of another format have no key.
func (a *Adapter) keyOf(path string) (string, bool) {
	if filepath.Ext(path) != a.ext || strings.HasPrefix(filepath.Base(path), TempFilePrefix) {
		return "", false
	}
	rel, err := filepath.Rel(a.Path, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return strings.TrimSuffix(filepath.ToSlash(rel), a.ext), true
}

// Keys lists the stored keys, sorted. A non-empty pattern filters them
// with doublestar glob syntax ("users/**").
func (a *Adapter) Keys(ctx context.Context, pattern string) ([]string, error) {
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}

	var keys []string
	err := filepath.WalkDir(a.Path, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		key, ok := a.keyOf(path)
		if !ok {
			return nil
		}
		if pattern != "" {
			ok, err := doublestar.Match(pattern, key)
			if err != nil || !ok {
				return err
			}
		}
		keys = append(keys, key)
		return ctx.Err()
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

var _ core.Adapter = (*Adapter)(nil)
