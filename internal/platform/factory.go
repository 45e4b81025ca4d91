package platform

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/stage/pkg/adapters/fs"
	"github.com/aretw0/stage/pkg/core"
)

// Open assembles a Session from the configuration: one filesystem-backed
// collection per configured entry, unless WithAdapter supplies the storage.
//
//	s, err := platform.Open(platform.WithConfigFile("stage.yaml"))
func Open(opts ...Option) (*core.Session, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	cfg := o.config
	if cfg == nil {
		if o.configPath == "" {
			return nil, fmt.Errorf("no configuration: use WithConfig or WithConfigFile")
		}
		var err error
		if cfg, err = LoadConfig(o.configPath); err != nil {
			return nil, err
		}
	} else if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	sessionOpts := append([]core.SessionOption{core.WithSessionLogger(logger)}, o.sessionOpts...)
	session := core.NewSession(sessionOpts...)

	for _, cc := range cfg.Collections {
		adapter, ok := o.adapters[cc.Name]
		if !ok {
			a, err := newFSAdapter(cfg, cc, o, logger)
			if err != nil {
				return nil, fmt.Errorf("collection %q: %w", cc.Name, err)
			}
			adapter = a
		}

		copts := []core.CollectionOption{core.WithLogger(logger)}
		if len(cc.Required) > 0 {
			copts = append(copts, core.WithValidator(RequiredFields(cc.Required...)))
		}
		copts = append(copts, o.collectionOpts[cc.Name]...)

		if err := session.Register(cc.Name, core.NewCollection(cc.Name, adapter, copts...)); err != nil {
			return nil, err
		}
	}

	logger.Debug("session opened", "root", cfg.Root, "collections", len(cfg.Collections))
	return session, nil
}

func newFSAdapter(cfg *Config, cc CollectionConfig, o *options, logger *slog.Logger) (*fs.Adapter, error) {
	dir := cc.Dir
	if dir == "" {
		dir = cc.Name
	}
	format := cc.Format
	if format == "" {
		format = cfg.Format
	}

	a, err := fs.NewAdapter(fs.Config{
		Path:        filepath.Join(cfg.Root, dir),
		Format:      format,
		Strict:      cfg.Strict,
		ReadOnly:    cfg.ReadOnly,
		Logger:      logger,
		Serializers: o.serializers,
	})
	if err != nil {
		return nil, err
	}
	if err := a.Initialize(context.Background()); err != nil {
		return nil, err
	}
	return a, nil
}
