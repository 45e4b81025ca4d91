package fs

import (
	"github.com/aretw0/introspection"
)

// AdapterState exposes internal state for observability.
type AdapterState struct {
	Path     string `json:"path"`
	Format   string `json:"format"`
	ReadOnly bool   `json:"read_only"`
	Strict   bool   `json:"strict"`
}

// State implements introspection.Introspectable.
func (a *Adapter) State() any {
	return AdapterState{
		Path:     a.Path,
		Format:   a.ext[1:],
		ReadOnly: a.config.ReadOnly,
		Strict:   a.config.Strict,
	}
}

// ComponentType implements introspection.Component.
func (a *Adapter) ComponentType() string {
	return "adapter"
}

var _ introspection.Introspectable = (*Adapter)(nil)
var _ introspection.Component = (*Adapter)(nil)
