package core

import (
	"github.com/aretw0/introspection"
)

// CollectionState exposes internal state for observability.
type CollectionState struct {
	Name    string         `json:"name"`
	Cached  int            `json:"cached"`
	Pending map[string]int `json:"pending,omitempty"` // action -> count
}

// State implements introspection.Introspectable.
// It reads the staged map without locking and must not race with mutations.
func (c *Collection) State() any {
	st := CollectionState{Name: c.name, Cached: len(c.items)}
	for _, it := range c.items {
		if it.action == ActionNone {
			continue
		}
		if st.Pending == nil {
			st.Pending = make(map[string]int)
		}
		st.Pending[it.action.String()]++
	}
	return st
}

// ComponentType implements introspection.Component.
func (c *Collection) ComponentType() string {
	return "collection"
}

// SessionState exposes internal state for observability.
type SessionState struct {
	Collections []string `json:"collections"`
	Commits     int      `json:"commits"`
	Rollbacks   int      `json:"rollbacks"`
	LastError   string   `json:"last_error,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Session) State() any {
	names := s.Names()

	s.mu.RLock()
	defer s.mu.RUnlock()

	st := SessionState{
		Collections: names,
		Commits:     s.commits,
		Rollbacks:   s.rollbacks,
	}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	return st
}

// ComponentType implements introspection.Component.
func (s *Session) ComponentType() string {
	return "session"
}

var _ introspection.Introspectable = (*Collection)(nil)
var _ introspection.Component = (*Collection)(nil)
var _ introspection.Introspectable = (*Session)(nil)
var _ introspection.Component = (*Session)(nil)
