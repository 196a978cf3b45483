package core

import (
	"github.com/aretw0/introspection"
)

// NoteStoreState exposes internal state for observability.
type NoteStoreState struct {
	Notes          int    `json:"notes"`
	Saves          int    `json:"saves"`
	ReadOnly       bool   `json:"read_only"`
	Subscribers    int    `json:"subscribers"`
	EventBuffer    int    `json:"event_buffer_size"`
	RepositoryType string `json:"repository_type"`
}

// State implements introspection.Introspectable.
func (s *NoteStore) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return NoteStoreState{
		Notes:          len(s.notes),
		Saves:          s.saves,
		ReadOnly:       s.config.ReadOnly,
		Subscribers:    s.broker.Subscribers(),
		EventBuffer:    s.broker.BufferSize(),
		RepositoryType: componentType(s.repo),
	}
}

// ComponentType implements introspection.Component.
func (s *NoteStore) ComponentType() string {
	return "note-store"
}

// TagRegistryState exposes internal state for observability.
type TagRegistryState struct {
	Tags           int    `json:"tags"`
	ReadOnly       bool   `json:"read_only"`
	RepositoryType string `json:"repository_type"`
}

// State implements introspection.Introspectable.
func (r *TagRegistry) State() any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return TagRegistryState{
		Tags:           len(r.colors),
		ReadOnly:       r.config.ReadOnly,
		RepositoryType: componentType(r.repo),
	}
}

// ComponentType implements introspection.Component.
func (r *TagRegistry) ComponentType() string {
	return "tag-registry"
}

func componentType(v any) string {
	if v == nil {
		return "unknown"
	}
	if comp, ok := v.(introspection.Component); ok {
		return comp.ComponentType()
	}
	return "repository"
}

var (
	_ introspection.Introspectable = (*NoteStore)(nil)
	_ introspection.Component      = (*NoteStore)(nil)
	_ introspection.Introspectable = (*TagRegistry)(nil)
	_ introspection.Component      = (*TagRegistry)(nil)
)
