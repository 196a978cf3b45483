// Package lifecycle bridges notecard change events into aretw0/lifecycle.
package lifecycle

import (
	"context"
	"slices"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/notecard/pkg/core"
)

// Change is the lifecycle.Event emitted for a notecard change.
type Change struct {
	core.Event
}

// External reports whether the change came from the files being edited
// outside this process.
func (c Change) External() bool {
	return c.Type == core.EventReload
}

// Option narrows what a Source emits.
type Option func(*eventSource)

// WithResources keeps only events about the given resources.
func WithResources(resources ...core.Resource) Option {
	return func(s *eventSource) { s.resources = resources }
}

// WithTypes keeps only events of the given types.
func WithTypes(types ...core.EventType) Option {
	return func(s *eventSource) { s.types = types }
}

type eventSource struct {
	events    <-chan core.Event
	out       chan lifecycle.Event
	resources []core.Resource
	types     []core.EventType
}

// NewSource creates a lifecycle.Source that emits notecard changes (note
// edits, tag changes, fired reminders) as Change values.
func NewSource(events <-chan core.Event, opts ...Option) lifecycle.Source {
	s := &eventSource{
		events: events,
		out:    make(chan lifecycle.Event),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *eventSource) Events() <-chan lifecycle.Event {
	return s.out
}

func (s *eventSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-s.events:
				if !ok {
					return nil
				}
				if !s.wants(e) {
					continue
				}
				select {
				case s.out <- Change{Event: e}:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}

func (s *eventSource) wants(e core.Event) bool {
	if len(s.resources) > 0 && !slices.Contains(s.resources, e.Resource) {
		return false
	}
	return len(s.types) == 0 || slices.Contains(s.types, e.Type)
}
