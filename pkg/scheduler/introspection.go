package scheduler

import (
	"time"

	"github.com/aretw0/introspection"
)

// SchedulerState exposes internal state for observability.
type SchedulerState struct {
	Running           bool       `json:"running"`
	Pending           int        `json:"pending"`
	NextDeadline      *time.Time `json:"next_deadline,omitempty"`
	Fired             int        `json:"fired"`
	DeliveryFailures  int        `json:"delivery_failures"`
	LastFired         *time.Time `json:"last_fired,omitempty"`
	Observers         int        `json:"observers"`
	FireOverdueOnLoad bool       `json:"fire_overdue_on_load"`
}

// State implements introspection.Introspectable.
func (s *Scheduler) State() any {
	running := s.worker.running()

	s.mu.Lock()
	defer s.mu.Unlock()

	state := SchedulerState{
		Running:           running,
		Pending:           len(s.queue),
		Fired:             s.fired,
		DeliveryFailures:  s.failures,
		LastFired:         s.lastFired,
		Observers:         len(s.observers),
		FireOverdueOnLoad: s.config.FireOverdueOnLoad,
	}
	if it := s.queue.peek(); it != nil {
		next := it.At
		state.NextDeadline = &next
	}
	return state
}

// ComponentType implements introspection.Component.
func (s *Scheduler) ComponentType() string {
	return "scheduler"
}

func (s *Scheduler) queueLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

var _ introspection.Introspectable = (*Scheduler)(nil)
var _ introspection.Component = (*Scheduler)(nil)
