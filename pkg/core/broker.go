package core

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aretw0/lifecycle"
)

// DefaultEventBuffer is the per-subscriber buffer used when none is configured.
const DefaultEventBuffer = 100

// Broker fans change events out to subscribers.
// Publishing never blocks: a subscriber whose buffer is full misses the event.
type Broker struct {
	mu     sync.RWMutex
	subs   map[chan Event]struct{}
	size   int
	logger *slog.Logger
}

// NewBroker creates a Broker. A non-positive size selects DefaultEventBuffer.
func NewBroker(size int, logger *slog.Logger) *Broker {
	if size <= 0 {
		size = DefaultEventBuffer
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Broker{
		subs:   make(map[chan Event]struct{}),
		size:   size,
		logger: logger,
	}
}

// Subscribe registers a new subscriber. The returned channel is closed once
// ctx is done.
func (b *Broker) Subscribe(ctx context.Context) <-chan Event {
	ch := make(chan Event, b.size)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	lifecycle.Go(ctx, func(ctx context.Context) error {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, ch)
		close(ch)
		b.mu.Unlock()
		return nil
	})

	return ch
}

// Publish delivers e to every subscriber with room in its buffer.
func (b *Broker) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subs {
		select {
		case ch <- e:
		default:
			b.logger.Debug("event dropped, subscriber buffer full", "event", e.String())
		}
	}
}

// Subscribers returns the number of active subscribers.
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// BufferSize returns the per-subscriber buffer size.
func (b *Broker) BufferSize() int {
	return b.size
}
