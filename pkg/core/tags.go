package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
)

// DefaultTags is the set seeded when no usable tag file exists.
var DefaultTags = []Tag{
	{Name: "запис", Color: "#cccccc"},
	{Name: "важливо", Color: "#ff9999"},
	{Name: "ідея", Color: "#99ff99"},
	{Name: "робота", Color: "#9999ff"},
	{Name: "особисте", Color: "#ffcc99"},
}

// TagRegistryConfig configures a TagRegistry.
type TagRegistryConfig struct {
	Defaults []Tag // nil selects DefaultTags
	ReadOnly bool
	Logger   *slog.Logger
	Broker   *Broker
}

// TagRegistry maps unique tag names to colors.
// It is a map in memory and an ordered list on disk; insertion order is kept
// so the file stays stable across saves.
type TagRegistry struct {
	mu     sync.RWMutex
	repo   TagRepository
	colors map[string]string
	order  []string
	config TagRegistryConfig
	broker *Broker
	logger *slog.Logger
}

// NewTagRegistry creates an empty registry backed by repo.
func NewTagRegistry(repo TagRepository, config TagRegistryConfig) *TagRegistry {
	if config.Defaults == nil {
		config.Defaults = DefaultTags
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	broker := config.Broker
	if broker == nil {
		broker = NewBroker(0, logger)
	}
	return &TagRegistry{
		repo:   repo,
		colors: make(map[string]string),
		config: config,
		broker: broker,
		logger: logger,
	}
}

// Load reads the registry. A missing or unusable file seeds the defaults,
// which are not written back until the next mutation.
func (r *TagRegistry) Load(ctx context.Context) error {
	tags, err := r.repo.LoadTags(ctx)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			r.logger.Warn("failed to load tags, using defaults", "error", err)
		}
		tags = r.config.Defaults
	}

	r.mu.Lock()
	r.colors = make(map[string]string, len(tags))
	r.order = r.order[:0]
	for _, t := range tags {
		if name := normalizeTag(t.Name); name != "" {
			r.setLocked(name, t.Color)
		}
	}
	r.mu.Unlock()

	r.broker.Publish(NewEvent(EventReload, ResourceTag, ""))
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// Save writes the registry as a list of records.
func (r *TagRegistry) Save(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.saveLocked(ctx)
}

func (r *TagRegistry) saveLocked(ctx context.Context) error {
	if r.config.ReadOnly {
		return ErrReadOnly
	}
	if err := r.repo.SaveTags(ctx, r.tagsLocked()); err != nil {
		r.logger.Error("failed to save tags", "error", err)
		return fmt.Errorf("failed to save tags: %w", err)
	}
	return nil
}

// Tags returns the registry in insertion order.
func (r *TagRegistry) Tags() []Tag {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tagsLocked()
}

// Names returns tag names in insertion order.
func (r *TagRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Colors returns a copy of the name -> color mapping.
func (r *TagRegistry) Colors() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]string, len(r.colors))
	for k, v := range r.colors {
		out[k] = v
	}
	return out
}

// Color returns the color of a tag, accepting a leading '#'.
// Unknown tags get FallbackTagColor.
func (r *TagRegistry) Color(name string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if c, ok := r.colors[TagName(name)]; ok {
		return c
	}
	return FallbackTagColor
}

// Has reports whether the registry holds name, accepting a leading '#'.
func (r *TagRegistry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.colors[normalizeTag(name)]
	return ok
}

// Add registers a tag. A leading '#' is dropped from name and an empty
// color selects DefaultTagColor. Adding an existing name is a no-op: the
// first color wins.
func (r *TagRegistry) Add(ctx context.Context, name, color string) error {
	name = normalizeTag(name)
	if name == "" {
		return fmt.Errorf("tag name cannot be empty")
	}
	if color == "" {
		color = DefaultTagColor
	}

	r.mu.Lock()
	if _, ok := r.colors[name]; ok {
		r.mu.Unlock()
		return nil
	}
	if r.config.ReadOnly {
		r.mu.Unlock()
		return ErrReadOnly
	}
	r.setLocked(name, color)
	err := r.saveLocked(ctx)
	r.mu.Unlock()

	r.broker.Publish(NewEvent(EventCreate, ResourceTag, name))
	return err
}

// Remove deletes the named tags and persists once. Notes still referring to
// them are left alone.
func (r *TagRegistry) Remove(ctx context.Context, names ...string) error {
	r.mu.Lock()
	if r.config.ReadOnly {
		r.mu.Unlock()
		return ErrReadOnly
	}

	var removed []string
	for _, name := range names {
		name = normalizeTag(name)
		if _, ok := r.colors[name]; !ok {
			continue
		}
		delete(r.colors, name)
		r.order = slices.DeleteFunc(r.order, func(n string) bool { return n == name })
		removed = append(removed, name)
	}
	err := r.saveLocked(ctx)
	r.mu.Unlock()

	for _, name := range removed {
		r.broker.Publish(NewEvent(EventDelete, ResourceTag, name))
	}
	return err
}

// Subscribe implements Subscriber.
func (r *TagRegistry) Subscribe(ctx context.Context) <-chan Event {
	return r.broker.Subscribe(ctx)
}

func (r *TagRegistry) setLocked(name, color string) {
	if _, ok := r.colors[name]; !ok {
		r.order = append(r.order, name)
	}
	r.colors[name] = color
}

func (r *TagRegistry) tagsLocked() []Tag {
	tags := make([]Tag, 0, len(r.order))
	for _, name := range r.order {
		tags = append(tags, Tag{Name: name, Color: r.colors[name]})
	}
	return tags
}

func normalizeTag(name string) string {
	return TagName(strings.TrimSpace(name))
}
