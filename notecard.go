package notecard

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/notecard/internal/config"
	"github.com/aretw0/notecard/internal/platform"
	"github.com/aretw0/notecard/pkg/core"
	"github.com/aretw0/notecard/pkg/scheduler"
)

// --- Types ---

// App is an opened data directory: notes, tags and the reminder scheduler.
type App = platform.App

// Note is a public alias for core.Note.
type Note = core.Note

// Tag is a public alias for core.Tag.
type Tag = core.Tag

// Reminder is a public alias for core.Reminder.
type Reminder = core.Reminder

// Notification is what a Notifier receives when a reminder fires.
type Notification = core.Notification

// Notifier delivers reminder notifications.
type Notifier = core.Notifier

// Event is a change notification published by the stores and the scheduler.
type Event = core.Event

// Config is the notecard.yaml configuration.
type Config = config.Config

// SchedulerState is the introspection snapshot of the scheduler.
type SchedulerState = scheduler.SchedulerState

// --- Configuration ---

// Option defines a functional option for configuring notecard.
type Option = platform.Option

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithConfig uses cfg instead of reading notecard.yaml.
func WithConfig(cfg Config) Option {
	return platform.WithConfig(cfg)
}

// WithConfigFile reads the configuration from path.
func WithConfigFile(path string) Option {
	return platform.WithConfigFile(path)
}

// WithNotifier replaces the notifier selected by the configuration.
func WithNotifier(n Notifier) Option {
	return platform.WithNotifier(n)
}

// WithMustExist ensures the data directory must already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithReadOnly enables read-only mode.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithDevSafety controls the sandbox used when running via `go run`.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// WithEventBuffer sets the per-subscriber event buffer.
func WithEventBuffer(size int) Option {
	return platform.WithEventBuffer(size)
}

// WithFireOverdueOnLoad fires reminders missed while the program was not running.
func WithFireOverdueOnLoad(enabled bool) Option {
	return platform.WithFireOverdueOnLoad(enabled)
}

// WithSeedContent sets the content of new notes.
func WithSeedContent(content string) Option {
	return platform.WithSeedContent(content)
}

// WithWatcherErrorHandler registers a callback for runtime watcher failures.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// WithClock replaces time.Now in the scheduler.
func WithClock(now func() time.Time) Option {
	return platform.WithClock(now)
}

// --- Factory ---

// Open opens the data directory at path.
func Open(ctx context.Context, path string, opts ...Option) (*App, error) {
	return platform.Open(ctx, path, opts...)
}

// --- Safety & Utils ---

// ResolveDataPath determines the actual data directory based on safety rules.
func ResolveDataPath(userPath string, forceTemp bool) string {
	return platform.ResolveDataPath(userPath, forceTemp)
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}

// FindRoot looks upwards for a data directory.
func FindRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}
