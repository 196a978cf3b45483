package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/notecard/internal/config"
	"github.com/aretw0/notecard/pkg/core"
)

// options holds the internal configuration for a notecard App.
type options struct {
	logger       *slog.Logger
	config       *config.Config
	configFile   string
	notifier     core.Notifier
	settings     map[string]any
	errorHandler func(error)
	now          func() time.Time
}

// Option defines a functional option for configuring notecard.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		settings: make(map[string]any),
	}
}

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithConfig uses cfg instead of reading notecard.yaml from the data directory.
func WithConfig(cfg config.Config) Option {
	return func(o *options) {
		o.config = &cfg
	}
}

// WithConfigFile reads the configuration from path instead of the data directory.
func WithConfigFile(path string) Option {
	return func(o *options) {
		o.configFile = path
	}
}

// WithNotifier replaces the notifier selected by the configuration.
func WithNotifier(n core.Notifier) Option {
	return func(o *options) {
		o.notifier = n
	}
}

// WithMustExist ensures the data directory must already exist.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.settings["must_exist"] = must
	}
}

// WithReadOnly enables read-only mode.
// Mutations return core.ErrReadOnly, the data directory is never created and
// the dev sandbox is bypassed.
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.settings["read_only"] = enabled
	}
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.settings["temp_dir"] = force
	}
}

// WithDevSafety controls the sandbox used when running via `go run`.
// By default (true) data is redirected to a temporary directory so that a
// development build never touches real notes.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.settings["dev_safety"] = enabled
	}
}

// WithEventBuffer sets the per-subscriber event buffer. Zero means default (100).
func WithEventBuffer(size int) Option {
	return func(o *options) {
		o.settings["event_buffer"] = size
	}
}

// WithFireOverdueOnLoad makes LoadSavedReminders fire reminders whose time
// passed while the program was not running, instead of leaving them in the file.
func WithFireOverdueOnLoad(enabled bool) Option {
	return func(o *options) {
		o.settings["fire_overdue"] = enabled
	}
}

// WithSeedContent sets the content of notes created by AddNote.
func WithSeedContent(content string) Option {
	return func(o *options) {
		o.settings["seed_content"] = content
	}
}

// WithWatcherErrorHandler registers a callback for runtime watcher failures
// (e.g. permission denied) which are otherwise only logged.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.errorHandler = fn
	}
}

// WithClock replaces time.Now in the scheduler.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func (o *options) flag(key string) (value, set bool) {
	value, set = o.settings[key].(bool)
	return value, set
}
