package platform

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/notecard/internal/config"
	"github.com/aretw0/notecard/pkg/adapters/fs"
	"github.com/aretw0/notecard/pkg/core"
	"github.com/aretw0/notecard/pkg/notify"
	"github.com/aretw0/notecard/pkg/scheduler"
)

// App wires the note store, the tag registry and the reminder scheduler to
// one data directory.
type App struct {
	Config     config.Config
	Repository *fs.Repository
	Broker     *core.Broker
	Notes      *core.NoteStore
	Tags       *core.TagRegistry
	Scheduler  *scheduler.Scheduler

	logger  *slog.Logger
	mu      sync.Mutex
	cancel  context.CancelFunc
	started bool
}

// Open builds an App for the data directory at path and loads notes and tags.
// Reminders are armed by Start.
//
//	app, err := notecard.Open(ctx, "./notes", notecard.WithLogger(logger))
func Open(ctx context.Context, path string, opts ...Option) (*App, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	cfg, err := loadConfig(path, o)
	if err != nil {
		return nil, err
	}

	readOnly, _ := o.flag("read_only")
	mustExist, _ := o.flag("must_exist")
	forceTemp, _ := o.flag("temp_dir")
	devSafety := true
	if v, ok := o.flag("dev_safety"); ok {
		devSafety = v
	}
	bypass := readOnly || !devSafety
	useTemp := forceTemp || (IsDevRun() && !bypass)

	resolved := ResolveDataPath(cfg.DataDir, useTemp)
	if useTemp && resolved != cfg.DataDir {
		logger.Warn("running in SAFE MODE (dev sandbox)", "original_path", cfg.DataDir, "resolved_path", resolved)
	}
	cfg.DataDir = resolved

	repo := fs.NewRepository(fs.Config{
		Path:          resolved,
		NotesFile:     cfg.Files.Notes,
		TagsFile:      cfg.Files.Tags,
		RemindersFile: cfg.Files.Reminders,
		MustExist:     mustExist,
		ReadOnly:      readOnly,
		Logger:        logger,
		ErrorHandler:  o.errorHandler,
	})
	if err := repo.Initialize(ctx); err != nil {
		return nil, err
	}

	notifier := o.notifier
	if notifier == nil {
		notifier = notifierFor(cfg.Notifier, logger)
	}

	broker := core.NewBroker(cfg.EventBuffer, logger)
	app := &App{
		Config:     cfg,
		Repository: repo,
		Broker:     broker,
		logger:     logger,
		Notes: core.NewNoteStore(repo, core.NoteStoreConfig{
			SeedContent: cfg.SeedContent,
			ReadOnly:    readOnly,
			Logger:      logger,
			Broker:      broker,
		}),
		Tags: core.NewTagRegistry(repo, core.TagRegistryConfig{
			Defaults: cfg.DefaultTags,
			ReadOnly: readOnly,
			Logger:   logger,
			Broker:   broker,
		}),
		Scheduler: scheduler.New(repo, notifier, scheduler.Config{
			Title:             cfg.Reminders.Title,
			AppName:           cfg.Reminders.AppName,
			Timeout:           cfg.Reminders.Timeout,
			PreviewLength:     cfg.Reminders.PreviewLength,
			DeliveryTimeout:   cfg.Reminders.DeliveryTimeout,
			FireOverdueOnLoad: cfg.Reminders.FireOverdueOnLoad,
			Logger:            logger,
			Broker:            broker,
			Now:               o.now,
		}),
	}

	if err := app.Notes.Load(ctx); err != nil {
		return nil, err
	}
	if err := app.Tags.Load(ctx); err != nil {
		return nil, err
	}
	return app, nil
}

func loadConfig(path string, o *options) (config.Config, error) {
	var cfg config.Config
	switch {
	case o.config != nil:
		cfg = *o.config
		if path != "" {
			cfg.DataDir = path
		}
	case o.configFile != "":
		c, err := config.LoadFile(o.configFile)
		if err != nil {
			return cfg, err
		}
		cfg = c
		if path != "" {
			cfg.DataDir = path
		}
	default:
		c, err := config.Load(path)
		if err != nil {
			return cfg, err
		}
		cfg = c
	}

	if v, ok := o.flag("fire_overdue"); ok {
		cfg.Reminders.FireOverdueOnLoad = v
	}
	if v, ok := o.settings["event_buffer"].(int); ok {
		cfg.EventBuffer = v
	}
	if v, ok := o.settings["seed_content"].(string); ok && v != "" {
		cfg.SeedContent = v
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func notifierFor(name string, logger *slog.Logger) core.Notifier {
	switch name {
	case config.NotifierDesktop:
		return notify.Desktop{}
	case config.NotifierBoth:
		return notify.Multi{notify.Log{Logger: logger}, notify.Desktop{}}
	default:
		return notify.Log{Logger: logger}
	}
}

// Start arms the persisted reminders, runs the scheduler loop and reloads
// the stores when another process edits the data files. Everything stops
// when ctx is done or Close is called.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started {
		return fmt.Errorf("app already started")
	}

	ctx, cancel := context.WithCancel(ctx)
	if err := a.Scheduler.Start(ctx); err != nil {
		cancel()
		return err
	}
	if n, err := a.Scheduler.LoadSavedReminders(ctx); err == nil {
		a.logger.Info("reminders armed", "count", n)
	}

	changes, err := a.Repository.Watch(ctx)
	if err != nil {
		a.logger.Warn("watch disabled", "error", err)
	} else {
		lifecycle.Go(ctx, func(ctx context.Context) error {
			for e := range changes {
				a.reload(ctx, e)
			}
			return nil
		})
	}

	a.cancel = cancel
	a.started = true
	return nil
}

// reload brings the in-memory view of one resource back in sync with its file.
func (a *App) reload(ctx context.Context, e core.Event) {
	a.logger.Debug("data file changed", "resource", e.Resource)

	var err error
	switch e.Resource {
	case core.ResourceNote:
		err = a.Notes.Load(ctx)
	case core.ResourceTag:
		err = a.Tags.Load(ctx)
	case core.ResourceReminder:
		_, err = a.Scheduler.LoadSavedReminders(ctx)
	}
	if err != nil {
		a.logger.Warn("reload failed", "resource", e.Resource, "error", err)
	}
}

// Subscribe returns change events from every component.
func (a *App) Subscribe(ctx context.Context) <-chan core.Event {
	return a.Broker.Subscribe(ctx)
}

// Close stops the scheduler and the watcher.
func (a *App) Close(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.started {
		return nil
	}
	a.started = false

	err := a.Scheduler.Stop(ctx)
	a.cancel()
	return err
}
