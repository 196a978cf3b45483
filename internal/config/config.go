// Package config loads notecard settings from an optional YAML file in the
// data directory and from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/notecard/pkg/adapters/fs"
	"github.com/aretw0/notecard/pkg/core"
	"github.com/aretw0/notecard/pkg/scheduler"
)

// FileName is the config file looked up in the data directory.
const FileName = "notecard.yaml"

// Notifier names accepted in the config.
const (
	NotifierLog     = "log"
	NotifierDesktop = "desktop"
	NotifierBoth    = "both"
)

// Config is the on-disk configuration. Zero fields fall back to Default.
type Config struct {
	DataDir     string     `yaml:"data_dir"`
	Files       Files      `yaml:"files"`
	SeedContent string     `yaml:"seed_content"`
	DefaultTags []core.Tag `yaml:"default_tags"`
	Reminders   Reminders  `yaml:"reminders"`
	Notifier    string     `yaml:"notifier"`
	EventBuffer int        `yaml:"event_buffer"`
}

// Files names the data files inside DataDir.
type Files struct {
	Notes     string `yaml:"notes"`
	Tags      string `yaml:"tags"`
	Reminders string `yaml:"reminders"`
}

// Reminders configures notification delivery.
type Reminders struct {
	Title             string        `yaml:"title"`
	AppName           string        `yaml:"app_name"`
	Timeout           time.Duration `yaml:"timeout"`
	PreviewLength     int           `yaml:"preview_length"`
	DeliveryTimeout   time.Duration `yaml:"delivery_timeout"`
	FireOverdueOnLoad bool          `yaml:"fire_overdue_on_load"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DataDir: ".",
		Files: Files{
			Notes:     fs.DefaultNotesFile,
			Tags:      fs.DefaultTagsFile,
			Reminders: fs.DefaultRemindersFile,
		},
		SeedContent: core.DefaultSeedContent,
		DefaultTags: append([]core.Tag(nil), core.DefaultTags...),
		Reminders: Reminders{
			Title:           scheduler.DefaultTitle,
			AppName:         scheduler.DefaultAppName,
			Timeout:         scheduler.DefaultTimeout,
			PreviewLength:   scheduler.DefaultPreviewLength,
			DeliveryTimeout: scheduler.DefaultDeliveryTimeout,
		},
		Notifier:    NotifierLog,
		EventBuffer: 100,
	}
}

// Load reads FileName from dataDir on top of the defaults.
// A missing file is not an error.
func Load(dataDir string) (Config, error) {
	cfg, err := LoadFile(filepath.Join(dataDir, FileName))
	if errors.Is(err, os.ErrNotExist) {
		cfg, err = Default(), nil
	}
	if err != nil {
		return cfg, err
	}
	if cfg.DataDir == "" || cfg.DataDir == "." {
		cfg.DataDir = dataDir
	}
	return cfg, nil
}

// LoadFile reads a YAML config file on top of the defaults.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	cfg.fill()

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// fill restores defaults for fields the file set to their zero value.
func (c *Config) fill() {
	def := Default()
	if c.Files.Notes == "" {
		c.Files.Notes = def.Files.Notes
	}
	if c.Files.Tags == "" {
		c.Files.Tags = def.Files.Tags
	}
	if c.Files.Reminders == "" {
		c.Files.Reminders = def.Files.Reminders
	}
	if c.SeedContent == "" {
		c.SeedContent = def.SeedContent
	}
	if len(c.DefaultTags) == 0 {
		c.DefaultTags = def.DefaultTags
	}
	if c.Reminders.Title == "" {
		c.Reminders.Title = def.Reminders.Title
	}
	if c.Reminders.AppName == "" {
		c.Reminders.AppName = def.Reminders.AppName
	}
	if c.Reminders.Timeout == 0 {
		c.Reminders.Timeout = def.Reminders.Timeout
	}
	if c.Reminders.PreviewLength == 0 {
		c.Reminders.PreviewLength = def.Reminders.PreviewLength
	}
	if c.Reminders.DeliveryTimeout == 0 {
		c.Reminders.DeliveryTimeout = def.Reminders.DeliveryTimeout
	}
	if c.Notifier == "" {
		c.Notifier = def.Notifier
	}
	if c.EventBuffer == 0 {
		c.EventBuffer = def.EventBuffer
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Notifier {
	case NotifierLog, NotifierDesktop, NotifierBoth:
	default:
		return fmt.Errorf("unknown notifier %q", c.Notifier)
	}
	if c.Reminders.PreviewLength < 0 {
		return fmt.Errorf("preview_length must not be negative")
	}
	if c.Reminders.Timeout < 0 || c.Reminders.DeliveryTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	if c.EventBuffer < 0 {
		return fmt.Errorf("event_buffer must not be negative")
	}
	for i, t := range c.DefaultTags {
		if t.Name == "" {
			return fmt.Errorf("default_tags[%d]: name is required", i)
		}
	}
	return nil
}

// LoadDotEnv loads .env style files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Environment variables read by ApplyEnv.
const (
	EnvDataDir     = "NOTECARD_DIR"
	EnvNotifier    = "NOTECARD_NOTIFIER"
	EnvFireOverdue = "NOTECARD_FIRE_OVERDUE"
	EnvTitle       = "NOTECARD_TITLE"
	EnvAppName     = "NOTECARD_APP_NAME"
)

// ApplyEnv overrides c with values found through lookup (usually os.LookupEnv).
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get(EnvDataDir); ok {
		c.DataDir = v
	}
	if v, ok := get(EnvNotifier); ok {
		c.Notifier = v
	}
	if v, ok := get(EnvTitle); ok {
		c.Reminders.Title = v
	}
	if v, ok := get(EnvAppName); ok {
		c.Reminders.AppName = v
	}
	if v, ok := get(EnvFireOverdue); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvFireOverdue, err)
		}
		c.Reminders.FireOverdueOnLoad = b
	}
	return c.Validate()
}
