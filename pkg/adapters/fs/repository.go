package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/notecard/pkg/core"
)

// Default file names inside the data directory.
const (
	DefaultNotesFile     = "notes.json"
	DefaultTagsFile      = "tags.json"
	DefaultRemindersFile = "reminders.json"
)

// Repository implements the core repositories on top of three JSON files.
type Repository struct {
	Path   string
	config Config

	mu            sync.RWMutex
	writeMu       sync.Mutex // one writer at a time across all files
	written       map[string]uint64
	writes        int
	lastWrite     *time.Time
	watcherActive bool
}

// Config holds the configuration for the filesystem repository.
type Config struct {
	Path          string // data directory
	NotesFile     string
	TagsFile      string
	RemindersFile string
	MustExist     bool
	ReadOnly      bool
	Logger        *slog.Logger
	ErrorHandler  func(error) // receives watcher failures
}

// NewRepository creates a new filesystem-backed repository.
func NewRepository(config Config) *Repository {
	if config.NotesFile == "" {
		config.NotesFile = DefaultNotesFile
	}
	if config.TagsFile == "" {
		config.TagsFile = DefaultTagsFile
	}
	if config.RemindersFile == "" {
		config.RemindersFile = DefaultRemindersFile
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Repository{
		Path:    config.Path,
		config:  config,
		written: make(map[string]uint64),
	}
}

var (
	_ core.NoteRepository     = (*Repository)(nil)
	_ core.TagRepository      = (*Repository)(nil)
	_ core.ReminderRepository = (*Repository)(nil)
)

// Initialize ensures the data directory exists.
func (r *Repository) Initialize(ctx context.Context) error {
	if r.config.MustExist || r.config.ReadOnly {
		info, err := os.Stat(r.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("data path does not exist: %s", r.Path)
		}
		if err != nil {
			return fmt.Errorf("failed to stat data path: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("data path is not a directory: %s", r.Path)
		}
		return nil
	}

	if err := os.MkdirAll(r.Path, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

// NotesPath returns the absolute location of the notes file.
func (r *Repository) NotesPath() string { return filepath.Join(r.Path, r.config.NotesFile) }

// TagsPath returns the absolute location of the tags file.
func (r *Repository) TagsPath() string { return filepath.Join(r.Path, r.config.TagsFile) }

// RemindersPath returns the absolute location of the reminders file.
func (r *Repository) RemindersPath() string { return filepath.Join(r.Path, r.config.RemindersFile) }

// noteRecord is the on-disk shape of a note. IDs are not persisted.
type noteRecord struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Tags    string `json:"tags"`
}

// LoadNotes reads the notes file.
// A missing or malformed file yields an empty list. Files written by older
// versions hold a flat list of content strings; those are upconverted.
func (r *Repository) LoadNotes(ctx context.Context) ([]core.Note, error) {
	data, err := r.read(r.NotesPath())
	if err != nil || data == nil {
		return []core.Note{}, err
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		r.config.Logger.Warn("malformed notes file, starting empty", "path", r.NotesPath(), "error", err)
		return []core.Note{}, nil
	}

	notes := make([]core.Note, 0, len(raw))
	for i, item := range raw {
		item = bytes.TrimSpace(item)
		if len(item) > 0 && item[0] == '"' {
			var content string
			if err := json.Unmarshal(item, &content); err != nil {
				r.config.Logger.Warn("malformed notes file, starting empty", "path", r.NotesPath(), "index", i, "error", err)
				return []core.Note{}, nil
			}
			notes = append(notes, core.Note{Content: content})
			continue
		}

		var rec noteRecord
		if err := json.Unmarshal(item, &rec); err != nil {
			r.config.Logger.Warn("malformed notes file, starting empty", "path", r.NotesPath(), "index", i, "error", err)
			return []core.Note{}, nil
		}
		notes = append(notes, core.Note{Title: rec.Title, Content: rec.Content, Tags: rec.Tags})
	}
	return notes, nil
}

// SaveNotes overwrites the notes file with the full ordered list.
func (r *Repository) SaveNotes(ctx context.Context, notes []core.Note) error {
	records := make([]noteRecord, len(notes))
	for i, n := range notes {
		records[i] = noteRecord{Title: n.Title, Content: n.Content, Tags: n.Tags}
	}
	return r.write(r.NotesPath(), records, "    ")
}

// tagRecord keeps pointers so that records missing a field can be told
// apart from empty ones.
type tagRecord struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

// LoadTags reads the tags file. It returns core.ErrNotFound when the file is
// missing, malformed, or holds a record without name or color.
func (r *Repository) LoadTags(ctx context.Context) ([]core.Tag, error) {
	data, err := r.read(r.TagsPath())
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("tags file %s: %w", r.TagsPath(), core.ErrNotFound)
	}

	var records []tagRecord
	if err := json.Unmarshal(data, &records); err != nil {
		r.config.Logger.Warn("malformed tags file", "path", r.TagsPath(), "error", err)
		return nil, fmt.Errorf("tags file %s is malformed: %w", r.TagsPath(), core.ErrNotFound)
	}

	tags := make([]core.Tag, 0, len(records))
	for i, rec := range records {
		if rec.Name == nil || rec.Color == nil {
			r.config.Logger.Warn("incomplete tag record", "path", r.TagsPath(), "index", i)
			return nil, fmt.Errorf("tags file %s has incomplete records: %w", r.TagsPath(), core.ErrNotFound)
		}
		tags = append(tags, core.Tag{Name: *rec.Name, Color: *rec.Color})
	}
	return tags, nil
}

// SaveTags overwrites the tags file.
func (r *Repository) SaveTags(ctx context.Context, tags []core.Tag) error {
	if tags == nil {
		tags = []core.Tag{}
	}
	return r.write(r.TagsPath(), tags, "    ")
}

// LoadReminders reads the reminders file. A missing or malformed file is
// empty. A single entry that does not decode is kept as a raw record so the
// next save writes it back instead of dropping it.
func (r *Repository) LoadReminders(ctx context.Context) ([]core.ReminderRecord, error) {
	data, err := r.read(r.RemindersPath())
	if err != nil || data == nil {
		return []core.ReminderRecord{}, err
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		r.config.Logger.Warn("malformed reminders file, treating as empty", "path", r.RemindersPath(), "error", err)
		return []core.ReminderRecord{}, nil
	}

	records := make([]core.ReminderRecord, 0, len(raw))
	for i, item := range raw {
		var rec core.ReminderRecord
		if err := json.Unmarshal(item, &rec); err != nil {
			r.config.Logger.Warn("undecodable reminder entry", "path", r.RemindersPath(), "index", i, "error", err)
			rec = core.ReminderRecord{Raw: slices.Clone(item)}
		}
		records = append(records, rec)
	}
	return records, nil
}

// SaveReminders overwrites the reminders file.
func (r *Repository) SaveReminders(ctx context.Context, records []core.ReminderRecord) error {
	if records == nil {
		records = []core.ReminderRecord{}
	}
	return r.write(r.RemindersPath(), records, "  ")
}

// read returns nil data and nil error when the file does not exist.
func (r *Repository) read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func (r *Repository) write(path string, v any, indent string) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}

	data, err := encodeJSON(v, indent)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	if err := writeFileAtomic(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	r.recordWrite(path, data)
	return nil
}

func (r *Repository) recordWrite(path string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.written[filepath.Base(path)] = checksum(data)
	r.writes++
	r.lastWrite = &now
}

// ownWrite reports whether the file at path still holds what this process
// last wrote to it.
func (r *Repository) ownWrite(path string) bool {
	r.mu.RLock()
	sum, ok := r.written[filepath.Base(path)]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return checksum(data) == sum
}

func checksum(data []byte) uint64 {
	h := fnv.New64a()
	_, _ = h.Write(data)
	return h.Sum64()
}
