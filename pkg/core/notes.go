package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// NoteStoreConfig configures a NoteStore.
type NoteStoreConfig struct {
	SeedContent string // content of notes created by AddNote
	ReadOnly    bool
	Logger      *slog.Logger
	Broker      *Broker
}

// NoteStore owns the ordered note list.
// Every mutation persists the whole list immediately.
type NoteStore struct {
	mu     sync.RWMutex
	repo   NoteRepository
	notes  []Note
	config NoteStoreConfig
	broker *Broker
	logger *slog.Logger
	saves  int
}

// NewNoteStore creates an empty store backed by repo. Call Load to populate it.
func NewNoteStore(repo NoteRepository, config NoteStoreConfig) *NoteStore {
	if config.SeedContent == "" {
		config.SeedContent = DefaultSeedContent
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	broker := config.Broker
	if broker == nil {
		broker = NewBroker(0, logger)
	}
	return &NoteStore{
		repo:   repo,
		config: config,
		broker: broker,
		logger: logger,
	}
}

var (
	_ NoteReader  = (*NoteStore)(nil)
	_ NoteMutator = (*NoteStore)(nil)
	_ Subscriber  = (*NoteStore)(nil)
)

// Load replaces the in-memory list with the persisted one.
// A read failure leaves the store empty; the error is logged and returned.
// IDs are not stored on disk, so notes that survive a reload keep the ID
// they had: first by identical title, content and tags, then by position
// when the number of notes did not change.
func (s *NoteStore) Load(ctx context.Context) error {
	loaded, err := s.repo.LoadNotes(ctx)
	if err != nil {
		s.logger.Warn("failed to load notes, starting empty", "error", err)
		loaded = nil
	}

	s.mu.Lock()
	s.notes = carryIDs(s.notes, loaded)
	s.mu.Unlock()

	s.broker.Publish(NewEvent(EventReload, ResourceNote, ""))
	return err
}

type noteKey struct{ title, content, tags string }

func carryIDs(prev, loaded []Note) []Note {
	byKey := make(map[noteKey][]string, len(prev))
	for _, n := range prev {
		k := noteKey{n.Title, n.Content, n.Tags}
		byKey[k] = append(byKey[k], n.ID)
	}

	used := make(map[string]bool, len(prev))
	notes := make([]Note, len(loaded))
	for i, n := range loaded {
		if n.ID == "" {
			k := noteKey{n.Title, n.Content, n.Tags}
			if ids := byKey[k]; len(ids) > 0 {
				n.ID, byKey[k] = ids[0], ids[1:]
				used[n.ID] = true
			}
		}
		notes[i] = n
	}

	for i := range notes {
		if notes[i].ID != "" {
			continue
		}
		if len(prev) == len(notes) && !used[prev[i].ID] {
			notes[i].ID = prev[i].ID
			used[prev[i].ID] = true
			continue
		}
		notes[i].ID = uuid.NewString()
	}
	return notes
}

// Save writes the full list to the repository.
func (s *NoteStore) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx)
}

func (s *NoteStore) saveLocked(ctx context.Context) error {
	if s.config.ReadOnly {
		return ErrReadOnly
	}
	if err := s.repo.SaveNotes(ctx, s.notes); err != nil {
		s.logger.Error("failed to save notes", "error", err)
		return fmt.Errorf("failed to save notes: %w", err)
	}
	s.saves++
	return nil
}

// Notes returns a copy of the ordered note list.
func (s *NoteStore) Notes() []Note {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Note, len(s.notes))
	copy(out, s.notes)
	return out
}

// Contents returns the content of every note, in order.
func (s *NoteStore) Contents() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.notes))
	for i, n := range s.notes {
		out[i] = n.Content
	}
	return out
}

// Len returns the number of notes.
func (s *NoteStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.notes)
}

// Note returns the note at index.
func (s *NoteStore) Note(index int) (Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.validLocked(index) {
		return Note{}, false
	}
	return s.notes[index], true
}

// Get returns the note with the given ID.
func (s *NoteStore) Get(id string) (Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexLocked(id); i >= 0 {
		return s.notes[i], true
	}
	return Note{}, false
}

// IndexOf returns the current position of the note with the given ID, or -1.
func (s *NoteStore) IndexOf(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexLocked(id)
}

// Title returns the title at index, or "" if index is out of range.
func (s *NoteStore) Title(index int) string {
	n, _ := s.Note(index)
	return n.Title
}

// Tags returns the tag string at index, or "" if index is out of range.
func (s *NoteStore) Tags(index int) string {
	n, _ := s.Note(index)
	return n.Tags
}

// Filter reports, per position, whether the note matches query (title or
// content) and tag. Matching is case-insensitive.
func (s *NoteStore) Filter(query, tag string) []bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]bool, len(s.notes))
	for i, n := range s.notes {
		out[i] = matchNote(n, query, tag)
	}
	return out
}

// FilterByTag reports, per position, whether the note's tags match pattern.
func (s *NoteStore) FilterByTag(pattern string) []bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]bool, len(s.notes))
	for i, n := range s.notes {
		out[i] = matchTagPattern(n.Tags, pattern)
	}
	return out
}

// AddNote appends a note with the seed content and persists.
// The new note is at position Len()-1.
func (s *NoteStore) AddNote(ctx context.Context) (Note, error) {
	s.mu.Lock()
	if s.config.ReadOnly {
		s.mu.Unlock()
		return Note{}, ErrReadOnly
	}

	n := Note{
		ID:      uuid.NewString(),
		Content: s.config.SeedContent,
	}
	s.notes = append(s.notes, n)
	err := s.saveLocked(ctx)
	s.mu.Unlock()

	s.broker.Publish(NewEvent(EventCreate, ResourceNote, n.ID))
	return n, err
}

// UpdateNote replaces the content of the note at index, and its title and
// tags when non-nil. An out-of-range index is a no-op.
func (s *NoteStore) UpdateNote(ctx context.Context, index int, content string, title, tags *string) error {
	s.mu.Lock()
	if !s.validLocked(index) {
		s.mu.Unlock()
		return nil
	}
	return s.updateLocked(ctx, index, content, title, tags)
}

// UpdateNoteByID is UpdateNote addressed by stable ID.
// An unknown ID is a no-op.
func (s *NoteStore) UpdateNoteByID(ctx context.Context, id string, content string, title, tags *string) error {
	s.mu.Lock()
	index := s.indexLocked(id)
	if index < 0 {
		s.mu.Unlock()
		return nil
	}
	return s.updateLocked(ctx, index, content, title, tags)
}

// updateLocked expects s.mu held and releases it.
func (s *NoteStore) updateLocked(ctx context.Context, index int, content string, title, tags *string) error {
	if s.config.ReadOnly {
		s.mu.Unlock()
		return ErrReadOnly
	}

	n := &s.notes[index]
	n.Content = content
	if title != nil {
		n.Title = *title
	}
	if tags != nil {
		n.Tags = *tags
	}
	id := n.ID
	err := s.saveLocked(ctx)
	s.mu.Unlock()

	s.broker.Publish(NewEvent(EventModify, ResourceNote, id))
	return err
}

// DeleteNote removes the note at index. An out-of-range index is a no-op.
func (s *NoteStore) DeleteNote(ctx context.Context, index int) error {
	s.mu.Lock()
	if !s.validLocked(index) {
		s.mu.Unlock()
		return nil
	}
	return s.deleteLocked(ctx, index)
}

// DeleteNoteByID removes the note with the given ID. An unknown ID is a no-op.
func (s *NoteStore) DeleteNoteByID(ctx context.Context, id string) error {
	s.mu.Lock()
	index := s.indexLocked(id)
	if index < 0 {
		s.mu.Unlock()
		return nil
	}
	return s.deleteLocked(ctx, index)
}

// deleteLocked expects s.mu held and releases it.
func (s *NoteStore) deleteLocked(ctx context.Context, index int) error {
	if s.config.ReadOnly {
		s.mu.Unlock()
		return ErrReadOnly
	}

	id := s.notes[index].ID
	s.notes = append(s.notes[:index], s.notes[index+1:]...)
	err := s.saveLocked(ctx)
	s.mu.Unlock()

	s.broker.Publish(NewEvent(EventDelete, ResourceNote, id))
	return err
}

// MoveNote takes the note at from out of the list and inserts it at to.
// to is clamped to the bounds of the shortened list; an out-of-range from
// is a no-op.
func (s *NoteStore) MoveNote(ctx context.Context, from, to int) error {
	s.mu.Lock()
	if !s.validLocked(from) {
		s.mu.Unlock()
		return nil
	}
	if s.config.ReadOnly {
		s.mu.Unlock()
		return ErrReadOnly
	}

	n := s.notes[from]
	rest := append(s.notes[:from:from], s.notes[from+1:]...)
	to = max(0, min(to, len(rest)))

	moved := make([]Note, 0, len(s.notes))
	moved = append(moved, rest[:to]...)
	moved = append(moved, n)
	moved = append(moved, rest[to:]...)
	s.notes = moved

	err := s.saveLocked(ctx)
	s.mu.Unlock()

	s.broker.Publish(NewEvent(EventMove, ResourceNote, n.ID))
	return err
}

// ExportNote writes the content of the note at index to w.
func (s *NoteStore) ExportNote(index int, w io.Writer) error {
	n, ok := s.Note(index)
	if !ok {
		return fmt.Errorf("note %d: %w", index, ErrNotFound)
	}
	if _, err := io.WriteString(w, n.Content); err != nil {
		return fmt.Errorf("failed to export note: %w", err)
	}
	return nil
}

// Subscribe implements Subscriber.
func (s *NoteStore) Subscribe(ctx context.Context) <-chan Event {
	return s.broker.Subscribe(ctx)
}

func (s *NoteStore) validLocked(index int) bool {
	return index >= 0 && index < len(s.notes)
}

func (s *NoteStore) indexLocked(id string) int {
	for i, n := range s.notes {
		if n.ID == id {
			return i
		}
	}
	return -1
}
