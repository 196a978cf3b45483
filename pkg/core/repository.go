package core

import "context"

// NoteRepository persists the ordered note list.
// LoadNotes returns an empty slice, not an error, when nothing is stored yet.
type NoteRepository interface {
	LoadNotes(ctx context.Context) ([]Note, error)
	SaveNotes(ctx context.Context, notes []Note) error
}

// TagRepository persists the tag registry as an ordered list of records.
// LoadTags returns ErrNotFound when there is no usable tag file, so the
// registry can seed its defaults.
type TagRepository interface {
	LoadTags(ctx context.Context) ([]Tag, error)
	SaveTags(ctx context.Context, tags []Tag) error
}

// ReminderRepository persists pending reminders.
type ReminderRepository interface {
	LoadReminders(ctx context.Context) ([]ReminderRecord, error)
	SaveReminders(ctx context.Context, records []ReminderRecord) error
}

// Notifier delivers a notification to the user (desktop, log, ...).
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// NoteReader is the read capability of the note store.
type NoteReader interface {
	Notes() []Note
	Contents() []string
	Len() int
	Note(index int) (Note, bool)
	Get(id string) (Note, bool)
	IndexOf(id string) int
	Title(index int) string
	Tags(index int) string
	Filter(query, tag string) []bool
	FilterByTag(pattern string) []bool
}

// NoteMutator is the write capability of the note store.
// A nil title or tags pointer leaves that field unchanged.
type NoteMutator interface {
	AddNote(ctx context.Context) (Note, error)
	UpdateNote(ctx context.Context, index int, content string, title, tags *string) error
	UpdateNoteByID(ctx context.Context, id string, content string, title, tags *string) error
	DeleteNote(ctx context.Context, index int) error
	DeleteNoteByID(ctx context.Context, id string) error
	MoveNote(ctx context.Context, from, to int) error
}

// Subscriber exposes the change stream of a store.
// The channel is closed when ctx is done.
type Subscriber interface {
	Subscribe(ctx context.Context) <-chan Event
}
