// Package core holds the domain of notecard: notes, tags, reminders and the
// ports the adapters implement.
package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

const (
	// DefaultTagColor is assigned to tags created without an explicit color.
	DefaultTagColor = "#cccccc"

	// FallbackTagColor is reported for tags referenced by a note but missing
	// from the registry.
	FallbackTagColor = "#dddddd"

	// DefaultSeedContent is the content of a freshly added note.
	DefaultSeedContent = "Нова нотатка"

	// TimestampLayout is the on-disk reminder time format: naive local
	// wall-clock with second precision.
	TimestampLayout = "2006-01-02T15:04:05"
)

// Note is a titled, tagged block of text.
// ID is stable for the lifetime of the process; the position of the note in
// the store is its ordering identity on disk.
type Note struct {
	ID      string
	Title   string
	Content string
	Tags    string // space separated, tokens conventionally prefixed with '#'
}

// Tag is a named color label. Notes refer to tags by free-form name.
type Tag struct {
	Name  string `json:"name" yaml:"name"`
	Color string `json:"color" yaml:"color"`
}

// Reminder is a one-shot notification scheduled for a wall-clock time.
// Text is a snapshot of the note content at the time it was set.
type Reminder struct {
	ID   string
	Text string
	At   time.Time
}

// ReminderRecord is the persisted shape of a Reminder.
// Datetime is kept raw so that a single malformed entry can be skipped
// without discarding the whole file.
type ReminderRecord struct {
	ID       string `json:"id,omitempty"`
	Text     string `json:"text"`
	Datetime string `json:"datetime"`

	// Raw holds an entry that could not be decoded. It is written back
	// unchanged and never fires.
	Raw json.RawMessage `json:"-"`
}

// MarshalJSON writes Raw verbatim when set.
func (rec ReminderRecord) MarshalJSON() ([]byte, error) {
	if rec.Raw != nil {
		return rec.Raw, nil
	}
	type plain ReminderRecord
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(plain(rec)); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Record converts r to its persisted shape.
func (r Reminder) Record() ReminderRecord {
	return ReminderRecord{
		ID:       r.ID,
		Text:     r.Text,
		Datetime: FormatTimestamp(r.At),
	}
}

// Reminder parses the record into a Reminder.
func (rec ReminderRecord) Reminder() (Reminder, error) {
	if rec.Raw != nil {
		return Reminder{}, fmt.Errorf("undecodable reminder entry %s", rec.Raw)
	}
	at, err := ParseTimestamp(rec.Datetime)
	if err != nil {
		return Reminder{}, err
	}
	return Reminder{ID: rec.ID, Text: rec.Text, At: at}, nil
}

// FormatTimestamp renders t in local time using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.In(time.Local).Format(TimestampLayout)
}

// ParseTimestamp parses a TimestampLayout string as local wall-clock time.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.ParseInLocation(TimestampLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid reminder datetime %q: %w", s, err)
	}
	return t, nil
}

// Notification is the payload handed to a Notifier.
type Notification struct {
	Title   string
	Message string
	AppName string
	Timeout time.Duration
}

// EventType represents the kind of change.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
	EventMove   EventType = "MOVE"
	EventReload EventType = "RELOAD"
	EventFire   EventType = "FIRE"
)

// Resource names what an Event refers to.
type Resource string

const (
	ResourceNote     Resource = "note"
	ResourceTag      Resource = "tag"
	ResourceReminder Resource = "reminder"
)

// Event represents a change in one of the stores.
type Event struct {
	Type      EventType
	Resource  Resource
	ID        string
	Timestamp int64 // Unix timestamp
}

// String implements lifecycle.Event.
func (e Event) String() string {
	if e.ID == "" {
		return fmt.Sprintf("%s %s", e.Type, e.Resource)
	}
	return fmt.Sprintf("%s %s %s", e.Type, e.Resource, e.ID)
}

// NewEvent builds an Event stamped with the current time.
func NewEvent(t EventType, res Resource, id string) Event {
	return Event{Type: t, Resource: res, ID: id, Timestamp: time.Now().Unix()}
}
