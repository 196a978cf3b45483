package core_test

import (
	"context"
	"errors"
	"sync"

	"github.com/aretw0/notecard/pkg/core"
)

// MockRepository implements the core repositories in memory.
type MockRepository struct {
	mu        sync.Mutex
	notes     []core.Note
	tags      []core.Tag
	hasTags   bool
	saveErr   error
	noteSaves int
	tagSaves  int
}

func NewMockRepository() *MockRepository {
	return &MockRepository{}
}

func (m *MockRepository) LoadNotes(ctx context.Context) ([]core.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]core.Note, len(m.notes))
	copy(out, m.notes)
	return out, nil
}

func (m *MockRepository) SaveNotes(ctx context.Context, notes []core.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.notes = make([]core.Note, len(notes))
	for i, n := range notes {
		// The file format carries no IDs.
		n.ID = ""
		m.notes[i] = n
	}
	m.noteSaves++
	return nil
}

func (m *MockRepository) LoadTags(ctx context.Context) ([]core.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.hasTags {
		return nil, core.ErrNotFound
	}
	out := make([]core.Tag, len(m.tags))
	copy(out, m.tags)
	return out, nil
}

func (m *MockRepository) SaveTags(ctx context.Context, tags []core.Tag) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.tags = append([]core.Tag(nil), tags...)
	m.hasTags = true
	m.tagSaves++
	return nil
}

var errDiskFull = errors.New("disk full")
