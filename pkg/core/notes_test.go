package core_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notecard/pkg/core"
)

func ptr(s string) *string { return &s }

func newStore(t *testing.T, repo *MockRepository, seed ...core.Note) *core.NoteStore {
	t.Helper()
	repo.notes = seed
	store := core.NewNoteStore(repo, core.NoteStoreConfig{})
	require.NoError(t, store.Load(context.Background()))
	return store
}

func TestNoteStore_AddNote(t *testing.T) {
	repo := NewMockRepository()
	store := newStore(t, repo)

	n, err := store.AddNote(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, n.ID)
	assert.Equal(t, core.DefaultSeedContent, n.Content)
	assert.Equal(t, "", n.Title)
	assert.Equal(t, "", n.Tags)
	assert.Equal(t, 1, store.Len())
	assert.Equal(t, n.ID, store.Notes()[store.Len()-1].ID)
	assert.Equal(t, 1, repo.noteSaves)
}

func TestNoteStore_CustomSeed(t *testing.T) {
	repo := NewMockRepository()
	store := core.NewNoteStore(repo, core.NoteStoreConfig{SeedContent: "New note"})

	n, err := store.AddNote(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "New note", n.Content)
}

func TestNoteStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewMockRepository()
	store := newStore(t, repo,
		core.Note{Title: "a", Content: "first", Tags: "#work"},
		core.Note{Title: "", Content: "second", Tags: ""},
		core.Note{Title: "c", Content: "third", Tags: "#idea #work"},
	)
	require.NoError(t, store.Save(ctx))

	reloaded := core.NewNoteStore(repo, core.NoteStoreConfig{})
	require.NoError(t, reloaded.Load(ctx))

	before, after := store.Notes(), reloaded.Notes()
	require.Len(t, after, len(before))
	for i := range before {
		assert.Equal(t, before[i].Title, after[i].Title)
		assert.Equal(t, before[i].Content, after[i].Content)
		assert.Equal(t, before[i].Tags, after[i].Tags)
	}
}

func TestNoteStore_BoundsLeniency(t *testing.T) {
	store := newStore(t, NewMockRepository(),
		core.Note{Title: "only", Content: "x", Tags: "#t"},
	)

	for _, idx := range []int{-1, store.Len(), 42} {
		assert.Equal(t, "", store.Title(idx), "title at %d", idx)
		assert.Equal(t, "", store.Tags(idx), "tags at %d", idx)
		_, ok := store.Note(idx)
		assert.False(t, ok)
	}
	assert.Equal(t, "only", store.Title(0))
	assert.Equal(t, "#t", store.Tags(0))
}

func TestNoteStore_UpdateNote(t *testing.T) {
	ctx := context.Background()
	repo := NewMockRepository()
	store := newStore(t, repo, core.Note{Title: "t", Content: "c", Tags: "#a"})

	t.Run("Partial", func(t *testing.T) {
		require.NoError(t, store.UpdateNote(ctx, 0, "c2", nil, nil))
		n, _ := store.Note(0)
		assert.Equal(t, "c2", n.Content)
		assert.Equal(t, "t", n.Title)
		assert.Equal(t, "#a", n.Tags)
	})

	t.Run("Full", func(t *testing.T) {
		require.NoError(t, store.UpdateNote(ctx, 0, "c3", ptr("t3"), ptr("#b")))
		n, _ := store.Note(0)
		assert.Equal(t, core.Note{ID: n.ID, Title: "t3", Content: "c3", Tags: "#b"}, n)
		assert.Equal(t, "c3", repo.notes[0].Content)
	})

	t.Run("Invalid Index Is NoOp", func(t *testing.T) {
		saves := repo.noteSaves
		require.NoError(t, store.UpdateNote(ctx, 5, "nope", ptr("x"), nil))
		require.NoError(t, store.UpdateNote(ctx, -1, "nope", nil, nil))
		assert.Equal(t, saves, repo.noteSaves)
		assert.Equal(t, []string{"c3"}, store.Contents())
	})

	t.Run("By ID", func(t *testing.T) {
		id := store.Notes()[0].ID
		require.NoError(t, store.UpdateNoteByID(ctx, id, "c4", nil, nil))
		assert.Equal(t, "c4", store.Contents()[0])
		require.NoError(t, store.UpdateNoteByID(ctx, "missing", "c5", nil, nil))
		assert.Equal(t, "c4", store.Contents()[0])
	})
}

func TestNoteStore_DeleteNote(t *testing.T) {
	ctx := context.Background()
	repo := NewMockRepository()
	store := newStore(t, repo,
		core.Note{Content: "a"}, core.Note{Content: "b"}, core.Note{Content: "c"},
	)

	require.NoError(t, store.DeleteNote(ctx, 1))
	assert.Equal(t, []string{"a", "c"}, store.Contents())
	assert.Len(t, repo.notes, 2)

	require.NoError(t, store.DeleteNote(ctx, 9))
	assert.Equal(t, []string{"a", "c"}, store.Contents())

	id := store.Notes()[1].ID
	require.NoError(t, store.DeleteNoteByID(ctx, id))
	assert.Equal(t, []string{"a"}, store.Contents())
	assert.Equal(t, -1, store.IndexOf(id))
}

func TestNoteStore_MoveNote(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		want     string
	}{
		{"Forward", 0, 2, "bca"},
		{"Backward", 2, 0, "cab"},
		{"Same", 1, 1, "abc"},
		{"Clamp High", 0, 10, "bca"},
		{"Clamp Low", 2, -4, "cab"},
		{"Invalid From", 7, 0, "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStore(t, NewMockRepository(),
				core.Note{Content: "a"}, core.Note{Content: "b"}, core.Note{Content: "c"},
			)
			require.NoError(t, store.MoveNote(context.Background(), tt.from, tt.to))
			assert.Equal(t, tt.want, strings.Join(store.Contents(), ""))
		})
	}
}

func TestNoteStore_StableIDs(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, NewMockRepository(),
		core.Note{Content: "a"}, core.Note{Content: "b"}, core.Note{Content: "c"},
	)
	idC := store.Notes()[2].ID

	require.NoError(t, store.MoveNote(ctx, 2, 0))
	assert.Equal(t, 0, store.IndexOf(idC))

	require.NoError(t, store.DeleteNote(ctx, 1))
	n, ok := store.Get(idC)
	require.True(t, ok)
	assert.Equal(t, "c", n.Content)
}

func TestNoteStore_ReloadKeepsIDs(t *testing.T) {
	ctx := context.Background()
	repo := NewMockRepository()
	store := newStore(t, repo,
		core.Note{Content: "a"}, core.Note{Content: "b"}, core.Note{Content: "c"},
	)
	before := store.Notes()

	t.Run("Edited In Place", func(t *testing.T) {
		repo.notes = []core.Note{{Content: "a"}, {Content: "b edited"}, {Content: "c"}}
		require.NoError(t, store.Load(ctx))

		after := store.Notes()
		for i := range before {
			assert.Equal(t, before[i].ID, after[i].ID)
		}
	})

	t.Run("Reordered And Shortened", func(t *testing.T) {
		repo.notes = []core.Note{{Content: "c"}, {Content: "a"}}
		require.NoError(t, store.Load(ctx))

		after := store.Notes()
		assert.Equal(t, before[2].ID, after[0].ID)
		assert.Equal(t, before[0].ID, after[1].ID)
		_, ok := store.Get(before[1].ID)
		assert.False(t, ok)
	})

	t.Run("New Note", func(t *testing.T) {
		repo.notes = []core.Note{{Content: "c"}, {Content: "a"}, {Content: "fresh"}}
		require.NoError(t, store.Load(ctx))

		after := store.Notes()
		assert.Equal(t, before[2].ID, after[0].ID)
		assert.Equal(t, before[0].ID, after[1].ID)
		assert.NotEmpty(t, after[2].ID)
		assert.NotEqual(t, before[1].ID, after[2].ID)
	})
}

func TestNoteStore_ConcurrentSave(t *testing.T) {
	repo := NewMockRepository()
	store := newStore(t, repo, core.Note{Content: "a"})

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.Save(context.Background()))
		}()
	}
	wg.Wait()

	assert.Equal(t, 8, repo.noteSaves)
	assert.Equal(t, 8, store.State().(core.NoteStoreState).Saves)
}

func TestNoteStore_SaveFailure(t *testing.T) {
	repo := NewMockRepository()
	store := newStore(t, repo)
	repo.saveErr = errDiskFull

	_, err := store.AddNote(context.Background())
	require.ErrorIs(t, err, errDiskFull)
	// Memory keeps the mutation until the next successful save.
	assert.Equal(t, 1, store.Len())
}

func TestNoteStore_ReadOnly(t *testing.T) {
	repo := NewMockRepository()
	repo.notes = []core.Note{{Content: "a"}}
	store := core.NewNoteStore(repo, core.NoteStoreConfig{ReadOnly: true})
	require.NoError(t, store.Load(context.Background()))

	_, err := store.AddNote(context.Background())
	assert.ErrorIs(t, err, core.ErrReadOnly)
	assert.ErrorIs(t, store.UpdateNote(context.Background(), 0, "b", nil, nil), core.ErrReadOnly)
	assert.Equal(t, []string{"a"}, store.Contents())
}

func TestNoteStore_Filter(t *testing.T) {
	store := newStore(t, NewMockRepository(),
		core.Note{Title: "Shopping", Content: "milk and eggs", Tags: "#особисте"},
		core.Note{Title: "Sprint", Content: "Review PRs", Tags: "#робота #важливо"},
		core.Note{Title: "", Content: "random idea", Tags: "#ідея"},
	)

	assert.Equal(t, []bool{true, true, true}, store.Filter("", ""))
	assert.Equal(t, []bool{true, false, false}, store.Filter("MILK", ""))
	assert.Equal(t, []bool{false, true, false}, store.Filter("sprint", ""))
	assert.Equal(t, []bool{false, true, false}, store.Filter("", "#РОБОТА"))
	assert.Equal(t, []bool{false, false, false}, store.Filter("milk", "#робота"))

	assert.Equal(t, []bool{true, true, true}, store.FilterByTag("  "))
	assert.Equal(t, []bool{false, true, false}, store.FilterByTag("важливо"))
	assert.Equal(t, []bool{false, true, true}, store.FilterByTag("#[рі]*"))
	assert.Equal(t, []bool{true, false, false}, store.FilterByTag("ос*"))
}

func TestNoteStore_Export(t *testing.T) {
	store := newStore(t, NewMockRepository(), core.Note{Content: "hello"})

	var sb strings.Builder
	require.NoError(t, store.ExportNote(0, &sb))
	assert.Equal(t, "hello", sb.String())

	assert.ErrorIs(t, store.ExportNote(3, &sb), core.ErrNotFound)
}

func TestNoteStore_Subscribe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := newStore(t, NewMockRepository())
	events := store.Subscribe(ctx)

	n, err := store.AddNote(ctx)
	require.NoError(t, err)

	select {
	case e := <-events:
		assert.Equal(t, core.EventCreate, e.Type)
		assert.Equal(t, core.ResourceNote, e.Resource)
		assert.Equal(t, n.ID, e.ID)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-events:
			return !ok
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}
