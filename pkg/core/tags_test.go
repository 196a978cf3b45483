package core_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notecard/pkg/core"
)

func TestTagRegistry_SeedsDefaults(t *testing.T) {
	repo := NewMockRepository()
	reg := core.NewTagRegistry(repo, core.TagRegistryConfig{})

	require.NoError(t, reg.Load(context.Background()))
	assert.Equal(t, core.DefaultTags, reg.Tags())
	// Seeding does not write the file.
	assert.Equal(t, 0, repo.tagSaves)
}

func TestTagRegistry_CustomDefaults(t *testing.T) {
	defaults := []core.Tag{{Name: "inbox", Color: "#000000"}}
	reg := core.NewTagRegistry(NewMockRepository(), core.TagRegistryConfig{Defaults: defaults})

	require.NoError(t, reg.Load(context.Background()))
	assert.Equal(t, []string{"inbox"}, reg.Names())
}

func TestTagRegistry_AddUniqueness(t *testing.T) {
	ctx := context.Background()
	repo := NewMockRepository()
	repo.hasTags = true
	reg := core.NewTagRegistry(repo, core.TagRegistryConfig{})
	require.NoError(t, reg.Load(ctx))

	require.NoError(t, reg.Add(ctx, "work", "#111111"))
	require.NoError(t, reg.Add(ctx, "work", "#111111"))
	require.NoError(t, reg.Add(ctx, "work", "#222222"))

	assert.Equal(t, []core.Tag{{Name: "work", Color: "#111111"}}, reg.Tags())
	assert.Equal(t, 1, repo.tagSaves)
	assert.Equal(t, []core.Tag{{Name: "work", Color: "#111111"}}, repo.tags)
}

func TestTagRegistry_AddDefaultColor(t *testing.T) {
	ctx := context.Background()
	reg := core.NewTagRegistry(NewMockRepository(), core.TagRegistryConfig{})
	require.NoError(t, reg.Load(ctx))

	require.NoError(t, reg.Add(ctx, "misc", ""))
	assert.Equal(t, core.DefaultTagColor, reg.Colors()["misc"])

	assert.Error(t, reg.Add(ctx, "", "#ffffff"))
}

func TestTagRegistry_StripsHash(t *testing.T) {
	ctx := context.Background()
	repo := NewMockRepository()
	reg := core.NewTagRegistry(repo, core.TagRegistryConfig{})
	require.NoError(t, reg.Load(ctx))

	require.NoError(t, reg.Add(ctx, " #work ", "#111111"))
	assert.Contains(t, reg.Names(), "work")
	assert.NotContains(t, reg.Names(), "#work")
	assert.True(t, reg.Has("#work"))
	assert.Equal(t, "#111111", reg.Color("#work"))
	assert.Equal(t, "#111111", reg.Color("work"))

	require.NoError(t, reg.Add(ctx, "work", "#222222"))
	assert.Equal(t, "#111111", reg.Color("work"))

	assert.Error(t, reg.Add(ctx, "#", "#ffffff"))
	assert.Error(t, reg.Add(ctx, "  ", "#ffffff"))

	require.NoError(t, reg.Remove(ctx, "#work"))
	assert.False(t, reg.Has("work"))
	for _, tag := range repo.tags {
		assert.NotEqual(t, "work", tag.Name)
	}
}

func TestTagRegistry_Remove(t *testing.T) {
	ctx := context.Background()
	repo := NewMockRepository()
	reg := core.NewTagRegistry(repo, core.TagRegistryConfig{})
	require.NoError(t, reg.Load(ctx))

	require.NoError(t, reg.Remove(ctx, "важливо", "ідея", "missing"))
	assert.Equal(t, []string{"запис", "робота", "особисте"}, reg.Names())
	assert.Equal(t, 1, repo.tagSaves)
	assert.Len(t, repo.tags, 3)
	assert.False(t, reg.Has("ідея"))
}

func TestTagRegistry_Color(t *testing.T) {
	reg := core.NewTagRegistry(NewMockRepository(), core.TagRegistryConfig{})
	require.NoError(t, reg.Load(context.Background()))

	assert.Equal(t, "#ff9999", reg.Color("важливо"))
	assert.Equal(t, "#ff9999", reg.Color("#важливо"))
	assert.Equal(t, core.FallbackTagColor, reg.Color("#dangling"))
}

func TestTagRegistry_LoadKeepsFileOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewMockRepository()
	repo.hasTags = true
	repo.tags = []core.Tag{
		{Name: "z", Color: "#000001"},
		{Name: "a", Color: "#000002"},
		{Name: "z", Color: "#000003"},
	}
	reg := core.NewTagRegistry(repo, core.TagRegistryConfig{})
	require.NoError(t, reg.Load(ctx))

	assert.Equal(t, []core.Tag{
		{Name: "z", Color: "#000003"},
		{Name: "a", Color: "#000002"},
	}, reg.Tags())
}
