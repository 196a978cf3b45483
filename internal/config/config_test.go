package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notecard/pkg/core"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)

	want := Default()
	want.DataDir = dir
	assert.Equal(t, want, cfg)
	assert.Equal(t, "Нова нотатка", cfg.SeedContent)
	assert.Equal(t, 10*time.Second, cfg.Reminders.Timeout)
	assert.False(t, cfg.Reminders.FireOverdueOnLoad)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	content := `
seed_content: New note
default_tags:
  - name: todo
    color: "#ff0000"
reminders:
  title: Reminder
  timeout: 5s
  fire_overdue_on_load: true
notifier: both
files:
  notes: my-notes.json
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, "New note", cfg.SeedContent)
	assert.Equal(t, []core.Tag{{Name: "todo", Color: "#ff0000"}}, cfg.DefaultTags)
	assert.Equal(t, "Reminder", cfg.Reminders.Title)
	assert.Equal(t, "Нотатки", cfg.Reminders.AppName, "unset fields keep defaults")
	assert.Equal(t, 5*time.Second, cfg.Reminders.Timeout)
	assert.True(t, cfg.Reminders.FireOverdueOnLoad)
	assert.Equal(t, NotifierBoth, cfg.Notifier)
	assert.Equal(t, "my-notes.json", cfg.Files.Notes)
	assert.Equal(t, "tags.json", cfg.Files.Tags)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"Malformed", "reminders: [unclosed"},
		{"UnknownNotifier", "notifier: pigeon"},
		{"NegativePreview", "reminders:\n  preview_length: -1\n"},
		{"TagWithoutName", "default_tags:\n  - color: \"#fff\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(tt.content), 0644))

			_, err := Load(dir)
			assert.Error(t, err)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("NOTECARD_DIR=/srv/notes\nNOTECARD_FIRE_OVERDUE=true\nNOTECARD_NOTIFIER=desktop\n"), 0644))

	env, err := godotenv.Read(envFile)
	require.NoError(t, err)

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}))

	assert.Equal(t, "/srv/notes", cfg.DataDir)
	assert.True(t, cfg.Reminders.FireOverdueOnLoad)
	assert.Equal(t, NotifierDesktop, cfg.Notifier)
	assert.Equal(t, "Нагадування", cfg.Reminders.Title)
}

func TestApplyEnv_Invalid(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(func(key string) (string, bool) {
		if key == EnvFireOverdue {
			return "sometimes", true
		}
		return "", false
	})
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("NOTECARD_TEST_LOADED=yes\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("NOTECARD_TEST_LOADED") })

	require.NoError(t, LoadDotEnv(envFile, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "yes", os.Getenv("NOTECARD_TEST_LOADED"))
}
