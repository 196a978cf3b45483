package platform_test

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aretw0/notecard/internal/platform"
	"github.com/aretw0/notecard/pkg/adapters/fs"
	"github.com/aretw0/notecard/pkg/core"
	"github.com/aretw0/notecard/pkg/notify"
)

// TestStress_ExternalVsInternal writes the notes and reminders files from
// outside while the app mutates them and the watcher reloads. Nothing may
// panic and every file must stay valid JSON.
func TestStress_ExternalVsInternal(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping stress test in short mode")
	}

	dir := t.TempDir()
	app := openApp(t, dir, platform.WithNotifier(notify.Func(func(context.Context, core.Notification) error { return nil })))
	startApp(t, app)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	actor := func(fn func(i int)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; ; i++ {
				select {
				case <-ctx.Done():
					return
				default:
					fn(i)
					time.Sleep(time.Duration(rand.Intn(10)) * time.Millisecond)
				}
			}
		}()
	}

	// External writer.
	actor(func(i int) {
		content := fmt.Sprintf(`[{"title":"","content":"noise %d","tags":""}]`, i)
		_ = os.WriteFile(filepath.Join(dir, fs.DefaultNotesFile), []byte(content), 0644)
	})

	// Internal mutations. Errors are tolerated, panics are not.
	actor(func(i int) {
		_, _ = app.Notes.AddNote(context.Background())
	})
	actor(func(i int) {
		_ = app.Notes.UpdateNote(context.Background(), rand.Intn(5), fmt.Sprintf("edit %d", i), nil, nil)
		_ = app.Notes.MoveNote(context.Background(), rand.Intn(5), rand.Intn(5))
	})
	actor(func(i int) {
		at := time.Now().Add(time.Duration(rand.Intn(500)) * time.Millisecond)
		_, _ = app.Scheduler.SetReminder(context.Background(), fmt.Sprintf("r%d", i), at)
	})

	wg.Wait()

	for _, name := range []string{fs.DefaultNotesFile, fs.DefaultRemindersFile} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if os.IsNotExist(err) {
			continue
		}
		require.NoError(t, err)
		var v []json.RawMessage
		require.NoError(t, json.Unmarshal(data, &v), "%s must stay valid JSON", name)
	}
	t.Logf("survived with %d notes", app.Notes.Len())
}
