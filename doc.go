// Package notecard is the composition root of a small personal note keeper
// with tags and timed reminders.
//
// Notes, tags and reminders live in three JSON files inside one data
// directory. The core package owns the in-memory stores, the fs adapter owns
// the files, and the scheduler package fires reminders through a Notifier.
//
// Features:
//
//   - **Ordered notes**: an ordered list with positional and stable-ID access.
//   - **Tag registry**: unique tag names mapped to colors.
//   - **Reminders**: one timer loop fires each reminder once and removes it from disk.
//   - **Live reload**: edits made by other processes are picked up by a file watcher.
//
// Usage:
//
//	app, err := notecard.Open(ctx, "./notes", notecard.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	if err := app.Start(ctx); err != nil {
//		return err
//	}
//	defer app.Close(ctx)
//
//	n, err := app.Notes.AddNote(ctx)
//	_, err = app.Scheduler.SetReminder(ctx, n.Content, time.Now().Add(time.Hour))
package notecard
