package notecard_test

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/notecard"
)

// Example_basic opens a data directory, adds a note and exports it.
func Example_basic() {
	tmpDir, err := os.MkdirTemp("", "notecard-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	ctx := context.Background()
	app, err := notecard.Open(ctx, tmpDir,
		notecard.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		notecard.WithSeedContent("Buy milk"),
	)
	if err != nil {
		log.Fatal(err)
	}

	n, err := app.Notes.AddNote(ctx)
	if err != nil {
		log.Fatal(err)
	}

	tags := "#shopping"
	if err := app.Notes.UpdateNoteByID(ctx, n.ID, n.Content, nil, &tags); err != nil {
		log.Fatal(err)
	}

	var out strings.Builder
	if err := app.Notes.ExportNote(0, &out); err != nil {
		log.Fatal(err)
	}

	fmt.Println(out.String(), app.Notes.Tags(0))
	// Output:
	// Buy milk #shopping
}

// Example_tags shows the default registry and color lookup.
func Example_tags() {
	tmpDir, err := os.MkdirTemp("", "notecard-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	ctx := context.Background()
	app, err := notecard.Open(ctx, tmpDir, notecard.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		log.Fatal(err)
	}

	if err := app.Tags.Add(ctx, "later", ""); err != nil {
		log.Fatal(err)
	}

	fmt.Println(app.Tags.Color("#важливо"), app.Tags.Color("later"), app.Tags.Color("unknown"))
	// Output:
	// #ff9999 #cccccc #dddddd
}
