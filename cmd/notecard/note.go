package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/notecard"
	"github.com/aretw0/notecard/pkg/core"
)

var (
	listJSON    bool
	listQuery   string
	listTag     string
	listPattern string

	noteTitle   string
	noteTags    string
	noteContent string

	exportOutput string
)

var noteCmd = &cobra.Command{
	Use:     "note",
	Aliases: []string{"notes"},
	Short:   "Manage notes",
}

var noteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes, optionally filtered",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd.Context())
		if err != nil {
			return err
		}

		notes := app.Notes.Notes()
		match := app.Notes.Filter(listQuery, listTag)
		if listPattern != "" {
			byTag := app.Notes.FilterByTag(listPattern)
			for i := range match {
				match[i] = match[i] && byTag[i]
			}
		}

		type listed struct {
			Index int    `json:"index"`
			ID    string `json:"id"`
			Title string `json:"title"`
			Tags  string `json:"tags"`
		}
		var out []listed
		for i, n := range notes {
			if match[i] {
				out = append(out, listed{Index: i, ID: n.ID, Title: displayTitle(n), Tags: n.Tags})
			}
		}

		if listJSON {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(out)
		}

		for _, n := range out {
			line := fmt.Sprintf("%3d  %s", n.Index, n.Title)
			if n.Tags != "" {
				line += "  [" + n.Tags + "]"
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		return nil
	},
}

var noteAddCmd = &cobra.Command{
	Use:   "add [content...]",
	Short: "Append a note",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, err := openApp(ctx)
		if err != nil {
			return err
		}

		n, err := app.Notes.AddNote(ctx)
		if err != nil {
			return err
		}

		content := n.Content
		if len(args) > 0 {
			content = strings.Join(args, " ")
		}
		title, tags := optional(cmd, "title", noteTitle), optional(cmd, "tags", noteTags)
		if len(args) > 0 || title != nil || tags != nil {
			if err := app.Notes.UpdateNoteByID(ctx, n.ID, content, title, tags); err != nil {
				return err
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "added note %d\n", app.Notes.IndexOf(n.ID))
		return nil
	},
}

var noteEditCmd = &cobra.Command{
	Use:   "edit <index>",
	Short: "Change the content, title or tags of a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, err := openApp(ctx)
		if err != nil {
			return err
		}

		n, index, err := noteAt(app, args[0])
		if err != nil {
			return err
		}

		content := n.Content
		if cmd.Flags().Changed("content") {
			content = noteContent
		}
		return app.Notes.UpdateNote(ctx, index, content, optional(cmd, "title", noteTitle), optional(cmd, "tags", noteTags))
	},
}

var noteRmCmd = &cobra.Command{
	Use:   "rm <index>",
	Short: "Delete a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, err := openApp(ctx)
		if err != nil {
			return err
		}

		_, index, err := noteAt(app, args[0])
		if err != nil {
			return err
		}
		return app.Notes.DeleteNote(ctx, index)
	},
}

var noteMvCmd = &cobra.Command{
	Use:   "mv <from> <to>",
	Short: "Move a note to another position",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, err := openApp(ctx)
		if err != nil {
			return err
		}

		_, from, err := noteAt(app, args[0])
		if err != nil {
			return err
		}
		to, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid position %q", args[1])
		}
		return app.Notes.MoveNote(ctx, from, to)
	},
}

var noteShowCmd = &cobra.Command{
	Use:   "show <index>",
	Short: "Print a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd.Context())
		if err != nil {
			return err
		}

		n, _, err := noteAt(app, args[0])
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if n.Title != "" {
			fmt.Fprintf(w, "# %s\n", n.Title)
		}
		if n.Tags != "" {
			fmt.Fprintf(w, "tags: %s\n", n.Tags)
		}
		fmt.Fprintln(w, n.Content)
		return nil
	},
}

var noteExportCmd = &cobra.Command{
	Use:   "export <index>",
	Short: "Write the content of a note to a text file or stdout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd.Context())
		if err != nil {
			return err
		}

		_, index, err := noteAt(app, args[0])
		if err != nil {
			return err
		}

		var w io.Writer = cmd.OutOrStdout()
		if exportOutput != "" && exportOutput != "-" {
			f, err := os.Create(exportOutput)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		return app.Notes.ExportNote(index, w)
	},
}

func init() {
	noteListCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	noteListCmd.Flags().StringVarP(&listQuery, "query", "q", "", "Case-insensitive text to look for in title or content")
	noteListCmd.Flags().StringVar(&listTag, "tag", "", "Case-insensitive text to look for in tags")
	noteListCmd.Flags().StringVar(&listPattern, "glob", "", "Glob pattern a tag must match (e.g. 'ро*')")

	for _, c := range []*cobra.Command{noteAddCmd, noteEditCmd} {
		c.Flags().StringVarP(&noteTitle, "title", "t", "", "Note title")
		c.Flags().StringVar(&noteTags, "tags", "", "Space separated tags (e.g. '#work #idea')")
	}
	noteEditCmd.Flags().StringVarP(&noteContent, "content", "c", "", "New content")
	noteExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default stdout)")

	noteCmd.AddCommand(noteListCmd, noteAddCmd, noteEditCmd, noteRmCmd, noteMvCmd, noteShowCmd, noteExportCmd)
	rootCmd.AddCommand(noteCmd)
}

func noteAt(app *notecard.App, arg string) (notecard.Note, int, error) {
	index, err := strconv.Atoi(arg)
	if err != nil {
		return notecard.Note{}, 0, fmt.Errorf("invalid note index %q", arg)
	}
	n, ok := app.Notes.Note(index)
	if !ok {
		return notecard.Note{}, 0, fmt.Errorf("note %d: %w", index, core.ErrNotFound)
	}
	return n, index, nil
}

// optional returns &value when the flag was given on the command line.
func optional(cmd *cobra.Command, flag, value string) *string {
	if !cmd.Flags().Changed(flag) {
		return nil
	}
	return &value
}

func displayTitle(n notecard.Note) string {
	if n.Title != "" {
		return n.Title
	}
	first, _, _ := strings.Cut(n.Content, "\n")
	return core.Preview(first, 60)
}
