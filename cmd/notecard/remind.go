package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/notecard"
	"github.com/aretw0/notecard/pkg/core"
)

var remindText string

var remindCmd = &cobra.Command{
	Use:     "remind",
	Aliases: []string{"reminders"},
	Short:   "Manage reminders",
}

var remindSetCmd = &cobra.Command{
	Use:   "set <index> <when>",
	Short: "Remind about a note at a given time",
	Long: `Schedules a reminder carrying the current content of the note at <index>.
<when> is either an absolute local time (2024-06-01T09:30:00, "2024-06-01 09:30",
09:30 for today) or a delay such as +45m.
Future reminders are delivered by a running "notecard run".`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, err := openApp(ctx)
		if err != nil {
			return err
		}

		n, _, err := noteAt(app, args[0])
		if err != nil {
			return err
		}
		at, err := parseWhen(args[1], time.Now())
		if err != nil {
			return err
		}

		text := n.Content
		if cmd.Flags().Changed("text") {
			text = remindText
		}
		r, err := app.Scheduler.SetReminder(ctx, text, at)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "reminder set for %s\n", core.FormatTimestamp(r.At))
		return nil
	},
}

var remindListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved reminders by time",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		list, err := app.Scheduler.List(cmd.Context())
		if err != nil {
			return err
		}
		printReminders(cmd.OutOrStdout(), list)
		return nil
	},
}

var remindOverdueCmd = &cobra.Command{
	Use:   "overdue",
	Short: "List saved reminders whose time has passed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		list, err := app.Scheduler.Overdue(cmd.Context())
		if err != nil {
			return err
		}
		printReminders(cmd.OutOrStdout(), list)
		return nil
	},
}

var remindClearCmd = &cobra.Command{
	Use:   "clear-overdue",
	Short: "Delete saved reminders whose time has passed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		n, err := app.Scheduler.ClearOverdue(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d overdue reminders\n", n)
		return nil
	},
}

func init() {
	remindSetCmd.Flags().StringVar(&remindText, "text", "", "Reminder text instead of the note content")

	remindCmd.AddCommand(remindSetCmd, remindListCmd, remindOverdueCmd, remindClearCmd)
	rootCmd.AddCommand(remindCmd)
}

var whenLayouts = []string{
	core.TimestampLayout,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
}

// parseWhen reads an absolute local time, a clock time for today, or a
// "+duration" relative to now.
func parseWhen(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "+"); ok {
		d, err := time.ParseDuration(rest)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid delay %q: %w", s, err)
		}
		return now.Add(d), nil
	}

	for _, layout := range whenLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			y, m, d := now.In(time.Local).Date()
			return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), 0, time.Local), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q", s)
}

func printReminders(w io.Writer, list []notecard.Reminder) {
	for _, r := range list {
		first, _, _ := strings.Cut(r.Text, "\n")
		fmt.Fprintf(w, "%s  %s\n", core.FormatTimestamp(r.At), core.Preview(first, 60))
	}
}
