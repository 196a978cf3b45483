package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/spf13/cobra"

	"github.com/aretw0/notecard"
	lcadapter "github.com/aretw0/notecard/pkg/adapters/lifecycle"
	"github.com/aretw0/notecard/pkg/core"
	"github.com/aretw0/notecard/pkg/notify"
)

var (
	fireOverdue bool
	desktop     bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the reminder scheduler until interrupted",
	Long: `Arms every saved reminder, delivers each one when it is due and removes
it from the reminders file. Edits made by other notecard invocations are picked
up while running.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := lifecycle.NewSignalContext(cmd.Context())
		defer ctx.Stop()

		var opts []notecard.Option
		if cmd.Flags().Changed("fire-overdue") {
			opts = append(opts, notecard.WithFireOverdueOnLoad(fireOverdue))
		}
		if desktop {
			opts = append(opts, notecard.WithNotifier(notify.Multi{
				notify.Log{Logger: slog.Default()},
				notify.Desktop{},
			}))
		}

		app, err := openApp(ctx, opts...)
		if err != nil {
			return err
		}
		if err := app.Start(ctx); err != nil {
			return err
		}
		slog.Info("scheduler running", "dir", app.Config.DataDir)

		source := lcadapter.NewSource(app.Subscribe(ctx))
		if err := source.Start(ctx); err != nil {
			return err
		}
		for e := range source.Events() {
			change, ok := e.(lcadapter.Change)
			switch {
			case ok && change.Type == core.EventFire:
				slog.Info("reminder delivered", "id", change.ID)
			case ok && change.External():
				slog.Info("reloaded after external edit", "resource", change.Resource)
			default:
				slog.Debug("event", "event", e.String())
			}
		}

		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return app.Close(closeCtx)
	},
}

func init() {
	runCmd.Flags().BoolVar(&fireOverdue, "fire-overdue", false, "Deliver reminders missed while not running")
	runCmd.Flags().BoolVar(&desktop, "desktop", false, "Also show desktop notifications")
	rootCmd.AddCommand(runCmd)
}
