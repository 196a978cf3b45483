package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/notecard"
	"github.com/aretw0/notecard/internal/config"
)

var (
	verbose  bool
	dataDir  string
	readOnly bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "notecard",
	Short: "Notes with tags and timed reminders, kept in plain JSON files",
	Long: `notecard keeps an ordered list of notes, a registry of colored tags and
a list of reminders in three JSON files inside a data directory.
Run "notecard run" to keep the reminder scheduler alive.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)

		return config.LoadDotEnv()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&dataDir, "dir", "d", "", "Data directory (default: $NOTECARD_DIR, the nearest directory holding notes.json, or the working directory)")
	rootCmd.PersistentFlags().BoolVar(&readOnly, "read-only", false, "Refuse every write")
}

// resolveDir picks the data directory: flag, environment, nearest root, cwd.
func resolveDir() string {
	if dataDir != "" {
		return dataDir
	}
	if v := os.Getenv(config.EnvDataDir); v != "" {
		return v
	}
	if root, err := notecard.FindRoot("."); err == nil {
		return root
	}
	return "."
}

func openApp(ctx context.Context, opts ...notecard.Option) (*notecard.App, error) {
	dir := resolveDir()

	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.DataDir = dir

	opts = append([]notecard.Option{
		notecard.WithConfig(cfg),
		notecard.WithLogger(slog.Default()),
		notecard.WithReadOnly(readOnly),
	}, opts...)

	app, err := notecard.Open(ctx, dir, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", dir, err)
	}
	return app, nil
}
