package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var tagCmd = &cobra.Command{
	Use:     "tag",
	Aliases: []string{"tags"},
	Short:   "Manage the tag registry",
}

var tagListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tags and their colors",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		for _, t := range app.Tags.Tags() {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  #%s\n", t.Color, t.Name)
		}
		return nil
	},
}

var tagAddCmd = &cobra.Command{
	Use:   "add <name> [color]",
	Short: "Register a tag (default color #cccccc)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, err := openApp(ctx)
		if err != nil {
			return err
		}

		color := ""
		if len(args) == 2 {
			color = args[1]
		}
		return app.Tags.Add(ctx, args[0], color)
	},
}

var tagRmCmd = &cobra.Command{
	Use:   "rm <name>...",
	Short: "Remove tags from the registry (notes keep them)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, err := openApp(ctx)
		if err != nil {
			return err
		}
		return app.Tags.Remove(ctx, args...)
	},
}

func init() {
	tagCmd.AddCommand(tagListCmd, tagAddCmd, tagRmCmd)
	rootCmd.AddCommand(tagCmd)
}
