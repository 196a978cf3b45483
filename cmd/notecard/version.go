package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/notecard"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of notecard",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "notecard version %s\n", strings.TrimSpace(notecard.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
