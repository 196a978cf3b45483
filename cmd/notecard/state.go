package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/aretw0/introspection"
	"github.com/spf13/cobra"

	"github.com/aretw0/notecard"
	"github.com/aretw0/notecard/pkg/adapters/fs"
	"github.com/aretw0/notecard/pkg/core"
)

var stateDiagram bool

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Print the internal state of every component",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd.Context())
		if err != nil {
			return err
		}

		if stateDiagram {
			config := introspection.DefaultDiagramConfig()
			config.SecondaryID = "notecard"
			config.SecondaryLabel = "Notecard Topology"
			fmt.Fprintln(cmd.OutOrStdout(), introspection.TreeDiagram(buildTree(app), config))
			return nil
		}

		states := make(map[string]any)
		for _, c := range components(app) {
			states[c.ComponentType()] = c.State()
		}
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(states)
	},
}

func init() {
	stateCmd.Flags().BoolVar(&stateDiagram, "diagram", false, "Print a Mermaid diagram instead of JSON")
	rootCmd.AddCommand(stateCmd)
}

type component interface {
	introspection.Introspectable
	introspection.Component
}

func components(app *notecard.App) []component {
	return []component{app.Repository, app.Notes, app.Tags, app.Scheduler}
}

type stateNode struct {
	Name     string
	Status   string
	Metadata map[string]string
	Children []stateNode
}

func buildTree(app *notecard.App) stateNode {
	repo := app.Repository.State().(fs.RepositoryState)
	notes := app.Notes.State().(core.NoteStoreState)
	tags := app.Tags.State().(core.TagRegistryState)
	sched := app.Scheduler.State().(notecard.SchedulerState)

	// Status values must match the classes in introspection.DefaultStyles().
	status := func(running bool) string {
		if running {
			return "running"
		}
		return "suspended"
	}

	return stateNode{
		Name:   "Notecard",
		Status: "running",
		Metadata: map[string]string{
			"type": "container",
			"path": repo.Path,
		},
		Children: []stateNode{
			{
				Name:   "Files",
				Status: "running",
				Metadata: map[string]string{
					"type":   "process",
					"writes": strconv.Itoa(repo.Writes),
				},
				Children: []stateNode{{
					Name:     "Watcher",
					Status:   status(repo.WatcherActive),
					Metadata: map[string]string{"type": "goroutine"},
				}},
			},
			{
				Name:   "Notes",
				Status: "running",
				Metadata: map[string]string{
					"type":  "container",
					"notes": strconv.Itoa(notes.Notes),
				},
			},
			{
				Name:   "Tags",
				Status: "running",
				Metadata: map[string]string{
					"type": "container",
					"tags": strconv.Itoa(tags.Tags),
				},
			},
			{
				Name:   "Scheduler",
				Status: status(sched.Running),
				Metadata: map[string]string{
					"type":    "goroutine",
					"pending": strconv.Itoa(sched.Pending),
					"fired":   strconv.Itoa(sched.Fired),
				},
			},
		},
	}
}
