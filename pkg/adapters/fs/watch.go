package fs

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/aretw0/lifecycle/pkg/core/supervisor"
	"github.com/aretw0/lifecycle/pkg/core/worker"

	"github.com/aretw0/notecard/pkg/core"
)

// Watch reports changes made to the data files by other processes as
// EventReload events, one per affected resource. Writes made through this
// Repository are filtered out. The watcher is restarted on failure and the
// channel is closed once ctx is done.
func (r *Repository) Watch(ctx context.Context) (<-chan core.Event, error) {
	if _, err := os.Stat(r.Path); err != nil {
		return nil, fmt.Errorf("cannot watch %s: %w", r.Path, err)
	}

	events := make(chan core.Event, 16)

	spec := supervisor.Spec{
		Name: "fs-watcher",
		Type: string(worker.TypeGoroutine),
		Factory: func() (worker.Worker, error) {
			return newWatchWorker(r, events), nil
		},
		Backoff: supervisor.Backoff{
			InitialInterval: 100 * time.Millisecond,
			MaxInterval:     5 * time.Second,
			Multiplier:      2,
			ResetDuration:   30 * time.Second,
			MaxRestarts:     5,
			MaxDuration:     time.Minute,
		},
		RestartPolicy: supervisor.RestartOnFailure,
	}

	sup := supervisor.New("notecard-watch", supervisor.StrategyOneForOne, spec)
	if err := sup.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start watcher: %w", err)
	}

	lifecycle.Go(ctx, func(ctx context.Context) error {
		<-ctx.Done()

		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := sup.Stop(stopCtx); err != nil {
			r.config.Logger.Warn("failed to stop watcher", "error", err)
		}
		close(events)
		return nil
	})

	return events, nil
}
