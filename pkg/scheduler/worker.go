package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/aretw0/lifecycle/pkg/core/worker"
)

// timerWorker runs the scheduler loop: one timer, re-armed for the earliest
// queued reminder whenever the queue changes or the timer fires.
type timerWorker struct {
	*worker.BaseWorker
	s      *Scheduler
	cancel context.CancelFunc
}

func newTimerWorker(s *Scheduler) *timerWorker {
	return &timerWorker{
		BaseWorker: worker.NewBaseWorker("reminder-scheduler"),
		s:          s,
	}
}

func (w *timerWorker) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	status := w.State().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("scheduler already started (status: %s)", status)
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.SetStatus(worker.StatusRunning)
	return w.StartFunc(runCtx, w.run)
}

func (w *timerWorker) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.StopRequested = true
		w.cancel()
	}

	return w.BaseWorker.Stop(ctx)
}

func (w *timerWorker) State() worker.State {
	return w.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
			"pending":           strconv.Itoa(w.s.queueLen()),
		}
	})
}

func (w *timerWorker) running() bool {
	return w.State().Status == worker.StatusRunning
}

func (w *timerWorker) run(ctx context.Context) (err error) {
	logger := w.s.logger
	defer func() {
		if recovered := recover(); recovered != nil {
			panicErr := fmt.Errorf("scheduler panic: %v", recovered)
			if logger.Enabled(ctx, slog.LevelDebug) {
				logger.Error("scheduler panic", "error", panicErr, "stack", string(debug.Stack()))
			} else {
				logger.Error("scheduler panic", "error", panicErr)
			}
			err = panicErr
		}
	}()

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		due, next, ok := w.s.popDue(w.s.now())
		for _, it := range due {
			w.s.fire(ctx, it)
		}
		if len(due) > 0 {
			continue
		}

		var fired <-chan time.Time
		if ok {
			timer.Reset(next.Sub(w.s.now()))
			fired = timer.C
		}

		select {
		case <-ctx.Done():
			return nil
		case <-w.s.wake:
			timer.Stop()
		case <-fired:
		}
	}
}
