package fs

import (
	"sync"
	"time"

	"github.com/aretw0/notecard/pkg/core"
)

// debouncer coalesces bursts of events per resource: an atomic write shows up
// as create+rename+chmod, and only the last one matters.
type debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timers  map[core.Resource]*time.Timer
	wg      sync.WaitGroup
	stopped bool
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:  delay,
		timers: make(map[core.Resource]*time.Timer),
	}
}

// add schedules fn(e) after the delay, replacing any pending call for the
// same resource.
func (d *debouncer) add(e core.Event, fn func(core.Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if t, ok := d.timers[e.Resource]; ok && t.Stop() {
		d.wg.Done()
	}

	d.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()

		d.mu.Lock()
		if d.timers[e.Resource] == t {
			delete(d.timers, e.Resource)
		}
		d.mu.Unlock()

		fn(e)
	})
	d.timers[e.Resource] = t
}

// stopAndWait cancels pending calls and waits up to timeout for running ones.
func (d *debouncer) stopAndWait(timeout time.Duration) {
	d.mu.Lock()
	d.stopped = true
	for res, t := range d.timers {
		if t.Stop() {
			d.wg.Done()
		}
		delete(d.timers, res)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
	}
}
