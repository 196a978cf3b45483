package scheduler

import (
	"container/heap"

	"github.com/aretw0/notecard/pkg/core"
)

// item is an armed reminder. Transient reminders (fired on creation) never
// enter the queue; persisted marks entries that must be removed from the
// reminders file once fired.
type item struct {
	core.Reminder
	persisted bool
	index     int
}

// reminderQueue is a min-heap ordered by target time.
type reminderQueue []*item

var _ heap.Interface = (*reminderQueue)(nil)

func (q reminderQueue) Len() int { return len(q) }

func (q reminderQueue) Less(i, j int) bool {
	if q[i].At.Equal(q[j].At) {
		return q[i].ID < q[j].ID
	}
	return q[i].At.Before(q[j].At)
}

func (q reminderQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *reminderQueue) Push(x any) {
	it := x.(*item)
	it.index = len(*q)
	*q = append(*q, it)
}

func (q *reminderQueue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	it.index = -1
	*q = old[:n-1]
	return it
}

// peek returns the earliest item without removing it.
func (q reminderQueue) peek() *item {
	if len(q) == 0 {
		return nil
	}
	return q[0]
}
