// Package scheduler fires reminders at their wall-clock time.
//
// A single loop owns one timer armed for the earliest pending reminder.
// The reminders file is the source of truth across restarts: reminders are
// appended when set, re-armed by LoadSavedReminders, and removed by ID once
// fired. There is no cancel operation; a pending reminder leaves the file
// only by firing or by an external edit of the file.
package scheduler

import (
	"container/heap"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/notecard/pkg/core"
)

// Notification defaults.
const (
	DefaultTitle           = "Нагадування"
	DefaultAppName         = "Нотатки"
	DefaultTimeout         = 10 * time.Second
	DefaultPreviewLength   = 100
	DefaultDeliveryTimeout = 30 * time.Second
)

// Config configures a Scheduler.
type Config struct {
	Title           string
	AppName         string
	Timeout         time.Duration // how long the notification stays visible
	PreviewLength   int           // runes of reminder text shown in the notification
	DeliveryTimeout time.Duration // upper bound for a single Notify call

	// FireOverdueOnLoad makes LoadSavedReminders fire reminders whose time
	// passed while the process was not running. When false they stay in the
	// file untouched until cleared.
	FireOverdueOnLoad bool

	Logger *slog.Logger
	Broker *core.Broker
	Now    func() time.Time
}

// Scheduler owns pending reminders and the timer loop that fires them.
type Scheduler struct {
	repo     core.ReminderRepository
	notifier core.Notifier
	config   Config
	logger   *slog.Logger
	broker   *core.Broker
	now      func() time.Time

	mu        sync.Mutex
	queue     reminderQueue
	armed     map[string]struct{}
	observers map[int]func(core.Reminder)
	nextObs   int
	fired     int
	failures  int
	lastFired *time.Time

	persistMu sync.Mutex // serializes read-modify-write cycles on the file
	wake      chan struct{}
	worker    *timerWorker
}

// New creates a Scheduler. Nothing fires from the queue until Start.
func New(repo core.ReminderRepository, notifier core.Notifier, config Config) *Scheduler {
	if config.Title == "" {
		config.Title = DefaultTitle
	}
	if config.AppName == "" {
		config.AppName = DefaultAppName
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.PreviewLength <= 0 {
		config.PreviewLength = DefaultPreviewLength
	}
	if config.DeliveryTimeout <= 0 {
		config.DeliveryTimeout = DefaultDeliveryTimeout
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Broker == nil {
		config.Broker = core.NewBroker(0, config.Logger)
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	s := &Scheduler{
		repo:      repo,
		notifier:  notifier,
		config:    config,
		logger:    config.Logger,
		broker:    config.Broker,
		now:       config.Now,
		armed:     make(map[string]struct{}),
		observers: make(map[int]func(core.Reminder)),
		wake:      make(chan struct{}, 1),
	}
	s.worker = newTimerWorker(s)
	return s
}

// Start runs the timer loop until ctx is done or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	return s.worker.Start(ctx)
}

// Stop halts the timer loop. Armed reminders stay in the file and are
// re-armed by the next LoadSavedReminders.
func (s *Scheduler) Stop(ctx context.Context) error {
	return s.worker.Stop(ctx)
}

// SetReminder schedules text for at.
// A reminder that is already due is delivered before SetReminder returns and
// never written to the file. Otherwise it is appended to the file and armed;
// if the write fails the reminder is not armed and the error is returned.
func (s *Scheduler) SetReminder(ctx context.Context, text string, at time.Time) (core.Reminder, error) {
	r := core.Reminder{
		ID:   uuid.NewString(),
		Text: text,
		At:   at,
	}

	if !at.After(s.now()) {
		s.logger.Debug("reminder already due, firing now", "id", r.ID)
		s.fire(ctx, &item{Reminder: r})
		return r, nil
	}

	if err := s.persist(ctx, r); err != nil {
		s.logger.Error("failed to persist reminder", "id", r.ID, "error", err)
		return core.Reminder{}, fmt.Errorf("failed to persist reminder: %w", err)
	}

	s.arm(r, true)
	s.broker.Publish(core.NewEvent(core.EventCreate, core.ResourceReminder, r.ID))
	s.logger.Info("reminder set", "id", r.ID, "at", core.FormatTimestamp(at))
	return r, nil
}

// LoadSavedReminders arms every persisted reminder that is still in the
// future and returns how many were armed. Entries with an unparsable
// datetime are skipped. Overdue entries are left alone unless
// Config.FireOverdueOnLoad is set. Calling it again only arms entries that
// are not armed yet.
func (s *Scheduler) LoadSavedReminders(ctx context.Context) (int, error) {
	records, err := s.loadAndMigrate(ctx)
	if err != nil {
		s.logger.Warn("failed to load reminders", "error", err)
		return 0, err
	}

	now := s.now()
	armed := 0
	for _, rec := range records {
		r, err := rec.Reminder()
		if err != nil {
			s.logger.Warn("skipping reminder", "id", rec.ID, "error", err)
			continue
		}

		if !r.At.After(now) && !s.config.FireOverdueOnLoad {
			s.logger.Info("overdue reminder left pending", "id", r.ID, "at", rec.Datetime)
			continue
		}
		if s.arm(r, true) {
			armed++
		}
	}

	s.logger.Debug("reminders loaded", "total", len(records), "armed", armed)
	return armed, nil
}

// loadAndMigrate reads the file and gives an ID to entries written before
// reminders had one, rewriting the file if any were added. The ID is derived
// from text and datetime, so an entry whose rewrite failed gets the same ID
// on every load and is never armed twice.
func (s *Scheduler) loadAndMigrate(ctx context.Context) ([]core.ReminderRecord, error) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	records, err := s.repo.LoadReminders(ctx)
	if err != nil {
		return nil, err
	}

	migrated := false
	for i := range records {
		if records[i].ID == "" && records[i].Raw == nil {
			records[i].ID = legacyID(records[i])
			migrated = true
		}
	}
	if migrated {
		if err := s.repo.SaveReminders(ctx, records); err != nil {
			// Removal falls back to text+datetime matching for these.
			s.logger.Warn("failed to assign reminder IDs", "error", err)
		}
	}
	return records, nil
}

// List returns the persisted reminders ordered by time, skipping entries
// that cannot be parsed.
func (s *Scheduler) List(ctx context.Context) ([]core.Reminder, error) {
	records, err := s.repo.LoadReminders(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]core.Reminder, 0, len(records))
	for _, rec := range records {
		r, err := rec.Reminder()
		if err != nil {
			continue
		}
		out = append(out, r)
	}
	slices.SortStableFunc(out, func(a, b core.Reminder) int { return a.At.Compare(b.At) })
	return out, nil
}

// Overdue returns persisted reminders whose time has passed.
func (s *Scheduler) Overdue(ctx context.Context) ([]core.Reminder, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	return slices.DeleteFunc(all, func(r core.Reminder) bool { return r.At.After(now) }), nil
}

// ClearOverdue drops overdue entries that are not queued to fire from the
// file and returns how many were dropped.
func (s *Scheduler) ClearOverdue(ctx context.Context) (int, error) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	records, err := s.repo.LoadReminders(ctx)
	if err != nil {
		return 0, err
	}

	now := s.now()
	kept := records[:0:0]
	for _, rec := range records {
		r, err := rec.Reminder()
		if err == nil && !r.At.After(now) && !s.isArmed(rec.ID) {
			continue
		}
		kept = append(kept, rec)
	}

	cleared := len(records) - len(kept)
	if cleared == 0 {
		return 0, nil
	}
	if err := s.repo.SaveReminders(ctx, kept); err != nil {
		return 0, fmt.Errorf("failed to clear overdue reminders: %w", err)
	}
	s.broker.Publish(core.NewEvent(core.EventDelete, core.ResourceReminder, ""))
	return cleared, nil
}

// Pending returns the armed reminders ordered by time.
func (s *Scheduler) Pending() []core.Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Reminder, 0, len(s.queue))
	for _, it := range s.queue {
		out = append(out, it.Reminder)
	}
	slices.SortFunc(out, func(a, b core.Reminder) int {
		if c := a.At.Compare(b.At); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		return 1
	})
	return out
}

// OnReminderFired registers fn to be called after each reminder fires.
// The returned function unregisters it.
func (s *Scheduler) OnReminderFired(fn func(core.Reminder)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// Subscribe implements core.Subscriber.
func (s *Scheduler) Subscribe(ctx context.Context) <-chan core.Event {
	return s.broker.Subscribe(ctx)
}

// arm queues r unless it is already queued and wakes the loop.
func (s *Scheduler) arm(r core.Reminder, persisted bool) bool {
	s.mu.Lock()
	if _, ok := s.armed[r.ID]; ok {
		s.mu.Unlock()
		return false
	}
	heap.Push(&s.queue, &item{Reminder: r, persisted: persisted})
	s.armed[r.ID] = struct{}{}
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return true
}

func (s *Scheduler) isArmed(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.armed[id]
	return ok
}

// popDue removes every item due at now and reports the next deadline.
func (s *Scheduler) popDue(now time.Time) (due []*item, next time.Time, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		it := s.queue.peek()
		if it == nil {
			return due, time.Time{}, false
		}
		if it.At.After(now) {
			return due, it.At, true
		}
		heap.Pop(&s.queue)
		delete(s.armed, it.ID)
		due = append(due, it)
	}
}

// fire delivers the notification, drops the entry from the file and tells
// observers. After a failed delivery the entry stays in the file as overdue
// and observers are not called; the timer is spent either way and there is
// no retry.
func (s *Scheduler) fire(ctx context.Context, it *item) {
	if it.persisted {
		present, err := s.stillPersisted(ctx, it.Reminder)
		if err == nil && !present {
			s.logger.Info("reminder removed from file before firing, skipping", "id", it.ID)
			return
		}
	}

	if err := s.deliver(ctx, it.Reminder); err != nil {
		s.logger.Error("failed to deliver reminder", "id", it.ID, "error", err)
		s.mu.Lock()
		s.failures++
		s.mu.Unlock()
		return
	}

	if it.persisted {
		if err := s.remove(ctx, it.Reminder); err != nil {
			s.logger.Error("failed to remove fired reminder", "id", it.ID, "error", err)
		}
	}

	now := s.now()
	s.mu.Lock()
	s.fired++
	s.lastFired = &now
	observers := make([]func(core.Reminder), 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.mu.Unlock()

	for _, fn := range observers {
		s.notifyObserver(fn, it.Reminder)
	}
	s.broker.Publish(core.NewEvent(core.EventFire, core.ResourceReminder, it.ID))
	s.logger.Info("reminder fired", "id", it.ID)
}

func (s *Scheduler) deliver(ctx context.Context, r core.Reminder) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("notifier panic: %v", rec)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, s.config.DeliveryTimeout)
	defer cancel()

	return s.notifier.Notify(ctx, core.Notification{
		Title:   s.config.Title,
		Message: core.Preview(r.Text, s.config.PreviewLength),
		AppName: s.config.AppName,
		Timeout: s.config.Timeout,
	})
}

func (s *Scheduler) notifyObserver(fn func(core.Reminder), r core.Reminder) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("reminder observer panic", "id", r.ID, "panic", rec)
		}
	}()
	fn(r)
}

func (s *Scheduler) persist(ctx context.Context, r core.Reminder) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	records, err := s.repo.LoadReminders(ctx)
	if err != nil {
		return err
	}
	return s.repo.SaveReminders(ctx, append(records, r.Record()))
}

func (s *Scheduler) stillPersisted(ctx context.Context, r core.Reminder) (bool, error) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	records, err := s.repo.LoadReminders(ctx)
	if err != nil {
		return false, err
	}
	return slices.ContainsFunc(records, func(rec core.ReminderRecord) bool { return matches(rec, r) }), nil
}

func (s *Scheduler) remove(ctx context.Context, r core.Reminder) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	records, err := s.repo.LoadReminders(ctx)
	if err != nil {
		return err
	}
	kept := slices.DeleteFunc(records, func(rec core.ReminderRecord) bool { return matches(rec, r) })
	return s.repo.SaveReminders(ctx, kept)
}

// matches identifies the file entry of r: by ID, or for entries that never
// got one, by text and datetime together.
func matches(rec core.ReminderRecord, r core.Reminder) bool {
	if rec.Raw != nil {
		return false
	}
	if rec.ID != "" {
		return rec.ID == r.ID
	}
	return rec.Text == r.Text && rec.Datetime == core.FormatTimestamp(r.At)
}

// legacyNamespace seeds IDs of entries saved without one.
var legacyNamespace = uuid.MustParse("5b0c6f0e-3d1a-4c59-9a0e-7d2f64a8e1c3")

func legacyID(rec core.ReminderRecord) string {
	return uuid.NewSHA1(legacyNamespace, []byte(rec.Text+"\x00"+rec.Datetime)).String()
}
