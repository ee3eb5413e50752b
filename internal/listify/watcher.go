package listify

import (
	"context"
	"time"
)

// DefaultPollInterval is how often a Watcher re-evaluates reminders.
const DefaultPollInterval = time.Minute

// Watcher periodically compares pending reminders against the local clock
// and flags the ones whose time has passed as expired. It does not depend on
// the notifier having delivered anything.
type Watcher struct {
	store     *Store
	scheduler *Scheduler
	logger    Logger
	clock     Clock
	interval  time.Duration
}

// NewWatcher creates a Watcher polling every interval. A non-positive
// interval means DefaultPollInterval.
func NewWatcher(store *Store, scheduler *Scheduler, logger Logger, clock Clock, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Watcher{
		store:     store,
		scheduler: scheduler,
		logger:    logger,
		clock:     clock,
		interval:  interval,
	}
}

// Tick runs a single pass and returns the notes newly flagged expired.
func (w *Watcher) Tick() []Note {
	now := w.clock.Now()

	var expired []Note
	for _, n := range w.store.GetPendingReminders() {
		if _, done := Countdown(*n.ReminderDate, now); !done {
			continue
		}
		if err := w.scheduler.MarkExpired(n.ID); err != nil {
			w.logger.Error("flagging expired reminder", "note", n.ID, "error", err)
			continue
		}
		n.ReminderExpired = true
		expired = append(expired, n)
	}

	if len(expired) > 0 {
		w.logger.Info("reminders expired", "count", len(expired))
	}
	return expired
}

// Run calls Tick immediately and then on every interval until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	w.Tick()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.Tick()
		}
	}
}
