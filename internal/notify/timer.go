package notify

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"listify/internal/listify"
)

// ErrClosed is returned by Schedule after Close.
var ErrClosed = errors.New("notifier closed")

// TimerNotifier keeps alarms as in-process timers. Alarms do not survive the
// process; Scheduler.Reconcile registers them again on the next start. Only
// the daemon uses it; other processes get NewDeferredNotifier.
// Safe for concurrent use.
type TimerNotifier struct {
	clock   listify.Clock
	logger  listify.Logger
	deliver func(Alert)

	mu     sync.Mutex
	timers map[string]*pendingTimer
	closed bool
}

type pendingTimer struct {
	timer  *time.Timer
	fireAt time.Time
}

// NewTimerNotifier creates a TimerNotifier that calls deliver, on its own
// goroutine, for each alarm that fires.
func NewTimerNotifier(clock listify.Clock, logger listify.Logger, deliver func(Alert)) *TimerNotifier {
	return &TimerNotifier{
		clock:   clock,
		logger:  logger,
		deliver: deliver,
		timers:  make(map[string]*pendingTimer),
	}
}

// Schedule registers an alarm and returns a UUID handle. A fireAt that has
// already passed fires immediately.
func (n *TimerNotifier) Schedule(title, body string, fireAt time.Time) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return "", ErrClosed
	}

	handle := uuid.NewString()
	alert := Alert{Handle: handle, Title: title, Body: body, FireAt: fireAt}
	delay := fireAt.Sub(n.clock.Now())
	if delay < 0 {
		delay = 0
	}
	n.timers[handle] = &pendingTimer{
		timer:  time.AfterFunc(delay, func() { n.fire(alert) }),
		fireAt: fireAt,
	}

	n.logger.Debug("alarm scheduled", "handle", handle, "in", delay)
	return handle, nil
}

func (n *TimerNotifier) fire(a Alert) {
	n.mu.Lock()
	_, ok := n.timers[a.Handle]
	delete(n.timers, a.Handle)
	n.mu.Unlock()

	// Cancelled between the timer firing and taking the lock.
	if !ok {
		return
	}
	n.deliver(a)
}

// Cancel stops the alarm. Unknown or already fired handles are ignored.
func (n *TimerNotifier) Cancel(handle string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if p, ok := n.timers[handle]; ok {
		p.timer.Stop()
		delete(n.timers, handle)
	}
	return nil
}

// Pending reports whether the alarm is scheduled and has not fired.
func (n *TimerNotifier) Pending(handle string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	_, ok := n.timers[handle]
	return ok
}

// Len returns the number of pending alarms.
func (n *TimerNotifier) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.timers)
}

// Alarms returns the pending alarms, soonest first.
func (n *TimerNotifier) Alarms() []listify.Alarm {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]listify.Alarm, 0, len(n.timers))
	for handle, p := range n.timers {
		out = append(out, listify.Alarm{Handle: handle, FireAt: p.fireAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FireAt.Before(out[j].FireAt) })
	return out
}

// Close stops every pending alarm. Later Schedule calls fail with ErrClosed.
func (n *TimerNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	for handle, p := range n.timers {
		p.timer.Stop()
		delete(n.timers, handle)
	}
	n.closed = true
	return nil
}

var (
	_ listify.Notifier    = (*TimerNotifier)(nil)
	_ listify.AlarmLister = (*TimerNotifier)(nil)
)
