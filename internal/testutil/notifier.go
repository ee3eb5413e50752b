package testutil

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"listify/internal/listify"
)

// ScheduledAlert is an alert recorded by FakeNotifier.
type ScheduledAlert struct {
	Handle string
	Title  string
	Body   string
	FireAt time.Time
}

// FakeNotifier records Schedule and Cancel calls without delivering anything.
// Handles are sequential: "alarm-1", "alarm-2", etc. Safe for concurrent use.
type FakeNotifier struct {
	mu        sync.Mutex
	counter   int
	live      map[string]ScheduledAlert
	cancelled []string
	fail      bool
}

func NewFakeNotifier() *FakeNotifier {
	return &FakeNotifier{live: make(map[string]ScheduledAlert)}
}

// SetFailing makes every subsequent Schedule call fail (or succeed again).
func (f *FakeNotifier) SetFailing(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fail
}

func (f *FakeNotifier) Schedule(title, body string, fireAt time.Time) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail {
		return "", errors.New("permission denied")
	}
	f.counter++
	handle := fmt.Sprintf("alarm-%d", f.counter)
	f.live[handle] = ScheduledAlert{Handle: handle, Title: title, Body: body, FireAt: fireAt}
	return handle, nil
}

func (f *FakeNotifier) Cancel(handle string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.cancelled = append(f.cancelled, handle)
	delete(f.live, handle)
	return nil
}

func (f *FakeNotifier) Pending(handle string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok := f.live[handle]
	return ok
}

// Fire delivers handle as the platform would: it is no longer pending.
func (f *FakeNotifier) Fire(handle string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.live, handle)
}

// Forget drops every live alarm, as a process restart would for in-process timers.
func (f *FakeNotifier) Forget() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.live = make(map[string]ScheduledAlert)
}

// Live returns a copy of the alarms that are currently scheduled.
func (f *FakeNotifier) Live() map[string]ScheduledAlert {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make(map[string]ScheduledAlert, len(f.live))
	for k, v := range f.live {
		out[k] = v
	}
	return out
}

// Alarms lists the live alarms, soonest first.
func (f *FakeNotifier) Alarms() []listify.Alarm {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]listify.Alarm, 0, len(f.live))
	for h, a := range f.live {
		out = append(out, listify.Alarm{Handle: h, FireAt: a.FireAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FireAt.Before(out[j].FireAt) })
	return out
}

// Cancelled returns the handles passed to Cancel, in call order.
func (f *FakeNotifier) Cancelled() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.cancelled...)
}

var (
	_ listify.Notifier    = (*FakeNotifier)(nil)
	_ listify.AlarmLister = (*FakeNotifier)(nil)
)
