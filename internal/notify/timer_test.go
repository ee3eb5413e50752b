package notify

import (
	"errors"
	"testing"
	"time"

	"listify/internal/listify"
	"listify/internal/testutil"
)

func newTestTimerNotifier(t *testing.T) (*TimerNotifier, *testutil.StubClock, chan Alert) {
	t.Helper()
	clock := testutil.FixedClock()
	alerts := make(chan Alert, 10)
	n := NewTimerNotifier(clock, listify.NewNopLogger(), func(a Alert) { alerts <- a })
	t.Cleanup(func() { n.Close() })
	return n, clock, alerts
}

func TestTimerNotifier_Fires(t *testing.T) {
	n, clock, alerts := newTestTimerNotifier(t)

	fireAt := clock.Now().Add(20 * time.Millisecond)
	handle, err := n.Schedule("Listify Reminder", "buy milk", fireAt)
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	if handle == "" {
		t.Fatal("Schedule() returned empty handle")
	}
	if !n.Pending(handle) {
		t.Error("Pending() = false right after Schedule, want true")
	}

	select {
	case a := <-alerts:
		if a.Handle != handle || a.Body != "buy milk" || !a.FireAt.Equal(fireAt) {
			t.Errorf("delivered %+v, want handle %s body %q", a, handle, "buy milk")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("alarm did not fire")
	}

	if n.Pending(handle) {
		t.Error("Pending() = true after delivery, want false")
	}
}

func TestTimerNotifier_PastFiresImmediately(t *testing.T) {
	n, clock, alerts := newTestTimerNotifier(t)

	if _, err := n.Schedule("t", "late", clock.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	select {
	case <-alerts:
	case <-time.After(5 * time.Second):
		t.Fatal("past alarm did not fire")
	}
}

func TestTimerNotifier_Cancel(t *testing.T) {
	n, clock, alerts := newTestTimerNotifier(t)

	handle, err := n.Schedule("t", "b", clock.Now().Add(50*time.Millisecond))
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	if err := n.Cancel(handle); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if n.Pending(handle) {
		t.Error("Pending() = true after Cancel, want false")
	}

	t.Run("idempotent", func(t *testing.T) {
		if err := n.Cancel(handle); err != nil {
			t.Errorf("second Cancel() error = %v", err)
		}
		if err := n.Cancel("never-issued"); err != nil {
			t.Errorf("Cancel(unknown) error = %v", err)
		}
	})

	select {
	case a := <-alerts:
		t.Errorf("cancelled alarm delivered: %+v", a)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestTimerNotifier_UniqueHandles(t *testing.T) {
	n, clock, _ := newTestTimerNotifier(t)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		h, err := n.Schedule("t", "b", clock.Now().Add(time.Hour))
		if err != nil {
			t.Fatalf("Schedule() error = %v", err)
		}
		if seen[h] {
			t.Fatalf("handle %s issued twice", h)
		}
		seen[h] = true
	}
	if n.Len() != 50 {
		t.Errorf("Len() = %d, want 50", n.Len())
	}
}

func TestTimerNotifier_Close(t *testing.T) {
	n, clock, _ := newTestTimerNotifier(t)

	h, _ := n.Schedule("t", "b", clock.Now().Add(time.Hour))
	if err := n.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if n.Pending(h) {
		t.Error("Pending() = true after Close")
	}
	if _, err := n.Schedule("t", "b", clock.Now().Add(time.Hour)); !errors.Is(err, ErrClosed) {
		t.Errorf("Schedule() after Close error = %v, want ErrClosed", err)
	}
}

func TestTimerNotifier_Alarms(t *testing.T) {
	n, clock, _ := newTestTimerNotifier(t)

	later, _ := n.Schedule("t", "later", clock.Now().Add(2*time.Hour))
	sooner, _ := n.Schedule("t", "sooner", clock.Now().Add(time.Hour))
	gone, _ := n.Schedule("t", "gone", clock.Now().Add(3*time.Hour))
	n.Cancel(gone)

	alarms := n.Alarms()
	if len(alarms) != 2 {
		t.Fatalf("len(Alarms()) = %d, want 2", len(alarms))
	}
	if alarms[0].Handle != sooner || alarms[1].Handle != later {
		t.Errorf("Alarms() = %+v, want %s then %s", alarms, sooner, later)
	}
	if want := clock.Now().Add(time.Hour); !alarms[0].FireAt.Equal(want) {
		t.Errorf("Alarms()[0].FireAt = %v, want %v", alarms[0].FireAt, want)
	}
}
