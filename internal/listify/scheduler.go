package listify

import (
	"errors"
	"fmt"
	"time"
)

// ReminderTitle is the title of every reminder alert.
const ReminderTitle = "Listify Reminder"

// Scheduler keeps each note's reminder in step with exactly one alarm
// registered with the Notifier.
//
// A note's reminder moves through these states:
//
//	none      -> scheduled  SetReminder
//	scheduled -> scheduled  SetReminder again (old alarm cancelled once the new one is stored)
//	scheduled -> expired    MarkExpired, once the local clock passes the time
//	any       -> none       CancelReminder or note deletion
//
// Expired is a local-clock observation. The notifier may or may not have
// delivered its alert; the two are not synchronized.
type Scheduler struct {
	store    *Store
	notifier Notifier
	logger   Logger
	clock    Clock
}

// NewScheduler creates a Scheduler. notifier should be the same Notifier the
// store was created with.
func NewScheduler(store *Store, notifier Notifier, logger Logger, clock Clock) *Scheduler {
	return &Scheduler{
		store:    store,
		notifier: notifier,
		logger:   logger,
		clock:    clock,
	}
}

// SetReminder schedules an alert for the note at fireAt, replacing any alarm
// the note already holds.
//
// fireAt must be strictly in the future; otherwise ErrReminderInPast is
// returned and nothing changes. If the notifier fails, the reminder time is
// still stored with an empty NotificationID so expiry tracking keeps working.
// If the write fails, the new alarm is cancelled and the old one stays live.
func (s *Scheduler) SetReminder(noteID string, fireAt time.Time) (*Note, error) {
	now := s.clock.Now()
	if !fireAt.After(now) {
		s.logger.Warn("reminder rejected", "note", noteID, "fire_at", fireAt, "now", now)
		return nil, &Error{
			Err:     ErrReminderInPast,
			Message: fmt.Sprintf("reminder time %s is not in the future", fireAt.Format(time.RFC3339)),
			Field:   "reminderDate",
		}
	}

	var oldHandle, handle string
	updated, err := s.store.modifyNote(noteID, func(n *Note) (bool, error) {
		oldHandle = n.NotificationID
		h, err := s.notifier.Schedule(ReminderTitle, n.Text, fireAt)
		if err != nil {
			s.scheduleFailed(n.ID, err)
			h = ""
		}
		handle = h

		at := fireAt
		n.ReminderDate = &at
		n.NotificationID = h
		n.ReminderExpired = false
		return true, nil
	})
	if err != nil {
		if handle != "" {
			s.store.cancelAlarm(noteID, handle)
		}
		return nil, fmt.Errorf("setting reminder: %w", err)
	}
	if updated == nil {
		return nil, notFound("note", noteID)
	}
	if oldHandle != "" && oldHandle != handle {
		s.store.cancelAlarm(noteID, oldHandle)
	}

	s.logger.Info("reminder set", "note", noteID, "fire_at", fireAt, "handle", handle)
	return updated, nil
}

func (s *Scheduler) scheduleFailed(noteID string, err error) {
	if errors.Is(err, ErrNotifierUnavailable) {
		s.logger.Info("no alarm facility in this process, keeping reminder without alarm", "note", noteID, "error", err)
		return
	}
	s.logger.Warn("scheduling alarm failed, keeping reminder without alarm", "note", noteID, "error", err)
}

// CancelReminder removes the note's reminder and cancels its alarm.
// Cancelling a note with no reminder, or a note that does not exist, is a
// no-op.
func (s *Scheduler) CancelReminder(noteID string) error {
	_, err := s.store.modifyNote(noteID, func(n *Note) (bool, error) {
		if n.ReminderDate == nil && n.NotificationID == "" && !n.ReminderExpired {
			return false, nil
		}
		if n.NotificationID != "" {
			s.store.cancelAlarm(n.ID, n.NotificationID)
		}
		n.ReminderDate = nil
		n.NotificationID = ""
		n.ReminderExpired = false
		return true, nil
	})
	if err != nil {
		return fmt.Errorf("cancelling reminder: %w", err)
	}
	return nil
}

// MarkExpired flags the note's reminder as expired. It is a no-op if the
// note has no reminder or is already flagged.
func (s *Scheduler) MarkExpired(noteID string) error {
	_, err := s.store.modifyNote(noteID, func(n *Note) (bool, error) {
		if n.ReminderDate == nil || n.ReminderExpired {
			return false, nil
		}
		n.ReminderExpired = true
		s.logger.Debug("reminder expired", "note", n.ID, "fire_at", *n.ReminderDate)
		return true, nil
	})
	if err != nil {
		return fmt.Errorf("marking reminder expired: %w", err)
	}
	return nil
}

// ReconcileResult reports what a Reconcile pass changed.
type ReconcileResult struct {
	Expired     int
	Rescheduled int
	Cancelled   int
}

// Reconcile brings stored reminders and notifier state back in line, for
// example after a restart lost in-process alarms or another process wrote
// the notes collection. Past reminders are flagged expired; future reminders
// whose alarm the notifier does not know about are registered again.
// If the notifier is an AlarmLister, its alarms that no note references, or
// whose note now wants a different time, are cancelled.
// A second pass over unchanged data writes nothing.
func (s *Scheduler) Reconcile() (ReconcileResult, error) {
	var res ReconcileResult
	now := s.clock.Now()

	err := s.store.modifyNotes(func(notes []Note) (bool, error) {
		changed := false
		if lister, ok := s.notifier.(AlarmLister); ok {
			changed = s.cancelStale(notes, lister.Alarms(), &res)
		}
		for i := range notes {
			n := &notes[i]
			if n.ReminderDate == nil || n.Completed {
				continue
			}

			if !n.ReminderDate.After(now) {
				if !n.ReminderExpired {
					n.ReminderExpired = true
					n.UpdatedAt = s.store.touch(n.UpdatedAt)
					res.Expired++
					changed = true
				}
				continue
			}

			if n.NotificationID != "" && s.notifier.Pending(n.NotificationID) {
				continue
			}
			h, err := s.notifier.Schedule(ReminderTitle, n.Text, *n.ReminderDate)
			if err != nil {
				s.scheduleFailed(n.ID, err)
				if n.NotificationID != "" {
					n.NotificationID = ""
					n.UpdatedAt = s.store.touch(n.UpdatedAt)
					changed = true
				}
				continue
			}
			n.NotificationID = h
			n.UpdatedAt = s.store.touch(n.UpdatedAt)
			res.Rescheduled++
			changed = true
		}
		return changed, nil
	})
	if err != nil {
		return res, fmt.Errorf("reconciling reminders: %w", err)
	}

	if res != (ReconcileResult{}) {
		s.logger.Info("reminders reconciled", "expired", res.Expired, "rescheduled", res.Rescheduled, "cancelled", res.Cancelled)
	}
	return res, nil
}

// cancelStale cancels alarms that no note references or whose note's
// reminder time has moved. A note left holding a cancelled handle has it
// cleared so Reconcile registers a fresh alarm.
func (s *Scheduler) cancelStale(notes []Note, alarms []Alarm, res *ReconcileResult) bool {
	byHandle := make(map[string]*Note, len(notes))
	for i := range notes {
		if h := notes[i].NotificationID; h != "" {
			byHandle[h] = &notes[i]
		}
	}

	changed := false
	for _, a := range alarms {
		n, ok := byHandle[a.Handle]
		if ok && n.ReminderDate != nil && n.ReminderDate.Equal(a.FireAt) {
			continue
		}

		noteID := ""
		if ok {
			noteID = n.ID
		}
		s.store.cancelAlarm(noteID, a.Handle)
		res.Cancelled++

		if ok {
			n.NotificationID = ""
			n.UpdatedAt = s.store.touch(n.UpdatedAt)
			changed = true
		}
	}
	return changed
}

// ActiveAlarms returns the notes whose alarm is still pending with the notifier.
func (s *Scheduler) ActiveAlarms() []Note {
	return filterNotes(s.store.GetNotes(), func(n *Note) bool {
		return n.NotificationID != "" && s.notifier.Pending(n.NotificationID)
	})
}
