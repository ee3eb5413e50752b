package listify

import "time"

// Notifier is the platform notification facility used to deliver reminder
// alerts. Implementations own their registry of scheduled alarms.
type Notifier interface {
	// Schedule requests a one-shot alert at fireAt and returns an opaque
	// handle that can later be passed to Cancel.
	Schedule(title, body string, fireAt time.Time) (string, error)

	// Cancel removes a scheduled alert. Cancelling an unknown or already
	// delivered handle is not an error.
	Cancel(handle string) error

	// Pending reports whether handle refers to an alert that has not been
	// delivered or cancelled yet.
	Pending(handle string) bool
}

// Alarm is a pending alert as seen by the notifier that holds it.
type Alarm struct {
	Handle string
	FireAt time.Time
}

// AlarmLister is implemented by notifiers that can enumerate their own
// pending alarms. Reconcile uses it to cancel alarms that no note references
// any more, for example after another process deleted or moved a reminder.
type AlarmLister interface {
	Alarms() []Alarm
}
