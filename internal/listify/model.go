package listify

import (
	"strings"
	"time"
)

// BirthdaysList is the name of the list that holds birthday notes.
const BirthdaysList = "Birthdays"

// DefaultListColor is used when a list is created without a color.
const DefaultListColor = "#14B8A6"

// Note is a single user-created item belonging to a List.
// ListName references List.Name; renaming a list rewrites it on every note.
type Note struct {
	ID        string    `json:"id" yaml:"id"`
	Text      string    `json:"text" yaml:"text"`
	ListName  string    `json:"listName" yaml:"list"`
	Completed bool      `json:"completed" yaml:"completed"`
	CreatedAt time.Time `json:"createdAt" yaml:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updated_at"`

	ReminderDate *time.Time `json:"reminderDate,omitempty" yaml:"reminder,omitempty"`
	// ReminderExpired records that the local clock passed ReminderDate.
	// It is not a delivery receipt from the notification facility.
	ReminderExpired bool `json:"reminderExpired,omitempty" yaml:"reminder_expired,omitempty"`
	// NotificationID is the notifier handle for the scheduled alarm.
	// Empty with a ReminderDate set means the reminder was requested but no
	// alarm could be registered.
	NotificationID string `json:"notificationId,omitempty" yaml:"notification_id,omitempty"`

	BirthdayMonth int    `json:"birthdayMonth,omitempty" yaml:"birthday_month,omitempty"`
	BirthdayDay   int    `json:"birthdayDay,omitempty" yaml:"birthday_day,omitempty"`
	BirthdayImage string `json:"birthdayImage,omitempty" yaml:"birthday_image,omitempty"`
}

// HasReminder reports whether a reminder time is set.
func (n *Note) HasReminder() bool {
	return n.ReminderDate != nil
}

// IsBirthday reports whether the note carries a valid birthday date.
func (n *Note) IsBirthday() bool {
	return n.ListName == BirthdaysList && n.BirthdayMonth != 0 && n.BirthdayDay != 0
}

// List is a named, colored grouping of notes. Name is the primary key.
type List struct {
	Name     string `json:"name" yaml:"name"`
	Color    string `json:"color" yaml:"color"`
	Archived bool   `json:"archived,omitempty" yaml:"archived,omitempty"`
}

// ListSummary is a List together with the number of notes that reference it.
type ListSummary struct {
	List  `yaml:",inline"`
	Count int `yaml:"count"`
}

// DefaultLists returns the lists created the first time storage is read empty.
func DefaultLists() []List {
	return []List{
		{Name: "Personal", Color: "#14B8A6"},
		{Name: "Work", Color: "#10B981"},
		{Name: "Shopping", Color: "#059669"},
		{Name: BirthdaysList, Color: "#EC4899"},
	}
}

// NoteUpdate is a partial update: only non-nil fields are applied.
type NoteUpdate struct {
	Text      *string
	ListName  *string
	Completed *bool

	ReminderDate    *time.Time
	ReminderExpired *bool
	NotificationID  *string
	// ClearReminder removes the reminder and cancels its alarm.
	// It takes precedence over ReminderDate.
	ClearReminder bool

	BirthdayMonth *int
	BirthdayDay   *int
	BirthdayImage *string
}

// Ptr returns a pointer to v. Convenient for building a NoteUpdate.
func Ptr[T any](v T) *T {
	return &v
}

// changesReminder reports whether applying u would move or remove n's reminder.
func (u NoteUpdate) changesReminder(n *Note) bool {
	if u.ClearReminder {
		return n.ReminderDate != nil || n.NotificationID != ""
	}
	if u.ReminderDate == nil {
		return false
	}
	return n.ReminderDate == nil || !n.ReminderDate.Equal(*u.ReminderDate)
}

func (u NoteUpdate) validate(n *Note) error {
	if u.Text != nil && strings.TrimSpace(*u.Text) == "" {
		return validationFailed("text", "note text must not be empty")
	}
	if u.ListName != nil && strings.TrimSpace(*u.ListName) == "" {
		return validationFailed("listName", "list name must not be empty")
	}
	if u.BirthdayMonth != nil || u.BirthdayDay != nil {
		month, day := n.BirthdayMonth, n.BirthdayDay
		if u.BirthdayMonth != nil {
			month = *u.BirthdayMonth
		}
		if u.BirthdayDay != nil {
			day = *u.BirthdayDay
		}
		if err := ValidateBirthday(month, day); err != nil {
			return err
		}
	}
	return nil
}

// apply merges u onto n. Handle bookkeeping for the reminder is the
// caller's job; apply only copies fields.
func (u NoteUpdate) apply(n *Note) {
	if u.Text != nil {
		n.Text = strings.TrimSpace(*u.Text)
	}
	if u.ListName != nil {
		n.ListName = strings.TrimSpace(*u.ListName)
	}
	if u.Completed != nil {
		n.Completed = *u.Completed
	}
	if u.ClearReminder {
		n.ReminderDate = nil
		n.ReminderExpired = false
		n.NotificationID = ""
	} else {
		if u.ReminderDate != nil {
			at := *u.ReminderDate
			n.ReminderDate = &at
		}
		if u.ReminderExpired != nil {
			n.ReminderExpired = *u.ReminderExpired
		}
		if u.NotificationID != nil {
			n.NotificationID = *u.NotificationID
		}
	}
	if u.BirthdayMonth != nil {
		n.BirthdayMonth = *u.BirthdayMonth
	}
	if u.BirthdayDay != nil {
		n.BirthdayDay = *u.BirthdayDay
	}
	if u.BirthdayImage != nil {
		n.BirthdayImage = *u.BirthdayImage
	}
}

func indexOfNote(notes []Note, id string) int {
	for i := range notes {
		if notes[i].ID == id {
			return i
		}
	}
	return -1
}

func indexOfList(lists []List, name string) int {
	for i := range lists {
		if lists[i].Name == name {
			return i
		}
	}
	return -1
}
