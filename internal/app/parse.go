package app

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"listify/internal/listify"
)

// reminderLayouts are the absolute forms accepted for a reminder time,
// interpreted in the local time zone unless they carry an offset.
var reminderLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02T15:04",
}

// ParseReminderTime parses a reminder time typed on the command line.
// Accepted forms:
//
//	+90m, +1h30m   relative to now (any time.ParseDuration string)
//	+3d            whole days from now
//	15:04          today at that time, or tomorrow if it has passed
//	2006-01-02 15:04 or RFC 3339
//
// It does not check that the result is in the future; the scheduler does.
func ParseReminderTime(raw string, now time.Time) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, reminderError("reminder time must not be empty")
	}

	if rel, ok := strings.CutPrefix(s, "+"); ok {
		if days, ok := strings.CutSuffix(rel, "d"); ok {
			n, err := strconv.Atoi(days)
			if err != nil || n <= 0 {
				return time.Time{}, reminderError(fmt.Sprintf("invalid day count %q", rel))
			}
			return now.AddDate(0, 0, n), nil
		}
		d, err := time.ParseDuration(rel)
		if err != nil || d <= 0 {
			return time.Time{}, reminderError(fmt.Sprintf("invalid duration %q", rel))
		}
		return now.Add(d), nil
	}

	if clock, err := time.ParseInLocation("15:04", s, now.Location()); err == nil {
		at := time.Date(now.Year(), now.Month(), now.Day(), clock.Hour(), clock.Minute(), 0, 0, now.Location())
		if !at.After(now) {
			at = at.AddDate(0, 0, 1)
		}
		return at, nil
	}

	for _, layout := range reminderLayouts {
		if t, err := time.ParseInLocation(layout, s, now.Location()); err == nil {
			return t, nil
		}
	}
	return time.Time{}, reminderError(fmt.Sprintf("unrecognized reminder time %q (use +90m, +2d, 15:04 or 2006-01-02 15:04)", raw))
}

func reminderError(message string) error {
	return &listify.Error{Err: listify.ErrValidation, Message: message, Field: "reminderDate"}
}

// ParseBirthday parses a birthday given as MM-DD (or M-D) and validates it.
// 02-29 is accepted.
func ParseBirthday(raw string) (month, day int, err error) {
	m, d, ok := strings.Cut(strings.TrimSpace(raw), "-")
	if ok {
		month, err = strconv.Atoi(m)
		if err == nil {
			day, err = strconv.Atoi(d)
		}
	}
	if !ok || err != nil {
		return 0, 0, &listify.Error{
			Err:     listify.ErrValidation,
			Message: fmt.Sprintf("invalid birthday %q (use MM-DD)", raw),
			Field:   "birthday",
		}
	}
	if err := listify.ValidateBirthday(month, day); err != nil {
		return 0, 0, err
	}
	return month, day, nil
}
