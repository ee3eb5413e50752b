package listify

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// DaysInMonth returns the number of days in month, counting February as 29
// so that leap-day birthdays can be recorded.
func DaysInMonth(month int) int {
	return time.Date(2024, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ValidateBirthday checks that month is 1-12 and day exists in that month.
func ValidateBirthday(month, day int) error {
	if month < 1 || month > 12 {
		return validationFailed("birthdayMonth", fmt.Sprintf("birthday month must be 1-12, got %d", month))
	}
	if last := DaysInMonth(month); day < 1 || day > last {
		return validationFailed("birthdayDay", fmt.Sprintf("birthday day must be 1-%d for %s, got %d", last, time.Month(month), day))
	}
	return nil
}

// AddBirthday stores a birthday note in the birthdays list.
func (s *Store) AddBirthday(name string, month, day int, image string) (*Note, error) {
	if strings.TrimSpace(name) == "" {
		return nil, validationFailed("text", "birthday name must not be empty")
	}
	if err := ValidateBirthday(month, day); err != nil {
		return nil, err
	}
	return s.addNote(Note{
		Text:          name,
		ListName:      BirthdaysList,
		BirthdayMonth: month,
		BirthdayDay:   day,
		BirthdayImage: image,
	})
}

// UpdateBirthday replaces the name, date and image of a birthday note.
func (s *Store) UpdateBirthday(id, name string, month, day int, image string) error {
	return s.UpdateNote(id, NoteUpdate{
		Text:          &name,
		BirthdayMonth: &month,
		BirthdayDay:   &day,
		BirthdayImage: &image,
	})
}

// UpcomingBirthday is a birthday note with its next occurrence.
type UpcomingBirthday struct {
	Note      Note      `yaml:",inline"`
	Next      time.Time `yaml:"next"`
	DaysUntil int       `yaml:"days_until"`
	ThisMonth bool      `yaml:"this_month"`
}

// NextBirthday returns the next date on or after the day of now that falls on
// month/day. A Feb 29 birthday falls on Feb 28 in non-leap years.
func NextBirthday(month, day int, now time.Time) time.Time {
	today := startOfDay(now)
	next := birthdayIn(today.Year(), month, day, now.Location())
	if next.Before(today) {
		next = birthdayIn(today.Year()+1, month, day, now.Location())
	}
	return next
}

func birthdayIn(year, month, day int, loc *time.Location) time.Time {
	if month == 2 && day == 29 && !isLeap(year) {
		day = 28
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// UpcomingBirthdays returns all birthday notes ordered by next occurrence.
func (s *Store) UpcomingBirthdays() []UpcomingBirthday {
	now := s.clock.Now()
	today := startOfDay(now)

	var upcoming []UpcomingBirthday
	for _, n := range s.NotesInList(BirthdaysList) {
		if !n.IsBirthday() {
			continue
		}
		next := NextBirthday(n.BirthdayMonth, n.BirthdayDay, now)
		upcoming = append(upcoming, UpcomingBirthday{
			Note:      n,
			Next:      next,
			DaysUntil: int(math.Round(next.Sub(today).Hours() / 24)),
			ThisMonth: time.Month(n.BirthdayMonth) == now.Month(),
		})
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].Next.Before(upcoming[j].Next)
	})
	return upcoming
}

// BirthdaysThisMonth returns the birthday notes that fall in the current month.
func (s *Store) BirthdaysThisMonth() []Note {
	month := int(s.clock.Now().Month())
	return filterNotes(s.NotesInList(BirthdaysList), func(n *Note) bool {
		return n.IsBirthday() && n.BirthdayMonth == month
	})
}
