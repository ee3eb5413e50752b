package listify

import (
	"sort"
	"strings"
	"time"
)

// DefaultRecentLimit is used by the recent-notes queries when limit <= 0.
const DefaultRecentLimit = 5

// GetRecentNotesIncludingArchived returns up to limit notes, most recently
// updated first, regardless of list.
func (s *Store) GetRecentNotesIncludingArchived(limit int) []Note {
	return mostRecent(s.GetNotes(), limit)
}

// GetRecentNotes is like GetRecentNotesIncludingArchived but skips notes in
// archived lists and birthday notes.
func (s *Store) GetRecentNotes(limit int) []Note {
	archived := s.archivedListNames()
	notes := filterNotes(s.GetNotes(), func(n *Note) bool {
		return !archived[n.ListName] && n.ListName != BirthdaysList
	})
	return mostRecent(notes, limit)
}

// GetActionNeededNotes returns the non-completed notes whose reminder either
// already passed and was flagged expired, or falls on the current day.
// Results are ordered by reminder time.
func (s *Store) GetActionNeededNotes() []Note {
	now := s.clock.Now()
	today := startOfDay(now)
	tomorrow := today.AddDate(0, 0, 1)

	notes := filterNotes(s.GetNotes(), func(n *Note) bool {
		if n.ReminderDate == nil || n.Completed {
			return false
		}
		at := *n.ReminderDate
		if at.Before(now) && n.ReminderExpired {
			return true
		}
		return !at.Before(today) && at.Before(tomorrow)
	})
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].ReminderDate.Before(*notes[j].ReminderDate)
	})
	return notes
}

// GetPendingReminders returns non-completed notes with a reminder that has
// not been flagged expired, soonest first.
func (s *Store) GetPendingReminders() []Note {
	notes := filterNotes(s.GetNotes(), func(n *Note) bool {
		return n.ReminderDate != nil && !n.Completed && !n.ReminderExpired
	})
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].ReminderDate.Before(*notes[j].ReminderDate)
	})
	return notes
}

// NotesInList returns the notes that belong to the named list, in storage order.
func (s *Store) NotesInList(name string) []Note {
	return filterNotes(s.GetNotes(), func(n *Note) bool {
		return n.ListName == name
	})
}

// SearchNotes returns notes whose text contains query, ignoring case.
// Notes in archived lists are not searched. An empty query matches nothing.
func (s *Store) SearchNotes(query string) []Note {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return []Note{}
	}
	archived := s.archivedListNames()
	return filterNotes(s.GetNotes(), func(n *Note) bool {
		return !archived[n.ListName] && strings.Contains(strings.ToLower(n.Text), query)
	})
}

// GetActiveLists returns the lists that are not archived, excluding the
// birthdays list.
func (s *Store) GetActiveLists() []List {
	var active []List
	for _, l := range s.GetLists() {
		if !l.Archived && l.Name != BirthdaysList {
			active = append(active, l)
		}
	}
	return active
}

// ListSummaries returns every list along with its note count.
func (s *Store) ListSummaries() []ListSummary {
	lists := s.GetLists()
	counts := make(map[string]int)
	for _, n := range s.GetNotes() {
		counts[n.ListName]++
	}

	summaries := make([]ListSummary, len(lists))
	for i, l := range lists {
		summaries[i] = ListSummary{List: l, Count: counts[l.Name]}
	}
	return summaries
}

func (s *Store) archivedListNames() map[string]bool {
	archived := make(map[string]bool)
	for _, l := range s.GetLists() {
		if l.Archived {
			archived[l.Name] = true
		}
	}
	return archived
}

func filterNotes(notes []Note, keep func(n *Note) bool) []Note {
	out := []Note{}
	for i := range notes {
		if keep(&notes[i]) {
			out = append(out, notes[i])
		}
	}
	return out
}

func mostRecent(notes []Note, limit int) []Note {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].UpdatedAt.After(notes[j].UpdatedAt)
	})
	if len(notes) > limit {
		notes = notes[:limit]
	}
	return notes
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
