package listify

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Store owns the persisted Notes and Lists collections.
//
// Every mutation is a whole-collection read, in-memory modify, and
// whole-collection write. Each collection is guarded by its own mutex so
// mutations issued from the same process never interleave. When both are
// needed, lists are locked before notes.
//
// Reads fail soft: a storage or decoding error is logged and an empty result
// returned. Mutations return the error instead, and never write a collection
// they failed to read.
type Store struct {
	records  RecordStore
	notifier Notifier
	logger   Logger
	clock    Clock
	idgen    IDGenerator

	listsMu sync.Mutex
	notesMu sync.Mutex
}

// NewStore creates a Store with the provided dependencies.
// notifier is used to cancel alarms held by notes that are deleted or whose
// reminder is moved.
func NewStore(records RecordStore, notifier Notifier, logger Logger, clock Clock, idgen IDGenerator) *Store {
	return &Store{
		records:  records,
		notifier: notifier,
		logger:   logger,
		clock:    clock,
		idgen:    idgen,
	}
}

// GetNotes returns every stored note. Returns an empty slice if nothing has
// been stored yet or the collection cannot be read.
func (s *Store) GetNotes() []Note {
	s.notesMu.Lock()
	defer s.notesMu.Unlock()

	notes, err := s.loadNotes()
	if err != nil {
		s.logger.Error("loading notes", "error", err)
		return []Note{}
	}
	return notes
}

// GetNote returns the note with the given id.
func (s *Store) GetNote(id string) (*Note, error) {
	s.notesMu.Lock()
	defer s.notesMu.Unlock()

	notes, err := s.loadNotes()
	if err != nil {
		return nil, err
	}
	i := indexOfNote(notes, id)
	if i < 0 {
		return nil, notFound("note", id)
	}
	return &notes[i], nil
}

// SaveNotes replaces the whole notes collection.
func (s *Store) SaveNotes(notes []Note) error {
	s.notesMu.Lock()
	defer s.notesMu.Unlock()
	return s.writeNotes(notes)
}

// AddNote creates a new, not yet completed note in listName.
func (s *Store) AddNote(text, listName string) (*Note, error) {
	return s.addNote(Note{Text: text, ListName: listName})
}

func (s *Store) addNote(n Note) (*Note, error) {
	n.Text = strings.TrimSpace(n.Text)
	n.ListName = strings.TrimSpace(n.ListName)
	if n.Text == "" {
		return nil, validationFailed("text", "note text must not be empty")
	}
	if n.ListName == "" {
		return nil, validationFailed("listName", "list name must not be empty")
	}

	s.notesMu.Lock()
	defer s.notesMu.Unlock()

	notes, err := s.loadNotes()
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	n.ID = s.idgen.New()
	n.Completed = false
	n.CreatedAt = now
	n.UpdatedAt = now

	notes = append(notes, n)
	if err := s.writeNotes(notes); err != nil {
		return nil, err
	}

	s.logger.Debug("note added", "id", n.ID, "list", n.ListName)
	return &n, nil
}

// UpdateNote merges u onto the note with the given id and refreshes its
// UpdatedAt. Updating an id that does not exist is a no-op.
//
// If the update moves or clears the reminder while the note holds an alarm
// handle, that alarm is cancelled before the new state is written. The
// handle is dropped unless u supplies a replacement.
func (s *Store) UpdateNote(id string, u NoteUpdate) error {
	_, err := s.modifyNote(id, func(n *Note) (bool, error) {
		if err := u.validate(n); err != nil {
			return false, err
		}
		if u.changesReminder(n) && n.NotificationID != "" {
			if u.NotificationID == nil || *u.NotificationID != n.NotificationID {
				s.cancelAlarm(n.ID, n.NotificationID)
			}
			n.NotificationID = ""
		}
		u.apply(n)
		return true, nil
	})
	return err
}

// DeleteNote removes the note with the given id, cancelling its alarm first.
// Deleting an id that does not exist is a no-op.
func (s *Store) DeleteNote(id string) error {
	s.notesMu.Lock()
	defer s.notesMu.Unlock()

	notes, err := s.loadNotes()
	if err != nil {
		return err
	}
	i := indexOfNote(notes, id)
	if i < 0 {
		return nil
	}

	if h := notes[i].NotificationID; h != "" {
		s.cancelAlarm(id, h)
	}
	notes = append(notes[:i], notes[i+1:]...)
	if err := s.writeNotes(notes); err != nil {
		return err
	}

	s.logger.Debug("note deleted", "id", id)
	return nil
}

// ClearNotes deletes every note and cancels every alarm they held.
func (s *Store) ClearNotes() error {
	s.notesMu.Lock()
	defer s.notesMu.Unlock()

	notes, err := s.loadNotes()
	if err != nil {
		return err
	}
	for _, n := range notes {
		if n.NotificationID != "" {
			s.cancelAlarm(n.ID, n.NotificationID)
		}
	}
	if err := s.writeNotes(nil); err != nil {
		return err
	}

	s.logger.Info("all notes cleared", "count", len(notes))
	return nil
}

// modifyNote runs fn against the note with the given id under the notes
// lock. The collection is written only if fn reports a change, and the
// note's UpdatedAt is refreshed when it is. Returns the resulting note, or
// nil if there is no note with that id.
func (s *Store) modifyNote(id string, fn func(n *Note) (bool, error)) (*Note, error) {
	s.notesMu.Lock()
	defer s.notesMu.Unlock()

	notes, err := s.loadNotes()
	if err != nil {
		return nil, err
	}
	i := indexOfNote(notes, id)
	if i < 0 {
		s.logger.Debug("note not found", "id", id)
		return nil, nil
	}

	n := notes[i]
	changed, err := fn(&n)
	if err != nil {
		return nil, err
	}
	if !changed {
		return &n, nil
	}

	n.UpdatedAt = s.touch(n.UpdatedAt)
	notes[i] = n
	if err := s.writeNotes(notes); err != nil {
		return nil, err
	}
	return &n, nil
}

// modifyNotes runs fn against the whole collection under the notes lock and
// writes it back if fn reports a change.
func (s *Store) modifyNotes(fn func(notes []Note) (bool, error)) error {
	s.notesMu.Lock()
	defer s.notesMu.Unlock()

	notes, err := s.loadNotes()
	if err != nil {
		return err
	}
	changed, err := fn(notes)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return s.writeNotes(notes)
}

// touch returns the timestamp to store as UpdatedAt for a note last updated
// at prev. The result is always strictly after prev.
func (s *Store) touch(prev time.Time) time.Time {
	now := s.clock.Now()
	if !now.After(prev) {
		now = prev.Add(time.Nanosecond)
	}
	return now
}

// cancelAlarm cancels a notifier handle. Failures are logged and ignored.
func (s *Store) cancelAlarm(noteID, handle string) {
	if err := s.notifier.Cancel(handle); err != nil {
		s.logger.Warn("cancelling alarm", "note", noteID, "handle", handle, "error", err)
		return
	}
	s.logger.Debug("alarm cancelled", "note", noteID, "handle", handle)
}

// loadNotes reads and decodes the notes collection. Callers must hold notesMu.
func (s *Store) loadNotes() ([]Note, error) {
	data, err := s.records.Get(NotesKey)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return []Note{}, nil
		}
		return nil, fmt.Errorf("reading notes: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []Note{}, nil
	}

	var notes []Note
	if err := json.Unmarshal(data, &notes); err != nil {
		return nil, fmt.Errorf("decoding notes: %w", err)
	}
	if notes == nil {
		notes = []Note{}
	}
	return notes, nil
}

// writeNotes encodes and stores the notes collection. Callers must hold notesMu.
func (s *Store) writeNotes(notes []Note) error {
	if notes == nil {
		notes = []Note{}
	}
	data, err := json.Marshal(notes)
	if err != nil {
		return fmt.Errorf("encoding notes: %w", err)
	}
	if err := s.records.Put(NotesKey, data); err != nil {
		return fmt.Errorf("writing notes: %w", err)
	}
	return nil
}
