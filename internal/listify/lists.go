package listify

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// GetLists returns every stored list. The first time the collection is read
// empty, DefaultLists are stored and returned. Returns an empty slice if the
// collection cannot be read.
func (s *Store) GetLists() []List {
	s.listsMu.Lock()
	defer s.listsMu.Unlock()

	lists, err := s.listsOrDefaults()
	if err != nil {
		s.logger.Error("loading lists", "error", err)
		return []List{}
	}
	return lists
}

// SaveLists replaces the whole lists collection.
func (s *Store) SaveLists(lists []List) error {
	s.listsMu.Lock()
	defer s.listsMu.Unlock()
	return s.writeLists(lists)
}

// AddList creates a new list. Names must be non-empty and unique.
func (s *Store) AddList(name, color string) (*List, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationFailed("name", "list name must not be empty")
	}
	if color == "" {
		color = DefaultListColor
	}

	s.listsMu.Lock()
	defer s.listsMu.Unlock()

	lists, err := s.listsOrDefaults()
	if err != nil {
		return nil, err
	}
	if indexOfList(lists, name) >= 0 {
		return nil, conflict("list", name)
	}

	l := List{Name: name, Color: color}
	lists = append(lists, l)
	if err := s.writeLists(lists); err != nil {
		return nil, err
	}

	s.logger.Debug("list added", "name", name)
	return &l, nil
}

// UpdateList renames and recolors the list called oldName. When the name
// changes, every note in the list is moved to newName in the same operation,
// so a rename never leaves notes pointing at a list that no longer exists.
func (s *Store) UpdateList(oldName, newName, color string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return validationFailed("name", "list name must not be empty")
	}

	s.listsMu.Lock()
	defer s.listsMu.Unlock()
	s.notesMu.Lock()
	defer s.notesMu.Unlock()

	lists, err := s.listsOrDefaults()
	if err != nil {
		return err
	}
	i := indexOfList(lists, oldName)
	if i < 0 {
		return notFound("list", oldName)
	}
	renamed := oldName != newName
	if renamed && indexOfList(lists, newName) >= 0 {
		return conflict("list", newName)
	}

	var notes []Note
	if renamed {
		if notes, err = s.loadNotes(); err != nil {
			return err
		}
	}

	previous := append([]List(nil), lists...)
	lists[i].Name = newName
	if color != "" {
		lists[i].Color = color
	}
	if err := s.writeLists(lists); err != nil {
		return err
	}
	if !renamed {
		return nil
	}

	moved := 0
	for j := range notes {
		if notes[j].ListName == oldName {
			notes[j].ListName = newName
			notes[j].UpdatedAt = s.touch(notes[j].UpdatedAt)
			moved++
		}
	}
	if moved > 0 {
		if err := s.writeNotes(notes); err != nil {
			if rbErr := s.writeLists(previous); rbErr != nil {
				s.logger.Error("restoring lists after failed rename", "error", rbErr)
			}
			return err
		}
	}

	s.logger.Info("list renamed", "from", oldName, "to", newName, "notes", moved)
	return nil
}

// ToggleListArchive flips the archived flag of the named list.
func (s *Store) ToggleListArchive(name string) (*List, error) {
	s.listsMu.Lock()
	defer s.listsMu.Unlock()

	lists, err := s.listsOrDefaults()
	if err != nil {
		return nil, err
	}
	i := indexOfList(lists, name)
	if i < 0 {
		return nil, notFound("list", name)
	}

	lists[i].Archived = !lists[i].Archived
	if err := s.writeLists(lists); err != nil {
		return nil, err
	}

	s.logger.Debug("list archive toggled", "name", name, "archived", lists[i].Archived)
	l := lists[i]
	return &l, nil
}

// DeleteList removes the named list together with every note in it.
// Alarms held by the removed notes are cancelled. Returns the number of
// notes deleted.
func (s *Store) DeleteList(name string) (int, error) {
	s.listsMu.Lock()
	defer s.listsMu.Unlock()
	s.notesMu.Lock()
	defer s.notesMu.Unlock()

	lists, err := s.listsOrDefaults()
	if err != nil {
		return 0, err
	}
	i := indexOfList(lists, name)
	if i < 0 {
		return 0, notFound("list", name)
	}
	notes, err := s.loadNotes()
	if err != nil {
		return 0, err
	}

	kept := make([]Note, 0, len(notes))
	var removed []Note
	for _, n := range notes {
		if n.ListName == name {
			removed = append(removed, n)
			continue
		}
		kept = append(kept, n)
	}

	if len(removed) > 0 {
		if err := s.writeNotes(kept); err != nil {
			return 0, err
		}
	}
	remaining := append(lists[:i:i], lists[i+1:]...)
	if err := s.writeLists(remaining); err != nil {
		if len(removed) > 0 {
			if rbErr := s.writeNotes(notes); rbErr != nil {
				s.logger.Error("restoring notes after failed list delete", "error", rbErr)
			}
		}
		return 0, err
	}

	for _, n := range removed {
		if n.NotificationID != "" {
			s.cancelAlarm(n.ID, n.NotificationID)
		}
	}

	s.logger.Info("list deleted", "name", name, "notes", len(removed))
	return len(removed), nil
}

// listsOrDefaults loads the lists collection, storing DefaultLists if it is
// empty. Callers must hold listsMu.
func (s *Store) listsOrDefaults() ([]List, error) {
	lists, err := s.loadLists()
	if err != nil {
		return nil, err
	}
	if len(lists) > 0 {
		return lists, nil
	}

	lists = DefaultLists()
	if err := s.writeLists(lists); err != nil {
		s.logger.Error("storing default lists", "error", err)
	} else {
		s.logger.Info("default lists created", "count", len(lists))
	}
	return lists, nil
}

// loadLists reads and decodes the lists collection. Callers must hold listsMu.
func (s *Store) loadLists() ([]List, error) {
	data, err := s.records.Get(ListsKey)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return []List{}, nil
		}
		return nil, fmt.Errorf("reading lists: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []List{}, nil
	}

	var lists []List
	if err := json.Unmarshal(data, &lists); err != nil {
		return nil, fmt.Errorf("decoding lists: %w", err)
	}
	if lists == nil {
		lists = []List{}
	}
	return lists, nil
}

// writeLists encodes and stores the lists collection. Callers must hold listsMu.
func (s *Store) writeLists(lists []List) error {
	if lists == nil {
		lists = []List{}
	}
	data, err := json.Marshal(lists)
	if err != nil {
		return fmt.Errorf("encoding lists: %w", err)
	}
	if err := s.records.Put(ListsKey, data); err != nil {
		return fmt.Errorf("writing lists: %w", err)
	}
	return nil
}
