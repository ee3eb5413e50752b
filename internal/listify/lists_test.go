package listify_test

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"listify/internal/listify"
	"listify/internal/testutil"
)

func TestStore_GetLists_Bootstrap(t *testing.T) {
	f := testutil.NewFixture()

	first := f.Store.GetLists()
	if len(first) == 0 {
		t.Fatal("GetLists() on empty storage returned no lists")
	}
	if !reflect.DeepEqual(first, listify.DefaultLists()) {
		t.Errorf("GetLists() = %+v, want defaults", first)
	}

	second := f.Store.GetLists()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("second GetLists() = %+v, want %+v", second, first)
	}
	if got := f.Records.Puts(listify.ListsKey); got != 1 {
		t.Errorf("lists written %d times, want 1", got)
	}
}

func TestStore_GetLists_ReadFailure(t *testing.T) {
	f := testutil.NewFixture()
	f.Records.FailReads(true)

	if got := f.Store.GetLists(); len(got) != 0 {
		t.Errorf("GetLists() = %+v, want empty on read failure", got)
	}
	if got := f.Records.Puts(listify.ListsKey); got != 0 {
		t.Errorf("defaults written %d times over unreadable collection, want 0", got)
	}
}

func TestStore_AddList(t *testing.T) {
	tests := []struct {
		name    string
		list    string
		color   string
		wantErr error
	}{
		{name: "new list", list: "Groceries", color: "#FF0000"},
		{name: "default color", list: "Errands"},
		{name: "empty name", list: "  ", wantErr: listify.ErrValidation},
		{name: "duplicate", list: "Work", wantErr: listify.ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := testutil.NewFixture()

			l, err := f.Store.AddList(tt.list, tt.color)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("AddList() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("AddList() error = %v", err)
			}

			wantColor := tt.color
			if wantColor == "" {
				wantColor = listify.DefaultListColor
			}
			if l.Color != wantColor {
				t.Errorf("Color = %q, want %q", l.Color, wantColor)
			}
			lists := f.Store.GetLists()
			if lists[len(lists)-1].Name != tt.list {
				t.Errorf("last list = %q, want %q", lists[len(lists)-1].Name, tt.list)
			}
		})
	}
}

func TestStore_UpdateList(t *testing.T) {
	t.Run("rename cascades to notes", func(t *testing.T) {
		f := testutil.NewFixture()
		a, _ := f.Store.AddNote("a", "Work")
		b, _ := f.Store.AddNote("b", "Work")
		c, _ := f.Store.AddNote("c", "Personal")
		f.Clock.Advance(time.Minute)

		if err := f.Store.UpdateList("Work", "Office", "#000000"); err != nil {
			t.Fatalf("UpdateList() error = %v", err)
		}

		for _, l := range f.Store.GetLists() {
			if l.Name == "Work" {
				t.Error("lists still contain Work")
			}
			if l.Name == "Office" && l.Color != "#000000" {
				t.Errorf("Office color = %q, want %q", l.Color, "#000000")
			}
		}
		for _, id := range []string{a.ID, b.ID} {
			n, _ := f.Store.GetNote(id)
			if n.ListName != "Office" {
				t.Errorf("note %s ListName = %q, want Office", id, n.ListName)
			}
			if !n.UpdatedAt.After(a.UpdatedAt) {
				t.Errorf("note %s UpdatedAt not refreshed", id)
			}
		}
		if n, _ := f.Store.GetNote(c.ID); n.ListName != "Personal" {
			t.Errorf("unrelated note moved to %q", n.ListName)
		}
	})

	t.Run("recolor only", func(t *testing.T) {
		f := testutil.NewFixture()
		f.Store.AddNote("a", "Work")
		notesWrites := f.Records.Puts(listify.NotesKey)

		if err := f.Store.UpdateList("Work", "Work", "#123456"); err != nil {
			t.Fatalf("UpdateList() error = %v", err)
		}
		if f.Records.Puts(listify.NotesKey) != notesWrites {
			t.Error("notes rewritten by a recolor")
		}
	})

	t.Run("rename onto existing list", func(t *testing.T) {
		f := testutil.NewFixture()
		if err := f.Store.UpdateList("Work", "Personal", ""); !errors.Is(err, listify.ErrConflict) {
			t.Errorf("UpdateList() error = %v, want ErrConflict", err)
		}
	})

	t.Run("unknown list", func(t *testing.T) {
		f := testutil.NewFixture()
		if err := f.Store.UpdateList("Nope", "Other", ""); !errors.Is(err, listify.ErrNotFound) {
			t.Errorf("UpdateList() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("failed note write restores lists", func(t *testing.T) {
		f := testutil.NewFixture()
		f.Store.AddNote("a", "Work")
		before := f.Store.GetLists()

		// Fail only the notes write: let the lists write through, then fail.
		failing := &failAfter{FaultyRecordStore: f.Records, key: listify.NotesKey}
		s := listify.NewStore(failing, f.Notifier, listify.NewNopLogger(), f.Clock, testutil.NewStubIDGenerator())

		if err := s.UpdateList("Work", "Office", ""); err == nil {
			t.Fatal("UpdateList() expected error when notes write fails")
		}
		if got := f.Store.GetLists(); !reflect.DeepEqual(got, before) {
			t.Errorf("lists = %+v after failed rename, want %+v", got, before)
		}
	})
}

// failAfter fails every Put to key.
type failAfter struct {
	*testutil.FaultyRecordStore
	key string
}

func (f *failAfter) Put(key string, data []byte) error {
	if key == f.key {
		return testutil.ErrInjected
	}
	return f.FaultyRecordStore.Put(key, data)
}

func TestStore_ToggleListArchive(t *testing.T) {
	f := testutil.NewFixture()

	l, err := f.Store.ToggleListArchive("Work")
	if err != nil {
		t.Fatalf("ToggleListArchive() error = %v", err)
	}
	if !l.Archived {
		t.Error("Archived = false after first toggle")
	}
	l, _ = f.Store.ToggleListArchive("Work")
	if l.Archived {
		t.Error("Archived = true after second toggle")
	}

	if _, err := f.Store.ToggleListArchive("Nope"); !errors.Is(err, listify.ErrNotFound) {
		t.Errorf("ToggleListArchive(Nope) error = %v, want ErrNotFound", err)
	}
}

func TestStore_DeleteList(t *testing.T) {
	t.Run("cascades notes and cancels alarms", func(t *testing.T) {
		f := testutil.NewFixture()
		a, _ := f.Store.AddNote("a", "Work")
		f.Store.AddNote("b", "Work")
		keep, _ := f.Store.AddNote("c", "Personal")
		withAlarm, _ := f.Scheduler.SetReminder(a.ID, f.Clock.Now().Add(time.Hour))

		n, err := f.Store.DeleteList("Work")
		if err != nil {
			t.Fatalf("DeleteList() error = %v", err)
		}
		if n != 2 {
			t.Errorf("DeleteList() = %d, want 2", n)
		}

		if f.Notifier.Pending(withAlarm.NotificationID) {
			t.Error("alarm of deleted note still live")
		}
		notes := f.Store.GetNotes()
		if len(notes) != 1 || notes[0].ID != keep.ID {
			t.Errorf("GetNotes() = %+v, want only %s", notes, keep.ID)
		}
		for _, l := range f.Store.GetLists() {
			if l.Name == "Work" {
				t.Error("Work still in lists")
			}
		}
	})

	t.Run("unknown list", func(t *testing.T) {
		f := testutil.NewFixture()
		if _, err := f.Store.DeleteList("Nope"); !errors.Is(err, listify.ErrNotFound) {
			t.Errorf("DeleteList() error = %v, want ErrNotFound", err)
		}
	})
}

func TestStore_GetActiveLists(t *testing.T) {
	f := testutil.NewFixture()
	f.Store.ToggleListArchive("Shopping")

	var names []string
	for _, l := range f.Store.GetActiveLists() {
		names = append(names, l.Name)
	}
	want := []string{"Personal", "Work"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("GetActiveLists() = %v, want %v", names, want)
	}
}

func TestStore_ListSummaries(t *testing.T) {
	f := testutil.NewFixture()
	f.Store.AddNote("a", "Work")
	f.Store.AddNote("b", "Work")
	f.Store.AddNote("c", "Personal")

	counts := make(map[string]int)
	for _, s := range f.Store.ListSummaries() {
		counts[s.Name] = s.Count
	}
	if counts["Work"] != 2 || counts["Personal"] != 1 || counts["Shopping"] != 0 {
		t.Errorf("ListSummaries() counts = %v", counts)
	}
}
