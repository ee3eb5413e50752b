package listify_test

import (
	"errors"
	"testing"
	"time"

	"listify/internal/listify"
	"listify/internal/testutil"
)

func TestStore_AddNote(t *testing.T) {
	t.Run("creates note with fresh id and timestamps", func(t *testing.T) {
		f := testutil.NewFixture()

		n, err := f.Store.AddNote("  buy milk ", "Shopping")
		if err != nil {
			t.Fatalf("AddNote() error = %v", err)
		}
		if n.ID != "note-1" {
			t.Errorf("ID = %q, want %q", n.ID, "note-1")
		}
		if n.Text != "buy milk" {
			t.Errorf("Text = %q, want %q", n.Text, "buy milk")
		}
		if n.Completed {
			t.Error("Completed = true, want false")
		}
		if !n.CreatedAt.Equal(f.Clock.Now()) || !n.UpdatedAt.Equal(n.CreatedAt) {
			t.Errorf("CreatedAt = %v, UpdatedAt = %v, want both %v", n.CreatedAt, n.UpdatedAt, f.Clock.Now())
		}

		notes := f.Store.GetNotes()
		if len(notes) != 1 || notes[0].ID != n.ID {
			t.Fatalf("GetNotes() = %+v, want the added note", notes)
		}
	})

	t.Run("rejects empty text", func(t *testing.T) {
		f := testutil.NewFixture()

		for _, text := range []string{"", "   ", "\t\n"} {
			_, err := f.Store.AddNote(text, "Work")
			if !errors.Is(err, listify.ErrValidation) {
				t.Errorf("AddNote(%q) error = %v, want ErrValidation", text, err)
			}
		}
		if got := f.Store.GetNotes(); len(got) != 0 {
			t.Errorf("GetNotes() = %d notes after rejected adds, want 0", len(got))
		}
	})

	t.Run("rejects empty list name", func(t *testing.T) {
		f := testutil.NewFixture()

		_, err := f.Store.AddNote("text", " ")
		var e *listify.Error
		if !errors.As(err, &e) || e.Field != "listName" {
			t.Errorf("AddNote() error = %v, want validation error on listName", err)
		}
	})

	t.Run("write failure is returned and nothing stored", func(t *testing.T) {
		f := testutil.NewFixture()
		f.Records.FailWrites(true)

		if _, err := f.Store.AddNote("text", "Work"); !errors.Is(err, testutil.ErrInjected) {
			t.Fatalf("AddNote() error = %v, want injected failure", err)
		}
		f.Records.FailWrites(false)
		if got := f.Store.GetNotes(); len(got) != 0 {
			t.Errorf("GetNotes() = %d notes, want 0", len(got))
		}
	})
}

func TestStore_GetNotes_FailsSoft(t *testing.T) {
	t.Run("read failure returns empty", func(t *testing.T) {
		f := testutil.NewFixture()
		if _, err := f.Store.AddNote("a", "Work"); err != nil {
			t.Fatalf("AddNote() error = %v", err)
		}
		f.Records.FailReads(true)

		got := f.Store.GetNotes()
		if got == nil || len(got) != 0 {
			t.Errorf("GetNotes() = %v, want empty non-nil slice", got)
		}
	})

	t.Run("corrupt record returns empty", func(t *testing.T) {
		f := testutil.NewFixture()
		if err := f.Records.Put(listify.NotesKey, []byte("{not json")); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		if got := f.Store.GetNotes(); len(got) != 0 {
			t.Errorf("GetNotes() = %v, want empty", got)
		}
	})

	t.Run("mutation after failed read does not overwrite", func(t *testing.T) {
		f := testutil.NewFixture()
		if _, err := f.Store.AddNote("keep me", "Work"); err != nil {
			t.Fatalf("AddNote() error = %v", err)
		}
		writes := f.Records.Puts(listify.NotesKey)

		f.Records.FailReads(true)
		if _, err := f.Store.AddNote("new", "Work"); err == nil {
			t.Fatal("AddNote() with failing read expected error, got nil")
		}
		if err := f.Store.DeleteNote("note-1"); err == nil {
			t.Fatal("DeleteNote() with failing read expected error, got nil")
		}
		f.Records.FailReads(false)

		if got := f.Records.Puts(listify.NotesKey); got != writes {
			t.Errorf("notes written %d times after failed reads, want %d", got, writes)
		}
		if got := f.Store.GetNotes(); len(got) != 1 || got[0].Text != "keep me" {
			t.Errorf("GetNotes() = %+v, want the original note", got)
		}
	})
}

func TestStore_GetNote(t *testing.T) {
	f := testutil.NewFixture()
	added, _ := f.Store.AddNote("a", "Work")

	got, err := f.Store.GetNote(added.ID)
	if err != nil {
		t.Fatalf("GetNote() error = %v", err)
	}
	if got.Text != "a" {
		t.Errorf("GetNote().Text = %q, want %q", got.Text, "a")
	}

	if _, err := f.Store.GetNote("missing"); !errors.Is(err, listify.ErrNotFound) {
		t.Errorf("GetNote(missing) error = %v, want ErrNotFound", err)
	}
}

func TestStore_UpdateNote(t *testing.T) {
	t.Run("completing refreshes updatedAt", func(t *testing.T) {
		f := testutil.NewFixture()
		n, _ := f.Store.AddNote("a", "Work")

		f.Clock.Advance(time.Minute)
		if err := f.Store.UpdateNote(n.ID, listify.NoteUpdate{Completed: listify.Ptr(true)}); err != nil {
			t.Fatalf("UpdateNote() error = %v", err)
		}

		got, _ := f.Store.GetNote(n.ID)
		if !got.Completed {
			t.Error("Completed = false, want true")
		}
		if !got.UpdatedAt.After(n.UpdatedAt) {
			t.Errorf("UpdatedAt = %v, want after %v", got.UpdatedAt, n.UpdatedAt)
		}
		if got.Text != "a" || got.ListName != "Work" {
			t.Errorf("untouched fields changed: %+v", got)
		}
	})

	t.Run("updatedAt strictly increases without clock movement", func(t *testing.T) {
		f := testutil.NewFixture()
		n, _ := f.Store.AddNote("a", "Work")

		prev := n.UpdatedAt
		for i := 0; i < 3; i++ {
			if err := f.Store.UpdateNote(n.ID, listify.NoteUpdate{Text: listify.Ptr("b")}); err != nil {
				t.Fatalf("UpdateNote() error = %v", err)
			}
			got, _ := f.Store.GetNote(n.ID)
			if !got.UpdatedAt.After(prev) {
				t.Fatalf("UpdatedAt = %v, want after %v", got.UpdatedAt, prev)
			}
			prev = got.UpdatedAt
		}
	})

	t.Run("missing id is a no-op", func(t *testing.T) {
		f := testutil.NewFixture()
		f.Store.AddNote("a", "Work")
		writes := f.Records.Puts(listify.NotesKey)

		if err := f.Store.UpdateNote("missing", listify.NoteUpdate{Completed: listify.Ptr(true)}); err != nil {
			t.Errorf("UpdateNote(missing) error = %v, want nil", err)
		}
		if got := f.Records.Puts(listify.NotesKey); got != writes {
			t.Errorf("notes written on no-op update")
		}
	})

	t.Run("rejects empty text", func(t *testing.T) {
		f := testutil.NewFixture()
		n, _ := f.Store.AddNote("a", "Work")

		err := f.Store.UpdateNote(n.ID, listify.NoteUpdate{Text: listify.Ptr(" ")})
		if !errors.Is(err, listify.ErrValidation) {
			t.Errorf("UpdateNote() error = %v, want ErrValidation", err)
		}
	})

	t.Run("changing reminder cancels held alarm", func(t *testing.T) {
		f := testutil.NewFixture()
		n, _ := f.Store.AddNote("a", "Work")
		withAlarm, err := f.Scheduler.SetReminder(n.ID, f.Clock.Now().Add(time.Hour))
		if err != nil {
			t.Fatalf("SetReminder() error = %v", err)
		}
		old := withAlarm.NotificationID

		later := f.Clock.Now().Add(2 * time.Hour)
		if err := f.Store.UpdateNote(n.ID, listify.NoteUpdate{ReminderDate: &later}); err != nil {
			t.Fatalf("UpdateNote() error = %v", err)
		}

		if f.Notifier.Pending(old) {
			t.Errorf("alarm %s still live after reminder moved", old)
		}
		got, _ := f.Store.GetNote(n.ID)
		if got.NotificationID != "" {
			t.Errorf("NotificationID = %q, want cleared", got.NotificationID)
		}
		if !got.ReminderDate.Equal(later) {
			t.Errorf("ReminderDate = %v, want %v", got.ReminderDate, later)
		}
	})

	t.Run("supplied handle replaces held one", func(t *testing.T) {
		f := testutil.NewFixture()
		n, _ := f.Store.AddNote("a", "Work")
		withAlarm, _ := f.Scheduler.SetReminder(n.ID, f.Clock.Now().Add(time.Hour))

		later := f.Clock.Now().Add(2 * time.Hour)
		err := f.Store.UpdateNote(n.ID, listify.NoteUpdate{
			ReminderDate:   &later,
			NotificationID: listify.Ptr("external-7"),
		})
		if err != nil {
			t.Fatalf("UpdateNote() error = %v", err)
		}

		if f.Notifier.Pending(withAlarm.NotificationID) {
			t.Error("old alarm still live")
		}
		got, _ := f.Store.GetNote(n.ID)
		if got.NotificationID != "external-7" {
			t.Errorf("NotificationID = %q, want %q", got.NotificationID, "external-7")
		}
	})

	t.Run("unrelated change keeps alarm", func(t *testing.T) {
		f := testutil.NewFixture()
		n, _ := f.Store.AddNote("a", "Work")
		withAlarm, _ := f.Scheduler.SetReminder(n.ID, f.Clock.Now().Add(time.Hour))

		if err := f.Store.UpdateNote(n.ID, listify.NoteUpdate{Text: listify.Ptr("b")}); err != nil {
			t.Fatalf("UpdateNote() error = %v", err)
		}
		if !f.Notifier.Pending(withAlarm.NotificationID) {
			t.Error("alarm cancelled by a text-only update")
		}
	})

	t.Run("clear reminder cancels alarm", func(t *testing.T) {
		f := testutil.NewFixture()
		n, _ := f.Store.AddNote("a", "Work")
		withAlarm, _ := f.Scheduler.SetReminder(n.ID, f.Clock.Now().Add(time.Hour))

		if err := f.Store.UpdateNote(n.ID, listify.NoteUpdate{ClearReminder: true}); err != nil {
			t.Fatalf("UpdateNote() error = %v", err)
		}
		if f.Notifier.Pending(withAlarm.NotificationID) {
			t.Error("alarm still live after ClearReminder")
		}
		got, _ := f.Store.GetNote(n.ID)
		if got.HasReminder() || got.NotificationID != "" {
			t.Errorf("reminder not cleared: %+v", got)
		}
	})
}

func TestStore_DeleteNote(t *testing.T) {
	t.Run("removes note and cancels alarm", func(t *testing.T) {
		f := testutil.NewFixture()
		a, _ := f.Store.AddNote("a", "Work")
		b, _ := f.Store.AddNote("b", "Work")
		withAlarm, _ := f.Scheduler.SetReminder(a.ID, f.Clock.Now().Add(time.Hour))

		if err := f.Store.DeleteNote(a.ID); err != nil {
			t.Fatalf("DeleteNote() error = %v", err)
		}

		if f.Notifier.Pending(withAlarm.NotificationID) {
			t.Error("alarm still live after delete")
		}
		notes := f.Store.GetNotes()
		if len(notes) != 1 || notes[0].ID != b.ID {
			t.Errorf("GetNotes() = %+v, want only %s", notes, b.ID)
		}
	})

	t.Run("missing id is a no-op", func(t *testing.T) {
		f := testutil.NewFixture()
		if err := f.Store.DeleteNote("missing"); err != nil {
			t.Errorf("DeleteNote(missing) error = %v, want nil", err)
		}
	})
}

func TestStore_SaveNotes_RoundTrip(t *testing.T) {
	f := testutil.NewFixture()
	f.Store.AddNote("a", "Work")
	f.Clock.Advance(time.Hour)
	b, _ := f.Store.AddNote("b", "Personal")
	f.Scheduler.SetReminder(b.ID, f.Clock.Now().Add(time.Hour))

	loaded := f.Store.GetNotes()
	if err := f.Store.SaveNotes(loaded); err != nil {
		t.Fatalf("SaveNotes() error = %v", err)
	}
	again := f.Store.GetNotes()

	if len(again) != len(loaded) {
		t.Fatalf("len = %d, want %d", len(again), len(loaded))
	}
	for i := range loaded {
		want, got := loaded[i], again[i]
		if got.ID != want.ID || got.Text != want.Text || got.ListName != want.ListName || got.Completed != want.Completed {
			t.Errorf("note %d = %+v, want %+v", i, got, want)
		}
		if !got.CreatedAt.Equal(want.CreatedAt) || !got.UpdatedAt.Equal(want.UpdatedAt) {
			t.Errorf("note %d timestamps = %v/%v, want %v/%v", i, got.CreatedAt, got.UpdatedAt, want.CreatedAt, want.UpdatedAt)
		}
	}
	if again[1].ReminderDate == nil || !again[1].ReminderDate.Equal(*loaded[1].ReminderDate) {
		t.Errorf("ReminderDate = %v, want %v", again[1].ReminderDate, loaded[1].ReminderDate)
	}
}

func TestStore_ClearNotes(t *testing.T) {
	f := testutil.NewFixture()
	a, _ := f.Store.AddNote("a", "Work")
	b, _ := f.Store.AddNote("b", "Work")
	f.Scheduler.SetReminder(a.ID, f.Clock.Now().Add(time.Hour))
	f.Scheduler.SetReminder(b.ID, f.Clock.Now().Add(2*time.Hour))

	if err := f.Store.ClearNotes(); err != nil {
		t.Fatalf("ClearNotes() error = %v", err)
	}
	if got := f.Store.GetNotes(); len(got) != 0 {
		t.Errorf("GetNotes() = %d notes, want 0", len(got))
	}
	if live := f.Notifier.Live(); len(live) != 0 {
		t.Errorf("%d alarms still live after ClearNotes", len(live))
	}
}
