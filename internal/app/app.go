package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"listify/internal/config"
	"listify/internal/encryption"
	"listify/internal/listify"
	"listify/internal/notify"
	"listify/internal/records"
)

// PassphraseFunc supplies the passphrase for encrypted storage. It is only
// called when the config enables encryption.
type PassphraseFunc func() (string, error)

// ListifyApp is the application layer between the CLI and the listify Store
// and Scheduler. It constructs all dependencies from config, exposes
// operations that accept raw strings from the command line, and releases
// storage, timers and the log file on Close.
type ListifyApp struct {
	cfg       *config.Config
	records   listify.RecordStore
	notifier  listify.Notifier
	store     *listify.Store
	scheduler *listify.Scheduler
	logger    listify.Logger
	clock     listify.Clock
	logFile   *os.File
	daemon    bool
	deferred  bool
}

// NewListifyApp creates a fully wired ListifyApp for a single CLI command.
// operation identifies the command being run and is written to every log
// line. With the timer backend, reminders set here are stored without an
// alarm and left for the daemon to register. The caller must call Close
// when done.
func NewListifyApp(cfg *config.Config, operation string, passphrase PassphraseFunc) (*ListifyApp, error) {
	return openApp(cfg, operation, passphrase, false)
}

// NewDaemonApp creates a ListifyApp for the long-lived daemon process, the
// only process that keeps in-process timers.
func NewDaemonApp(cfg *config.Config, passphrase PassphraseFunc) (*ListifyApp, error) {
	return openApp(cfg, "Daemon", passphrase, true)
}

func openApp(cfg *config.Config, operation string, passphrase PassphraseFunc, daemon bool) (*ListifyApp, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	opID := operation + "-" + time.Now().UTC().Format("20060102T150405Z")
	l, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: l}

	a, err := newListifyApp(cfg, passphrase, logger, listify.RealClock{}, listify.NewULIDGenerator(), daemon)
	if err != nil {
		logFile.Close()
		return nil, err
	}
	a.logFile = logFile
	return a, nil
}

// newListifyApp wires everything except the log file.
func newListifyApp(cfg *config.Config, passphrase PassphraseFunc, logger listify.Logger, clock listify.Clock, idgen listify.IDGenerator, daemon bool) (*ListifyApp, error) {
	rs, err := openRecords(cfg, passphrase)
	if err != nil {
		return nil, err
	}

	var notifier listify.Notifier
	deferred := !daemon && notify.InProcess(cfg.Notifier)
	if deferred {
		notifier = notify.NewDeferredNotifier()
	} else {
		notifier, err = notify.NewNotifierFromConfig(cfg.Notifier, clock, logger, notify.CommandDeliverer(cfg.Notifier.Command, logger))
		if err != nil {
			rs.Close()
			return nil, fmt.Errorf("creating notifier: %w", err)
		}
	}

	store := listify.NewStore(rs, notifier, logger, clock, idgen)
	return &ListifyApp{
		cfg:       cfg,
		records:   rs,
		notifier:  notifier,
		store:     store,
		scheduler: listify.NewScheduler(store, notifier, logger, clock),
		logger:    logger,
		clock:     clock,
		daemon:    daemon,
		deferred:  deferred,
	}, nil
}

// openRecords creates the configured RecordStore and, when storage is
// encrypted, seals it and unlocks it with the passphrase.
func openRecords(cfg *config.Config, passphrase PassphraseFunc) (listify.RecordStore, error) {
	rs, err := records.NewRecordStoreFromConfig(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("creating record store: %w", err)
	}
	if !cfg.Storage.Encrypted {
		return rs, nil
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		rs.Close()
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}
	if !enc.IsConfigured() {
		rs.Close()
		return nil, fmt.Errorf("storage is encrypted but no keys exist: run `listify config init --encrypt`")
	}
	if passphrase == nil {
		rs.Close()
		return nil, fmt.Errorf("storage is encrypted and no passphrase was provided")
	}

	pass, err := passphrase()
	if err != nil {
		rs.Close()
		return nil, fmt.Errorf("reading passphrase: %w", err)
	}
	sealed := records.NewSealedRecordStore(rs, enc, nil)
	if err := sealed.Unlock(pass); err != nil {
		rs.Close()
		return nil, err
	}
	return sealed, nil
}

// SetupEncryption generates the key pair named by cfg.Encryption, protecting
// the private key with passphrase. It fails if keys already exist.
func SetupEncryption(cfg *config.Config, passphrase string) error {
	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return fmt.Errorf("creating encryptor: %w", err)
	}
	if err := enc.Setup(passphrase); err != nil {
		return fmt.Errorf("setting up encryption: %w", err)
	}
	return nil
}

// Store exposes the underlying Store for read-only queries.
func (a *ListifyApp) Store() *listify.Store {
	return a.store
}

// Now returns the current time from the app clock.
func (a *ListifyApp) Now() time.Time {
	return a.clock.Now()
}

// AddNote adds a note to listName. The list must exist.
func (a *ListifyApp) AddNote(text, listName string) (*listify.Note, error) {
	if err := a.requireList(listName); err != nil {
		return nil, err
	}
	return a.store.AddNote(text, listName)
}

// Notes returns the notes in listName, or every note when listName is empty.
// Completed notes are left out unless all is set.
func (a *ListifyApp) Notes(listName string, all bool) []listify.Note {
	var notes []listify.Note
	if listName == "" {
		notes = a.store.GetNotes()
	} else {
		notes = a.store.NotesInList(listName)
	}
	if all {
		return notes
	}

	open := make([]listify.Note, 0, len(notes))
	for _, n := range notes {
		if !n.Completed {
			open = append(open, n)
		}
	}
	return open
}

// SetCompleted marks the note done or not done.
func (a *ListifyApp) SetCompleted(id string, done bool) error {
	if _, err := a.store.GetNote(id); err != nil {
		return err
	}
	return a.store.UpdateNote(id, listify.NoteUpdate{Completed: &done})
}

// EditNote changes a note's text and list. Empty values are left unchanged.
func (a *ListifyApp) EditNote(id, text, listName string) (*listify.Note, error) {
	if _, err := a.store.GetNote(id); err != nil {
		return nil, err
	}

	var u listify.NoteUpdate
	if text != "" {
		u.Text = &text
	}
	if listName != "" {
		if err := a.requireList(listName); err != nil {
			return nil, err
		}
		u.ListName = &listName
	}
	if err := a.store.UpdateNote(id, u); err != nil {
		return nil, err
	}
	return a.store.GetNote(id)
}

// DeleteNote removes a note and cancels its alarm.
func (a *ListifyApp) DeleteNote(id string) error {
	if _, err := a.store.GetNote(id); err != nil {
		return err
	}
	return a.store.DeleteNote(id)
}

// ClearNotes deletes every note.
func (a *ListifyApp) ClearNotes() error {
	return a.store.ClearNotes()
}

// Search returns notes whose text contains query.
func (a *ListifyApp) Search(query string) []listify.Note {
	return a.store.SearchNotes(query)
}

// Recent returns the most recently updated notes. Notes in archived lists
// are included only when includeArchived is set.
func (a *ListifyApp) Recent(limit int, includeArchived bool) []listify.Note {
	if includeArchived {
		return a.store.GetRecentNotesIncludingArchived(limit)
	}
	return a.store.GetRecentNotes(limit)
}

// ActionNeeded returns notes whose reminder is due today or already expired.
func (a *ListifyApp) ActionNeeded() []listify.Note {
	return a.store.GetActionNeededNotes()
}

// Lists returns every list with its note count.
func (a *ListifyApp) Lists() []listify.ListSummary {
	return a.store.ListSummaries()
}

// AddList creates a list.
func (a *ListifyApp) AddList(name, color string) (*listify.List, error) {
	return a.store.AddList(name, color)
}

// RenameList renames a list and moves its notes with it. An empty color
// keeps the current one.
func (a *ListifyApp) RenameList(oldName, newName, color string) error {
	return a.store.UpdateList(oldName, newName, color)
}

// ToggleArchive archives or unarchives a list.
func (a *ListifyApp) ToggleArchive(name string) (*listify.List, error) {
	return a.store.ToggleListArchive(name)
}

// DeleteList removes a list and the notes in it. Returns how many notes
// were removed.
func (a *ListifyApp) DeleteList(name string) (int, error) {
	return a.store.DeleteList(name)
}

// SetReminder parses raw relative to now and schedules the note's reminder.
func (a *ListifyApp) SetReminder(id, raw string) (*listify.Note, error) {
	fireAt, err := ParseReminderTime(raw, a.clock.Now())
	if err != nil {
		return nil, err
	}
	return a.scheduler.SetReminder(id, fireAt)
}

// ClearReminder removes the note's reminder.
func (a *ListifyApp) ClearReminder(id string) error {
	if _, err := a.store.GetNote(id); err != nil {
		return err
	}
	return a.scheduler.CancelReminder(id)
}

// AddBirthday records a birthday given as MM-DD.
func (a *ListifyApp) AddBirthday(name, rawDate, image string) (*listify.Note, error) {
	month, day, err := ParseBirthday(rawDate)
	if err != nil {
		return nil, err
	}
	return a.store.AddBirthday(name, month, day, image)
}

// EditBirthday changes a birthday note. Empty values are left unchanged.
func (a *ListifyApp) EditBirthday(id, name, rawDate, image string) (*listify.Note, error) {
	n, err := a.store.GetNote(id)
	if err != nil {
		return nil, err
	}
	if !n.IsBirthday() {
		return nil, &listify.Error{Err: listify.ErrValidation, Message: fmt.Sprintf("note %s is not a birthday", id), Field: "id"}
	}

	if name == "" {
		name = n.Text
	}
	month, day := n.BirthdayMonth, n.BirthdayDay
	if rawDate != "" {
		if month, day, err = ParseBirthday(rawDate); err != nil {
			return nil, err
		}
	}
	if image == "" {
		image = n.BirthdayImage
	}

	if err := a.store.UpdateBirthday(id, name, month, day, image); err != nil {
		return nil, err
	}
	return a.store.GetNote(id)
}

// Birthdays returns birthday notes ordered by next occurrence.
func (a *ListifyApp) Birthdays() []listify.UpcomingBirthday {
	return a.store.UpcomingBirthdays()
}

// Reconcile re-registers lost alarms and flags past reminders as expired.
func (a *ListifyApp) Reconcile() (listify.ReconcileResult, error) {
	return a.scheduler.Reconcile()
}

// AlarmsDeferred reports whether reminders set by this process are left for
// a running daemon to register.
func (a *ListifyApp) AlarmsDeferred() bool {
	return a.deferred
}

// ActiveAlarms returns the notes whose alarm is pending with the notifier.
func (a *ListifyApp) ActiveAlarms() []listify.Note {
	return a.scheduler.ActiveAlarms()
}

// Daemon keeps reminders alive until ctx is cancelled. It reconciles once,
// then runs the expiry watcher and, for storage shared through files,
// reconciles again whenever another process writes records.
func (a *ListifyApp) Daemon(ctx context.Context) error {
	if !a.daemon {
		return errors.New("daemon needs an app created with NewDaemonApp")
	}
	interval, err := a.cfg.Reminders.Interval()
	if err != nil {
		return err
	}
	if _, err := a.scheduler.Reconcile(); err != nil {
		return err
	}
	a.logger.Info("daemon started", "storage", a.cfg.Storage.Type, "notifier", a.cfg.Notifier.Type, "poll_interval", interval)

	g, ctx := errgroup.WithContext(ctx)

	watcher := listify.NewWatcher(a.store, a.scheduler, a.logger, a.clock, interval)
	g.Go(func() error {
		return watcher.Run(ctx)
	})

	if dir, names := records.WatchedFiles(a.cfg.Storage); dir != "" {
		cw := records.NewChangeWatcher(dir, names, records.DefaultDebounce, a.logger, func() {
			if _, err := a.scheduler.Reconcile(); err != nil {
				a.logger.Error("reconciling after records change", "error", err)
			}
		})
		g.Go(func() error {
			return cw.Run(ctx)
		})
	}

	err = g.Wait()
	a.logger.Info("daemon stopped")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close stops pending in-process alarms and closes storage and the log file.
func (a *ListifyApp) Close() error {
	var firstErr error

	if c, ok := a.notifier.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			firstErr = fmt.Errorf("closing notifier: %w", err)
		}
	}

	if err := a.records.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing record store: %w", err)
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}

func (a *ListifyApp) requireList(name string) error {
	for _, l := range a.store.GetLists() {
		if l.Name == name {
			return nil
		}
	}
	return &listify.Error{Err: listify.ErrNotFound, Message: fmt.Sprintf("list %q does not exist", name), Field: "listName"}
}
