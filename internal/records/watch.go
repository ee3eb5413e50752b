package records

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"listify/internal/listify"
)

// DefaultDebounce is how long ChangeWatcher waits for writes to settle.
const DefaultDebounce = 250 * time.Millisecond

// ChangeWatcher reports when record files in a directory change, so a
// long-running process can pick up writes made by another process.
// Bursts of events are collapsed into a single callback.
type ChangeWatcher struct {
	dir      string
	names    map[string]bool
	debounce time.Duration
	logger   listify.Logger
	onChange func()
}

// NewChangeWatcher creates a watcher for the given base names inside dir.
// A non-positive debounce means DefaultDebounce.
func NewChangeWatcher(dir string, names []string, debounce time.Duration, logger listify.Logger, onChange func()) *ChangeWatcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return &ChangeWatcher{
		dir:      dir,
		names:    set,
		debounce: debounce,
		logger:   logger,
		onChange: onChange,
	}
}

// Run watches until ctx is done. onChange is called from Run's goroutine.
func (w *ChangeWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.logger.Debug("watching records", "dir", w.dir)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("records changed", "name", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.onChange()

		case wErr, ok := <-watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("fsnotify error", "error", wErr)
		}
	}
}

func (w *ChangeWatcher) relevant(event fsnotify.Event) bool {
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, tempPrefix) {
		return false
	}
	if !w.names[base] {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}
