// Package notify provides the backends that deliver reminder alerts.
package notify

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"listify/internal/listify"
)

// commandTimeout bounds every external command a notifier runs.
const commandTimeout = 10 * time.Second

// Alert is a reminder that has come due.
type Alert struct {
	Handle string
	Title  string
	Body   string
	FireAt time.Time
}

// CommandDeliverer returns a delivery func that logs the alert and, if
// command is non-empty, runs it with sh -c. The command sees LISTIFY_TITLE
// and LISTIFY_BODY in its environment.
func CommandDeliverer(command string, logger listify.Logger) func(Alert) {
	return func(a Alert) {
		logger.Info("reminder due", "handle", a.Handle, "title", a.Title, "body", a.Body, "fire_at", a.FireAt)
		if command == "" {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		cmd := exec.CommandContext(ctx, "sh", "-c", command)
		cmd.Env = append(os.Environ(), "LISTIFY_TITLE="+a.Title, "LISTIFY_BODY="+a.Body)
		if out, err := cmd.CombinedOutput(); err != nil {
			logger.Warn("alert command failed", "handle", a.Handle, "error", err, "output", strings.TrimSpace(string(out)))
		}
	}
}

// ErrDaemonOnly is returned by a deferred notifier. In-process alarms are
// only kept by a long-lived process.
var ErrDaemonOnly = fmt.Errorf("alarms are kept by listify daemon: %w", listify.ErrNotifierUnavailable)

// NoneNotifier is used where no facility is available. Every Schedule call
// fails with listify.ErrNotifierUnavailable, so reminders are stored without
// an alarm and only observed through expiry.
type NoneNotifier struct {
	reason error
}

func NewNoneNotifier() *NoneNotifier {
	return &NoneNotifier{}
}

// NewDeferredNotifier is used by short-lived processes configured with the
// timer backend. Reminders are stored without a handle and the daemon's
// Reconcile registers the alarm.
func NewDeferredNotifier() *NoneNotifier {
	return &NoneNotifier{reason: ErrDaemonOnly}
}

func (n NoneNotifier) Schedule(title, body string, fireAt time.Time) (string, error) {
	if n.reason != nil {
		return "", fmt.Errorf("scheduling %q: %w", title, n.reason)
	}
	return "", fmt.Errorf("scheduling %q: %w", title, listify.ErrNotifierUnavailable)
}

func (NoneNotifier) Cancel(handle string) error {
	return nil
}

func (NoneNotifier) Pending(handle string) bool {
	return false
}

var _ listify.Notifier = (*NoneNotifier)(nil)
