package notify

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"listify/internal/listify"
)

// atTimeLayout is the [[CC]YY]MMDDhhmm[.ss] form accepted by at -t.
const atTimeLayout = "200601021504.05"

var atJobPattern = regexp.MustCompile(`job (\d+) at`)

// commandRunner runs name with args, feeding stdin, and returns combined output.
type commandRunner func(ctx context.Context, stdin, name string, args ...string) (string, error)

func execRunner(ctx context.Context, stdin, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// AtNotifier schedules alarms as one-shot at(1) jobs, so they fire even if no
// listify process is running. The handle is the at job number.
type AtNotifier struct {
	command string
	logger  listify.Logger
	run     commandRunner
}

// NewAtNotifier creates an AtNotifier whose jobs run command with
// LISTIFY_TITLE and LISTIFY_BODY exported.
func NewAtNotifier(command string, logger listify.Logger) *AtNotifier {
	return &AtNotifier{command: command, logger: logger, run: execRunner}
}

func (n *AtNotifier) Schedule(title, body string, fireAt time.Time) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	out, err := n.run(ctx, n.script(title, body), "at", "-t", fireAt.Local().Format(atTimeLayout))
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("at: %w", listify.ErrNotifierUnavailable)
		}
		return "", fmt.Errorf("at: %w: %s", err, strings.TrimSpace(out))
	}

	m := atJobPattern.FindStringSubmatch(out)
	if m == nil {
		return "", fmt.Errorf("at: no job number in output %q", strings.TrimSpace(out))
	}

	n.logger.Debug("at job scheduled", "job", m[1], "fire_at", fireAt)
	return m[1], nil
}

// Cancel removes the job. Jobs that already ran or were removed are ignored.
func (n *AtNotifier) Cancel(handle string) error {
	if !n.Pending(handle) {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if out, err := n.run(ctx, "", "atrm", handle); err != nil {
		return fmt.Errorf("atrm %s: %w: %s", handle, err, strings.TrimSpace(out))
	}
	return nil
}

// Pending reports whether the job is still queued according to atq.
func (n *AtNotifier) Pending(handle string) bool {
	if handle == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	out, err := n.run(ctx, "", "atq")
	if err != nil {
		n.logger.Warn("listing at jobs", "error", err)
		return false
	}

	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) > 0 && fields[0] == handle {
			return true
		}
	}
	return false
}

func (n *AtNotifier) script(title, body string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "export LISTIFY_TITLE=%s\n", shellQuote(title))
	fmt.Fprintf(&b, "export LISTIFY_BODY=%s\n", shellQuote(body))
	b.WriteString(n.command)
	b.WriteString("\n")
	return b.String()
}

// shellQuote wraps s in single quotes for sh.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

var _ listify.Notifier = (*AtNotifier)(nil)
