package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"listify/internal/listify"

	"github.com/spf13/cobra"
)

// remind command
var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Manage reminders",
}

var remindSetCmd = &cobra.Command{
	Use:   "set ID WHEN",
	Short: "Set a note's reminder (+90m, +2d, 15:04, 2006-01-02 15:04)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("SetReminder")
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.SetReminder(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Reminder set for %s (%s)\n", n.ReminderDate.Format(dateTimeLayout), reminderColumn(n, a.Now()))
		if hint := alarmHint(n, a.AlarmsDeferred()); hint != "" {
			fmt.Fprintln(os.Stderr, hint)
		}
		return nil
	},
}

var remindClearCmd = &cobra.Command{
	Use:   "clear ID",
	Short: "Remove a note's reminder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ClearReminder")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.ClearReminder(args[0]); err != nil {
			return err
		}
		fmt.Printf("Reminder cleared for %s\n", args[0])
		return nil
	},
}

var remindLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "Show pending reminders, soonest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("PendingReminders")
		if err != nil {
			return err
		}
		defer a.Close()

		return printNotes(a.Store().GetPendingReminders(), a.Now())
	},
}

// alarmHint explains a reminder stored without an alarm handle.
func alarmHint(n *listify.Note, deferred bool) string {
	if n.NotificationID != "" {
		return ""
	}
	if deferred {
		return "note: the alarm is registered by `listify daemon`; start it if it is not running"
	}
	return "warning: no alarm could be scheduled; the reminder will only show as expired"
}

// daemon command
var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Deliver reminders and flag expired ones until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newDaemonApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Println("Watching reminders. Press Ctrl-C to stop.")
		return a.Daemon(ctx)
	},
}
