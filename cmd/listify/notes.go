package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// note command
var noteCmd = &cobra.Command{
	Use:   "note",
	Short: "Manage notes",
}

var noteAddCmd = &cobra.Command{
	Use:   "add TEXT...",
	Short: "Add a note",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		list, _ := cmd.Flags().GetString("list")
		remind, _ := cmd.Flags().GetString("remind")

		a, err := newApp("AddNote")
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.AddNote(strings.Join(args, " "), list)
		if err != nil {
			return fmt.Errorf("adding note: %w", err)
		}
		fmt.Printf("Added %s to %s\n", n.ID, n.ListName)

		if remind != "" {
			n, err = a.SetReminder(n.ID, remind)
			if err != nil {
				return fmt.Errorf("setting reminder: %w", err)
			}
			fmt.Printf("Reminder set for %s\n", n.ReminderDate.Format(dateTimeLayout))
		}
		return nil
	},
}

var noteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		list, _ := cmd.Flags().GetString("list")
		all, _ := cmd.Flags().GetBool("all")

		a, err := newApp("ListNotes")
		if err != nil {
			return err
		}
		defer a.Close()

		return printNotes(a.Notes(list, all), a.Now())
	},
}

var noteDoneCmd = &cobra.Command{
	Use:   "done ID",
	Short: "Mark a note completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setCompleted(args[0], true)
	},
}

var noteUndoneCmd = &cobra.Command{
	Use:   "undone ID",
	Short: "Mark a note not completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setCompleted(args[0], false)
	},
}

func setCompleted(id string, done bool) error {
	a, err := newApp("SetCompleted")
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.SetCompleted(id, done); err != nil {
		return err
	}
	if done {
		fmt.Printf("Completed %s\n", id)
	} else {
		fmt.Printf("Reopened %s\n", id)
	}
	return nil
}

var noteEditCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Change a note's text or list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, _ := cmd.Flags().GetString("text")
		list, _ := cmd.Flags().GetString("list")
		if text == "" && list == "" {
			return errors.New("nothing to change: pass --text or --list")
		}

		a, err := newApp("EditNote")
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.EditNote(args[0], text, list)
		if err != nil {
			return err
		}
		return printNote(n, a.Now())
	},
}

var noteRmCmd = &cobra.Command{
	Use:   "rm ID",
	Short: "Delete a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("DeleteNote")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.DeleteNote(args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

var noteSearchCmd = &cobra.Command{
	Use:   "search QUERY...",
	Short: "Find notes containing text",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("SearchNotes")
		if err != nil {
			return err
		}
		defer a.Close()

		return printNotes(a.Search(strings.Join(args, " ")), a.Now())
	},
}

var noteRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Show recently updated notes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		archived, _ := cmd.Flags().GetBool("archived")

		a, err := newApp("RecentNotes")
		if err != nil {
			return err
		}
		defer a.Close()

		return printNotes(a.Recent(limit, archived), a.Now())
	},
}

var noteDueCmd = &cobra.Command{
	Use:   "due",
	Short: "Show notes with a reminder due today or already expired",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ActionNeeded")
		if err != nil {
			return err
		}
		defer a.Close()

		return printNotes(a.ActionNeeded(), a.Now())
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every note",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			return errors.New("refusing to delete every note without --yes")
		}

		a, err := newApp("ClearNotes")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.ClearNotes(); err != nil {
			return err
		}
		fmt.Println("All notes deleted.")
		return nil
	},
}
