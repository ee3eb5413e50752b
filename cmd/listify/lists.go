package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Manage lists",
}

var listLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "Show lists and how many notes they hold",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Lists")
		if err != nil {
			return err
		}
		defer a.Close()

		return printLists(a.Lists())
	},
}

var listAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Create a list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		color, _ := cmd.Flags().GetString("color")

		a, err := newApp("AddList")
		if err != nil {
			return err
		}
		defer a.Close()

		l, err := a.AddList(args[0], color)
		if err != nil {
			return err
		}
		fmt.Printf("Created list %s (%s)\n", l.Name, l.Color)
		return nil
	},
}

var listRenameCmd = &cobra.Command{
	Use:   "rename OLD NEW",
	Short: "Rename a list and move its notes",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		color, _ := cmd.Flags().GetString("color")

		a, err := newApp("RenameList")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.RenameList(args[0], args[1], color); err != nil {
			return err
		}
		fmt.Printf("Renamed %s to %s\n", args[0], args[1])
		return nil
	},
}

var listArchiveCmd = &cobra.Command{
	Use:   "archive NAME",
	Short: "Archive or unarchive a list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ToggleArchive")
		if err != nil {
			return err
		}
		defer a.Close()

		l, err := a.ToggleArchive(args[0])
		if err != nil {
			return err
		}
		if l.Archived {
			fmt.Printf("Archived %s\n", l.Name)
		} else {
			fmt.Printf("Unarchived %s\n", l.Name)
		}
		return nil
	},
}

var listRmCmd = &cobra.Command{
	Use:   "rm NAME",
	Short: "Delete a list and its notes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("DeleteList")
		if err != nil {
			return err
		}
		defer a.Close()

		removed, err := a.DeleteList(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Deleted list %s and %d note(s)\n", args[0], removed)
		return nil
	},
}
