package main

import (
	"errors"
	"fmt"

	"listify/internal/listify"

	"github.com/spf13/cobra"
)

// birthday command
var birthdayCmd = &cobra.Command{
	Use:   "birthday",
	Short: "Manage birthdays",
}

var birthdayAddCmd = &cobra.Command{
	Use:   "add NAME MM-DD",
	Short: "Record a birthday",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		image, _ := cmd.Flags().GetString("image")

		a, err := newApp("AddBirthday")
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.AddBirthday(args[0], args[1], image)
		if err != nil {
			return err
		}
		fmt.Printf("Added %s's birthday on %s (%s)\n", n.Text, birthdayDate(n.BirthdayMonth, n.BirthdayDay), n.ID)
		return nil
	},
}

var birthdayLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "Show birthdays, next one first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		month, _ := cmd.Flags().GetBool("month")

		a, err := newApp("Birthdays")
		if err != nil {
			return err
		}
		defer a.Close()

		upcoming := a.Birthdays()
		if month {
			thisMonth := upcoming[:0]
			for _, b := range upcoming {
				if b.ThisMonth {
					thisMonth = append(thisMonth, b)
				}
			}
			upcoming = thisMonth
		}
		return printBirthdays(upcoming)
	},
}

var birthdayEditCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Change a birthday's name, date or picture",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		date, _ := cmd.Flags().GetString("date")
		image, _ := cmd.Flags().GetString("image")
		if name == "" && date == "" && image == "" {
			return errors.New("nothing to change: pass --name, --date or --image")
		}

		a, err := newApp("EditBirthday")
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.EditBirthday(args[0], name, date, image)
		if err != nil {
			return err
		}
		for _, b := range a.Birthdays() {
			if b.Note.ID == n.ID {
				return printBirthdays([]listify.UpcomingBirthday{b})
			}
		}
		return nil
	},
}
