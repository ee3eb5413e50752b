package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"listify/internal/listify"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

const dateTimeLayout = "Mon Jan 2 15:04"

// outputFormat is "table" or "yaml", set by the --output flag.
var outputFormat string

func printYAML(v any) error {
	return writeYAML(os.Stdout, v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func printNote(n *listify.Note, now time.Time) error {
	return printNotes([]listify.Note{*n}, now)
}

func printNotes(notes []listify.Note, now time.Time) error {
	if outputFormat == "yaml" {
		return printYAML(notes)
	}
	return writeNotesTable(os.Stdout, notes, now)
}

func writeNotesTable(w io.Writer, notes []listify.Note, now time.Time) error {
	if len(notes) == 0 {
		fmt.Fprintln(w, "No notes.")
		return nil
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tLIST\tDONE\tTEXT\tREMINDER\tUPDATED")
	for i := range notes {
		n := &notes[i]
		done := ""
		if n.Completed {
			done = "x"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			n.ID,
			n.ListName,
			done,
			n.Text,
			reminderColumn(n, now),
			humanize.RelTime(n.UpdatedAt, now, "ago", "from now"),
		)
	}
	return tw.Flush()
}

// reminderColumn renders a note's reminder as a countdown, e.g. "in 2h 5m".
func reminderColumn(n *listify.Note, now time.Time) string {
	if n.ReminderDate == nil {
		return "-"
	}
	left, passed := listify.Countdown(*n.ReminderDate, now)
	if passed || n.ReminderExpired {
		return "expired " + n.ReminderDate.Format(dateTimeLayout)
	}
	s := "in " + left
	if n.NotificationID == "" {
		s += " (no alarm)"
	}
	return s
}

func printLists(lists []listify.ListSummary) error {
	if outputFormat == "yaml" {
		return printYAML(lists)
	}
	return writeListsTable(os.Stdout, lists)
}

func writeListsTable(w io.Writer, lists []listify.ListSummary) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "NAME\tCOLOR\tNOTES\tARCHIVED")
	for _, l := range lists {
		archived := ""
		if l.Archived {
			archived = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", l.Name, l.Color, humanize.Comma(int64(l.Count)), archived)
	}
	return tw.Flush()
}

func printBirthdays(birthdays []listify.UpcomingBirthday) error {
	if outputFormat == "yaml" {
		return printYAML(birthdays)
	}
	return writeBirthdaysTable(os.Stdout, birthdays)
}

func writeBirthdaysTable(w io.Writer, birthdays []listify.UpcomingBirthday) error {
	if len(birthdays) == 0 {
		fmt.Fprintln(w, "No birthdays.")
		return nil
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tDATE\tNEXT\tIMAGE")
	for _, b := range birthdays {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			b.Note.ID,
			b.Note.Text,
			birthdayDate(b.Note.BirthdayMonth, b.Note.BirthdayDay),
			daysUntil(b.DaysUntil),
			b.Note.BirthdayImage,
		)
	}
	return tw.Flush()
}

// birthdayDate formats a month and day as "March 14th".
func birthdayDate(month, day int) string {
	return time.Month(month).String() + " " + humanize.Ordinal(day)
}

func daysUntil(days int) string {
	switch days {
	case 0:
		return "today"
	case 1:
		return "tomorrow"
	default:
		return fmt.Sprintf("in %d days", days)
	}
}
