package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"listify/internal/app"
	"listify/internal/config"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates a ListifyApp. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "AddNote", "SetReminder").
func newApp(operation string) (*app.ListifyApp, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	a, err := app.NewListifyApp(cfg, operation, readPassphrase)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// newDaemonApp is newApp for the long-lived daemon command.
func newDaemonApp() (*app.ListifyApp, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	a, err := app.NewDaemonApp(cfg, readPassphrase)
	if err != nil {
		return nil, fmt.Errorf("initializing daemon: %w", err)
	}

	return a, nil
}

func loadConfig() (*config.Config, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return cfg, nil
}

// readPassphrase returns LISTIFY_PASSPHRASE if set, otherwise prompts on the
// terminal without echo.
func readPassphrase() (string, error) {
	if p := os.Getenv("LISTIFY_PASSPHRASE"); p != "" {
		return p, nil
	}
	return promptPassphrase("Passphrase: ")
}

func promptPassphrase(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("stdin is not a terminal: set LISTIFY_PASSPHRASE")
	}

	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

var rootCmd = &cobra.Command{
	Use:          "listify",
	Short:        "Notes, lists and reminders",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch outputFormat {
		case "table", "yaml":
			return nil
		default:
			return fmt.Errorf("unknown output format %q (use table or yaml)", outputFormat)
		}
	},
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		storage, _ := cmd.Flags().GetString("storage")
		notifier, _ := cmd.Flags().GetString("notifier")
		command, _ := cmd.Flags().GetString("command")
		encrypt, _ := cmd.Flags().GetBool("encrypt")

		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])
		cfg.Storage.Type = storage
		cfg.Storage.Encrypted = encrypt
		cfg.Notifier.Type = notifier
		cfg.Notifier.Command = command
		if err := cfg.Validate(); err != nil {
			return err
		}

		// Ask before writing anything so a mistyped passphrase leaves no
		// config behind.
		var passphrase string
		if encrypt {
			if passphrase, err = newPassphrase(); err != nil {
				return err
			}
		}

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}
		if encrypt {
			if err := app.SetupEncryption(cfg, passphrase); err != nil {
				return err
			}
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", cfg.BaseDir)
		fmt.Printf("Storage:  %s (%s)\n", cfg.Storage.Type, cfg.Storage.Dir)
		if encrypt {
			fmt.Printf("Keys:     %s\n", cfg.Encryption.PublicKeyPath)
		}
		return nil
	},
}

// newPassphrase asks for a new passphrase twice.
func newPassphrase() (string, error) {
	if p := os.Getenv("LISTIFY_PASSPHRASE"); p != "" {
		return p, nil
	}
	first, err := promptPassphrase("New passphrase: ")
	if err != nil {
		return "", err
	}
	second, err := promptPassphrase("Repeat passphrase: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", errors.New("passphrases do not match")
	}
	return first, nil
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		if outputFormat == "yaml" {
			return printYAML(cfg)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Base Dir:      %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:       %s\n", cfg.LogDir)
		fmt.Printf("Storage:       %s %s\n", cfg.Storage.Type, cfg.Storage.Dir)
		fmt.Printf("Encrypted:     %t\n", cfg.Storage.Encrypted)
		fmt.Printf("Notifier:      %s %s\n", cfg.Notifier.Type, cfg.Notifier.Command)
		fmt.Printf("Poll Interval: %s\n", cfg.Reminders.PollInterval)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table or yaml")

	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configInitCmd.Flags().String("storage", "filesystem", "Storage backend: filesystem, sqlite or memory")
	configInitCmd.Flags().String("notifier", "timer", "Notifier: timer, at or none")
	configInitCmd.Flags().String("command", "", "Command run when a reminder fires")
	configInitCmd.Flags().Bool("encrypt", false, "Encrypt stored notes with a passphrase-protected age key")

	// note subcommands
	noteCmd.AddCommand(noteAddCmd)
	noteAddCmd.Flags().StringP("list", "l", "Personal", "List to add the note to")
	noteAddCmd.Flags().StringP("remind", "r", "", "Reminder time (+90m, +2d, 15:04, 2006-01-02 15:04)")
	noteCmd.AddCommand(noteListCmd)
	noteListCmd.Flags().StringP("list", "l", "", "Only show notes in this list")
	noteListCmd.Flags().BoolP("all", "a", false, "Include completed notes")
	noteCmd.AddCommand(noteDoneCmd)
	noteCmd.AddCommand(noteUndoneCmd)
	noteCmd.AddCommand(noteEditCmd)
	noteEditCmd.Flags().StringP("text", "t", "", "New text")
	noteEditCmd.Flags().StringP("list", "l", "", "Move to this list")
	noteCmd.AddCommand(noteRmCmd)
	noteCmd.AddCommand(noteSearchCmd)
	noteCmd.AddCommand(noteRecentCmd)
	noteRecentCmd.Flags().IntP("limit", "n", 5, "Maximum number of notes to show")
	noteRecentCmd.Flags().Bool("archived", false, "Include notes in archived lists")
	noteCmd.AddCommand(noteDueCmd)

	// list subcommands
	listCmd.AddCommand(listLsCmd)
	listCmd.AddCommand(listAddCmd)
	listAddCmd.Flags().StringP("color", "c", "", "Hex color, e.g. #14B8A6")
	listCmd.AddCommand(listRenameCmd)
	listRenameCmd.Flags().StringP("color", "c", "", "New hex color")
	listCmd.AddCommand(listArchiveCmd)
	listCmd.AddCommand(listRmCmd)

	// remind subcommands
	remindCmd.AddCommand(remindSetCmd)
	remindCmd.AddCommand(remindClearCmd)
	remindCmd.AddCommand(remindLsCmd)

	// birthday subcommands
	birthdayCmd.AddCommand(birthdayAddCmd)
	birthdayAddCmd.Flags().String("image", "", "Path or URL of a picture")
	birthdayCmd.AddCommand(birthdayLsCmd)
	birthdayLsCmd.Flags().Bool("month", false, "Only show birthdays this month")
	birthdayCmd.AddCommand(birthdayEditCmd)
	birthdayEditCmd.Flags().String("name", "", "New name")
	birthdayEditCmd.Flags().String("date", "", "New date as MM-DD")
	birthdayEditCmd.Flags().String("image", "", "New picture")

	clearCmd.Flags().Bool("yes", false, "Confirm deleting every note")

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(noteCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(remindCmd)
	rootCmd.AddCommand(birthdayCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(daemonCmd)
}
