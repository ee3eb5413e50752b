package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultPollInterval is used when reminders.poll_interval is unset.
const DefaultPollInterval = "1m"

// Config represents the main configuration for listify.
type Config struct {
	BaseDir    string           `toml:"base_dir"`
	LogDir     string           `toml:"log_dir"`
	Storage    StorageConfig    `toml:"storage"`
	Encryption EncryptionConfig `toml:"encryption"`
	Notifier   NotifierConfig   `toml:"notifier"`
	Reminders  RemindersConfig  `toml:"reminders"`
}

// StorageConfig selects where notes and lists are persisted.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type StorageConfig struct {
	Type      string `toml:"type"`          // "memory", "filesystem" or "sqlite"
	Dir       string `toml:"dir,omitempty"` // used for filesystem and sqlite
	Encrypted bool   `toml:"encrypted"`     // seal records with the configured encryptor
}

// EncryptionConfig holds paths to the age key pair used for encrypted storage.
type EncryptionConfig struct {
	Type           string `toml:"type"` // "age" (default) or "test"
	PublicKeyPath  string `toml:"public_key_path"`
	PrivateKeyPath string `toml:"private_key_path"`
}

// NotifierConfig selects how reminder alerts are delivered.
type NotifierConfig struct {
	Type string `toml:"type"` // "timer", "at" or "none"
	// Command is run when an alert fires, with LISTIFY_TITLE and LISTIFY_BODY
	// in its environment. Optional for timer, required for at.
	Command string `toml:"command,omitempty"`
}

// RemindersConfig controls the expiry watcher.
type RemindersConfig struct {
	PollInterval string `toml:"poll_interval"`
}

// Interval parses PollInterval, falling back to DefaultPollInterval when unset.
func (r RemindersConfig) Interval() (time.Duration, error) {
	s := r.PollInterval
	if s == "" {
		s = DefaultPollInterval
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid poll_interval %q: %w", r.PollInterval, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("poll_interval must be positive, got %s", d)
	}
	return d, nil
}

// NewConfig creates a new Config rooted at baseDir with filesystem storage,
// in-process timers and default key paths.
func NewConfig(baseDir string) *Config {
	return &Config{
		BaseDir: baseDir,
		LogDir:  filepath.Join(baseDir, "log"),
		Storage: StorageConfig{
			Type: "filesystem",
			Dir:  filepath.Join(baseDir, "data"),
		},
		Encryption: EncryptionConfig{
			Type:           "age",
			PublicKeyPath:  filepath.Join(baseDir, "keys", "listify.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "listify.key"),
		},
		Notifier:  NotifierConfig{Type: "timer"},
		Reminders: RemindersConfig{PollInterval: DefaultPollInterval},
	}
}

// Validate checks the fields that backends cannot default on their own.
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case "memory":
	case "filesystem", "sqlite":
		if c.Storage.Dir == "" {
			return fmt.Errorf("storage type %s requires dir", c.Storage.Type)
		}
	default:
		return fmt.Errorf("unknown storage type: %q", c.Storage.Type)
	}

	switch c.Notifier.Type {
	case "timer", "none":
	case "at":
		if c.Notifier.Command == "" {
			return fmt.Errorf("notifier type at requires command")
		}
	default:
		return fmt.Errorf("unknown notifier type: %q", c.Notifier.Type)
	}

	if _, err := c.Reminders.Interval(); err != nil {
		return err
	}
	return nil
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

func writeToFile(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init writes cfg to a new config file at path. It fails if the file exists.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
