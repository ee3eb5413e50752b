package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		BaseDir: "/home/user/.local/share/listify",
		LogDir:  "/home/user/.local/share/listify/log",
		Storage: StorageConfig{Type: "sqlite", Dir: "/home/user/.local/share/listify/db", Encrypted: true},
		Encryption: EncryptionConfig{
			Type:           "age",
			PublicKeyPath:  "/home/user/.local/share/listify/keys/listify.pub",
			PrivateKeyPath: "/home/user/.local/share/listify/keys/listify.key",
		},
		Notifier:  NotifierConfig{Type: "at", Command: "notify-send \"$LISTIFY_TITLE\" \"$LISTIFY_BODY\""},
		Reminders: RemindersConfig{PollInterval: "30s"},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.BaseDir != original.BaseDir {
		t.Errorf("BaseDir = %q, want %q", got.BaseDir, original.BaseDir)
	}
	if got.LogDir != original.LogDir {
		t.Errorf("LogDir = %q, want %q", got.LogDir, original.LogDir)
	}
	if got.Storage != original.Storage {
		t.Errorf("Storage = %+v, want %+v", got.Storage, original.Storage)
	}
	if got.Encryption != original.Encryption {
		t.Errorf("Encryption = %+v, want %+v", got.Encryption, original.Encryption)
	}
	if got.Notifier != original.Notifier {
		t.Errorf("Notifier = %+v, want %+v", got.Notifier, original.Notifier)
	}
	if got.Reminders.PollInterval != "30s" {
		t.Errorf("Reminders.PollInterval = %q, want %q", got.Reminders.PollInterval, "30s")
	}
}

func TestManager_Read_Invalid(t *testing.T) {
	m := &Manager{}
	if _, err := m.Read(strings.NewReader("storage = [")); err == nil {
		t.Error("Read() expected error for malformed TOML, got nil")
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/data/listify")

	if cfg.BaseDir != "/data/listify" {
		t.Errorf("BaseDir = %q, want %q", cfg.BaseDir, "/data/listify")
	}
	if cfg.LogDir != "/data/listify/log" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, "/data/listify/log")
	}
	if cfg.Storage.Type != "filesystem" || cfg.Storage.Dir != "/data/listify/data" {
		t.Errorf("Storage = %+v, want filesystem at /data/listify/data", cfg.Storage)
	}
	if cfg.Encryption.PublicKeyPath != "/data/listify/keys/listify.pub" {
		t.Errorf("Encryption.PublicKeyPath = %q, want %q", cfg.Encryption.PublicKeyPath, "/data/listify/keys/listify.pub")
	}
	if cfg.Encryption.PrivateKeyPath != "/data/listify/keys/listify.key" {
		t.Errorf("Encryption.PrivateKeyPath = %q, want %q", cfg.Encryption.PrivateKeyPath, "/data/listify/keys/listify.key")
	}
	if cfg.Notifier.Type != "timer" {
		t.Errorf("Notifier.Type = %q, want %q", cfg.Notifier.Type, "timer")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults error = %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "memory storage", mutate: func(c *Config) { c.Storage = StorageConfig{Type: "memory"} }},
		{name: "sqlite without dir", mutate: func(c *Config) { c.Storage = StorageConfig{Type: "sqlite"} }, wantErr: true},
		{name: "unknown storage", mutate: func(c *Config) { c.Storage.Type = "s3" }, wantErr: true},
		{name: "at without command", mutate: func(c *Config) { c.Notifier = NotifierConfig{Type: "at"} }, wantErr: true},
		{name: "at with command", mutate: func(c *Config) { c.Notifier = NotifierConfig{Type: "at", Command: "true"} }},
		{name: "none notifier", mutate: func(c *Config) { c.Notifier.Type = "none" }},
		{name: "unknown notifier", mutate: func(c *Config) { c.Notifier.Type = "pigeon" }, wantErr: true},
		{name: "bad poll interval", mutate: func(c *Config) { c.Reminders.PollInterval = "soon" }, wantErr: true},
		{name: "negative poll interval", mutate: func(c *Config) { c.Reminders.PollInterval = "-1m" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig("/data/listify")
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRemindersConfig_Interval(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{in: "", want: time.Minute},
		{in: "30s", want: 30 * time.Second},
		{in: "5m", want: 5 * time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := RemindersConfig{PollInterval: tt.in}.Interval()
			if err != nil {
				t.Fatalf("Interval() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Interval() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "listify.toml")

		if err := Init(path, NewConfig(dir)); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "listify.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}
		if err := Init(path, cfg); err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "listify.toml")
		cfg := NewConfig(dir)
		cfg.Storage = StorageConfig{Type: "memory"}

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.Storage.Type != "memory" {
			t.Errorf("Storage.Type = %q, want %q", got.Storage.Type, "memory")
		}
		if got.BaseDir != dir {
			t.Errorf("BaseDir = %q, want %q", got.BaseDir, dir)
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		if _, err := ReadFromFile("/nonexistent/path/listify.toml"); err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}
