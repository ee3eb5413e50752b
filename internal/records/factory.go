package records

import (
	"fmt"
	"os"
	"path/filepath"

	"listify/internal/config"
	"listify/internal/listify"
)

// NewRecordStoreFromConfig creates a RecordStore based on the storage config type.
// Encryption is layered on by the caller with NewSealedRecordStore.
func NewRecordStoreFromConfig(cfg config.StorageConfig) (listify.RecordStore, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryRecordStore(), nil
	case "filesystem":
		if cfg.Dir == "" {
			return nil, fmt.Errorf("filesystem storage requires dir to be set")
		}
		return NewFileSystemRecordStore(cfg.Dir)
	case "sqlite":
		if cfg.Dir == "" {
			return nil, fmt.Errorf("sqlite storage requires dir to be set")
		}
		if err := ensureDir(cfg.Dir); err != nil {
			return nil, err
		}
		return NewSQLiteRecordStore(filepath.Join(cfg.Dir, SQLiteFileName))
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// WatchedFiles returns the directory and base file names whose changes mean
// another process wrote records. Returns an empty dir for backends that
// cannot be shared between processes.
func WatchedFiles(cfg config.StorageConfig) (string, []string) {
	switch cfg.Type {
	case "filesystem":
		return cfg.Dir, []string{RecordFileName(listify.NotesKey), RecordFileName(listify.ListsKey)}
	case "sqlite":
		return cfg.Dir, []string{SQLiteFileName, SQLiteFileName + "-journal", SQLiteFileName + "-wal"}
	default:
		return "", nil
	}
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create records directory: %w", err)
	}
	return nil
}
