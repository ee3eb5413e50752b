package records

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"listify/internal/listify"
)

// tempPrefix marks in-progress writes. The change watcher ignores them.
const tempPrefix = ".tmp-"

// FileSystemRecordStore keeps each record in its own file:
//
//	<dir>/
//	  listify_notes.json
//	  listify_lists.json
//
// Writes go to a temp file in the same directory and are renamed into place,
// so a reader never observes a half-written record.
type FileSystemRecordStore struct {
	dir string
}

// NewFileSystemRecordStore creates a record store rooted at dir, creating
// the directory if needed.
func NewFileSystemRecordStore(dir string) (*FileSystemRecordStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create records directory: %w", err)
	}
	return &FileSystemRecordStore{dir: dir}, nil
}

// Dir returns the directory records are stored in.
func (s *FileSystemRecordStore) Dir() string {
	return s.dir
}

// RecordFileName returns the base name of the file holding key.
func RecordFileName(key string) string {
	return key + ".json"
}

func (s *FileSystemRecordStore) Get(key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.dir, RecordFileName(key)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, listify.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to read record %s: %w", key, err)
	}
	return data, nil
}

func (s *FileSystemRecordStore) Put(key string, data []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	return s.writeFile(filepath.Join(s.dir, RecordFileName(key)), data)
}

func (s *FileSystemRecordStore) Close() error {
	return nil
}

// writeFile writes data to destPath using atomic write (temp file + rename).
func (s *FileSystemRecordStore) writeFile(destPath string, data []byte) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), tempPrefix+"*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// validateKey rejects keys that cannot be used as a plain file name.
func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("record key must not be empty")
	}
	if strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return fmt.Errorf("invalid record key: %q", key)
	}
	return nil
}

var _ listify.RecordStore = (*FileSystemRecordStore)(nil)
