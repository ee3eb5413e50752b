package records

import (
	"database/sql"
	"errors"
	"fmt"

	"listify/internal/listify"
	"listify/internal/records/migrations"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteFileName is the database file used by the sqlite backend.
const SQLiteFileName = "listify.db"

// SQLiteRecordStore keeps records as rows of a single table in SQLite.
type SQLiteRecordStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteRecordStore opens the database at path and migrates it to the
// latest schema. path can be a file path or ":memory:".
func NewSQLiteRecordStore(path string) (*SQLiteRecordStore, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating records database: %w", err)
	}

	return &SQLiteRecordStore{db: db, path: path}, nil
}

// OpenConnection opens and configures a SQLite connection.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Each connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	// The CLI and the daemon may open the same file.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

func (s *SQLiteRecordStore) Get(key string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRow("SELECT value FROM records WHERE key = ?", key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, listify.ErrRecordNotFound
		}
		return nil, fmt.Errorf("reading record %s: %w", key, err)
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}

func (s *SQLiteRecordStore) Put(key string, data []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if data == nil {
		data = []byte{}
	}

	_, err := s.db.Exec(`
		INSERT INTO records (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, data)
	if err != nil {
		return fmt.Errorf("writing record %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteRecordStore) Close() error {
	return s.db.Close()
}

var _ listify.RecordStore = (*SQLiteRecordStore)(nil)
