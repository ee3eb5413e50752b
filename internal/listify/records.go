package listify

// Record keys under which the two collections are persisted.
const (
	NotesKey = "listify_notes"
	ListsKey = "listify_lists"
)

// RecordStore is durable key-value storage for serialized collections.
// Each Put replaces the whole record; there is no partial write primitive.
type RecordStore interface {
	// Get returns the bytes stored under key.
	// Returns ErrRecordNotFound if nothing has been written under key.
	Get(key string) ([]byte, error)

	// Put overwrites the record stored under key.
	Put(key string, data []byte) error

	// Close releases any resources held by the store.
	Close() error
}
