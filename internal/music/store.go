package music

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store abstracts read-only access to the music database. Implementations
// must be safe for concurrent use; the underlying data never changes after
// Open.
type Store interface {
	// Find returns the records matching every provided criteria field, in
	// the store's original order. A limit of zero or less means no cap.
	Find(ctx context.Context, c Criteria, limit int) ([]Record, error)
	// Len returns the total number of records in the store.
	Len() int
}

// Open loads the database at path, choosing the backend by file extension:
// .db and .sqlite open a SQLite store, everything else is read as a flat
// JSON array.
func Open(path string) (Store, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return OpenSQL(path)
	default:
		return OpenJSON(path)
	}
}

// JSONStore serves lookups from a flat JSON array loaded once at startup.
type JSONStore struct {
	records []Record
}

// OpenJSON reads a JSON array of records. A record missing the title field
// is a schema violation and fails the load.
func OpenJSON(path string) (*JSONStore, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read database: %w", err)
	}
	var records []Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode database: %w", err)
	}
	for i, r := range records {
		if r.Title == "" {
			return nil, fmt.Errorf("database record %d: missing title", i)
		}
	}
	return &JSONStore{records: records}, nil
}

// NewJSONStore wraps an in-memory record list. Used by tests and seeds.
func NewJSONStore(records []Record) *JSONStore {
	cp := make([]Record, len(records))
	copy(cp, records)
	return &JSONStore{records: cp}
}

func (s *JSONStore) Len() int { return len(s.records) }

func (s *JSONStore) Find(ctx context.Context, c Criteria, limit int) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []Record
	for _, r := range s.records {
		if !c.Matches(r) {
			continue
		}
		out = append(out, r)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
