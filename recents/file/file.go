// Package file persists the recent-timers slot as a single JSON file.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"timeat/recents"
)

// Store implements recents.Store on one JSON file
type Store struct {
	path string
}

// New creates a file store at the given path. The file and its directory
// are created on first Save.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the whole slot. A missing file is an empty slot, not an
// error; corrupt or unreadable data is reported so the caller can decide
// how to degrade. Records written before usage tracking existed simply
// decode with a zero usage count.
func (s *Store) Load(_ context.Context) ([]recents.Entry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var entries []recents.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("corrupt cache file %s: %w", s.path, err)
	}
	return entries, nil
}

// Save replaces the whole slot
func (s *Store) Save(_ context.Context, entries []recents.Entry) error {
	if entries == nil {
		entries = []recents.Entry{}
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}

// Close is a no-op for file stores
func (s *Store) Close() error {
	return nil
}

var _ recents.Store = (*Store)(nil)
