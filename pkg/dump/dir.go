package dump

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// DirStore writes entries as JSON files in a directory.
// Entries with identical content share a key, the latest one wins.
type DirStore struct {
	dir string
	now func() time.Time
}

// NewDirStore creates a store in the given directory.
// The directory will be created if it doesn't exist.
func NewDirStore(dir string) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &DirStore{dir: dir, now: time.Now}, nil
}

// Dir returns the directory entries are written to.
func (s *DirStore) Dir() string { return s.dir }

// Put stores an entry under the hash of data.
func (s *DirStore) Put(ctx context.Context, name, reason string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := Hash(data)
	entry := Entry{Name: name, Reason: reason, Data: data, CreatedAt: s.now()}
	raw, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return "", err
	}

	path := s.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return "", err
	}
	return key, nil
}

// Get reads an entry.
func (s *DirStore) Get(ctx context.Context, key string) (*Entry, error) {
	if len(key) < 3 {
		return nil, ErrNotFound
	}
	raw, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Path returns the file an entry is stored in.
func (s *DirStore) Path(key string) string { return s.path(key) }

// Close does nothing for directory stores.
func (s *DirStore) Close() error {
	return nil
}

// path uses the first two hash characters as subdirectory.
func (s *DirStore) path(key string) string {
	return filepath.Join(s.dir, key[:2], key[2:]+".json")
}

var _ Store = (*DirStore)(nil)
