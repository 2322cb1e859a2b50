// Package dump stores diagnostic snapshots of markup that failed to
// refresh, so the failure can be reproduced later.
//
// A [Store] keeps entries under their content hash. [DirStore] writes them
// to a directory and [NullStore] discards them.
package dump

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entry does not exist.
var ErrNotFound = errors.New("dump not found")

// Entry is one stored snapshot.
type Entry struct {
	Name      string    `json:"name"`
	Reason    string    `json:"reason,omitempty"`
	Data      []byte    `json:"data"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists diagnostic snapshots.
type Store interface {
	// Put stores data and returns the key of the new entry. name describes
	// the origin of the data (typically a document location) and reason the
	// failure.
	Put(ctx context.Context, name, reason string, data []byte) (string, error)

	// Get retrieves an entry by key.
	Get(ctx context.Context, key string) (*Entry, error)

	// Close releases resources held by the store.
	Close() error
}
