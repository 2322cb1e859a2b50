// Package clipboard persists archives between invocations in a bbolt
// database.
//
// Every stored archive gets a random key and a sequence number; the
// sequence orders the entries so [Store.Latest] returns the most recent
// copy.
package clipboard

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/gluedoc/pkg/archive"
	"github.com/matzehuels/gluedoc/pkg/observability"
)

const (
	bucketItems = "items"
	bucketKeys  = "keys"
)

var (
	// ErrNotFound is returned for keys without an entry.
	ErrNotFound = errors.New("clipboard entry not found")

	// ErrEmpty is returned by Latest when the store holds no entries.
	ErrEmpty = errors.New("clipboard is empty")
)

// Item is one stored archive.
type Item struct {
	Key       string           `yaml:"key"`
	Seq       int              `yaml:"seq"`
	CreatedAt time.Time        `yaml:"created_at"`
	Archive   *archive.Archive `yaml:"archive"`
}

// Store is a clipboard backed by a bbolt database.
type Store struct {
	db  *bolt.DB
	now func() time.Time
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open clipboard %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{bucketItems, bucketKeys} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize clipboard %s: %w", path, err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Path returns the database file.
func (s *Store) Path() string { return s.db.Path() }

// Put stores a and returns its key.
func (s *Store) Put(ctx context.Context, a *archive.Archive) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	item := Item{Key: uuid.NewString(), CreatedAt: s.now().UTC(), Archive: a}
	err := s.db.Update(func(tx *bolt.Tx) error {
		items := tx.Bucket([]byte(bucketItems))
		seq, err := items.NextSequence()
		if err != nil {
			return err
		}
		item.Seq = int(seq)
		data, err := yaml.Marshal(&item)
		if err != nil {
			return err
		}
		if err := items.Put(marshalSeq(seq), data); err != nil {
			return err
		}
		return tx.Bucket([]byte(bucketKeys)).Put([]byte(item.Key), marshalSeq(seq))
	})
	if err != nil {
		return "", err
	}
	observability.Clipboard().OnPut(ctx, item.Key, len(a.Entries))
	return item.Key, nil
}

// Get returns the item stored under key.
func (s *Store) Get(ctx context.Context, key string) (*Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var item *Item
	err := s.db.View(func(tx *bolt.Tx) error {
		seq := tx.Bucket([]byte(bucketKeys)).Get([]byte(key))
		if seq == nil {
			return ErrNotFound
		}
		var err error
		item, err = unmarshalItem(tx.Bucket([]byte(bucketItems)).Get(seq))
		return err
	})
	observability.Clipboard().OnGet(ctx, key, err == nil)
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Latest returns the most recently stored item.
func (s *Store) Latest(ctx context.Context) (*Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var item *Item
	err := s.db.View(func(tx *bolt.Tx) error {
		_, v := tx.Bucket([]byte(bucketItems)).Cursor().Last()
		if v == nil {
			return ErrEmpty
		}
		var err error
		item, err = unmarshalItem(v)
		return err
	})
	key := ""
	if item != nil {
		key = item.Key
	}
	observability.Clipboard().OnGet(ctx, key, err == nil)
	if err != nil {
		return nil, err
	}
	return item, nil
}

// List returns every item, oldest first.
func (s *Store) List(ctx context.Context) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []Item
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketItems)).ForEach(func(_, v []byte) error {
			item, err := unmarshalItem(v)
			if err != nil {
				return err
			}
			out = append(out, *item)
			return nil
		})
	})
	return out, err
}

// Delete removes the item stored under key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		keys := tx.Bucket([]byte(bucketKeys))
		seq := keys.Get([]byte(key))
		if seq == nil {
			return ErrNotFound
		}
		if err := tx.Bucket([]byte(bucketItems)).Delete(seq); err != nil {
			return err
		}
		return keys.Delete([]byte(key))
	})
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func unmarshalItem(data []byte) (*Item, error) {
	var item Item
	if err := yaml.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("decode clipboard item: %w", err)
	}
	return &item, nil
}

func marshalSeq(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}
