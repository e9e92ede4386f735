package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aretw0/automata/pkg/domain"
	bolt "go.etcd.io/bbolt"
)

var bucketName = []byte("automata")

// Store implements ports.AutomatonStore on a single bbolt file.
// All documents live as JSON values in one bucket keyed by ID.
type Store struct {
	filename string
	db       *bolt.DB
}

// Open opens (or creates) the database file and ensures the bucket exists.
func Open(filename string) (*Store, error) {
	db, err := bolt.Open(filename, 0644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database %s: %w", filename, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}
	return &Store{filename: filename, db: db}, nil
}

// Close releases the file lock.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save persists the document.
func (s *Store) Save(ctx context.Context, id string, doc domain.Document) error {
	if id == "" {
		return fmt.Errorf("automaton id cannot be empty")
	}
	js, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal automaton: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(id), js)
	})
}

// Load retrieves the document.
func (s *Store) Load(ctx context.Context, id string) (domain.Document, error) {
	var doc domain.Document
	err := s.db.View(func(tx *bolt.Tx) error {
		bs := tx.Bucket(bucketName).Get([]byte(id))
		if bs == nil {
			return domain.ErrAutomatonNotFound
		}
		// bs is only valid inside the transaction
		return json.Unmarshal(bs, &doc)
	})
	if err != nil {
		return domain.Document{}, err
	}
	return doc, nil
}

// Delete removes the document. Missing IDs are not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Delete([]byte(id))
	})
}

// List returns all IDs in key order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	ids := []string{}
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketName).Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			ids = append(ids, string(k))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}
