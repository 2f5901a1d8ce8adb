// file: internal/store/store.go
// version: 1.1.0
// guid: 4b5c6d7e-8f9a-0b1c-2d3e-4f5a6b7c8d9e

// Package store persists the parsed library in PebbleDB.
//
// Key Schema:
// - library:current -> Library JSON (the single stored library)
//
// The persistence contract is deliberately minimal: one Library value under
// one fixed key, replaced wholesale on re-parse. No partial updates, no
// versioning.
package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble/v2"

	"github.com/cratestats/cratestats/internal/models"
)

const libraryKey = "library:current"

// ErrNotFound is returned when no library has been stored yet
var ErrNotFound = errors.New("no library stored")

// LibraryStore reads and writes the current library snapshot
type LibraryStore struct {
	db *pebble.DB
}

// Open opens or creates the PebbleDB instance at path
func Open(path string) (*LibraryStore, error) {
	db, err := pebble.Open(path, &pebble.Options{
		FormatMajorVersion: pebble.FormatNewest,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open library store: %w", err)
	}
	return &LibraryStore{db: db}, nil
}

// Close closes the underlying PebbleDB
func (s *LibraryStore) Close() error {
	return s.db.Close()
}

// Save stores the library, replacing any previous snapshot
func (s *LibraryStore) Save(lib *models.Library) error {
	data, err := json.Marshal(lib)
	if err != nil {
		return fmt.Errorf("failed to marshal library: %w", err)
	}
	if err := s.db.Set([]byte(libraryKey), data, pebble.Sync); err != nil {
		return fmt.Errorf("failed to write library: %w", err)
	}
	return nil
}

// Load returns the stored library, or ErrNotFound
func (s *LibraryStore) Load() (*models.Library, error) {
	value, closer, err := s.db.Get([]byte(libraryKey))
	if err == pebble.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read library: %w", err)
	}
	defer closer.Close()

	var lib models.Library
	if err := json.Unmarshal(value, &lib); err != nil {
		return nil, fmt.Errorf("failed to unmarshal library: %w", err)
	}
	return &lib, nil
}

// Delete removes the stored library. Deleting a missing snapshot is not
// an error.
func (s *LibraryStore) Delete() error {
	if err := s.db.Delete([]byte(libraryKey), pebble.Sync); err != nil {
		return fmt.Errorf("failed to delete library: %w", err)
	}
	return nil
}

// Exists reports whether a library snapshot is stored
func (s *LibraryStore) Exists() (bool, error) {
	_, closer, err := s.db.Get([]byte(libraryKey))
	if err == pebble.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check library: %w", err)
	}
	closer.Close()
	return true, nil
}
