// Package rdb implements the in-memory result database: a registry of
// entries, one per solved model, each exposing predicate queries over
// component metadata, time-series selection with sign and bucket
// aggregation, and a registry of materialized tables.
package rdb

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/helios-lab/project-helios/internal/model"
)

// Option configures a Database.
type Option func(*Database)

// WithReplaceEntries makes AddEntry replace an existing entry whose derived
// name collides instead of failing.
func WithReplaceEntries() Option {
	return func(db *Database) { db.replaceEntries = true }
}

// Database is the in-memory registry of entries. Entries are only ever
// removed explicitly; the registry tolerates concurrent readers during a
// single-writer append.
type Database struct {
	mu             sync.RWMutex
	entries        map[string]*Entry // id -> entry
	byName         map[string]string // name -> id
	order          []string          // insertion order of ids
	replaceEntries bool
}

// New creates an empty result database.
func New(opts ...Option) *Database {
	db := &Database{
		entries: make(map[string]*Entry),
		byName:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// AddEntry builds an entry from a solved model, assigns it a fresh
// identifier, registers it under the sanitized model name, and returns it.
func (db *Database) AddEntry(m *model.Solved) (*Entry, error) {
	name := SanitizeName(m.Name)

	entry, err := newEntry(uuid.New().String(), name, m)
	if err != nil {
		return nil, err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if prevID, exists := db.byName[name]; exists {
		if !db.replaceEntries {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateEntry, name)
		}
		db.removeLocked(prevID)
	}

	db.entries[entry.id] = entry
	db.byName[name] = entry.id
	db.order = append(db.order, entry.id)
	return entry, nil
}

// Entries returns all entries in insertion order.
func (db *Database) Entries() []*Entry {
	db.mu.RLock()
	defer db.mu.RUnlock()
	out := make([]*Entry, 0, len(db.order))
	for _, id := range db.order {
		out = append(out, db.entries[id])
	}
	return out
}

// Count returns the number of registered entries.
func (db *Database) Count() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.entries)
}

// Get returns an entry by its identifier.
func (db *Database) Get(id string) (*Entry, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	entry, ok := db.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrEntryNotFound, id)
	}
	return entry, nil
}

// GetByName returns an entry by its registered name.
func (db *Database) GetByName(name string) (*Entry, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	id, ok := db.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrEntryNotFound, name)
	}
	return db.entries[id], nil
}

// Remove deletes an entry by identifier. Removal is always explicit; nothing
// in the database drops entries on its own.
func (db *Database) Remove(id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.entries[id]; !ok {
		return fmt.Errorf("%w: %q", ErrEntryNotFound, id)
	}
	db.removeLocked(id)
	return nil
}

func (db *Database) removeLocked(id string) {
	entry := db.entries[id]
	delete(db.entries, id)
	delete(db.byName, entry.name)
	for i, oid := range db.order {
		if oid == id {
			db.order = append(db.order[:i], db.order[i+1:]...)
			break
		}
	}
}

// SanitizeName maps a model name onto the restricted entry-name alphabet:
// every byte outside [A-Za-z0-9] becomes '_'.
func SanitizeName(name string) string {
	out := []byte(name)
	for i, c := range out {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			continue
		}
		out[i] = '_'
	}
	return string(out)
}
