// Package memory implements the ledger KV contract with an in-process map.
// It backs tests and short-lived nodes. ForEach walks keys in ascending
// order to match the on-disk implementation.
package memory

import (
	"sort"
	"strings"
	"sync"

	"github.com/quarrychain/quarry/foundation/ledger/database"
)

// DB is an in-memory key/value store implementing database.KVStore.
type DB struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// New constructs an empty in-memory store.
func New() *DB {
	return &DB{
		data: make(map[string][]byte),
	}
}

// Get returns the value stored under the key.
func (db *DB) Get(key []byte) ([]byte, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	value, exists := db.data[string(key)]
	if !exists {
		return nil, database.ErrNotFound
	}

	return append([]byte(nil), value...), nil
}

// Put stores the value under the key, replacing any previous value.
func (db *DB) Put(key []byte, value []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.data[string(key)] = append([]byte(nil), value...)

	return nil
}

// Delete removes the key. Deleting a missing key is not an error.
func (db *DB) Delete(key []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	delete(db.data, string(key))

	return nil
}

// Has reports whether the key is present.
func (db *DB) Has(key []byte) (bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	_, exists := db.data[string(key)]

	return exists, nil
}

// ForEach calls fn for every key carrying the prefix, in ascending key
// order. An error from fn stops the walk and is returned.
func (db *DB) ForEach(prefix []byte, fn func(key []byte, value []byte) error) error {
	db.mu.RLock()
	keys := make([]string, 0, len(db.data))
	for k := range db.data {
		if strings.HasPrefix(k, string(prefix)) {
			keys = append(keys, k)
		}
	}
	db.mu.RUnlock()

	sort.Strings(keys)

	for _, k := range keys {
		db.mu.RLock()
		value, exists := db.data[k]
		if exists {
			value = append([]byte(nil), value...)
		}
		db.mu.RUnlock()

		if !exists {
			continue
		}

		if err := fn([]byte(k), value); err != nil {
			return err
		}
	}

	return nil
}

// Close has nothing to release.
func (db *DB) Close() error {
	return nil
}
