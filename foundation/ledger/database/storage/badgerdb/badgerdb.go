// Package badgerdb implements the ledger KV contract on top of BadgerDB
// for durable single-node storage.
package badgerdb

import (
	"errors"

	"github.com/dgraph-io/badger/v4"

	"github.com/quarrychain/quarry/foundation/ledger/database"
)

// DB wraps a badger instance implementing database.KVStore.
type DB struct {
	db *badger.DB
}

// New opens or creates the badger database at the specified path. Badger's
// own logging is silenced, the node narrates through its event handler.
func New(path string) (*DB, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &DB{db: db}, nil
}

// Get returns the value stored under the key.
func (d *DB) Get(key []byte) ([]byte, error) {
	var value []byte

	err := d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		value, err = item.ValueCopy(nil)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return value, nil
}

// Put stores the value under the key, replacing any previous value.
func (d *DB) Put(key []byte, value []byte) error {
	return d.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

// Delete removes the key. Deleting a missing key is not an error.
func (d *DB) Delete(key []byte) error {
	return d.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

// Has reports whether the key is present.
func (d *DB) Has(key []byte) (bool, error) {
	err := d.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

// ForEach calls fn for every key carrying the prefix, in ascending key
// order. An error from fn stops the walk and is returned.
func (d *DB) ForEach(prefix []byte, fn func(key []byte, value []byte) error) error {
	return d.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()

			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}

			if err := fn(item.KeyCopy(nil), value); err != nil {
				return err
			}
		}

		return nil
	})
}

// Close flushes and releases the badger instance.
func (d *DB) Close() error {
	return d.db.Close()
}
