// Showlist - Live Event Discovery and Recommendations
// Copyright 2026 Aasim S. (aasimsyed)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aasimsyed/showlist

package storage

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// BadgerBackend is the durable default Backend, storing keyed blobs in
// an embedded BadgerDB so saved recommendations survive restarts.
type BadgerBackend struct {
	db *badger.DB
}

// NewBadgerBackend opens (or creates) a BadgerDB at the given directory.
//
// Example:
//
//	backend, err := NewBadgerBackend("/data/showlist")
//	if err != nil {
//	    return err
//	}
//	defer backend.Close()
func NewBadgerBackend(path string) (*BadgerBackend, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Suppress BadgerDB internal logs
	// Small value log: payloads are a handful of keyed blobs, not the
	// default 1GB workload.
	opts.ValueLogFileSize = 16 << 20 // 16MB
	opts.SyncWrites = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}

	return &BadgerBackend{db: db}, nil
}

// NewBadgerBackendFromDB wraps an existing BadgerDB connection. Useful
// when the host shares one database across stores; Close still closes
// the shared database.
func NewBadgerBackendFromDB(db *badger.DB) *BadgerBackend {
	return &BadgerBackend{db: db}
}

// Put stores a value under a key.
func (b *BadgerBackend) Put(key string, value []byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("badger put %q: %w", key, err)
	}
	return nil
}

// Get returns the value for a key, with a missing key reported via the
// boolean rather than an error.
func (b *BadgerBackend) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("badger get %q: %w", key, err)
	}
	return value, true, nil
}

// Delete removes a key.
func (b *BadgerBackend) Delete(key string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("badger delete %q: %w", key, err)
	}
	return nil
}

// Close closes the underlying database.
func (b *BadgerBackend) Close() error {
	return b.db.Close()
}
