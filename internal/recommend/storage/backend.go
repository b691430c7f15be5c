// Showlist - Live Event Discovery and Recommendations
// Copyright 2026 Aasim S. (aasimsyed)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aasimsyed/showlist

package storage

import "sync"

// Backend is the minimal key-value surface the recommendation store
// needs. Keeping it this small lets hosts swap the persistence
// mechanics without touching the store logic.
type Backend interface {
	// Put stores a value under a key, replacing any existing value.
	Put(key string, value []byte) error

	// Get returns the value for a key. The boolean reports whether the
	// key exists; a missing key is not an error.
	Get(key string) ([]byte, bool, error)

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(key string) error

	// Close releases backend resources.
	Close() error
}

// MemoryBackend is an in-process Backend for tests and ephemeral hosts.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

// Put stores a copy of the value.
func (m *MemoryBackend) Put(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

// Get returns a copy of the stored value.
func (m *MemoryBackend) Get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

// Delete removes a key.
func (m *MemoryBackend) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Close is a no-op for the in-memory backend.
func (m *MemoryBackend) Close() error {
	return nil
}

// Compile-time interface checks.
var (
	_ Backend = (*MemoryBackend)(nil)
	_ Backend = (*BadgerBackend)(nil)
)
