// Showlist - Live Event Discovery and Recommendations
// Copyright 2026 Aasim S. (aasimsyed)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aasimsyed/showlist

// Package storage persists recommendation engine state across restarts:
// trained scorer weights as versioned gob snapshots, and recommendation
// lists behind a pluggable key-value backend.
//
// # Model Format
//
// Each model snapshot is gob-encoded, checksummed with SHA-256, gzip
// compressed, and written as {name}_v{version}.gob.gz. The checksum is
// verified on load so a corrupted snapshot fails loudly instead of
// producing garbage scores.
//
// # Thread Safety
//
// All operations are safe for concurrent use.
package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// ErrModelNotFound is returned when no snapshot exists for a model name.
var ErrModelNotFound = errors.New("model not found")

// ModelMetadata describes a stored model snapshot.
type ModelMetadata struct {
	// Name is the model identifier (e.g., "learned").
	Name string `json:"name"`

	// Version is monotonically increasing per model name.
	Version int `json:"version"`

	// TrainedAt is when the training run that produced this snapshot
	// completed.
	TrainedAt time.Time `json:"trained_at"`

	// SavedAt is when the snapshot was written.
	SavedAt time.Time `json:"saved_at"`

	// ExampleCount is the number of training examples used.
	ExampleCount int `json:"example_count"`

	// Checksum is the SHA-256 of the uncompressed gob payload.
	Checksum string `json:"checksum"`

	// SizeBytes is the compressed payload size.
	SizeBytes int64 `json:"size_bytes"`

	// TrainingDurationMS is how long the training run took.
	TrainingDurationMS int64 `json:"training_duration_ms"`
}

// NetworkState is the serializable weight set of the learned scorer's
// feed-forward network. W1 and W2 are row-major [out][in] matrices.
type NetworkState struct {
	InputSize int
	Hidden1   int
	Hidden2   int

	W1, B1 []float64
	W2, B2 []float64
	W3     []float64
	B3     float64
}

// storedFile is the on-disk layout of a snapshot.
type storedFile struct {
	Metadata       ModelMetadata
	CompressedData []byte
}

// ModelStore manages versioned model snapshots in a directory.
type ModelStore struct {
	baseDir string
	mu      sync.RWMutex

	// Latest known version per model name.
	versions map[string]int
}

// NewModelStore creates a model store at the given directory, creating
// it if needed and indexing any existing snapshots.
func NewModelStore(baseDir string) (*ModelStore, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil { //nolint:gosec // 0750 is acceptable for model storage
		return nil, fmt.Errorf("create model directory: %w", err)
	}

	s := &ModelStore{
		baseDir:  baseDir,
		versions: make(map[string]int),
	}

	if err := s.scanSnapshots(); err != nil {
		return nil, fmt.Errorf("scan existing models: %w", err)
	}

	return s, nil
}

// scanSnapshots indexes the latest version of each model on disk.
func (s *ModelStore) scanSnapshots() error {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name, version, ok := parseSnapshotFilename(entry.Name())
		if !ok {
			continue
		}

		if current, known := s.versions[name]; !known || version > current {
			s.versions[name] = version
		}
	}

	return nil
}

// parseSnapshotFilename splits "{name}_v{version}.gob.gz" into its parts.
func parseSnapshotFilename(filename string) (name string, version int, ok bool) {
	base, found := strings.CutSuffix(filename, ".gob.gz")
	if !found {
		if base, found = strings.CutSuffix(filename, ".gob"); !found {
			return "", 0, false
		}
	}

	idx := strings.LastIndex(base, "_v")
	if idx < 1 {
		return "", 0, false
	}

	if _, err := fmt.Sscanf(base[idx+2:], "%d", &version); err != nil || version < 1 {
		return "", 0, false
	}

	return base[:idx], version, true
}

// Save writes a snapshot for the given model name and version. The
// metadata's Name, Version, Checksum, SizeBytes, and SavedAt fields are
// filled in here.
//
//nolint:gocritic // meta passed by value is acceptable for this write operation
func (s *ModelStore) Save(_ context.Context, name string, version int, data interface{}, meta ModelMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(data); err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	rawData := buf.Bytes()

	hash := sha256.Sum256(rawData)
	meta.Checksum = hex.EncodeToString(hash[:])

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(rawData); err != nil {
		return fmt.Errorf("compress model: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return fmt.Errorf("finalize compression: %w", err)
	}

	meta.Name = name
	meta.Version = version
	meta.SizeBytes = int64(compressed.Len())
	meta.SavedAt = time.Now()

	f, err := os.Create(s.snapshotPath(name, version)) //nolint:gosec // path is constructed from trusted name parameter
	if err != nil {
		return fmt.Errorf("create model file: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // close error after successful encode is not actionable

	// Single gob-encoded struct so metadata and payload stay together.
	sf := storedFile{
		Metadata:       meta,
		CompressedData: compressed.Bytes(),
	}
	if err := gob.NewEncoder(f).Encode(sf); err != nil {
		return fmt.Errorf("write model file: %w", err)
	}

	if current, known := s.versions[name]; !known || version > current {
		s.versions[name] = version
	}

	return nil
}

// Load reads a snapshot into target. Version 0 loads the latest.
func (s *ModelStore) Load(_ context.Context, name string, version int, target interface{}) (*ModelMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if version == 0 {
		var known bool
		version, known = s.versions[name]
		if !known {
			return nil, fmt.Errorf("%s: %w", name, ErrModelNotFound)
		}
	}

	f, err := os.Open(s.snapshotPath(name, version)) //nolint:gosec // path is constructed from trusted name parameter
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s v%d: %w", name, version, ErrModelNotFound)
		}
		return nil, fmt.Errorf("open model file: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // close error after read is not actionable

	var sf storedFile
	if err := gob.NewDecoder(f).Decode(&sf); err != nil {
		return nil, fmt.Errorf("read model file: %w", err)
	}

	gzr, err := gzip.NewReader(bytes.NewReader(sf.CompressedData))
	if err != nil {
		return nil, fmt.Errorf("decompress model: %w", err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // close error after read is not actionable

	rawData, err := io.ReadAll(gzr)
	if err != nil {
		return nil, fmt.Errorf("read decompressed data: %w", err)
	}

	hash := sha256.Sum256(rawData)
	if checksum := hex.EncodeToString(hash[:]); checksum != sf.Metadata.Checksum {
		return nil, fmt.Errorf("checksum mismatch for %s v%d: expected %s, got %s",
			name, version, sf.Metadata.Checksum, checksum)
	}

	if err := gob.NewDecoder(bytes.NewReader(rawData)).Decode(target); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}

	return &sf.Metadata, nil
}

// LoadLatest reads the newest snapshot for a model into target.
func (s *ModelStore) LoadLatest(ctx context.Context, name string, target interface{}) (*ModelMetadata, error) {
	return s.Load(ctx, name, 0, target)
}

// LatestVersion returns the newest known version for a model name.
func (s *ModelStore) LatestVersion(name string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	version, known := s.versions[name]
	return version, known
}

// List returns metadata for the latest snapshot of every model.
func (s *ModelStore) List(_ context.Context) ([]ModelMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var models []ModelMetadata
	for name, version := range s.versions {
		f, err := os.Open(s.snapshotPath(name, version)) //nolint:gosec // path is constructed from indexed names
		if err != nil {
			continue
		}

		var sf storedFile
		err = gob.NewDecoder(f).Decode(&sf)
		_ = f.Close() //nolint:errcheck // close error after read is not actionable
		if err != nil {
			continue
		}

		models = append(models, sf.Metadata)
	}

	return models, nil
}

// Delete removes a specific snapshot and re-indexes the model's latest
// version.
func (s *ModelStore) Delete(_ context.Context, name string, version int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.snapshotPath(name, version)); err != nil {
		return fmt.Errorf("delete model: %w", err)
	}

	if s.versions[name] != version {
		return nil
	}

	remaining, err := s.diskVersions(name)
	if err != nil {
		return err
	}
	if len(remaining) == 0 {
		delete(s.versions, name)
		return nil
	}
	s.versions[name] = remaining[len(remaining)-1]
	return nil
}

// Prune removes old snapshots, keeping only the newest keepVersions.
func (s *ModelStore) Prune(_ context.Context, name string, keepVersions int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if keepVersions < 1 {
		keepVersions = 1
	}

	versions, err := s.diskVersions(name)
	if err != nil {
		return err
	}

	for i := 0; i < len(versions)-keepVersions; i++ {
		_ = os.Remove(s.snapshotPath(name, versions[i])) //nolint:errcheck // best-effort cleanup of old versions
	}

	return nil
}

// diskVersions returns all on-disk versions for a model, ascending.
// Callers must hold at least the read lock.
func (s *ModelStore) diskVersions(name string) ([]int, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read model directory: %w", err)
	}

	var versions []int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		entryName, version, ok := parseSnapshotFilename(entry.Name())
		if !ok || entryName != name {
			continue
		}
		versions = append(versions, version)
	}

	sort.Ints(versions)
	return versions, nil
}

// snapshotPath returns the file path for a model version.
func (s *ModelStore) snapshotPath(name string, version int) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("%s_v%d.gob.gz", name, version))
}

// Register gob types for serialization.
//
//nolint:gochecknoinits // gob.Register must be called in init for type registration
func init() {
	gob.Register(NetworkState{})
	gob.Register(ModelMetadata{})
	gob.Register(storedFile{})
}
