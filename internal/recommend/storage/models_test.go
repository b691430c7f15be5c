// Showlist - Live Event Discovery and Recommendations
// Copyright 2026 Aasim S. (aasimsyed)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aasimsyed/showlist

package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

// testNetworkState builds a small weight set with recognizable values.
func testNetworkState() NetworkState {
	return NetworkState{
		InputSize: 2,
		Hidden1:   2,
		Hidden2:   1,
		W1:        []float64{0.1, 0.2, 0.3, 0.4},
		B1:        []float64{0.01, 0.02},
		W2:        []float64{0.5, 0.6},
		B2:        []float64{0.03},
		W3:        []float64{0.7},
		B3:        0.04,
	}
}

func TestNewModelStore(t *testing.T) {
	t.Parallel()

	// A nested directory that does not exist yet is created.
	dir := filepath.Join(t.TempDir(), "models", "nested")
	store, err := NewModelStore(dir)
	if err != nil {
		t.Fatalf("NewModelStore() error = %v", err)
	}
	if store == nil {
		t.Fatal("NewModelStore() returned nil store")
	}

	if _, known := store.LatestVersion("learned"); known {
		t.Error("LatestVersion() on empty store reported a known model")
	}
}

func TestModelStore_SaveAndLoad(t *testing.T) {
	t.Parallel()

	store, err := NewModelStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewModelStore() error = %v", err)
	}

	ctx := context.Background()
	state := testNetworkState()
	trainedAt := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	meta := ModelMetadata{
		TrainedAt:          trainedAt,
		ExampleCount:       42,
		TrainingDurationMS: 150,
	}
	if err := store.Save(ctx, "learned", 1, state, meta); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	var loaded NetworkState
	gotMeta, err := store.LoadLatest(ctx, "learned", &loaded)
	if err != nil {
		t.Fatalf("LoadLatest() error = %v", err)
	}

	if gotMeta.Name != "learned" {
		t.Errorf("metadata Name = %q, want %q", gotMeta.Name, "learned")
	}
	if gotMeta.Version != 1 {
		t.Errorf("metadata Version = %d, want 1", gotMeta.Version)
	}
	if !gotMeta.TrainedAt.Equal(trainedAt) {
		t.Errorf("metadata TrainedAt = %v, want %v", gotMeta.TrainedAt, trainedAt)
	}
	if gotMeta.ExampleCount != 42 {
		t.Errorf("metadata ExampleCount = %d, want 42", gotMeta.ExampleCount)
	}
	if gotMeta.Checksum == "" {
		t.Error("metadata Checksum is empty")
	}
	if gotMeta.SizeBytes <= 0 {
		t.Errorf("metadata SizeBytes = %d, want > 0", gotMeta.SizeBytes)
	}
	if gotMeta.SavedAt.IsZero() {
		t.Error("metadata SavedAt is zero")
	}

	if loaded.InputSize != state.InputSize || loaded.Hidden1 != state.Hidden1 || loaded.Hidden2 != state.Hidden2 {
		t.Errorf("loaded dimensions = %d/%d/%d, want %d/%d/%d",
			loaded.InputSize, loaded.Hidden1, loaded.Hidden2,
			state.InputSize, state.Hidden1, state.Hidden2)
	}
	for i, w := range state.W1 {
		if loaded.W1[i] != w {
			t.Fatalf("loaded W1[%d] = %f, want %f", i, loaded.W1[i], w)
		}
	}
	if loaded.B3 != state.B3 {
		t.Errorf("loaded B3 = %f, want %f", loaded.B3, state.B3)
	}
}

func TestModelStore_LoadMissing(t *testing.T) {
	t.Parallel()

	store, err := NewModelStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewModelStore() error = %v", err)
	}

	var state NetworkState
	_, err = store.LoadLatest(context.Background(), "learned", &state)
	if !errors.Is(err, ErrModelNotFound) {
		t.Errorf("LoadLatest() on empty store: error = %v, want ErrModelNotFound", err)
	}

	_, err = store.Load(context.Background(), "learned", 3, &state)
	if !errors.Is(err, ErrModelNotFound) {
		t.Errorf("Load() of missing version: error = %v, want ErrModelNotFound", err)
	}
}

func TestModelStore_VersionTracking(t *testing.T) {
	t.Parallel()

	store, err := NewModelStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewModelStore() error = %v", err)
	}

	ctx := context.Background()

	v1 := testNetworkState()
	v1.B3 = 1.0
	v2 := testNetworkState()
	v2.B3 = 2.0

	if err := store.Save(ctx, "learned", 1, v1, ModelMetadata{}); err != nil {
		t.Fatalf("Save(v1) error = %v", err)
	}
	if err := store.Save(ctx, "learned", 2, v2, ModelMetadata{}); err != nil {
		t.Fatalf("Save(v2) error = %v", err)
	}

	version, known := store.LatestVersion("learned")
	if !known || version != 2 {
		t.Errorf("LatestVersion() = (%d, %v), want (2, true)", version, known)
	}

	var loaded NetworkState
	meta, err := store.LoadLatest(ctx, "learned", &loaded)
	if err != nil {
		t.Fatalf("LoadLatest() error = %v", err)
	}
	if meta.Version != 2 || loaded.B3 != 2.0 {
		t.Errorf("LoadLatest() = version %d B3 %f, want version 2 B3 2.0", meta.Version, loaded.B3)
	}

	// An explicit version still loads the older snapshot.
	if _, err := store.Load(ctx, "learned", 1, &loaded); err != nil {
		t.Fatalf("Load(v1) error = %v", err)
	}
	if loaded.B3 != 1.0 {
		t.Errorf("Load(v1) B3 = %f, want 1.0", loaded.B3)
	}
}

func TestModelStore_RescanExisting(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ctx := context.Background()

	first, err := NewModelStore(dir)
	if err != nil {
		t.Fatalf("NewModelStore() error = %v", err)
	}
	if err := first.Save(ctx, "learned", 3, testNetworkState(), ModelMetadata{}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// A fresh store over the same directory indexes what is on disk.
	second, err := NewModelStore(dir)
	if err != nil {
		t.Fatalf("second NewModelStore() error = %v", err)
	}
	version, known := second.LatestVersion("learned")
	if !known || version != 3 {
		t.Errorf("LatestVersion() after rescan = (%d, %v), want (3, true)", version, known)
	}
}

func TestModelStore_Delete(t *testing.T) {
	t.Parallel()

	store, err := NewModelStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewModelStore() error = %v", err)
	}

	ctx := context.Background()
	for v := 1; v <= 2; v++ {
		if err := store.Save(ctx, "learned", v, testNetworkState(), ModelMetadata{}); err != nil {
			t.Fatalf("Save(v%d) error = %v", v, err)
		}
	}

	// Deleting the newest version falls back to the older one.
	if err := store.Delete(ctx, "learned", 2); err != nil {
		t.Fatalf("Delete(v2) error = %v", err)
	}
	version, known := store.LatestVersion("learned")
	if !known || version != 1 {
		t.Errorf("LatestVersion() after delete = (%d, %v), want (1, true)", version, known)
	}

	// Deleting the last version forgets the model entirely.
	if err := store.Delete(ctx, "learned", 1); err != nil {
		t.Fatalf("Delete(v1) error = %v", err)
	}
	if _, known := store.LatestVersion("learned"); known {
		t.Error("LatestVersion() after deleting all versions still reports the model")
	}
}

func TestModelStore_Prune(t *testing.T) {
	t.Parallel()

	store, err := NewModelStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewModelStore() error = %v", err)
	}

	ctx := context.Background()
	for v := 1; v <= 4; v++ {
		if err := store.Save(ctx, "learned", v, testNetworkState(), ModelMetadata{}); err != nil {
			t.Fatalf("Save(v%d) error = %v", v, err)
		}
	}

	if err := store.Prune(ctx, "learned", 2); err != nil {
		t.Fatalf("Prune() error = %v", err)
	}

	var state NetworkState
	for _, v := range []int{1, 2} {
		if _, err := store.Load(ctx, "learned", v, &state); !errors.Is(err, ErrModelNotFound) {
			t.Errorf("Load(v%d) after prune: error = %v, want ErrModelNotFound", v, err)
		}
	}
	for _, v := range []int{3, 4} {
		if _, err := store.Load(ctx, "learned", v, &state); err != nil {
			t.Errorf("Load(v%d) after prune: error = %v", v, err)
		}
	}
}

func TestParseSnapshotFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		filename    string
		wantName    string
		wantVersion int
		wantOK      bool
	}{
		{filename: "learned_v3.gob.gz", wantName: "learned", wantVersion: 3, wantOK: true},
		{filename: "learned_v12.gob", wantName: "learned", wantVersion: 12, wantOK: true},
		{filename: "two_part_name_v1.gob.gz", wantName: "two_part_name", wantVersion: 1, wantOK: true},
		{filename: "notes.txt", wantOK: false},
		{filename: "noversion.gob.gz", wantOK: false},
		{filename: "_v1.gob.gz", wantOK: false},
		{filename: "model_vX.gob.gz", wantOK: false},
		{filename: "model_v0.gob.gz", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			t.Parallel()

			name, version, ok := parseSnapshotFilename(tt.filename)
			if ok != tt.wantOK {
				t.Fatalf("parseSnapshotFilename(%q) ok = %v, want %v", tt.filename, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if name != tt.wantName || version != tt.wantVersion {
				t.Errorf("parseSnapshotFilename(%q) = (%q, %d), want (%q, %d)",
					tt.filename, name, version, tt.wantName, tt.wantVersion)
			}
		})
	}
}
