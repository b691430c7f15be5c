// Showlist - Live Event Discovery and Recommendations
// Copyright 2026 Aasim S. (aasimsyed)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aasimsyed/showlist

package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"
)

func testSlogLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestSupervisorTreeConstruction(t *testing.T) {
	t.Run("creates root with compute layer", func(t *testing.T) {
		tree, err := NewSupervisorTree(testSlogLogger(), TreeConfig{
			FailureThreshold: 5,
			FailureBackoff:   time.Second,
			ShutdownTimeout:  10 * time.Second,
		})
		if err != nil {
			t.Fatalf("failed to create tree: %v", err)
		}

		if tree.Root() == nil {
			t.Error("root supervisor should not be nil")
		}
		if tree.compute == nil {
			t.Error("compute supervisor should not be nil")
		}
	})

	t.Run("applies default values for zero config", func(t *testing.T) {
		tree, err := NewSupervisorTree(testSlogLogger(), TreeConfig{})
		if err != nil {
			t.Fatalf("failed to create tree: %v", err)
		}

		if tree.config.FailureThreshold != 5.0 {
			t.Errorf("expected default FailureThreshold 5.0, got %f", tree.config.FailureThreshold)
		}
		if tree.config.FailureDecay != 30.0 {
			t.Errorf("expected default FailureDecay 30.0, got %f", tree.config.FailureDecay)
		}
		if tree.config.FailureBackoff != 15*time.Second {
			t.Errorf("expected default FailureBackoff 15s, got %v", tree.config.FailureBackoff)
		}
		if tree.config.ShutdownTimeout != 10*time.Second {
			t.Errorf("expected default ShutdownTimeout 10s, got %v", tree.config.ShutdownTimeout)
		}
	})
}

func TestSupervisorTreeLifecycle(t *testing.T) {
	t.Run("tree starts and stops gracefully", func(t *testing.T) {
		tree, err := NewSupervisorTree(testSlogLogger(), TreeConfig{
			FailureThreshold: 5,
			FailureBackoff:   100 * time.Millisecond,
			ShutdownTimeout:  time.Second,
		})
		if err != nil {
			t.Fatalf("failed to create tree: %v", err)
		}

		svc := NewMockService("mock-compute")
		tree.AddComputeService(svc)

		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()

		errCh := make(chan error, 1)
		go func() { errCh <- tree.Serve(ctx) }()

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
				t.Errorf("Serve() error = %v, want context end", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("tree did not stop after context end")
		}

		if svc.StartCount() == 0 {
			t.Error("compute service never started")
		}
	})

	t.Run("restarts a failing service", func(t *testing.T) {
		tree, err := NewSupervisorTree(testSlogLogger(), TreeConfig{
			FailureThreshold: 10,
			FailureBackoff:   50 * time.Millisecond,
			ShutdownTimeout:  time.Second,
		})
		if err != nil {
			t.Fatalf("failed to create tree: %v", err)
		}

		svc := NewMockService("flaky-compute")
		svc.SetFailCount(2)
		tree.AddComputeService(svc)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go func() { _ = tree.Serve(ctx) }()

		deadline := time.Now().Add(3 * time.Second)
		for time.Now().Before(deadline) {
			if svc.StartCount() >= 3 {
				break
			}
			time.Sleep(10 * time.Millisecond)
		}
		if got := svc.StartCount(); got < 3 {
			t.Errorf("service started %d times, want at least 3 (2 failures + recovery)", got)
		}
	})

	t.Run("remove and wait stops the service", func(t *testing.T) {
		tree, err := NewSupervisorTree(testSlogLogger(), TreeConfig{
			ShutdownTimeout: time.Second,
		})
		if err != nil {
			t.Fatalf("failed to create tree: %v", err)
		}

		svc := NewMockService("removable")
		token := tree.AddComputeService(svc)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() { _ = tree.Serve(ctx) }()

		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) && svc.StartCount() == 0 {
			time.Sleep(10 * time.Millisecond)
		}
		if svc.StartCount() == 0 {
			t.Fatal("service never started")
		}

		if err := tree.RemoveAndWait(token, time.Second); err != nil {
			t.Errorf("RemoveAndWait() error = %v", err)
		}
		if svc.StopCount() == 0 {
			t.Error("service did not stop after removal")
		}
	})
}
