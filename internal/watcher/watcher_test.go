package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRun_ReportsDeletion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "spaceweather.db")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deleted := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, dir, "spaceweather.db", slog.Default(), func() {
			select {
			case deleted <- struct{}{}:
			default:
			}
		})
	}()

	// Give the watch a moment to establish before unlinking.
	time.Sleep(100 * time.Millisecond)
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove file: %v", err)
	}

	select {
	case <-deleted:
	case <-time.After(5 * time.Second):
		t.Fatal("deletion was not reported")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestRun_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	other := filepath.Join(dir, "unrelated.tmp")
	if err := os.WriteFile(other, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deleted := make(chan struct{}, 1)
	go func() {
		_ = Run(ctx, dir, "spaceweather.db", slog.Default(), func() {
			deleted <- struct{}{}
		})
	}()

	time.Sleep(100 * time.Millisecond)
	if err := os.Remove(other); err != nil {
		t.Fatalf("remove file: %v", err)
	}

	select {
	case <-deleted:
		t.Fatal("deletion of an unrelated file was reported")
	case <-time.After(500 * time.Millisecond):
	}
}

func TestRun_MissingDirectory(t *testing.T) {
	err := Run(context.Background(), filepath.Join(t.TempDir(), "nope"), "spaceweather.db", slog.Default(), func() {})
	if err == nil {
		t.Fatal("expected error for a missing directory")
	}
}
