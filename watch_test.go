package stateful

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchFilesReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "states.yaml")
	if err := os.WriteFile(path, []byte("states: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := WatchFiles(path)
	if err != nil {
		t.Fatalf("WatchFiles failed: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("states: [{name: a}]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-w.Events:
		abs, _ := filepath.Abs(path)
		if got != abs {
			t.Errorf("event path = %q, want %q", got, abs)
		}
	case err := <-w.Errors:
		t.Fatalf("watcher error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a write event")
	}
}

func TestWatchFilesIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "watched.yaml")
	sibling := filepath.Join(dir, "sibling.yaml")
	for _, p := range []string{watched, sibling} {
		if err := os.WriteFile(p, []byte("x: 1\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	w, err := WatchFiles(watched)
	if err != nil {
		t.Fatalf("WatchFiles failed: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(sibling, []byte("x: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-w.Events:
		t.Errorf("unexpected event for %q", got)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherCloseIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.yaml")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := WatchFiles(path)
	if err != nil {
		t.Fatalf("WatchFiles failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}

func TestWatchFilesMissingDir(t *testing.T) {
	if _, err := WatchFiles(filepath.Join(t.TempDir(), "ghost", "f.yaml")); err == nil {
		t.Error("watching a file in a missing directory should fail")
	}
}
