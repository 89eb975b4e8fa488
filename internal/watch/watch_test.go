package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNew_SignalsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.jsonl")
	if err := os.WriteFile(path, []byte("{}\n"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	w, err := New(path)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	defer w.Close()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open append: %v", err)
	}
	if _, err := f.WriteString(`{"type":"task_opened"}` + "\n"); err != nil {
		t.Fatalf("write: %v", err)
	}
	f.Close()

	select {
	case <-w.Signals:
	case err := <-w.Errors:
		t.Fatalf("unexpected watcher error: %v", err)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for debounced signal")
	}
}

func TestClose_StopsDeliveringSignals(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.jsonl")
	if err := os.WriteFile(path, []byte("{}\n"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	w, err := New(path)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	_, ok := <-w.Signals
	if ok {
		t.Errorf("expected Signals channel to be closed")
	}
}
