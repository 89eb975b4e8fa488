package workspace

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScaffold_CreatesExpectedLayout(t *testing.T) {
	root := t.TempDir()
	p, err := Scaffold(root, false)
	if err != nil {
		t.Fatalf("scaffold error: %v", err)
	}
	for _, path := range []string{p.Ledger, p.Control, p.BoardJSON, p.BoardMD, p.Cursors} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected %s to exist: %v", path, err)
		}
	}
}

func TestScaffold_IsIdempotent(t *testing.T) {
	root := t.TempDir()
	if _, err := Scaffold(root, false); err != nil {
		t.Fatalf("first scaffold error: %v", err)
	}
	p := For(root)
	before, err := os.ReadFile(p.Ledger)
	if err != nil {
		t.Fatalf("read ledger: %v", err)
	}

	if _, err := Scaffold(root, false); err != nil {
		t.Fatalf("second scaffold error: %v", err)
	}
	after, err := os.ReadFile(p.Ledger)
	if err != nil {
		t.Fatalf("read ledger: %v", err)
	}
	if string(before) != string(after) {
		t.Errorf("expected ledger.jsonl to be bit-identical across scaffold calls")
	}
}

func TestScaffold_ForceRewritesDerivedState(t *testing.T) {
	root := t.TempDir()
	p, err := Scaffold(root, false)
	if err != nil {
		t.Fatalf("scaffold error: %v", err)
	}
	if err := os.WriteFile(p.BoardJSON, []byte("corrupted"), 0644); err != nil {
		t.Fatalf("write error: %v", err)
	}

	if _, err := Scaffold(root, true); err != nil {
		t.Fatalf("forced scaffold error: %v", err)
	}
	data, err := os.ReadFile(p.BoardJSON)
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	if string(data) == "corrupted" {
		t.Errorf("expected force scaffold to rewrite board.json")
	}
}

func TestFor_LayoutMatchesSpec(t *testing.T) {
	p := For("/tmp/proj")
	want := filepath.Join("/tmp/proj", ".isnad", "ledger.jsonl")
	if p.Ledger != want {
		t.Errorf("expected %s, got %s", want, p.Ledger)
	}
}
