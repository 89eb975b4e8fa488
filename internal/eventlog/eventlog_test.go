package eventlog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAppendThenRead_AssignsSeqInOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.jsonl")

	for i, typ := range []string{"init", "task_opened", "snapshot"} {
		if err := Append(path, map[string]any{"id": i, "type": typ}); err != nil {
			t.Fatalf("append error: %v", err)
		}
	}

	recs, err := Read(path)
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}
	for i, rec := range recs {
		if rec.Seq() != int64(i+1) {
			t.Errorf("record %d: expected seq %d, got %d", i, i+1, rec.Seq())
		}
	}
	if recs[1].String("type") != "task_opened" {
		t.Errorf("expected task_opened, got %s", recs[1].String("type"))
	}
}

func TestRead_MissingFileIsEmpty(t *testing.T) {
	recs, err := Read(filepath.Join(t.TempDir(), "nope.jsonl"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("expected 0 records, got %d", len(recs))
	}
}

func TestRead_SkipsBlankAndMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "control.jsonl")
	content := "{\"id\":\"a\",\"type\":\"open_task\"}\n\nnot json\n{\"id\":\"b\",\"type\":\"set_status\"}\n[1,2,3]\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write error: %v", err)
	}

	recs, err := Read(path)
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 valid records, got %d", len(recs))
	}
	if recs[0].Seq() != 1 || recs[1].Seq() != 2 {
		t.Errorf("expected seq 1,2 after skipping bad lines, got %d,%d", recs[0].Seq(), recs[1].Seq())
	}
}

func TestRead_TruncatedTrailingLineIsIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.jsonl")
	content := "{\"id\":\"a\",\"type\":\"init\"}\n{\"id\":\"b\",\"type\":\"snaps"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write error: %v", err)
	}

	recs, err := Read(path)
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record (truncated trailing ignored), got %d", len(recs))
	}
}

func TestNewID_UniqueAndFormatted(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		id, err := NewID("D", 12)
		if err != nil {
			t.Fatalf("NewID error: %v", err)
		}
		if seen[id] {
			t.Fatalf("duplicate id: %s", id)
		}
		seen[id] = true
		if len(id) < len("D_20060102T150405Z_")+12 {
			t.Errorf("unexpected id shape: %s", id)
		}
	}
}
