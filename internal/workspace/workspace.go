// Package workspace defines the on-disk layout of an isnad workspace and
// the idempotent scaffold that seeds it.
package workspace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/isnad-dev/isnad/internal/board"
	"github.com/isnad-dev/isnad/internal/eventlog"
)

// Paths holds every file and directory the workspace owns, rooted at Root.
type Paths struct {
	Root      string
	IsnadDir  string
	Ledger    string
	Control   string
	StateDir  string
	BoardJSON string
	BoardMD   string
	Cursors   string
}

// For computes the fixed workspace layout under root. It performs no I/O.
func For(root string) Paths {
	isnadDir := filepath.Join(root, ".isnad")
	stateDir := filepath.Join(isnadDir, "state")
	return Paths{
		Root:      root,
		IsnadDir:  isnadDir,
		Ledger:    filepath.Join(isnadDir, "ledger.jsonl"),
		Control:   filepath.Join(isnadDir, "control.jsonl"),
		StateDir:  stateDir,
		BoardJSON: filepath.Join(stateDir, "board.json"),
		BoardMD:   filepath.Join(stateDir, "board.md"),
		Cursors:   filepath.Join(stateDir, "cursors.json"),
	}
}

// Cursors is the contents of state/cursors.json.
type Cursors struct {
	GeneratedAt        string `json:"generated_at"`
	ControlAckCursor   *string `json:"control_ack_cursor"`
	LastSeenControlSeq int64   `json:"last_seen_control_seq"`
	LastAckControlSeq  int64   `json:"last_ack_control_seq"`
	FoldedControlBytes int64   `json:"folded_control_bytes"`
	FoldedLedgerBytes  int64   `json:"folded_ledger_bytes"`
}

// Scaffold idempotently creates the workspace's directory tree and seed
// files. If force is true, board.json/board.md/cursors.json are rewritten
// even if present; ledger.jsonl and control.jsonl are never overwritten
// once they exist, matching the append-only contract.
func Scaffold(root string, force bool) (Paths, error) {
	p := For(root)
	if err := os.MkdirAll(p.StateDir, 0755); err != nil {
		return p, fmt.Errorf("create dir %s: %w", p.StateDir, err)
	}

	if !exists(p.Ledger) {
		id, err := eventlog.NewID("L", 12)
		if err != nil {
			return p, fmt.Errorf("generate init record id: %w", err)
		}
		init := map[string]any{
			"id":     id,
			"ts":     eventlog.NowRFC3339(),
			"type":   "init",
			"claim":  "Initialized isnad workspace.",
			"action": "Created .isnad directory and initial state files.",
			"artifact": map[string]any{
				"path": ".isnad",
			},
			"evidence": map[string]any{
				"cwd": p.Root,
			},
			"next_decision": "continue",
			"meta": map[string]any{
				"scaffold_version": 1,
				"actor":            "agent",
			},
		}
		if err := eventlog.Append(p.Ledger, init); err != nil {
			return p, fmt.Errorf("seed ledger: %w", err)
		}
	}

	if !exists(p.Control) {
		if err := os.WriteFile(p.Control, nil, 0644); err != nil {
			return p, fmt.Errorf("write %s: %w", p.Control, err)
		}
	}

	if force || !exists(p.BoardJSON) {
		empty := board.Empty()
		if err := writeJSONPretty(p.BoardJSON, empty); err != nil {
			return p, fmt.Errorf("write %s: %w", p.BoardJSON, err)
		}
	}

	if force || !exists(p.BoardMD) {
		md := "# Board (derived)\n\nRun `isnad fold` to regenerate.\n"
		if err := os.WriteFile(p.BoardMD, []byte(md), 0644); err != nil {
			return p, fmt.Errorf("write %s: %w", p.BoardMD, err)
		}
	}

	if force || !exists(p.Cursors) {
		c := Cursors{GeneratedAt: eventlog.NowRFC3339()}
		if err := writeJSONPretty(p.Cursors, c); err != nil {
			return p, fmt.Errorf("write %s: %w", p.Cursors, err)
		}
	}

	return p, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func writeJSONPretty(path string, value any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0644)
}

// WriteCursors persists cursor bookkeeping after a fold run.
func WriteCursors(root string, c Cursors) error {
	p := For(root)
	return writeJSONPretty(p.Cursors, c)
}
