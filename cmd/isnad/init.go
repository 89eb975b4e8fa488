package main

import (
	"fmt"
	"path/filepath"

	"github.com/isnad-dev/isnad/internal/board"
	"github.com/isnad-dev/isnad/internal/workspace"
)

// Run scaffolds the workspace, then folds once so board.json/board.md are
// never stale immediately after init.
func (c *InitCmd) Run() error {
	root, err := filepath.Abs(c.Root)
	if err != nil {
		return fmt.Errorf("resolve root: %w", err)
	}
	p, err := workspace.Scaffold(root, c.Force)
	if err != nil {
		return err
	}

	b, err := board.Fold(p.Ledger, p.Control)
	if err != nil {
		return err
	}
	if err := board.WriteState(p.BoardJSON, p.BoardMD, b); err != nil {
		return err
	}

	fmt.Printf("Initialized .isnad at %s\n", p.IsnadDir)
	return nil
}
