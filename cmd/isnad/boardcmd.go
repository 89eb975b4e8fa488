package main

import (
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/isnad-dev/isnad/internal/board"
	"github.com/isnad-dev/isnad/internal/boardview"
	"github.com/isnad-dev/isnad/internal/watch"
	"github.com/isnad-dev/isnad/internal/workspace"
)

// Run opens the interactive terminal board viewer, live-refreshing the
// displayed columns whenever the underlying logs change.
func (c *BoardCmd) Run() error {
	root, err := filepath.Abs(c.Root)
	if err != nil {
		return fmt.Errorf("resolve root: %w", err)
	}
	p, err := workspace.Scaffold(root, false)
	if err != nil {
		return err
	}

	initial, err := board.Fold(p.Ledger, p.Control)
	if err != nil {
		return err
	}

	w, err := watch.New(p.Ledger, p.Control)
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer w.Close()

	program := tea.NewProgram(boardview.New(initial))

	go func() {
		for range w.Signals {
			b, err := board.Fold(p.Ledger, p.Control)
			program.Send(boardview.RefreshMsg{Board: b, Err: err})
		}
	}()

	_, err = program.Run()
	return err
}
