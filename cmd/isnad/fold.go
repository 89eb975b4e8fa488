package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/isnad-dev/isnad/internal/board"
	"github.com/isnad-dev/isnad/internal/config"
	"github.com/isnad-dev/isnad/internal/eventlog"
	"github.com/isnad-dev/isnad/internal/telemetry"
	"github.com/isnad-dev/isnad/internal/watch"
	"github.com/isnad-dev/isnad/internal/workspace"
)

// Run folds the two logs once, writing board.json and board.md. With
// --watch it keeps folding whenever either log changes, debounced per
// internal/watch, until interrupted.
func (c *FoldCmd) Run() error {
	root, err := filepath.Abs(c.Root)
	if err != nil {
		return fmt.Errorf("resolve root: %w", err)
	}
	p, err := workspace.Scaffold(root, false)
	if err != nil {
		return err
	}

	cfg, err := config.LoadWorkspace(root)
	if err != nil {
		return err
	}
	ctx := context.Background()
	tracer := telemetry.Noop()
	if cfg.Telemetry.Enabled {
		tp, err := telemetry.Setup(ctx, true, cfg.Telemetry.Endpoint)
		if err != nil {
			return fmt.Errorf("setup telemetry: %w", err)
		}
		tracer = telemetry.FromProvider(tp)
	}

	if err := runFold(ctx, tracer, p); err != nil {
		return err
	}

	if !c.Watch {
		return nil
	}

	w, err := watch.New(p.Ledger, p.Control)
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer w.Close()

	interval := c.Interval
	if interval < 0.1 {
		interval = 0.1
	}
	fmt.Printf("Watching for changes, at most one fold every %.2gs (Ctrl-C to stop).\n", interval)

	minGap := time.Duration(interval * float64(time.Second))
	lastFold := time.Now()
	for {
		select {
		case _, ok := <-w.Signals:
			if !ok {
				return nil
			}
			if wait := minGap - time.Since(lastFold); wait > 0 {
				time.Sleep(wait)
			}
			lastFold = time.Now()
			if err := runFold(ctx, tracer, p); err != nil {
				fmt.Fprintf(os.Stderr, "fold error: %v\n", err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
		}
	}
}

// runFold performs one fold pass, writes the derived board, and refreshes
// state/cursors.json from what was just read so the cursor bookkeeping
// tracks live progress instead of Scaffold's write-once skeleton.
func runFold(ctx context.Context, tracer *telemetry.Tracer, p workspace.Paths) error {
	start := time.Now()
	_, span := tracer.StartFold(ctx, p.Ledger, p.Control)
	b, err := board.Fold(p.Ledger, p.Control)
	tracer.EndFold(span, b.TaskCount(), err)
	if err != nil {
		return err
	}
	if err := board.WriteState(p.BoardJSON, p.BoardMD, b); err != nil {
		return err
	}
	if err := writeCursors(p, b); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", p.BoardJSON)
	fmt.Printf("Wrote %s (%dms)\n", p.BoardMD, time.Since(start).Milliseconds())
	return nil
}

// writeCursors recomputes state/cursors.json's bookkeeping fields from the
// same two logs the fold just read: the highest control seq seen at all,
// the fold's own ack cursor, and each log's current byte length.
func writeCursors(p workspace.Paths, b board.Board) error {
	controlRecs, err := eventlog.Read(p.Control)
	if err != nil {
		return err
	}
	var lastSeenControlSeq int64
	if n := len(controlRecs); n > 0 {
		lastSeenControlSeq = controlRecs[n-1].Seq()
	}

	var ledgerBytes, controlBytes int64
	if info, statErr := os.Stat(p.Ledger); statErr == nil {
		ledgerBytes = info.Size()
	}
	if info, statErr := os.Stat(p.Control); statErr == nil {
		controlBytes = info.Size()
	}

	return workspace.WriteCursors(p.Root, workspace.Cursors{
		GeneratedAt:        b.GeneratedAt,
		ControlAckCursor:   b.LastAckDirectiveID,
		LastSeenControlSeq: lastSeenControlSeq,
		LastAckControlSeq:  b.LastAckControlSeq,
		FoldedControlBytes: controlBytes,
		FoldedLedgerBytes:  ledgerBytes,
	})
}
