package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/isnad-dev/isnad/internal/config"
	"github.com/isnad-dev/isnad/internal/directive"
	"github.com/isnad-dev/isnad/internal/telemetry"
	"github.com/isnad-dev/isnad/internal/workspace"
)

// loadTracer builds the Tracer a directive command should append/ack
// under: Noop unless .isnad/config.toml under root enables telemetry.
func loadTracer(root string) (*telemetry.Tracer, error) {
	cfg, err := config.LoadWorkspace(root)
	if err != nil {
		return nil, err
	}
	if !cfg.Telemetry.Enabled {
		return telemetry.Noop(), nil
	}
	tp, err := telemetry.Setup(context.Background(), true, cfg.Telemetry.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("setup telemetry: %w", err)
	}
	return telemetry.FromProvider(tp), nil
}

func parseJSONObject(raw, what string) (map[string]any, error) {
	var v map[string]any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("parse %s as JSON: %w", what, err)
	}
	return v, nil
}

// Run validates and appends one directive to control.jsonl.
func (c *AppendDirectiveCmd) Run() error {
	root, err := filepath.Abs(c.Root)
	if err != nil {
		return fmt.Errorf("resolve root: %w", err)
	}
	p, err := workspace.Scaffold(root, false)
	if err != nil {
		return err
	}

	payload, err := parseJSONObject(c.Payload, "payload")
	if err != nil {
		return err
	}
	meta, err := parseJSONObject(c.Meta, "meta")
	if err != nil {
		return err
	}

	tracer, err := loadTracer(root)
	if err != nil {
		return err
	}
	_, span := tracer.StartDirective(context.Background(), "control", c.Type)
	id, err := directive.AppendDirective(p.Control, directive.AppendDirectiveParams{
		Type:      c.Type,
		TaskID:    c.Task,
		Payload:   payload,
		Rationale: c.Rationale,
		Author:    c.Author,
		Meta:      meta,
	})
	tracer.EndDirective(span, id, err)
	if err != nil {
		return err
	}
	fmt.Printf("Appended directive %s to %s\n", id, p.Control)
	return nil
}

// Run validates and appends one freeform record to ledger.jsonl.
func (c *AppendLedgerCmd) Run() error {
	root, err := filepath.Abs(c.Root)
	if err != nil {
		return fmt.Errorf("resolve root: %w", err)
	}
	p, err := workspace.Scaffold(root, false)
	if err != nil {
		return err
	}

	meta, err := parseJSONObject(c.Meta, "meta")
	if err != nil {
		return err
	}

	tracer, err := loadTracer(root)
	if err != nil {
		return err
	}
	_, span := tracer.StartDirective(context.Background(), "ledger", c.Type)
	id, err := directive.AppendLedger(p.Ledger, directive.AppendLedgerParams{
		Type:         c.Type,
		Topic:        c.Topic,
		TaskID:       c.Task,
		Claim:        c.Claim,
		Action:       c.Action,
		Artifact:     c.Artifact,
		Evidence:     c.Evidence,
		NextDecision: c.Next,
		Meta:         meta,
	})
	tracer.EndDirective(span, id, err)
	if err != nil {
		return err
	}
	fmt.Printf("Appended ledger record %s to %s\n", id, p.Ledger)
	return nil
}

// Run acknowledges outstanding directives into the ledger.
func (c *AckDirectivesCmd) Run() error {
	root, err := filepath.Abs(c.Root)
	if err != nil {
		return fmt.Errorf("resolve root: %w", err)
	}
	p, err := workspace.Scaffold(root, false)
	if err != nil {
		return err
	}

	tracer, err := loadTracer(root)
	if err != nil {
		return err
	}
	_, span := tracer.StartDirective(context.Background(), "ledger", "ack_directive")
	results, err := directive.AckDirectives(p.Ledger, p.Control, c.Limit, c.Actor, c.DryRun, os.Stdout)
	tracer.EndDirective(span, fmt.Sprintf("%d receipts", len(results)), err)
	if err != nil {
		return err
	}

	if !c.DryRun {
		fmt.Printf("Acknowledged %d directive(s) into %s\n", len(results), p.Ledger)
	}
	return nil
}
