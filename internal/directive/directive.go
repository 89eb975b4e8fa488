// Package directive implements validated appends to the control and
// ledger logs: new directives, freeform ledger records, and batched
// acknowledgement of outstanding directives.
package directive

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"

	"github.com/isnad-dev/isnad/internal/eventlog"
	"github.com/isnad-dev/isnad/internal/isnaderr"
)

var taskIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)

// taskScopedTypes are directive types that require a task_id.
var taskScopedTypes = map[string]bool{
	"set_status":   true,
	"set_priority": true,
	"pause":        true,
	"resume":       true,
	"note":         true,
}

// ValidateTaskID reports whether id matches the task id grammar from
// spec §4.4: 1-64 chars, first char alphanumeric, remainder alphanumeric/_/-.
func ValidateTaskID(id string) error {
	if !taskIDPattern.MatchString(id) {
		return isnaderr.Invalid("invalid task id %q: must match ^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$", id)
	}
	return nil
}

// AppendDirectiveParams are the inputs to AppendDirective.
type AppendDirectiveParams struct {
	Type      string
	TaskID    string // optional
	Payload   map[string]any
	Rationale string // optional
	Author    string
	Meta      map[string]any
}

// AppendDirective validates and appends one directive to control.jsonl,
// returning the generated id.
func AppendDirective(controlPath string, p AppendDirectiveParams) (string, error) {
	if p.Type == "" {
		return "", isnaderr.Invalid("directive type must not be empty")
	}
	if taskScopedTypes[p.Type] {
		if p.TaskID == "" {
			return "", isnaderr.Invalid("--task is required for type %q", p.Type)
		}
	}
	if p.TaskID != "" {
		if err := ValidateTaskID(p.TaskID); err != nil {
			return "", err
		}
	}
	if p.Payload == nil {
		p.Payload = map[string]any{}
	}
	if p.Meta == nil {
		p.Meta = map[string]any{}
	}

	id, err := eventlog.NewID("D", 12)
	if err != nil {
		return "", fmt.Errorf("generate directive id: %w", err)
	}

	rec := map[string]any{
		"id":      id,
		"ts":      eventlog.NowRFC3339(),
		"type":    p.Type,
		"author":  p.Author,
		"meta":    p.Meta,
		"payload": p.Payload,
	}
	if p.TaskID != "" {
		rec["task_id"] = p.TaskID
	}
	if p.Rationale != "" {
		rec["rationale"] = p.Rationale
	}

	if err := eventlog.Append(controlPath, rec); err != nil {
		return "", isnaderr.IO(fmt.Sprintf("append directive to %s", controlPath), err)
	}
	return id, nil
}

// AppendLedgerParams are the inputs to AppendLedger.
type AppendLedgerParams struct {
	Type         string
	Topic        string
	TaskID       string
	Claim        string
	Action       string
	Artifact     string
	Evidence     string
	NextDecision string
	Meta         map[string]any
}

// AppendLedger validates and appends one freeform record to ledger.jsonl,
// returning the generated id.
func AppendLedger(ledgerPath string, p AppendLedgerParams) (string, error) {
	if p.Type == "" {
		return "", isnaderr.Invalid("ledger record type must not be empty")
	}
	if p.TaskID != "" {
		if err := ValidateTaskID(p.TaskID); err != nil {
			return "", err
		}
	}
	if p.Meta == nil {
		p.Meta = map[string]any{}
	}

	id, err := eventlog.NewID("L", 12)
	if err != nil {
		return "", fmt.Errorf("generate ledger record id: %w", err)
	}

	rec := map[string]any{
		"id":   id,
		"ts":   eventlog.NowRFC3339(),
		"type": p.Type,
		"meta": p.Meta,
	}
	if p.Topic != "" {
		rec["topic"] = p.Topic
	}
	if p.TaskID != "" {
		rec["task_id"] = p.TaskID
	}
	if p.Claim != "" {
		rec["claim"] = p.Claim
	}
	if p.Action != "" {
		rec["action"] = p.Action
	}
	if p.Artifact != "" {
		rec["artifact"] = p.Artifact
	}
	if p.Evidence != "" {
		rec["evidence"] = p.Evidence
	}
	if p.NextDecision != "" {
		rec["next_decision"] = p.NextDecision
	}

	if err := eventlog.Append(ledgerPath, rec); err != nil {
		return "", isnaderr.IO(fmt.Sprintf("append ledger record to %s", ledgerPath), err)
	}
	return id, nil
}

// ackedDirectiveIDs builds the set of directive ids already acknowledged
// in the ledger.
func ackedDirectiveIDs(ledgerPath string) (map[string]bool, error) {
	recs, err := eventlog.Read(ledgerPath)
	if err != nil {
		return nil, isnaderr.IO(fmt.Sprintf("read ledger %s", ledgerPath), err)
	}
	acked := map[string]bool{}
	for _, rec := range recs {
		if rec.String("type") != "ack_directive" {
			continue
		}
		meta := rec.Object("meta")
		if meta == nil {
			continue
		}
		if did, _ := meta["directive_id"].(string); did != "" {
			acked[did] = true
		}
	}
	return acked, nil
}

// AckResult describes one acknowledgement receipt produced by AckDirectives.
type AckResult struct {
	ID          string
	DirectiveID string
	TaskID      any // copied verbatim from the directive, may be nil
	Record      map[string]any
}

// AckDirectives scans control.jsonl in order for directives whose id is not
// yet acknowledged in ledger.jsonl, and for each constructs an ack_directive
// receipt. If dryRun, receipts are written to out instead of the ledger.
// Stops after limit receipts when limit > 0.
func AckDirectives(ledgerPath, controlPath string, limit int, actor string, dryRun bool, out io.Writer) ([]AckResult, error) {
	acked, err := ackedDirectiveIDs(ledgerPath)
	if err != nil {
		return nil, err
	}

	control, err := eventlog.Read(controlPath)
	if err != nil {
		return nil, isnaderr.IO(fmt.Sprintf("read control %s", controlPath), err)
	}

	var results []AckResult
	for _, rec := range control {
		did := rec.String("id")
		if did == "" || acked[did] {
			continue
		}

		id, err := eventlog.NewID("L", 12)
		if err != nil {
			return nil, fmt.Errorf("generate ack id: %w", err)
		}
		taskID, _ := rec["task_id"]

		receipt := map[string]any{
			"id":      id,
			"ts":      eventlog.NowRFC3339(),
			"type":    "ack_directive",
			"task_id": taskID,
			"claim":   fmt.Sprintf("Acknowledged directive %s.", did),
			"action":  "Recorded receipt of human intent; will follow up with actions/tests or cannot_comply.",
			"evidence": map[string]any{
				"control_id": did,
			},
			"next_decision": "continue",
			"meta": map[string]any{
				"directive_id": did,
				"ack_actor":    actor,
			},
		}

		if dryRun {
			if out != nil {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(receipt); err != nil {
					return nil, fmt.Errorf("write receipt: %w", err)
				}
			}
		} else {
			if err := eventlog.Append(ledgerPath, receipt); err != nil {
				return nil, isnaderr.IO(fmt.Sprintf("append ack receipt to %s", ledgerPath), err)
			}
		}

		results = append(results, AckResult{ID: id, DirectiveID: did, TaskID: taskID, Record: receipt})
		if limit > 0 && len(results) >= limit {
			break
		}
	}
	return results, nil
}
