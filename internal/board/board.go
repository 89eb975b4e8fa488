// Package board implements the projector: a deterministic fold of the
// ledger and control logs into a materialised Kanban-style Board view.
package board

import (
	"sort"
	"strconv"
	"strings"
)

// Statuses is the fixed, ordered set of card statuses.
var Statuses = [6]string{"backlog", "next", "doing", "blocked", "done", "rejected"}

// Priorities is the fixed set of card priorities.
var Priorities = [4]string{"low", "medium", "high", "urgent"}

func isStatus(s string) bool {
	for _, x := range Statuses {
		if x == s {
			return true
		}
	}
	return false
}

func isPriority(p string) bool {
	for _, x := range Priorities {
		if x == p {
			return true
		}
	}
	return false
}

func priorityRank(p string) int {
	switch p {
	case "low":
		return 1
	case "medium":
		return 2
	case "high":
		return 3
	case "urgent":
		return 4
	default:
		return 0
	}
}

// card is the projector's internal, mutable per-task accumulator.
type card struct {
	taskID            string
	title             string
	status            string
	priority          string
	updatedAt         string
	updatedSeq        int64
	latestSnapshotID  *string
	provisional       bool
}

func newCard(taskID string, provisional bool) *card {
	return &card{
		taskID:      taskID,
		title:       "Untitled task",
		status:      "backlog",
		priority:    "medium",
		provisional: provisional,
	}
}

// setUpdated bumps the card's cursor only when the new seq is >= current,
// matching the tie-break rule in spec §4.2.
func (c *card) setUpdated(ts string, seq int64) {
	if seq >= c.updatedSeq {
		c.updatedSeq = seq
		if ts != "" {
			c.updatedAt = ts
		}
	}
}

// Card is the public, immutable view of a projected task.
type Card struct {
	TaskID                string  `json:"task_id"`
	Title                 string  `json:"title"`
	Status                string  `json:"status"`
	Priority              string  `json:"priority"`
	UpdatedAt             string  `json:"updated_at"`
	UpdatedSeq            int64   `json:"updated_seq"`
	LatestSnapshotID      *string `json:"latest_snapshot_id"`
	UnreadDirectiveCount  int     `json:"unread_directive_count"`
	Provisional           bool    `json:"provisional"`
}

// Board is the materialised projector output.
type Board struct {
	GeneratedAt         string                `json:"generated_at"`
	Columns             map[string][]Card     `json:"columns"`
	Cards               map[string]Card       `json:"cards"`
	UnreadDirectives    map[string][]string   `json:"unread_directives"`
	LastAckDirectiveID  *string               `json:"last_ack_directive_id"`
	LastAckDirectiveTS  *string               `json:"last_ack_directive_ts"`
	LastAckControlSeq   int64                 `json:"last_ack_control_seq"`
}

// Empty returns the zero-card board skeleton written by Scaffold, with all
// six column keys present.
func Empty() Board {
	columns := make(map[string][]Card, len(Statuses))
	for _, s := range Statuses {
		columns[s] = []Card{}
	}
	return Board{
		GeneratedAt:      "",
		Columns:          columns,
		Cards:            map[string]Card{},
		UnreadDirectives: map[string][]string{},
	}
}

func strPtr(s string) *string { return &s }

// TaskCount returns the total number of cards across all columns.
func (b Board) TaskCount() int {
	n := 0
	for _, cards := range b.Columns {
		n += len(cards)
	}
	return n
}

// titleIsPlaceholder reports whether a card's current title is one of the
// two synthetic defaults, so an incoming control-side title is allowed to
// override it only in that case (spec §4.2 step 3).
func titleIsPlaceholder(title string) bool {
	return title == "Untitled task" || title == "(unopened task)"
}

// sortColumn orders a column's cards by (priority rank desc, updated_seq desc).
func sortColumn(cards []Card) {
	sort.SliceStable(cards, func(i, j int) bool {
		ri, rj := priorityRank(cards[i].Priority), priorityRank(cards[j].Priority)
		if ri != rj {
			return ri > rj
		}
		return cards[i].UpdatedSeq > cards[j].UpdatedSeq
	})
}

// RenderMarkdown renders the stable human-readable board summary described
// in spec §4.3.
func RenderMarkdown(b Board) string {
	var out strings.Builder
	out.WriteString("# Board (derived)\n\n")
	out.WriteString("Generated: " + b.GeneratedAt + "\n\n")

	for _, status := range Statuses {
		heading := strings.ToUpper(status[:1]) + status[1:]
		out.WriteString("## " + heading + "\n")
		for _, c := range b.Columns[status] {
			provisional := ""
			if c.Provisional {
				provisional = " (provisional)"
			}
			suffix := ""
			if c.UnreadDirectiveCount > 0 {
				suffix = " (unread:" + strconv.Itoa(c.UnreadDirectiveCount) + ")"
			}
			out.WriteString("- [" + c.TaskID + "] " + c.Title + provisional + "  (" + c.Priority + ")" + suffix + "\n")
		}
		out.WriteString("\n")
	}
	return out.String()
}
