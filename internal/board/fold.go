package board

import (
	"fmt"

	"github.com/isnad-dev/isnad/internal/eventlog"
	"github.com/isnad-dev/isnad/internal/isnaderr"
)

// Fold reads ledger and control in file order and reduces them to a Board.
// It is pure with respect to the bytes present in both files at read time;
// it never fails on malformed records, only on an I/O error opening either
// file for a reason other than "not found".
func Fold(ledgerPath, controlPath string) (Board, error) {
	ledger, err := eventlog.Read(ledgerPath)
	if err != nil {
		return Board{}, isnaderr.IO(fmt.Sprintf("read ledger %s", ledgerPath), err)
	}
	control, err := eventlog.Read(controlPath)
	if err != nil {
		return Board{}, isnaderr.IO(fmt.Sprintf("read control %s", controlPath), err)
	}

	cards := map[string]*card{}
	unreadDirectives := map[string][]string{}
	acked := map[string]bool{}
	var lastAckDirectiveID, lastAckDirectiveTS *string
	var lastAckControlSeq int64

	// Pass 1: ledger.
	for _, rec := range ledger {
		typ := rec.String("type")
		ts := rec.String("ts")
		seq := rec.Seq()
		taskID := rec.String("task_id")

		switch typ {
		case "task_opened":
			if taskID == "" {
				continue
			}
			title := rec.String("claim")
			if title == "" {
				title = "Untitled task"
			}
			if meta := rec.Object("meta"); meta != nil {
				if t, _ := meta["title"].(string); t != "" {
					title = t
				}
			}
			c := newCard(taskID, false)
			c.title = title
			c.setUpdated(ts, seq)
			cards[taskID] = c

		case "task_updated":
			c, ok := cards[taskID]
			if taskID == "" || !ok {
				continue
			}
			if meta := rec.Object("meta"); meta != nil {
				if t, _ := meta["title"].(string); t != "" {
					c.title = t
				}
			}
			c.setUpdated(ts, seq)

		case "snapshot":
			c, ok := cards[taskID]
			if taskID == "" || !ok {
				continue
			}
			if id := rec.String("id"); id != "" {
				c.latestSnapshotID = strPtr(id)
			}
			c.setUpdated(ts, seq)

		case "ack_directive":
			if meta := rec.Object("meta"); meta != nil {
				if did, _ := meta["directive_id"].(string); did != "" {
					acked[did] = true
					lastAckDirectiveID = strPtr(did)
					if ts != "" {
						lastAckDirectiveTS = strPtr(ts)
					}
				}
			}
		}
	}

	// Pass 2: control, in order.
	for _, rec := range control {
		did := rec.String("id")
		typ := rec.String("type")
		ts := rec.String("ts")
		seq := rec.Seq()
		taskID := rec.String("task_id")
		payload := rec.Object("payload")

		if typ == "open_task" {
			if taskID == "" {
				continue
			}
			c, ok := cards[taskID]
			if !ok {
				c = newCard(taskID, true)
				if t, _ := payload["title"].(string); t != "" {
					c.title = t
				}
				cards[taskID] = c
			} else if t, _ := payload["title"].(string); t != "" && titleIsPlaceholder(c.title) {
				c.title = t
			}
			if s, _ := payload["status"].(string); isStatus(s) {
				c.status = s
			}
			if pr, _ := payload["priority"].(string); isPriority(pr) {
				c.priority = pr
			}
			c.setUpdated(ts, seq)
		} else if taskID != "" {
			if _, ok := cards[taskID]; !ok {
				cards[taskID] = newCard(taskID, true)
				cards[taskID].title = "(unopened task)"
			}
		}

		if taskID == "" {
			continue
		}
		c, ok := cards[taskID]
		if !ok {
			continue
		}

		switch typ {
		case "set_status":
			if s, _ := payload["status"].(string); isStatus(s) {
				c.status = s
				c.setUpdated(ts, seq)
			}
		case "set_priority":
			if pr, _ := payload["priority"].(string); isPriority(pr) {
				c.priority = pr
				c.setUpdated(ts, seq)
			}
		case "pause":
			c.status = "blocked"
			c.setUpdated(ts, seq)
		}

		if did != "" {
			if !acked[did] {
				unreadDirectives[taskID] = append(unreadDirectives[taskID], did)
			} else if seq > lastAckControlSeq {
				lastAckControlSeq = seq
			}
		}
	}

	columns := make(map[string][]Card, len(Statuses))
	for _, s := range Statuses {
		columns[s] = []Card{}
	}
	cardsOut := make(map[string]Card, len(cards))

	for taskID, c := range cards {
		out := Card{
			TaskID:               c.taskID,
			Title:                c.title,
			Status:               c.status,
			Priority:             c.priority,
			UpdatedAt:            c.updatedAt,
			UpdatedSeq:           c.updatedSeq,
			LatestSnapshotID:     c.latestSnapshotID,
			UnreadDirectiveCount: len(unreadDirectives[taskID]),
			Provisional:          c.provisional,
		}
		cardsOut[taskID] = out
		columns[out.Status] = append(columns[out.Status], out)
	}

	for _, s := range Statuses {
		sortColumn(columns[s])
	}

	return Board{
		GeneratedAt:        eventlog.NowRFC3339(),
		Columns:            columns,
		Cards:              cardsOut,
		UnreadDirectives:   unreadDirectives,
		LastAckDirectiveID: lastAckDirectiveID,
		LastAckDirectiveTS: lastAckDirectiveTS,
		LastAckControlSeq:  lastAckControlSeq,
	}, nil
}
