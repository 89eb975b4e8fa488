package boardview

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/isnad-dev/isnad/internal/board"
)

func twoCardBoard() board.Board {
	b := board.Empty()
	b.Columns["backlog"] = []board.Card{
		{TaskID: "T_1", Title: "First task", Priority: "high"},
		{TaskID: "T_2", Title: "Second task", Priority: "low", Provisional: true},
	}
	return b
}

func TestNew_RendersColumnsAndCardCount(t *testing.T) {
	m := New(twoCardBoard())
	out := m.View()
	if !strings.Contains(out, "2 tasks") {
		t.Errorf("expected task count in header, got %q", out)
	}
	if !strings.Contains(out, "First task") || !strings.Contains(out, "Second task") {
		t.Errorf("expected both card titles rendered, got %q", out)
	}
}

func TestUpdate_ArrowKeysMoveCursorWithinBounds(t *testing.T) {
	m := New(twoCardBoard())
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(Model)
	if m.cursorRow != 1 {
		t.Errorf("expected cursorRow=1 after down, got %d", m.cursorRow)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(Model)
	if m.cursorRow != 1 {
		t.Errorf("expected cursorRow clamped at 1, got %d", m.cursorRow)
	}
}

func TestUpdate_RefreshMsgReplacesBoard(t *testing.T) {
	m := New(board.Empty())
	next, _ := m.Update(RefreshMsg{Board: twoCardBoard()})
	m = next.(Model)
	if m.board.TaskCount() != 2 {
		t.Errorf("expected board replaced with 2 tasks, got %d", m.board.TaskCount())
	}
}

func TestUpdate_QuitOnQ(t *testing.T) {
	m := New(board.Empty())
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatalf("expected a quit command")
	}
}
