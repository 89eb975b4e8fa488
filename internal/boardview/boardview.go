// Package boardview renders the derived Kanban board as an interactive
// terminal UI, refreshed whenever the underlying logs change.
package boardview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/isnad-dev/isnad/internal/board"
)

var (
	columnHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Padding(0, 1)

	cardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)

	selectedCardStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("170")).
				Padding(0, 1)

	provisionalStyle = lipgloss.NewStyle().
				Italic(true).
				Foreground(lipgloss.Color("8"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	priorityColors = map[string]lipgloss.Color{
		"urgent": lipgloss.Color("196"),
		"high":   lipgloss.Color("208"),
		"medium": lipgloss.Color("252"),
		"low":    lipgloss.Color("8"),
	}
)

// RefreshMsg carries a freshly folded board into the running program.
type RefreshMsg struct {
	Board board.Board
	Err   error
}

// headerLines is the number of lines the title/help bar occupies above the
// scrollable board body, so the viewport can be sized to the remainder of
// the terminal.
const headerLines = 2

// Model is the bubbletea model for the board viewer. It holds no knowledge
// of where the board came from: callers feed it RefreshMsg values, which
// keeps this package testable without a workspace on disk. The rendered
// columns are shown through a bubbles viewport so a board taller than the
// terminal scrolls (pgup/pgdown/ctrl+u/ctrl+d) instead of being clipped.
type Model struct {
	board     board.Board
	columns   []string
	cursorCol int
	cursorRow int
	width     int
	height    int
	err       error
	quitting  bool
	vp        viewport.Model
	vpReady   bool
}

// New builds a viewer model seeded with an initial (possibly empty) board.
func New(b board.Board) Model {
	return Model{
		board:   b,
		columns: board.Statuses[:],
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		bodyHeight := msg.Height - headerLines
		if bodyHeight < 1 {
			bodyHeight = 1
		}
		if !m.vpReady {
			m.vp = viewport.New(msg.Width, bodyHeight)
			m.vpReady = true
		} else {
			m.vp.Width = msg.Width
			m.vp.Height = bodyHeight
		}
		m.vp.SetContent(m.renderBoard())
		return m, nil

	case RefreshMsg:
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.err = nil
		m.board = msg.Board
		m.clampCursor()
		if m.vpReady {
			m.vp.SetContent(m.renderBoard())
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "left", "h":
			if m.cursorCol > 0 {
				m.cursorCol--
				m.cursorRow = 0
			}
			if m.vpReady {
				m.vp.SetContent(m.renderBoard())
			}
			return m, nil
		case "right", "l":
			if m.cursorCol < len(m.columns)-1 {
				m.cursorCol++
				m.cursorRow = 0
			}
			if m.vpReady {
				m.vp.SetContent(m.renderBoard())
			}
			return m, nil
		case "up", "k":
			if m.cursorRow > 0 {
				m.cursorRow--
			}
			if m.vpReady {
				m.vp.SetContent(m.renderBoard())
			}
			return m, nil
		case "down", "j":
			if m.cursorRow < len(m.currentColumnCards())-1 {
				m.cursorRow++
			}
			if m.vpReady {
				m.vp.SetContent(m.renderBoard())
			}
			return m, nil
		}
	}

	if m.vpReady {
		m.vp, cmd = m.vp.Update(msg)
	}
	return m, cmd
}

func (m *Model) currentColumnCards() []board.Card {
	if m.cursorCol >= len(m.columns) {
		return nil
	}
	return m.board.Columns[m.columns[m.cursorCol]]
}

func (m *Model) clampCursor() {
	cards := m.currentColumnCards()
	if m.cursorRow >= len(cards) {
		m.cursorRow = len(cards) - 1
	}
	if m.cursorRow < 0 {
		m.cursorRow = 0
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.err != nil {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render("error: "+m.err.Error()) + "\n"
	}

	header := dimStyle.Render(fmt.Sprintf("isnad board  (%d tasks)  ←/→ column  ↑/↓ card  pgup/pgdn scroll  q quit", m.board.TaskCount()))
	if !m.vpReady {
		return header + "\n\n" + m.renderBoard()
	}
	return header + "\n" + m.vp.View()
}

// renderBoard joins every column into the scrollable body shown inside the
// viewport.
func (m Model) renderBoard() string {
	colWidth := 28
	if m.width > 0 {
		if w := m.width / len(m.columns); w > 12 {
			colWidth = w
		}
	}

	rendered := make([]string, len(m.columns))
	for i, status := range m.columns {
		rendered[i] = m.renderColumn(status, i, colWidth)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) renderColumn(status string, colIdx, width int) string {
	cards := m.board.Columns[status]
	var b strings.Builder
	b.WriteString(columnHeaderStyle.Width(width).Render(fmt.Sprintf("%s (%d)", status, len(cards))))
	b.WriteString("\n")
	for i, c := range cards {
		style := cardStyle
		if colIdx == m.cursorCol && i == m.cursorRow {
			style = selectedCardStyle
		}
		title := c.Title
		if len(title) > width-2 && width > 4 {
			title = title[:width-5] + "..."
		}
		line := style.Width(width).Render(title)
		if c.Provisional {
			line = provisionalStyle.Width(width).Render(title + " (pending)")
		}
		b.WriteString(line)
		b.WriteString("\n")

		priColor, ok := priorityColors[c.Priority]
		if !ok {
			priColor = priorityColors["medium"]
		}
		meta := lipgloss.NewStyle().Foreground(priColor).Width(width).Render("  " + c.Priority)
		b.WriteString(meta)
		b.WriteString("\n")
	}
	return b.String()
}
