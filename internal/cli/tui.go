package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listMarkStyle     = lipgloss.NewStyle().Foreground(colorGreen)
)

// =============================================================================
// IDPickerModel - Interactive id selection
// =============================================================================

// IDPickerModel is the bubbletea model for selecting the ids to copy.
// Rows are the rows of the ids table: id, kind, type, referrers.
type IDPickerModel struct {
	Rows     [][]string
	Cursor   int
	Marked   map[int]bool
	Done     bool
	Height   int
	Offset   int
	Canceled bool
}

// NewIDPickerModel creates a new id picker over rows.
func NewIDPickerModel(rows [][]string) IDPickerModel {
	return IDPickerModel{
		Rows:   rows,
		Marked: make(map[int]bool),
		Height: 15,
	}
}

func (m IDPickerModel) Init() tea.Cmd {
	return nil
}

func (m IDPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Canceled = true
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Rows)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ", "x":
			if len(m.Rows) > 0 {
				m.Marked[m.Cursor] = !m.Marked[m.Cursor]
			}
		case "enter":
			// Enter without marks selects the row under the cursor.
			if m.markedCount() == 0 && len(m.Rows) > 0 {
				m.Marked[m.Cursor] = true
			}
			m.Done = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

// Selected returns the marked ids in row order.
func (m IDPickerModel) Selected() []string {
	if m.Canceled || !m.Done {
		return nil
	}
	var ids []string
	for i, row := range m.Rows {
		if m.Marked[i] {
			ids = append(ids, row[0])
		}
	}
	return ids
}

func (m IDPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Objects To Copy"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space mark  ⏎ copy  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Rows))
	for i := m.Offset; i < end; i++ {
		row := m.Rows[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		mark := "[ ]"
		if m.Marked[i] {
			mark = listMarkStyle.Render("[x]")
		}

		line := fmt.Sprintf("%-20s %-12s %s", row[0], row[1], listDimStyle.Render(row[2]))
		if i == m.Cursor {
			line = listSelectedStyle.Render(line)
		} else {
			line = listNormalStyle.Render(line)
		}
		b.WriteString(cursor + mark + " " + line + "\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d] %d marked", m.Cursor+1, len(m.Rows), m.markedCount())))

	return b.String()
}

func (m IDPickerModel) markedCount() int {
	n := 0
	for _, v := range m.Marked {
		if v {
			n++
		}
	}
	return n
}

// =============================================================================
// Helpers
// =============================================================================

func formatRelativeTime(t, now time.Time) string {
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
