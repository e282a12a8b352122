package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/deskkit/pkg/history"
)

// List styles
var (
	listDimStyle     = lipgloss.NewStyle().Foreground(colorDim)
	listRemovedStyle = lipgloss.NewStyle().Foreground(colorRed).Strikethrough(true)
)

// =============================================================================
// HistoryListModel - Interactive history browser
// =============================================================================

// HistoryListModel is the bubbletea model for browsing one history list.
// Enter selects an entry, d toggles it for removal.
type HistoryListModel struct {
	Name     string
	Entries  []history.Entry
	Cursor   int
	Selected *history.Entry
	Removed  map[string]bool
	Height   int
	Offset   int
}

// NewHistoryListModel creates a new history list model.
func NewHistoryListModel(name string, entries []history.Entry) HistoryListModel {
	return HistoryListModel{
		Name:    name,
		Entries: entries,
		Removed: map[string]bool{},
		Height:  10,
	}
}

func (m HistoryListModel) Init() tea.Cmd {
	return nil
}

func (m HistoryListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Entries)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "d", "x":
			if len(m.Entries) > 0 {
				id := m.Entries[m.Cursor].ID
				m.Removed[id] = !m.Removed[id]
			}
		case "enter":
			if len(m.Entries) == 0 || m.Removed[m.Entries[m.Cursor].ID] {
				return m, nil
			}
			e := m.Entries[m.Cursor]
			m.Selected = &e
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 3)
	}
	return m, nil
}

func (m HistoryListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(strings.ToUpper(m.Name[:1]) + m.Name[1:] + " history"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ show  d remove  q quit"))
	b.WriteString("\n\n")

	if len(m.Entries) == 0 {
		b.WriteString(listDimStyle.Render("  nothing here yet"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Entries))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		e := m.Entries[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, truncate(e.Title, 48), formatRelativeTime(e.CreatedAt)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Title", "When").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Entries) {
				return lipgloss.NewStyle()
			}
			switch {
			case m.Removed[m.Entries[idx].ID]:
				return listRemovedStyle
			case idx == m.Cursor:
				return lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
			case col == 2:
				return listDimStyle
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	status := fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Entries))
	if n := m.removedCount(); n > 0 {
		status += fmt.Sprintf("  %d marked for removal", n)
	}
	b.WriteString(listDimStyle.Render(status))

	return b.String()
}

func (m HistoryListModel) removedCount() int {
	n := 0
	for _, v := range m.Removed {
		if v {
			n++
		}
	}
	return n
}

// =============================================================================
// Helpers
// =============================================================================

func formatRelativeTime(t time.Time) string {
	diff := time.Since(t)

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
		return t.Local().Format("Jan 2, 2006")
	}
}
