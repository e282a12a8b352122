package cli

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/deskkit/pkg/history"
)

func testEntries(n int) []history.Entry {
	entries := make([]history.Entry, n)
	for i := range entries {
		entries[i] = history.Entry{
			ID:        string(rune('a'+i)) + "-id",
			Title:     "entry " + string(rune('a'+i)),
			CreatedAt: time.Now().Add(-time.Duration(i) * time.Hour),
		}
	}
	return entries
}

func press(m HistoryListModel, keys ...string) HistoryListModel {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(HistoryListModel)
	}
	return m
}

func TestHistoryListNavigation(t *testing.T) {
	m := NewHistoryListModel("palette", testEntries(3))

	m = press(m, "up")
	if m.Cursor != 0 {
		t.Errorf("cursor moved above the first entry: %d", m.Cursor)
	}
	m = press(m, "down", "j", "down")
	if m.Cursor != 2 {
		t.Errorf("cursor = %d, want 2 (clamped at the end)", m.Cursor)
	}
	m = press(m, "k", "enter")
	if m.Selected == nil || m.Selected.ID != "b-id" {
		t.Errorf("selected = %+v, want b-id", m.Selected)
	}
}

func TestHistoryListRemoval(t *testing.T) {
	m := NewHistoryListModel("watermark", testEntries(2))

	m = press(m, "d")
	if !m.Removed["a-id"] || m.removedCount() != 1 {
		t.Errorf("removed = %v", m.Removed)
	}
	m = press(m, "enter")
	if m.Selected != nil {
		t.Error("an entry marked for removal was selected")
	}
	m = press(m, "d")
	if m.removedCount() != 0 {
		t.Errorf("toggle did not unmark: %v", m.Removed)
	}
}

func TestHistoryListScrolls(t *testing.T) {
	m := NewHistoryListModel("extraction", testEntries(6))
	m.Height = 2

	m = press(m, "down", "down", "down")
	if m.Offset != 2 {
		t.Errorf("offset = %d, want 2", m.Offset)
	}
	view := m.View()
	if strings.Contains(view, "entry a") || !strings.Contains(view, "entry d") {
		t.Errorf("view shows the wrong window:\n%s", view)
	}
}

func TestHistoryListEmptyView(t *testing.T) {
	m := NewHistoryListModel("palette", nil)
	m = press(m, "down", "enter", "d")
	if m.Selected != nil {
		t.Error("selection on empty list")
	}
	if !strings.Contains(m.View(), "nothing here yet") {
		t.Errorf("empty view = %q", m.View())
	}
}

func TestFormatRelativeTime(t *testing.T) {
	now := time.Now()
	tests := []struct {
		t    time.Time
		want string
	}{
		{now, "just now"},
		{now.Add(-5 * time.Minute), "5m ago"},
		{now.Add(-3 * time.Hour), "3h ago"},
		{now.Add(-50 * time.Hour), "2d ago"},
	}
	for _, tt := range tests {
		if got := formatRelativeTime(tt.t); got != tt.want {
			t.Errorf("formatRelativeTime(%v) = %q, want %q", tt.t, got, tt.want)
		}
	}
}
