package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Makepad-fr/tada/internal/model"
)

// listItem adapts model.Item to bubbles/list.Item
type listItem struct {
	model.Item
}

func (i listItem) FilterValue() string { return i.Title }

// Custom delegate: one line per item plus an optional description line.
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 2 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}

	box := mutedStyle.Render(boxUnchecked)
	title := it.Title
	if it.Completed {
		box = successStyle.Render(boxChecked)
		title = doneStyle.Render(title)
	}

	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render(">") + " "
	}

	line := fmt.Sprintf("%s%s %s  %s  %s", prefix, box, title,
		priorityBadge(it.Priority), mutedStyle.Render(it.DueDate.Display()))
	desc := "    " + mutedStyle.Render(it.Description)
	width := m.Width()
	if width > 0 {
		line = lipgloss.NewStyle().MaxWidth(width).Render(line)
		desc = lipgloss.NewStyle().MaxWidth(width).Render(desc)
	}
	fmt.Fprintf(w, "%s\n%s", line, desc)
}

func priorityBadge(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return highStyle.Render(p.Label())
	case model.PriorityLow:
		return lowStyle.Render(p.Label())
	default:
		return mediumStyle.Render(p.Label())
	}
}
