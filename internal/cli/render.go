package cli

import (
	"fmt"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/state"
	"github.com/Makepad-fr/tada/internal/ui"
)

// row is a visible item plus its 1-based position in the whole collection,
// which is what done/rm/edit accept.
type row struct {
	index int
	item  model.Item
}

func renderList(list *state.ListController, group bool) {
	t := ui.Current()
	d, p := list.Stats()
	f := list.Filter()

	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d  %s",
		ui.C(t.Title, "Tasks"),
		ui.C(t.Success, t.SymDone), d,
		ui.C(t.Pending, t.SymUnchecked), p,
		ui.C(t.Accent, "Total"), d+p,
		ui.C(t.Muted, "["+f.Label()+"]"),
	)

	rows := visibleRows(list)
	lines := []string{
		header,
		ui.C(t.Muted, ui.ProgressBar(d, d+p, 28)),
		"",
	}
	switch {
	case len(rows) == 0:
		lines = append(lines, ui.C(t.Muted, emptyText(f)))
	case group:
		lines = append(lines, groupLines(rows)...)
	default:
		lines = append(lines, flatLines(rows)...)
	}
	lines = append(lines, "", ui.C(t.Muted, "Tip: add with `tada add \"Buy milk\" --priority high`"))
	ui.Panel(lines)
}

func visibleRows(list *state.ListController) []row {
	index := map[string]int{}
	for i, it := range list.Items() {
		index[it.ID] = i + 1
	}
	var rows []row
	for it := range list.VisibleItems() {
		rows = append(rows, row{index: index[it.ID], item: it})
	}
	return rows
}

func emptyText(f model.Filter) string {
	if f != model.FilterAll {
		return "No tasks found. Try changing the filter or adding new tasks."
	}
	return "No tasks found. Start by adding a new task."
}

func flatLines(rows []row) []string {
	t := ui.Current()
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		it := r.item
		box, color, title := t.BoxUnchecked, t.Muted, ui.Truncate(it.Title, 60)
		if it.Completed {
			box, color = t.BoxChecked, t.Success
			title = ui.C(t.Done, title)
		}
		out = append(out, fmt.Sprintf("%s %s %s  %s  %s",
			ui.C(t.Muted, fmt.Sprintf("%2d.", r.index)),
			ui.C(color, box),
			title,
			ui.C(t.PriorityColor(it.Priority), it.Priority.Label()),
			ui.C(t.Muted, it.DueDate.Display()),
		))
		if it.Description != "" {
			out = append(out, "      "+ui.C(t.Muted, ui.Truncate(it.Description, 60)))
		}
	}
	return out
}

func groupLines(rows []row) []string {
	t := ui.Current()
	var pend, done []row
	for _, r := range rows {
		if r.item.Completed {
			done = append(done, r)
		} else {
			pend = append(pend, r)
		}
	}
	section := func(name string, rs []row) []string {
		lines := []string{ui.C(t.Accent, name)}
		if len(rs) == 0 {
			return append(lines, ui.C(t.Muted, "(none)"))
		}
		return append(lines, flatLines(rs)...)
	}
	lines := section("Pending", pend)
	lines = append(lines, "")
	return append(lines, section("Done", done)...)
}
