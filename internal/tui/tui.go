// Package tui is the interactive terminal front end. It renders the list
// controller's state with Bubble Tea and turns key presses into controller
// calls, each run as a tea.Cmd so the store round-trip never blocks input.
package tui

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/tada/internal/logging"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/state"
)

type mode int

const (
	modeList mode = iota
	modeAdd
	modeEdit
)

// Results of store calls, delivered back into Update.
type loadedMsg struct{ err error }

type createdMsg struct {
	item model.Item
	err  error
}

type toggledMsg struct {
	id  string
	err error
}

type removedMsg struct {
	id  string
	err error
}

type savedMsg struct {
	id  string
	err error
}

// Model is the Bubble Tea model of the task list.
type Model struct {
	ctx    context.Context
	items  *state.ListController
	editor *state.ItemEditController
	logger *log.Logger
	keys   keyMap

	list    list.Model
	spinner spinner.Model
	pending int // store calls in flight

	mode mode

	// Inline add
	addInput textinput.Model
	addErr   string
	addBusy  bool

	// Edit form, one input per state.EditFields entry
	form    []textinput.Model
	focus   int
	editErr string
	saving  bool

	status    string
	statusErr bool
	width     int
	height    int
}

// New builds the model. The first load starts from Init.
func New(ctx context.Context, items *state.ListController, editor *state.ItemEditController, logger *log.Logger) Model {
	if logger == nil {
		logger = logging.Discard()
	}
	keys := defaultKeyMap()

	l := list.New(nil, itemDelegate{}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.SetStatusBarItemName("task", "tasks")
	l.AdditionalShortHelpKeys = keys.listHelp
	l.AdditionalFullHelpKeys = keys.listHelp
	// d and f are ours; leave paging to the arrows, l and pgdown.
	l.KeyMap.NextPage = key.NewBinding(
		key.WithKeys("right", "l", "pgdown"),
		key.WithHelp("→/l/pgdn", "next page"),
	)

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "New task title..."
	ti.CharLimit = 200

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctx:      ctx,
		items:    items,
		editor:   editor,
		logger:   logger,
		keys:     keys,
		list:     l,
		spinner:  sp,
		addInput: ti,
		pending:  1, // the load Init starts
		width:    80,
		height:   24,
	}
	m.list.Title = m.header()
	m.resize()
	return m
}

// Run starts the full-screen program and blocks until the user quits.
func Run(ctx context.Context, items *state.ListController, editor *state.ItemEditController, logger *log.Logger) error {
	p := tea.NewProgram(New(ctx, items, editor, logger), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, loadCmd(m.ctx, m.items))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loadedMsg:
		m.finish()
		if msg.err != nil {
			m.setError(msg.err)
		} else {
			m.setStatus(fmt.Sprintf("loaded %d tasks", len(m.items.Items())))
		}
		cmd := m.refresh()
		return m, cmd

	case createdMsg:
		m.finish()
		m.addBusy = false
		if msg.err != nil {
			m.setError(msg.err)
			if m.mode == modeAdd {
				m.addErr = msg.err.Error()
			}
			return m, nil
		}
		if m.mode == modeAdd {
			m.closeAdd()
		}
		m.setStatus("added " + msg.item.Title)
		cmd := m.refresh()
		return m, cmd

	case toggledMsg:
		m.finish()
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.setStatus("toggled")
		cmd := m.refresh()
		return m, cmd

	case removedMsg:
		m.finish()
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.setStatus("removed")
		cmd := m.refresh()
		return m, cmd

	case savedMsg:
		m.finish()
		m.saving = false
		if msg.err != nil {
			// The draft is still open in the editor; keep the form as typed.
			m.editErr = msg.err.Error()
			m.setError(msg.err)
			return m, nil
		}
		if _, editing := m.editor.Editing(); !editing && m.mode == modeEdit {
			m.closeEdit()
		}
		m.setStatus("saved")
		cmd := m.refresh()
		return m, cmd
	}

	switch m.mode {
	case modeAdd:
		return m.updateAdd(msg)
	case modeEdit:
		return m.updateEdit(msg)
	}
	return m.updateList(msg)
}

func (m Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(km, m.keys.Toggle):
			it, ok := m.selected()
			if !ok {
				return m, nil
			}
			cmd := m.dispatch(toggleCmd(m.ctx, m.items, it.ID))
			return m, cmd

		case key.Matches(km, m.keys.Delete):
			it, ok := m.selected()
			if !ok {
				return m, nil
			}
			cmd := m.dispatch(removeCmd(m.ctx, m.items, it.ID))
			return m, cmd

		case key.Matches(km, m.keys.Add):
			m.mode = modeAdd
			m.addErr = ""
			m.addInput.SetValue("")
			m.resize()
			cmd := m.addInput.Focus()
			return m, cmd

		case key.Matches(km, m.keys.Edit):
			it, ok := m.selected()
			if !ok {
				return m, nil
			}
			cmd := m.startEdit(it)
			return m, cmd

		case key.Matches(km, m.keys.Filter):
			cmd := m.setFilter(m.items.Filter().Next())
			return m, cmd
		case key.Matches(km, m.keys.All):
			cmd := m.setFilter(model.FilterAll)
			return m, cmd
		case key.Matches(km, m.keys.Active):
			cmd := m.setFilter(model.FilterActive)
			return m, cmd
		case key.Matches(km, m.keys.Done):
			cmd := m.setFilter(model.FilterCompleted)
			return m, cmd

		case key.Matches(km, m.keys.Reload):
			cmd := m.dispatch(loadCmd(m.ctx, m.items))
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateAdd(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "enter":
			if m.addBusy {
				return m, nil
			}
			f := model.NewFields()
			f.Title = m.addInput.Value()
			if err := f.Validate(); err != nil {
				m.addErr = "Title cannot be empty"
				return m, nil
			}
			m.addBusy = true
			cmd := m.dispatch(createCmd(m.ctx, m.items, f))
			return m, cmd
		case "esc":
			m.closeAdd()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.addInput, cmd = m.addInput.Update(msg)
	return m, cmd
}

func (m Model) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, m.keys.Cancel):
			m.editor.Cancel()
			m.closeEdit()
			m.setStatus("edit cancelled")
			return m, nil

		case key.Matches(km, m.keys.Save):
			if m.saving {
				return m, nil
			}
			if err := m.syncDraft(); err != nil {
				m.editErr = err.Error()
				return m, nil
			}
			m.saving = true
			cmd := m.dispatch(saveCmd(m.ctx, m.editor))
			return m, cmd

		case key.Matches(km, m.keys.Next):
			cmd := m.focusField(m.focus + 1)
			return m, cmd
		case key.Matches(km, m.keys.Prev):
			cmd := m.focusField(m.focus - 1)
			return m, cmd

		case key.Matches(km, m.keys.Cycle):
			if state.EditFields[m.focus] == state.FieldPriority {
				p, _ := model.ParsePriority(m.form[m.focus].Value())
				m.form[m.focus].SetValue(string(p.Next()))
				m.pushField(m.focus)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.form[m.focus], cmd = m.form[m.focus].Update(msg)
	// Free text goes straight to the draft; parsed fields wait for blur or save.
	switch field := state.EditFields[m.focus]; field {
	case state.FieldTitle, state.FieldDescription:
		m.pushField(m.focus)
	}
	return m, cmd
}

func (m *Model) startEdit(it listItem) tea.Cmd {
	m.editor.StartEditing(it.Item)
	d, _ := m.editor.Draft()

	values := []string{d.Title, d.Description, string(d.Priority), d.DueDate.String()}
	prompts := []string{"Title: ", "Description: ", "Priority: ", "Due (YYYY-MM-DD): "}
	m.form = make([]textinput.Model, len(state.EditFields))
	for i := range m.form {
		in := textinput.New()
		in.Prompt = prompts[i]
		in.CharLimit = 200
		in.SetValue(values[i])
		m.form[i] = in
	}
	m.focus = 0
	m.editErr = ""
	m.saving = false
	m.mode = modeEdit
	m.resize()
	return m.form[0].Focus()
}

// focusField moves focus, pushing the field being left into the draft.
func (m *Model) focusField(i int) tea.Cmd {
	m.pushField(m.focus)
	m.form[m.focus].Blur()
	m.focus = (i + len(m.form)) % len(m.form)
	return m.form[m.focus].Focus()
}

// pushField copies form input i into the draft and shows any error.
func (m *Model) pushField(i int) {
	if err := m.editor.EditField(state.EditFields[i], m.form[i].Value()); err != nil {
		m.editErr = err.Error()
	} else {
		m.editErr = ""
	}
}

func (m *Model) syncDraft() error {
	for i, field := range state.EditFields {
		if err := m.editor.EditField(field, m.form[i].Value()); err != nil {
			return err
		}
	}
	return nil
}

func (m *Model) closeAdd() {
	m.mode = modeList
	m.addInput.SetValue("")
	m.addInput.Blur()
	m.addErr = ""
	m.addBusy = false
	m.resize()
}

func (m *Model) closeEdit() {
	m.mode = modeList
	m.form = nil
	m.focus = 0
	m.editErr = ""
	m.saving = false
	m.resize()
}

func (m *Model) setFilter(f model.Filter) tea.Cmd {
	m.items.SetFilter(f)
	m.list.Select(0)
	return m.refresh()
}

// refresh rebuilds the visible rows from the controller's current state.
func (m *Model) refresh() tea.Cmd {
	visible := slices.Collect(m.items.VisibleItems())
	rows := make([]list.Item, 0, len(visible))
	for _, it := range visible {
		rows = append(rows, listItem{Item: it})
	}
	cmd := m.list.SetItems(rows)
	if n := len(rows); n > 0 && m.list.Index() >= n {
		m.list.Select(n - 1)
	}
	m.list.Title = m.header()
	return cmd
}

func (m Model) selected() (listItem, bool) {
	it, ok := m.list.SelectedItem().(listItem)
	return it, ok
}

func (m *Model) dispatch(cmd tea.Cmd) tea.Cmd {
	m.pending++
	return cmd
}

func (m *Model) finish() {
	if m.pending > 0 {
		m.pending--
	}
}

func (m *Model) setStatus(s string) {
	m.status, m.statusErr = s, false
}

func (m *Model) setError(err error) {
	m.logger.Warn("store call failed", "err", err)
	m.status, m.statusErr = err.Error(), true
}

func (m *Model) resize() {
	reserved := 4
	switch m.mode {
	case modeAdd:
		reserved = 8
	case modeEdit:
		reserved = 12
	}
	h := m.height - reserved
	if h < 3 {
		h = 3
	}
	m.list.SetSize(m.width-4, h)
}

// header shows live counts and the filter tabs.
func (m Model) header() string {
	dn, pn := m.items.Stats()
	counts := fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		titleStyle.Render("Tasks"),
		successStyle.Render("✔"), dn,
		pendingStyle.Render("•"), pn,
		accentStyle.Render("Total"), dn+pn,
	)
	current := m.items.Filter()
	tabs := make([]string, 0, len(model.Filters))
	for _, f := range model.Filters {
		style := inactiveTabStyle
		if f == current {
			style = activeTabStyle
		}
		tabs = append(tabs, style.Render(f.Label()))
	}
	return counts + "   " + lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func emptyText(f model.Filter) string {
	if f != model.FilterAll {
		return "No tasks found. Try changing the filter or adding new tasks."
	}
	return "No tasks found. Start by adding a new task (press a)."
}

func (m Model) View() string {
	var content string
	if len(m.list.Items()) == 0 {
		content = m.list.Title + "\n\n" + mutedStyle.Render(emptyText(m.items.Filter()))
	} else {
		content = m.list.View()
	}

	switch m.mode {
	case modeAdd:
		title := "Add new task"
		if m.addErr != "" {
			title += ": " + errorStyle.Render(m.addErr)
		}
		content += "\n" + frameStyle.Render(title+"\n"+m.addInput.View())
	case modeEdit:
		title := "Edit task"
		if m.editErr != "" {
			title += ": " + errorStyle.Render(m.editErr)
		}
		lines := []string{title}
		for _, in := range m.form {
			lines = append(lines, in.View())
		}
		lines = append(lines, helpStyle.Render("enter save · esc cancel · tab next · ctrl+p priority"))
		content += "\n" + frameStyle.Render(strings.Join(lines, "\n"))
	}

	status := m.status
	if m.statusErr {
		status = errorStyle.Render(status)
	} else {
		status = mutedStyle.Render(status)
	}
	if m.pending > 0 {
		status = m.spinner.View() + " " + status
	}
	return frameStyle.Render(content + "\n" + status)
}

func loadCmd(ctx context.Context, items *state.ListController) tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{err: items.Load(ctx)}
	}
}

func createCmd(ctx context.Context, items *state.ListController, f model.Fields) tea.Cmd {
	return func() tea.Msg {
		it, err := items.Create(ctx, f)
		return createdMsg{item: it, err: err}
	}
}

func toggleCmd(ctx context.Context, items *state.ListController, id string) tea.Cmd {
	return func() tea.Msg {
		_, err := items.ToggleCompleted(ctx, id)
		return toggledMsg{id: id, err: err}
	}
}

func removeCmd(ctx context.Context, items *state.ListController, id string) tea.Cmd {
	return func() tea.Msg {
		return removedMsg{id: id, err: items.Remove(ctx, id)}
	}
}

func saveCmd(ctx context.Context, editor *state.ItemEditController) tea.Cmd {
	id, _ := editor.Editing()
	return func() tea.Msg {
		_, err := editor.Save(ctx)
		return savedMsg{id: id, err: err}
	}
}
