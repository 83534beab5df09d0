// Package tui is the terminal checklist browser.
package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/climavet/climavet/internal/api"
	"github.com/climavet/climavet/internal/checklist"
	"github.com/climavet/climavet/internal/config"
	"github.com/climavet/climavet/internal/export"
	"github.com/climavet/climavet/internal/fetch"
	"github.com/climavet/climavet/internal/model"
)

// Backend is what the browser needs from the REST client.
type Backend interface {
	GetChecklist(ctx context.Context, checklistID, clinicID int64) (*model.Checklist, error)
	UpdateItem(ctx context.Context, checklistID, itemID int64, u model.ItemUpdate) (*model.ChecklistItem, error)
}

type mode int

const (
	modeList mode = iota
	modeSearch
)

type loadedMsg struct {
	tok fetch.Token
	c   *model.Checklist
	err error
}

type updatedMsg struct {
	prior model.ChecklistItem
	item  *model.ChecklistItem
	err   error
}

type exportedMsg struct {
	path string
	err  error
}

type Model struct {
	ctx         context.Context
	backend     Backend
	checklistID int64
	clinicID    int64
	cfg         config.TUIConfig

	res        *fetch.Resource[model.Checklist]
	criteria   model.FilterCriteria
	prevSearch string
	cursor     int
	mode       mode
	input      textinput.Model
	status     string
}

func New(ctx context.Context, b Backend, checklistID, clinicID int64, cfg config.TUIConfig) Model {
	ti := textinput.New()
	ti.Placeholder = "Search descriptions"
	ti.CharLimit = 128
	ti.Width = 40

	return Model{
		ctx:         ctx,
		backend:     b,
		checklistID: checklistID,
		clinicID:    clinicID,
		cfg:         cfg,
		res:         &fetch.Resource[model.Checklist]{},
		criteria:    model.DefaultCriteria(),
		input:       ti,
		status:      "Loading...",
	}
}

// Run opens the browser on a checklist and blocks until the user quits.
func Run(ctx context.Context, b Backend, checklistID, clinicID int64, cfg config.TUIConfig) error {
	program := tea.NewProgram(New(ctx, b, checklistID, clinicID, cfg), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return m.load()
}

// load issues a new fetch. Only the newest fetch may update the model.
func (m Model) load() tea.Cmd {
	tok := m.res.Begin()
	ctx, b, id, clinicID := m.ctx, m.backend, m.checklistID, m.clinicID
	return func() tea.Msg {
		c, err := b.GetChecklist(ctx, id, clinicID)
		return loadedMsg{tok: tok, c: c, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.mode == modeSearch {
			return m.updateSearchMode(msg)
		}
		return m.updateListMode(msg.String())
	case tea.WindowSizeMsg:
		m.input.Width = max(msg.Width-10, 10)
	case loadedMsg:
		return m.applyLoaded(msg), nil
	case updatedMsg:
		return m.applyUpdated(msg), nil
	case exportedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("export failed: %v", msg.err)
		} else {
			m.status = "Exported to " + msg.path
		}
	}
	return m, nil
}

func (m Model) applyLoaded(msg loadedMsg) Model {
	err := msg.err
	var c model.Checklist
	if err == nil && msg.c == nil {
		err = errNotFound
	} else if msg.c != nil {
		c = *msg.c
	}
	if !m.res.Resolve(msg.tok, c, err) {
		return m
	}
	if err != nil {
		m.status = fetchMessage(err)
		return m
	}
	m.cursor = clampCursor(m.cursor, len(m.visible()))
	m.status = fmt.Sprintf("Loaded %q", c.Name)
	return m
}

func (m Model) applyUpdated(msg updatedMsg) Model {
	// Only the item this reply is about is touched; later edits to other
	// items stay as they are.
	if msg.err != nil {
		m.res.Set(checklist.ReplaceItem(m.res.State().Data, msg.prior))
		m.status = api.Message(msg.err, "Failed to update item")
		return m
	}
	if msg.item != nil && msg.item.ID == msg.prior.ID {
		m.res.Set(checklist.ReplaceItem(m.res.State().Data, *msg.item))
	}
	m.status = "Saved"
	return m
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	keys := m.cfg.Keys
	n := len(m.visible())
	switch key {
	case "ctrl+c", keys.Quit:
		return m, tea.Quit
	case keys.Down, "down":
		m.cursor = clampCursor(m.cursor+1, n)
	case keys.Up, "up":
		m.cursor = clampCursor(m.cursor-1, n)
	case keys.Toggle:
		return m.toggle()
	case keys.Search:
		m.mode = modeSearch
		m.prevSearch = m.criteria.Search
		m.input.SetValue(m.criteria.Search)
		m.input.Focus()
		m.status = "Search: type to filter, Enter to keep, Esc to cancel"
	case keys.CycleCategory:
		m.criteria.Category = cycle(m.criteria.Category, categoryValues(m.res.State().Data))
		m.cursor = 0
	case keys.CyclePriority:
		m.criteria.Priority = cycle(m.criteria.Priority, enumValues(model.Priorities))
		m.cursor = 0
	case keys.CycleStatus:
		m.criteria.Status = cycle(m.criteria.Status, enumValues(model.Statuses))
		m.cursor = 0
	case keys.ResetFilters:
		m.criteria = model.DefaultCriteria()
		m.cursor = 0
		m.status = "Filters cleared"
	case keys.Refresh:
		m.status = "Refreshing..."
		return m, m.load()
	case keys.Export:
		return m, m.exportJSON()
	}
	return m, nil
}

func (m Model) updateSearchMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case m.cfg.Keys.Cancel:
		m.criteria.Search = m.prevSearch
		m.mode = modeList
		m.input.Blur()
		m.status = "Search cancelled"
		return m, nil
	case m.cfg.Keys.Confirm:
		m.mode = modeList
		m.input.Blur()
		m.status = ""
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.criteria.Search = m.input.Value()
	m.cursor = 0
	return m, cmd
}

// toggle flips the selected item locally, then sends the change.
func (m Model) toggle() (tea.Model, tea.Cmd) {
	st := m.res.State()
	items := m.visible()
	if !st.Loaded || len(items) == 0 {
		return m, nil
	}
	item := items[clampCursor(m.cursor, len(items))]

	next, err := checklist.ToggleItem(st.Data, item.ID)
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.res.Set(next)
	m.status = "Saving..."

	u := checklist.ToggleUpdate(item)
	ctx, b, id := m.ctx, m.backend, m.checklistID
	return m, func() tea.Msg {
		stored, err := b.UpdateItem(ctx, id, item.ID, u)
		return updatedMsg{prior: item, item: stored, err: err}
	}
}

func (m Model) exportJSON() tea.Cmd {
	st := m.res.State()
	if !st.Loaded {
		return nil
	}
	c, dir := st.Data, m.cfg.ExportDir
	return func() tea.Msg {
		path := filepath.Join(dir, export.FileName(c, export.FormatJSON))
		f, err := os.Create(path)
		if err != nil {
			return exportedMsg{err: err}
		}
		if err := export.JSON(f, c); err != nil {
			f.Close()
			return exportedMsg{err: err}
		}
		return exportedMsg{path: path, err: f.Close()}
	}
}

// visible is the filtered item list in display order.
func (m Model) visible() []model.ChecklistItem {
	g := checklist.GroupItems(m.res.State().Data.Items, m.criteria)
	items := make([]model.ChecklistItem, 0, g.Len())
	for _, grp := range g.Groups {
		items = append(items, grp.Items...)
	}
	return items
}

func (m Model) View() string {
	st := m.res.State()
	var b strings.Builder

	if !st.Loaded {
		if st.Err != nil {
			b.WriteString(fetchMessage(st.Err) + "\n")
		} else {
			b.WriteString("Loading checklist...\n")
		}
		b.WriteString("\n" + m.status + "\n")
		return b.String()
	}

	c := st.Data
	p := checklist.Progress(c)
	b.WriteString(c.Name + "\n")
	if c.Description != "" {
		b.WriteString(c.Description + "\n")
	}
	b.WriteString(fmt.Sprintf("%d of %d items completed (%d%%)", p.Completed, p.Total, p.Percentage))
	if checklist.ReviewDue(c, now()) {
		b.WriteString(" • review due")
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("category:%s  priority:%s  status:%s  search:%q\n\n",
		m.criteria.Category, m.criteria.Priority, m.criteria.Status, m.criteria.Search))

	g := checklist.GroupItems(c.Items, m.criteria)
	if g.Empty() {
		b.WriteString("No items match your filters\n")
	}
	i := 0
	for _, grp := range g.Groups {
		b.WriteString(fmt.Sprintf("%s (%d)\n", grp.Category, len(grp.Items)))
		for _, item := range grp.Items {
			prefix := "  "
			if i == m.cursor {
				prefix = "> "
			}
			b.WriteString(fmt.Sprintf("%s%s %-30s %-12s %3d%%  %s\n",
				prefix, checkbox(item), item.Name, item.Status, checklist.ItemFill(item), item.Priority))
			i++
		}
	}

	if m.mode == modeSearch {
		b.WriteString("\n/" + m.input.View() + "\n")
	}
	b.WriteString("\n" + m.status + "\n")
	b.WriteString(m.help())
	return b.String()
}

func (m Model) help() string {
	k := m.cfg.Keys
	return fmt.Sprintf("%s/%s move • %s toggle • %s search • %s/%s/%s filters • %s reset • %s refresh • %s export • %s quit\n",
		k.Up, k.Down, keyName(k.Toggle), k.Search, k.CycleCategory, k.CyclePriority, k.CycleStatus,
		k.ResetFilters, k.Refresh, k.Export, k.Quit)
}

func keyName(k string) string {
	if k == " " {
		return "space"
	}
	return k
}

func checkbox(item model.ChecklistItem) string {
	if checklist.Completed(item) {
		return "[x]"
	}
	return "[ ]"
}

func clampCursor(cur, n int) int {
	if n <= 0 || cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}
