// Package tui is the interactive list screen.
package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/charmbracelet/bubbles/key"
	blist "github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/names/internal/dialog"
	"github.com/idilsaglam/names/internal/filter"
	"github.com/idilsaglam/names/internal/list"
	"github.com/idilsaglam/names/internal/store"
)

// Options configure Run.
type Options struct {
	Mode   filter.Mode
	Logger *slog.Logger
}

// item adapts a displayed row to bubbles/list.Item
type item struct {
	row list.Row
}

func (i item) FilterValue() string { return i.row.Text }

// Two-line cells: name, then description.
type itemDelegate struct{}

func (d itemDelegate) Height() int                                { return 2 }
func (d itemDelegate) Spacing() int                               { return 1 }
func (d itemDelegate) Update(msg tea.Msg, m *blist.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m blist.Model, index int, li blist.Item) {
	it, ok := li.(item)
	if !ok {
		return
	}
	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	text := mark(it.row.Text, it.row.TextHighlights, lipgloss.NewStyle())
	sub := mark(it.row.Subtext, it.row.SubtextHighlights, mutedStyle)
	fmt.Fprintf(w, "%s%s\n  %s", prefix, text, sub)
}

// eventMsg carries a store change onto the Bubble Tea loop.
type eventMsg struct{ ev list.Event }

var keys = struct {
	search, add, edit, del, quit key.Binding
}{
	search: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	add:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
	edit:   key.NewBinding(key.WithKeys("enter", "e"), key.WithHelp("enter", "edit")),
	del:    key.NewBinding(key.WithKeys("d", "x", "delete"), key.WithHelp("d", "delete")),
	quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

type modelTUI struct {
	ctx   context.Context
	store dialog.Writer
	ctl   *list.Controller
	log   *slog.Logger

	list blist.Model

	// search box
	search    textinput.Model
	searching bool

	// modal add/edit form; nil when closed
	form *dialog.Form

	status string
	width  int
	height int
}

func newModel(ctx context.Context, w dialog.Writer, ctl *list.Controller, log *slog.Logger) modelTUI {
	l := blist.New(nil, itemDelegate{}, 76, 18)
	l.Title = "Names"
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.SetStatusBarItemName("name", "names")
	extra := func() []key.Binding { return []key.Binding{keys.search, keys.add, keys.edit, keys.del, keys.quit} }
	l.AdditionalShortHelpKeys = extra
	l.AdditionalFullHelpKeys = extra

	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "Search Names"
	ti.CharLimit = 200

	return modelTUI{
		ctx:    ctx,
		store:  w,
		ctl:    ctl,
		log:    log,
		list:   l,
		search: ti,
		width:  80,
		height: 24,
	}
}

// Run starts the list screen over s and blocks until the user quits.
func Run(ctx context.Context, s *store.Store, opt Options) error {
	log := opt.Logger
	if log == nil {
		log = slog.Default()
	}
	var p *tea.Program
	ctl := list.New(s,
		list.WithMode(opt.Mode),
		list.WithLogger(log),
		list.WithDispatch(func(ev list.Event) { p.Send(eventMsg{ev: ev}) }),
	)
	defer ctl.Close()

	p = tea.NewProgram(newModel(ctx, s, ctl, log), tea.WithAltScreen(), tea.WithContext(ctx))
	// Deliveries block in p.Send until the program loop is running.
	if err := ctl.SetFilter(ctx, ""); err != nil {
		return err
	}
	_, err := p.Run()
	return err
}

func (m modelTUI) Init() tea.Cmd { return nil }

// setFilter runs on the update loop so successive keystrokes subscribe
// in order.
func (m *modelTUI) setFilter(raw string) {
	if err := m.ctl.SetFilter(m.ctx, raw); err != nil {
		m.status = err.Error()
		m.log.Warn("search failed", "query", raw, "err", err)
	}
}

func (m modelTUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.list.SetSize(m.width-4, max(m.height-6, 3))
		return m, nil
	case eventMsg:
		return m, m.apply(msg.ev)
	case dialog.SubmitMsg:
		m.form = nil
		m.submit(msg)
		return m, nil
	case dialog.CancelMsg:
		m.form = nil
		return m, nil
	}

	// modal form
	if m.form != nil {
		f, cmd := m.form.Update(msg)
		m.form = &f
		return m, cmd
	}

	// search box
	if m.searching {
		if k, ok := msg.(tea.KeyMsg); ok {
			switch k.String() {
			case "esc", "enter", "down", "up":
				m.searching = false
				m.search.Blur()
				return m, nil
			}
		}
		before := m.search.Value()
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		if v := m.search.Value(); v != before {
			m.setFilter(v)
		}
		return m, cmd
	}

	if k, ok := msg.(tea.KeyMsg); ok {
		m.status = ""
		switch {
		case key.Matches(k, keys.quit):
			return m, tea.Quit
		case k.String() == "esc":
			if m.search.Value() != "" {
				m.search.SetValue("")
				m.setFilter("")
				return m, nil
			}
			return m, tea.Quit
		case key.Matches(k, keys.search):
			m.searching = true
			return m, m.search.Focus()
		case key.Matches(k, keys.add):
			f := dialog.NewAdd()
			m.form = &f
			return m, f.Init()
		case key.Matches(k, keys.edit):
			if it, ok := m.list.SelectedItem().(item); ok {
				f := dialog.NewEdit(it.row.Record)
				m.form = &f
				return m, f.Init()
			}
			return m, nil
		case key.Matches(k, keys.del):
			if it, ok := m.list.SelectedItem().(item); ok {
				if err := dialog.Delete(m.ctx, m.store, it.row.ID); err != nil {
					m.fail(err)
				}
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// submit writes a confirmed form. The list refreshes from the store's
// change notification, not from here.
func (m *modelTUI) submit(msg dialog.SubmitMsg) {
	var err error
	switch msg.Kind {
	case dialog.KindAdd:
		_, err = dialog.Add(m.ctx, m.store, msg.Text, msg.Subtext)
	case dialog.KindEdit:
		_, err = dialog.Edit(m.ctx, m.store, msg.ID, msg.Text, msg.Subtext)
	}
	if err != nil {
		m.fail(err)
	}
}

func (m *modelTUI) fail(err error) {
	m.status = err.Error()
	m.log.Error("write failed", "err", err)
}

// apply mirrors a store event onto the list widget in one batch:
// deletions against old positions, then insertions and reloads against
// new ones.
func (m *modelTUI) apply(ev list.Event) tea.Cmd {
	batch, ok := m.ctl.Apply(ev)
	if !ok {
		return nil
	}
	rows := m.ctl.Rows()
	if batch.Reload {
		items := make([]blist.Item, len(rows))
		for i, r := range rows {
			items[i] = item{row: r}
		}
		return m.list.SetItems(items)
	}
	var cmds []tea.Cmd
	for k := len(batch.Deletions) - 1; k >= 0; k-- {
		m.list.RemoveItem(batch.Deletions[k])
	}
	for _, j := range batch.Insertions {
		cmds = append(cmds, m.list.InsertItem(j, item{row: rows[j]}))
	}
	for _, j := range batch.Modifications {
		cmds = append(cmds, m.list.SetItem(j, item{row: rows[j]}))
	}
	if n := len(m.list.Items()); n > 0 && m.list.Index() >= n {
		m.list.Select(n - 1)
	}
	return tea.Batch(cmds...)
}

func (m modelTUI) View() string {
	formHeight := 0
	var form string
	if m.form != nil {
		form = m.form.View()
		formHeight = lipgloss.Height(form)
	}
	m.list.SetSize(m.width-4, max(m.height-6-formHeight, 3))

	content := m.search.View() + "\n" + m.list.View()
	if form != "" {
		content += "\n" + form
	}
	if m.status != "" {
		content += "\n" + errorStyle.Render("✖ "+m.status)
	} else if m.ctl.Filtering() {
		content += "\n" + accentStyle.Render(fmt.Sprintf("%d match(es)", len(m.list.Items())))
	}
	return panelStyle.Render(content)
}
