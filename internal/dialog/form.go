package dialog

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/names/internal/model"
)

// Kind tells which flow a form belongs to.
type Kind int

const (
	KindAdd Kind = iota
	KindEdit
)

// SubmitMsg is emitted when the user confirms a form. The flows decide
// whether the values are acceptable.
type SubmitMsg struct {
	Kind    Kind
	ID      string // record being edited; empty for add
	Text    string
	Subtext string
}

// CancelMsg is emitted when the user dismisses a form.
type CancelMsg struct{}

// Form is a two-field modal: name and description.
type Form struct {
	kind    Kind
	id      string
	title   string
	message string
	action  string
	inputs  [2]textinput.Model
	focus   int
}

var (
	formBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
	formTitle  = lipgloss.NewStyle().Bold(true)
	formMuted  = lipgloss.NewStyle().Faint(true)
	formAction = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
)

func newInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = placeholder
	ti.CharLimit = 200
	ti.Width = 40
	return ti
}

// NewAdd returns an empty form for a new record.
func NewAdd() Form {
	f := Form{
		kind:    KindAdd,
		title:   "New Name",
		message: "Enter a Name",
		action:  "Add",
	}
	f.inputs[0] = newInput("Name")
	f.inputs[1] = newInput("Description")
	f.inputs[0].Focus()
	return f
}

// NewEdit returns a form pre-filled with r's values.
func NewEdit(r model.Record) Form {
	f := Form{
		kind:   KindEdit,
		id:     r.ID,
		title:  "Edit Name",
		action: "Edit",
	}
	f.inputs[0] = newInput("Name")
	f.inputs[0].SetValue(r.Text)
	f.inputs[0].CursorEnd()
	f.inputs[1] = newInput("Description")
	f.inputs[1].SetValue(r.Subtext)
	f.inputs[0].Focus()
	return f
}

// Kind returns the flow this form belongs to.
func (f Form) Kind() Kind { return f.kind }

// Values returns the current name and description.
func (f Form) Values() (text, subtext string) {
	return f.inputs[0].Value(), f.inputs[1].Value()
}

func (f Form) Init() tea.Cmd { return textinput.Blink }

func (f Form) Update(msg tea.Msg) (Form, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "esc":
			return f, func() tea.Msg { return CancelMsg{} }
		case "enter":
			text, subtext := f.Values()
			submit := SubmitMsg{Kind: f.kind, ID: f.id, Text: text, Subtext: subtext}
			return f, func() tea.Msg { return submit }
		case "tab", "down", "shift+tab", "up":
			f.inputs[f.focus].Blur()
			f.focus = 1 - f.focus
			return f, f.inputs[f.focus].Focus()
		}
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func (f Form) View() string {
	var b strings.Builder
	b.WriteString(formTitle.Render(f.title))
	if f.message != "" {
		b.WriteString("  " + formMuted.Render(f.message))
	}
	b.WriteString("\n")
	b.WriteString(f.inputs[0].View())
	b.WriteString("\n")
	b.WriteString(f.inputs[1].View())
	b.WriteString("\n")
	b.WriteString(formAction.Render("enter") + formMuted.Render(" "+strings.ToLower(f.action)+"  ") +
		formAction.Render("tab") + formMuted.Render(" next field  ") +
		formAction.Render("esc") + formMuted.Render(" cancel"))
	return formBorder.Render(b.String())
}
