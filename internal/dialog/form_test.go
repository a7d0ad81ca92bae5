package dialog

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/names/internal/model"
)

func typeText(f Form, s string) Form {
	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return f
}

func press(f Form, k tea.KeyType) (Form, tea.Msg) {
	f, cmd := f.Update(tea.KeyMsg{Type: k})
	if cmd == nil {
		return f, nil
	}
	return f, cmd()
}

func TestForm_AddSubmit(t *testing.T) {
	f := NewAdd()
	assert.Equal(t, KindAdd, f.Kind())
	f = typeText(f, "Anna")
	// Focus changes start a cursor blink; leave the command unrun.
	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyTab})
	f = typeText(f, "friend")

	text, subtext := f.Values()
	assert.Equal(t, "Anna", text)
	assert.Equal(t, "friend", subtext)

	_, msg := press(f, tea.KeyEnter)
	require.IsType(t, SubmitMsg{}, msg)
	assert.Equal(t, SubmitMsg{Kind: KindAdd, Text: "Anna", Subtext: "friend"}, msg)
}

func TestForm_EditPrefilled(t *testing.T) {
	f := NewEdit(model.Record{ID: "id-1", Text: "Anna", Subtext: "x"})
	assert.Equal(t, KindEdit, f.Kind())
	f = typeText(f, "bel")
	_, msg := press(f, tea.KeyEnter)
	assert.Equal(t, SubmitMsg{Kind: KindEdit, ID: "id-1", Text: "Annabel", Subtext: "x"}, msg)
	assert.Contains(t, f.View(), "Edit Name")
}

func TestForm_Cancel(t *testing.T) {
	_, msg := press(NewAdd(), tea.KeyEsc)
	assert.Equal(t, CancelMsg{}, msg)
}
