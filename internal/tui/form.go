package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"taskview/internal/task"
)

const (
	fieldTitle = iota
	fieldDescription
	fieldDue
	fieldCount
)

// formModel edits the three user-editable task fields.
type formModel struct {
	focus  int
	inputs []textinput.Model
}

// newForm returns an empty form, or one seeded from t.
func newForm(t *task.Task) formModel {
	f := formModel{inputs: make([]textinput.Model, fieldCount)}

	in := textinput.New()
	in.Placeholder = "Title (required)"
	in.CharLimit = 200
	in.Prompt = "Title: "
	f.inputs[fieldTitle] = in

	in = textinput.New()
	in.Placeholder = "Description (optional)"
	in.CharLimit = 500
	in.Prompt = "Notes: "
	f.inputs[fieldDescription] = in

	in = textinput.New()
	in.Placeholder = task.DateLayout
	in.CharLimit = len(task.DateLayout)
	in.Prompt = "Due:   "
	f.inputs[fieldDue] = in

	if t != nil {
		f.inputs[fieldTitle].SetValue(t.Title)
		f.inputs[fieldDescription].SetValue(t.Description)
		if t.DueDate != nil {
			f.inputs[fieldDue].SetValue(t.DueDate.String())
		}
	}
	f.setFocus(fieldTitle)
	return f
}

func (f *formModel) setFocus(i int) tea.Cmd {
	f.focus = (i + fieldCount) % fieldCount
	var cmd tea.Cmd
	for j := range f.inputs {
		if j == f.focus {
			cmd = f.inputs[j].Focus()
			f.inputs[j].PromptStyle = focusedStyle
			f.inputs[j].TextStyle = focusedStyle
			continue
		}
		f.inputs[j].Blur()
		f.inputs[j].PromptStyle = blurredStyle
		f.inputs[j].TextStyle = noStyle
	}
	return cmd
}

func (f formModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update moves focus on tab and forwards everything else to the focused input.
func (f formModel) Update(msg tea.Msg) (formModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, fkeys.Next):
			cmd := f.setFocus(f.focus + 1)
			return f, cmd
		case key.Matches(msg, fkeys.Prev):
			cmd := f.setFocus(f.focus - 1)
			return f, cmd
		}
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

// values returns title, description and due as typed.
func (f formModel) values() (string, string, string) {
	return f.inputs[fieldTitle].Value(),
		f.inputs[fieldDescription].Value(),
		f.inputs[fieldDue].Value()
}

func (f formModel) View() string {
	var b strings.Builder
	for i := range f.inputs {
		b.WriteString(f.inputs[i].View())
		if i < len(f.inputs)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
