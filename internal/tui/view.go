package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"taskview/internal/task"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4ec9b0"))

	focusedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ec9b0"))
	blurredStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666"))
	noStyle      = lipgloss.NewStyle()

	activeFilterStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#1e1e1e")).
				Background(lipgloss.Color("#4ec9b0")).
				Padding(0, 1)
	filterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#999")).
			Padding(0, 1)

	cursorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#dcdcaa")).Bold(true)
	doneStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666")).Strikethrough(true)
	descStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
	dueStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#9cdcfe"))
	overdueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#f48771")).Bold(true)
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ce9178"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#f48771"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#b5cea8"))
	formFrameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ec9b0")).
			Padding(0, 1)
)

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Tasks"))
	b.WriteString("  ")
	b.WriteString(m.filterBar())
	b.WriteString("\n\n")

	if m.mode == modeAdd {
		b.WriteString(formFrameStyle.Render("New task\n" + m.form.View()))
		b.WriteString("\n\n")
	}

	switch {
	case m.loading && m.total == 0:
		b.WriteString(descStyle.Render("loading..."))
		b.WriteByte('\n')
	case len(m.tasks) == 0:
		b.WriteString(descStyle.Render("no tasks found"))
		b.WriteByte('\n')
	}

	for i, t := range m.tasks {
		b.WriteString(m.row(i, t))
		b.WriteByte('\n')
		if m.mode == modeEdit && m.editing.Editing && m.editing.ID == t.ID {
			b.WriteString(formFrameStyle.MarginLeft(4).Render(m.form.View()))
			b.WriteByte('\n')
		}
	}

	b.WriteByte('\n')
	b.WriteString(descStyle.Render(fmt.Sprintf("%d of %d remaining", m.remaining, m.total)))
	b.WriteByte('\n')

	if m.mode == modeConfirmDelete {
		title := ""
		for _, t := range m.tasks {
			if t.ID == m.confirmID {
				title = t.Title
			}
		}
		b.WriteString(errorStyle.Render(fmt.Sprintf("Delete %q? (y/n)", title)))
		b.WriteByte('\n')
	} else if m.status != "" {
		style := statusStyle
		if m.statusErr {
			style = errorStyle
		}
		b.WriteString(style.Render(m.status))
		b.WriteByte('\n')
	}

	b.WriteString(m.helpView())
	return b.String()
}

func (m *Model) filterBar() string {
	buttons := make([]string, 0, len(task.Filters))
	for i, f := range task.Filters {
		label := fmt.Sprintf("%d %s", i+1, f)
		if f == m.filter {
			buttons = append(buttons, activeFilterStyle.Render(label))
		} else {
			buttons = append(buttons, filterStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, buttons...)
}

func (m *Model) row(i int, t task.Task) string {
	cursor := "  "
	if i == m.cursor && m.mode == modeList {
		cursor = cursorStyle.Render("> ")
	}

	check := "[ ]"
	title := t.Title
	if t.Completed {
		check = "[x]"
		title = doneStyle.Render(title)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s%s %s", cursor, check, title)

	if t.DueDate != nil {
		today := task.DateOf(m.now())
		style := dueStyle
		if !t.Completed && t.DueDate.Before(today) {
			style = overdueStyle
		}
		b.WriteString(" ")
		b.WriteString(style.Render("due " + t.DueDate.String()))
	}
	if op, ok := m.pending[t.ID]; ok {
		b.WriteString(" ")
		b.WriteString(pendingStyle.Render(op.String() + "..."))
	}
	if t.Description != "" {
		b.WriteString("\n      ")
		b.WriteString(descStyle.Render(t.Description))
	}
	return b.String()
}

func (m *Model) helpView() string {
	var km help.KeyMap = keys
	switch m.mode {
	case modeAdd, modeEdit:
		km = fkeys
	case modeConfirmDelete:
		km = confirmKeys{}
	}
	return m.help.View(km)
}
