// Package tui is the interactive terminal view of the task list. The
// Model is the controller's renderer and runs every controller step on
// the bubbletea event loop; only remote calls run as commands.
package tui

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"taskview/internal/controller"
	"taskview/internal/editstate"
	"taskview/internal/logging"
	"taskview/internal/service"
	"taskview/internal/task"
)

type mode int

const (
	modeList mode = iota
	modeAdd
	modeEdit
	modeConfirmDelete
)

// resultMsg carries a finished remote call back to the loop.
type resultMsg struct {
	res controller.Result
}

// Model is the bubbletea model.
type Model struct {
	ctx    context.Context
	ctrl   *controller.Controller
	logger *log.Logger
	now    func() time.Time

	// Snapshot of the last render.
	tasks     []task.Task
	filter    task.Filter
	editing   editstate.State
	total     int
	remaining int

	mode      mode
	cursor    int
	form      formModel
	confirmID int64

	loading  bool
	creating bool
	pending  map[int64]controller.Op

	status    string
	statusErr bool

	help   help.Model
	width  int
	height int
}

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the logger used by the model and its controller.
func WithLogger(l *log.Logger) Option {
	return func(m *Model) { m.logger = l }
}

// WithFilter sets the initial view filter.
func WithFilter(f task.Filter) Option {
	return func(m *Model) { m.filter = f }
}

// WithClock sets the clock used to mark overdue tasks.
func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.now = now }
}

// New creates a model over svc. ctx bounds every remote call.
func New(ctx context.Context, svc service.Service, opts ...Option) *Model {
	m := &Model{
		ctx:     ctx,
		logger:  logging.Discard(),
		now:     time.Now,
		filter:  task.FilterAll,
		pending: make(map[int64]controller.Op),
		help:    help.New(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.ctrl = controller.New(svc, m,
		controller.WithLogger(m.logger),
		controller.WithFilter(m.filter),
	)
	return m
}

// Controller returns the model's controller.
func (m *Model) Controller() *controller.Controller {
	return m.ctrl
}

// Render implements controller.Renderer.
func (m *Model) Render(v controller.View) {
	m.tasks = slices.Collect(v.Tasks)
	m.filter = v.Filter
	m.editing = v.Editing
	m.total = v.Total
	m.remaining = v.Remaining
	m.cursor = max(0, min(m.cursor, len(m.tasks)-1))
}

// ReportError implements controller.Renderer.
func (m *Model) ReportError(err error) {
	m.setStatus(err.Error(), true)
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

// Init starts the initial load.
func (m *Model) Init() tea.Cmd {
	return m.load()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case resultMsg:
		m.applyResult(msg.res)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeAdd, modeEdit:
			return m.updateForm(msg)
		case modeConfirmDelete:
			return m.updateConfirm(msg)
		default:
			return m.updateList(msg)
		}
	}

	if m.mode == modeAdd || m.mode == modeEdit {
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
		}

	case key.Matches(msg, keys.All):
		m.ctrl.SetFilter(task.FilterAll)
	case key.Matches(msg, keys.Active):
		m.ctrl.SetFilter(task.FilterActive)
	case key.Matches(msg, keys.Completed):
		m.ctrl.SetFilter(task.FilterCompleted)
	case key.Matches(msg, keys.Filter):
		m.ctrl.SetFilter(m.filter.Next())

	case key.Matches(msg, keys.Reload):
		return m, m.load()

	case key.Matches(msg, keys.Toggle):
		t, ok := m.selected()
		if !ok || m.busy(t.ID) {
			return m, nil
		}
		return m, m.send(m.ctrl.NewToggle(t.ID))

	case key.Matches(msg, keys.Add):
		m.mode = modeAdd
		m.form = newForm(nil)
		m.setStatus("", false)
		return m, m.form.Init()

	case key.Matches(msg, keys.Edit):
		sel, ok := m.selected()
		if !ok || m.busy(sel.ID) {
			return m, nil
		}
		t, ok := m.ctrl.BeginEdit(sel.ID)
		if !ok {
			return m, nil
		}
		m.mode = modeEdit
		m.form = newForm(&t)
		m.setStatus("", false)
		return m, m.form.Init()

	case key.Matches(msg, keys.Delete):
		t, ok := m.selected()
		if !ok || m.busy(t.ID) {
			return m, nil
		}
		m.mode = modeConfirmDelete
		m.confirmID = t.ID
	}
	return m, nil
}

func (m *Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, fkeys.Cancel):
		if m.mode == modeEdit {
			m.ctrl.CancelEdit()
		}
		m.mode = modeList
		return m, nil

	case key.Matches(msg, fkeys.Save):
		title, desc, due := m.form.values()
		if m.mode == modeAdd {
			if m.creating {
				return m, nil
			}
			req, err := m.ctrl.NewCreate(title, desc, due)
			if err != nil {
				return m, nil
			}
			m.creating = true
			return m, m.send(req)
		}
		id := m.editing.ID
		if !m.editing.Editing || m.busy(id) {
			return m, nil
		}
		req, err := m.ctrl.NewUpdate(id, title, desc, due)
		if err != nil {
			return m, nil
		}
		return m, m.send(req)
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.Update(msg)
	return m, cmd
}

func (m *Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := m.confirmID
	switch {
	case key.Matches(msg, fkeys.Yes):
		m.mode = modeList
		req, err := m.ctrl.NewDelete(id, true)
		if err != nil || m.busy(id) {
			return m, nil
		}
		return m, m.send(req)
	case key.Matches(msg, fkeys.No):
		m.mode = modeList
		m.setStatus("delete cancelled", false)
	}
	return m, nil
}

func (m *Model) load() tea.Cmd {
	if m.loading {
		return nil
	}
	m.loading = true
	return m.send(m.ctrl.NewLoad())
}

// send runs the remote call off the loop and delivers its result as a resultMsg.
func (m *Model) send(req controller.Request) tea.Cmd {
	if req.ID != 0 {
		m.pending[req.ID] = req.Op
	}
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return resultMsg{res: ctrl.Send(ctx, req)}
	}
}

func (m *Model) applyResult(res controller.Result) {
	req := res.Request
	switch req.Op {
	case controller.OpLoad:
		m.loading = false
	case controller.OpCreate:
		m.creating = false
	default:
		delete(m.pending, req.ID)
	}

	if err := m.ctrl.Apply(res); err != nil {
		return
	}

	switch req.Op {
	case controller.OpCreate:
		if m.mode == modeAdd {
			m.mode = modeList
		}
		m.cursor = 0
		m.setStatus(fmt.Sprintf("added %q", res.Task.Title), false)
	case controller.OpUpdate:
		if m.mode == modeEdit && !m.editing.Editing {
			m.mode = modeList
		}
		m.setStatus("saved", false)
	case controller.OpDelete:
		m.setStatus("deleted", false)
	case controller.OpLoad:
		m.setStatus("", false)
	}
}

// busy reports whether a request for id is in flight.
func (m *Model) busy(id int64) bool {
	_, ok := m.pending[id]
	return ok
}

func (m *Model) selected() (task.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.tasks) {
		return task.Task{}, false
	}
	return m.tasks[m.cursor], true
}
