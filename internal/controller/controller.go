// Package controller keeps the session's task cache in step with the
// remote task service.
//
// A Controller owns one Task Cache, one Edit-State Tracker and the active
// View Filter. Every remote operation is split in three steps so it fits a
// single-threaded event loop:
//
//   - a New* builder validates input locally and returns a Request;
//   - Send performs the remote call and touches no session state, so it
//     may run off the loop;
//   - Apply, back on the loop, either reports the failure and changes
//     nothing, or mutates the cache and edit state and re-renders.
//
// Load, Create, Toggle, Update and Delete chain the three for callers
// that do not need the split.
package controller

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"taskview/internal/editstate"
	"taskview/internal/logging"
	"taskview/internal/service"
	"taskview/internal/task"
	"taskview/internal/taskcache"
)

// ErrNotConfirmed is returned when a delete was not confirmed by the user.
var ErrNotConfirmed = errors.New("delete not confirmed")

// View is what the Renderer is asked to show.
type View struct {
	// Tasks yields the cached tasks that pass Filter, in cache order.
	Tasks iter.Seq[task.Task]

	Filter  task.Filter
	Editing editstate.State

	// Total and Remaining count the whole cache, ignoring Filter.
	Total     int
	Remaining int
}

// Renderer presents the session. It only reads what it is given.
type Renderer interface {
	Render(v View)
	ReportError(err error)
}

// Controller orchestrates remote task operations for one session.
// Apply, the New* builders and the edit/filter methods must be called from
// a single goroutine. Send may be called from any goroutine.
type Controller struct {
	svc      service.Service
	renderer Renderer
	logger   *log.Logger

	cache  *taskcache.Cache
	edits  *editstate.Tracker
	filter task.Filter

	seq          atomic.Uint64
	lastApplied  map[int64]uint64
	staleApplied int
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger. The default discards.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// WithFilter sets the initial view filter.
func WithFilter(f task.Filter) Option {
	return func(c *Controller) {
		c.filter = f
	}
}

// WithTracker replaces the edit-state tracker, e.g. to observe transitions.
func WithTracker(t *editstate.Tracker) Option {
	return func(c *Controller) {
		c.edits = t
	}
}

// New creates a controller with an empty cache, an idle tracker and the
// "all" filter.
func New(svc service.Service, r Renderer, opts ...Option) *Controller {
	c := &Controller{
		svc:         svc,
		renderer:    r,
		logger:      logging.Discard(),
		cache:       taskcache.New(),
		edits:       editstate.New(),
		filter:      task.FilterAll,
		lastApplied: make(map[int64]uint64),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load replaces the cache with the backend's task list.
func (c *Controller) Load(ctx context.Context) error {
	return c.Apply(c.Send(ctx, c.NewLoad()))
}

// Create validates input, creates the task and prepends it to the cache.
func (c *Controller) Create(ctx context.Context, title, description, due string) error {
	req, err := c.NewCreate(title, description, due)
	if err != nil {
		return err
	}
	return c.Apply(c.Send(ctx, req))
}

// Toggle flips the completion flag of id.
func (c *Controller) Toggle(ctx context.Context, id int64) error {
	return c.Apply(c.Send(ctx, c.NewToggle(id)))
}

// Update validates input and replaces the editable fields of id. On
// success an active edit of id ends.
func (c *Controller) Update(ctx context.Context, id int64, title, description, due string) error {
	req, err := c.NewUpdate(id, title, description, due)
	if err != nil {
		return err
	}
	return c.Apply(c.Send(ctx, req))
}

// Delete removes id once the user has confirmed it.
func (c *Controller) Delete(ctx context.Context, id int64, confirmed bool) error {
	req, err := c.NewDelete(id, confirmed)
	if err != nil {
		return err
	}
	return c.Apply(c.Send(ctx, req))
}

// BeginEdit starts editing id and returns its current values to seed the
// edit form. A different active edit is ended first. Unknown ids are
// ignored.
func (c *Controller) BeginEdit(id int64) (task.Task, bool) {
	t, ok := c.cache.Find(id)
	if !ok {
		return task.Task{}, false
	}
	c.edits.Begin(id)
	c.render()
	return t, true
}

// CancelEdit ends the active edit, if any.
func (c *Controller) CancelEdit() {
	if _, ok := c.edits.Active(); !ok {
		return
	}
	c.edits.End()
	c.render()
}

// SetFilter changes the view filter. The cache is not touched.
func (c *Controller) SetFilter(f task.Filter) {
	c.filter = f
	c.render()
}

// Filter returns the active view filter.
func (c *Controller) Filter() task.Filter {
	return c.filter
}

// Editing returns the edit state.
func (c *Controller) Editing() editstate.State {
	return c.edits.State()
}

// Find returns the cached task with the given id.
func (c *Controller) Find(id int64) (task.Task, bool) {
	return c.cache.Find(id)
}

// Tasks returns a copy of the whole cache in order.
func (c *Controller) Tasks() []task.Task {
	return c.cache.All()
}

// StaleApplied counts responses applied after a newer one for the same id.
func (c *Controller) StaleApplied() int {
	return c.staleApplied
}

// View builds the current view.
func (c *Controller) View() View {
	return View{
		Tasks:     c.cache.Filtered(c.filter),
		Filter:    c.filter,
		Editing:   c.edits.State(),
		Total:     c.cache.Len(),
		Remaining: c.cache.Count(task.FilterActive),
	}
}

// Render asks the renderer to redraw the current view.
func (c *Controller) Render() {
	c.render()
}

func (c *Controller) render() {
	if c.renderer != nil {
		c.renderer.Render(c.View())
	}
}

func (c *Controller) report(err error) {
	c.logger.Warn("operation failed", "err", err)
	if c.renderer != nil {
		c.renderer.ReportError(err)
	}
}

func (c *Controller) validationError(op Op, err error) error {
	verr := &service.Error{Kind: service.KindValidation, Op: op.String(), Err: err}
	c.report(verr)
	return verr
}

// invalidRecord wraps a malformed backend record as a transport failure.
func invalidRecord(op Op, err error) error {
	return &service.Error{
		Kind: service.KindTransport,
		Op:   op.String(),
		Err:  fmt.Errorf("invalid record in response: %w", err),
	}
}
