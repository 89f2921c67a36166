// Package editstate tracks which single task, if any, is being edited inline.
package editstate

import "fmt"

// State is either Idle or Editing a task ID.
type State struct {
	ID      int64
	Editing bool
}

// Idle is the state with no active edit.
var Idle = State{}

// Editing returns the state of editing id.
func Editing(id int64) State {
	return State{ID: id, Editing: true}
}

func (s State) String() string {
	if !s.Editing {
		return "idle"
	}
	return fmt.Sprintf("editing(%d)", s.ID)
}

// Observer is called after every state transition.
type Observer func(from, to State)

// Tracker holds at most one active edit.
type Tracker struct {
	state    State
	observer Observer
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithObserver registers fn to see every transition, including the
// intermediate Idle when one edit replaces another.
func WithObserver(fn Observer) Option {
	return func(t *Tracker) {
		t.observer = fn
	}
}

// New returns an idle tracker.
func New(opts ...Option) *Tracker {
	t := &Tracker{}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Begin starts editing id. A different active edit is ended first.
// Beginning the edit that is already active does nothing.
func (t *Tracker) Begin(id int64) {
	if t.state.Editing {
		if t.state.ID == id {
			return
		}
		t.End()
	}
	t.transition(Editing(id))
}

// End clears the active edit. It does nothing when idle.
func (t *Tracker) End() {
	if !t.state.Editing {
		return
	}
	t.transition(Idle)
}

// Active returns the ID being edited, if any.
func (t *Tracker) Active() (int64, bool) {
	return t.state.ID, t.state.Editing
}

// IsEditing reports whether id is the active edit.
func (t *Tracker) IsEditing(id int64) bool {
	return t.state.Editing && t.state.ID == id
}

// State returns the current state.
func (t *Tracker) State() State {
	return t.state
}

func (t *Tracker) transition(to State) {
	from := t.state
	t.state = to
	if t.observer != nil {
		t.observer(from, to)
	}
}
