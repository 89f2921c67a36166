package testutil

import (
	"slices"

	"taskview/internal/controller"
	"taskview/internal/task"
)

// RecordingRenderer records every render and reported error.
type RecordingRenderer struct {
	Views  []controller.View
	Errors []error
}

// Render implements controller.Renderer.
func (r *RecordingRenderer) Render(v controller.View) {
	r.Views = append(r.Views, v)
}

// ReportError implements controller.Renderer.
func (r *RecordingRenderer) ReportError(err error) {
	r.Errors = append(r.Errors, err)
}

// Last returns the tasks of the most recent render, or nil.
func (r *RecordingRenderer) Last() []task.Task {
	if len(r.Views) == 0 {
		return nil
	}
	return slices.Collect(r.Views[len(r.Views)-1].Tasks)
}
