package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"taskview/internal/config"
	"taskview/internal/controller"
	"taskview/internal/exitcode"
	"taskview/internal/output"
	"taskview/internal/service"
	"taskview/internal/task"
)

// ErrTaskIDRequired indicates no task ID was provided.
var ErrTaskIDRequired = errors.New("task id required")

// newSession creates a controller whose renders and errors go to the
// command's writers.
func newSession(cfg *config.Config, svc service.Service, out, errOut io.Writer, opts ...controller.Option) (*controller.Controller, *output.TextRenderer) {
	r := output.NewTextRenderer(out, errOut)
	opts = append([]controller.Option{controller.WithLogger(cfg.Log())}, opts...)
	return controller.New(svc, r, opts...), r
}

// loadQuietly fills the session cache without printing the listing.
func loadQuietly(ctx context.Context, c *controller.Controller, r *output.TextRenderer) error {
	r.Muted = true
	defer func() { r.Muted = false }()
	return c.Load(ctx)
}

// ParseTaskID parses the first positional argument as a task ID.
func ParseTaskID(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, ErrTaskIDRequired
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid task id: %s", args[0])
	}
	return id, nil
}

// exitFor maps an operation error to an exit code. The error itself has
// already been reported by the renderer.
func exitFor(err error) int {
	switch {
	case err == nil:
		return exitcode.Success
	case service.KindOf(err) == service.KindValidation:
		return exitcode.UserError
	case service.IsAuth(err):
		return exitcode.AuthError
	case service.IsNotFound(err):
		return exitcode.UserError
	default:
		return exitcode.BackendError
	}
}

// printTask prints a single task unless quiet.
func printTask(cfg *config.Config, out io.Writer, t task.Task) {
	if !cfg.Quiet {
		output.FormatTask(out, t)
	}
}
