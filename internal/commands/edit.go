package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskview/internal/config"
	"taskview/internal/exitcode"
	"taskview/internal/service"
)

func init() {
	Register(&EditCmd{})
}

// optionalString is a flag value that remembers whether it was set.
type optionalString struct {
	value string
	set   bool
}

func (o *optionalString) String() string { return o.value }

func (o *optionalString) Set(s string) error {
	o.value = s
	o.set = true
	return nil
}

func (o *optionalString) or(fallback string) string {
	if o.set {
		return o.value
	}
	return fallback
}

// EditCmd implements the edit command. Fields not given on the command
// line keep their current values.
type EditCmd struct {
	title       optionalString
	description optionalString
	due         optionalString
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return nil }
func (c *EditCmd) Synopsis() string  { return "Change a task's title, description or due date" }
func (c *EditCmd) Usage() string {
	return "taskview edit <id> [--title <text>] [--desc <text>] [--due YYYY-MM-DD|\"\"]"
}
func (c *EditCmd) NeedsService() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	c.title, c.description, c.due = optionalString{}, optionalString{}, optionalString{}
	fs.Var(&c.title, "title", "")
	fs.Var(&c.title, "t", "")
	fs.Var(&c.description, "desc", "")
	fs.Var(&c.description, "d", "")
	fs.Var(&c.due, "due", "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	id, err := ParseTaskID(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if !c.title.set && !c.description.set && !c.due.set {
		fmt.Fprintln(errOut, "error: nothing to change (use --title, --desc or --due)")
		return exitcode.UserError
	}

	ctrl, r := newSession(cfg, svc, out, errOut)
	if err := loadQuietly(ctx, ctrl, r); err != nil {
		return exitFor(err)
	}

	r.Muted = true
	current, ok := ctrl.BeginEdit(id)
	if !ok {
		fmt.Fprintf(errOut, "error: task not found: %d\n", id)
		return exitcode.UserError
	}
	due := ""
	if current.DueDate != nil {
		due = current.DueDate.String()
	}

	err = ctrl.Update(ctx, id,
		c.title.or(current.Title),
		c.description.or(current.Description),
		c.due.or(due),
	)
	if err != nil {
		return exitFor(err)
	}
	if t, ok := ctrl.Find(id); ok {
		printTask(cfg, out, t)
	}
	return exitcode.Success
}
