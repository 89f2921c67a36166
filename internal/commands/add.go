package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskview/internal/config"
	"taskview/internal/exitcode"
	"taskview/internal/service"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	description string
	due         string
}

func (c *AddCmd) Name() string       { return "add" }
func (c *AddCmd) Aliases() []string  { return []string{"create"} }
func (c *AddCmd) Synopsis() string   { return "Create a task" }
func (c *AddCmd) Usage() string      { return "taskview add [--desc <text>] [--due YYYY-MM-DD] <title...>" }
func (c *AddCmd) NeedsService() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.description, "desc", "", "")
	fs.StringVar(&c.description, "d", "", "")
	fs.StringVar(&c.due, "due", "", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	title := strings.Join(args, " ")
	if strings.TrimSpace(title) == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	// The cache starts empty, so the only cached task afterwards is the
	// one just created.
	ctrl, r := newSession(cfg, svc, out, errOut)
	r.Muted = true
	if err := ctrl.Create(ctx, title, c.description, c.due); err != nil {
		return exitFor(err)
	}

	tasks := ctrl.Tasks()
	if len(tasks) > 0 {
		printTask(cfg, out, tasks[0])
	}
	return exitcode.Success
}
