package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/gin-gonic/gin"

	"taskview/internal/config"
	"taskview/internal/exitcode"
	"taskview/internal/logging"
	"taskview/internal/server"
	"taskview/internal/service"
	"taskview/internal/store"
)

func init() {
	Register(&ServeCmd{})
}

// ServeCmd runs the reference task API over a SQLite database.
type ServeCmd struct {
	addr  string
	db    string
	token string
}

func (c *ServeCmd) Name() string       { return "serve" }
func (c *ServeCmd) Aliases() []string  { return nil }
func (c *ServeCmd) Synopsis() string   { return "Run the task API server" }
func (c *ServeCmd) Usage() string      { return "taskview serve [--addr :8080] [--db tasks.db] [--token <token>]" }
func (c *ServeCmd) NeedsService() bool { return false }

func (c *ServeCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.addr, "addr", ":8080", "")
	fs.StringVar(&c.db, "db", "tasks.db", "")
	fs.StringVar(&c.token, "token", "", "")
}

func (c *ServeCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	st, err := store.Open(c.db)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	defer st.Close()

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	// Requests are logged at info even when the CLI level is quieter.
	logger := logging.New(errOut, "info")
	if cfg.Debug {
		logger = cfg.Log()
	}

	srv := server.New(st, server.Options{Token: c.token, Logger: logger})
	if !cfg.Quiet {
		fmt.Fprintf(out, "serving %s on %s\n", c.db, c.addr)
	}
	if err := srv.ListenAndServe(ctx, c.addr); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}
