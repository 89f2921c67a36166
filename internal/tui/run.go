package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"taskview/internal/config"
	"taskview/internal/service"
	"taskview/internal/task"
)

// Run opens the full-screen view and blocks until the user quits or ctx is
// cancelled. cfg's logger must not write to the terminal; the dispatcher
// points it at the config directory's log file.
func Run(ctx context.Context, cfg *config.Config, svc service.Service) error {
	filter, err := task.ParseFilter(cfg.Filter)
	if err != nil {
		return err
	}
	logger := cfg.Log()

	m := New(ctx, svc, WithLogger(logger), WithFilter(filter))
	logger.Info("starting", "api", cfg.APIURL, "filter", filter)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("run ui: %w", err)
	}
	if n := m.Controller().StaleApplied(); n > 0 {
		logger.Warn("responses applied out of order", "count", n)
	}
	return nil
}
