package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"reelist/internal/shared"
	"reelist/internal/ui"
)

// TUI launches the interactive terminal UI for browsing and watchlist management.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	r.bootstrap(ctx)

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/reelist-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, r.manager, r.controller, r.metadata, r.bus)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
