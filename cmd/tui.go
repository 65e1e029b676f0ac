package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/batchalign/internal/models"
	"github.com/desertthunder/batchalign/internal/tasks"
	"github.com/desertthunder/batchalign/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI runs a batch through the interactive terminal UI.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	return r.runBatch(ctx, cmd, true)
}

// runTUI hands the terminal to the TUI until the user quits.
// The returned state is nil when no run was started.
func (r *Runner) runTUI(ctx context.Context, runner *tasks.BatchRunner, sel *selection) (*models.RunState, error) {
	model := ui.NewModel(ctx, runner, sel.Items, sel.warnings())
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return nil, fmt.Errorf("error running TUI: %w", err)
	}
	if err := model.Err(); err != nil {
		return nil, err
	}
	return model.State(), nil
}
