package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/localdb/internal/formatter"
	"github.com/desertthunder/localdb/internal/shared"
	"github.com/desertthunder/localdb/internal/tasks"
	"github.com/desertthunder/localdb/internal/ui"
)

// Browse launches the interactive terminal UI over the configured store.
func (r *Runner) Browse(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.NormalizeFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, closer, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer closer.Close()
	if err := shared.ConfigureLogger(fileLogger, r.config.Logging); err != nil {
		return err
	}
	r.SetLogger(fileLogger)

	engine, err := r.playlistEngine(ctx)
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, engine, engine, tasks.BulkExportOpts{
		Format:    format,
		OutputDir: cmd.String("output-dir"),
	})
	p := tea.NewProgram(model, tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
