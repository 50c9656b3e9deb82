package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/magdy/fawkes/mdpanel/internal/panel"
	"github.com/magdy/fawkes/mdpanel/internal/ui"
)

func runTUI(cmd *cobra.Command, app *App) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	store := app.store()
	if err := store.Watch(ctx); err != nil {
		app.logger.Warn("settings watch unavailable", "path", store.Path(), "error", err)
	}
	c := panel.New(store, panel.WithLogger(app.logger))
	m := ui.New(c, store, ui.WithLogger(app.logger))

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if fm, ok := final.(ui.Model); ok {
		fm.Close()
	} else {
		m.Close()
	}
	return err
}
