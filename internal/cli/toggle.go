package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/magdy/fawkes/mdpanel/internal/panel"
	"github.com/magdy/fawkes/mdpanel/internal/view"
)

func newToggleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <line>",
		Short: "Toggle the checklist item on a source line",
		Long:  "Toggle the checklist item on a 1-based source line. Only items shown in kanban mode can be toggled.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := strconv.Atoi(args[0])
			if err != nil || line < 1 {
				return fmt.Errorf("invalid line %q", args[0])
			}
			return runToggle(cmd, app, line)
		},
	}
}

func runToggle(cmd *cobra.Command, app *App, line int) error {
	c, err := loadPanel(app)
	if err != nil {
		return err
	}
	if c.State() != panel.StateRendered {
		if err := c.Err(); err != nil {
			return fmt.Errorf("cannot toggle: %s", panel.Describe(err))
		}
		return fmt.Errorf("cannot toggle: %s", panel.Describe(panel.ErrNoFileConfigured))
	}
	node, ok := findLine(c.Nodes(), line)
	if !ok {
		return fmt.Errorf("line %d is not a displayed checklist item", line)
	}
	if err := settle(c, node.OnActivate()); err != nil {
		return err
	}
	if err := c.Err(); err != nil {
		return err
	}
	if after, ok := findLine(c.Nodes(), line); ok {
		writeRows(cmd.OutOrStdout(), []view.Node{after})
	}
	return nil
}

func findLine(nodes []view.Node, line int) (view.Node, bool) {
	for _, n := range nodes {
		if n.Selectable() && n.Line == line {
			return n, true
		}
	}
	return view.Node{}, false
}
