package cli

import (
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/magdy/fawkes/mdpanel/internal/checklist"
	"github.com/magdy/fawkes/mdpanel/internal/panel"
	"github.com/magdy/fawkes/mdpanel/internal/view"
)

// maxSteps bounds the synchronous command loop.
const maxSteps = 16

func newShowCmd(app *App) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the rows the panel displays",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, app, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

// settle runs cmd and every command it leads to on the calling goroutine.
func settle(c *panel.Controller, cmd tea.Cmd) error {
	for i := 0; cmd != nil; i++ {
		if i >= maxSteps {
			return errors.New("panel did not settle")
		}
		cmd = c.Update(cmd())
	}
	return nil
}

func loadPanel(app *App) (*panel.Controller, error) {
	c := panel.New(app.store(), panel.WithLogger(app.logger))
	if err := settle(c, c.Start()); err != nil {
		return nil, err
	}
	return c, nil
}

type showOutput struct {
	File  string          `json:"file,omitempty"`
	State string          `json:"state"`
	Nodes []view.Node     `json:"nodes"`
	Stats checklist.Stats `json:"stats"`
	Error string          `json:"error,omitempty"`
}

func runShow(cmd *cobra.Command, app *App, asJSON bool) error {
	c, err := loadPanel(app)
	if err != nil {
		return err
	}
	out := showOutput{
		File:  c.Settings().FilePath,
		State: c.State().String(),
		Nodes: c.Nodes(),
		Stats: c.Stats(),
	}
	if err := c.Err(); err != nil {
		out.Error = err.Error()
	}
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return err
		}
	} else {
		writeRows(cmd.OutOrStdout(), out.Nodes)
	}
	if c.State() == panel.StateFailed {
		return fmt.Errorf("%s: %s", out.File, panel.Describe(c.Err()))
	}
	return nil
}

func writeRows(w io.Writer, nodes []view.Node) {
	for _, n := range nodes {
		switch n.Kind {
		case view.KindSeparator:
			fmt.Fprintf(w, "## %s\n", n.Label)
		case view.KindCheckbox:
			mark := " "
			if n.Checked {
				mark = "x"
			}
			fmt.Fprintf(w, "%4d  [%s] %s\n", n.Line, mark, n.Label)
		default:
			fmt.Fprintln(w, n.Label)
		}
	}
}
