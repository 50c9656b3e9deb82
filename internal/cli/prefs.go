package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/magdy/fawkes/mdpanel/internal/prefs"
	"github.com/magdy/fawkes/mdpanel/internal/settings"
)

func newPrefsCmd(app *App) *cobra.Command {
	var (
		file   string
		start  int
		end    int
		kanban bool
	)
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Edit the panel settings",
		Long:  "Edit the panel settings interactively, or set individual values with flags.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := app.store()
			current, err := store.Settings()
			if err != nil {
				app.logger.Warn("settings unreadable, starting from defaults", "error", err)
			}

			flags := cmd.Flags()
			if flags.Changed("file") || flags.Changed("start") || flags.Changed("end") || flags.Changed("kanban") {
				next := current
				if flags.Changed("file") {
					next.FilePath = settings.AbsPath(file)
				}
				if flags.Changed("start") {
					next.StartLine = start
				}
				if flags.Changed("end") {
					next.EndLine = end
				}
				if flags.Changed("kanban") {
					next.KanbanEnabled = kanban
				}
				if err := store.Save(cmd.Context(), next); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", store.Path())
				return nil
			}

			if _, err := prefs.Edit(cmd.Context(), current, store); err != nil {
				if errors.Is(err, prefs.ErrAborted) {
					fmt.Fprintln(cmd.ErrOrStderr(), err)
					return nil
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", store.Path())
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Markdown file to display (empty to clear)")
	cmd.Flags().IntVar(&start, "start", 1, "First line shown")
	cmd.Flags().IntVar(&end, "end", 0, "Last line shown, 0 for end of file")
	cmd.Flags().BoolVar(&kanban, "kanban", false, "Group checklist items by section")
	return cmd
}
