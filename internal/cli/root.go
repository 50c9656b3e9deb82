// Package cli wires the mdpanel commands.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/magdy/fawkes/mdpanel/internal/settings"
)

const logFileName = "mdpanel.log"

type App struct {
	ConfigPath string
	Logs       bool

	logger  *slog.Logger
	logFile io.Closer
}

func NewRootCmd() *cobra.Command {
	app := &App{logger: discardLogger()}

	cmd := &cobra.Command{
		Use:          "mdpanel",
		Short:        "Markdown checklist panel",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Open the panel
  mdpanel

  # Print what the panel shows
  mdpanel show --json

  # Tick the checkbox on line 12
  mdpanel toggle 12

  # Choose the file and range
  mdpanel prefs
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Piped output => one-shot listing.
			if !isTerminal(cmd.OutOrStdout()) {
				return runShow(cmd, app, false)
			}
			return runTUI(cmd, app)
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.initLogger()
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		app.closeLogger()
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("MDPANEL_CONFIG", settings.DefaultPath()), "Settings file (.yaml or .toml)")
	cmd.PersistentFlags().BoolVar(&app.Logs, "logs", false, "enable debug logging to "+logFileName)

	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newToggleCmd(app))
	cmd.AddCommand(newPrefsCmd(app))

	return cmd
}

func (app *App) store() *settings.FileStore {
	return settings.NewFileStore(app.ConfigPath, app.logger)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (app *App) initLogger() error {
	if !app.Logs {
		app.logger = discardLogger()
		return nil
	}
	f, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintln(os.Stderr, "warning: failed to open log file:", err)
		app.logger = discardLogger()
		return nil
	}
	app.logFile = f
	app.logger = slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	app.logger.Info("Logger initialized")
	return nil
}

func (app *App) closeLogger() {
	if app.logFile != nil {
		app.logFile.Close()
		app.logFile = nil
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
