// Package prefs is the interactive settings form.
package prefs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/magdy/fawkes/mdpanel/internal/settings"
)

// ErrAborted is returned when the user leaves the form without saving.
var ErrAborted = errors.New("preferences not saved")

// Saver persists settings.
type Saver interface {
	Save(ctx context.Context, s settings.Settings) error
}

// values is the string form of settings the inputs edit.
type values struct {
	path   string
	start  string
	end    string
	kanban bool
}

func fromSettings(s settings.Settings) values {
	return values{
		path:   s.FilePath,
		start:  strconv.Itoa(s.StartLine),
		end:    strconv.Itoa(s.EndLine),
		kanban: s.KanbanEnabled,
	}
}

func (v values) settings() (settings.Settings, error) {
	start, err := parseLine(v.start, settings.MinStartLine)
	if err != nil {
		return settings.Settings{}, fmt.Errorf("start line: %w", err)
	}
	end, err := parseLine(v.end, 0)
	if err != nil {
		return settings.Settings{}, fmt.Errorf("end line: %w", err)
	}
	s := settings.Settings{
		FilePath:      settings.AbsPath(v.path),
		StartLine:     start,
		EndLine:       end,
		KanbanEnabled: v.kanban,
	}
	return s, s.Validate()
}

func parseLine(raw string, lo int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return lo, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("must be a whole number")
	}
	if n < lo || n > settings.MaxLine {
		return 0, fmt.Errorf("must be between %d and %d", lo, settings.MaxLine)
	}
	return n, nil
}

func lineValidator(lo int) func(string) error {
	return func(raw string) error {
		_, err := parseLine(raw, lo)
		return err
	}
}

// validateFilePath accepts an empty path (no file) or an existing regular file.
func validateFilePath(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	info, err := os.Stat(settings.ExpandHome(raw))
	switch {
	case errors.Is(err, os.ErrNotExist):
		return errors.New("file does not exist")
	case err != nil:
		return err
	case info.IsDir():
		return errors.New("path is a directory")
	}
	return nil
}

// isTerminal checks if stdin is connected to a terminal
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// newForm creates a form with appropriate settings based on TTY detection
func newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
	if !isTerminal() {
		form = form.WithAccessible(true)
	}
	return form
}

func buildForm(v *values) *huh.Form {
	return newForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Markdown file").
				Description("Leave empty to show nothing").
				Placeholder("~/notes/todo.md").
				Validate(validateFilePath).
				Value(&v.path),
			huh.NewInput().
				Title("Start line").
				Description(fmt.Sprintf("First line shown, %d-%d", settings.MinStartLine, settings.MaxLine)).
				Validate(lineValidator(settings.MinStartLine)).
				Value(&v.start),
			huh.NewInput().
				Title("End line").
				Description("Last line shown, 0 for end of file").
				Validate(lineValidator(0)).
				Value(&v.end),
			huh.NewConfirm().
				Title("Kanban mode").
				Description("Group checklist items under their ## sections; the line range is ignored").
				Affirmative("Kanban").
				Negative("Plain lines").
				Value(&v.kanban),
		),
	)
}

// Edit shows the settings form seeded with current and saves the result.
func Edit(ctx context.Context, current settings.Settings, saver Saver) (settings.Settings, error) {
	v := fromSettings(current)
	if err := buildForm(&v).RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return current, ErrAborted
		}
		return current, err
	}
	return commit(ctx, v, current, saver)
}

func commit(ctx context.Context, v values, current settings.Settings, saver Saver) (settings.Settings, error) {
	s, err := v.settings()
	if err != nil {
		return current, err
	}
	if err := saver.Save(ctx, s); err != nil {
		return current, err
	}
	return s, nil
}
