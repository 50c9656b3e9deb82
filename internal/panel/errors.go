package panel

import (
	"context"
	"errors"

	"github.com/magdy/fawkes/mdpanel/internal/checklist"
	"github.com/magdy/fawkes/mdpanel/internal/fileio"
)

// ErrNoFileConfigured is reported while the settings name no file.
var ErrNoFileConfigured = errors.New("no file configured")

// Describe returns the short user-facing category for err.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoFileConfigured):
		return "no file configured"
	case errors.Is(err, fileio.ErrNotFound):
		return "file not found"
	case errors.Is(err, fileio.ErrPermission):
		return "permission denied"
	case errors.Is(err, checklist.ErrDecode):
		return "file is not valid UTF-8"
	case errors.Is(err, checklist.ErrStaleLineReference):
		return "file changed since it was displayed"
	case errors.Is(err, context.DeadlineExceeded):
		return "timed out"
	default:
		return "i/o failure"
	}
}
