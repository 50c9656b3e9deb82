package settings

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/magdy/fawkes/mdpanel/internal/fileio"
	"github.com/magdy/fawkes/mdpanel/internal/watcher"
)

// ConfigDir returns the XDG config directory for mdpanel.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "mdpanel")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "mdpanel")
}

// DefaultPath returns the full path to settings.yaml.
func DefaultPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "settings.yaml")
}

// FileStore reads settings from a YAML or TOML file and, once Watch is
// running, notifies subscribers whenever that file changes.
type FileStore struct {
	observers
	path   string
	fs     fileio.FS
	logger *slog.Logger
}

// NewFileStore creates a store backed by path.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &FileStore{path: path, fs: fileio.OS{}, logger: logger}
}

// Path returns the settings file path.
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) isTOML() bool {
	return strings.EqualFold(filepath.Ext(f.path), ".toml")
}

// Settings reads and validates the file. A missing file yields Default.
func (f *FileStore) Settings() (Settings, error) {
	s := Default()
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return s, fmt.Errorf("reading settings: %w", err)
	}
	if f.isTOML() {
		if _, err := toml.Decode(string(data), &s); err != nil {
			return Default(), fmt.Errorf("parsing settings: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &s); err != nil {
		return Default(), fmt.Errorf("parsing settings: %w", err)
	}
	s.FilePath = ExpandHome(strings.TrimSpace(s.FilePath))
	if err := s.Validate(); err != nil {
		return Default(), fmt.Errorf("invalid settings in %s: %w", f.path, err)
	}
	return s, nil
}

// Save validates s and atomically replaces the settings file. Subscribers
// hear about it through Watch, like any other edit.
func (f *FileStore) Save(ctx context.Context, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if f.isTOML() {
		if err := toml.NewEncoder(&buf).Encode(s); err != nil {
			return fmt.Errorf("encoding settings: %w", err)
		}
	} else {
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("encoding settings: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encoding settings: %w", err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := f.fs.ReplaceAll(ctx, f.path, buf.Bytes()); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	f.logger.Info("settings saved", "path", f.path)
	return nil
}

// Subscribe registers fn for change notifications.
func (f *FileStore) Subscribe(fn func()) Subscription {
	return f.subscribe(fn)
}

// Watch notifies subscribers on every change to the settings file until ctx
// is done.
func (f *FileStore) Watch(ctx context.Context) error {
	w, err := watcher.New(f.path,
		watcher.WithOnChange(func() {
			f.logger.Debug("settings file changed", "path", f.path)
			f.notify()
		}),
		watcher.WithOnError(func(err error) {
			f.logger.Warn("settings watcher error", "path", f.path, "error", err)
			if errors.Is(err, watcher.ErrFileRemoved) {
				f.notify()
			}
		}),
	)
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		w.Stop()
	}()
	return nil
}

// ExpandHome replaces a leading ~ with the home directory.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}

// AbsPath resolves a relative path against the working directory so a stored
// path does not depend on where the panel is started. Empty, absolute and
// ~-prefixed paths are returned trimmed but otherwise unchanged.
func AbsPath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" || strings.HasPrefix(path, "~") || filepath.IsAbs(path) {
		return path
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
