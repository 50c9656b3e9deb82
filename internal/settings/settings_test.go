package settings

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	s := Default()
	if s.StartLine != 1 || s.EndLine != 0 || s.KanbanEnabled || s.FilePath != "" {
		t.Errorf("unexpected defaults: %+v", s)
	}
	if s.Configured() {
		t.Error("default settings should not be configured")
	}
	if err := s.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		s         Settings
		wantField string
	}{
		{name: "valid", s: Settings{FilePath: "/tmp/a.md", StartLine: 3, EndLine: 10, KanbanEnabled: true}},
		{name: "start zero", s: Settings{StartLine: 0}, wantField: "start-line"},
		{name: "end negative", s: Settings{StartLine: 1, EndLine: -1}, wantField: "end-line"},
		{name: "end too large", s: Settings{StartLine: 1, EndLine: MaxLine + 1}, wantField: "end-line"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.s.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if ve.Field != tt.wantField {
				t.Errorf("field: got %q, want %q", ve.Field, tt.wantField)
			}
		})
	}
}

func TestFileStoreMissingFileGivesDefaults(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "settings.yaml"), nil)
	s, err := store.Settings()
	if err != nil {
		t.Fatalf("Settings: %v", err)
	}
	if s != Default() {
		t.Errorf("got %+v, want defaults", s)
	}
}

func TestFileStoreReadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := "file-path: /notes/todo.md\nstart-line: 2\nend-line: 5\nkanban-enabled: true\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := NewFileStore(path, nil).Settings()
	if err != nil {
		t.Fatalf("Settings: %v", err)
	}
	want := Settings{FilePath: "/notes/todo.md", StartLine: 2, EndLine: 5, KanbanEnabled: true}
	if s != want {
		t.Errorf("got %+v, want %+v", s, want)
	}
}

func TestFileStorePartialYAMLKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("file-path: todo.md\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := NewFileStore(path, nil).Settings()
	if err != nil {
		t.Fatalf("Settings: %v", err)
	}
	if s.StartLine != 1 || s.FilePath != "todo.md" {
		t.Errorf("got %+v", s)
	}
}

func TestFileStoreRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("start-line: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := NewFileStore(path, nil).Settings()
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if s != Default() {
		t.Errorf("invalid file should fall back to defaults, got %+v", s)
	}
}

func TestFileStoreSaveRoundTrip(t *testing.T) {
	for _, name := range []string{"settings.yaml", "settings.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			store := NewFileStore(path, nil)
			want := Settings{FilePath: "/x/y.md", StartLine: 4, EndLine: 9, KanbanEnabled: true}
			if err := store.Save(context.Background(), want); err != nil {
				t.Fatalf("Save: %v", err)
			}
			got, err := store.Settings()
			if err != nil {
				t.Fatalf("Settings: %v", err)
			}
			if got != want {
				t.Errorf("got %+v, want %+v", got, want)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(string(data), "kanban-enabled") {
				t.Errorf("expected dashed keys in file, got %q", data)
			}
		})
	}
}

func TestFileStoreSaveRejectsInvalid(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "settings.yaml"), nil)
	if err := store.Save(context.Background(), Settings{StartLine: 0}); err == nil {
		t.Fatal("expected error")
	}
}

func TestFileStoreSaveThroughSymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	dir := t.TempDir()
	real := filepath.Join(dir, "dotfiles", "settings.yaml")
	if err := os.MkdirAll(filepath.Dir(real), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(real, []byte("start-line: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "settings.yaml")
	if err := os.Symlink(real, link); err != nil {
		t.Fatal(err)
	}
	want := Settings{FilePath: "/x/y.md", StartLine: 2}
	if err := NewFileStore(link, nil).Save(context.Background(), want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := NewFileStore(real, nil).Settings()
	if err != nil {
		t.Fatalf("Settings: %v", err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if info, err := os.Lstat(link); err != nil || info.Mode()&os.ModeSymlink == 0 {
		t.Errorf("settings link not kept: %v", err)
	}
}

func TestAbsPath(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct{ in, want string }{
		{"", ""},
		{"  ", ""},
		{"/a/b.md", "/a/b.md"},
		{" /a/b.md ", "/a/b.md"},
		{"~/b.md", "~/b.md"},
		{"b.md", filepath.Join(wd, "b.md")},
		{"notes/../b.md", filepath.Join(wd, "b.md")},
	}
	for _, tt := range tests {
		if got := AbsPath(tt.in); got != tt.want {
			t.Errorf("AbsPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMemoryStoreNotifiesSubscribers(t *testing.T) {
	store := NewMemoryStore(Default())
	var calls atomic.Int32
	sub := store.Subscribe(func() { calls.Add(1) })

	store.Set(Settings{FilePath: "a.md", StartLine: 1})
	if calls.Load() != 1 {
		t.Fatalf("expected 1 notification, got %d", calls.Load())
	}
	got, _ := store.Settings()
	if got.FilePath != "a.md" {
		t.Errorf("got %+v", got)
	}

	sub.Cancel()
	sub.Cancel()
	store.Set(Default())
	if calls.Load() != 1 {
		t.Errorf("cancelled subscription still notified: %d", calls.Load())
	}
}

func TestFileStoreWatchNotifies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("file-path: a.md\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	store := NewFileStore(path, nil)
	var calls atomic.Int32
	store.Subscribe(func() { calls.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := store.Watch(ctx); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if err := store.Save(ctx, Settings{FilePath: "b.md", StartLine: 1}); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(3 * time.Second)
	for calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if calls.Load() == 0 {
		t.Error("expected a change notification")
	}
}

func TestDefaultPathHonorsXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	if got, want := DefaultPath(), filepath.Join(dir, "mdpanel", "settings.yaml"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
