// Package fileio reads and atomically replaces whole files and sorts failures
// into the categories the panel reports.
package fileio

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

var (
	ErrNotFound   = errors.New("file not found")
	ErrPermission = errors.New("permission denied")
	ErrIO         = errors.New("i/o failure")
)

// FS is the file capability the panel depends on.
type FS interface {
	ReadAll(ctx context.Context, path string) ([]byte, error)
	ReplaceAll(ctx context.Context, path string, data []byte) error
}

// OS implements FS on the local file system.
type OS struct{}

// ReadAll returns the full content of path.
func (OS) ReadAll(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, classify("read", path, err)
	}
	return data, nil
}

// ReplaceAll writes data to a temp file next to path and renames it over path,
// so readers never observe a partially written file. An existing file keeps
// its permission bits. A symlinked path is written through to its target.
func (OS) ReplaceAll(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := resolveTarget(path)
	if err != nil {
		return classify("resolve", path, err)
	}
	perm := os.FileMode(0o644)
	if info, err := os.Stat(target); err == nil {
		perm = info.Mode().Perm()
	} else if !errors.Is(err, fs.ErrNotExist) {
		return classify("stat", path, err)
	}
	if err := atomicWriteFile(filepath.Dir(target), "."+filepath.Base(target)+".*.tmp", target, data, perm); err != nil {
		return classify("write", path, err)
	}
	return nil
}

// resolveTarget follows symlinks in path. A path that does not exist yet is
// returned unchanged; a dangling link resolves to the file it names.
func resolveTarget(path string) (string, error) {
	target, err := filepath.EvalSymlinks(path)
	if !errors.Is(err, fs.ErrNotExist) {
		return target, err
	}
	info, lerr := os.Lstat(path)
	if lerr != nil || info.Mode()&fs.ModeSymlink == 0 {
		return path, nil
	}
	link, err := os.Readlink(path)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(link) {
		link = filepath.Join(filepath.Dir(path), link)
	}
	return link, nil
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp, perm); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// classify wraps err with the matching category sentinel.
func classify(op, path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%s %s: %w", op, path, ErrNotFound)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%s %s: %w", op, path, ErrPermission)
	default:
		return fmt.Errorf("%s %s: %w: %v", op, path, ErrIO, err)
	}
}
