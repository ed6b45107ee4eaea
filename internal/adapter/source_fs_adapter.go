// Package adapter contains the infrastructure adapters used by the domain
// layer: filesystem access, test command execution, report persistence and
// metrics.
package adapter

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"

	m "gooze.dev/pkg/evomut/internal/model"
)

// SourceFSAdapter abstracts the filesystem operations the domain layer relies
// on when staging mutants. It hides direct `os` access so the evaluator can be
// tested against injected failures.
//
//nolint:interfacebloat // A richer interface keeps domain logic decoupled from os/fs.
type SourceFSAdapter interface {
	// ReadFile loads a file from disk and returns its contents.
	ReadFile(ctx context.Context, path m.Path) ([]byte, error)

	// WriteFile replaces the content of path, keeping its permissions when the
	// file already exists.
	WriteFile(ctx context.Context, path m.Path, content []byte, perm os.FileMode) error

	// CopyFile copies src to dst, preserving the permission bits of src.
	CopyFile(ctx context.Context, src, dst m.Path) error

	// Rename atomically moves src over dst.
	Rename(ctx context.Context, src, dst m.Path) error

	// Remove deletes a single file.
	Remove(ctx context.Context, path m.Path) error

	// HashFile returns the SHA-256 fingerprint of the file at path.
	HashFile(ctx context.Context, path m.Path) (string, error)

	// FileInfo returns metadata for a path.
	FileInfo(ctx context.Context, path m.Path) (os.FileInfo, error)

	// MkdirAll creates a directory and any missing parents.
	MkdirAll(ctx context.Context, path m.Path) error

	// Walk visits root and, when recursive is set, every nested directory.
	Walk(ctx context.Context, root m.Path, recursive bool, fn filepath.WalkFunc) error
}

// LocalSourceFSAdapter implements SourceFSAdapter on the local disk.
type LocalSourceFSAdapter struct{}

// NewLocalSourceFSAdapter constructs a LocalSourceFSAdapter instance ready to
// be wired into the domain.
func NewLocalSourceFSAdapter() *LocalSourceFSAdapter {
	return &LocalSourceFSAdapter{}
}

// ReadFile loads file contents from disk.
func (a *LocalSourceFSAdapter) ReadFile(ctx context.Context, path m.Path) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// #nosec G304 - path is a mutation target chosen by the operator
	return os.ReadFile(string(path))
}

// WriteFile writes content to a file with the given permissions.
func (a *LocalSourceFSAdapter) WriteFile(ctx context.Context, path m.Path, content []byte, perm os.FileMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return os.WriteFile(string(path), content, perm)
}

// CopyFile copies a single file.
func (a *LocalSourceFSAdapter) CopyFile(ctx context.Context, src, dst m.Path) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := os.Stat(string(src))
	if err != nil {
		return err
	}

	if info.IsDir() {
		return fmt.Errorf("%s is a directory", src)
	}

	return copyFile(string(src), string(dst), info.Mode())
}

func copyFile(src, dst string, mode os.FileMode) error {
	// #nosec G304 - src is internal project file path, not user input
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}

	defer func() { _ = sourceFile.Close() }()

	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return err
	}

	// #nosec G304 - dst is internal destination path, not user input
	destFile, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode.Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		_ = destFile.Close()
		return err
	}

	if err := destFile.Close(); err != nil {
		return err
	}

	return os.Chmod(dst, mode.Perm())
}

// Rename moves src over dst.
func (a *LocalSourceFSAdapter) Rename(ctx context.Context, src, dst m.Path) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return os.Rename(string(src), string(dst))
}

// Remove deletes the file at path.
func (a *LocalSourceFSAdapter) Remove(ctx context.Context, path m.Path) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return os.Remove(string(path))
}

// HashFile returns the SHA-256 hash of the file at the provided path.
func (a *LocalSourceFSAdapter) HashFile(ctx context.Context, path m.Path) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f, err := os.Open(string(path))
	if err != nil {
		return "", err
	}

	defer func() {
		_ = f.Close()
	}()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// FileInfo returns os.FileInfo metadata for the given path.
func (a *LocalSourceFSAdapter) FileInfo(ctx context.Context, path m.Path) (os.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return os.Stat(string(path))
}

// MkdirAll creates path and its parents.
func (a *LocalSourceFSAdapter) MkdirAll(ctx context.Context, path m.Path) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return os.MkdirAll(string(path), 0o750)
}

// Walk traverses root. Without recursive only the direct children of root are
// visited.
func (a *LocalSourceFSAdapter) Walk(ctx context.Context, root m.Path, recursive bool, fn filepath.WalkFunc) error {
	rootPath := string(root)

	return filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err == nil && info.IsDir() && !recursive && path != rootPath {
			return filepath.SkipDir
		}

		return fn(path, info, err)
	})
}
