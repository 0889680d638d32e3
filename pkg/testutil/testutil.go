// Package testutil provides helpers for building file trees and rules
// in tests. Tree builders fail the test on error so call sites stay
// free of error plumbing.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"

	"github.com/arthur-debert/rulescan/pkg/filesystem"
	"github.com/arthur-debert/rulescan/pkg/types"
)

// TempTree materializes files under a fresh temp directory and returns
// its path. Map keys are slash-separated relative paths; parent
// directories are created as needed. The tree is removed when the test
// ends.
func TempTree(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for rel, content := range files {
		CreateFile(t, root, rel, content)
	}
	return root
}

// CreateFile writes a file below dir, creating parents as needed, and
// returns its absolute path.
func CreateFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create parent directories for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to create file %s: %v", path, err)
	}
	return path
}

// CreateDir creates a directory below parent and returns its path.
func CreateDir(t *testing.T, parent, name string) string {
	t.Helper()

	path := filepath.Join(parent, name)
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("Failed to create directory %s: %v", path, err)
	}
	return path
}

// CreateSymlink creates a symbolic link pointing to target.
func CreateSymlink(t *testing.T, target, link string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(link), 0o755); err != nil {
		t.Fatalf("Failed to create parent directory for symlink %s: %v", link, err)
	}
	if err := os.Symlink(target, link); err != nil {
		t.Fatalf("Failed to create symlink %s -> %s: %v", link, target, err)
	}
}

// ReadFile returns a file's content, failing the test if it cannot be
// read.
func ReadFile(t *testing.T, path string) string {
	t.Helper()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// MemFS builds an in-memory read-only filesystem holding the given
// files.
func MemFS(t *testing.T, files map[string]string) types.FS {
	t.Helper()

	memfs := afero.NewMemMapFs()
	for path, content := range files {
		if err := afero.WriteFile(memfs, path, []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write %s to memory fs: %v", path, err)
		}
	}
	return filesystem.NewAferoFS(memfs)
}
