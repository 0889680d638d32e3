package types

import (
	"io"
	"io/fs"
)

// FS is the read-only filesystem interface the engine operates through.
// Production code uses the OS implementation; tests substitute an
// in-memory one.
type FS interface {
	// Stat follows symlinks.
	Stat(name string) (fs.FileInfo, error)

	// Lstat does not follow symlinks. Implementations without symlink
	// support may fall back to Stat.
	Lstat(name string) (fs.FileInfo, error)

	// ReadDir returns the entries of a directory.
	ReadDir(name string) ([]fs.DirEntry, error)

	// ReadFile reads a whole file into memory.
	ReadFile(name string) ([]byte, error)

	// Open opens a file for streaming reads.
	Open(name string) (io.ReadCloser, error)

	// Readlink returns the target of a symlink.
	Readlink(name string) (string, error)
}
