// Package filesystem provides types.FS implementations: the OS
// filesystem for production use and an afero-backed one so tests can run
// against an in-memory tree.
package filesystem
