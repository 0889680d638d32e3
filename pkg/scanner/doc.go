// Package scanner enumerates candidate files under a root directory.
// Traversal is recursive, depth-bounded, and processes each directory's
// children in concurrency-bounded batches. Ignore rules come from an
// optional .gitignore at the scan root combined with a built-in set;
// include and exclude glob patterns are applied as a post-pass over
// root-relative paths.
package scanner
