// Package content scans file content for regular-expression matches on
// behalf of rule triggers.
//
// Files are classified as text or binary by sampling their first 8 KiB;
// binary files are never scanned. Content below one MiB is read whole
// and scanned line by line; anything larger is streamed so peak memory
// stays bounded. Scanning stops after 1000 recorded matches regardless
// of input size.
package content
