// Package cache provides a generic bounded key-value store for
// evaluation results. Entries are evicted least-recently-used when
// either the entry-count or the size-estimate ceiling is exceeded,
// expire after a configurable age, and can be bound to a file so that
// a modification-time change makes them logically absent.
package cache
