// Package patterns implements glob-style path matching for rule
// triggers. Patterns support *, ?, [...], {...} and the recursive **,
// and are matched case-insensitively unless a call opts out.
//
// Compiled patterns are cached per Matcher instance keyed by pattern and
// option set. The cache has no size bound; callers reclaim memory with
// ClearCache. An invalid pattern is never an error at match time: it
// simply matches nothing.
package patterns
