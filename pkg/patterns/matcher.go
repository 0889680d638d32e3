package patterns

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gobwas/glob"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/rulescan/pkg/logging"
)

// MatchOptions tune a single match call.
type MatchOptions struct {
	// CaseSensitive disables the default case-insensitive matching.
	CaseSensitive bool

	// NoCache bypasses the compiled-pattern cache for this call.
	NoCache bool
}

// MatchResult reports whether a path matched and how long the test took.
type MatchResult struct {
	Matched  bool
	Duration time.Duration
}

// compiledPattern holds the glob variants for one (pattern, options) pair.
// A nil variants slice marks a pattern that failed to compile; it matches
// nothing but stays cached so the bad pattern is not recompiled per call.
type compiledPattern struct {
	variants []glob.Glob
}

func (c compiledPattern) match(path string) bool {
	for _, g := range c.variants {
		if g.Match(path) {
			return true
		}
	}
	return false
}

// Matcher compiles and caches glob-style path patterns. Each engine
// instance owns its own Matcher; there is no process-wide cache.
type Matcher struct {
	mu     sync.RWMutex
	cache  map[string]compiledPattern
	logger zerolog.Logger
}

// NewMatcher creates a Matcher with an empty pattern cache.
func NewMatcher() *Matcher {
	return &Matcher{
		cache:  make(map[string]compiledPattern),
		logger: logging.GetLogger("patterns"),
	}
}

// Match tests a single path against a single pattern. An invalid pattern
// yields Matched=false with a valid timing value; it never returns an
// error.
func (m *Matcher) Match(path, pattern string, opts *MatchOptions) MatchResult {
	start := time.Now()
	if opts == nil {
		opts = &MatchOptions{}
	}

	compiled := m.compiled(pattern, opts)

	candidate := filepath.ToSlash(path)
	if !opts.CaseSensitive {
		candidate = strings.ToLower(candidate)
	}

	matched := compiled.match(candidate)
	return MatchResult{Matched: matched, Duration: elapsed(start)}
}

// Filter returns the paths that match the pattern.
func (m *Matcher) Filter(paths []string, pattern string, opts *MatchOptions) []string {
	matched := make([]string, 0, len(paths))
	for _, p := range paths {
		if m.Match(p, pattern, opts).Matched {
			matched = append(matched, p)
		}
	}
	return matched
}

// FilterAny returns the paths that match at least one of the patterns.
func (m *Matcher) FilterAny(paths []string, patterns []string, opts *MatchOptions) []string {
	matched := make([]string, 0, len(paths))
	for _, p := range paths {
		if m.MatchesAny(p, patterns, opts) {
			matched = append(matched, p)
		}
	}
	return matched
}

// MatchesAny reports whether the path matches at least one pattern.
func (m *Matcher) MatchesAny(path string, patterns []string, opts *MatchOptions) bool {
	for _, pattern := range patterns {
		if m.Match(path, pattern, opts).Matched {
			return true
		}
	}
	return false
}

// FilterWithExclusions applies an include set then subtracts an exclude
// set. An empty include set keeps every path; exclusions always subtract.
func (m *Matcher) FilterWithExclusions(paths, includes, excludes []string, opts *MatchOptions) []string {
	kept := paths
	if len(includes) > 0 {
		kept = m.FilterAny(paths, includes, opts)
	}
	if len(excludes) == 0 {
		return kept
	}

	result := make([]string, 0, len(kept))
	for _, p := range kept {
		if !m.MatchesAny(p, excludes, opts) {
			result = append(result, p)
		}
	}
	return result
}

// CacheSize returns the number of compiled patterns currently cached.
func (m *Matcher) CacheSize() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.cache)
}

// ClearCache drops every compiled pattern.
func (m *Matcher) ClearCache() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache = make(map[string]compiledPattern)
}

// compiled returns the compiled form of pattern for the given options,
// consulting the cache unless the call opted out.
func (m *Matcher) compiled(pattern string, opts *MatchOptions) compiledPattern {
	key := cacheKey(pattern, opts)

	if !opts.NoCache {
		m.mu.RLock()
		entry, ok := m.cache[key]
		m.mu.RUnlock()
		if ok {
			return entry
		}
	}

	entry := m.compile(pattern, opts)

	if !opts.NoCache {
		m.mu.Lock()
		m.cache[key] = entry
		m.mu.Unlock()
	}
	return entry
}

// compile builds the glob variants for a pattern. A pattern starting
// with "**/" also matches paths at the root, so a second rootless
// variant is compiled alongside it.
func (m *Matcher) compile(pattern string, opts *MatchOptions) compiledPattern {
	source := pattern
	if !opts.CaseSensitive {
		source = strings.ToLower(source)
	}

	sources := []string{source}
	if rest, ok := strings.CutPrefix(source, "**/"); ok && rest != "" {
		sources = append(sources, rest)
	}

	variants := make([]glob.Glob, 0, len(sources))
	for _, s := range sources {
		g, err := glob.Compile(s, '/')
		if err != nil {
			m.logger.Warn().
				Err(err).
				Str("pattern", pattern).
				Msg("invalid path pattern, treating as non-matching")
			return compiledPattern{}
		}
		variants = append(variants, g)
	}
	return compiledPattern{variants: variants}
}

// Escape quotes glob metacharacters so the result matches s literally.
func Escape(s string) string {
	return glob.QuoteMeta(s)
}

// IsValidPattern reports whether the pattern compiles.
func IsValidPattern(pattern string) bool {
	_, err := glob.Compile(pattern, '/')
	return err == nil
}

func cacheKey(pattern string, opts *MatchOptions) string {
	if opts.CaseSensitive {
		return pattern + "\x00cs"
	}
	return pattern + "\x00ci"
}

// elapsed returns a strictly positive duration since start, so callers
// can rely on a non-zero timing even for sub-nanosecond clock reads.
func elapsed(start time.Time) time.Duration {
	d := time.Since(start)
	if d <= 0 {
		d = time.Nanosecond
	}
	return d
}
