package commands

import (
	"github.com/arthur-debert/rulescan/pkg/errors"
	"github.com/arthur-debert/rulescan/pkg/logging"
	"github.com/arthur-debert/rulescan/pkg/patterns"
)

// MatchOptions defines the options for the Match command.
type MatchOptions struct {
	// Patterns are the glob patterns to test.
	Patterns []string

	// Paths are the file paths tested against every pattern.
	Paths []string

	// CaseSensitive disables the default case-insensitive matching.
	CaseSensitive bool
}

// PathMatch reports the outcome for one path.
type PathMatch struct {
	Path            string   `json:"path"`
	Matched         bool     `json:"matched"`
	MatchedPatterns []string `json:"matchedPatterns,omitempty"`
}

// MatchResult is the outcome of testing paths against glob patterns.
type MatchResult struct {
	Matches      []PathMatch `json:"matches"`
	MatchedCount int         `json:"matchedCount"`
}

// Match tests each path against the given glob patterns and reports
// which patterns matched. Malformed patterns simply never match.
func Match(opts MatchOptions) (*MatchResult, error) {
	log := logging.GetLogger("commands")
	log.Debug().Str("command", "Match").Int("patterns", len(opts.Patterns)).Int("paths", len(opts.Paths)).Msg("Executing command")

	if len(opts.Patterns) == 0 {
		return nil, errors.New(errors.ErrInvalidInput, "at least one pattern is required")
	}
	if len(opts.Paths) == 0 {
		return nil, errors.New(errors.ErrInvalidInput, "at least one path is required")
	}

	matcher := patterns.NewMatcher()
	mopts := &patterns.MatchOptions{CaseSensitive: opts.CaseSensitive}

	result := &MatchResult{Matches: make([]PathMatch, 0, len(opts.Paths))}
	for _, path := range opts.Paths {
		pm := PathMatch{Path: path}
		for _, pattern := range opts.Patterns {
			if matcher.Match(path, pattern, mopts).Matched {
				pm.MatchedPatterns = append(pm.MatchedPatterns, pattern)
			}
		}
		pm.Matched = len(pm.MatchedPatterns) > 0
		if pm.Matched {
			result.MatchedCount++
		}
		result.Matches = append(result.Matches, pm)
	}

	log.Info().Str("command", "Match").Int("matched", result.MatchedCount).Msg("Command finished")
	return result, nil
}
