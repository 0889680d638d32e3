package engine

import (
	"time"

	"github.com/arthur-debert/rulescan/pkg/errors"
	"github.com/arthur-debert/rulescan/pkg/metrics"
	"github.com/arthur-debert/rulescan/pkg/patterns"
	"github.com/arthur-debert/rulescan/pkg/types"
)

// EvaluateFile runs one rule against one file. Pattern compile and
// file read failures degrade to an unmatched result; an error return
// means the inputs themselves were unusable.
func (e *Engine) EvaluateFile(path string, rule *types.Rule, opts *types.EvaluateOptions) (*types.EvaluationResult, error) {
	return e.evaluate(path, path, rule, e.resolveOptions(opts))
}

// evaluate is the per-(file, rule) state machine: cache probe, path
// phase, content phase, classification, cache store. ioPath names the
// file on disk; matchPath is the string path patterns are tested
// against. Standalone calls pass the same value for both; directory
// evaluation reads the absolute path but matches the root-relative one.
func (e *Engine) evaluate(ioPath, matchPath string, rule *types.Rule, opts *types.EvaluateOptions) (*types.EvaluationResult, error) {
	if ioPath == "" {
		return nil, errors.New(errors.ErrInvalidInput, "file path must not be empty")
	}
	if rule == nil {
		return nil, errors.New(errors.ErrInvalidInput, "rule must not be nil")
	}
	start := time.Now()

	key := cacheKey(ioPath, matchPath, rule.Name)
	useCache := e.cache != nil && opts.UseCache
	if useCache {
		if cached, ok := e.cache.Get(key); ok {
			e.recorder.ObserveCacheLookup(true)
			cached.Rule = rule
			cached.FromCache = true
			e.recorder.ObserveEvaluation(cached.Matched, true, time.Since(start))
			return &cached, nil
		}
		e.recorder.ObserveCacheLookup(false)
	}

	pathPassed, matchedPaths := e.pathPhase(matchPath, rule)
	var matchedContent []string
	if pathPassed {
		matchedContent = e.contentPhase(ioPath, rule)
	}

	matchType := classify(rule, matchedPaths, matchedContent)
	result := &types.EvaluationResult{
		Rule:      rule,
		Matched:   matchType != types.MatchTypeNone,
		MatchType: matchType,
		MatchedPatterns: types.MatchedPatterns{
			PathPatterns:    matchedPaths,
			ContentPatterns: matchedContent,
		},
		Duration: time.Since(start),
	}

	if useCache {
		e.cache.SetFile(key, *result, ioPath)
	}
	e.recorder.ObserveEvaluation(result.Matched, false, result.Duration)
	e.logger.Trace().
		Str("path", matchPath).
		Str("rule", rule.Name).
		Str("matchType", string(matchType)).
		Msg("Rule evaluated")
	return result, nil
}

// pathPhase reports whether the file clears the rule's path triggers.
// A rule with no path patterns passes unconditionally; exclusions veto
// either way. The returned slice holds the patterns that matched.
func (e *Engine) pathPhase(matchPath string, rule *types.Rule) (bool, []string) {
	mopts := &patterns.MatchOptions{CaseSensitive: e.scanOpts.CaseSensitive}
	if e.matcher.MatchesAny(matchPath, rule.PathExclusions(), mopts) {
		return false, nil
	}
	if !rule.HasPathPatterns() {
		return true, nil
	}

	var matched []string
	for _, pattern := range rule.PathPatterns() {
		if e.matcher.Match(matchPath, pattern, mopts).Matched {
			matched = append(matched, pattern)
		}
	}
	return len(matched) > 0, matched
}

// contentPhase returns the content patterns found in the file. Read
// and compile errors count the pattern as unmatched; binary and
// oversize files end the phase early since no pattern can match them.
func (e *Engine) contentPhase(ioPath string, rule *types.Rule) []string {
	if !rule.HasContentPatterns() {
		return nil
	}

	var matched []string
	for _, pattern := range rule.ContentPatterns() {
		analysis, err := e.analyzer.Analyze(ioPath, pattern, nil)
		if err != nil {
			e.logger.Warn().
				Err(err).
				Str("path", ioPath).
				Str("rule", rule.Name).
				Str("pattern", pattern).
				Msg("Content analysis failed, pattern treated as unmatched")
			continue
		}
		if analysis.IsBinary {
			e.recorder.ObserveContentSkip(metrics.SkipBinary)
			break
		}
		if analysis.SkippedOversize {
			e.recorder.ObserveContentSkip(metrics.SkipOversize)
			break
		}
		if analysis.Matched {
			matched = append(matched, pattern)
		}
	}
	return matched
}

// classify derives the match type from which declared pattern sets
// contributed. Both phases are conjunctive: a declared set that failed
// leaves the rule unmatched no matter what the other set did.
func classify(rule *types.Rule, matchedPaths, matchedContent []string) types.MatchType {
	pathDeclared := rule.HasPathPatterns()
	contentDeclared := rule.HasContentPatterns()

	switch {
	case pathDeclared && contentDeclared && len(matchedPaths) > 0 && len(matchedContent) > 0:
		return types.MatchTypeBoth
	case pathDeclared && !contentDeclared && len(matchedPaths) > 0:
		return types.MatchTypePath
	case contentDeclared && !pathDeclared && len(matchedContent) > 0:
		return types.MatchTypeContent
	default:
		return types.MatchTypeNone
	}
}
