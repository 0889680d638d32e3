package types

import "time"

// MatchType classifies how a rule matched a file.
type MatchType string

const (
	// MatchTypePath means only the path phase contributed a match.
	MatchTypePath MatchType = "path"
	// MatchTypeContent means only the content phase contributed a match.
	MatchTypeContent MatchType = "content"
	// MatchTypeBoth means both phases matched with non-empty pattern sets.
	MatchTypeBoth MatchType = "both"
	// MatchTypeNone means the rule does not apply to the file.
	MatchTypeNone MatchType = "none"
)

// MatchedPatterns records which declared patterns actually matched.
type MatchedPatterns struct {
	PathPatterns    []string
	ContentPatterns []string
}

// EvaluationResult is the outcome of evaluating one rule against one file.
type EvaluationResult struct {
	Rule            *Rule
	Matched         bool
	MatchType       MatchType
	MatchedPatterns MatchedPatterns
	Duration        time.Duration
	FromCache       bool
}

// BatchEvaluation aggregates one file evaluated against a rule set.
type BatchEvaluation struct {
	// MatchedRules holds the rules that matched, sorted by priority
	// (critical > high > medium > low).
	MatchedRules []*Rule

	// Results holds one entry per evaluated rule, in no particular order.
	Results []EvaluationResult

	// TotalTime is the wall-clock time for the whole batch.
	TotalTime time.Duration

	// CacheHitRate is the fraction of evaluations served from cache, in
	// the range [0, 1].
	CacheHitRate float64
}

// DirectoryEvaluation maps files under a scanned root to the rules that
// matched them. Files with no matching rules are absent.
type DirectoryEvaluation struct {
	// ScanID correlates log lines emitted during this evaluation.
	ScanID string

	// Matches maps root-relative file paths to their matched rules,
	// each list priority-sorted.
	Matches map[string][]*Rule

	// FilesEvaluated counts every candidate file run through the rule
	// set, matched or not.
	FilesEvaluated int

	// TotalTime is the wall-clock time including the directory scan.
	TotalTime time.Duration
}
