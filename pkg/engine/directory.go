package engine

import (
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/arthur-debert/rulescan/pkg/types"
)

// FindMatchingFiles scans a directory tree and evaluates every
// candidate file against the rule set. The union of the rules' path
// patterns narrows the scan; only files with at least one matched rule
// appear in the result. Per-file failures are logged and skipped; only
// an unusable root fails the call.
func (e *Engine) FindMatchingFiles(root string, rules []*types.Rule, opts *types.EvaluateOptions) (*types.DirectoryEvaluation, error) {
	opts = e.resolveOptions(opts)
	start := time.Now()

	scanID := uuid.NewString()
	logger := e.logger.With().
		Str("scanID", scanID).
		Str("root", root).
		Logger()

	scanOpts := e.scanOpts
	if include := unionPathPatterns(rules); len(include) > 0 {
		scanOpts.IncludePatterns = include
	}

	scan, err := e.scanner.Scan(root, &scanOpts)
	if err != nil {
		return nil, err
	}
	logger.Debug().
		Int("candidates", len(scan.Files)).
		Int("rules", len(rules)).
		Msg("Scan complete, evaluating candidates")

	matches := make(map[string][]*types.Rule)
	evaluated := 0
	for _, rel := range scan.Files {
		batch, err := e.evaluateBatch(filepath.Join(root, rel), rel, rules, opts)
		if err != nil {
			logger.Warn().Err(err).Str("path", rel).Msg("Batch evaluation failed, file skipped")
			continue
		}
		evaluated++
		if len(batch.MatchedRules) > 0 {
			matches[rel] = batch.MatchedRules
		}
	}

	result := &types.DirectoryEvaluation{
		ScanID:         scanID,
		Matches:        matches,
		FilesEvaluated: evaluated,
		TotalTime:      time.Since(start),
	}
	logger.Debug().
		Int("filesEvaluated", evaluated).
		Int("filesMatched", len(matches)).
		Dur("totalTime", result.TotalTime).
		Msg("Directory evaluation complete")
	return result, nil
}

// unionPathPatterns collects the distinct path patterns across all
// rules, preserving first-seen order. Rules without path patterns
// contribute nothing; if no rule declares any, the scan stays
// unfiltered so content-only rules still see every file.
func unionPathPatterns(rules []*types.Rule) []string {
	var union []string
	seen := make(map[string]struct{})
	for _, rule := range rules {
		if rule == nil {
			continue
		}
		for _, pattern := range rule.PathPatterns() {
			if _, ok := seen[pattern]; ok {
				continue
			}
			seen[pattern] = struct{}{}
			union = append(union, pattern)
		}
	}
	return union
}
