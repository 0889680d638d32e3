package engine

import (
	"sync"
	"time"

	"github.com/arthur-debert/rulescan/pkg/errors"
	"github.com/arthur-debert/rulescan/pkg/types"
)

// EvaluateFileAgainstRules runs every rule against one file with
// bounded concurrency and aggregates the outcome. Matched rules come
// back priority-sorted; per-rule failures count as unmatched and never
// abort the batch.
func (e *Engine) EvaluateFileAgainstRules(path string, rules []*types.Rule, opts *types.EvaluateOptions) (*types.BatchEvaluation, error) {
	if path == "" {
		return nil, errors.New(errors.ErrInvalidInput, "file path must not be empty")
	}
	return e.evaluateBatch(path, path, rules, e.resolveOptions(opts))
}

func (e *Engine) evaluateBatch(ioPath, matchPath string, rules []*types.Rule, opts *types.EvaluateOptions) (*types.BatchEvaluation, error) {
	start := time.Now()

	results := make([]types.EvaluationResult, len(rules))
	sem := make(chan struct{}, opts.Concurrency())
	var wg sync.WaitGroup
	for i, rule := range rules {
		wg.Add(1)
		go func(i int, rule *types.Rule) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			result, err := e.evaluate(ioPath, matchPath, rule, opts)
			if err != nil {
				e.logger.Warn().
					Err(err).
					Str("path", ioPath).
					Msg("Evaluation failed, rule counted as unmatched")
				result = &types.EvaluationResult{Rule: rule, MatchType: types.MatchTypeNone}
			}
			results[i] = *result
		}(i, rule)
	}
	wg.Wait()

	totalTime := time.Since(start)
	if opts.Timeout > 0 && totalTime > opts.Timeout {
		e.logger.Warn().
			Str("path", ioPath).
			Dur("elapsed", totalTime).
			Dur("timeout", opts.Timeout).
			Msg("Batch exceeded advisory timeout")
	}

	var matched []*types.Rule
	cacheHits := 0
	for i := range results {
		if results[i].Matched {
			matched = append(matched, results[i].Rule)
		}
		if results[i].FromCache {
			cacheHits++
		}
	}
	types.SortRulesByPriority(matched)

	hitRate := 0.0
	if len(results) > 0 {
		hitRate = float64(cacheHits) / float64(len(results))
	}

	return &types.BatchEvaluation{
		MatchedRules: matched,
		Results:      results,
		TotalTime:    totalTime,
		CacheHitRate: hitRate,
	}, nil
}
