package engine

import (
	"github.com/arthur-debert/rulescan/pkg/cache"
	"github.com/arthur-debert/rulescan/pkg/content"
)

// Stats snapshots the engine's internal caches and analyzer counters.
type Stats struct {
	PatternCacheSize int
	EvaluationCache  cache.Stats
	ContentAnalyzer  content.Stats
}

// Stats returns a point-in-time snapshot. The evaluation cache section
// is zero when caching is disabled.
func (e *Engine) Stats() Stats {
	s := Stats{
		PatternCacheSize: e.matcher.CacheSize(),
		ContentAnalyzer:  e.analyzer.Stats(),
	}
	if e.cache != nil {
		s.EvaluationCache = e.cache.Stats()
	}
	return s
}

// HotEntries ranks evaluation cache entries by access count. Nil when
// caching is disabled.
func (e *Engine) HotEntries(limit int) []cache.HotEntry {
	if e.cache == nil {
		return nil
	}
	return e.cache.HotEntries(limit)
}

// ClearCache empties the evaluation cache, the compiled pattern cache,
// and the compiled regex cache.
func (e *Engine) ClearCache() {
	e.matcher.ClearCache()
	e.analyzer.ClearCache()
	if e.cache != nil {
		e.cache.Clear()
	}
	e.logger.Debug().Msg("Engine caches cleared")
}
