package content

import "time"

// Stats is a snapshot of an Analyzer's accumulated counters.
type Stats struct {
	FilesAnalyzed   int64
	BytesProcessed  int64
	BinarySkips     int64
	AvgAnalysisTime time.Duration
}

type statsAccumulator struct {
	filesAnalyzed  int64
	bytesProcessed int64
	binarySkips    int64
	avgDuration    time.Duration
}

// recordAnalysis folds one completed analysis into the running
// counters. The average uses a cumulative moving average so it never
// needs the full history.
func (a *Analyzer) recordAnalysis(analysis *Analysis) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := &a.stats
	s.filesAnalyzed++
	s.bytesProcessed += analysis.bytesRead
	if analysis.IsBinary {
		s.binarySkips++
	}
	s.avgDuration += (analysis.Duration - s.avgDuration) / time.Duration(s.filesAnalyzed)
}

// Stats returns a copy of the current counters.
func (a *Analyzer) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()

	return Stats{
		FilesAnalyzed:   a.stats.filesAnalyzed,
		BytesProcessed:  a.stats.bytesProcessed,
		BinarySkips:     a.stats.binarySkips,
		AvgAnalysisTime: a.stats.avgDuration,
	}
}
