package content

import (
	"regexp"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/rulescan/pkg/errors"
	"github.com/arthur-debert/rulescan/pkg/filesystem"
	"github.com/arthur-debert/rulescan/pkg/logging"
	"github.com/arthur-debert/rulescan/pkg/types"
)

const (
	// DefaultMaxFileSize is the ceiling above which files are skipped
	// without reading content.
	DefaultMaxFileSize = 10 << 20 // 10 MiB

	// streamThreshold is the size at or above which content is scanned
	// via the streaming path instead of being read whole.
	streamThreshold = 1 << 20 // 1 MiB

	// MaxMatches caps how many matches one analysis records.
	MaxMatches = 1000
)

// AnalyzeOptions tune a single content analysis.
type AnalyzeOptions struct {
	// CaseSensitive disables the default case-insensitive matching.
	CaseSensitive bool

	// Multiline compiles the pattern with multiline semantics, so ^ and
	// $ anchor at line boundaries inside a single scanned line.
	Multiline bool

	// MaxFileSize overrides the analyzer's size ceiling for this call.
	// Zero means the analyzer default.
	MaxFileSize int64
}

// Match records a single pattern occurrence. Line and Column are 1-based.
type Match struct {
	Line     int
	Column   int
	LineText string
	Text     string
}

// Analysis is the outcome of scanning one file for one pattern.
type Analysis struct {
	Path     string
	Matched  bool
	Matches  []Match
	Duration time.Duration
	FileSize int64
	IsBinary bool

	// SkippedOversize marks files skipped for exceeding the size
	// ceiling; their content was never read.
	SkippedOversize bool

	// bytesRead counts bytes actually consumed, which differs from
	// FileSize for binary skips and capped scans.
	bytesRead int64
}

// Analyzer scans file content for pattern matches. Each engine instance
// owns its own Analyzer; compiled regexes and statistics are per
// instance.
type Analyzer struct {
	fs          types.FS
	maxFileSize int64
	logger      zerolog.Logger

	mu         sync.Mutex
	regexCache map[string]*regexp.Regexp
	stats      statsAccumulator
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithFS substitutes the filesystem, typically an in-memory one in tests.
func WithFS(fsys types.FS) Option {
	return func(a *Analyzer) { a.fs = fsys }
}

// WithMaxFileSize sets the default size ceiling.
func WithMaxFileSize(limit int64) Option {
	return func(a *Analyzer) {
		if limit > 0 {
			a.maxFileSize = limit
		}
	}
}

// NewAnalyzer creates an Analyzer with the default size ceiling on the
// OS filesystem.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		fs:          filesystem.NewOS(),
		maxFileSize: DefaultMaxFileSize,
		logger:      logging.GetLogger("content"),
		regexCache:  make(map[string]*regexp.Regexp),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze scans one file for one pattern. Oversize and binary files are
// not errors: they yield explicit skip results. A file that cannot be
// read or a pattern that does not compile returns an error the caller is
// expected to absorb into "no match".
func (a *Analyzer) Analyze(path, pattern string, opts *AnalyzeOptions) (*Analysis, error) {
	start := time.Now()
	if opts == nil {
		opts = &AnalyzeOptions{}
	}

	analysis := &Analysis{Path: path}

	info, err := a.fs.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", path)
	}
	analysis.FileSize = info.Size()

	ceiling := a.maxFileSize
	if opts.MaxFileSize > 0 {
		ceiling = opts.MaxFileSize
	}
	if analysis.FileSize > ceiling {
		analysis.SkippedOversize = true
		analysis.Duration = time.Since(start)
		a.logger.Debug().
			Str("path", path).
			Int64("size", analysis.FileSize).
			Int64("ceiling", ceiling).
			Msg("file exceeds size ceiling, skipping content scan")
		return analysis, nil
	}

	re, err := a.compile(pattern, opts)
	if err != nil {
		return nil, err
	}

	if analysis.FileSize >= streamThreshold {
		err = a.scanStreaming(analysis, re)
	} else {
		err = a.scanInMemory(analysis, re)
	}
	if err != nil {
		return nil, err
	}

	analysis.Matched = len(analysis.Matches) > 0
	analysis.Duration = time.Since(start)
	a.recordAnalysis(analysis)
	return analysis, nil
}

// AnalyzeMultiple scans each file for the pattern. Per-file failures are
// absorbed into unmatched results so one unreadable file never aborts
// the set.
func (a *Analyzer) AnalyzeMultiple(paths []string, pattern string, opts *AnalyzeOptions) []*Analysis {
	results := make([]*Analysis, 0, len(paths))
	for _, path := range paths {
		analysis, err := a.Analyze(path, pattern, opts)
		if err != nil {
			a.logger.Warn().
				Err(err).
				Str("path", path).
				Msg("content analysis failed, treating as no match")
			analysis = &Analysis{Path: path}
		}
		results = append(results, analysis)
	}
	return results
}

// MatchesAny reports whether any of the patterns matches the file's
// content. Errors are absorbed into false.
func (a *Analyzer) MatchesAny(path string, patterns []string, opts *AnalyzeOptions) bool {
	for _, pattern := range patterns {
		analysis, err := a.Analyze(path, pattern, opts)
		if err != nil {
			a.logger.Warn().
				Err(err).
				Str("path", path).
				Str("pattern", pattern).
				Msg("content analysis failed, treating as no match")
			continue
		}
		if analysis.Matched {
			return true
		}
	}
	return false
}

// Filter returns the paths whose content matches the pattern.
func (a *Analyzer) Filter(paths []string, pattern string, opts *AnalyzeOptions) []string {
	matched := make([]string, 0, len(paths))
	for _, analysis := range a.AnalyzeMultiple(paths, pattern, opts) {
		if analysis.Matched {
			matched = append(matched, analysis.Path)
		}
	}
	return matched
}

// compile returns the compiled regex for (pattern, options), cached per
// analyzer instance.
func (a *Analyzer) compile(pattern string, opts *AnalyzeOptions) (*regexp.Regexp, error) {
	source := pattern
	if opts.Multiline {
		source = "(?m)" + source
	}
	if !opts.CaseSensitive {
		source = "(?i)" + source
	}

	a.mu.Lock()
	re, ok := a.regexCache[source]
	a.mu.Unlock()
	if ok {
		return re, nil
	}

	re, err := regexp.Compile(source)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrPatternCompile, "invalid content pattern %q", pattern)
	}

	a.mu.Lock()
	a.regexCache[source] = re
	a.mu.Unlock()
	return re, nil
}

// ClearCache drops all compiled content patterns.
func (a *Analyzer) ClearCache() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.regexCache = make(map[string]*regexp.Regexp)
}
