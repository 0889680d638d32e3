package commands

import (
	"github.com/arthur-debert/rulescan/pkg/content"
	"github.com/arthur-debert/rulescan/pkg/errors"
	"github.com/arthur-debert/rulescan/pkg/logging"
)

// AnalyzeOptions defines the options for the Analyze command.
type AnalyzeOptions struct {
	// Pattern is the regular expression searched for.
	Pattern string

	// Paths are the files to analyze.
	Paths []string

	// CaseSensitive disables the default case-insensitive matching.
	CaseSensitive bool

	// Multiline compiles the pattern with multiline semantics.
	Multiline bool

	// MaxFileSize overrides the default size ceiling. Zero keeps the
	// default.
	MaxFileSize int64
}

// ContentMatch locates one pattern occurrence. Line and Column are
// 1-based.
type ContentMatch struct {
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Text     string `json:"text"`
	LineText string `json:"lineText"`
}

// FileAnalysis reports the outcome for one file.
type FileAnalysis struct {
	Path            string         `json:"path"`
	Matched         bool           `json:"matched"`
	Matches         []ContentMatch `json:"matches,omitempty"`
	IsBinary        bool           `json:"isBinary,omitempty"`
	SkippedOversize bool           `json:"skippedOversize,omitempty"`
	Error           string         `json:"error,omitempty"`
}

// AnalyzeResult is the outcome of searching files for a pattern.
type AnalyzeResult struct {
	Pattern      string         `json:"pattern"`
	Files        []FileAnalysis `json:"files"`
	MatchedCount int            `json:"matchedCount"`
}

// Analyze searches each file's content for the pattern. A pattern that
// does not compile fails the whole command; unreadable files are
// reported per file so one bad path does not abort the rest.
func Analyze(opts AnalyzeOptions) (*AnalyzeResult, error) {
	log := logging.GetLogger("commands")
	log.Debug().Str("command", "Analyze").Str("pattern", opts.Pattern).Int("paths", len(opts.Paths)).Msg("Executing command")

	if opts.Pattern == "" {
		return nil, errors.New(errors.ErrInvalidInput, "pattern must not be empty")
	}
	if len(opts.Paths) == 0 {
		return nil, errors.New(errors.ErrInvalidInput, "at least one path is required")
	}

	var analyzerOpts []content.Option
	if opts.MaxFileSize > 0 {
		analyzerOpts = append(analyzerOpts, content.WithMaxFileSize(opts.MaxFileSize))
	}
	analyzer := content.NewAnalyzer(analyzerOpts...)
	aopts := &content.AnalyzeOptions{
		CaseSensitive: opts.CaseSensitive,
		Multiline:     opts.Multiline,
	}

	result := &AnalyzeResult{
		Pattern: opts.Pattern,
		Files:   make([]FileAnalysis, 0, len(opts.Paths)),
	}
	for _, path := range opts.Paths {
		analysis, err := analyzer.Analyze(path, opts.Pattern, aopts)
		if err != nil {
			if errors.IsErrorCode(err, errors.ErrPatternCompile) {
				return nil, err
			}
			result.Files = append(result.Files, FileAnalysis{Path: path, Error: err.Error()})
			continue
		}

		fa := FileAnalysis{
			Path:            path,
			Matched:         analysis.Matched,
			IsBinary:        analysis.IsBinary,
			SkippedOversize: analysis.SkippedOversize,
			Matches:         make([]ContentMatch, 0, len(analysis.Matches)),
		}
		for _, m := range analysis.Matches {
			fa.Matches = append(fa.Matches, ContentMatch{
				Line:     m.Line,
				Column:   m.Column,
				Text:     m.Text,
				LineText: m.LineText,
			})
		}
		if fa.Matched {
			result.MatchedCount++
		}
		result.Files = append(result.Files, fa)
	}

	log.Info().Str("command", "Analyze").Int("matched", result.MatchedCount).Msg("Command finished")
	return result, nil
}
