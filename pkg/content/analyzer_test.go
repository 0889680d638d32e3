package content

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/rulescan/pkg/errors"
	"github.com/arthur-debert/rulescan/pkg/filesystem"
)

func newTestAnalyzer(t *testing.T, files map[string]string, opts ...Option) *Analyzer {
	t.Helper()
	memfs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(memfs, path, []byte(content), 0o644))
	}
	opts = append([]Option{WithFS(filesystem.NewAferoFS(memfs))}, opts...)
	return NewAnalyzer(opts...)
}

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		pattern     string
		opts        *AnalyzeOptions
		wantMatched bool
		wantMatches []Match
	}{
		{
			name:        "literal match",
			content:     "package main\n\nfunc main() {}\n",
			pattern:     "func main",
			wantMatched: true,
			wantMatches: []Match{
				{Line: 3, Column: 1, LineText: "func main() {}", Text: "func main"},
			},
		},
		{
			name:        "case insensitive by default",
			content:     "const TODO = 1\n",
			pattern:     "todo",
			wantMatched: true,
			wantMatches: []Match{
				{Line: 1, Column: 7, LineText: "const TODO = 1", Text: "TODO"},
			},
		},
		{
			name:        "case sensitive when requested",
			content:     "const TODO = 1\n",
			pattern:     "todo",
			opts:        &AnalyzeOptions{CaseSensitive: true},
			wantMatched: false,
		},
		{
			name:        "multiple matches on one line",
			content:     "  foo bar foo\n",
			pattern:     "foo",
			opts:        &AnalyzeOptions{CaseSensitive: true},
			wantMatched: true,
			wantMatches: []Match{
				{Line: 1, Column: 3, LineText: "  foo bar foo", Text: "foo"},
				{Line: 1, Column: 11, LineText: "  foo bar foo", Text: "foo"},
			},
		},
		{
			name:        "regex alternation",
			content:     "import React from 'react'\n",
			pattern:     `import\s+(React|Vue)`,
			wantMatched: true,
			wantMatches: []Match{
				{Line: 1, Column: 1, LineText: "import React from 'react'", Text: "import React"},
			},
		},
		{
			name:        "crlf line endings stripped",
			content:     "alpha\r\nbeta\r\n",
			pattern:     "beta",
			wantMatched: true,
			wantMatches: []Match{
				{Line: 2, Column: 1, LineText: "beta", Text: "beta"},
			},
		},
		{
			name:        "anchored pattern matches line start",
			content:     "import os\nx = \"import\"\n",
			pattern:     `^import`,
			wantMatched: true,
			wantMatches: []Match{
				{Line: 1, Column: 1, LineText: "import os", Text: "import"},
			},
		},
		{
			name:        "no match",
			content:     "nothing to see\n",
			pattern:     "interface",
			wantMatched: false,
		},
		{
			name:        "empty file",
			content:     "",
			pattern:     "anything",
			wantMatched: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzer := newTestAnalyzer(t, map[string]string{"/src/file.txt": tt.content})

			analysis, err := analyzer.Analyze("/src/file.txt", tt.pattern, tt.opts)
			require.NoError(t, err)

			assert.Equal(t, tt.wantMatched, analysis.Matched)
			assert.False(t, analysis.IsBinary)
			assert.False(t, analysis.SkippedOversize)
			if tt.wantMatches != nil {
				assert.Equal(t, tt.wantMatches, analysis.Matches)
			} else {
				assert.Empty(t, analysis.Matches)
			}
		})
	}
}

func TestAnalyzeBinaryDetection(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wantBinary bool
	}{
		{
			name:       "nul byte is decisive",
			content:    "mostly text\x00more text",
			wantBinary: true,
		},
		{
			name:       "control character soup",
			content:    strings.Repeat("\x01\x02a", 100),
			wantBinary: true,
		},
		{
			name:       "tabs and newlines are fine",
			content:    "col1\tcol2\r\nval1\tval2\n",
			wantBinary: false,
		},
		{
			name:       "sparse control characters tolerated",
			content:    "\x1b[31mred\x1b[0m " + strings.Repeat("text ", 20),
			wantBinary: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzer := newTestAnalyzer(t, map[string]string{"/f.dat": tt.content})

			analysis, err := analyzer.Analyze("/f.dat", "text", nil)
			require.NoError(t, err)

			assert.Equal(t, tt.wantBinary, analysis.IsBinary)
			if tt.wantBinary {
				assert.False(t, analysis.Matched, "binary files must never match")
				assert.Empty(t, analysis.Matches)
			}
		})
	}
}

func TestAnalyzeOversizeSkip(t *testing.T) {
	analyzer := newTestAnalyzer(t, map[string]string{
		"/big.log": strings.Repeat("needle\n", 100),
	})

	analysis, err := analyzer.Analyze("/big.log", "needle", &AnalyzeOptions{MaxFileSize: 10})
	require.NoError(t, err)

	assert.True(t, analysis.SkippedOversize)
	assert.False(t, analysis.Matched)
	assert.Empty(t, analysis.Matches)
	assert.EqualValues(t, 700, analysis.FileSize)
}

func TestAnalyzeMatchCap(t *testing.T) {
	analyzer := newTestAnalyzer(t, map[string]string{
		"/many.txt": strings.Repeat("needle\n", MaxMatches+500),
	})

	analysis, err := analyzer.Analyze("/many.txt", "needle", nil)
	require.NoError(t, err)

	assert.True(t, analysis.Matched)
	assert.Len(t, analysis.Matches, MaxMatches)
}

func TestAnalyzeStreaming(t *testing.T) {
	// Push the file over the streaming threshold and plant one needle
	// near the end.
	line := "filler " + strings.Repeat("x", 57) + "\n"
	lineCount := int(streamThreshold)/len(line) + 100
	var sb strings.Builder
	for i := 0; i < lineCount; i++ {
		sb.WriteString(line)
	}
	sb.WriteString("the needle line\n")

	analyzer := newTestAnalyzer(t, map[string]string{"/huge.txt": sb.String()})

	analysis, err := analyzer.Analyze("/huge.txt", "needle", nil)
	require.NoError(t, err)

	require.True(t, analysis.FileSize >= streamThreshold, "fixture must exercise the streaming path")
	assert.True(t, analysis.Matched)
	require.Len(t, analysis.Matches, 1)
	assert.Equal(t, lineCount+1, analysis.Matches[0].Line)
	assert.Equal(t, "the needle line", analysis.Matches[0].LineText)
}

func TestAnalyzeStreamingMatchCap(t *testing.T) {
	line := "needle " + strings.Repeat("x", 57) + "\n"
	lineCount := int(streamThreshold)/len(line) + 100

	analyzer := newTestAnalyzer(t, map[string]string{
		"/huge.txt": strings.Repeat(line, lineCount),
	})

	analysis, err := analyzer.Analyze("/huge.txt", "needle", nil)
	require.NoError(t, err)

	require.True(t, analysis.FileSize >= streamThreshold)
	assert.Len(t, analysis.Matches, MaxMatches)
}

func TestAnalyzeErrors(t *testing.T) {
	analyzer := newTestAnalyzer(t, map[string]string{"/f.txt": "content\n"})

	t.Run("missing file", func(t *testing.T) {
		_, err := analyzer.Analyze("/missing.txt", "x", nil)
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrFileAccess))
	})

	t.Run("invalid pattern", func(t *testing.T) {
		_, err := analyzer.Analyze("/f.txt", "[unterminated", nil)
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrPatternCompile))
	})
}

func TestAnalyzeMultiple(t *testing.T) {
	analyzer := newTestAnalyzer(t, map[string]string{
		"/a.txt": "has needle\n",
		"/b.txt": "nothing here\n",
	})

	results := analyzer.AnalyzeMultiple([]string{"/a.txt", "/missing.txt", "/b.txt"}, "needle", nil)

	require.Len(t, results, 3)
	assert.True(t, results[0].Matched)
	assert.False(t, results[1].Matched, "unreadable file degrades to no match")
	assert.False(t, results[2].Matched)
}

func TestMatchesAny(t *testing.T) {
	analyzer := newTestAnalyzer(t, map[string]string{
		"/f.ts": "export interface Props {}\n",
	})

	assert.True(t, analyzer.MatchesAny("/f.ts", []string{"class\\s+\\w+", "interface\\s+\\w+"}, nil))
	assert.False(t, analyzer.MatchesAny("/f.ts", []string{"enum\\s+\\w+"}, nil))
	assert.False(t, analyzer.MatchesAny("/f.ts", nil, nil))
}

func TestFilter(t *testing.T) {
	analyzer := newTestAnalyzer(t, map[string]string{
		"/a.go": "package main\n",
		"/b.go": "package util\n",
		"/c.md": "readme\n",
	})

	matched := analyzer.Filter([]string{"/a.go", "/b.go", "/c.md"}, `package\s+main`, nil)

	assert.Equal(t, []string{"/a.go"}, matched)
}

func TestAnalyzerStats(t *testing.T) {
	analyzer := newTestAnalyzer(t, map[string]string{
		"/text.txt": "plain text needle\n",
		"/bin.dat":  "data\x00data",
	})

	_, err := analyzer.Analyze("/text.txt", "needle", nil)
	require.NoError(t, err)
	_, err = analyzer.Analyze("/bin.dat", "needle", nil)
	require.NoError(t, err)

	stats := analyzer.Stats()
	assert.EqualValues(t, 2, stats.FilesAnalyzed)
	assert.EqualValues(t, 1, stats.BinarySkips)
	assert.Greater(t, stats.BytesProcessed, int64(0))
}

func TestRegexCacheReuse(t *testing.T) {
	analyzer := newTestAnalyzer(t, map[string]string{"/f.txt": "needle\n"})

	for i := 0; i < 3; i++ {
		_, err := analyzer.Analyze("/f.txt", "needle", nil)
		require.NoError(t, err)
	}
	assert.Len(t, analyzer.regexCache, 1)

	// Same pattern with different options compiles separately.
	_, err := analyzer.Analyze("/f.txt", "needle", &AnalyzeOptions{CaseSensitive: true})
	require.NoError(t, err)
	assert.Len(t, analyzer.regexCache, 2)

	analyzer.ClearCache()
	assert.Empty(t, analyzer.regexCache)
}
