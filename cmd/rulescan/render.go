package rulescan

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/arthur-debert/rulescan/pkg/commands"
	"github.com/arthur-debert/rulescan/pkg/engine"
	"github.com/arthur-debert/rulescan/pkg/ui"
	"github.com/arthur-debert/rulescan/pkg/ui/styles"
)

// painter applies registry styles only when the output format asks for
// them, so plain-text output carries no escape sequences.
type painter struct {
	styled bool
}

func newPainter(format ui.Format) painter {
	return painter{styled: format == ui.FormatTerminal}
}

func (p painter) paint(style, s string) string {
	if !p.styled {
		return s
	}
	return styles.GetStyle(style).Render(s)
}

func (p painter) priority(priority string) string {
	if !p.styled {
		return priority
	}
	return styles.PriorityStyle(priority).Render(priority)
}

// renderJSON writes the machine-readable representation of any result.
func renderJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func fmtDuration(d time.Duration) string {
	return d.Round(time.Microsecond).String()
}

func renderEvaluate(w io.Writer, format ui.Format, result *commands.EvaluateResult) error {
	if format == ui.FormatJSON {
		return renderJSON(w, result)
	}
	p := newPainter(format)

	if result.IsDirectory {
		renderEvaluateDirectory(w, p, result)
	} else {
		renderEvaluateFile(w, p, result)
	}

	if result.Stats != nil {
		renderStats(w, p, result.Stats)
	}
	return nil
}

func renderEvaluateDirectory(w io.Writer, p painter, result *commands.EvaluateResult) {
	fmt.Fprintf(w, "Evaluated %s candidate files under %s against %s rules in %s\n",
		p.paint("Count", fmt.Sprintf("%d", result.FilesEvaluated)),
		p.paint("FilePath", result.Target),
		p.paint("Count", fmt.Sprintf("%d", result.RuleCount)),
		p.paint("Muted", fmtDuration(result.TotalTime)))

	if len(result.Files) == 0 {
		fmt.Fprintln(w, MsgNoMatchingFiles)
		return
	}

	fmt.Fprintln(w)
	for _, file := range result.Files {
		fmt.Fprintln(w, p.paint("FilePath", file.Path))
		for _, rule := range file.Rules {
			fmt.Fprintf(w, "  %s (%s)\n",
				p.paint("RuleName", rule.Name), p.priority(rule.Priority))
		}
	}
	fmt.Fprintf(w, "\n%d of %d files matched.\n", len(result.Files), result.FilesEvaluated)
}

func renderEvaluateFile(w io.Writer, p painter, result *commands.EvaluateResult) {
	if len(result.Matches) == 0 {
		fmt.Fprintf(w, "%s: %s\n", p.paint("FilePath", result.Target), MsgNoMatchingRules)
		return
	}

	fmt.Fprintf(w, "%s: %d of %d rules matched in %s\n",
		p.paint("FilePath", result.Target),
		len(result.Matches), result.RuleCount,
		p.paint("Muted", fmtDuration(result.TotalTime)))

	for _, match := range result.Matches {
		cached := ""
		if match.FromCache {
			cached = " " + p.paint("CacheHit", "(cached)")
		}
		fmt.Fprintf(w, "\n  %s (%s) %s%s\n",
			p.paint("RuleName", match.Name),
			p.priority(match.Priority),
			p.paint("Muted", match.MatchType),
			cached)
		if len(match.PathPatterns) > 0 {
			fmt.Fprintf(w, "    path:    %s\n", p.paint("Pattern", strings.Join(match.PathPatterns, ", ")))
		}
		if len(match.ContentPatterns) > 0 {
			fmt.Fprintf(w, "    content: %s\n", p.paint("Pattern", strings.Join(match.ContentPatterns, ", ")))
		}
	}

	if result.CacheHitRate > 0 {
		fmt.Fprintf(w, "\n%s\n", p.paint("CacheHit",
			fmt.Sprintf("%.0f%% of results served from cache", result.CacheHitRate*100)))
	}
}

func renderStats(w io.Writer, p painter, stats *engine.Stats) {
	fmt.Fprintf(w, "\n%s\n", p.paint("Subheader", "Cache statistics"))
	fmt.Fprintf(w, "  compiled patterns:  %d\n", stats.PatternCacheSize)
	fmt.Fprintf(w, "  evaluation cache:   %d entries, %d hits, %d misses\n",
		stats.EvaluationCache.Entries, stats.EvaluationCache.Hits, stats.EvaluationCache.Misses)
	fmt.Fprintf(w, "  content analyzer:   %d files analyzed, %d binary skips\n",
		stats.ContentAnalyzer.FilesAnalyzed, stats.ContentAnalyzer.BinarySkips)
}

func renderMatch(w io.Writer, format ui.Format, result *commands.MatchResult) error {
	if format == ui.FormatJSON {
		return renderJSON(w, result)
	}
	p := newPainter(format)

	for _, m := range result.Matches {
		if m.Matched {
			fmt.Fprintf(w, "%s  %s  %s\n",
				p.paint("FilePath", m.Path),
				p.paint("Success", "matched"),
				p.paint("Pattern", strings.Join(m.MatchedPatterns, ", ")))
		} else {
			fmt.Fprintf(w, "%s  %s\n",
				p.paint("FilePath", m.Path),
				p.paint("Muted", "no match"))
		}
	}
	fmt.Fprintf(w, "%d of %d paths matched.\n", result.MatchedCount, len(result.Matches))
	return nil
}

func renderAnalyze(w io.Writer, format ui.Format, result *commands.AnalyzeResult) error {
	if format == ui.FormatJSON {
		return renderJSON(w, result)
	}
	p := newPainter(format)

	for _, file := range result.Files {
		switch {
		case file.Error != "":
			fmt.Fprintf(w, "%s: %s %s\n",
				p.paint("FilePath", file.Path), p.paint("Error", "error:"), file.Error)
		case file.IsBinary:
			fmt.Fprintf(w, "%s: %s\n",
				p.paint("FilePath", file.Path), p.paint("Muted", "skipped (binary)"))
		case file.SkippedOversize:
			fmt.Fprintf(w, "%s: %s\n",
				p.paint("FilePath", file.Path), p.paint("Muted", "skipped (oversize)"))
		case !file.Matched:
			fmt.Fprintf(w, "%s: %s\n",
				p.paint("FilePath", file.Path), p.paint("Muted", "no match"))
		default:
			fmt.Fprintf(w, "%s: %d match(es)\n", p.paint("FilePath", file.Path), len(file.Matches))
			for _, m := range file.Matches {
				fmt.Fprintf(w, "  %s  %s\n",
					p.paint("LineNumber", fmt.Sprintf("%d:%d", m.Line, m.Column)),
					strings.TrimSpace(m.LineText))
			}
		}
	}
	fmt.Fprintf(w, "%d of %d files matched.\n", result.MatchedCount, len(result.Files))
	return nil
}

func renderScan(w io.Writer, format ui.Format, result *commands.ScanDirResult, showDirs bool) error {
	if format == ui.FormatJSON {
		return renderJSON(w, result)
	}
	p := newPainter(format)

	if len(result.Files) == 0 {
		fmt.Fprintln(w, MsgNoFilesFound)
		return nil
	}

	for _, file := range result.Files {
		fmt.Fprintln(w, p.paint("FilePath", file))
	}
	if showDirs && len(result.Directories) > 0 {
		fmt.Fprintf(w, "\n%s\n", p.paint("Subheader", "Directories"))
		for _, dir := range result.Directories {
			fmt.Fprintln(w, p.paint("Muted", dir+"/"))
		}
	}

	fmt.Fprintf(w, "\n%d files listed (%d scanned, %d directories) in %s\n",
		len(result.Files), result.FilesScanned, result.DirectoriesScanned,
		fmtDuration(result.Duration))
	return nil
}

func renderRules(w io.Writer, format ui.Format, result *commands.RulesResult) error {
	if format == ui.FormatJSON {
		return renderJSON(w, result)
	}
	p := newPainter(format)

	for _, rule := range result.Rules {
		fmt.Fprintf(w, "%s (%s)\n", p.paint("RuleName", rule.Name), p.priority(rule.Priority))
		if len(rule.PathPatterns) > 0 {
			fmt.Fprintf(w, "  path:    %s\n", p.paint("Pattern", strings.Join(rule.PathPatterns, ", ")))
		}
		if len(rule.PathExclusions) > 0 {
			fmt.Fprintf(w, "  exclude: %s\n", p.paint("Pattern", strings.Join(rule.PathExclusions, ", ")))
		}
		if len(rule.ContentPatterns) > 0 {
			fmt.Fprintf(w, "  content: %s\n", p.paint("Pattern", strings.Join(rule.ContentPatterns, ", ")))
		}
	}
	fmt.Fprintf(w, "%d rules.\n", len(result.Rules))
	return nil
}
