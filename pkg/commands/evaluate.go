// Package commands implements the operations behind the CLI verbs.
// Each command takes an options struct and returns a result struct the
// rendering layer can format as styled text or JSON, keeping cobra
// wiring free of evaluation logic.
package commands

import (
	"os"
	"sort"
	"time"

	"github.com/arthur-debert/rulescan/pkg/config"
	"github.com/arthur-debert/rulescan/pkg/engine"
	"github.com/arthur-debert/rulescan/pkg/errors"
	"github.com/arthur-debert/rulescan/pkg/logging"
	"github.com/arthur-debert/rulescan/pkg/rules"
	"github.com/arthur-debert/rulescan/pkg/types"
)

// EvaluateOptions defines the options for the Evaluate command.
type EvaluateOptions struct {
	// Target is the file or directory to evaluate.
	Target string

	// ConfigPath optionally names an explicit configuration file.
	ConfigPath string

	// Overrides are configuration values that win over every other
	// source, keyed in koanf dot notation.
	Overrides map[string]interface{}

	// RuleFiles are rule definition files loaded on top of the
	// configured ones.
	RuleFiles []string

	// NoDefaults skips the built-in rule set even when the
	// configuration enables it.
	NoDefaults bool

	// ShowStats includes engine cache statistics in the result.
	ShowStats bool
}

// RuleSummary identifies a matched rule in command results.
type RuleSummary struct {
	Name     string `json:"name"`
	Priority string `json:"priority"`
}

// RuleMatch details how one rule matched the target file.
type RuleMatch struct {
	Name            string   `json:"name"`
	Priority        string   `json:"priority"`
	MatchType       string   `json:"matchType"`
	PathPatterns    []string `json:"pathPatterns,omitempty"`
	ContentPatterns []string `json:"contentPatterns,omitempty"`
	FromCache       bool     `json:"fromCache"`
}

// FileMatches pairs a file with the rules that matched it.
type FileMatches struct {
	Path  string        `json:"path"`
	Rules []RuleSummary `json:"rules"`
}

// EvaluateResult is the outcome of evaluating a target against a rule
// set. Directory targets fill Files; file targets fill Matches.
type EvaluateResult struct {
	Target      string `json:"target"`
	IsDirectory bool   `json:"isDirectory"`
	RuleCount   int    `json:"ruleCount"`

	ScanID         string        `json:"scanID,omitempty"`
	Files          []FileMatches `json:"files,omitempty"`
	FilesEvaluated int           `json:"filesEvaluated,omitempty"`

	Matches      []RuleMatch `json:"matches,omitempty"`
	CacheHitRate float64     `json:"cacheHitRate"`

	TotalTime time.Duration `json:"totalTime"`
	Stats     *engine.Stats `json:"stats,omitempty"`
}

// Evaluate runs the configured rule set against a file or directory.
func Evaluate(opts EvaluateOptions) (*EvaluateResult, error) {
	log := logging.GetLogger("commands")
	log.Debug().Str("command", "Evaluate").Str("target", opts.Target).Msg("Executing command")

	if opts.Target == "" {
		return nil, errors.New(errors.ErrInvalidInput, "target must not be empty")
	}

	info, err := os.Stat(opts.Target)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileNotFound, "target %s", opts.Target)
	}

	cfg, err := config.Load(opts.ConfigPath, opts.Overrides)
	if err != nil {
		return nil, err
	}

	ruleSet, err := assembleRules(cfg, opts.RuleFiles, opts.NoDefaults)
	if err != nil {
		return nil, err
	}

	eng := engine.FromConfig(cfg)
	result := &EvaluateResult{
		Target:      opts.Target,
		IsDirectory: info.IsDir(),
		RuleCount:   len(ruleSet),
	}

	if info.IsDir() {
		dirEval, err := eng.FindMatchingFiles(opts.Target, ruleSet, nil)
		if err != nil {
			return nil, err
		}
		result.ScanID = dirEval.ScanID
		result.Files = fileMatches(dirEval.Matches)
		result.FilesEvaluated = dirEval.FilesEvaluated
		result.TotalTime = dirEval.TotalTime
	} else {
		batch, err := eng.EvaluateFileAgainstRules(opts.Target, ruleSet, nil)
		if err != nil {
			return nil, err
		}
		result.Matches = ruleMatches(batch)
		result.CacheHitRate = batch.CacheHitRate
		result.TotalTime = batch.TotalTime
	}

	if opts.ShowStats {
		stats := eng.Stats()
		result.Stats = &stats
	}

	log.Info().
		Str("command", "Evaluate").
		Bool("isDirectory", result.IsDirectory).
		Int("ruleCount", result.RuleCount).
		Int("matchedFiles", len(result.Files)).
		Int("matchedRules", len(result.Matches)).
		Msg("Command finished")
	return result, nil
}

// assembleRules builds the effective rule set: built-in defaults when
// enabled, overlaid by the configured rule files, overlaid by the
// explicitly requested ones.
func assembleRules(cfg *config.Config, extraFiles []string, noDefaults bool) ([]*types.Rule, error) {
	var set []*types.Rule
	if cfg.Rules.UseDefaults && !noDefaults {
		set = rules.Defaults()
	}

	files := make([]string, 0, len(cfg.Rules.Files)+len(extraFiles))
	files = append(files, cfg.Rules.Files...)
	files = append(files, extraFiles...)

	for _, path := range files {
		loaded, err := rules.Load(path)
		if err != nil {
			return nil, err
		}
		set = rules.Merge(set, loaded)
	}

	if len(set) == 0 {
		return nil, errors.New(errors.ErrInvalidInput, "no rules to evaluate, provide rule files or enable defaults")
	}
	return set, nil
}

// fileMatches flattens a directory evaluation into a path-sorted slice
// so output is deterministic.
func fileMatches(matches map[string][]*types.Rule) []FileMatches {
	out := make([]FileMatches, 0, len(matches))
	for path, matched := range matches {
		fm := FileMatches{Path: path, Rules: make([]RuleSummary, 0, len(matched))}
		for _, rule := range matched {
			fm.Rules = append(fm.Rules, RuleSummary{
				Name:     rule.Name,
				Priority: string(rule.Priority),
			})
		}
		out = append(out, fm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// ruleMatches extracts the matched rules of a batch in priority order,
// carrying the per-rule detail the file view renders.
func ruleMatches(batch *types.BatchEvaluation) []RuleMatch {
	detail := make(map[*types.Rule]*types.EvaluationResult, len(batch.Results))
	for i := range batch.Results {
		detail[batch.Results[i].Rule] = &batch.Results[i]
	}

	out := make([]RuleMatch, 0, len(batch.MatchedRules))
	for _, rule := range batch.MatchedRules {
		rm := RuleMatch{
			Name:     rule.Name,
			Priority: string(rule.Priority),
		}
		if res := detail[rule]; res != nil {
			rm.MatchType = string(res.MatchType)
			rm.PathPatterns = res.MatchedPatterns.PathPatterns
			rm.ContentPatterns = res.MatchedPatterns.ContentPatterns
			rm.FromCache = res.FromCache
		}
		out = append(out, rm)
	}
	return out
}
