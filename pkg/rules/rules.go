package rules

import (
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/rulescan/pkg/errors"
	"github.com/arthur-debert/rulescan/pkg/filesystem"
	"github.com/arthur-debert/rulescan/pkg/logging"
	"github.com/arthur-debert/rulescan/pkg/patterns"
	"github.com/arthur-debert/rulescan/pkg/types"
)

// ruleFile is the raw on-disk shape. Every field is optional here;
// validation decides what is actually required.
type ruleFile struct {
	Rules []rawRule `toml:"rules" yaml:"rules"`
}

type rawRule struct {
	Name     string       `toml:"name" yaml:"name"`
	Priority string       `toml:"priority" yaml:"priority"`
	Triggers *rawTriggers `toml:"file_triggers" yaml:"file_triggers"`
}

type rawTriggers struct {
	PathPatterns    []string `toml:"path_patterns" yaml:"path_patterns"`
	PathExclusions  []string `toml:"path_exclusions" yaml:"path_exclusions"`
	ContentPatterns []string `toml:"content_patterns" yaml:"content_patterns"`
}

// Load reads a rule file from the OS filesystem. The format follows
// from the extension: .toml, .yaml or .yml.
func Load(path string) ([]*types.Rule, error) {
	return LoadFS(filesystem.NewOS(), path)
}

// LoadFS reads a rule file from the given filesystem.
func LoadFS(fsys types.FS, path string) ([]*types.Rule, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrRuleLoad, "failed to read rule file %s", path)
	}

	var format string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		format = FormatTOML
	case ".yaml", ".yml":
		format = FormatYAML
	default:
		return nil, errors.Newf(errors.ErrRuleLoad, "unsupported rule file format %q", filepath.Ext(path))
	}

	rules, err := Parse(data, format)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrRuleLoad, "invalid rule file %s", path)
	}

	logger := logging.GetLogger("rules")
	logger.Debug().
		Str("path", path).
		Int("rules", len(rules)).
		Msg("Rule file loaded")
	return rules, nil
}

// Supported rule file formats.
const (
	FormatTOML = "toml"
	FormatYAML = "yaml"
)

// Parse decodes and validates rule definitions in the given format.
func Parse(data []byte, format string) ([]*types.Rule, error) {
	var file ruleFile
	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(data, &file); err != nil {
			return nil, errors.Wrap(err, errors.ErrRuleLoad, "failed to parse TOML")
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, errors.Wrap(err, errors.ErrRuleLoad, "failed to parse YAML")
		}
	default:
		return nil, errors.Newf(errors.ErrRuleLoad, "unsupported format %q", format)
	}

	return convert(file.Rules)
}

// convert turns raw definitions into validated rules. Names must be
// present and unique because the evaluation cache keys on them;
// priorities must be one of the defined levels, defaulting to medium
// when omitted.
func convert(raw []rawRule) ([]*types.Rule, error) {
	logger := logging.GetLogger("rules")
	seen := make(map[string]struct{}, len(raw))
	rules := make([]*types.Rule, 0, len(raw))

	for i, r := range raw {
		if strings.TrimSpace(r.Name) == "" {
			return nil, errors.Newf(errors.ErrRuleInvalid, "rule %d has no name", i)
		}
		if _, dup := seen[r.Name]; dup {
			return nil, errors.Newf(errors.ErrRuleInvalid, "duplicate rule name %q", r.Name)
		}
		seen[r.Name] = struct{}{}

		priority := types.PriorityMedium
		if r.Priority != "" {
			p, err := types.ParsePriority(r.Priority)
			if err != nil {
				return nil, errors.Wrapf(err, errors.ErrRuleInvalid, "rule %q", r.Name)
			}
			priority = p
		}

		rule := &types.Rule{
			Name:     r.Name,
			Priority: priority,
		}
		if r.Triggers != nil {
			rule.Triggers = &types.FileTriggers{
				PathPatterns:    r.Triggers.PathPatterns,
				PathExclusions:  r.Triggers.PathExclusions,
				ContentPatterns: r.Triggers.ContentPatterns,
			}
			// Malformed globs are tolerated at evaluation time, where
			// they simply never match; surface them here so authors
			// find out.
			for _, pattern := range append(r.Triggers.PathPatterns, r.Triggers.PathExclusions...) {
				if !patterns.IsValidPattern(pattern) {
					logger.Warn().
						Str("rule", r.Name).
						Str("pattern", pattern).
						Msg("Path pattern does not compile and will never match")
				}
			}
		}
		rules = append(rules, rule)
	}

	return rules, nil
}
