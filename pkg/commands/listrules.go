package commands

import (
	"github.com/arthur-debert/rulescan/pkg/config"
	"github.com/arthur-debert/rulescan/pkg/logging"
)

// RulesOptions defines the options for the ListRules command.
type RulesOptions struct {
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
}

// RuleDetails describes one effective rule.
type RuleDetails struct {
	Name            string   `json:"name"`
	Priority        string   `json:"priority"`
	PathPatterns    []string `json:"pathPatterns,omitempty"`
	PathExclusions  []string `json:"pathExclusions,omitempty"`
	ContentPatterns []string `json:"contentPatterns,omitempty"`
}

// RulesResult lists the effective rule set in evaluation order.
type RulesResult struct {
	Rules []RuleDetails `json:"rules"`
}

// ListRules resolves the effective rule set the same way Evaluate
// does, without evaluating anything.
func ListRules(opts RulesOptions) (*RulesResult, error) {
	log := logging.GetLogger("commands")
	log.Debug().Str("command", "ListRules").Msg("Executing command")

	cfg, err := config.Load(opts.ConfigPath, opts.Overrides)
	if err != nil {
		return nil, err
	}

	ruleSet, err := assembleRules(cfg, opts.RuleFiles, opts.NoDefaults)
	if err != nil {
		return nil, err
	}

	result := &RulesResult{Rules: make([]RuleDetails, 0, len(ruleSet))}
	for _, rule := range ruleSet {
		result.Rules = append(result.Rules, RuleDetails{
			Name:            rule.Name,
			Priority:        string(rule.Priority),
			PathPatterns:    rule.PathPatterns(),
			PathExclusions:  rule.PathExclusions(),
			ContentPatterns: rule.ContentPatterns(),
		})
	}

	log.Info().Str("command", "ListRules").Int("ruleCount", len(result.Rules)).Msg("Command finished")
	return result, nil
}
