package rules

import "github.com/arthur-debert/rulescan/pkg/types"

// Defaults returns the built-in rule set. Callers get fresh values on
// every call and may mutate them freely.
func Defaults() []*types.Rule {
	return []*types.Rule{
		{
			Name:     "react-components",
			Priority: types.PriorityMedium,
			Triggers: &types.FileTriggers{
				PathPatterns:   []string{"**/*.tsx", "**/*.jsx"},
				PathExclusions: []string{"**/*.test.tsx", "**/*.test.jsx"},
			},
		},
		{
			Name:     "typescript-interfaces",
			Priority: types.PriorityMedium,
			Triggers: &types.FileTriggers{
				PathPatterns:    []string{"**/*.ts", "**/*.tsx"},
				ContentPatterns: []string{`interface\s+\w+`, `type\s+\w+\s*=`},
			},
		},
		{
			Name:     "go-sources",
			Priority: types.PriorityMedium,
			Triggers: &types.FileTriggers{
				PathPatterns:   []string{"**/*.go"},
				PathExclusions: []string{"**/*_test.go", "**/vendor/**"},
			},
		},
		{
			Name:     "dependency-manifests",
			Priority: types.PriorityHigh,
			Triggers: &types.FileTriggers{
				PathPatterns: []string{
					"**/package.json",
					"**/go.mod",
					"**/Cargo.toml",
					"**/requirements.txt",
					"**/Gemfile",
				},
			},
		},
		{
			Name:     "hardcoded-credentials",
			Priority: types.PriorityCritical,
			Triggers: &types.FileTriggers{
				PathExclusions:  []string{"**/testdata/**", "**/*.md"},
				ContentPatterns: []string{`(?:api[_-]?key|secret|password)\s*[:=]\s*['"][^'"]{8,}`},
			},
		},
		{
			Name:     "shell-scripts",
			Priority: types.PriorityLow,
			Triggers: &types.FileTriggers{
				PathPatterns:    []string{"**/*.sh", "**/*.bash"},
				ContentPatterns: []string{`^#!`},
			},
		},
	}
}

// Merge layers override rules on top of a base set. An override with
// the same name replaces the base rule in place; new names append in
// their original order.
func Merge(base, overrides []*types.Rule) []*types.Rule {
	merged := make([]*types.Rule, len(base))
	index := make(map[string]int, len(base))
	for i, rule := range base {
		merged[i] = rule
		index[rule.Name] = i
	}

	for _, override := range overrides {
		if i, ok := index[override.Name]; ok {
			merged[i] = override
			continue
		}
		index[override.Name] = len(merged)
		merged = append(merged, override)
	}

	return merged
}
