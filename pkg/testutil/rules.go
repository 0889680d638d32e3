package testutil

import "github.com/arthur-debert/rulescan/pkg/types"

// PathRule builds a rule triggered by path patterns alone.
func PathRule(name string, priority types.Priority, patterns ...string) *types.Rule {
	return &types.Rule{
		Name:     name,
		Priority: priority,
		Triggers: &types.FileTriggers{PathPatterns: patterns},
	}
}

// ContentRule builds a rule triggered by content patterns alone.
func ContentRule(name string, priority types.Priority, patterns ...string) *types.Rule {
	return &types.Rule{
		Name:     name,
		Priority: priority,
		Triggers: &types.FileTriggers{ContentPatterns: patterns},
	}
}

// Rule builds a rule with both trigger kinds.
func Rule(name string, priority types.Priority, pathPatterns, contentPatterns []string) *types.Rule {
	return &types.Rule{
		Name:     name,
		Priority: priority,
		Triggers: &types.FileTriggers{
			PathPatterns:    pathPatterns,
			ContentPatterns: contentPatterns,
		},
	}
}
