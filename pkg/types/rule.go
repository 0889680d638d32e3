package types

import (
	"fmt"
	"sort"
)

// Priority orders rules when multiple rules match the same file.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Rank returns a numeric weight for sorting; higher sorts first.
// Unknown priorities rank below low so malformed input never outranks
// a valid rule.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// IsValid reports whether p is one of the four defined levels.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// ParsePriority converts a string from an external rule definition into a
// Priority, rejecting anything outside the defined set.
func ParsePriority(s string) (Priority, error) {
	p := Priority(s)
	if !p.IsValid() {
		return "", fmt.Errorf("unknown priority %q", s)
	}
	return p, nil
}

// FileTriggers declares when a rule applies to a file. All fields are
// optional; an empty trigger set means the rule passes the corresponding
// phase unconditionally.
type FileTriggers struct {
	// PathPatterns are glob patterns tested against the file path.
	// The path phase matches when any pattern matches.
	PathPatterns []string

	// PathExclusions are glob patterns subtracted after PathPatterns
	// during directory filtering.
	PathExclusions []string

	// ContentPatterns are regular expression sources tested against file
	// content. The content phase matches when any pattern matches.
	ContentPatterns []string
}

// Rule is a named policy with file triggers and a priority, supplied by
// an external rule-source layer. Rules are passed by reference and must
// not be mutated during an evaluation call.
type Rule struct {
	Name     string
	Priority Priority
	Triggers *FileTriggers
}

// HasPathPatterns reports whether the rule declares any path patterns.
func (r *Rule) HasPathPatterns() bool {
	return r.Triggers != nil && len(r.Triggers.PathPatterns) > 0
}

// HasContentPatterns reports whether the rule declares any content patterns.
func (r *Rule) HasContentPatterns() bool {
	return r.Triggers != nil && len(r.Triggers.ContentPatterns) > 0
}

// PathPatterns returns the declared path patterns, or nil.
func (r *Rule) PathPatterns() []string {
	if r.Triggers == nil {
		return nil
	}
	return r.Triggers.PathPatterns
}

// PathExclusions returns the declared path exclusions, or nil.
func (r *Rule) PathExclusions() []string {
	if r.Triggers == nil {
		return nil
	}
	return r.Triggers.PathExclusions
}

// ContentPatterns returns the declared content patterns, or nil.
func (r *Rule) ContentPatterns() []string {
	if r.Triggers == nil {
		return nil
	}
	return r.Triggers.ContentPatterns
}

// SortRulesByPriority sorts rules critical > high > medium > low,
// preserving the incoming order within a priority level.
func SortRulesByPriority(rules []*Rule) {
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority.Rank() > rules[j].Priority.Rank()
	})
}
