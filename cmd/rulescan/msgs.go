package rulescan

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Decide which rules apply to which files"
	MsgEvalShort       = "Evaluate rules against a file or directory"
	MsgMatchShort      = "Test a glob pattern against file paths"
	MsgMatchLong       = "Match tests each given path against a glob pattern and reports which paths matched."
	MsgAnalyzeShort    = "Search file content for a pattern"
	MsgAnalyzeLong     = "Analyze searches file content for a regular expression and reports every occurrence with its line and column."
	MsgScanShort       = "List candidate files under a directory"
	MsgScanLong        = "Scan walks a directory tree with the configured traversal bounds and lists the files that survive ignore and pattern filtering."
	MsgRulesShort      = "Show the effective rule set"
	MsgRulesLong       = "Rules resolves the effective rule set the same way eval does (defaults, configured files, --rules files) and prints it without evaluating anything."
	MsgSyntaxShort     = "Show the pattern syntax reference"
	MsgTopicsShort     = "Display available documentation topics"
	MsgTopicsLong      = "Display a list of all available help topics that provide additional documentation beyond command help."
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"

	// Status messages
	MsgNoMatchingFiles = "No files matched any rule."
	MsgNoMatchingRules = "No rules matched."
	MsgNoFilesFound    = "No files found."
	MsgNoTopics        = "No documentation topics available."

	// Error messages
	MsgErrNoCommand = "no command specified"

	// Flag descriptions
	MsgFlagVerbose        = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagFormat         = "Output format: auto, term, text or json"
	MsgFlagConfig         = "Path to a configuration file"
	MsgFlagRules          = "Rule file to load (repeatable, TOML or YAML)"
	MsgFlagNoDefaults     = "Skip the built-in rule set"
	MsgFlagNoCache        = "Disable evaluation result caching"
	MsgFlagStats          = "Print cache statistics after the run"
	MsgFlagMaxConcurrent  = "Maximum concurrent rule evaluations"
	MsgFlagTimeout        = "Advisory time budget for the evaluation (for example 500ms)"
	MsgFlagCaseSensitive  = "Match case-sensitively"
	MsgFlagMultiline      = "Anchor ^ and $ at line boundaries"
	MsgFlagMaxFileSize    = "Size ceiling in bytes above which files are skipped"
	MsgFlagInclude        = "Glob pattern files must match (repeatable)"
	MsgFlagExclude        = "Glob pattern that excludes files (repeatable)"
	MsgFlagMaxDepth       = "Maximum traversal depth below the root"
	MsgFlagFollowSymlinks = "Descend into symlinked directories"
	MsgFlagDirs           = "Also list directories"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/eval-long.txt
	msgEvalLongRaw string
	MsgEvalLong    = strings.TrimSpace(msgEvalLongRaw)

	//go:embed msgs/eval-example.txt
	msgEvalExampleRaw string
	MsgEvalExample    = strings.TrimSpace(msgEvalExampleRaw)

	//go:embed msgs/match-example.txt
	msgMatchExampleRaw string
	MsgMatchExample    = strings.TrimSpace(msgMatchExampleRaw)

	//go:embed msgs/analyze-example.txt
	msgAnalyzeExampleRaw string
	MsgAnalyzeExample    = strings.TrimSpace(msgAnalyzeExampleRaw)

	//go:embed msgs/scan-example.txt
	msgScanExampleRaw string
	MsgScanExample    = strings.TrimSpace(msgScanExampleRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
