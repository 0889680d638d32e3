package rulescan

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/rulescan/pkg/commands"
	"github.com/arthur-debert/rulescan/pkg/testutil"
)

const cliRules = `
[[rules]]
name = "react-components"
priority = "medium"

[rules.file_triggers]
path_patterns = ["**/*.tsx"]

[[rules]]
name = "ts-interfaces"
priority = "high"

[rules.file_triggers]
path_patterns = ["**/*.ts"]
content_patterns = ['interface\s+\w+']
`

// runCommand executes the CLI with the given arguments and captures
// everything written to its output streams.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	rootCmd := NewRootCmd()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCmdWithoutSubcommand(t *testing.T) {
	out, err := runCommand(t)

	require.Error(t, err)
	assert.Equal(t, MsgErrNoCommand, err.Error())
	assert.Contains(t, out, "rulescan", "bare invocation shows help")
}

func TestRootCmdUnknownSubcommand(t *testing.T) {
	_, err := runCommand(t, "frobnicate")
	require.Error(t, err)
}

func TestRootCmdInvalidFormat(t *testing.T) {
	_, err := runCommand(t, "--format", "sideways", "match", "**/*.go", "a.go")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestMatchCmd(t *testing.T) {
	out, err := runCommand(t, "match", "**/*.tsx", "src/Button.tsx", "src/util.go")
	require.NoError(t, err)

	assert.Contains(t, out, "src/Button.tsx  matched")
	assert.Contains(t, out, "src/util.go  no match")
	assert.Contains(t, out, "1 of 2 paths matched.")
}

func TestMatchCmdCaseSensitive(t *testing.T) {
	out, err := runCommand(t, "match", "--case-sensitive", "**/*.TSX", "src/a.tsx")
	require.NoError(t, err)
	assert.Contains(t, out, "0 of 1 paths matched.")
}

func TestMatchCmdJSON(t *testing.T) {
	out, err := runCommand(t, "--format", "json", "match", "**/*.go", "main.go")
	require.NoError(t, err)

	var result commands.MatchResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 1, result.MatchedCount)
	require.Len(t, result.Matches, 1)
	assert.True(t, result.Matches[0].Matched)
}

func TestAnalyzeCmd(t *testing.T) {
	dir := testutil.TempTree(t, map[string]string{
		"notes.txt": "line one\nTODO: rotate keys\n",
	})

	out, err := runCommand(t, "analyze", "TODO", filepath.Join(dir, "notes.txt"))
	require.NoError(t, err)

	assert.Contains(t, out, "1 match(es)")
	assert.Contains(t, out, "2:1")
	assert.Contains(t, out, "TODO: rotate keys")
	assert.Contains(t, out, "1 of 1 files matched.")
}

func TestAnalyzeCmdMissingFileIsReported(t *testing.T) {
	dir := testutil.TempTree(t, map[string]string{"a.txt": "x\n"})

	out, err := runCommand(t, "analyze", "x",
		filepath.Join(dir, "a.txt"), filepath.Join(dir, "absent.txt"))
	require.NoError(t, err, "one unreadable file must not abort the command")

	assert.Contains(t, out, "error:")
	assert.Contains(t, out, "1 of 2 files matched.")
}

func TestScanCmd(t *testing.T) {
	dir := testutil.TempTree(t, map[string]string{
		"src/main.go":    "package main\n",
		"docs/readme.md": "# readme\n",
	})

	out, err := runCommand(t, "scan", dir)
	require.NoError(t, err)

	assert.Contains(t, out, "src/main.go")
	assert.Contains(t, out, "docs/readme.md")
	assert.Contains(t, out, "2 files listed")
}

func TestScanCmdWithPatterns(t *testing.T) {
	dir := testutil.TempTree(t, map[string]string{
		"src/main.go":      "package main\n",
		"src/main_test.go": "package main\n",
	})

	out, err := runCommand(t, "scan",
		"--include", "**/*.go", "--exclude", "**/*_test.go", dir)
	require.NoError(t, err)

	assert.Contains(t, out, "src/main.go")
	assert.NotContains(t, out, "src/main_test.go")
}

func TestScanCmdJSON(t *testing.T) {
	dir := testutil.TempTree(t, map[string]string{"a.go": "package a\n"})

	out, err := runCommand(t, "--format", "json", "scan", dir)
	require.NoError(t, err)

	var result commands.ScanDirResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, []string{"a.go"}, result.Files)
	assert.Equal(t, 1, result.FilesScanned)
}

func TestEvalCmdFile(t *testing.T) {
	dir := testutil.TempTree(t, map[string]string{
		"rules.toml": cliRules,
		"types.ts":   "export interface Config { id: string }\n",
	})

	out, err := runCommand(t, "eval",
		"--rules", filepath.Join(dir, "rules.toml"), "--no-defaults",
		filepath.Join(dir, "types.ts"))
	require.NoError(t, err)

	assert.Contains(t, out, "ts-interfaces")
	assert.Contains(t, out, "1 of 2 rules matched")
}

func TestEvalCmdDirectoryJSON(t *testing.T) {
	dir := testutil.TempTree(t, map[string]string{
		"rules.toml":  cliRules,
		"src/a.tsx":   "export const A = () => null;\n",
		"src/b.ts":    "export interface B { id: string }\n",
		"src/util.go": "package util\n",
	})

	out, err := runCommand(t, "--format", "json", "eval",
		"--rules", filepath.Join(dir, "rules.toml"), "--no-defaults",
		filepath.Join(dir, "src"))
	require.NoError(t, err)

	var result commands.EvaluateResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))

	assert.True(t, result.IsDirectory)
	assert.Equal(t, 2, result.RuleCount)
	assert.NotEmpty(t, result.ScanID)
	require.Len(t, result.Files, 2)
	assert.Equal(t, "a.tsx", result.Files[0].Path)
	assert.Equal(t, "b.ts", result.Files[1].Path)
}

func TestEvalCmdStats(t *testing.T) {
	dir := testutil.TempTree(t, map[string]string{
		"rules.toml": cliRules,
		"a.ts":       "interface A {}\n",
	})

	out, err := runCommand(t, "eval", "--stats",
		"--rules", filepath.Join(dir, "rules.toml"), "--no-defaults",
		filepath.Join(dir, "a.ts"))
	require.NoError(t, err)

	assert.Contains(t, out, "Cache statistics")
	assert.Contains(t, out, "evaluation cache:")
}

func TestEvalCmdMissingTarget(t *testing.T) {
	_, err := runCommand(t, "eval", "/does/not/exist")
	require.Error(t, err)
}

func TestRulesCmd(t *testing.T) {
	dir := testutil.TempTree(t, map[string]string{"rules.toml": cliRules})

	out, err := runCommand(t, "rules",
		"--rules", filepath.Join(dir, "rules.toml"), "--no-defaults")
	require.NoError(t, err)

	assert.Contains(t, out, "react-components")
	assert.Contains(t, out, "ts-interfaces")
	assert.Contains(t, out, "2 rules.")
}

func TestRulesCmdDefaults(t *testing.T) {
	out, err := runCommand(t, "rules")
	require.NoError(t, err)
	assert.Contains(t, out, "go-sources", "built-in rule set is listed")
}

func TestVersionCmd(t *testing.T) {
	out, err := runCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "rulescan")
	assert.Contains(t, out, "commit")
}

func TestTopicsCmd(t *testing.T) {
	out, err := runCommand(t, "topics")
	require.NoError(t, err)

	assert.Contains(t, out, "syntax")
	assert.Contains(t, out, "rules")
	assert.Contains(t, out, "caching")
}

func TestHelpTopic(t *testing.T) {
	out, err := runCommand(t, "help", "caching")
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
