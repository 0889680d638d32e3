package rules

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/rulescan/pkg/errors"
	"github.com/arthur-debert/rulescan/pkg/filesystem"
	"github.com/arthur-debert/rulescan/pkg/types"
)

const tomlFixture = `
[[rules]]
name = "react-components"
priority = "high"

[rules.file_triggers]
path_patterns = ["**/*.tsx", "**/*.jsx"]
path_exclusions = ["**/*.test.tsx"]

[[rules]]
name = "api-handlers"

[rules.file_triggers]
path_patterns = ["**/*.ts"]
content_patterns = ['router\.(get|post)']
`

const yamlFixture = `
rules:
  - name: react-components
    priority: high
    file_triggers:
      path_patterns:
        - "**/*.tsx"
        - "**/*.jsx"
      path_exclusions:
        - "**/*.test.tsx"
  - name: api-handlers
    file_triggers:
      path_patterns:
        - "**/*.ts"
      content_patterns:
        - 'router\.(get|post)'
`

func assertFixtureRules(t *testing.T, rules []*types.Rule) {
	t.Helper()
	require.Len(t, rules, 2)

	assert.Equal(t, "react-components", rules[0].Name)
	assert.Equal(t, types.PriorityHigh, rules[0].Priority)
	assert.Equal(t, []string{"**/*.tsx", "**/*.jsx"}, rules[0].PathPatterns())
	assert.Equal(t, []string{"**/*.test.tsx"}, rules[0].PathExclusions())
	assert.False(t, rules[0].HasContentPatterns())

	assert.Equal(t, "api-handlers", rules[1].Name)
	assert.Equal(t, types.PriorityMedium, rules[1].Priority, "omitted priority defaults to medium")
	assert.Equal(t, []string{`router\.(get|post)`}, rules[1].ContentPatterns())
}

func TestLoadTOML(t *testing.T) {
	memfs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(memfs, "/rules/dev.toml", []byte(tomlFixture), 0o644))

	rules, err := LoadFS(filesystem.NewAferoFS(memfs), "/rules/dev.toml")
	require.NoError(t, err)
	assertFixtureRules(t, rules)
}

func TestLoadYAML(t *testing.T) {
	for _, ext := range []string{".yaml", ".yml"} {
		t.Run(ext, func(t *testing.T) {
			memfs := afero.NewMemMapFs()
			path := "/rules/dev" + ext
			require.NoError(t, afero.WriteFile(memfs, path, []byte(yamlFixture), 0o644))

			rules, err := LoadFS(filesystem.NewAferoFS(memfs), path)
			require.NoError(t, err)
			assertFixtureRules(t, rules)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	memfs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(memfs, "/rules/dev.json", []byte(`{}`), 0o644))
	require.NoError(t, afero.WriteFile(memfs, "/rules/broken.toml", []byte(`[[rules]`), 0o644))
	fsys := filesystem.NewAferoFS(memfs)

	tests := []struct {
		name string
		path string
	}{
		{name: "missing file", path: "/rules/absent.toml"},
		{name: "unsupported extension", path: "/rules/dev.json"},
		{name: "malformed toml", path: "/rules/broken.toml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFS(fsys, tt.path)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrRuleLoad))
		})
	}
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		wantCode errors.ErrorCode
	}{
		{
			name: "missing name",
			data: `
[[rules]]
priority = "high"
`,
			wantCode: errors.ErrRuleInvalid,
		},
		{
			name: "blank name",
			data: `
[[rules]]
name = "   "
`,
			wantCode: errors.ErrRuleInvalid,
		},
		{
			name: "duplicate names",
			data: `
[[rules]]
name = "dup"

[[rules]]
name = "dup"
`,
			wantCode: errors.ErrRuleInvalid,
		},
		{
			name: "unknown priority",
			data: `
[[rules]]
name = "bad"
priority = "urgent"
`,
			wantCode: errors.ErrRuleInvalid,
		},
		{
			name:     "malformed document",
			data:     `rules = "not a table"`,
			wantCode: errors.ErrRuleLoad,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), FormatTOML)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, tt.wantCode),
				"got %v, want code %s", err, tt.wantCode)
		})
	}
}

func TestParseUnsupportedFormat(t *testing.T) {
	_, err := Parse([]byte(`rules: []`), "json")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrRuleLoad))
}

func TestParseInvalidGlobIsTolerated(t *testing.T) {
	// Bad globs never match at evaluation time, so loading only warns.
	data := `
[[rules]]
name = "bad-glob"

[rules.file_triggers]
path_patterns = ["src/[broken"]
`
	rules, err := Parse([]byte(data), FormatTOML)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, []string{"src/[broken"}, rules[0].PathPatterns())
}

func TestDefaults(t *testing.T) {
	defaults := Defaults()
	require.NotEmpty(t, defaults)

	seen := make(map[string]bool)
	for _, rule := range defaults {
		assert.NotEmpty(t, rule.Name)
		assert.True(t, rule.Priority.IsValid(), "rule %s has invalid priority", rule.Name)
		assert.False(t, seen[rule.Name], "duplicate default rule %s", rule.Name)
		seen[rule.Name] = true
	}
	assert.True(t, seen["hardcoded-credentials"])
}

func TestDefaultsAreIndependent(t *testing.T) {
	first := Defaults()
	first[0].Name = "mutated"
	first[0].Triggers.PathPatterns[0] = "mutated"

	second := Defaults()
	assert.NotEqual(t, "mutated", second[0].Name)
	assert.NotEqual(t, "mutated", second[0].Triggers.PathPatterns[0])
}

func TestMerge(t *testing.T) {
	base := []*types.Rule{
		{Name: "a", Priority: types.PriorityLow},
		{Name: "b", Priority: types.PriorityLow},
	}
	overrides := []*types.Rule{
		{Name: "b", Priority: types.PriorityCritical},
		{Name: "c", Priority: types.PriorityHigh},
	}

	merged := Merge(base, overrides)
	require.Len(t, merged, 3)

	assert.Equal(t, "a", merged[0].Name)
	assert.Equal(t, "b", merged[1].Name)
	assert.Equal(t, types.PriorityCritical, merged[1].Priority, "override replaces in place")
	assert.Equal(t, "c", merged[2].Name)
	assert.Equal(t, types.PriorityHigh, merged[2].Priority)
}

func TestMergeEmptyBase(t *testing.T) {
	overrides := []*types.Rule{{Name: "only", Priority: types.PriorityMedium}}
	merged := Merge(nil, overrides)
	require.Len(t, merged, 1)
	assert.Equal(t, "only", merged[0].Name)
}
