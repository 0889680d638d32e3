package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/rulescan/pkg/types"
)

func TestTempTree(t *testing.T) {
	root := TempTree(t, map[string]string{
		"src/main.go":   "package main\n",
		"docs/guide.md": "# guide\n",
	})

	assert.Equal(t, "package main\n", ReadFile(t, filepath.Join(root, "src/main.go")))

	info, err := os.Stat(filepath.Join(root, "docs"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestMemFS(t *testing.T) {
	fsys := MemFS(t, map[string]string{"/a/b.txt": "hello"})

	data, err := fsys.ReadFile("/a/b.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	_, err = fsys.Stat("/a/missing.txt")
	assert.Error(t, err)
}

func TestRuleBuilders(t *testing.T) {
	p := PathRule("p", types.PriorityHigh, "**/*.go")
	assert.True(t, p.HasPathPatterns())
	assert.False(t, p.HasContentPatterns())

	c := ContentRule("c", types.PriorityLow, "TODO")
	assert.False(t, c.HasPathPatterns())
	assert.True(t, c.HasContentPatterns())

	b := Rule("b", types.PriorityCritical, []string{"**/*.ts"}, []string{"interface"})
	assert.True(t, b.HasPathPatterns())
	assert.True(t, b.HasContentPatterns())
	assert.Equal(t, types.PriorityCritical, b.Priority)
}
