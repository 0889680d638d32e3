package topics

import (
	"bytes"
	"testing"
	"testing/fstest"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func topicFS(files map[string]string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for name, content := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return fsys
}

func TestScanTopics(t *testing.T) {
	fsys := topicFS(map[string]string{
		"syntax.md":    "# Pattern Syntax\n\nGlob and regex details",
		"caching.txt":  "Information about result caching",
		"config.txxt":  "Configuration Guide\n==================",
		"ignore.json":  "This should be ignored",
		"sub/deep.txt": "Nested topic",
	})

	t.Run("default extensions", func(t *testing.T) {
		tm := New(fsys)
		require.NoError(t, tm.scanTopics())

		tests := []struct {
			name     string
			expected bool
			content  string
		}{
			{"syntax", true, "# Pattern Syntax\n\nGlob and regex details"},
			{"caching", true, "Information about result caching"},
			{"config", false, ""}, // .txxt not in defaults
			{"ignore", false, ""},
			// Subdirectories flatten to the bare filename.
			{"deep", true, "Nested topic"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				topic, exists := tm.GetTopic(tt.name)
				assert.Equal(t, tt.expected, exists)
				if exists {
					assert.Equal(t, tt.content, topic.Content)
				}
			})
		}
	})

	t.Run("custom extensions", func(t *testing.T) {
		tm := NewWithOptions(fsys, Options{
			Extensions: []string{".txt", ".md", ".txxt"},
		})
		require.NoError(t, tm.scanTopics())

		topic, exists := tm.GetTopic("config")
		require.True(t, exists)
		assert.Equal(t, "Configuration Guide\n==================", topic.Content)
	})
}

func TestGetTopicFlagStyles(t *testing.T) {
	fsys := topicFS(map[string]string{
		"option-no-cache.txt": "Cache bypass help",
		"option-verbose.txt":  "Verbose help",
		"syntax.txt":          "Syntax help",
	})

	tm := New(fsys)
	require.NoError(t, tm.scanTopics())

	tests := []struct {
		input    string
		expected string
		exists   bool
	}{
		// Direct topic name
		{"syntax", "syntax", true},
		// Option topics with prefix
		{"option-no-cache", "option-no-cache", true},
		// Flag-style lookups should find option- prefixed files
		{"no-cache", "option-no-cache", true},
		{"--no-cache", "option-no-cache", true},
		{"-no-cache", "option-no-cache", true},
		{"--verbose", "option-verbose", true},
		{"-v", "", false}, // Single letter flags don't match
		{"nonexistent", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			topic, exists := tm.GetTopic(tt.input)
			assert.Equal(t, tt.exists, exists)
			if exists {
				assert.Equal(t, tt.expected, topic.Name)
			}
		})
	}
}

func TestListTopics(t *testing.T) {
	names := []string{"syntax", "rules", "caching", "config"}
	files := make(map[string]string, len(names))
	for _, name := range names {
		files[name+".txt"] = "Help for " + name
	}

	tm := New(topicFS(files))
	require.NoError(t, tm.scanTopics())

	assert.ElementsMatch(t, names, tm.ListTopics())
}

func TestNilFilesystem(t *testing.T) {
	tm := New(nil)
	require.NoError(t, tm.scanTopics())
	assert.Empty(t, tm.ListTopics())
}

func TestInitialize(t *testing.T) {
	fsys := topicFS(map[string]string{
		"syntax.txt": "Pattern syntax content",
	})

	rootCmd := &cobra.Command{
		Use:   "testapp",
		Short: "Test application",
	}
	rootCmd.AddCommand(&cobra.Command{
		Use:   "eval",
		Short: "Evaluate something",
		Run:   func(cmd *cobra.Command, args []string) {},
	})

	require.NoError(t, Initialize(rootCmd, fsys))

	helpCmd, _, err := rootCmd.Find([]string{"help"})
	require.NoError(t, err)
	assert.Equal(t, "help", helpCmd.Name())
	assert.Equal(t, "help [command or topic]", helpCmd.Use)
}

func TestHelpCommandRendersTopic(t *testing.T) {
	fsys := topicFS(map[string]string{
		"caching.txt": "CACHING\nResults are cached per file and rule.",
	})

	rootCmd := &cobra.Command{Use: "testapp"}
	require.NoError(t, Initialize(rootCmd, fsys))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"help", "caching"})
	require.NoError(t, rootCmd.Execute())

	assert.Contains(t, out.String(), "CACHING")
}

func TestHelpCommandListsTopics(t *testing.T) {
	fsys := topicFS(map[string]string{
		"syntax.txt":          "Syntax help",
		"option-no-cache.txt": "Cache bypass help",
	})

	rootCmd := &cobra.Command{Use: "testapp"}
	require.NoError(t, Initialize(rootCmd, fsys))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"help", "topics"})
	require.NoError(t, rootCmd.Execute())

	assert.Contains(t, out.String(), "General topics:")
	assert.Contains(t, out.String(), "  syntax")
	assert.Contains(t, out.String(), "Option topics:")
	assert.Contains(t, out.String(), "  --no-cache")
}

func TestGlamourRendererPassThrough(t *testing.T) {
	r := NewGlamourRenderer()

	// Non-markdown content is returned untouched.
	assert.Equal(t, "plain text", r.Render("plain text", ".txt"))
}

func TestPlainRenderer(t *testing.T) {
	r := &PlainRenderer{}
	assert.Equal(t, "# raw", r.Render("# raw", ".md"))
}
