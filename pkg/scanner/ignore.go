package scanner

import (
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

const gitignoreFile = ".gitignore"

// builtinIgnoreLines are always excluded: version-control internals,
// OS artifacts, and editor temp files.
var builtinIgnoreLines = []string{
	".git/",
	".svn/",
	".hg/",
	".DS_Store",
	"Thumbs.db",
	"desktop.ini",
	"*~",
	"*.tmp",
	"*.swp",
	"*.swo",
}

// loadIgnore combines the built-in ignore set with the .gitignore at
// the scan root, if one exists. Root file patterns are appended last so
// their negations can re-include built-in exclusions.
func (s *Scanner) loadIgnore(root string) gitignore.Matcher {
	ps := make([]gitignore.Pattern, 0, len(builtinIgnoreLines))
	for _, line := range builtinIgnoreLines {
		ps = append(ps, gitignore.ParsePattern(line, nil))
	}

	data, err := s.fs.ReadFile(filepath.Join(root, gitignoreFile))
	if err == nil {
		loaded := 0
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimRight(line, "\r")
			if len(strings.TrimSpace(line)) == 0 || strings.HasPrefix(line, "#") {
				continue
			}
			ps = append(ps, gitignore.ParsePattern(line, nil))
			loaded++
		}
		s.logger.Debug().
			Str("root", root).
			Int("patterns", loaded).
			Msg("Loaded ignore rules from .gitignore")
	}

	return gitignore.NewMatcher(ps)
}
