package scanner

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/rulescan/pkg/errors"
	"github.com/arthur-debert/rulescan/pkg/filesystem"
	"github.com/arthur-debert/rulescan/pkg/logging"
	"github.com/arthur-debert/rulescan/pkg/metrics"
	"github.com/arthur-debert/rulescan/pkg/patterns"
	"github.com/arthur-debert/rulescan/pkg/types"
)

const (
	// DefaultMaxDepth bounds how deep traversal descends below the root.
	DefaultMaxDepth = 50

	// DefaultBatchSize is how many sibling entries are processed
	// concurrently per directory, capping simultaneous open
	// file-descriptors.
	DefaultBatchSize = 100
)

// Options tune a single scan.
type Options struct {
	// IncludePatterns narrow the result to matching root-relative
	// paths. Empty keeps every file.
	IncludePatterns []string

	// ExcludePatterns subtract matching paths after includes apply.
	ExcludePatterns []string

	// MaxDepth bounds traversal depth; the root's children are depth 1.
	MaxDepth int

	// BatchSize bounds how many sibling entries are visited
	// concurrently.
	BatchSize int

	// FollowSymlinks enables descending into symlinked directories.
	// Off by default; symlinks are still listed as files.
	FollowSymlinks bool

	// CaseSensitive applies to the include/exclude patterns.
	CaseSensitive bool
}

// DefaultOptions returns Options with the default depth and batch
// bounds and no filtering.
func DefaultOptions() *Options {
	return &Options{
		MaxDepth:  DefaultMaxDepth,
		BatchSize: DefaultBatchSize,
	}
}

func (o *Options) normalized() Options {
	out := Options{}
	if o != nil {
		out = *o
	}
	if out.MaxDepth <= 0 {
		out.MaxDepth = DefaultMaxDepth
	}
	if out.BatchSize <= 0 {
		out.BatchSize = DefaultBatchSize
	}
	return out
}

// Scanner walks directory trees and reports candidate files as
// root-relative slash-separated paths.
type Scanner struct {
	fs       types.FS
	matcher  *patterns.Matcher
	recorder *metrics.Recorder
	logger   zerolog.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithFS substitutes the filesystem, typically an in-memory one in tests.
func WithFS(fsys types.FS) Option {
	return func(s *Scanner) { s.fs = fsys }
}

// WithMatcher shares a pattern matcher so compiled globs are reused
// across the scanner and its owner.
func WithMatcher(m *patterns.Matcher) Option {
	return func(s *Scanner) {
		if m != nil {
			s.matcher = m
		}
	}
}

// WithRecorder attaches a metrics recorder. A nil recorder is valid.
func WithRecorder(rec *metrics.Recorder) Option {
	return func(s *Scanner) { s.recorder = rec }
}

// NewScanner creates a Scanner on the OS filesystem.
func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{
		fs:      filesystem.NewOS(),
		matcher: patterns.NewMatcher(),
		logger:  logging.GetLogger("scanner"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type scanState struct {
	opts   Options
	ignore gitignore.Matcher

	mu           sync.Mutex
	files        []string
	dirs         []string
	filesScanned int
	dirsScanned  int
}

// Scan enumerates files under root. An unreadable subdirectory
// contributes nothing but never fails the scan; only an unusable root
// is an error.
func (s *Scanner) Scan(root string, opts *Options) (*types.ScanResult, error) {
	start := time.Now()
	o := opts.normalized()

	info, err := s.fs.Stat(root)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrScanRoot, "cannot scan %s", root)
	}
	if !info.IsDir() {
		return nil, errors.Newf(errors.ErrScanRoot, "scan root %s is not a directory", root)
	}

	st := &scanState{opts: o, ignore: s.loadIgnore(root)}
	s.walk(root, "", 1, st)

	files := st.files
	if len(o.IncludePatterns) > 0 || len(o.ExcludePatterns) > 0 {
		files = s.matcher.FilterWithExclusions(files, o.IncludePatterns, o.ExcludePatterns,
			&patterns.MatchOptions{CaseSensitive: o.CaseSensitive})
	}
	sort.Strings(files)
	sort.Strings(st.dirs)

	result := &types.ScanResult{
		Files:              files,
		Directories:        st.dirs,
		Duration:           time.Since(start),
		FilesScanned:       st.filesScanned,
		DirectoriesScanned: st.dirsScanned,
	}

	s.recorder.ObserveScan(st.filesScanned, result.Duration)
	s.logger.Debug().
		Str("root", root).
		Int("files", len(result.Files)).
		Int("filesScanned", result.FilesScanned).
		Int("directories", result.DirectoriesScanned).
		Dur("duration", result.Duration).
		Msg("Scan complete")
	return result, nil
}

// FindFiles scans root and returns the root-relative paths matching the
// include patterns.
func (s *Scanner) FindFiles(root string, include []string) ([]string, error) {
	result, err := s.Scan(root, &Options{IncludePatterns: include})
	if err != nil {
		return nil, err
	}
	return result.Files, nil
}

// FileMatches reports whether a path matches any of the patterns. Pure
// pattern work; nothing is read from disk.
func (s *Scanner) FileMatches(path string, include []string) bool {
	return s.matcher.MatchesAny(path, include, nil)
}

// GetFileInfo stats a single file without following symlinks. RelPath
// is populated when the path sits under root.
func (s *Scanner) GetFileInfo(path, root string) (*types.FileDetails, error) {
	info, err := s.fs.Lstat(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", path)
	}

	rel := ""
	if root != "" {
		if r, relErr := filepath.Rel(root, path); relErr == nil && !strings.HasPrefix(r, "..") {
			rel = filepath.ToSlash(r)
		}
	}

	return &types.FileDetails{
		Path:      path,
		RelPath:   rel,
		Name:      info.Name(),
		Extension: strings.TrimPrefix(filepath.Ext(path), "."),
		Size:      info.Size(),
		Mode:      info.Mode(),
		ModTime:   info.ModTime(),
		IsDir:     info.IsDir(),
		IsSymlink: info.Mode()&fs.ModeSymlink != 0,
	}, nil
}

// walk reads one directory and visits its children in bounded batches.
// Each child's subtree is handled inside the child's goroutine.
func (s *Scanner) walk(abs, rel string, depth int, st *scanState) {
	entries, err := s.fs.ReadDir(abs)
	if err != nil {
		s.logger.Warn().Err(err).Str("dir", abs).Msg("Skipping unreadable directory")
		return
	}

	st.mu.Lock()
	st.dirsScanned++
	st.mu.Unlock()

	for i := 0; i < len(entries); i += st.opts.BatchSize {
		batch := entries[i:min(i+st.opts.BatchSize, len(entries))]
		var wg sync.WaitGroup
		for _, entry := range batch {
			wg.Add(1)
			go func(entry fs.DirEntry) {
				defer wg.Done()
				s.visit(entry, abs, rel, depth, st)
			}(entry)
		}
		wg.Wait()
	}
}

func (s *Scanner) visit(entry fs.DirEntry, parentAbs, parentRel string, depth int, st *scanState) {
	name := entry.Name()
	childAbs := filepath.Join(parentAbs, name)
	childRel := name
	if parentRel != "" {
		childRel = parentRel + "/" + name
	}

	isDir := entry.IsDir()
	if entry.Type()&fs.ModeSymlink != 0 {
		if !st.opts.FollowSymlinks {
			s.recordFile(childRel, st)
			return
		}
		info, err := s.fs.Stat(childAbs)
		if err != nil {
			s.logger.Debug().Err(err).Str("path", childAbs).Msg("Skipping broken symlink")
			return
		}
		isDir = info.IsDir()
	}

	if isDir {
		if st.ignore.Match(splitPath(childRel), true) {
			return
		}
		st.mu.Lock()
		st.dirs = append(st.dirs, childRel)
		st.mu.Unlock()
		if depth >= st.opts.MaxDepth {
			s.logger.Debug().
				Str("dir", childRel).
				Int("depth", depth).
				Msg("Depth bound reached, not descending")
			return
		}
		s.walk(childAbs, childRel, depth+1, st)
		return
	}

	s.recordFile(childRel, st)
}

// recordFile counts the file as scanned and keeps it unless an ignore
// rule excludes it.
func (s *Scanner) recordFile(rel string, st *scanState) {
	st.mu.Lock()
	st.filesScanned++
	st.mu.Unlock()

	if st.ignore.Match(splitPath(rel), false) {
		return
	}

	st.mu.Lock()
	st.files = append(st.files, rel)
	st.mu.Unlock()
}

func splitPath(rel string) []string {
	return strings.Split(rel, "/")
}
