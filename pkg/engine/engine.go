// Package engine evaluates trigger rules against files and directory
// trees. It orchestrates the path matcher, the content analyzer, the
// directory scanner, and the evaluation cache; callers hand it rules
// and paths and get back match classifications.
package engine

import (
	"github.com/rs/zerolog"

	"github.com/arthur-debert/rulescan/pkg/cache"
	"github.com/arthur-debert/rulescan/pkg/config"
	"github.com/arthur-debert/rulescan/pkg/content"
	"github.com/arthur-debert/rulescan/pkg/filesystem"
	"github.com/arthur-debert/rulescan/pkg/logging"
	"github.com/arthur-debert/rulescan/pkg/metrics"
	"github.com/arthur-debert/rulescan/pkg/patterns"
	"github.com/arthur-debert/rulescan/pkg/scanner"
	"github.com/arthur-debert/rulescan/pkg/types"
)

// Engine owns one pattern cache and one evaluation cache; both are
// safe for concurrent use, so a single Engine may serve many
// goroutines.
type Engine struct {
	fs       types.FS
	matcher  *patterns.Matcher
	analyzer *content.Analyzer
	scanner  *scanner.Scanner
	cache    *cache.Cache[types.EvaluationResult]
	recorder *metrics.Recorder
	logger   zerolog.Logger
	scanOpts scanner.Options
	defaults types.EvaluateOptions
}

type settings struct {
	fs          types.FS
	recorder    *metrics.Recorder
	cacheOpts   []cache.Option
	noCache     bool
	maxFileSize int64
	scanOpts    scanner.Options
	defaults    types.EvaluateOptions
}

// Option configures an Engine under construction.
type Option func(*settings)

// WithFS substitutes the filesystem used for all reads.
func WithFS(fsys types.FS) Option {
	return func(s *settings) { s.fs = fsys }
}

// WithRecorder attaches a metrics recorder. Without one, no metrics
// are collected.
func WithRecorder(rec *metrics.Recorder) Option {
	return func(s *settings) { s.recorder = rec }
}

// WithCacheOptions tunes the evaluation cache ceilings and TTL.
func WithCacheOptions(opts ...cache.Option) Option {
	return func(s *settings) { s.cacheOpts = append(s.cacheOpts, opts...) }
}

// WithoutCache disables the evaluation cache entirely. Per-call
// UseCache=false only skips it for that call.
func WithoutCache() Option {
	return func(s *settings) { s.noCache = true }
}

// WithMaxFileSize caps how large a file the content analyzer will read.
func WithMaxFileSize(limit int64) Option {
	return func(s *settings) { s.maxFileSize = limit }
}

// WithScanOptions sets the traversal defaults used by FindMatchingFiles.
func WithScanOptions(opts scanner.Options) Option {
	return func(s *settings) { s.scanOpts = opts }
}

// WithDefaults sets the evaluate options applied when a caller passes
// nil options.
func WithDefaults(opts types.EvaluateOptions) Option {
	return func(s *settings) { s.defaults = opts }
}

// New builds an engine over the OS filesystem with default limits.
func New(opts ...Option) *Engine {
	s := settings{
		fs:          filesystem.NewOS(),
		maxFileSize: content.DefaultMaxFileSize,
		scanOpts:    *scanner.DefaultOptions(),
		defaults:    *types.DefaultEvaluateOptions(),
	}
	for _, opt := range opts {
		opt(&s)
	}

	matcher := patterns.NewMatcher()
	e := &Engine{
		fs:      s.fs,
		matcher: matcher,
		analyzer: content.NewAnalyzer(
			content.WithFS(s.fs),
			content.WithMaxFileSize(s.maxFileSize),
		),
		scanner: scanner.NewScanner(
			scanner.WithFS(s.fs),
			scanner.WithMatcher(matcher),
			scanner.WithRecorder(s.recorder),
		),
		recorder: s.recorder,
		logger:   logging.GetLogger("engine"),
		scanOpts: s.scanOpts,
		defaults: s.defaults,
	}
	if !s.noCache {
		cacheOpts := append([]cache.Option{cache.WithFS(s.fs)}, s.cacheOpts...)
		e.cache = cache.New[types.EvaluationResult](cacheOpts...)
	}
	return e
}

// FromConfig builds an engine from resolved configuration. Explicit
// options apply on top.
func FromConfig(cfg *config.Config, opts ...Option) *Engine {
	base := []Option{
		WithMaxFileSize(cfg.Analyzer.MaxFileSize),
		WithScanOptions(scanner.Options{
			IncludePatterns: cfg.Scanner.IncludePatterns,
			ExcludePatterns: cfg.Scanner.ExcludePatterns,
			MaxDepth:        cfg.Scanner.MaxDepth,
			BatchSize:       cfg.Scanner.BatchSize,
			FollowSymlinks:  cfg.Scanner.FollowSymlinks,
			CaseSensitive:   cfg.Scanner.CaseSensitive,
		}),
		WithDefaults(types.EvaluateOptions{
			UseCache:      cfg.Engine.UseCache,
			Timeout:       cfg.Engine.Timeout,
			MaxConcurrent: cfg.Engine.MaxConcurrent,
		}),
	}
	if cfg.Cache.Enabled {
		base = append(base, WithCacheOptions(
			cache.WithMaxEntries(cfg.Cache.MaxEntries),
			cache.WithMaxSize(cfg.Cache.MaxSize),
			cache.WithTTL(cfg.Cache.TTL),
		))
	} else {
		base = append(base, WithoutCache())
	}
	return New(append(base, opts...)...)
}

// EvaluationCache exposes the engine's cache for invalidation wiring,
// e.g. a filesystem watcher. Nil when caching is disabled.
func (e *Engine) EvaluationCache() *cache.Cache[types.EvaluationResult] {
	return e.cache
}

func (e *Engine) resolveOptions(opts *types.EvaluateOptions) *types.EvaluateOptions {
	if opts == nil {
		o := e.defaults
		return &o
	}
	return opts
}

// cacheKey joins the I/O path, the path the patterns were matched
// against, and the rule name. NUL cannot appear in any of the three,
// so the key is collision-free.
func cacheKey(ioPath, matchPath, ruleName string) string {
	return ioPath + "\x00" + matchPath + "\x00" + ruleName
}
