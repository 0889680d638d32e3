// Package config loads rulescan configuration from layered sources:
// embedded defaults, then an optional TOML file, then RULESCAN_
// environment variables, then explicit overrides. Later sources win.
package config

import (
	"time"

	"github.com/arthur-debert/rulescan/pkg/errors"
)

// Config is the fully resolved configuration.
type Config struct {
	Engine   Engine   `koanf:"engine"`
	Analyzer Analyzer `koanf:"analyzer"`
	Scanner  Scanner  `koanf:"scanner"`
	Cache    Cache    `koanf:"cache"`
	Rules    Rules    `koanf:"rules"`
}

// Engine controls batch evaluation behavior.
type Engine struct {
	MaxConcurrent int           `koanf:"max_concurrent"`
	UseCache      bool          `koanf:"use_cache"`
	Timeout       time.Duration `koanf:"timeout"`
}

// Analyzer controls content analysis limits.
type Analyzer struct {
	MaxFileSize int64 `koanf:"max_file_size"`
}

// Scanner controls directory traversal.
type Scanner struct {
	MaxDepth        int      `koanf:"max_depth"`
	BatchSize       int      `koanf:"batch_size"`
	FollowSymlinks  bool     `koanf:"follow_symlinks"`
	CaseSensitive   bool     `koanf:"case_sensitive"`
	IncludePatterns []string `koanf:"include_patterns"`
	ExcludePatterns []string `koanf:"exclude_patterns"`
}

// Cache controls the evaluation cache ceilings.
type Cache struct {
	Enabled    bool          `koanf:"enabled"`
	MaxEntries int           `koanf:"max_entries"`
	MaxSize    int64         `koanf:"max_size"`
	TTL        time.Duration `koanf:"ttl"`
}

// Rules names the rule sources to load.
type Rules struct {
	Files       []string `koanf:"files"`
	UseDefaults bool     `koanf:"use_defaults"`
}

// Validate rejects values no component can run with. Zero is not a
// valid concurrency, depth, batch size, or ceiling; a negative TTL
// has no meaning.
func (c *Config) Validate() error {
	switch {
	case c.Engine.MaxConcurrent < 1:
		return errors.Newf(errors.ErrConfigValid, "engine.max_concurrent must be at least 1, got %d", c.Engine.MaxConcurrent)
	case c.Engine.Timeout < 0:
		return errors.Newf(errors.ErrConfigValid, "engine.timeout must not be negative, got %s", c.Engine.Timeout)
	case c.Analyzer.MaxFileSize < 1:
		return errors.Newf(errors.ErrConfigValid, "analyzer.max_file_size must be at least 1, got %d", c.Analyzer.MaxFileSize)
	case c.Scanner.MaxDepth < 1:
		return errors.Newf(errors.ErrConfigValid, "scanner.max_depth must be at least 1, got %d", c.Scanner.MaxDepth)
	case c.Scanner.BatchSize < 1:
		return errors.Newf(errors.ErrConfigValid, "scanner.batch_size must be at least 1, got %d", c.Scanner.BatchSize)
	case c.Cache.MaxEntries < 1:
		return errors.Newf(errors.ErrConfigValid, "cache.max_entries must be at least 1, got %d", c.Cache.MaxEntries)
	case c.Cache.MaxSize < 1:
		return errors.Newf(errors.ErrConfigValid, "cache.max_size must be at least 1, got %d", c.Cache.MaxSize)
	case c.Cache.TTL < 0:
		return errors.Newf(errors.ErrConfigValid, "cache.ttl must not be negative, got %s", c.Cache.TTL)
	}
	return nil
}
