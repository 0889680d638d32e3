package commands

import (
	"time"

	"github.com/arthur-debert/rulescan/pkg/config"
	"github.com/arthur-debert/rulescan/pkg/errors"
	"github.com/arthur-debert/rulescan/pkg/logging"
	"github.com/arthur-debert/rulescan/pkg/scanner"
)

// ScanOptions defines the options for the Scan command.
type ScanOptions struct {
	// Root is the directory to scan.
	Root string

	// ConfigPath optionally names an explicit configuration file.
	ConfigPath string

	// Overrides are configuration values that win over every other
	// source, keyed in koanf dot notation.
	Overrides map[string]interface{}

	// IncludePatterns narrow the listing beyond the configured
	// patterns.
	IncludePatterns []string

	// ExcludePatterns subtract paths on top of the configured patterns.
	ExcludePatterns []string
}

// ScanDirResult is the outcome of listing candidate files under a root.
type ScanDirResult struct {
	Root               string        `json:"root"`
	Files              []string      `json:"files"`
	Directories        []string      `json:"directories,omitempty"`
	FilesScanned       int           `json:"filesScanned"`
	DirectoriesScanned int           `json:"directoriesScanned"`
	Duration           time.Duration `json:"duration"`
}

// Scan walks a directory with the configured traversal bounds and
// returns the files that survive ignore and pattern filtering.
func Scan(opts ScanOptions) (*ScanDirResult, error) {
	log := logging.GetLogger("commands")
	log.Debug().Str("command", "Scan").Str("root", opts.Root).Msg("Executing command")

	if opts.Root == "" {
		return nil, errors.New(errors.ErrInvalidInput, "root must not be empty")
	}

	cfg, err := config.Load(opts.ConfigPath, opts.Overrides)
	if err != nil {
		return nil, err
	}

	scanOpts := scanner.Options{
		IncludePatterns: append(append([]string{}, cfg.Scanner.IncludePatterns...), opts.IncludePatterns...),
		ExcludePatterns: append(append([]string{}, cfg.Scanner.ExcludePatterns...), opts.ExcludePatterns...),
		MaxDepth:        cfg.Scanner.MaxDepth,
		BatchSize:       cfg.Scanner.BatchSize,
		FollowSymlinks:  cfg.Scanner.FollowSymlinks,
		CaseSensitive:   cfg.Scanner.CaseSensitive,
	}

	scan, err := scanner.NewScanner().Scan(opts.Root, &scanOpts)
	if err != nil {
		return nil, err
	}

	result := &ScanDirResult{
		Root:               opts.Root,
		Files:              scan.Files,
		Directories:        scan.Directories,
		FilesScanned:       scan.FilesScanned,
		DirectoriesScanned: scan.DirectoriesScanned,
		Duration:           scan.Duration,
	}

	log.Info().
		Str("command", "Scan").
		Int("files", len(result.Files)).
		Int("directories", len(result.Directories)).
		Msg("Command finished")
	return result, nil
}
