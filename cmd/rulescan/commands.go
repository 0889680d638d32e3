package rulescan

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/arthur-debert/rulescan/internal/version"
	"github.com/arthur-debert/rulescan/pkg/cobrax/topics"
	"github.com/arthur-debert/rulescan/pkg/commands"
	"github.com/arthur-debert/rulescan/pkg/logging"
	"github.com/arthur-debert/rulescan/pkg/ui"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

//go:embed topics
var topicsFS embed.FS

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	// Initialize custom template formatting functions
	initTemplateFormatting()

	var (
		verbosity  int
		format     string
		configPath string
	)

	rootCmd := &cobra.Command{
		Use:     "rulescan",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging based on verbosity
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// If we get here, no subcommand was provided
			// Show help but return an error to indicate incorrect usage
			_ = cmd.Help()
			return fmt.Errorf(MsgErrNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVar(&format, "format", "auto", MsgFlagFormat)
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", MsgFlagConfig)

	// Disable automatic help command (we'll use our custom one from topics)
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	// Define command groups
	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "COMMANDS:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "misc",
		Title: "MISC:",
	})

	// Set custom help template
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	// Add all commands
	rootCmd.AddCommand(newEvalCmd())
	rootCmd.AddCommand(newMatchCmd())
	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newScanCmd())
	rootCmd.AddCommand(newRulesCmd())
	rootCmd.AddCommand(newSyntaxCmd())
	rootCmd.AddCommand(newTopicsCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	// Initialize topic-based help system from the embedded topic files
	// so the binary stays self-contained.
	if sub, err := fs.Sub(topicsFS, "topics"); err == nil {
		opts := topics.Options{
			Extensions: []string{".txt", ".md"},
			// Always use Glamour renderer for markdown files
			Renderer: topics.NewGlamourRenderer(),
		}
		_ = topics.InitializeWithOptions(rootCmd, sub, opts)
	}

	return rootCmd
}

// outputFormat resolves the persistent --format flag against the
// command's output stream. Buffers (tests, pipes wrapped by cobra)
// resolve auto to plain text.
func outputFormat(cmd *cobra.Command) (ui.Format, error) {
	raw, _ := cmd.Root().PersistentFlags().GetString("format")
	format, err := ui.ParseFormat(raw)
	if err != nil {
		return ui.FormatText, err
	}
	if f, ok := cmd.OutOrStdout().(*os.File); ok {
		return format.Resolve(f), nil
	}
	if format == ui.FormatAuto {
		return ui.FormatText, nil
	}
	return format, nil
}

func rootConfigPath(cmd *cobra.Command) string {
	path, _ := cmd.Root().PersistentFlags().GetString("config")
	return path
}

func newEvalCmd() *cobra.Command {
	var (
		ruleFiles     []string
		noDefaults    bool
		noCache       bool
		showStats     bool
		maxConcurrent int
		timeout       time.Duration
	)

	cmd := &cobra.Command{
		Use:     "eval [file-or-directory]",
		Short:   MsgEvalShort,
		Long:    MsgEvalLong,
		Example: MsgEvalExample,
		Args:    cobra.MaximumNArgs(1),
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}

			target := "."
			if len(args) == 1 {
				target = args[0]
			}

			overrides := map[string]interface{}{}
			if noCache {
				overrides["cache.enabled"] = false
			}
			if cmd.Flags().Changed("max-concurrent") {
				overrides["engine.max_concurrent"] = maxConcurrent
			}
			if cmd.Flags().Changed("timeout") {
				overrides["engine.timeout"] = timeout.String()
			}

			log.Info().
				Str("target", target).
				Int("extra_rule_files", len(ruleFiles)).
				Msg("Evaluating rules against target")

			result, err := commands.Evaluate(commands.EvaluateOptions{
				Target:     target,
				ConfigPath: rootConfigPath(cmd),
				Overrides:  overrides,
				RuleFiles:  ruleFiles,
				NoDefaults: noDefaults,
				ShowStats:  showStats,
			})
			if err != nil {
				return err
			}

			return renderEvaluate(cmd.OutOrStdout(), format, result)
		},
	}

	cmd.Flags().StringArrayVarP(&ruleFiles, "rules", "r", nil, MsgFlagRules)
	cmd.Flags().BoolVar(&noDefaults, "no-defaults", false, MsgFlagNoDefaults)
	cmd.Flags().BoolVar(&noCache, "no-cache", false, MsgFlagNoCache)
	cmd.Flags().BoolVar(&showStats, "stats", false, MsgFlagStats)
	cmd.Flags().IntVar(&maxConcurrent, "max-concurrent", 0, MsgFlagMaxConcurrent)
	cmd.Flags().DurationVar(&timeout, "timeout", 0, MsgFlagTimeout)

	return cmd
}

func newMatchCmd() *cobra.Command {
	var caseSensitive bool

	cmd := &cobra.Command{
		Use:     "match <pattern> <path>...",
		Short:   MsgMatchShort,
		Long:    MsgMatchLong,
		Example: MsgMatchExample,
		Args:    cobra.MinimumNArgs(2),
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}

			result, err := commands.Match(commands.MatchOptions{
				Patterns:      []string{args[0]},
				Paths:         args[1:],
				CaseSensitive: caseSensitive,
			})
			if err != nil {
				return err
			}

			return renderMatch(cmd.OutOrStdout(), format, result)
		},
	}

	cmd.Flags().BoolVar(&caseSensitive, "case-sensitive", false, MsgFlagCaseSensitive)

	return cmd
}

func newAnalyzeCmd() *cobra.Command {
	var (
		caseSensitive bool
		multiline     bool
		maxFileSize   int64
	)

	cmd := &cobra.Command{
		Use:     "analyze <pattern> <file>...",
		Short:   MsgAnalyzeShort,
		Long:    MsgAnalyzeLong,
		Example: MsgAnalyzeExample,
		Args:    cobra.MinimumNArgs(2),
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}

			result, err := commands.Analyze(commands.AnalyzeOptions{
				Pattern:       args[0],
				Paths:         args[1:],
				CaseSensitive: caseSensitive,
				Multiline:     multiline,
				MaxFileSize:   maxFileSize,
			})
			if err != nil {
				return err
			}

			return renderAnalyze(cmd.OutOrStdout(), format, result)
		},
	}

	cmd.Flags().BoolVar(&caseSensitive, "case-sensitive", false, MsgFlagCaseSensitive)
	cmd.Flags().BoolVar(&multiline, "multiline", false, MsgFlagMultiline)
	cmd.Flags().Int64Var(&maxFileSize, "max-file-size", 0, MsgFlagMaxFileSize)

	return cmd
}

func newScanCmd() *cobra.Command {
	var (
		includePatterns []string
		excludePatterns []string
		maxDepth        int
		followSymlinks  bool
		showDirs        bool
	)

	cmd := &cobra.Command{
		Use:     "scan [directory]",
		Short:   MsgScanShort,
		Long:    MsgScanLong,
		Example: MsgScanExample,
		Args:    cobra.MaximumNArgs(1),
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}

			root := "."
			if len(args) == 1 {
				root = args[0]
			}

			overrides := map[string]interface{}{}
			if cmd.Flags().Changed("max-depth") {
				overrides["scanner.max_depth"] = maxDepth
			}
			if cmd.Flags().Changed("follow-symlinks") {
				overrides["scanner.follow_symlinks"] = followSymlinks
			}

			// Progress goes to stderr so piped output stays clean.
			var spinner *pterm.SpinnerPrinter
			if format == ui.FormatTerminal {
				spinner, _ = pterm.DefaultSpinner.
					WithWriter(cmd.ErrOrStderr()).
					Start("Scanning " + root)
			}

			result, err := commands.Scan(commands.ScanOptions{
				Root:            root,
				ConfigPath:      rootConfigPath(cmd),
				Overrides:       overrides,
				IncludePatterns: includePatterns,
				ExcludePatterns: excludePatterns,
			})
			if spinner != nil {
				_ = spinner.Stop()
			}
			if err != nil {
				return err
			}

			return renderScan(cmd.OutOrStdout(), format, result, showDirs)
		},
	}

	cmd.Flags().StringArrayVar(&includePatterns, "include", nil, MsgFlagInclude)
	cmd.Flags().StringArrayVar(&excludePatterns, "exclude", nil, MsgFlagExclude)
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, MsgFlagMaxDepth)
	cmd.Flags().BoolVar(&followSymlinks, "follow-symlinks", false, MsgFlagFollowSymlinks)
	cmd.Flags().BoolVar(&showDirs, "dirs", false, MsgFlagDirs)

	return cmd
}

func newRulesCmd() *cobra.Command {
	var (
		ruleFiles  []string
		noDefaults bool
	)

	cmd := &cobra.Command{
		Use:     "rules",
		Short:   MsgRulesShort,
		Long:    MsgRulesLong,
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}

			result, err := commands.ListRules(commands.RulesOptions{
				ConfigPath: rootConfigPath(cmd),
				RuleFiles:  ruleFiles,
				NoDefaults: noDefaults,
			})
			if err != nil {
				return err
			}

			return renderRules(cmd.OutOrStdout(), format, result)
		},
	}

	cmd.Flags().StringArrayVarP(&ruleFiles, "rules", "r", nil, MsgFlagRules)
	cmd.Flags().BoolVar(&noDefaults, "no-defaults", false, MsgFlagNoDefaults)

	return cmd
}

func newSyntaxCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "syntax",
		Short:   MsgSyntaxShort,
		GroupID: "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Delegate to the topic help system so the rendered page and
			// "help syntax" stay identical.
			if helpCmd, _, err := cmd.Root().Find([]string{"help"}); err == nil {
				if helpCmd.RunE != nil {
					return helpCmd.RunE(helpCmd, []string{"syntax"})
				} else if helpCmd.Run != nil {
					helpCmd.Run(helpCmd, []string{"syntax"})
					return nil
				}
			}
			return fmt.Errorf("help command not found")
		},
	}
}

func newTopicsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "topics",
		Short:   MsgTopicsShort,
		Long:    MsgTopicsLong,
		GroupID: "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Find the help command and execute it with "topics" argument
			if helpCmd, _, err := cmd.Root().Find([]string{"help"}); err == nil {
				if helpCmd.RunE != nil {
					return helpCmd.RunE(helpCmd, []string{"topics"})
				} else if helpCmd.Run != nil {
					helpCmd.Run(helpCmd, []string{"topics"})
					return nil
				}
			}
			return fmt.Errorf("help command not found")
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "rulescan %s (commit %s, built %s)\n",
				version.Version, version.Commit, version.Date)
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		GroupID:               "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
}
