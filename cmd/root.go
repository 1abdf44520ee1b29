package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/akss-tools/namefix/backup_manager"
	"github.com/akss-tools/namefix/clang_tidy"
	"github.com/akss-tools/namefix/code_analyzer"
	analyzer_contracts "github.com/akss-tools/namefix/code_analyzer/contracts"
	"github.com/akss-tools/namefix/config"
	"github.com/akss-tools/namefix/constants/lipgloss"
	"github.com/akss-tools/namefix/rename_stats"
	stats_contracts "github.com/akss-tools/namefix/rename_stats/contracts"
	"github.com/akss-tools/namefix/session"
	"github.com/akss-tools/namefix/substitution_engine"
	"github.com/akss-tools/namefix/utils"
	"github.com/akss-tools/namefix/word_segmenter"
)

// RootDependencies is everything a subcommand needs, built once per invocation.
type RootDependencies struct {
	Cwd      string
	Config   *config.Config
	Logger   *pterm.Logger
	Analyzer analyzer_contracts.ICodeAnalyzer
	Backups  *backup_manager.BackupManager
	Stats    stats_contracts.IRenameStats
	Session  *session.Session
}

var rootCmd = &cobra.Command{
	Use:   "namefix",
	Short: "Rename C/C++ identifiers to a consistent naming convention",
	Long: `namefix discovers the variables, free functions and classes declared in a C/C++ project,
splits every name into words and proposes a new spelling in the configured convention.
'scan' reviews the proposal, 'apply' backs the project up and rewrites it, 'rollback'
restores the backup.

Renaming is textual: occurrences in comments and string literals are rewritten too.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		if version, _ := cmd.Flags().GetBool("version"); version {
			handleVersion(cmd)
			return
		}
		_ = cmd.Help()
	},
}

func init() {
	config.InitFlags(rootCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		os.Exit(1)
	}
}

func handleVersion(cmd *cobra.Command) {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		return
	}
	cfg, err := config.LoadConfigs(cmd.Root(), cwd)
	if err != nil {
		fmt.Println(config.DefaultConfig.Version)
		return
	}
	fmt.Println(cfg.Version)
}

func newLogger(verbose bool) *pterm.Logger {
	level := pterm.LogLevelInfo
	if verbose {
		level = pterm.LogLevelDebug
	}
	return pterm.DefaultLogger.WithWriter(os.Stderr).WithLevel(level)
}

// handleRootCommand loads the configuration and wires the session.
func handleRootCommand(cmd *cobra.Command) (*RootDependencies, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	cfg, err := config.LoadConfigs(cmd.Root(), cwd)
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg.Verbose)
	logger.Debug("configuration loaded", logger.Args("source_dir", cfg.SourceDir, "include_dir", cfg.IncludeDir, "config_file", config.ConfigFileUsed()))

	analyzer := code_analyzer.NewCodeAnalyzer(code_analyzer.Options{
		TolerateSyntaxErrors: cfg.Discovery.TolerateSyntaxErrors,
		RespectGitignore:     cfg.RespectGitignore,
		EnableCache:          cfg.EnableCache,
		CacheDir:             cfg.CacheDir,
	}, logger)

	segmenter, err := word_segmenter.NewWordSegmenter(0)
	if err != nil {
		return nil, fmt.Errorf("failed to load word dictionary: %w", err)
	}

	backups := backup_manager.NewBackupManager(cfg.SourceDir, cfg.BackupDir, logger)
	stats := rename_stats.NewRenameStats()
	fixer := clang_tidy.NewRunner(cfg.Tidy.Binary, utils.NewCommandExecutor(cfg.SourceDir), logger)

	sess, err := session.New(session.Options{
		SourceDir:   cfg.SourceDir,
		IncludeDir:  cfg.IncludeDir,
		IncludeArgs: cfg.IncludeArgs(),
		Conventions: cfg.Conventions,
	}, session.Dependencies{
		Analyzer:  analyzer,
		Segmenter: segmenter,
		Backups:   backups,
		Engine:    substitution_engine.NewEngine(logger),
		Fixer:     fixer,
		Stats:     stats,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	return &RootDependencies{
		Cwd:      cwd,
		Config:   cfg,
		Logger:   logger,
		Analyzer: analyzer,
		Backups:  backups,
		Stats:    stats,
		Session:  sess,
	}, nil
}

func newSpinner() *pterm.SpinnerPrinter {
	return pterm.DefaultSpinner.WithStyle(pterm.NewStyle(pterm.FgCyan)).
		WithSequence("⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏").
		WithDelay(100).WithRemoveWhenDone(true)
}

func stopSpinner(spinner *pterm.SpinnerPrinter) {
	if spinner == nil {
		return
	}
	_ = spinner.Stop()
	fmt.Print("\r")
}

// displayPath shortens path relative to the working directory when possible.
func displayPath(cwd, path string) string {
	rel, err := filepath.Rel(cwd, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
