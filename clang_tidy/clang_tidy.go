// Package clang_tidy runs clang-tidy's readability-identifier-naming check as a best-effort
// formatting pass after the rename.
package clang_tidy

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/pterm/pterm"
	"go.yaml.in/yaml/v4"

	"github.com/akss-tools/namefix/case_formatter"
	"github.com/akss-tools/namefix/code_analyzer/models"
	"github.com/akss-tools/namefix/utils"
)

const (
	DefaultBinary = "clang-tidy"
	CheckName     = "readability-identifier-naming"
)

// CheckOption is one clang-tidy check option.
type CheckOption struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

// Config is the inline configuration passed with -config.
type Config struct {
	Checks       string        `yaml:"Checks"`
	CheckOptions []CheckOption `yaml:"CheckOptions"`
}

var optionNames = map[models.SymbolKind]string{
	models.Variable: "VariableCase",
	models.Function: "FunctionCase",
	models.Class:    "ClassCase",
}

// BuildConfig maps the configured conventions onto identifier-naming options.
func BuildConfig(conventions case_formatter.Conventions) Config {
	cfg := Config{Checks: CheckName}
	for _, kind := range models.SymbolKinds {
		cfg.CheckOptions = append(cfg.CheckOptions, CheckOption{
			Key:   CheckName + "." + optionNames[kind],
			Value: string(conventions.For(kind)),
		})
	}
	return cfg
}

// Marshal serialises the config as YAML.
func (c Config) Marshal() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to encode clang-tidy config: %w", err)
	}
	return string(data), nil
}

// Runner invokes clang-tidy.
type Runner struct {
	binary   string
	executor *utils.CommandExecutor
	logger   *pterm.Logger
}

// NewRunner returns a runner for binary (DefaultBinary if empty).
func NewRunner(binary string, executor *utils.CommandExecutor, logger *pterm.Logger) *Runner {
	if binary == "" {
		binary = DefaultBinary
	}
	if executor == nil {
		executor = utils.NewCommandExecutor("")
	}
	if logger == nil {
		logger = pterm.DefaultLogger.WithWriter(io.Discard)
	}
	return &Runner{binary: binary, executor: executor, logger: logger}
}

// Args builds the clang-tidy argument list. Source files are the *.cpp files directly in
// sourceDir, expanded here since no shell is involved.
func Args(cfg Config, sourceDir, includeDir string, includeArgs []string) ([]string, error) {
	encoded, err := cfg.Marshal()
	if err != nil {
		return nil, err
	}

	sources, err := filepath.Glob(filepath.Join(sourceDir, "*.cpp"))
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	sort.Strings(sources)

	args := []string{"-config=" + encoded}
	args = append(args, sources...)
	args = append(args, "-fix-errors")
	if includeDir != "" {
		args = append(args, `--header-filter=.*`+regexp.QuoteMeta(includeDir)+`.*\.(h|hpp)`)
	}
	args = append(args, "--")
	args = append(args, includeArgs...)
	return args, nil
}

// Run applies the check to the project. The exit status is logged and otherwise ignored;
// an error means clang-tidy could not be run at all. Nothing runs when there are no sources.
func (r *Runner) Run(ctx context.Context, conventions case_formatter.Conventions, sourceDir, includeDir string, includeArgs []string) (*utils.CommandResult, error) {
	args, err := Args(BuildConfig(conventions), sourceDir, includeDir, includeArgs)
	if err != nil {
		return nil, err
	}
	if !hasSources(args) {
		r.logger.Info("no C++ sources for clang-tidy", r.logger.Args("dir", sourceDir))
		return nil, nil
	}

	r.logger.Debug("running clang-tidy", r.logger.Args("binary", r.binary, "args", len(args)))
	res, err := r.executor.Run(ctx, r.binary, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to run %s: %w", r.binary, err)
	}

	r.logger.Info("clang-tidy finished", r.logger.Args("exit_code", res.ExitCode, "duration", res.Duration))
	return res, nil
}

func hasSources(args []string) bool {
	return len(args) > 1 && args[1] != "-fix-errors"
}
