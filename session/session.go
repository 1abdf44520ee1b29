// Package session drives one scan/apply/rollback cycle over a project.
//
// A Session owns the project file set, the symbol catalog of the latest scan, the latest plan
// and the snapshot taken before substitution. Substitution is a textual heuristic: renames
// also hit comments and string literals, and the qualification and declaration guards are
// token-level checks rather than semantic ones.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/pterm/pterm"

	"github.com/akss-tools/namefix/backup_manager"
	"github.com/akss-tools/namefix/case_formatter"
	analyzer_contracts "github.com/akss-tools/namefix/code_analyzer/contracts"
	"github.com/akss-tools/namefix/code_analyzer/models"
	"github.com/akss-tools/namefix/rename_planner"
	stats_contracts "github.com/akss-tools/namefix/rename_stats/contracts"
	"github.com/akss-tools/namefix/substitution_engine"
	"github.com/akss-tools/namefix/symbol_catalog"
	"github.com/akss-tools/namefix/utils"
	segmenter_contracts "github.com/akss-tools/namefix/word_segmenter/contracts"
)

// State is the position of the session in the apply state machine.
type State int

const (
	Idle State = iota
	Snapshotting
	Snapshotted
	Substituting
	Done
	Failed
	PartiallyMutated
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Snapshotting:
		return "snapshotting"
	case Snapshotted:
		return "snapshotted"
	case Substituting:
		return "substituting"
	case Done:
		return "done"
	case Failed:
		return "failed"
	case PartiallyMutated:
		return "partially-mutated"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

var (
	// ErrNotScanned is returned by operations that need a catalog.
	ErrNotScanned = errors.New("no scan has been run in this session")
	// ErrBusy is returned when an apply is started while another one is in progress.
	ErrBusy = errors.New("an apply is already in progress")
)

// Fixer is the external formatting pass run after substitution.
type Fixer interface {
	Run(ctx context.Context, conventions case_formatter.Conventions, sourceDir, includeDir string, includeArgs []string) (*utils.CommandResult, error)
}

// Options are the per-session settings taken from the configuration.
type Options struct {
	SourceDir   string
	IncludeDir  string
	IncludeArgs []string
	Conventions case_formatter.Conventions
}

// Dependencies are the collaborators a session drives. Fixer, Stats and Logger are optional.
type Dependencies struct {
	Analyzer  analyzer_contracts.ICodeAnalyzer
	Segmenter segmenter_contracts.IWordSegmenter
	Backups   *backup_manager.BackupManager
	Engine    *substitution_engine.Engine
	Fixer     Fixer
	Stats     stats_contracts.IRenameStats
	Logger    *pterm.Logger
}

// ScanReport summarises a scan.
type ScanReport struct {
	Files           *models.ProjectFileSet
	Symbols         int
	DiscoveryErrors []error
}

// Session is not safe for concurrent use.
type Session struct {
	options Options
	deps    Dependencies
	logger  *pterm.Logger

	state    State
	files    *models.ProjectFileSet
	catalog  *symbol_catalog.Catalog
	plan     []models.Rename
	snapshot *models.BackupSnapshot
}

// New creates an idle session.
func New(options Options, deps Dependencies) (*Session, error) {
	if deps.Analyzer == nil || deps.Segmenter == nil || deps.Backups == nil || deps.Engine == nil {
		return nil, errors.New("session: analyzer, segmenter, backups and engine are required")
	}
	if err := options.Conventions.Validate(); err != nil {
		return nil, err
	}
	logger := deps.Logger
	if logger == nil {
		logger = pterm.DefaultLogger.WithWriter(io.Discard)
	}
	return &Session{options: options, deps: deps, logger: logger}, nil
}

func (s *Session) State() State {
	return s.state
}

// Files returns the file set of the latest scan, or nil.
func (s *Session) Files() *models.ProjectFileSet {
	return s.files
}

// Catalog returns the catalog of the latest scan, or nil.
func (s *Session) Catalog() *symbol_catalog.Catalog {
	return s.catalog
}

// Snapshot returns the snapshot of the latest apply or rollback, or nil.
func (s *Session) Snapshot() *models.BackupSnapshot {
	return s.snapshot
}

func (s *Session) Conventions() case_formatter.Conventions {
	return s.options.Conventions
}

// SetConventions changes the target conventions. The current plan is dropped and the next
// Plan recomputes names from the stored tokens without rescanning.
func (s *Session) SetConventions(conventions case_formatter.Conventions) error {
	if err := conventions.Validate(); err != nil {
		return err
	}
	s.options.Conventions = conventions
	s.plan = nil
	return nil
}

// Scan lists the project files and rebuilds the catalog from scratch. Per-file discovery
// errors are reported in the result and never abort the scan.
func (s *Session) Scan(ctx context.Context) (*ScanReport, error) {
	if s.inFlight() {
		return nil, ErrBusy
	}

	files, err := s.deps.Analyzer.GetProjectFiles(s.options.SourceDir, s.options.IncludeDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list project files: %w", err)
	}

	occurrences, discoveryErrs := s.deps.Analyzer.Discover(ctx, files, s.options.IncludeArgs)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, e := range discoveryErrs {
		s.logger.Warn("discovery failed", s.logger.Args("error", e))
	}

	catalog := symbol_catalog.NewCatalog(s.deps.Segmenter)
	catalog.RegisterOccurrences(occurrences)

	s.files = files
	s.catalog = catalog
	s.plan = nil
	s.state = Idle

	if s.deps.Stats != nil {
		s.deps.Stats.RecordScan(files.Len(), catalog.Len(), len(discoveryErrs))
	}
	s.logger.Info("scan complete", s.logger.Args("files", files.Len(), "symbols", catalog.Len(), "errors", len(discoveryErrs)))

	return &ScanReport{Files: files, Symbols: catalog.Len(), DiscoveryErrors: discoveryErrs}, nil
}

// Plan computes the renames for the current catalog and conventions, in discovery order.
func (s *Session) Plan() ([]models.Rename, error) {
	if s.catalog == nil {
		return nil, ErrNotScanned
	}

	plan := rename_planner.Plan(s.catalog.All(), s.options.Conventions)
	s.plan = plan

	if s.deps.Stats != nil {
		noops, flagged := 0, 0
		for _, r := range plan {
			if r.IsNoop() {
				noops++
			}
			if r.Flagged() {
				flagged++
			}
		}
		s.deps.Stats.RecordPlan(len(plan), noops, flagged)
	}

	out := make([]models.Rename, len(plan))
	copy(out, plan)
	return out, nil
}

// Preview returns the rewrite every changed file would receive, without writing.
func (s *Session) Preview() ([]substitution_engine.FileChange, error) {
	plan, err := s.currentPlan()
	if err != nil {
		return nil, err
	}
	return s.deps.Engine.Preview(s.files.Files, plan)
}

func (s *Session) currentPlan() ([]models.Rename, error) {
	if s.catalog == nil {
		return nil, ErrNotScanned
	}
	if s.plan == nil {
		if _, err := s.Plan(); err != nil {
			return nil, err
		}
	}
	return s.plan, nil
}

// Apply snapshots every project file and then rewrites them with the current plan.
// A failed snapshot leaves the session Failed and no file is touched. Once substitution has
// started it runs over every file regardless of ctx; per-file failures leave the session
// PartiallyMutated and are not rolled back.
func (s *Session) Apply(ctx context.Context) (*substitution_engine.Result, error) {
	if s.inFlight() {
		return nil, ErrBusy
	}
	plan, err := s.currentPlan()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.state = Snapshotting
	snapshot, err := s.deps.Backups.Snapshot(s.files.Files)
	if err != nil {
		s.state = Failed
		return nil, err
	}
	s.snapshot = snapshot
	s.state = Snapshotted
	s.logger.Info("snapshot created", s.logger.Args("dir", snapshot.Dir, "files", len(snapshot.Files)))

	s.state = Substituting
	result, err := s.deps.Engine.Apply(context.WithoutCancel(ctx), s.files.Files, plan)
	if s.deps.Stats != nil && result != nil {
		s.deps.Stats.RecordApply(result.FilesChanged, result.Replacements)
	}
	if err != nil {
		s.state = PartiallyMutated
		return result, err
	}

	s.state = Done
	s.logger.Info("apply complete", s.logger.Args("files_changed", result.FilesChanged, "replacements", result.Replacements))
	return result, nil
}

// Rollback restores the snapshot of the latest apply, or the backup left on disk by an
// earlier run. Files that cannot be matched to a live file are returned as warnings.
func (s *Session) Rollback() ([]backup_manager.RestoreWarning, error) {
	if s.inFlight() {
		return nil, ErrBusy
	}

	snapshot := s.snapshot
	if snapshot == nil {
		loaded, err := s.deps.Backups.Load()
		if err != nil {
			return nil, err
		}
		snapshot = loaded
	}

	warnings, err := s.deps.Backups.Restore(snapshot, s.options.SourceDir, s.options.IncludeDir)
	if err != nil {
		return warnings, fmt.Errorf("restore incomplete: %w", err)
	}

	s.snapshot = snapshot
	s.state = Idle
	s.logger.Info("rollback complete", s.logger.Args("files", len(snapshot.Files), "warnings", len(warnings)))
	return warnings, nil
}

// RunFixer invokes the external fixer once. Its exit status is logged and returned but not
// interpreted. Without a configured fixer it does nothing.
func (s *Session) RunFixer(ctx context.Context) (*utils.CommandResult, error) {
	if s.deps.Fixer == nil {
		return nil, nil
	}
	result, err := s.deps.Fixer.Run(ctx, s.options.Conventions, s.options.SourceDir, s.options.IncludeDir, s.options.IncludeArgs)
	if err != nil {
		return nil, fmt.Errorf("fixer failed to run: %w", err)
	}
	if result != nil {
		s.logger.Debug("fixer finished", s.logger.Args("exit_code", result.ExitCode, "duration", result.Duration))
	}
	return result, nil
}

func (s *Session) inFlight() bool {
	return s.state == Snapshotting || s.state == Snapshotted || s.state == Substituting
}
