// Package backup_manager keeps a verbatim copy of the project files taken right before a
// rename is applied, and puts it back on rollback.
package backup_manager

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pterm/pterm"
	"github.com/zeebo/xxh3"

	"github.com/akss-tools/namefix/code_analyzer/models"
	"github.com/akss-tools/namefix/utils"
)

const (
	// DefaultDirName is the backup directory created inside the source directory.
	DefaultDirName = ".linter_backups"

	// ManifestName is the snapshot index stored next to the copies.
	ManifestName = ".namefix-manifest.json"
)

// ErrNoBackup is returned when there is nothing to load or restore.
var ErrNoBackup = errors.New("no backup found")

// SnapshotError reports a failure to build a backup. The previous backup, if any, is intact.
type SnapshotError struct {
	Path string
	Err  error
}

func (e *SnapshotError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("snapshot failed: %v", e.Err)
	}
	return fmt.Sprintf("snapshot failed at %s: %v", e.Path, e.Err)
}

func (e *SnapshotError) Unwrap() error {
	return e.Err
}

// RestoreWarning reports a backed-up file that could not be put back. Restore continues.
type RestoreWarning struct {
	Name   string
	Reason string
}

func (w RestoreWarning) Error() string {
	return fmt.Sprintf("%s: %s", w.Name, w.Reason)
}

// Restore warning reasons
const (
	ReasonNoLiveFile   = "no matching file in source or include directory"
	ReasonHashMismatch = "backup copy does not match its recorded hash"
	ReasonUnreadable   = "backup copy cannot be read"
)

// Stats describes the backup on disk.
type Stats struct {
	Dir       string
	Files     int
	Bytes     int64
	CreatedAt time.Time
}

// BackupManager owns the backup directory of one source root.
type BackupManager struct {
	sourceDir string
	dir       string
	logger    *pterm.Logger
}

// NewBackupManager returns a manager for <sourceDir>/<dirName>. An empty dirName uses
// DefaultDirName.
func NewBackupManager(sourceDir, dirName string, logger *pterm.Logger) *BackupManager {
	if dirName == "" {
		dirName = DefaultDirName
	}
	if logger == nil {
		logger = pterm.DefaultLogger.WithWriter(io.Discard)
	}
	return &BackupManager{
		sourceDir: sourceDir,
		dir:       filepath.Join(sourceDir, dirName),
		logger:    logger,
	}
}

// Dir returns the backup directory.
func (m *BackupManager) Dir() string {
	return m.dir
}

// HashBytes is the content hash recorded in the manifest.
func HashBytes(data []byte) string {
	return fmt.Sprintf("%016x", xxh3.Hash(data))
}

// Snapshot copies files flat into the backup directory, replacing any previous backup.
// The copy is built in a staging directory and only swapped in once complete.
func (m *BackupManager) Snapshot(files []string) (*models.BackupSnapshot, error) {
	seen := make(map[string]string, len(files))
	for _, f := range files {
		name := filepath.Base(f)
		if prev, ok := seen[name]; ok {
			return nil, &SnapshotError{
				Path: f,
				Err:  fmt.Errorf("basename %q is shared with %s and cannot be stored in a flat backup", name, prev),
			}
		}
		seen[name] = f
	}

	staging, err := os.MkdirTemp(filepath.Dir(m.dir), filepath.Base(m.dir)+".staging-*")
	if err != nil {
		return nil, &SnapshotError{Path: m.dir, Err: err}
	}

	snapshot := &models.BackupSnapshot{
		Dir:        m.dir,
		SourceRoot: m.sourceDir,
		CreatedAt:  time.Now().UTC(),
	}

	fail := func(path string, err error) (*models.BackupSnapshot, error) {
		os.RemoveAll(staging)
		m.logger.Error("snapshot failed", m.logger.Args("path", path, "error", err))
		return nil, &SnapshotError{Path: path, Err: err}
	}

	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return fail(f, err)
		}
		name := filepath.Base(f)
		if err := os.WriteFile(filepath.Join(staging, name), data, 0o644); err != nil {
			return fail(f, err)
		}
		abs, err := filepath.Abs(f)
		if err != nil {
			abs = f
		}
		snapshot.Files = append(snapshot.Files, models.FileSnapshot{
			Name:         name,
			OriginalPath: abs,
			Size:         int64(len(data)),
			Hash:         HashBytes(data),
		})
	}

	manifest, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fail(staging, err)
	}
	if err := os.WriteFile(filepath.Join(staging, ManifestName), manifest, 0o644); err != nil {
		return fail(staging, err)
	}

	if err := m.swapIn(staging); err != nil {
		return fail(m.dir, err)
	}

	m.logger.Debug("snapshot created", m.logger.Args("dir", m.dir, "files", len(snapshot.Files)))
	return snapshot, nil
}

// swapIn replaces the backup directory with staging, restoring the old one on failure.
func (m *BackupManager) swapIn(staging string) error {
	previous := ""
	if _, err := os.Stat(m.dir); err == nil {
		previous = m.dir + ".previous"
		if err := os.RemoveAll(previous); err != nil {
			return err
		}
		if err := os.Rename(m.dir, previous); err != nil {
			return err
		}
	}

	if err := os.Rename(staging, m.dir); err != nil {
		if previous != "" {
			os.Rename(previous, m.dir)
		}
		return err
	}

	if previous != "" {
		if err := os.RemoveAll(previous); err != nil {
			m.logger.Warn("failed to remove previous backup", m.logger.Args("dir", previous, "error", err))
		}
	}
	return nil
}

// Load reads the current backup. Directories without a manifest are listed as-is.
func (m *BackupManager) Load() (*models.BackupSnapshot, error) {
	info, err := os.Stat(m.dir)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && !info.IsDir()) {
		return nil, ErrNoBackup
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	data, err := os.ReadFile(filepath.Join(m.dir, ManifestName))
	switch {
	case err == nil:
		var snapshot models.BackupSnapshot
		if err := json.Unmarshal(data, &snapshot); err != nil {
			return nil, fmt.Errorf("failed to decode backup manifest: %w", err)
		}
		snapshot.Dir = m.dir
		return &snapshot, nil
	case errors.Is(err, fs.ErrNotExist):
		return m.listDir(info.ModTime())
	default:
		return nil, fmt.Errorf("failed to read backup manifest: %w", err)
	}
}

func (m *BackupManager) listDir(created time.Time) (*models.BackupSnapshot, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list backup directory: %w", err)
	}

	snapshot := &models.BackupSnapshot{Dir: m.dir, SourceRoot: m.sourceDir, CreatedAt: created}
	for _, e := range entries {
		if !e.Type().IsRegular() || e.Name() == ManifestName {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", e.Name(), err)
		}
		snapshot.Files = append(snapshot.Files, models.FileSnapshot{Name: e.Name(), Size: info.Size()})
	}
	sort.Slice(snapshot.Files, func(i, j int) bool { return snapshot.Files[i].Name < snapshot.Files[j].Name })
	return snapshot, nil
}

// Restore writes every captured file back over <sourceDir>/<name>, or <includeDir>/<name>
// when the source directory has no such file. Files found in neither place are reported as
// warnings. Write failures are returned joined after all files were attempted.
func (m *BackupManager) Restore(snapshot *models.BackupSnapshot, sourceDir, includeDir string) ([]RestoreWarning, error) {
	if snapshot == nil {
		return nil, ErrNoBackup
	}

	var warnings []RestoreWarning
	var errs []error
	warn := func(name, reason string) {
		m.logger.Warn("restore skipped file", m.logger.Args("file", name, "reason", reason))
		warnings = append(warnings, RestoreWarning{Name: name, Reason: reason})
	}

	for _, f := range snapshot.Files {
		data, err := os.ReadFile(filepath.Join(snapshot.Dir, f.Name))
		if err != nil {
			warn(f.Name, ReasonUnreadable)
			continue
		}
		if f.Hash != "" && HashBytes(data) != f.Hash {
			warn(f.Name, ReasonHashMismatch)
			continue
		}

		target := liveTarget(f.Name, sourceDir, includeDir)
		if target == "" {
			warn(f.Name, ReasonNoLiveFile)
			continue
		}
		if err := utils.WriteFileAtomic(target, data, 0o644); err != nil {
			errs = append(errs, err)
			continue
		}
		m.logger.Debug("restored file", m.logger.Args("file", target))
	}

	return warnings, errors.Join(errs...)
}

func liveTarget(name, sourceDir, includeDir string) string {
	for _, dir := range []string{sourceDir, includeDir} {
		if dir == "" {
			continue
		}
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			return p
		}
	}
	return ""
}

// Discard deletes the backup directory. A missing directory is not an error.
func (m *BackupManager) Discard() error {
	if err := os.RemoveAll(m.dir); err != nil {
		return fmt.Errorf("failed to remove backup directory: %w", err)
	}
	return nil
}

// Stats summarises the current backup.
func (m *BackupManager) Stats() (*Stats, error) {
	snapshot, err := m.Load()
	if err != nil {
		return nil, err
	}
	stats := &Stats{Dir: m.dir, Files: len(snapshot.Files), CreatedAt: snapshot.CreatedAt}
	for _, f := range snapshot.Files {
		stats.Bytes += f.Size
	}
	return stats, nil
}
