package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	ignore "github.com/sabhiram/go-gitignore"
)

// IgnoreMatcher matches file names against a compiled .gitignore. A nil matcher matches nothing.
type IgnoreMatcher struct {
	gitignore *ignore.GitIgnore
}

// Matches reports whether the path, relative to the .gitignore's directory, is ignored.
func (m *IgnoreMatcher) Matches(relativePath string) bool {
	if m == nil || m.gitignore == nil {
		return false
	}
	return m.gitignore.MatchesPath(filepath.ToSlash(relativePath))
}

type gitignoreCacheEntry struct {
	matcher *IgnoreMatcher
	modTime time.Time
}

var (
	gitignoreCache = make(map[string]*gitignoreCacheEntry)
	cacheMutex     sync.RWMutex
)

// LoadGitignore compiles <dir>/.gitignore. A missing file yields a nil matcher.
// Compiled matchers are cached until the file's modification time changes.
func LoadGitignore(dir string) (*IgnoreMatcher, error) {
	gitignorePath := filepath.Join(dir, ".gitignore")

	fileInfo, err := os.Stat(gitignorePath)
	if os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("error checking .gitignore: %w", err)
	}

	cacheMutex.RLock()
	if cached, exists := gitignoreCache[gitignorePath]; exists && fileInfo.ModTime().Equal(cached.modTime) {
		cacheMutex.RUnlock()
		return cached.matcher, nil
	}
	cacheMutex.RUnlock()

	gi, err := ignore.CompileIgnoreFile(gitignorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read .gitignore: %w", err)
	}
	matcher := &IgnoreMatcher{gitignore: gi}

	cacheMutex.Lock()
	gitignoreCache[gitignorePath] = &gitignoreCacheEntry{
		matcher: matcher,
		modTime: fileInfo.ModTime(),
	}
	cacheMutex.Unlock()

	return matcher, nil
}

// IsDefaultIgnored reports names that are never project sources: editor and backup leftovers
// and the tool's own temp files.
func IsDefaultIgnored(name string) bool {
	name = strings.ToLower(name)
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "#") {
		return true
	}
	for _, suffix := range []string{"~", ".bak", ".bkp", ".orig", ".swp", ".tmp"} {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// ClearGitignoreCache clears all cached gitignore matchers
func ClearGitignoreCache() {
	cacheMutex.Lock()
	defer cacheMutex.Unlock()
	gitignoreCache = make(map[string]*gitignoreCacheEntry)
}
