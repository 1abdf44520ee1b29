package code_analyzer

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/zeebo/xxh3"

	"github.com/akss-tools/namefix/code_analyzer/models"
)

const (
	// DefaultCacheDirName is created in the working directory when no cache dir is configured.
	DefaultCacheDirName = ".namefix_cache"

	cacheFileSuffix = ".cache"
	cacheMaxAge     = 7 * 24 * time.Hour
)

// CacheEntry is the discovery result of one file, valid while the file's size and
// modification time are unchanged.
type CacheEntry struct {
	Path        string
	Variant     string
	Occurrences []models.Occurrence
	Timestamp   time.Time
	FileSize    int64
	ModTime     time.Time
}

// FileCache stores one gob-encoded entry per (file, variant).
type FileCache struct {
	cacheDir string
	mutex    sync.RWMutex
}

// CacheStats tracks cache performance metrics
type CacheStats struct {
	TotalRequests int64
	CacheHits     int64
	CacheMisses   int64
	LastResetTime time.Time
	mutex         sync.RWMutex
}

// CacheManager provides discovery caching on top of FileCache.
type CacheManager struct {
	fileCache *FileCache
	stats     *CacheStats
}

// NewCacheManager creates a new cache manager instance
// If cacheDir is empty, it defaults to DefaultCacheDirName in the current working directory
func NewCacheManager(cacheDir string) (*CacheManager, error) {
	if cacheDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current working directory: %w", err)
		}
		cacheDir = filepath.Join(cwd, DefaultCacheDirName)
	}

	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	cacheManager := &CacheManager{
		fileCache: &FileCache{cacheDir: cacheDir},
		stats: &CacheStats{
			LastResetTime: time.Now(),
		},
	}

	if _, err := cacheManager.CleanExpiredCache(cacheMaxAge); err != nil {
		return nil, err
	}

	return cacheManager, nil
}

// Dir returns the cache directory.
func (cm *CacheManager) Dir() string {
	return cm.fileCache.cacheDir
}

// generateCacheKey names the cache file of a (file, variant) pair.
func (fc *FileCache) generateCacheKey(filePath, variant string) string {
	if abs, err := filepath.Abs(filePath); err == nil {
		filePath = abs
	}
	return fmt.Sprintf("%016x%s", xxh3.HashString(filePath+"\x00"+variant), cacheFileSuffix)
}

func (fc *FileCache) getCachePath(cacheKey string) string {
	return filepath.Join(fc.cacheDir, cacheKey)
}

// isFileChanged checks if a file has been modified since last cache
func (fc *FileCache) isFileChanged(filePath string, entry *CacheEntry) (bool, error) {
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return true, err
	}

	if !fileInfo.ModTime().Equal(entry.ModTime) || fileInfo.Size() != entry.FileSize {
		return true, nil
	}

	return false, nil
}

func readEntry(cachePath string) (*CacheEntry, error) {
	data, err := os.ReadFile(cachePath)
	if err != nil {
		return nil, err
	}
	var entry CacheEntry
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Get returns the entry for filePath if present and still valid. Stale entries are removed.
func (fc *FileCache) Get(filePath, variant string) (*CacheEntry, bool) {
	fc.mutex.RLock()
	defer fc.mutex.RUnlock()

	cachePath := fc.getCachePath(fc.generateCacheKey(filePath, variant))
	entry, err := readEntry(cachePath)
	if err != nil {
		return nil, false
	}
	if entry.Variant != variant {
		return nil, false
	}

	changed, err := fc.isFileChanged(filePath, entry)
	if err != nil || changed {
		os.Remove(cachePath)
		return nil, false
	}

	return entry, true
}

// Set stores occurrences for filePath with its current size and modification time.
func (fc *FileCache) Set(filePath, variant string, occurrences []models.Occurrence) error {
	fc.mutex.Lock()
	defer fc.mutex.Unlock()

	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return fmt.Errorf("failed to get file info: %w", err)
	}

	entry := CacheEntry{
		Path:        filePath,
		Variant:     variant,
		Occurrences: occurrences,
		Timestamp:   time.Now(),
		FileSize:    fileInfo.Size(),
		ModTime:     fileInfo.ModTime(),
	}

	var buffer bytes.Buffer
	if err := gob.NewEncoder(&buffer).Encode(entry); err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	cachePath := fc.getCachePath(fc.generateCacheKey(filePath, variant))
	if err := os.WriteFile(cachePath, buffer.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	return nil
}

// Delete removes a cache entry
func (fc *FileCache) Delete(filePath, variant string) error {
	fc.mutex.Lock()
	defer fc.mutex.Unlock()

	cachePath := fc.getCachePath(fc.generateCacheKey(filePath, variant))
	if err := os.Remove(cachePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete cache file: %w", err)
	}

	return nil
}

// Clear removes the cache directory
func (fc *FileCache) Clear() error {
	fc.mutex.Lock()
	defer fc.mutex.Unlock()

	return os.RemoveAll(fc.cacheDir)
}

// GetDiscoveryCache returns the cached declarations of filePath.
func (cm *CacheManager) GetDiscoveryCache(filePath, variant string) ([]models.Occurrence, bool) {
	entry, found := cm.fileCache.Get(filePath, variant)
	if !found {
		cm.recordCacheMiss()
		return nil, false
	}

	cm.recordCacheHit()
	occurrences := make([]models.Occurrence, len(entry.Occurrences))
	copy(occurrences, entry.Occurrences)
	return occurrences, true
}

// SetDiscoveryCache stores the declarations of filePath.
func (cm *CacheManager) SetDiscoveryCache(filePath, variant string, occurrences []models.Occurrence) error {
	return cm.fileCache.Set(filePath, variant, occurrences)
}

// StorageStats describes the cache directory on disk.
type StorageStats struct {
	Dir       string
	Files     int
	TotalSize int64
	Oldest    time.Time
	Newest    time.Time
}

// GetCacheStats returns cache storage statistics
func (cm *CacheManager) GetCacheStats() (*StorageStats, error) {
	cm.fileCache.mutex.RLock()
	defer cm.fileCache.mutex.RUnlock()

	entries, err := os.ReadDir(cm.fileCache.cacheDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}

	stats := &StorageStats{Dir: cm.fileCache.cacheDir}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), cacheFileSuffix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		stats.Files++
		stats.TotalSize += info.Size()
		if stats.Oldest.IsZero() || info.ModTime().Before(stats.Oldest) {
			stats.Oldest = info.ModTime()
		}
		if info.ModTime().After(stats.Newest) {
			stats.Newest = info.ModTime()
		}
	}

	return stats, nil
}

// CleanExpiredCache removes entries older than maxAge and returns how many were removed.
func (cm *CacheManager) CleanExpiredCache(maxAge time.Duration) (int, error) {
	cm.fileCache.mutex.Lock()
	defer cm.fileCache.mutex.Unlock()

	entries, err := os.ReadDir(cm.fileCache.cacheDir)
	if err != nil {
		return 0, fmt.Errorf("failed to read cache directory: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), cacheFileSuffix) {
			continue
		}

		cachePath := filepath.Join(cm.fileCache.cacheDir, e.Name())
		entry, err := readEntry(cachePath)
		if err != nil || entry.Timestamp.Before(cutoff) {
			if os.Remove(cachePath) == nil {
				removed++
			}
		}
	}

	return removed, nil
}

// ClearCache removes the whole cache directory.
func (cm *CacheManager) ClearCache() error {
	if err := cm.fileCache.Clear(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}
