package code_analyzer

import (
	"time"
)

// PerformanceStats is a point-in-time copy of the cache counters.
type PerformanceStats struct {
	TotalRequests int64
	CacheHits     int64
	CacheMisses   int64
	Uptime        time.Duration
}

// HitRate returns the percentage of requests served from the cache.
func (s PerformanceStats) HitRate() float64 {
	if s.TotalRequests == 0 {
		return 0
	}
	return float64(s.CacheHits) / float64(s.TotalRequests) * 100
}

// recordCacheHit increments cache hit counter
func (cm *CacheManager) recordCacheHit() {
	if cm.stats == nil {
		return
	}
	cm.stats.mutex.Lock()
	defer cm.stats.mutex.Unlock()
	cm.stats.TotalRequests++
	cm.stats.CacheHits++
}

// recordCacheMiss increments cache miss counter
func (cm *CacheManager) recordCacheMiss() {
	if cm.stats == nil {
		return
	}
	cm.stats.mutex.Lock()
	defer cm.stats.mutex.Unlock()
	cm.stats.TotalRequests++
	cm.stats.CacheMisses++
}

// GetPerformanceStats returns the hit and miss counters since the last reset.
func (cm *CacheManager) GetPerformanceStats() PerformanceStats {
	if cm.stats == nil {
		return PerformanceStats{}
	}

	cm.stats.mutex.RLock()
	defer cm.stats.mutex.RUnlock()

	return PerformanceStats{
		TotalRequests: cm.stats.TotalRequests,
		CacheHits:     cm.stats.CacheHits,
		CacheMisses:   cm.stats.CacheMisses,
		Uptime:        time.Since(cm.stats.LastResetTime),
	}
}

// ResetPerformanceStats resets all performance counters
func (cm *CacheManager) ResetPerformanceStats() {
	if cm.stats == nil {
		return
	}
	cm.stats.mutex.Lock()
	defer cm.stats.mutex.Unlock()

	cm.stats.TotalRequests = 0
	cm.stats.CacheHits = 0
	cm.stats.CacheMisses = 0
	cm.stats.LastResetTime = time.Now()
}
