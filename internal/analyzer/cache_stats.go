package analyzer

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/penwyp/go-habit-timeline/internal/util"
)

// CacheStats is an in-process metrics.Recorder for one CLI run. It counts
// cache traffic per kind and compile work so the run can log a summary.
type CacheStats struct {
	cacheHits   int64
	cacheMisses int64
	compiles    int64
	activities  int64
	compileTime int64 // nanoseconds

	mu     sync.Mutex
	byKind map[string]*kindStats
}

type kindStats struct {
	hits, misses int64
}

// NewCacheStats creates a new CacheStats instance
func NewCacheStats() *CacheStats {
	return &CacheStats{byKind: make(map[string]*kindStats)}
}

func (cs *CacheStats) kind(name string) *kindStats {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	k, ok := cs.byKind[name]
	if !ok {
		k = &kindStats{}
		cs.byKind[name] = k
	}
	return k
}

// IncRequests is a no-op; the CLI serves no requests.
func (cs *CacheStats) IncRequests(string, int) {}

// ObserveRequestDuration is a no-op; the CLI serves no requests.
func (cs *CacheStats) ObserveRequestDuration(string, time.Duration) {}

// IncCacheHits increases the cache hit count
func (cs *CacheStats) IncCacheHits(kind string) {
	atomic.AddInt64(&cs.cacheHits, 1)
	atomic.AddInt64(&cs.kind(kind).hits, 1)
}

// IncCacheMisses increases the cache miss count
func (cs *CacheStats) IncCacheMisses(kind string) {
	atomic.AddInt64(&cs.cacheMisses, 1)
	atomic.AddInt64(&cs.kind(kind).misses, 1)
}

// ObserveCompile records one compilation.
func (cs *CacheStats) ObserveCompile(duration time.Duration, activities int) {
	atomic.AddInt64(&cs.compiles, 1)
	atomic.AddInt64(&cs.activities, int64(activities))
	atomic.AddInt64(&cs.compileTime, int64(duration))
}

// GetStats returns the current statistics and hit rate
func (cs *CacheStats) GetStats() (hits, misses, compiles int64, hitRate float64) {
	hits = atomic.LoadInt64(&cs.cacheHits)
	misses = atomic.LoadInt64(&cs.cacheMisses)
	compiles = atomic.LoadInt64(&cs.compiles)

	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	return
}

// PrintFinalStats logs the run totals and the per-kind cache breakdown.
func (cs *CacheStats) PrintFinalStats() {
	hits, misses, compiles, hitRate := cs.GetStats()

	util.LogInfo(fmt.Sprintf("Run statistics: %d compiles over %d activities in %v, cache hit rate %.1f%% (%d hits/%d misses)",
		compiles,
		atomic.LoadInt64(&cs.activities),
		time.Duration(atomic.LoadInt64(&cs.compileTime)),
		hitRate, hits, misses))

	cs.mu.Lock()
	kinds := make([]string, 0, len(cs.byKind))
	for name := range cs.byKind {
		kinds = append(kinds, name)
	}
	sort.Strings(kinds)
	for _, name := range kinds {
		k := cs.byKind[name]
		util.LogDebug(fmt.Sprintf("  %s: %d hits/%d misses", name, atomic.LoadInt64(&k.hits), atomic.LoadInt64(&k.misses)))
	}
	cs.mu.Unlock()
}
