package analyzer

import (
	"sync"
	"testing"
	"time"

	"github.com/penwyp/go-habit-timeline/internal/metrics"
	"github.com/stretchr/testify/assert"
)

var _ metrics.Recorder = (*CacheStats)(nil)

func TestCacheStats_HitRate(t *testing.T) {
	cs := NewCacheStats()
	hits, misses, compiles, rate := cs.GetStats()
	assert.Zero(t, hits)
	assert.Zero(t, misses)
	assert.Zero(t, compiles)
	assert.Zero(t, rate)

	cs.IncCacheHits("activities")
	cs.IncCacheHits("activities")
	cs.IncCacheHits("categories")
	cs.IncCacheMisses("categories")
	cs.ObserveCompile(time.Millisecond, 12)

	hits, misses, compiles, rate = cs.GetStats()
	assert.EqualValues(t, 3, hits)
	assert.EqualValues(t, 1, misses)
	assert.EqualValues(t, 1, compiles)
	assert.InDelta(t, 75.0, rate, 0.001)

	assert.EqualValues(t, 2, cs.byKind["activities"].hits)
	assert.EqualValues(t, 1, cs.byKind["categories"].misses)

	assert.NotPanics(t, cs.PrintFinalStats)
}

func TestCacheStats_Concurrent(t *testing.T) {
	cs := NewCacheStats()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cs.IncCacheHits("activities")
			cs.IncCacheMisses("categories")
		}()
	}
	wg.Wait()

	hits, misses, _, rate := cs.GetStats()
	assert.EqualValues(t, 50, hits)
	assert.EqualValues(t, 50, misses)
	assert.InDelta(t, 50.0, rate, 0.001)
}
