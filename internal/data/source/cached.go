package source

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/coocood/freecache"
	"github.com/klauspost/compress/zstd"
	"github.com/penwyp/go-habit-timeline/internal/core/model"
	"github.com/penwyp/go-habit-timeline/internal/metrics"
	"github.com/penwyp/go-habit-timeline/internal/util"
)

const (
	minCacheBytes = 1024 * 1024

	// freecache refuses entries larger than a quarter of one of its 256
	// segments. keyReserve leaves room for the key and entry header.
	segmentFraction = 1024
	keyReserve      = 512
)

// CachedSource keeps recent listings of an inner source in a freecache
// arena for ttl. Entries are keyed on the inner source's Version when it
// has one, so an edited data file is picked up before the TTL runs out.
//
// Values are zstd-compressed JSON. A value that still exceeds freecache's
// per-entry limit is split into chunks stored under "<key>#<n>", with a
// header entry holding the chunk count; a missing chunk reads as a miss.
type CachedSource struct {
	inner     Source
	cache     *freecache.Cache
	ttl       int
	chunkSize int
	metrics   metrics.Recorder
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
}

// NewCachedSource wraps inner. A non-positive ttl disables caching and
// returns inner unchanged.
func NewCachedSource(inner Source, ttl time.Duration, sizeMB int, rec metrics.Recorder) Source {
	if ttl <= 0 {
		util.LogDebug("Source cache disabled")
		return inner
	}
	if rec == nil {
		rec = metrics.Noop()
	}

	size := max(sizeMB*1024*1024, minCacheBytes)
	seconds := max(int(ttl.Seconds()), 1)
	util.LogDebugf("Source cache initialized: %d bytes, TTL=%ds", size, seconds)

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		util.LogWarnf("Source cache disabled, zstd encoder: %v", err)
		return inner
	}
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		encoder.Close()
		util.LogWarnf("Source cache disabled, zstd decoder: %v", err)
		return inner
	}

	return &CachedSource{
		inner:     inner,
		cache:     freecache.NewCache(size),
		ttl:       seconds,
		chunkSize: size/segmentFraction - keyReserve,
		metrics:   rec,
		encoder:   encoder,
		decoder:   decoder,
	}
}

func (s *CachedSource) Name() string { return s.inner.Name() }

// Unwrap returns the wrapped source.
func (s *CachedSource) Unwrap() Source { return s.inner }

func (s *CachedSource) Activities(ctx context.Context, q Query) ([]model.Activity, error) {
	key := s.key("activities", q.Key())
	var activities []model.Activity
	if s.get(key, "activities", &activities) {
		return activities, nil
	}

	activities, err := s.inner.Activities(ctx, q)
	if err != nil {
		return nil, err
	}
	s.set(key, activities)
	return activities, nil
}

func (s *CachedSource) Categories(ctx context.Context) ([]model.Category, error) {
	key := s.key("categories", "")
	var categories []model.Category
	if s.get(key, "categories", &categories) {
		return categories, nil
	}

	categories, err := s.inner.Categories(ctx)
	if err != nil {
		return nil, err
	}
	s.set(key, categories)
	return categories, nil
}

// AddActivity writes through to the inner source and drops every cached
// listing.
func (s *CachedSource) AddActivity(ctx context.Context, a model.Activity) (model.Activity, error) {
	w, ok := s.inner.(Writer)
	if !ok {
		return model.Activity{}, ErrReadOnly
	}
	created, err := w.AddActivity(ctx, a)
	if err != nil {
		return model.Activity{}, err
	}
	s.Invalidate()
	return created, nil
}

// Invalidate empties the cache.
func (s *CachedSource) Invalidate() {
	s.cache.Clear()
}

// Close releases the zstd encoder and decoder.
func (s *CachedSource) Close() {
	s.encoder.Close()
	s.decoder.Close()
}

func (s *CachedSource) key(kind, suffix string) []byte {
	version := ""
	if v, ok := s.inner.(Versioned); ok {
		version = v.Version()
	}
	return []byte(kind + "#" + suffix + "#" + version)
}

func (s *CachedSource) get(key []byte, kind string, out any) bool {
	data, ok := s.load(key)
	if !ok {
		s.metrics.IncCacheMisses(kind)
		return false
	}
	if err := sonic.Unmarshal(data, out); err != nil {
		util.LogDebugf("Dropping undecodable cache entry %s: %v", key, err)
		s.cache.Del(key)
		s.metrics.IncCacheMisses(kind)
		return false
	}
	s.metrics.IncCacheHits(kind)
	return true
}

// load reassembles and decompresses the chunks stored under key.
func (s *CachedSource) load(key []byte) ([]byte, bool) {
	header, err := s.cache.Get(key)
	if err != nil || len(header) != 4 {
		return nil, false
	}
	chunks := int(binary.BigEndian.Uint32(header))

	var compressed []byte
	for i := range chunks {
		part, err := s.cache.Get(chunkKey(key, i))
		if err != nil {
			return nil, false
		}
		compressed = append(compressed, part...)
	}

	data, err := s.decoder.DecodeAll(compressed, nil)
	if err != nil {
		util.LogDebugf("Dropping corrupt cache entry %s: %v", key, err)
		s.cache.Del(key)
		return nil, false
	}
	return data, true
}

func (s *CachedSource) set(key []byte, value any) {
	data, err := sonic.Marshal(value)
	if err != nil {
		return
	}
	compressed := s.encoder.EncodeAll(data, make([]byte, 0, len(data)/4))

	chunks := 0
	for start := 0; start < len(compressed); start += s.chunkSize {
		end := min(start+s.chunkSize, len(compressed))
		if err := s.cache.Set(chunkKey(key, chunks), compressed[start:end], s.ttl); err != nil {
			util.LogWarnf("Cache set failed for %s: %v", key, err)
			return
		}
		chunks++
	}

	header := make([]byte, 4)
	binary.BigEndian.PutUint32(header, uint32(chunks))
	if err := s.cache.Set(key, header, s.ttl); err != nil {
		util.LogWarnf("Cache set failed for %s: %v", key, err)
	}
}

func chunkKey(key []byte, i int) []byte {
	return fmt.Appendf(nil, "%s#%d", key, i)
}
