// Package snapshot persists the last successfully loaded activities and
// categories as zstd-compressed JSON so the timeline can be rendered offline.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/zstd"
	"github.com/penwyp/go-habit-timeline/internal/core/model"
	"github.com/penwyp/go-habit-timeline/internal/data/source"
	"github.com/penwyp/go-habit-timeline/internal/util"
)

const FileName = "snapshot.json.zst"

var (
	ErrNoSnapshot  = errors.New("no snapshot available")
	ErrStoreClosed = errors.New("snapshot store closed")
)

// Snapshot is a full copy of one source's data.
type Snapshot struct {
	TakenAt    time.Time        `json:"taken_at"`
	Source     string           `json:"source"`
	Activities []model.Activity `json:"activities"`
	Categories []model.Category `json:"categories"`
}

// Store reads and writes the snapshot file in a directory.
type Store struct {
	dir     string
	encoder *zstd.Encoder
	decoder *zstd.Decoder

	mu     sync.Mutex
	closed bool
}

// NewStore creates a store under dir.
func NewStore(dir string) (*Store, error) {
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &Store{dir: dir, encoder: encoder, decoder: decoder}, nil
}

// Path returns the snapshot file location.
func (s *Store) Path() string {
	return filepath.Join(s.dir, FileName)
}

// Save replaces the snapshot atomically.
func (s *Store) Save(snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}

	data, err := sonic.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	compressed := s.encoder.EncodeAll(data, make([]byte, 0, len(data)/2))

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	tmp := s.Path() + ".tmp"
	if err := os.WriteFile(tmp, compressed, 0644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.Path()); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}

	util.LogDebugf("Snapshot saved: %d activities, %d bytes compressed (%d raw)", len(snap.Activities), len(compressed), len(data))
	return nil
}

// Load reads the snapshot. A missing file returns ErrNoSnapshot.
func (s *Store) Load() (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	compressed, err := os.ReadFile(s.Path())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	data, err := s.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress snapshot: %w", err)
	}

	var snap Snapshot
	if err := sonic.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

// Age reports how long ago the snapshot file was written.
func (s *Store) Age() (time.Duration, error) {
	info, err := os.Stat(s.Path())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, ErrNoSnapshot
		}
		return 0, fmt.Errorf("stat snapshot: %w", err)
	}
	return time.Since(info.ModTime()), nil
}

// Close releases the zstd encoder and decoder. It is safe to call more than once.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if err := s.encoder.Close(); err != nil {
		util.LogDebugf("Closing zstd encoder: %v", err)
	}
	s.decoder.Close()
}

// Capture loads everything from src and saves it.
func (s *Store) Capture(ctx context.Context, src source.Source) (*Snapshot, error) {
	activities, err := src.Activities(ctx, source.Query{})
	if err != nil {
		return nil, err
	}
	categories, err := src.Categories(ctx)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		TakenAt:    time.Now().UTC(),
		Source:     src.Name(),
		Activities: activities,
		Categories: categories,
	}
	if err := s.Save(snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// Source serves a snapshot through the source interface.
type Source struct {
	snap *Snapshot
}

// NewSource wraps snap.
func NewSource(snap *Snapshot) *Source {
	return &Source{snap: snap}
}

func (s *Source) Name() string { return "snapshot" }

// TakenAt reports when the snapshot was captured.
func (s *Source) TakenAt() time.Time { return s.snap.TakenAt }

func (s *Source) Activities(_ context.Context, q source.Query) ([]model.Activity, error) {
	return source.Filter(s.snap.Activities, q), nil
}

func (s *Source) Categories(_ context.Context) ([]model.Category, error) {
	categories := make([]model.Category, len(s.snap.Categories))
	copy(categories, s.snap.Categories)
	return categories, nil
}

// Fallback reads from primary, refreshing the snapshot on success and
// serving the last snapshot when primary is unavailable.
type Fallback struct {
	primary source.Source
	store   *Store
}

// NewFallback wraps primary with store.
func NewFallback(primary source.Source, store *Store) *Fallback {
	return &Fallback{primary: primary, store: store}
}

func (f *Fallback) Name() string { return f.primary.Name() }

// Unwrap returns the primary source.
func (f *Fallback) Unwrap() source.Source { return f.primary }

func (f *Fallback) Activities(ctx context.Context, q source.Query) ([]model.Activity, error) {
	activities, err := f.primary.Activities(ctx, q)
	if err == nil || !errors.Is(err, source.ErrUnavailable) {
		return activities, err
	}
	snap, loadErr := f.offline(err)
	if loadErr != nil {
		return nil, loadErr
	}
	return NewSource(snap).Activities(ctx, q)
}

func (f *Fallback) Categories(ctx context.Context) ([]model.Category, error) {
	categories, err := f.primary.Categories(ctx)
	if err == nil || !errors.Is(err, source.ErrUnavailable) {
		return categories, err
	}
	snap, loadErr := f.offline(err)
	if loadErr != nil {
		return nil, loadErr
	}
	return NewSource(snap).Categories(ctx)
}

// AddActivity never falls back; writes need the primary source.
func (f *Fallback) AddActivity(ctx context.Context, a model.Activity) (model.Activity, error) {
	w, ok := f.primary.(source.Writer)
	if !ok {
		return model.Activity{}, source.ErrReadOnly
	}
	return w.AddActivity(ctx, a)
}

// Refresh captures a new snapshot from the primary source unless the stored
// one is younger than maxAge. It reports whether a capture happened.
func (f *Fallback) Refresh(ctx context.Context, maxAge time.Duration) (bool, error) {
	if age, err := f.store.Age(); err == nil && age < maxAge {
		util.LogDebugf("Snapshot is %v old, next refresh after %v", age.Round(time.Second), maxAge)
		return false, nil
	}
	if _, err := f.store.Capture(ctx, f.primary); err != nil {
		return false, err
	}
	return true, nil
}

func (f *Fallback) offline(cause error) (*Snapshot, error) {
	snap, err := f.store.Load()
	if err != nil {
		return nil, fmt.Errorf("%w (snapshot: %v)", cause, err)
	}
	util.LogWarnf("Source unavailable, using snapshot from %s: %v", snap.TakenAt.Format(time.RFC3339), cause)
	return snap, nil
}
