package source

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/penwyp/go-habit-timeline/internal/core/model"
	"github.com/penwyp/go-habit-timeline/internal/util"
)

const (
	ActivitiesFile = "activities"
	CategoriesFile = "categories"
)

// FileSource reads activities.json and categories.json from a data
// directory. Either file may instead be a .jsonl file with one record per
// line. Missing files read as empty lists.
type FileSource struct {
	dir string
	mu  sync.Mutex
}

// NewFileSource creates a source over dir.
func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

func (s *FileSource) Name() string { return model.SourceFile }

// Dir returns the data directory.
func (s *FileSource) Dir() string { return s.dir }

func (s *FileSource) Activities(_ context.Context, q Query) ([]model.Activity, error) {
	activities, err := loadRecords[model.Activity](s.dir, ActivitiesFile)
	if err != nil {
		return nil, err
	}
	return Filter(activities, q), nil
}

func (s *FileSource) Categories(_ context.Context) ([]model.Category, error) {
	return loadRecords[model.Category](s.dir, CategoriesFile)
}

// Version combines the fingerprints of both data files.
func (s *FileSource) Version() string {
	parts := make([]string, 0, 2)
	for _, base := range []string{ActivitiesFile, CategoriesFile} {
		path, _ := resolve(s.dir, base)
		if path == "" {
			parts = append(parts, "-")
			continue
		}
		fp, err := util.CalculateFileFingerprint(path)
		if err != nil {
			parts = append(parts, "!")
			continue
		}
		parts = append(parts, fp)
	}
	return strings.Join(parts, "/")
}

// AddActivity assigns an ID and creation time and appends the activity.
// An empty directory is seeded with the default categories first.
func (s *FileSource) AddActivity(_ context.Context, a model.Activity) (model.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return model.Activity{}, fmt.Errorf("create data dir: %w", err)
	}
	if err := s.seedCategories(); err != nil {
		return model.Activity{}, err
	}

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt == "" {
		a.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	path, jsonl := resolve(s.dir, ActivitiesFile)
	if jsonl {
		if err := appendLine(path, a); err != nil {
			return model.Activity{}, err
		}
	} else {
		existing, err := loadRecords[model.Activity](s.dir, ActivitiesFile)
		if err != nil {
			return model.Activity{}, err
		}
		if err := writeArray(filepath.Join(s.dir, ActivitiesFile+".json"), append(existing, a)); err != nil {
			return model.Activity{}, err
		}
	}

	util.LogInfo("activity added", util.F("id", a.ID), util.F("date", a.Date), util.F("category", a.CategoryID))
	return a, nil
}

func (s *FileSource) seedCategories() error {
	if path, _ := resolve(s.dir, CategoriesFile); path != "" {
		return nil
	}
	util.LogInfof("Seeding default categories in %s", s.dir)
	return writeArray(filepath.Join(s.dir, CategoriesFile+".json"), model.DefaultCategories())
}

// resolve finds base.json or base.jsonl in dir, preferring .json.
func resolve(dir, base string) (path string, jsonl bool) {
	for _, ext := range []string{".json", ".jsonl"} {
		p := filepath.Join(dir, base+ext)
		if _, err := os.Stat(p); err == nil {
			return p, ext == ".jsonl"
		}
	}
	return "", false
}

func loadRecords[T any](dir, base string) ([]T, error) {
	path, jsonl := resolve(dir, base)
	if path == "" {
		util.LogDebugf("No %s file in %s", base, dir)
		return []T{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []T{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if jsonl || !startsWithArray(data) {
		return decodeLines[T](path, data)
	}

	var records []T
	if err := sonic.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

func startsWithArray(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '['
}

// decodeLines parses one JSON record per line, skipping lines that do not decode.
func decodeLines[T any](path string, data []byte) ([]T, error) {
	records := []T{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var record T
		if err := sonic.Unmarshal(line, &record); err != nil {
			util.LogDebugf("Skip invalid JSON line %s:%d - %v", path, lineNo, err)
			continue
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	return records, nil
}

// writeArray replaces path atomically with the JSON encoding of records.
func writeArray[T any](path string, records []T) error {
	data, err := sonic.ConfigStd.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

func appendLine(path string, record any) error {
	data, err := sonic.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("append %s: %w", path, err)
	}
	return nil
}
