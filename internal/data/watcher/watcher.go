// Package watcher reports changes to the activity and category files in a
// local data directory.
package watcher

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/penwyp/go-habit-timeline/internal/core/model"
	"github.com/penwyp/go-habit-timeline/internal/util"
)

const DefaultDebounce = 200 * time.Millisecond

// FileWatcher emits one FileEvent per burst of writes to a .json or .jsonl
// file in the watched directories. Temporary files are ignored.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	events   chan model.FileEvent
	debounce time.Duration
	done     chan struct{}
	once     sync.Once
	wg       sync.WaitGroup
}

// NewFileWatcher starts watching dirs. A zero debounce uses DefaultDebounce.
func NewFileWatcher(dirs []string, debounce time.Duration) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw := &FileWatcher{
		watcher:  watcher,
		events:   make(chan model.FileEvent, 16),
		debounce: debounce,
		done:     make(chan struct{}),
	}

	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return nil, err
		}
		util.LogDebugf("Watching %s", dir)
	}

	fw.wg.Add(1)
	go fw.processEvents()

	return fw, nil
}

// Relevant reports whether a change to path can affect the timeline.
func Relevant(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, ".tmp") {
		return false
	}
	switch filepath.Ext(base) {
	case ".json", ".jsonl":
		return true
	default:
		return false
	}
}

func (fw *FileWatcher) processEvents() {
	defer fw.wg.Done()
	defer close(fw.events)

	var (
		pending *model.FileEvent
		timer   *time.Timer
		fire    <-chan time.Time
	)

	for {
		select {
		case <-fw.done:
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if !Relevant(event.Name) || event.Op == fsnotify.Chmod {
				continue
			}
			pending = &model.FileEvent{Path: event.Name, Operation: event.Op.String()}
			if timer == nil {
				timer = time.NewTimer(fw.debounce)
			} else {
				timer.Reset(fw.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if pending == nil {
				continue
			}
			select {
			case fw.events <- *pending:
			case <-fw.done:
				return
			default:
				// A refresh is already queued.
			}
			pending = nil

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			util.LogError("File monitoring error: " + err.Error())
		}
	}
}

// Events delivers debounced changes. The channel closes after Close.
func (fw *FileWatcher) Events() <-chan model.FileEvent {
	return fw.events
}

func (fw *FileWatcher) Close() error {
	var err error
	fw.once.Do(func() {
		close(fw.done)
		err = fw.watcher.Close()
		fw.wg.Wait()
	})
	return err
}
