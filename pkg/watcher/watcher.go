package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ritzau/jdeps-cycles/pkg/logging"
)

// ChangeType represents the type of file change detected
type ChangeType int

const (
	ChangeClass   ChangeType = iota // a compiled .class file
	ChangeArchive                   // a .jar or .jmod archive
)

func (t ChangeType) String() string {
	if t == ChangeArchive {
		return "archive"
	}
	return "class"
}

// ChangeEvent represents a batch of file system changes
type ChangeEvent struct {
	Type      ChangeType
	Paths     []string
	Timestamp time.Time
}

const batchWindow = 100 * time.Millisecond

// FileWatcher watches the analyzed classes for changes. A directory is
// watched recursively; a single archive is watched through its parent.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	target  string
	single  string // set when target is a file
	events  chan ChangeEvent
	log     *slog.Logger
}

// NewFileWatcher creates a watcher for a classes directory or archive
func NewFileWatcher(target string) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &FileWatcher{
		watcher: w,
		target:  filepath.Clean(target),
		events:  make(chan ChangeEvent, 16),
		log:     logging.New("watcher"),
	}, nil
}

// Start begins watching. Events are delivered until ctx is cancelled, after
// which the Events channel is closed.
func (fw *FileWatcher) Start(ctx context.Context) error {
	info, err := os.Stat(fw.target)
	if err != nil {
		_ = fw.watcher.Close()
		return fmt.Errorf("cannot watch %s: %w", fw.target, err)
	}

	if info.IsDir() {
		fw.addTree(fw.target)
	} else {
		fw.single = fw.target
		if err := fw.watcher.Add(filepath.Dir(fw.target)); err != nil {
			_ = fw.watcher.Close()
			return fmt.Errorf("cannot watch %s: %w", filepath.Dir(fw.target), err)
		}
	}

	fw.log.Info("watching for changes", "path", fw.target, "dirs", len(fw.watcher.WatchList()))
	go fw.processEvents(ctx)
	return nil
}

// Events returns the channel of change events
func (fw *FileWatcher) Events() <-chan ChangeEvent {
	return fw.events
}

// addTree watches dir and every directory below it
func (fw *FileWatcher) addTree(dir string) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip what we cannot read
		}
		if !d.IsDir() {
			return nil
		}
		if err := fw.watcher.Add(path); err != nil {
			fw.log.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

// classify reports the change type of a path, or false when the path is
// irrelevant to the analysis
func (fw *FileWatcher) classify(path string) (ChangeType, bool) {
	if fw.single != "" {
		return ChangeArchive, filepath.Clean(path) == fw.single
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".class":
		return ChangeClass, true
	case ".jar", ".jmod":
		return ChangeArchive, true
	}
	return 0, false
}

// processEvents batches file system events by type
func (fw *FileWatcher) processEvents(ctx context.Context) {
	defer close(fw.events)
	defer func() { _ = fw.watcher.Close() }()

	pending := make(map[ChangeType][]string)
	var flushAt <-chan time.Time

	flush := func() bool {
		for _, t := range []ChangeType{ChangeArchive, ChangeClass} {
			if len(pending[t]) == 0 {
				continue
			}
			ev := ChangeEvent{Type: t, Paths: pending[t], Timestamp: time.Now()}
			select {
			case fw.events <- ev:
			case <-ctx.Done():
				return false
			}
		}
		pending = make(map[ChangeType][]string)
		flushAt = nil
		return true
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if event.Op == fsnotify.Chmod {
				continue
			}

			if event.Has(fsnotify.Create) && fw.single == "" {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					fw.addTree(event.Name)
					continue
				}
			}

			t, relevant := fw.classify(event.Name)
			if !relevant {
				continue
			}
			fw.log.Debug("change detected", "path", event.Name, "op", event.Op.String())
			pending[t] = append(pending[t], event.Name)
			if flushAt == nil {
				flushAt = time.After(batchWindow)
			}

		case <-flushAt:
			if !flush() {
				return
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.log.Error("watcher error", "error", err)
		}
	}
}
