// Package watch reruns a callback when watched files change.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDelay is how long a burst of events is allowed to settle before the
// callback runs.
const DefaultDelay = 150 * time.Millisecond

// Watcher watches files and directory trees.
type Watcher struct {
	watcher *fsnotify.Watcher
	delay   time.Duration
}

// New watches paths. Directories are watched recursively.
func New(delay time.Duration, paths ...string) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if delay <= 0 {
		delay = DefaultDelay
	}
	w := &Watcher{watcher: watcher, delay: delay}
	for _, path := range paths {
		if err := w.add(path); err != nil {
			watcher.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) add(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return w.watcher.Add(root)
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
}

// Run calls fn with the last changed path once events settle. Calls are
// serialised on the calling goroutine. Run returns when ctx is done, when the
// watcher fails, or when fn returns an error.
func (w *Watcher) Run(ctx context.Context, fn func(changed string) error) error {
	var (
		timer   *time.Timer
		fire    <-chan time.Time
		pending string
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return errors.New("watch: event channel closed")
			}
			if !relevant(event) {
				continue
			}
			if event.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.add(event.Name)
				}
			}
			pending = event.Name
			if timer == nil {
				timer = time.NewTimer(w.delay)
			} else {
				timer.Reset(w.delay)
			}
			fire = timer.C
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return errors.New("watch: error channel closed")
			}
			return err
		case <-fire:
			fire = nil
			if err := fn(pending); err != nil {
				return err
			}
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func relevant(event fsnotify.Event) bool {
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0
}
