package internal

import (
	"crypto/md5"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// debounceDelay groups bursts of writes to one file into a single run.
const debounceDelay = 100 * time.Millisecond

var errNotWatching = errors.New("not watching")

// WatchHandler receives the outcome of every re-run triggered by the watcher.
type WatchHandler func(Result, error)

// StartWatching watches dirs recursively and re-expands handled files when
// they are written.
func (e *Engine) StartWatching(dirs []string, handle WatchHandler) error {
	e.watchMu.Lock()
	defer e.watchMu.Unlock()

	if e.watcher != nil {
		return fmt.Errorf("already watching")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating watcher: %w", err)
	}

	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return watcher.Add(path)
			}
			return nil
		})
		if err != nil {
			watcher.Close()
			return fmt.Errorf("error adding directory to watcher: %w", err)
		}
	}

	e.watcher = watcher
	e.done = make(chan struct{})
	e.pending = make(map[string]*time.Timer)
	e.written = make(map[string]string)
	e.onResult = handle

	go e.watchLoop(watcher, e.done)
	e.logger.Info("watching for changes", zap.Strings("dirs", dirs))
	return nil
}

func (e *Engine) StopWatching() error {
	e.watchMu.Lock()
	defer e.watchMu.Unlock()

	if e.watcher == nil {
		e.logger.Warn("not watching")
		return errNotWatching
	}

	for _, timer := range e.pending {
		timer.Stop()
	}
	close(e.done)
	err := e.watcher.Close()
	e.watcher = nil
	e.pending = nil
	e.written = nil
	return err
}

func (e *Engine) watchLoop(watcher *fsnotify.Watcher, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			e.handleFileEvent(event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			e.logger.Error("watcher error", zap.Error(err))
		}
	}
}

func (e *Engine) handleFileEvent(event fsnotify.Event) {
	if event.Op&fsnotify.Write != fsnotify.Write || !e.Handles(event.Name) {
		return
	}

	e.watchMu.Lock()
	defer e.watchMu.Unlock()

	if e.pending == nil {
		return
	}
	// wait for a while after file change to consider multiple changes as one
	if timer, ok := e.pending[event.Name]; ok {
		timer.Reset(debounceDelay)
		return
	}
	name := event.Name
	e.pending[name] = time.AfterFunc(debounceDelay, func() { e.rerun(name) })
}

func (e *Engine) rerun(filename string) {
	e.watchMu.Lock()
	if e.pending == nil {
		e.watchMu.Unlock()
		return
	}
	delete(e.pending, filename)
	handle := e.onResult
	last := e.written[filename]
	e.watchMu.Unlock()

	// the file holds the output of the previous run, e.g. written back in place
	if hash, err := getFileHash(filename); err == nil && hash == last {
		e.logger.Debug("skipping own output", zap.String("file", filename))
		return
	}

	result, err := e.Run(filename)
	if err != nil {
		e.logger.Error("error expanding file", zap.String("file", filename), zap.Error(err))
	} else {
		e.logger.Info("expanded file",
			zap.String("file", filename),
			zap.Int("issues", len(result.Issues)),
		)
		e.watchMu.Lock()
		if e.written != nil {
			e.written[filename] = fmt.Sprintf("%x", md5.Sum(result.Output))
		}
		e.watchMu.Unlock()
	}
	if handle != nil {
		handle(result, err)
	}
}
