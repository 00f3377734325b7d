package watcher

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Event represents a change to the watched settings file
type Event struct {
	Path string
	Op   fsnotify.Op
}

// Removed reports whether the file is gone after the event.
func (e Event) Removed() bool {
	return e.Op.Has(fsnotify.Remove) || e.Op.Has(fsnotify.Rename)
}

// Watcher watches a single settings file through its parent directory.
// Watching the directory keeps the watch alive across atomic renames.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	dir       string
	file      string
	events    chan Event
	errors    chan error
	done      chan struct{}
	stopOnce  sync.Once
}

// New creates a Watcher for the settings file at path
func New(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsWatcher: fsWatcher,
		dir:       filepath.Dir(abs),
		file:      abs,
		events:    make(chan Event, 100),
		errors:    make(chan error, 10),
		done:      make(chan struct{}),
	}

	return w, nil
}

// Start begins watching for changes. The parent directory must exist.
func (w *Watcher) Start() error {
	if err := w.fsWatcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}

	go w.watchLoop()
	return nil
}

// Events returns the channel of settings file events
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns the channel of errors
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Stop stops the watcher. It is safe to call more than once.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fsWatcher.Close()
	})
	return err
}

func (w *Watcher) watchLoop() {
	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			case <-w.done:
				return
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.file {
		return
	}

	// Chmod alone does not change the content
	if event.Op == fsnotify.Chmod {
		return
	}

	select {
	case w.events <- Event{Path: event.Name, Op: event.Op}:
	case <-w.done:
	}
}
