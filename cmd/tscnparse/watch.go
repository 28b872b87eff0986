package main

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounce = 100 * time.Millisecond

// Watcher reports changes to scene and resource documents. Directories are
// watched rather than files because editors often save by rename.
type Watcher struct {
	watcher *fsnotify.Watcher
	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	once    sync.Once
}

func NewWatcher(dirs ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	watcher := &Watcher{
		watcher: w,
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
	})
	return err
}

// quiet is a debounce timer that fired for one generation of events on a file.
type quiet struct {
	name string
	gen  int
}

// run reports a file once it has seen no new event for the debounce window,
// so a save written in several steps is reported after its last write.
func (w *Watcher) run() {
	defer close(w.Events)
	defer close(w.Errors)
	timers := make(map[string]*time.Timer)
	gens := make(map[string]int)
	fired := make(chan quiet)
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !isDocument(event.Name) {
				continue
			}
			if t, ok := timers[event.Name]; ok {
				t.Stop()
			}
			gens[event.Name]++
			q := quiet{name: event.Name, gen: gens[event.Name]}
			timers[event.Name] = time.AfterFunc(debounce, func() {
				select {
				case fired <- q:
				case <-w.closeCh:
				}
			})
		case q := <-fired:
			// A timer stopped too late still delivers; only the latest generation counts.
			if q.gen != gens[q.name] {
				continue
			}
			delete(timers, q.name)
			select {
			case w.Events <- q.name:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

func isDocument(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".tscn" || ext == ".tres"
}
