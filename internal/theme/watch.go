package theme

import (
	"os"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/fsnotify/fsnotify"
)

// debounceDelay collapses the burst of events editors emit on save
const debounceDelay = 150 * time.Millisecond

// Watcher monitors theme config files and triggers refresh on changes
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce *time.Timer
	mu       sync.Mutex
	onChange func(Palette)
	done     chan struct{}
	stopOnce sync.Once
}

// NewWatcher watches dirs, or the terminal config directories under the
// user's home when none are given. On a change the palette is detected
// again, installed, and passed to onChange.
func NewWatcher(onChange func(Palette), dirs ...string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if len(dirs) == 0 {
		if home, _ := os.UserHomeDir(); home != "" {
			dirs = WatchDirs(home)
		}
	}
	for _, d := range dirs {
		if _, err := os.Stat(d); err != nil {
			continue
		}
		if err := fsw.Add(d); err != nil {
			log.WithError(err).WithField("dir", d).Debug("theme watch skipped")
		}
	}

	w := &Watcher{
		watcher:  fsw,
		onChange: onChange,
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.scheduleRefresh()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.WithError(err).Debug("theme watcher error")

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) scheduleRefresh() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}

	w.debounce = time.AfterFunc(debounceDelay, func() {
		Refresh()
		if w.onChange != nil {
			w.onChange(CurrentPalette())
		}
	})
}

// Stop closes the watcher. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.watcher.Close()

		w.mu.Lock()
		if w.debounce != nil {
			w.debounce.Stop()
		}
		w.mu.Unlock()
	})
}
