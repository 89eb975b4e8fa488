// Package watch debounces fsnotify write events on the two event logs so
// "fold --watch" can re-fold once per burst of appends instead of once per
// write(2) call.
package watch

import (
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Debounce is the delay after the last write event before a refold fires.
// Concurrent appenders (the board UI, a CLI directive, a script) tend to
// write in short bursts; this coalesces them into one fold.
const Debounce = 200 * time.Millisecond

// Watcher monitors ledger.jsonl and control.jsonl for writes and delivers a
// debounced signal on Signals whenever either changes.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	Signals   chan struct{}
	Errors    chan error
	done      chan struct{}

	mu    sync.Mutex
	timer *time.Timer
}

// New starts watching the given paths (typically ledger.jsonl and
// control.jsonl). Callers must call Close when done.
func New(paths ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, p := range paths {
		if err := fw.Add(p); err != nil {
			fw.Close()
			return nil, err
		}
	}

	w := &Watcher{
		fsWatcher: fw,
		Signals:   make(chan struct{}, 1),
		Errors:    make(chan error, 1),
		done:      make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	defer close(w.Signals)
	defer close(w.Errors)
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.scheduleSignal()
			}
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		}
	}
}

func (w *Watcher) scheduleSignal() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(Debounce, w.sendSignal)
}

func (w *Watcher) sendSignal() {
	select {
	case w.Signals <- struct{}{}:
	default:
	}
}

// Close stops the watcher and releases the underlying fsnotify handle.
func (w *Watcher) Close() error {
	close(w.done)
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.fsWatcher.Close()
}
