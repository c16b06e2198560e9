// Package watcher reloads the rule set when the rules file changes on disk.
//
// The parent directory is watched rather than the file itself: editors that
// save via rename (vim, VS Code) replace the inode, and a file-level watch
// dies with the old inode. Bursts of write events are debounced before the
// reload. An invalid document is logged and skipped; the previous rule set
// stays active.
package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"expandd/internal/diag"
	"expandd/internal/rules"
)

// DefaultDebounce is how long the file must be quiet before a reload.
const DefaultDebounce = 250 * time.Millisecond

// Archive receives the new rule set after a successful reload, typically to
// persist it. A nil Archive skips persistence.
type Archive interface {
	Save([]rules.Rule) error
}

// Watcher reloads a rules file into a rule store on change.
type Watcher struct {
	path     string
	format   string
	store    *rules.Store
	archive  Archive
	sink     *diag.Sink
	debounce time.Duration

	fsWatcher *fsnotify.Watcher
	reloads   atomic.Uint64

	done chan struct{}
	wg   sync.WaitGroup
}

// New creates a watcher for the rules file at path. The document format is
// inferred from the extension. A non-positive debounce uses DefaultDebounce.
func New(path string, store *rules.Store, archive Archive, sink *diag.Sink, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	return &Watcher{
		path:      abs,
		format:    rules.FormatForPath(abs),
		store:     store,
		archive:   archive,
		sink:      sink,
		debounce:  debounce,
		fsWatcher: fsWatcher,
		done:      make(chan struct{}),
	}, nil
}

// Start watches the rules file's directory and begins reloading on change.
// The directory must exist; the file itself may not yet.
func (w *Watcher) Start() error {
	if err := w.fsWatcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(w.path), err)
	}

	w.wg.Add(1)
	go w.eventLoop()
	return nil
}

// Stop shuts the watcher down and waits for the event loop to exit.
func (w *Watcher) Stop() error {
	close(w.done)
	err := w.fsWatcher.Close()
	w.wg.Wait()
	return err
}

// Path returns the watched rules file path.
func (w *Watcher) Path() string { return w.path }

// Reloads returns how many successful reloads have happened.
func (w *Watcher) Reloads() uint64 { return w.reloads.Load() }

// Reload reads, validates, and applies the rules file immediately. Used at
// startup and by the event loop after debounce.
func (w *Watcher) Reload() error {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return fmt.Errorf("reading rules file: %w", err)
	}

	rs, err := rules.ParseDocument(data, w.format)
	if err != nil {
		return err
	}

	w.store.ReplaceAll(rs)
	w.reloads.Add(1)
	w.sink.Logf("watcher: loaded %d rules from %s", len(rs), w.path)

	if w.archive != nil {
		if err := w.archive.Save(rs); err != nil {
			w.sink.Logf("watcher: persisting rules failed: %v", err)
		}
	}
	return nil
}

func (w *Watcher) eventLoop() {
	defer w.wg.Done()

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !w.concernsRulesFile(event) {
				continue
			}
			// Restart the quiet period on every relevant event.
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-timerC:
			if err := w.Reload(); err != nil {
				w.sink.Logf("watcher: reload failed, keeping previous rules: %v", err)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.sink.Logf("watcher: %v", err)
		}
	}
}

// concernsRulesFile filters directory events down to mutations of the rules
// file itself.
func (w *Watcher) concernsRulesFile(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}
