package watcher

import (
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Debouncer batches file change events so a burst of writes triggers one
// reparse per file
type Debouncer struct {
	mu       sync.Mutex
	pending  map[string]fsnotify.Op
	interval time.Duration
	timer    *time.Timer
}

// NewDebouncer creates a debouncer that waits interval after the last event
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{
		pending:  make(map[string]fsnotify.Op),
		interval: interval,
	}
}

// Add records a file change event
func (d *Debouncer) Add(path string, op fsnotify.Op) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending[path] |= op
}

// Flush restarts the quiet period; when it elapses the pending changes are
// split into changed and removed paths and passed to callback
func (d *Debouncer) Flush(callback func(changed, removed []string)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, func() {
		changed, removed := d.drain()
		if len(changed) > 0 || len(removed) > 0 {
			callback(changed, removed)
		}
	})
}

// Stop cancels a pending flush
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}

func (d *Debouncer) drain() (changed, removed []string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for path, op := range d.pending {
		switch {
		case op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename):
			removed = append(removed, path)
		case op.Has(fsnotify.Write) || op.Has(fsnotify.Create):
			changed = append(changed, path)
		}
	}
	d.pending = make(map[string]fsnotify.Op)

	sort.Strings(changed)
	sort.Strings(removed)
	return changed, removed
}
