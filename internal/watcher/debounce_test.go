package watcher

import (
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type batch struct {
	changed, removed []string
}

func collect(d *Debouncer) (func(), func() []batch) {
	var (
		mu      sync.Mutex
		batches []batch
	)
	flush := func() {
		d.Flush(func(changed, removed []string) {
			mu.Lock()
			defer mu.Unlock()
			batches = append(batches, batch{changed, removed})
		})
	}
	get := func() []batch {
		mu.Lock()
		defer mu.Unlock()
		return append([]batch(nil), batches...)
	}
	return flush, get
}

func TestDebouncerBatches(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	flush, batches := collect(d)

	d.Add("/a.rb", fsnotify.Write)
	flush()
	d.Add("/a.rb", fsnotify.Write)
	d.Add("/b.lua", fsnotify.Create)
	d.Add("/c.adb", fsnotify.Write)
	d.Add("/c.adb", fsnotify.Remove)
	flush()

	require.Eventually(t, func() bool { return len(batches()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, batch{changed: []string{"/a.rb", "/b.lua"}, removed: []string{"/c.adb"}}, batches()[0])

	time.Sleep(50 * time.Millisecond)
	assert.Len(t, batches(), 1)
}

func TestDebouncerIgnoresChmod(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	flush, batches := collect(d)

	d.Add("/a.rb", fsnotify.Chmod)
	flush()

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, batches())
}

func TestDebouncerStop(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	flush, batches := collect(d)

	d.Add("/a.rb", fsnotify.Write)
	flush()
	d.Stop()

	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, batches())
}
