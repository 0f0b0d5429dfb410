package watcher

import (
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jarredhawkins/goblock-lsp/internal/config"
	"github.com/jarredhawkins/goblock-lsp/internal/lang"
)

type recorder struct {
	mu      sync.Mutex
	changed []string
	removed []string
}

func (r *recorder) handle(changed, removed []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changed = append(r.changed, changed...)
	r.removed = append(r.removed, removed...)
}

func (r *recorder) saw(path string, removed bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if removed {
		return slices.Contains(r.removed, path)
	}
	return slices.Contains(r.changed, path)
}

func startWatcher(t *testing.T, root string) *recorder {
	t.Helper()
	cfg := config.Default()
	cfg.DebounceMs = 10

	rec := &recorder{}
	w, err := New(root, lang.NewRegistry(), cfg, nil, rec.handle)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	t.Cleanup(func() { _ = w.Close() })
	return rec
}

func TestWatcherReportsSupportedFiles(t *testing.T) {
	root := t.TempDir()
	rec := startWatcher(t, root)

	rb := filepath.Join(root, "a.rb")
	txt := filepath.Join(root, "notes.txt")
	require.NoError(t, os.WriteFile(rb, []byte("def f\nend\n"), 0o644))
	require.NoError(t, os.WriteFile(txt, []byte("end"), 0o644))

	require.Eventually(t, func() bool { return rec.saw(rb, false) }, 2*time.Second, 10*time.Millisecond)
	assert.False(t, rec.saw(txt, false))

	require.NoError(t, os.Remove(rb))
	require.Eventually(t, func() bool { return rec.saw(rb, true) }, 2*time.Second, 10*time.Millisecond)
}

func TestWatcherNewDirectory(t *testing.T) {
	root := t.TempDir()
	rec := startWatcher(t, root)

	dir := filepath.Join(root, "pkg")
	require.NoError(t, os.Mkdir(dir, 0o755))
	path := filepath.Join(dir, "b.lua")
	require.NoError(t, os.WriteFile(path, []byte("repeat until x"), 0o644))

	require.Eventually(t, func() bool { return rec.saw(path, false) }, 2*time.Second, 10*time.Millisecond)
}

func TestWatcherSkipsExcluded(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "vendor"), 0o755))
	rec := startWatcher(t, root)

	skipped := filepath.Join(root, "vendor", "c.rb")
	seen := filepath.Join(root, "d.rb")
	require.NoError(t, os.WriteFile(skipped, []byte("def g\nend\n"), 0o644))
	require.NoError(t, os.WriteFile(seen, []byte("def g\nend\n"), 0o644))

	require.Eventually(t, func() bool { return rec.saw(seen, false) }, 2*time.Second, 10*time.Millisecond)
	assert.False(t, rec.saw(skipped, false))
}
