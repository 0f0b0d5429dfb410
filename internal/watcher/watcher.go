package watcher

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/jarredhawkins/goblock-lsp/internal/config"
	"github.com/jarredhawkins/goblock-lsp/internal/parser"
)

// ChangeHandler is called when files change
type ChangeHandler func(changed, removed []string)

// Watcher monitors the supported source files under a root using fsnotify
type Watcher struct {
	watcher   *fsnotify.Watcher
	rootPath  string
	registry  *parser.Registry
	cfg       *config.Config
	logger    *slog.Logger
	handler   ChangeHandler
	debouncer *Debouncer
	done      chan struct{}
}

// New creates a new file watcher for the root path
func New(rootPath string, registry *parser.Registry, cfg *config.Config, logger *slog.Logger, handler ChangeHandler) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Watcher{
		watcher:   fsw,
		rootPath:  rootPath,
		registry:  registry,
		cfg:       cfg,
		logger:    logger,
		handler:   handler,
		debouncer: NewDebouncer(cfg.Debounce()),
		done:      make(chan struct{}),
	}, nil
}

// Start watches every non-excluded directory and begins dispatching events
func (w *Watcher) Start() error {
	if err := w.addTree(w.rootPath); err != nil {
		return err
	}
	go w.eventLoop()

	w.logger.Info("watcher.started", "root", w.rootPath)
	return nil
}

func (w *Watcher) addTree(root string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != w.rootPath && w.cfg.SkipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("watcher.add_failed", "path", path, "err", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}
	return nil
}

func (w *Watcher) eventLoop() {
	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher.error", "err", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	if event.Has(fsnotify.Create) {
		if info, err := os.Lstat(path); err == nil && info.IsDir() {
			if !w.cfg.SkipDir(filepath.Base(path)) {
				// files created before the directory was watched are missed
				// by fsnotify, so pick them up here
				if err := w.addTree(path); err != nil {
					w.logger.Warn("watcher.add_failed", "path", path, "err", err)
				}
				w.queueTree(path)
			}
			return
		}
	}

	if !w.registry.Supports(path) {
		return
	}
	w.queue(path, event.Op)
}

func (w *Watcher) queueTree(root string) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() && w.registry.Supports(path) {
			w.queue(path, fsnotify.Create)
		}
		return nil
	})
}

func (w *Watcher) queue(path string, op fsnotify.Op) {
	w.debouncer.Add(path, op)
	w.debouncer.Flush(func(changed, removed []string) {
		w.logger.Debug("watcher.changes", "changed", len(changed), "removed", len(removed))
		w.handler(changed, removed)
	})
}

// Close stops the watcher
func (w *Watcher) Close() error {
	close(w.done)
	w.debouncer.Stop()
	return w.watcher.Close()
}
