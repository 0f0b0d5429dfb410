package main

import (
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jarredhawkins/goblock-lsp/internal/index"
	"github.com/jarredhawkins/goblock-lsp/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch [DIR]",
	Short: "Index a directory and report files as they are re-indexed",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatch,
}

// reindex keeps idx in step with a batch of file changes
func reindex(idx *index.Index, logger *slog.Logger) watcher.ChangeHandler {
	return func(changed, removed []string) {
		for _, path := range removed {
			idx.RemoveFile(path)
			logger.Debug("index.removed", "path", path)
		}
		for _, path := range changed {
			if err := idx.UpdateFile(path); err != nil {
				logger.Warn("index.update_failed", "path", path, "err", err)
			}
		}
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := ""
	if len(args) > 0 {
		dir = args[0]
	}
	root, cfg, registry, err := workspace(dir)
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(io.Discard)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	idx := index.New(root, registry, cfg, logger)
	if err := idx.Build(ctx, nil); err != nil {
		return fmt.Errorf("build index: %w", err)
	}

	out := cmd.OutOrStdout()
	s := newStyles(colorEnabled(out))
	stats := idx.Stats()
	fmt.Fprintln(out, s.heading.Sprintf("watching %s: %d files, %d pairs", root, stats.Files, stats.Pairs))

	update := reindex(idx, logger)
	w, err := watcher.New(root, registry, cfg, logger, func(changed, removed []string) {
		update(changed, removed)
		for _, path := range removed {
			fmt.Fprintf(out, "%s %s\n", s.dim.Sprint("removed"), relPath(root, path))
		}
		for _, path := range changed {
			pairs := 0
			if f, ok := idx.File(path); ok {
				pairs = len(f.Pairs)
			}
			fmt.Fprintf(out, "%s %s (%d pairs)\n", s.level(0).Sprint("updated"), relPath(root, path), pairs)
		}
	})
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Start(); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}

	<-ctx.Done()
	return nil
}

func relPath(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil {
		return rel
	}
	return path
}
