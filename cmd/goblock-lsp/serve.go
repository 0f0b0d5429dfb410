package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jarredhawkins/goblock-lsp/internal/index"
	"github.com/jarredhawkins/goblock-lsp/internal/lsp"
	"github.com/jarredhawkins/goblock-lsp/internal/watcher"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the language server on stdio",
	Long: `Index the workspace, watch it for changes and serve textDocument/documentHighlight,
textDocument/definition and goblock/blockPairs over stdio.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	// stdout carries the protocol, so logs never go there
	logger, closeLog, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	root, cfg, registry, err := workspace("")
	if err != nil {
		return err
	}
	logger.Info("server.starting", "root", root, "languages", len(registry.Names()))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	idx := index.New(root, registry, cfg, logger)
	if err := idx.Build(ctx, nil); err != nil {
		return fmt.Errorf("build index: %w", err)
	}

	w, err := watcher.New(root, registry, cfg, logger, reindex(idx, logger))
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Start(); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}

	server := lsp.NewServer(idx, registry, logger)
	err = server.Serve(ctx, os.Stdin, os.Stdout)
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	logger.Info("server.stopped")
	return err
}
