package index

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jarredhawkins/goblock-lsp/internal/config"
	"github.com/jarredhawkins/goblock-lsp/internal/parser"
	"github.com/jarredhawkins/goblock-lsp/internal/types"
)

// File is the parse result of one workspace file
type File struct {
	Path     string
	Language string
	Pairs    []types.BlockPair
}

// Stats summarizes the index
type Stats struct {
	Files      int            `json:"files"`
	Pairs      int            `json:"pairs"`
	ByLanguage map[string]int `json:"byLanguage"`
}

// Index holds the block pairs of every supported file under a root
type Index struct {
	mu    sync.RWMutex
	files map[string]*File

	rootPath string
	registry *parser.Registry
	cfg      *config.Config
	logger   *slog.Logger
}

// New creates a new index for the given root path
func New(rootPath string, registry *parser.Registry, cfg *config.Config, logger *slog.Logger) *Index {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Index{
		files:    make(map[string]*File),
		rootPath: rootPath,
		registry: registry,
		cfg:      cfg,
		logger:   logger,
	}
}

// Walk returns the supported files under the root, skipping excluded
// directories
func (idx *Index) Walk(ctx context.Context) ([]string, error) {
	var files []string
	err := filepath.WalkDir(idx.rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			idx.logger.Debug("walk.skip", "path", path, "err", err)
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != idx.rootPath && idx.cfg.SkipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && idx.registry.Supports(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", idx.rootPath, err)
	}
	return files, nil
}

// Build parses every supported file under the root with a bounded worker
// pool. done, if set, is called once per file from the workers.
func (idx *Index) Build(ctx context.Context, done func(path string)) error {
	idx.logger.Info("index.build", "root", idx.rootPath, "workers", idx.cfg.Workers)

	files, err := idx.Walk(ctx)
	if err != nil {
		return err
	}
	return idx.AddFiles(ctx, files, done)
}

// AddFiles parses files concurrently. Unreadable files are logged and
// skipped.
func (idx *Index) AddFiles(ctx context.Context, files []string, done func(path string)) error {
	workers := max(idx.cfg.Workers, 1)

	origCtx := ctx
	g, ctx := errgroup.WithContext(ctx)
	paths := make(chan string, workers*2)

	g.Go(func() error {
		defer close(paths)
		for _, f := range files {
			select {
			case paths <- f:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for range workers {
		g.Go(func() error {
			for path := range paths {
				if err := idx.AddFile(path); err != nil {
					idx.logger.Warn("index.add_failed", "path", path, "err", err)
				}
				if done != nil {
					done(path)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if err := origCtx.Err(); err != nil {
		return err
	}

	stats := idx.Stats()
	idx.logger.Info("index.built", "files", stats.Files, "pairs", stats.Pairs)
	return nil
}

// AddFile parses and indexes a single file
func (idx *Index) AddFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if _, ok := idx.AddContent(path, string(content)); !ok {
		return fmt.Errorf("no language for %s", path)
	}
	return nil
}

// AddContent parses content as the file at path and stores the result
func (idx *Index) AddContent(path, content string) (*File, bool) {
	p, ok := idx.registry.ForPath(path)
	if !ok {
		return nil, false
	}
	f := &File{Path: path, Language: p.Name(), Pairs: p.Parse(content)}

	idx.mu.Lock()
	idx.files[path] = f
	idx.mu.Unlock()

	idx.logger.Debug("index.file", "path", path, "language", f.Language, "pairs", len(f.Pairs))
	return f, true
}

// RemoveFile drops a file from the index
func (idx *Index) RemoveFile(path string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	delete(idx.files, path)
}

// UpdateFile removes then re-adds a file
func (idx *Index) UpdateFile(path string) error {
	idx.RemoveFile(path)
	return idx.AddFile(path)
}

// File returns the indexed result for path
func (idx *Index) File(path string) (*File, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	f, ok := idx.files[path]
	return f, ok
}

// PairAt returns the innermost pair of path spanning the 0-based line and
// code point column
func (idx *Index) PairAt(path string, line, col int) (types.BlockPair, bool) {
	f, ok := idx.File(path)
	if !ok {
		return types.BlockPair{}, false
	}
	return Innermost(f.Pairs, Position{Line: line, Column: col})
}

// KeywordAt returns the pair whose keyword of path lies under the position
func (idx *Index) KeywordAt(path string, line, col int) (types.BlockPair, types.Token, bool) {
	f, ok := idx.File(path)
	if !ok {
		return types.BlockPair{}, types.Token{}, false
	}
	return KeywordAt(f.Pairs, Position{Line: line, Column: col})
}

// Paths returns the indexed paths in sorted order
func (idx *Index) Paths() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	paths := make([]string, 0, len(idx.files))
	for p := range idx.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Stats counts files and pairs per language
func (idx *Index) Stats() Stats {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	s := Stats{ByLanguage: make(map[string]int)}
	for _, f := range idx.files {
		s.Files++
		s.Pairs += len(f.Pairs)
		s.ByLanguage[f.Language]++
	}
	return s
}

// RootPath returns the root path of the index
func (idx *Index) RootPath() string {
	return idx.rootPath
}
