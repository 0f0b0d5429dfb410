package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jarredhawkins/goblock-lsp/internal/config"
	"github.com/jarredhawkins/goblock-lsp/internal/lang"
	"github.com/jarredhawkins/goblock-lsp/internal/parser"
)

var (
	rootPath string
	logFile  string
	debug    bool
	langName string
	jsonOut  bool
	noColor  bool
)

var rootCmd = &cobra.Command{
	Use:   "goblock-lsp",
	Short: "Block keyword matching for block-structured languages",
	Long: `goblock-lsp finds matching block keywords (if/end if, begin/end, repeat/until)
in Ada, AppleScript, Bash, COBOL, Crystal, Elixir, Erlang, Fortran, Julia, Lua,
MATLAB, Octave, Pascal, Ruby, Verilog and VHDL sources.

Without a subcommand it runs the language server on stdio.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootPath, "root", "", "Workspace root (defaults to current directory)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log", "", "Log file path (defaults to stderr)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&langName, "lang", "l", "", "Language id, overriding the file extension")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Write JSON output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(pairsCmd)
	rootCmd.AddCommand(tokensCmd)
	rootCmd.AddCommand(regionsCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(languagesCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// newLogger builds the text logger selected by --log and --debug. The
// returned func closes the log file.
func newLogger(fallback io.Writer) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	out, closeFn := fallback, func() {}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out, closeFn = f, func() { _ = f.Close() }
	}

	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
	return logger, closeFn, nil
}

// workspace resolves the root directory, loads its config and returns a
// registry with the config applied
func workspace(dir string) (string, *config.Config, *parser.Registry, error) {
	if dir == "" {
		dir = rootPath
	}
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", nil, nil, fmt.Errorf("get current directory: %w", err)
		}
		dir = wd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", nil, nil, fmt.Errorf("resolve %s: %w", dir, err)
	}

	cfg, err := config.Load(abs)
	if err != nil {
		return "", nil, nil, err
	}
	registry := lang.NewRegistry()
	if err := cfg.Apply(registry); err != nil {
		return "", nil, nil, err
	}
	return abs, cfg, registry, nil
}

// parserFor returns the parser named by --lang, or the one handling path
func parserFor(registry *parser.Registry, path string) (*parser.Parser, error) {
	if langName != "" {
		p, ok := registry.Get(langName)
		if !ok {
			return nil, fmt.Errorf("unknown language %q", langName)
		}
		return p, nil
	}
	p, ok := registry.ForPath(path)
	if !ok {
		return nil, fmt.Errorf("no language for %s, use --lang", path)
	}
	return p, nil
}
