package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/jarredhawkins/goblock-lsp/internal/index"
)

var scanCmd = &cobra.Command{
	Use:   "scan [DIR]",
	Short: "Index a directory and report block pairs per file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runScan,
}

// scanReport is the JSON form of a scan
type scanReport struct {
	Root  string      `json:"root"`
	Files []scanFile  `json:"files"`
	Stats index.Stats `json:"stats"`
}

type scanFile struct {
	Path     string `json:"path"`
	Language string `json:"language"`
	Pairs    int    `json:"pairs"`
}

func runScan(cmd *cobra.Command, args []string) error {
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

	idx := index.New(root, registry, cfg, logger)
	files, err := idx.Walk(cmd.Context())
	if err != nil {
		return err
	}

	var done func(string)
	if !jsonOut && isTerminal(os.Stderr) {
		bar := newProgressBar(int64(len(files)), "Indexing")
		defer func() { _ = bar.Finish() }()
		done = func(string) { _ = bar.Add(1) }
	}
	if err := idx.AddFiles(cmd.Context(), files, done); err != nil {
		return fmt.Errorf("scan %s: %w", root, err)
	}

	report := scanReport{Root: root, Files: []scanFile{}, Stats: idx.Stats()}
	for _, path := range idx.Paths() {
		f, _ := idx.File(path)
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		report.Files = append(report.Files, scanFile{Path: rel, Language: f.Language, Pairs: len(f.Pairs)})
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		return writeJSON(out, report)
	}
	printScan(out, report, newStyles(colorEnabled(out)))
	return nil
}

func printScan(out io.Writer, report scanReport, s *styles) {
	for _, f := range report.Files {
		fmt.Fprintf(out, "%6d  %-12s %s\n", f.Pairs, s.dim.Sprint(f.Language), f.Path)
	}
	if len(report.Files) > 0 {
		fmt.Fprintln(out)
	}

	langs := make([]string, 0, len(report.Stats.ByLanguage))
	for name := range report.Stats.ByLanguage {
		langs = append(langs, name)
	}
	sort.Strings(langs)

	fmt.Fprintln(out, s.heading.Sprintf("%d files, %d pairs", report.Stats.Files, report.Stats.Pairs))
	for _, name := range langs {
		fmt.Fprintf(out, "  %-12s %d files\n", name, report.Stats.ByLanguage[name])
	}
}

// newProgressBar draws on stderr so stdout stays machine readable
func newProgressBar(total int64, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}
