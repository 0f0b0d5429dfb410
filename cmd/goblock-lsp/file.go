package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/jarredhawkins/goblock-lsp/internal/parser"
	"github.com/jarredhawkins/goblock-lsp/internal/types"
)

var pairsCmd = &cobra.Command{
	Use:   "pairs FILE",
	Short: "Print the matched block pairs of a file",
	Long:  "Print every matched block pair of FILE (or stdin with -), colored by nest level.",
	Args:  cobra.ExactArgs(1),
	RunE:  runPairs,
}

var tokensCmd = &cobra.Command{
	Use:   "tokens FILE",
	Short: "Print the block keyword tokens of a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokens,
}

var regionsCmd = &cobra.Command{
	Use:   "regions FILE",
	Short: "Print the comment and string regions of a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runRegions,
}

// loadSource reads path, or stdin for "-", and picks its parser
func loadSource(cmd *cobra.Command, path string) (*parser.Parser, string, error) {
	_, _, registry, err := workspace("")
	if err != nil {
		return nil, "", err
	}

	var data []byte
	if path == "-" {
		if langName == "" {
			return nil, "", fmt.Errorf("reading stdin needs --lang")
		}
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}

	p, err := parserFor(registry, path)
	if err != nil {
		return nil, "", err
	}
	return p, string(data), nil
}

func runPairs(cmd *cobra.Command, args []string) error {
	p, text, err := loadSource(cmd, args[0])
	if err != nil {
		return err
	}
	pairs := p.Parse(text)
	types.SortPairs(pairs)

	out := cmd.OutOrStdout()
	if jsonOut {
		if pairs == nil {
			pairs = []types.BlockPair{}
		}
		return writeJSON(out, pairs)
	}
	printPairs(out, pairs, newStyles(colorEnabled(out)))
	return nil
}

func printPairs(out io.Writer, pairs []types.BlockPair, s *styles) {
	for _, bp := range pairs {
		c := s.level(bp.NestLevel)
		var b strings.Builder
		b.WriteString(strings.Repeat("  ", bp.NestLevel))
		b.WriteString(c.Sprint(bp.Open.Value))
		b.WriteString(" " + s.dim.Sprint(pos(bp.Open)))
		for _, mid := range bp.Intermediates {
			b.WriteString("  " + c.Sprint(mid.Value) + " " + s.dim.Sprint(pos(mid)))
		}
		b.WriteString("  " + c.Sprint(bp.Close.Value) + " " + s.dim.Sprint(pos(bp.Close)))
		fmt.Fprintln(out, b.String())
	}
}

// pos formats the 1-based line and column of tok
func pos(tok types.Token) string {
	return fmt.Sprintf("%d:%d", tok.Line+1, tok.Column+1)
}

func runTokens(cmd *cobra.Command, args []string) error {
	p, text, err := loadSource(cmd, args[0])
	if err != nil {
		return err
	}
	tokens := p.Tokens(text)

	out := cmd.OutOrStdout()
	if jsonOut {
		if tokens == nil {
			tokens = []types.Token{}
		}
		return writeJSON(out, tokens)
	}
	s := newStyles(colorEnabled(out))
	for _, tok := range tokens {
		fmt.Fprintf(out, "%-8s %-12s %s\n", pos(tok), tok.Type, s.heading.Sprint(tok.Value))
	}
	return nil
}

func runRegions(cmd *cobra.Command, args []string) error {
	p, text, err := loadSource(cmd, args[0])
	if err != nil {
		return err
	}
	regions := p.ExcludedRegions(text)

	out := cmd.OutOrStdout()
	if jsonOut {
		if regions == nil {
			regions = []types.Region{}
		}
		return writeJSON(out, regions)
	}
	s := newStyles(colorEnabled(out))
	for _, r := range regions {
		fmt.Fprintf(out, "%d-%d %s\n", r.Start, r.End, s.dim.Sprint(snippet(text[r.Start:r.End], 40)))
	}
	return nil
}

// snippet quotes s, shortened to at most n code points
func snippet(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return fmt.Sprintf("%q", s)
	}
	runes := []rune(s)
	return fmt.Sprintf("%q...", string(runes[:n]))
}
