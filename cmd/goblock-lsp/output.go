package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// levelColors are cycled by nest level
var levelColors = []color.Attribute{
	color.FgYellow, color.FgMagenta, color.FgCyan, color.FgGreen, color.FgBlue, color.FgRed,
}

// styles holds the formatters for human output
type styles struct {
	levels  []*color.Color
	heading *color.Color
	dim     *color.Color
}

// newStyles creates color formatters. enabled=false respects --no-color,
// NO_COLOR and non-terminal output.
func newStyles(enabled bool) *styles {
	s := &styles{
		heading: color.New(color.Bold),
		dim:     color.New(color.Faint),
	}
	for _, attr := range levelColors {
		s.levels = append(s.levels, color.New(attr, color.Bold))
	}
	if !enabled {
		s.heading.DisableColor()
		s.dim.DisableColor()
		for _, c := range s.levels {
			c.DisableColor()
		}
	}
	return s
}

func (s *styles) level(n int) *color.Color {
	return s.levels[n%len(s.levels)]
}

// colorEnabled decides whether w gets colored output
func colorEnabled(w io.Writer) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isTerminal(w)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
