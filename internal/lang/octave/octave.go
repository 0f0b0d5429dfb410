// Package octave matches GNU Octave blocks: the MATLAB language plus the
// endXXX closers, do/until loops, unwind_protect and `#` comments. A stray
// `until` is dropped rather than closing some other block.
package octave

import (
	"github.com/jarredhawkins/goblock-lsp/internal/lang/matlab"
	"github.com/jarredhawkins/goblock-lsp/internal/parser"
)

// closers maps the Octave specific closers to the openers they end
var closers = map[string][]string{
	"endfunction":        {"function"},
	"endif":              {"if"},
	"endfor":             {"for"},
	"endparfor":          {"parfor"},
	"endwhile":           {"while"},
	"endswitch":          {"switch"},
	"end_try_catch":      {"try"},
	"endclassdef":        {"classdef"},
	"endproperties":      {"properties"},
	"endmethods":         {"methods"},
	"endevents":          {"events"},
	"endenumeration":     {"enumeration"},
	"endspmd":            {"spmd"},
	"end_unwind_protect": {"unwind_protect"},
	"until":              {"do"},
}

// Language is the Octave block language
type Language struct {
	*matlab.Language
}

// New returns the Octave language. It shares `.m` with MATLAB at a lower
// priority.
func New() *Language {
	close := make([]string, 0, len(closers))
	for c := range closers {
		close = append(close, c)
	}
	return &Language{matlab.NewDialect(matlab.Dialect{
		Name:        "octave",
		Extensions:  []string{".m"},
		ExtraOpen:   []string{"do", "unwind_protect"},
		ExtraMiddle: []string{"unwind_protect_cleanup"},
		ExtraClose:  close,
		Closers:     closers,
		Exclusive:   []string{"do"},
		Middles:     map[string][]string{"unwind_protect_cleanup": {"unwind_protect"}},
		Fallback:    true,
		Strict:      []string{"until"},
		Regions: []parser.RegionMatcher{
			matlab.LineBlockComment("#{", "#}"),
			parser.LineComment("#"),
			parser.Quoted('"', parser.EscapeBackslash, false),
		},
	})}
}
