// Package verilog matches Verilog and SystemVerilog blocks. Every closer is
// typed and an unmatched closer never falls back to another opener.
package verilog

import (
	"strings"

	"github.com/jarredhawkins/goblock-lsp/internal/parser"
	"github.com/jarredhawkins/goblock-lsp/internal/types"
)

// Language is the Verilog block language
type Language struct{}

// New returns the Verilog language
func New() *Language {
	return &Language{}
}

func (l *Language) Name() string         { return "verilog" }
func (l *Language) Extensions() []string { return []string{".v", ".vh", ".sv", ".svh"} }

// closers maps every closer to the openers it ends
var closers = map[string][]string{
	"end":          {"begin"},
	"endmodule":    {"module", "macromodule"},
	"endfunction":  {"function"},
	"endtask":      {"task"},
	"endcase":      {"case", "casex", "casez"},
	"join":         {"fork"},
	"join_any":     {"fork"},
	"join_none":    {"fork"},
	"endgenerate":  {"generate"},
	"endprimitive": {"primitive"},
	"endtable":     {"table"},
	"endspecify":   {"specify"},
	"endconfig":    {"config"},
	"endinterface": {"interface"},
	"endpackage":   {"package"},
	"endclass":     {"class"},
	"endgroup":     {"covergroup"},
	"endprogram":   {"program"},
	"endproperty":  {"property"},
	"endsequence":  {"sequence"},
	"endclocking":  {"clocking"},
}

func (l *Language) Keywords() parser.Keywords {
	var open, close []string
	seen := make(map[string]bool)
	for c, openers := range closers {
		close = append(close, c)
		for _, o := range openers {
			if !seen[o] {
				seen[o] = true
				open = append(open, o)
			}
		}
	}
	return parser.Keywords{
		Open:      open,
		Close:     close,
		WordChars: `\w$`,
	}
}

func (l *Language) PairRules() *parser.PairRules {
	return &parser.PairRules{Closers: closers}
}

func isWord(c byte) bool { return parser.IsIdent(c) || c == '$' }

func (l *Language) ValidOpen(src *parser.Source, tok types.Token) bool {
	before := prevWords(src, tok.Start, 2)
	prev := ""
	if len(before) > 0 {
		prev = before[0]
	}
	switch tok.Value {
	case "function", "task":
		// prototypes: `extern function`, `pure virtual task`, DPI imports
		switch prev {
		case "extern", "import", "export":
			return false
		case "virtual":
			return len(before) < 2 || before[1] != "pure"
		}
	case "class":
		return prev != "typedef"
	case "fork":
		return prev != "wait" && prev != "disable"
	case "interface":
		if prev == "virtual" {
			return false
		}
		next, _ := src.WordAfter(tok.End, isWord)
		return next != "class"
	case "property", "sequence":
		switch prev {
		case "assert", "assume", "cover", "restrict", "expect":
			return false
		}
	}
	return true
}

// prevWords returns up to n words before pos, nearest first, stopping at any
// punctuation
func prevWords(src *parser.Source, pos, n int) []string {
	var words []string
	src.WalkBackward(pos, isWord, func(st parser.Step) bool {
		if st.Word == "" {
			return st.Punct == '\n'
		}
		words = append(words, st.Word)
		return len(words) < n
	})
	return words
}

func (l *Language) ExcludedRegions(text string) types.Regions {
	return parser.ScanRegions(text,
		parser.LineComment("//"),
		parser.BlockComment("/*", "*/", false),
		parser.Quoted('"', parser.EscapeBackslash, false),
		matchEscapedIdent,
		matchDefine,
	)
}

// matchEscapedIdent matches `\name` identifiers, which end at whitespace
func matchEscapedIdent(text string, pos int) (int, bool) {
	if text[pos] != '\\' {
		return 0, false
	}
	i := pos + 1
	for i < len(text) && !parser.IsSpace(text[i]) {
		i++
	}
	return i, true
}

// matchDefine matches a `define macro body with its backslash continuations
func matchDefine(text string, pos int) (int, bool) {
	if !strings.HasPrefix(text[pos:], "`define") {
		return 0, false
	}
	for i := pos; ; {
		end := parser.LineEnd(text, i)
		if end >= len(text) || text[end-1] != '\\' {
			return end, true
		}
		i = parser.NextLineStart(text, end)
	}
}
