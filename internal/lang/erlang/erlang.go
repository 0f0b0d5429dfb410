// Package erlang matches Erlang begin/case/if/receive/fun/try/maybe ... end
// expressions.
package erlang

import (
	"github.com/jarredhawkins/goblock-lsp/internal/parser"
	"github.com/jarredhawkins/goblock-lsp/internal/types"
)

// Language is the Erlang block language
type Language struct{}

// New returns the Erlang language
func New() *Language {
	return &Language{}
}

func (l *Language) Name() string         { return "erlang" }
func (l *Language) Extensions() []string { return []string{".erl", ".hrl", ".escript"} }

func (l *Language) Keywords() parser.Keywords {
	return parser.Keywords{
		Open:   []string{"begin", "case", "if", "receive", "fun", "try", "maybe"},
		Middle: []string{"of", "after", "catch"},
		Close:  []string{"end"},
	}
}

func (l *Language) PairRules() *parser.PairRules {
	return &parser.PairRules{
		Middles: map[string][]string{
			"of":    {"case", "try"},
			"after": {"receive", "try"},
			"catch": {"try"},
		},
	}
}

// ValidOpen rejects function references: `fun name/1`, `fun mod:name/2`
func (l *Language) ValidOpen(src *parser.Source, tok types.Token) bool {
	if tok.Value != "fun" {
		return true
	}
	next := src.NextCode(tok.End, false)
	if next < 0 {
		return false
	}
	if src.Text[next] == '(' {
		return true
	}
	// named fun: `fun Fact(0) -> 1; Fact(N) -> ... end`
	name, at := src.WordAfter(tok.End, parser.IsIdent)
	if name == "" {
		return false
	}
	after := at + len(name)
	return after < len(src.Text) && src.Text[after] == '('
}

func (l *Language) ExcludedRegions(text string) types.Regions {
	return parser.ScanRegions(text,
		parser.LineComment("%"),
		matchChar,
		parser.Quoted('"', parser.EscapeBackslash, false),
		parser.Quoted('\'', parser.EscapeBackslash, false),
	)
}

// matchChar matches `$c` and `$\n` character literals
func matchChar(text string, pos int) (int, bool) {
	if text[pos] != '$' || pos+1 >= len(text) {
		return 0, false
	}
	if text[pos+1] == '\\' {
		return min(pos+3, len(text)), true
	}
	return pos + 2, true
}
