// Package matlab matches MATLAB blocks. Octave builds on it through Dialect.
package matlab

import (
	"strings"

	"github.com/jarredhawkins/goblock-lsp/internal/parser"
	"github.com/jarredhawkins/goblock-lsp/internal/types"
)

// Dialect configures a MATLAB-family language
type Dialect struct {
	Name       string
	Extensions []string
	Priority   int

	// ExtraOpen, ExtraMiddle and ExtraClose extend the MATLAB keyword sets
	ExtraOpen   []string
	ExtraMiddle []string
	ExtraClose  []string

	// Closers, Exclusive and Middles are merged into the MATLAB pair rules
	Closers   map[string][]string
	Exclusive []string
	Middles   map[string][]string
	Fallback  bool

	// Strict closers are typed closers excluded from Fallback
	Strict []string

	// Regions are tried before the MATLAB matchers at every position
	Regions []parser.RegionMatcher
}

// Language is a MATLAB-family block language
type Language struct {
	d Dialect
}

// New returns the MATLAB language
func New() *Language {
	return NewDialect(Dialect{
		Name:       "matlab",
		Extensions: []string{".m"},
		Priority:   1,
	})
}

// NewDialect returns a MATLAB-family language configured by d
func NewDialect(d Dialect) *Language {
	return &Language{d: d}
}

func (l *Language) Name() string         { return l.d.Name }
func (l *Language) Extensions() []string { return l.d.Extensions }
func (l *Language) Priority() int        { return l.d.Priority }

// sections open only directly inside a classdef
var sections = map[string]bool{
	"properties": true, "methods": true, "events": true, "enumeration": true,
}

func (l *Language) Keywords() parser.Keywords {
	open := []string{
		"function", "if", "for", "parfor", "while", "switch", "try", "classdef", "spmd", "arguments",
	}
	for s := range sections {
		open = append(open, s)
	}
	return parser.Keywords{
		Open:   append(open, l.d.ExtraOpen...),
		Middle: append([]string{"else", "elseif", "case", "otherwise", "catch"}, l.d.ExtraMiddle...),
		Close:  append([]string{"end"}, l.d.ExtraClose...),
	}
}

func (l *Language) PairRules() *parser.PairRules {
	middles := map[string][]string{
		"else":      {"if"},
		"elseif":    {"if"},
		"case":      {"switch"},
		"otherwise": {"switch"},
		"catch":     {"try"},
	}
	for k, v := range l.d.Middles {
		middles[k] = v
	}
	return &parser.PairRules{
		Closers:   l.d.Closers,
		Exclusive: l.d.Exclusive,
		Fallback:  l.d.Fallback,
		Strict:    l.d.Strict,
		Middles:   middles,
		AcceptOpen: func(tok types.Token, stack []*parser.OpenBlock) bool {
			var top string
			if len(stack) > 0 {
				top = parser.Key(stack[len(stack)-1].Open.Value)
			}
			switch key := parser.Key(tok.Value); {
			case sections[key]:
				return top == "classdef"
			case key == "arguments":
				return top == "function"
			}
			return true
		},
	}
}

func (l *Language) ValidOpen(src *parser.Source, tok types.Token) bool {
	if !standalone(src, tok) {
		return false
	}
	if sections[tok.Value] || tok.Value == "arguments" {
		return statementStart(src, tok.Start) && !assigned(src, tok.End)
	}
	return true
}

func (l *Language) ValidMiddle(src *parser.Source, tok types.Token) bool {
	return standalone(src, tok)
}

func (l *Language) ValidClose(src *parser.Source, tok types.Token) bool {
	return standalone(src, tok)
}

// standalone rejects struct fields `s.end` and `end` used as the last index
// inside `()`, `[]` or `{}`
func standalone(src *parser.Source, tok types.Token) bool {
	if at := src.PrevCode(tok.Start, true); at >= 0 && src.Text[at] == '.' {
		return false
	}
	return src.EnclosingBracket(tok.Start) < 0
}

func statementStart(src *parser.Source, pos int) bool {
	at := src.PrevCode(pos, true)
	return at < 0 || src.Text[at] == ';' || src.Text[at] == ','
}

// assigned reports whether the word ending at pos is assigned to
func assigned(src *parser.Source, pos int) bool {
	at := src.NextCode(pos, true)
	if at < 0 || src.Text[at] != '=' {
		return false
	}
	return at+1 >= len(src.Text) || src.Text[at+1] != '='
}

func (l *Language) ExcludedRegions(text string) types.Regions {
	matchers := append(append([]parser.RegionMatcher(nil), l.d.Regions...),
		LineBlockComment("%{", "%}"),
		parser.LineComment("%"),
		parser.LineComment("..."),
		parser.Quoted('"', parser.EscapeDoubled, false),
		matchSingle,
	)
	return parser.ScanRegions(text, matchers...)
}

// LineBlockComment matches block comments whose markers stand alone on their
// lines. Nested openers are counted. An unterminated comment runs to the end
// of text.
func LineBlockComment(open, close string) parser.RegionMatcher {
	return func(text string, pos int) (int, bool) {
		if !strings.HasPrefix(text[pos:], open) || !aloneOnLine(text, pos, len(open)) {
			return 0, false
		}
		depth := 0
		for line := parser.LineStart(text, pos); line < len(text); line = parser.NextLineStart(text, line) {
			end := parser.LineEnd(text, line)
			switch strings.TrimSpace(text[line:end]) {
			case open:
				depth++
			case close:
				depth--
				if depth == 0 {
					return end, true
				}
			}
		}
		return len(text), true
	}
}

func aloneOnLine(text string, pos, n int) bool {
	return parser.IsLineStart(text, pos) &&
		strings.TrimSpace(text[pos+n:parser.LineEnd(text, pos)]) == ""
}

// matchSingle matches `'...'` strings. A quote right after a value is the
// transpose operator, except a digit followed by a letter reads as a string.
func matchSingle(text string, pos int) (int, bool) {
	if text[pos] != '\'' {
		return 0, false
	}
	if pos > 0 {
		c := text[pos-1]
		if parser.IsIdent(c) || c == ')' || c == ']' || c == '}' || c == '.' || c == '\'' {
			if !parser.IsDigit(c) || pos+1 >= len(text) || !isLetter(text[pos+1]) {
				return 0, false
			}
		}
	}
	return parser.ScanQuoted(text, pos, '\'', parser.EscapeDoubled, false), true
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
