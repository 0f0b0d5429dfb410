// Package julia matches Julia blocks. `begin` and `end` inside indexing
// brackets and comprehension `for`/`if` clauses are not block keywords.
package julia

import (
	"strings"

	"github.com/jarredhawkins/goblock-lsp/internal/parser"
	"github.com/jarredhawkins/goblock-lsp/internal/types"
)

// Language is the Julia block language
type Language struct{}

// New returns the Julia language
func New() *Language {
	return &Language{}
}

func (l *Language) Name() string         { return "julia" }
func (l *Language) Extensions() []string { return []string{".jl"} }

func (l *Language) Keywords() parser.Keywords {
	return parser.Keywords{
		Open: []string{
			"function", "if", "for", "while", "begin", "let", "module", "baremodule",
			"struct", "macro", "quote", "try", "do",
		},
		Middle: []string{"else", "elseif", "catch", "finally"},
		Close:  []string{"end"},
	}
}

func (l *Language) PairRules() *parser.PairRules {
	return &parser.PairRules{
		Middles: map[string][]string{
			"elseif":  {"if"},
			"else":    {"if", "try"},
			"catch":   {"try"},
			"finally": {"try"},
		},
	}
}

func (l *Language) ValidOpen(src *parser.Source, tok types.Token) bool {
	if !standalone(src, tok) {
		return false
	}
	b := src.EnclosingBracket(tok.Start)
	if b < 0 {
		return true
	}
	switch tok.Value {
	case "for":
		// generator or comprehension
		return false
	case "if":
		return !hasWordAtLevel(src, b+1, tok.Start, "for")
	case "begin":
		return !indexing(src, b) || openBlocks(src, b+1, tok.Start) > 0
	}
	return true
}

func (l *Language) ValidMiddle(src *parser.Source, tok types.Token) bool {
	return standalone(src, tok)
}

func (l *Language) ValidClose(src *parser.Source, tok types.Token) bool {
	if !standalone(src, tok) {
		return false
	}
	b := src.EnclosingBracket(tok.Start)
	return b < 0 || openBlocks(src, b+1, tok.Start) > 0
}

// standalone rejects field access `x.end` and symbols `:begin`
func standalone(src *parser.Source, tok types.Token) bool {
	if tok.Start == 0 {
		return true
	}
	switch src.Text[tok.Start-1] {
	case '.', ':', '@':
		return false
	}
	return true
}

// indexing reports whether the bracket at b indexes a value: `a[`, `f(x)[`
func indexing(src *parser.Source, b int) bool {
	if src.Text[b] != '[' || b == 0 {
		return false
	}
	c := src.Text[b-1]
	return parser.IsIdent(c) || c == ')' || c == ']' || c == '}' || c == '\''
}

// blockOpeners are the keywords that open a block with an `end` even inside
// brackets
var blockOpeners = map[string]bool{
	"function": true, "let": true, "quote": true, "do": true, "try": true,
	"while": true, "macro": true, "struct": true, "module": true, "baremodule": true,
}

// openBlocks counts the blocks opened and not yet closed in [start, end) at
// the bracket level of start
func openBlocks(src *parser.Source, start, end int) int {
	text := src.Text
	open, depth := 0, 0
	indexed := start > 0 && indexing(src, start-1)
	for i := start; i < end; {
		if r, ok := src.Regions.Find(i); ok {
			i = r.End
			continue
		}
		c := text[i]
		switch {
		case c == '(' || c == '[' || c == '{':
			depth++
			i++
		case c == ')' || c == ']' || c == '}':
			depth--
			i++
		case parser.IsIdent(c):
			from := i
			for i < end && parser.IsIdent(text[i]) {
				i++
			}
			if depth != 0 || (from > 0 && (text[from-1] == '.' || text[from-1] == ':')) {
				continue
			}
			switch word := text[from:i]; {
			case word == "begin":
				if !indexed {
					open++
				}
			case word == "end":
				if open > 0 {
					open--
				}
			case blockOpeners[word]:
				open++
			}
		default:
			i++
		}
	}
	return open
}

// hasWordAtLevel reports whether word occurs in [start, end) outside nested
// brackets
func hasWordAtLevel(src *parser.Source, start, end int, word string) bool {
	code := src.CodeBetween(start, end)
	depth := 0
	for i := 0; i < len(code); i++ {
		switch c := code[i]; {
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
		case depth == 0 && parser.HasWordAt(code, i, word, false):
			return true
		}
	}
	return false
}

func (l *Language) ExcludedRegions(text string) types.Regions {
	return parser.ScanRegions(text,
		parser.BlockComment("#=", "=#", true),
		parser.LineComment("#"),
		matchString,
		matchChar,
	)
}

// matchString matches `"..."`, `"""..."""` and backtick commands, following
// `$( )` interpolations
func matchString(text string, pos int) (int, bool) {
	c := text[pos]
	if c != '"' && c != '`' {
		return 0, false
	}
	delim := string(c)
	if strings.HasPrefix(text[pos:], strings.Repeat(delim, 3)) {
		return scanString(text, pos+3, strings.Repeat(delim, 3), true), true
	}
	return scanString(text, pos+1, delim, false), true
}

// strFrame is a string body, or a `$( )` interpolation when delim is empty
type strFrame struct {
	delim     string
	parens    int
	multiline bool
}

// scanString returns the end of a string body starting at pos and closed by
// delim. Strings nested in `$( )` interpolations are tracked on a stack.
func scanString(text string, pos int, delim string, multiline bool) int {
	stack := []strFrame{{delim: delim, multiline: multiline}}
	for i := pos; i < len(text); {
		top := &stack[len(stack)-1]
		c := text[i]
		if top.delim == "" {
			switch c {
			case '(':
				top.parens++
			case ')':
				if top.parens == 0 {
					stack = stack[:len(stack)-1]
				} else {
					top.parens--
				}
			case '"':
				stack = append(stack, strFrame{delim: `"`})
			}
			i++
			continue
		}
		switch {
		case c == '\\':
			i += 2
			continue
		case c == '$' && i+1 < len(text) && text[i+1] == '(':
			stack = append(stack, strFrame{})
			i += 2
			continue
		case strings.HasPrefix(text[i:], top.delim):
			i += len(top.delim)
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i
			}
			continue
		case (c == '\n' || c == '\r') && !top.multiline && len(stack) == 1:
			return i
		}
		i++
	}
	return len(text)
}

// matchChar matches `'c'` character literals. A quote after a value is the
// adjoint operator.
func matchChar(text string, pos int) (int, bool) {
	if text[pos] != '\'' {
		return 0, false
	}
	if pos > 0 {
		switch c := text[pos-1]; {
		case parser.IsIdent(c), c == ')', c == ']', c == '}', c == '\'', c == '.':
			return 0, false
		}
	}
	return parser.ScanQuoted(text, pos, '\'', parser.EscapeBackslash, false), true
}
