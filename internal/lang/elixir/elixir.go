// Package elixir matches Elixir do ... end blocks and fn ... end closures.
package elixir

import (
	"strings"

	"github.com/jarredhawkins/goblock-lsp/internal/parser"
	"github.com/jarredhawkins/goblock-lsp/internal/types"
)

// Language is the Elixir block language
type Language struct{}

// New returns the Elixir language
func New() *Language {
	return &Language{}
}

func (l *Language) Name() string         { return "elixir" }
func (l *Language) Extensions() []string { return []string{".ex", ".exs"} }

// headed openers take a `do` later in the same statement and consume it
var headed = []string{
	"defmodule", "def", "defp", "defmacro", "defmacrop", "defprotocol", "defimpl",
	"if", "unless", "case", "cond", "with", "for", "receive", "try", "quote",
}

var headedSet = func() map[string]bool {
	m := make(map[string]bool, len(headed))
	for _, w := range headed {
		m[w] = true
	}
	return m
}()

func (l *Language) Keywords() parser.Keywords {
	return parser.Keywords{
		Open:   append(append([]string(nil), headed...), "fn", "do"),
		Middle: []string{"else", "catch", "rescue", "after"},
		Close:  []string{"end"},
	}
}

var functions = []string{"def", "defp", "defmacro", "defmacrop"}

func (l *Language) PairRules() *parser.PairRules {
	return &parser.PairRules{
		Middles: map[string][]string{
			"else":   {"if", "unless", "with", "try"},
			"after":  {"receive", "try"},
			"catch":  append([]string{"try"}, functions...),
			"rescue": append([]string{"try"}, functions...),
		},
	}
}

func (l *Language) ValidOpen(src *parser.Source, tok types.Token) bool {
	if !standalone(src, tok) {
		return false
	}
	switch tok.Value {
	case "fn":
		return true
	case "do":
		return !consumedDo(src, tok.Start)
	}
	return statementDo(src, tok.End)
}

func (l *Language) ValidMiddle(src *parser.Source, tok types.Token) bool {
	return standalone(src, tok)
}

func (l *Language) ValidClose(src *parser.Source, tok types.Token) bool {
	return standalone(src, tok)
}

// standalone rejects keyword-argument keys (`do:`, `else:`) and qualified
// calls (`Kernel.if`)
func standalone(src *parser.Source, tok types.Token) bool {
	text := src.Text
	if tok.Start > 0 && (text[tok.Start-1] == '.' || text[tok.Start-1] == '@') {
		return false
	}
	if tok.End < len(text) {
		switch text[tok.End] {
		case ':':
			return tok.End+1 < len(text) && text[tok.End+1] == ':'
		case '?', '!':
			return false
		}
	}
	return true
}

// continued reports whether the line ending at the terminator at pos carries
// on to the next line
func continued(src *parser.Source, pos int) bool {
	prev := src.PrevCode(pos, true)
	if prev < 0 {
		return false
	}
	return strings.IndexByte(",([{=|+-*/<>&\\", src.Text[prev]) >= 0
}

// statementDo reports whether a block `do` follows pos in the same statement.
// The `do:` one-liner form does not count.
func statementDo(src *parser.Source, pos int) bool {
	text := src.Text
	depth, fns := 0, 0
	for i := pos; i < len(text); {
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
			if depth == 0 {
				return false
			}
			depth--
			i++
		case c == '\n' || c == '\r':
			if depth == 0 && !continued(src, i) {
				return false
			}
			i++
		case parser.IsIdent(c):
			start := i
			for i < len(text) && parser.IsIdent(text[i]) {
				i++
			}
			if depth > 0 || (start > 0 && text[start-1] == '.') {
				continue
			}
			switch text[start:i] {
			case "fn":
				fns++
			case "end":
				if fns == 0 {
					return false
				}
				fns--
			case "do":
				if fns > 0 {
					continue
				}
				return i >= len(text) || text[i] != ':'
			}
		default:
			i++
		}
	}
	return false
}

// consumedDo reports whether the `do` at pos belongs to a headed opener
// earlier in the same statement
func consumedDo(src *parser.Source, pos int) bool {
	text := src.Text
	depth, ends := 0, 0
	for i := pos - 1; i >= 0; {
		if r, ok := src.Regions.Find(i); ok {
			i = r.Start - 1
			continue
		}
		c := text[i]
		switch {
		case c == ')' || c == ']' || c == '}':
			depth++
			i--
		case c == '(' || c == '[' || c == '{':
			if depth == 0 {
				return false
			}
			depth--
			i--
		case c == '\n' || c == '\r':
			if depth == 0 && !continued(src, i) {
				return false
			}
			i--
		case parser.IsIdent(c):
			end := i + 1
			for i >= 0 && parser.IsIdent(text[i]) {
				i--
			}
			if depth > 0 || (i >= 0 && text[i] == '.') {
				continue
			}
			switch word := text[i+1 : end]; {
			case word == "end":
				ends++
			case word == "fn":
				if ends > 0 {
					ends--
				}
			case word == "do":
				return false
			case headedSet[word] && ends == 0:
				return true
			}
		default:
			i--
		}
	}
	return false
}

func (l *Language) ExcludedRegions(text string) types.Regions {
	return parser.ScanRegions(text,
		matchHeredoc,
		matchString,
		matchSigil,
		matchChar,
		matchAtom,
		parser.LineComment("#"),
	)
}

// matchHeredoc matches `"""` and `'''` heredocs
func matchHeredoc(text string, pos int) (int, bool) {
	for _, q := range []string{`"""`, `'''`} {
		if strings.HasPrefix(text[pos:], q) {
			return closeTriple(text, pos+3, q), true
		}
	}
	return 0, false
}

func closeTriple(text string, pos int, q string) int {
	for i := pos; i < len(text); i++ {
		if text[i] == '\\' {
			i++
			continue
		}
		if strings.HasPrefix(text[i:], q) {
			return i + len(q)
		}
	}
	return len(text)
}

func matchString(text string, pos int) (int, bool) {
	c := text[pos]
	if c != '"' && c != '\'' {
		return 0, false
	}
	return scanLiteral(text, pos, parser.Literal{Close: c, Interp: true}, false), true
}

// scanLiteral scans a literal whose interpolations may hold further strings
// and sigils
func scanLiteral(text string, pos int, lit parser.Literal, multiline bool) int {
	return parser.ScanLiteral(text, pos, lit, multiline, nestedSigil)
}

// nestedSigil opens a single-delimiter sigil found inside a `#{ }` body
func nestedSigil(text string, i int) (parser.Literal, int, bool) {
	if i > 0 && parser.IsIdent(text[i-1]) {
		return parser.Literal{}, 0, false
	}
	lit, delim, ok := sigilStart(text, i)
	if !ok || strings.HasPrefix(text[delim:], strings.Repeat(string(text[delim]), 3)) {
		return parser.Literal{}, 0, false
	}
	return lit, delim, true
}

// sigilStart reports whether a sigil such as `~r/`, `~s(` or `~W[` starts at
// pos, returning its delimiters and the offset of the opening delimiter
func sigilStart(text string, pos int) (parser.Literal, int, bool) {
	if text[pos] != '~' || pos+2 >= len(text) {
		return parser.Literal{}, 0, false
	}
	i := pos + 1
	c := text[i]
	if c >= 'A' && c <= 'Z' {
		for i < len(text) && text[i] >= 'A' && text[i] <= 'Z' {
			i++
		}
	} else if c >= 'a' && c <= 'z' {
		i++
	} else {
		return parser.Literal{}, 0, false
	}
	if i >= len(text) {
		return parser.Literal{}, 0, false
	}
	lit := parser.Literal{Close: parser.ClosingDelimiter(text[i]), Interp: c >= 'a' && c <= 'z'}
	switch d := text[i]; d {
	case '"', '\'', '/', '|':
	case '(', '[', '{', '<':
		lit.Open = d
	default:
		return parser.Literal{}, 0, false
	}
	return lit, i, true
}

// matchSigil matches `~r/.../i`, `~s(...)`, `~W[...]`, `~S"""..."""` and the
// other sigil forms
func matchSigil(text string, pos int) (int, bool) {
	lit, i, ok := sigilStart(text, pos)
	if !ok {
		return 0, false
	}

	var end int
	if d := text[i]; d == '"' || d == '\'' {
		if q := strings.Repeat(string(d), 3); strings.HasPrefix(text[i:], q) {
			end = closeTriple(text, i+3, q)
		} else {
			end = scanLiteral(text, i, lit, true)
		}
	} else {
		end = scanLiteral(text, i, lit, true)
	}
	for end < len(text) && parser.IsIdent(text[end]) {
		end++
	}
	return end, true
}

// matchChar matches `?a` and `?\n` character literals
func matchChar(text string, pos int) (int, bool) {
	if text[pos] != '?' || pos+1 >= len(text) {
		return 0, false
	}
	if pos > 0 && parser.IsIdent(text[pos-1]) {
		return 0, false
	}
	c := text[pos+1]
	if parser.IsSpace(c) {
		return 0, false
	}
	if c == '\\' {
		return min(pos+3, len(text)), true
	}
	return pos + 2, true
}

// matchAtom matches `:name` and `:"quoted"` atoms
func matchAtom(text string, pos int) (int, bool) {
	if text[pos] != ':' || pos+1 >= len(text) {
		return 0, false
	}
	if pos > 0 && (text[pos-1] == ':' || parser.IsIdent(text[pos-1])) {
		return 0, false
	}
	c := text[pos+1]
	switch {
	case c == '"' || c == '\'':
		return scanLiteral(text, pos+1, parser.Literal{Close: c, Interp: true}, false), true
	case parser.IsIdent(c) && !parser.IsDigit(c):
		i := pos + 1
		for i < len(text) && parser.IsIdent(text[i]) {
			i++
		}
		if i < len(text) && (text[i] == '?' || text[i] == '!') {
			i++
		}
		return i, true
	}
	return 0, false
}
