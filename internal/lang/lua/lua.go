// Package lua matches Lua blocks: function/if/for/while/do ... end and
// repeat ... until.
package lua

import (
	"strings"

	"github.com/jarredhawkins/goblock-lsp/internal/parser"
	"github.com/jarredhawkins/goblock-lsp/internal/types"
)

// Language is the Lua block language
type Language struct{}

// New returns the Lua language
func New() *Language {
	return &Language{}
}

func (l *Language) Name() string         { return "lua" }
func (l *Language) Extensions() []string { return []string{".lua"} }

func (l *Language) Keywords() parser.Keywords {
	return parser.Keywords{
		Open:   []string{"function", "if", "for", "while", "repeat", "do"},
		Middle: []string{"then", "elseif", "else"},
		Close:  []string{"end", "until"},
	}
}

func (l *Language) PairRules() *parser.PairRules {
	return &parser.PairRules{
		Closers:   map[string][]string{"until": {"repeat"}},
		Exclusive: []string{"repeat"},
		Middles: map[string][]string{
			"then":   {"if"},
			"elseif": {"if"},
			"else":   {"if"},
		},
	}
}

func (l *Language) ExcludedRegions(text string) types.Regions {
	return parser.ScanRegions(text,
		matchComment,
		matchLongString,
		parser.Quoted('"', parser.EscapeBackslash, false),
		parser.Quoted('\'', parser.EscapeBackslash, false),
	)
}

// matchComment matches `--` line comments and `--[==[ ... ]==]` block comments
func matchComment(text string, pos int) (int, bool) {
	if !strings.HasPrefix(text[pos:], "--") {
		return 0, false
	}
	if level, ok := longBracketLevel(text, pos+2); ok {
		return scanLongBracket(text, pos+2, level), true
	}
	return parser.LineEnd(text, pos), true
}

func matchLongString(text string, pos int) (int, bool) {
	level, ok := longBracketLevel(text, pos)
	if !ok {
		return 0, false
	}
	return scanLongBracket(text, pos, level), true
}

// longBracketLevel reports whether a `[=*[` opener starts at pos and its level
func longBracketLevel(text string, pos int) (int, bool) {
	if pos >= len(text) || text[pos] != '[' {
		return 0, false
	}
	i := pos + 1
	for i < len(text) && text[i] == '=' {
		i++
	}
	if i < len(text) && text[i] == '[' {
		return i - pos - 1, true
	}
	return 0, false
}

// scanLongBracket returns the end of the long bracket opened at pos. The
// closer must carry the same number of `=` signs.
func scanLongBracket(text string, pos, level int) int {
	closer := "]" + strings.Repeat("=", level) + "]"
	start := pos + level + 2
	if idx := strings.Index(text[start:], closer); idx >= 0 {
		return start + idx + len(closer)
	}
	return len(text)
}

// ValidOpen rejects the `do` that belongs to a `for` or `while` header
func (l *Language) ValidOpen(src *parser.Source, tok types.Token) bool {
	if tok.Value != "do" {
		return true
	}
	return !isLoopConnector(src, tok.Start)
}

// stopWords end the backward search for a loop header
var stopWords = map[string]bool{
	"do": true, "end": true, "then": true, "else": true, "elseif": true,
	"repeat": true, "until": true, "function": true, "return": true,
	"break": true, "local": true, "goto": true, "if": true,
}

// isLoopConnector walks back over the code before a `do`, skipping bracketed
// groups, until it finds a keyword. A `for` or `while` makes it a connector.
func isLoopConnector(src *parser.Source, pos int) bool {
	text := src.Text
	i := pos - 1
	depth := 0
	for i >= 0 {
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
			if depth > 0 {
				depth--
			}
			i--
		case parser.IsIdent(c):
			end := i + 1
			for i >= 0 && parser.IsIdent(text[i]) {
				i--
			}
			if depth > 0 {
				continue
			}
			word := text[i+1 : end]
			if word == "for" || word == "while" {
				return true
			}
			if stopWords[word] {
				return false
			}
		case c == ';' && depth == 0:
			return false
		default:
			i--
		}
	}
	return false
}
