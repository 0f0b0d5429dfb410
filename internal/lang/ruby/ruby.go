// Package ruby matches Ruby blocks. The scanner and validators are shared with
// Crystal through Dialect.
package ruby

import (
	"github.com/jarredhawkins/goblock-lsp/internal/parser"
	"github.com/jarredhawkins/goblock-lsp/internal/types"
)

// Dialect configures a Ruby-family language
type Dialect struct {
	Name       string
	Extensions []string

	// ExtraOpen extends the Ruby opener set
	ExtraOpen []string

	// EmbeddedDocs enables `=begin`/`=end` and the `__END__` data section
	EmbeddedDocs bool

	// CharLiterals enables `?c` character literals
	CharLiterals bool

	// Macros excludes `{% ... %}` and `{{ ... }}` macro bodies
	Macros bool
}

// Language is a Ruby-family block language
type Language struct {
	d Dialect
}

// New returns the Ruby language
func New() *Language {
	return NewDialect(Dialect{
		Name:         "ruby",
		Extensions:   []string{".rb", ".rake", ".gemspec", ".ru", ".rbw"},
		EmbeddedDocs: true,
		CharLiterals: true,
	})
}

// NewDialect returns a Ruby-family language configured by d
func NewDialect(d Dialect) *Language {
	return &Language{d: d}
}

func (l *Language) Name() string         { return l.d.Name }
func (l *Language) Extensions() []string { return l.d.Extensions }

var (
	openers = []string{"def", "class", "module", "if", "unless", "while", "until", "for", "case", "begin", "do"}
	middles = []string{"else", "elsif", "when", "in", "rescue", "ensure", "then"}
)

func (l *Language) Keywords() parser.Keywords {
	open := append(append([]string(nil), openers...), l.d.ExtraOpen...)
	return parser.Keywords{
		Open:   open,
		Middle: middles,
		Close:  []string{"end"},
	}
}

// bodies are the openers whose bodies take rescue/ensure/else clauses
var bodies = []string{"begin", "def", "class", "module", "do"}

func (l *Language) PairRules() *parser.PairRules {
	return &parser.PairRules{
		Middles: map[string][]string{
			"then":   {"if", "unless", "case", "begin"},
			"elsif":  {"if"},
			"when":   {"case", "select"},
			"in":     {"case"},
			"rescue": bodies,
			"ensure": bodies,
			"else":   append([]string{"if", "unless", "case", "select"}, bodies...),
		},
	}
}

// expressionKeywords are followed by an expression, so an `if` after them
// starts a block rather than modifying a statement
var expressionKeywords = map[string]bool{
	"then": true, "else": true, "do": true, "begin": true, "ensure": true,
	"and": true, "or": true, "not": true, "in": true, "when": true,
}

func (l *Language) ValidOpen(src *parser.Source, tok types.Token) bool {
	if !standalone(src, tok) {
		return false
	}
	switch tok.Value {
	case "if", "unless", "while", "until":
		return startsExpression(src, tok.Start)
	case "do":
		return !loopConnector(src, tok.Start)
	case "def":
		return !endlessDef(src, tok.End)
	}
	return true
}

func (l *Language) ValidMiddle(src *parser.Source, tok types.Token) bool {
	if !standalone(src, tok) {
		return false
	}
	if tok.Value == "rescue" {
		// `x = risky rescue nil`
		prev := src.PrevCode(tok.Start, true)
		return prev < 0 || src.Text[prev] == ';'
	}
	return true
}

func (l *Language) ValidClose(src *parser.Source, tok types.Token) bool {
	return standalone(src, tok)
}

// standalone rejects keywords used as method names, hash keys, symbols or
// variables: `x.end`, `end?`, `if:`, `@class`, `def end`.
func standalone(src *parser.Source, tok types.Token) bool {
	text := src.Text
	if tok.Start > 0 {
		switch text[tok.Start-1] {
		case '.', '@', '$', ':':
			return false
		}
	}
	if tok.End < len(text) {
		var next byte
		if tok.End+1 < len(text) {
			next = text[tok.End+1]
		}
		switch text[tok.End] {
		case '?', '!':
			return false
		case '=':
			if next != '=' && next != '~' && next != '>' {
				return false
			}
		case ':':
			if next != ':' {
				return false
			}
		}
	}
	if w, _ := src.WordBefore(tok.Start, parser.IsIdent); w == "def" {
		return false
	}
	return true
}

// startsExpression reports whether nothing but an operator, an opening bracket
// or an expression keyword precedes pos on its logical line. Anything else
// makes the keyword a statement modifier.
func startsExpression(src *parser.Source, pos int) bool {
	text := src.Text
	i := pos - 1
	for {
		for i >= 0 && (text[i] == ' ' || text[i] == '\t') {
			i--
		}
		if i < 0 {
			return true
		}
		c := text[i]
		if c == '\n' || c == '\r' {
			j := i - 1
			if c == '\n' && j >= 0 && text[j] == '\r' {
				j--
			}
			for j >= 0 && (text[j] == ' ' || text[j] == '\t') {
				j--
			}
			if j >= 0 && text[j] == '\\' && !src.InRegion(j) {
				i = j - 1
				continue
			}
			return true
		}
		if src.InRegion(i) {
			// a literal ends right here
			return false
		}
		if parser.IsIdent(c) {
			start := i
			for start > 0 && parser.IsIdent(text[start-1]) {
				start--
			}
			if start > 0 && text[start-1] == '.' {
				return false
			}
			return expressionKeywords[text[start:i+1]]
		}
		switch c {
		case ')', ']', '}':
			return false
		case '?', '!':
			// predicate method names: `valid? if x`
			return i == 0 || !parser.IsIdent(text[i-1])
		}
		return true
	}
}

// loopConnector reports whether a `do` separates a while/until/for header from
// its body. Bracketed groups and literals on the line are skipped.
func loopConnector(src *parser.Source, pos int) bool {
	text := src.Text
	depth := 0
	for i := pos - 1; i >= 0; {
		if r, ok := src.Regions.Find(i); ok {
			i = r.Start - 1
			continue
		}
		c := text[i]
		switch {
		case c == '\n' || c == '\r':
			return false
		case c == ';' && depth == 0:
			return false
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
			if depth > 0 || (i >= 0 && text[i] == '.') {
				continue
			}
			switch text[i+1 : end] {
			case "while", "until", "for":
				return true
			case "do":
				return false
			}
		default:
			i--
		}
	}
	return false
}

// endlessDef reports whether the def whose keyword ends at pos is the
// single-expression form `def name(args) = expr`, which has no `end`.
func endlessDef(src *parser.Source, pos int) bool {
	text := src.Text
	i := pos
	for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
		i++
	}
	for i < len(text) && !parser.IsSpace(text[i]) && text[i] != '(' && text[i] != ';' {
		i++
	}
	if i < len(text) && text[i] == '(' {
		i = parser.ScanBalanced(text, i, '(', ')')
	}
	for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
		i++
	}
	if i >= len(text) || text[i] != '=' {
		return false
	}
	if i+1 < len(text) {
		switch text[i+1] {
		case '=', '~', '>':
			return false
		}
	}
	return true
}
