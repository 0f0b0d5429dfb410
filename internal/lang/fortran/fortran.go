// Package fortran matches Fortran program units and constructs, written as
// `end if`, `endif` or a bare `end`. Typed closers never fall back to another
// construct.
package fortran

import (
	"strings"

	"github.com/jarredhawkins/goblock-lsp/internal/parser"
	"github.com/jarredhawkins/goblock-lsp/internal/types"
)

// constructs are the openers, each closable by `end <kw>` and `end<kw>`
var constructs = []string{
	"program", "module", "submodule", "subroutine", "function", "procedure", "if", "do",
	"select", "where", "forall", "associate", "block", "critical", "type", "interface", "enum",
}

// units take a contains section
var units = []string{"program", "module", "submodule", "subroutine", "function", "procedure", "type"}

// Language is the Fortran block language
type Language struct{}

// New returns the Fortran language
func New() *Language {
	return &Language{}
}

func (l *Language) Name() string { return "fortran" }

func (l *Language) Extensions() []string {
	return []string{".f90", ".f95", ".f03", ".f08", ".f18", ".f", ".for", ".f77", ".fpp"}
}

func (l *Language) Keywords() parser.Keywords {
	return parser.Keywords{
		Open:            constructs,
		Middle:          []string{"else", "elsewhere", "case", "contains"},
		Close:           []string{"end"},
		CaseInsensitive: true,
		Compounds: []parser.Compound{
			{
				Pattern: `end[ \t]*(?:block[ \t]*data|` + strings.Join(constructs, "|") + `)`,
				Type:    types.BlockClose,
			},
			{Pattern: `else[ \t]*(?:if|where)|type[ \t]+is|class[ \t]+(?:is|default)`, Type: types.BlockMiddle},
		},
	}
}

func (l *Language) PairRules() *parser.PairRules {
	closers := make(map[string][]string)
	for _, kw := range constructs {
		closers["end "+kw] = []string{kw}
		closers["end"+kw] = []string{kw}
	}
	for _, form := range []string{"end block data", "endblock data", "end blockdata", "endblockdata"} {
		closers[form] = []string{"block"}
	}
	return &parser.PairRules{
		Closers: closers,
		Middles: map[string][]string{
			"else":          {"if"},
			"else if":       {"if"},
			"elseif":        {"if"},
			"elsewhere":     {"where"},
			"else where":    {"where"},
			"case":          {"select"},
			"type is":       {"select"},
			"class is":      {"select"},
			"class default": {"select"},
			"contains":      units,
		},
		// separate module procedure headers in an interface have no body
		AcceptOpen: func(tok types.Token, stack []*parser.OpenBlock) bool {
			if parser.Key(tok.Value) != "procedure" || len(stack) == 0 {
				return true
			}
			return parser.Key(stack[len(stack)-1].Open.Value) != "interface"
		},
	}
}

func isWord(c byte) bool { return parser.IsIdent(c) }

func (l *Language) ValidOpen(src *parser.Source, tok types.Token) bool {
	if !keywordUse(src, tok) {
		return false
	}
	next, nextAt := src.WordAfter(tok.End, isWord)
	prev := prevWord(src, tok.Start)
	switch parser.Key(tok.Value) {
	case "if":
		return hasWordAtTop(statementCode(src, tok.End), "then")
	case "where", "forall":
		return blockHeader(src, tok.End)
	case "do":
		// labelled `do 10 i = 1, n` ends at a labelled statement
		return nextAt < 0 || !parser.IsDigit(src.Text[nextAt])
	case "select":
		switch strings.ToLower(next) {
		case "case", "type", "rank":
			return true
		}
		return false
	case "module":
		switch strings.ToLower(next) {
		case "procedure", "function", "subroutine":
			return false
		}
	case "procedure":
		return strings.EqualFold(prev, "module") && nextAt >= 0
	case "type":
		if strings.EqualFold(prev, "select") {
			return false
		}
		at := src.NextCode(tok.End, true)
		return at < 0 || src.Text[at] != '('
	}
	return true
}

func (l *Language) ValidMiddle(src *parser.Source, tok types.Token) bool {
	if !keywordUse(src, tok) {
		return false
	}
	if strings.EqualFold(tok.Value, "case") && strings.EqualFold(prevWord(src, tok.Start), "select") {
		return false
	}
	return true
}

func (l *Language) ValidClose(src *parser.Source, tok types.Token) bool {
	return keywordUse(src, tok)
}

// keywordUse rejects keywords that are really names: components `a%end`,
// assignments `end = 1`, array elements `do(1) = 2`, arguments `f(end=1)` and
// entities declared after `::`
func keywordUse(src *parser.Source, tok types.Token) bool {
	if at := src.PrevCode(tok.Start, true); at >= 0 && src.Text[at] == '%' {
		return false
	}
	if at := src.NextCode(tok.End, true); at >= 0 {
		switch src.Text[at] {
		case '%':
			return false
		case '=':
			if at+1 >= len(src.Text) || (src.Text[at+1] != '=' && src.Text[at+1] != '>') {
				return false
			}
		}
	}
	if src.EnclosingBracket(tok.Start) >= 0 {
		return false
	}
	return !strings.Contains(src.CodeBetween(statementStart(src, tok.Start), tok.Start), "::")
}

// prevWord returns the word ending at the previous code byte on the line
func prevWord(src *parser.Source, pos int) string {
	w, _ := src.WordBefore(pos, isWord)
	return w
}

// statementStart returns the start of the logical statement containing pos,
// following `&` continuations back and splitting at `;`
func statementStart(src *parser.Source, pos int) int {
	start := src.LineStart(pos)
	for start > 0 {
		prev := src.PrevCode(start, false)
		if prev < 0 || src.Text[prev] != '&' {
			break
		}
		start = src.LineStart(prev)
	}
	if i := strings.LastIndexByte(src.CodeBetween(start, pos), ';'); i >= 0 {
		start += i + 1
	}
	return start
}

// statementEnd returns the end of the logical statement containing pos.
// Comment-only lines inside a continued statement are skipped.
func statementEnd(src *parser.Source, pos int) int {
	text := src.Text
	end := src.LineEnd(pos)
	for end < len(text) {
		last := src.PrevCode(end, true)
		if last < 0 || text[last] != '&' {
			break
		}
		next := src.NextCode(end, false)
		if next < 0 {
			return len(text)
		}
		end = src.LineEnd(next)
	}
	if i := strings.IndexByte(src.CodeBetween(pos, end), ';'); i >= 0 {
		end = pos + i
	}
	return end
}

// statementCode returns the rest of the logical statement after pos
func statementCode(src *parser.Source, pos int) string {
	return src.CodeBetween(pos, statementEnd(src, pos))
}

// hasWordAtTop reports whether word occurs in code outside parentheses
func hasWordAtTop(code, word string) bool {
	depth := 0
	for i := 0; i < len(code); i++ {
		switch c := code[i]; {
		case c == '(':
			depth++
		case c == ')':
			depth--
		case depth == 0 && parser.HasWordAt(code, i, word, true):
			return true
		}
	}
	return false
}

// blockHeader reports whether nothing but continuations follows the
// parenthesised mask of a `where` or `forall`, so the construct has a body
func blockHeader(src *parser.Source, pos int) bool {
	code := statementCode(src, pos)
	i := strings.IndexByte(code, '(')
	if i < 0 || strings.TrimSpace(code[:i]) != "" {
		return false
	}
	depth := 0
	for ; i < len(code); i++ {
		switch code[i] {
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth == 0 {
			break
		}
	}
	if i >= len(code) {
		return true
	}
	return strings.Trim(code[i+1:], " \t\r\n&") == ""
}

func (l *Language) ExcludedRegions(text string) types.Regions {
	return parser.ScanRegions(text,
		matchColumnOne,
		parser.LineComment("!"),
		parser.Quoted('\'', parser.EscapeDoubled, false),
		parser.Quoted('"', parser.EscapeDoubled, false),
	)
}

// matchColumnOne matches fixed-form comment lines (`C`, `c` or `*` in column
// 1) and preprocessor lines. A column one `c` that starts a word is free-form
// code such as `call` or `contains`, and so is a variable named `c`.
func matchColumnOne(text string, pos int) (int, bool) {
	if pos > 0 && text[pos-1] != '\n' && text[pos-1] != '\r' {
		return 0, false
	}
	switch text[pos] {
	case '*', '#':
	case 'C', 'c':
		if pos+1 < len(text) && parser.IsIdent(text[pos+1]) {
			return 0, false
		}
		if assignsVariable(text, pos+1) {
			return 0, false
		}
	default:
		return 0, false
	}
	return parser.LineEnd(text, pos), true
}

// assignsVariable reports whether the rest of a line that began with a
// one-letter name reads as an assignment to it: `c = 0`, `c(1) = 0` or
// `c%x = 0`.
func assignsVariable(text string, i int) bool {
	end := parser.LineEnd(text, i)
	skip := func() {
		for i < end && (text[i] == ' ' || text[i] == '\t') {
			i++
		}
	}
	skip()
	if i < end && text[i] == '(' {
		i = parser.ScanBalanced(text[:end], i, '(', ')')
		skip()
	}
	if i >= end {
		return false
	}
	switch text[i] {
	case '%':
		return true
	case '=':
		return i+1 >= end || text[i+1] != '='
	}
	return false
}
