// Package applescript matches AppleScript blocks. Statements are line based,
// so every block keyword must start its line.
package applescript

import (
	"strings"

	"github.com/jarredhawkins/goblock-lsp/internal/parser"
	"github.com/jarredhawkins/goblock-lsp/internal/types"
)

// Language is the AppleScript block language
type Language struct{}

// New returns the AppleScript language
func New() *Language {
	return &Language{}
}

func (l *Language) Name() string         { return "applescript" }
func (l *Language) Extensions() []string { return []string{".applescript", ".scpt"} }

func (l *Language) Keywords() parser.Keywords {
	return parser.Keywords{
		Open: []string{
			"tell", "if", "repeat", "try", "on", "to", "considering", "ignoring", "script",
		},
		Middle:          []string{"else"},
		Close:           []string{"end"},
		CaseInsensitive: true,
		Compounds: []parser.Compound{
			{Pattern: `using[ \t]+terms[ \t]+from|with[ \t]+(?:timeout|transaction)`, Type: types.BlockOpen},
			{Pattern: `else[ \t]+if|on[ \t]+error`, Type: types.BlockMiddle},
			// `end myHandler` closes a handler by name
			{Pattern: `end[ \t]+(?:using[ \t]+terms[ \t]+from|[A-Za-z_]\w*)`, Type: types.BlockClose},
		},
	}
}

func (l *Language) PairRules() *parser.PairRules {
	return &parser.PairRules{
		Closers: map[string][]string{
			"end tell":             {"tell"},
			"end if":               {"if"},
			"end repeat":           {"repeat"},
			"end try":              {"try"},
			"end considering":      {"considering"},
			"end ignoring":         {"ignoring"},
			"end using terms from": {"using terms from"},
			"end timeout":          {"with timeout"},
			"end transaction":      {"with transaction"},
			"end script":           {"script"},
		},
		Fallback: true,
		Middles: map[string][]string{
			"else":     {"if"},
			"else if":  {"if"},
			"on error": {"try"},
		},
	}
}

func (l *Language) ValidOpen(src *parser.Source, tok types.Token) bool {
	if !statementStart(src, tok.Start) {
		return false
	}
	switch parser.Key(tok.Value) {
	case "if":
		// `if x then return` is a whole statement
		return !codeAfterWord(src, tok.End, "then")
	case "tell":
		// `tell app "Finder" to activate`
		return !hasWord(restOfStatement(src, tok.End), "to")
	}
	return true
}

func (l *Language) ValidMiddle(src *parser.Source, tok types.Token) bool {
	return statementStart(src, tok.Start)
}

func (l *Language) ValidClose(src *parser.Source, tok types.Token) bool {
	return statementStart(src, tok.Start)
}

// continuation is the `¬` line continuation character
const continuation = "¬"

// statementStart reports whether pos begins a statement: the first code on a
// line that does not continue the previous one
func statementStart(src *parser.Source, pos int) bool {
	if !parser.IsLineStart(src.Text, pos) {
		return false
	}
	at := src.PrevCode(pos, false)
	return at < 0 || !strings.HasSuffix(src.Text[:at+1], continuation)
}

// restOfStatement returns the code after pos up to the end of its line,
// following `¬` continuations
func restOfStatement(src *parser.Source, pos int) string {
	end := src.LineEnd(pos)
	for end < len(src.Text) && strings.HasSuffix(strings.TrimRight(src.CodeBetween(pos, end), " \t"), continuation) {
		end = src.LineEnd(parser.NextLineStart(src.Text, end))
	}
	return src.CodeBetween(pos, end)
}

func hasWord(code, word string) bool {
	for i := range code {
		if parser.HasWordAt(code, i, word, true) {
			return true
		}
	}
	return false
}

// codeAfterWord reports whether word occurs in the rest of the statement and
// more code follows it
func codeAfterWord(src *parser.Source, pos int, word string) bool {
	code := restOfStatement(src, pos)
	for i := range code {
		if parser.HasWordAt(code, i, word, true) {
			return strings.TrimSpace(code[i+len(word):]) != ""
		}
	}
	return false
}

func (l *Language) ExcludedRegions(text string) types.Regions {
	return parser.ScanRegions(text,
		parser.LineComment("--"),
		parser.LineComment("#"),
		parser.BlockComment("(*", "*)", true),
		parser.Quoted('"', parser.EscapeBackslash, false),
		parser.Quoted('|', parser.EscapeNone, false),
	)
}
