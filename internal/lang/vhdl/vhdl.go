// Package vhdl matches VHDL design units, processes, and sequential and
// generate statements.
package vhdl

import (
	"github.com/jarredhawkins/goblock-lsp/internal/parser"
	"github.com/jarredhawkins/goblock-lsp/internal/types"
)

// Language is the VHDL block language
type Language struct{}

// New returns the VHDL language
func New() *Language {
	return &Language{}
}

func (l *Language) Name() string         { return "vhdl" }
func (l *Language) Extensions() []string { return []string{".vhd", ".vhdl"} }

func (l *Language) Keywords() parser.Keywords {
	return parser.Keywords{
		Open: []string{
			"entity", "architecture", "process", "if", "case", "for", "while", "loop", "generate",
			"component", "package", "function", "procedure", "block", "record", "protected",
			"configuration", "units",
		},
		Middle:          []string{"else", "elsif", "when", "begin", "then"},
		Close:           []string{"end"},
		CaseInsensitive: true,
		Compounds: []parser.Compound{{
			Pattern: `end\s+(?:package\s+body|protected\s+body|if|loop|case|process|generate|component|` +
				`record|units|block|entity|architecture|package|function|procedure|protected|configuration|for)`,
			Type: types.BlockClose,
		}},
	}
}

func (l *Language) PairRules() *parser.PairRules {
	closers := map[string][]string{
		"end loop":     {"loop", "for", "while"},
		"end generate": {"generate", "for", "if", "case"},
	}
	for _, kw := range []string{
		"if", "case", "process", "component", "record", "units", "block", "entity",
		"architecture", "package", "function", "procedure", "protected", "configuration", "for",
	} {
		closers["end "+kw] = []string{kw}
	}
	closers["end package body"] = []string{"package"}
	closers["end protected body"] = []string{"protected"}

	return &parser.PairRules{
		Closers:  closers,
		Fallback: true,
		Middles: map[string][]string{
			"then":  {"if"},
			"elsif": {"if"},
			"else":  {"if"},
			"when":  {"case"},
		},
	}
}

func isWord(c byte) bool { return parser.IsIdent(c) }

func (l *Language) ValidOpen(src *parser.Source, tok types.Token) bool {
	if src.EnclosingBracket(tok.Start) >= 0 {
		return false
	}
	prev := prevWord(src, tok.Start)
	if at := src.PrevCode(tok.Start, false); at >= 0 && src.Text[at] == '.' {
		return false
	}
	switch parser.Key(tok.Value) {
	case "loop":
		return !claimed(src, tok.Start, "for", "while")
	case "generate":
		return !claimed(src, tok.Start, "for", "if", "elsif", "else", "case")
	case "for":
		return forStatement(src, tok.End)
	case "while":
		return reaches(src, tok.End, "loop")
	case "entity", "component", "configuration":
		// `U1 : entity work.e`, `use entity ...` instantiate or bind
		return !instantiated(src, tok.Start, prev)
	case "package", "function", "procedure":
		return !instantiated(src, tok.Start, prev) && hasBody(src, tok.End)
	}
	return true
}

func (l *Language) ValidMiddle(src *parser.Source, tok types.Token) bool {
	if src.EnclosingBracket(tok.Start) >= 0 {
		return false
	}
	switch parser.Key(tok.Value) {
	case "else", "when":
		// conditional assignments and `exit when` use them inside statements
		at := src.PrevCode(tok.Start, false)
		if at < 0 || src.Text[at] == ';' {
			return true
		}
		switch parser.Key(prevWord(src, tok.Start)) {
		case "is", "then", "else", "begin", "generate", "loop":
			return true
		}
		return false
	}
	return true
}

func instantiated(src *parser.Source, pos int, prev string) bool {
	if at := src.PrevCode(pos, false); at >= 0 && src.Text[at] == ':' {
		return true
	}
	return parser.Key(prev) == "use"
}

// prevWord returns the word ending at the previous code byte, across lines
func prevWord(src *parser.Source, pos int) string {
	end := src.PrevCode(pos, false)
	if end < 0 || !isWord(src.Text[end]) {
		return ""
	}
	start := end
	for start > 0 && isWord(src.Text[start-1]) {
		start--
	}
	return src.Text[start : end+1]
}

// claimed reports whether one of owners heads the statement the keyword at
// pos belongs to
func claimed(src *parser.Source, pos int, owners ...string) bool {
	found := false
	src.WalkBackward(pos, isWord, func(st parser.Step) bool {
		switch {
		case st.Depth != 0:
			return st.Depth > 0
		case st.Punct == ';':
			return false
		case st.IsWord(owners...):
			found = true
			return false
		case st.IsWord("is", "then", "begin", "loop", "generate", "else", "when"):
			return false
		}
		return true
	})
	return found
}

// reaches reports whether word follows pos in the same statement
func reaches(src *parser.Source, pos int, words ...string) bool {
	found := false
	src.WalkForward(pos, isWord, func(st parser.Step) bool {
		switch {
		case st.Depth != 0:
			return st.Depth > 0
		case st.Punct == ';':
			return false
		case st.IsWord(words...):
			found = true
			return false
		}
		return true
	})
	return found
}

// forStatement accepts `for ... loop`, `for ... generate` and block
// configurations, rejecting `wait for 10 ns;` and component bindings
func forStatement(src *parser.Source, pos int) bool {
	valid := false
	src.WalkForward(pos, isWord, func(st parser.Step) bool {
		switch {
		case st.Depth != 0:
			return st.Depth > 0
		case st.Punct == ';':
			return false
		case st.IsWord("loop", "generate", "for", "end"):
			valid = true
			return false
		case st.IsWord("use"):
			return false
		}
		return true
	})
	return valid
}

// hasBody reports whether a subprogram or package continues with `is` and a
// body, rather than ending at `;` or instantiating a generic
func hasBody(src *parser.Source, pos int) bool {
	body, sawIs := false, false
	src.WalkForward(pos, isWord, func(st parser.Step) bool {
		if sawIs {
			if st.Punct == '\n' {
				return true
			}
			body = !st.IsWord("new") && st.Punct != '<'
			return false
		}
		switch {
		case st.Depth != 0:
			return st.Depth > 0
		case st.Punct == ';':
			return false
		case st.IsWord("is"):
			sawIs = true
		}
		return true
	})
	return body
}

func (l *Language) ExcludedRegions(text string) types.Regions {
	return parser.ScanRegions(text,
		parser.LineComment("--"),
		parser.BlockComment("/*", "*/", false),
		parser.Quoted('"', parser.EscapeDoubled, false),
		parser.Quoted('\\', parser.EscapeDoubled, false),
		matchChar,
	)
}

// matchChar matches `'0'` character literals, leaving attribute ticks
// (`clk'event`, `t'('1')`) alone
func matchChar(text string, pos int) (int, bool) {
	if text[pos] != '\'' || pos+2 >= len(text) || text[pos+2] != '\'' {
		return 0, false
	}
	if pos > 0 && (parser.IsIdent(text[pos-1]) || text[pos-1] == ')') {
		return 0, false
	}
	return pos + 3, true
}
