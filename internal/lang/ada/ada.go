// Package ada matches Ada blocks, including the `procedure ... is ... begin
// ... end` bodies whose begin folds into the declaring keyword.
package ada

import (
	"github.com/jarredhawkins/goblock-lsp/internal/parser"
	"github.com/jarredhawkins/goblock-lsp/internal/types"
)

// Language is the Ada block language
type Language struct{}

// New returns the Ada language
func New() *Language {
	return &Language{}
}

func (l *Language) Name() string { return "ada" }

func (l *Language) Extensions() []string {
	return []string{".adb", ".ads", ".ada"}
}

// declarative openers take an `is` and may own a begin
var declarative = []string{"procedure", "function", "package", "task", "protected", "entry"}

func (l *Language) Keywords() parser.Keywords {
	return parser.Keywords{
		Open: append([]string{
			"if", "case", "loop", "for", "while", "select", "begin", "declare", "accept", "record",
		}, declarative...),
		Middle:          []string{"else", "elsif", "when", "exception", "or", "then"},
		Close:           []string{"end"},
		CaseInsensitive: true,
		Compounds: []parser.Compound{
			{Pattern: `end\s+(?:if|loop|case|select|record)`, Type: types.BlockClose},
		},
	}
}

var contexts = map[string]bool{
	"declare": true, "procedure": true, "function": true, "task": true,
	"protected": true, "package": true, "entry": true, "accept": true,
}

var bodies = []string{"begin", "declare", "procedure", "function", "task", "package", "entry", "accept"}

func (l *Language) PairRules() *parser.PairRules {
	return &parser.PairRules{
		Closers: map[string][]string{
			"end if":     {"if"},
			"end loop":   {"loop", "for", "while"},
			"end case":   {"case"},
			"end select": {"select"},
			"end record": {"record"},
		},
		Fallback: true,
		Middles: map[string][]string{
			"then":      {"if", "select"},
			"elsif":     {"if"},
			"else":      {"if", "select"},
			"or":        {"select"},
			"when":      append([]string{"case", "select"}, bodies...),
			"exception": bodies,
		},
		Merge: func(inner, outer *parser.OpenBlock) bool {
			return parser.Key(inner.Open.Value) == "begin" && contexts[parser.Key(outer.Open.Value)]
		},
	}
}

func isWord(c byte) bool { return parser.IsIdent(c) }

func (l *Language) ValidOpen(src *parser.Source, tok types.Token) bool {
	if src.EnclosingBracket(tok.Start) >= 0 {
		// conditional, case and quantified expressions, access-to-subprogram parameters
		return false
	}
	prev := prevWord(src, tok.Start)
	switch parser.Key(tok.Value) {
	case "for", "while":
		return reaches(src, tok.End, "loop")
	case "loop":
		return !claimedLoop(src, tok.Start)
	case "record":
		return parser.Key(prev) != "null"
	case "accept":
		return reaches(src, tok.End, "do")
	case "procedure", "function", "package", "task", "protected", "entry":
		if k := parser.Key(prev); k == "access" || k == "with" {
			return false
		}
		return hasBody(src, tok.End)
	}
	return true
}

func (l *Language) ValidMiddle(src *parser.Source, tok types.Token) bool {
	if src.EnclosingBracket(tok.Start) >= 0 {
		return false
	}
	prev := prevWord(src, tok.Start)
	at := src.PrevCode(tok.Start, false)
	switch parser.Key(tok.Value) {
	case "then":
		return parser.Key(prev) != "and"
	case "else":
		return parser.Key(prev) != "or"
	case "or":
		// `or else` short circuit vs select alternative
		return at < 0 || src.Text[at] == ';'
	case "when":
		if at < 0 || src.Text[at] == ';' {
			return true
		}
		switch parser.Key(prev) {
		case "is", "select", "exception", "or", "begin":
			return true
		}
		return false
	case "exception":
		// `Error : exception;` declares one
		return at < 0 || src.Text[at] != ':'
	}
	return true
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

// reaches reports whether word follows pos in the same statement
func reaches(src *parser.Source, pos int, word string) bool {
	found := false
	src.WalkForward(pos, isWord, func(st parser.Step) bool {
		switch {
		case st.Depth != 0:
			return st.Depth > 0
		case st.Punct == ';':
			return false
		case st.IsWord(word):
			found = true
			return false
		case st.IsWord("use", "is", "renames"):
			return false
		}
		return true
	})
	return found
}

// hasBody reports whether a declaration at pos continues with `is` and a
// body rather than ending at `;` or being an instantiation, renaming,
// separate, abstract, null or expression function
func hasBody(src *parser.Source, pos int) bool {
	body, sawIs := false, false
	src.WalkForward(pos, isWord, func(st parser.Step) bool {
		if sawIs {
			if st.Punct == '\n' {
				return true
			}
			body = !st.IsWord("new", "separate", "abstract", "null") && st.Punct != '(' && st.Punct != '<'
			return false
		}
		switch {
		case st.Depth != 0:
			return st.Depth > 0
		case st.Punct == ';':
			return false
		case st.IsWord("renames"):
			return false
		case st.IsWord("is"):
			sawIs = true
		}
		return true
	})
	return body
}

// claimedLoop reports whether the `loop` at pos belongs to a `for` or `while`
// header earlier in the same statement
func claimedLoop(src *parser.Source, pos int) bool {
	claimed := false
	src.WalkBackward(pos, isWord, func(st parser.Step) bool {
		switch {
		case st.Depth != 0:
			return st.Depth > 0
		case st.Punct == ';':
			return false
		case st.IsWord("for", "while"):
			claimed = true
			return false
		case st.IsWord("loop", "then", "else", "begin", "is", "do", "declare", "select", "or"):
			return false
		}
		return true
	})
	return claimed
}

func (l *Language) ExcludedRegions(text string) types.Regions {
	return parser.ScanRegions(text,
		parser.LineComment("--"),
		parser.Quoted('"', parser.EscapeDoubled, false),
		matchChar,
	)
}

// matchChar matches `'x'` character literals, leaving attribute ticks
// (`A'Length`, `T'('x')`) alone
func matchChar(text string, pos int) (int, bool) {
	if text[pos] != '\'' || pos+2 >= len(text) || text[pos+2] != '\'' {
		return 0, false
	}
	if pos > 0 && (parser.IsIdent(text[pos-1]) || text[pos-1] == ')') {
		return 0, false
	}
	return pos + 3, true
}
