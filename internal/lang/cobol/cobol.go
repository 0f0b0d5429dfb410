// Package cobol matches COBOL statements with their explicit END-<verb>
// scope terminators. A verb only opens a block when its terminator follows
// within the same sentence.
package cobol

import (
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/dlclark/regexp2"

	"github.com/jarredhawkins/goblock-lsp/internal/parser"
	"github.com/jarredhawkins/goblock-lsp/internal/types"
)

var verbs = []string{
	"IF", "EVALUATE", "PERFORM", "SEARCH", "READ", "WRITE", "REWRITE", "DELETE", "START",
	"RETURN", "STRING", "UNSTRING", "CALL", "COMPUTE", "ADD", "SUBTRACT", "MULTIPLY",
	"DIVIDE", "ACCEPT", "DISPLAY", "EXEC",
}

// searchTimeout bounds one terminator search
const searchTimeout = 2 * time.Second

// Language is the COBOL block language
type Language struct {
	mu       sync.Mutex
	families map[string]*regexp2.Regexp
}

// New returns the COBOL language
func New() *Language {
	return &Language{families: make(map[string]*regexp2.Regexp)}
}

func (l *Language) Name() string { return "cobol" }

func (l *Language) Extensions() []string {
	return []string{".cbl", ".cob", ".cpy", ".cobol"}
}

func (l *Language) Keywords() parser.Keywords {
	close := make([]string, len(verbs))
	for i, v := range verbs {
		close[i] = "END-" + v
	}
	return parser.Keywords{
		Open:            verbs,
		Middle:          []string{"ELSE", "WHEN"},
		Close:           close,
		CaseInsensitive: true,
		WordChars:       `\w-`,
	}
}

func (l *Language) PairRules() *parser.PairRules {
	closers := make(map[string][]string, len(verbs))
	for _, v := range verbs {
		closers[parser.Key("END-"+v)] = []string{parser.Key(v)}
	}
	return &parser.PairRules{
		Closers: closers,
		Middles: map[string][]string{
			"else": {"if"},
			"when": {"evaluate", "search"},
		},
	}
}

func isWord(c byte) bool { return parser.IsIdent(c) || c == '-' }

// family returns the regex matching verb and its END- terminator, compiled
// once per verb
func (l *Language) family(verb string) *regexp2.Regexp {
	verb = strings.ToUpper(verb)
	l.mu.Lock()
	defer l.mu.Unlock()
	if re, ok := l.families[verb]; ok {
		return re
	}
	re := regexp2.MustCompile(`(?<![\w-])(END-)?`+regexp2.Escape(verb)+`(?![\w-])`, regexp2.IgnoreCase)
	re.MatchTimeout = searchTimeout
	l.families[verb] = re
	return re
}

func (l *Language) ValidOpen(src *parser.Source, tok types.Token) bool {
	if strings.EqualFold(tok.Value, "PERFORM") && !inlinePerform(src, tok.End) {
		return false
	}
	return l.terminated(src, tok)
}

// terminated reports whether the END- terminator of tok follows before the
// sentence ends, counting nested statements of the same verb
func (l *Language) terminated(src *parser.Source, tok types.Token) bool {
	stop := sentenceEnd(src, tok.End)
	code := src.CodeBetween(tok.End, stop)
	perform := strings.EqualFold(tok.Value, "PERFORM")

	re := l.family(tok.Value)
	cur := runeCursor{s: code}
	depth := 0
	m, err := re.FindStringMatch(code)
	for ; err == nil && m != nil; m, err = re.FindNextMatch(m) {
		if m.GroupByNumber(1).Length > 0 {
			if depth == 0 {
				return true
			}
			depth--
			continue
		}
		if perform && !inlinePerform(src, tok.End+cur.byteAt(m.Index)+m.Length) {
			continue
		}
		depth++
	}
	return false
}

// inlinePerform reports whether the PERFORM ending at pos carries its own
// statements (`PERFORM UNTIL ...`, `PERFORM 3 TIMES`) rather than calling a
// paragraph
func inlinePerform(src *parser.Source, pos int) bool {
	var words []parser.Step
	src.WalkForward(pos, isWord, func(st parser.Step) bool {
		if st.Punct == '\n' {
			return true
		}
		if st.Word == "" {
			return false
		}
		words = append(words, st)
		return len(words) < 2
	})
	if len(words) == 0 {
		return true
	}
	if words[0].IsWord("UNTIL", "VARYING", "WITH", "TEST", "FOREVER") {
		return true
	}
	return len(words) == 2 && words[1].IsWord("TIMES")
}

// sentenceEnd returns the offset of the period ending the sentence at pos, or
// the end of text
func sentenceEnd(src *parser.Source, pos int) int {
	text := src.Text
	for i := pos; i < len(text); i++ {
		if r, ok := src.Regions.Find(i); ok {
			i = r.End - 1
			continue
		}
		if text[i] == '.' && (i+1 == len(text) || parser.IsSpace(text[i+1])) {
			return i
		}
	}
	return len(text)
}

// runeCursor converts increasing rune indexes of s into byte offsets
type runeCursor struct {
	s     string
	runes int
	bytes int
}

func (c *runeCursor) byteAt(runeIndex int) int {
	for c.runes < runeIndex && c.bytes < len(c.s) {
		_, n := utf8.DecodeRuneInString(c.s[c.bytes:])
		c.bytes += n
		c.runes++
	}
	return c.bytes
}

func (l *Language) ExcludedRegions(text string) types.Regions {
	return parser.ScanRegions(text,
		matchIndicator,
		parser.LineComment("*>"),
		parser.Quoted('\'', parser.EscapeDoubled, false),
		parser.Quoted('"', parser.EscapeDoubled, false),
	)
}

// matchIndicator matches fixed-form comment lines, marked by `*` or `/` in
// the indicator column 7
func matchIndicator(text string, pos int) (int, bool) {
	if c := text[pos]; c != '*' && c != '/' {
		return 0, false
	}
	if pos-parser.LineStart(text, pos) != 6 {
		return 0, false
	}
	return parser.LineEnd(text, pos), true
}
