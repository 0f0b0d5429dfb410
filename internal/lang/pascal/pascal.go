// Package pascal matches Pascal and Delphi blocks.
package pascal

import (
	"github.com/jarredhawkins/goblock-lsp/internal/parser"
	"github.com/jarredhawkins/goblock-lsp/internal/types"
)

// Language is the Pascal block language
type Language struct{}

// New returns the Pascal language
func New() *Language {
	return &Language{}
}

func (l *Language) Name() string { return "pascal" }

func (l *Language) Extensions() []string {
	return []string{".pas", ".pp", ".dpr", ".lpr", ".inc"}
}

func (l *Language) Keywords() parser.Keywords {
	return parser.Keywords{
		Open: []string{
			"begin", "case", "record", "try", "repeat", "class", "object", "interface", "asm",
		},
		Middle:          []string{"else", "except", "finally"},
		Close:           []string{"end", "until"},
		CaseInsensitive: true,
	}
}

func (l *Language) PairRules() *parser.PairRules {
	return &parser.PairRules{
		Closers:   map[string][]string{"until": {"repeat"}},
		Exclusive: []string{"repeat"},
		Middles: map[string][]string{
			"else":    {"case", "try"},
			"except":  {"try"},
			"finally": {"try"},
		},
		// the variant part of a record has no end of its own
		AcceptOpen: func(tok types.Token, stack []*parser.OpenBlock) bool {
			if parser.Key(tok.Value) != "case" || len(stack) == 0 {
				return true
			}
			return parser.Key(stack[len(stack)-1].Open.Value) != "record"
		},
	}
}

func isWord(c byte) bool { return parser.IsIdent(c) }

func (l *Language) ValidOpen(src *parser.Source, tok types.Token) bool {
	switch parser.Key(tok.Value) {
	case "class", "object", "interface":
		return typeBody(src, tok)
	}
	return true
}

// ValidMiddle keeps the else of an if statement out of case and try blocks:
// only a case or exception-handler else follows a `;`
func (l *Language) ValidMiddle(src *parser.Source, tok types.Token) bool {
	if parser.Key(tok.Value) != "else" {
		return true
	}
	at := src.PrevCode(tok.Start, false)
	return at >= 0 && src.Text[at] == ';'
}

// typeBody accepts `TFoo = class(TBase) ... end` and rejects forward
// declarations `class;`, metaclasses `class of`, class members
// `class function`, method pointers `of object` and unit interface sections.
// Only a type body follows `=`.
func typeBody(src *parser.Source, tok types.Token) bool {
	at := src.PrevCode(tok.Start, false)
	if at < 0 || src.Text[at] != '=' {
		return false
	}
	body := true
	src.WalkForward(tok.End, isWord, func(st parser.Step) bool {
		switch {
		case st.Depth > 0 || st.Punct == '(' || st.Punct == ')' || st.Punct == '\n':
			return true
		case st.Punct == ';':
			body = false
		case st.IsWord("of"):
			body = false
		}
		return false
	})
	return body
}

func (l *Language) ExcludedRegions(text string) types.Regions {
	return parser.ScanRegions(text,
		parser.LineComment("//"),
		parser.BlockComment("{", "}", false),
		parser.BlockComment("(*", "*)", false),
		parser.Quoted('\'', parser.EscapeDoubled, false),
	)
}
