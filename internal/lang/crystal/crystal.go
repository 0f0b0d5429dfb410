// Package crystal matches Crystal blocks on top of the Ruby scanner, adding
// the Crystal type and macro keywords and excluding macro bodies.
package crystal

import (
	"github.com/jarredhawkins/goblock-lsp/internal/lang/ruby"
	"github.com/jarredhawkins/goblock-lsp/internal/parser"
	"github.com/jarredhawkins/goblock-lsp/internal/types"
)

// Language is the Crystal block language
type Language struct {
	*ruby.Language
}

// New returns the Crystal language
func New() *Language {
	return &Language{ruby.NewDialect(ruby.Dialect{
		Name:       "crystal",
		Extensions: []string{".cr"},
		ExtraOpen:  []string{"struct", "lib", "enum", "macro", "annotation", "union", "select"},
		Macros:     true,
	})}
}

// ValidOpen rejects `abstract def`, which declares a method without a body
func (l *Language) ValidOpen(src *parser.Source, tok types.Token) bool {
	if tok.Value == "def" {
		if w, _ := src.WordBefore(tok.Start, parser.IsIdent); w == "abstract" {
			return false
		}
	}
	return l.Language.ValidOpen(src, tok)
}
