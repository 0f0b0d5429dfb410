package parser

import (
	"strings"
	"sync"

	"github.com/cloudflare/ahocorasick"

	"github.com/jarredhawkins/goblock-lsp/internal/types"
)

// Parser is the per-language facade over region scanning, tokenizing and
// block matching. A Parser holds no per-call state and is safe for
// concurrent use.
type Parser struct {
	lang      Language
	tokenizer *tokenizer
	rules     *PairRules
	matcher   BlockMatcher

	// prefilter skips the regex passes for text that has no keyword at all.
	// An ahocorasick.Matcher keeps match state, so each caller borrows one.
	prefilter *sync.Pool
	fold      bool
}

// New builds the parser for a language
func New(lang Language) *Parser {
	kw := lang.Keywords()
	p := &Parser{
		lang:      lang,
		tokenizer: newTokenizer(lang),
		rules:     DefaultRules,
		fold:      kw.CaseInsensitive,
	}
	if rp, ok := lang.(RuleProvider); ok {
		p.rules = rp.PairRules()
	}
	if bm, ok := lang.(BlockMatcher); ok {
		p.matcher = bm
	}

	var dict []string
	for _, list := range [][]string{kw.Open, kw.Middle, kw.Close} {
		for _, w := range list {
			if p.fold {
				w = strings.ToLower(w)
			}
			dict = append(dict, w)
		}
	}
	if len(dict) > 0 {
		p.prefilter = &sync.Pool{
			New: func() any { return ahocorasick.NewStringMatcher(dict) },
		}
	}
	return p
}

// Name returns the language identifier
func (p *Parser) Name() string {
	return p.lang.Name()
}

// Language returns the language definition behind the parser
func (p *Parser) Language() Language {
	return p.lang
}

// Parse returns the matched block pairs of text in resolution order
func (p *Parser) Parse(text string) []types.BlockPair {
	tokens := p.Tokens(text)
	if len(tokens) == 0 {
		return nil
	}
	if p.matcher != nil {
		return p.matcher.MatchBlocks(tokens)
	}
	return MatchBlocks(tokens, p.rules)
}

// Tokens returns the validated keyword tokens of text ordered by offset
func (p *Parser) Tokens(text string) []types.Token {
	if !p.mayContainKeyword(text) {
		return nil
	}
	src := NewSource(text, p.lang.ExcludedRegions(text))
	return p.tokenizer.tokenize(src)
}

// ExcludedRegions returns the spans of text ignored by the tokenizer
func (p *Parser) ExcludedRegions(text string) []types.Region {
	return p.lang.ExcludedRegions(text)
}

func (p *Parser) mayContainKeyword(text string) bool {
	if p.prefilter == nil || text == "" {
		return false
	}
	in := []byte(text)
	if p.fold {
		in = lowerASCII(in)
	}
	m := p.prefilter.Get().(*ahocorasick.Matcher)
	defer p.prefilter.Put(m)
	return m.Contains(in)
}

// lowerASCII folds ASCII letters in place, keeping byte offsets stable
func lowerASCII(b []byte) []byte {
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return b
}
