package parser

import (
	"sort"
	"strings"
	"time"

	"github.com/dlclark/regexp2"

	"github.com/jarredhawkins/goblock-lsp/internal/types"
)

// matchTimeout bounds a single regex scan, guarding against pathological input
const matchTimeout = 5 * time.Second

type compiledCompound struct {
	re  *regexp2.Regexp
	typ types.TokenType
}

// tokenizer turns source text into validated keyword tokens
type tokenizer struct {
	classes   map[string]types.TokenType
	primary   *regexp2.Regexp
	compounds []compiledCompound

	open   OpenValidator
	middle MiddleValidator
	close  CloseValidator
}

func newTokenizer(lang Language) *tokenizer {
	kw := lang.Keywords()
	t := &tokenizer{
		classes: make(map[string]types.TokenType),
	}

	var words []string
	add := func(list []string, typ types.TokenType) {
		for _, w := range list {
			key := Key(w)
			if _, dup := t.classes[key]; dup {
				continue
			}
			t.classes[key] = typ
			words = append(words, w)
		}
	}
	add(kw.Open, types.BlockOpen)
	add(kw.Close, types.BlockClose)
	add(kw.Middle, types.BlockMiddle)

	// longest first so `end_try_catch` wins over `end`
	sort.SliceStable(words, func(i, j int) bool {
		if len(words[i]) != len(words[j]) {
			return len(words[i]) > len(words[j])
		}
		return words[i] < words[j]
	})
	alts := make([]string, len(words))
	for i, w := range words {
		alts[i] = regexp2.Escape(w)
	}

	opts := regexp2.None
	if kw.CaseInsensitive {
		opts = regexp2.IgnoreCase
	}
	wc := kw.WordChars
	if wc == "" {
		wc = `\w`
	}
	bounded := func(body string) string {
		return `(?<![` + wc + `])(?:` + body + `)(?![` + wc + `])`
	}

	if len(alts) > 0 {
		t.primary = regexp2.MustCompile(bounded(strings.Join(alts, "|")), opts)
		t.primary.MatchTimeout = matchTimeout
	}
	for _, c := range kw.Compounds {
		re := regexp2.MustCompile(bounded(c.Pattern), opts)
		re.MatchTimeout = matchTimeout
		t.compounds = append(t.compounds, compiledCompound{re: re, typ: c.Type})
	}

	t.open, _ = lang.(OpenValidator)
	t.middle, _ = lang.(MiddleValidator)
	t.close, _ = lang.(CloseValidator)
	return t
}

// tokenize returns the validated tokens of src ordered by start offset
func (t *tokenizer) tokenize(src *Source) []types.Token {
	if t.primary == nil {
		return nil
	}

	var primary []types.Token
	t.scan(src, t.primary, func(tok types.Token) {
		typ, ok := t.classes[Key(tok.Value)]
		if !ok {
			return
		}
		tok.Type = typ
		primary = append(primary, tok)
	})

	candidates := primary
	if len(t.compounds) > 0 {
		var merged []types.Token
		for _, c := range t.compounds {
			typ := c.typ
			t.scan(src, c.re, func(tok types.Token) {
				if src.Regions.Overlaps(tok.Start, tok.End) {
					return
				}
				tok.Type = typ
				merged = append(merged, tok)
			})
		}
		candidates = mergeCompounds(primary, merged)
	}

	tokens := make([]types.Token, 0, len(candidates))
	for _, tok := range candidates {
		if !t.valid(src, tok) {
			continue
		}
		tok.Line, tok.Column = src.Position(tok.Start)
		tokens = append(tokens, tok)
	}
	return tokens
}

// scan reports every match of re whose start lies outside the excluded regions
func (t *tokenizer) scan(src *Source, re *regexp2.Regexp, emit func(types.Token)) {
	m, err := re.FindStringMatch(src.Text)
	for err == nil && m != nil {
		start := src.byteOffset(m.Index)
		end := src.byteOffset(m.Index + m.Length)
		if end > start && !src.InRegion(start) {
			emit(types.Token{Value: src.Text[start:end], Start: start, End: end})
		}
		m, err = re.FindNextMatch(m)
	}
}

func (t *tokenizer) valid(src *Source, tok types.Token) bool {
	switch tok.Type {
	case types.BlockOpen:
		return t.open == nil || t.open.ValidOpen(src, tok)
	case types.BlockMiddle:
		return t.middle == nil || t.middle.ValidMiddle(src, tok)
	case types.BlockClose:
		return t.close == nil || t.close.ValidClose(src, tok)
	}
	return false
}

// mergeCompounds drops primary tokens covered by a compound match and returns
// the union ordered by start offset. Overlapping compounds keep the earliest.
func mergeCompounds(primary, compounds []types.Token) []types.Token {
	if len(compounds) == 0 {
		return primary
	}
	sort.SliceStable(compounds, func(i, j int) bool {
		if compounds[i].Start != compounds[j].Start {
			return compounds[i].Start < compounds[j].Start
		}
		return compounds[i].End > compounds[j].End
	})
	kept := compounds[:0:0]
	lastEnd := -1
	for _, c := range compounds {
		if c.Start < lastEnd {
			continue
		}
		kept = append(kept, c)
		lastEnd = c.End
	}

	out := make([]types.Token, 0, len(primary)+len(kept))
	ci := 0
	for _, p := range primary {
		for ci < len(kept) && kept[ci].End <= p.Start {
			ci++
		}
		if ci < len(kept) && p.Start >= kept[ci].Start && p.Start < kept[ci].End {
			continue
		}
		out = append(out, p)
	}
	out = append(out, kept...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}
