package parser

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jarredhawkins/goblock-lsp/internal/types"
)

// toyLanguage is a minimal language used to exercise the shared engine
type toyLanguage struct {
	fold bool
}

func (toyLanguage) Name() string         { return "toy" }
func (toyLanguage) Extensions() []string { return []string{".toy"} }

func (l toyLanguage) Keywords() Keywords {
	return Keywords{
		Open:            []string{"if", "begin"},
		Middle:          []string{"else"},
		Close:           []string{"end"},
		CaseInsensitive: l.fold,
		Compounds: []Compound{
			{Pattern: `end[ \t]+if`, Type: types.BlockClose},
		},
	}
}

func (toyLanguage) ExcludedRegions(text string) types.Regions {
	return ScanRegions(text,
		LineComment("#"),
		Quoted('"', EscapeBackslash, false),
	)
}

// ValidClose rejects method-style `obj.end`
func (toyLanguage) ValidClose(src *Source, tok types.Token) bool {
	return tok.Start == 0 || src.Text[tok.Start-1] != '.'
}

func (toyLanguage) PairRules() *PairRules {
	return &PairRules{
		Closers: map[string][]string{"end if": {"if"}},
	}
}

func TestParserTokens(t *testing.T) {
	p := New(toyLanguage{})

	src := "if x # end\n  s = \"begin\"\n  obj.end\nelse\nend if"
	tokens := p.Tokens(src)

	var values []string
	for _, tok := range tokens {
		values = append(values, tok.Value)
	}
	assert.Equal(t, []string{"if", "else", "end if"}, values)

	last := tokens[len(tokens)-1]
	assert.Equal(t, types.BlockClose, last.Type)
	assert.Equal(t, 4, last.Line)
	assert.Equal(t, 0, last.Column)
	assert.Equal(t, len(src), last.End)
}

func TestParserParse(t *testing.T) {
	p := New(toyLanguage{})

	pairs := p.Parse("begin\n  if a\n  else\n  end if\nend")
	require.Len(t, pairs, 2)

	assert.Equal(t, "if", pairs[0].Open.Value)
	assert.Equal(t, "end if", pairs[0].Close.Value)
	assert.Equal(t, 1, pairs[0].NestLevel)
	require.Len(t, pairs[0].Intermediates, 1)

	assert.Equal(t, "begin", pairs[1].Open.Value)
	assert.Equal(t, "end", pairs[1].Close.Value)
	assert.Equal(t, 0, pairs[1].NestLevel)
}

func TestParserCaseInsensitive(t *testing.T) {
	sensitive := New(toyLanguage{})
	insensitive := New(toyLanguage{fold: true})

	src := "IF a\nEND   If"
	assert.Empty(t, sensitive.Parse(src))

	pairs := insensitive.Parse(src)
	require.Len(t, pairs, 1)
	assert.Equal(t, "IF", pairs[0].Open.Value)
	assert.Equal(t, "END   If", pairs[0].Close.Value)
}

func TestParserWordBoundaries(t *testing.T) {
	p := New(toyLanguage{})
	assert.Empty(t, p.Tokens("endif ifx xend begins _if if_"))
}

func TestParserLineEndings(t *testing.T) {
	p := New(toyLanguage{})

	for _, nl := range []string{"\n", "\r\n", "\r"} {
		tokens := p.Tokens("if a" + nl + "x" + nl + "end")
		require.Len(t, tokens, 2)
		assert.Equal(t, 2, tokens[1].Line, "line ending %q", nl)
		assert.Equal(t, 0, tokens[1].Column, "line ending %q", nl)
	}
}

func TestParserUnicodeOffsets(t *testing.T) {
	p := New(toyLanguage{})

	src := "# 日本語 🎉\n\"end 文字\" if 😀\nend"
	tokens := p.Tokens(src)
	require.Len(t, tokens, 2)

	assert.Equal(t, "if", src[tokens[0].Start:tokens[0].End])
	assert.Equal(t, 1, tokens[0].Line)
	assert.Equal(t, 9, tokens[0].Column)
	assert.Equal(t, "end", src[tokens[1].Start:tokens[1].End])
}

func TestParserNoKeywords(t *testing.T) {
	p := New(toyLanguage{})
	assert.Nil(t, p.Tokens("x = y + z"))
	assert.Nil(t, p.Parse(""))
	assert.Empty(t, p.ExcludedRegions(""))
}

func TestParserConcurrentUse(t *testing.T) {
	p := New(toyLanguage{})
	src := "begin\n if a\n end if\nend"
	want := p.Parse(src)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				assert.Equal(t, want, p.Parse(src))
				assert.Nil(t, p.Tokens("x = y + z"))
			}
		}()
	}
	wg.Wait()
}

func TestScanRegions(t *testing.T) {
	text := "a \"b # c\" # d\n'e"
	regions := ScanRegions(text,
		LineComment("#"),
		Quoted('"', EscapeBackslash, false),
		Quoted('\'', EscapeDoubled, false),
	)
	assert.Equal(t, types.Regions{{Start: 2, End: 9}, {Start: 10, End: 13}, {Start: 14, End: 16}}, regions)
}

func TestScanQuoted(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		esc       Escape
		multiline bool
		want      int
	}{
		{"backslash escape", `"a\"b" x`, EscapeBackslash, false, 6},
		{"doubled quote", `"a""b" x`, EscapeDoubled, false, 6},
		{"no escape", `"a\" x`, EscapeNone, false, 4},
		{"stops at line end", "\"abc\ndef\"", EscapeBackslash, false, 4},
		{"spans lines", "\"abc\ndef\" x", EscapeBackslash, true, 9},
		{"unterminated", `"abc`, EscapeBackslash, true, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScanQuoted(tt.text, 0, '"', tt.esc, tt.multiline))
		})
	}
}

func TestScanBlockComment(t *testing.T) {
	assert.Equal(t, 11, ScanBlockComment("(* (* *) *) x", 0, "(*", "*)", true))
	assert.Equal(t, 8, ScanBlockComment("(* (* *) *) x", 0, "(*", "*)", false))
	assert.Equal(t, 4, ScanBlockComment("(* x", 0, "(*", "*)", false))
}

func TestRegionsLookup(t *testing.T) {
	rs := types.Regions{{Start: 2, End: 4}, {Start: 10, End: 12}}

	assert.True(t, rs.Contains(2))
	assert.True(t, rs.Contains(3))
	assert.False(t, rs.Contains(4))
	assert.False(t, rs.Contains(0))
	assert.True(t, rs.Contains(11))

	next, ok := rs.NextAt(5)
	require.True(t, ok)
	assert.Equal(t, 10, next.Start)

	_, ok = rs.NextAt(12)
	assert.False(t, ok)

	assert.True(t, rs.Overlaps(0, 3))
	assert.False(t, rs.Overlaps(4, 10))
}

func TestSourceHelpers(t *testing.T) {
	src := NewSource("foo  # c\n  bar baz", types.Regions{{Start: 5, End: 8}})

	assert.Equal(t, 2, src.PrevCode(8, true))
	assert.Equal(t, -1, src.PrevCode(11, true))
	assert.Equal(t, 2, src.PrevCode(11, false))
	assert.Equal(t, 11, src.NextCode(8, false))
	assert.Equal(t, "foo     ", src.CodeBetween(0, 8))

	word, at := src.WordBefore(15, IsIdent)
	assert.Equal(t, "bar", word)
	assert.Equal(t, 11, at)

	word, at = src.WordAfter(14, IsIdent)
	assert.Equal(t, "baz", word)
	assert.Equal(t, 15, at)
}
