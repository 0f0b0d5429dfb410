package lua

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jarredhawkins/goblock-lsp/internal/parser"
	"github.com/jarredhawkins/goblock-lsp/internal/parser/parsertest"
)

type pair = parsertest.Pair

func TestParsePairs(t *testing.T) {
	p := parser.New(New())

	tests := []struct {
		name string
		src  string
		want []pair
	}{
		{
			name: "repeat until",
			src:  "repeat\n  action()\nuntil condition",
			want: []pair{{"repeat", "until", 0}},
		},
		{
			name: "for loop connector",
			src:  "for i = 1, 10 do\n  print(i)\nend",
			want: []pair{{"for", "end", 0}},
		},
		{
			name: "while with call in header",
			src:  "while f(function() return x end) do\n  x = x + 1\nend",
			want: []pair{{"while", "end", 0}, {"function", "end", 1}},
		},
		{
			name: "standalone do block",
			src:  "do\n  local x = 1\nend",
			want: []pair{{"do", "end", 0}},
		},
		{
			name: "nested function and if",
			src:  "function f(a)\n  if a then\n    return 1\n  elseif b then\n    return 2\n  else\n    return 3\n  end\nend",
			want: []pair{{"function", "end", 0}, {"if", "end", 1}},
		},
		{
			name: "end never closes repeat",
			src:  "repeat\n  x = x + 1\nend",
			want: nil,
		},
		{
			name: "if inside repeat",
			src:  "repeat\n  if x then y() end\nuntil done",
			want: []pair{{"repeat", "until", 0}, {"if", "end", 1}},
		},
		{
			name: "keywords in comments and strings",
			src:  "-- if x then\nlocal s = \"end\" .. 'do'\n--[==[ function\nend ]==]\nlocal t = [[ repeat ]]\nif a then end",
			want: []pair{{"if", "end", 0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parsertest.Compact(t, p, tt.src))
		})
	}
}

func TestIntermediates(t *testing.T) {
	p := parser.New(New())

	pairs := parsertest.Pairs(t, p, "if a then\n  x()\nelseif b then\n  y()\nelse\n  z()\nend")
	require.Len(t, pairs, 1)
	assert.Equal(t, []string{"then", "elseif", "then", "else"}, parsertest.Values(pairs[0].Intermediates))
}

func TestThenOnlyAttachesToIf(t *testing.T) {
	p := parser.New(New())

	pairs := parsertest.Pairs(t, p, "while x do then end")
	require.Len(t, pairs, 1)
	assert.Empty(t, pairs[0].Intermediates)
}

func TestExcludedRegions(t *testing.T) {
	p := parser.New(New())

	src := "x = 1 --[[ a\nb ]] y = [=[ ]] ]=] z = 'q\\'' -- tail"
	regions := p.ExcludedRegions(src)
	require.Len(t, regions, 4)
	assert.Equal(t, "--[[ a\nb ]]", src[regions[0].Start:regions[0].End])
	assert.Equal(t, "[=[ ]] ]=]", src[regions[1].Start:regions[1].End])
	assert.Equal(t, "'q\\''", src[regions[2].Start:regions[2].End])
	assert.Equal(t, "-- tail", src[regions[3].Start:regions[3].End])
}

func TestUnterminatedLongComment(t *testing.T) {
	p := parser.New(New())

	src := "if a then end --[[ if b then"
	regions := p.ExcludedRegions(src)
	require.Len(t, regions, 1)
	assert.Equal(t, len(src), regions[0].End)
	assert.Len(t, p.Parse(src), 1)
}

func TestEdgeInputs(t *testing.T) {
	p := parser.New(New())
	parsertest.AssertNoPanic(t, p, parsertest.EdgeInputs...)
	assert.Empty(t, p.Parse(""))
}
