package julia

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
			name: "end as last index",
			src:  "function f(x)\n  if x > 0\n    x[end]\n  end\nend",
			want: []pair{{"function", "end", 0}, {"if", "end", 1}},
		},
		{
			name: "comprehension clauses",
			src:  "ys = [x for x in xs if x > 1]\ng = (x^2 for x in xs)",
			want: nil,
		},
		{
			name: "begin and end as range bounds",
			src:  "a[begin:end]\nb[begin+1:end-1]",
			want: nil,
		},
		{
			name: "begin block inside array literal",
			src:  "v = [begin\n  1\nend]",
			want: []pair{{"begin", "end", 0}},
		},
		{
			name: "do block",
			src:  "map(xs) do x\n  x * 2\nend",
			want: []pair{{"do", "end", 0}},
		},
		{
			name: "anonymous function argument",
			src:  "foo(function() 1 end)",
			want: []pair{{"function", "end", 0}},
		},
		{
			name: "indexing inside a block in brackets",
			src:  "foo(let y = xs\n  y[end]\nend)",
			want: []pair{{"let", "end", 0}},
		},
		{
			name: "field access and symbols",
			src:  "r.end = 1\ns = :begin\nstruct P\n  x\nend",
			want: []pair{{"struct", "end", 0}},
		},
		{
			name: "keywords in strings and comments",
			src:  "s = \"if x end\" # for\n#= while\n #= end =# =#\nmodule M\nend",
			want: []pair{{"module", "end", 0}},
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

	pairs := parsertest.Pairs(t, p, "try\n  f()\ncatch e\n  g()\nelse\n  h()\nfinally\n  close(io)\nend")
	require.Len(t, pairs, 1)
	assert.Equal(t, []string{"catch", "else", "finally"}, parsertest.Values(pairs[0].Intermediates))

	pairs = parsertest.Pairs(t, p, "if a\nelseif b\nelse\nend")
	require.Len(t, pairs, 1)
	assert.Equal(t, []string{"elseif", "else"}, parsertest.Values(pairs[0].Intermediates))

	// catch has no meaning in a while loop
	pairs = parsertest.Pairs(t, p, "while true\n  catch\nend")
	require.Len(t, pairs, 1)
	assert.Empty(t, pairs[0].Intermediates)
}

func TestExcludedRegions(t *testing.T) {
	p := parser.New(New())

	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"nested block comment", "#= a #= b =# c =# x", []string{"#= a #= b =# c =#"}},
		{"line comment", "x # end\n", []string{"# end"}},
		{"interpolation with nested string", `"$(f("end"))" x`, []string{`"$(f("end"))"`}},
		{"triple quoted", "\"\"\"\nend\n\"\"\" x", []string{"\"\"\"\nend\n\"\"\""}},
		{"command", "`ls end` x", []string{"`ls end`"}},
		{"char literal", "c = 'e'", []string{"'e'"}},
		{"adjoint", "A' * B'", nil},
		{"adjoint after call", "f(x)' + y.'", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, r := range p.ExcludedRegions(tt.src) {
				got = append(got, tt.src[r.Start:r.End])
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEdgeInputs(t *testing.T) {
	p := parser.New(New())
	parsertest.AssertNoPanic(t, p, parsertest.EdgeInputs...)
	parsertest.AssertNoPanic(t, p, "#=", "\"$(", "\"$(\"", "'", "[end", "end]", "a[begin")
	assert.Empty(t, p.Parse(""))
}
