package crystal

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
			name: "struct with method",
			src:  "struct Point\n  def initialize(@x : Int32)\n  end\nend",
			want: []pair{{"struct", "end", 0}, {"def", "end", 1}},
		},
		{
			name: "abstract def has no body",
			src:  "abstract class Shape\n  abstract def area : Float64\nend",
			want: []pair{{"class", "end", 0}},
		},
		{
			name: "lib and enum",
			src:  "lib LibC\n  fun puts(s : UInt8*) : Int32\nend\nenum Color\n  Red\nend",
			want: []pair{{"lib", "end", 0}, {"enum", "end", 0}},
		},
		{
			name: "macro bodies are excluded",
			src:  "macro define(name)\n  {% if flag?(:linux) %} def {{name}}; end {% end %}\nend",
			want: []pair{{"macro", "end", 0}, {"def", "end", 1}},
		},
		{
			name: "char literals",
			src:  "c = 'e'\nif c == 'n'\nend",
			want: []pair{{"if", "end", 0}},
		},
		{
			name: "no embedded docs",
			src:  "=begin\nif a\nend",
			want: []pair{{"if", "end", 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parsertest.Compact(t, p, tt.src))
		})
	}
}

func TestSelectWhen(t *testing.T) {
	p := parser.New(New())

	pairs := parsertest.Pairs(t, p, "select\nwhen x = ch.receive\n  puts x\nelse\n  idle\nend")
	require.Len(t, pairs, 1)
	assert.Equal(t, "select", pairs[0].Open.Value)
	assert.Equal(t, []string{"when", "else"}, parsertest.Values(pairs[0].Intermediates))
}

func TestIdentity(t *testing.T) {
	l := New()
	assert.Equal(t, "crystal", l.Name())
	assert.Equal(t, []string{".cr"}, l.Extensions())
	assert.Contains(t, l.Keywords().Open, "def")
	assert.Contains(t, l.Keywords().Open, "macro")
}

func TestEdgeInputs(t *testing.T) {
	p := parser.New(New())
	parsertest.AssertNoPanic(t, p, parsertest.EdgeInputs...)
	parsertest.AssertNoPanic(t, p, "{%", "{{", "{% if")
	assert.Empty(t, p.Parse(""))
}
