// Package parsertest holds assertions shared by the language test suites.
package parsertest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jarredhawkins/goblock-lsp/internal/parser"
	"github.com/jarredhawkins/goblock-lsp/internal/types"
)

// Pair is a compact view of a BlockPair for table assertions
type Pair struct {
	Open  string
	Close string
	Level int
}

// Pairs parses source, checks the structural invariants and returns the pairs
// ordered by opening offset.
func Pairs(t *testing.T, p *parser.Parser, source string) []types.BlockPair {
	t.Helper()
	pairs := p.Parse(source)
	CheckInvariants(t, p, source, pairs)
	sorted := append([]types.BlockPair(nil), pairs...)
	types.SortPairs(sorted)
	return sorted
}

// Compact parses source and returns open/close values and nest levels in
// source order of the openers.
func Compact(t *testing.T, p *parser.Parser, source string) []Pair {
	t.Helper()
	var out []Pair
	for _, bp := range Pairs(t, p, source) {
		out = append(out, Pair{Open: bp.Open.Value, Close: bp.Close.Value, Level: bp.NestLevel})
	}
	return out
}

// Values returns the token values in order
func Values(tokens []types.Token) []string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Value
	}
	return out
}

// TokenValues tokenizes source and returns the token values
func TokenValues(p *parser.Parser, source string) []string {
	return Values(p.Tokens(source))
}

// CheckInvariants asserts balance, nesting, region exclusion and idempotence
func CheckInvariants(t *testing.T, p *parser.Parser, source string, pairs []types.BlockPair) {
	t.Helper()

	for _, bp := range pairs {
		require.Less(t, bp.Open.Start, bp.Close.Start, "open %q must precede close %q", bp.Open.Value, bp.Close.Value)
		require.GreaterOrEqual(t, bp.NestLevel, 0)
		for i, mid := range bp.Intermediates {
			assert.Greater(t, mid.Start, bp.Open.Start, "intermediate %q before open", mid.Value)
			assert.Less(t, mid.Start, bp.Close.Start, "intermediate %q after close", mid.Value)
			if i > 0 {
				assert.Less(t, bp.Intermediates[i-1].Start, mid.Start, "intermediates out of order")
			}
		}
	}

	for _, a := range pairs {
		for _, b := range pairs {
			if a.Open.Start < b.Open.Start && b.Open.Start < a.Close.Start {
				assert.Less(t, b.Close.Start, a.Close.Start,
					"pairs cross: %q@%d..%q@%d and %q@%d..%q@%d",
					a.Open.Value, a.Open.Start, a.Close.Value, a.Close.Start,
					b.Open.Value, b.Open.Start, b.Close.Value, b.Close.Start)
			}
		}
	}

	regions := types.Regions(p.ExcludedRegions(source))
	for i, r := range regions {
		assert.LessOrEqual(t, r.Start, r.End)
		if i > 0 {
			assert.LessOrEqual(t, regions[i-1].End, r.Start, "regions overlap")
		}
	}
	for _, tok := range p.Tokens(source) {
		assert.False(t, regions.Contains(tok.Start), "token %q at %d inside excluded region", tok.Value, tok.Start)
	}

	assert.Equal(t, pairs, p.Parse(source), "parse is not idempotent")
}

// AssertNoPanic parses every input without panicking
func AssertNoPanic(t *testing.T, p *parser.Parser, inputs ...string) {
	t.Helper()
	for _, in := range inputs {
		assert.NotPanics(t, func() {
			p.Parse(in)
			p.Tokens(in)
			p.ExcludedRegions(in)
		}, "input %q", in)
	}
}

// EdgeInputs are malformed or degenerate inputs every language must survive
var EdgeInputs = []string{
	"",
	" ",
	"\n\n\r\n\r",
	"end",
	"end end end",
	"\"",
	"'",
	"`",
	"/*",
	"(*",
	"{",
	"--[[",
	"<<",
	"%",
	"#",
	"%{",
	"=begin",
	"\"unterminated\nnext line",
	"if",
	"if then else end if end",
	"日本語 🎉 end",
}
