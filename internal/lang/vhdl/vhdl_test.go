package vhdl

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
			name: "entity",
			src:  "entity counter is\n  port (clk : in std_logic);\nend entity counter;",
			want: []pair{{"entity", "end entity", 0}},
		},
		{
			name: "architecture with process",
			src:  "architecture rtl of counter is\nbegin\n  process (clk)\n  begin\n    if rising_edge(clk) then\n      q <= d;\n    end if;\n  end process;\nend architecture;",
			want: []pair{{"architecture", "end architecture", 0}, {"process", "end process", 1}, {"if", "end if", 2}},
		},
		{
			name: "for loop and wait for",
			src:  "for i in 0 to 7 loop\n  wait for 10 ns;\nend loop;",
			want: []pair{{"for", "end loop", 0}},
		},
		{
			name: "while loop",
			src:  "while i < 10 loop\n  i := i + 1;\nend loop;",
			want: []pair{{"while", "end loop", 0}},
		},
		{
			name: "for generate with entity instance",
			src:  "gen: for i in 0 to 3 generate\n  u: entity work.cell port map (a(i));\nend generate;",
			want: []pair{{"for", "end generate", 0}},
		},
		{
			name: "declarations and instantiations",
			src:  "function f(a : integer) return integer;\nprocedure p;\npackage p2 is new work.gen generic map (n => 4);\nu1 : component c port map (x);",
			want: nil,
		},
		{
			name: "package body with function",
			src:  "package body p is\n  function f return integer is\n  begin\n    return 1;\n  end function;\nend package body;",
			want: []pair{{"package", "end package body", 0}, {"function", "end function", 1}},
		},
		{
			name: "record",
			src:  "type r is record\n  a : integer;\nend record;",
			want: []pair{{"record", "end record", 0}},
		},
		{
			name: "keywords in comments strings and characters",
			src:  "-- if x then\n/* process\nend */\ns <= \"end if\";\nc <= '1';\nv := clk'event;\nblock_1: block\nbegin\nend block;",
			want: []pair{{"block", "end block", 0}},
		},
		{
			name: "upper case",
			src:  "IF A THEN\n  B <= C;\nEND IF;",
			want: []pair{{"IF", "END IF", 0}},
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

	t.Run("conditional assignment inside case", func(t *testing.T) {
		pairs := parsertest.Pairs(t, p, "case s is\n  when \"00\" =>\n    y <= a when en = '1' else b;\n  when others =>\n    y <= c;\nend case;")
		require.Len(t, pairs, 1)
		assert.Equal(t, []string{"when", "when"}, parsertest.Values(pairs[0].Intermediates))
	})

	t.Run("if generate with else branch", func(t *testing.T) {
		pairs := parsertest.Pairs(t, p, "g: if WIDTH > 8 generate\n  x <= a;\nelse generate\n  x <= b;\nend generate;")
		require.Len(t, pairs, 1)
		assert.Equal(t, "if", pairs[0].Open.Value)
		assert.Equal(t, []string{"else"}, parsertest.Values(pairs[0].Intermediates))
	})

	t.Run("exit when in a loop", func(t *testing.T) {
		pairs := parsertest.Pairs(t, p, "loop\n  exit when done;\nend loop;")
		require.Len(t, pairs, 1)
		assert.Empty(t, pairs[0].Intermediates)
	})

	t.Run("if chain", func(t *testing.T) {
		pairs := parsertest.Pairs(t, p, "if a then\n  x := 1;\nelsif b then\n  x := 2;\nelse\n  x := 3;\nend if;")
		require.Len(t, pairs, 1)
		assert.Equal(t, []string{"then", "elsif", "then", "else"}, parsertest.Values(pairs[0].Intermediates))
	})
}

func TestExcludedRegions(t *testing.T) {
	p := parser.New(New())

	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"line comment", "x <= y; -- end if\n", []string{"-- end if"}},
		{"block comment", "/* a\nb */ x", []string{"/* a\nb */"}},
		{"doubled quotes", `s := "a""end""b";`, []string{`"a""end""b"`}},
		{"extended identifier", `signal \end\ : bit;`, []string{`\end\`}},
		{"character literal", "c <= '0';", []string{"'0'"}},
		{"attribute tick", "if clk'event and clk = '1' then", []string{"'1'"}},
		{"qualified expression", "x := t'('1');", []string{"'1'"}},
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
	parsertest.AssertNoPanic(t, p, "'", "\\", "/*", "for", "end for", "loop end loop")
	assert.Empty(t, p.Parse(""))
}
