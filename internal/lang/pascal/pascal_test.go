package pascal

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
			name: "program block",
			src:  "program p;\nbegin\n  writeln('end');\nend.",
			want: []pair{{"begin", "end", 0}},
		},
		{
			name: "repeat until",
			src:  "repeat\n  x := x + 1;\nuntil x > 10;",
			want: []pair{{"repeat", "until", 0}},
		},
		{
			name: "begin inside repeat",
			src:  "repeat\n  begin\n    y;\n  end;\nuntil done;",
			want: []pair{{"repeat", "until", 0}, {"begin", "end", 1}},
		},
		{
			name: "end never closes repeat",
			src:  "repeat\n  x;\nend;",
			want: nil,
		},
		{
			name: "variant record",
			src:  "type TShape = record\n  case Kind: TKind of\n    skCircle: (R: Real);\n    skRect: (W, H: Real);\nend;",
			want: []pair{{"record", "end", 0}},
		},
		{
			name: "class declarations",
			src:  "type\n  TFwd = class;\n  TMeta = class of TFoo;\n  TFoo = class(TBase)\n  public\n    class function Make: TFoo;\n  end;",
			want: []pair{{"class", "end", 0}},
		},
		{
			name: "interface section and method pointers",
			src:  "unit u;\ninterface\ntype\n  TEvent = procedure(Sender: TObject) of object;\n  IFoo = interface\n    procedure Bar;\n  end;\nimplementation\nend.",
			want: []pair{{"interface", "end", 0}},
		},
		{
			name: "keywords in comments and strings",
			src:  "{ begin }\n(* end *)\n// repeat\ns := 'begin''end';\nasm\n  mov eax, 1\nend;",
			want: []pair{{"asm", "end", 0}},
		},
		{
			name: "upper case",
			src:  "BEGIN\n  CASE X OF\n    1: Y;\n  END;\nEND.",
			want: []pair{{"BEGIN", "END", 0}, {"CASE", "END", 1}},
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

	pairs := parsertest.Pairs(t, p, "try\n  Foo;\nexcept\n  on E: Exception do\n    Bar;\nend;")
	require.Len(t, pairs, 1)
	assert.Equal(t, []string{"except"}, parsertest.Values(pairs[0].Intermediates))

	// the if statement's else stays out of the case
	pairs = parsertest.Pairs(t, p, "case x of\n  1: if a then b else c;\nelse\n  d;\nend;")
	require.Len(t, pairs, 1)
	require.Len(t, pairs[0].Intermediates, 1)
	assert.Equal(t, 2, pairs[0].Intermediates[0].Line)
}

func TestExcludedRegions(t *testing.T) {
	p := parser.New(New())

	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"brace comment", "{ end\n} x", []string{"{ end\n}"}},
		{"paren comment", "(* begin *) x", []string{"(* begin *)"}},
		{"line comment", "x; // end\n", []string{"// end"}},
		{"doubled quotes", "s := 'it''s';", []string{"'it''s'"}},
		{"directive", "{$IFDEF DEBUG}", []string{"{$IFDEF DEBUG}"}},
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
	parsertest.AssertNoPanic(t, p, "{", "(*", "'", "= class", "until", "case")
	assert.Empty(t, p.Parse(""))
}
