package ruby

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
			name: "postfix if inside method",
			src:  "def my_method\n  return value if condition\nend",
			want: []pair{{"def", "end", 0}},
		},
		{
			name: "class method and do block",
			src:  "class Foo\n  def bar\n    items.each do |x|\n      puts x\n    end\n  end\nend",
			want: []pair{{"class", "end", 0}, {"def", "end", 1}, {"do", "end", 2}},
		},
		{
			name: "loop connector do",
			src:  "while x do\n  y\nend\nuntil queue.empty? do\n  pop\nend",
			want: []pair{{"while", "end", 0}, {"until", "end", 0}},
		},
		{
			name: "for in loop",
			src:  "for i in 1..3 do\n  puts i\nend",
			want: []pair{{"for", "end", 0}},
		},
		{
			name: "postfix modifiers",
			src:  "x = 1 unless y\nputs 'a' while false\nbegin\n  step\nend until done",
			want: []pair{{"begin", "end", 0}},
		},
		{
			name: "if as expression",
			src:  "x = if cond\n  1\nelse\n  2\nend",
			want: []pair{{"if", "end", 0}},
		},
		{
			name: "line continuation keeps modifier",
			src:  "def f\n  run \\\n    if ready\nend",
			want: []pair{{"def", "end", 0}},
		},
		{
			name: "keywords as method names",
			src:  "def end?\nend\nobj.begin\nrange.end\n@class = 1",
			want: []pair{{"def", "end", 0}},
		},
		{
			name: "endless def",
			src:  "def square(x) = x * x\nclass A\nend",
			want: []pair{{"class", "end", 0}},
		},
		{
			name: "hash keys and symbols",
			src:  "opts = {if: 1, end: 2}\nwhen_done(:end)\nif a\nend",
			want: []pair{{"if", "end", 0}},
		},
		{
			name: "regex and percent literals",
			src:  "if x =~ /end/\n  y = %w[if end]\n  z = %r{do}i\nend",
			want: []pair{{"if", "end", 0}},
		},
		{
			name: "nested interpolation",
			src:  "s = \"#{ {a: \"}\"}[:a] } end\"\nif a\nend",
			want: []pair{{"if", "end", 0}},
		},
		{
			name: "percent literal inside interpolation",
			src:  "x = \"#{ %q(}\") } end\"\ndef f\nend",
			want: []pair{{"def", "end", 0}},
		},
		{
			name: "regex inside interpolation",
			src:  "x = \"#{ y =~ /}\"/ } end\"\ndef f\nend",
			want: []pair{{"def", "end", 0}},
		},
		{
			name: "module nesting",
			src:  "module A\n  module B\n    class C; end\n  end\nend",
			want: []pair{{"module", "end", 0}, {"module", "end", 1}, {"class", "end", 2}},
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

	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"case when", "case x\nwhen 1 then a\nelse b\nend", []string{"when", "then", "else"}},
		{"case in", "case point\nin [x, y]\n  x\nend", []string{"in"}},
		{"begin rescue", "begin\n  x = foo rescue nil\nrescue => e\n  log e\nensure\n  close\nend", []string{"rescue", "ensure"}},
		{"if elsif", "if a then x\nelsif b\n  y\nelse\n  z\nend", []string{"then", "elsif", "else"}},
		{"for in is not a clause", "for k in h do\nend", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pairs := parsertest.Pairs(t, p, tt.src)
			require.Len(t, pairs, 1)
			var got []string
			if len(pairs[0].Intermediates) > 0 {
				got = parsertest.Values(pairs[0].Intermediates)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHeredocs(t *testing.T) {
	p := parser.New(New())

	t.Run("single", func(t *testing.T) {
		src := "text = <<~EOS\n  if x\n  end\n  EOS\nif y\nend"
		assert.Equal(t, []pair{{"if", "end", 0}}, parsertest.Compact(t, p, src))
	})

	t.Run("several on one line", func(t *testing.T) {
		src := "call(<<~A, <<-'B') do\n  def\n  A\n  end #{x}\n  B\nend"
		assert.Equal(t, []pair{{"do", "end", 0}}, parsertest.Compact(t, p, src))
	})

	t.Run("plain terminator must be unindented", func(t *testing.T) {
		src := "x = <<EOS\n  EOS\nif\nEOS\nbegin\nend"
		assert.Equal(t, []pair{{"begin", "end", 0}}, parsertest.Compact(t, p, src))
	})

	t.Run("shift operator", func(t *testing.T) {
		src := "arr << item\nlist<<EOS\nif a\nend"
		assert.Equal(t, []pair{{"if", "end", 0}}, parsertest.Compact(t, p, src))
	})

	t.Run("singleton class", func(t *testing.T) {
		src := "class <<self\n  def x\n  end\nend"
		assert.Equal(t, []pair{{"class", "end", 0}, {"def", "end", 1}}, parsertest.Compact(t, p, src))
	})

	t.Run("unterminated", func(t *testing.T) {
		src := "if a\nend\nx = <<~EOS\nif b\nend"
		assert.Equal(t, []pair{{"if", "end", 0}}, parsertest.Compact(t, p, src))
	})
}

func TestEmbeddedDocs(t *testing.T) {
	p := parser.New(New())

	src := "=begin\nif x\n=end\nif y\nend\n__END__\ndef z\nend"
	assert.Equal(t, []pair{{"if", "end", 0}}, parsertest.Compact(t, p, src))

	regions := p.ExcludedRegions(src)
	require.Len(t, regions, 2)
	assert.Equal(t, "=begin\nif x\n=end", src[regions[0].Start:regions[0].End])
	assert.Equal(t, len(src), regions[1].End)

	// only at line start and followed by whitespace
	assert.Len(t, p.Parse(" =begin\nif a\nend"), 1)
	assert.Len(t, p.Parse("=beginning\nif a\nend"), 1)
}

func TestExcludedRegions(t *testing.T) {
	p := parser.New(New())

	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"comment", "x # if\ny", []string{"# if"}},
		{"strings", `a = "x\"y" + 'z'`, []string{`"x\"y"`, `'z'`}},
		{"string ends at line break", "a = \"open\nif", []string{"\"open"}},
		{"division is not regex", "a = b / c / d", nil},
		{"regex after keyword", "if /x/i", []string{"/x/i"}},
		{"char literal", "c = ?e", []string{"?e"}},
		{"predicate is not char literal", "x.empty? ? 1 : 2", nil},
		{"quoted symbol", `k = :"a b"`, []string{`:"a b"`}},
		{"special global", `p $' + $"`, []string{"$'", `$"`}},
		{"nested percent", "%q(a (b) c) x", []string{"%q(a (b) c)"}},
		{"modulo", "a % b", nil},
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

func TestLineEndings(t *testing.T) {
	p := parser.New(New())

	for _, nl := range []string{"\n", "\r\n", "\r"} {
		src := "def a" + nl + "  x = <<~E" + nl + "  end" + nl + "  E" + nl + "end"
		pairs := parsertest.Pairs(t, p, src)
		require.Len(t, pairs, 1, "line ending %q", nl)
		assert.Equal(t, 4, pairs[0].Close.Line)
	}
}

func TestEdgeInputs(t *testing.T) {
	p := parser.New(New())
	parsertest.AssertNoPanic(t, p, parsertest.EdgeInputs...)
	parsertest.AssertNoPanic(t, p, "<<~", "<<'", "?", ":", "$", "%w", "\"#{", "\"#{\"", "def", "def (")
	assert.Empty(t, p.Parse(""))
}
