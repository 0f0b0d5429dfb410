package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jarredhawkins/goblock-lsp/internal/types"
)

func TestScanInterpolated(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		pos       int
		open      byte
		close     byte
		interp    bool
		multiline bool
		want      int
	}{
		{"plain", `"abc" x`, 0, 0, '"', true, false, 5},
		{"escaped quote", `"a\"b" x`, 0, 0, '"', true, false, 6},
		{"quote inside interpolation", `"a #{"}"} b" x`, 0, 0, '"', true, false, 12},
		{"braces inside interpolation", `"#{ {a: 1} }" x`, 0, 0, '"', true, false, 13},
		{"no interpolation", `'#{'}' x`, 0, 0, '\'', false, false, 4},
		{"stops at line end", "\"abc\ndef\"", 0, 0, '"', true, false, 4},
		{"multiline", "\"abc\ndef\" x", 0, 0, '"', true, true, 9},
		{"nested delimiters", "%(a (b) c) d", 1, '(', ')', true, true, 10},
		{"unterminated", `"abc`, 0, 0, '"', true, false, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScanInterpolated(tt.text, tt.pos, tt.open, tt.close, tt.interp, tt.multiline)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScanLiteral(t *testing.T) {
	percent := func(text string, i int) (Literal, int, bool) {
		if text[i] == '%' && i+1 < len(text) && text[i+1] == '(' {
			return Literal{Open: '(', Close: ')'}, i + 1, true
		}
		return Literal{}, 0, false
	}

	tests := []struct {
		name   string
		text   string
		nested NestedLiteral
		want   int
	}{
		{"quote in nested literal", `"#{ %(") } x" y`, percent, 13},
		{"without a hook the quote opens a string", `"#{ %(") } x" y`, nil, 15},
		{"nested literal only inside code", `"%(" x`, percent, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScanLiteral(tt.text, 0, Literal{Close: '"', Interp: true}, false, tt.nested)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHeredocBodies(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		start int
		queue []Heredoc
		want  int
	}{
		{
			name:  "two bodies in order",
			text:  "cat <<A <<B\na\nA\nb\nB\nrest",
			start: 12,
			queue: []Heredoc{{ID: "A"}, {ID: "B"}},
			want:  19,
		},
		{
			name:  "indented terminator",
			text:  "x <<-E\n\tbody\n\tE\n",
			start: 7,
			queue: []Heredoc{{ID: "E", Trim: "\t"}},
			want:  15,
		},
		{
			name:  "terminator must match the whole line",
			text:  "x <<E\nEND\nE",
			start: 6,
			queue: []Heredoc{{ID: "E"}},
			want:  11,
		},
		{
			name:  "missing terminator",
			text:  "x <<E\nbody\n",
			start: 6,
			queue: []Heredoc{{ID: "E"}},
			want:  11,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HeredocBodies(tt.text, tt.start, tt.queue))
		})
	}
}

func TestScanBalanced(t *testing.T) {
	assert.Equal(t, 7, ScanBalanced("(a(b)c) d", 0, '(', ')'))
	assert.Equal(t, 5, ScanBalanced(`(a\)) x`, 0, '(', ')'))
	assert.Equal(t, 3, ScanBalanced("(a(", 0, '(', ')'))
	assert.Equal(t, byte('}'), ClosingDelimiter('{'))
	assert.Equal(t, byte('|'), ClosingDelimiter('|'))
}

func TestEnclosingBracket(t *testing.T) {
	text := "f(a, [b], 'c(')"
	src := NewSource(text, types.Regions{{Start: 10, End: 14}})

	tests := []struct {
		pos  int
		want int
	}{
		{0, -1},
		{1, -1},
		{2, 1},
		{6, 5},
		{8, 1},
		{12, 1},
		{len(text), -1},
		{-3, -1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, src.EnclosingBracket(tt.pos), "pos %d", tt.pos)
	}
}

func TestSourcePosition(t *testing.T) {
	src := NewSource("ab\r\n日本x\rz", nil)

	line, col := src.Position(10)
	assert.Equal(t, 1, line)
	assert.Equal(t, 2, col)

	line, col = src.Position(12)
	assert.Equal(t, 2, line)
	assert.Equal(t, 0, col)

	assert.Equal(t, 3, src.LineCount())
}

func TestWalkForward(t *testing.T) {
	t.Run("depth", func(t *testing.T) {
		src := NewSource("if (a, b) then x", nil)
		var top []string
		src.WalkForward(2, IsIdent, func(st Step) bool {
			if st.Word != "" && st.Depth == 0 {
				top = append(top, st.Word)
			}
			return true
		})
		assert.Equal(t, []string{"then", "x"}, top)
	})

	t.Run("stops at unbalanced close", func(t *testing.T) {
		src := NewSource("f(a) b) c", nil)
		var steps []Step
		src.WalkForward(4, IsIdent, func(st Step) bool {
			steps = append(steps, st)
			return true
		})
		assert.Equal(t, []Step{
			{Word: "b", Start: 5},
			{Punct: ')', Start: 6, Depth: -1},
		}, steps)
	})

	t.Run("line breaks and regions", func(t *testing.T) {
		src := NewSource("a # x\r\nb", types.Regions{{Start: 2, End: 5}})
		var steps []Step
		src.WalkForward(0, IsIdent, func(st Step) bool {
			steps = append(steps, st)
			return true
		})
		assert.Equal(t, []Step{
			{Word: "a", Start: 0},
			{Punct: '\n', Start: 6},
			{Word: "b", Start: 7},
		}, steps)
	})

	t.Run("visit stops the walk", func(t *testing.T) {
		src := NewSource("a b c", nil)
		n := 0
		src.WalkForward(0, IsIdent, func(Step) bool {
			n++
			return n < 2
		})
		assert.Equal(t, 2, n)
	})
}

func TestWalkBackward(t *testing.T) {
	src := NewSource("x = foo(1) bar", nil)
	var steps []Step
	src.WalkBackward(len(src.Text), IsIdent, func(st Step) bool {
		steps = append(steps, st)
		return st.Punct != '='
	})

	assert.Equal(t, []Step{
		{Word: "bar", Start: 11},
		{Punct: ')', Start: 9},
		{Word: "1", Start: 8, Depth: 1},
		{Punct: '(', Start: 7},
		{Word: "foo", Start: 4},
		{Punct: '=', Start: 2},
	}, steps)

	assert.True(t, Step{Word: "END"}.IsWord("if", "end"))
	assert.False(t, Step{Punct: '('}.IsWord("("))
}
