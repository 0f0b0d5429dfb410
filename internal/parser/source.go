package parser

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/jarredhawkins/goblock-lsp/internal/types"
)

// Source is the text being tokenized together with its excluded regions.
// It is built once per parse and used by a single goroutine.
type Source struct {
	Text    string
	Regions types.Regions

	lineStarts []int
	runeStarts []int // byte offset of every code point, nil for ASCII text
	enclosing  []int32
}

// NewSource indexes line starts for text
func NewSource(text string, regions types.Regions) *Source {
	s := &Source{
		Text:       text,
		Regions:    regions,
		lineStarts: []int{0},
	}
	ascii := true
	for i := 0; i < len(text); i++ {
		switch c := text[i]; {
		case c == '\n':
			s.lineStarts = append(s.lineStarts, i+1)
		case c == '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			s.lineStarts = append(s.lineStarts, i+1)
		case c >= utf8.RuneSelf:
			ascii = false
		}
	}
	if !ascii {
		s.runeStarts = make([]int, 0, len(text)+1)
		for i := range text {
			s.runeStarts = append(s.runeStarts, i)
		}
		s.runeStarts = append(s.runeStarts, len(text))
	}
	return s
}

// byteOffset converts a code point index (as reported by regexp2) to a byte offset
func (s *Source) byteOffset(runeIndex int) int {
	if s.runeStarts == nil {
		return runeIndex
	}
	if runeIndex >= len(s.runeStarts) {
		return len(s.Text)
	}
	return s.runeStarts[runeIndex]
}

// Position returns the 0-indexed line and code point column of offset
func (s *Source) Position(offset int) (line, column int) {
	line = sort.Search(len(s.lineStarts), func(i int) bool { return s.lineStarts[i] > offset }) - 1
	if line < 0 {
		line = 0
	}
	start := s.lineStarts[line]
	if offset > len(s.Text) {
		offset = len(s.Text)
	}
	return line, utf8.RuneCountInString(s.Text[start:offset])
}

// EnclosingBracket returns the offset of the innermost `(`, `[` or `{` still
// open at pos, or -1. Brackets inside excluded regions are ignored. The table
// behind it is built on first use.
func (s *Source) EnclosingBracket(pos int) int {
	if s.enclosing == nil {
		s.enclosing = make([]int32, len(s.Text)+1)
		var stack []int32
		for i := 0; i <= len(s.Text); i++ {
			top := int32(-1)
			if len(stack) > 0 {
				top = stack[len(stack)-1]
			}
			s.enclosing[i] = top
			if i == len(s.Text) {
				break
			}
			if r, ok := s.Regions.Find(i); ok {
				for j := i; j < r.End && j < len(s.Text); j++ {
					s.enclosing[j] = top
				}
				i = r.End - 1
				continue
			}
			switch s.Text[i] {
			case '(', '[', '{':
				stack = append(stack, int32(i))
			case ')', ']', '}':
				if len(stack) > 0 {
					stack = stack[:len(stack)-1]
				}
			}
		}
	}
	if pos < 0 || pos >= len(s.enclosing) {
		return -1
	}
	return int(s.enclosing[pos])
}

// LineCount returns the number of lines in the source
func (s *Source) LineCount() int {
	return len(s.lineStarts)
}

// InRegion reports whether pos is inside an excluded region
func (s *Source) InRegion(pos int) bool {
	return s.Regions.Contains(pos)
}

// LineStart returns the offset of the first byte of the line containing pos
func (s *Source) LineStart(pos int) int {
	return LineStart(s.Text, pos)
}

// LineEnd returns the offset of the terminator of the line containing pos
func (s *Source) LineEnd(pos int) int {
	return LineEnd(s.Text, pos)
}

// PrevCode returns the offset of the closest non-space byte before pos that is
// outside every excluded region, or -1. The search stops at the start of the
// line when sameLine is set.
func (s *Source) PrevCode(pos int, sameLine bool) int {
	i := pos - 1
	for i >= 0 {
		if r, ok := s.Regions.Find(i); ok {
			i = r.Start - 1
			continue
		}
		c := s.Text[i]
		if c == '\n' || c == '\r' {
			if sameLine {
				return -1
			}
			i--
			continue
		}
		if c == ' ' || c == '\t' || c == '\f' || c == '\v' {
			i--
			continue
		}
		return i
	}
	return -1
}

// NextCode returns the offset of the closest non-space byte at or after pos
// that is outside every excluded region, or -1.
func (s *Source) NextCode(pos int, sameLine bool) int {
	i := pos
	for i < len(s.Text) {
		if r, ok := s.Regions.Find(i); ok {
			i = r.End
			continue
		}
		c := s.Text[i]
		if c == '\n' || c == '\r' {
			if sameLine {
				return -1
			}
			i++
			continue
		}
		if c == ' ' || c == '\t' || c == '\f' || c == '\v' {
			i++
			continue
		}
		return i
	}
	return -1
}

// CodeBetween returns text[start:end] with excluded regions replaced by spaces,
// so callers can run plain string checks without matching inside comments.
func (s *Source) CodeBetween(start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(s.Text) {
		end = len(s.Text)
	}
	if start >= end {
		return ""
	}
	if !s.Regions.Overlaps(start, end) {
		return s.Text[start:end]
	}
	b := []byte(s.Text[start:end])
	r, ok := s.Regions.NextAt(start)
	for ok && r.Start < end {
		from, to := max(r.Start, start), min(r.End, end)
		for j := from; j < to; j++ {
			if b[j-start] != '\n' && b[j-start] != '\r' {
				b[j-start] = ' '
			}
		}
		r, ok = s.Regions.NextAt(r.End)
	}
	return string(b)
}

// WordBefore returns the identifier ending right before pos (after skipping
// spaces on the same line) and its start offset.
func (s *Source) WordBefore(pos int, isWord func(byte) bool) (string, int) {
	end := s.PrevCode(pos, true)
	if end < 0 || !isWord(s.Text[end]) {
		return "", -1
	}
	start := end
	for start > 0 && isWord(s.Text[start-1]) {
		start--
	}
	return s.Text[start : end+1], start
}

// WordAfter returns the identifier starting at the first code byte after pos
// on the same line and its start offset.
func (s *Source) WordAfter(pos int, isWord func(byte) bool) (string, int) {
	start := s.NextCode(pos, true)
	if start < 0 || !isWord(s.Text[start]) {
		return "", -1
	}
	end := start
	for end < len(s.Text) && isWord(s.Text[end]) {
		end++
	}
	return s.Text[start:end], start
}

// LineStart returns the offset of the first byte of the line containing pos.
func LineStart(text string, pos int) int {
	if pos > len(text) {
		pos = len(text)
	}
	for i := pos - 1; i >= 0; i-- {
		if text[i] == '\n' || text[i] == '\r' {
			return i + 1
		}
	}
	return 0
}

// LineEnd returns the offset of the line terminator at or after pos, or len(text).
func LineEnd(text string, pos int) int {
	for i := pos; i < len(text); i++ {
		if text[i] == '\n' || text[i] == '\r' {
			return i
		}
	}
	return len(text)
}

// NextLineStart returns the offset just past the line terminator at or after pos.
func NextLineStart(text string, pos int) int {
	end := LineEnd(text, pos)
	if end >= len(text) {
		return len(text)
	}
	if text[end] == '\r' && end+1 < len(text) && text[end+1] == '\n' {
		return end + 2
	}
	return end + 1
}

// IsLineStart reports whether only spaces and tabs precede pos on its line.
func IsLineStart(text string, pos int) bool {
	return strings.TrimLeft(text[LineStart(text, pos):pos], " \t") == ""
}

// IsSpace reports whether c is horizontal or vertical whitespace.
func IsSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

// IsIdent reports whether c may appear in an ASCII identifier. Bytes of
// multi-byte code points count as identifier bytes.
func IsIdent(c byte) bool {
	return c == '_' || c >= utf8.RuneSelf ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// IsDigit reports whether c is an ASCII digit.
func IsDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// HasWordAt reports whether text has word at pos with identifier boundaries on
// both sides, comparing ASCII case-insensitively when fold is set.
func HasWordAt(text string, pos int, word string, fold bool) bool {
	if pos < 0 || pos+len(word) > len(text) {
		return false
	}
	got := text[pos : pos+len(word)]
	if fold {
		if !strings.EqualFold(got, word) {
			return false
		}
	} else if got != word {
		return false
	}
	if pos > 0 && IsIdent(text[pos-1]) {
		return false
	}
	end := pos + len(word)
	return end >= len(text) || !IsIdent(text[end])
}
