package parser

import (
	"strings"

	"github.com/jarredhawkins/goblock-lsp/internal/types"
)

// RegionMatcher tries to recognize an excluded construct starting at pos and
// returns its exclusive end.
type RegionMatcher func(text string, pos int) (end int, ok bool)

// ScanRegions runs the greedy left-to-right region scan: at each position the
// matchers are tried in order, the first hit is recorded and the cursor jumps
// to its end, otherwise the cursor advances by one byte.
func ScanRegions(text string, matchers ...RegionMatcher) types.Regions {
	var regions types.Regions
	for pos := 0; pos < len(text); {
		next := pos + 1
		for _, match := range matchers {
			if end, ok := match(text, pos); ok && end > pos {
				if end > len(text) {
					end = len(text)
				}
				regions = append(regions, types.Region{Start: pos, End: end})
				next = end
				break
			}
		}
		pos = next
	}
	return regions
}

// Escape selects how a quoted literal escapes its own delimiter
type Escape int

const (
	// EscapeBackslash skips the byte after every backslash
	EscapeBackslash Escape = iota
	// EscapeDoubled treats a doubled delimiter as a literal delimiter
	EscapeDoubled
	// EscapeNone has no escapes at all
	EscapeNone
)

// ScanQuoted returns the exclusive end of a literal whose opening delimiter
// sits at pos. Single-line literals stop at the line terminator; unterminated
// literals run to the end of text.
func ScanQuoted(text string, pos int, quote byte, esc Escape, multiline bool) int {
	for i := pos + 1; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '\\' && esc == EscapeBackslash:
			if i+1 < len(text) && (text[i+1] == '\n' || text[i+1] == '\r') && !multiline {
				// line continuation inside a single-line literal
				i++
				if text[i] == '\r' && i+1 < len(text) && text[i+1] == '\n' {
					i++
				}
				continue
			}
			i++
		case c == quote:
			if esc == EscapeDoubled && i+1 < len(text) && text[i+1] == quote {
				i++
				continue
			}
			return i + 1
		case (c == '\n' || c == '\r') && !multiline:
			return i
		}
	}
	return len(text)
}

// Quoted matches a literal delimited by quote on both sides
func Quoted(quote byte, esc Escape, multiline bool) RegionMatcher {
	return func(text string, pos int) (int, bool) {
		if text[pos] != quote {
			return 0, false
		}
		return ScanQuoted(text, pos, quote, esc, multiline), true
	}
}

// LineComment matches from prefix to the end of the line
func LineComment(prefix string) RegionMatcher {
	return func(text string, pos int) (int, bool) {
		if !strings.HasPrefix(text[pos:], prefix) {
			return 0, false
		}
		return LineEnd(text, pos), true
	}
}

// BlockComment matches open...close, optionally counting nested openers.
// An unterminated comment runs to the end of text.
func BlockComment(open, close string, nested bool) RegionMatcher {
	return func(text string, pos int) (int, bool) {
		if !strings.HasPrefix(text[pos:], open) {
			return 0, false
		}
		return ScanBlockComment(text, pos, open, close, nested), true
	}
}

// ScanBlockComment returns the exclusive end of the comment opened at pos.
func ScanBlockComment(text string, pos int, open, close string, nested bool) int {
	depth := 1
	for i := pos + len(open); i < len(text); {
		switch {
		case nested && strings.HasPrefix(text[i:], open):
			depth++
			i += len(open)
		case strings.HasPrefix(text[i:], close):
			depth--
			i += len(close)
			if depth == 0 {
				return i
			}
		default:
			i++
		}
	}
	return len(text)
}

// ScanBalanced returns the exclusive end of a bracketed body opened at pos,
// counting nested open/close bytes and skipping backslash escapes.
func ScanBalanced(text string, pos int, open, close byte) int {
	if open == close {
		return ScanQuoted(text, pos, open, EscapeBackslash, true)
	}
	depth := 0
	for i := pos; i < len(text); i++ {
		switch text[i] {
		case '\\':
			i++
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return len(text)
}

// ClosingDelimiter returns the closing partner of a bracket byte, or c itself
func ClosingDelimiter(c byte) byte {
	switch c {
	case '(':
		return ')'
	case '[':
		return ']'
	case '{':
		return '}'
	case '<':
		return '>'
	}
	return c
}

// Heredoc is a here-document whose body starts on the line after its marker
type Heredoc struct {
	ID string

	// Trim holds the bytes stripped from the start of a body line before it
	// is compared with ID
	Trim string
}

// HeredocBodies consumes the bodies of queue in order, the first starting at
// the line at start, and returns the end of the last terminator line. A
// missing terminator consumes the rest of text.
func HeredocBodies(text string, start int, queue []Heredoc) int {
	end, line := start, start
	for _, h := range queue {
		end = heredocEnd(text, line, h)
		line = NextLineStart(text, end)
	}
	return end
}

func heredocEnd(text string, pos int, h Heredoc) int {
	for pos < len(text) {
		end := LineEnd(text, pos)
		line := text[pos:end]
		if h.Trim != "" {
			line = strings.TrimLeft(line, h.Trim)
		}
		if line == h.ID {
			return end
		}
		pos = NextLineStart(text, pos)
	}
	return len(text)
}
