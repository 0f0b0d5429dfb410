// Package bash matches shell compound commands: if/fi, case/esac and the
// for/while/until/select ... done loops.
package bash

import (
	"strings"

	"github.com/jarredhawkins/goblock-lsp/internal/parser"
	"github.com/jarredhawkins/goblock-lsp/internal/types"
)

// Language is the Bash block language
type Language struct{}

// New returns the Bash language
func New() *Language {
	return &Language{}
}

func (l *Language) Name() string { return "bash" }

func (l *Language) Extensions() []string {
	return []string{".sh", ".bash", ".ksh", ".zsh", ".bats"}
}

func (l *Language) Keywords() parser.Keywords {
	return parser.Keywords{
		Open:   []string{"if", "case", "for", "while", "until", "select"},
		Middle: []string{"then", "elif", "else", "do"},
		Close:  []string{"fi", "esac", "done"},
	}
}

var loops = []string{"for", "while", "until", "select"}

func (l *Language) PairRules() *parser.PairRules {
	return &parser.PairRules{
		Closers: map[string][]string{
			"fi":   {"if"},
			"esac": {"case"},
			"done": loops,
		},
		Middles: map[string][]string{
			"then": {"if"},
			"elif": {"if"},
			"else": {"if"},
			"do":   loops,
		},
	}
}

// commandWords are followed by a command
var commandWords = map[string]bool{
	"then": true, "do": true, "else": true, "elif": true, "if": true,
	"while": true, "until": true, "time": true, "!": true,
}

// commandPosition reports whether the word at tok sits where the shell
// expects a command name: at line start, after a separator or after a
// keyword that introduces a command.
func commandPosition(src *parser.Source, tok types.Token) bool {
	text := src.Text
	if tok.Start > 0 {
		switch text[tok.Start-1] {
		case '-', '.', '/', '$', '\\':
			return false
		}
	}
	if tok.End < len(text) {
		switch text[tok.End] {
		case '=', '-', '.', '/':
			return false
		}
	}

	prev := src.PrevCode(tok.Start, true)
	if prev < 0 {
		return true
	}
	switch text[prev] {
	case ';', '&', '|', '(', ')', '{', '`':
		return true
	case '!':
		return prev == 0 || parser.IsSpace(text[prev-1])
	}
	w, _ := src.WordBefore(tok.Start, isWord)
	return commandWords[w]
}

func isWord(c byte) bool {
	return parser.IsIdent(c) || c == '!'
}

func (l *Language) ValidOpen(src *parser.Source, tok types.Token) bool {
	return commandPosition(src, tok)
}

func (l *Language) ValidMiddle(src *parser.Source, tok types.Token) bool {
	return commandPosition(src, tok)
}

func (l *Language) ValidClose(src *parser.Source, tok types.Token) bool {
	return commandPosition(src, tok)
}

// regionScanner queues heredoc markers so several heredocs started on one
// line consume their bodies in order.
type regionScanner struct {
	text    string
	regions types.Regions
	pending []parser.Heredoc
}

func (l *Language) ExcludedRegions(text string) types.Regions {
	s := &regionScanner{text: text}
	for pos := 0; pos < len(text); {
		c := text[pos]
		if c == '\n' || c == '\r' {
			next := parser.NextLineStart(text, pos)
			if len(s.pending) > 0 {
				end := parser.HeredocBodies(text, next, s.pending)
				s.pending = s.pending[:0]
				s.add(next, end)
				next = max(next, end)
			}
			pos = next
			continue
		}
		if end, ok := s.match(pos); ok && end > pos {
			s.add(pos, end)
			pos = end
			continue
		}
		pos++
	}
	return s.regions
}

func (s *regionScanner) add(start, end int) {
	end = min(end, len(s.text))
	if end > start {
		s.regions = append(s.regions, types.Region{Start: start, End: end})
	}
}

func (s *regionScanner) match(pos int) (int, bool) {
	text := s.text
	switch text[pos] {
	case '#':
		if pos == 0 || wordBreak(text[pos-1]) {
			return parser.LineEnd(text, pos), true
		}
	case '\\':
		// escaped byte
		return pos + 2, true
	case '\'':
		return parser.ScanQuoted(text, pos, '\'', parser.EscapeNone, true), true
	case '"':
		return scanDouble(text, pos), true
	case '`':
		return parser.ScanQuoted(text, pos, '`', parser.EscapeBackslash, true), true
	case '$':
		if pos+1 >= len(text) {
			return 0, false
		}
		switch text[pos+1] {
		case '\'':
			return parser.ScanQuoted(text, pos+1, '\'', parser.EscapeBackslash, true), true
		case '"':
			return scanDouble(text, pos+1), true
		case '{':
			return scanSubst(text, pos+1, '{', '}'), true
		case '(':
			if pos+2 < len(text) && text[pos+2] == '(' {
				return scanSubst(text, pos+1, '(', ')'), true
			}
		case '#', '?', '$', '!', '@', '*', '-':
			// special parameters
			return pos + 2, true
		}
	case '<':
		return s.heredoc(pos)
	}
	return 0, false
}

// wordBreak reports whether a `#` after c starts a comment
func wordBreak(c byte) bool {
	return parser.IsSpace(c) || strings.IndexByte(";&|()<>", c) >= 0
}

// heredoc matches `<<ID`, `<<-ID`, `<<'ID'`, `<<"ID"` and `<<\ID` markers
func (s *regionScanner) heredoc(pos int) (int, bool) {
	text := s.text
	if !strings.HasPrefix(text[pos:], "<<") || strings.HasPrefix(text[pos:], "<<<") {
		return 0, false
	}
	i := pos + 2
	var h parser.Heredoc
	if i < len(text) && text[i] == '-' {
		h.Trim = "\t"
		i++
	}
	for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
		i++
	}
	if i >= len(text) {
		return 0, false
	}

	switch q := text[i]; q {
	case '\'', '"':
		end := strings.IndexByte(text[i+1:parser.LineEnd(text, i)], q)
		if end <= 0 {
			return 0, false
		}
		h.ID = text[i+1 : i+1+end]
		i += end + 2
	default:
		if q == '\\' {
			i++
		}
		start := i
		for i < len(text) && (parser.IsIdent(text[i]) || text[i] == '-' || text[i] == '.') {
			i++
		}
		h.ID = text[start:i]
		if h.ID != "" && parser.IsDigit(h.ID[0]) {
			// arithmetic shift inside (( ))
			return 0, false
		}
	}
	if h.ID == "" {
		return 0, false
	}
	s.pending = append(s.pending, h)
	return i, true
}

// frame kinds of the double-quote scanner
const (
	inQuote = iota
	inCommand
)

type frame struct {
	kind  int
	depth int
}

// scanDouble returns the end of the double-quoted string at pos. Command
// substitutions inside it are followed so quotes nested in `$( )` never end
// the outer string.
func scanDouble(text string, pos int) int {
	stack := []frame{{kind: inQuote}}
	for i := pos + 1; i < len(text); {
		top := &stack[len(stack)-1]
		c := text[i]
		switch {
		case c == '\\':
			i += 2
			continue
		case top.kind == inQuote && c == '"':
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i + 1
			}
		case top.kind == inQuote && c == '$' && i+1 < len(text) && text[i+1] == '(':
			stack = append(stack, frame{kind: inCommand})
			i += 2
			continue
		case top.kind == inCommand && c == '\'':
			i = parser.ScanQuoted(text, i, '\'', parser.EscapeNone, true)
			continue
		case top.kind == inCommand && c == '"':
			stack = append(stack, frame{kind: inQuote})
		case top.kind == inCommand && c == '(':
			top.depth++
		case top.kind == inCommand && c == ')':
			if top.depth == 0 {
				stack = stack[:len(stack)-1]
			} else {
				top.depth--
			}
		}
		i++
	}
	return len(text)
}

// scanSubst returns the end of a `${ }` or `$(( ))` body opened at pos,
// skipping quoted text inside it.
func scanSubst(text string, pos int, open, close byte) int {
	depth := 0
	for i := pos; i < len(text); i++ {
		switch c := text[i]; c {
		case '\\':
			i++
		case '\'':
			i = parser.ScanQuoted(text, i, '\'', parser.EscapeNone, true) - 1
		case '"':
			i = scanDouble(text, i) - 1
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
