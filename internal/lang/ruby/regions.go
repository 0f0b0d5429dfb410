package ruby

import (
	"strings"
	"unicode/utf8"

	"github.com/jarredhawkins/goblock-lsp/internal/parser"
	"github.com/jarredhawkins/goblock-lsp/internal/types"
)

// regionScanner walks the source once, queueing heredoc terminators so that
// several heredocs opened on one line consume their bodies in order.
type regionScanner struct {
	text    string
	d       *Dialect
	regions types.Regions
	pending []parser.Heredoc
}

func (l *Language) ExcludedRegions(text string) types.Regions {
	s := &regionScanner{text: text, d: &l.d}
	s.run()
	return s.regions
}

func (s *regionScanner) run() {
	text := s.text
	for pos := 0; pos < len(text); {
		c := text[pos]
		if c == '\n' || c == '\r' {
			next := parser.NextLineStart(text, pos)
			if len(s.pending) > 0 {
				next = s.heredocBodies(next)
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
}

func (s *regionScanner) add(start, end int) {
	if end > len(s.text) {
		end = len(s.text)
	}
	if end > start {
		s.regions = append(s.regions, types.Region{Start: start, End: end})
	}
}

func (s *regionScanner) match(pos int) (int, bool) {
	text := s.text
	lineStart := pos == 0 || text[pos-1] == '\n' || text[pos-1] == '\r'

	switch c := text[pos]; c {
	case '=':
		if s.d.EmbeddedDocs && lineStart {
			return s.embeddedDoc(pos)
		}
	case '_':
		if s.d.EmbeddedDocs && lineStart && text[pos:parser.LineEnd(text, pos)] == "__END__" {
			return len(text), true
		}
	case '#':
		return parser.LineEnd(text, pos), true
	case '{':
		if s.d.Macros && pos+1 < len(text) {
			switch text[pos+1] {
			case '%':
				return closeAt(text, pos+2, "%}"), true
			case '{':
				return closeAt(text, pos+2, "}}"), true
			}
		}
	case '"', '`':
		return scanLiteral(text, pos, parser.Literal{Close: c, Interp: true}, false), true
	case '\'':
		return parser.ScanQuoted(text, pos, '\'', parser.EscapeBackslash, false), true
	case '<':
		return s.heredoc(pos)
	case '%':
		return s.percentLiteral(pos)
	case '/':
		if s.regexAllowed(pos) {
			end := scanLiteral(text, pos, parser.Literal{Close: '/', Interp: true}, false)
			return skipFlags(text, end), true
		}
	case '?':
		if s.d.CharLiterals {
			return charLiteral(text, pos)
		}
	case ':':
		return symbol(text, pos)
	case '$':
		// special globals such as $' and $"
		if pos+1 < len(text) && !parser.IsIdent(text[pos+1]) && !parser.IsSpace(text[pos+1]) {
			return pos + 2, true
		}
	}
	return 0, false
}

// embeddedDoc matches `=begin` ... `=end` starting at a line start
func (s *regionScanner) embeddedDoc(pos int) (int, bool) {
	text := s.text
	if !directiveAt(text, pos, "=begin") {
		return 0, false
	}
	for line := parser.NextLineStart(text, pos); line < len(text); line = parser.NextLineStart(text, line) {
		if directiveAt(text, line, "=end") {
			return parser.LineEnd(text, line), true
		}
	}
	return len(text), true
}

// directiveAt reports whether word sits at pos followed by whitespace or EOF
func directiveAt(text string, pos int, word string) bool {
	if !strings.HasPrefix(text[pos:], word) {
		return false
	}
	end := pos + len(word)
	return end >= len(text) || parser.IsSpace(text[end])
}

func closeAt(text string, pos int, closer string) int {
	if idx := strings.Index(text[pos:], closer); idx >= 0 {
		return pos + idx + len(closer)
	}
	return len(text)
}

// heredoc matches the `<<~ID` marker and queues its body
func (s *regionScanner) heredoc(pos int) (int, bool) {
	text := s.text
	if !strings.HasPrefix(text[pos:], "<<") {
		return 0, false
	}
	i := pos + 2
	flagged := false
	if i < len(text) && (text[i] == '~' || text[i] == '-') {
		flagged = true
		i++
	}

	var id string
	quoted := i < len(text) && (text[i] == '\'' || text[i] == '"' || text[i] == '`')
	if quoted {
		q := text[i]
		end := strings.IndexByte(text[i+1:parser.LineEnd(text, i)], q)
		if end <= 0 {
			return 0, false
		}
		id = text[i+1 : i+1+end]
		i += end + 2
	} else {
		start := i
		for i < len(text) && parser.IsIdent(text[i]) {
			i++
		}
		id = text[start:i]
		if id == "" || parser.IsDigit(id[0]) {
			return 0, false
		}
	}

	if !flagged && !quoted {
		// `x <<y` is a shift
		if pos > 0 && (parser.IsIdent(text[pos-1]) || isCloser(text[pos-1])) {
			return 0, false
		}
		if wordBefore(text, pos) == "class" {
			return 0, false
		}
	}

	h := parser.Heredoc{ID: id}
	if flagged {
		h.Trim = " \t"
	}
	s.pending = append(s.pending, h)
	return i, true
}

// heredocBodies consumes the queued heredoc bodies starting at the line at
// start and returns the offset where regular scanning resumes.
func (s *regionScanner) heredocBodies(start int) int {
	end := parser.HeredocBodies(s.text, start, s.pending)
	s.pending = s.pending[:0]
	s.add(start, end)
	return max(start, end)
}

// wordBefore returns the identifier preceding pos on the same line
func wordBefore(text string, pos int) string {
	end := pos
	for end > 0 && (text[end-1] == ' ' || text[end-1] == '\t') {
		end--
	}
	start := end
	for start > 0 && parser.IsIdent(text[start-1]) {
		start--
	}
	return text[start:end]
}

// scanLiteral scans a literal whose interpolations may hold further strings,
// regexes and percent literals
func scanLiteral(text string, pos int, lit parser.Literal, multiline bool) int {
	return parser.ScanLiteral(text, pos, lit, multiline, nestedLiteral)
}

// nestedLiteral opens the regexes and percent literals found inside a `#{ }`
// body. Plain quotes are tracked by the scanner itself.
func nestedLiteral(text string, i int) (parser.Literal, int, bool) {
	switch text[i] {
	case '%':
		if lit, delim, ok := percentStart(text, i); ok {
			return lit, delim, true
		}
	case '/':
		if regexAfter(text, i) {
			return parser.Literal{Close: '/', Interp: true}, i, true
		}
	}
	return parser.Literal{}, 0, false
}

// percentLiteral matches %w[], %q(), %r{}, %() and friends
func (s *regionScanner) percentLiteral(pos int) (int, bool) {
	text := s.text
	lit, delim, ok := percentStart(text, pos)
	if !ok {
		return 0, false
	}
	end := scanLiteral(text, delim, lit, true)
	if text[delim-1] == 'r' {
		end = skipFlags(text, end)
	}
	return end, true
}

// percentStart reports whether a percent literal starts at pos, returning
// its delimiters and the offset of the opening delimiter
func percentStart(text string, pos int) (parser.Literal, int, bool) {
	if pos > 0 && (parser.IsIdent(text[pos-1]) || isCloser(text[pos-1])) {
		return parser.Literal{}, 0, false
	}
	i := pos + 1
	if i >= len(text) {
		return parser.Literal{}, 0, false
	}
	var kind byte
	if strings.IndexByte("qQwWiIrsx", text[i]) >= 0 && i+1 < len(text) && isPercentDelim(text[i+1]) {
		kind = text[i]
		i++
	}
	if !isPercentDelim(text[i]) {
		return parser.Literal{}, 0, false
	}
	lit := parser.Literal{
		Open:   text[i],
		Close:  parser.ClosingDelimiter(text[i]),
		Interp: kind == 0 || strings.IndexByte("QWIrx", kind) >= 0,
	}
	if lit.Close == lit.Open {
		lit.Open = 0
	}
	return lit, i, true
}

func isPercentDelim(c byte) bool {
	return c > ' ' && c < utf8.RuneSelf && !parser.IsIdent(c) && c != '='
}

func isCloser(c byte) bool {
	return c == ')' || c == ']' || c == '}'
}

// regexKeywords may directly precede a regex literal
var regexKeywords = map[string]bool{
	"if": true, "elsif": true, "unless": true, "while": true, "until": true,
	"when": true, "and": true, "or": true, "not": true, "return": true,
	"then": true, "else": true, "case": true, "in": true,
}

// regexAllowed reports whether `/` at pos starts a regex rather than a division
func (s *regionScanner) regexAllowed(pos int) bool {
	i := prevOnLine(s.text, pos)
	if n := len(s.regions); i >= 0 && n > 0 && s.regions[n-1].End == i+1 {
		return false
	}
	return regexAfter(s.text, pos)
}

// regexAfter reports whether the code before the `/` at pos leaves it in
// operand position: after an operator, an opening bracket, a keyword or
// nothing on the line
func regexAfter(text string, pos int) bool {
	i := prevOnLine(text, pos)
	if i < 0 {
		return true
	}
	switch c := text[i]; {
	case parser.IsIdent(c):
		start := i
		for start > 0 && parser.IsIdent(text[start-1]) {
			start--
		}
		return regexKeywords[text[start:i+1]]
	case c == '"' || c == '\'' || c == '`':
		return false
	default:
		return !isCloser(c)
	}
}

// prevOnLine returns the offset of the last non-blank byte before pos on its
// line, or -1
func prevOnLine(text string, pos int) int {
	i := pos - 1
	for i >= 0 && (text[i] == ' ' || text[i] == '\t') {
		i--
	}
	if i < 0 || text[i] == '\n' || text[i] == '\r' {
		return -1
	}
	return i
}

func skipFlags(text string, pos int) int {
	for pos < len(text) && strings.IndexByte("imxounse", text[pos]) >= 0 {
		pos++
	}
	return pos
}

// charLiteral matches `?a`, `?\n` and `?日`
func charLiteral(text string, pos int) (int, bool) {
	if pos+1 >= len(text) {
		return 0, false
	}
	if pos > 0 && (parser.IsIdent(text[pos-1]) || isCloser(text[pos-1])) {
		return 0, false
	}
	c := text[pos+1]
	if parser.IsSpace(c) {
		return 0, false
	}
	end := pos + 2
	switch {
	case c == '\\':
		end = min(pos+3, len(text))
		return end, true
	case c >= utf8.RuneSelf:
		_, size := utf8.DecodeRuneInString(text[pos+1:])
		end = pos + 1 + size
	}
	if end < len(text) && parser.IsIdent(text[end]) {
		return 0, false
	}
	return end, true
}

// symbol matches `:name`, `:"quoted"` and `:'quoted'`
func symbol(text string, pos int) (int, bool) {
	if pos+1 >= len(text) {
		return 0, false
	}
	if pos > 0 && (text[pos-1] == ':' || parser.IsIdent(text[pos-1])) {
		return 0, false
	}
	switch c := text[pos+1]; {
	case c == '"':
		return scanLiteral(text, pos+1, parser.Literal{Close: '"', Interp: true}, false), true
	case c == '\'':
		return parser.ScanQuoted(text, pos+1, '\'', parser.EscapeBackslash, false), true
	case parser.IsIdent(c) && !parser.IsDigit(c):
		i := pos + 1
		for i < len(text) && parser.IsIdent(text[i]) {
			i++
		}
		if i < len(text) && (text[i] == '?' || text[i] == '!') {
			i++
		}
		return i, true
	}
	return 0, false
}
