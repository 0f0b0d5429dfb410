package parser

// Literal describes the delimiters of a literal body. Open is the bracket
// that nests inside the body, or 0 when Close is not a bracket.
type Literal struct {
	Open   byte
	Close  byte
	Interp bool
}

// NestedLiteral reports whether a literal starts at i inside a `#{ }` body,
// returning it and the offset of its opening delimiter.
type NestedLiteral func(text string, i int) (lit Literal, delim int, ok bool)

// litFrame is one level of a literal being scanned. Code frames are the
// bodies of `#{ }` interpolations.
type litFrame struct {
	open, close byte
	depth       int
	interp      bool
	code        bool
}

// ScanInterpolated returns the end of the literal whose opening delimiter sits at
// pos. Interpolations are scanned with an explicit stack so nested strings and
// braces inside `#{ }` never end the outer literal early.
func ScanInterpolated(text string, pos int, open, close byte, interp, multiline bool) int {
	return ScanLiteral(text, pos, Literal{Open: open, Close: close, Interp: interp}, multiline, nil)
}

// ScanLiteral is ScanInterpolated with a language hook for the literals that
// may open inside interpolation bodies, such as regexes and percent literals.
func ScanLiteral(text string, pos int, lit Literal, multiline bool, nested NestedLiteral) int {
	stack := []litFrame{{open: lit.Open, close: lit.Close, interp: lit.Interp}}
	for i := pos + 1; i < len(text); {
		top := &stack[len(stack)-1]
		c := text[i]

		if top.code {
			if nested != nil {
				if inner, delim, ok := nested(text, i); ok && delim >= i && delim < len(text) {
					stack = append(stack, litFrame{open: inner.Open, close: inner.Close, interp: inner.Interp})
					i = delim + 1
					continue
				}
			}
			switch c {
			case '{':
				top.depth++
			case '}':
				if top.depth == 0 {
					stack = stack[:len(stack)-1]
					i++
					continue
				}
				top.depth--
			case '"', '`':
				stack = append(stack, litFrame{close: c, interp: true})
			case '\'':
				stack = append(stack, litFrame{close: c})
			}
			i++
			continue
		}

		switch {
		case c == '\\':
			i += 2
			continue
		case (c == '\n' || c == '\r') && !multiline && len(stack) == 1:
			return i
		case top.interp && c == '#' && i+1 < len(text) && text[i+1] == '{':
			stack = append(stack, litFrame{code: true})
			i += 2
			continue
		case c == top.close && top.depth == 0:
			if len(stack) == 1 {
				return i + 1
			}
			stack = stack[:len(stack)-1]
		case c == top.close:
			top.depth--
		case top.open != 0 && c == top.open:
			top.depth++
		}
		i++
	}
	return len(text)
}
