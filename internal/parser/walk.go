package parser

// Step is one item seen by a walk: an identifier when Word is set, otherwise
// the single code byte Punct.
type Step struct {
	Word  string
	Punct byte
	Start int

	// Depth is the bracket depth of the item relative to the walk start.
	// Walking forward, a closing bracket that leaves the start level is
	// visited with Depth -1 and ends the walk; walking backward the same
	// holds for an opening bracket.
	Depth int
}

// IsWord reports whether the step is an identifier equal to any of words,
// ignoring ASCII case
func (st Step) IsWord(words ...string) bool {
	if st.Word == "" {
		return false
	}
	for _, w := range words {
		if len(w) == len(st.Word) && HasWordAt(st.Word, 0, w, true) {
			return true
		}
	}
	return false
}

// WalkForward visits the code after pos item by item, skipping whitespace and
// excluded regions, until visit returns false or the text ends. Line breaks
// are visited as Punct '\n'.
func (s *Source) WalkForward(pos int, isWord func(byte) bool, visit func(Step) bool) {
	text := s.Text
	depth := 0
	for i := max(pos, 0); i < len(text); {
		if r, ok := s.Regions.Find(i); ok {
			i = r.End
			continue
		}
		c := text[i]
		switch {
		case c == '\r' && i+1 < len(text) && text[i+1] == '\n':
			i++
			continue
		case c == ' ' || c == '\t' || c == '\f' || c == '\v':
			i++
			continue
		case isWord(c):
			start := i
			for i < len(text) && isWord(text[i]) && !s.InRegion(i) {
				i++
			}
			if !visit(Step{Word: text[start:i], Start: start, Depth: depth}) {
				return
			}
			continue
		}
		if c == '\r' {
			c = '\n'
		}
		st := Step{Punct: c, Start: i, Depth: depth}
		switch c {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			st.Depth = depth
		}
		if !visit(st) || st.Depth < 0 {
			return
		}
		i++
	}
}

// WalkBackward visits the code before pos from right to left, mirroring
// WalkForward.
func (s *Source) WalkBackward(pos int, isWord func(byte) bool, visit func(Step) bool) {
	text := s.Text
	depth := 0
	for i := min(pos, len(text)) - 1; i >= 0; {
		if r, ok := s.Regions.Find(i); ok {
			i = r.Start - 1
			continue
		}
		c := text[i]
		switch {
		case c == '\n' && i > 0 && text[i-1] == '\r':
			i--
			continue
		case c == ' ' || c == '\t' || c == '\f' || c == '\v':
			i--
			continue
		case isWord(c):
			end := i + 1
			for i >= 0 && isWord(text[i]) && !s.InRegion(i) {
				i--
			}
			if !visit(Step{Word: text[i+1 : end], Start: i + 1, Depth: depth}) {
				return
			}
			continue
		}
		if c == '\r' {
			c = '\n'
		}
		st := Step{Punct: c, Start: i, Depth: depth}
		switch c {
		case ')', ']', '}':
			depth++
		case '(', '[', '{':
			depth--
			st.Depth = depth
		}
		if !visit(st) || st.Depth < 0 {
			return
		}
		i--
	}
}
