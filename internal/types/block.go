package types

import (
	"sort"
	"unicode/utf8"
)

// TokenType categorizes block keywords
type TokenType int

const (
	BlockOpen TokenType = iota
	BlockMiddle
	BlockClose
)

func (t TokenType) String() string {
	switch t {
	case BlockOpen:
		return "block_open"
	case BlockMiddle:
		return "block_middle"
	case BlockClose:
		return "block_close"
	default:
		return "unknown"
	}
}

// Token is a recognized keyword occurrence.
// Start and End are byte offsets, Line and Column are 0-indexed and
// Column counts code points from the start of the line.
type Token struct {
	Type   TokenType `json:"type"`
	Value  string    `json:"value"`
	Start  int       `json:"start"`
	End    int       `json:"end"`
	Line   int       `json:"line"`
	Column int       `json:"column"`
}

// EndPosition returns the line and code point column just past the token.
// Compound values such as `end\n  if` may span lines.
func (t Token) EndPosition() (line, column int) {
	line, column = t.Line, t.Column
	v := t.Value
	for i := 0; i < len(v); {
		switch {
		case v[i] == '\r' && i+1 < len(v) && v[i+1] == '\n':
			line, column = line+1, 0
			i += 2
			continue
		case v[i] == '\n' || v[i] == '\r':
			line, column = line+1, 0
		case utf8.RuneStart(v[i]):
			column++
		}
		i++
	}
	return line, column
}

// Region is a [Start, End) span of source excluded from keyword matching
type Region struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether pos lies inside the region
func (r Region) Contains(pos int) bool {
	return pos >= r.Start && pos < r.End
}

// Regions is a sorted list of disjoint regions
type Regions []Region

// Find returns the region containing pos
func (rs Regions) Find(pos int) (Region, bool) {
	i := sort.Search(len(rs), func(i int) bool { return rs[i].End > pos })
	if i < len(rs) && rs[i].Start <= pos {
		return rs[i], true
	}
	return Region{}, false
}

// Contains reports whether pos lies inside any region
func (rs Regions) Contains(pos int) bool {
	_, ok := rs.Find(pos)
	return ok
}

// NextAt returns the first region that contains pos or starts after it
func (rs Regions) NextAt(pos int) (Region, bool) {
	i := sort.Search(len(rs), func(i int) bool { return rs[i].End > pos })
	if i < len(rs) {
		return rs[i], true
	}
	return Region{}, false
}

// Overlaps reports whether any region intersects [start, end)
func (rs Regions) Overlaps(start, end int) bool {
	r, ok := rs.NextAt(start)
	return ok && r.Start < end
}

// BlockPair is a matched open/close keyword pair. NestLevel counts the
// blocks still open when the pair was resolved.
type BlockPair struct {
	Open          Token   `json:"open"`
	Close         Token   `json:"close"`
	Intermediates []Token `json:"intermediates,omitempty"`
	NestLevel     int     `json:"nestLevel"`
}

// Contains reports whether the pair spans the given offset
func (p BlockPair) Contains(pos int) bool {
	return pos >= p.Open.Start && pos < p.Close.End
}

// Keywords returns the open, intermediate and close tokens in source order
func (p BlockPair) Keywords() []Token {
	out := make([]Token, 0, len(p.Intermediates)+2)
	out = append(out, p.Open)
	out = append(out, p.Intermediates...)
	return append(out, p.Close)
}

// SortPairs orders pairs by opening offset, for callers that need source order
func SortPairs(pairs []BlockPair) {
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Open.Start < pairs[j].Open.Start
	})
}
