package index

import "github.com/jarredhawkins/goblock-lsp/internal/types"

// Position is a 0-based line and code point column
type Position struct {
	Line   int
	Column int
}

func (p Position) before(o Position) bool {
	return p.Line < o.Line || (p.Line == o.Line && p.Column < o.Column)
}

func tokenStart(tok types.Token) Position {
	return Position{Line: tok.Line, Column: tok.Column}
}

func tokenEnd(tok types.Token) Position {
	line, col := tok.EndPosition()
	return Position{Line: line, Column: col}
}

// touches reports whether pos lies on tok or right after it
func touches(tok types.Token, pos Position) bool {
	return !pos.before(tokenStart(tok)) && !tokenEnd(tok).before(pos)
}

// Innermost returns the pair with the latest opener among those spanning pos
func Innermost(pairs []types.BlockPair, pos Position) (types.BlockPair, bool) {
	var best types.BlockPair
	found := false
	for _, bp := range pairs {
		if pos.before(tokenStart(bp.Open)) || tokenEnd(bp.Close).before(pos) {
			continue
		}
		if !found || bp.Open.Start > best.Open.Start {
			best, found = bp, true
		}
	}
	return best, found
}

// KeywordAt returns the pair owning the keyword under pos and that keyword
func KeywordAt(pairs []types.BlockPair, pos Position) (types.BlockPair, types.Token, bool) {
	for _, bp := range pairs {
		for _, tok := range bp.Keywords() {
			if touches(tok, pos) {
				return bp, tok, true
			}
		}
	}
	return types.BlockPair{}, types.Token{}, false
}

// Partner returns the keyword a jump from tok lands on: the closer for an
// opener, the opener for a middle or closer
func Partner(bp types.BlockPair, tok types.Token) types.Token {
	if tok.Start == bp.Open.Start {
		return bp.Close
	}
	return bp.Open
}
