package parser

import (
	"github.com/jarredhawkins/goblock-lsp/internal/types"
)

// Language describes one block-structured language to the shared engine
type Language interface {
	// Name returns the language identifier
	Name() string

	// Extensions returns the file extensions handled by the language
	Extensions() []string

	// Keywords returns the keyword partition and scanning options
	Keywords() Keywords

	// ExcludedRegions returns the sorted, disjoint spans to ignore
	ExcludedRegions(text string) types.Regions
}

// Keywords is a language's keyword partition
type Keywords struct {
	Open   []string
	Middle []string
	Close  []string

	// CaseInsensitive makes the scan ignore case; token values keep the source case
	CaseInsensitive bool

	// WordChars is the body of a regex character class describing identifier
	// characters, used for keyword boundaries. Defaults to `\w`.
	WordChars string

	// Compounds are merged multi-word keywords, scanned in a second pass
	Compounds []Compound
}

// Compound is a multi-word keyword pattern (`end\s+if`). Matches replace the
// primary keyword tokens they cover.
type Compound struct {
	Pattern string
	Type    types.TokenType
}

// OpenValidator is optionally implemented by languages with contextual openers
type OpenValidator interface {
	ValidOpen(src *Source, tok types.Token) bool
}

// MiddleValidator is optionally implemented by languages with contextual intermediates
type MiddleValidator interface {
	ValidMiddle(src *Source, tok types.Token) bool
}

// CloseValidator is optionally implemented by languages with contextual closers
type CloseValidator interface {
	ValidClose(src *Source, tok types.Token) bool
}

// RuleProvider is optionally implemented by languages with typed pairing rules
type RuleProvider interface {
	PairRules() *PairRules
}

// BlockMatcher is optionally implemented by languages that pair tokens themselves
type BlockMatcher interface {
	MatchBlocks(tokens []types.Token) []types.BlockPair
}

// Prioritized is optionally implemented by languages sharing file extensions.
// Higher priority wins.
type Prioritized interface {
	Priority() int
}
