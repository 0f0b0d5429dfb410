package parser

import (
	"sort"
	"strings"

	"github.com/jarredhawkins/goblock-lsp/internal/types"
)

// OpenBlock is a frame on the pairing stack
type OpenBlock struct {
	Open          types.Token
	Intermediates []types.Token
}

// PairRules configures the stack matcher. Keys are keyword values lowered
// with whitespace runs collapsed to one space (see Key).
type PairRules struct {
	// Closers maps a typed closer to the opener keys it may close. Closers
	// missing from the map close the nearest frame of any type.
	Closers map[string][]string

	// Fallback lets a typed closer with no matching frame close the nearest
	// frame of any type instead of being dropped.
	Fallback bool

	// Strict typed closers never fall back, even when Fallback is set.
	Strict []string

	// Exclusive opener keys are skipped by untyped closers.
	Exclusive []string

	// Middles maps an intermediate to the opener keys it may attach to.
	// Intermediates missing from the map attach to any frame.
	Middles map[string][]string

	// AcceptOpen can reject an opener given the current stack.
	AcceptOpen func(tok types.Token, stack []*OpenBlock) bool

	// Merge reports whether a resolved frame folds into the frame beneath it,
	// yielding one pair opened by the outer frame.
	Merge func(inner, outer *OpenBlock) bool
}

// Key normalizes a keyword value for rule lookups
func Key(value string) string {
	return strings.ToLower(strings.Join(strings.Fields(value), " "))
}

// DefaultRules pairs every closer with the nearest open frame
var DefaultRules = &PairRules{}

// MatchBlocks pairs tokens with a single stack pass. Pairs are returned in the
// order their closers resolve; unmatched tokens are dropped.
func MatchBlocks(tokens []types.Token, rules *PairRules) []types.BlockPair {
	if rules == nil {
		rules = DefaultRules
	}
	exclusive := toSet(rules.Exclusive)

	var pairs []types.BlockPair
	var stack []*OpenBlock

	for _, tok := range tokens {
		switch tok.Type {
		case types.BlockOpen:
			if rules.AcceptOpen != nil && !rules.AcceptOpen(tok, stack) {
				continue
			}
			stack = append(stack, &OpenBlock{Open: tok})

		case types.BlockMiddle:
			if len(stack) == 0 {
				continue
			}
			top := stack[len(stack)-1]
			if allowed, ok := rules.Middles[Key(tok.Value)]; ok && !containsKey(allowed, Key(top.Open.Value)) {
				continue
			}
			top.Intermediates = append(top.Intermediates, tok)

		case types.BlockClose:
			idx := resolveFrame(stack, tok, rules, exclusive)
			if idx < 0 {
				continue
			}
			frame := stack[idx]
			if rules.Merge != nil && idx > 0 && rules.Merge(frame, stack[idx-1]) {
				outer := stack[idx-1]
				inter := make([]types.Token, 0, len(outer.Intermediates)+len(frame.Intermediates)+1)
				inter = append(inter, outer.Intermediates...)
				inter = append(inter, frame.Open)
				inter = append(inter, frame.Intermediates...)
				sort.SliceStable(inter, func(i, j int) bool { return inter[i].Start < inter[j].Start })
				stack = stack[:idx-1]
				pairs = append(pairs, types.BlockPair{
					Open:          outer.Open,
					Close:         tok,
					Intermediates: inter,
					NestLevel:     len(stack),
				})
				continue
			}
			// frames above the resolved one are abandoned so pairs never cross
			stack = stack[:idx]
			pairs = append(pairs, types.BlockPair{
				Open:          frame.Open,
				Close:         tok,
				Intermediates: frame.Intermediates,
				NestLevel:     len(stack),
			})
		}
	}

	return pairs
}

// resolveFrame returns the stack index a closer resolves to, or -1
func resolveFrame(stack []*OpenBlock, tok types.Token, rules *PairRules, exclusive map[string]bool) int {
	if allowed, typed := rules.Closers[Key(tok.Value)]; typed {
		for i := len(stack) - 1; i >= 0; i-- {
			if containsKey(allowed, Key(stack[i].Open.Value)) {
				return i
			}
		}
		if !rules.Fallback || containsKey(rules.Strict, Key(tok.Value)) {
			return -1
		}
	}
	for i := len(stack) - 1; i >= 0; i-- {
		if !exclusive[Key(stack[i].Open.Value)] {
			return i
		}
	}
	return -1
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

func toSet(keys []string) map[string]bool {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set
}
