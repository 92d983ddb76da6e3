// Package exclusion maintains the state that steers an enumeration
// away from already-discovered behavior.
//
// A Set accumulates the distinct patterns found so far, plus the
// path-level refinements recorded when a label-level exclusion failed
// to suppress a behavioral class. Encode serializes the Set as a query
// fragment the checker conjoins to the reachability formula, in either
// a per-sequence negative form or a prefix-sharing trie form.
// ParseFragment reads a fragment back for inspection and for checker
// stand-ins. A Store persists Set snapshots so an interrupted
// enumeration resumes instead of recomputing.
package exclusion

import (
	"fmt"
	"strings"

	"uppat/pattern"
)

// Encoding selects the fragment form produced by Set.Encode.
type Encoding int

const (
	// EncodingTrie shares common prefixes across excluded patterns.
	// Fragment growth is bounded by the number of distinct prefixes.
	EncodingTrie Encoding = iota

	// EncodingNegative lists every excluded sequence separately.
	// Simple, but the fragment grows linearly with the pattern count.
	EncodingNegative
)

// Refinement records one trace whose pattern collided with an already
// excluded one. Path is the full step signature of the colliding
// trace, which pins down the concrete execution rather than just its
// labels.
type Refinement struct {
	Pattern pattern.Pattern
	Path    string
}

// Set is the accumulator of discovered patterns and refinements.
// Patterns keep their discovery order. The zero value is not usable,
// construct with NewSet or RestoreSet.
type Set struct {
	patterns []pattern.Pattern
	index    map[string]int

	refinements []Refinement
	refIndex    map[string]bool
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{
		index:    map[string]int{},
		refIndex: map[string]bool{},
	}
}

// Add records a pattern. It reports whether the pattern was new.
func (s *Set) Add(p pattern.Pattern) bool {
	key := p.Key()
	if _, ok := s.index[key]; ok {
		return false
	}
	s.index[key] = len(s.patterns)
	s.patterns = append(s.patterns, p.Clone())
	return true
}

// Contains reports whether the pattern has been recorded.
func (s *Set) Contains(p pattern.Pattern) bool {
	_, ok := s.index[p.Key()]
	return ok
}

// Len returns the number of distinct patterns recorded.
func (s *Set) Len() int {
	return len(s.patterns)
}

// Patterns returns the recorded patterns in discovery order.
// The result is a copy, callers may keep it.
func (s *Set) Patterns() []pattern.Pattern {
	out := make([]pattern.Pattern, len(s.patterns))
	for i, p := range s.patterns {
		out[i] = p.Clone()
	}
	return out
}

// AddRefinement records a path refinement. It reports whether the path
// was new; re-adding a known path leaves the Set unchanged.
func (s *Set) AddRefinement(r Refinement) bool {
	if s.refIndex[r.Path] {
		return false
	}
	s.refIndex[r.Path] = true
	s.refinements = append(s.refinements, Refinement{
		Pattern: r.Pattern.Clone(),
		Path:    r.Path,
	})
	return true
}

// Refinements returns the recorded refinements in insertion order.
func (s *Set) Refinements() []Refinement {
	out := make([]Refinement, len(s.refinements))
	for i, r := range s.refinements {
		out[i] = Refinement{Pattern: r.Pattern.Clone(), Path: r.Path}
	}
	return out
}

// Encode serializes the Set as a query fragment: a conjunction of
// negated matchers joined by " && ". An empty Set encodes to the empty
// string, leaving the query untouched. Both encodings exclude exactly
// the same label sequences; refinements are appended as path matchers
// in either form.
func (s *Set) Encode(enc Encoding) string {
	var conjuncts []string
	switch enc {
	case EncodingNegative:
		for _, p := range s.patterns {
			conjuncts = append(conjuncts, "!seq("+strings.Join(p, ".")+")")
		}
	case EncodingTrie:
		if len(s.patterns) > 0 {
			t := NewTrie()
			for _, p := range s.patterns {
				t.Insert(p)
			}
			conjuncts = append(conjuncts, "!trie("+t.Encode()+")")
		}
	default:
		panic(fmt.Sprintf("exclusion: Unknown encoding %d", enc))
	}
	for _, r := range s.refinements {
		conjuncts = append(conjuncts, "!path("+r.Path+")")
	}
	return strings.Join(conjuncts, " && ")
}
