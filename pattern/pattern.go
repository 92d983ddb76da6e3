// Package pattern projects symbolic traces onto their observable
// behavior. A pattern is the ordered sequence of channel labels a
// trace fired, with internal steps dropped. Two traces with the same
// pattern count as the same qualitative explanation, whatever their
// timing.
package pattern

import (
	"strings"

	"golang.org/x/exp/slices"

	"uppat/trace"
)

// Pattern is an ordered sequence of observable action labels.
type Pattern []string

// Extract returns the pattern of a trace: the labels of its observable
// transitions in firing order. Internal transitions contribute
// nothing. Extract is total; a nil or single-state trace yields the
// empty pattern. Repeated labels are kept, the projection never
// reorders or deduplicates.
func Extract(tr *trace.Trace) Pattern {
	if tr == nil {
		return Pattern{}
	}
	p := make(Pattern, 0, len(tr.Transitions))
	for _, t := range tr.Transitions {
		if t.Observable() {
			p = append(p, t.Label)
		}
	}
	return p
}

// Equal reports whether two patterns hold the same labels in the same
// order.
func (p Pattern) Equal(q Pattern) bool {
	return slices.Equal(p, q)
}

// Clone returns an independent copy of the pattern.
func (p Pattern) Clone() Pattern {
	return slices.Clone(p)
}

// Key returns a string that is equal for exactly the equal patterns,
// usable as a map key. Labels never contain the separator byte, they
// are checker channel identifiers.
func (p Pattern) Key() string {
	return strings.Join(p, "\x1f")
}

func (p Pattern) String() string {
	return "[" + strings.Join(p, ", ") + "]"
}
