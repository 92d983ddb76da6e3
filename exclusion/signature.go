package exclusion

import (
	"strings"

	"uppat/trace"
)

// PathSignature renders the discrete path of a trace as a string:
// every transition's label and location moves, internal steps
// included. Two traces get the same signature exactly when they fire
// the same steps through the same locations, so the signature pins
// down a behavioral class more tightly than its pattern. Timing is
// deliberately left out, the checker varies clock valuations freely
// within one path.
//
// The form is one segment per transition joined by ";", each segment
// "label@T.from>T.to|T.from>T.to" with "~" standing in for the empty
// internal label. A single-state trace has the empty signature.
func PathSignature(tr *trace.Trace) string {
	var b strings.Builder
	for i, t := range tr.Transitions {
		if i > 0 {
			b.WriteByte(';')
		}
		if t.Label == "" {
			b.WriteByte('~')
		} else {
			b.WriteString(t.Label)
		}
		b.WriteByte('@')
		for j, m := range t.Moves {
			if j > 0 {
				b.WriteByte('|')
			}
			b.WriteString(m.Template)
			b.WriteByte('.')
			b.WriteString(m.From)
			b.WriteByte('>')
			b.WriteString(m.To)
		}
	}
	return b.String()
}
