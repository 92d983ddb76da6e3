// Package trace parses and represents the symbolic diagnostic traces
// produced by a timed-automata model checker.
//
// A trace alternates symbolic states and the discrete transitions
// between them. Each state carries the active location per process,
// the integer variable valuation and the clock zone that was reachable
// when the checker emitted the witness. Parse reads the checker's text
// form, String writes it back out.
package trace

import (
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// State is one symbolic state of a trace.
type State struct {
	// Index is the position of the state in the trace, starting at 0.
	Index int

	// Locations holds the active location of every process, in the
	// order the checker printed them. Entries have the form
	// "Process.Location".
	Locations []string

	// Variables maps integer variable names to their values.
	// It is nil when the checker printed no variables for the state.
	Variables map[string]int64

	// Zone is the clock zone the state was reached in.
	Zone Zone
}

// Move is one process changing location during a transition.
type Move struct {
	Template string
	From     string
	To       string
}

func (m Move) String() string {
	return fmt.Sprintf("%s.%s -> %s.%s", m.Template, m.From, m.Template, m.To)
}

// Transition is the discrete step between two adjacent states.
type Transition struct {
	// Label is the synchronization channel of the step, or the empty
	// string for an internal step. The text form prints internal steps
	// as "None".
	Label string

	// SrcTemplate and DstTemplate name the emitting and the receiving
	// process of the synchronization. An internal step names the same
	// process on both sides.
	SrcTemplate string
	DstTemplate string

	// Moves lists the location change of every participating process.
	Moves []Move
}

// Observable reports whether the transition carries a channel label.
func (t Transition) Observable() bool {
	return t.Label != ""
}

// Trace is a full symbolic trace: n states joined by n-1 transitions.
// Transitions[i] leads from States[i] to States[i+1].
type Trace struct {
	States      []State
	Transitions []Transition
}

// Len returns the number of states in the trace.
func (tr *Trace) Len() int {
	return len(tr.States)
}

// Labels returns the labels of the observable transitions in order.
// Internal transitions are skipped.
func (tr *Trace) Labels() []string {
	out := make([]string, 0, len(tr.Transitions))
	for _, t := range tr.Transitions {
		if t.Observable() {
			out = append(out, t.Label)
		}
	}
	return out
}

// FilterByActions returns the trace's observable labels restricted to
// the given action set, preserving trace order. Duplicates in the
// trace are kept, duplicates in the action set are harmless.
func (tr *Trace) FilterByActions(actions ...string) []string {
	keep := make(map[string]bool, len(actions))
	for _, a := range actions {
		keep[a] = true
	}
	out := []string{}
	for _, t := range tr.Transitions {
		if t.Observable() && keep[t.Label] {
			out = append(out, t.Label)
		}
	}
	return out
}

// delimiter separates state blocks in the text form.
const delimiter = "----------------------------------------"

// String renders the trace in the checker's text form. The output
// parses back to an equal trace. Variables are printed in sorted
// order, so the rendering is deterministic even though the parsed
// form holds them in a map.
func (tr *Trace) String() string {
	var b strings.Builder
	for i, s := range tr.States {
		if i > 0 {
			b.WriteString(delimiter)
			b.WriteByte('\n')
		}
		writeState(&b, i, s)
		if i < len(tr.Transitions) {
			writeTransition(&b, i, tr.Transitions[i])
		}
	}
	return b.String()
}

func writeState(b *strings.Builder, i int, s State) {
	fmt.Fprintf(b, "State [%d]: %s\n", i, strings.Join(s.Locations, ", "))

	fmt.Fprintf(b, "global_variables [%d]: ", i)
	if len(s.Variables) == 0 {
		b.WriteString("None")
	} else {
		names := maps.Keys(s.Variables)
		slices.Sort(names)
		for j, name := range names {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(b, "%s=%d", name, s.Variables[name])
		}
	}
	b.WriteByte('\n')

	if len(s.Zone) == 0 {
		fmt.Fprintf(b, "Clock_constraints [%d]:\n", i)
	} else {
		fmt.Fprintf(b, "Clock_constraints [%d]: %s\n", i, s.Zone)
	}
}

func writeTransition(b *strings.Builder, i int, t Transition) {
	label := t.Label
	if label == "" {
		label = "None"
	}
	fmt.Fprintf(b, "transitions [%d]: %s: %s -> %s", i, label, t.SrcTemplate, t.DstTemplate)
	for _, m := range t.Moves {
		fmt.Fprintf(b, "; %s", m)
	}
	b.WriteByte('\n')
}
