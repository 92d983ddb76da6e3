// Package checkertest provides in-memory Checker implementations for
// tests. None of them decide timed reachability; they replay prepared
// witness traces, which is enough to exercise the enumeration loop,
// the exclusion encodings and the failure paths without the external
// binary.
package checkertest

import (
	"context"
	"strings"

	"uppat/checker"
	"uppat/exclusion"
	"uppat/pattern"
	"uppat/trace"
)

// ModelChecker is a well-behaved checker double over a fixed behavior
// space. It is constructed from the diagnostic texts of all witness
// traces the modelled system can produce, in the checker's search
// order. Each Call parses the exclusion fragment off the query and
// returns the first candidate it does not exclude, or
// UnsatisfiableError once every candidate is excluded.
type ModelChecker struct {
	// IgnoreLabelExclusions makes the double disregard seq and trie
	// matchers while still honoring path matchers. This reproduces a
	// checker quirk where a label-level exclusion fails to suppress a
	// behavioral class, forcing the enumeration into its path
	// refinement retry.
	IgnoreLabelExclusions bool

	candidates []candidate
	calls      int
}

type candidate struct {
	text string
	pat  pattern.Pattern
	sig  string
}

// NewModelChecker parses the given witness texts into the double's
// behavior space. Search order follows argument order.
func NewModelChecker(witnesses ...string) (*ModelChecker, error) {
	mc := &ModelChecker{}
	for _, text := range witnesses {
		tr, err := trace.Parse(text)
		if err != nil {
			return nil, err
		}
		mc.candidates = append(mc.candidates, candidate{
			text: text,
			pat:  pattern.Extract(tr),
			sig:  exclusion.PathSignature(tr),
		})
	}
	return mc, nil
}

// Call implements checker.Checker.
func (mc *ModelChecker) Call(ctx context.Context, model []byte, query string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	mc.calls++

	m, err := exclusion.ParseFragment(FragmentOf(query))
	if err != nil {
		return "", err
	}
	for _, c := range mc.candidates {
		if !mc.IgnoreLabelExclusions && m.ExcludesPattern(c.pat) {
			continue
		}
		if m.ExcludesPath(c.sig) {
			continue
		}
		return c.text, nil
	}
	return "", checker.UnsatisfiableError
}

// Calls returns how often the double was invoked.
func (mc *ModelChecker) Calls() int {
	return mc.calls
}

// FragmentOf extracts the exclusion fragment from a full query: the
// conjuncts that start with "!", rejoined in order. The base formula
// conjuncts are dropped.
func FragmentOf(query string) string {
	var matchers []string
	for _, conj := range strings.Split(query, "&&") {
		if conj = strings.TrimSpace(conj); strings.HasPrefix(conj, "!") {
			matchers = append(matchers, conj)
		}
	}
	return strings.Join(matchers, " && ")
}

// Response is one canned Script reply.
type Response struct {
	Text string
	Err  error
}

// Script is a checker double that replays canned responses in order,
// ignoring model and query entirely. Once the script is exhausted it
// keeps reporting UnsatisfiableError. Use it to drive the enumeration
// through misbehavior a well-behaved double cannot produce: duplicate
// witnesses, transient failures, garbage output.
type Script struct {
	responses []Response
	next      int
}

// NewScript returns a Script replaying the given responses.
func NewScript(responses ...Response) *Script {
	return &Script{responses: responses}
}

// Call implements checker.Checker.
func (s *Script) Call(ctx context.Context, model []byte, query string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.next >= len(s.responses) {
		return "", checker.UnsatisfiableError
	}
	r := s.responses[s.next]
	s.next++
	if r.Err != nil {
		return "", r.Err
	}
	return r.Text, nil
}

// Calls returns how many responses have been consumed.
func (s *Script) Calls() int {
	return s.next
}

// Recorder wraps a Checker and records every query it receives.
// Tests assert against the recorded queries to check which exclusion
// fragment a call carried.
type Recorder struct {
	Inner   checker.Checker
	Queries []string
}

// Call implements checker.Checker.
func (r *Recorder) Call(ctx context.Context, model []byte, query string) (string, error) {
	r.Queries = append(r.Queries, query)
	return r.Inner.Call(ctx, model, query)
}
