// Package checker defines the boundary to the external timed-automata
// model checker. The checker owns all timed-automata semantics; this
// module only hands it a model and a query and reads back either a
// witness trace or "unsatisfiable".
package checker

import (
	"context"
	"errors"
)

var (
	// UnsatisfiableError is returned by a checker when the query has
	// no witness under the current exclusions. For the enumeration
	// loop this is the normal termination signal, not a failure.
	UnsatisfiableError = errors.New("checker: Query is unsatisfiable")

	// UnavailableError is returned when the checker cannot be reached
	// or refuses to run. The caller decides the retry policy.
	UnavailableError = errors.New("checker: Checker is unavailable")
)

// Checker is one external model-checker invocation boundary.
//
// Call runs the query against the model and returns the raw
// diagnostic trace text of one witness, or UnsatisfiableError when no
// witness exists. The model bytes carry the serialized declarations
// with any injected monitor fragments; the query carries the
// reachability formula with the exclusion fragment already appended.
// Call must honor ctx: a cancelled or expired context aborts the
// invocation and returns the context's error.
type Checker interface {
	Call(ctx context.Context, model []byte, query string) (string, error)
}

// Func adapts a plain function to the Checker interface.
type Func func(ctx context.Context, model []byte, query string) (string, error)

func (f Func) Call(ctx context.Context, model []byte, query string) (string, error) {
	return f(ctx, model, query)
}
