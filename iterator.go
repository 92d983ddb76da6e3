package uppat

import (
	"context"

	"uppat/pattern"
	"uppat/trace"
)

// Iterator is the lazy form of Enumerate. Each Next drives the
// checker just far enough to discover one more distinct pattern, so
// a caller interested in the first few explanations pays only for
// those. The sequence is finite and not restartable; it yields the
// same traces in the same order as Enumerate on the same input.
type Iterator struct {
	ctx context.Context
	s   *session

	cur  *trace.Trace
	err  error
	done bool
}

// EnumerateIter starts a lazy enumeration. The context governs every
// checker call made through the iterator.
func (e *Enumerator) EnumerateIter(ctx context.Context) (*Iterator, error) {
	s, err := e.newSession(ctx)
	if err != nil {
		return nil, err
	}
	return &Iterator{ctx: ctx, s: s}, nil
}

// Next advances to the next distinct trace. It returns false when the
// enumeration is exhausted or failed; Err tells the two apart. After
// the first false, Next keeps returning false.
func (it *Iterator) Next() bool {
	if it.done {
		return false
	}
	tr, err := it.s.next(it.ctx)
	if err != nil || tr == nil {
		it.err = err
		it.done = true
		it.cur = nil
		return false
	}
	it.cur = tr
	return true
}

// Trace returns the trace discovered by the last successful Next.
func (it *Iterator) Trace() *trace.Trace {
	return it.cur
}

// Pattern returns the pattern of the current trace.
func (it *Iterator) Pattern() pattern.Pattern {
	return pattern.Extract(it.cur)
}

// Err returns the error that stopped the iteration. It is nil while
// the iteration runs and after a clean exhaustion.
func (it *Iterator) Err() error {
	return it.err
}
