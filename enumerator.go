// Package uppat enumerates the behavioral patterns of a partially
// observable timed system.
//
// Given a model, a reachability query and a Checker that decides timed
// reachability, the Enumerator repeatedly asks the checker for a
// witness trace, extracts the trace's observable pattern, and excludes
// that pattern from the next query. The loop ends when the checker
// finds no further witness: at that point every distinct pattern
// consistent with the query has been discovered exactly once.
// Enumerate collects eagerly, EnumerateIter yields one trace at a
// time.
package uppat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"uppat/checker"
	"uppat/config"
	"uppat/exclusion"
	"uppat/pattern"
	"uppat/trace"
)

var (
	// StalledError is returned when the exclusion mechanism cannot
	// make progress: the checker keeps producing witnesses for already
	// excluded patterns past the retry limit, or the iteration cap is
	// hit. The enumeration result still carries every pattern found
	// before the stall.
	StalledError = errors.New("uppat: Enumeration stalled")
)

type stallError struct {
	pattern pattern.Pattern
	retries int
}

func (e *stallError) Error() string {
	return fmt.Sprintf("uppat: Enumeration stalled, pattern %v still returned after %d refinement retries", e.pattern, e.retries)
}

func (e *stallError) Is(target error) bool {
	return target == StalledError
}

type budgetError struct {
	iterations int
}

func (e *budgetError) Error() string {
	return fmt.Sprintf("uppat: Enumeration exceeded the cap of %d checker invocations", e.iterations)
}

func (e *budgetError) Is(target error) bool {
	return target == StalledError
}

// Enumerator drives a checker to pattern exhaustion for one model and
// query pair. See the EnumeratorOption values for a full overview of
// possible options; default values are used where no option is given.
//
// An Enumerator holds no enumeration state of its own. Each Enumerate
// or EnumerateIter call starts fresh, except for exclusion state
// restored from a configured store.
type Enumerator struct {
	chk   checker.Checker
	model []byte
	query string

	timeout    time.Duration
	retryLimit int
	maxIter    int
	encoding   exclusion.Encoding
	store      *exclusion.Store
	log        *slog.Logger

	key    string
	digest string
}

// NewEnumerator configures an enumeration of all patterns of model
// that can witness query.
func NewEnumerator(chk checker.Checker, model []byte, query string, opts ...EnumeratorOption) *Enumerator {
	var (
		// Per-call checker timeout. Zero leaves the caller's context
		// in charge.
		timeout time.Duration

		// Consecutive duplicate witnesses tolerated per discovery step
		retryLimit = 3

		// Total checker invocations allowed, 0 meaning unbounded
		maxIter = 0

		encoding = exclusion.EncodingTrie

		store *exclusion.Store

		logger *slog.Logger
	)

	for _, opt := range opts {
		switch t := opt.(type) {
		case config.TimeoutOption:
			timeout = t.D
		case config.RetryLimitOption:
			retryLimit = t.N
		case config.MaxIterationsOption:
			maxIter = t.N
		case config.EncodingOption:
			encoding = t.Enc
		case config.StoreOption:
			store = t.St
		case config.LoggerOption:
			logger = t.Log
		}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Enumerator{
		chk:   chk,
		model: model,
		query: query,

		timeout:    timeout,
		retryLimit: retryLimit,
		maxIter:    maxIter,
		encoding:   encoding,
		store:      store,
		log:        logger,

		key:    exclusion.Key(model, query),
		digest: exclusion.Digest(model),
	}
}

// Key returns the scratch-state key of this enumeration's model and
// query pair, usable with an exclusion.Store to inspect or delete the
// persisted artifact.
func (e *Enumerator) Key() string {
	return e.key
}

// Enumerate runs the refinement loop to exhaustion and returns one
// trace per distinct pattern, in discovery order.
//
// On an error mid-way the traces discovered before the failure are
// returned alongside it; partial progress is never discarded. With a
// store configured the exclusion state survives the failure too, so
// re-running resumes instead of starting over. Patterns restored from
// the store count as known and are not returned again.
func (e *Enumerator) Enumerate(ctx context.Context) ([]*trace.Trace, error) {
	s, err := e.newSession(ctx)
	if err != nil {
		return nil, err
	}
	var found []*trace.Trace
	for {
		tr, err := s.next(ctx)
		if err != nil {
			return found, err
		}
		if tr == nil {
			return found, nil
		}
		found = append(found, tr)
	}
}

// Patterns projects enumeration results onto their patterns,
// preserving order.
func Patterns(traces []*trace.Trace) []pattern.Pattern {
	out := make([]pattern.Pattern, len(traces))
	for i, tr := range traces {
		out[i] = pattern.Extract(tr)
	}
	return out
}

// session is the state of one enumeration run: the exclusion set and
// the loop counters. Enumerate and EnumerateIter share it, which keeps
// the two modes on the same code path and therefore on the same
// discovery order.
type session struct {
	e   *Enumerator
	set *exclusion.Set

	iters     int
	dupStreak int
}

func (e *Enumerator) newSession(ctx context.Context) (*session, error) {
	set := exclusion.NewSet()
	if e.store != nil {
		snap, err := e.store.Load(e.key)
		if err != nil {
			return nil, err
		}
		set = exclusion.RestoreSet(snap)
		if set.Len() > 0 {
			e.log.LogAttrs(ctx, slog.LevelInfo, "resuming from persisted exclusion state",
				slog.String("key", e.key),
				slog.Int("patterns", set.Len()))
		}
	}
	return &session{e: e, set: set}, nil
}

// next runs checker calls until it discovers a trace with a new
// pattern. It returns (nil, nil) once the query is unsatisfiable
// under the accumulated exclusions, which is the clean end of the
// enumeration.
func (s *session) next(ctx context.Context) (*trace.Trace, error) {
	e := s.e
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.maxIter > 0 && s.iters >= e.maxIter {
			return nil, &budgetError{iterations: e.maxIter}
		}
		s.iters++

		query := e.query
		if fragment := s.set.Encode(e.encoding); fragment != "" {
			query += " && " + fragment
		}

		text, err := s.call(ctx, query)
		if errors.Is(err, checker.UnsatisfiableError) {
			e.log.LogAttrs(ctx, slog.LevelInfo, "enumeration complete",
				slog.Int("patterns", s.set.Len()),
				slog.Int("calls", s.iters))
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("uppat: Checker call %d: %w", s.iters, err)
		}

		tr, err := trace.Parse(text)
		if err != nil {
			return nil, fmt.Errorf("uppat: Witness of call %d: %w", s.iters, err)
		}
		p := pattern.Extract(tr)

		if s.set.Contains(p) {
			// The label-level exclusion failed to suppress this
			// behavioral class. Pin down the concrete execution and
			// retry, up to the limit.
			s.dupStreak++
			e.log.LogAttrs(ctx, slog.LevelWarn, "witness repeats an excluded pattern",
				slog.String("pattern", p.String()),
				slog.Int("attempt", s.dupStreak))
			if s.dupStreak > e.retryLimit {
				return nil, &stallError{pattern: p, retries: e.retryLimit}
			}
			s.set.AddRefinement(exclusion.Refinement{
				Pattern: p,
				Path:    exclusion.PathSignature(tr),
			})
			if err := s.persist(); err != nil {
				return nil, err
			}
			continue
		}

		s.dupStreak = 0
		s.set.Add(p)
		if err := s.persist(); err != nil {
			return nil, err
		}
		e.log.LogAttrs(ctx, slog.LevelInfo, "pattern discovered",
			slog.String("pattern", p.String()),
			slog.Int("total", s.set.Len()))
		return tr, nil
	}
}

func (s *session) call(ctx context.Context, query string) (string, error) {
	if s.e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.e.timeout)
		defer cancel()
	}
	return s.e.chk.Call(ctx, s.e.model, query)
}

func (s *session) persist() error {
	if s.e.store == nil {
		return nil
	}
	snap := s.set.Snapshot(s.e.query, s.e.digest)
	if err := s.e.store.Save(s.e.key, snap); err != nil {
		return fmt.Errorf("uppat: Persisting exclusion state: %w", err)
	}
	return nil
}
