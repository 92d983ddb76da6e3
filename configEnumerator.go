package uppat

import (
	"log/slog"
	"time"

	"uppat/config"
	"uppat/exclusion"
)

// An option used to configure the Enumerator
type EnumeratorOption interface {
	// noop method
	EnumOpt()
}

// Bound the wall-clock time of each checker invocation.
//
// Every call runs under a context derived from the enumeration context
// with this timeout. An expired call aborts the enumeration; the
// patterns found so far are kept and the persisted exclusion state
// allows a later run to resume.
//
// Default is no per-call timeout, leaving the enumeration context in
// charge.
func WithTimeout(d time.Duration) EnumeratorOption {
	return config.TimeoutOption{D: d}
}

// Configure how many consecutive duplicate witnesses the enumeration
// tolerates before giving up with StalledError.
//
// A duplicate witness means the checker returned a trace whose pattern
// was already excluded. Each duplicate is answered with a path-level
// refinement and a retry; the limit caps those retries.
//
// Default value is 3.
func WithRetryLimit(n int) EnumeratorOption {
	return config.RetryLimitOption{N: n}
}

// Cap the total number of checker invocations of one enumeration.
//
// The cap is a safety valve against a misbehaving checker that never
// reports unsatisfiable. Exceeding it fails with StalledError.
//
// Default value is 0, meaning no cap: termination relies on the finite
// pattern space of the model.
func WithMaxIterations(n int) EnumeratorOption {
	return config.MaxIterationsOption{N: n}
}

// Select the exclusion fragment encoding appended to queries.
//
// Default is exclusion.EncodingTrie, which bounds fragment growth by
// the number of distinct pattern prefixes.
func WithEncoding(enc exclusion.Encoding) EnumeratorOption {
	return config.EncodingOption{Enc: enc}
}

// Persist the exclusion state to the given store after every change.
//
// With a store configured, an enumeration that is cancelled or fails
// mid-way can be re-run with the same model and query and will resume
// where it stopped instead of rediscovering known patterns. Already
// persisted patterns are not yielded again.
//
// Default is no persistence.
func WithStore(st *exclusion.Store) EnumeratorOption {
	return config.StoreOption{St: st}
}

// Log enumeration progress through the provided logger.
//
// Default discards all log output.
func WithLogger(log *slog.Logger) EnumeratorOption {
	return config.LoggerOption{Log: log}
}
