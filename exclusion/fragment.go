package exclusion

import (
	"errors"
	"fmt"
	"strings"

	"uppat/pattern"
)

var (
	// BadFragmentError is matched by every error from ParseFragment
	// and DecodeTrie.
	BadFragmentError = errors.New("exclusion: Malformed exclusion fragment")
)

func fragmentErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", BadFragmentError, fmt.Sprintf(format, args...))
}

// Matcher is the parsed form of an exclusion fragment. It answers
// whether a pattern or a concrete path is excluded by the fragment.
// Checker stand-ins use it to honor exclusions the way the real
// checker would.
type Matcher struct {
	seqs  map[string]bool
	trie  *Trie
	paths map[string]bool
}

// ParseFragment reads a fragment produced by Set.Encode: matchers of
// the form !seq(...), !trie(...) and !path(...) joined by " && ".
// The empty fragment parses to a matcher that excludes nothing.
func ParseFragment(s string) (*Matcher, error) {
	m := &Matcher{
		seqs:  map[string]bool{},
		paths: map[string]bool{},
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return m, nil
	}
	for _, conj := range strings.Split(s, "&&") {
		conj = strings.TrimSpace(conj)
		kind, content, err := splitMatcher(conj)
		if err != nil {
			return nil, err
		}
		switch kind {
		case "seq":
			p, err := parseSeq(content)
			if err != nil {
				return nil, err
			}
			m.seqs[p.Key()] = true
		case "trie":
			if m.trie != nil {
				return nil, fragmentErr("fragment holds more than one trie matcher")
			}
			t, err := DecodeTrie(content)
			if err != nil {
				return nil, err
			}
			m.trie = t
		case "path":
			m.paths[content] = true
		default:
			return nil, fragmentErr("unknown matcher kind %q", kind)
		}
	}
	return m, nil
}

func splitMatcher(conj string) (kind, content string, err error) {
	rest, ok := strings.CutPrefix(conj, "!")
	if !ok {
		return "", "", fragmentErr("matcher %q does not start with '!'", conj)
	}
	kind, rest, ok = strings.Cut(rest, "(")
	if !ok {
		return "", "", fragmentErr("matcher %q is missing '('", conj)
	}
	content, ok = strings.CutSuffix(rest, ")")
	if !ok {
		return "", "", fragmentErr("matcher %q is missing the closing ')'", conj)
	}
	return kind, content, nil
}

func parseSeq(content string) (pattern.Pattern, error) {
	if content == "" {
		return pattern.Pattern{}, nil
	}
	labels := strings.Split(content, ".")
	for _, l := range labels {
		if l == "" {
			return nil, fragmentErr("seq matcher %q holds an empty label", content)
		}
	}
	return pattern.Pattern(labels), nil
}

// ExcludesPattern reports whether the fragment forbids traces with
// this observable label sequence.
func (m *Matcher) ExcludesPattern(p pattern.Pattern) bool {
	if m.seqs[p.Key()] {
		return true
	}
	return m.trie != nil && m.trie.Accepts(p)
}

// ExcludesPath reports whether the fragment forbids the concrete
// execution with this path signature.
func (m *Matcher) ExcludesPath(sig string) bool {
	return m.paths[sig]
}

// Empty reports whether the matcher excludes nothing.
func (m *Matcher) Empty() bool {
	return len(m.seqs) == 0 && len(m.paths) == 0 && (m.trie == nil || m.trie.Empty())
}
