package trace

import (
	"strconv"
	"strings"
)

// Parse reads one diagnostic trace from the checker's text form.
//
// The text is a sequence of state blocks separated by dash-only
// delimiter lines. Every block holds a State, a global_variables and a
// Clock_constraints line, in that order, all carrying the block's
// ordinal. A block that is followed by another block also holds a
// transitions line describing the step to it; the final block has
// none. A single-block text is a valid trace with one state.
//
// Parse is strict: out-of-order lines, index mismatches, dangling
// transitions and unreadable payloads fail with a *ParseError naming
// the offending line. Zone defects additionally match
// ConstraintParseError.
func Parse(text string) (*Trace, error) {
	p := &parser{lines: strings.Split(text, "\n")}
	return p.parse()
}

type parser struct {
	lines []string
	pos   int
}

// lineNo is the 1-based number of the line at the current position.
func (p *parser) lineNo() int {
	return p.pos + 1
}

func (p *parser) eof() bool {
	return p.pos >= len(p.lines)
}

func (p *parser) peek() string {
	return strings.TrimRight(p.lines[p.pos], " \t\r")
}

func (p *parser) advance() {
	p.pos++
}

func (p *parser) skipBlank() {
	for !p.eof() && p.peek() == "" {
		p.advance()
	}
}

// restBlank reports whether only blank lines remain.
func (p *parser) restBlank() bool {
	for i := p.pos; i < len(p.lines); i++ {
		if strings.TrimSpace(p.lines[i]) != "" {
			return false
		}
	}
	return true
}

func isDelimiter(line string) bool {
	if line == "" {
		return false
	}
	for i := 0; i < len(line); i++ {
		if line[i] != '-' {
			return false
		}
	}
	return true
}

func (p *parser) parse() (*Trace, error) {
	p.skipBlank()
	if p.eof() {
		return nil, malformedErr(1, "empty trace text")
	}

	tr := &Trace{}
	for idx := 0; ; idx++ {
		st, err := p.parseState(idx)
		if err != nil {
			return nil, err
		}
		tr.States = append(tr.States, *st)

		if p.restBlank() {
			break
		}
		if line := p.peek(); isDelimiter(line) {
			return nil, malformedErr(p.lineNo(), "state block %d has no transitions line before the block delimiter", idx)
		}
		t, err := p.parseTransition(idx)
		if err != nil {
			return nil, err
		}
		tr.Transitions = append(tr.Transitions, *t)

		if p.restBlank() {
			return nil, malformedErr(p.lineNo(), "transitions [%d] has no successor state block", idx)
		}
		if line := p.peek(); !isDelimiter(line) {
			return nil, malformedErr(p.lineNo(), "expected a block delimiter after transitions [%d]", idx)
		}
		p.advance()
		if p.restBlank() {
			return nil, malformedErr(p.lineNo(), "trace text ends after a block delimiter")
		}
	}
	return tr, nil
}

func (p *parser) parseState(idx int) (*State, error) {
	payload, no, err := p.header("State", idx)
	if err != nil {
		return nil, err
	}
	locs, err := parseLocations(payload, no)
	if err != nil {
		return nil, err
	}

	payload, no, err = p.header("global_variables", idx)
	if err != nil {
		return nil, err
	}
	vars, err := parseVariables(payload, no)
	if err != nil {
		return nil, err
	}

	payload, no, err = p.header("Clock_constraints", idx)
	if err != nil {
		// A state without a zone is not downgraded to an empty zone.
		pe := err.(*ParseError)
		pe.kind = ConstraintParseError
		return nil, pe
	}
	zone, err := parseZone(payload, no)
	if err != nil {
		return nil, err
	}

	return &State{Index: idx, Locations: locs, Variables: vars, Zone: zone}, nil
}

// header consumes the next line and returns its payload. The line must
// read "<keyword> [<idx>]: <payload>" with the expected block ordinal.
func (p *parser) header(keyword string, idx int) (string, int, error) {
	no := p.lineNo()
	if p.eof() {
		return "", no, malformedErr(no, "unexpected end of text, expected %s [%d] line", keyword, idx)
	}
	line := p.peek()
	if line == "" {
		return "", no, malformedErr(no, "blank line inside state block %d, expected %s [%d] line", idx, keyword, idx)
	}
	rest, ok := strings.CutPrefix(line, keyword+" [")
	if !ok {
		return "", no, malformedErr(no, "expected %s [%d] line, got %q", keyword, idx, line)
	}
	num, rest, ok := strings.Cut(rest, "]")
	if !ok {
		return "", no, malformedErr(no, "%s line is missing the closing bracket", keyword)
	}
	n, err := strconv.Atoi(num)
	if err != nil {
		return "", no, malformedErr(no, "%s line has a non-numeric index %q", keyword, num)
	}
	if n != idx {
		return "", no, malformedErr(no, "%s line carries index %d, expected %d", keyword, n, idx)
	}
	rest, ok = strings.CutPrefix(rest, ":")
	if !ok {
		return "", no, malformedErr(no, "%s line is missing ':' after the index", keyword)
	}
	p.advance()
	return strings.TrimSpace(rest), no, nil
}

func parseLocations(payload string, no int) ([]string, error) {
	if payload == "" {
		return nil, malformedErr(no, "State line lists no locations")
	}
	parts := strings.Split(payload, ",")
	locs := make([]string, len(parts))
	for i, part := range parts {
		loc := strings.TrimSpace(part)
		if loc == "" || strings.ContainsAny(loc, " \t") {
			return nil, malformedErr(no, "bad location %q in State line", part)
		}
		locs[i] = loc
	}
	return locs, nil
}

func parseVariables(payload string, no int) (map[string]int64, error) {
	if payload == "None" {
		return nil, nil
	}
	if payload == "" {
		return nil, malformedErr(no, "global_variables line is empty, expected None or assignments")
	}
	vars := make(map[string]int64)
	for _, part := range strings.Split(payload, ",") {
		part = strings.TrimSpace(part)
		name, val, ok := strings.Cut(part, "=")
		if !ok {
			return nil, malformedErr(no, "variable assignment %q is missing '='", part)
		}
		name = strings.TrimSpace(name)
		if name == "" || strings.ContainsAny(name, " \t") {
			return nil, malformedErr(no, "bad variable name in assignment %q", part)
		}
		v, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
		if err != nil {
			return nil, malformedErr(no, "variable %s has a non-integer value %q", name, val)
		}
		vars[name] = v
	}
	return vars, nil
}

func parseZone(payload string, no int) (Zone, error) {
	if payload == "" {
		return nil, nil
	}
	parts := strings.Split(payload, ";")
	// The checker may terminate the list with a semicolon.
	if strings.TrimSpace(parts[len(parts)-1]) == "" {
		parts = parts[:len(parts)-1]
	}
	zone := make(Zone, 0, len(parts))
	for _, part := range parts {
		tok := strings.TrimSpace(part)
		if tok == "" {
			return nil, constraintErr(no, "empty constraint token in zone")
		}
		c, err := parseConstraint(tok, no)
		if err != nil {
			return nil, err
		}
		zone = append(zone, c)
	}
	return zone, nil
}

func parseConstraint(tok string, no int) (Constraint, error) {
	var (
		op    Op
		opLen int
		at    int
	)
	switch {
	case strings.Contains(tok, "<="):
		op, opLen, at = OpLE, len("<="), strings.Index(tok, "<=")
	case strings.Contains(tok, "≤"):
		op, opLen, at = OpLE, len("≤"), strings.Index(tok, "≤")
	case strings.Contains(tok, "<"):
		op, opLen, at = OpLT, len("<"), strings.Index(tok, "<")
	default:
		return Constraint{}, constraintErr(no, "constraint %q has no comparison operator", tok)
	}

	lhs := strings.TrimSpace(tok[:at])
	left, right, ok := strings.Cut(lhs, " - ")
	if !ok {
		return Constraint{}, constraintErr(no, "constraint %q is not a clock difference", tok)
	}
	left, right = strings.TrimSpace(left), strings.TrimSpace(right)
	if left == "" || right == "" {
		return Constraint{}, constraintErr(no, "constraint %q is missing a clock name", tok)
	}

	bound, ok := parseBound(strings.TrimSpace(tok[at+opLen:]))
	if !ok {
		return Constraint{}, constraintErr(no, "constraint %q has an unreadable bound", tok)
	}
	return Constraint{Left: left, Right: right, Op: op, Bound: bound}, nil
}

func parseBound(s string) (Bound, bool) {
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err := strconv.ParseInt(num, 10, 64)
		if err != nil {
			return Bound{}, false
		}
		d, err := strconv.ParseInt(den, 10, 64)
		if err != nil || d <= 0 {
			return Bound{}, false
		}
		return RatBound(n, d), true
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return Bound{}, false
	}
	return IntBound(n), true
}

func (p *parser) parseTransition(idx int) (*Transition, error) {
	payload, no, err := p.header("transitions", idx)
	if err != nil {
		return nil, err
	}

	label, rest, ok := strings.Cut(payload, ":")
	if !ok {
		return nil, malformedErr(no, "transitions [%d] is missing ':' after the label", idx)
	}
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, malformedErr(no, "transitions [%d] has an empty label", idx)
	}
	if label == "None" {
		label = ""
	}

	segs := strings.Split(rest, ";")
	if strings.TrimSpace(segs[len(segs)-1]) == "" && len(segs) > 1 {
		segs = segs[:len(segs)-1]
	}
	src, dst, ok := cutArrow(segs[0])
	if !ok {
		return nil, malformedErr(no, "transitions [%d] has a bad template pair %q", idx, strings.TrimSpace(segs[0]))
	}

	if len(segs) < 2 {
		return nil, malformedErr(no, "transitions [%d] lists no location moves", idx)
	}
	moves := make([]Move, 0, len(segs)-1)
	for _, seg := range segs[1:] {
		m, err := parseMove(seg, idx, no)
		if err != nil {
			return nil, err
		}
		moves = append(moves, m)
	}

	return &Transition{Label: label, SrcTemplate: src, DstTemplate: dst, Moves: moves}, nil
}

func parseMove(seg string, idx, no int) (Move, error) {
	from, to, ok := cutArrow(seg)
	if !ok {
		return Move{}, malformedErr(no, "transitions [%d] has a bad move %q", idx, strings.TrimSpace(seg))
	}
	ft, fl, ok := strings.Cut(from, ".")
	if !ok || ft == "" || fl == "" {
		return Move{}, malformedErr(no, "move source %q is not of the form Template.Location", from)
	}
	tt, tl, ok := strings.Cut(to, ".")
	if !ok || tt == "" || tl == "" {
		return Move{}, malformedErr(no, "move target %q is not of the form Template.Location", to)
	}
	if ft != tt {
		return Move{}, malformedErr(no, "move %q changes template from %s to %s", strings.TrimSpace(seg), ft, tt)
	}
	return Move{Template: ft, From: fl, To: tl}, nil
}

func cutArrow(s string) (string, string, bool) {
	from, to, ok := strings.Cut(s, "->")
	if !ok {
		return "", "", false
	}
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	if from == "" || to == "" {
		return "", "", false
	}
	return from, to, true
}
