package trace

import (
	"fmt"
	"strings"
)

// RefClock is the name of the reference clock that is fixed at zero.
// Constraints against it express absolute bounds on a single clock.
const RefClock = "t(0)"

// Op is the comparison operator of a clock difference constraint.
type Op int

const (
	// OpLT is the strict operator "<".
	OpLT Op = iota
	// OpLE is the non-strict operator "<=".
	OpLE
)

func (o Op) String() string {
	switch o {
	case OpLT:
		return "<"
	case OpLE:
		return "<="
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// Bound is a rational constant Num/Den with Den > 0.
// Integer bounds have Den == 1.
type Bound struct {
	Num int64
	Den int64
}

// IntBound returns the bound n/1.
func IntBound(n int64) Bound {
	return Bound{Num: n, Den: 1}
}

// RatBound returns the bound num/den.
// A non-positive denominator is normalized so that Den > 0 always holds.
func RatBound(num, den int64) Bound {
	if den < 0 {
		num, den = -num, -den
	}
	return Bound{Num: num, Den: den}
}

// IsInt reports whether the bound is a whole number.
func (b Bound) IsInt() bool {
	return b.Den == 1 || (b.Den != 0 && b.Num%b.Den == 0)
}

// Equal reports whether two bounds denote the same rational value.
func (b Bound) Equal(c Bound) bool {
	return b.Num*c.Den == c.Num*b.Den
}

func (b Bound) String() string {
	if b.Den == 1 {
		return fmt.Sprintf("%d", b.Num)
	}
	return fmt.Sprintf("%d/%d", b.Num, b.Den)
}

// Constraint is one difference bound: Left - Right Op Bound.
// Left and Right are clock names as printed by the checker, including
// the reference clock RefClock.
type Constraint struct {
	Left  string
	Right string
	Op    Op
	Bound Bound
}

func (c Constraint) String() string {
	return fmt.Sprintf("%s - %s %s %s", c.Left, c.Right, c.Op, c.Bound)
}

// Zone is the conjunction of the clock constraints attached to one
// symbolic state. An empty zone places no constraint on the clocks.
type Zone []Constraint

func (z Zone) String() string {
	if len(z) == 0 {
		return ""
	}
	parts := make([]string, len(z))
	for i, c := range z {
		parts[i] = c.String()
	}
	return strings.Join(parts, "; ")
}
