package trace

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A witness of a two-exit pipe network: a ball enters, rolls through a
// hidden hop and leaves through the first exit. Covers variables,
// negative and rational bounds, both operators and an internal step.
const pipeWitness = `State [0]: Input.Idle, PipeNet.Empty, Observer.Waiting
global_variables [0]: None
Clock_constraints [0]: t(0) - gclk <= 0; gclk - t(0) <= 0
transitions [0]: input_ball: Input -> PipeNet; Input.Idle -> Input.Fired; PipeNet.Empty -> PipeNet.C1
----------------------------------------
State [1]: Input.Fired, PipeNet.C1, Observer.Waiting
global_variables [1]: balls=1
Clock_constraints [1]: t(0) - gclk <= 0; gclk - t(0) <= 500
transitions [1]: None: PipeNet -> PipeNet; PipeNet.C1 -> PipeNet.C2
----------------------------------------
State [2]: Input.Fired, PipeNet.C2, Observer.Waiting
global_variables [2]: balls=1
Clock_constraints [2]: t(0) - gclk <= -200; gclk - t(0) <= 500
transitions [2]: exit1: PipeNet -> Observer; PipeNet.C2 -> PipeNet.Done; Observer.Waiting -> Observer.Got1
----------------------------------------
State [3]: Input.Fired, PipeNet.Done, Observer.Got1
global_variables [3]: balls=0
Clock_constraints [3]: t(0) - gclk <= -500; gclk - t(0) <= 1550; PipeNet.x - gclk < 1/2
`

func TestParsePipeWitness(t *testing.T) {
	tr, err := Parse(pipeWitness)
	require.NoError(t, err)

	require.Equal(t, 4, tr.Len())
	require.Len(t, tr.Transitions, 3)

	s0 := tr.States[0]
	assert.Equal(t, 0, s0.Index)
	assert.Equal(t, []string{"Input.Idle", "PipeNet.Empty", "Observer.Waiting"}, s0.Locations)
	assert.Nil(t, s0.Variables)
	require.Len(t, s0.Zone, 2)
	assert.Equal(t, Constraint{Left: RefClock, Right: "gclk", Op: OpLE, Bound: IntBound(0)}, s0.Zone[0])

	s1 := tr.States[1]
	assert.Equal(t, map[string]int64{"balls": 1}, s1.Variables)

	s3 := tr.States[3]
	assert.Equal(t, 3, s3.Index)
	require.Len(t, s3.Zone, 3)
	assert.Equal(t, IntBound(-500), s3.Zone[0].Bound)
	assert.Equal(t, OpLT, s3.Zone[2].Op)
	assert.Equal(t, RatBound(1, 2), s3.Zone[2].Bound)
	assert.Equal(t, "PipeNet.x", s3.Zone[2].Left)

	t0 := tr.Transitions[0]
	assert.Equal(t, "input_ball", t0.Label)
	assert.True(t, t0.Observable())
	assert.Equal(t, "Input", t0.SrcTemplate)
	assert.Equal(t, "PipeNet", t0.DstTemplate)
	assert.Equal(t, []Move{
		{Template: "Input", From: "Idle", To: "Fired"},
		{Template: "PipeNet", From: "Empty", To: "C1"},
	}, t0.Moves)

	t1 := tr.Transitions[1]
	assert.Equal(t, "", t1.Label)
	assert.False(t, t1.Observable())
	assert.Equal(t, "PipeNet", t1.SrcTemplate)

	assert.Equal(t, []string{"input_ball", "exit1"}, tr.Labels())
}

func TestParseRenderRoundTrip(t *testing.T) {
	tr, err := Parse(pipeWitness)
	require.NoError(t, err)

	out := tr.String()
	assert.Equal(t, pipeWitness, out)

	again, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, tr, again)
}

func TestParseSingleStateTrace(t *testing.T) {
	text := "State [0]: A.start\nglobal_variables [0]: None\nClock_constraints [0]: t(0) - x <= 0\n"
	tr, err := Parse(text)
	require.NoError(t, err)
	assert.Equal(t, 1, tr.Len())
	assert.Empty(t, tr.Transitions)
	assert.Empty(t, tr.Labels())
}

func TestParseTolerances(t *testing.T) {
	// Short delimiter, unicode operator, trailing semicolon, trailing
	// blank lines and an empty zone are all accepted.
	text := "\nState [0]: A.a\nglobal_variables [0]: x=-7\nClock_constraints [0]: a - b ≤ 5;\ntransitions [0]: go: A -> A; A.a -> A.b\n---\nState [1]: A.b\nglobal_variables [1]: None\nClock_constraints [1]:\n\n"
	tr, err := Parse(text)
	require.NoError(t, err)
	require.Equal(t, 2, tr.Len())
	assert.Equal(t, map[string]int64{"x": -7}, tr.States[0].Variables)
	require.Len(t, tr.States[0].Zone, 1)
	assert.Equal(t, Constraint{Left: "a", Right: "b", Op: OpLE, Bound: IntBound(5)}, tr.States[0].Zone[0])
	assert.Empty(t, tr.States[1].Zone)
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		line   int
		reason string
	}{
		{
			name: "empty input",
			text: "",
			line: 1,
		},
		{
			name: "blank input",
			text: " \n\t\n",
			line: 1,
		},
		{
			name: "garbage first line",
			text: "no witness here\n",
			line: 1, reason: "expected State [0] line",
		},
		{
			name: "index mismatch",
			text: "State [1]: A.a\nglobal_variables [1]: None\nClock_constraints [1]:\n",
			line: 1, reason: "carries index 1",
		},
		{
			name: "blank line inside block",
			text: "State [0]: A.a\n\nglobal_variables [0]: None\nClock_constraints [0]:\n",
			line: 2, reason: "blank line inside state block",
		},
		{
			name: "missing variables line",
			text: "State [0]: A.a\nClock_constraints [0]:\n",
			line: 2, reason: "expected global_variables [0] line",
		},
		{
			name: "variable without assignment",
			text: "State [0]: A.a\nglobal_variables [0]: x\nClock_constraints [0]:\n",
			line: 2, reason: "missing '='",
		},
		{
			name: "variable with bad value",
			text: "State [0]: A.a\nglobal_variables [0]: x=fast\nClock_constraints [0]:\n",
			line: 2, reason: "non-integer value",
		},
		{
			name: "no locations",
			text: "State [0]:\nglobal_variables [0]: None\nClock_constraints [0]:\n",
			line: 1, reason: "no locations",
		},
		{
			name: "transition without successor",
			text: "State [0]: A.a\nglobal_variables [0]: None\nClock_constraints [0]:\ntransitions [0]: go: A -> A; A.a -> A.b\n",
			reason: "no successor state block",
		},
		{
			name: "text ends after delimiter",
			text: "State [0]: A.a\nglobal_variables [0]: None\nClock_constraints [0]:\ntransitions [0]: go: A -> A; A.a -> A.b\n----------------------------------------\n",
			reason: "ends after a block delimiter",
		},
		{
			name: "delimiter without transitions",
			text: "State [0]: A.a\nglobal_variables [0]: None\nClock_constraints [0]:\n----------------------------------------\nState [1]: A.a\nglobal_variables [1]: None\nClock_constraints [1]:\n",
			line: 4, reason: "no transitions line before the block delimiter",
		},
		{
			name: "missing delimiter between blocks",
			text: "State [0]: A.a\nglobal_variables [0]: None\nClock_constraints [0]:\ntransitions [0]: go: A -> A; A.a -> A.b\nState [1]: A.b\nglobal_variables [1]: None\nClock_constraints [1]:\n",
			line: 5, reason: "expected a block delimiter",
		},
		{
			name: "empty transition label",
			text: "State [0]: A.a\nglobal_variables [0]: None\nClock_constraints [0]:\ntransitions [0]: : A -> A; A.a -> A.b\n",
			line: 4, reason: "empty label",
		},
		{
			name: "transition without moves",
			text: "State [0]: A.a\nglobal_variables [0]: None\nClock_constraints [0]:\ntransitions [0]: go: A -> B\n",
			line: 4, reason: "lists no location moves",
		},
		{
			name: "move switches template",
			text: "State [0]: A.a\nglobal_variables [0]: None\nClock_constraints [0]:\ntransitions [0]: go: A -> B; A.a -> B.b\n",
			line: 4, reason: "changes template",
		},
		{
			name: "move without location",
			text: "State [0]: A.a\nglobal_variables [0]: None\nClock_constraints [0]:\ntransitions [0]: go: A -> A; A.a -> A\n",
			line: 4, reason: "not of the form Template.Location",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Parse(test.text)
			require.Error(t, err)
			assert.ErrorIs(t, err, MalformedTraceError)

			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			if test.line > 0 {
				assert.Equal(t, test.line, pe.Line)
			}
			if test.reason != "" {
				assert.Contains(t, pe.Reason, test.reason)
			}
		})
	}
}

func TestParseConstraintErrors(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		reason string
	}{
		{
			name:   "missing constraints line",
			text:   "State [0]: A.a\nglobal_variables [0]: None\ntransitions [0]: go: A -> A; A.a -> A.b\n",
			reason: "expected Clock_constraints [0] line",
		},
		{
			name:   "no operator",
			text:   "State [0]: A.a\nglobal_variables [0]: None\nClock_constraints [0]: gclk >= 5\n",
			reason: "no comparison operator",
		},
		{
			name:   "not a difference",
			text:   "State [0]: A.a\nglobal_variables [0]: None\nClock_constraints [0]: gclk <= 5\n",
			reason: "not a clock difference",
		},
		{
			name:   "unreadable bound",
			text:   "State [0]: A.a\nglobal_variables [0]: None\nClock_constraints [0]: a - b <= soon\n",
			reason: "unreadable bound",
		},
		{
			name:   "zero denominator",
			text:   "State [0]: A.a\nglobal_variables [0]: None\nClock_constraints [0]: a - b <= 1/0\n",
			reason: "unreadable bound",
		},
		{
			name:   "empty token",
			text:   "State [0]: A.a\nglobal_variables [0]: None\nClock_constraints [0]: a - b <= 1;; c - d <= 2\n",
			reason: "empty constraint token",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Parse(test.text)
			require.Error(t, err)

			// Zone defects match both the constraint sentinel and the
			// general malformed-trace sentinel.
			assert.ErrorIs(t, err, ConstraintParseError)
			assert.ErrorIs(t, err, MalformedTraceError)

			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, 3, pe.Line)
			assert.Contains(t, pe.Reason, test.reason)
		})
	}
}

func TestParseErrorMessage(t *testing.T) {
	_, err := Parse("bogus\n")
	require.Error(t, err)
	assert.Equal(t, `trace: line 1: expected State [0] line, got "bogus"`, err.Error())
	assert.False(t, errors.Is(err, ConstraintParseError))
}
