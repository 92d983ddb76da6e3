package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"uppat/trace"
)

func TestExtract(t *testing.T) {
	tr := &trace.Trace{
		States: []trace.State{{Index: 0}, {Index: 1}, {Index: 2}, {Index: 3}},
		Transitions: []trace.Transition{
			{Label: "input_ball", SrcTemplate: "Input", DstTemplate: "PipeNet"},
			{Label: "", SrcTemplate: "PipeNet", DstTemplate: "PipeNet"},
			{Label: "exit1", SrcTemplate: "PipeNet", DstTemplate: "Observer"},
		},
	}

	assert.Equal(t, Pattern{"input_ball", "exit1"}, Extract(tr))
}

func TestExtractKeepsDuplicates(t *testing.T) {
	tr := &trace.Trace{
		Transitions: []trace.Transition{
			{Label: "in"}, {Label: "in"}, {Label: "out"},
		},
	}
	assert.Equal(t, Pattern{"in", "in", "out"}, Extract(tr))
}

func TestExtractEmpty(t *testing.T) {
	assert.Equal(t, Pattern{}, Extract(nil))
	assert.Equal(t, Pattern{}, Extract(&trace.Trace{States: []trace.State{{Index: 0}}}))
}

func TestEqual(t *testing.T) {
	a := Pattern{"in", "out"}
	assert.True(t, a.Equal(Pattern{"in", "out"}))
	assert.False(t, a.Equal(Pattern{"out", "in"}))
	assert.False(t, a.Equal(Pattern{"in"}))
	assert.True(t, Pattern{}.Equal(nil))
}

func TestCloneIsIndependent(t *testing.T) {
	a := Pattern{"in", "out"}
	b := a.Clone()
	b[0] = "other"
	assert.Equal(t, Pattern{"in", "out"}, a)
}

func TestKey(t *testing.T) {
	assert.Equal(t, Pattern{"a", "b"}.Key(), Pattern{"a", "b"}.Key())
	// Concatenation must not collide with the two-label sequence.
	assert.NotEqual(t, Pattern{"ab"}.Key(), Pattern{"a", "b"}.Key())
	assert.Equal(t, "", Pattern{}.Key())
}

func TestString(t *testing.T) {
	assert.Equal(t, "[input_ball, exit1]", Pattern{"input_ball", "exit1"}.String())
	assert.Equal(t, "[]", Pattern{}.String())
}
