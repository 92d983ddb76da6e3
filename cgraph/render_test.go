package cgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPipeNet(t *testing.T) {
	cg, err := Build(pipeDecls())
	require.NoError(t, err)

	want := "graph TD\n" +
		"  Input\n" +
		"  PipeNet\n" +
		"  Observer\n" +
		"  Input--input_ball-->PipeNet\n" +
		"  PipeNet--exit1-->Observer\n" +
		"  PipeNet--exit2-->Observer\n" +
		"  PipeNet--exit3-->Observer\n"
	assert.Equal(t, want, cg.Render())
}

func TestRenderIsolatedTemplate(t *testing.T) {
	cg, err := Build([]TemplateDecl{{Name: "Idle"}})
	require.NoError(t, err)

	assert.Equal(t, "graph TD\n  Idle\n", cg.Render())
}

func TestRenderBeautified(t *testing.T) {
	decls := []TemplateDecl{
		{Name: "A", Uses: []ChannelUse{
			{Channel: "ping", Direction: Send},
			{Channel: "ping", Direction: Send},
		}},
		{Name: "B", Uses: []ChannelUse{{Channel: "ping", Direction: Receive}}},
	}
	cg, err := Build(decls)
	require.NoError(t, err)

	assert.Equal(t,
		"graph TD\n  A\n  B\n  A--ping-->B\n  A--ping-->B\n",
		cg.Render())
	assert.Equal(t,
		"graph TD\n  A\n  B\n  A--ping-->B\n",
		cg.Beautify().Render())
}
