package serialize

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SynthesisLab/grape/internal/automaton"
)

func sampleGrammar() *automaton.DFTA {
	return automaton.New([]automaton.Rule{
		{Letter: "var0", Dst: "s0"},
		{Letter: "1", Dst: "s1"},
		{Letter: "+", Args: []string{"s0", "s1"}, Dst: "s2"},
	}, []string{"s2"})
}

func TestWriteNativeRoundTrip(t *testing.T) {
	g := sampleGrammar()
	var buf bytes.Buffer
	require.NoError(t, WriteNative(&buf, g))

	rebuilt, err := ReadNative(&buf)
	require.NoError(t, err)
	assert.ElementsMatch(t, g.Finals(), rebuilt.Finals())
	assert.ElementsMatch(t, g.Rules(), rebuilt.Rules())
}

func TestWriteEBNFGroupsAlternativesByDestination(t *testing.T) {
	g := sampleGrammar()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, g, EBNF))

	out := buf.String()
	assert.Contains(t, out, `s0 = "var0" ;`)
	assert.Contains(t, out, `s2 = "+" , s0 , s1 ;`)
}

func TestWriteLarkUsesColonAndNoCommas(t *testing.T) {
	g := sampleGrammar()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, g, Lark))

	out := buf.String()
	assert.True(t, strings.Contains(out, `s2 : "+" s0 s1`))
}

func TestFormatFromExtension(t *testing.T) {
	assert.Equal(t, EBNF, FormatFromExtension(".ebnf"))
	assert.Equal(t, Lark, FormatFromExtension(".lark"))
	assert.Equal(t, Native, FormatFromExtension(".tfa"))
}
