package checkpoint

import (
	"path/filepath"
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

func TestFromGrammarRoundTripsWithoutIO(t *testing.T) {
	g := sampleGrammar()
	snap := FromGrammar("int -> int", g)
	rebuilt := snap.Grammar()

	assert.Equal(t, g.String(), rebuilt.String())
	assert.Equal(t, "int -> int", snap.TypeReq)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	g := sampleGrammar()
	snap := FromGrammar("int -> int", g)
	path := filepath.Join(t.TempDir(), "checkpoint.rezi")

	require.NoError(t, Save(path, snap))
	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, snap.TypeReq, loaded.TypeReq)
	assert.ElementsMatch(t, snap.Rules, loaded.Rules)
	assert.ElementsMatch(t, snap.Finals, loaded.Finals)
}
