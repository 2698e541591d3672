package loopclose

import (
	"testing"

	"github.com/SynthesisLab/grape/internal/automaton"
	"github.com/SynthesisLab/grape/internal/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func arithmeticDSL(t *testing.T) *dsl.DSL {
	t.Helper()
	d, err := dsl.New(map[string]dsl.Entry{
		"1": {Type: "int", Semantic: func([]dsl.Value) dsl.Value { return 1 }},
		"+": {Type: "int -> int -> int", Semantic: func(a []dsl.Value) dsl.Value {
			return a[0].(int) + a[1].(int)
		}},
	})
	require.NoError(t, err)
	return d
}

// boundedGrammar accepts exactly "1", "var0", and "(+ var0 1)" (no
// self-recursion), so AddLoops has real work to do.
func boundedGrammar() *automaton.DFTA {
	return automaton.New([]automaton.Rule{
		{Letter: "var0", Dst: "var0"},
		{Letter: "1", Dst: "1"},
		{Letter: "+", Args: []string{"var0", "1"}, Dst: "(+ var0 1)"},
	}, []string{"var0", "1", "(+ var0 1)"})
}

func TestAddLoopsRejectsAlreadyUnbounded(t *testing.T) {
	d := arithmeticDSL(t)
	g := automaton.New([]automaton.Rule{
		{Letter: "var0", Dst: "s"},
		{Letter: "+", Args: []string{"s", "s"}, Dst: "s"},
	}, []string{"s"})
	_, err := AddLoops(g, d, []string{"int"}, nil)
	assert.Error(t, err)
}

func TestAddLoopsProducesANonEmptyClosedGrammar(t *testing.T) {
	d := arithmeticDSL(t)
	g := boundedGrammar()
	closed, err := AddLoops(g, d, []string{"int"}, nil)
	require.NoError(t, err)
	require.NotNil(t, closed)
	assert.Greater(t, closed.Size(), 0)
	assert.NotEmpty(t, closed.Finals())
}

func TestAddLoopsPreferSmallestOptionAlsoProducesAGrammar(t *testing.T) {
	d := arithmeticDSL(t)
	g := boundedGrammar()
	closed, err := AddLoops(g, d, []string{"int"}, &Options{PreferLargest: false, TieBreak: TieBreakFewestDerivations})
	require.NoError(t, err)
	assert.Greater(t, closed.Size(), 0)
}
