package prune

import (
	"testing"

	"github.com/SynthesisLab/grape/internal/dsl"
	"github.com/SynthesisLab/grape/internal/evaluator"
	"github.com/SynthesisLab/grape/internal/term"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func arithmeticDSL(t *testing.T) *dsl.DSL {
	t.Helper()
	d, err := dsl.New(map[string]dsl.Entry{
		"1": {Type: "int", Semantic: func([]dsl.Value) dsl.Value { return 1 }},
		"0": {Type: "int", Semantic: func([]dsl.Value) dsl.Value { return 0 }},
		"+": {Type: "int -> int -> int", Semantic: func(a []dsl.Value) dsl.Value {
			return a[0].(int) + a[1].(int)
		}},
	})
	require.NoError(t, err)
	return d
}

func TestInferMegaTypeRequestUsesOnlySamplableTypes(t *testing.T) {
	d := arithmeticDSL(t)
	req := InferMegaTypeRequest(d, "int", 4, map[string]bool{"int": true})
	assert.Contains(t, req, "int")
	assert.Contains(t, req, "-> int")
}

func TestInferMegaTypeRequestDropsUnsamplableTypes(t *testing.T) {
	d, err := dsl.New(map[string]dsl.Entry{
		"f": {Type: "widget -> int", Semantic: func(a []dsl.Value) dsl.Value { return 0 }},
	})
	require.NoError(t, err)
	req := InferMegaTypeRequest(d, "int", 4, map[string]bool{"int": true})
	assert.Equal(t, "int", req)
}

func TestRunCollapsesRedundantPrograms(t *testing.T) {
	d := arithmeticDSL(t)
	ev := evaluator.New(d, map[string][]dsl.Value{"int": {0, 1, 2, 3}}, 4, nil, 5)
	manager := NewEquivalenceManager()

	result, err := Run(d, ev, manager, 3, "int", map[string]bool{"int": true}, nil)
	require.NoError(t, err)
	require.NotNil(t, result.Grammar)
	assert.LessOrEqual(t, result.PrunedTrees, result.EnumTrees)
	assert.Greater(t, result.Grammar.Size(), 0)
}

func TestEquivalenceManagerToJSON(t *testing.T) {
	m := NewEquivalenceManager()
	rep := term.Variable(0)
	p, err := term.Parse("(+ var0 0)")
	require.NoError(t, err)
	m.AddMerge(p, rep)

	out, err := m.ToJSON()
	require.NoError(t, err)
	assert.Contains(t, out, "representative")
	assert.Contains(t, out, "(+ var0 0)")
}
