package grape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SynthesisLab/grape/internal/dsl"
	"github.com/SynthesisLab/grape/internal/loopclose"
	"github.com/SynthesisLab/grape/internal/typeexpr"
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

func TestPruneReturnsBothSpecializedAndDespecializedGrammars(t *testing.T) {
	d := arithmeticDSL(t)
	e := New(d, map[string][]dsl.Value{"int": {0, 1, 2, 3}}, 4, 5, nil)

	result, err := e.Prune("int", 3, nil)
	require.NoError(t, err)
	require.NotNil(t, result.Grammar)
	require.NotNil(t, result.Despecialized)
	assert.LessOrEqual(t, result.PrunedTrees, result.EnumTrees)

	for _, r := range result.Despecialized.Rules() {
		assert.NotContains(t, r.Letter, "|@>")
	}
}

func TestCommutativityDetectsPlusSwap(t *testing.T) {
	d := arithmeticDSL(t)
	e := New(d, map[string][]dsl.Value{"int": {0, 1, 2, 3, 4}}, 5, 1, nil)

	facts, err := e.Commutativity()
	require.NoError(t, err)

	found := false
	for _, f := range facts {
		if f.Primitive == "+" {
			found = true
		}
	}
	assert.True(t, found, "expected + to be detected as commutative")
}

func TestPruneThenCloseProducesAGrammar(t *testing.T) {
	d := arithmeticDSL(t)
	e := New(d, map[string][]dsl.Value{"int": {0, 1, 2, 3}}, 4, 5, nil)

	result, err := e.Prune("int", 3, nil)
	require.NoError(t, err)

	varArgTypes := typeexpr.Arguments(result.TypeReq)
	closed, err := e.Close(result.Despecialized, varArgTypes, &loopclose.Options{PreferLargest: true})
	require.NoError(t, err)
	assert.Greater(t, closed.Size(), 0)
}

func TestSpecializeDespecializeRoundTrip(t *testing.T) {
	d := arithmeticDSL(t)
	e := New(d, map[string][]dsl.Value{"int": {0, 1, 2, 3}}, 4, 5, nil)

	result, err := e.Prune("int", 3, nil)
	require.NoError(t, err)

	varArgTypes := typeexpr.Arguments(result.TypeReq)
	respecialized, err := e.Specialize(result.Despecialized, varArgTypes)
	require.NoError(t, err)
	assert.Equal(t, result.Despecialized.TreesUntilSize(10, true), e.Despecialize(respecialized).TreesUntilSize(10, true))
}
