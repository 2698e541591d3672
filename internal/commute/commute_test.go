package commute

import (
	"testing"

	"github.com/SynthesisLab/grape/internal/dsl"
	"github.com/SynthesisLab/grape/internal/evaluator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFindsCommutativePlus(t *testing.T) {
	d, err := dsl.New(map[string]dsl.Entry{
		"+": {Type: "int -> int -> int", Semantic: func(a []dsl.Value) dsl.Value {
			return a[0].(int) + a[1].(int)
		}},
		"-": {Type: "int -> int -> int", Semantic: func(a []dsl.Value) dsl.Value {
			return a[0].(int) - a[1].(int)
		}},
	})
	require.NoError(t, err)
	ev := evaluator.New(d, map[string][]dsl.Value{"int": {0, 1, 2, 3, 4, 5}}, 6, nil, 11)

	facts, err := Detect(d, ev)
	require.NoError(t, err)

	foundPlus, foundMinus := false, false
	for _, f := range facts {
		if f.Primitive == "+" {
			foundPlus = true
		}
		if f.Primitive == "-" {
			foundMinus = true
		}
	}
	assert.True(t, foundPlus, "+ should be detected commutative")
	assert.False(t, foundMinus, "- must not be detected commutative")
}

func TestDetectSkipsMismatchedArgTypes(t *testing.T) {
	d, err := dsl.New(map[string]dsl.Entry{
		"cons": {Type: "int -> bool -> int", Semantic: func(a []dsl.Value) dsl.Value { return a[0] }},
	})
	require.NoError(t, err)
	ev := evaluator.New(d, map[string][]dsl.Value{
		"int":  {0, 1, 2},
		"bool": {true, false},
	}, 3, nil, 2)

	facts, err := Detect(d, ev)
	require.NoError(t, err)
	assert.Empty(t, facts)
}
