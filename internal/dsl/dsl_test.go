package dsl

import (
	"testing"

	"github.com/SynthesisLab/grape/internal/automaton"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intSemantic(f func(args []Value) Value) Semantic { return f }

func arithmeticDSL(t *testing.T) *DSL {
	t.Helper()
	d, err := New(map[string]Entry{
		"1": {Type: "int", Semantic: intSemantic(func([]Value) Value { return 1 })},
		"0": {Type: "int", Semantic: intSemantic(func([]Value) Value { return 0 })},
		"+": {Type: "int -> int -> int", Semantic: intSemantic(func(a []Value) Value {
			return a[0].(int) + a[1].(int)
		})},
	})
	require.NoError(t, err)
	return d
}

func TestNewNoVariants(t *testing.T) {
	d := arithmeticDSL(t)
	assert.ElementsMatch(t, []string{"1", "0", "+"}, d.Names())
	ty, ok := d.Type("+")
	require.True(t, ok)
	assert.Equal(t, "int -> int -> int", ty)
}

func TestNewWithVariantsSynthesizesNames(t *testing.T) {
	d, err := New(map[string]Entry{
		"ite": {
			Type: "bool -> 'a[bool|int] -> 'a -> 'a",
			Semantic: intSemantic(func(a []Value) Value {
				if a[0].(bool) {
					return a[1]
				}
				return a[2]
			}),
		},
	})
	require.NoError(t, err)
	assert.Len(t, d.Names(), 2)
	for _, n := range d.Names() {
		assert.Contains(t, n, variantSep)
	}
}

func TestApply(t *testing.T) {
	d := arithmeticDSL(t)
	out, err := d.Apply("+", []Value{2, 3})
	require.NoError(t, err)
	assert.Equal(t, 5, out)

	_, err = d.Apply("missing", nil)
	assert.Error(t, err)
}

func TestGetStateTypesSimple(t *testing.T) {
	d := arithmeticDSL(t)
	a := automaton.New([]automaton.Rule{
		{Letter: "var0", Dst: "s_var"},
		{Letter: "1", Dst: "s_one"},
		{Letter: "+", Args: []string{"s_var", "s_one"}, Dst: "s_sum"},
	}, []string{"s_sum"})

	stateType, err := d.GetStateTypes(a, []string{"int"})
	require.NoError(t, err)
	assert.Equal(t, "int", stateType["s_var"])
	assert.Equal(t, "int", stateType["s_one"])
	assert.Equal(t, "int", stateType["s_sum"])
}

func TestMergeTypeVariantsRoundTrip(t *testing.T) {
	d, err := New(map[string]Entry{
		"ite": {
			Type:     "bool -> 'a[bool|int] -> 'a -> 'a",
			Semantic: intSemantic(func(a []Value) Value { return a[1] }),
		},
	})
	require.NoError(t, err)

	var variantName string
	for _, n := range d.Names() {
		variantName = n
		break
	}
	a := automaton.New([]automaton.Rule{
		{Letter: variantName, Args: []string{"b", "x", "x"}, Dst: "y"},
	}, []string{"y"})

	merged := d.MergeTypeVariants(a)
	assert.True(t, merged.Alphabet()["ite"])
}
