package evaluator

import (
	"testing"

	"github.com/SynthesisLab/grape/internal/dsl"
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

func newEval(t *testing.T) *Evaluator {
	t.Helper()
	d := arithmeticDSL(t)
	return New(d, map[string][]dsl.Value{"int": {0, 1, 2, 3, 4}}, 5, nil, 42)
}

func TestEvalFirstProgramBecomesRepresentative(t *testing.T) {
	e := newEval(t)
	p := term.Variable(0)
	rep, found, err := e.Eval(p, "int -> int")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, rep)
}

func TestEvalEquivalentProgramCollapses(t *testing.T) {
	e := newEval(t)
	a := term.Apply(term.Primitive("+"), []*term.Term{term.Variable(0), term.Primitive("0")})
	b := term.Variable(0)

	_, found, err := e.Eval(b, "int -> int")
	require.NoError(t, err)
	require.False(t, found)

	rep, found, err := e.Eval(a, "int -> int")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, rep.Equal(b))
}

func TestEvalDistinctProgramsBothSurvive(t *testing.T) {
	e := newEval(t)
	a := term.Variable(0)
	b := term.Apply(term.Primitive("+"), []*term.Term{term.Variable(0), term.Primitive("1")})

	_, found, err := e.Eval(a, "int -> int")
	require.NoError(t, err)
	require.False(t, found)

	_, found, err = e.Eval(b, "int -> int")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestEvalAlreadyClassifiedSkipsReclassification(t *testing.T) {
	e := newEval(t)
	a := term.Variable(0)
	_, found, err := e.Eval(a, "int -> int")
	require.NoError(t, err)
	require.False(t, found)

	rep, found, err := e.Eval(a, "int -> int")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, rep)
}

func TestRawSignatureIgnoresEquivalenceClasses(t *testing.T) {
	e := newEval(t)
	a := term.Variable(0)
	b := term.Apply(term.Primitive("+"), []*term.Term{term.Variable(0), term.Primitive("0")})

	sigA, err := RawSignature(e, a, "int -> int")
	require.NoError(t, err)
	sigB, err := RawSignature(e, b, "int -> int")
	require.NoError(t, err)
	assert.Equal(t, sigA, sigB)
}

func TestEvalSkipPredicateSwallowsPanics(t *testing.T) {
	d, err := dsl.New(map[string]dsl.Entry{
		"div": {Type: "int -> int -> int", Semantic: func(a []dsl.Value) dsl.Value {
			x, y := a[0].(int), a[1].(int)
			if y == 0 {
				panic("div by zero")
			}
			return x / y
		}},
	})
	require.NoError(t, err)
	e := New(d, map[string][]dsl.Value{"int": {0, 1, 2}}, 3, func(any) bool { return true }, 7)
	p := term.Apply(term.Primitive("div"), []*term.Term{term.Variable(0), term.Variable(1)})
	_, _, err = e.Eval(p, "int -> int -> int")
	assert.NoError(t, err)
}

func TestEvalSkipPredicateRejectsUnlisted(t *testing.T) {
	d, err := dsl.New(map[string]dsl.Entry{
		"boom": {Type: "int -> int", Semantic: func([]dsl.Value) dsl.Value {
			panic("unexpected")
		}},
	})
	require.NoError(t, err)
	e := New(d, map[string][]dsl.Value{"int": {1}}, 1, func(any) bool { return false }, 1)
	p := term.Apply(term.Primitive("boom"), []*term.Term{term.Variable(0)})
	_, _, err = e.Eval(p, "int -> int")
	assert.Error(t, err)
}
