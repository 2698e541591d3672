package term

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariablePrimitiveBasics(t *testing.T) {
	v0 := Variable(0)
	v1 := Variable(1)
	assert.Equal(t, 1, v0.Size())
	assert.Equal(t, "var0", v0.String())
	assert.False(t, v0.Equal(v1))
	assert.True(t, v0.Equal(Variable(0)))

	p := Primitive("+")
	assert.Equal(t, 1, p.Size())
	assert.Equal(t, "+", p.String())
	assert.True(t, p.Equal(Primitive("+")))
	assert.False(t, p.Equal(Primitive("-")))
}

func TestApplySizeAndString(t *testing.T) {
	plus := Primitive("+")
	app := Apply(plus, []*Term{Variable(0), Variable(1)})
	assert.Equal(t, 3, app.Size())
	assert.Equal(t, "(+ var0 var1)", app.String())

	nested := Apply(plus, []*Term{app, Variable(0)})
	assert.Equal(t, 5, nested.Size())
	assert.Equal(t, "(+ (+ var0 var1) var0)", nested.String())
}

func TestApplyPanicsOnBadInput(t *testing.T) {
	assert.Panics(t, func() { Apply(Variable(0), []*Term{Variable(1)}) })
	assert.Panics(t, func() { Apply(Primitive("f"), nil) })
}

func TestEqualIndependentConstruction(t *testing.T) {
	a := Apply(Primitive("+"), []*Term{Variable(0), Primitive("1")})
	b := Apply(Primitive("+"), []*Term{Variable(0), Primitive("1")})
	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Hash(), b.Hash())
	assert.NotSame(t, a, b)
}

func TestEmbeds(t *testing.T) {
	v := Variable(0)
	p := Primitive("1")
	app := Apply(Primitive("+"), []*Term{v, p})

	assert.True(t, v.Embeds(p))
	assert.True(t, v.Embeds(app))
	assert.True(t, p.Embeds(p))
	assert.False(t, p.Embeds(Primitive("2")))

	generic := Apply(Primitive("+"), []*Term{Variable(5), Variable(6)})
	assert.True(t, generic.Embeds(app))
	assert.False(t, app.Embeds(generic))

	mismatchedHead := Apply(Primitive("*"), []*Term{v, p})
	assert.False(t, app.Embeds(mismatchedHead))
}

func TestParseRoundTrip(t *testing.T) {
	cases := []string{
		"var0",
		"1",
		"(+ var0 1)",
		"(+ (+ var0 var1) (- var0))",
	}
	for _, c := range cases {
		c := c
		t.Run(c, func(t *testing.T) {
			parsed, err := Parse(c)
			require.NoError(t, err)
			assert.Equal(t, c, parsed.String())
		})
	}
}

func TestParseErrors(t *testing.T) {
	_, err := Parse("(+ var0")
	assert.Error(t, err)
	_, err = Parse("()")
	assert.Error(t, err)
}
