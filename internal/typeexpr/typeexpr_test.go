package typeexpr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	e := Parse("int -> int -> int")
	assert.Equal(t, []string{"int", "int"}, e.Args)
	assert.Equal(t, "int", e.Return)

	e = Parse("int")
	assert.Empty(t, e.Args)
	assert.Equal(t, "int", e.Return)
}

func TestReturnTypeArguments(t *testing.T) {
	assert.Equal(t, "bool", ReturnType("int -> int -> bool"))
	assert.Equal(t, []string{"int", "int"}, Arguments("int -> int -> bool"))
}

func TestAllVariantsNoExpansion(t *testing.T) {
	variants, err := AllVariants("int -> int -> int")
	require.NoError(t, err)
	assert.Equal(t, []string{"int -> int -> int"}, variants)
}

func TestAllVariantsSumType(t *testing.T) {
	variants, err := AllVariants("bool -> a|b -> a|b")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"bool -> a -> a",
		"bool -> a -> b",
		"bool -> b -> a",
		"bool -> b -> b",
	}, variants)
}

func TestAllVariantsPolymorphicSlot(t *testing.T) {
	variants, err := AllVariants("bool -> 'a[bool|int] -> 'a -> 'a")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"bool -> bool -> bool -> bool",
		"bool -> int -> int -> int",
	}, variants)
}

func TestAllVariantsUndefinedPolymorphicName(t *testing.T) {
	_, err := AllVariants("'a -> int")
	require.Error(t, err)
	var undef *UndefinedPolymorphicNameError
	assert.ErrorAs(t, err, &undef)
	assert.Equal(t, "a", undef.Name)
}
