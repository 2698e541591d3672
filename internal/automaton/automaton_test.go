package automaton

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// arithmeticDFTA builds a tiny bounded automaton over {1, 0, +, *, -}
// accepting int -> int expressions, used across several tests.
func arithmeticDFTA() *DFTA {
	rules := []Rule{
		{Letter: "var0", Args: nil, Dst: "int"},
		{Letter: "1", Args: nil, Dst: "int"},
		{Letter: "0", Args: nil, Dst: "int"},
		{Letter: "+", Args: []string{"int", "int"}, Dst: "int"},
		{Letter: "*", Args: []string{"int", "int"}, Dst: "int"},
		{Letter: "-", Args: []string{"int"}, Dst: "int"},
	}
	return New(rules, []string{"int"})
}

func TestStatesReachability(t *testing.T) {
	d := New([]Rule{
		{Letter: "a", Args: nil, Dst: "s1"},
		{Letter: "f", Args: []string{"s1"}, Dst: "s2"},
		{Letter: "g", Args: []string{"s3"}, Dst: "s4"}, // s3 never produced
	}, []string{"s2"})

	states := d.States()
	assert.True(t, states["s1"])
	assert.True(t, states["s2"])
	assert.False(t, states["s3"])
	assert.False(t, states["s4"])
}

func TestReduceRemovesUnreachableAndUnproductive(t *testing.T) {
	d := New([]Rule{
		{Letter: "a", Args: nil, Dst: "s1"},
		{Letter: "f", Args: []string{"s1"}, Dst: "s2"}, // final, productive
		{Letter: "b", Args: nil, Dst: "s3"},            // reachable but not productive
		{Letter: "g", Args: []string{"s9"}, Dst: "s4"}, // unreachable (s9 undefined)
	}, []string{"s2"})
	d.Reduce()

	assert.Len(t, d.Rules(), 2)
	states := d.States()
	assert.True(t, states["s1"])
	assert.True(t, states["s2"])
	assert.False(t, states["s3"])
	assert.False(t, states["s4"])
}

func TestReduceIdempotent(t *testing.T) {
	d := arithmeticDFTA()
	d.Reduce()
	first := d.String()
	d.Reduce()
	assert.Equal(t, first, d.String())
}

func TestTreesAtSizeArithmetic(t *testing.T) {
	d := arithmeticDFTA()
	d.Reduce()
	// size 1: var0, 1, 0 => 3
	assert.Equal(t, 3, d.TreesAtSize(1, true))
	// size 2: only unary '-': -(var0|1|0) => 3
	assert.Equal(t, 3, d.TreesAtSize(2, true))
	// size 3: -(-(x)) for each of 3 leaves = 3, plus +/* over size-1 pairs: 2 ops * 3*3 = 18
	assert.Equal(t, 3+18, d.TreesAtSize(3, true))
}

func TestTreesUntilSizeSumsTreesBySize(t *testing.T) {
	d := arithmeticDFTA()
	d.Reduce()
	bySize := d.TreesBySize(4, true)
	sum := 0
	for _, v := range bySize {
		sum += v
	}
	assert.Equal(t, sum, d.TreesUntilSize(4, true))
}

func TestIsUnboundedFalseForArithmetic(t *testing.T) {
	d := arithmeticDFTA()
	d.Reduce()
	assert.False(t, d.IsUnbounded())
}

func TestIsUnboundedTrueForSelfRecursive(t *testing.T) {
	d := New([]Rule{
		{Letter: "var0", Args: nil, Dst: "int"},
		{Letter: "-", Args: []string{"int"}, Dst: "int"},
	}, []string{"int"})
	d.Reduce()
	assert.True(t, d.IsUnbounded())
}

func TestMaxSizeAndDepthBounded(t *testing.T) {
	d := New([]Rule{
		{Letter: "var0", Args: nil, Dst: "int"},
		{Letter: "-", Args: []string{"int"}, Dst: "int2"},
	}, []string{"int2"})
	d.Reduce()
	size, depth := d.MaxSizeAndDepth()
	assert.Equal(t, 2, size)
	assert.Equal(t, 2, depth)
}

func TestIntersectFinals(t *testing.T) {
	a := New([]Rule{
		{Letter: "1", Dst: "A"},
		{Letter: "f", Args: []string{"A"}, Dst: "B"},
	}, []string{"B"})
	b := New([]Rule{
		{Letter: "1", Dst: "X"},
		{Letter: "f", Args: []string{"X"}, Dst: "Y"},
	}, []string{"Y"})
	inter := a.Intersect(b)
	require.Len(t, inter.Finals(), 1)
	assert.Equal(t, ProductState("B", "Y"), inter.Finals()[0])
	assert.Equal(t, 1, inter.TreesUntilSize(2, true))
}

func TestUnionAcceptsEither(t *testing.T) {
	a := New([]Rule{
		{Letter: "1", Dst: "A"},
	}, []string{"A"})
	b := New([]Rule{
		{Letter: "2", Dst: "X"},
	}, []string{"X"})
	u := a.Union(b)
	assert.Equal(t, 2, u.TreesAtSize(1, true))
}

func TestMapStatesAndAlphabet(t *testing.T) {
	d := arithmeticDFTA()
	mapped := d.MapStates(func(s string) string { return "q_" + s })
	assert.True(t, mapped.IsFinal("q_int"))

	mappedAlpha := d.MapAlphabet(func(l string) string {
		if l == "+" {
			return "ADD"
		}
		return l
	})
	assert.True(t, mappedAlpha.Alphabet()["ADD"])
	assert.False(t, mappedAlpha.Alphabet()["+"])
}

func TestClassicStateRenamingStable(t *testing.T) {
	d := arithmeticDFTA()
	d.Reduce()
	r1 := d.ClassicStateRenaming()
	r2 := d.ClassicStateRenaming()
	assert.Equal(t, r1.String(), r2.String())
}

func TestMinimiseIdempotent(t *testing.T) {
	d := New([]Rule{
		{Letter: "1", Dst: "A"},
		{Letter: "2", Dst: "B"},
		{Letter: "f", Args: []string{"A"}, Dst: "C"},
		{Letter: "f", Args: []string{"B"}, Dst: "C"},
	}, []string{"C"})
	d.Reduce()

	min1 := d.Minimise(nil, nil)
	min1.Reduce()
	min2 := min1.Minimise(nil, nil)
	min2.Reduce()

	assert.Equal(t, min1.TreesUntilSize(5, true), min2.TreesUntilSize(5, true))
	assert.Equal(t, min1.TreesUntilSize(5, true), d.TreesUntilSize(5, true))
}

func TestMinimiseMergesEquivalentLeaves(t *testing.T) {
	// "A" and "B" both only ever get consumed the same way: they should
	// collapse to a single state under minimisation.
	d := New([]Rule{
		{Letter: "1", Dst: "A"},
		{Letter: "2", Dst: "B"},
		{Letter: "f", Args: []string{"A"}, Dst: "C"},
		{Letter: "f", Args: []string{"B"}, Dst: "C"},
	}, []string{"C"})
	d.Reduce()
	min := d.Minimise(nil, nil)
	min.Reduce()
	assert.Len(t, min.States(), 2) // {A,B} merged, plus C
}

func TestStringDeterministic(t *testing.T) {
	d := arithmeticDFTA()
	assert.Equal(t, d.String(), d.Copy().String())
}
