package enumerator

import (
	"testing"

	"github.com/SynthesisLab/grape/internal/automaton"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// arithmeticGrammar accepts int expressions over {var0, 1, 0, +, -}, all
// states final (single-state grammar).
func arithmeticGrammar() *automaton.DFTA {
	return automaton.New([]automaton.Rule{
		{Letter: "var0", Dst: "int"},
		{Letter: "1", Dst: "int"},
		{Letter: "0", Dst: "int"},
		{Letter: "+", Args: []string{"int", "int"}, Dst: "int"},
		{Letter: "-", Args: []string{"int"}, Dst: "int"},
	}, []string{"int"})
}

// drainKeepAll pulls every candidate up to (excluding) size and keeps it,
// returning how many candidates were surfaced.
func drainKeepAll(t *testing.T, e *Enumerator, size int) int {
	t.Helper()
	sess := e.EnumerateUntilSize(size)
	count := 0
	for {
		_, ok := sess.Next()
		if !ok {
			break
		}
		count++
		sess.Keep(true)
	}
	return count
}

func TestEnumerateSizeOneYieldsThreeLeaves(t *testing.T) {
	g := arithmeticGrammar()
	e := New(g)
	n := drainKeepAll(t, e, 2)
	assert.Equal(t, 3, n) // var0, 1, 0
	assert.Equal(t, 3, e.CountProgramsAtSize(1))
}

func TestEnumerateResumesAcrossCalls(t *testing.T) {
	g := arithmeticGrammar()
	e := New(g)
	drainKeepAll(t, e, 2)
	before := e.CountProgramsAtSize(1)
	drainKeepAll(t, e, 3)
	// size 1 count should be unchanged; size 2 now populated.
	assert.Equal(t, before, e.CountProgramsAtSize(1))
	assert.True(t, e.CountProgramsAtSize(2) > 0)
}

func TestSessionRejectingCandidateExcludesItFromMemory(t *testing.T) {
	g := arithmeticGrammar()
	e := New(g)
	sess := e.EnumerateUntilSize(2)
	var kept, seen int
	for {
		_, ok := sess.Next()
		if !ok {
			break
		}
		seen++
		keep := seen == 1 // only keep the first candidate
		if keep {
			kept++
		}
		sess.Keep(keep)
	}
	require.Equal(t, 3, seen)
	assert.Equal(t, kept, e.CountProgramsAtSize(1))
}

func TestFinalProgramsAtReturnsOnlyFinalStates(t *testing.T) {
	g := automaton.New([]automaton.Rule{
		{Letter: "1", Dst: "A"},
		{Letter: "f", Args: []string{"A"}, Dst: "B"}, // B final, A not
	}, []string{"B"})
	e := New(g)
	drainKeepAll(t, e, 3)
	final := e.FinalProgramsAt(2)
	_, hasA := final["A"]
	assert.False(t, hasA)
	assert.Len(t, final["B"], 1)
}
