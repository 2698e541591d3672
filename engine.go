// Package grape wires the pruning pipeline's components — saturation,
// commutativity detection, pruning, and loop closure — behind a small
// public API.
package grape

import (
	"fmt"

	"github.com/SynthesisLab/grape/internal/automaton"
	"github.com/SynthesisLab/grape/internal/commute"
	"github.com/SynthesisLab/grape/internal/dsl"
	"github.com/SynthesisLab/grape/internal/evaluator"
	"github.com/SynthesisLab/grape/internal/loopclose"
	"github.com/SynthesisLab/grape/internal/prune"
)

// Engine holds a loaded DSL and the sampling configuration shared by every
// operation run against it: the base input pools, sample count, seed, and
// exception allow-list the Evaluator needs to build observational-
// equivalence classes.
type Engine struct {
	dsl            *dsl.DSL
	baseInputs     map[string][]dsl.Value
	sampleCount    int
	seed           int64
	skipExceptions evaluator.SkipPredicate
	samplableTypes map[string]bool
}

// New creates an Engine for d, sampling from baseInputs (type name -> pool
// of concrete values). sampleCount bounds how many distinct input tuples
// the Evaluator builds per type request; seed makes every run
// deterministic. skipExceptions may be nil, meaning no primitive panic is
// tolerated during evaluation.
func New(d *dsl.DSL, baseInputs map[string][]dsl.Value, sampleCount int, seed int64, skipExceptions evaluator.SkipPredicate) *Engine {
	samplable := make(map[string]bool, len(baseInputs))
	for t := range baseInputs {
		samplable[t] = true
	}
	return &Engine{
		dsl:            d,
		baseInputs:     baseInputs,
		sampleCount:    sampleCount,
		seed:           seed,
		skipExceptions: skipExceptions,
		samplableTypes: samplable,
	}
}

// PruneResult is the outcome of a full Prune run: the specialized grammar
// (whose alphabet still uses the DSL's per-variant synthetic names, ready
// for further enumeration or counting), the same grammar despecialized back
// to base primitive names (ready for loop closure or a portable on-disk
// format), the mega type request it was built for, and the equivalence
// classes pruning collapsed along the way.
type PruneResult struct {
	Grammar       *automaton.DFTA
	Despecialized *automaton.DFTA
	TypeReq       string
	Equivalences  *prune.EquivalenceManager
	BaseTrees     int
	EnumTrees     int
	PrunedTrees   int
}

// Prune runs the full pruning driver for returnType up to maxSize: it
// detects commutative primitives, saturates a commutativity-pruned mega
// grammar, enumerates it while classifying every candidate through the
// Evaluator, and rebuilds a compact grammar from the survivors. progress
// may be nil.
func (e *Engine) Prune(returnType string, maxSize int, progress prune.Progress) (*PruneResult, error) {
	ev := evaluator.New(e.dsl, e.baseInputs, e.sampleCount, e.skipExceptions, e.seed)
	manager := prune.NewEquivalenceManager()

	result, err := prune.Run(e.dsl, ev, manager, maxSize, returnType, e.samplableTypes, progress)
	if err != nil {
		return nil, fmt.Errorf("grape: pruning %q up to size %d: %w", returnType, maxSize, err)
	}

	return &PruneResult{
		Grammar:       result.Grammar,
		Despecialized: e.dsl.MergeTypeVariants(result.Grammar),
		TypeReq:       result.TypeReq,
		Equivalences:  manager,
		BaseTrees:     result.BaseTrees,
		EnumTrees:     result.EnumTrees,
		PrunedTrees:   result.PrunedTrees,
	}, nil
}

// Commutativity reports every primitive/argument-position pair the
// Evaluator found observationally indistinguishable under swap, using a
// fresh Evaluator instance seeded identically to the one Prune would build.
func (e *Engine) Commutativity() ([]commute.Fact, error) {
	ev := evaluator.New(e.dsl, e.baseInputs, e.sampleCount, e.skipExceptions, e.seed)
	facts, err := commute.Detect(e.dsl, ev)
	if err != nil {
		return nil, fmt.Errorf("grape: detecting commutativity: %w", err)
	}
	return facts, nil
}

// Close extends a despecialized (base-primitive-named) grammar so it
// accepts unboundedly large programs, by redirecting every transition that
// would otherwise need a brand-new over-size state onto an existing
// observationally-compatible one. varArgTypes gives the type of
// each "varN" letter in the grammar's alphabet — the argument list of the
// type request the grammar was pruned for. opts may be nil to use the
// default largest-candidate, first-match policy.
func (e *Engine) Close(despecialized *automaton.DFTA, varArgTypes []string, opts *loopclose.Options) (*automaton.DFTA, error) {
	closed, err := loopclose.AddLoops(despecialized, e.dsl, varArgTypes, opts)
	if err != nil {
		return nil, fmt.Errorf("grape: closing loops: %w", err)
	}
	return closed, nil
}

// Specialize is the inverse of Despecialize: it rewrites a base-primitive
// grammar's alphabet to the DSL's per-variant synthetic names, inferring
// each state's monomorphic type from varArgTypes and the grammar's own
// structure.
func (e *Engine) Specialize(g *automaton.DFTA, varArgTypes []string) (*automaton.DFTA, error) {
	specialized, err := e.dsl.MapToVariants(g, varArgTypes)
	if err != nil {
		return nil, fmt.Errorf("grape: specializing grammar: %w", err)
	}
	return specialized, nil
}

// Despecialize rewrites g's alphabet from per-variant synthetic primitive
// names back to the DSL's base names, producing a type-erased, portable
// grammar suitable for loop closure, counting, or on-disk serialization.
func (e *Engine) Despecialize(g *automaton.DFTA) *automaton.DFTA {
	return e.dsl.MergeTypeVariants(g)
}

// DSL returns the Engine's underlying DSL registry.
func (e *Engine) DSL() *dsl.DSL { return e.dsl }
