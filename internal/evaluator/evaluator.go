// Package evaluator implements sample-driven, memoized evaluation of
// program terms and observational-equivalence classification: two programs
// sharing a value signature over the sampled inputs collapse to the same
// representative.
package evaluator

import (
	"fmt"
	"math/rand"

	"github.com/SynthesisLab/grape/internal/dsl"
	"github.com/SynthesisLab/grape/internal/term"
	"github.com/SynthesisLab/grape/internal/typeexpr"
)

// bottom represents a swallowed exception's result in a value signature.
type bottom struct{}

// Bottom is the sentinel value signature entry recorded when a primitive's
// semantic panics with an allow-listed exception kind.
var Bottom = bottom{}

// SkipPredicate decides whether a recovered panic value should be swallowed
// (recorded as Bottom) or re-raised.
type SkipPredicate func(recovered any) bool

// Evaluator holds per-type sample pools, a per-type-request cache of
// concrete input tuples, a per-program memoization table, a per-return-type
// equivalence-class map, and a seeded PRNG.
type Evaluator struct {
	dsl          *dsl.DSL
	baseInputs   map[string][]dsl.Value
	sampleCount  int
	skip         SkipPredicate
	prng         *rand.Rand
	fullInputs   map[string][][]dsl.Value
	memo         map[*term.Term]map[string]dsl.Value // program -> encoded input tuple -> result
	equivClasses map[string]map[string]*term.Term    // return type -> value-signature key -> representative
}

// New builds an Evaluator. baseInputs maps each samplable type name to its
// pool of sampled concrete values; sampleCount bounds how many distinct
// input tuples are built per type request (spec's K). seed makes sampling,
// shuffling, and collision retries fully deterministic.
func New(d *dsl.DSL, baseInputs map[string][]dsl.Value, sampleCount int, skip SkipPredicate, seed int64) *Evaluator {
	if skip == nil {
		skip = func(any) bool { return false }
	}
	return &Evaluator{
		dsl:          d,
		baseInputs:   baseInputs,
		sampleCount:  sampleCount,
		skip:         skip,
		prng:         rand.New(rand.NewSource(seed)),
		fullInputs:   map[string][][]dsl.Value{},
		memo:         map[*term.Term]map[string]dsl.Value{},
		equivClasses: map[string]map[string]*term.Term{},
	}
}

// CleanMemoisation discards the per-program evaluation memo, keeping
// equivalence classes intact.
func (e *Evaluator) CleanMemoisation() {
	e.memo = map[*term.Term]map[string]dsl.Value{}
}

// FreeMemory releases the large tables the pruning driver no longer needs
// once pruning is complete. Must not be called while an Enumerator still
// holds references to retained programs.
func (e *Evaluator) FreeMemory() {
	e.equivClasses = nil
	e.memo = nil
	e.fullInputs = nil
}

func encodeInput(input []dsl.Value) string {
	return fmt.Sprintf("%v", input)
}

// genFullInputs lazily builds, for typeReq, up to sampleCount distinct
// concrete input tuples: one value per argument type, drawn by shuffling
// each type's sample pool deterministically and taking a random product,
// tolerating up to 100*arity attempted collisions before truncating to
// whatever was found (spec's Capacity handling: cycle/duplicate rather than
// fail outright).
func (e *Evaluator) genFullInputs(typeReq string) {
	if _, ok := e.fullInputs[typeReq]; ok {
		return
	}
	args := typeexpr.Arguments(typeReq)
	pools := make([][]dsl.Value, len(args))
	for i, at := range args {
		pool := append([]dsl.Value{}, e.baseInputs[at]...)
		e.prng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
		pools[i] = pool
	}
	target := e.sampleCount
	seen := map[string]bool{}
	var out [][]dsl.Value
	tries := 0
	maxTries := 100 * len(pools)
	for len(out) < target && (tries <= maxTries || len(out) == 0) {
		if len(pools) == 0 {
			break
		}
		tuple := make([]dsl.Value, len(pools))
		ok := true
		for i, pool := range pools {
			if len(pool) == 0 {
				ok = false
				break
			}
			tuple[i] = pool[e.prng.Intn(len(pool))]
		}
		if !ok {
			break
		}
		key := encodeInput(tuple)
		if seen[key] {
			tries++
			continue
		}
		tries = 0
		seen[key] = true
		out = append(out, tuple)
		if tries > maxTries {
			break
		}
	}
	e.fullInputs[typeReq] = out
}

func (e *Evaluator) returnType(p *term.Term, typeReq string) string {
	switch p.Kind() {
	case term.KindVariable:
		return typeexpr.Arguments(typeReq)[p.Index()]
	default:
		ty, _ := e.dsl.Type(p.Name())
		return typeexpr.ReturnType(ty)
	}
}

// Eval classifies program under typeReq. If program has already been
// classified (it is itself a representative, recorded in the memo by an
// earlier Eval call), returns (nil, false): "this is itself a
// representative, do not reclassify". Otherwise it evaluates program over
// every cached concrete input tuple for typeReq, forms the value signature,
// and looks it up in the equivalence-class map for program's return type:
// if absent, program becomes the representative and (nil, false) is
// returned; if present, returns (earlier representative, true) and evicts
// program's memo row.
func (e *Evaluator) Eval(program *term.Term, typeReq string) (representative *term.Term, found bool, err error) {
	if _, ok := e.memo[program]; ok {
		return nil, false, nil
	}
	e.genFullInputs(typeReq)

	outs := make([]dsl.Value, 0, len(e.fullInputs[typeReq]))
	for _, input := range e.fullInputs[typeReq] {
		out, evalErr := e.evalOne(program, input)
		if evalErr != nil {
			return nil, false, evalErr
		}
		outs = append(outs, out)
	}

	rtype := e.returnType(program, typeReq)
	key := fmt.Sprintf("%v", outs)
	classes, ok := e.equivClasses[rtype]
	if !ok {
		classes = map[string]*term.Term{}
		e.equivClasses[rtype] = classes
	}
	if rep, ok := classes[key]; ok {
		delete(e.memo, program)
		return rep, true, nil
	}
	classes[key] = program
	return nil, false, nil
}

// RawSignature evaluates program under typeReq over every cached concrete
// input tuple and returns the raw value tuple, without consulting or
// mutating the equivalence-class map. Intended for callers (such as
// commutativity detection) that need to directly compare two programs'
// behaviour rather than classify either into the shared equivalence
// structure.
func RawSignature(e *Evaluator, program *term.Term, typeReq string) ([]dsl.Value, error) {
	e.genFullInputs(typeReq)
	outs := make([]dsl.Value, 0, len(e.fullInputs[typeReq]))
	for _, input := range e.fullInputs[typeReq] {
		out, err := e.evalOne(program, input)
		if err != nil {
			return nil, err
		}
		outs = append(outs, out)
	}
	return outs, nil
}

// evalOne recursively evaluates program over a single concrete input tuple,
// memoized by (program, input). A panic from a primitive's semantic whose
// recovered value satisfies the Evaluator's skip predicate is swallowed and
// recorded as Bottom; any other panic is re-raised to the caller via a
// returned error wrapping the recovered value.
func (e *Evaluator) evalOne(program *term.Term, input []dsl.Value) (out dsl.Value, err error) {
	key := encodeInput(input)
	if row, ok := e.memo[program]; ok {
		if v, ok := row[key]; ok {
			return v, nil
		}
	} else {
		e.memo[program] = map[string]dsl.Value{}
	}

	defer func() {
		if r := recover(); r != nil {
			if e.skip(r) {
				out = Bottom
				err = nil
				e.memo[program][key] = out
				return
			}
			err = fmt.Errorf("evaluator: semantic trap: %v", r)
		}
	}()

	switch program.Kind() {
	case term.KindVariable:
		out = input[program.Index()]
	case term.KindPrimitive:
		fn, _ := e.dsl.Semantic(program.Name())
		out = fn(nil)
	case term.KindApplication:
		argVals := make([]dsl.Value, len(program.Args()))
		for i, a := range program.Args() {
			v, aerr := e.evalOne(a, input)
			if aerr != nil {
				return nil, aerr
			}
			argVals[i] = v
		}
		fn, _ := e.dsl.Semantic(program.Name())
		out = fn(argVals)
	}
	e.memo[program][key] = out
	return out, nil
}
