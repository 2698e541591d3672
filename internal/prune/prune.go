// Package prune is the pruning driver: it infers a single "mega"
// type request covering every primitive's argument shapes, saturates a
// commutativity-constrained grammar for it, enumerates that grammar's
// programs size by size, collapses observationally-equivalent programs via
// the Evaluator, and finally rebuilds a compact DFTA from whatever survived.
package prune

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/SynthesisLab/grape/internal/automaton"
	"github.com/SynthesisLab/grape/internal/commute"
	"github.com/SynthesisLab/grape/internal/dsl"
	"github.com/SynthesisLab/grape/internal/enumerator"
	"github.com/SynthesisLab/grape/internal/evaluator"
	"github.com/SynthesisLab/grape/internal/saturate"
	"github.com/SynthesisLab/grape/internal/term"
	"github.com/SynthesisLab/grape/internal/typeexpr"
)

// InferMegaTypeRequest computes a single type request whose argument list
// is large enough, per samplable argument type, to exercise every
// primitive's arity against maxSize-bounded programs, so that one saturated
// grammar can stand in for every smaller type request sharing the same
// return type. Mirrors `__infer_mega_type_req__`'s cost-per-extra-copy
// estimate: once an argument of some type is reused, each further copy
// costs (primitive arity + 1) - 1 additional nodes, bounding how many
// distinct variables of that type are worth offering.
func InferMegaTypeRequest(d *dsl.DSL, returnType string, maxSize int, samplableTypes map[string]bool) string {
	maxPerType := map[string]int{}
	for _, name := range d.OriginalNames() {
		ty, _ := d.OriginalType(name)
		args := typeexpr.Arguments(ty)
		nargs := len(args)
		count := map[string]int{}
		for _, a := range args {
			count[a]++
		}
		for arg, n := range count {
			costPerCopy := nargs + 1
			nCopies := 0.0
			if maxSize >= costPerCopy && costPerCopy > 1 {
				nCopies = 1 + float64(maxSize-costPerCopy)/float64(costPerCopy-1)
			}
			j := int(math.Ceil(nCopies * float64(n)))
			if j > maxPerType[arg] {
				maxPerType[arg] = j
			}
		}
	}

	var argTypes []string
	keys := make([]string, 0, len(maxPerType))
	for t := range maxPerType {
		keys = append(keys, t)
	}
	sort.Strings(keys)
	for _, t := range keys {
		if !samplableTypes[t] {
			continue
		}
		for i := 0; i < maxPerType[t]; i++ {
			argTypes = append(argTypes, t)
		}
	}

	req := ""
	for _, t := range argTypes {
		req += t + " -> "
	}
	req += returnType
	return req
}

// Result is the outcome of a pruning run: the reduced grammar, the mega
// type request it was built for, and tree-count stats mirroring the
// "no pruning | commutativity-pruned | fully pruned" report the original
// driver printed.
type Result struct {
	Grammar    *automaton.DFTA
	TypeReq    string
	BaseTrees  int
	EnumTrees  int
	PrunedTrees int
}

// Progress is called periodically during the enumeration pass so a caller
// can surface progress.
type Progress func(candidatesSeen, currentSize int)

// Run performs a full pruning pass: saturate the commutativity-constrained
// mega grammar, enumerate it up to maxSize, classify every candidate
// through ev, keep only representatives, and rebuild a reduced grammar from
// whatever was kept. manager records every collapsed (program,
// representative) pair for later inspection/export.
func Run(d *dsl.DSL, ev *evaluator.Evaluator, manager *EquivalenceManager, maxSize int, returnType string, samplableTypes map[string]bool, progress Progress) (*Result, error) {
	typeReq := InferMegaTypeRequest(d, returnType, maxSize, samplableTypes)

	facts, err := commute.Detect(d, ev)
	if err != nil {
		return nil, fmt.Errorf("prune: detecting commutativity: %w", err)
	}
	grammar := saturate.BySaturation(d, typeReq, []saturate.Constraint{
		saturate.CommutativityConstraint(facts, typeexpr.ReturnType(typeReq)),
	})
	baseGrammar := saturate.BySaturation(d, typeReq, nil)

	baseTrees := baseGrammar.TreesUntilSize(maxSize, true)
	enumTrees := grammar.TreesUntilSize(maxSize, true)

	enum := enumerator.New(grammar)
	sess := enum.EnumerateUntilSize(maxSize + 1)

	seen := 0
	currentSize := 1
	for {
		program, ok := sess.Next()
		if !ok {
			break
		}
		representative, found, err := ev.Eval(program, typeReq)
		if err != nil {
			return nil, fmt.Errorf("prune: evaluating %s: %w", program.String(), err)
		}
		keep := !found
		if !keep {
			manager.AddMerge(program, representative)
		}
		sess.Keep(keep)

		seen++
		if progress != nil && seen&15 == 0 {
			progress(seen, currentSize)
		}
	}
	ev.FreeMemory()

	reduced, prunedTrees := GrammarFromMemory(enum, typeReq, maxSize, finalsSet(grammar))

	return &Result{
		Grammar:     reduced,
		TypeReq:     typeReq,
		BaseTrees:   baseTrees,
		EnumTrees:   enumTrees,
		PrunedTrees: prunedTrees,
	}, nil
}

func finalsSet(a *automaton.DFTA) map[string]bool {
	out := map[string]bool{}
	for _, f := range a.Finals() {
		out[f] = true
	}
	return out
}

// GrammarFromMemory rebuilds a DFTA from an enumerator's post-pruning
// memory: every kept program at every size becomes a rule whose letter and
// argument states are the program's own (sub)terms, after merging
// variables that share an argument type down to one canonical index per
// type (mirrors `grammar_from_memory`'s var_merge). Returns the rebuilt
// grammar and its tree count at maxSize (computed with aliasing rules for
// the merged-away variables temporarily restored, to remain comparable
// against the unmerged enumeration counts, then discarded).
func GrammarFromMemory(e *enumerator.Enumerator, typeReq string, maxSize int, prevFinals map[string]bool) (*automaton.DFTA, int) {
	argTypes := typeexpr.Arguments(typeReq)
	varMerge := map[int]int{}
	type2var := map[string]int{}
	for i, t := range argTypes {
		if j, ok := type2var[t]; ok {
			varMerge[i] = j
		} else {
			type2var[t] = i
			varMerge[i] = i
		}
	}

	result := automaton.Empty()
	for size := 1; size <= maxSize; size++ {
		for _, state := range e.States() {
			for _, prog := range e.ProgramsAt(state, size) {
				fixed := fixVars(prog, varMerge)
				dst := fixed.String()
				var rule automaton.Rule
				switch fixed.Kind() {
				case term.KindApplication:
					argDsts := make([]string, len(fixed.Args()))
					for i, a := range fixed.Args() {
						argDsts[i] = a.String()
					}
					rule = automaton.Rule{Letter: fixed.Name(), Args: argDsts, Dst: dst}
				case term.KindVariable:
					rule = automaton.Rule{Letter: dst, Dst: dst}
				default:
					rule = automaton.Rule{Letter: fixed.Name(), Dst: dst}
				}
				result.AddRule(rule)
				if prevFinals[state] {
					result.SetFinal(dst)
				}
			}
		}
	}

	stats := result.Copy()
	for i, j := range varMerge {
		if i == j {
			continue
		}
		canonical := "var" + strconv.Itoa(j)
		alias := "var" + strconv.Itoa(i)
		for _, r := range result.Rules() {
			if r.Letter == canonical {
				stats.AddRule(automaton.Rule{Letter: alias, Dst: r.Dst})
			}
		}
	}
	n := stats.TreesUntilSize(maxSize, true)

	return result, n
}

// fixVars rewrites every variable reference in p according to varMerge,
// reconstructing shared subterms through term.Apply/Variable so the result
// is a valid, hash-consable Term in its own right.
func fixVars(p *term.Term, varMerge map[int]int) *term.Term {
	switch p.Kind() {
	case term.KindVariable:
		if j, ok := varMerge[p.Index()]; ok {
			return term.Variable(j)
		}
		return p
	case term.KindPrimitive:
		return p
	default:
		args := make([]*term.Term, len(p.Args()))
		for i, a := range p.Args() {
			args[i] = fixVars(a, varMerge)
		}
		return term.Apply(term.Primitive(p.Name()), args)
	}
}

// EquivalenceManager records, for every program the pruning pass collapsed,
// which representative it was merged into — grounded on
// `equivalence_class_manager.py`'s EquivalenceClassManager.
type EquivalenceManager struct {
	classes map[*term.Term][]*term.Term
}

// NewEquivalenceManager builds an empty manager.
func NewEquivalenceManager() *EquivalenceManager {
	return &EquivalenceManager{classes: map[*term.Term][]*term.Term{}}
}

// AddMerge records that program was collapsed into representative, creating
// representative's class if this is its first recorded merge.
func (m *EquivalenceManager) AddMerge(program, representative *term.Term) {
	m.classes[representative] = append(m.classes[representative], program)
}

type equivClassJSON struct {
	Representative string   `json:"representative"`
	Elements       []string `json:"elements"`
}

// ToJSON renders every recorded class as a JSON array of
// {representative, elements}, sorted by representative text then by class
// size, both descending — the same ordering `to_json` produced.
func (m *EquivalenceManager) ToJSON() (string, error) {
	rows := make([]equivClassJSON, 0, len(m.classes))
	for rep, members := range m.classes {
		elements := make([]string, len(members))
		for i, p := range members {
			elements[i] = p.String()
		}
		sort.Strings(elements)
		rows = append(rows, equivClassJSON{Representative: rep.String(), Elements: elements})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Representative != rows[j].Representative {
			return rows[i].Representative > rows[j].Representative
		}
		return len(rows[i].Elements) > len(rows[j].Elements)
	})
	b, err := json.Marshal(rows)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
