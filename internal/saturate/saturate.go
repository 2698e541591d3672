// Package saturate builds the initial type-indexed DFTA for a DSL and a
// requested type by iterative saturation, optionally constrained by
// independent, composable predicates over an opaque per-state annotation
// domain (size, depth, commutativity).
package saturate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/SynthesisLab/grape/internal/automaton"
	"github.com/SynthesisLab/grape/internal/commute"
	"github.com/SynthesisLab/grape/internal/dsl"
	"github.com/SynthesisLab/grape/internal/typeexpr"
)

// Annotation is the opaque per-state value a Constraint tracks; concrete
// constraints use int (size/depth) or string (commutativity head letter).
type Annotation = any

// Constraint is one orthogonal, composable saturation predicate. Init seeds
// the annotation for a leaf (variable or arity-0 primitive); Transition
// folds the annotations of a primitive's arguments into the new state's
// annotation, and may veto the rule entirely by returning ok=false;
// IsFinal decides whether a given annotation value permits a state to be
// accepting.
type Constraint struct {
	Init       func(letter string, isVariable bool) Annotation
	Transition func(letter string, isVariable bool, args []Annotation) (out Annotation, ok bool)
	IsFinal    func(a Annotation) bool
}

// SizeConstraint rejects any state whose annotated size would exceed
// maxSize (maxSize <= 0 means unbounded) and accepts only states whose size
// falls in [minSize, maxSize].
func SizeConstraint(minSize, maxSize int) Constraint {
	return Constraint{
		Init: func(string, bool) Annotation { return 1 },
		Transition: func(_ string, _ bool, args []Annotation) (Annotation, bool) {
			sum := 1
			for _, a := range args {
				sum += a.(int)
			}
			if maxSize > 0 && sum > maxSize {
				return nil, false
			}
			return sum, true
		},
		IsFinal: func(a Annotation) bool {
			v := a.(int)
			if maxSize > 0 {
				return v >= minSize && v <= maxSize
			}
			return v >= minSize
		},
	}
}

// DepthConstraint mirrors SizeConstraint but tracks 1 + max(args) instead of
// 1 + sum(args).
func DepthConstraint(minDepth, maxDepth int) Constraint {
	return Constraint{
		Init: func(string, bool) Annotation { return 1 },
		Transition: func(_ string, _ bool, args []Annotation) (Annotation, bool) {
			max := 0
			for _, a := range args {
				if v := a.(int); v > max {
					max = v
				}
			}
			d := max + 1
			if maxDepth > 0 && d > maxDepth {
				return nil, false
			}
			return d, true
		},
		IsFinal: func(a Annotation) bool {
			v := a.(int)
			if maxDepth > 0 {
				return v >= minDepth && v <= maxDepth
			}
			return v >= minDepth
		},
	}
}

// CommutativityConstraint rejects any application of a primitive recorded
// as commutative on positions (i, j) whose argument state labels at i and j
// violate the chosen total order args[i] <= args[j] (lexicographic on the
// state label string). requestedType's return type gates finality the same
// way the base saturation loop does: a state is eligible only if the
// original grammar would also consider it for the request's return type.
func CommutativityConstraint(facts []commute.Fact, requestedReturnType string) Constraint {
	byPrim := map[string][][2]int{}
	for _, f := range facts {
		byPrim[f.Primitive] = append(byPrim[f.Primitive], f.Swapped)
	}
	return Constraint{
		Init: func(letter string, _ bool) Annotation { return letter },
		Transition: func(letter string, isVariable bool, args []Annotation) (Annotation, bool) {
			if isVariable {
				return letter, true
			}
			pairs := byPrim[letter]
			for _, p := range pairs {
				i, j := p[0], p[1]
				ai, aj := args[i].(string), args[j].(string)
				if ai > aj {
					return nil, false
				}
			}
			return letter, true
		},
		IsFinal: func(Annotation) bool { return true },
	}
}

type stateInfo struct {
	label string
	typ   string
	anns  []Annotation
}

func stateLabel(typ string, anns []Annotation) string {
	var sb strings.Builder
	sb.WriteString(typ)
	for _, a := range anns {
		sb.WriteByte(0x1f)
		fmt.Fprintf(&sb, "%v", a)
	}
	return sb.String()
}

// BySaturation iteratively computes the saturated DFTA for dsl over
// requestedType, applying every constraint at each inductive step, to
// fixpoint. requestedType's return type may be the literal "None" to mean
// "accept any return type" (a wildcard target, used when enumerating whole
// programs rather than a single type).
func BySaturation(d *dsl.DSL, requestedType string, constraints []Constraint) *automaton.DFTA {
	expr := typeexpr.Parse(requestedType)
	wildcard := expr.Return == "None"

	result := automaton.Empty()
	states := map[string]stateInfo{}
	byType := map[string][]stateInfo{}

	isFinalState := func(typ string, anns []Annotation) bool {
		if !wildcard && typ != expr.Return {
			return false
		}
		for i, c := range constraints {
			if !c.IsFinal(anns[i]) {
				return false
			}
		}
		return true
	}

	addState := func(typ string, anns []Annotation) (stateInfo, bool) {
		label := stateLabel(typ, anns)
		if s, ok := states[label]; ok {
			return s, false
		}
		s := stateInfo{label: label, typ: typ, anns: anns}
		states[label] = s
		byType[typ] = append(byType[typ], s)
		if isFinalState(typ, anns) {
			result.SetFinal(label)
		}
		return s, true
	}

	for i, varType := range expr.Args {
		letter := "var" + strconv.Itoa(i)
		anns := make([]Annotation, len(constraints))
		for k, c := range constraints {
			anns[k] = c.Init(letter, true)
		}
		s, _ := addState(varType, anns)
		result.AddRule(automaton.Rule{Letter: letter, Dst: s.label})
	}

	added := true
	for added {
		added = false
		for _, name := range d.Names() {
			ty, _ := d.Type(name)
			argTypes := typeexpr.Arguments(ty)
			rtype := typeexpr.ReturnType(ty)

			if len(argTypes) == 0 {
				anns := make([]Annotation, len(constraints))
				for k, c := range constraints {
					anns[k] = c.Init(name, false)
				}
				s, isNew := addState(rtype, anns)
				if isNew {
					added = true
				}
				result.AddRule(automaton.Rule{Letter: name, Dst: s.label})
				continue
			}

			possibles := make([][]stateInfo, len(argTypes))
			for i, at := range argTypes {
				possibles[i] = byType[at]
			}
			for _, combo := range cartesian(possibles) {
				argLabels := make([]string, len(combo))
				for i, s := range combo {
					argLabels[i] = s.label
				}
				if _, exists := result.Read(name, argLabels); exists {
					continue
				}
				dstAnns := make([]Annotation, len(constraints))
				skip := false
				for k, c := range constraints {
					argAnns := make([]Annotation, len(combo))
					for i, s := range combo {
						argAnns[i] = s.anns[k]
					}
					out, ok := c.Transition(name, false, argAnns)
					if !ok {
						skip = true
						break
					}
					dstAnns[k] = out
				}
				if skip {
					continue
				}
				s, isNew := addState(rtype, dstAnns)
				if isNew {
					added = true
				}
				result.AddRule(automaton.Rule{Letter: name, Args: argLabels, Dst: s.label})
			}
		}
	}
	return result
}

// cartesian returns the Cartesian product of possibles, in deterministic
// order (lexicographic over each slot's natural slice order).
func cartesian(possibles [][]stateInfo) [][]stateInfo {
	if len(possibles) == 0 {
		return nil
	}
	for _, p := range possibles {
		if len(p) == 0 {
			return nil
		}
	}
	total := 1
	for _, p := range possibles {
		total *= len(p)
	}
	out := make([][]stateInfo, 0, total)
	idx := make([]int, len(possibles))
	for {
		combo := make([]stateInfo, len(possibles))
		for i, p := range possibles {
			combo[i] = p[idx[i]]
		}
		out = append(out, combo)
		i := len(possibles) - 1
		for i >= 0 {
			idx[i]++
			if idx[i] < len(possibles[i]) {
				break
			}
			idx[i] = 0
			i--
		}
		if i < 0 {
			break
		}
	}
	return out
}
