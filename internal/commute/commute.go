// Package commute detects, for each DSL primitive, which pairs of argument
// positions can be swapped without changing observable behaviour (spec
// 4.H). A detected fact lets saturation reject one of the two
// argument-orderings outright instead of generating both and pruning the
// duplicate later.
package commute

import (
	"github.com/SynthesisLab/grape/internal/dsl"
	"github.com/SynthesisLab/grape/internal/evaluator"
	"github.com/SynthesisLab/grape/internal/term"
	"github.com/SynthesisLab/grape/internal/typeexpr"
)

// Fact records that swapping the arguments of Primitive at positions
// Swapped[0] and Swapped[1] is observationally a no-op: Evaluator
// classifies the swapped application as equivalent to the original.
type Fact struct {
	Primitive string
	Swapped   [2]int
}

// Detect builds one synthetic, minimal-size term per primitive (variables
// filling every argument slot, one per position, all distinct), evaluates
// it and its argument-swapped variant under ev, and records a Fact for
// every pair of positions whose swap the Evaluator judges equivalent to the
// identity, i.e. the same return type and an identical value signature.
//
// Only primitives with two or more arguments of identical pairwise type are
// candidates: swapping arguments of differing types can never be a no-op.
func Detect(d *dsl.DSL, ev *evaluator.Evaluator) ([]Fact, error) {
	var facts []Fact
	for _, name := range d.Names() {
		ty, _ := d.Type(name)
		argTypes := typeexpr.Arguments(ty)
		if len(argTypes) < 2 {
			continue
		}

		base := syntheticApplication(name, argTypes, nil)
		baseType := "(" + joinArrow(argTypes) + ") -> " + typeexpr.ReturnType(ty)

		for i := 0; i < len(argTypes); i++ {
			for j := i + 1; j < len(argTypes); j++ {
				if argTypes[i] != argTypes[j] {
					continue
				}
				swapped := syntheticApplication(name, argTypes, map[int]int{i: j, j: i})
				equivalent, err := sameSignature(ev, baseType, base, swapped)
				if err != nil {
					return nil, err
				}
				if equivalent {
					facts = append(facts, Fact{Primitive: name, Swapped: [2]int{i, j}})
				}
			}
		}
	}
	return facts, nil
}

// syntheticApplication builds "name(var0, var1, ..., varN)" as a *term.Term,
// with swap remapping argument position k to variable index swap[k] when
// present (defaulting to k).
func syntheticApplication(name string, argTypes []string, swap map[int]int) *term.Term {
	args := make([]*term.Term, len(argTypes))
	for k := range argTypes {
		idx := k
		if swap != nil {
			if v, ok := swap[k]; ok {
				idx = v
			}
		}
		args[k] = term.Variable(idx)
	}
	return term.Apply(term.Primitive(name), args)
}

func joinArrow(types []string) string {
	out := ""
	for i, t := range types {
		if i > 0 {
			out += " -> "
		}
		out += t
	}
	return out
}

// sameSignature evaluates a and b as fresh representatives of distinct
// equivalence classes (bypassing the memo) and compares their raw value
// tuples directly, rather than relying on Eval's destructive
// representative-lookup semantics.
func sameSignature(ev *evaluator.Evaluator, typeReq string, a, b *term.Term) (bool, error) {
	av, err := evaluator.RawSignature(ev, a, typeReq)
	if err != nil {
		return false, err
	}
	bv, err := evaluator.RawSignature(ev, b, typeReq)
	if err != nil {
		return false, err
	}
	if len(av) != len(bv) {
		return false, nil
	}
	for i := range av {
		if av[i] != bv[i] {
			return false, nil
		}
	}
	return true, nil
}
