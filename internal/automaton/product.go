package automaton

import (
	"strconv"
	"strings"
)

const productSep = "\x1d"

// ProductState renders a pair of component states as a single product-state
// label, used by Intersect and Union.
func ProductState(a, b string) string {
	return a + productSep + b
}

// SplitProductState is the inverse of ProductState.
func SplitProductState(s string) (string, string) {
	i := strings.Index(s, productSep)
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i+1:]
}

func (d *DFTA) productRules(other *DFTA) []Rule {
	byLetterArity := map[string][]Rule{}
	for _, r := range other.rules {
		key := r.Letter
		byLetterArity[key] = append(byLetterArity[key], r)
	}
	var out []Rule
	for _, r1 := range d.rules {
		for _, r2 := range byLetterArity[r1.Letter] {
			if len(r1.Args) != len(r2.Args) {
				continue
			}
			args := make([]string, len(r1.Args))
			for i := range r1.Args {
				args[i] = ProductState(r1.Args[i], r2.Args[i])
			}
			out = append(out, Rule{
				Letter: r1.Letter,
				Args:   args,
				Dst:    ProductState(r1.Dst, r2.Dst),
			})
		}
	}
	return out
}

// Intersect builds the product automaton accepting the intersection of the
// languages of d and other: the state space is the cross product of both
// automata's states, finals are finals(d) x finals(other). The result is
// reduced before being returned.
func (d *DFTA) Intersect(other *DFTA) *DFTA {
	rules := d.productRules(other)
	var finals []string
	for f1 := range d.finals {
		for f2 := range other.finals {
			finals = append(finals, ProductState(f1, f2))
		}
	}
	result := New(rules, finals)
	result.Reduce()
	return result
}

// Union builds the product automaton accepting the union of the languages
// of d and other: finals are (finals(d) x states(other)) u (states(d) x
// finals(other)). The result is reduced before being returned.
func (d *DFTA) Union(other *DFTA) *DFTA {
	rules := d.productRules(other)
	dStates := d.States()
	oStates := other.States()
	var finals []string
	for f1 := range d.finals {
		for s2 := range oStates {
			finals = append(finals, ProductState(f1, s2))
		}
	}
	for s1 := range dStates {
		for f2 := range other.finals {
			finals = append(finals, ProductState(s1, f2))
		}
	}
	result := New(rules, finals)
	result.Reduce()
	return result
}

// MapStates returns a new DFTA with every state (destinations, arguments,
// and finals) rewritten through mapping.
func (d *DFTA) MapStates(mapping func(string) string) *DFTA {
	var rules []Rule
	for _, r := range d.rules {
		args := make([]string, len(r.Args))
		for i, a := range r.Args {
			args[i] = mapping(a)
		}
		rules = append(rules, Rule{Letter: r.Letter, Args: args, Dst: mapping(r.Dst)})
	}
	var finals []string
	for f := range d.finals {
		finals = append(finals, mapping(f))
	}
	return New(rules, finals)
}

// MapAlphabet returns a new DFTA with every rule's letter rewritten through
// mapping. States and finals are unchanged.
func (d *DFTA) MapAlphabet(mapping func(string) string) *DFTA {
	var rules []Rule
	for _, r := range d.rules {
		rules = append(rules, Rule{Letter: mapping(r.Letter), Args: append([]string{}, r.Args...), Dst: r.Dst})
	}
	return New(rules, d.Finals())
}

// ClassicStateRenaming returns a new DFTA whose states have been renamed
// "S0", "S1", ... in first-encounter order over the sorted rule list, for a
// stable, compact textual presentation.
func (d *DFTA) ClassicStateRenaming() *DFTA {
	mapping := map[string]string{}
	next := 0
	assign := func(s string) string {
		if n, ok := mapping[s]; ok {
			return n
		}
		n := "S" + strconv.Itoa(next)
		mapping[s] = n
		next++
		return n
	}
	for _, r := range d.Rules() {
		for _, a := range r.Args {
			assign(a)
		}
		assign(r.Dst)
	}
	return d.MapStates(assign)
}
