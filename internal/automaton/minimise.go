package automaton

import (
	"sort"
	"strings"
)

// consumerRef names a rule's (letter, args) key together with the argument
// position k whose occupant is being considered for a merge.
type consumerRef struct {
	letter string
	args   []string
	pos    int
}

// CanBeMerged decides whether two states are allowed to be considered
// equivalent during minimisation, independent of the structural check.
// The default always returns true.
type CanBeMerged func(a, b string) bool

func alwaysMergeable(string, string) bool { return true }

// Minimise implements Brainerd's fixpoint tree-automaton minimisation.
// Assumes d is already reduced. can_be_merged may be nil, meaning "always
// allow"; mapping, if non-nil, renames each equivalence class's
// representative tuple of member states through mapping rather than using
// the default (sorted-join) class label.
//
// Two states a, b are equivalent iff can_be_merged admits them and, for
// every rule consuming a at some argument position k, substituting b for a
// at that position yields a rule mapping into the same current equivalence
// class (and symmetrically for b). The partition is refined until no
// further split occurs, then a quotient automaton is emitted.
func (d *DFTA) Minimise(canBeMerged CanBeMerged, mapping func(members []string) string) *DFTA {
	if canBeMerged == nil {
		canBeMerged = alwaysMergeable
	}
	if mapping == nil {
		mapping = func(members []string) string {
			cp := append([]string{}, members...)
			sort.Strings(cp)
			return strings.Join(cp, itemSep)
		}
	}

	states := sortedKeys(d.States())

	consumerOf := map[string][]consumerRef{}
	for _, s := range states {
		consumerOf[s] = nil
	}
	rules := d.Rules()
	for _, r := range rules {
		for k, a := range r.Args {
			consumerOf[a] = append(consumerOf[a], consumerRef{letter: r.Letter, args: r.Args, pos: k})
		}
	}

	stateCls := map[string]int{}
	for _, s := range states {
		if d.finals[s] {
			stateCls[s] = 1
		} else {
			stateCls[s] = 0
		}
	}
	clsStates := map[int][]string{0: {}, 1: {}}
	for _, s := range states {
		clsStates[stateCls[s]] = append(clsStates[stateCls[s]], s)
	}

	ruleDst := make(map[string]string, len(rules))
	for _, r := range rules {
		ruleDst[ruleKey(r.Letter, r.Args)] = r.Dst
	}

	substituted := func(args []string, pos int, v string) []string {
		out := append([]string{}, args...)
		out[pos] = v
		return out
	}

	areEquivalent := func(a, b string) bool {
		if !canBeMerged(a, b) {
			return false
		}
		for _, c := range consumerOf[a] {
			newArgs := substituted(c.args, c.pos, b)
			dstCls := stateCls[ruleDst[ruleKey(c.letter, c.args)]]
			newDst, ok := ruleDst[ruleKey(c.letter, newArgs)]
			if !ok || stateCls[newDst] != dstCls {
				return false
			}
		}
		for _, c := range consumerOf[b] {
			newArgs := substituted(c.args, c.pos, a)
			dstCls := stateCls[ruleDst[ruleKey(c.letter, c.args)]]
			newDst, ok := ruleDst[ruleKey(c.letter, newArgs)]
			if !ok || stateCls[newDst] != dstCls {
				return false
			}
		}
		return true
	}

	n := 1
	finished := false
	for !finished {
		finished = true
		for i := 0; i <= n; i++ {
			cls := append([]string{}, clsStates[i]...)
			for len(cls) > 0 {
				representative := cls[len(cls)-1]
				cls = cls[:len(cls)-1]
				newCls := []string{representative}
				var nextCls []string
				for _, q := range cls {
					if areEquivalent(representative, q) {
						newCls = append(newCls, q)
					} else {
						nextCls = append(nextCls, q)
					}
				}
				cls = nextCls
				if len(cls) != 0 {
					n++
					for _, q := range newCls {
						stateCls[q] = n
					}
					clsStates[n] = newCls
					finished = false
				} else {
					clsStates[i] = newCls
				}
			}
		}
	}

	// Render each equivalence class to a label via mapping, applied to the
	// sorted member list of that class.
	clsLabel := map[int]string{}
	for cls, members := range clsStates {
		if len(members) == 0 {
			continue
		}
		sorted := append([]string{}, members...)
		sort.Strings(sorted)
		clsLabel[cls] = mapping(sorted)
	}
	labelOf := func(s string) string { return clsLabel[stateCls[s]] }

	var newRules []Rule
	for _, r := range rules {
		args := make([]string, len(r.Args))
		for i, a := range r.Args {
			args[i] = labelOf(a)
		}
		newRules = append(newRules, Rule{Letter: r.Letter, Args: args, Dst: labelOf(r.Dst)})
	}
	var newFinals []string
	for f := range d.finals {
		newFinals = append(newFinals, labelOf(f))
	}
	out := New(newRules, newFinals)
	return out
}
