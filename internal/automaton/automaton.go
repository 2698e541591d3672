// Package automaton implements the deterministic finite tree automaton
// (DFTA) algebra: rules and final states, reachability/productivity
// reduction, product construction (intersection/union), Brainerd
// minimisation, and tree counting by size.
//
// States and letters are both represented as strings throughout: a letter is
// either a DSL primitive's name or a positional variable reference of the
// form "varN" (the same convention term.Term.String() uses), and a state is
// whatever opaque label the producing stage chose (an annotation tuple's
// rendering during saturation, or a canonical program string once pruned).
package automaton

import (
	"sort"
	"strings"
)

const (
	fieldSep = "\x1f"
	itemSep  = "\x1e"
)

// Rule is a single transition: letter applied to Args (in order) produces
// Dst. len(Args) == 0 is a leaf rule (a variable or arity-0 primitive).
type Rule struct {
	Letter string
	Args   []string
	Dst    string
}

func ruleKey(letter string, args []string) string {
	var sb strings.Builder
	sb.WriteString(letter)
	sb.WriteString(fieldSep)
	sb.WriteString(strings.Join(args, itemSep))
	return sb.String()
}

// DFTA is a deterministic finite tree automaton: a set of rules plus a set
// of accepting (final) states. The determinism invariant is that each
// (letter, args) pair appears as the key of at most one rule; New enforces
// this given a map, and all mutating methods preserve it.
type DFTA struct {
	rules   map[string]Rule // ruleKey -> Rule
	finals  map[string]bool
	reverse map[string][]Rule // state -> rules producing it, refreshed on demand
	revOK   bool
}

// New builds a DFTA from an explicit rule list and final-state set. Later
// rules with a duplicate (letter, args) key overwrite earlier ones, matching
// the determinism invariant (only one may survive).
func New(rules []Rule, finals []string) *DFTA {
	d := &DFTA{
		rules:  make(map[string]Rule, len(rules)),
		finals: make(map[string]bool, len(finals)),
	}
	for _, r := range rules {
		d.rules[ruleKey(r.Letter, r.Args)] = r
	}
	for _, f := range finals {
		d.finals[f] = true
	}
	return d
}

// Empty builds a DFTA with no rules and no final states.
func Empty() *DFTA {
	return New(nil, nil)
}

// AddRule inserts or overwrites a rule in place, invalidating cached
// reversed-rule data.
func (d *DFTA) AddRule(r Rule) {
	d.rules[ruleKey(r.Letter, r.Args)] = r
	d.revOK = false
}

// SetFinal marks state as accepting.
func (d *DFTA) SetFinal(state string) {
	d.finals[state] = true
}

// Copy produces a shallow copy: rules and finals are duplicated, but the
// contained strings are of course shared (strings are immutable in Go).
func (d *DFTA) Copy() *DFTA {
	rules := make(map[string]Rule, len(d.rules))
	for k, v := range d.rules {
		rules[k] = v
	}
	finals := make(map[string]bool, len(d.finals))
	for k := range d.finals {
		finals[k] = true
	}
	return &DFTA{rules: rules, finals: finals}
}

// Size is the number of rules in the automaton.
func (d *DFTA) Size() int { return len(d.rules) }

// Rules returns a snapshot slice of every rule, in a deterministic
// (lexicographically sorted by rule key) order.
func (d *DFTA) Rules() []Rule {
	keys := make([]string, 0, len(d.rules))
	for k := range d.rules {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Rule, 0, len(keys))
	for _, k := range keys {
		out = append(out, d.rules[k])
	}
	return out
}

// Read returns the destination state of (letter, args) and whether a rule
// for that key exists.
func (d *DFTA) Read(letter string, args []string) (string, bool) {
	r, ok := d.rules[ruleKey(letter, args)]
	if !ok {
		return "", false
	}
	return r.Dst, true
}

// Finals returns the sorted list of accepting states.
func (d *DFTA) Finals() []string {
	out := make([]string, 0, len(d.finals))
	for s := range d.finals {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// IsFinal reports whether state is accepting.
func (d *DFTA) IsFinal(state string) bool { return d.finals[state] }

// refreshReversedRules rebuilds the state -> producing-rules index. Called
// lazily by any method that needs it.
func (d *DFTA) refreshReversedRules() {
	rev := make(map[string][]Rule, len(d.rules))
	for _, r := range d.rules {
		rev[r.Dst] = append(rev[r.Dst], r)
	}
	for dst := range rev {
		sort.Slice(rev[dst], func(i, j int) bool {
			ki := ruleKey(rev[dst][i].Letter, rev[dst][i].Args)
			kj := ruleKey(rev[dst][j].Letter, rev[dst][j].Args)
			return ki < kj
		})
	}
	d.reverse = rev
	d.revOK = true
}

// ReversedRules returns, for state, the list of rules producing it, in a
// deterministic order. Recomputed lazily whenever rules have changed since
// the last call.
func (d *DFTA) ReversedRules(state string) []Rule {
	if !d.revOK {
		d.refreshReversedRules()
	}
	return d.reverse[state]
}

// AllStates returns every state mentioned anywhere in the rule set (as a
// destination or as an argument), regardless of reachability.
func (d *DFTA) AllStates() map[string]bool {
	out := map[string]bool{}
	for _, r := range d.rules {
		out[r.Dst] = true
		for _, a := range r.Args {
			out[a] = true
		}
	}
	return out
}

// States returns the set of bottom-up reachable states: computed by
// fixpoint starting from arity-0 rules' destinations, upward through any
// rule all of whose arguments are already reachable.
func (d *DFTA) States() map[string]bool {
	byDst := map[string][][]string{}
	for _, r := range d.rules {
		byDst[r.Dst] = append(byDst[r.Dst], r.Args)
	}
	reachable := map[string]bool{}
	added := true
	for added {
		added = false
		for dst, argLists := range byDst {
			if reachable[dst] {
				continue
			}
			for _, args := range argLists {
				allIn := true
				for _, a := range args {
					if !reachable[a] {
						allIn = false
						break
					}
				}
				if allIn {
					reachable[dst] = true
					added = true
					break
				}
			}
		}
	}
	return reachable
}

// Alphabet returns the set of letters used by any rule.
func (d *DFTA) Alphabet() map[string]bool {
	out := map[string]bool{}
	for _, r := range d.rules {
		out[r.Letter] = true
	}
	return out
}

// MaxArity returns the largest number of arguments among all rules.
func (d *DFTA) MaxArity() int {
	max := 0
	for _, r := range d.rules {
		if len(r.Args) > max {
			max = len(r.Args)
		}
	}
	return max
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// String renders a deterministic textual dump: final states, alphabet, all
// reachable states, then one "dst <- 'letter' arg..." line per rule, sorted.
func (d *DFTA) String() string {
	var sb strings.Builder
	sb.WriteString("finals:")
	sb.WriteString(strings.Join(d.Finals(), ", "))
	sb.WriteByte('\n')
	sb.WriteString("letters:")
	sb.WriteString(strings.Join(sortedKeys(d.Alphabet()), ", "))
	sb.WriteByte('\n')
	sb.WriteString("states:")
	sb.WriteString(strings.Join(sortedKeys(d.States()), ", "))
	sb.WriteByte('\n')

	lines := make([]string, 0, len(d.rules))
	for _, r := range d.rules {
		line := r.Dst + " <- '" + r.Letter + "'"
		if len(r.Args) > 0 {
			line += " " + strings.Join(r.Args, " ")
		}
		lines = append(lines, line)
	}
	sort.Strings(lines)
	sb.WriteString(strings.Join(lines, "\n"))
	return sb.String()
}
