// Package loopclose extends a bounded (finite-tree) DFTA into one accepting
// unboundedly large programs by redirecting every transition that would
// otherwise need a brand-new, over-size state onto an existing
// observationally-compatible state instead: the grammar "loops back" on
// itself rather than growing forever.
package loopclose

import (
	"sort"
	"strconv"
	"strings"

	"github.com/SynthesisLab/grape/internal/automaton"
	"github.com/SynthesisLab/grape/internal/dsl"
	"github.com/SynthesisLab/grape/internal/typeexpr"
)

// TieBreak picks among several merge candidates that are otherwise equally
// eligible (same size, same mutual-simulation result).
type TieBreak int

const (
	// TieBreakFirst accepts the first eligible candidate encountered in
	// the configured scan order (size-descending by default) — the
	// original algorithm's behaviour, since its early-break scan stops at
	// the first match.
	TieBreakFirst TieBreak = iota
	// TieBreakFewestDerivations prefers, among same-size ties, the
	// candidate reachable by the fewest rules (the "simplest" target).
	TieBreakFewestDerivations
)

// Options configures the merge-candidate search. The zero value reproduces
// the original algorithm: scan from largest to smallest, accept the first
// eligible candidate.
type Options struct {
	// PreferLargest, when true (the default / zero value), scans merge
	// candidates from largest to smallest, so a new dangling state is
	// redirected onto the biggest already-legal state that behaves the
	// same way. Set false to scan smallest-first instead, trading a
	// tighter resulting state count for redirecting onto less expressive
	// (and so less embedding-friendly) states.
	PreferLargest bool
	// TieBreak resolves ties among candidates of equal size.
	TieBreak TieBreak
}

func defaultOptions(o *Options) Options {
	if o == nil {
		return Options{PreferLargest: true}
	}
	return *o
}

type stateInfo struct {
	letter     string
	isVariable bool
	size       int
}

// AddLoops closes a over unbounded size: it assumes a is specialized (every
// state already carries a single DSL type) and DSL-mapped (no synthetic
// "name|@>variant" letters remain — call dsl.MapToVariants and
// dsl.MergeTypeVariants's inverse beforehand as needed). varArgTypes gives
// the type of each "varN" letter in a's alphabet, exactly as passed to
// dsl.GetStateTypes. Returns an error if a already accepts unboundedly
// large trees (nothing to close).
func AddLoops(a *automaton.DFTA, d *dsl.DSL, varArgTypes []string, opts *Options) (*automaton.DFTA, error) {
	if a.IsUnbounded() {
		return nil, errUnbounded{}
	}
	options := defaultOptions(opts)

	stateToType, err := d.GetStateTypes(a, varArgTypes)
	if err != nil {
		return nil, err
	}

	info := map[string]stateInfo{}
	maxSize := 0
	for s := range a.AllStates() {
		letter := stateLetter(s)
		si := stateInfo{letter: letter, isVariable: strings.HasPrefix(letter, "var"), size: strings.Count(s, " ") + 1}
		info[s] = si
		if si.size > maxSize {
			maxSize = si.size
		}
	}

	statesByType := map[string][]string{}
	for s, t := range stateToType {
		statesByType[t] = append(statesByType[t], s)
	}
	for t := range statesByType {
		sortBySizeDesc(statesByType[t], info)
	}

	result := a.Copy()

	maxVarNo := -1
	for s, si := range info {
		if si.isVariable {
			if n, ok := varNo(s); ok && n > maxVarNo {
				maxVarNo = n
			}
		}
	}
	maxVarNo++

	var virtualVars []string
	for t, states := range statesByType {
		hasVariable := false
		for _, s := range states {
			if info[s].isVariable {
				hasVariable = true
				break
			}
		}
		if hasVariable {
			continue
		}
		letter := "var" + strconv.Itoa(maxVarNo)
		result.AddRule(automaton.Rule{Letter: letter, Dst: letter})
		stateToType[letter] = t
		info[letter] = stateInfo{letter: letter, isVariable: true, size: 1}
		statesByType[t] = append(statesByType[t], letter)
		virtualVars = append(virtualVars, letter)
		maxVarNo++
	}
	for t := range statesByType {
		sortBySizeDesc(statesByType[t], info)
	}

	memo := map[[2]string]bool{}

	for _, name := range d.Names() {
		ty, _ := d.Type(name)
		argTypes := typeexpr.Arguments(ty)
		rtype := typeexpr.ReturnType(ty)

		possibles := make([][]string, len(argTypes))
		for i, t := range argTypes {
			possibles[i] = statesByType[t]
		}
		for _, combo := range cartesian(possibles) {
			if _, exists := result.Read(name, combo); exists {
				continue
			}
			dstSize := 1
			for _, s := range combo {
				dstSize += info[s].size
			}
			if dstSize <= maxSize {
				// Still within budget: the caller's saturation stage is
				// expected to have already added this rule if it belongs;
				// a missing in-budget combination means it was never
				// reachable and is simply skipped.
				continue
			}
			target := findMerge(result, name, combo, statesByType[rtype], info, memo, options)
			if target == "" {
				// No compatible smaller state: fall back to accepting the
				// combination verbatim, matching the original algorithm's
				// behaviour when no merge candidate exists.
				target = name + ":" + strings.Join(combo, ",")
				info[target] = stateInfo{letter: name, isVariable: false, size: dstSize}
				stateToType[target] = rtype
				statesByType[rtype] = append(statesByType[rtype], target)
				sortBySizeDesc(statesByType[rtype], info)
			}
			result.AddRule(automaton.Rule{Letter: name, Args: combo, Dst: target})
		}
	}

	result = removeRulesByDst(result, virtualVars)
	result.Reduce()
	return result.Minimise(nil, nil).ClassicStateRenaming(), nil
}

// removeRulesByDst drops every rule whose letter is one of the virtual
// variable letters introduced to seed merge candidates for types that had
// no real variable of their own.
func removeRulesByDst(a *automaton.DFTA, virtualLetters []string) *automaton.DFTA {
	if len(virtualLetters) == 0 {
		return a
	}
	drop := map[string]bool{}
	for _, l := range virtualLetters {
		drop[l] = true
	}
	kept := automaton.Empty()
	for _, r := range a.Rules() {
		if len(r.Args) == 0 && drop[r.Letter] {
			continue
		}
		kept.AddRule(r)
	}
	for _, f := range a.Finals() {
		kept.SetFinal(f)
	}
	return kept
}

// findMerge searches candidates (already sorted largest-to-smallest) for a
// state that can stand in for the combination (name, args): one whose
// existing derivations mutually embed with a hypothetical (name, args)
// derivation via canStatesMerge. Scans largest-first by default
// (Options.PreferLargest), matching the original algorithm's greedy
// largest-candidate acceptance; the scan direction reverses with
// PreferLargest=false. Because candidates are size-sorted, the first size
// at which any match is found already determines the best group — further
// candidates only get smaller (or larger, when reversed) — so the scan
// stops as soon as a size group other than the matching one is reached.
func findMerge(a *automaton.DFTA, name string, args []string, candidates []string, info map[string]stateInfo, memo map[[2]string]bool, opts Options) string {
	ordered := candidates
	if !opts.PreferLargest {
		ordered = reversedCopy(candidates)
	}

	var tied []string
	matchSize := -1
	for _, candidate := range ordered {
		if matchSize >= 0 && info[candidate].size != matchSize {
			break
		}
		cLetter := info[candidate].letter
		if cLetter != name && !info[candidate].isVariable {
			continue
		}
		if !hasEquivalentDerivation(a, name, args, candidate, info, memo) {
			continue
		}
		matchSize = info[candidate].size
		tied = append(tied, candidate)
		if opts.TieBreak == TieBreakFirst {
			break
		}
	}
	if len(tied) == 0 {
		return ""
	}
	if opts.TieBreak == TieBreakFewestDerivations && len(tied) > 1 {
		sort.Slice(tied, func(i, j int) bool {
			return len(a.ReversedRules(tied[i])) < len(a.ReversedRules(tied[j]))
		})
	}
	return tied[0]
}

// hasEquivalentDerivation reports whether candidate has some existing
// derivation (P2, args2) whose argument states each pairwise
// mutually-simulate the hypothetical derivation's own argument states.
func hasEquivalentDerivation(a *automaton.DFTA, name string, args []string, candidate string, info map[string]stateInfo, memo map[[2]string]bool) bool {
	for _, r := range a.ReversedRules(candidate) {
		if len(r.Args) != len(args) {
			continue
		}
		ok := true
		for i := range args {
			if args[i] == r.Args[i] {
				continue
			}
			if !canStatesMerge(a, args[i], r.Args[i], info, memo) {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

// canStatesMerge mutually-simulates original and candidate: true iff every
// derivation of original has some derivation of candidate whose arguments
// (recursively) merge, and vice versa. Memoized per ordered pair.
func canStatesMerge(a *automaton.DFTA, original, candidate string, info map[string]stateInfo, memo map[[2]string]bool) bool {
	key := [2]string{original, candidate}
	if v, ok := memo[key]; ok {
		return v
	}
	oi, ci := info[original], info[candidate]
	if oi.letter != ci.letter && !ci.isVariable {
		memo[key] = false
		memo[[2]string{candidate, original}] = false
		return false
	}
	for _, r1 := range a.ReversedRules(original) {
		found := false
		for _, r2 := range a.ReversedRules(candidate) {
			if len(r1.Args) != len(r2.Args) {
				continue
			}
			ok := true
			for i := range r1.Args {
				if r1.Args[i] == r2.Args[i] {
					continue
				}
				if !canStatesMerge(a, r1.Args[i], r2.Args[i], info, memo) {
					ok = false
					break
				}
			}
			if ok {
				found = true
				break
			}
		}
		if !found {
			memo[key] = false
			memo[[2]string{candidate, original}] = false
			return false
		}
	}
	memo[key] = true
	memo[[2]string{candidate, original}] = true
	return true
}

func stateLetter(state string) string {
	if strings.HasPrefix(state, "(") {
		if i := strings.IndexByte(state, ' '); i >= 0 {
			return state[1:i]
		}
	}
	return state
}

func varNo(letter string) (int, bool) {
	if !strings.HasPrefix(letter, "var") {
		return 0, false
	}
	n := 0
	for _, c := range letter[3:] {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

func sortBySizeDesc(states []string, info map[string]stateInfo) {
	sort.Slice(states, func(i, j int) bool {
		if info[states[i]].size != info[states[j]].size {
			return info[states[i]].size > info[states[j]].size
		}
		return states[i] < states[j]
	})
}

func reversedCopy(s []string) []string {
	out := make([]string, len(s))
	for i, v := range s {
		out[len(s)-1-i] = v
	}
	return out
}

func cartesian(possibles [][]string) [][]string {
	if len(possibles) == 0 {
		return [][]string{{}}
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
	out := make([][]string, 0, total)
	idx := make([]int, len(possibles))
	for {
		combo := make([]string, len(possibles))
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

type errUnbounded struct{}

func (errUnbounded) Error() string {
	return "loopclose: automaton already accepts unboundedly large trees"
}
