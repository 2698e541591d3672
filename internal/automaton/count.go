package automaton

import "github.com/SynthesisLab/grape/internal/partition"

// TreesBySize returns, for every size 1..size, the number of distinct
// accepted trees of exactly that size (finalsOnly true) or of any reachable
// state (finalsOnly false). Implemented as a bottom-up DP: base case from
// arity-0 rules, inductive case summing products of per-argument counts over
// every composition of (s-1) into len(args) parts.
func (d *DFTA) TreesBySize(size int, finalsOnly bool) map[int]int {
	states := sortedKeys(d.States())
	accepted := states
	if finalsOnly {
		accepted = d.Finals()
	}

	count := make(map[string]map[int]int, len(states))
	for _, s := range states {
		count[s] = map[int]int{}
	}

	out := make(map[int]int, size)
	for csize := 1; csize <= size; csize++ {
		for _, s := range states {
			total := 0
			for _, r := range d.ReversedRules(s) {
				if len(r.Args) == 0 {
					if csize == 1 {
						total++
					}
					continue
				}
				if csize-1 < len(r.Args) {
					continue
				}
				partition.Compositions(len(r.Args), csize-1, func(parts []int) bool {
					product := 1
					for i, a := range r.Args {
						product *= count[a][parts[i]]
						if product == 0 {
							break
						}
					}
					total += product
					return true
				})
			}
			count[s][csize] = total
		}
		sum := 0
		for _, s := range accepted {
			sum += count[s][csize]
		}
		out[csize] = sum
	}
	return out
}

// TreesAtSize returns the number of distinct accepted trees of exactly
// size.
func (d *DFTA) TreesAtSize(size int, finalsOnly bool) int {
	return d.TreesBySize(size, finalsOnly)[size]
}

// TreesUntilSize returns the number of distinct accepted trees of size at
// most size.
func (d *DFTA) TreesUntilSize(size int, finalsOnly bool) int {
	total := 0
	for _, v := range d.TreesBySize(size, finalsOnly) {
		total += v
	}
	return total
}

// IsUnbounded reports whether the grammar accepts trees of unbounded size:
// true iff the argument-reachability relation over states (dst reaches each
// of its rules' argument states, transitively) contains a cycle.
func (d *DFTA) IsUnbounded() bool {
	reachableFrom := map[string]map[string]bool{}
	for _, r := range d.rules {
		if reachableFrom[r.Dst] == nil {
			reachableFrom[r.Dst] = map[string]bool{}
		}
		for _, a := range r.Args {
			reachableFrom[r.Dst][a] = true
		}
	}
	updated := true
	for updated {
		updated = false
		for dst, reachables := range reachableFrom {
			before := len(reachables)
			for s := range copySet(reachables) {
				if dst == s || reachableFrom[s][dst] {
					return true
				}
				for t := range reachableFrom[s] {
					reachables[t] = true
				}
			}
			if len(reachables) != before {
				updated = true
			}
		}
	}
	return false
}

func copySet(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k := range m {
		out[k] = true
	}
	return out
}

// MaxSizeAndDepth computes, via bottom-up DP over the reduced rule set, the
// maximum size and maximum depth among trees accepted by any final state.
// Meaningful only for bounded (non-unbounded) grammars; callers should check
// IsUnbounded first.
func (d *DFTA) MaxSizeAndDepth() (maxSize int, maxDepth int) {
	maxSizeByState := map[string]int{}
	maxDepthByState := map[string]int{}
	for s := range d.States() {
		maxSizeByState[s] = 0
		maxDepthByState[s] = 0
	}
	for _, r := range d.rules {
		if len(r.Args) == 0 {
			if maxSizeByState[r.Dst] < 1 {
				maxSizeByState[r.Dst] = 1
			}
			if maxDepthByState[r.Dst] < 1 {
				maxDepthByState[r.Dst] = 1
			}
		}
	}
	updated := true
	for updated {
		updated = false
		for _, r := range d.rules {
			if len(r.Args) == 0 {
				continue
			}
			allPositive := true
			size, depth := 1, 0
			for _, a := range r.Args {
				if maxSizeByState[a] <= 0 {
					allPositive = false
					break
				}
				size += maxSizeByState[a]
				if maxDepthByState[a] > depth {
					depth = maxDepthByState[a]
				}
			}
			if !allPositive {
				continue
			}
			depth++
			if size > maxSizeByState[r.Dst] {
				maxSizeByState[r.Dst] = size
				updated = true
			}
			if depth > maxDepthByState[r.Dst] {
				maxDepthByState[r.Dst] = depth
				updated = true
			}
		}
	}
	for _, f := range d.Finals() {
		if maxSizeByState[f] > maxSize {
			maxSize = maxSizeByState[f]
		}
		if maxDepthByState[f] > maxDepth {
			maxDepth = maxDepthByState[f]
		}
	}
	return maxSize, maxDepth
}
