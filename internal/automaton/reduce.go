package automaton

// RemoveUnreachable deletes every rule whose destination, or any of whose
// arguments, is not bottom-up reachable, and intersects finals with the
// reachable set.
func (d *DFTA) RemoveUnreachable() {
	reachable := d.States()
	for k, r := range d.rules {
		if !reachable[r.Dst] {
			delete(d.rules, k)
			continue
		}
		for _, a := range r.Args {
			if !reachable[a] {
				delete(d.rules, k)
				break
			}
		}
	}
	for f := range d.finals {
		if !reachable[f] {
			delete(d.finals, f)
		}
	}
	d.revOK = false
}

// consumed returns the states reachable downward from any final state:
// finals themselves, plus every argument of any rule producing an already
// consumed state, to fixpoint.
func (d *DFTA) consumed() map[string]bool {
	c := map[string]bool{}
	var stack []string
	for f := range d.finals {
		if !c[f] {
			c[f] = true
			stack = append(stack, f)
		}
	}
	for len(stack) > 0 {
		dst := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, r := range d.rules {
			if r.Dst != dst {
				continue
			}
			for _, a := range r.Args {
				if !c[a] {
					c[a] = true
					stack = append(stack, a)
				}
			}
		}
	}
	return c
}

// RemoveUnproductive iteratively removes rules whose destination is never
// consumed by any path down from a final state, to fixpoint.
func (d *DFTA) RemoveUnproductive() {
	for {
		consumed := d.consumed()
		removed := false
		for k, r := range d.rules {
			if !consumed[r.Dst] {
				delete(d.rules, k)
				removed = true
			}
		}
		if !removed {
			break
		}
	}
	d.revOK = false
}

// Reduce applies RemoveUnreachable then RemoveUnproductive to fixpoint and
// refreshes the reversed-rules index. Most DFTA-producing operations should
// end with Reduce so downstream algorithms (minimisation, enumeration) can
// assume a reduced automaton.
func (d *DFTA) Reduce() {
	d.RemoveUnreachable()
	d.RemoveUnproductive()
	d.refreshReversedRules()
}
